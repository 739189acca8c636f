package models

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dujiao-next/announcements/internal/config"
	"github.com/dujiao-next/announcements/internal/logger"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// DB 进程级连接，由 InitDB 赋值
var DB *gorm.DB

const slowQueryThreshold = 200 * time.Millisecond

// NowUTC 统一以 UTC 写入时间字段
func NowUTC() time.Time {
	return time.Now().UTC()
}

// DBPoolConfig 连接池参数，零值表示沿用驱动默认
type DBPoolConfig struct {
	MaxOpenConns           int
	MaxIdleConns           int
	ConnMaxLifetimeSeconds int
	ConnMaxIdleTimeSeconds int
}

// InitDB 打开连接并赋给 DB
func InitDB(driver, dsn string, pool DBPoolConfig) error {
	db, err := Open(driver, dsn, pool)
	if err != nil {
		return err
	}
	DB = db
	return nil
}

// Connect 按配置初始化 DB 并迁移表结构，server 与 seed 共用
func Connect(cfg config.DatabaseConfig) error {
	err := InitDB(cfg.Driver, cfg.DSN, DBPoolConfig{
		MaxOpenConns:           cfg.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Pool.ConnMaxIdleTimeSeconds,
	})
	if err != nil {
		return err
	}
	if err := AutoMigrate(); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// Open 按驱动名打开数据库，SQL 日志接入 zap
func Open(driver, dsn string, pool DBPoolConfig) (*gorm.DB, error) {
	dialector, err := dialectorFor(driver, dsn)
	if err != nil {
		return nil, err
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:  newGormLogger(slowQueryThreshold),
		NowFunc: NowUTC,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if pool.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(pool.MaxOpenConns)
	}
	if pool.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(pool.MaxIdleConns)
	}
	if pool.ConnMaxLifetimeSeconds > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(pool.ConnMaxLifetimeSeconds) * time.Second)
	}
	if pool.ConnMaxIdleTimeSeconds > 0 {
		sqlDB.SetConnMaxIdleTime(time.Duration(pool.ConnMaxIdleTimeSeconds) * time.Second)
	}
	return db, nil
}

func dialectorFor(driver, dsn string) (gorm.Dialector, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", "sqlite":
		return sqlite.Open(withSQLitePragmas(dsn)), nil
	case "postgres", "postgresql":
		return postgres.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}
}

// withSQLitePragmas 写事务以 IMMEDIATE 开启并等待锁，多连接下读后写不会直接返回 SQLITE_BUSY
func withSQLitePragmas(dsn string) string {
	for _, param := range []struct{ marker, value string }{
		{"busy_timeout", "_pragma=busy_timeout(5000)"},
		{"_txlock", "_txlock=immediate"},
	} {
		if strings.Contains(dsn, param.marker) {
			continue
		}
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		dsn += sep + param.value
	}
	return dsn
}

// MigrateAll 在指定连接上迁移全部表
func MigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		&Admin{},
		&User{},
		&AnnouncementCategory{},
		&Announcement{},
		&AnnouncementView{},
		&AnnouncementLike{},
		&Setting{},
	)
}

// AutoMigrate 迁移 DB
func AutoMigrate() error {
	return MigrateAll(DB)
}

// gormLogger 将 GORM 日志转发到全局 zap，慢查询与错误单独标记
type gormLogger struct {
	level gormlogger.LogLevel
	slow  time.Duration
}

func newGormLogger(slow time.Duration) *gormLogger {
	return &gormLogger{level: gormlogger.Warn, slow: slow}
}

func (l *gormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

func (l *gormLogger) Info(_ context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Info {
		logger.Infow("gorm", "detail", fmt.Sprintf(msg, args...))
	}
}

func (l *gormLogger) Warn(_ context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Warn {
		logger.Warnw("gorm", "detail", fmt.Sprintf(msg, args...))
	}
}

func (l *gormLogger) Error(_ context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Error {
		logger.Errorw("gorm", "detail", fmt.Sprintf(msg, args...))
	}
}

func (l *gormLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}
	elapsed := time.Since(begin)
	switch {
	case err != nil && l.level >= gormlogger.Error && !errors.Is(err, gorm.ErrRecordNotFound):
		sql, rows := fc()
		logger.Z().Error("gorm_query_failed", zap.Error(err), zap.Duration("elapsed", elapsed), zap.Int64("rows", rows), zap.String("sql", sql))
	case l.slow > 0 && elapsed > l.slow && l.level >= gormlogger.Warn:
		sql, rows := fc()
		logger.Z().Warn("gorm_slow_query", zap.Duration("elapsed", elapsed), zap.Int64("rows", rows), zap.String("sql", sql))
	case l.level >= gormlogger.Info:
		sql, rows := fc()
		logger.Z().Debug("gorm_query", zap.Duration("elapsed", elapsed), zap.Int64("rows", rows), zap.String("sql", sql))
	}
}

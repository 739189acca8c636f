package logger

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	defaultLogDirName    = "logs"
	defaultLogFilename   = "announcements.log"
	defaultLogMaxSizeMB  = 100
	defaultLogMaxBackups = 7
	defaultLogMaxAgeDays = 30
	defaultServiceName   = "announcements"
)

// Options 日志输出配置
type Options struct {
	Dir        string
	Filename   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
	Service    string
	// Level 覆盖运行模式推导出的级别，如 "warn"
	Level string
	// Console 文件之外同时输出到 stdout，容器部署时使用
	Console bool
}

var (
	current  atomic.Pointer[zap.Logger]
	fallback = sync.OnceValue(func() *zap.Logger {
		core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig()), zapcore.Lock(os.Stdout), zap.InfoLevel)
		return zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))
	})
)

// Init 构建全局日志并替换 zap 全局实例
func Init(mode string, options Options) *zap.Logger {
	l := New(mode, options)
	current.Store(l)
	zap.ReplaceGlobals(l)
	return l
}

// New 按运行模式构建日志：debug 输出彩色控制台，其余写 JSON 滚动文件
func New(mode string, options Options) *zap.Logger {
	debug := strings.EqualFold(strings.TrimSpace(mode), "debug")
	level := resolveLevel(debug, options.Level)

	var core zapcore.Core
	if debug {
		core = zapcore.NewCore(consoleEncoder(), zapcore.Lock(os.Stdout), level)
	} else {
		core = zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig()), fileSink(options), level)
		if options.Console {
			core = zapcore.NewTee(core, zapcore.NewCore(consoleEncoder(), zapcore.Lock(os.Stdout), level))
		}
	}

	service := strings.TrimSpace(options.Service)
	if service == "" {
		service = defaultServiceName
	}
	return zap.New(core,
		zap.AddCaller(),
		zap.AddCallerSkip(1),
		zap.AddStacktrace(zap.ErrorLevel),
		zap.Fields(zap.String("service", service)),
	)
}

func resolveLevel(debug bool, raw string) zap.AtomicLevel {
	if raw = strings.TrimSpace(raw); raw != "" {
		if lvl, err := zap.ParseAtomicLevel(strings.ToLower(raw)); err == nil {
			return lvl
		}
		fmt.Fprintf(os.Stderr, "unknown log level %q, using mode default\n", raw)
	}
	if debug {
		return zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	return zap.NewAtomicLevelAt(zap.InfoLevel)
}

// fileSink 打开滚动文件，不可写时退回 stdout
func fileSink(options Options) zapcore.WriteSyncer {
	path, err := resolveLogFilePath(options)
	if err != nil {
		fmt.Fprintf(os.Stderr, "log file unavailable, writing to stdout: %v\n", err)
		return zapcore.Lock(os.Stdout)
	}
	return zapcore.AddSync(&lumberjack.Logger{
		Filename:   path,
		MaxSize:    positiveOr(options.MaxSizeMB, defaultLogMaxSizeMB),
		MaxBackups: positiveOr(options.MaxBackups, defaultLogMaxBackups),
		MaxAge:     positiveOr(options.MaxAgeDays, defaultLogMaxAgeDays),
		Compress:   options.Compress,
		LocalTime:  true,
	})
}

func encoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "time"
	cfg.MessageKey = "message"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeDuration = zapcore.MillisDurationEncoder
	cfg.EncodeLevel = zapcore.LowercaseLevelEncoder
	cfg.EncodeCaller = zapcore.ShortCallerEncoder
	return cfg
}

func consoleEncoder() zapcore.Encoder {
	cfg := encoderConfig()
	cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return zapcore.NewConsoleEncoder(cfg)
}

func resolveLogFilePath(options Options) (string, error) {
	dir := strings.TrimSpace(options.Dir)
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("getwd: %w", err)
		}
		dir = filepath.Join(wd, defaultLogDirName)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}
	name := strings.TrimSpace(options.Filename)
	if name == "" {
		name = defaultLogFilename
	}
	path := filepath.Join(dir, name)

	// lumberjack 延迟打开文件，这里先确认可写
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	return path, f.Close()
}

func positiveOr(value, fallback int) int {
	if value > 0 {
		return value
	}
	return fallback
}

// Z 当前全局日志，未初始化时返回控制台兜底实例
func Z() *zap.Logger {
	if l := current.Load(); l != nil {
		return l
	}
	return fallback()
}

// Initialized 是否已调用 Init
func Initialized() bool {
	return current.Load() != nil
}

// StdLogger 供 http.Server 等只接受 *log.Logger 的组件使用
func StdLogger() *log.Logger {
	return zap.NewStdLog(Z())
}

func S() *zap.SugaredLogger { return Z().Sugar() }

// SW 附带键值对的 SugaredLogger
func SW(kv ...interface{}) *zap.SugaredLogger {
	if len(kv) == 0 {
		return S()
	}
	return S().With(kv...)
}

func Sync() { _ = Z().Sync() }

func Debugw(msg string, kv ...interface{}) { S().Debugw(msg, kv...) }
func Infow(msg string, kv ...interface{})  { S().Infow(msg, kv...) }
func Warnw(msg string, kv ...interface{})  { S().Warnw(msg, kv...) }
func Errorw(msg string, kv ...interface{}) { S().Errorw(msg, kv...) }

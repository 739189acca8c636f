package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/dujiao-next/announcements/internal/config"
	"github.com/dujiao-next/announcements/internal/constants"

	"github.com/redis/go-redis/v9"
)

// backend 当前 Redis 连接与键前缀；client 为 nil 时缓存整体降级为空操作
type backend struct {
	client *redis.Client
	prefix string
}

var active atomic.Pointer[backend]

func current() *backend {
	if b := active.Load(); b != nil {
		return b
	}
	return &backend{prefix: constants.RedisPrefixDefault}
}

func (b *backend) key(key string) string {
	if key = strings.TrimSpace(key); key == "" {
		return b.prefix
	}
	return b.prefix + ":" + key
}

// InitRedis 按配置连接 Redis，未启用时保持降级状态
func InitRedis(cfg *config.RedisConfig) error {
	if cfg == nil || !cfg.Enabled {
		Use(nil, "")
		return nil
	}
	host := strings.TrimSpace(cfg.Host)
	if host == "" {
		host = "127.0.0.1"
	}
	port := cfg.Port
	if port <= 0 {
		port = 6379
	}
	client := redis.NewClient(&redis.Options{
		Addr:         net.JoinHostPort(host, strconv.Itoa(port)),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  3 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		Use(nil, "")
		return fmt.Errorf("redis ping %s: %w", client.Options().Addr, err)
	}
	Use(client, cfg.Prefix)
	return nil
}

// Use 替换当前连接，测试中传 nil 关闭缓存
func Use(client *redis.Client, prefix string) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = constants.RedisPrefixDefault
	}
	active.Store(&backend{client: client, prefix: prefix})
}

// Close 关闭连接并回到降级状态
func Close() error {
	prev := active.Swap(nil)
	if prev == nil || prev.client == nil {
		return nil
	}
	return prev.client.Close()
}

func Enabled() bool {
	return current().client != nil
}

// Client 未启用时为 nil，调用方据此选择本地实现
func Client() *redis.Client {
	return current().client
}

// GetJSON 读取并反序列化，未命中返回 false
func GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	b := current()
	if b.client == nil {
		return false, nil
	}
	raw, err := b.client.Get(ctx, b.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	b := current()
	if b.client == nil {
		return nil
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return b.client.Set(ctx, b.key(key), payload, ttl).Err()
}

func Del(ctx context.Context, keys ...string) error {
	b := current()
	if b.client == nil || len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = b.key(k)
	}
	return b.client.Del(ctx, full...).Err()
}

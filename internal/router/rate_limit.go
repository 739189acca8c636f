package router

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/dujiao-next/announcements/internal/http/response"
	"github.com/dujiao-next/announcements/internal/i18n"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// RateLimitKeyFunc 生成限流 key
type RateLimitKeyFunc func(*gin.Context) string

// RateLimitRule 固定窗口内最多 MaxRequests 次
type RateLimitRule struct {
	Prefix        string
	WindowSeconds int
	MaxRequests   int
	MessageKey    string
}

func (r RateLimitRule) window() time.Duration {
	return time.Duration(r.WindowSeconds) * time.Second
}

func (r RateLimitRule) disabled() bool {
	return r.WindowSeconds <= 0 || r.MaxRequests <= 0
}

// limiterBackend 返回是否放行以及需要等待的时长
type limiterBackend interface {
	take(ctx context.Context, key string) (bool, time.Duration, error)
}

// RateLimit Redis 可用时多实例共享计数，否则使用进程内令牌桶
func RateLimit(client *redis.Client, rule RateLimitRule, keyFunc RateLimitKeyFunc) gin.HandlerFunc {
	if rule.disabled() {
		return func(c *gin.Context) { c.Next() }
	}
	var backend limiterBackend
	if client != nil {
		backend = &redisWindow{client: client, rule: rule}
	} else {
		backend = newTokenBuckets(rule)
	}
	return rateLimitHandler(backend, rule, keyFunc)
}

func rateLimitHandler(backend limiterBackend, rule RateLimitRule, keyFunc RateLimitKeyFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := ""
		if keyFunc != nil {
			key = strings.TrimSpace(keyFunc(c))
		}
		if key == "" {
			key = c.ClientIP()
		}
		if rule.Prefix != "" {
			key = rule.Prefix + ":" + key
		}

		allowed, wait, err := backend.take(c.Request.Context(), key)
		if err != nil {
			response.Error(c, response.CodeInternal, i18n.T(i18n.ResolveLocale(c), "error.rate_limit_unavailable"))
			c.Abort()
			return
		}
		if !allowed {
			seconds := int(wait.Round(time.Second) / time.Second)
			if seconds < 1 {
				seconds = 1
			}
			msgKey := rule.MessageKey
			if msgKey == "" {
				msgKey = "error.rate_limited"
			}
			response.Error(c, response.CodeTooManyRequests, i18n.Sprintf(i18n.ResolveLocale(c), msgKey, seconds))
			c.Abort()
			return
		}
		c.Next()
	}
}

// redisWindow INCR 计数，首次命中设置过期
type redisWindow struct {
	client *redis.Client
	rule   RateLimitRule
}

func (w *redisWindow) take(ctx context.Context, key string) (bool, time.Duration, error) {
	var incr *redis.IntCmd
	var ttl *redis.DurationCmd
	_, err := w.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.ExpireNX(ctx, key, w.rule.window())
		ttl = pipe.TTL(ctx, key)
		return nil
	})
	if err != nil {
		return false, 0, err
	}
	if incr.Val() <= int64(w.rule.MaxRequests) {
		return true, 0, nil
	}
	wait := ttl.Val()
	if wait <= 0 {
		wait = w.rule.window()
	}
	return false, wait, nil
}

type bucketEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// tokenBuckets 每个 key 一个令牌桶，闲置超过 idleTTL 的 key 被回收
type tokenBuckets struct {
	mu        sync.Mutex
	entries   map[string]*bucketEntry
	limit     rate.Limit
	burst     int
	idleTTL   time.Duration
	lastSweep time.Time
	now       func() time.Time
}

func newTokenBuckets(rule RateLimitRule) *tokenBuckets {
	idle := rule.window() * 2
	if idle < time.Minute {
		idle = time.Minute
	}
	return &tokenBuckets{
		entries: make(map[string]*bucketEntry),
		limit:   rate.Every(rule.window() / time.Duration(rule.MaxRequests)),
		burst:   rule.MaxRequests,
		idleTTL: idle,
		now:     time.Now,
	}
}

func (b *tokenBuckets) take(_ context.Context, key string) (bool, time.Duration, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	if now.Sub(b.lastSweep) > b.idleTTL {
		for k, entry := range b.entries {
			if now.Sub(entry.lastSeen) > b.idleTTL {
				delete(b.entries, k)
			}
		}
		b.lastSweep = now
	}

	entry, ok := b.entries[key]
	if !ok {
		entry = &bucketEntry{limiter: rate.NewLimiter(b.limit, b.burst)}
		b.entries[key] = entry
	}
	entry.lastSeen = now
	reservation := entry.limiter.ReserveN(now, 1)
	if !reservation.OK() {
		return false, 0, errors.New("rate limiter burst exceeded")
	}
	if delay := reservation.DelayFrom(now); delay > 0 {
		reservation.CancelAt(now)
		return false, delay, nil
	}
	return true, 0, nil
}

// KeyByIP 按客户端 IP 限流
func KeyByIP(c *gin.Context) string {
	return c.ClientIP()
}

// KeyByIPAndJSONField 按 JSON 字段（如登录邮箱）+ IP 限流，读取后恢复请求体
func KeyByIPAndJSONField(field string) RateLimitKeyFunc {
	return func(c *gin.Context) string {
		value := strings.ToLower(peekJSONString(c, field))
		if value == "" {
			return c.ClientIP()
		}
		return value + "|" + c.ClientIP()
	}
}

func peekJSONString(c *gin.Context, field string) string {
	if c.Request == nil || c.Request.Body == nil {
		return ""
	}
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return ""
	}
	c.Request.Body = io.NopCloser(bytes.NewReader(body))
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	var text string
	if err := json.Unmarshal(payload[field], &text); err != nil {
		return ""
	}
	return strings.TrimSpace(text)
}

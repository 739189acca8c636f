package router

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dujiao-next/announcements/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	requestIDKey    = "request_id"
	requestIDHeader = "X-Request-ID"
)

var defaultCORSHeaders = []string{
	"Content-Type",
	"Content-Length",
	"Accept-Encoding",
	"Authorization",
	"Cache-Control",
	"X-Requested-With",
	"X-CSRF-Token",
	"Accept-Language",
}

func orDefault(values, fallback []string) []string {
	if len(values) == 0 {
		return fallback
	}
	return values
}

// CORSMiddleware 后台前端与嵌入公告组件的站点跨域访问
func CORSMiddleware(cfg config.CORSConfig) gin.HandlerFunc {
	origins := orDefault(cfg.AllowedOrigins, []string{"*"})
	methods := strings.Join(orDefault(cfg.AllowedMethods, []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}), ", ")
	headers := strings.Join(orDefault(cfg.AllowedHeaders, defaultCORSHeaders), ", ")
	maxAge := ""
	if cfg.MaxAge > 0 {
		maxAge = strconv.Itoa(cfg.MaxAge)
	}

	return func(c *gin.Context) {
		h := c.Writer.Header()
		if origin := resolveAllowedOrigin(c.GetHeader("Origin"), origins, cfg.AllowCredentials); origin != "" {
			h.Set("Access-Control-Allow-Origin", origin)
			if origin != "*" {
				h.Add("Vary", "Origin")
			}
		}
		if cfg.AllowCredentials {
			h.Set("Access-Control-Allow-Credentials", "true")
		}
		h.Set("Access-Control-Allow-Headers", headers)
		h.Set("Access-Control-Allow-Methods", methods)
		if maxAge != "" {
			h.Set("Access-Control-Max-Age", maxAge)
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// resolveAllowedOrigin 通配且允许携带凭据时回显请求 Origin
func resolveAllowedOrigin(origin string, allowedOrigins []string, allowCredentials bool) string {
	wildcard := false
	matched := false
	for _, allowed := range allowedOrigins {
		if allowed == "*" {
			wildcard = true
		} else if origin != "" && strings.EqualFold(allowed, origin) {
			matched = true
		}
	}
	switch {
	case wildcard && allowCredentials && origin != "":
		return origin
	case wildcard:
		return "*"
	case matched:
		return origin
	default:
		return ""
	}
}

// RequestIDMiddleware 沿用上游 X-Request-ID，缺失时生成
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// LoggerMiddleware 访问日志，RSS 与健康检查降为 debug 级别
func LoggerMiddleware(base *zap.Logger) gin.HandlerFunc {
	if base == nil {
		base = zap.L()
	}
	sugar := base.Sugar()
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []interface{}{
			"request_id", getRequestID(c),
			"method", c.Request.Method,
			"route", c.FullPath(),
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		}
		switch {
		case len(c.Errors) > 0:
			sugar.Errorw("request", append(fields, "errors", c.Errors.String())...)
		case isQuietRoute(c.FullPath()):
			sugar.Debugw("request", fields...)
		default:
			sugar.Infow("request", fields...)
		}
	}
}

func isQuietRoute(route string) bool {
	return route == "/health" || route == "/metrics" || strings.HasSuffix(route, "/feed.xml")
}

func getRequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

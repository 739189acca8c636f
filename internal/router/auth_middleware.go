package router

import (
	"context"
	"strings"

	"github.com/dujiao-next/announcements/internal/authz"
	"github.com/dujiao-next/announcements/internal/cache"
	"github.com/dujiao-next/announcements/internal/http/response"
	"github.com/dujiao-next/announcements/internal/i18n"
	"github.com/dujiao-next/announcements/internal/logger"
	"github.com/dujiao-next/announcements/internal/repository"
	"github.com/dujiao-next/announcements/internal/service"

	"github.com/gin-gonic/gin"
)

const adminIsSuperContextKey = "admin_is_super"

func abortUnauthorized(c *gin.Context, key string) {
	response.Unauthorized(c, i18n.T(i18n.ResolveLocale(c), key))
	c.Abort()
}

// bearerToken 返回 Authorization 中的 Token，失败时返回错误文案 key
func bearerToken(c *gin.Context) (string, string) {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	if header == "" {
		return "", "error.auth_header_missing"
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || scheme != "Bearer" || strings.TrimSpace(token) == "" {
		return "", "error.auth_header_invalid"
	}
	return strings.TrimSpace(token), ""
}

// resolveSession 优先读缓存快照，未命中时回源并回填
func resolveSession(ctx context.Context, kind cache.SessionKind, id uint, load func() (*cache.Session, error)) (*cache.Session, error) {
	if cached, hit, err := cache.LoadSession(ctx, kind, id); err == nil && hit {
		return cached, nil
	}
	session, err := load()
	if err != nil || session == nil {
		return nil, err
	}
	_ = cache.StoreSession(ctx, session)
	return session, nil
}

// checkSession 校验账号状态与吊销版本，返回错误文案 key
func checkSession(session *cache.Session, version uint64, issuedAt int64) string {
	switch {
	case session == nil:
		return "error.token_invalid"
	case !session.Active:
		return "error.user_disabled"
	case !session.Accepts(version, issuedAt):
		return "error.token_revoked"
	default:
		return ""
	}
}

// JWTAuthMiddleware 后台 Token 鉴权，写入 admin_id 与超管标记
func JWTAuthMiddleware(secretKey string, adminRepo repository.AdminRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secretKey == "" {
			abortUnauthorized(c, "error.jwt_secret_missing")
			return
		}
		raw, errKey := bearerToken(c)
		if errKey != "" {
			abortUnauthorized(c, errKey)
			return
		}
		claims, err := service.ParseAdminToken(secretKey, raw)
		if err != nil || adminRepo == nil {
			abortUnauthorized(c, "error.token_invalid")
			return
		}
		session, err := resolveSession(c.Request.Context(), cache.SessionAdmin, claims.AdminID, func() (*cache.Session, error) {
			admin, err := adminRepo.GetByID(claims.AdminID)
			return cache.AdminSession(admin), err
		})
		if err != nil {
			abortUnauthorized(c, "error.token_invalid")
			return
		}
		if key := checkSession(session, claims.TokenVersion, claims.IssuedAtUnix()); key != "" {
			abortUnauthorized(c, key)
			return
		}
		c.Set("admin_id", claims.AdminID)
		c.Set("username", claims.Username)
		c.Set(adminIsSuperContextKey, session.IsSuper)
		c.Next()
	}
}

// AdminRBACMiddleware 按路由模板与方法做 Casbin 校验，超管直接放行
func AdminRBACMiddleware(authzService *authz.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if authzService == nil {
			logger.Errorw("admin_rbac_service_unavailable")
			abortUnauthorized(c, "error.unauthorized")
			return
		}
		if c.GetBool(adminIsSuperContextKey) {
			c.Next()
			return
		}
		adminID := c.GetUint("admin_id")
		if adminID == 0 {
			abortUnauthorized(c, "error.unauthorized")
			return
		}

		resource := c.FullPath()
		if resource == "" {
			resource = c.Request.URL.Path
		}
		allowed, err := authzService.EnforceAdmin(adminID, resource, c.Request.Method)
		if err != nil {
			logger.Errorw("admin_rbac_enforce_failed", "admin_id", adminID, "method", c.Request.Method, "path", c.Request.URL.Path, "error", err)
			abortUnauthorized(c, "error.unauthorized")
			return
		}
		if !allowed {
			logger.Warnw("admin_rbac_permission_denied", "admin_id", adminID, "method", c.Request.Method, "resource", authz.NormalizeObject(resource))
			response.Forbidden(c, i18n.T(i18n.ResolveLocale(c), "error.forbidden"))
			c.Abort()
			return
		}
		c.Next()
	}
}

// UserJWTAuthMiddleware 读者接口必须登录
func UserJWTAuthMiddleware(secretKey string, userRepo repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secretKey == "" {
			abortUnauthorized(c, "error.jwt_secret_missing")
			return
		}
		claims, errKey := authenticateUser(c, secretKey, userRepo)
		if errKey != "" {
			abortUnauthorized(c, errKey)
			return
		}
		setUserContext(c, claims)
		c.Next()
	}
}

// OptionalUserJWTMiddleware 前台接口：Token 有效则识别读者，否则按游客继续
func OptionalUserJWTMiddleware(secretKey string, userRepo repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secretKey != "" && c.GetHeader("Authorization") != "" {
			if claims, errKey := authenticateUser(c, secretKey, userRepo); errKey == "" {
				setUserContext(c, claims)
			}
		}
		c.Next()
	}
}

func setUserContext(c *gin.Context, claims *service.UserClaims) {
	c.Set("user_id", claims.UserID)
	c.Set("user_email", claims.Email)
}

func authenticateUser(c *gin.Context, secretKey string, userRepo repository.UserRepository) (*service.UserClaims, string) {
	raw, errKey := bearerToken(c)
	if errKey != "" {
		return nil, errKey
	}
	claims, err := service.ParseUserToken(secretKey, raw)
	if err != nil || userRepo == nil {
		return nil, "error.token_invalid"
	}
	session, err := resolveSession(c.Request.Context(), cache.SessionUser, claims.UserID, func() (*cache.Session, error) {
		user, err := userRepo.GetByID(claims.UserID)
		return cache.UserSession(user), err
	})
	if err != nil {
		return nil, "error.token_invalid"
	}
	if key := checkSession(session, claims.TokenVersion, claims.IssuedAtUnix()); key != "" {
		return nil, key
	}
	return claims, ""
}

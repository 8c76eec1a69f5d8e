package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/filevault/pkg/configs"
	ctxPkg "github.com/yeisme/filevault/pkg/context"
	"github.com/yeisme/filevault/pkg/internal/errs"
	"github.com/yeisme/filevault/pkg/internal/model"
	"github.com/yeisme/filevault/pkg/internal/store"
	"github.com/yeisme/filevault/pkg/log"
)

// gin context 中的用户字段.
const (
	UserIDKey    = "user_id"
	UserEmailKey = "user_email"
	UserNameKey  = "user_name"
	userKey      = "user"
)

// Resolver 按身份查找或创建用户.
type Resolver interface {
	Resolve(ctx context.Context, id store.Identity) (*model.User, error)
}

// IdentityFromHeaders 读取 oauth2-proxy 注入的身份头.
// allowDev 为 true 时额外接受 X-User 头和 ?user= 参数.
func IdentityFromHeaders(c *gin.Context, allowDev bool) store.Identity {
	id := store.Identity{
		Email: strings.TrimSpace(c.GetHeader("X-Auth-Request-Email")),
		Name:  strings.TrimSpace(c.GetHeader("X-Auth-Request-Preferred-Username")),
	}

	if id.Email == "" {
		id.Email = strings.TrimSpace(c.GetHeader("X-Forwarded-Email"))
	}

	if id.Name == "" {
		id.Name = strings.TrimSpace(c.GetHeader("X-Auth-Request-User"))
	}

	if id.Email == "" && allowDev {
		id.Email = strings.TrimSpace(c.GetHeader("X-User"))
		if id.Email == "" {
			id.Email = strings.TrimSpace(c.Query("user"))
		}
	}

	return id
}

// AuthMiddleware 基于 oauth2-proxy 注入的请求头做统一身份认证.
// 身份被解析为用户记录（按邮箱查找或创建），并放入 gin.Context 与 request.Context.
func AuthMiddleware(conf configs.AuthConfig, debug bool, users Resolver) gin.HandlerFunc {
	allowDev := debug || conf.DevAllowQuery

	return func(c *gin.Context) {
		if !conf.Enabled || isSkippedPath(c.Request.URL.Path, conf.SkipPaths) {
			c.Next()
			return
		}

		id := IdentityFromHeaders(c, allowDev)
		if id.Email == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "code": "UNAUTHORIZED"})
			return
		}

		u, err := users.Resolve(c.Request.Context(), id)
		if err != nil {
			status := errs.Status(err)
			if status >= http.StatusInternalServerError {
				log.Logger().Error().Err(err).Str("email", id.Email).Msg("resolve user failed")
				c.AbortWithStatusJSON(status, gin.H{"error": "internal error", "code": errs.Code(err)})

				return
			}

			c.AbortWithStatusJSON(status, gin.H{"error": err.Error(), "code": errs.Code(err)})

			return
		}

		SetUser(c, u)
		c.Next()
	}
}

// SetUser 把用户写入 gin.Context 与 request.Context.
func SetUser(c *gin.Context, u *model.User) {
	c.Set(userKey, u)
	c.Set(UserIDKey, u.ID)
	c.Set(UserEmailKey, u.Email)
	c.Set(UserNameKey, u.Name)
	c.Request = c.Request.WithContext(ctxPkg.WithUser(c.Request.Context(), u))
}

// CurrentUser 返回当前请求的用户，未认证时为 nil.
func CurrentUser(c *gin.Context) *model.User {
	if v, ok := c.Get(userKey); ok {
		if u, ok := v.(*model.User); ok {
			return u
		}
	}

	return ctxPkg.GetUser(c.Request.Context())
}

func isSkippedPath(path string, skips []string) bool {
	if path == "" || len(skips) == 0 {
		return false
	}

	for _, p := range skips {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}

		if strings.HasPrefix(path, p) {
			return true
		}
	}

	return false
}

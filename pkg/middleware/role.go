package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/filevault/pkg/configs"
)

// Role 表示请求方的角色，数值越大权限越高.
type Role int

const (
	RoleUser Role = iota + 1
	RoleAdmin
)

// String 返回角色的字符串表示.
func (r Role) String() string {
	if r == RoleAdmin {
		return "admin"
	}

	return "user"
}

const roleKey = "role"

// RoleMiddleware 按 auth.admins 给当前用户分配角色，需在 AuthMiddleware 之后.
func RoleMiddleware(conf configs.AuthConfig) gin.HandlerFunc {
	admins := make(map[string]struct{}, len(conf.Admins))
	for _, a := range conf.Admins {
		admins[strings.ToLower(strings.TrimSpace(a))] = struct{}{}
	}

	return func(c *gin.Context) {
		r := RoleUser

		if u := CurrentUser(c); u != nil {
			if _, ok := admins[strings.ToLower(u.Email)]; ok {
				r = RoleAdmin
			}
		}

		c.Set(roleKey, r)
		c.Next()
	}
}

// GetRole 从 gin.Context 获取当前请求角色.
func GetRole(c *gin.Context) Role {
	if v, ok := c.Get(roleKey); ok {
		if r, ok2 := v.(Role); ok2 {
			return r
		}
	}

	return RoleUser
}

// RequireMinRole 要求最小角色，不满足则返回 403.
func RequireMinRole(minRole Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetRole(c) < minRole {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden: insufficient role", "code": "FORBIDDEN"})
			return
		}

		c.Next()
	}
}

package router

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/filevault/pkg/internal/handle"
)

// RegisterUserRoutes 注册用户路由.
func RegisterUserRoutes(g *gin.RouterGroup, h *handle.Handlers) {
	users := g.Group("/users")
	{
		users.POST("/sync", h.SyncUser)
		users.GET("/profile", h.Profile)
	}
}

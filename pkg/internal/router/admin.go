package router

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/filevault/pkg/internal/handle"
	"github.com/yeisme/filevault/pkg/middleware"
)

// RegisterAdminRoutes 注册管理路由，要求 admin 角色.
func RegisterAdminRoutes(g *gin.RouterGroup) {
	admin := g.Group("/admin", middleware.RequireMinRole(middleware.RoleAdmin))
	{
		admin.GET("/jobs", handle.ListJobs)
		admin.POST("/jobs/:name", handle.RunJob)
	}
}

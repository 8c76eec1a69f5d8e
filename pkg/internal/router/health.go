package router

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/filevault/pkg/internal/handle"
)

// RegisterHealthRoutes 注册健康检查路由，默认不经过认证.
func RegisterHealthRoutes(g *gin.RouterGroup) {
	healthRoutes := g.Group("/health")
	{
		healthRoutes.GET("", handle.Health)
		healthRoutes.GET("/db", handle.HealthDB)
		healthRoutes.GET("/storage", handle.HealthStorage)
		healthRoutes.GET("/mq", handle.HealthMQ)
	}
}

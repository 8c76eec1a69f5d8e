package router

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/filevault/pkg/internal/handle"
)

// RegisterFileRoutes 注册文件与共享路由.
func RegisterFileRoutes(g *gin.RouterGroup, h *handle.Handlers) {
	files := g.Group("/files")
	{
		files.POST("/upload", h.Upload)
		files.GET("", h.List)
		files.GET("/shared", h.Shared)
		files.GET("/search", h.Search)
		files.GET("/stats", h.Stats)

		single := files.Group("/:id")
		{
			single.GET("", h.Get)
			single.GET("/download", h.Download)
			single.PATCH("/rename", h.Rename)
			single.DELETE("", h.Delete)

			// 共享
			single.POST("/share", h.Share)
			single.POST("/unshare", h.Unshare)
			single.GET("/sharing", h.Sharing)
		}
	}
}

// RegisterBlobRoutes 注册本地文件下载路由，g 的前缀与 storage.local.download_prefix 一致.
func RegisterBlobRoutes(g *gin.RouterGroup, h *handle.Handlers) {
	g.GET("/:owner/:name", h.Blob)
}

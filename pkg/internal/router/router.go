// Package router 管理路由配置，把处理器与中间件绑定到 gin 引擎.
package router

import (
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/yeisme/filevault/pkg/configs"
	"github.com/yeisme/filevault/pkg/internal/handle"
	"github.com/yeisme/filevault/pkg/internal/storage"
	"github.com/yeisme/filevault/pkg/metrics"
	"github.com/yeisme/filevault/pkg/middleware"
	"github.com/yeisme/filevault/pkg/scheduler"
)

// APIPrefix 业务接口前缀.
const APIPrefix = "/api/v1"

// Options 构建路由所需的依赖.
type Options struct {
	Config   configs.AppConfig
	Debug    bool
	Manager  *storage.Manager
	Handlers *handle.Handlers
	Sched    *scheduler.Scheduler // 可为 nil，任务接口返回空列表
}

// New 创建 gin 引擎，挂载全局中间件、指标与 /api/v1 路由.
func New(opts Options) *gin.Engine {
	cfg := opts.Config
	e := gin.New()

	e.Use(
		gin.Recovery(),
		middleware.RequestIDMiddleware(),
		middleware.GinLoggerMiddleware(),
		middleware.CORSMiddleware(cfg.Server),
		gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths(nonEmpty(
			cfg.Storage.Local.DownloadPrefix,
			cfg.Metrics.Path,
		))),
		middleware.PrometheusMiddleware(),
	)

	if cfg.Tracing.Enabled {
		e.Use(middleware.TracingMiddleware())
	}

	e.Use(
		middleware.RateLimitMiddleware(cfg.RateLimit),
		middleware.CircuitBreakerMiddleware(cfg.CircuitBreaker),
		middleware.StorageMiddleware(opts.Manager),
		middleware.SchedulerMiddleware(opts.Sched),
	)

	metrics.RegisterRoutes(cfg.Metrics, e)

	api := e.Group(APIPrefix)
	RegisterHealthRoutes(api)

	auth := []gin.HandlerFunc{
		middleware.AuthMiddleware(cfg.Auth, opts.Debug, opts.Handlers.Users()),
		middleware.RoleMiddleware(cfg.Auth),
	}

	authed := api.Group("", auth...)
	RegisterUserRoutes(authed, opts.Handlers)
	RegisterFileRoutes(authed, opts.Handlers)
	RegisterAdminRoutes(authed)

	// 本地文件下载路径由 storage.local.download_prefix 决定，可以不在 /api/v1 之下
	RegisterBlobRoutes(e.Group(cfg.Storage.Local.DownloadPrefix, auth...), opts.Handlers)

	return e
}

// nonEmpty 过滤空字符串，空前缀会让 gzip 排除所有路径.
func nonEmpty(paths ...string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if p != "" {
			out = append(out, p)
		}
	}

	return out
}

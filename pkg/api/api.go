// Package api 把存储管理器与调度器组装成对外的 HTTP 接口.
package api

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/filevault/pkg/configs"
	"github.com/yeisme/filevault/pkg/internal/handle"
	"github.com/yeisme/filevault/pkg/internal/router"
	"github.com/yeisme/filevault/pkg/internal/storage"
	"github.com/yeisme/filevault/pkg/scheduler"
)

// NewEngine 基于存储管理器创建处理器并注册全部路由. sched 可为 nil.
func NewEngine(cfg configs.AppConfig, debug bool, mgr *storage.Manager, sched *scheduler.Scheduler) *gin.Engine {
	return router.New(router.Options{
		Config:   cfg,
		Debug:    debug,
		Manager:  mgr,
		Handlers: handle.NewHandlers(mgr.Deps()),
		Sched:    sched,
	})
}

// Package app 提供应用程序的初始化、运行与优雅退出.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yeisme/filevault/pkg/api"
	"github.com/yeisme/filevault/pkg/configs"
	"github.com/yeisme/filevault/pkg/internal/jobs"
	"github.com/yeisme/filevault/pkg/internal/service"
	"github.com/yeisme/filevault/pkg/internal/storage"
	"github.com/yeisme/filevault/pkg/log"
	"github.com/yeisme/filevault/pkg/metrics"
	"github.com/yeisme/filevault/pkg/queue"
	"github.com/yeisme/filevault/pkg/rule"
	"github.com/yeisme/filevault/pkg/scheduler"
	"github.com/yeisme/filevault/pkg/tracing"
)

// shutdownTimeout 退出时等待进行中请求的最长时间.
const shutdownTimeout = 15 * time.Second

// App 一个运行中的文件服务实例.
type App struct {
	Engine  *gin.Engine
	config  *configs.AppConfig
	manager *storage.Manager
	sched   *scheduler.Scheduler
	logger  *zerolog.Logger
}

// NewApp 加载配置并初始化追踪、指标、存储、定时任务与路由.
func NewApp(ctx context.Context, configPath string, debug bool) (*App, error) {
	if err := configs.InitConfig(configPath); err != nil {
		return nil, fmt.Errorf("init config: %w", err)
	}

	config := configs.GetConfig()
	debug = debug || config.Server.Debug

	log.Init()
	rule.Init()

	l := log.Logger()
	gin.DefaultWriter = log.NewGinWriter(l, zerolog.InfoLevel)
	gin.DefaultErrorWriter = log.NewGinWriter(l, zerolog.ErrorLevel)

	if err := tracing.InitTracer(config.Tracing); err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}

	if err := metrics.InitMetrics(config.Metrics); err != nil {
		return nil, fmt.Errorf("init metrics: %w", err)
	}

	manager, err := storage.Init(ctx, debug)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	// 其他实例删除文件后同步失效本实例的用量缓存
	files := service.NewFileService(manager.Deps())
	if err := manager.Events.Subscribe(ctx, queue.TopicFileDeleted, "stats-invalidate", files.HandleFileDeleted); err != nil {
		l.Warn().Err(err).Msg("subscribe file deleted events failed, stats cache relies on ttl")
	}

	var sched *scheduler.Scheduler

	if config.Jobs.Enabled {
		sched, err = scheduler.NewScheduler(config.Jobs)
		if err != nil {
			return nil, fmt.Errorf("init scheduler: %w", err)
		}

		if err := jobs.RegisterCronJobs(ctx, sched, manager, config.Jobs); err != nil {
			return nil, fmt.Errorf("register jobs: %w", err)
		}
	}

	return &App{
		Engine:  api.NewEngine(*config, debug, manager, sched),
		config:  config,
		manager: manager,
		sched:   sched,
		logger:  l,
	}, nil
}

// Run 启动 HTTP 服务与调度器，ctx 结束后优雅退出并释放资源.
func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.config.Server.Addr(),
		Handler:           a.Engine,
		ReadHeaderTimeout: a.config.Server.GetTimeoutDuration(),
	}

	if a.sched != nil {
		a.sched.Start()
	}

	errCh := make(chan error, 1)

	go func() {
		a.logger.Info().Str("addr", srv.Addr).Str("version", configs.AppVersion).Msg("filevault listening")

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}

		close(errCh)
	}()

	var runErr error

	select {
	case <-ctx.Done():
		a.logger.Info().Msg("shutting down")
	case runErr = <-errCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	return errors.Join(runErr, a.shutdown(shutdownCtx, srv))
}

func (a *App) shutdown(ctx context.Context, srv *http.Server) error {
	var errs []error

	if err := srv.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("http shutdown: %w", err))
	}

	if a.sched != nil {
		if err := a.sched.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("scheduler stop: %w", err))
		}
	}

	if err := tracing.ShutdownTracer(ctx); err != nil {
		errs = append(errs, fmt.Errorf("tracing shutdown: %w", err))
	}

	if err := a.manager.Close(); err != nil {
		errs = append(errs, fmt.Errorf("storage close: %w", err))
	}

	return errors.Join(errs...)
}

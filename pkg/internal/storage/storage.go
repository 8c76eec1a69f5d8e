// Package storage 聚合进程内的全部存储资源：数据库、KV、消息队列、对象存储句柄与存储路由.
//
// Example:
//
//	mgr, err := storage.New(ctx, *configs.GetConfig(), false)
//	if err != nil {
//	    // 处理错误
//	}
//	defer mgr.Close()
//
//	files := service.NewFileService(mgr.Deps())
package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/yeisme/filevault/pkg/cache"
	"github.com/yeisme/filevault/pkg/configs"
	"github.com/yeisme/filevault/pkg/internal/backend"
	"github.com/yeisme/filevault/pkg/internal/model"
	eventbus "github.com/yeisme/filevault/pkg/internal/mq"
	"github.com/yeisme/filevault/pkg/internal/service"
	"github.com/yeisme/filevault/pkg/internal/store"
	dbc "github.com/yeisme/filevault/pkg/internal/storage/db"
	kvc "github.com/yeisme/filevault/pkg/internal/storage/kv"
	mqc "github.com/yeisme/filevault/pkg/internal/storage/mq"
	s3c "github.com/yeisme/filevault/pkg/internal/storage/s3"
	nlog "github.com/yeisme/filevault/pkg/log"
)

// Manager 聚合所有存储资源.
type Manager struct {
	DB     *dbc.Client
	KV     *kvc.Client
	MQ     *mqc.Client // 类型为 none 时为 nil
	S3     *s3c.Handle // 延迟初始化，未配置凭证时不可用
	Router *backend.Router
	Events *eventbus.Bus
	Cache  *cache.Cache
}

var (
	mgr     *Manager
	mgrErr  error
	mgrOnce sync.Once
)

// Init 使用全局配置初始化默认存储，重复调用只返回已初始化实例.
func Init(ctx context.Context, debug bool) (*Manager, error) {
	mgrOnce.Do(func() {
		mgr, mgrErr = New(ctx, *configs.GetConfig(), debug)
	})

	return mgr, mgrErr
}

// New 按配置创建存储资源. 对象存储只创建句柄，不在启动时连接.
func New(ctx context.Context, cfg configs.AppConfig, debug bool) (*Manager, error) {
	m := &Manager{}

	dbi, err := dbc.New(ctx, cfg.DB, debug)
	if err != nil {
		return nil, err
	}

	m.DB = dbi

	if err := m.DB.Migrate(ctx, model.Models()...); err != nil {
		_ = m.Close()
		return nil, err
	}

	kvi, err := kvc.NewKVClientFromConfig(ctx, cfg.KV)
	if err != nil {
		_ = m.Close()
		return nil, fmt.Errorf("init kv (%s): %w", cfg.KV.Type, err)
	}

	m.KV = kvi
	m.Cache = cache.NewCache(kvi, "fv")

	mqi, err := mqc.New(ctx, cfg.MQ)
	if err != nil {
		_ = m.Close()
		return nil, err
	}

	m.MQ = mqi
	m.Events = eventbus.NewBus(mqi, func() configs.EventsConfig { return configs.GetConfig().Events },
		nlog.Component("events"))

	local, err := backend.NewLocalStore(cfg.Storage.Local, nlog.Component("storage"))
	if err != nil {
		_ = m.Close()
		return nil, err
	}

	m.S3 = s3c.NewHandle(cfg.S3)

	var object *backend.ObjectStore
	if m.S3.Configured() {
		object = backend.NewObjectStore(m.S3, cfg.Storage.PresignExpiry)
	}

	m.Router = backend.NewRouter(local, object, nlog.Component("storage"))

	nlog.Logger().Info().
		Str("mode", string(cfg.Storage.GetMode())).
		Str("local_root", local.Root()).
		Bool("object_configured", m.S3.Configured()).
		Msg("storage manager initialized")

	return m, nil
}

// Deps 返回服务层依赖，配置在每次调用时从全局读取.
func (m *Manager) Deps() service.Deps {
	return service.Deps{
		Files:  store.NewFileStore(m.DB.DB),
		Users:  store.NewUserStore(m.DB.DB),
		Router: m.Router,
		Cache:  m.Cache,
		Events: m.Events,
	}
}

// GetS3Handle 获取对象存储句柄.
func (m *Manager) GetS3Handle() *s3c.Handle {
	return m.S3
}

// GetDBClient 获取 DB 客户端.
func (m *Manager) GetDBClient() *dbc.Client {
	return m.DB
}

// GetKVClient 获取 KV 客户端.
func (m *Manager) GetKVClient() *kvc.Client {
	return m.KV
}

// GetMQClient 获取 MQ 客户端，可能为 nil.
func (m *Manager) GetMQClient() *mqc.Client {
	return m.MQ
}

// Close 释放全部连接.
func (m *Manager) Close() error {
	var errs []error

	if m.MQ != nil {
		errs = append(errs, m.MQ.Close())
	}

	if m.KV != nil {
		errs = append(errs, m.KV.Close())
	}

	if m.DB != nil {
		errs = append(errs, m.DB.Close())
	}

	return errors.Join(errs...)
}

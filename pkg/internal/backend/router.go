// Package backend 实现文件字节的两种存储后端（本地文件系统、S3 兼容对象存储）及其路由.
//
// 后端集合是封闭的：model.Locator 的 Kind 决定由哪个后端处理 Remove 和 AccessURL，
// 存储模式只影响新上传的文件落在哪里.
package backend

import (
	"context"
	"sync"
	"time"

	"github.com/juju/errors"
	"github.com/rs/zerolog"

	"github.com/yeisme/filevault/pkg/configs"
	"github.com/yeisme/filevault/pkg/internal/model"
	"github.com/yeisme/filevault/pkg/metrics"
	"github.com/yeisme/filevault/pkg/tracing"
)

var opDuration = metrics.NewHistogram(
	"storage_op_duration_seconds",
	"Storage backend operation latency",
	[]string{"backend", "op"},
)

// Router 按存储模式选择后端，并按定位符分派删除与取链操作.
// 每次调用都重新判断对象存储是否可用；object 模式回退到本地时，
// 每个 Router 生命周期内只记录一次告警，回退次数由 storage_fallback_total 计数.
type Router struct {
	local  *LocalStore
	object *ObjectStore
	logger *zerolog.Logger

	fallbackOnce sync.Once
}

// NewRouter 创建路由器. object 可以为 nil，表示没有对象存储.
func NewRouter(local *LocalStore, object *ObjectStore, logger *zerolog.Logger) *Router {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	return &Router{local: local, object: object, logger: logger}
}

// Local 返回本地后端.
func (r *Router) Local() *LocalStore {
	return r.local
}

// Select 根据模式决定新文件使用的后端.
func (r *Router) Select(ctx context.Context, mode configs.StorageMode) (model.StorageKind, error) {
	switch mode {
	case configs.StorageLocal:
		return model.StorageLocal, nil
	case configs.StorageAuto:
		if r.object.Available(ctx) {
			return model.StorageObject, nil
		}

		return model.StorageLocal, nil
	case configs.StorageObject:
		if r.object.Available(ctx) {
			return model.StorageObject, nil
		}

		metrics.StorageFallbackTotal.Inc()
		r.fallbackOnce.Do(func() {
			r.logger.Warn().Msg("object storage requested but unavailable, falling back to local storage")
		})

		return model.StorageLocal, nil
	default:
		return "", errors.NotValidf("storage mode %q", mode)
	}
}

// Store 选择后端并写入字节.
func (r *Router) Store(ctx context.Context, mode configs.StorageMode, ownerScope, name string, data []byte, mimeType string) (model.Locator, error) {
	kind, err := r.Select(ctx, mode)
	if err != nil {
		return model.Locator{}, err
	}

	ctx, span := tracing.StartSpan(ctx, "storage.store")
	defer span.End()

	start := time.Now()

	var loc model.Locator

	switch kind {
	case model.StorageLocal:
		loc, err = r.local.Store(ctx, ownerScope, name, data)
	case model.StorageObject:
		loc, err = r.object.Store(ctx, ownerScope, name, data, mimeType)
	}

	opDuration.WithLabelValues(string(kind), "store").Observe(time.Since(start).Seconds())
	tracing.RecordError(span, err)

	if err != nil {
		return model.Locator{}, err
	}

	metrics.UploadsTotal.WithLabelValues(string(kind)).Inc()
	metrics.UploadBytesTotal.WithLabelValues(string(kind)).Add(float64(len(data)))

	return loc, nil
}

// Remove 删除定位符指向的字节；已不存在视为成功.
func (r *Router) Remove(ctx context.Context, loc model.Locator) error {
	if err := loc.Validate(); err != nil {
		return errors.NewNotValid(err, "locator")
	}

	ctx, span := tracing.StartSpan(ctx, "storage.remove")
	defer span.End()

	start := time.Now()

	var err error

	switch loc.Kind {
	case model.StorageLocal:
		err = r.local.Remove(ctx, loc)
	case model.StorageObject:
		if r.object == nil {
			err = errors.NotYetAvailablef("object storage")
		} else {
			err = r.object.Remove(ctx, loc)
		}
	}

	opDuration.WithLabelValues(string(loc.Kind), "remove").Observe(time.Since(start).Seconds())
	tracing.RecordError(span, err)

	if err == nil {
		metrics.DeletesTotal.WithLabelValues(string(loc.Kind)).Inc()
	}

	return err
}

// AccessURL 本地文件返回站内下载路径，对象返回签名 URL.
func (r *Router) AccessURL(ctx context.Context, loc model.Locator, displayName string) (string, error) {
	if err := loc.Validate(); err != nil {
		return "", errors.NewNotValid(err, "locator")
	}

	switch loc.Kind {
	case model.StorageLocal:
		return r.local.AccessURL(loc)
	case model.StorageObject:
		if r.object == nil {
			return "", errors.NotYetAvailablef("object storage")
		}

		return r.object.AccessURL(ctx, loc, displayName)
	default:
		return "", errors.NotValidf("storage kind %q", loc.Kind)
	}
}

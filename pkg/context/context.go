// Package context 拓展上下文功能，把存储管理器与当前用户放进请求上下文，方便在各层之间传递.
package context

import (
	"context"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"

	"github.com/yeisme/filevault/pkg/internal/model"
	"github.com/yeisme/filevault/pkg/internal/storage"
)

type ContextKey string

const (
	StorageManagerKey ContextKey = "storageManager"
	UserKey           ContextKey = "user"
)

// WithStorageManager 将 Manager 存储到 context 中.
func WithStorageManager(ctx context.Context, mgr *storage.Manager) context.Context {
	return context.WithValue(ctx, StorageManagerKey, mgr)
}

// GetManager 从 context 中获取 Manager.
func GetManager(ctx context.Context) *storage.Manager {
	if mgr, ok := ctx.Value(StorageManagerKey).(*storage.Manager); ok {
		return mgr
	}

	return nil
}

// WithUser 保存已认证的用户.
func WithUser(ctx context.Context, u *model.User) context.Context {
	return context.WithValue(ctx, UserKey, u)
}

// GetUser 返回已认证的用户，未认证时为 nil.
func GetUser(ctx context.Context) *model.User {
	if u, ok := ctx.Value(UserKey).(*model.User); ok {
		return u
	}

	return nil
}

// WithTraceContext 创建带有追踪上下文的logger.
func WithTraceContext(ctx context.Context, logger zerolog.Logger) zerolog.Logger {
	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		return logger.With().
			Str("trace_id", span.SpanContext().TraceID().String()).
			Str("span_id", span.SpanContext().SpanID().String()).
			Logger()
	}

	return logger
}

// Package dbtest 为测试提供迁移好的临时 SQLite 数据库.
package dbtest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/yeisme/filevault/pkg/configs"
	"github.com/yeisme/filevault/pkg/internal/model"
	"github.com/yeisme/filevault/pkg/internal/storage/db"
)

// New 在 t.TempDir() 中打开数据库并迁移全部模型，测试结束时关闭.
func New(t testing.TB) *db.Client {
	t.Helper()

	ctx := context.Background()
	cfg := configs.DBConfig{
		Type:         configs.SQLite,
		Database:     filepath.Join(t.TempDir(), "filevault"),
		MaxIdleConns: 2,
	}

	client, err := db.New(ctx, cfg, false)
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}

	t.Cleanup(func() { _ = client.Close() })

	if err := client.Migrate(ctx, model.Models()...); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}

	return client
}

package service_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yeisme/filevault/pkg/cache"
	"github.com/yeisme/filevault/pkg/configs"
	"github.com/yeisme/filevault/pkg/internal/backend"
	"github.com/yeisme/filevault/pkg/internal/model"
	"github.com/yeisme/filevault/pkg/internal/service"
	"github.com/yeisme/filevault/pkg/internal/storage/db/dbtest"
	"github.com/yeisme/filevault/pkg/internal/storage/kv"
	"github.com/yeisme/filevault/pkg/internal/store"
)

type env struct {
	cfg    configs.AppConfig
	root   string
	deps   service.Deps
	files  *service.FileService
	shares *service.ShareService
	users  *service.UserService

	alice, bob, carol *model.User
}

func newEnv(t *testing.T) *env {
	t.Helper()

	ctx := context.Background()
	client := dbtest.New(t)

	e := &env{cfg: configs.Default(), root: t.TempDir()}
	e.cfg.Storage.Mode = configs.StorageLocal
	e.cfg.Storage.MaxFileSize = 1024
	e.cfg.Storage.Local.Root = e.root

	local, err := backend.NewLocalStore(e.cfg.Storage.Local, nil)
	require.NoError(t, err)

	memKV, err := kv.NewMemoryKV(ctx, nil)
	require.NoError(t, err)

	e.deps = service.Deps{
		Files:  store.NewFileStore(client.DB),
		Users:  store.NewUserStore(client.DB),
		Router: backend.NewRouter(local, nil, nil),
		Cache:  cache.NewCache(memKV, "fv"),
		Config: func() *configs.AppConfig { return &e.cfg },
	}
	e.files = service.NewFileService(e.deps)
	e.shares = service.NewShareService(e.deps)
	e.users = service.NewUserService(e.deps)

	e.alice, err = e.users.Sync(ctx, store.Identity{Email: "alice@example.com", Name: "Alice"})
	require.NoError(t, err)
	e.bob, err = e.users.Sync(ctx, store.Identity{Email: "bob@example.com", Name: "Bob"})
	require.NoError(t, err)
	e.carol, err = e.users.Sync(ctx, store.Identity{Email: "carol@example.com", Name: "Carol"})
	require.NoError(t, err)

	return e
}

func (e *env) upload(t *testing.T, owner *model.User, name, content string) *model.File {
	t.Helper()

	f, err := e.files.Upload(context.Background(), service.UploadInput{
		OwnerID:      owner.ID,
		OriginalName: name,
		MimeType:     "text/plain",
		Data:         []byte(content),
	})
	require.NoError(t, err)

	return f
}

// countFiles 统计本地根目录下的文件数量.
func countFiles(t *testing.T, root string) int {
	t.Helper()

	n := 0
	err := filepath.WalkDir(root, func(_ string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if !d.IsDir() {
			n++
		}

		return nil
	})
	require.NoError(t, err)

	return n
}

package store_test

import (
	"context"
	"testing"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeisme/filevault/pkg/internal/model"
	"github.com/yeisme/filevault/pkg/internal/storage/db/dbtest"
	"github.com/yeisme/filevault/pkg/internal/store"
)

type fixture struct {
	files *store.FileStore
	users *store.UserStore
	alice *model.User
	bob   *model.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	client := dbtest.New(t)
	f := &fixture{
		files: store.NewFileStore(client.DB),
		users: store.NewUserStore(client.DB),
	}

	var err error

	f.alice, err = f.users.FindOrCreate(context.Background(), store.Identity{Email: "Alice@Example.com", Name: "Alice"})
	require.NoError(t, err)

	f.bob, err = f.users.FindOrCreate(context.Background(), store.Identity{Email: "bob@example.com"})
	require.NoError(t, err)

	return f
}

func (f *fixture) create(t *testing.T, owner, name string) *model.File {
	t.Helper()

	file := &model.File{
		OwnerID:      owner,
		Filename:     name,
		OriginalName: name,
		Size:         3,
		MimeType:     "text/plain",
	}
	file.SetLocator(model.LocalLocator(owner + "/" + name))

	require.NoError(t, f.files.Create(context.Background(), file))

	return file
}

func TestFileStore_CreateConflict(t *testing.T) {
	f := newFixture(t)
	f.create(t, f.alice.ID, "doc.txt")

	dup := &model.File{OwnerID: f.alice.ID, Filename: "doc.txt", OriginalName: "doc.txt", MimeType: "text/plain"}
	dup.SetLocator(model.LocalLocator(f.alice.ID + "/doc.other.txt"))

	err := f.files.Create(context.Background(), dup)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.AlreadyExists), "got %v", err)

	// 其他用户可以使用同名文件
	f.create(t, f.bob.ID, "doc.txt")
}

func TestFileStore_CreateRejectsInconsistentLocator(t *testing.T) {
	f := newFixture(t)

	bad := &model.File{
		OwnerID:     f.alice.ID,
		Filename:    "x.bin",
		MimeType:    "application/octet-stream",
		StorageKind: model.StorageObject,
		LocalPath:   "a/x.bin",
	}

	err := f.files.Create(context.Background(), bad)
	assert.True(t, errors.Is(err, errors.NotValid), "got %v", err)
}

func TestFileStore_FindByID(t *testing.T) {
	f := newFixture(t)
	created := f.create(t, f.alice.ID, "a.txt")

	got, err := f.files.FindByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "a.txt", got.Filename)
	assert.Equal(t, model.LocalLocator(f.alice.ID+"/a.txt"), got.Locator())

	_, err = f.files.FindByID(context.Background(), "missing")
	assert.True(t, errors.Is(err, errors.NotFound))
}

func TestFileStore_FindByOwnerOrder(t *testing.T) {
	f := newFixture(t)
	f.create(t, f.alice.ID, "first.txt")
	f.create(t, f.alice.ID, "second.txt")
	f.create(t, f.alice.ID, "third.txt")
	f.create(t, f.bob.ID, "other.txt")

	files, err := f.files.FindByOwner(context.Background(), f.alice.ID)
	require.NoError(t, err)
	require.Len(t, files, 3)
	assert.Equal(t, "third.txt", files[0].Filename)
	assert.Equal(t, "first.txt", files[2].Filename)
}

func TestFileStore_Search(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.create(t, f.alice.ID, "Report-2024.pdf")
	f.create(t, f.alice.ID, "notes.txt")
	f.create(t, f.alice.ID, "100%_done.txt")
	f.create(t, f.bob.ID, "report-bob.pdf")

	files, err := f.files.Search(ctx, f.alice.ID, "REPORT", 0)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "Report-2024.pdf", files[0].Filename)

	// 通配符按字面匹配
	files, err = f.files.Search(ctx, f.alice.ID, "%_", 0)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "100%_done.txt", files[0].Filename)

	files, err = f.files.Search(ctx, f.alice.ID, "_", 0)
	require.NoError(t, err)
	assert.Len(t, files, 1)
}

func TestFileStore_SearchLimit(t *testing.T) {
	f := newFixture(t)

	for i := 0; i < store.SearchLimit+5; i++ {
		f.create(t, f.alice.ID, model.NewSuffix()+".log")
	}

	files, err := f.files.Search(context.Background(), f.alice.ID, ".log", 1000)
	require.NoError(t, err)
	assert.Len(t, files, store.SearchLimit)
}

func TestFileStore_Rename(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a := f.create(t, f.alice.ID, "a.txt")
	f.create(t, f.alice.ID, "b.txt")

	_, err := f.files.Rename(ctx, a.ID, f.alice.ID, "b.txt")
	assert.True(t, errors.Is(err, errors.AlreadyExists), "got %v", err)

	_, err = f.files.Rename(ctx, a.ID, f.bob.ID, "c.txt")
	assert.True(t, errors.Is(err, errors.Forbidden), "got %v", err)

	_, err = f.files.Rename(ctx, "missing", f.alice.ID, "c.txt")
	assert.True(t, errors.Is(err, errors.NotFound), "got %v", err)

	// 改成自己的名字不算冲突
	same, err := f.files.Rename(ctx, a.ID, f.alice.ID, "a.txt")
	require.NoError(t, err)
	assert.Equal(t, "a.txt", same.Filename)

	renamed, err := f.files.Rename(ctx, a.ID, f.alice.ID, "c.txt")
	require.NoError(t, err)
	assert.Equal(t, "c.txt", renamed.Filename)
	assert.Equal(t, "a.txt", renamed.OriginalName)
	assert.Equal(t, a.Locator(), renamed.Locator())

	// 旧名称被释放
	f.create(t, f.alice.ID, "a.txt")
}

func TestFileStore_DeleteFreesNameAndShares(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a := f.create(t, f.alice.ID, "a.txt")
	require.NoError(t, f.files.AddShare(ctx, a.ID, f.bob.ID))

	require.NoError(t, f.files.Delete(ctx, a.ID))

	_, err := f.files.FindByID(ctx, a.ID)
	assert.True(t, errors.Is(err, errors.NotFound))

	shared, err := f.files.FindSharedWith(ctx, f.bob.ID)
	require.NoError(t, err)
	assert.Empty(t, shared)

	err = f.files.Delete(ctx, a.ID)
	assert.True(t, errors.Is(err, errors.NotFound))

	f.create(t, f.alice.ID, "a.txt")
}

func TestFileStore_Shares(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a := f.create(t, f.alice.ID, "a.txt")

	require.NoError(t, f.files.AddShare(ctx, a.ID, f.bob.ID))

	err := f.files.AddShare(ctx, a.ID, f.bob.ID)
	assert.True(t, errors.Is(err, errors.AlreadyExists), "got %v", err)

	got, err := f.files.FindByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{f.bob.ID}, got.SharedWith())
	assert.True(t, got.IsSharedWith(f.bob.ID))

	recipients, err := f.files.Recipients(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, recipients, 1)
	assert.Equal(t, "bob@example.com", recipients[0].Email)

	shared, err := f.files.FindSharedWith(ctx, f.bob.ID)
	require.NoError(t, err)
	require.Len(t, shared, 1)
	assert.Equal(t, a.ID, shared[0].ID)

	require.NoError(t, f.files.RemoveShare(ctx, a.ID, f.bob.ID))
	require.NoError(t, f.files.RemoveShare(ctx, a.ID, f.bob.ID))

	recipients, err = f.files.Recipients(ctx, a.ID)
	require.NoError(t, err)
	assert.Empty(t, recipients)
}

func TestFileStore_LocalPathsAndSummary(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.create(t, f.alice.ID, "a.txt")
	f.create(t, f.alice.ID, "b.txt")

	obj := &model.File{OwnerID: f.alice.ID, Filename: "c.bin", OriginalName: "c.bin", Size: 10, MimeType: "application/octet-stream"}
	obj.SetLocator(model.ObjectLocator(f.alice.ID + "/c.bin"))
	require.NoError(t, f.files.Create(ctx, obj))

	paths, err := f.files.LocalPathsByOwner(ctx, f.alice.ID)
	require.NoError(t, err)
	assert.Len(t, paths, 2)
	assert.Contains(t, paths, f.alice.ID+"/a.txt")

	got, err := f.files.FindByLocalPath(ctx, f.alice.ID+"/b.txt")
	require.NoError(t, err)
	assert.Equal(t, "b.txt", got.Filename)

	summary, err := f.files.SummaryByOwner(ctx, f.alice.ID)
	require.NoError(t, err)
	assert.Equal(t, []store.KindSummary{
		{StorageKind: model.StorageLocal, Files: 2, Bytes: 6},
		{StorageKind: model.StorageObject, Files: 1, Bytes: 10},
	}, summary)
}

func TestUserStore_FindOrCreate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	assert.Equal(t, "alice@example.com", f.alice.Email)
	assert.Equal(t, "bob", f.bob.Name)

	again, err := f.users.FindOrCreate(ctx, store.Identity{Email: " ALICE@example.com ", GoogleID: "g-1", Avatar: "https://a/img.png"})
	require.NoError(t, err)
	assert.Equal(t, f.alice.ID, again.ID)
	assert.Equal(t, "Alice", again.Name)
	assert.Equal(t, "https://a/img.png", again.Avatar)
	require.NotNil(t, again.GoogleID)

	byGoogle, err := f.users.FindOrCreate(ctx, store.Identity{Email: "changed@example.com", GoogleID: "g-1"})
	require.NoError(t, err)
	assert.Equal(t, f.alice.ID, byGoogle.ID)

	byEmail, err := f.users.FindByEmail(ctx, "BOB@EXAMPLE.COM")
	require.NoError(t, err)
	assert.Equal(t, f.bob.ID, byEmail.ID)

	_, err = f.users.FindByEmail(ctx, "nobody@example.com")
	assert.True(t, errors.Is(err, errors.NotFound))

	_, err = f.users.FindOrCreate(ctx, store.Identity{Email: "  "})
	assert.True(t, errors.Is(err, errors.NotValid))
}

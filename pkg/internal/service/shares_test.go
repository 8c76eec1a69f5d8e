package service_test

import (
	"context"
	"testing"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeisme/filevault/pkg/internal/service"
)

func TestShare_DuplicateIsConflict(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	f := e.upload(t, e.alice, "a.txt", "x")

	shared, err := e.shares.Share(ctx, f.ID, e.alice.ID, "BOB@example.com")
	require.NoError(t, err)
	assert.Equal(t, []string{e.bob.ID}, shared.SharedWith())

	_, err = e.shares.Share(ctx, f.ID, e.alice.ID, "bob@example.com")
	assert.True(t, errors.Is(err, errors.AlreadyExists), "got %v", err)
}

func TestUnshare_Idempotent(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	f := e.upload(t, e.alice, "a.txt", "x")
	_, err := e.shares.Share(ctx, f.ID, e.alice.ID, "bob@example.com")
	require.NoError(t, err)

	got, err := e.shares.Unshare(ctx, f.ID, e.alice.ID, "bob@example.com")
	require.NoError(t, err)
	assert.Empty(t, got.SharedWith())

	got, err = e.shares.Unshare(ctx, f.ID, e.alice.ID, "bob@example.com")
	require.NoError(t, err)
	assert.Empty(t, got.SharedWith())

	_, err = e.shares.Unshare(ctx, f.ID, e.alice.ID, "nobody@example.com")
	require.NoError(t, err)
}

func TestShare_SelfShareRejected(t *testing.T) {
	e := newEnv(t)

	f := e.upload(t, e.alice, "a.txt", "x")

	_, err := e.shares.Share(context.Background(), f.ID, e.alice.ID, "alice@example.com")
	assert.True(t, errors.Is(err, errors.NotValid), "got %v", err)
}

func TestShare_Resolution(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	f := e.upload(t, e.alice, "a.txt", "x")

	_, err := e.shares.Share(ctx, "missing", e.alice.ID, "bob@example.com")
	assert.True(t, errors.Is(err, errors.NotFound), "got %v", err)

	_, err = e.shares.Share(ctx, f.ID, e.bob.ID, "carol@example.com")
	assert.True(t, errors.Is(err, errors.Forbidden), "got %v", err)

	_, err = e.shares.Share(ctx, f.ID, e.alice.ID, "nobody@example.com")
	assert.True(t, errors.Is(err, errors.NotFound), "got %v", err)
}

func TestAccess_RecipientReadsButCannotMutate(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	f := e.upload(t, e.alice, "a.txt", "x")
	_, err := e.shares.Share(ctx, f.ID, e.alice.ID, "bob@example.com")
	require.NoError(t, err)

	// 接收者可读、可取下载链接
	got, err := e.files.Get(ctx, f.ID, e.bob.ID)
	require.NoError(t, err)
	assert.True(t, service.CanRead(e.bob.ID, got))
	assert.False(t, service.CanMutate(e.bob.ID, got))

	_, err = e.files.DownloadURL(ctx, f.ID, e.bob.ID)
	require.NoError(t, err)

	shared, err := e.files.Shared(ctx, e.bob.ID)
	require.NoError(t, err)
	require.Len(t, shared, 1)
	assert.Equal(t, f.ID, shared[0].ID)

	// 但不能改名、删除、管理共享或查看接收者
	_, err = e.files.Rename(ctx, f.ID, e.bob.ID, "b.txt")
	assert.True(t, errors.Is(err, errors.Forbidden))

	_, err = e.shares.Share(ctx, f.ID, e.bob.ID, "carol@example.com")
	assert.True(t, errors.Is(err, errors.Forbidden))

	_, err = e.shares.Unshare(ctx, f.ID, e.bob.ID, "bob@example.com")
	assert.True(t, errors.Is(err, errors.Forbidden))

	_, err = e.shares.Sharing(ctx, f.ID, e.bob.ID)
	assert.True(t, errors.Is(err, errors.Forbidden))

	// 局外人没有任何权限
	_, err = e.files.Get(ctx, f.ID, e.carol.ID)
	assert.True(t, errors.Is(err, errors.Forbidden))
}

func TestSharing_ListsRecipients(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	f := e.upload(t, e.alice, "a.txt", "x")

	_, err := e.shares.Share(ctx, f.ID, e.alice.ID, "bob@example.com")
	require.NoError(t, err)
	_, err = e.shares.Share(ctx, f.ID, e.alice.ID, "carol@example.com")
	require.NoError(t, err)

	users, err := e.shares.Sharing(ctx, f.ID, e.alice.ID)
	require.NoError(t, err)
	require.Len(t, users, 2)

	emails := []string{users[0].Email, users[1].Email}
	assert.ElementsMatch(t, []string{"bob@example.com", "carol@example.com"}, emails)
}

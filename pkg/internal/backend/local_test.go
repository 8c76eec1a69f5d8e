package backend_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeisme/filevault/pkg/configs"
	"github.com/yeisme/filevault/pkg/internal/backend"
	"github.com/yeisme/filevault/pkg/internal/model"
)

func newLocal(t *testing.T) *backend.LocalStore {
	t.Helper()

	s, err := backend.NewLocalStore(configs.LocalStorageConfig{
		Root:           t.TempDir(),
		DownloadPrefix: "/api/v1/blobs/",
	}, nil)
	require.NoError(t, err)

	return s
}

func TestLocalStore_StoreWritesUnderOwnerScope(t *testing.T) {
	s := newLocal(t)

	loc, err := s.Store(context.Background(), "owner1", "notes.txt", []byte("hello"))
	require.NoError(t, err)
	require.NoError(t, loc.Validate())
	assert.Equal(t, model.StorageLocal, loc.Kind)
	assert.Equal(t, "owner1/notes.txt", loc.Path)

	got, err := os.ReadFile(filepath.Join(s.Root(), "owner1", "notes.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(got))
}

func TestLocalStore_NeverOverwrites(t *testing.T) {
	s := newLocal(t)
	ctx := context.Background()

	first, err := s.Store(ctx, "owner1", "a.txt", []byte("first"))
	require.NoError(t, err)

	second, err := s.Store(ctx, "owner1", "a.txt", []byte("second"))
	require.NoError(t, err)

	assert.NotEqual(t, first.Path, second.Path)
	assert.True(t, strings.HasPrefix(second.Path, "owner1/a."))
	assert.True(t, strings.HasSuffix(second.Path, ".txt"))

	p1, _ := s.Resolve(first.Path)
	p2, _ := s.Resolve(second.Path)
	b1, _ := os.ReadFile(p1)
	b2, _ := os.ReadFile(p2)
	assert.Equal(t, "first", string(b1))
	assert.Equal(t, "second", string(b2))
}

func TestLocalStore_RemoveIsIdempotent(t *testing.T) {
	s := newLocal(t)
	ctx := context.Background()

	loc, err := s.Store(ctx, "owner1", "gone.bin", []byte{1, 2, 3})
	require.NoError(t, err)

	require.NoError(t, s.Remove(ctx, loc))
	require.NoError(t, s.Remove(ctx, loc), "second remove of an absent file must succeed")

	full, _ := s.Resolve(loc.Path)
	_, err = os.Stat(full)
	assert.True(t, os.IsNotExist(err))
}

func TestLocalStore_AccessURL(t *testing.T) {
	s := newLocal(t)

	u, err := s.AccessURL(model.LocalLocator("owner1/my report.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "/api/v1/blobs/owner1/my%20report.pdf", u)
}

func TestLocalStore_RejectsEscapingPaths(t *testing.T) {
	s := newLocal(t)
	ctx := context.Background()

	_, err := s.Store(ctx, "..", "x.txt", []byte("x"))
	assert.True(t, errors.Is(err, errors.NotValid))

	_, err = s.Store(ctx, "owner1", "../x.txt", []byte("x"))
	assert.True(t, errors.Is(err, errors.NotValid))

	_, err = s.Resolve("../../etc/passwd")
	assert.Error(t, err)

	_, err = s.Resolve("owner1")
	assert.Error(t, err)
}

func TestLocalStore_WalkSkipsNothingButLeavesNoTemp(t *testing.T) {
	s := newLocal(t)
	ctx := context.Background()

	_, err := s.Store(ctx, "o1", "a.txt", []byte("a"))
	require.NoError(t, err)
	_, err = s.Store(ctx, "o2", "b.txt", []byte("b"))
	require.NoError(t, err)

	var seen []string

	require.NoError(t, s.Walk(ctx, func(f backend.LocalFile) error {
		assert.False(t, f.Temp, "temp file left behind: %s", f.Path)
		seen = append(seen, f.Path)

		return nil
	}))
	assert.ElementsMatch(t, []string{"o1/a.txt", "o2/b.txt"}, seen)
}

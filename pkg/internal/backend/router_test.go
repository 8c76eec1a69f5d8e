package backend_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	jujuerrors "github.com/juju/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeisme/filevault/pkg/configs"
	"github.com/yeisme/filevault/pkg/internal/backend"
	"github.com/yeisme/filevault/pkg/internal/model"
	"github.com/yeisme/filevault/pkg/internal/storage/s3"
)

func newRouter(t *testing.T, handle *s3.Handle) (*backend.Router, *bytes.Buffer) {
	t.Helper()

	var buf bytes.Buffer

	logger := zerolog.New(&buf)

	return backend.NewRouter(newLocal(t), backend.NewObjectStore(handle, time.Hour), &logger), &buf
}

func TestRouter_SelectLocal(t *testing.T) {
	r, _ := newRouter(t, s3.NewHandle(configs.S3Config{}))

	kind, err := r.Select(context.Background(), configs.StorageLocal)
	require.NoError(t, err)
	assert.Equal(t, model.StorageLocal, kind)
}

func TestRouter_ObjectFallbackLogsOnce(t *testing.T) {
	r, buf := newRouter(t, s3.NewHandle(configs.S3Config{}))
	ctx := context.Background()

	for range 3 {
		loc, err := r.Store(ctx, configs.StorageObject, "owner1", "a.txt", []byte("a"), "text/plain")
		require.NoError(t, err)
		assert.Equal(t, model.StorageLocal, loc.Kind)
	}

	assert.Equal(t, 1, strings.Count(buf.String(), "falling back to local storage"))
}

func TestRouter_AutoPrefersObjectWhenAvailable(t *testing.T) {
	c, err := s3.NewClient(configs.S3Config{
		Endpoint: "localhost:9000", AccessKeyID: "ak", SecretAccessKey: "sk",
		BucketName: "filevault", Region: "us-east-1",
	})
	require.NoError(t, err)

	r, buf := newRouter(t, s3.NewHandleWithClient(c))

	kind, err := r.Select(context.Background(), configs.StorageAuto)
	require.NoError(t, err)
	assert.Equal(t, model.StorageObject, kind)
	assert.Empty(t, buf.String())
}

func TestRouter_AutoWithoutObjectIsSilent(t *testing.T) {
	r, buf := newRouter(t, s3.NewHandle(configs.S3Config{}))

	kind, err := r.Select(context.Background(), configs.StorageAuto)
	require.NoError(t, err)
	assert.Equal(t, model.StorageLocal, kind)
	assert.Empty(t, buf.String())
}

func TestRouter_ReevaluatesAvailabilityEachCall(t *testing.T) {
	var attempts atomic.Int32

	cfg := configs.S3Config{AccessKeyID: "ak", SecretAccessKey: "sk", BucketName: "filevault", Region: "us-east-1", Endpoint: "localhost:9000"}
	handle := s3.NewHandleFunc(cfg, func(_ context.Context, cfg configs.S3Config) (*s3.Client, error) {
		if attempts.Add(1) == 1 {
			return nil, errors.New("connection refused")
		}

		return s3.NewClient(cfg)
	})

	r, _ := newRouter(t, handle)
	ctx := context.Background()

	kind, err := r.Select(ctx, configs.StorageObject)
	require.NoError(t, err)
	assert.Equal(t, model.StorageLocal, kind)

	kind, err = r.Select(ctx, configs.StorageObject)
	require.NoError(t, err)
	assert.Equal(t, model.StorageObject, kind)

	_, err = r.Select(ctx, configs.StorageObject)
	require.NoError(t, err)
	assert.Equal(t, int32(2), attempts.Load(), "successful init is reused")
}

func TestRouter_UnknownMode(t *testing.T) {
	r, _ := newRouter(t, s3.NewHandle(configs.S3Config{}))

	_, err := r.Select(context.Background(), configs.StorageMode("tape"))
	assert.True(t, jujuerrors.Is(err, jujuerrors.NotValid))
}

func TestRouter_DispatchByLocatorKind(t *testing.T) {
	r, _ := newRouter(t, s3.NewHandle(configs.S3Config{}))
	ctx := context.Background()

	loc, err := r.Store(ctx, configs.StorageLocal, "owner1", "x.txt", []byte("x"), "text/plain")
	require.NoError(t, err)

	u, err := r.AccessURL(ctx, loc, "x.txt")
	require.NoError(t, err)
	assert.Equal(t, "/api/v1/blobs/owner1/x.txt", u)
	require.NoError(t, r.Remove(ctx, loc))

	// 对象定位符在对象存储不可用时不能回退到本地
	err = r.Remove(ctx, model.ObjectLocator("owner1/x.txt"))
	assert.True(t, jujuerrors.Is(err, jujuerrors.NotYetAvailable))

	_, err = r.AccessURL(ctx, model.ObjectLocator("owner1/x.txt"), "x.txt")
	assert.True(t, jujuerrors.Is(err, jujuerrors.NotYetAvailable))

	err = r.Remove(ctx, model.Locator{Kind: model.StorageLocal, Key: "k"})
	assert.True(t, jujuerrors.Is(err, jujuerrors.NotValid))
}

package backend_test

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeisme/filevault/pkg/configs"
	"github.com/yeisme/filevault/pkg/internal/backend"
	"github.com/yeisme/filevault/pkg/internal/model"
	"github.com/yeisme/filevault/pkg/internal/storage/s3"
)

func TestObjectStore_AccessURLIsSignedWithDisposition(t *testing.T) {
	c, err := s3.NewClient(configs.S3Config{
		Endpoint:        "localhost:9000",
		AccessKeyID:     "ak",
		SecretAccessKey: "sk",
		BucketName:      "filevault",
		Region:          "us-east-1",
	})
	require.NoError(t, err)

	store := backend.NewObjectStore(s3.NewHandleWithClient(c), time.Hour)

	raw, err := store.AccessURL(context.Background(), model.ObjectLocator("owner1/report.pdf"), "report.pdf")
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)

	q := u.Query()
	assert.Equal(t, "3600", q.Get("X-Amz-Expires"))
	assert.Equal(t, `attachment; filename="report.pdf"`, q.Get("response-content-disposition"))
	assert.NotEmpty(t, q.Get("X-Amz-Signature"))
	assert.True(t, strings.HasSuffix(u.Path, "/owner1/report.pdf"), u.Path)
}

func TestObjectStore_NotConfiguredFailsFast(t *testing.T) {
	store := backend.NewObjectStore(s3.NewHandle(configs.S3Config{BucketName: "filevault"}), time.Hour)
	ctx := context.Background()

	assert.False(t, store.Available(ctx))

	_, err := store.Store(ctx, "owner1", "a.txt", []byte("a"), "text/plain")
	assert.True(t, errors.Is(err, errors.NotYetAvailable), "got %v", err)

	err = store.Remove(ctx, model.ObjectLocator("owner1/a.txt"))
	assert.True(t, errors.Is(err, errors.NotYetAvailable), "got %v", err)

	_, err = store.AccessURL(ctx, model.ObjectLocator("owner1/a.txt"), "a.txt")
	assert.True(t, errors.Is(err, errors.NotYetAvailable), "got %v", err)
}

func TestContentDisposition(t *testing.T) {
	assert.Equal(t, `attachment; filename="a \"b\".txt"`, backend.ContentDisposition(`a "b".txt`))
	assert.Equal(t,
		`attachment; filename="résumé.pdf"; filename*=UTF-8''r%C3%A9sum%C3%A9.pdf`,
		backend.ContentDisposition("résumé.pdf"))
}

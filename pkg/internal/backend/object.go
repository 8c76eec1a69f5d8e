package backend

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	minio "github.com/minio/minio-go/v7"

	"github.com/yeisme/filevault/pkg/internal/model"
	"github.com/yeisme/filevault/pkg/internal/storage/s3"
)

// ObjectStore S3 兼容对象存储后端，键为 <ownerScope>/<name>.
type ObjectStore struct {
	handle *s3.Handle
	expiry time.Duration
}

// NewObjectStore 创建对象存储后端，客户端在首次使用时由 handle 初始化.
func NewObjectStore(handle *s3.Handle, presignExpiry time.Duration) *ObjectStore {
	if presignExpiry <= 0 {
		presignExpiry = time.Hour
	}

	return &ObjectStore{handle: handle, expiry: presignExpiry}
}

// Available 对象存储是否已配置且可初始化.
func (s *ObjectStore) Available(ctx context.Context) bool {
	return s != nil && s.handle.Available(ctx)
}

// Store 上传对象. 键已存在时改用带唯一后缀的键，不覆盖已有对象.
func (s *ObjectStore) Store(ctx context.Context, ownerScope, name string, data []byte, mimeType string) (model.Locator, error) {
	c, err := s.handle.Client(ctx)
	if err != nil {
		return model.Locator{}, err
	}

	if err := checkSegment(ownerScope); err != nil {
		return model.Locator{}, err
	}

	if err := checkSegment(name); err != nil {
		return model.Locator{}, err
	}

	key := path.Join(ownerScope, name)

	taken, err := objectExists(ctx, c, key)
	if err != nil {
		return model.Locator{}, err
	}

	if taken {
		key = path.Join(ownerScope, uniqueVariant(name))
	}

	_, err = c.PutObject(ctx, c.Bucket(), key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: mimeType,
	})
	if err != nil {
		return model.Locator{}, fmt.Errorf("put object %s: %w", key, err)
	}

	return model.ObjectLocator(key), nil
}

// Remove 删除对象，S3 删除本身幂等.
func (s *ObjectStore) Remove(ctx context.Context, loc model.Locator) error {
	c, err := s.handle.Client(ctx)
	if err != nil {
		return err
	}

	if err := c.RemoveObject(ctx, c.Bucket(), loc.Key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove object %s: %w", loc.Key, err)
	}

	return nil
}

// AccessURL 生成带下载文件名提示的限时签名 URL.
func (s *ObjectStore) AccessURL(ctx context.Context, loc model.Locator, displayName string) (string, error) {
	c, err := s.handle.Client(ctx)
	if err != nil {
		return "", err
	}

	params := url.Values{}
	params.Set("response-content-disposition", ContentDisposition(displayName))

	u, err := c.PresignedGetObject(ctx, c.Bucket(), loc.Key, s.expiry, params)
	if err != nil {
		return "", fmt.Errorf("presign get for %s: %w", loc.Key, err)
	}

	return u.String(), nil
}

func objectExists(ctx context.Context, c *s3.Client, key string) (bool, error) {
	_, err := c.StatObject(ctx, c.Bucket(), key, minio.StatObjectOptions{})
	if err == nil {
		return true, nil
	}

	if minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return false, nil
	}

	return false, fmt.Errorf("stat object %s: %w", key, err)
}

// ContentDisposition 构造 attachment 头，非 ASCII 文件名额外带 RFC 5987 编码.
func ContentDisposition(name string) string {
	quoted := strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(name)
	v := `attachment; filename="` + quoted + `"`

	for _, r := range name {
		if r > 127 {
			return v + "; filename*=UTF-8''" + url.PathEscape(name)
		}
	}

	return v
}

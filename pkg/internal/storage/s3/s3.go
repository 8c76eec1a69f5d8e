// Package s3 处理S3兼容对象存储的连接.
package s3

import (
	"context"
	"fmt"
	"net/url"
	"sync"

	"github.com/juju/errors"
	minio "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/yeisme/filevault/pkg/configs"
	nlog "github.com/yeisme/filevault/pkg/log"
)

// Client 包装 MinIO 客户端，绑定一个存储桶.
type Client struct {
	*minio.Client
	bucket string
	region string
}

// NewClient 只构建客户端，不做任何网络请求.
func NewClient(cfg configs.S3Config) (*Client, error) {
	endpoint := cfg.Endpoint
	// 允许用户传完整 schema endpoint（http:// 或 https://）
	if u, err := url.Parse(endpoint); err == nil && u.Host != "" {
		endpoint = u.Host
		cfg.UseSSL = u.Scheme == "https"
	}

	cli, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	cli.SetAppInfo("filevault", configs.AppVersion)

	return &Client{Client: cli, bucket: cfg.BucketName, region: cfg.Region}, nil
}

// New 初始化客户端，若 bucket 不存在则尝试创建.
func New(ctx context.Context, cfg configs.S3Config) (*Client, error) {
	c, err := NewClient(cfg)
	if err != nil {
		return nil, err
	}

	exists, err := c.BucketExists(ctx, c.bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", c.bucket, err)
	}

	if !exists {
		if err := c.MakeBucket(ctx, c.bucket, minio.MakeBucketOptions{Region: c.region}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", c.bucket, err)
		}

		nlog.Logger().Info().Str("bucket", c.bucket).Msg("bucket created")
	}

	nlog.Logger().Info().Str("endpoint", cfg.Endpoint).Str("bucket", c.bucket).Msg("s3 connected")

	return c, nil
}

// Bucket 返回绑定的存储桶名称.
func (c *Client) Bucket() string {
	return c.bucket
}

// HealthCheck 检查存储桶是否可访问.
func (c *Client) HealthCheck(ctx context.Context) error {
	ok, err := c.BucketExists(ctx, c.bucket)
	if err != nil {
		return err
	}

	if !ok {
		return fmt.Errorf("bucket %s does not exist", c.bucket)
	}

	return nil
}

// Handle 是对象存储客户端的懒加载句柄.
// 未配置凭证时永远不可用；初始化失败不缓存，下次调用重试；成功后复用同一客户端.
type Handle struct {
	cfg     configs.S3Config
	connect func(ctx context.Context, cfg configs.S3Config) (*Client, error)

	mu     sync.Mutex
	client *Client
}

// NewHandle 创建句柄，不做任何网络请求.
func NewHandle(cfg configs.S3Config) *Handle {
	return &Handle{cfg: cfg, connect: New}
}

// NewHandleFunc 使用自定义连接函数创建句柄.
func NewHandleFunc(cfg configs.S3Config, connect func(ctx context.Context, cfg configs.S3Config) (*Client, error)) *Handle {
	return &Handle{cfg: cfg, connect: connect}
}

// NewHandleWithClient 使用已构建的客户端创建句柄.
func NewHandleWithClient(c *Client) *Handle {
	return &Handle{cfg: configs.S3Config{AccessKeyID: "-", SecretAccessKey: "-", BucketName: c.bucket}, client: c}
}

// Configured 是否提供了凭证.
func (h *Handle) Configured() bool {
	return h != nil && h.cfg.Configured()
}

// Client 返回已初始化的客户端，必要时初始化.
// 未配置或初始化失败时返回满足 errors.NotYetAvailable 的错误.
func (h *Handle) Client(ctx context.Context) (*Client, error) {
	if !h.Configured() {
		return nil, errors.NotYetAvailablef("object storage (credentials not configured)")
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.client != nil {
		return h.client, nil
	}

	c, err := h.connect(ctx, h.cfg)
	if err != nil {
		return nil, fmt.Errorf("object storage init: %w: %w", err, errors.NotYetAvailable)
	}

	h.client = c

	return c, nil
}

// Available 报告对象存储当前是否可用.
func (h *Handle) Available(ctx context.Context) bool {
	_, err := h.Client(ctx)

	return err == nil
}

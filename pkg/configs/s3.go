package configs

import (
	"fmt"

	"github.com/spf13/viper"
)

// S3Config S3 兼容对象存储配置.
// 访问密钥为空时视为未配置，对象存储后端不可用.
type S3Config struct {
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	UseSSL          bool   `mapstructure:"use_ssl"`
	BucketName      string `mapstructure:"bucket_name"`
	Region          string `mapstructure:"region"`
}

const (
	DefaultS3Endpoint   = "s3.amazonaws.com" // 默认S3端点
	DefaultS3UseSSL     = true               // 默认是否使用SSL
	DefaultS3BucketName = "filevault"        // 默认存储桶名称
	DefaultS3Region     = "us-east-1"        // 默认区域
)

// Configured 是否提供了访问凭证与存储桶.
func (c *S3Config) Configured() bool {
	return c.AccessKeyID != "" && c.SecretAccessKey != "" && c.BucketName != ""
}

// GetEndpointURL 获取完整的端点URL.
func (c *S3Config) GetEndpointURL() string {
	scheme := "http"
	if c.UseSSL {
		scheme = "https"
	}

	return fmt.Sprintf("%s://%s", scheme, c.Endpoint)
}

// setDefaults 设置 S3 配置的默认值.
func (c *S3Config) setDefaults(v *viper.Viper) {
	v.SetDefault("s3.endpoint", DefaultS3Endpoint)
	v.SetDefault("s3.access_key_id", "")
	v.SetDefault("s3.secret_access_key", "")
	v.SetDefault("s3.use_ssl", DefaultS3UseSSL)
	v.SetDefault("s3.bucket_name", DefaultS3BucketName)
	v.SetDefault("s3.region", DefaultS3Region)
}

package configs

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// StorageMode 存储后端选择模式.
type StorageMode string

const (
	StorageLocal  StorageMode = "local"  // 只用本地文件系统
	StorageObject StorageMode = "object" // 优先对象存储，不可用时回退本地并告警
	StorageAuto   StorageMode = "auto"   // 对象存储可用就用，否则本地

	DefaultStorageMode       = StorageAuto
	DefaultMaxFileSize       = 100 * 1024 * 1024 // 100MB
	DefaultLocalRoot         = "./uploads"
	DefaultDownloadPrefix    = "/api/v1/blobs"
	DefaultPresignExpiry     = time.Hour
	DefaultOrphanGracePeriod = time.Hour
)

// StorageConfig 存储后端与上传限制配置.
type StorageConfig struct {
	Mode          StorageMode        `mapstructure:"mode"           rule:"oneof=local object auto s3"`
	MaxFileSize   int64              `mapstructure:"max_file_size"  rule:"gt=0"`
	PresignExpiry time.Duration      `mapstructure:"presign_expiry" rule:"gt=0"`
	Local         LocalStorageConfig `mapstructure:"local"`
}

// LocalStorageConfig 本地文件系统后端配置.
type LocalStorageConfig struct {
	Root           string `mapstructure:"root"            rule:"required"`
	DownloadPrefix string `mapstructure:"download_prefix" rule:"required,startswith=/"`
}

// GetMode 返回规范化后的存储模式，"s3" 视为 object.
func (c *StorageConfig) GetMode() StorageMode {
	m := StorageMode(strings.ToLower(strings.TrimSpace(string(c.Mode))))
	if m == "s3" {
		return StorageObject
	}

	return m
}

// setDefaults 设置存储配置的默认值.
func (c *StorageConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("storage.mode", DefaultStorageMode)
	v.SetDefault("storage.max_file_size", DefaultMaxFileSize)
	v.SetDefault("storage.presign_expiry", DefaultPresignExpiry)
	v.SetDefault("storage.local.root", DefaultLocalRoot)
	v.SetDefault("storage.local.download_prefix", DefaultDownloadPrefix)
}

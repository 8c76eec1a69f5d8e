// Package configs 管理应用程序配置，包括数据库、存储、缓存和队列的配置信息.
// configs 包支持多种配置格式（YAML、JSON、TOML、dotenv）并启用热重载.
//
// Example:
//
//	err := configs.InitConfig("./")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	config := configs.GetConfig()
//	fmt.Println(config.Server.Port)
//
// Example accessing storage config:
//
//	config := configs.GetConfig()
//	mode := config.Storage.GetMode()
//	fmt.Println("Storage mode:", mode)
package configs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/yeisme/filevault/pkg/rule"
)

type (
	// AppConfig 全局应用程序配置.
	AppConfig struct {
		DB             DBConfig             `mapstructure:"db"`              // DBConfig 数据库配置
		S3             S3Config             `mapstructure:"s3"`              // S3Config 对象存储配置
		Storage        StorageConfig        `mapstructure:"storage"`         // StorageConfig 存储后端选择与上传限制
		KV             KVConfig             `mapstructure:"kv"`              // KVConfig 缓存配置
		MQ             MQConfig             `mapstructure:"mq"`              // MQConfig 消息队列配置
		Events         EventsConfig         `mapstructure:"events"`          // EventsConfig 文件事件开关
		Jobs           JobsConfig           `mapstructure:"jobs"`            // JobsConfig 定时任务
		Server         ServerConfig         `mapstructure:"server"`          // ServerConfig 服务器端口、调试等
		Log            LogConfig            `mapstructure:"log"`             // LogConfig 日志相关配置
		Auth           AuthConfig           `mapstructure:"auth"`            // AuthConfig 身份头配置
		Metrics        MetricsConfig        `mapstructure:"metrics"`         // MetricsConfig 指标
		Tracing        TracingConfig        `mapstructure:"tracing"`         // TracingConfig 链路追踪
		RateLimit      RateLimitConfig      `mapstructure:"rate_limit"`      // RateLimitConfig 限流
		CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"` // CircuitBreakerConfig 熔断
	}
)

var (
	// globalConfig 全局配置实例.
	globalConfig AppConfig
	// appViper 全局 Viper 实例.
	appViper *viper.Viper
	// mu 保护热重载期间的 globalConfig.
	mu sync.RWMutex
)

// legacyEnv 兼容旧部署使用的环境变量名.
var legacyEnv = map[string][]string{
	"server.port":           {"PORT"},
	"server.cors_origins":   {"FRONTEND_URL"},
	"storage.mode":          {"STORAGE_TYPE"},
	"storage.max_file_size": {"MAX_FILE_SIZE"},
	"s3.access_key_id":      {"AWS_ACCESS_KEY_ID"},
	"s3.secret_access_key":  {"AWS_SECRET_ACCESS_KEY"},
	"s3.region":             {"AWS_REGION"},
	"s3.bucket_name":        {"S3_BUCKET", "AWS_S3_BUCKET"},
}

// InitConfig 加载应用程序配置，支持多种格式(yaml、json、toml、dotenv)并启用热重载.
// path 可以是配置文件，也可以是目录；目录中找不到配置文件时只使用默认值和环境变量.
func InitConfig(path string) error {
	v := viper.New()
	setAllDefaults(v)

	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("filevault")
		v.AddConfigPath(path)
		v.AddConfigPath(filepath.Join(path, "configs"))

		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".filevault"))
		}
	}

	v.SetEnvPrefix("FILEVAULT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, envs := range legacyEnv {
		args := append([]string{key, "FILEVAULT_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))}, envs...)
		if err := v.BindEnv(args...); err != nil {
			return fmt.Errorf("failed to bind env %v: %w", envs, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg AppConfig
	if err := load(v, &cfg); err != nil {
		return err
	}

	mu.Lock()
	globalConfig = cfg
	appViper = v
	mu.Unlock()

	reloadConfigs(v, cfg.Server.ReloadConfig)

	return nil
}

// load 解析并校验配置.
func load(v *viper.Viper, cfg *AppConfig) error {
	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	return nil
}

// Validate 使用 rule 标签校验配置.
func (c *AppConfig) Validate() error {
	for _, sub := range []any{c.Storage, c.Server, c.Log, c.KV, c.MQ, c.Tracing, c.RateLimit, c.CircuitBreaker} {
		if err := rule.ValidateStruct(sub); err != nil {
			return err
		}
	}

	return nil
}

// setAllDefaults 设置所有配置的默认值.
func setAllDefaults(v *viper.Viper) {
	var cfg AppConfig

	cfg.Server.setDefaults(v)
	cfg.DB.setDefaults(v)
	cfg.S3.setDefaults(v)
	cfg.Storage.setDefaults(v)
	cfg.KV.setDefaults(v)
	cfg.MQ.setDefaults(v)
	cfg.Events.setDefaults(v)
	cfg.Jobs.setDefaults(v)
	cfg.Log.setDefaults(v)
	cfg.Auth.setDefaults(v)
	cfg.Metrics.setDefaults(v)
	cfg.Tracing.setDefaults(v)
	cfg.RateLimit.setDefaults(v)
	cfg.CircuitBreaker.setDefaults(v)
}

func reloadConfigs(v *viper.Viper, isHotReload bool) {
	if !isHotReload || v.ConfigFileUsed() == "" {
		return
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		fmt.Println("Config file changed:", e.Name)

		var cfg AppConfig
		if err := load(v, &cfg); err != nil {
			fmt.Printf("Error reloading config, keeping previous values: %v\n", err)

			return
		}

		mu.Lock()
		globalConfig = cfg
		mu.Unlock()
	})
	v.WatchConfig()
}

// GetConfig 返回全局配置的快照.
func GetConfig() *AppConfig {
	mu.RLock()
	defer mu.RUnlock()

	cfg := globalConfig

	return &cfg
}

// GetViper 返回全局 Viper 实例，未初始化时为 nil.
func GetViper() *viper.Viper {
	mu.RLock()
	defer mu.RUnlock()

	return appViper
}

// SetConfig 替换全局配置，主要用于测试.
func SetConfig(cfg AppConfig) {
	mu.Lock()
	globalConfig = cfg
	mu.Unlock()
}

// Default 返回仅由默认值构成的配置.
func Default() AppConfig {
	v := viper.New()
	setAllDefaults(v)

	var cfg AppConfig
	_ = v.Unmarshal(&cfg)

	return cfg
}

package configs

import (
	"time"

	"github.com/spf13/viper"
)

const (
	// 默认速率限制配置.
	DefaultRateLimitEnabled = false
	DefaultRateLimitRPS     = 50.0
	DefaultRateLimitBurst   = 100
	DefaultRateLimitKey     = "user"
	DefaultRateLimitIdleTTL = 10 * time.Minute
)

// RateLimitConfig 速率限制配置，上传与下载共用同一个令牌桶.
type RateLimitConfig struct {
	Enabled bool    `mapstructure:"enabled"`
	RPS     float64 `mapstructure:"rps"   rule:"gte=0"`
	Burst   int     `mapstructure:"burst" rule:"gte=0"`
	// Key 选择限流维度：global、ip、user（按身份邮箱，缺失时回退 IP）、header:Header-Name
	Key string `mapstructure:"key"`
	// IdleTTL 之内没有请求的 key 会被回收
	IdleTTL time.Duration `mapstructure:"idle_ttl"`
}

func (c *RateLimitConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("rate_limit.enabled", DefaultRateLimitEnabled)
	v.SetDefault("rate_limit.rps", DefaultRateLimitRPS)
	v.SetDefault("rate_limit.burst", DefaultRateLimitBurst)
	v.SetDefault("rate_limit.key", DefaultRateLimitKey)
	v.SetDefault("rate_limit.idle_ttl", DefaultRateLimitIdleTTL)
}

package configs

import (
	"time"

	"github.com/spf13/viper"
)

const (
	// 默认熔断器配置.
	DefaultCBEnabled           = false
	DefaultCBFailureRate       = 0.5
	DefaultCBMinRequests       = 20
	DefaultCBInterval          = time.Minute
	DefaultCBTimeout           = 30 * time.Second
	DefaultCBMaxRequestsInHalf = 5
)

// CircuitBreakerConfig HTTP 熔断器配置，5xx 响应计为失败.
type CircuitBreakerConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	FailureRate float64 `mapstructure:"failure_rate" rule:"gte=0,lte=1"`
	MinRequests uint32  `mapstructure:"min_requests"` // 窗口内请求数达到该值才开始判断
	// Interval 闭合状态下清零计数的周期，0 表示不清零
	Interval time.Duration `mapstructure:"interval"`
	// Timeout 打开状态持续多久后转为半开
	Timeout           time.Duration `mapstructure:"timeout"`
	MaxRequestsInHalf uint32        `mapstructure:"max_requests_in_half"`
}

func (c *CircuitBreakerConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("circuit_breaker.enabled", DefaultCBEnabled)
	v.SetDefault("circuit_breaker.failure_rate", DefaultCBFailureRate)
	v.SetDefault("circuit_breaker.min_requests", DefaultCBMinRequests)
	v.SetDefault("circuit_breaker.interval", DefaultCBInterval)
	v.SetDefault("circuit_breaker.timeout", DefaultCBTimeout)
	v.SetDefault("circuit_breaker.max_requests_in_half", DefaultCBMaxRequestsInHalf)
}

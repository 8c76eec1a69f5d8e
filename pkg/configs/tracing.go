package configs

import (
	"time"

	"github.com/spf13/viper"
)

const (
	DefaultTracingExporter     = "otlp-http"
	DefaultTracingEndpoint     = "http://localhost:4318"
	DefaultTracingSampleRate   = 1.0
	DefaultTracingBatchTimeout = 5 * time.Second
	DefaultMaxBatchSize        = 512
	DefaultMaxQueueSize        = 2048
)

// TracingConfig OpenTelemetry 链路追踪配置. 每个 HTTP 请求一个 server span，
// 存储后端的上传、下载和删除各自是子 span.
type TracingConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	ServiceName    string `mapstructure:"service_name"`
	ServiceVersion string `mapstructure:"service_version"`
	// ExporterType 可选 otlp-http、otlp-grpc、zipkin
	ExporterType string `mapstructure:"exporter_type" rule:"omitempty,oneof=otlp-http otlp-grpc zipkin"`
	Endpoint     string `mapstructure:"endpoint"`
	// Insecure 仅对 otlp-grpc 生效，关闭 TLS
	Insecure bool `mapstructure:"insecure"`
	// SampleRate 根 span 的采样比例，子 span 跟随父 span
	SampleRate     float64           `mapstructure:"sample_rate"    rule:"gte=0,lte=1"`
	BatchTimeout   time.Duration     `mapstructure:"batch_timeout"`
	MaxBatchSize   int               `mapstructure:"max_batch_size" rule:"gte=0"`
	MaxQueueSize   int               `mapstructure:"max_queue_size" rule:"gte=0"`
	ResourceLabels map[string]string `mapstructure:"resource_labels"`
}

func (c *TracingConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.service_name", "filevault")
	v.SetDefault("tracing.service_version", AppVersion)
	v.SetDefault("tracing.exporter_type", DefaultTracingExporter)
	v.SetDefault("tracing.endpoint", DefaultTracingEndpoint)
	v.SetDefault("tracing.insecure", true)
	v.SetDefault("tracing.sample_rate", DefaultTracingSampleRate)
	v.SetDefault("tracing.batch_timeout", DefaultTracingBatchTimeout)
	v.SetDefault("tracing.max_batch_size", DefaultMaxBatchSize)
	v.SetDefault("tracing.max_queue_size", DefaultMaxQueueSize)
	v.SetDefault("tracing.resource_labels", map[string]string{
		"deployment.environment": "dev",
	})
}

// Package metrics 提供监控指标功能.
// 支持Prometheus标准，收集 HTTP、存储后端和运行时指标.
//
// Example:
//
//	err := metrics.InitMetrics(config.Metrics)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	metrics.UploadsTotal.WithLabelValues("local").Inc()
package metrics

import (
	"net/http"
	_ "net/http/pprof" // 注册 pprof 到 DefaultServeMux

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yeisme/filevault/pkg/configs"
)

const namespace = "filevault"

// 全局指标变量.
var (
	// RequestCounter HTTP请求计数器.
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	// RequestDuration HTTP请求持续时间.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// ActiveConnections 活跃请求数.
	ActiveConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_requests",
			Help:      "Number of in-flight requests",
		},
	)

	// UploadsTotal 按后端统计的上传次数.
	UploadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploads_total",
			Help:      "Files stored, by backend",
		},
		[]string{"backend"},
	)

	// UploadBytesTotal 按后端统计的上传字节数.
	UploadBytesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upload_bytes_total",
			Help:      "Bytes stored, by backend",
		},
		[]string{"backend"},
	)

	// DeletesTotal 按后端统计的删除次数.
	DeletesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deletes_total",
			Help:      "Stored objects removed, by backend",
		},
		[]string{"backend"},
	)

	// StorageFallbackTotal object 模式回退到本地的次数.
	StorageFallbackTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "storage_fallback_total",
			Help:      "Object-mode operations routed to local storage because object storage was unavailable",
		},
	)

	// JobRunsTotal 定时任务执行次数.
	JobRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "job_runs_total",
			Help:      "Scheduled job runs, by job and result",
		},
		[]string{"job", "result"},
	)

	// registry Prometheus注册表.
	registry = prometheus.NewRegistry()
)

func init() {
	registry.MustRegister(
		RequestCounter,
		RequestDuration,
		ActiveConnections,
		UploadsTotal,
		UploadBytesTotal,
		DeletesTotal,
		StorageFallbackTotal,
		JobRunsTotal,
	)
}

// InitMetrics 初始化运行时收集器.
func InitMetrics(config configs.MetricsConfig) error {
	if !config.Enabled {
		return nil
	}

	if config.RuntimeMetrics {
		if err := registry.Register(collectors.NewGoCollector()); err != nil {
			return err
		}

		if err := registry.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{})); err != nil {
			return err
		}
	}

	return nil
}

// RegisterRoutes 在给定 engine 上挂载 /metrics 和可选的 pprof.
func RegisterRoutes(config configs.MetricsConfig, engine *gin.Engine) {
	if !config.Enabled {
		return
	}

	path := config.Path
	if path == "" {
		path = "/metrics"
	}

	engine.GET(path, gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	if config.EnablePprof {
		engine.GET("/debug/pprof/*any", gin.WrapH(http.DefaultServeMux))
	}
}

// GetRegistry 获取Prometheus注册表.
func GetRegistry() *prometheus.Registry {
	return registry
}

// NewHistogram 创建新的直方图指标.
func NewHistogram(name, help string, labels []string) *prometheus.HistogramVec {
	histogram := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		},
		labels,
	)
	registry.MustRegister(histogram)

	return histogram
}

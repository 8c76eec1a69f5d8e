package tracing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeisme/filevault/pkg/configs"
)

func TestInitTracer_Disabled(t *testing.T) {
	require.NoError(t, InitTracer(configs.TracingConfig{Enabled: false, ExporterType: "nope"}))
}

func TestInitTracer_UnsupportedExporter(t *testing.T) {
	err := InitTracer(configs.TracingConfig{Enabled: true, ServiceName: "fv", ExporterType: "jaeger"})
	assert.ErrorContains(t, err, "unsupported exporter type")
}

func TestInitTracer_Zipkin(t *testing.T) {
	cfg := configs.TracingConfig{
		Enabled:      true,
		ServiceName:  "fv",
		ExporterType: "zipkin",
		Endpoint:     "http://127.0.0.1:9411/api/v2/spans",
		SampleRate:   1,
		MaxBatchSize: 16,
	}
	require.NoError(t, InitTracer(cfg))

	t.Cleanup(func() {
		_ = ShutdownTracer(context.Background())
		tracerProvider = nil
	})

	_, span := StartSpan(context.Background(), "files.upload")
	assert.True(t, span.SpanContext().IsValid())

	RecordError(span, nil)
	RecordError(span, errors.New("boom"))
	span.End()
}

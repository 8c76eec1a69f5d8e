package queue

import (
	"context"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/bytedance/sonic"
	"go.opentelemetry.io/otel/trace"
)

// PayloadVersionV1 当前事件体版本.
const PayloadVersionV1 = "v1"

// watermill 元数据键，消费方无需解码事件体即可路由或过滤.
const (
	MetaTopic      = "topic"
	MetaTraceID    = "trace_id"
	MetaProducer   = "producer"
	MetaOccurredAt = "occurred_at"
	MetaVersion    = "version"
)

// HeaderOption 修改事件头.
type HeaderOption func(*EventHeader)

// WithTraceID 设置 TraceID.
func WithTraceID(id string) HeaderOption { return func(h *EventHeader) { h.TraceID = id } }

// WithProducer 设置 Producer.
func WithProducer(p string) HeaderOption { return func(h *EventHeader) { h.Producer = p } }

// WithSpanContext 从 ctx 中的 span 取 TraceID，没有有效 span 时不做任何事.
func WithSpanContext(ctx context.Context) HeaderOption {
	return func(h *EventHeader) {
		if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
			h.TraceID = sc.TraceID().String()
		}
	}
}

// NewEventHeader 创建事件头，发生时间取当前 UTC.
func NewEventHeader(topic string, opts ...HeaderOption) EventHeader {
	h := EventHeader{Topic: topic, OccurredAt: time.Now().UTC(), Version: PayloadVersionV1}
	for _, opt := range opts {
		opt(&h)
	}

	return h
}

// Encode 序列化事件.
func Encode[T any](msg Message[T]) ([]byte, error) { return sonic.Marshal(msg) }

// Decode 反序列化事件.
func Decode[T any](b []byte) (Message[T], error) {
	var m Message[T]
	if err := sonic.Unmarshal(b, &m); err != nil {
		return m, err
	}

	return m, nil
}

// NewWatermillMessage 把事件编码成 watermill 消息. 消息 ID 用 ULID，按时间有序.
func NewWatermillMessage[T any](topic string, payload T, opts ...HeaderOption) (*message.Message, error) {
	h := NewEventHeader(topic, opts...)

	data, err := Encode(Message[T]{Header: h, Payload: payload})
	if err != nil {
		return nil, err
	}

	msg := message.NewMessage(watermill.NewULID(), data)

	meta := map[string]string{
		MetaTopic:      topic,
		MetaTraceID:    h.TraceID,
		MetaProducer:   h.Producer,
		MetaVersion:    h.Version,
		MetaOccurredAt: h.OccurredAt.Format(time.RFC3339Nano),
	}
	for k, v := range meta {
		if v != "" {
			msg.Metadata.Set(k, v)
		}
	}

	return msg, nil
}

// ParseWatermillMessage 解出泛型负载.
func ParseWatermillMessage[T any](msg *message.Message) (Message[T], error) {
	return Decode[T](msg.Payload)
}

// Package mq 在消息队列客户端之上发布与消费文件事件.
//
// 发布在数据库提交之后进行，失败只记录日志，不影响请求结果.
// 未配置消息队列时事件只在 debug 级别记录.
package mq

import (
	"context"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog"

	"github.com/yeisme/filevault/pkg/configs"
	storagemq "github.com/yeisme/filevault/pkg/internal/storage/mq"
	"github.com/yeisme/filevault/pkg/queue"
)

// Bus 文件事件总线.
type Bus struct {
	client *storagemq.Client
	events func() configs.EventsConfig
	logger *zerolog.Logger
}

// NewBus 创建事件总线. client 为 nil 时只记录日志；events 为 nil 时全部开启.
func NewBus(client *storagemq.Client, events func() configs.EventsConfig, logger *zerolog.Logger) *Bus {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	return &Bus{client: client, events: events, logger: logger}
}

// Connected 是否连接了真实的消息队列.
func (b *Bus) Connected() bool {
	return b != nil && b.client != nil
}

// Client 返回底层客户端，可能为 nil.
func (b *Bus) Client() *storagemq.Client {
	if b == nil {
		return nil
	}

	return b.client
}

func (b *Bus) enabled(topic string) bool {
	if b.events == nil {
		return true
	}

	cfg := b.events()
	if !cfg.Enabled {
		return false
	}

	switch topic {
	case queue.TopicFileUploaded:
		return cfg.File.Uploaded
	case queue.TopicFileRenamed:
		return cfg.File.Renamed
	case queue.TopicFileDeleted:
		return cfg.File.Deleted
	case queue.TopicFileShared:
		return cfg.File.Shared
	case queue.TopicFileUnshared:
		return cfg.File.Unshared
	default:
		return true
	}
}

// Emit 发布一条事件，编码或发送失败只记录日志.
func (b *Bus) Emit(ctx context.Context, topic string, payload any) {
	if b == nil || !b.enabled(topic) {
		return
	}

	msg, err := queue.NewWatermillMessage(topic, payload, queue.WithProducer("filevault"), queue.WithSpanContext(ctx))
	if err != nil {
		b.logger.Error().Err(err).Str("topic", topic).Msg("encode event")
		return
	}

	if b.client == nil {
		b.logger.Debug().Str("topic", topic).Str("event_id", msg.UUID).Msg("event not delivered, mq disabled")
		return
	}

	if err := b.client.Publish(ctx, topic, msg); err != nil {
		b.logger.Warn().Err(err).Str("topic", topic).Msg("publish event failed")
	}
}

// HandlerFunc 处理一条事件. 返回错误只会被记录，消息仍然确认.
type HandlerFunc func(ctx context.Context, msg *message.Message) error

// Subscribe 在后台消费 topic，直到 ctx 结束.
func (b *Bus) Subscribe(ctx context.Context, topic, name string, fn HandlerFunc) error {
	if !b.Connected() {
		return nil
	}

	ch, err := b.client.Subscribe(ctx, topic)
	if err != nil {
		return err
	}

	logger := b.logger.With().Str("topic", topic).Str("handler", name).Logger()

	go func() {
		for msg := range ch {
			if err := fn(ctx, msg); err != nil {
				logger.Warn().Err(err).Str("event_id", msg.UUID).Msg("event handler failed")
			}

			msg.Ack()
		}
	}()

	logger.Info().Msg("event handler subscribed")

	return nil
}

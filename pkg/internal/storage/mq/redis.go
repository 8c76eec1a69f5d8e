package mq

import (
	"context"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"

	"github.com/yeisme/filevault/pkg/configs"
)

// redisChannelBuffer 每个订阅的本地缓冲.
const redisChannelBuffer = 100

// redisEnvelope 是写入 Redis 频道的消息体，保留 watermill 的 UUID 与元数据.
type redisEnvelope struct {
	UUID     string            `json:"uuid"`
	Metadata map[string]string `json:"metadata,omitempty"`
	Payload  []byte            `json:"payload"`
}

// redisPubSub 基于 Redis pub/sub 的发布订阅，至多一次投递，订阅者离线期间的事件会丢失.
type redisPubSub struct {
	client *redis.Client
	logger watermill.LoggerAdapter

	mu     sync.Mutex
	subs   []*redis.PubSub
	closed bool
	done   chan struct{}
}

func init() {
	RegisterFactory(configs.MQTypeRedis, redisFactory)
}

func redisFactory(
	ctx context.Context,
	cfg *configs.MQConfig,
	logger watermill.LoggerAdapter,
) (message.Publisher, message.Subscriber, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()

		return nil, nil, fmt.Errorf("ping redis %s: %w", cfg.Redis.Addr, err)
	}

	ps := &redisPubSub{client: rdb, logger: logger, done: make(chan struct{})}

	return ps, ps, nil
}

func encodeRedisMessage(msg *message.Message) ([]byte, error) {
	return sonic.Marshal(redisEnvelope{UUID: msg.UUID, Metadata: msg.Metadata, Payload: msg.Payload})
}

// decodeRedisMessage 兼容非本服务发布的原始字符串.
func decodeRedisMessage(raw string) *message.Message {
	var env redisEnvelope
	if err := sonic.UnmarshalString(raw, &env); err != nil || env.UUID == "" {
		return message.NewMessage(watermill.NewUUID(), []byte(raw))
	}

	msg := message.NewMessage(env.UUID, env.Payload)
	for k, v := range env.Metadata {
		msg.Metadata.Set(k, v)
	}

	return msg
}

func (r *redisPubSub) Publish(topic string, msgs ...*message.Message) error {
	for _, msg := range msgs {
		data, err := encodeRedisMessage(msg)
		if err != nil {
			return fmt.Errorf("encode message %s: %w", msg.UUID, err)
		}

		if err := r.client.Publish(msg.Context(), topic, data).Err(); err != nil {
			return err
		}
	}

	return nil
}

func (r *redisPubSub) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, fmt.Errorf("redis subscriber closed")
	}

	ps := r.client.Subscribe(ctx, topic)
	r.subs = append(r.subs, ps)

	out := make(chan *message.Message, redisChannelBuffer)

	go func() {
		defer close(out)

		in := ps.Channel()

		for {
			select {
			case <-r.done:
				return
			case <-ctx.Done():
				return
			case m, ok := <-in:
				if !ok {
					return
				}

				msg := decodeRedisMessage(m.Payload)
				msg.SetContext(ctx)

				select {
				case out <- msg:
				case <-r.done:
					return
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}

// Close 发布端与订阅端共用同一个连接，只关闭一次.
func (r *redisPubSub) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}

	r.closed = true
	close(r.done)

	for _, ps := range r.subs {
		if err := ps.Close(); err != nil {
			r.logger.Error("close redis pubsub", err, nil)
		}
	}

	return r.client.Close()
}

package mq

import (
	"context"
	"strings"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	nc "github.com/nats-io/nats.go"

	"github.com/yeisme/filevault/pkg/configs"
)

const (
	natsDrainTimeout   = 30 * time.Second
	natsFlusherTimeout = 10 * time.Second
)

func init() {
	RegisterFactory(configs.MQTypeNATS, natsFactory)
}

func natsOptions(cfg configs.MQNATSConfig) []nc.Option {
	opts := []nc.Option{
		nc.Name(cfg.ClientName),
		nc.MaxReconnects(cfg.MaxReconnects),
		nc.DrainTimeout(natsDrainTimeout),
		nc.FlusherTimeout(natsFlusherTimeout),
		nc.RetryOnFailedConnect(true),
	}

	if cfg.ReconnectWait > 0 {
		opts = append(opts, nc.ReconnectWait(cfg.ReconnectWait))
	}

	if cfg.PingInterval > 0 {
		opts = append(opts, nc.PingInterval(cfg.PingInterval))
	}

	if cfg.ReconnectBuf > 0 {
		opts = append(opts, nc.ReconnectBufSize(cfg.ReconnectBuf))
	}

	switch {
	case cfg.CredsFile != "":
		opts = append(opts, nc.UserCredentials(cfg.CredsFile))
	case cfg.User != "":
		opts = append(opts, nc.UserInfo(cfg.User, cfg.Password))
	}

	return opts
}

func jetStreamConfig(cfg configs.MQNATSConfig) nats.JetStreamConfig {
	if !cfg.JetStream {
		return nats.JetStreamConfig{Disabled: true}
	}

	return nats.JetStreamConfig{
		AutoProvision: cfg.AutoProvision,
		TrackMsgId:    cfg.TrackMsgID,
		AckAsync:      cfg.AckAsync,
		DurablePrefix: cfg.DurablePrefix,
	}
}

func natsURL(cfg configs.MQNATSConfig) string {
	if len(cfg.URLs) == 0 {
		return configs.DefaultNATSURL
	}

	return strings.Join(cfg.URLs, ",")
}

// natsFactory 创建 NATS 发布端与订阅端，JetStream 开启时事件持久化，离线实例重连后补收.
func natsFactory(
	_ context.Context,
	cfg *configs.MQConfig,
	logger watermill.LoggerAdapter,
) (message.Publisher, message.Subscriber, error) {
	n := cfg.NATS
	opts := natsOptions(n)
	js := jetStreamConfig(n)
	marshaler := &nats.JSONMarshaler{}
	url := natsURL(n)

	logger.Debug("nats event bus config", watermill.LogFields{
		"url":         url,
		"jetstream":   n.JetStream,
		"queue_group": n.QueueGroup,
	})

	pub, err := nats.NewPublisher(nats.PublisherConfig{
		URL:         url,
		NatsOptions: opts,
		JetStream:   js,
		Marshaler:   marshaler,
	}, logger)
	if err != nil {
		return nil, nil, err
	}

	sub, err := nats.NewSubscriber(nats.SubscriberConfig{
		URL:              url,
		NatsOptions:      opts,
		JetStream:        js,
		Unmarshaler:      marshaler,
		QueueGroupPrefix: n.QueueGroup,
	}, logger)
	if err != nil {
		_ = pub.Close()

		return nil, nil, err
	}

	return pub, sub, nil
}

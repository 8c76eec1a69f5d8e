package mq

import (
	"context"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/yeisme/filevault/pkg/configs"
)

const memoryChannelBuffer = 256

func init() {
	RegisterFactory(configs.MQTypeMemory, memoryFactory)
}

// memoryFactory 进程内通道，同一个实例既发布也订阅，适合单机部署与测试.
func memoryFactory(_ context.Context, _ *configs.MQConfig, logger watermill.LoggerAdapter) (message.Publisher, message.Subscriber, error) {
	ps := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: memoryChannelBuffer}, logger)

	return ps, ps, nil
}

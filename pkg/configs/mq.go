package configs

import (
	"time"

	"github.com/spf13/viper"
)

// MQType 消息队列类型，承载文件事件总线.
type MQType string

const (
	MQTypeNATS   MQType = "nats"
	MQTypeRedis  MQType = "redis"
	MQTypeMemory MQType = "memory" // 进程内 gochannel，单实例部署够用
	MQTypeNone   MQType = "none"   // 不连接消息队列，事件只记录日志

	DefaultNATSURL           = "nats://localhost:4222"
	DefaultNATSClientName    = "filevault"
	DefaultNATSMaxReconnects = 5
	DefaultNATSReconnectWait = 5 * time.Second
	DefaultNATSPingInterval  = 20 * time.Second
	DefaultNATSReconnectBuf  = 32 * 1024
	DefaultNATSQueueGroup    = "filevault"
	DefaultNATSDurablePrefix = "filevault"
)

// MQConfig 消息队列配置.
type MQConfig struct {
	Type MQType `mapstructure:"type" rule:"omitempty,oneof=nats redis memory none"`
	// EnableMetrics 为发布与订阅加上 watermill 的 Prometheus 装饰器
	EnableMetrics bool          `mapstructure:"enable_metrics"`
	NATS          MQNATSConfig  `mapstructure:"nats"`
	Redis         MQRedisConfig `mapstructure:"redis"`
}

// MQNATSConfig NATS 连接与 JetStream 配置.
type MQNATSConfig struct {
	URLs          []string      `mapstructure:"urls"`
	ClientName    string        `mapstructure:"client_name"`
	User          string        `mapstructure:"user"`
	Password      string        `mapstructure:"password"`
	CredsFile     string        `mapstructure:"creds_file"` // 设置后优先于用户名密码
	MaxReconnects int           `mapstructure:"max_reconnects" rule:"gte=-1"`
	ReconnectWait time.Duration `mapstructure:"reconnect_wait"`
	PingInterval  time.Duration `mapstructure:"ping_interval"`
	ReconnectBuf  int           `mapstructure:"reconnect_buf"`
	// QueueGroup 非空时多个实例共同消费同一主题，每条事件只处理一次
	QueueGroup string `mapstructure:"queue_group"`

	JetStream     bool   `mapstructure:"jetstream"`
	AutoProvision bool   `mapstructure:"auto_provision"`
	TrackMsgID    bool   `mapstructure:"track_msg_id"`
	AckAsync      bool   `mapstructure:"ack_async"`
	DurablePrefix string `mapstructure:"durable_prefix"`
}

// MQRedisConfig Redis pub/sub 配置.
type MQRedisConfig struct {
	Addr     string `mapstructure:"addr"     rule:"omitempty,hostname_port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"       rule:"min=0,max=15"`
}

// GetMQType 返回当前配置的消息队列类型.
func (c *MQConfig) GetMQType() MQType {
	if c.Type == "" {
		return MQTypeNone
	}

	return c.Type
}

func (c *MQConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("mq.type", MQTypeNone)
	v.SetDefault("mq.enable_metrics", false)

	v.SetDefault("mq.nats.urls", []string{DefaultNATSURL})
	v.SetDefault("mq.nats.client_name", DefaultNATSClientName)
	v.SetDefault("mq.nats.max_reconnects", DefaultNATSMaxReconnects)
	v.SetDefault("mq.nats.reconnect_wait", DefaultNATSReconnectWait)
	v.SetDefault("mq.nats.ping_interval", DefaultNATSPingInterval)
	v.SetDefault("mq.nats.reconnect_buf", DefaultNATSReconnectBuf)
	v.SetDefault("mq.nats.queue_group", DefaultNATSQueueGroup)
	v.SetDefault("mq.nats.jetstream", true)
	v.SetDefault("mq.nats.auto_provision", true)
	v.SetDefault("mq.nats.track_msg_id", true)
	v.SetDefault("mq.nats.ack_async", false)
	v.SetDefault("mq.nats.durable_prefix", DefaultNATSDurablePrefix)

	v.SetDefault("mq.redis.addr", "localhost:6379")
	v.SetDefault("mq.redis.db", 0)
}

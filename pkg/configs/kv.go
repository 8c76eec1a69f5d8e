package configs

import (
	"time"

	"github.com/spf13/viper"
)

const (
	DefaultKVType             = "memory"
	DefaultUserCacheTTL       = 5 * time.Minute  // 用户邮箱查询缓存
	DefaultStatsCacheTTL      = 30 * time.Second // 用量统计缓存
	DefaultRedisKVPrefix      = "filevault:"
	DefaultNATSKVBucket       = "filevault-kv"
	DefaultGroupcacheName     = "filevault-cache"
	DefaultGroupcacheCapBytes = 64 << 20
)

// KVConfig 缓存用的键值存储. 缓存只是加速，后端不可用时服务回退到直接查库.
type KVConfig struct {
	Type       string             `mapstructure:"type"       rule:"oneof=memory redis nats groupcache"`
	UserTTL    time.Duration      `mapstructure:"user_ttl"   rule:"gte=0"`
	StatsTTL   time.Duration      `mapstructure:"stats_ttl"  rule:"gte=0"`
	Redis      RedisKVConfig      `mapstructure:"redis"`
	NATS       NATSKVConfig       `mapstructure:"nats"`
	Groupcache GroupcacheKVConfig `mapstructure:"groupcache"`
}

// RedisKVConfig Redis KV 配置. Prefix 用于和其他应用共用同一个库.
type RedisKVConfig struct {
	Addr     string `mapstructure:"addr"     rule:"hostname_port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"       rule:"min=0,max=15"`
	Prefix   string `mapstructure:"prefix"`
}

// NATSKVConfig NATS JetStream KV 桶配置.
type NATSKVConfig struct {
	URL      string        `mapstructure:"url"      rule:"required"`
	User     string        `mapstructure:"user"`
	Password string        `mapstructure:"password"`
	Bucket   string        `mapstructure:"bucket"   rule:"required"`
	MaxAge   time.Duration `mapstructure:"max_age"` // 桶级过期，0 表示不过期
}

// GroupcacheKVConfig Groupcache 配置，Peers 为空时只做进程内缓存.
type GroupcacheKVConfig struct {
	Name       string   `mapstructure:"name"        rule:"required"`
	CacheBytes int64    `mapstructure:"cache_bytes" rule:"min=1048576"`
	Self       string   `mapstructure:"self"        rule:"omitempty,url"`
	Peers      []string `mapstructure:"peers"       rule:"dive,url"`
}

// GetKVType 返回当前配置的 KV 类型.
func (c *KVConfig) GetKVType() string {
	return c.Type
}

func (c *KVConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("kv.type", DefaultKVType)
	v.SetDefault("kv.user_ttl", DefaultUserCacheTTL)
	v.SetDefault("kv.stats_ttl", DefaultStatsCacheTTL)

	v.SetDefault("kv.redis.addr", "localhost:6379")
	v.SetDefault("kv.redis.db", 0)
	v.SetDefault("kv.redis.prefix", DefaultRedisKVPrefix)

	v.SetDefault("kv.nats.url", DefaultNATSURL)
	v.SetDefault("kv.nats.bucket", DefaultNATSKVBucket)
	v.SetDefault("kv.nats.max_age", time.Duration(0))

	v.SetDefault("kv.groupcache.name", DefaultGroupcacheName)
	v.SetDefault("kv.groupcache.cache_bytes", DefaultGroupcacheCapBytes)
	v.SetDefault("kv.groupcache.self", "http://localhost:8080")
	v.SetDefault("kv.groupcache.peers", []string{})
}

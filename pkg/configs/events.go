package configs

import "github.com/spf13/viper"

// EventsConfig 控制文件事件发布的开关（全局与分主题）.
type EventsConfig struct {
	Enabled bool             `mapstructure:"enabled"` // 总开关
	File    FileEventsConfig `mapstructure:"file"`
}

// FileEventsConfig 文件领域的事件开关.
type FileEventsConfig struct {
	Uploaded bool `mapstructure:"uploaded"`
	Renamed  bool `mapstructure:"renamed"`
	Deleted  bool `mapstructure:"deleted"`
	Shared   bool `mapstructure:"shared"`
	Unshared bool `mapstructure:"unshared"`
}

func (c *EventsConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("events.enabled", true)

	v.SetDefault("events.file.uploaded", true)
	v.SetDefault("events.file.deleted", true)
	v.SetDefault("events.file.renamed", false)
	// 共享变更通常需要通知对方，默认开启
	v.SetDefault("events.file.shared", true)
	v.SetDefault("events.file.unshared", true)
}

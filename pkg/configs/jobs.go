package configs

import (
	"time"

	"github.com/spf13/viper"
)

// JobsConfig 定时任务配置.
type JobsConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	OrphanSweep OrphanJob     `mapstructure:"orphan_sweep"`
	Timezone    string        `mapstructure:"timezone"`
	StopTimeout time.Duration `mapstructure:"stop_timeout"`
}

// OrphanJob 清理没有记录引用的本地文件.
type OrphanJob struct {
	Enabled bool          `mapstructure:"enabled"`
	Cron    string        `mapstructure:"cron"`
	Grace   time.Duration `mapstructure:"grace"` // 只清理早于该时长的文件，避开正在上传的请求
}

func (c *JobsConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("jobs.enabled", true)
	v.SetDefault("jobs.timezone", "Local")
	v.SetDefault("jobs.stop_timeout", 10*time.Second)
	v.SetDefault("jobs.orphan_sweep.enabled", true)
	v.SetDefault("jobs.orphan_sweep.cron", "0 */6 * * *")
	v.SetDefault("jobs.orphan_sweep.grace", DefaultOrphanGracePeriod)
}

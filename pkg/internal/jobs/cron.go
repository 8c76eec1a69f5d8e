// Package jobs 负责注册与实现业务定时任务（基于 scheduler）.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/yeisme/filevault/pkg/configs"
	"github.com/yeisme/filevault/pkg/internal/storage"
	"github.com/yeisme/filevault/pkg/internal/store"
	"github.com/yeisme/filevault/pkg/log"
	"github.com/yeisme/filevault/pkg/scheduler"
)

// RegisterCronJobs 按配置注册业务定时任务，目前只有本地孤儿文件清理.
func RegisterCronJobs(ctx context.Context, sched *scheduler.Scheduler, mgr *storage.Manager, cfg configs.JobsConfig) error {
	if sched == nil {
		return fmt.Errorf("scheduler is nil")
	}

	if mgr == nil {
		return fmt.Errorf("storage manager is nil")
	}

	if !cfg.OrphanSweep.Enabled {
		log.Logger().Info().Str("job", JobOrphanSweep).Msg("job disabled by config")
		return nil
	}

	sweeper := NewOrphanSweeper(mgr.Router.Local(), store.NewFileStore(mgr.DB.DB), cfg.OrphanSweep.Grace)

	return sched.AddCron(ctx, JobOrphanSweep, cfg.OrphanSweep.Cron, func(ctx context.Context) error {
		res, err := sweeper.Run(ctx, time.Now())
		if err != nil {
			return err
		}

		log.Logger().Info().Str("job", JobOrphanSweep).
			Int("scanned", res.Scanned).
			Int("removed", res.Removed).
			Int("temp_removed", res.TempRemoved).
			Msg("orphan sweep done")

		return nil
	})
}

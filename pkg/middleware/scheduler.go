package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/filevault/pkg/scheduler"
)

const schedulerKey = "scheduler"

// SchedulerMiddleware 把调度器放入 gin.Context，供管理端接口查看和触发任务.
// jobs.enabled 为 false 时 sched 为 nil，处理函数需自行判断.
func SchedulerMiddleware(sched *scheduler.Scheduler) gin.HandlerFunc {
	return func(c *gin.Context) {
		if sched != nil {
			c.Set(schedulerKey, sched)
		}

		c.Next()
	}
}

// GetScheduler 取出调度器，未启用时返回 nil.
func GetScheduler(c *gin.Context) *scheduler.Scheduler {
	if v, ok := c.Get(schedulerKey); ok {
		if sched, ok := v.(*scheduler.Scheduler); ok {
			return sched
		}
	}

	return nil
}

package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/filevault/pkg/internal/types"
	"github.com/yeisme/filevault/pkg/middleware"
)

// ListJobs 返回所有定时任务信息.
func ListJobs(c *gin.Context) {
	sched := middleware.GetScheduler(c)
	if sched == nil {
		c.JSON(http.StatusOK, types.JobsResponse{})
		return
	}

	c.JSON(http.StatusOK, types.JobsResponse{Jobs: sched.GetJobInfos()})
}

// RunJob 立即触发一次指定任务.
func RunJob(c *gin.Context) {
	sched := middleware.GetScheduler(c)
	if sched == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "scheduler disabled", "code": "BACKEND_UNAVAILABLE"})
		return
	}

	if err := sched.RunNow(c.Param("name")); err != nil {
		respondError(c, err, "trigger job failed")
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"job": c.Param("name"), "status": "triggered"})
}

package handle

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	ctxPkg "github.com/yeisme/filevault/pkg/context"
	"github.com/yeisme/filevault/pkg/internal/storage"
)

const timeout = 2 * time.Second

func manager(c *gin.Context, component string) (*storage.Manager, bool) {
	mgr := ctxPkg.GetManager(c.Request.Context())
	if mgr == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"component": component, "status": "unhealthy", "error": "storage manager not initialized"})
		return nil, false
	}

	return mgr, true
}

// Health 进程存活检查.
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// HealthDB 数据库健康检查.
func HealthDB(c *gin.Context) {
	mgr, ok := manager(c, "db")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
	defer cancel()

	if err := mgr.GetDBClient().HealthCheck(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"component": "db", "status": "unhealthy", "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"component": "db", "status": "ok"})
}

// HealthStorage 本地根目录与对象存储检查. 对象存储未配置时只报告 disabled.
func HealthStorage(c *gin.Context) {
	mgr, ok := manager(c, "storage")
	if !ok {
		return
	}

	status := http.StatusOK
	body := gin.H{"component": "storage", "status": "ok", "local": "ok", "object": "disabled"}

	if fi, err := os.Stat(mgr.Router.Local().Root()); err != nil || !fi.IsDir() {
		status = http.StatusServiceUnavailable
		body["status"] = "unhealthy"
		body["local"] = "unavailable"
	}

	if mgr.GetS3Handle().Configured() {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		client, err := mgr.GetS3Handle().Client(ctx)
		if err == nil {
			err = client.HealthCheck(ctx)
		}

		if err != nil {
			status = http.StatusServiceUnavailable
			body["status"] = "unhealthy"
			body["object"] = "unavailable"
			body["error"] = err.Error()
		} else {
			body["object"] = "ok"
		}
	}

	c.JSON(status, body)
}

// HealthMQ 消息队列健康检查，类型为 none 时报告 disabled.
func HealthMQ(c *gin.Context) {
	mgr, ok := manager(c, "mq")
	if !ok {
		return
	}

	mqc := mgr.GetMQClient()
	if mqc == nil {
		c.JSON(http.StatusOK, gin.H{"component": "mq", "status": "disabled"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"component": "mq", "status": "ok", "type": mqc.Type()})
}

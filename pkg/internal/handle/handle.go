// Package handle 提供 HTTP 请求处理器.
package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/filevault/pkg/internal/errs"
	"github.com/yeisme/filevault/pkg/internal/model"
	"github.com/yeisme/filevault/pkg/internal/service"
	"github.com/yeisme/filevault/pkg/log"
	"github.com/yeisme/filevault/pkg/middleware"
)

// Handlers 文件、共享与用户接口的处理器集合.
type Handlers struct {
	files  *service.FileService
	shares *service.ShareService
	users  *service.UserService
}

// NewHandlers 基于服务依赖创建处理器.
func NewHandlers(d service.Deps) *Handlers {
	return &Handlers{
		files:  service.NewFileService(d),
		shares: service.NewShareService(d),
		users:  service.NewUserService(d),
	}
}

// Users 返回用户服务，供认证中间件解析身份.
func (h *Handlers) Users() *service.UserService {
	return h.users
}

// currentUser 返回已认证用户，缺失时直接写 401.
func currentUser(c *gin.Context) (*model.User, bool) {
	u := middleware.CurrentUser(c)
	if u == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "code": errs.Code(errs.Unauthorized)})
		return nil, false
	}

	return u, true
}

// respondError 按错误分类写响应. 未分类错误不向客户端暴露细节.
func respondError(c *gin.Context, err error, msg string) {
	status := errs.Status(err)
	code := errs.Code(err)
	l := log.Logger()

	if status >= http.StatusInternalServerError {
		l.Error().Err(err).Str("request_id", middleware.GetRequestID(c)).Msg(msg)
	} else {
		l.Warn().Err(err).Str("request_id", middleware.GetRequestID(c)).Msg(msg)
	}

	_ = c.Error(err)

	if code == "INTERNAL" {
		c.JSON(status, gin.H{"error": "internal error", "code": code})
		return
	}

	c.JSON(status, gin.H{"error": err.Error(), "code": code})
}

// badRequest 请求体或参数校验失败.
func badRequest(c *gin.Context, err error) {
	log.Logger().Warn().Err(err).Msg("invalid request")
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": errs.Code(errs.InvalidInput)})
}

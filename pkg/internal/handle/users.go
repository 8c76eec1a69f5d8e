package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/filevault/pkg/internal/store"
	"github.com/yeisme/filevault/pkg/internal/types"
)

// SyncUser 用身份头的邮箱加请求体资料查找或创建用户.
func (h *Handlers) SyncUser(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}

	var req types.SyncUserRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
	}

	synced, err := h.users.Sync(c.Request.Context(), store.Identity{
		Email:    u.Email,
		Name:     req.Name,
		Avatar:   req.Avatar,
		GoogleID: req.GoogleID,
	})
	if err != nil {
		respondError(c, err, "sync user failed")
		return
	}

	c.JSON(http.StatusOK, types.NewUserResponse(synced))
}

// Profile 当前用户资料.
func (h *Handlers) Profile(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, types.NewUserResponse(u))
}

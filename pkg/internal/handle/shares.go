package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/filevault/pkg/internal/types"
)

// Share 按邮箱共享给另一个用户.
func (h *Handlers) Share(c *gin.Context) {
	h.changeShare(c, true)
}

// Unshare 取消共享，接收者不在列表中也视为成功.
func (h *Handlers) Unshare(c *gin.Context) {
	h.changeShare(c, false)
}

func (h *Handlers) changeShare(c *gin.Context, add bool) {
	u, ok := currentUser(c)
	if !ok {
		return
	}

	var req types.ShareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	op := h.shares.Share
	if !add {
		op = h.shares.Unshare
	}

	f, err := op(c.Request.Context(), c.Param("id"), u.ID, req.Email)
	if err != nil {
		respondError(c, err, "change sharing failed")
		return
	}

	c.JSON(http.StatusOK, types.NewFileResponse(f, u.ID))
}

// Sharing 列出文件的共享接收者，只有所有者可见.
func (h *Handlers) Sharing(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}

	id := c.Param("id")

	users, err := h.shares.Sharing(c.Request.Context(), id, u.ID)
	if err != nil {
		respondError(c, err, "list sharing failed")
		return
	}

	c.JSON(http.StatusOK, types.NewSharingResponse(id, users))
}

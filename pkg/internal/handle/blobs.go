package handle

import (
	"github.com/gin-gonic/gin"
)

// Blob 输出本地后端的文件字节，调用方需要能读取对应记录.
func (h *Handlers) Blob(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}

	f, abs, err := h.files.ResolveBlob(c.Request.Context(), c.Param("owner"), c.Param("name"), u.ID)
	if err != nil {
		respondError(c, err, "resolve blob failed")
		return
	}

	c.Header("Content-Type", f.MimeType)
	c.Header("X-Content-Type-Options", "nosniff")
	c.FileAttachment(abs, f.Filename)
}

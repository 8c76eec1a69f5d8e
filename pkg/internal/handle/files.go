package handle

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/filevault/pkg/internal/service"
	"github.com/yeisme/filevault/pkg/internal/types"
)

// Upload 接收 multipart 的 file 字段，可选 filename 字段覆盖期望文件名.
func (h *Handlers) Upload(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		badRequest(c, fmt.Errorf("missing multipart field file: %w", err))
		return
	}

	src, err := fh.Open()
	if err != nil {
		respondError(c, err, "open uploaded file failed")
		return
	}
	defer src.Close()

	// 多读一个字节，超限交给服务层统一报错
	data, err := io.ReadAll(io.LimitReader(src, h.files.MaxFileSize()+1))
	if err != nil {
		respondError(c, err, "read uploaded file failed")
		return
	}

	f, err := h.files.Upload(c.Request.Context(), service.UploadInput{
		OwnerID:      u.ID,
		OriginalName: fh.Filename,
		DesiredName:  strings.TrimSpace(c.PostForm("filename")),
		MimeType:     fh.Header.Get("Content-Type"),
		Data:         data,
	})
	if err != nil {
		respondError(c, err, "upload failed")
		return
	}

	url, err := h.files.AccessURL(c.Request.Context(), f)
	if err != nil {
		respondError(c, err, "build access url failed")
		return
	}

	c.JSON(http.StatusCreated, types.UploadFileResponse{File: types.NewFileResponse(f, u.ID), URL: url})
}

// List 当前用户拥有的文件，按创建时间倒序.
func (h *Handlers) List(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}

	files, err := h.files.List(c.Request.Context(), u.ID)
	if err != nil {
		respondError(c, err, "list files failed")
		return
	}

	c.JSON(http.StatusOK, types.NewFileList(files, u.ID))
}

// Shared 共享给当前用户的文件.
func (h *Handlers) Shared(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}

	files, err := h.files.Shared(c.Request.Context(), u.ID)
	if err != nil {
		respondError(c, err, "list shared files failed")
		return
	}

	c.JSON(http.StatusOK, types.NewFileList(files, u.ID))
}

// Search 按文件名子串搜索当前用户的文件.
func (h *Handlers) Search(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}

	var q types.SearchFilesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}

	files, err := h.files.Search(c.Request.Context(), u.ID, q.Q)
	if err != nil {
		respondError(c, err, "search files failed")
		return
	}

	c.JSON(http.StatusOK, types.NewFileList(files, u.ID))
}

// Stats 当前用户按后端汇总的存储用量.
func (h *Handlers) Stats(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}

	st, err := h.files.Stats(c.Request.Context(), u.ID)
	if err != nil {
		respondError(c, err, "file stats failed")
		return
	}

	c.JSON(http.StatusOK, st)
}

// Get 单个文件记录，所有者与接收者可见.
func (h *Handlers) Get(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}

	f, err := h.files.Get(c.Request.Context(), c.Param("id"), u.ID)
	if err != nil {
		respondError(c, err, "get file failed")
		return
	}

	c.JSON(http.StatusOK, types.NewFileResponse(f, u.ID))
}

// Download 返回下载地址：本地为站内路径，对象存储为签名 URL.
func (h *Handlers) Download(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}

	d, err := h.files.DownloadURL(c.Request.Context(), c.Param("id"), u.ID)
	if err != nil {
		respondError(c, err, "download url failed")
		return
	}

	c.JSON(http.StatusOK, d)
}

// Rename 修改文件名，只有所有者可以操作.
func (h *Handlers) Rename(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}

	var req types.RenameFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	f, err := h.files.Rename(c.Request.Context(), c.Param("id"), u.ID, req.Filename)
	if err != nil {
		respondError(c, err, "rename file failed")
		return
	}

	c.JSON(http.StatusOK, types.NewFileResponse(f, u.ID))
}

// Delete 先删字节再删记录.
func (h *Handlers) Delete(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}

	if err := h.files.Delete(c.Request.Context(), c.Param("id"), u.ID); err != nil {
		respondError(c, err, "delete file failed")
		return
	}

	c.Status(http.StatusNoContent)
}

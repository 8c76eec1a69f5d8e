// Package types 定义 HTTP 请求与响应结构.
package types

import (
	"time"

	"github.com/yeisme/filevault/pkg/internal/model"
)

// FileResponse 文件记录的对外视图，不暴露字节定位符.
type FileResponse struct {
	ID           string            `json:"id"`
	OwnerID      string            `json:"owner_id"`
	Filename     string            `json:"filename"`
	OriginalName string            `json:"original_name"`
	Size         int64             `json:"size"`
	MimeType     string            `json:"mime_type"`
	Checksum     string            `json:"checksum,omitempty"`
	StorageKind  model.StorageKind `json:"storage_kind"`
	SharedWith   []string          `json:"shared_with"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// NewFileResponse 以 viewerID 的视角构造响应.
// 接收者列表只对所有者可见，其他读者拿到空数组. Shares 未预加载时同样为空数组.
func NewFileResponse(f *model.File, viewerID string) FileResponse {
	sharedWith := []string{}
	if f.IsOwner(viewerID) {
		sharedWith = f.SharedWith()
	}

	return FileResponse{
		ID:           f.ID,
		OwnerID:      f.OwnerID,
		Filename:     f.Filename,
		OriginalName: f.OriginalName,
		Size:         f.Size,
		MimeType:     f.MimeType,
		Checksum:     f.Checksum,
		StorageKind:  f.StorageKind,
		SharedWith:   sharedWith,
		CreatedAt:    f.CreatedAt,
		UpdatedAt:    f.UpdatedAt,
	}
}

// NewFileList 以 viewerID 的视角批量转换.
func NewFileList(files []model.File, viewerID string) FileListResponse {
	out := make([]FileResponse, 0, len(files))
	for i := range files {
		out = append(out, NewFileResponse(&files[i], viewerID))
	}

	return FileListResponse{Files: out, Total: len(out)}
}

// FileListResponse 文件列表.
type FileListResponse struct {
	Files []FileResponse `json:"files"`
	Total int            `json:"total"`
}

// UploadFileResponse 上传结果：记录加访问地址.
type UploadFileResponse struct {
	File FileResponse `json:"file"`
	URL  string       `json:"url"`
}

// RenameFileRequest 改名请求. 名称由服务层在解析记录之后校验.
type RenameFileRequest struct {
	Filename string `json:"filename"`
}

// SearchFilesQuery 搜索参数.
type SearchFilesQuery struct {
	Q string `form:"q"`
}

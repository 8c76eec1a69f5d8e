package types

import "github.com/yeisme/filevault/pkg/internal/model"

// ShareRequest 共享与取消共享共用的请求体.
type ShareRequest struct {
	Email string `json:"email" rule:"required,email"`
}

// RecipientResponse 共享接收者.
type RecipientResponse struct {
	ID     string `json:"id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
}

// SharingResponse 文件的共享列表.
type SharingResponse struct {
	FileID     string              `json:"file_id"`
	Recipients []RecipientResponse `json:"recipients"`
}

// NewSharingResponse 构造共享列表响应.
func NewSharingResponse(fileID string, users []model.User) SharingResponse {
	out := make([]RecipientResponse, 0, len(users))
	for _, u := range users {
		out = append(out, RecipientResponse{ID: u.ID, Email: u.Email, Name: u.Name, Avatar: u.Avatar})
	}

	return SharingResponse{FileID: fileID, Recipients: out}
}

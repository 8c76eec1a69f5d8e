package types

import (
	"time"

	"github.com/yeisme/filevault/pkg/internal/model"
)

// SyncUserRequest 同步用户资料，邮箱来自身份头.
type SyncUserRequest struct {
	GoogleID string `json:"googleId" rule:"omitempty,max=64"`
	Name     string `json:"name"     rule:"omitempty,max=255"`
	Avatar   string `json:"avatar"   rule:"omitempty,url,max=1024"`
}

// UserResponse 用户资料.
type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Avatar    string    `json:"avatar,omitempty"`
	GoogleID  string    `json:"googleId,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// NewUserResponse 构造用户资料响应.
func NewUserResponse(u *model.User) UserResponse {
	r := UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Avatar:    u.Avatar,
		CreatedAt: u.CreatedAt,
	}

	if u.GoogleID != nil {
		r.GoogleID = *u.GoogleID
	}

	return r
}

package queue

import "time"

// EventHeader 定义所有事件的通用头部元数据.
type EventHeader struct {
	// Topic 冗余记录消息主题，便于离线处理或转储后定位来源主题.
	Topic string `json:"topic"`
	// TraceID 分布式追踪/关联 ID.
	TraceID string `json:"trace_id,omitempty"`
	// Producer 生产者服务名或节点标识.
	Producer string `json:"producer,omitempty"`
	// OccurredAt 事件发生时间（UTC）.
	OccurredAt time.Time `json:"occurred_at"`
	// Version 事件负载版本.
	Version string `json:"version,omitempty"`
}

// Message 是统一的消息封装，Header + Payload.
type Message[T any] struct {
	Header  EventHeader `json:"header"`
	Payload T           `json:"payload"`
}

// FileRef 标识事件涉及的文件.
type FileRef struct {
	ID          string `json:"id"`
	OwnerID     string `json:"owner_id"`
	Filename    string `json:"filename"`
	Size        int64  `json:"size,omitempty"`
	MimeType    string `json:"mime_type,omitempty"`
	Checksum    string `json:"checksum,omitempty"`
	StorageKind string `json:"storage_kind,omitempty"`
}

// FileUploadedPayload 上传完成.
type FileUploadedPayload struct {
	File         FileRef `json:"file"`
	OriginalName string  `json:"original_name,omitempty"`
}

// FileRenamedPayload 改名完成.
type FileRenamedPayload struct {
	File    FileRef `json:"file"`
	OldName string  `json:"old_name"`
}

// FileDeletedPayload 删除完成.
type FileDeletedPayload struct {
	File FileRef `json:"file"`
}

// FileSharePayload 共享变更，用于 shared 与 unshared.
type FileSharePayload struct {
	File           FileRef `json:"file"`
	RecipientID    string  `json:"recipient_id,omitempty"`
	RecipientEmail string  `json:"recipient_email"`
}

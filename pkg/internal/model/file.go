package model

import (
	"time"
)

// File 文件记录. (owner_id, filename) 唯一；字节位置创建后不再改变.
// 没有软删除：被删除的记录必须释放文件名.
type File struct {
	ID           string `gorm:"primaryKey;size:26"                          json:"id"`
	OwnerID      string `gorm:"size:26;not null;uniqueIndex:idx_owner_filename,priority:1;index:idx_owner_created,priority:1" json:"owner_id"`
	Filename     string `gorm:"size:255;not null;uniqueIndex:idx_owner_filename,priority:2" json:"filename"`
	OriginalName string `gorm:"size:255;not null"                           json:"original_name"`
	Size         int64  `gorm:"not null"                                    json:"size"`
	MimeType     string `gorm:"size:255;not null"                           json:"mime_type"`
	Checksum     string `gorm:"size:16"                                     json:"checksum"`
	// StorageKind + LocalPath/ObjectKey 组成 Locator
	StorageKind StorageKind `gorm:"size:16;not null;index"  json:"storage_kind"`
	LocalPath   string      `gorm:"size:512;index"          json:"-"`
	ObjectKey   string      `gorm:"size:512"                json:"-"`
	CreatedAt   time.Time   `gorm:"index:idx_owner_created,priority:2" json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`

	// Shares 只在需要时预加载
	Shares []FileShare `gorm:"foreignKey:FileID;constraint:OnDelete:CASCADE" json:"-"`
}

// Locator 返回字节定位符.
func (f *File) Locator() Locator {
	return Locator{Kind: f.StorageKind, Path: f.LocalPath, Key: f.ObjectKey}
}

// SetLocator 写入定位符字段.
func (f *File) SetLocator(l Locator) {
	f.StorageKind = l.Kind
	f.LocalPath = l.Path
	f.ObjectKey = l.Key
}

// SharedWith 返回已预加载的接收者 ID.
func (f *File) SharedWith() []string {
	ids := make([]string, 0, len(f.Shares))
	for _, s := range f.Shares {
		ids = append(ids, s.RecipientID)
	}

	return ids
}

// IsOwner 是否为所有者.
func (f *File) IsOwner(userID string) bool {
	return userID != "" && f.OwnerID == userID
}

// IsSharedWith 是否已共享给 userID，需要先预加载 Shares.
func (f *File) IsSharedWith(userID string) bool {
	for _, s := range f.Shares {
		if s.RecipientID == userID {
			return true
		}
	}

	return false
}

// FileShare 共享关系，(file_id, recipient_id) 唯一以保证集合语义.
type FileShare struct {
	FileID      string    `gorm:"primaryKey;size:26"                     json:"file_id"`
	RecipientID string    `gorm:"primaryKey;size:26;index:idx_recipient" json:"recipient_id"`
	CreatedAt   time.Time `json:"created_at"`

	Recipient *User `gorm:"foreignKey:RecipientID;references:ID" json:"recipient,omitempty"`
}

// User 用户记录，由身份头同步而来. email 统一小写.
type User struct {
	ID        string    `gorm:"primaryKey;size:26"          json:"id"`
	Email     string    `gorm:"size:320;not null;uniqueIndex" json:"email"`
	Name      string    `gorm:"size:255"                    json:"name"`
	Avatar    string    `gorm:"size:1024"                   json:"avatar,omitempty"`
	GoogleID  *string   `gorm:"size:64;uniqueIndex"         json:"google_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Models 返回需要迁移的模型.
func Models() []any {
	return []any{&User{}, &File{}, &FileShare{}}
}

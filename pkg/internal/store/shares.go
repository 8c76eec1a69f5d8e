package store

import (
	"context"
	"fmt"

	"github.com/juju/errors"

	"github.com/yeisme/filevault/pkg/internal/model"
)

// AddShare 新增共享关系. 已存在时返回 Conflict.
func (s *FileStore) AddShare(ctx context.Context, fileID, recipientID string) error {
	share := model.FileShare{FileID: fileID, RecipientID: recipientID}

	err := s.db.WithContext(ctx).Omit("Recipient").Create(&share).Error
	if isDuplicate(err) {
		return errors.AlreadyExistsf("file already shared with this user")
	}

	if err != nil {
		return fmt.Errorf("add share: %w", err)
	}

	return nil
}

// RemoveShare 删除共享关系，不存在时不报错.
func (s *FileStore) RemoveShare(ctx context.Context, fileID, recipientID string) error {
	err := s.db.WithContext(ctx).
		Where("file_id = ? AND recipient_id = ?", fileID, recipientID).
		Delete(&model.FileShare{}).Error
	if err != nil {
		return fmt.Errorf("remove share: %w", err)
	}

	return nil
}

// Recipients 文件的共享接收者，按共享时间排序.
func (s *FileStore) Recipients(ctx context.Context, fileID string) ([]model.User, error) {
	var users []model.User

	err := s.db.WithContext(ctx).
		Joins("JOIN file_shares ON file_shares.recipient_id = users.id").
		Where("file_shares.file_id = ?", fileID).
		Order("file_shares.created_at").
		Order("users.id").
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("list recipients: %w", err)
	}

	return users, nil
}

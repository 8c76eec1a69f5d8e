package service

import (
	"context"

	"github.com/juju/errors"

	"github.com/yeisme/filevault/pkg/internal/model"
	nlog "github.com/yeisme/filevault/pkg/log"
	"github.com/yeisme/filevault/pkg/queue"
)

// ShareService 管理文件的共享接收者集合，只有所有者可以修改或查看.
// 重复共享是可观察的错误（Conflict），取消共享则是幂等的.
type ShareService struct {
	d     Deps
	users *UserService
}

// NewShareService 创建共享服务.
func NewShareService(d Deps) *ShareService {
	return &ShareService{d: d, users: NewUserService(d)}
}

// ownedFile 解析文件并要求调用者是所有者.
func (s *ShareService) ownedFile(ctx context.Context, fileID, ownerID string) (*model.File, error) {
	f, err := s.d.Files.FindByID(ctx, fileID)
	if err != nil {
		return nil, err
	}

	if err := requireOwner(ownerID, f); err != nil {
		return nil, err
	}

	return f, nil
}

// Share 把文件共享给邮箱对应的用户，返回更新后的记录.
func (s *ShareService) Share(ctx context.Context, fileID, ownerID, recipientEmail string) (*model.File, error) {
	f, err := s.ownedFile(ctx, fileID, ownerID)
	if err != nil {
		return nil, err
	}

	recipient, err := s.users.FindByEmail(ctx, recipientEmail)
	if err != nil {
		return nil, err
	}

	if recipient.ID == f.OwnerID {
		return nil, errors.NotValidf("sharing a file with its owner")
	}

	if f.IsSharedWith(recipient.ID) {
		return nil, errors.AlreadyExistsf("file already shared with %s", recipient.Email)
	}

	if err := s.d.Files.AddShare(ctx, f.ID, recipient.ID); err != nil {
		return nil, err
	}

	nlog.Logger().Info().Str("file_id", f.ID).Str("recipient", recipient.ID).Msg("file shared")

	s.d.Events.Emit(ctx, queue.TopicFileShared, queue.FileSharePayload{
		File:           fileRef(f),
		RecipientID:    recipient.ID,
		RecipientEmail: recipient.Email,
	})

	return s.d.Files.FindByID(ctx, f.ID)
}

// Unshare 取消共享. 接收者不在集合中（或邮箱未注册）时直接成功.
func (s *ShareService) Unshare(ctx context.Context, fileID, ownerID, recipientEmail string) (*model.File, error) {
	f, err := s.ownedFile(ctx, fileID, ownerID)
	if err != nil {
		return nil, err
	}

	recipient, err := s.users.FindByEmail(ctx, recipientEmail)
	if errors.Is(err, errors.NotFound) {
		return f, nil
	}

	if err != nil {
		return nil, err
	}

	if !f.IsSharedWith(recipient.ID) {
		return f, nil
	}

	if err := s.d.Files.RemoveShare(ctx, f.ID, recipient.ID); err != nil {
		return nil, err
	}

	s.d.Events.Emit(ctx, queue.TopicFileUnshared, queue.FileSharePayload{
		File:           fileRef(f),
		RecipientID:    recipient.ID,
		RecipientEmail: recipient.Email,
	})

	return s.d.Files.FindByID(ctx, f.ID)
}

// Sharing 所有者查看接收者列表；接收者与其他用户均为 Forbidden.
func (s *ShareService) Sharing(ctx context.Context, fileID, userID string) ([]model.User, error) {
	f, err := s.ownedFile(ctx, fileID, userID)
	if err != nil {
		return nil, err
	}

	return s.d.Files.Recipients(ctx, f.ID)
}

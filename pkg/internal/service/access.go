package service

import (
	"github.com/juju/errors"

	"github.com/yeisme/filevault/pkg/internal/model"
)

// CanRead 所有者或共享接收者可读. f.Shares 需要已预加载.
func CanRead(userID string, f *model.File) bool {
	return f.IsOwner(userID) || (userID != "" && f.IsSharedWith(userID))
}

// CanMutate 只有所有者可以改名、删除与管理共享.
func CanMutate(userID string, f *model.File) bool {
	return f.IsOwner(userID)
}

func requireRead(userID string, f *model.File) error {
	if !CanRead(userID, f) {
		return errors.Forbiddenf("access to file %q", f.ID)
	}

	return nil
}

func requireOwner(userID string, f *model.File) error {
	if !CanMutate(userID, f) {
		return errors.Forbiddenf("only the owner can modify file %q", f.ID)
	}

	return nil
}

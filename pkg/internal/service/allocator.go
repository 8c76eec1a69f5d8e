package service

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/juju/errors"
)

// MaxNameProbes 带序号候选名的最大探测次数.
const MaxNameProbes = 999

// NameChecker 判断文件名在所有者范围内是否已占用.
type NameChecker interface {
	NameTaken(ctx context.Context, ownerID, name, excludeID string) (bool, error)
}

// Allocator 为上传分配所有者范围内未被占用的文件名.
// 只是预检查，并发上传同名文件时最终由唯一索引裁决.
type Allocator struct {
	names NameChecker
}

// NewAllocator 创建文件名分配器.
func NewAllocator(names NameChecker) *Allocator {
	return &Allocator{names: names}
}

// Allocate 依次探测 desired、"base (1).ext" … "base (999).ext"，返回第一个空闲名称.
func (a *Allocator) Allocate(ctx context.Context, ownerID, desired string) (string, error) {
	taken, err := a.names.NameTaken(ctx, ownerID, desired, "")
	if err != nil {
		return "", err
	}

	if !taken {
		return desired, nil
	}

	ext := filepath.Ext(desired)
	base := strings.TrimSuffix(desired, ext)

	for n := 1; n <= MaxNameProbes; n++ {
		candidate := fmt.Sprintf("%s (%d)%s", base, n, ext)

		taken, err := a.names.NameTaken(ctx, ownerID, candidate, "")
		if err != nil {
			return "", err
		}

		if !taken {
			return candidate, nil
		}
	}

	return "", errors.QuotaLimitExceededf("no free filename for %q after %d attempts", desired, MaxNameProbes)
}

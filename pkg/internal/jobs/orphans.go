package jobs

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path"
	"time"

	"github.com/rs/zerolog"

	"github.com/yeisme/filevault/pkg/internal/backend"
	"github.com/yeisme/filevault/pkg/log"
)

// PathLister 返回某个所有者在本地后端被记录引用的相对路径集合.
type PathLister interface {
	LocalPathsByOwner(ctx context.Context, ownerID string) (map[string]struct{}, error)
}

// SweepResult 一次清理的统计.
type SweepResult struct {
	Scanned     int
	Removed     int
	TempRemoved int
}

// OrphanSweeper 删除本地根目录下没有任何记录引用的文件以及残留的上传临时文件.
type OrphanSweeper struct {
	local  *backend.LocalStore
	paths  PathLister
	grace  time.Duration
	logger *zerolog.Logger
}

// NewOrphanSweeper 创建清理器，只处理修改时间早于 grace 的文件.
func NewOrphanSweeper(local *backend.LocalStore, paths PathLister, grace time.Duration) *OrphanSweeper {
	return &OrphanSweeper{
		local:  local,
		paths:  paths,
		grace:  grace,
		logger: log.Component("jobs"),
	}
}

// Run 遍历一次本地根目录.
// 上传在写入字节后才创建记录，grace 内的新文件一律保留.
func (s *OrphanSweeper) Run(ctx context.Context, now time.Time) (SweepResult, error) {
	var res SweepResult

	cutoff := now.Add(-s.grace)
	referenced := make(map[string]map[string]struct{})

	err := s.local.Walk(ctx, func(f backend.LocalFile) error {
		res.Scanned++

		if !f.ModTime.Before(cutoff) {
			return nil
		}

		if f.Temp {
			if s.remove(f.Path) {
				res.TempRemoved++
			}

			return nil
		}

		owner := path.Dir(f.Path)

		set, ok := referenced[owner]
		if !ok {
			var err error

			set, err = s.paths.LocalPathsByOwner(ctx, owner)
			if err != nil {
				return err
			}

			referenced[owner] = set
		}

		if _, ok := set[f.Path]; ok {
			return nil
		}

		if s.remove(f.Path) {
			res.Removed++
		}

		return nil
	})

	return res, err
}

// remove 删除单个文件，失败只记录日志，不中断整轮清理.
func (s *OrphanSweeper) remove(rel string) bool {
	full, err := s.local.Resolve(rel)
	if err != nil {
		s.logger.Warn().Err(err).Str("path", rel).Msg("skip unresolvable path")
		return false
	}

	if err := os.Remove(full); err != nil && !errors.Is(err, fs.ErrNotExist) {
		s.logger.Warn().Err(err).Str("path", rel).Msg("remove orphan failed")
		return false
	}

	s.logger.Info().Str("path", rel).Msg("removed orphan file")

	return true
}

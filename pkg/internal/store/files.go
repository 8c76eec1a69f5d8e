package store

import (
	"context"
	"fmt"

	"github.com/juju/errors"
	"gorm.io/gorm"

	"github.com/yeisme/filevault/pkg/internal/model"
)

// SearchLimit 搜索结果上限.
const SearchLimit = 50

// FileStore 文件记录存储.
type FileStore struct {
	db *gorm.DB
}

// NewFileStore 创建文件记录存储.
func NewFileStore(db *gorm.DB) *FileStore {
	return &FileStore{db: db}
}

// recent 默认列表顺序：最新创建在前，id 作为同一时刻的次序.
func recent(db *gorm.DB) *gorm.DB {
	return db.Order("files.created_at DESC").Order("files.id DESC")
}

// Create 插入新记录. 文件名冲突返回 Conflict.
func (s *FileStore) Create(ctx context.Context, f *model.File) error {
	if err := f.Locator().Validate(); err != nil {
		return errors.NewNotValid(err, "storage locator")
	}

	if f.ID == "" {
		f.ID = model.NewID()
	}

	err := s.db.WithContext(ctx).Omit("Shares").Create(f).Error
	if isDuplicate(err) {
		return errors.AlreadyExistsf("file %q for this owner", f.Filename)
	}

	if err != nil {
		return fmt.Errorf("create file record: %w", err)
	}

	return nil
}

// FindByID 按 ID 查询并预加载共享关系.
func (s *FileStore) FindByID(ctx context.Context, id string) (*model.File, error) {
	var f model.File

	err := s.db.WithContext(ctx).Preload("Shares").Where("id = ?", id).First(&f).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.NotFoundf("file %q", id)
	}

	if err != nil {
		return nil, fmt.Errorf("find file %s: %w", id, err)
	}

	return &f, nil
}

// FindByOwnerAndName 按所有者与文件名精确查询.
func (s *FileStore) FindByOwnerAndName(ctx context.Context, ownerID, name string) (*model.File, error) {
	var f model.File

	err := s.db.WithContext(ctx).Where("owner_id = ? AND filename = ?", ownerID, name).First(&f).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.NotFoundf("file %q", name)
	}

	if err != nil {
		return nil, fmt.Errorf("find file %s/%s: %w", ownerID, name, err)
	}

	return &f, nil
}

// NameTaken 文件名在所有者范围内是否已被占用，excludeID 非空时排除该记录.
func (s *FileStore) NameTaken(ctx context.Context, ownerID, name, excludeID string) (bool, error) {
	q := s.db.WithContext(ctx).Model(&model.File{}).Where("owner_id = ? AND filename = ?", ownerID, name)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}

	var n int64
	if err := q.Count(&n).Error; err != nil {
		return false, fmt.Errorf("check filename: %w", err)
	}

	return n > 0, nil
}

// FindByOwner 所有者的全部文件，最新在前.
func (s *FileStore) FindByOwner(ctx context.Context, ownerID string) ([]model.File, error) {
	var files []model.File

	err := recent(s.db.WithContext(ctx)).Preload("Shares").Where("owner_id = ?", ownerID).Find(&files).Error
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}

	return files, nil
}

// FindSharedWith 共享给 userID 的文件，最新在前.
func (s *FileStore) FindSharedWith(ctx context.Context, userID string) ([]model.File, error) {
	var files []model.File

	err := recent(s.db.WithContext(ctx)).
		Joins("JOIN file_shares ON file_shares.file_id = files.id").
		Where("file_shares.recipient_id = ?", userID).
		Preload("Shares").
		Find(&files).Error
	if err != nil {
		return nil, fmt.Errorf("list shared files: %w", err)
	}

	return files, nil
}

// Search 所有者文件名的不区分大小写子串搜索，最新在前，最多 limit 条.
func (s *FileStore) Search(ctx context.Context, ownerID, query string, limit int) ([]model.File, error) {
	if limit <= 0 || limit > SearchLimit {
		limit = SearchLimit
	}

	var files []model.File

	err := recent(s.db.WithContext(ctx)).
		Where("owner_id = ?", ownerID).
		Where("LOWER(filename) LIKE ? ESCAPE '!'", containsPattern(query)).
		Limit(limit).
		Preload("Shares").
		Find(&files).Error
	if err != nil {
		return nil, fmt.Errorf("search files: %w", err)
	}

	return files, nil
}

// Rename 仅所有者可改名；新名称在所有者范围内必须空闲（排除自身）.
// 更新以旧文件名为条件，并发改名或约束冲突都返回 Conflict.
func (s *FileStore) Rename(ctx context.Context, id, ownerID, newName string) (*model.File, error) {
	f, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !f.IsOwner(ownerID) {
		return nil, errors.Forbiddenf("only the owner can rename this file")
	}

	if f.Filename == newName {
		return f, nil
	}

	taken, err := s.NameTaken(ctx, ownerID, newName, id)
	if err != nil {
		return nil, err
	}

	if taken {
		return nil, errors.AlreadyExistsf("file %q for this owner", newName)
	}

	res := s.db.WithContext(ctx).Model(&model.File{}).
		Where("id = ? AND owner_id = ? AND filename = ?", id, ownerID, f.Filename).
		Update("filename", newName)
	if isDuplicate(res.Error) {
		return nil, errors.AlreadyExistsf("file %q for this owner", newName)
	}

	if res.Error != nil {
		return nil, fmt.Errorf("rename file %s: %w", id, res.Error)
	}

	if res.RowsAffected == 0 {
		return nil, errors.AlreadyExistsf("file %q was modified concurrently", id)
	}

	return s.FindByID(ctx, id)
}

// Delete 在同一事务中删除共享关系与记录.
func (s *FileStore) Delete(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("file_id = ?", id).Delete(&model.FileShare{}).Error; err != nil {
			return fmt.Errorf("delete shares of %s: %w", id, err)
		}

		res := tx.Where("id = ?", id).Delete(&model.File{})
		if res.Error != nil {
			return fmt.Errorf("delete file %s: %w", id, res.Error)
		}

		if res.RowsAffected == 0 {
			return errors.NotFoundf("file %q", id)
		}

		return nil
	})
}

// FindByLocalPath 按本地相对路径查询记录，用于本地下载与孤儿清理.
func (s *FileStore) FindByLocalPath(ctx context.Context, path string) (*model.File, error) {
	var f model.File

	err := s.db.WithContext(ctx).Preload("Shares").
		Where("storage_kind = ? AND local_path = ?", model.StorageLocal, path).
		First(&f).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.NotFoundf("file at %q", path)
	}

	if err != nil {
		return nil, fmt.Errorf("find file by path: %w", err)
	}

	return &f, nil
}

// KindSummary 按存储后端汇总的用量.
type KindSummary struct {
	StorageKind model.StorageKind `json:"storage_kind"`
	Files       int64             `json:"files"`
	Bytes       int64             `json:"bytes"`
}

// SummaryByOwner 所有者按后端统计的文件数与字节数.
func (s *FileStore) SummaryByOwner(ctx context.Context, ownerID string) ([]KindSummary, error) {
	var rows []KindSummary

	err := s.db.WithContext(ctx).Model(&model.File{}).
		Select("storage_kind, COUNT(*) AS files, COALESCE(SUM(size), 0) AS bytes").
		Where("owner_id = ?", ownerID).
		Group("storage_kind").
		Order("storage_kind").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("summarize files: %w", err)
	}

	return rows, nil
}

// LocalPathsByOwner 所有者名下被记录引用的本地相对路径集合.
func (s *FileStore) LocalPathsByOwner(ctx context.Context, ownerID string) (map[string]struct{}, error) {
	var paths []string

	err := s.db.WithContext(ctx).Model(&model.File{}).
		Where("owner_id = ? AND storage_kind = ?", ownerID, model.StorageLocal).
		Pluck("local_path", &paths).Error
	if err != nil {
		return nil, fmt.Errorf("list local paths: %w", err)
	}

	set := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		set[p] = struct{}{}
	}

	return set, nil
}

package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/cespare/xxhash/v2"
	"github.com/juju/errors"

	"github.com/yeisme/filevault/pkg/cache"
	"github.com/yeisme/filevault/pkg/configs"
	"github.com/yeisme/filevault/pkg/internal/model"
	"github.com/yeisme/filevault/pkg/internal/store"
	nlog "github.com/yeisme/filevault/pkg/log"
	"github.com/yeisme/filevault/pkg/queue"
	"github.com/yeisme/filevault/pkg/rule"
	"github.com/yeisme/filevault/pkg/tracing"
)

// FileService 文件上传、查询、改名、删除与下载链接.
type FileService struct {
	d     Deps
	alloc *Allocator
}

// NewFileService 创建文件服务.
func NewFileService(d Deps) *FileService {
	return &FileService{d: d, alloc: NewAllocator(d.Files)}
}

// UploadInput 一次上传的内容. DesiredName 为空时使用 OriginalName.
type UploadInput struct {
	OwnerID      string
	OriginalName string
	DesiredName  string
	MimeType     string
	Data         []byte
}

// Download 下载链接与展示文件名.
type Download struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
}

// Stats 所有者的存储用量.
type Stats struct {
	Files     int64               `json:"files"`
	Bytes     int64               `json:"bytes"`
	ByBackend []store.KindSummary `json:"by_backend"`
}

// MaxFileSize 当前配置的单文件大小上限.
func (s *FileService) MaxFileSize() int64 {
	return s.d.config().Storage.MaxFileSize
}

// Checksum 内容的 xxhash64 十六进制摘要.
func Checksum(data []byte) string {
	return fmt.Sprintf("%016x", xxhash.Sum64(data))
}

func fileRef(f *model.File) queue.FileRef {
	return queue.FileRef{
		ID:          f.ID,
		OwnerID:     f.OwnerID,
		Filename:    f.Filename,
		Size:        f.Size,
		MimeType:    f.MimeType,
		Checksum:    f.Checksum,
		StorageKind: string(f.StorageKind),
	}
}

// validateUpload 在接触任何存储后端之前拒绝不合法的上传.
func validateUpload(cfg configs.StorageConfig, in *UploadInput) error {
	if in.OwnerID == "" {
		return errors.Unauthorizedf("missing owner")
	}

	if in.DesiredName == "" {
		in.DesiredName = in.OriginalName
	}

	if in.OriginalName == "" {
		in.OriginalName = in.DesiredName
	}

	if !rule.ValidFilename(in.DesiredName) {
		return errors.NotValidf("filename %q", in.DesiredName)
	}

	if strings.TrimSpace(in.MimeType) == "" {
		return errors.NotValidf("missing mime type")
	}

	if int64(len(in.Data)) > cfg.MaxFileSize {
		return errors.NotValidf("file size %d exceeds limit of %d bytes", len(in.Data), cfg.MaxFileSize)
	}

	return nil
}

// Upload 校验、分配文件名、写入后端并创建记录.
// 记录创建因并发冲突失败时尽力删除刚写入的字节，并返回 Conflict.
func (s *FileService) Upload(ctx context.Context, in UploadInput) (*model.File, error) {
	ctx, span := tracing.StartSpan(ctx, "files.upload")
	defer span.End()

	cfg := s.d.config().Storage
	if err := validateUpload(cfg, &in); err != nil {
		return nil, err
	}

	name, err := s.alloc.Allocate(ctx, in.OwnerID, in.DesiredName)
	if err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}

	loc, err := s.d.Router.Store(ctx, cfg.GetMode(), in.OwnerID, name, in.Data, in.MimeType)
	if err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}

	f := &model.File{
		ID:           model.NewID(),
		OwnerID:      in.OwnerID,
		Filename:     name,
		OriginalName: in.OriginalName,
		Size:         int64(len(in.Data)),
		MimeType:     in.MimeType,
		Checksum:     Checksum(in.Data),
	}
	f.SetLocator(loc)

	if err := s.d.Files.Create(ctx, f); err != nil {
		if rmErr := s.d.Router.Remove(context.WithoutCancel(ctx), loc); rmErr != nil {
			nlog.Logger().Warn().Err(rmErr).Str("locator", loc.String()).Msg("remove bytes of failed upload")
		}

		tracing.RecordError(span, err)

		return nil, err
	}

	nlog.Logger().Info().
		Str("file_id", f.ID).
		Str("owner", f.OwnerID).
		Str("filename", f.Filename).
		Str("backend", string(loc.Kind)).
		Int64("size", f.Size).
		Msg("file uploaded")

	s.d.Events.Emit(ctx, queue.TopicFileUploaded, queue.FileUploadedPayload{File: fileRef(f), OriginalName: f.OriginalName})
	s.invalidateStats(ctx, f.OwnerID)

	return f, nil
}

// AccessURL 记录的访问链接，不做权限判断.
func (s *FileService) AccessURL(ctx context.Context, f *model.File) (string, error) {
	return s.d.Router.AccessURL(ctx, f.Locator(), f.Filename)
}

// Get 返回可读的文件记录.
func (s *FileService) Get(ctx context.Context, id, userID string) (*model.File, error) {
	f, err := s.d.Files.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := requireRead(userID, f); err != nil {
		return nil, err
	}

	return f, nil
}

// List 所有者的文件，最新在前.
func (s *FileService) List(ctx context.Context, userID string) ([]model.File, error) {
	return s.d.Files.FindByOwner(ctx, userID)
}

// Shared 共享给 userID 的文件，最新在前.
func (s *FileService) Shared(ctx context.Context, userID string) ([]model.File, error) {
	return s.d.Files.FindSharedWith(ctx, userID)
}

// Search 按文件名子串搜索所有者的文件.
func (s *FileService) Search(ctx context.Context, userID, query string) ([]model.File, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.NotValidf("empty search query")
	}

	return s.d.Files.Search(ctx, userID, query, store.SearchLimit)
}

// Rename 所有者改名，新名称在所有者范围内必须空闲.
// 先解析记录与所有权，再校验新名称.
func (s *FileService) Rename(ctx context.Context, id, userID, newName string) (*model.File, error) {
	old, err := s.d.Files.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := requireOwner(userID, old); err != nil {
		return nil, err
	}

	newName = strings.TrimSpace(newName)
	if err := rule.ValidateVar(newName, "required,filename"); err != nil {
		return nil, errors.NewNotValid(err, fmt.Sprintf("filename %q", newName))
	}

	f, err := s.d.Files.Rename(ctx, id, userID, newName)
	if err != nil {
		return nil, err
	}

	if old.Filename != f.Filename {
		s.d.Events.Emit(ctx, queue.TopicFileRenamed, queue.FileRenamedPayload{File: fileRef(f), OldName: old.Filename})
	}

	return f, nil
}

// Delete 先删除存储中的字节，成功（或已不存在）后再删除记录.
func (s *FileService) Delete(ctx context.Context, id, userID string) error {
	ctx, span := tracing.StartSpan(ctx, "files.delete")
	defer span.End()

	f, err := s.d.Files.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := requireOwner(userID, f); err != nil {
		return err
	}

	if err := s.d.Router.Remove(ctx, f.Locator()); err != nil {
		tracing.RecordError(span, err)
		return err
	}

	if err := s.d.Files.Delete(ctx, id); err != nil {
		tracing.RecordError(span, err)
		return err
	}

	nlog.Logger().Info().Str("file_id", id).Str("owner", f.OwnerID).Msg("file deleted")

	s.d.Events.Emit(ctx, queue.TopicFileDeleted, queue.FileDeletedPayload{File: fileRef(f)})
	s.invalidateStats(ctx, f.OwnerID)

	return nil
}

// DownloadURL 所有者与共享接收者都可以获取下载链接.
func (s *FileService) DownloadURL(ctx context.Context, id, userID string) (*Download, error) {
	f, err := s.Get(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	url, err := s.AccessURL(ctx, f)
	if err != nil {
		return nil, err
	}

	return &Download{URL: url, Filename: f.Filename}, nil
}

// ResolveBlob 解析本地下载路由 /<owner>/<name>，返回记录与磁盘绝对路径.
func (s *FileService) ResolveBlob(ctx context.Context, owner, name, userID string) (*model.File, string, error) {
	rel := owner + "/" + name

	f, err := s.d.Files.FindByLocalPath(ctx, rel)
	if err != nil {
		return nil, "", err
	}

	if err := requireRead(userID, f); err != nil {
		return nil, "", err
	}

	abs, err := s.d.Router.Local().Resolve(rel)
	if err != nil {
		return nil, "", err
	}

	return f, abs, nil
}

func statsKey(ownerID string) string {
	return fmt.Sprintf("stats:%016x", xxhash.Sum64String(ownerID))
}

// Stats 所有者按后端汇总的用量，短时间缓存.
func (s *FileService) Stats(ctx context.Context, ownerID string) (*Stats, error) {
	ttl := s.d.config().KV.StatsTTL
	if ttl <= 0 {
		ttl = configs.DefaultStatsCacheTTL
	}

	st, err := cache.GetOrSet(ctx, s.d.Cache, statsKey(ownerID), func() (Stats, error) {
		rows, err := s.d.Files.SummaryByOwner(ctx, ownerID)
		if err != nil {
			return Stats{}, err
		}

		st := Stats{ByBackend: rows}
		for _, r := range rows {
			st.Files += r.Files
			st.Bytes += r.Bytes
		}

		return st, nil
	}, ttl)
	if err != nil {
		return nil, err
	}

	return &st, nil
}

func (s *FileService) invalidateStats(ctx context.Context, ownerID string) {
	if err := s.d.Cache.Delete(ctx, statsKey(ownerID)); err != nil {
		nlog.Logger().Debug().Err(err).Str("owner", ownerID).Msg("invalidate stats cache")
	}
}

// HandleFileDeleted 消费 fv.file.deleted，使其他实例缓存的用量失效.
func (s *FileService) HandleFileDeleted(ctx context.Context, msg *message.Message) error {
	env, err := queue.ParseFileDeleted(msg)
	if err != nil {
		return fmt.Errorf("decode %s: %w", queue.TopicFileDeleted, err)
	}

	s.invalidateStats(ctx, env.Payload.File.OwnerID)

	return nil
}

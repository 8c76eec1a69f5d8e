package backend

import (
	"context"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/juju/errors"
	"github.com/rs/zerolog"

	"github.com/yeisme/filevault/pkg/configs"
	"github.com/yeisme/filevault/pkg/internal/model"
)

// tempPrefix 上传中的临时文件前缀，清理任务据此识别残留.
const tempPrefix = ".upload-"

// LocalStore 本地文件系统后端：root/<ownerScope>/<name>.
type LocalStore struct {
	root   string
	prefix string
	logger *zerolog.Logger
}

// NewLocalStore 创建本地后端并确保根目录存在.
func NewLocalStore(cfg configs.LocalStorageConfig, logger *zerolog.Logger) (*LocalStore, error) {
	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("resolve storage root %s: %w", cfg.Root, err)
	}

	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create storage root %s: %w", root, err)
	}

	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	return &LocalStore{
		root:   root,
		prefix: strings.TrimRight(cfg.DownloadPrefix, "/"),
		logger: logger,
	}, nil
}

// Root 返回根目录绝对路径.
func (s *LocalStore) Root() string {
	return s.root
}

// Store 原子写入 root/ownerScope/name：先写临时文件并 fsync，再硬链接到目标名.
// 目标名已被占用时（例如改名后的旧文件或残留文件）改存为 <base>.<ulid><ext>，绝不覆盖已有字节.
func (s *LocalStore) Store(ctx context.Context, ownerScope, name string, data []byte) (model.Locator, error) {
	if err := ctx.Err(); err != nil {
		return model.Locator{}, err
	}

	if err := checkSegment(ownerScope); err != nil {
		return model.Locator{}, err
	}

	if err := checkSegment(name); err != nil {
		return model.Locator{}, err
	}

	dir := filepath.Join(s.root, ownerScope)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return model.Locator{}, fmt.Errorf("create owner dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, tempPrefix+"*")
	if err != nil {
		return model.Locator{}, fmt.Errorf("create temp file: %w", err)
	}

	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()

		return model.Locator{}, fmt.Errorf("write temp file: %w", err)
	}

	if err := tmp.Sync(); err != nil {
		tmp.Close()

		return model.Locator{}, fmt.Errorf("fsync temp file: %w", err)
	}

	if err := tmp.Close(); err != nil {
		return model.Locator{}, fmt.Errorf("close temp file: %w", err)
	}

	final := name

	err = os.Link(tmpPath, filepath.Join(dir, final))
	if errors.Is(err, fs.ErrExist) {
		final = uniqueVariant(name)
		s.logger.Debug().Str("owner", ownerScope).Str("name", name).Str("stored_as", final).
			Msg("target name taken on disk, storing under unique variant")

		err = os.Link(tmpPath, filepath.Join(dir, final))
	}

	if err != nil {
		return model.Locator{}, fmt.Errorf("link %s: %w", final, err)
	}

	return model.LocalLocator(path.Join(ownerScope, final)), nil
}

// Remove 删除文件，文件不存在视为成功.
func (s *LocalStore) Remove(_ context.Context, loc model.Locator) error {
	full, err := s.Resolve(loc.Path)
	if err != nil {
		return err
	}

	err = os.Remove(full)
	if errors.Is(err, fs.ErrNotExist) {
		s.logger.Warn().Str("path", loc.Path).Msg("local file already absent, treating delete as done")

		return nil
	}

	if err != nil {
		return fmt.Errorf("remove %s: %w", loc.Path, err)
	}

	return nil
}

// AccessURL 返回由下载路由解析的站内相对路径.
func (s *LocalStore) AccessURL(loc model.Locator) (string, error) {
	scope, name, err := splitLocalPath(loc.Path)
	if err != nil {
		return "", err
	}

	return s.prefix + "/" + url.PathEscape(scope) + "/" + url.PathEscape(name), nil
}

// Resolve 把相对路径转换为根目录下的绝对路径，拒绝越界路径.
func (s *LocalStore) Resolve(rel string) (string, error) {
	scope, name, err := splitLocalPath(rel)
	if err != nil {
		return "", err
	}

	return filepath.Join(s.root, scope, name), nil
}

// LocalFile 本地根目录下的一个文件.
type LocalFile struct {
	Path    string // 相对路径 owner/name
	ModTime time.Time
	Temp    bool // 未完成上传的临时文件
}

// Walk 遍历 root/<owner>/<name> 两级目录下的普通文件.
func (s *LocalStore) Walk(ctx context.Context, fn func(f LocalFile) error) error {
	owners, err := os.ReadDir(s.root)
	if err != nil {
		return fmt.Errorf("read storage root: %w", err)
	}

	for _, owner := range owners {
		if !owner.IsDir() {
			continue
		}

		entries, err := os.ReadDir(filepath.Join(s.root, owner.Name()))
		if err != nil {
			return fmt.Errorf("read owner dir %s: %w", owner.Name(), err)
		}

		for _, e := range entries {
			if err := ctx.Err(); err != nil {
				return err
			}

			if !e.Type().IsRegular() {
				continue
			}

			info, err := e.Info()
			if err != nil {
				continue
			}

			f := LocalFile{
				Path:    path.Join(owner.Name(), e.Name()),
				ModTime: info.ModTime(),
				Temp:    strings.HasPrefix(e.Name(), tempPrefix),
			}
			if err := fn(f); err != nil {
				return err
			}
		}
	}

	return nil
}

// splitLocalPath 解析 owner/name 形式的相对路径.
func splitLocalPath(rel string) (string, string, error) {
	scope, name, ok := strings.Cut(rel, "/")
	if !ok {
		return "", "", errors.NotValidf("local path %q", rel)
	}

	if err := checkSegment(scope); err != nil {
		return "", "", err
	}

	if err := checkSegment(name); err != nil {
		return "", "", err
	}

	return scope, name, nil
}

// checkSegment 确保单个路径段不能逃出所在目录.
func checkSegment(seg string) error {
	if seg == "" || seg == "." || seg == ".." ||
		strings.ContainsAny(seg, `/\`) || strings.ContainsRune(seg, 0) {
		return errors.NotValidf("path segment %q", seg)
	}

	return nil
}

package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/juju/errors"
	"gorm.io/gorm"

	"github.com/yeisme/filevault/pkg/internal/model"
)

// Identity 上游代理提供的已验证身份.
type Identity struct {
	Email    string
	Name     string
	Avatar   string
	GoogleID string
}

// UserStore 用户记录存储.
type UserStore struct {
	db *gorm.DB
}

// NewUserStore 创建用户记录存储.
func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{db: db}
}

// NormalizeEmail 统一小写并去掉首尾空白.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// FindByID 按 ID 查询用户.
func (s *UserStore) FindByID(ctx context.Context, id string) (*model.User, error) {
	return s.first(ctx, "id = ?", id)
}

// FindByEmail 按邮箱查询用户，不区分大小写.
func (s *UserStore) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.first(ctx, "email = ?", NormalizeEmail(email))
}

func (s *UserStore) first(ctx context.Context, query string, arg any) (*model.User, error) {
	var u model.User

	err := s.db.WithContext(ctx).Where(query, arg).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.NotFoundf("user")
	}

	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}

	return &u, nil
}

// FindOrCreate 按 google_id 或邮箱查找用户，不存在则创建；已存在时补齐资料.
func (s *UserStore) FindOrCreate(ctx context.Context, id Identity) (*model.User, error) {
	email := NormalizeEmail(id.Email)
	if email == "" {
		return nil, errors.NotValidf("empty email")
	}

	u, err := s.lookup(ctx, id.GoogleID, email)
	if errors.Is(err, errors.NotFound) {
		u = &model.User{ID: model.NewID(), Email: email, Name: id.Name, Avatar: id.Avatar}
		if id.GoogleID != "" {
			gid := id.GoogleID
			u.GoogleID = &gid
		}

		if u.Name == "" {
			u.Name = strings.SplitN(email, "@", 2)[0]
		}

		err = s.db.WithContext(ctx).Create(u).Error
		if isDuplicate(err) {
			// 并发创建，读回胜出者
			return s.lookup(ctx, id.GoogleID, email)
		}

		if err != nil {
			return nil, fmt.Errorf("create user: %w", err)
		}

		return u, nil
	}

	if err != nil {
		return nil, err
	}

	return s.refresh(ctx, u, id)
}

func (s *UserStore) lookup(ctx context.Context, googleID, email string) (*model.User, error) {
	if googleID != "" {
		u, err := s.first(ctx, "google_id = ?", googleID)
		if !errors.Is(err, errors.NotFound) {
			return u, err
		}
	}

	return s.first(ctx, "email = ?", email)
}

// refresh 仅更新请求中带有的非空字段.
func (s *UserStore) refresh(ctx context.Context, u *model.User, id Identity) (*model.User, error) {
	updates := map[string]any{}

	if id.Name != "" && id.Name != u.Name {
		updates["name"] = id.Name
	}

	if id.Avatar != "" && id.Avatar != u.Avatar {
		updates["avatar"] = id.Avatar
	}

	if id.GoogleID != "" && u.GoogleID == nil {
		updates["google_id"] = id.GoogleID
	}

	if len(updates) == 0 {
		return u, nil
	}

	if err := s.db.WithContext(ctx).Model(u).Updates(updates).Error; err != nil {
		if isDuplicate(err) {
			return nil, errors.AlreadyExistsf("google account linked to another user")
		}

		return nil, fmt.Errorf("update user: %w", err)
	}

	return s.FindByID(ctx, u.ID)
}

package service

import (
	"context"

	"github.com/juju/errors"

	"github.com/yeisme/filevault/pkg/cache"
	"github.com/yeisme/filevault/pkg/configs"
	"github.com/yeisme/filevault/pkg/internal/model"
	"github.com/yeisme/filevault/pkg/internal/store"
	nlog "github.com/yeisme/filevault/pkg/log"
)

// UserService 用户目录：按身份查找或创建用户，按邮箱查询（带缓存）.
type UserService struct {
	d Deps
}

// NewUserService 创建用户服务.
func NewUserService(d Deps) *UserService {
	return &UserService{d: d}
}

func emailKey(email string) string {
	return "user:email:" + email
}

// FindByEmail 按小写邮箱查询用户，命中缓存时不访问数据库.
func (s *UserService) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	email = store.NormalizeEmail(email)
	if email == "" {
		return nil, errors.NotValidf("empty email")
	}

	ttl := s.d.config().KV.UserTTL
	if ttl <= 0 {
		ttl = configs.DefaultUserCacheTTL
	}

	u, err := cache.GetOrSet(ctx, s.d.Cache, emailKey(email), func() (model.User, error) {
		u, err := s.d.Users.FindByEmail(ctx, email)
		if err != nil {
			return model.User{}, err
		}

		return *u, nil
	}, ttl)
	if err != nil {
		return nil, err
	}

	return &u, nil
}

// FindByID 按 ID 查询用户.
func (s *UserService) FindByID(ctx context.Context, id string) (*model.User, error) {
	return s.d.Users.FindByID(ctx, id)
}

// Sync 按身份查找或创建用户并刷新资料，之后使该邮箱的缓存失效.
func (s *UserService) Sync(ctx context.Context, id store.Identity) (*model.User, error) {
	u, err := s.d.Users.FindOrCreate(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.d.Cache.Delete(ctx, emailKey(u.Email)); err != nil {
		nlog.Logger().Debug().Err(err).Str("email", u.Email).Msg("invalidate user cache")
	}

	return u, nil
}

// Resolve 认证中间件使用：已知用户走缓存，首次出现的身份才创建记录.
func (s *UserService) Resolve(ctx context.Context, id store.Identity) (*model.User, error) {
	u, err := s.FindByEmail(ctx, id.Email)
	if err == nil {
		return u, nil
	}

	if !errors.Is(err, errors.NotFound) {
		return nil, err
	}

	return s.Sync(ctx, id)
}

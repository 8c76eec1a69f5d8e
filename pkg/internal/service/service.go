// Package service 实现文件服务的业务规则：文件名分配、访问控制、上传删除与共享.
//
// 存在性先于权限判断：标识符不存在返回 NotFound，存在但无权访问返回 Forbidden.
package service

import (
	"github.com/yeisme/filevault/pkg/cache"
	"github.com/yeisme/filevault/pkg/configs"
	"github.com/yeisme/filevault/pkg/internal/backend"
	"github.com/yeisme/filevault/pkg/internal/mq"
	"github.com/yeisme/filevault/pkg/internal/store"
)

// Deps 服务层依赖. Cache 与 Events 可以为 nil.
type Deps struct {
	Files  *store.FileStore
	Users  *store.UserStore
	Router *backend.Router
	Cache  *cache.Cache
	Events *mq.Bus
	// Config 每次调用时读取，配置热更新在下一次操作生效；nil 时使用全局配置
	Config func() *configs.AppConfig
}

func (d Deps) config() *configs.AppConfig {
	if d.Config != nil {
		return d.Config()
	}

	return configs.GetConfig()
}

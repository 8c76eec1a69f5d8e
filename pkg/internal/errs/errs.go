// Package errs 定义文件服务的错误分类及其到 HTTP 状态码的映射.
//
// 错误类型基于 github.com/juju/errors 的 ConstError，服务层用
// errors.NotFoundf / errors.Forbiddenf 等构造，这里只负责识别.
package errs

import (
	"fmt"
	"net/http"

	"github.com/juju/errors"
)

// 错误分类.
const (
	NotFound           = errors.NotFound           // 标识符不存在
	Forbidden          = errors.Forbidden          // 已认证但无权限
	Conflict           = errors.AlreadyExists      // 文件名或共享重复
	InvalidInput       = errors.NotValid           // 超限、缺少类型、自我共享、空查询
	BackendUnavailable = errors.NotYetAvailable    // 存储后端未配置或不可达
	ResourceExhausted  = errors.QuotaLimitExceeded // 文件名探测次数用尽
	Unauthorized       = errors.Unauthorized       // 缺少身份
)

type kind struct {
	err    errors.ConstError
	status int
	code   string
}

var kinds = []kind{
	{NotFound, http.StatusNotFound, "NOT_FOUND"},
	{Forbidden, http.StatusForbidden, "FORBIDDEN"},
	{Conflict, http.StatusConflict, "CONFLICT"},
	{InvalidInput, http.StatusBadRequest, "INVALID_INPUT"},
	{BackendUnavailable, http.StatusServiceUnavailable, "BACKEND_UNAVAILABLE"},
	{ResourceExhausted, http.StatusInsufficientStorage, "RESOURCE_EXHAUSTED"},
	{Unauthorized, http.StatusUnauthorized, "UNAUTHORIZED"},
}

func lookup(err error) (kind, bool) {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k, true
		}
	}

	return kind{}, false
}

// Status 返回错误对应的 HTTP 状态码，未分类错误为 500.
func Status(err error) int {
	if k, ok := lookup(err); ok {
		return k.status
	}

	return http.StatusInternalServerError
}

// Code 返回机器可读的错误码.
func Code(err error) string {
	if k, ok := lookup(err); ok {
		return k.code
	}

	return "INTERNAL"
}

// Is 报告 err 是否属于给定分类.
func Is(err error, c errors.ConstError) bool {
	return errors.Is(err, c)
}

// Wrap 给底层错误附加分类，保留原始错误链.
func Wrap(err error, c errors.ConstError, format string, args ...any) error {
	return fmt.Errorf("%s: %w: %w", fmt.Sprintf(format, args...), err, c)
}

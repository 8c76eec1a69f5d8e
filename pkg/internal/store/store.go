// Package store 是文件记录与用户记录的持久化层（gorm）.
//
// (owner_id, filename) 与 (file_id, recipient_id) 的唯一性由数据库约束保证，
// 违反约束时返回满足 errs.Conflict 的错误；上层的预检查只是尽力而为.
package store

import (
	"strings"

	"github.com/juju/errors"
	"gorm.io/gorm"
)

// isDuplicate 判断是否为唯一约束冲突.
// TranslateError 覆盖大部分驱动，其余按错误文本兜底.
func isDuplicate(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	msg := strings.ToLower(err.Error())

	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate entry") ||
		strings.Contains(msg, "duplicate key")
}

// likeEscaper 转义 LIKE 通配符，配合 ESCAPE '!' 使用.
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

func containsPattern(q string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(q)) + "%"
}

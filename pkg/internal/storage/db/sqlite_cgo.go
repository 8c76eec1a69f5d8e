//go:build !no_sqlite && cgo

package db

import (
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/yeisme/filevault/pkg/configs"
)

// mattn/go-sqlite3 使用 _foreign_keys=1 这类参数，把 _pragma=name(value) 转换过去.
var pragmaReplacer = strings.NewReplacer(
	"_pragma=foreign_keys(1)", "_foreign_keys=1",
	"_pragma=journal_mode(WAL)", "_journal_mode=WAL",
	"_pragma=busy_timeout(5000)", "_busy_timeout=5000",
)

// openSQLite 使用 mattn/go-sqlite3 (CGo).
func openSQLite(dsn string) gorm.Dialector {
	return sqlite.Open(pragmaReplacer.Replace(dsn))
}

func init() {
	RegisterDialectorFactory(configs.SQLite, openSQLite)
}

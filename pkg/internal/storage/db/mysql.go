//go:build !no_mysql

package db

import (
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/yeisme/filevault/pkg/configs"
)

// utf8mb4 下 InnoDB 单列索引上限 3072 字节，未标注 size 的字符串列统一按 255 建表.
const mysqlDefaultStringSize = 255

func openMySQL(dsn string) gorm.Dialector {
	return mysql.New(mysql.Config{
		DSN:               dsn,
		DefaultStringSize: mysqlDefaultStringSize,
	})
}

func init() {
	for _, t := range []configs.DBType{configs.MySQL, configs.MariaDB} {
		RegisterDialectorFactory(t, openMySQL)
	}
}

package mysql

import (
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// isDuplicateError 判断是否为唯一索引冲突错误
// - MySQL 1062: Duplicate entry 'xxx' for key 'yyy'
// - SQLite: UNIQUE constraint failed(测试环境)
func isDuplicateError(err error) bool {
	if err == nil {
		return false
	}
	// TranslateError开启后GORM会统一翻译
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "Duplicate entry") || strings.Contains(msg, "UNIQUE constraint failed")
}

// skipLocked 事务内使用SELECT ... FOR UPDATE SKIP LOCKED
// table为空表示锁定FROM中的全部表;SQLite驱动会忽略该子句
func skipLocked(table string) clause.Locking {
	lock := clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}
	if table != "" {
		lock.Table = clause.Table{Name: table}
	}
	return lock
}

// forUpdate SELECT ... FOR UPDATE
func forUpdate() clause.Locking {
	return clause.Locking{Strength: "UPDATE"}
}

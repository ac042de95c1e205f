// Package sqlite 提供基于纯 Go 驱动的 SQLite 连接，用于本地开发和测试。
package sqlite

import (
	"Abridge_1.0/backend/go/internal/config"
	"fmt"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Open 打开配置中的 SQLite 数据库并开启外键约束。
func Open(cfg *config.SQLiteConfig) (*gorm.DB, error) {
	path := cfg.Path
	if path == "" || path == ":memory:" {
		return OpenMemory()
	}
	return open(fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", path))
}

// OpenMemory 打开一个独立的内存数据库。每次调用得到的数据库互不可见。
// 连接数限制为 1，连接一直保持打开，数据库的生命周期与返回的 *gorm.DB 相同。
func OpenMemory() (*gorm.DB, error) {
	db, err := open(fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", uuid.NewString()))
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}

func open(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("无法打开 SQLite: %w", err)
	}
	return db, nil
}

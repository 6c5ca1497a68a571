package testutil

import (
	"testing"

	"eduai_backend/pkg/database"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// DB 返回迁移完成的内存数据库，每个测试独享一份
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		tb.Fatalf("open test db: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		tb.Fatalf("migrate test db: %v", err)
	}
	return db
}

// SeededDB 在 DB 基础上写入默认成就、徽章与课程分类
func SeededDB(tb testing.TB) *gorm.DB {
	tb.Helper()
	db := DB(tb)
	if err := database.SeedDefaults(db); err != nil {
		tb.Fatalf("seed defaults: %v", err)
	}
	return db
}

// Package sqlite opens embedded databases for the admin CLI and repository tests.
package sqlite

import (
	"fmt"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Open opens (or creates) a SQLite database file. SQLite has a single writer, so the pool
// is capped at one connection and transactions serialise the same way row locks do on
// PostgreSQL.
func Open(path string) (*gorm.DB, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite path is empty")
	}
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
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

// OpenMemory opens a private in-memory database identified by name.
func OpenMemory(name string) (*gorm.DB, error) {
	safe := strings.NewReplacer("/", "_", " ", "_", "#", "_").Replace(name)
	return Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", safe))
}

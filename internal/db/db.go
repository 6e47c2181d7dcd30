package db

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB 是一个全局的数据库连接实例
var DB *gorm.DB

// DefaultPath is used when no database path is configured.
const DefaultPath = "slugblog.db"

// Init 初始化数据库连接并执行自动迁移。
// databasePath 为空时将回退到默认值 slugblog.db。
func Init(databasePath string) error {
	path := strings.TrimSpace(databasePath)
	if path == "" {
		path = DefaultPath
	}

	if err := ensureParentDir(path); err != nil {
		return err
	}

	gdb, err := Open(path, logger.Default.LogMode(logger.Warn))
	if err != nil {
		return err
	}

	if err := Migrate(gdb); err != nil {
		return err
	}

	DB = gdb
	return nil
}

// Open connects to the sqlite database at dsn. All access goes through a
// single connection so every transaction sees a consistent view of the
// slug table.
func Open(dsn string, log logger.Interface) (*gorm.DB, error) {
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         log,
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	return gdb, nil
}

// Migrate creates the post, old and slug tables.
func Migrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		&Post{},
		&ArchiveEntry{},
		&SlugRecord{},
	)
}

func ensureParentDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}

	info, err := os.Stat(dir)
	if err == nil {
		if !info.IsDir() {
			return errors.New("database path parent is not a directory")
		}
		return nil
	}

	if os.IsNotExist(err) {
		return os.MkdirAll(dir, 0o755)
	}

	return err
}

package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/slugblog/internal/db"
	"github.com/slugblog/internal/logging"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupServiceTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:service-%d?mode=memory&cache=shared", time.Now().UnixNano())
	gdb, err := db.Open(dsn, logger.Default.LogMode(logger.Silent))
	require.NoError(t, err, "failed to open test database")
	require.NoError(t, db.Migrate(gdb), "failed to migrate test database")

	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return gdb
}

func setupBlog(t *testing.T, opts Options) (*gorm.DB, *Blog) {
	t.Helper()
	gdb := setupServiceTestDB(t)
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	return gdb, NewBlog(gdb, opts)
}

func mustCreatePost(t *testing.T, blog *Blog, title, content string) *db.Post {
	t.Helper()
	post, err := blog.Posts.Create(context.Background(), PostInput{Title: title, Content: content})
	require.NoError(t, err)
	return post
}

func mustBind(t *testing.T, blog *Blog, slug string, id db.PostID) {
	t.Helper()
	_, err := blog.Slugs.Bind(context.Background(), slug, id)
	require.NoError(t, err)
}

func strPtr(s string) *string {
	return &s
}

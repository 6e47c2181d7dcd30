package db

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:db-%d?mode=memory&cache=shared", time.Now().UnixNano())
	gdb, err := Open(dsn, logger.Default.LogMode(logger.Silent))
	require.NoError(t, err, "failed to open test database")
	require.NoError(t, Migrate(gdb), "failed to migrate test database")
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return gdb
}

func TestNewPostDefaultsToVisible(t *testing.T) {
	post := NewPost("标题", nil, "正文", time.Time{})

	assert.False(t, post.Draft)
	assert.False(t, post.ID.IsZero())
	assert.False(t, post.Published.IsZero())
	assert.Equal(t, time.UTC, post.Published.Location())
}

func TestNewPostAllocatesDistinctIDs(t *testing.T) {
	a := NewPost("a", nil, "a", time.Time{})
	b := NewPost("b", nil, "b", time.Time{})
	assert.NotEqual(t, a.ID, b.ID)
}

func TestPostIDStoredAsBlob(t *testing.T) {
	gdb := openTestDB(t)

	post := NewPost("hello", nil, "world", time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC))
	require.NoError(t, gdb.Create(&post).Error)

	var kind string
	require.NoError(t, gdb.Raw("SELECT typeof(id) FROM post").Scan(&kind).Error)
	assert.Equal(t, "blob", kind)

	var loaded Post
	require.NoError(t, gdb.First(&loaded, "id = ?", post.ID).Error)
	assert.Equal(t, post.ID, loaded.ID)
	assert.False(t, loaded.Draft)
}

func TestParsePostIDRoundTrip(t *testing.T) {
	id := NewPostID()
	parsed, err := ParsePostID(id.String())
	require.NoError(t, err)
	assert.Equal(t, id, parsed)

	_, err = ParsePostID("not-a-uuid")
	assert.Error(t, err)
}

func TestArchiveEntrySnapshotDecodes(t *testing.T) {
	subtitle := "副标题"
	post := NewPost("标题", &subtitle, "旧内容", time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC))

	data, err := SnapshotOf(post).Encode()
	require.NoError(t, err)

	entry := ArchiveEntry{PostID: post.ID, Data: data, ContentHash: HashContent(data)}
	snapshot, err := entry.Snapshot()
	require.NoError(t, err)

	assert.Equal(t, "旧内容", snapshot.Content)
	require.NotNil(t, snapshot.Subtitle)
	assert.Equal(t, subtitle, *snapshot.Subtitle)
	assert.Len(t, entry.ContentHash, 64)
	assert.Equal(t, entry.ContentHash, HashContent(data))
}

func TestSnapshotOfCopiesSubtitle(t *testing.T) {
	subtitle := "before"
	post := NewPost("t", &subtitle, "c", time.Time{})
	snapshot := SnapshotOf(post)

	subtitle = "after"
	assert.Equal(t, "before", *snapshot.Subtitle)
}

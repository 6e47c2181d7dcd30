package db

import (
	"encoding/hex"
	"encoding/json"
	"time"

	"golang.org/x/crypto/blake2b"
)

// ArchiveEntry 记录文章被覆盖前的内容快照，只追加不修改。
// PostID is a weak reference: the post may have been deleted since.
type ArchiveEntry struct {
	Seq         uint      `gorm:"primaryKey;autoIncrement" json:"seq"`
	PostID      PostID    `gorm:"column:id;not null;index" json:"postId"`
	Data        string    `gorm:"type:text" json:"data"`
	ContentHash string    `json:"contentHash"`
	ArchivedAt  time.Time `gorm:"not null" json:"archivedAt"`
}

// TableName 指定自定义表名。
func (ArchiveEntry) TableName() string {
	return "old"
}

// PostSnapshot is the serialized form stored in ArchiveEntry.Data.
type PostSnapshot struct {
	Title     string    `json:"title"`
	Subtitle  *string   `json:"subtitle,omitempty"`
	Published time.Time `json:"published"`
	Content   string    `json:"content"`
	Draft     bool      `json:"draft"`
}

// SnapshotOf captures the mutable fields of p.
func SnapshotOf(p Post) PostSnapshot {
	var subtitle *string
	if p.Subtitle != nil {
		s := *p.Subtitle
		subtitle = &s
	}
	return PostSnapshot{
		Title:     p.Title,
		Subtitle:  subtitle,
		Published: p.Published,
		Content:   p.Content,
		Draft:     p.Draft,
	}
}

// Encode serializes the snapshot for storage.
func (s PostSnapshot) Encode() (string, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Snapshot decodes Data.
func (e ArchiveEntry) Snapshot() (PostSnapshot, error) {
	var snapshot PostSnapshot
	if err := json.Unmarshal([]byte(e.Data), &snapshot); err != nil {
		return PostSnapshot{}, err
	}
	return snapshot, nil
}

// HashContent returns the hex blake2b-256 digest used for ContentHash.
func HashContent(data string) string {
	sum := blake2b.Sum256([]byte(data))
	return hex.EncodeToString(sum[:])
}

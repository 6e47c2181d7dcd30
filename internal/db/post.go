package db

import (
	"database/sql/driver"
	"time"

	"github.com/google/uuid"
)

// PostID is the opaque, immutable key of a post. It is stored as a 16 byte
// BLOB and rendered as a canonical UUID string everywhere else.
type PostID uuid.UUID

// NewPostID allocates a fresh random id.
func NewPostID() PostID {
	return PostID(uuid.New())
}

// ParsePostID parses the textual form produced by String.
func ParsePostID(s string) (PostID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return PostID{}, err
	}
	return PostID(u), nil
}

func (id PostID) String() string {
	return uuid.UUID(id).String()
}

// IsZero reports whether id is the nil id.
func (id PostID) IsZero() bool {
	return uuid.UUID(id) == uuid.Nil
}

// Value stores the raw 16 bytes.
func (id PostID) Value() (driver.Value, error) {
	b := make([]byte, len(id))
	copy(b, id[:])
	return b, nil
}

// Scan accepts both the raw bytes and the textual form.
func (id *PostID) Scan(src interface{}) error {
	return (*uuid.UUID)(id).Scan(src)
}

// GormDataType keeps the column a blob on every dialect.
func (PostID) GormDataType() string {
	return "blob"
}

func (id PostID) MarshalText() ([]byte, error) {
	return uuid.UUID(id).MarshalText()
}

func (id *PostID) UnmarshalText(data []byte) error {
	return (*uuid.UUID)(id).UnmarshalText(data)
}

// Post 定义了文章模型，每个 ID 只有一行在线数据。
type Post struct {
	ID        PostID    `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"not null" json:"title"`
	Subtitle  *string   `json:"subtitle,omitempty"`
	Published time.Time `gorm:"not null" json:"published"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	Draft     bool      `gorm:"not null;default:false" json:"draft"`
}

// TableName 指定自定义表名。
func (Post) TableName() string {
	return "post"
}

// NewPost builds a visible (non-draft) post with a freshly allocated id.
// A zero published time means now.
func NewPost(title string, subtitle *string, content string, published time.Time) Post {
	if published.IsZero() {
		published = time.Now()
	}
	return Post{
		ID:        NewPostID(),
		Title:     title,
		Subtitle:  subtitle,
		Published: published.UTC(),
		Content:   content,
		Draft:     false,
	}
}

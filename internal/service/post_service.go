package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/slugblog/internal/db"
	"github.com/slugblog/internal/logging"
	"gorm.io/gorm"
)

// PostService wraps post related database operations. It is the only writer
// of the post table.
type PostService struct {
	db       *gorm.DB
	archive  *ArchiveService
	log      *logrus.Logger
	onChange func()
}

// PostInput represents fields accepted when creating a post.
type PostInput struct {
	Title     string
	Subtitle  *string
	Content   string
	Published time.Time
	Draft     bool
}

// Mutator edits a loaded post in place. Returning an error aborts the update.
type Mutator func(post *db.Post) error

// NewPostService creates a PostService instance.
func NewPostService(gdb *gorm.DB, archive *ArchiveService, log *logrus.Logger) *PostService {
	return &PostService{db: gdb, archive: archive, log: logging.OrDefault(log)}
}

// WithTx returns a copy of the service (and its archive) bound to tx.
func (s *PostService) WithTx(tx *gorm.DB) *PostService {
	clone := *s
	clone.db = tx
	clone.archive = s.archive.WithTx(tx)
	return &clone
}

// Create validates input and stores a new post under a fresh id.
func (s *PostService) Create(ctx context.Context, input PostInput) (*db.Post, error) {
	post := db.NewPost(input.Title, normalizeSubtitle(input.Subtitle), input.Content, input.Published)
	post.Draft = input.Draft

	if err := validatePost(&post); err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Create(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrConflict
		}
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"post": post.ID.String(), "draft": post.Draft}).Info("created post")
	s.changed()
	return &post, nil
}

// Get fetches a post by id regardless of its draft flag.
func (s *PostService) Get(ctx context.Context, id db.PostID) (*db.Post, error) {
	var post db.Post
	if err := s.db.WithContext(ctx).First(&post, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return &post, nil
}

// Exists reports whether a live post row exists for id.
func (s *PostService) Exists(ctx context.Context, id db.PostID) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&db.Post{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Update applies mutate to the stored post. When the content changes the
// previous version is archived first, in the same transaction.
func (s *PostService) Update(ctx context.Context, id db.PostID, mutate Mutator) (*db.Post, error) {
	var updated db.Post
	var archived bool

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing db.Post
		if err := tx.First(&existing, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPostNotFound
			}
			return err
		}

		snapshot := db.SnapshotOf(existing)
		updated = existing
		if err := mutate(&updated); err != nil {
			return err
		}
		if updated.ID != existing.ID {
			return ErrIDImmutable
		}
		updated.Subtitle = normalizeSubtitle(updated.Subtitle)
		updated.Published = updated.Published.UTC()
		if err := validatePost(&updated); err != nil {
			return err
		}

		if updated.Content != existing.Content {
			if _, err := s.archive.WithTx(tx).Archive(ctx, id, snapshot); err != nil {
				return err
			}
			archived = true
		}

		updates := map[string]interface{}{
			"title":     updated.Title,
			"subtitle":  updated.Subtitle,
			"published": updated.Published,
			"content":   updated.Content,
			"draft":     updated.Draft,
		}
		return tx.Model(&db.Post{}).Where("id = ?", id).Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"post": id.String(), "archived": archived}).Info("updated post")
	s.changed()
	return &updated, nil
}

// SetDraft toggles public visibility without touching content or published.
func (s *PostService) SetDraft(ctx context.Context, id db.PostID, draft bool) error {
	result := s.db.WithContext(ctx).Model(&db.Post{}).Where("id = ?", id).Update("draft", draft)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPostNotFound
	}

	s.log.WithFields(logrus.Fields{"post": id.String(), "draft": draft}).Info("changed post visibility")
	s.changed()
	return nil
}

// Delete removes the live post. Archive entries and slug records that
// reference it are left in place.
func (s *PostService) Delete(ctx context.Context, id db.PostID) error {
	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&db.Post{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPostNotFound
	}

	s.log.WithField("post", id.String()).Info("deleted post")
	s.changed()
	return nil
}

func (s *PostService) changed() {
	if s.onChange != nil {
		s.onChange()
	}
}

func validatePost(post *db.Post) error {
	if strings.TrimSpace(post.Title) == "" {
		return ErrTitleRequired
	}
	if strings.TrimSpace(post.Content) == "" {
		return ErrContentRequired
	}
	if post.Published.IsZero() {
		return ErrPublishedZero
	}
	return nil
}

func normalizeSubtitle(subtitle *string) *string {
	if subtitle == nil {
		return nil
	}
	if strings.TrimSpace(*subtitle) == "" {
		return nil
	}
	s := *subtitle
	return &s
}

package service

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/gosimple/slug"
	"github.com/microcosm-cc/bluemonday"
	"github.com/sirupsen/logrus"
	"github.com/slugblog/internal/db"
	"github.com/slugblog/internal/logging"
	"gorm.io/gorm"
)

const (
	slugTitleRunes   = 26
	fallbackSlugBase = "post"
)

var titlePolicy = bluemonday.StrictPolicy()

// SlugService is the slug directory: it binds slugs to posts and turns
// renamed slugs into forward pointers.
type SlugService struct {
	db       *gorm.DB
	log      *logrus.Logger
	collapse bool
	onChange func()
}

// NewSlugService creates a SlugService. With collapse set, Rename re-points
// every slug that forwarded to the old slug straight at the new one.
func NewSlugService(gdb *gorm.DB, log *logrus.Logger, collapse bool) *SlugService {
	return &SlugService{db: gdb, log: logging.OrDefault(log), collapse: collapse}
}

// WithTx returns a copy of the service bound to tx.
func (s *SlugService) WithTx(tx *gorm.DB) *SlugService {
	clone := *s
	clone.db = tx
	return &clone
}

// Bind creates a new live slug for an existing post.
func (s *SlugService) Bind(ctx context.Context, value string, id db.PostID) (*db.SlugRecord, error) {
	if err := ValidateSlug(value); err != nil {
		return nil, err
	}

	var record db.SlugRecord
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requirePost(tx, id); err != nil {
			return err
		}
		if err := requireFreeSlug(tx, value); err != nil {
			return err
		}

		record = db.SlugRecord{Slug: value, PostID: id}
		return createSlug(tx, &record)
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"slug": value, "post": id.String()}).Info("bound slug")
	s.changed()
	return &record, nil
}

// Rename creates newSlug for id and turns oldSlug into a forward pointer to
// it. Both writes happen in one transaction, so no reader sees oldSlug
// pointing at a slug that does not exist yet.
func (s *SlugService) Rename(ctx context.Context, oldSlug, newSlug string, id db.PostID) (*db.SlugRecord, error) {
	if err := ValidateSlug(newSlug); err != nil {
		return nil, err
	}

	var record db.SlugRecord
	var collapsed int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		old, err := lookupSlug(tx, oldSlug)
		if err != nil {
			return err
		}
		if old.PostID != id {
			return ErrSlugOwnership
		}
		if !old.Live() {
			return ErrSlugSuperseded
		}
		if err := requirePost(tx, id); err != nil {
			return err
		}
		if err := requireFreeSlug(tx, newSlug); err != nil {
			return err
		}

		record = db.SlugRecord{Slug: newSlug, PostID: id}
		if err := createSlug(tx, &record); err != nil {
			return err
		}

		result := tx.Model(&db.SlugRecord{}).
			Where("slug = ? AND newslug IS NULL", oldSlug).
			Update("newslug", newSlug)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrSlugSuperseded
		}

		if !s.collapse {
			return nil
		}
		collapsed, err = collapseInto(tx, oldSlug, newSlug)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"from":      oldSlug,
		"to":        newSlug,
		"post":      id.String(),
		"collapsed": collapsed,
	}).Info("renamed slug")
	s.changed()
	return &record, nil
}

// Lookup returns the record for value without following forward pointers.
func (s *SlugService) Lookup(ctx context.Context, value string) (*db.SlugRecord, error) {
	return lookupSlug(s.db.WithContext(ctx), value)
}

// LiveSlugs returns the live slugs of a post, most recently bound first.
func (s *SlugService) LiveSlugs(ctx context.Context, id db.PostID) ([]db.SlugRecord, error) {
	var records []db.SlugRecord
	if err := s.db.WithContext(ctx).
		Where("id = ? AND newslug IS NULL", id).
		Order("created_at desc, slug desc").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// ForPost returns every slug record that references id, live or not.
func (s *SlugService) ForPost(ctx context.Context, id db.PostID) ([]db.SlugRecord, error) {
	var records []db.SlugRecord
	if err := s.db.WithContext(ctx).
		Where("id = ?", id).
		Order("created_at asc, slug asc").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// UniqueSlug returns base, or base with a numeric suffix, such that no
// record uses it yet. The suffix starts at the number of slugs already
// sharing the prefix.
func (s *SlugService) UniqueSlug(ctx context.Context, base string) (string, error) {
	gdb := s.db.WithContext(ctx)

	var similar int64
	if err := gdb.Model(&db.SlugRecord{}).
		Where("slug LIKE ?", base+"%").
		Count(&similar).Error; err != nil {
		return "", err
	}
	if similar == 0 {
		return base, nil
	}

	for n := similar; ; n++ {
		candidate := fmt.Sprintf("%s-%d", base, n)
		taken, err := slugExists(gdb, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
}

func (s *SlugService) changed() {
	if s.onChange != nil {
		s.onChange()
	}
}

// DeriveSlug builds the default slug for a post: the first 26 characters of
// the title with markup removed, slugified, followed by the publish date.
func DeriveSlug(title string, published time.Time) string {
	plain := strings.TrimSpace(html.UnescapeString(titlePolicy.Sanitize(title)))
	runes := []rune(plain)
	if len(runes) > slugTitleRunes {
		runes = runes[:slugTitleRunes]
	}

	base := slug.Make(string(runes))
	if base == "" {
		base = fallbackSlugBase
	}
	return fmt.Sprintf("%s-%04d-%02d-%02d", base, published.Year(), int(published.Month()), published.Day())
}

// InSlugFamily reports whether candidate is base or base followed by a
// numeric suffix as produced by UniqueSlug.
func InSlugFamily(candidate, base string) bool {
	if candidate == base {
		return true
	}
	suffix, ok := strings.CutPrefix(candidate, base+"-")
	if !ok || suffix == "" {
		return false
	}
	_, err := strconv.Atoi(suffix)
	return err == nil
}

// ValidateSlug rejects empty slugs and slugs that cannot be used as a single
// path segment.
func ValidateSlug(value string) error {
	if strings.TrimSpace(value) == "" {
		return ErrSlugRequired
	}
	for _, r := range value {
		if r == '/' || unicode.IsSpace(r) || unicode.IsControl(r) {
			return ErrSlugInvalid
		}
	}
	return nil
}

// collapseInto re-points every slug whose chain passes through target
// straight at live. Slugs on other chains of the same post are untouched.
func collapseInto(tx *gorm.DB, target, live string) (int64, error) {
	seen := map[string]struct{}{target: {}, live: {}}
	frontier := []string{target}
	var total int64

	for len(frontier) > 0 {
		var preds []string
		if err := tx.Model(&db.SlugRecord{}).
			Where("newslug IN ?", frontier).
			Pluck("slug", &preds).Error; err != nil {
			return total, err
		}

		next := preds[:0]
		for _, value := range preds {
			if _, ok := seen[value]; ok {
				continue
			}
			seen[value] = struct{}{}
			next = append(next, value)
		}
		if len(next) == 0 {
			break
		}

		result := tx.Model(&db.SlugRecord{}).
			Where("slug IN ?", next).
			Update("newslug", live)
		if result.Error != nil {
			return total, result.Error
		}
		total += result.RowsAffected
		frontier = next
	}
	return total, nil
}

func lookupSlug(gdb *gorm.DB, value string) (*db.SlugRecord, error) {
	var record db.SlugRecord
	if err := gdb.Where("slug = ?", value).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSlugNotFound
		}
		return nil, err
	}
	return &record, nil
}

func slugExists(gdb *gorm.DB, value string) (bool, error) {
	var count int64
	if err := gdb.Model(&db.SlugRecord{}).Where("slug = ?", value).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func requireFreeSlug(gdb *gorm.DB, value string) error {
	taken, err := slugExists(gdb, value)
	if err != nil {
		return err
	}
	if taken {
		return ErrSlugExists
	}
	return nil
}

func requirePost(gdb *gorm.DB, id db.PostID) error {
	var count int64
	if err := gdb.Model(&db.Post{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrPostNotFound
	}
	return nil
}

func createSlug(gdb *gorm.DB, record *db.SlugRecord) error {
	if err := gdb.Create(record).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrSlugExists
		}
		return err
	}
	return nil
}

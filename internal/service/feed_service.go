package service

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/slugblog/internal/db"
	"gorm.io/gorm"
)

// DefaultFeedLimit is used when Recent is called with a non-positive limit.
const DefaultFeedLimit = 20

// FeedItem is one entry of the recent posts projection.
type FeedItem struct {
	Slug      string    `json:"slug"`
	Title     string    `json:"title"`
	Subtitle  *string   `json:"subtitle,omitempty"`
	Published time.Time `json:"published"`
}

// FeedService produces the recent posts projection for listing pages.
type FeedService struct {
	db    *gorm.DB
	cache *cache.Cache
}

// NewFeedService creates a FeedService. A non-positive ttl disables caching.
func NewFeedService(gdb *gorm.DB, ttl time.Duration) *FeedService {
	s := &FeedService{db: gdb}
	if ttl > 0 {
		s.cache = cache.New(ttl, 2*ttl)
	}
	return s
}

// Invalidate drops every cached projection.
func (s *FeedService) Invalidate() {
	if s.cache != nil {
		s.cache.Flush()
	}
}

// Recent returns up to limit public posts that have a live slug, newest
// published first.
func (s *FeedService) Recent(ctx context.Context, limit int) ([]FeedItem, error) {
	if limit <= 0 {
		limit = DefaultFeedLimit
	}

	cacheKey := fmt.Sprintf("recent:%d", limit)
	if s.cache != nil {
		if cached, found := s.cache.Get(cacheKey); found {
			if items, ok := cached.([]FeedItem); ok {
				return slices.Clone(items), nil
			}
		}
	}

	items, err := s.load(ctx, limit)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.Set(cacheKey, items, cache.DefaultExpiration)
	}
	return slices.Clone(items), nil
}

func (s *FeedService) load(ctx context.Context, limit int) ([]FeedItem, error) {
	items := make([]FeedItem, 0, limit)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var posts []db.Post
		if err := tx.Model(&db.Post{}).
			Where("post.draft = ?", false).
			Where("EXISTS (SELECT 1 FROM slug WHERE slug.id = post.id AND slug.newslug IS NULL)").
			Order("post.published desc, post.id desc").
			Limit(limit).
			Find(&posts).Error; err != nil {
			return err
		}
		if len(posts) == 0 {
			return nil
		}

		ids := make([]db.PostID, 0, len(posts))
		for _, post := range posts {
			ids = append(ids, post.ID)
		}

		var records []db.SlugRecord
		if err := tx.Where("id IN ? AND newslug IS NULL", ids).
			Order("created_at desc, slug desc").
			Find(&records).Error; err != nil {
			return err
		}

		canonical := make(map[db.PostID]string, len(posts))
		for _, record := range records {
			if _, ok := canonical[record.PostID]; !ok {
				canonical[record.PostID] = record.Slug
			}
		}

		for _, post := range posts {
			value, ok := canonical[post.ID]
			if !ok {
				continue
			}
			items = append(items, FeedItem{
				Slug:      value,
				Title:     post.Title,
				Subtitle:  post.Subtitle,
				Published: post.Published,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

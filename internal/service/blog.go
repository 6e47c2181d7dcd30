package service

import (
	"time"

	"github.com/sirupsen/logrus"
	"github.com/slugblog/internal/logging"
	"gorm.io/gorm"
)

// Options configures NewBlog.
type Options struct {
	Logger         *logrus.Logger
	FeedCacheTTL   time.Duration
	CollapseChains bool
}

// Blog bundles the services that share one store. Every mutation through
// Posts, Slugs or Publisher invalidates the feed cache.
type Blog struct {
	Posts     *PostService
	Slugs     *SlugService
	Archive   *ArchiveService
	Resolver  *Resolver
	Feed      *FeedService
	Publisher *PublishService
}

// NewBlog wires the services over gdb.
func NewBlog(gdb *gorm.DB, opts Options) *Blog {
	log := logging.OrDefault(opts.Logger)

	archive := NewArchiveService(gdb, log)
	posts := NewPostService(gdb, archive, log)
	slugs := NewSlugService(gdb, log, opts.CollapseChains)
	feed := NewFeedService(gdb, opts.FeedCacheTTL)
	publisher := NewPublishService(gdb, posts, slugs, log)

	posts.onChange = feed.Invalidate
	slugs.onChange = feed.Invalidate
	publisher.onChange = feed.Invalidate

	return &Blog{
		Posts:     posts,
		Slugs:     slugs,
		Archive:   archive,
		Resolver:  NewResolver(gdb, log),
		Feed:      feed,
		Publisher: publisher,
	}
}

package handler

import (
	"net/url"

	"github.com/sirupsen/logrus"
	"github.com/slugblog/internal/logging"
	"github.com/slugblog/internal/service"
	"gorm.io/gorm"
)

// API bundles shared dependencies for HTTP handlers.
type API struct {
	db        *gorm.DB
	posts     *service.PostService
	slugs     *service.SlugService
	archive   *service.ArchiveService
	resolver  *service.Resolver
	feed      *service.FeedService
	publisher *service.PublishService
	log       *logrus.Logger
	pageRoot  string
	feedLimit int
}

// Settings carries the non-service options of an API.
type Settings struct {
	PageRoot  string
	FeedLimit int
}

// NewAPI constructs a handler set over the services of blog.
func NewAPI(gdb *gorm.DB, blog *service.Blog, log *logrus.Logger, settings Settings) *API {
	limit := settings.FeedLimit
	if limit <= 0 {
		limit = service.DefaultFeedLimit
	}
	return &API{
		db:        gdb,
		posts:     blog.Posts,
		slugs:     blog.Slugs,
		archive:   blog.Archive,
		resolver:  blog.Resolver,
		feed:      blog.Feed,
		publisher: blog.Publisher,
		log:       logging.OrDefault(log),
		pageRoot:  settings.PageRoot,
		feedLimit: limit,
	}
}

// DB exposes the underlying gorm instance.
func (a *API) DB() *gorm.DB {
	return a.db
}

// PageRoot is the path prefix every public route lives under.
func (a *API) PageRoot() string {
	return a.pageRoot
}

// Route joins the page root and a slug, escaped as a single path segment.
func (a *API) Route(slug string) string {
	return a.pageRoot + "/" + url.PathEscape(slug)
}

package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/slugblog/internal/db"
	"github.com/slugblog/internal/logging"
	"gorm.io/gorm"
)

// PublishInput is the payload accepted when publishing a new post.
type PublishInput struct {
	Title    string
	Subtitle *string
	Content  string
	Draft    bool
}

// RevisionInput is the payload accepted when revising a post. Visibility is
// changed separately through PostService.SetDraft.
type RevisionInput struct {
	Title    string
	Subtitle *string
	Content  string
}

// PublishResult pairs a post with its canonical slug.
type PublishResult struct {
	Post *db.Post `json:"post"`
	Slug string   `json:"slug"`
}

// PublishService creates and revises posts together with their slugs.
type PublishService struct {
	db       *gorm.DB
	posts    *PostService
	slugs    *SlugService
	log      *logrus.Logger
	now      func() time.Time
	onChange func()
}

// NewPublishService creates a PublishService instance.
func NewPublishService(gdb *gorm.DB, posts *PostService, slugs *SlugService, log *logrus.Logger) *PublishService {
	return &PublishService{
		db:    gdb,
		posts: posts,
		slugs: slugs,
		log:   logging.OrDefault(log),
		now:   time.Now,
	}
}

// Publish stores a new post and binds a slug derived from its title and
// publish date.
func (s *PublishService) Publish(ctx context.Context, input PublishInput) (*PublishResult, error) {
	var result PublishResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		post, err := s.posts.WithTx(tx).Create(ctx, PostInput{
			Title:     input.Title,
			Subtitle:  input.Subtitle,
			Content:   input.Content,
			Published: s.now(),
			Draft:     input.Draft,
		})
		if err != nil {
			return err
		}

		slugs := s.slugs.WithTx(tx)
		value, err := slugs.UniqueSlug(ctx, DeriveSlug(post.Title, post.Published))
		if err != nil {
			return err
		}
		if _, err := slugs.Bind(ctx, value, post.ID); err != nil {
			return err
		}

		result = PublishResult{Post: post, Slug: value}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"post": result.Post.ID.String(), "slug": result.Slug}).Info("published post")
	s.changed()
	return &result, nil
}

// Revise replaces the post content, moves its publish time to now and, when
// the derived slug changes, renames the canonical slug to a fresh one. The
// old content is archived and the previous slug keeps forwarding.
func (s *PublishService) Revise(ctx context.Context, id db.PostID, input RevisionInput) (*PublishResult, error) {
	var result PublishResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		published := s.now()
		post, err := s.posts.WithTx(tx).Update(ctx, id, func(p *db.Post) error {
			p.Title = input.Title
			p.Subtitle = input.Subtitle
			p.Content = input.Content
			p.Published = published
			return nil
		})
		if err != nil {
			return err
		}

		slugs := s.slugs.WithTx(tx)
		live, err := slugs.LiveSlugs(ctx, id)
		if err != nil {
			return err
		}

		base := DeriveSlug(post.Title, post.Published)
		for _, record := range live {
			if InSlugFamily(record.Slug, base) {
				result = PublishResult{Post: post, Slug: record.Slug}
				return nil
			}
		}

		value, err := slugs.UniqueSlug(ctx, base)
		if err != nil {
			return err
		}
		if len(live) == 0 {
			_, err = slugs.Bind(ctx, value, id)
		} else {
			_, err = slugs.Rename(ctx, live[0].Slug, value, id)
		}
		if err != nil {
			return err
		}

		result = PublishResult{Post: post, Slug: value}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"post": id.String(), "slug": result.Slug}).Info("revised post")
	s.changed()
	return &result, nil
}

func (s *PublishService) changed() {
	if s.onChange != nil {
		s.onChange()
	}
}

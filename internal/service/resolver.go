package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/slugblog/internal/chain"
	"github.com/slugblog/internal/db"
	"github.com/slugblog/internal/logging"
	"gorm.io/gorm"
)

// Kind classifies a resolution.
type Kind int

const (
	// KindResolved: the requested slug is live and its post is public.
	KindResolved Kind = iota + 1
	// KindRedirect: the requested slug is stale; Slug is the live slug the
	// chain ends at and Post is its public post.
	KindRedirect
	// KindNotFound: no record exists for the requested slug.
	KindNotFound
	// KindDraft: the chain ends at a live slug whose post is a draft.
	KindDraft
	// KindPostMissing: the chain ends at a live slug whose post was deleted.
	KindPostMissing
	// KindBrokenChain: a forward pointer names a slug with no record.
	KindBrokenChain
	// KindCycleDetected: following forward pointers revisits a slug.
	KindCycleDetected
)

var kindNames = map[Kind]string{
	KindResolved:      "resolved",
	KindRedirect:      "redirect",
	KindNotFound:      "not_found",
	KindDraft:         "draft",
	KindPostMissing:   "post_missing",
	KindBrokenChain:   "broken_chain",
	KindCycleDetected: "cycle_detected",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// MarshalText renders the kind by name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Integrity reports whether the kind signals a corrupted redirect graph.
func (k Kind) Integrity() bool {
	return k == KindBrokenChain || k == KindCycleDetected
}

// Resolution is the single outcome of resolving a requested slug.
type Resolution struct {
	Kind      Kind      `json:"kind"`
	Requested string    `json:"requested"`
	Slug      string    `json:"slug,omitempty"`
	PostID    db.PostID `json:"postId,omitzero"`
	Post      *db.Post  `json:"post,omitempty"`
	Chain     []string  `json:"chain,omitempty"`
	Dangling  string    `json:"dangling,omitempty"`
}

// Err maps the kind onto the error taxonomy. Resolved and Redirect map to nil.
func (r Resolution) Err() error {
	switch r.Kind {
	case KindResolved, KindRedirect:
		return nil
	case KindNotFound:
		return fmt.Errorf("%w: %s", ErrSlugNotFound, r.Requested)
	case KindDraft, KindPostMissing:
		return fmt.Errorf("%w: %s", ErrPostNotFound, r.Slug)
	case KindBrokenChain:
		return fmt.Errorf("%w: %s -> %s", ErrBrokenChain, r.Requested, r.Dangling)
	case KindCycleDetected:
		return fmt.Errorf("%w: %v", ErrCycleDetected, r.Chain)
	default:
		return fmt.Errorf("unknown resolution kind %d", int(r.Kind))
	}
}

// Resolver turns a requested slug into a Resolution.
type Resolver struct {
	db  *gorm.DB
	log *logrus.Logger
}

// NewResolver creates a Resolver instance.
func NewResolver(gdb *gorm.DB, log *logrus.Logger) *Resolver {
	return &Resolver{db: gdb, log: logging.OrDefault(log)}
}

// Resolve walks the chain starting at requested inside one read transaction.
// Integrity problems are returned as kinds, not errors; the error is only
// set when the store fails.
func (r *Resolver) Resolve(ctx context.Context, requested string) (Resolution, error) {
	var res Resolution
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		walk, err := chain.Follow[db.PostID](requested, slugLookup(tx))
		if err != nil {
			return err
		}

		res = fromWalk(walk)
		if walk.Outcome != chain.Terminal {
			return nil
		}

		var post db.Post
		if err := tx.First(&post, "id = ?", walk.End.Ref).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				res.Kind = KindPostMissing
				return nil
			}
			return err
		}
		if post.Draft {
			res.Kind = KindDraft
			return nil
		}

		res.Post = &post
		if walk.Hops() > 0 {
			res.Kind = KindRedirect
		} else {
			res.Kind = KindResolved
		}
		return nil
	})
	if err != nil {
		return Resolution{}, err
	}

	r.logResolution(res)
	return res, nil
}

// Audit walks every slug in one snapshot and returns the resolutions that
// point at a corrupted chain or a deleted post, ordered by slug.
func (r *Resolver) Audit(ctx context.Context) ([]Resolution, error) {
	var problems []Resolution
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var records []db.SlugRecord
		if err := tx.Find(&records).Error; err != nil {
			return err
		}

		var ids []db.PostID
		if err := tx.Model(&db.Post{}).Pluck("id", &ids).Error; err != nil {
			return err
		}
		live := make(map[db.PostID]struct{}, len(ids))
		for _, id := range ids {
			live[id] = struct{}{}
		}

		arena := chain.Arena[db.PostID]{}
		for _, record := range records {
			arena.Put(record.Slug, record.PostID, record.NewSlug)
		}

		for _, value := range arena.Slugs() {
			res := fromWalk(arena.Follow(value))
			switch res.Kind {
			case KindBrokenChain, KindCycleDetected:
				problems = append(problems, res)
			default:
				if _, ok := live[res.PostID]; !ok {
					res.Kind = KindPostMissing
					problems = append(problems, res)
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, res := range problems {
		if res.Kind.Integrity() {
			r.logResolution(res)
		}
	}
	return problems, nil
}

func (r *Resolver) logResolution(res Resolution) {
	entry := r.log.WithFields(logrus.Fields{
		"slug":  res.Requested,
		"kind":  res.Kind.String(),
		"chain": res.Chain,
	})
	switch res.Kind {
	case KindBrokenChain:
		entry.WithField("dangling", res.Dangling).Error("slug chain is broken")
	case KindCycleDetected:
		entry.Error("slug chain has a cycle")
	case KindRedirect:
		entry.WithField("to", res.Slug).Debug("redirecting stale slug")
	case KindPostMissing:
		entry.Warn("slug points at a deleted post")
	}
}

func slugLookup(tx *gorm.DB) chain.Lookup[db.PostID] {
	return func(value string) (chain.Node[db.PostID], bool, error) {
		record, err := lookupSlug(tx, value)
		if err != nil {
			if errors.Is(err, ErrSlugNotFound) {
				return chain.Node[db.PostID]{}, false, nil
			}
			return chain.Node[db.PostID]{}, false, err
		}
		return chain.Node[db.PostID]{Slug: record.Slug, Ref: record.PostID, Next: record.NewSlug}, true, nil
	}
}

// fromWalk fills everything except the post lookup.
func fromWalk(walk chain.Walk[db.PostID]) Resolution {
	res := Resolution{
		Requested: walk.Start,
		Chain:     walk.Path,
	}
	switch walk.Outcome {
	case chain.Unknown:
		res.Kind = KindNotFound
	case chain.Broken:
		res.Kind = KindBrokenChain
		res.Dangling = walk.Dangling
		res.PostID = walk.End.Ref
	case chain.Cycle:
		res.Kind = KindCycleDetected
		res.PostID = walk.End.Ref
	case chain.Terminal:
		res.Slug = walk.End.Slug
		res.PostID = walk.End.Ref
		if walk.Hops() > 0 {
			res.Kind = KindRedirect
		} else {
			res.Kind = KindResolved
		}
	}
	return res
}

package chain

import "sort"

// Arena is an in-memory slug graph keyed by slug.
type Arena[R any] map[string]Node[R]

// Put inserts or replaces a node.
func (a Arena[R]) Put(slug string, ref R, next *string) {
	a[slug] = Node[R]{Slug: slug, Ref: ref, Next: next}
}

// Lookup implements the Lookup contract over the arena.
func (a Arena[R]) Lookup(slug string) (Node[R], bool, error) {
	node, ok := a[slug]
	return node, ok, nil
}

// Follow walks the arena from start.
func (a Arena[R]) Follow(start string) Walk[R] {
	// Arena lookups never fail.
	walk, _ := Follow[R](start, a.Lookup)
	return walk
}

// Slugs returns every slug in the arena in lexical order.
func (a Arena[R]) Slugs() []string {
	slugs := make([]string, 0, len(a))
	for slug := range a {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)
	return slugs
}

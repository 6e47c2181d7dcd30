// Package chain walks slug forwarding chains.
//
// A chain is a sequence of nodes linked by their Next pointer. The walk is
// iterative and keeps a visited set, so self references, loops and dangling
// pointers are reported as outcomes instead of recursing or spinning. The
// package knows nothing about storage: callers supply a Lookup, either backed
// by a database transaction or by an in-memory Arena.
package chain

import "fmt"

// Node is one slug record as seen by the walker. Ref is the payload the
// caller wants back at the end of the chain (typically a post id).
type Node[R any] struct {
	Slug string
	Ref  R
	Next *string
}

// Terminal reports whether the node ends its chain.
func (n Node[R]) Terminal() bool {
	return n.Next == nil
}

// Lookup fetches a single node without following it. found is false when
// no node exists for slug.
type Lookup[R any] func(slug string) (node Node[R], found bool, err error)

// Outcome classifies a finished walk.
type Outcome int

const (
	// Terminal means the walk reached a node without a forward pointer.
	Terminal Outcome = iota + 1
	// Unknown means the requested slug has no node at all.
	Unknown
	// Broken means a forward pointer names a slug with no node.
	Broken
	// Cycle means a forward pointer revisits a slug from the same walk.
	Cycle
)

func (o Outcome) String() string {
	switch o {
	case Terminal:
		return "terminal"
	case Unknown:
		return "unknown"
	case Broken:
		return "broken"
	case Cycle:
		return "cycle"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Walk is the result of following a chain from Start.
type Walk[R any] struct {
	Start   string
	Outcome Outcome
	// Path lists the slugs whose nodes were read, in order. For Cycle the
	// slug that closes the loop is appended once more; for Broken the
	// dangling target is not included.
	Path []string
	// End is the last node read. For Terminal it is the live node.
	End Node[R]
	// Dangling is the missing slug for Broken.
	Dangling string
}

// Hops is the number of forward pointers followed.
func (w Walk[R]) Hops() int {
	switch w.Outcome {
	case Terminal:
		return len(w.Path) - 1
	case Cycle:
		return len(w.Path) - 1
	case Broken:
		return len(w.Path)
	default:
		return 0
	}
}

// Follow walks from start until a terminal node, a missing node or a
// revisited slug. Only errors returned by lookup are returned as errors.
func Follow[R any](start string, lookup Lookup[R]) (Walk[R], error) {
	walk := Walk[R]{Start: start}
	visited := make(map[string]struct{})
	current := start

	for {
		node, found, err := lookup(current)
		if err != nil {
			return walk, err
		}

		if !found {
			if len(walk.Path) == 0 {
				walk.Outcome = Unknown
				return walk, nil
			}
			walk.Outcome = Broken
			walk.Dangling = current
			return walk, nil
		}

		walk.Path = append(walk.Path, current)
		walk.End = node
		visited[current] = struct{}{}

		if node.Terminal() {
			walk.Outcome = Terminal
			return walk, nil
		}

		next := *node.Next
		if _, seen := visited[next]; seen {
			walk.Path = append(walk.Path, next)
			walk.Outcome = Cycle
			return walk, nil
		}
		current = next
	}
}

// Package tabstop computes the canonical visiting order of tabstop
// identifiers and the cyclic prev/next adjacency used for jump
// navigation.
package tabstop

import (
	"sort"
	"strconv"

	"github.com/walteh/gosnip/pkg/snippet"
)

// link is one ring entry: the neighbouring identifiers of an id.
type link struct {
	prev string
	next string
}

// Ring is the cyclic visit order over a tree's tabstop identifiers.
// Identifiers are ordered ascending by numeric value, with ties broken
// lexicographically (so "1" and "01" stay distinct and stable) and the
// final tabstop forced last regardless of its numeric value. Next and
// Prev wrap around.
type Ring struct {
	order []string
	links map[string]link
}

// BuildOrder traverses the whole tree, nested placeholders included,
// and builds the ring over its distinct tabstop identifiers.
func BuildOrder(tree []snippet.Node) *Ring {
	return New(snippet.TabstopIDs(tree))
}

// New builds a ring from a set of identifiers (order of the input is
// irrelevant, duplicates are ignored).
func New(ids []string) *Ring {
	distinct := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			distinct = append(distinct, id)
		}
	}

	sort.SliceStable(distinct, func(i, j int) bool {
		return idLess(distinct[i], distinct[j])
	})

	r := &Ring{
		order: distinct,
		links: make(map[string]link, len(distinct)),
	}
	for i, id := range distinct {
		r.links[id] = link{
			prev: distinct[(i-1+len(distinct))%len(distinct)],
			next: distinct[(i+1)%len(distinct)],
		}
	}
	return r
}

func idLess(a, b string) bool {
	if a == snippet.FinalTabstopID {
		return false
	}
	if b == snippet.FinalTabstopID {
		return true
	}
	an, aerr := strconv.ParseInt(a, 10, 64)
	bn, berr := strconv.ParseInt(b, 10, 64)
	if aerr == nil && berr == nil && an != bn {
		return an < bn
	}
	return a < b
}

// Order returns the identifiers in visit order, final tabstop last.
func (r *Ring) Order() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Len returns the number of identifiers in the ring.
func (r *Ring) Len() int {
	return len(r.order)
}

// Contains reports whether id is in the ring.
func (r *Ring) Contains(id string) bool {
	_, ok := r.links[id]
	return ok
}

// First returns the first identifier in visit order, or "" for an empty
// ring.
func (r *Ring) First() string {
	if len(r.order) == 0 {
		return ""
	}
	return r.order[0]
}

// Next returns the successor of id, wrapping to the first entry. The
// second return is false when id is not in the ring.
func (r *Ring) Next(id string) (string, bool) {
	l, ok := r.links[id]
	return l.next, ok
}

// Prev returns the predecessor of id, wrapping to the last entry.
func (r *Ring) Prev(id string) (string, bool) {
	l, ok := r.links[id]
	return l.prev, ok
}

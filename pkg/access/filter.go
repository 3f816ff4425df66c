// Package access resolves per-user document visibility. A document is
// visible when the user owns it or holds a share on it, regardless of the
// share permission level. Every engine resolves the visible set through
// this package before touching document data and re-intersects any
// caller-supplied document ids against it.
package access

import (
	"context"
)

// DocumentLister is the single storage capability the filter needs.
type DocumentLister interface {
	// ListAccessibleDocumentIDs returns every document id the user owns or
	// has a share on. Unknown users yield an empty result.
	ListAccessibleDocumentIDs(ctx context.Context, userID int64) ([]int64, error)
}

// Filter answers "which documents may this user see". It holds no state
// beyond its storage handle and is safe for concurrent use.
type Filter struct {
	store DocumentLister
}

// NewFilter creates a Filter over the given storage.
func NewFilter(s DocumentLister) *Filter {
	return &Filter{store: s}
}

// AccessibleDocumentIDs returns the set of document ids visible to the
// user. An unknown or invalid user id yields an empty set and a nil error,
// so callers produce empty results instead of leaking whether the user
// exists.
func (f *Filter) AccessibleDocumentIDs(ctx context.Context, userID int64) (map[int64]struct{}, error) {
	if userID <= 0 {
		return map[int64]struct{}{}, nil
	}

	ids, err := f.store.ListAccessibleDocumentIDs(ctx, userID)
	if err != nil {
		return nil, err
	}

	set := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}

	return set, nil
}

// Restrict returns the ids that are present in the accessible set,
// preserving the input order. Ids outside the set are dropped silently.
func Restrict(accessible map[int64]struct{}, ids []int64) []int64 {
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := accessible[id]; ok {
			out = append(out, id)
		}
	}

	return out
}

// Package fragments stores fragment bytes keyed by (object id, index).
// Backends: S3-compatible object storage, Redis, Badger and an in-memory map.
package fragments

import (
	"context"
	"fmt"
	"slices"
	"strconv"
)

// Repository persists fragment bytes. Get returns common.ErrorNotFound for
// an absent fragment; ListIndices returns the stored indices of an object in
// ascending order (empty for an unknown object).
type Repository interface {
	Put(ctx context.Context, objectID string, index int, data []byte) error
	Get(ctx context.Context, objectID string, index int) ([]byte, error)
	ListIndices(ctx context.Context, objectID string) ([]int, error)
}

// parseIndices converts index suffixes read from a backend listing.
func parseIndices(raw []string) ([]int, error) {
	out := make([]int, 0, len(raw))
	for _, s := range raw {
		idx, err := strconv.Atoi(s)
		if err != nil || idx < 0 {
			return nil, fmt.Errorf("bad fragment index %q", s)
		}
		out = append(out, idx)
	}
	slices.Sort(out)
	return slices.Compact(out), nil
}

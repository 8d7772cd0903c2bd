// Package object binds the cipher engine and the fragmenter into the
// encrypted object pipeline and defines the object descriptor.
package object

import (
	"crypto/subtle"
	"fmt"
	"time"

	"github.com/dmitrijs2005/fragkeeper/internal/common"
	"github.com/dmitrijs2005/fragkeeper/internal/cryptox"
	"github.com/dmitrijs2005/fragkeeper/internal/fragment"
)

// Descriptor identifies an encrypted object, its owner, its key and its
// fragment set. It is never mutated after construction.
type Descriptor struct {
	ObjectID      string
	OwnerID       string
	Key           cryptox.Key
	CreatedAt     time.Time
	FragmentCount int
	Fragments     []fragment.Fragment
}

// NewDescriptor validates its arguments and builds a Descriptor.
//
// count is the number of fragments the object was split into. frags may be
// incomplete or unordered (a download in progress); the index structure is
// checked when the token is reassembled, but every fragment must belong to
// objectID.
func NewDescriptor(objectID, ownerID string, key cryptox.Key, createdAt time.Time, count int, frags []fragment.Fragment) (*Descriptor, error) {
	if objectID == "" {
		return nil, fmt.Errorf("%w: empty object id", common.ErrInvalidDescriptor)
	}
	if ownerID == "" {
		return nil, fmt.Errorf("%w: empty owner id", common.ErrInvalidDescriptor)
	}
	if err := key.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrInvalidDescriptor, err)
	}
	if createdAt.IsZero() {
		return nil, fmt.Errorf("%w: zero creation time", common.ErrInvalidDescriptor)
	}
	if count < 0 {
		return nil, fmt.Errorf("%w: negative fragment count %d", common.ErrInvalidDescriptor, count)
	}
	for _, f := range frags {
		if f.ObjectID != objectID {
			return nil, fmt.Errorf("%w: fragment %d belongs to object %q", common.ErrInvalidDescriptor, f.Index, f.ObjectID)
		}
	}

	return &Descriptor{
		ObjectID:      objectID,
		OwnerID:       ownerID,
		Key:           key,
		CreatedAt:     createdAt,
		FragmentCount: count,
		Fragments:     frags,
	}, nil
}

// Token reassembles the descriptor's fragments, requiring exactly
// FragmentCount of them.
func (d *Descriptor) Token() ([]byte, error) {
	return fragment.ReassembleN(d.Fragments, d.FragmentCount)
}

// Size returns the total number of token bytes held by the fragments.
func (d *Descriptor) Size() int64 {
	var n int64
	for _, f := range d.Fragments {
		n += int64(len(f.Data))
	}
	return n
}

// Authorize checks that requesterID owns the object. The comparison runs in
// constant time; any mismatch yields common.ErrAccessDenied.
func Authorize(ownerID, requesterID string) error {
	if requesterID == "" || subtle.ConstantTimeCompare([]byte(ownerID), []byte(requesterID)) != 1 {
		return common.ErrAccessDenied
	}
	return nil
}

// Authorize checks requesterID against the descriptor's owner.
func (d *Descriptor) Authorize(requesterID string) error {
	return Authorize(d.OwnerID, requesterID)
}

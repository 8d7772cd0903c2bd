// Package fragment splits tokens into fixed-size, indexed fragments and
// rebuilds tokens from fragment sets delivered in any order.
package fragment

import (
	"bytes"
	"cmp"
	"fmt"
	"slices"

	"github.com/dmitrijs2005/fragkeeper/internal/common"
)

// Fragment is one bounded-size slice of a token, tagged with its position.
type Fragment struct {
	ObjectID string
	Index    int
	Data     []byte
}

// Count returns the number of fragments a token of length n produces with
// the given fragment size: ceil(n/size).
func Count(n, size int) int {
	if n <= 0 || size <= 0 {
		return 0
	}
	return (n + size - 1) / size
}

// Split cuts token into chunks of size bytes. Chunk i holds
// token[i*size : min((i+1)*size, len(token))], so the result is
// deterministic for a given token and size. Fragment data are copies of the
// token bytes.
func Split(objectID string, token []byte, size int) ([]Fragment, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: %d", common.ErrInvalidFragmentSize, size)
	}

	frags := make([]Fragment, 0, Count(len(token), size))
	for off := 0; off < len(token); off += size {
		end := min(off+size, len(token))
		frags = append(frags, Fragment{
			ObjectID: objectID,
			Index:    off / size,
			Data:     bytes.Clone(token[off:end]),
		})
	}
	return frags, nil
}

// Reassemble orders frags by index and concatenates their data.
//
// The input may be in any order. Indices must form the range 0..n-1:
// a gap or a negative index yields common.ErrMissingFragment, and two
// fragments sharing an index with different data yield
// common.ErrDuplicateFragment. Identical duplicates are collapsed.
func Reassemble(frags []Fragment) ([]byte, error) {
	ordered, err := order(frags)
	if err != nil {
		return nil, err
	}
	return concat(ordered), nil
}

// ReassembleN is Reassemble with the additional requirement that exactly
// expected fragments are present, which detects a lost trailing fragment.
// Fragments past the expected count yield common.ErrUnexpectedFragment.
func ReassembleN(frags []Fragment, expected int) ([]byte, error) {
	ordered, err := order(frags)
	if err != nil {
		return nil, err
	}
	if len(ordered) < expected {
		return nil, fmt.Errorf("%w: index %d (have %d of %d fragments)", common.ErrMissingFragment, len(ordered), len(ordered), expected)
	}
	if len(ordered) > expected {
		return nil, fmt.Errorf("%w: index %d (expected %d fragments)", common.ErrUnexpectedFragment, expected, expected)
	}
	return concat(ordered), nil
}

// order returns a sorted, de-duplicated copy of frags after checking that the
// indices are contiguous from zero.
func order(frags []Fragment) ([]Fragment, error) {
	sorted := slices.Clone(frags)
	slices.SortStableFunc(sorted, func(a, b Fragment) int { return cmp.Compare(a.Index, b.Index) })

	out := sorted[:0]
	for _, f := range sorted {
		if n := len(out); n > 0 && out[n-1].Index == f.Index {
			if !bytes.Equal(out[n-1].Data, f.Data) {
				return nil, fmt.Errorf("%w: index %d", common.ErrDuplicateFragment, f.Index)
			}
			continue
		}
		if f.Index != len(out) {
			return nil, fmt.Errorf("%w: index %d", common.ErrMissingFragment, len(out))
		}
		out = append(out, f)
	}
	return out, nil
}

func concat(ordered []Fragment) []byte {
	total := 0
	for _, f := range ordered {
		total += len(f.Data)
	}

	buf := make([]byte, 0, total)
	for _, f := range ordered {
		buf = append(buf, f.Data...)
	}
	return buf
}

// Set is a collection of fragments of one token.
type Set []Fragment

// Token reassembles the set.
func (s Set) Token() ([]byte, error) {
	return Reassemble(s)
}

// Indices returns the fragment indices in ascending order.
func (s Set) Indices() []int {
	idx := make([]int, len(s))
	for i, f := range s {
		idx[i] = f.Index
	}
	slices.Sort(idx)
	return idx
}

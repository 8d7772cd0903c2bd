// Package models defines server-side data models persisted by the object
// store backends.
package models

import "time"

// Key modes recorded with every object.
const (
	KeyModeShared    = "shared"
	KeyModePerObject = "per-object"
)

// ObjectMetadata is the persisted shape of an object descriptor. Raw key
// material is never stored: in per-object mode WrappedKey holds the object
// key sealed under the server key-encryption key, in shared mode it is empty.
type ObjectMetadata struct {
	ObjectID      string    `json:"object_id"`
	OwnerID       string    `json:"owner_id"`
	KeyMode       string    `json:"key_mode"`
	WrappedKey    []byte    `json:"wrapped_key,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	FragmentCount int       `json:"fragment_count"`
	// Size is the token length in bytes.
	Size int64 `json:"size"`
}

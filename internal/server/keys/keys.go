// Package keys resolves the symmetric key of an object according to the
// deployment key mode.
//
// In shared mode every object is encrypted under one process-wide key. In
// per-object mode a fresh key is generated for each object and stored only
// in wrapped form, sealed under the master key with the object id as
// associated data.
package keys

import (
	"bytes"
	"fmt"

	"github.com/dmitrijs2005/fragkeeper/internal/common"
	"github.com/dmitrijs2005/fragkeeper/internal/cryptox"
	"github.com/dmitrijs2005/fragkeeper/internal/server/models"
)

// Policy hands out keys for new objects and recovers keys for stored ones.
// Returned keys are owned by the caller, which may wipe them.
type Policy interface {
	// Mode is recorded in the metadata of new objects.
	Mode() string
	// NewKey returns the key a new object is encrypted under.
	NewKey() (cryptox.Key, error)
	// Seal returns the key material to persist for objectID, if any.
	Seal(objectID string, key cryptox.Key) ([]byte, error)
	// Open recovers the key of a stored object.
	Open(meta *models.ObjectMetadata) (cryptox.Key, error)
}

// New returns the policy for mode.
func New(mode string, master cryptox.Key) (Policy, error) {
	if err := master.Validate(); err != nil {
		return nil, err
	}
	switch mode {
	case models.KeyModeShared, "":
		return NewShared(master), nil
	case models.KeyModePerObject:
		return NewPerObject(master), nil
	default:
		return nil, fmt.Errorf("unknown key mode %q", mode)
	}
}

// Shared encrypts every object under the master key.
type Shared struct {
	master cryptox.Key
}

func NewShared(master cryptox.Key) *Shared {
	return &Shared{master: bytes.Clone(master)}
}

func (s *Shared) Mode() string { return models.KeyModeShared }

func (s *Shared) NewKey() (cryptox.Key, error) {
	return bytes.Clone(s.master), nil
}

func (s *Shared) Seal(string, cryptox.Key) ([]byte, error) {
	return nil, nil
}

func (s *Shared) Open(meta *models.ObjectMetadata) (cryptox.Key, error) {
	return open(s.master, meta)
}

// PerObject generates a key per object and wraps it under the master key.
type PerObject struct {
	master cryptox.Key
}

func NewPerObject(master cryptox.Key) *PerObject {
	return &PerObject{master: bytes.Clone(master)}
}

func (p *PerObject) Mode() string { return models.KeyModePerObject }

func (p *PerObject) NewKey() (cryptox.Key, error) {
	return cryptox.GenerateKey(), nil
}

func (p *PerObject) Seal(objectID string, key cryptox.Key) ([]byte, error) {
	return cryptox.WrapKey(p.master, key, []byte(objectID))
}

func (p *PerObject) Open(meta *models.ObjectMetadata) (cryptox.Key, error) {
	return open(p.master, meta)
}

// open follows the mode recorded with the object, so a deployment that
// switches modes can still read older objects.
func open(master cryptox.Key, meta *models.ObjectMetadata) (cryptox.Key, error) {
	switch meta.KeyMode {
	case models.KeyModeShared, "":
		if len(meta.WrappedKey) != 0 {
			return nil, fmt.Errorf("%w: shared-mode object carries key material", common.ErrIntegrity)
		}
		return bytes.Clone(master), nil
	case models.KeyModePerObject:
		key, err := cryptox.UnwrapKey(master, meta.WrappedKey, []byte(meta.ObjectID))
		if err != nil {
			return nil, fmt.Errorf("unwrap object key: %w", err)
		}
		return key, nil
	default:
		return nil, fmt.Errorf("%w: unknown key mode %q", common.ErrIntegrity, meta.KeyMode)
	}
}

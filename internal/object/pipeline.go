package object

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/fragkeeper/internal/common"
	"github.com/dmitrijs2005/fragkeeper/internal/cryptox"
	"github.com/dmitrijs2005/fragkeeper/internal/fragment"
	"github.com/google/uuid"
)

// DefaultFragmentSize is 1 MiB.
const DefaultFragmentSize = 1024 * 1024

// TokenSource yields a complete token. Blob, fragment.Set and *Descriptor
// implement it, so Decrypt accepts either a concatenated token or a
// fragment collection.
type TokenSource interface {
	Token() ([]byte, error)
}

// Blob is an already concatenated token.
type Blob []byte

// Token returns the blob itself.
func (b Blob) Token() ([]byte, error) {
	return b, nil
}

// Pipeline encrypts objects into descriptors and decrypts them back.
// It holds no key state and is safe for concurrent use.
type Pipeline struct {
	fragmentSize int
	engineOpts   []cryptox.Option
	now          func() time.Time
	newID        func() string
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithFragmentSize sets the fragment size in bytes.
func WithFragmentSize(size int) Option {
	return func(p *Pipeline) { p.fragmentSize = size }
}

// WithEngineOptions passes options to every engine the pipeline builds.
func WithEngineOptions(opts ...cryptox.Option) Option {
	return func(p *Pipeline) { p.engineOpts = append(p.engineOpts, opts...) }
}

// WithClock sets the time source for descriptor and token timestamps.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		p.now = now
		p.engineOpts = append(p.engineOpts, cryptox.WithClock(now))
	}
}

// WithIDGenerator overrides object id generation.
func WithIDGenerator(fn func() string) Option {
	return func(p *Pipeline) { p.newID = fn }
}

// NewPipeline builds a pipeline; the fragment size defaults to
// DefaultFragmentSize.
func NewPipeline(opts ...Option) (*Pipeline, error) {
	p := &Pipeline{
		fragmentSize: DefaultFragmentSize,
		now:          time.Now,
		newID:        uuid.NewString,
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.fragmentSize <= 0 {
		return nil, fmt.Errorf("%w: %d", common.ErrInvalidFragmentSize, p.fragmentSize)
	}
	return p, nil
}

// FragmentSize returns the configured fragment size.
func (p *Pipeline) FragmentSize() int {
	return p.fragmentSize
}

// EncryptObject encrypts plaintext under key, splits the token and returns
// the descriptor of the new object. The caller persists it.
func (p *Pipeline) EncryptObject(plaintext []byte, ownerID string, key cryptox.Key) (*Descriptor, error) {
	engine, err := cryptox.NewEngine(key, p.engineOpts...)
	if err != nil {
		return nil, err
	}

	token, err := engine.Encrypt(plaintext)
	if err != nil {
		return nil, fmt.Errorf("encrypt: %w", err)
	}

	objectID := p.newID()
	frags, err := fragment.Split(objectID, token, p.fragmentSize)
	if err != nil {
		return nil, err
	}

	createdAt := p.now().UTC().Truncate(time.Second)
	return NewDescriptor(objectID, ownerID, key, createdAt, len(frags), frags)
}

// Decrypt reassembles src (when it is a fragment collection) and decrypts
// the token under key. Structural fragment errors are reported before any
// cipher operation runs.
func (p *Pipeline) Decrypt(src TokenSource, key cryptox.Key) ([]byte, error) {
	token, err := src.Token()
	if err != nil {
		return nil, err
	}

	engine, err := cryptox.NewEngine(key, p.engineOpts...)
	if err != nil {
		return nil, err
	}
	return engine.Decrypt(token)
}

// DecryptObject decrypts the object described by d.
func (p *Pipeline) DecryptObject(d *Descriptor, key cryptox.Key) ([]byte, error) {
	return p.Decrypt(d, key)
}

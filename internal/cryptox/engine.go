package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/subtle"
	"encoding/binary"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/fragkeeper/internal/common"
	"golang.org/x/crypto/chacha20poly1305"
)

// Scheme identifies the AEAD construction used for a token.
type Scheme byte

const (
	SchemeAESGCM            Scheme = 1
	SchemeXChaCha20Poly1305 Scheme = 2
)

func (s Scheme) String() string {
	switch s {
	case SchemeAESGCM:
		return "aes-gcm"
	case SchemeXChaCha20Poly1305:
		return "xchacha20-poly1305"
	default:
		return fmt.Sprintf("scheme(%d)", byte(s))
	}
}

// ParseScheme maps a configuration name to a Scheme.
func ParseScheme(name string) (Scheme, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "aes-gcm", "aes-256-gcm":
		return SchemeAESGCM, nil
	case "xchacha20-poly1305", "xchacha":
		return SchemeXChaCha20Poly1305, nil
	default:
		return 0, fmt.Errorf("unknown cipher scheme %q", name)
	}
}

// Token layout:
//
//	version(1) | scheme(1) | key id(8) | unix seconds(8) | nonce | ciphertext | tag
//
// Everything before the nonce is authenticated as associated data.
const (
	tokenVersion  byte = 0x01
	offScheme          = 1
	offKeyID           = 2
	offTimestamp       = offKeyID + keyIDSize
	headerSize         = offTimestamp + 8
)

// Overhead returns the number of bytes a token adds to its plaintext.
func Overhead(s Scheme) int {
	if s == SchemeXChaCha20Poly1305 {
		return headerSize + chacha20poly1305.NonceSizeX + chacha20poly1305.Overhead
	}
	return headerSize + 12 + 16
}

// Engine encrypts and decrypts tokens under a single key. It is immutable
// after construction and safe for concurrent use; to work under another key
// construct another Engine.
type Engine struct {
	aead   cipher.AEAD
	scheme Scheme
	keyID  [keyIDSize]byte
	maxAge time.Duration
	now    func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithScheme selects the AEAD construction used by Encrypt. Decrypt only
// accepts tokens produced with the same scheme.
func WithScheme(s Scheme) Option {
	return func(e *Engine) { e.scheme = s }
}

// WithMaxTokenAge makes Decrypt reject tokens whose embedded timestamp is
// older than d. Zero disables the check.
func WithMaxTokenAge(d time.Duration) Option {
	return func(e *Engine) { e.maxAge = d }
}

// WithClock overrides the time source used for timestamps and age checks.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine builds an engine bound to key. The key bytes are expanded into
// the cipher state and not retained.
func NewEngine(key Key, opts ...Option) (*Engine, error) {
	if err := key.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{scheme: SchemeAESGCM, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}

	aead, err := newAEAD(e.scheme, key)
	if err != nil {
		return nil, err
	}
	e.aead = aead
	e.keyID = KeyID(key)

	return e, nil
}

func newAEAD(s Scheme, key Key) (cipher.AEAD, error) {
	switch s {
	case SchemeAESGCM:
		block, err := aes.NewCipher(key)
		if err != nil {
			return nil, err
		}
		return cipher.NewGCM(block)
	case SchemeXChaCha20Poly1305:
		return chacha20poly1305.NewX(key)
	default:
		return nil, fmt.Errorf("unsupported cipher scheme %s", s)
	}
}

// Scheme returns the scheme the engine encrypts with.
func (e *Engine) Scheme() Scheme {
	return e.scheme
}

// Encrypt seals plaintext into a new token. A fresh random nonce is used on
// every call, so equal plaintexts produce different tokens.
func (e *Engine) Encrypt(plaintext []byte) ([]byte, error) {
	nonceSize := e.aead.NonceSize()
	prefix := headerSize + nonceSize

	out := make([]byte, prefix, prefix+len(plaintext)+e.aead.Overhead())
	out[0] = tokenVersion
	out[offScheme] = byte(e.scheme)
	copy(out[offKeyID:offTimestamp], e.keyID[:])
	binary.BigEndian.PutUint64(out[offTimestamp:headerSize], uint64(e.now().Unix()))

	nonce := out[headerSize:prefix]
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("nonce generation failed: %w", err)
	}

	return e.aead.Seal(out, nonce, plaintext, out[:headerSize]), nil
}

// Decrypt authenticates token and returns its plaintext. No plaintext is
// returned unless the tag verifies.
//
// Errors:
//   - common.ErrIntegrity: malformed token, unsupported version or scheme,
//     or tag verification failure;
//   - common.ErrKeyMismatch (wrapped together with ErrIntegrity): the token
//     was produced under a different key;
//   - common.ErrTokenExpired: a max age is configured and the authenticated
//     timestamp is older than it.
func (e *Engine) Decrypt(token []byte) ([]byte, error) {
	nonceSize := e.aead.NonceSize()
	prefix := headerSize + nonceSize

	if len(token) < prefix+e.aead.Overhead() {
		return nil, fmt.Errorf("%w: token too short (%d bytes)", common.ErrIntegrity, len(token))
	}
	if token[0] != tokenVersion {
		return nil, fmt.Errorf("%w: unsupported token version %d", common.ErrIntegrity, token[0])
	}
	if Scheme(token[offScheme]) != e.scheme {
		return nil, fmt.Errorf("%w: token scheme %s, engine scheme %s", common.ErrIntegrity, Scheme(token[offScheme]), e.scheme)
	}
	if subtle.ConstantTimeCompare(token[offKeyID:offTimestamp], e.keyID[:]) != 1 {
		return nil, fmt.Errorf("%w: %w", common.ErrIntegrity, common.ErrKeyMismatch)
	}

	plaintext, err := e.aead.Open(nil, token[headerSize:prefix], token[prefix:], token[:headerSize])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrIntegrity, err)
	}

	if e.maxAge > 0 {
		issued := time.Unix(int64(binary.BigEndian.Uint64(token[offTimestamp:headerSize])), 0)
		if e.now().Sub(issued) > e.maxAge {
			common.WipeByteArray(plaintext)
			return nil, fmt.Errorf("%w: issued at %s", common.ErrTokenExpired, issued.UTC().Format(time.RFC3339))
		}
	}

	if plaintext == nil {
		plaintext = []byte{}
	}
	return plaintext, nil
}

// Encrypt seals plaintext under key with a one-off engine.
func Encrypt(plaintext []byte, key Key, opts ...Option) ([]byte, error) {
	e, err := NewEngine(key, opts...)
	if err != nil {
		return nil, err
	}
	return e.Encrypt(plaintext)
}

// Decrypt opens token under key with a one-off engine.
func Decrypt(token []byte, key Key, opts ...Option) ([]byte, error) {
	e, err := NewEngine(key, opts...)
	if err != nil {
		return nil, err
	}
	return e.Decrypt(token)
}

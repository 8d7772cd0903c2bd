// Package cryptox implements the cipher engine used by the object pipeline:
// authenticated encryption of whole buffers into self-describing tokens,
// key generation and derivation, and envelope wrapping of per-object keys.
package cryptox

import (
	"crypto/sha256"
	"fmt"
	"io"

	"github.com/dmitrijs2005/fragkeeper/internal/common"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/hkdf"
)

// KeySize is the length in bytes of every key accepted by the engine.
// Both supported schemes use 256-bit keys.
const KeySize = 32

const keyIDSize = 8

var keyIDInfo = []byte("fragkeeper key id")

// Key is symmetric key material.
type Key []byte

// Validate reports whether k has the expected length.
func (k Key) Validate() error {
	if len(k) != KeySize {
		return fmt.Errorf("%w: want %d bytes, got %d", common.ErrInvalidKey, KeySize, len(k))
	}
	return nil
}

// Wipe zeroes the key in place.
func (k Key) Wipe() {
	common.WipeByteArray(k)
}

// GenerateKey returns a fresh random key.
func GenerateKey() Key {
	return Key(common.GenerateRandByteArray(KeySize))
}

// DeriveMasterKey stretches a passphrase into a key with argon2id.
func DeriveMasterKey(password []byte, salt []byte) Key {
	return Key(argon2.IDKey(password, salt, 1, 64*1024, 4, KeySize))
}

// KeyID returns a short fingerprint of key. It is embedded in token
// headers so a decrypt under the wrong key is reported as a key mismatch.
func KeyID(key Key) [keyIDSize]byte {
	var id [keyIDSize]byte
	r := hkdf.New(sha256.New, key, nil, keyIDInfo)
	if _, err := io.ReadFull(r, id[:]); err != nil {
		// hkdf only fails after 255*32 bytes of output
		panic(err)
	}
	return id
}

package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"

	"github.com/dmitrijs2005/fragkeeper/internal/common"
)

// WrapKey encrypts dek under kek with AES-GCM, binding it to ad (the object
// id). The result is nonce || ciphertext || tag.
func WrapKey(kek, dek Key, ad []byte) ([]byte, error) {
	if err := kek.Validate(); err != nil {
		return nil, fmt.Errorf("kek: %w", err)
	}
	if err := dek.Validate(); err != nil {
		return nil, fmt.Errorf("dek: %w", err)
	}

	aesgcm, err := newWrapAEAD(kek)
	if err != nil {
		return nil, err
	}

	nonce := common.GenerateRandByteArray(aesgcm.NonceSize())
	return aesgcm.Seal(nonce, nonce, dek, ad), nil
}

// UnwrapKey reverses WrapKey. A wrong kek, wrong ad or altered input yields
// common.ErrIntegrity.
func UnwrapKey(kek Key, wrapped []byte, ad []byte) (Key, error) {
	if err := kek.Validate(); err != nil {
		return nil, fmt.Errorf("kek: %w", err)
	}

	aesgcm, err := newWrapAEAD(kek)
	if err != nil {
		return nil, err
	}

	ns := aesgcm.NonceSize()
	if len(wrapped) < ns+aesgcm.Overhead() {
		return nil, fmt.Errorf("%w: wrapped key too short", common.ErrIntegrity)
	}

	dek, err := aesgcm.Open(nil, wrapped[:ns], wrapped[ns:], ad)
	if err != nil {
		return nil, fmt.Errorf("%w: unwrap key: %v", common.ErrIntegrity, err)
	}
	return Key(dek), nil
}

func newWrapAEAD(kek Key) (cipher.AEAD, error) {
	block, err := aes.NewCipher(kek)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

package crypto

import (
	"errors"
	"fmt"

	"github.com/securepass/securepass/internal/util"
)

// ErrIntegrity indicates a malformed envelope or an authentication tag
// mismatch during decryption. It is distinct from "no data": callers must
// never treat a tampered blob as an absent one.
var ErrIntegrity = errors.New("envelope integrity check failed")

// Cipher is an authenticated-encryption envelope over the KeyManager's key.
// Envelopes are base64(nonce || ciphertext || tag); every Encrypt call uses
// a fresh random nonce.
type Cipher struct {
	keys *KeyManager
}

// NewCipher creates a Cipher bound to the given KeyManager.
func NewCipher(keys *KeyManager) *Cipher {
	return &Cipher{keys: keys}
}

// Encrypt seals plaintext into a text-encoded envelope.
func (c *Cipher) Encrypt(plaintext []byte) (string, error) {
	key, err := c.keys.Key()
	if err != nil {
		return "", err
	}
	defer util.WipeBytes(key)

	sealed, err := util.EncryptAESGCM(plaintext, key)
	if err != nil {
		return "", fmt.Errorf("sealing envelope: %w", err)
	}
	return util.Base64Encode(sealed), nil
}

// Decrypt opens a text-encoded envelope. Malformed encoding, truncated
// input, and tag verification failures all report ErrIntegrity.
func (c *Cipher) Decrypt(envelope string) ([]byte, error) {
	key, err := c.keys.Key()
	if err != nil {
		return nil, err
	}
	defer util.WipeBytes(key)

	sealed, err := util.Base64Decode(envelope)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid envelope encoding", ErrIntegrity)
	}

	plaintext, err := util.DecryptAESGCM(sealed, key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIntegrity, err)
	}
	return plaintext, nil
}

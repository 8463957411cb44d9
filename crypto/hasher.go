package crypto

import (
	"fmt"

	"github.com/securepass/securepass/internal/util"
)

const credentialSaltLen = 16

// CredentialHasher one-way hashes account master passwords for
// authentication. Each Hash call uses a fresh random salt, so the digest
// is never reusable as an encryption key and remains independent of the
// vault key derivation path.
type CredentialHasher struct {
	params PBKDF2Params
}

// NewCredentialHasher creates a CredentialHasher with the default
// PBKDF2 parameters.
func NewCredentialHasher() *CredentialHasher {
	return &CredentialHasher{params: DefaultPBKDF2Params()}
}

// Hash derives a digest from the password under a fresh 128-bit salt and
// returns both.
func (h *CredentialHasher) Hash(password string) (digest, salt []byte, err error) {
	salt, err = util.RandomBytes(credentialSaltLen)
	if err != nil {
		return nil, nil, fmt.Errorf("generating credential salt: %w", err)
	}
	digest, err = util.DerivePBKDF2Key(util.Normalize(password), salt, h.params)
	if err != nil {
		return nil, nil, fmt.Errorf("hashing password: %w", err)
	}
	return digest, salt, nil
}

// Verify re-derives the digest with the stored salt and compares it to the
// stored digest in constant time.
func (h *CredentialHasher) Verify(password string, digest, salt []byte) bool {
	ok, err := util.ComparePBKDF2Key(util.Normalize(password), salt, h.params, digest)
	if err != nil {
		return false
	}
	return ok
}

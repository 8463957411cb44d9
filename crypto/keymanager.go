// Package crypto provides the key derivation and authenticated encryption
// primitives for the vault: a process-lifetime key manager, an AES-256-GCM
// envelope cipher, and a one-way credential hasher for account passwords.
package crypto

import (
	"fmt"
	"sync"

	"github.com/awnumar/memguard"
	"github.com/securepass/securepass/internal/util"
)

// Default key material reproduces the original deployment: a static
// passphrase and salt baked into configuration. Anyone holding these
// constants can derive the vault key, so deployments that need real
// at-rest protection must supply their own material via WithPassphrase
// and WithSalt (e.g. the authenticated user's password with a per-user
// salt).
const (
	DefaultPassphrase = "demo-master-key-32-characters!"
	DefaultSalt       = "securepass-salt"
)

// PBKDF2Params configures PBKDF2-SHA256 key derivation.
type PBKDF2Params = util.PBKDF2Params

// DefaultPBKDF2Params returns the default derivation parameters
// (100,000 iterations, 256-bit key).
func DefaultPBKDF2Params() PBKDF2Params {
	return util.DefaultPBKDF2Params()
}

// KeyManager derives and caches the vault encryption key. The derivation
// runs at most once per KeyManager lifetime; concurrent first callers
// share a single in-flight derivation. The cached key lives in a memguard
// enclave and is never serialized.
type KeyManager struct {
	passphrase string
	salt       []byte
	params     PBKDF2Params

	once sync.Once
	key  *memguard.Enclave
	err  error

	derivations int
}

// KeyManagerOption configures a KeyManager.
type KeyManagerOption func(*KeyManager)

// WithPassphrase sets the passphrase used for vault key derivation.
func WithPassphrase(passphrase string) KeyManagerOption {
	return func(m *KeyManager) {
		m.passphrase = passphrase
	}
}

// WithSalt sets the salt used for vault key derivation.
func WithSalt(salt []byte) KeyManagerOption {
	return func(m *KeyManager) {
		m.salt = util.CopyBytes(salt)
	}
}

// WithPBKDF2Params sets the PBKDF2 parameters.
func WithPBKDF2Params(params PBKDF2Params) KeyManagerOption {
	return func(m *KeyManager) {
		m.params = params
	}
}

// NewKeyManager creates a KeyManager. With no options it uses the static
// default passphrase and salt; see the package constants for the caveat.
func NewKeyManager(opts ...KeyManagerOption) *KeyManager {
	m := &KeyManager{
		passphrase: DefaultPassphrase,
		salt:       []byte(DefaultSalt),
		params:     DefaultPBKDF2Params(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Key returns the vault encryption key, deriving it on first call. The
// returned slice is the caller's copy; wipe it when done. A derivation
// failure is returned on every call rather than masked with a zero key.
func (m *KeyManager) Key() ([]byte, error) {
	m.once.Do(func() {
		m.derivations++
		raw, err := util.DerivePBKDF2Key(util.Normalize(m.passphrase), m.salt, m.params)
		if err != nil {
			m.err = fmt.Errorf("deriving vault key: %w", err)
			return
		}
		// NewEnclave wipes raw.
		m.key = memguard.NewEnclave(raw)
	})
	if m.err != nil {
		return nil, m.err
	}

	buf, err := m.key.Open()
	if err != nil {
		return nil, fmt.Errorf("opening key enclave: %w", err)
	}
	defer buf.Destroy()
	return util.CopyBytes(buf.Bytes()), nil
}

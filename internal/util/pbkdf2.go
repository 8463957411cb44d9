package util

import (
	"crypto/sha256"
	"crypto/subtle"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

// PBKDF2Params configures PBKDF2-SHA256 key derivation.
type PBKDF2Params struct {
	Iterations int `json:"iterations"`
	KeyLen     int `json:"key_len"`
}

func DefaultPBKDF2Params() PBKDF2Params {
	return PBKDF2Params{
		Iterations: 100_000,
		KeyLen:     32,
	}
}

// DerivePBKDF2Key derives a key from the passphrase and salt using
// PBKDF2 with SHA-256.
func DerivePBKDF2Key(passphrase string, salt []byte, params PBKDF2Params) ([]byte, error) {
	if params.KeyLen != 32 {
		return nil, fmt.Errorf("pbkdf2 key length must be 32 bytes")
	}
	if params.Iterations < 1 {
		return nil, fmt.Errorf("pbkdf2 iterations must be positive")
	}
	key := pbkdf2.Key([]byte(passphrase), salt, params.Iterations, params.KeyLen, sha256.New)
	return key, nil
}

// ComparePBKDF2Key re-derives a key from the passphrase and performs a
// constant-time comparison against expectedKey.
func ComparePBKDF2Key(passphrase string, salt []byte, params PBKDF2Params, expectedKey []byte) (bool, error) {
	key, err := DerivePBKDF2Key(passphrase, salt, params)
	if err != nil {
		return false, err
	}
	defer WipeBytes(key)
	return subtle.ConstantTimeCompare(key, expectedKey) == 1, nil
}

package util

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncryptDecryptAESGCM(t *testing.T) {
	key, err := RandomBytes(AESKeySize)
	require.NoError(t, err)

	plaintext := []byte("the quick brown fox")

	ciphertext, err := EncryptAESGCM(plaintext, key)
	require.NoError(t, err)
	assert.NotEqual(t, plaintext, ciphertext)

	decrypted, err := DecryptAESGCM(ciphertext, key)
	require.NoError(t, err)
	assert.Equal(t, plaintext, decrypted)
}

func TestEncryptAESGCM_FreshNonce(t *testing.T) {
	key, err := RandomBytes(AESKeySize)
	require.NoError(t, err)

	first, err := EncryptAESGCM([]byte("data"), key)
	require.NoError(t, err)
	second, err := EncryptAESGCM([]byte("data"), key)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.NotEqual(t, first[:NonceSize], second[:NonceSize])
}

func TestDecryptAESGCM_Tampered(t *testing.T) {
	key, err := RandomBytes(AESKeySize)
	require.NoError(t, err)

	ciphertext, err := EncryptAESGCM([]byte("data"), key)
	require.NoError(t, err)

	ciphertext[len(ciphertext)-1] ^= 0x01
	_, err = DecryptAESGCM(ciphertext, key)
	assert.Error(t, err)
}

func TestDecryptAESGCM_TooShort(t *testing.T) {
	key, err := RandomBytes(AESKeySize)
	require.NoError(t, err)

	_, err = DecryptAESGCM([]byte{0x01, 0x02}, key)
	assert.Error(t, err)
}

func TestEncryptAESGCM_BadKeySize(t *testing.T) {
	_, err := EncryptAESGCM([]byte("data"), []byte("short"))
	assert.Error(t, err)
}

func TestDerivePBKDF2Key_Deterministic(t *testing.T) {
	salt := []byte("fixed-salt")
	params := DefaultPBKDF2Params()

	first, err := DerivePBKDF2Key("passphrase", salt, params)
	require.NoError(t, err)
	second, err := DerivePBKDF2Key("passphrase", salt, params)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, first, 32)
}

func TestDerivePBKDF2Key_SaltChangesKey(t *testing.T) {
	params := DefaultPBKDF2Params()

	first, err := DerivePBKDF2Key("passphrase", []byte("salt-one"), params)
	require.NoError(t, err)
	second, err := DerivePBKDF2Key("passphrase", []byte("salt-two"), params)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestComparePBKDF2Key(t *testing.T) {
	salt := []byte("salt")
	params := DefaultPBKDF2Params()

	key, err := DerivePBKDF2Key("correct", salt, params)
	require.NoError(t, err)

	ok, err := ComparePBKDF2Key("correct", salt, params, key)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = ComparePBKDF2Key("wrong", salt, params, key)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRandomPassword(t *testing.T) {
	pw, err := RandomPassword(16)
	require.NoError(t, err)
	assert.Len(t, pw, 16)

	assert.True(t, strings.ContainsAny(pw, "abcdefghijkmnopqrstuvwxyz"))
	assert.True(t, strings.ContainsAny(pw, "ABCDEFGHJKLMNPQRSTUVWXYZ"))
	assert.True(t, strings.ContainsAny(pw, "23456789"))
	assert.True(t, strings.ContainsAny(pw, "!@#$%^&*-_=+"))
}

func TestRandomPassword_TooShort(t *testing.T) {
	_, err := RandomPassword(3)
	assert.Error(t, err)
}

func TestBase64RoundTrip(t *testing.T) {
	raw := []byte{0x00, 0xff, 0x10, 0x20}
	decoded, err := Base64Decode(Base64Encode(raw))
	require.NoError(t, err)
	assert.Equal(t, raw, decoded)
}

func TestNormalize(t *testing.T) {
	// NFKD decomposes the precomposed e-acute.
	assert.Equal(t, "é", Normalize("é"))
}

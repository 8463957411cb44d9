package vault

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/securepass/securepass/crypto"
	"github.com/securepass/securepass/storage"
	"github.com/securepass/securepass/storage/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() Option {
	return WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

type vaultFixture struct {
	blobs  *memory.Store
	cipher *crypto.Cipher
	audit  *AuditLog
}

func newFixture(t *testing.T) *vaultFixture {
	t.Helper()
	blobs := memory.NewStore()
	cipher := crypto.NewCipher(crypto.NewKeyManager())
	return &vaultFixture{
		blobs:  blobs,
		cipher: cipher,
		audit:  NewAuditLog(blobs, discardLogger()),
	}
}

func (f *vaultFixture) passwordStore() *Store[*PasswordRecord] {
	return NewPasswordStore(f.blobs, f.cipher, f.audit, discardLogger())
}

func TestStore_LoadEmptyVault(t *testing.T) {
	f := newFixture(t)
	s := f.passwordStore()

	records, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestStore_AddAssignsIDAndTimestamps(t *testing.T) {
	f := newFixture(t)
	s := f.passwordStore()

	created, err := s.Add(context.Background(), &PasswordRecord{
		Title:    "Bank",
		Username: "alice",
		Password: "x",
		Website:  "bank.com",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())
	assert.Equal(t, created.CreatedAt, created.UpdatedAt)
}

func TestStore_AddVisibleToFreshInstance(t *testing.T) {
	f := newFixture(t)
	s := f.passwordStore()

	created, err := s.Add(context.Background(), &PasswordRecord{
		Title:    "Bank",
		Username: "alice",
		Password: "x",
		Website:  "bank.com",
	})
	require.NoError(t, err)

	fresh := f.passwordStore()
	records, err := fresh.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, created.ID, records[0].ID)
	assert.Equal(t, "Bank", records[0].Title)
	assert.Equal(t, "alice", records[0].Username)
	assert.Equal(t, "x", records[0].Password)
	assert.Equal(t, "bank.com", records[0].Website)
}

func TestStore_CiphertextAtRest(t *testing.T) {
	f := newFixture(t)
	s := f.passwordStore()

	_, err := s.Add(context.Background(), &PasswordRecord{Title: "Bank", Username: "alice", Password: "hunter2"})
	require.NoError(t, err)

	raw, err := f.blobs.Get(KeyPasswords)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "hunter2")
	assert.NotContains(t, string(raw), "Bank")
}

func TestStore_UpdateRefreshesUpdatedAtOnly(t *testing.T) {
	f := newFixture(t)
	s := f.passwordStore()
	ctx := context.Background()

	created, err := s.Add(ctx, &PasswordRecord{Title: "Bank", Username: "alice", Password: "x"})
	require.NoError(t, err)

	err = s.Update(ctx, created.ID, func(r *PasswordRecord) {
		r.Password = "y"
	})
	require.NoError(t, err)

	records, err := s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, created.ID, records[0].ID)
	assert.Equal(t, "y", records[0].Password)
	assert.Equal(t, created.CreatedAt, records[0].CreatedAt)
	assert.False(t, records[0].UpdatedAt.Before(created.UpdatedAt))
}

func TestStore_UpdateCannotChangeID(t *testing.T) {
	f := newFixture(t)
	s := f.passwordStore()
	ctx := context.Background()

	created, err := s.Add(ctx, &PasswordRecord{Title: "Bank", Username: "alice", Password: "x"})
	require.NoError(t, err)

	err = s.Update(ctx, created.ID, func(r *PasswordRecord) {
		r.ID = "hijacked"
		r.CreatedAt = time.Unix(0, 0)
	})
	require.NoError(t, err)

	records, err := s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, created.ID, records[0].ID)
	assert.Equal(t, created.CreatedAt, records[0].CreatedAt)
}

func TestStore_UpdateMissingIDIsNoop(t *testing.T) {
	f := newFixture(t)
	s := f.passwordStore()
	ctx := context.Background()

	created, err := s.Add(ctx, &PasswordRecord{Title: "Bank", Username: "alice", Password: "x"})
	require.NoError(t, err)

	before := len(f.audit.Entries())

	err = s.Update(ctx, "nonexistent-id", func(r *PasswordRecord) {
		r.Password = "changed"
	})
	require.NoError(t, err)

	records, err := s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, created.ID, records[0].ID)
	assert.Equal(t, "x", records[0].Password)

	entries := f.audit.Entries()
	require.Len(t, entries, before+1)
	assert.Equal(t, "Updated password entry: Unknown", entries[len(entries)-1].Action)
}

func TestStore_Remove(t *testing.T) {
	f := newFixture(t)
	s := f.passwordStore()
	ctx := context.Background()

	created, err := s.Add(ctx, &PasswordRecord{Title: "Bank", Username: "alice", Password: "x"})
	require.NoError(t, err)
	kept, err := s.Add(ctx, &PasswordRecord{Title: "Mail", Username: "alice", Password: "y"})
	require.NoError(t, err)

	require.NoError(t, s.Remove(ctx, created.ID))

	records, err := s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, kept.ID, records[0].ID)

	entries := f.audit.Entries()
	assert.Equal(t, "Deleted password entry: Bank", entries[len(entries)-1].Action)
}

func TestStore_RemoveMissingLogsUnknown(t *testing.T) {
	f := newFixture(t)
	s := f.passwordStore()

	require.NoError(t, s.Remove(context.Background(), "nope"))

	entries := f.audit.Entries()
	require.NotEmpty(t, entries)
	assert.Equal(t, "Deleted password entry: Unknown", entries[len(entries)-1].Action)
}

func TestStore_ExportAllAudited(t *testing.T) {
	f := newFixture(t)
	s := f.passwordStore()
	ctx := context.Background()

	_, err := s.Add(ctx, &PasswordRecord{Title: "Bank", Username: "alice", Password: "x"})
	require.NoError(t, err)

	exported, err := s.ExportAll(ctx)
	require.NoError(t, err)
	assert.Len(t, exported, 1)

	entries := f.audit.Entries()
	assert.Equal(t, "Exported password entries", entries[len(entries)-1].Action)
}

func TestStore_ImportMany(t *testing.T) {
	f := newFixture(t)
	s := f.passwordStore()
	ctx := context.Background()

	suppliedCreated := time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)
	candidates := []*PasswordRecord{
		{Meta: Meta{ID: "keep-this-id", CreatedAt: suppliedCreated}, Title: "Bank", Username: "alice", Password: "x"},
		{Title: "Mail", Username: "bob", Password: "y"},
		{Title: "", Username: "nobody", Password: "z"}, // missing title, rejected
	}

	count, err := s.ImportMany(ctx, candidates)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	records, err := s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "keep-this-id", records[0].ID)
	assert.Equal(t, suppliedCreated, records[0].CreatedAt)
	assert.NotEqual(t, suppliedCreated, records[0].UpdatedAt)
	assert.NotEmpty(t, records[1].ID)

	entries := f.audit.Entries()
	assert.Equal(t, "Imported 2 password entries", entries[len(entries)-1].Action)
}

func TestStore_SnapshotsAreDetached(t *testing.T) {
	f := newFixture(t)
	s := f.passwordStore()
	ctx := context.Background()

	created, err := s.Add(ctx, &PasswordRecord{Title: "Bank", Username: "alice", Password: "x"})
	require.NoError(t, err)

	// Mutating the record returned by Add does not reach the store.
	created.Password = "scribbled"

	first, err := s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, "x", first[0].Password)

	// Nor does mutating an earlier snapshot.
	first[0].Password = "scribbled"
	second, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "x", second[0].Password)
}

func TestStore_ExportedCodesAreDetached(t *testing.T) {
	f := newFixture(t)
	s := NewBackupCodeStore(f.blobs, f.cipher, f.audit, discardLogger())
	ctx := context.Background()

	_, err := s.Add(ctx, &BackupCodeRecord{
		Service: "GitHub",
		Codes:   []string{"1111-2222", "3333-4444"},
	})
	require.NoError(t, err)

	exported, err := s.ExportAll(ctx)
	require.NoError(t, err)
	exported[0].Codes[0] = "scribbled"

	records, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"1111-2222", "3333-4444"}, records[0].Codes)
}

func TestStore_CorruptBlobFailsSoft(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.blobs.Set(KeyPasswords, []byte("not an envelope")))

	s := f.passwordStore()
	records, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestStore_TamperedBlobFailsSoft(t *testing.T) {
	f := newFixture(t)
	s := f.passwordStore()
	ctx := context.Background()

	_, err := s.Add(ctx, &PasswordRecord{Title: "Bank", Username: "alice", Password: "x"})
	require.NoError(t, err)

	raw, err := f.blobs.Get(KeyPasswords)
	require.NoError(t, err)
	raw[len(raw)-2] ^= 0x01
	require.NoError(t, f.blobs.Set(KeyPasswords, raw))

	fresh := f.passwordStore()
	records, err := fresh.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)
}

// failingStore rejects writes to configured keys.
type failingStore struct {
	*memory.Store
	failKeys map[string]bool
}

func (s *failingStore) Set(key string, value []byte) error {
	if s.failKeys[key] {
		return fmt.Errorf("disk full")
	}
	return s.Store.Set(key, value)
}

func TestStore_WriteFailureIsHard(t *testing.T) {
	blobs := &failingStore{
		Store:    memory.NewStore(),
		failKeys: map[string]bool{KeyPasswords: true},
	}
	cipher := crypto.NewCipher(crypto.NewKeyManager())
	audit := NewAuditLog(blobs, discardLogger())
	s := NewPasswordStore(blobs, cipher, audit, discardLogger())

	_, err := s.Add(context.Background(), &PasswordRecord{Title: "Bank", Username: "alice", Password: "x"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPersistence)

	// Nothing was persisted, and no addition was audited.
	_, err = blobs.Get(KeyPasswords)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	for _, entry := range audit.Entries() {
		assert.NotContains(t, entry.Action, "Added")
	}
}

func TestStore_FailedWriteDoesNotPoisonCache(t *testing.T) {
	blobs := &failingStore{
		Store:    memory.NewStore(),
		failKeys: map[string]bool{KeyPasswords: true},
	}
	cipher := crypto.NewCipher(crypto.NewKeyManager())
	audit := NewAuditLog(blobs, discardLogger())
	s := NewPasswordStore(blobs, cipher, audit, discardLogger())
	ctx := context.Background()

	_, err := s.Add(ctx, &PasswordRecord{Title: "Bank", Username: "alice", Password: "x"})
	require.Error(t, err)

	// After the failure the in-memory view reflects the durable store.
	records, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)

	blobs.failKeys[KeyPasswords] = false
	created, err := s.Add(ctx, &PasswordRecord{Title: "Mail", Username: "bob", Password: "y"})
	require.NoError(t, err)

	records, err = s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, created.ID, records[0].ID)
}

func TestStore_CancelledContext(t *testing.T) {
	f := newFixture(t)
	s := f.passwordStore()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Add(ctx, &PasswordRecord{Title: "Bank", Username: "alice", Password: "x"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStore_BackupCodesRoundTrip(t *testing.T) {
	f := newFixture(t)
	s := NewBackupCodeStore(f.blobs, f.cipher, f.audit, discardLogger())
	ctx := context.Background()

	created, err := s.Add(ctx, &BackupCodeRecord{
		Service:     "GitHub",
		Codes:       []string{"1111-2222", "3333-4444"},
		Description: "Recovery codes",
	})
	require.NoError(t, err)

	fresh := NewBackupCodeStore(f.blobs, f.cipher, f.audit, discardLogger())
	records, err := fresh.Load(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, created.ID, records[0].ID)
	assert.Equal(t, []string{"1111-2222", "3333-4444"}, records[0].Codes)

	entries := f.audit.Entries()
	assert.Contains(t, entries[0].Action, "Added backup codes for: GitHub")
}

func TestStore_AICredentialsRoundTrip(t *testing.T) {
	f := newFixture(t)
	s := NewAICredentialStore(f.blobs, f.cipher, f.audit, discardLogger())
	ctx := context.Background()

	created, err := s.Add(ctx, &AICredentialRecord{
		Service:  "openai",
		APIKey:   "sk-test",
		Endpoint: "https://api.openai.com/v1",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	fresh := NewAICredentialStore(f.blobs, f.cipher, f.audit, discardLogger())
	records, err := fresh.Load(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "sk-test", records[0].APIKey)
}

func TestStore_CollectionIsJSONArray(t *testing.T) {
	f := newFixture(t)
	s := f.passwordStore()
	ctx := context.Background()

	_, err := s.Add(ctx, &PasswordRecord{Title: "Bank", Username: "alice", Password: "x"})
	require.NoError(t, err)

	raw, err := f.blobs.Get(KeyPasswords)
	require.NoError(t, err)

	plaintext, err := f.cipher.Decrypt(string(raw))
	require.NoError(t, err)

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(plaintext, &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "Bank", decoded[0]["title"])
}

func TestStore_BlobReadErrorFailsSoft(t *testing.T) {
	blobs := &erroringStore{err: errors.New("io failure")}
	cipher := crypto.NewCipher(crypto.NewKeyManager())
	audit := NewAuditLog(memory.NewStore(), discardLogger())
	s := NewPasswordStore(blobs, cipher, audit, discardLogger())

	records, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
}

type erroringStore struct {
	err error
}

func (s *erroringStore) Get(string) ([]byte, error) { return nil, s.err }
func (s *erroringStore) Set(string, []byte) error   { return s.err }
func (s *erroringStore) Delete(string) error        { return s.err }

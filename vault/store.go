package vault

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/securepass/securepass/crypto"
	"github.com/securepass/securepass/internal/uuid"
	"github.com/securepass/securepass/storage"
)

// collectionNames are the human-readable nouns used in audit entries.
type collectionNames struct {
	singular string
	plural   string
}

// Store is an encrypted collection of records of one kind. Every mutating
// operation runs a full load-modify-save cycle under the instance mutex,
// so concurrent callers can never lose each other's updates. The store is
// the sole writer of its storage key.
//
// Reads fail soft: a missing blob is a valid empty vault, and an
// undecryptable or unparseable blob is logged and treated as empty rather
// than locking the caller out. Writes fail hard with ErrPersistence.
type Store[T Record] struct {
	mu         sync.Mutex
	storageKey string
	names      collectionNames
	blobs      storage.BlobStore
	cipher     *crypto.Cipher
	audit      *AuditLog
	logger     *slog.Logger
	now        func() time.Time

	records []T
	loaded  bool
}

func newStore[T Record](storageKey string, names collectionNames, blobs storage.BlobStore, cipher *crypto.Cipher, audit *AuditLog, opts ...Option) *Store[T] {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Store[T]{
		storageKey: storageKey,
		names:      names,
		blobs:      blobs,
		cipher:     cipher,
		audit:      audit,
		logger:     cfg.logger.With("collection", storageKey),
		now:        cfg.now,
	}
}

// NewPasswordStore creates the encrypted password collection.
func NewPasswordStore(blobs storage.BlobStore, cipher *crypto.Cipher, audit *AuditLog, opts ...Option) *Store[*PasswordRecord] {
	return newStore[*PasswordRecord](KeyPasswords,
		collectionNames{"password entry", "password entries"},
		blobs, cipher, audit, opts...)
}

// NewBackupCodeStore creates the encrypted backup code collection.
func NewBackupCodeStore(blobs storage.BlobStore, cipher *crypto.Cipher, audit *AuditLog, opts ...Option) *Store[*BackupCodeRecord] {
	return newStore[*BackupCodeRecord](KeyBackupCodes,
		collectionNames{"backup codes for", "backup code entries"},
		blobs, cipher, audit, opts...)
}

// NewAICredentialStore creates the encrypted AI credential collection.
func NewAICredentialStore(blobs storage.BlobStore, cipher *crypto.Cipher, audit *AuditLog, opts ...Option) *Store[*AICredentialRecord] {
	return newStore[*AICredentialRecord](KeyAICredentials,
		collectionNames{"AI credential for", "AI credential entries"},
		blobs, cipher, audit, opts...)
}

// loadLocked populates the in-memory collection from the blob store on
// first use. All read failures degrade to an empty collection.
func (s *Store[T]) loadLocked() {
	if s.loaded {
		return
	}
	s.loaded = true
	s.records = nil

	data, err := s.blobs.Get(s.storageKey)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.logger.Error("reading collection", "error", err)
		}
		return
	}

	plaintext, err := s.cipher.Decrypt(string(data))
	if err != nil {
		s.logger.Error("decrypting collection, starting empty", "error", err)
		return
	}

	var records []T
	if err := json.Unmarshal(plaintext, &records); err != nil {
		s.logger.Error("decoding collection, starting empty", "error", err)
		return
	}
	s.records = records
}

// saveLocked serializes, encrypts, and writes the collection, then swaps
// it in as the in-memory state. On a failed write the cached state is
// invalidated so the next operation reloads from the durable store.
func (s *Store[T]) saveLocked(records []T) error {
	plaintext, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encoding collection: %w", err)
	}
	envelope, err := s.cipher.Encrypt(plaintext)
	if err != nil {
		return fmt.Errorf("encrypting collection: %w", err)
	}
	if err := s.blobs.Set(s.storageKey, []byte(envelope)); err != nil {
		s.loaded = false
		s.records = nil
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	s.records = records
	return nil
}

// snapshotLocked deep-copies the collection: callers get a read-only
// view that later mutations cannot reach into.
func (s *Store[T]) snapshotLocked() []T {
	out := make([]T, len(s.records))
	for i, r := range s.records {
		out[i] = r.clone().(T)
	}
	return out
}

// Load returns the current collection, reading and decrypting it from the
// blob store on first call. An uninitialized vault yields an empty list.
func (s *Store[T]) Load(ctx context.Context) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadLocked()
	return s.snapshotLocked(), nil
}

// Records returns a snapshot of the in-memory collection.
func (s *Store[T]) Records() []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadLocked()
	return s.snapshotLocked()
}

// Add assigns the record a fresh ID and timestamps, appends it, persists
// the collection, and audits the addition. The returned record is the
// stored one.
func (s *Store[T]) Add(ctx context.Context, record T) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadLocked()

	now := s.now()
	m := record.meta()
	m.ID = uuid.New()
	m.CreatedAt = now
	m.UpdatedAt = now

	// A clone goes into the collection; the caller keeps its own copy.
	next := append(s.snapshotLocked(), record.clone().(T))
	if err := s.saveLocked(next); err != nil {
		return zero, err
	}
	s.audit.AddLog(fmt.Sprintf("Added %s: %s", s.names.singular, record.Label()))
	return record, nil
}

// Update applies mutate to the record with the given ID and refreshes its
// UpdatedAt. ID and CreatedAt survive the mutation unchanged. A missing ID
// is a benign no-op: the unchanged collection is still persisted and the
// operation still audited.
func (s *Store[T]) Update(ctx context.Context, id string, mutate func(T)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadLocked()

	label := "Unknown"
	for _, r := range s.records {
		m := r.meta()
		if m.ID != id {
			continue
		}
		createdAt := m.CreatedAt
		mutate(r)
		m.ID = id
		m.CreatedAt = createdAt
		m.UpdatedAt = s.now()
		label = r.Label()
	}

	if err := s.saveLocked(s.records); err != nil {
		return err
	}
	s.audit.AddLog(fmt.Sprintf("Updated %s: %s", s.names.singular, label))
	return nil
}

// Remove deletes the record with the given ID, persists the collection,
// and audits the removal using the removed record's label.
func (s *Store[T]) Remove(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadLocked()

	label := "Unknown"
	next := make([]T, 0, len(s.records))
	for _, r := range s.records {
		if r.meta().ID == id {
			label = r.Label()
			continue
		}
		next = append(next, r)
	}

	if err := s.saveLocked(next); err != nil {
		return err
	}
	s.audit.AddLog(fmt.Sprintf("Deleted %s: %s", s.names.singular, label))
	return nil
}

// ExportAll returns the decrypted collection and audits the export. What
// happens to the plaintext afterwards is the caller's responsibility.
func (s *Store[T]) ExportAll(ctx context.Context) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadLocked()

	s.audit.AddLog(fmt.Sprintf("Exported %s", s.names.plural))
	return s.snapshotLocked(), nil
}

// ImportMany appends the candidates that have all required fields, saves
// once, and returns how many were accepted. Candidates keep a supplied ID
// as-is (collisions with existing records are tolerated, matching the
// original import behavior) and get a fresh one otherwise; a supplied
// CreatedAt is kept, UpdatedAt is always refreshed.
func (s *Store[T]) ImportMany(ctx context.Context, candidates []T) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadLocked()

	now := s.now()
	next := s.snapshotLocked()
	accepted := 0
	for _, c := range candidates {
		if !c.Valid() {
			continue
		}
		m := c.meta()
		if m.ID == "" {
			m.ID = uuid.New()
		}
		if m.CreatedAt.IsZero() {
			m.CreatedAt = now
		}
		m.UpdatedAt = now
		next = append(next, c.clone().(T))
		accepted++
	}

	if err := s.saveLocked(next); err != nil {
		return 0, err
	}
	s.audit.AddLog(fmt.Sprintf("Imported %d %s", accepted, s.names.plural))
	return accepted, nil
}

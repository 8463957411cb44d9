package vault

import (
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/securepass/securepass/internal/uuid"
	"github.com/securepass/securepass/storage"
)

// MaxAuditEntries is the ledger cap; older entries are evicted first.
const MaxAuditEntries = 1000

// AuditEntry is one immutable ledger record.
type AuditEntry struct {
	ID        string    `json:"id"`
	Action    string    `json:"action"`
	Details   string    `json:"details,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// AuditLog is the append-only, size-bounded event ledger. Unlike the
// record collections it is persisted in plaintext: entries are
// low-sensitivity metadata, not secrets.
type AuditLog struct {
	mu     sync.Mutex
	blobs  storage.BlobStore
	logger *slog.Logger
	now    func() time.Time

	entries []AuditEntry
	loaded  bool
}

// NewAuditLog creates an AuditLog over the given blob store.
func NewAuditLog(blobs storage.BlobStore, opts ...Option) *AuditLog {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &AuditLog{
		blobs:  blobs,
		logger: cfg.logger.With("component", "audit"),
		now:    cfg.now,
	}
}

func (l *AuditLog) loadLocked() {
	if l.loaded {
		return
	}
	l.loaded = true
	l.entries = nil

	data, err := l.blobs.Get(KeyAuditLog)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			l.logger.Error("reading audit log", "error", err)
		}
		return
	}
	var entries []AuditEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		l.logger.Error("decoding audit log, starting empty", "error", err)
		return
	}
	l.entries = entries
}

// saveLocked trims the ledger to the most recent MaxAuditEntries and
// persists it. Ledger write failures are logged, not propagated: losing
// an audit entry must not fail the operation that produced it.
func (l *AuditLog) saveLocked(entries []AuditEntry) {
	if len(entries) > MaxAuditEntries {
		entries = entries[len(entries)-MaxAuditEntries:]
	}
	data, err := json.Marshal(entries)
	if err != nil {
		l.logger.Error("encoding audit log", "error", err)
		return
	}
	if err := l.blobs.Set(KeyAuditLog, data); err != nil {
		l.logger.Error("writing audit log", "error", err)
		return
	}
	l.entries = entries
}

// AddLog appends an entry with a fresh ID and the current time, then
// persists the trimmed ledger. An optional detail string may be supplied.
func (l *AuditLog) AddLog(action string, details ...string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.loadLocked()

	entry := AuditEntry{
		ID:        uuid.New(),
		Action:    action,
		Timestamp: l.now(),
	}
	if len(details) > 0 {
		entry.Details = details[0]
	}
	l.saveLocked(append(append([]AuditEntry(nil), l.entries...), entry))
}

// Load returns the persisted ledger, reading it on first call. Read or
// parse failures yield an empty ledger.
func (l *AuditLog) Load() []AuditEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.loadLocked()
	return append([]AuditEntry(nil), l.entries...)
}

// Entries returns a snapshot of the current ledger.
func (l *AuditLog) Entries() []AuditEntry {
	return l.Load()
}

// Clear removes the ledger entirely.
func (l *AuditLog) Clear() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.blobs.Delete(KeyAuditLog); err != nil {
		return err
	}
	l.entries = nil
	l.loaded = true
	return nil
}

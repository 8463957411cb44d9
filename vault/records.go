// Package vault provides encrypted record collections over a blob store:
// a generic load-modify-save store per record kind, plus the append-only
// audit ledger recording every mutating or export operation.
package vault

import "time"

// Storage keys, one blob per collection.
const (
	KeyPasswords     = "securepass_passwords"
	KeyBackupCodes   = "securepass_backup_codes"
	KeyAICredentials = "securepass_ai_credentials"
	KeyAuditLog      = "securepass_audit_log"
)

// Meta carries the fields common to every record. ID is assigned once and
// never changes; CreatedAt is set at creation; UpdatedAt is refreshed on
// every mutation.
type Meta struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (m *Meta) meta() *Meta { return m }

// Record is the constraint for types stored in a Store. Concrete records
// embed Meta and add their domain fields.
type Record interface {
	meta() *Meta
	// clone returns a deep copy, so snapshots handed to callers never
	// alias the store's own records.
	clone() Record
	// Label is the human-readable name used in audit entries.
	Label() string
	// Valid reports whether the record has all required fields, used to
	// filter import candidates.
	Valid() bool
}

// PasswordRecord is a stored login credential.
type PasswordRecord struct {
	Meta
	Title    string `json:"title"`
	Username string `json:"username"`
	Password string `json:"password"`
	Website  string `json:"website"`
	Notes    string `json:"notes"`
}

func (r *PasswordRecord) clone() Record {
	c := *r
	return &c
}

func (r *PasswordRecord) Label() string { return r.Title }

func (r *PasswordRecord) Valid() bool {
	return r.Title != "" && r.Username != "" && r.Password != ""
}

// BackupCodeRecord holds the one-time recovery codes for a service.
type BackupCodeRecord struct {
	Meta
	Service     string   `json:"service"`
	Codes       []string `json:"codes"`
	Description string   `json:"description"`
}

func (r *BackupCodeRecord) clone() Record {
	c := *r
	c.Codes = append([]string(nil), r.Codes...)
	return &c
}

func (r *BackupCodeRecord) Label() string { return r.Service }

func (r *BackupCodeRecord) Valid() bool {
	return r.Service != "" && len(r.Codes) > 0
}

// AICredentialRecord is a stored AI-service API key.
type AICredentialRecord struct {
	Meta
	Service     string `json:"service"`
	APIKey      string `json:"apiKey"`
	Endpoint    string `json:"endpoint,omitempty"`
	Description string `json:"description"`
}

func (r *AICredentialRecord) clone() Record {
	c := *r
	return &c
}

func (r *AICredentialRecord) Label() string { return r.Service }

func (r *AICredentialRecord) Valid() bool {
	return r.Service != "" && r.APIKey != ""
}

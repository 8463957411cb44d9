// Package auth implements account registration and login against the blob
// store. Account passwords are one-way hashed with a per-account salt and
// only gate access to the application; they are independent of the vault
// encryption key.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/securepass/securepass/crypto"
	"github.com/securepass/securepass/internal/uuid"
	"github.com/securepass/securepass/storage"
	"github.com/securepass/securepass/vault"
)

const (
	// KeyUser caches the authenticated identity so a restart within the
	// same store doesn't force a fresh login. Presence of this key alone
	// is treated as "logged in"; it is not cryptographically bound to the
	// account record.
	KeyUser = "securepass_user"

	credsKeyPrefix = "securepass_creds_"
)

var (
	// ErrInvalidCredentials is returned for both an unknown email and a
	// wrong password. The message is deliberately uniform.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrEmailTaken is returned when registering an email that already
	// has an account.
	ErrEmailTaken = errors.New("an account with this email already exists")

	// ErrNoSession is returned by CurrentUser when no identity is cached.
	ErrNoSession = errors.New("no active session")
)

// User is the authenticated identity.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// storedCredential is the persisted account record, one per email.
type storedCredential struct {
	HashedPassword []byte    `json:"hashedPassword"`
	Salt           []byte    `json:"salt"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Authenticator performs register/login/logout flows.
type Authenticator struct {
	blobs  storage.BlobStore
	hasher *crypto.CredentialHasher
	audit  *vault.AuditLog
	logger *slog.Logger
	now    func() time.Time
}

// Option configures an Authenticator.
type Option func(*Authenticator)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Authenticator) {
		a.logger = logger
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(a *Authenticator) {
		a.now = now
	}
}

// New creates an Authenticator over the given blob store and audit log.
func New(blobs storage.BlobStore, audit *vault.AuditLog, opts ...Option) *Authenticator {
	a := &Authenticator{
		blobs:  blobs,
		hasher: crypto.NewCredentialHasher(),
		audit:  audit,
		logger: slog.New(slog.NewJSONHandler(os.Stderr, nil)),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = a.logger.With("component", "auth")
	return a
}

func credsKey(email string) string {
	return credsKeyPrefix + email
}

// Register creates an account for the email, caches the new session, and
// audits the registration.
func (a *Authenticator) Register(ctx context.Context, email, password string) (*User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if email == "" || password == "" {
		return nil, fmt.Errorf("email and password must not be empty")
	}

	if _, err := a.blobs.Get(credsKey(email)); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("reading account record: %w", err)
	}

	digest, salt, err := a.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	cred := storedCredential{
		HashedPassword: digest,
		Salt:           salt,
		CreatedAt:      a.now(),
	}
	data, err := json.Marshal(cred)
	if err != nil {
		return nil, fmt.Errorf("encoding account record: %w", err)
	}
	if err := a.blobs.Set(credsKey(email), data); err != nil {
		return nil, fmt.Errorf("writing account record: %w", err)
	}

	user, err := a.cacheSession(email)
	if err != nil {
		return nil, err
	}
	a.audit.AddLog("User registered")
	return user, nil
}

// Login verifies the password against the stored account record. Unknown
// email and wrong password are indistinguishable to the caller.
func (a *Authenticator) Login(ctx context.Context, email, password string) (*User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := a.blobs.Get(credsKey(email))
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	var cred storedCredential
	if err := json.Unmarshal(data, &cred); err != nil {
		a.logger.Error("decoding account record", "error", err)
		return nil, ErrInvalidCredentials
	}

	if !a.hasher.Verify(password, cred.HashedPassword, cred.Salt) {
		return nil, ErrInvalidCredentials
	}

	user, err := a.cacheSession(email)
	if err != nil {
		return nil, err
	}
	a.audit.AddLog("User logged in")
	return user, nil
}

// Logout drops the cached session.
func (a *Authenticator) Logout(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := a.blobs.Delete(KeyUser); err != nil {
		return fmt.Errorf("removing cached session: %w", err)
	}
	a.audit.AddLog("User logged out")
	return nil
}

// CurrentUser returns the cached identity, or ErrNoSession. A corrupt
// cache entry is discarded.
func (a *Authenticator) CurrentUser(ctx context.Context) (*User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := a.blobs.Get(KeyUser)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNoSession
		}
		return nil, fmt.Errorf("reading cached session: %w", err)
	}

	var user User
	if err := json.Unmarshal(data, &user); err != nil {
		_ = a.blobs.Delete(KeyUser)
		return nil, ErrNoSession
	}
	return &user, nil
}

func (a *Authenticator) cacheSession(email string) (*User, error) {
	user := &User{
		ID:        uuid.New(),
		Email:     email,
		CreatedAt: a.now(),
	}
	data, err := json.Marshal(user)
	if err != nil {
		return nil, fmt.Errorf("encoding session: %w", err)
	}
	if err := a.blobs.Set(KeyUser, data); err != nil {
		return nil, fmt.Errorf("caching session: %w", err)
	}
	return user, nil
}

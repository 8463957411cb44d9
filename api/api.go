// Package api exposes the vault to the local UI layer over a REST surface.
package api

import (
	"context"
	_ "embed"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-openapi/runtime/middleware"

	"github.com/securepass/securepass/auth"
	"github.com/securepass/securepass/clipboard"
	"github.com/securepass/securepass/crypto"
	"github.com/securepass/securepass/session"
	"github.com/securepass/securepass/storage"
	"github.com/securepass/securepass/vault"
)

//go:embed openapi.yaml
var openapiSpec []byte

// API holds the dependencies needed by the REST handlers.
type API struct {
	blobs       storage.BlobStore
	passwords   *vault.Store[*vault.PasswordRecord]
	backupCodes *vault.Store[*vault.BackupCodeRecord]
	aiCreds     *vault.Store[*vault.AICredentialRecord]
	ledger      *vault.AuditLog
	auth        *auth.Authenticator
	clip        *clipboard.Channel
	logger      *slog.Logger
	audit       *auditLogger

	idleTimeout time.Duration
	guard       *session.Guard
}

// Option configures the API instance.
type Option func(*API)

// WithLogger sets the structured logger for security events and for the
// diagnostics of every component the API constructs. If not set, a
// default JSON logger writing to stderr is used.
func WithLogger(logger *slog.Logger) Option {
	return func(a *API) {
		a.logger = logger
	}
}

// WithClipboard enables the clipboard copy endpoint.
func WithClipboard(clip *clipboard.Channel) Option {
	return func(a *API) {
		a.clip = clip
	}
}

// WithIdleTimeout drops the cached session after the given period with no
// authenticated requests. Zero disables the watchdog.
func WithIdleTimeout(d time.Duration) Option {
	return func(a *API) {
		a.idleTimeout = d
	}
}

// New wires the API over the given blob store. All collections share the
// cipher, and every mutating handler feeds the audit ledger.
func New(blobs storage.BlobStore, keys *crypto.KeyManager, opts ...Option) *API {
	a := &API{blobs: blobs}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = slog.New(slog.NewJSONHandler(os.Stderr, nil))
	}
	a.audit = newAuditLogger(a.logger)

	cipher := crypto.NewCipher(keys)
	ledger := vault.NewAuditLog(blobs, vault.WithLogger(a.logger))
	a.passwords = vault.NewPasswordStore(blobs, cipher, ledger, vault.WithLogger(a.logger))
	a.backupCodes = vault.NewBackupCodeStore(blobs, cipher, ledger, vault.WithLogger(a.logger))
	a.aiCreds = vault.NewAICredentialStore(blobs, cipher, ledger, vault.WithLogger(a.logger))
	a.ledger = ledger
	a.auth = auth.New(blobs, ledger, auth.WithLogger(a.logger))

	if a.idleTimeout > 0 {
		a.guard = session.New(a.idleTimeout, func() {
			_ = a.auth.Logout(context.Background())
		})
	}
	return a
}

// Close cancels the idle watchdog and any pending clipboard erasures.
func (a *API) Close() {
	if a.guard != nil {
		a.guard.Stop()
	}
	if a.clip != nil {
		a.clip.Close()
	}
}

// Router returns a chi.Router with all API routes mounted.
func (a *API) Router() chi.Router {
	r := chi.NewRouter()

	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(openapiSpec)
	})

	r.Handle("/docs*", middleware.SwaggerUI(middleware.SwaggerUIOpts{
		SpecURL: "/api/v1/openapi.yaml",
		Path:    "api/v1/docs",
	}, nil))

	r.Post("/auth/register", a.Register)
	r.Post("/auth/login", a.Login)
	r.Post("/auth/logout", a.Logout)
	r.Get("/auth/session", a.Session)

	r.Group(func(r chi.Router) {
		r.Use(a.RequireUser)

		r.Get("/passwords", listHandler(a.passwords))
		r.Post("/passwords", a.AddPassword)
		r.Put("/passwords/{id}", a.UpdatePassword)
		r.Delete("/passwords/{id}", removeHandler(a.passwords))
		r.Get("/passwords/export", exportHandler(a.passwords, a.audit))
		r.Post("/passwords/import", a.ImportPasswords)

		r.Get("/backup-codes", listHandler(a.backupCodes))
		r.Post("/backup-codes", a.AddBackupCode)
		r.Put("/backup-codes/{id}", a.UpdateBackupCode)
		r.Delete("/backup-codes/{id}", removeHandler(a.backupCodes))
		r.Get("/backup-codes/export", exportHandler(a.backupCodes, a.audit))

		r.Get("/ai-credentials", listHandler(a.aiCreds))
		r.Post("/ai-credentials", a.AddAICredential)
		r.Put("/ai-credentials/{id}", a.UpdateAICredential)
		r.Delete("/ai-credentials/{id}", removeHandler(a.aiCreds))
		r.Get("/ai-credentials/export", exportHandler(a.aiCreds, a.audit))

		r.Get("/audit", a.ListAudit)
		r.Delete("/audit", a.ClearAudit)

		r.Post("/clipboard", a.CopyToClipboard)
		r.Get("/generate-password", a.GeneratePassword)
	})

	return r
}

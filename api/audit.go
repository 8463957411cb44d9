package api

import (
	"log/slog"
	"net/http"
	"time"
)

// SecurityEvent identifies the type of security-relevant action being logged.
type SecurityEvent string

const (
	EventLoginSuccess  SecurityEvent = "login_success"
	EventLoginFailure  SecurityEvent = "login_failure"
	EventRegister      SecurityEvent = "register"
	EventLogout        SecurityEvent = "logout"
	EventVaultExported SecurityEvent = "vault_exported"
	EventVaultImported SecurityEvent = "vault_imported"
)

// auditLogger wraps slog.Logger for structured security event logging.
// This is operator-facing diagnostics; the user-facing ledger lives in
// vault.AuditLog.
type auditLogger struct {
	logger *slog.Logger
}

func newAuditLogger(logger *slog.Logger) *auditLogger {
	return &auditLogger{
		logger: logger.With("component", "audit"),
	}
}

func (al *auditLogger) log(event SecurityEvent, r *http.Request, attrs ...slog.Attr) {
	baseAttrs := []slog.Attr{
		slog.String("event", string(event)),
		slog.String("remote_addr", r.RemoteAddr),
		slog.String("timestamp", time.Now().UTC().Format(time.RFC3339)),
	}
	baseAttrs = append(baseAttrs, attrs...)
	al.logger.LogAttrs(r.Context(), slog.LevelInfo, "audit", baseAttrs...)
}

// logFailure logs a failed authentication attempt with its reason.
func (al *auditLogger) logFailure(event SecurityEvent, r *http.Request, reason string) {
	al.log(event, r, slog.String("reason", reason))
}

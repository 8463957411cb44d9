package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/securepass/securepass/internal/util"
	"github.com/securepass/securepass/vault"
)

// userAttrs attributes an event to the authenticated user, if any.
func userAttrs(r *http.Request) []slog.Attr {
	user := userFromContext(r.Context())
	if user == nil {
		return nil
	}
	return []slog.Attr{slog.String("email", user.Email)}
}

func listHandler[T vault.Record](s *vault.Store[T]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		records, err := s.Load(r.Context())
		if err != nil {
			mapError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, records)
	}
}

func removeHandler[T vault.Record](s *vault.Store[T]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.Remove(r.Context(), chi.URLParam(r, "id")); err != nil {
			mapError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func exportHandler[T vault.Record](s *vault.Store[T], al *auditLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		records, err := s.ExportAll(r.Context())
		if err != nil {
			mapError(w, err)
			return
		}
		al.log(EventVaultExported, r, userAttrs(r)...)
		writeJSON(w, http.StatusOK, records)
	}
}

// AddPassword handles POST /passwords.
func (a *API) AddPassword(w http.ResponseWriter, r *http.Request) {
	var req AddPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := a.passwords.Add(r.Context(), &vault.PasswordRecord{
		Title:    req.Title,
		Username: req.Username,
		Password: req.Password,
		Website:  req.Website,
		Notes:    req.Notes,
	})
	if err != nil {
		mapError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// UpdatePassword handles PUT /passwords/{id}.
func (a *API) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	var patch PasswordPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err := a.passwords.Update(r.Context(), chi.URLParam(r, "id"), func(rec *vault.PasswordRecord) {
		if patch.Title != nil {
			rec.Title = *patch.Title
		}
		if patch.Username != nil {
			rec.Username = *patch.Username
		}
		if patch.Password != nil {
			rec.Password = *patch.Password
		}
		if patch.Website != nil {
			rec.Website = *patch.Website
		}
		if patch.Notes != nil {
			rec.Notes = *patch.Notes
		}
	})
	if err != nil {
		mapError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ImportPasswords handles POST /passwords/import. The body is a plaintext
// JSON array of password records, as produced by the export endpoint.
func (a *API) ImportPasswords(w http.ResponseWriter, r *http.Request) {
	var candidates []*vault.PasswordRecord
	if err := json.NewDecoder(r.Body).Decode(&candidates); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	count, err := a.passwords.ImportMany(r.Context(), candidates)
	if err != nil {
		mapError(w, err)
		return
	}
	a.audit.log(EventVaultImported, r, userAttrs(r)...)
	writeJSON(w, http.StatusOK, ImportResponse{Imported: count})
}

// AddBackupCode handles POST /backup-codes.
func (a *API) AddBackupCode(w http.ResponseWriter, r *http.Request) {
	var req AddBackupCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := a.backupCodes.Add(r.Context(), &vault.BackupCodeRecord{
		Service:     req.Service,
		Codes:       req.Codes,
		Description: req.Description,
	})
	if err != nil {
		mapError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// UpdateBackupCode handles PUT /backup-codes/{id}.
func (a *API) UpdateBackupCode(w http.ResponseWriter, r *http.Request) {
	var patch BackupCodePatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err := a.backupCodes.Update(r.Context(), chi.URLParam(r, "id"), func(rec *vault.BackupCodeRecord) {
		if patch.Service != nil {
			rec.Service = *patch.Service
		}
		if patch.Codes != nil {
			rec.Codes = *patch.Codes
		}
		if patch.Description != nil {
			rec.Description = *patch.Description
		}
	})
	if err != nil {
		mapError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddAICredential handles POST /ai-credentials.
func (a *API) AddAICredential(w http.ResponseWriter, r *http.Request) {
	var req AddAICredentialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := a.aiCreds.Add(r.Context(), &vault.AICredentialRecord{
		Service:     req.Service,
		APIKey:      req.APIKey,
		Endpoint:    req.Endpoint,
		Description: req.Description,
	})
	if err != nil {
		mapError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// UpdateAICredential handles PUT /ai-credentials/{id}.
func (a *API) UpdateAICredential(w http.ResponseWriter, r *http.Request) {
	var patch AICredentialPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err := a.aiCreds.Update(r.Context(), chi.URLParam(r, "id"), func(rec *vault.AICredentialRecord) {
		if patch.Service != nil {
			rec.Service = *patch.Service
		}
		if patch.APIKey != nil {
			rec.APIKey = *patch.APIKey
		}
		if patch.Endpoint != nil {
			rec.Endpoint = *patch.Endpoint
		}
		if patch.Description != nil {
			rec.Description = *patch.Description
		}
	})
	if err != nil {
		mapError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListAudit handles GET /audit.
func (a *API) ListAudit(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.ledger.Load())
}

// ClearAudit handles DELETE /audit.
func (a *API) ClearAudit(w http.ResponseWriter, r *http.Request) {
	if err := a.ledger.Clear(); err != nil {
		mapError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CopyToClipboard handles POST /clipboard.
func (a *API) CopyToClipboard(w http.ResponseWriter, r *http.Request) {
	if a.clip == nil {
		writeError(w, http.StatusNotImplemented, "clipboard not configured")
		return
	}

	var req CopyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	clearAfter := time.Duration(req.ClearAfterMs) * time.Millisecond
	if clearAfter <= 0 {
		clearAfter = 30 * time.Second
	}
	if err := a.clip.Copy(req.Text, req.Label, clearAfter); err != nil {
		mapError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GeneratePassword handles GET /generate-password.
func (a *API) GeneratePassword(w http.ResponseWriter, r *http.Request) {
	length := 16
	if raw := r.URL.Query().Get("length"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 4 || parsed > 128 {
			writeError(w, http.StatusBadRequest, "length must be between 4 and 128")
			return
		}
		length = parsed
	}

	password, err := util.RandomPassword(length)
	if err != nil {
		mapError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, GeneratedPassword{Password: password})
}

package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// Register handles POST /auth/register.
func (a *API) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := a.auth.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		mapError(w, err)
		return
	}

	if a.guard != nil {
		a.guard.Restart()
	}
	a.audit.log(EventRegister, r, slog.String("email", user.Email))
	writeJSON(w, http.StatusCreated, user)
}

// Login handles POST /auth/login.
func (a *API) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := a.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		a.audit.logFailure(EventLoginFailure, r, "invalid credentials")
		mapError(w, err)
		return
	}

	if a.guard != nil {
		a.guard.Restart()
	}
	a.audit.log(EventLoginSuccess, r, slog.String("email", user.Email))
	writeJSON(w, http.StatusOK, user)
}

// Logout handles POST /auth/logout.
func (a *API) Logout(w http.ResponseWriter, r *http.Request) {
	if err := a.auth.Logout(r.Context()); err != nil {
		mapError(w, err)
		return
	}
	a.audit.log(EventLogout, r)
	w.WriteHeader(http.StatusNoContent)
}

// Session handles GET /auth/session.
func (a *API) Session(w http.ResponseWriter, r *http.Request) {
	user, err := a.auth.CurrentUser(r.Context())
	if err != nil {
		mapError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

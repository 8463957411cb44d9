package api

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// RegisterRequest is the JSON body for POST /auth/register.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the JSON body for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AddPasswordRequest is the JSON body for POST /passwords.
type AddPasswordRequest struct {
	Title    string `json:"title"`
	Username string `json:"username"`
	Password string `json:"password"`
	Website  string `json:"website"`
	Notes    string `json:"notes"`
}

// PasswordPatch carries a partial update for PUT /passwords/{id}.
// Only non-nil fields are applied.
type PasswordPatch struct {
	Title    *string `json:"title"`
	Username *string `json:"username"`
	Password *string `json:"password"`
	Website  *string `json:"website"`
	Notes    *string `json:"notes"`
}

// AddBackupCodeRequest is the JSON body for POST /backup-codes.
type AddBackupCodeRequest struct {
	Service     string   `json:"service"`
	Codes       []string `json:"codes"`
	Description string   `json:"description"`
}

// BackupCodePatch carries a partial update for PUT /backup-codes/{id}.
type BackupCodePatch struct {
	Service     *string   `json:"service"`
	Codes       *[]string `json:"codes"`
	Description *string   `json:"description"`
}

// AddAICredentialRequest is the JSON body for POST /ai-credentials.
type AddAICredentialRequest struct {
	Service     string `json:"service"`
	APIKey      string `json:"apiKey"`
	Endpoint    string `json:"endpoint"`
	Description string `json:"description"`
}

// AICredentialPatch carries a partial update for PUT /ai-credentials/{id}.
type AICredentialPatch struct {
	Service     *string `json:"service"`
	APIKey      *string `json:"apiKey"`
	Endpoint    *string `json:"endpoint"`
	Description *string `json:"description"`
}

// ImportResponse is returned from POST /passwords/import.
type ImportResponse struct {
	Imported int `json:"imported"`
}

// CopyRequest is the JSON body for POST /clipboard.
type CopyRequest struct {
	Text         string `json:"text"`
	Label        string `json:"label"`
	ClearAfterMs int    `json:"clearAfterMs"`
}

// GeneratedPassword is returned from GET /generate-password.
type GeneratedPassword struct {
	Password string `json:"password"`
}

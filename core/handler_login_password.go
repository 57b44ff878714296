package core

import (
	"encoding/json"
	"net/http"

	"github.com/tidings-app/tidings/crypto"
	"github.com/tidings-app/tidings/db"
)

// AuthWithPasswordHandler handles password-based authentication (login)
// Endpoint: POST /api/auth-with-password
// Authenticated: No
// Allowed Mimetype: application/json
func (a *App) AuthWithPasswordHandler(w http.ResponseWriter, r *http.Request) {
	if err, resp := a.Validator().ContentType(r, MimeTypeJSON); err != nil {
		writeJsonError(w, resp)
		return
	}

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJsonError(w, errorInvalidRequest)
		return
	}

	if req.Email == "" || req.Password == "" {
		writeJsonError(w, errorInvalidRequest)
		return
	}

	if err := ValidateEmail(req.Email); err != nil {
		writeJsonError(w, errorInvalidRequest)
		return
	}

	user, err := a.DbAuth().GetUserByEmail(req.Email)
	if err != nil || user == nil {
		writeJsonError(w, errorInvalidCredentials)
		return
	}

	// Passwordless accounts cannot log in this way; same response as a
	// wrong password so the account type is not revealed.
	if !crypto.CheckPassword(req.Password, user.Password) {
		writeJsonError(w, errorInvalidCredentials)
		return
	}

	token, expiresIn, err := a.newSessionToken(user)
	if err != nil {
		writeJsonError(w, errorTokenGeneration)
		return
	}

	a.recordNotification(user.ID, db.NotificationLogin, "New sign-in with password.")

	writeAuthResponse(w, token, expiresIn, user)
}

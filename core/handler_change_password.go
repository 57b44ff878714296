package core

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/tidings-app/tidings/crypto"
	"github.com/tidings-app/tidings/db"
)

// ChangePasswordHandler sets a new password. Two authorizations are
// accepted: the current password, or a pending otp_verified marker left by
// a consumed reset/change-password code. The marker path is a single
// conditional update, so the marker is spent exactly once; a retry with the
// same marker is refused.
// Endpoint: POST /api/change-password
// Authenticated: No (the supplied authorization stands in for a session)
// Allowed Mimetype: application/json
func (a *App) ChangePasswordHandler(w http.ResponseWriter, r *http.Request) {
	if err, resp := a.Validator().ContentType(r, MimeTypeJSON); err != nil {
		writeJsonError(w, resp)
		return
	}

	var req struct {
		Email           string `json:"email"`
		NewPassword     string `json:"new_password"`
		CurrentPassword string `json:"current_password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJsonError(w, errorInvalidRequest)
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	req.NewPassword = strings.TrimSpace(req.NewPassword)
	if req.Email == "" || req.NewPassword == "" {
		writeJsonError(w, errorMissingFields)
		return
	}
	if len(req.NewPassword) < 8 {
		writeJsonError(w, errorPasswordComplexity)
		return
	}

	hashedPassword, err := crypto.GenerateHash(req.NewPassword)
	if err != nil {
		writeJsonError(w, errorTokenGeneration)
		return
	}

	if req.CurrentPassword != "" {
		user, err := a.DbAuth().GetUserByEmail(req.Email)
		if err != nil {
			writeJsonError(w, errorAuthDatabaseError)
			return
		}
		if user == nil || !crypto.CheckPassword(req.CurrentPassword, user.Password) {
			writeJsonError(w, errorInvalidCredentials)
			return
		}
		if err := a.DbAuth().UpdatePassword(user.ID, string(hashedPassword)); err != nil {
			writeJsonError(w, errorAuthDatabaseError)
			return
		}
		writeJsonOk(w, okPasswordChanged)
		return
	}

	// Marker path: matches zero rows unless a consumed reset or
	// change-password code left otp_verified set.
	_, err = a.DbAuth().ConsumeOtpMarker(req.Email, string(hashedPassword))
	if err != nil {
		if err == db.ErrProofNotFound {
			writeJsonError(w, errorNotAuthorized)
			return
		}
		writeJsonError(w, errorAuthDatabaseError)
		return
	}

	writeJsonOk(w, okPasswordChanged)
}

package core

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/tidings-app/tidings/crypto"
	"github.com/tidings-app/tidings/db"
	"github.com/tidings-app/tidings/queue"
)

// RequestPasswordResetHandler handles password reset requests.
// Endpoint: POST /api/request-password-reset
// Authenticated: No
// Allowed Mimetype: application/json
//
// Enumeration-safe: unknown addresses get the same accepted response, and
// the decision whether to actually send happens in the job handler.
func (a *App) RequestPasswordResetHandler(w http.ResponseWriter, r *http.Request) {
	if err, resp := a.Validator().ContentType(r, MimeTypeJSON); err != nil {
		writeJsonError(w, resp)
		return
	}

	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJsonError(w, errorInvalidRequest)
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" {
		writeJsonError(w, errorInvalidRequest)
		return
	}
	if err := ValidateEmail(req.Email); err != nil {
		writeJsonError(w, errorInvalidRequest)
		return
	}

	cfg := a.Config()
	if a.inCooldown(queue.JobTypePasswordReset, req.Email, cfg.RateLimits.PasswordResetCooldown.Duration) {
		writeJsonError(w, errorTooManyRequests)
		return
	}

	payload, _ := json.Marshal(queue.PayloadEmail{
		Email:          req.Email,
		CooldownBucket: queue.CoolDownBucket(cfg.RateLimits.PasswordResetCooldown.Duration, time.Now()),
	})
	err := a.DbQueue().InsertJob(db.Job{
		JobType: queue.JobTypePasswordReset,
		Payload: payload,
	})
	if err != nil && err != db.ErrConstraintUnique {
		writeJsonError(w, errorServiceUnavailable)
		return
	}

	writeJsonOk(w, okPasswordResetRequested)
}

// ConfirmPasswordResetHandler consumes a reset token and sets the new
// password in the same conditional update.
// Endpoint: POST /api/confirm-password-reset
// Authenticated: No
// Allowed Mimetype: application/json
func (a *App) ConfirmPasswordResetHandler(w http.ResponseWriter, r *http.Request) {
	if err, resp := a.Validator().ContentType(r, MimeTypeJSON); err != nil {
		writeJsonError(w, resp)
		return
	}

	var req struct {
		Email           string `json:"email"`
		Token           string `json:"token"`
		Password        string `json:"password"`
		PasswordConfirm string `json:"password_confirm"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJsonError(w, errorInvalidRequest)
		return
	}
	if req.Email == "" || req.Token == "" || req.Password == "" {
		writeJsonError(w, errorMissingFields)
		return
	}
	if req.PasswordConfirm != "" && req.Password != req.PasswordConfirm {
		writeJsonError(w, errorPasswordMismatch)
		return
	}
	if len(req.Password) < 8 {
		writeJsonError(w, errorPasswordComplexity)
		return
	}

	hashedPassword, err := crypto.GenerateHash(req.Password)
	if err != nil {
		writeJsonError(w, errorTokenGeneration)
		return
	}

	_, err = a.DbAuth().ConsumeResetToken(req.Email, req.Token, string(hashedPassword), time.Now())
	if err != nil {
		if err == db.ErrProofNotFound {
			writeJsonError(w, errorInvalidProof)
			return
		}
		writeJsonError(w, errorAuthDatabaseError)
		return
	}

	writeJsonOk(w, okPasswordReset)
}

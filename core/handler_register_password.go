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

// RegisterWithPasswordHandler handles password-based user registration.
// Endpoint: POST /api/register-with-password
// Authenticated: No
// Allowed Mimetype: application/json
//
// A duplicate email is a conflict and writes nothing; the account starts
// inactive and a verification email job is enqueued. The response carries a
// session token: the account can act before verification, limited by the
// active flag where activation matters.
func (a *App) RegisterWithPasswordHandler(w http.ResponseWriter, r *http.Request) {
	if err, resp := a.Validator().ContentType(r, MimeTypeJSON); err != nil {
		writeJsonError(w, resp)
		return
	}

	var req struct {
		Email           string `json:"email"`
		Name            string `json:"name"`
		Password        string `json:"password"`
		PasswordConfirm string `json:"password_confirm"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJsonError(w, errorInvalidRequest)
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	req.Password = strings.TrimSpace(req.Password)
	if req.Email == "" || req.Password == "" || req.PasswordConfirm == "" {
		writeJsonError(w, errorMissingFields)
		return
	}
	if err := ValidateEmail(req.Email); err != nil {
		writeJsonError(w, errorInvalidRequest)
		return
	}

	if req.Password != req.PasswordConfirm {
		writeJsonError(w, errorPasswordMismatch)
		return
	}

	if len(req.Password) < 8 {
		writeJsonError(w, errorPasswordComplexity)
		return
	}

	// Hash password before storage
	hashedPassword, err := crypto.GenerateHash(req.Password)
	if err != nil {
		writeJsonError(w, errorTokenGeneration)
		return
	}

	newUser := db.User{
		Email:    req.Email,
		Name:     req.Name,
		Password: string(hashedPassword),
		Active:   false,
		Oauth2:   false,
	}

	createdUser, err := a.DbAuth().CreateUserWithPassword(newUser)
	if err != nil {
		if err == db.ErrConstraintUnique {
			writeJsonError(w, errorEmailConflict)
			return
		}
		writeJsonError(w, errorAuthDatabaseError)
		return
	}

	// Queue the verification email. The proof is minted at send time by the
	// job handler, not here.
	cfg := a.Config()
	payload, _ := json.Marshal(queue.PayloadEmail{
		Email:          createdUser.Email,
		CooldownBucket: queue.CoolDownBucket(cfg.RateLimits.EmailVerificationCooldown.Duration, time.Now()),
	})
	err = a.DbQueue().InsertJob(db.Job{
		JobType: queue.JobTypeEmailVerification,
		Payload: payload,
	})
	if err != nil && err != db.ErrConstraintUnique {
		a.Logger().Error("failed to insert verification job", "error", err, "email", createdUser.Email)
		writeJsonError(w, errorServiceUnavailable)
		return
	}

	a.recordNotification(createdUser.ID, db.NotificationRegistration, "Welcome! Confirm your email address to activate your account.")

	token, expiresIn, err := a.newSessionToken(createdUser)
	if err != nil {
		writeJsonError(w, errorTokenGeneration)
		return
	}

	writeAuthCreatedResponse(w, token, expiresIn, createdUser)
}

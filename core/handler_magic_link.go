package core

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/tidings-app/tidings/db"
	"github.com/tidings-app/tidings/queue"
)

// RequestMagicLinkHandler handles passwordless login link requests.
// Endpoint: POST /api/request-magic-link
// Authenticated: No
// Allowed Mimetype: application/json
func (a *App) RequestMagicLinkHandler(w http.ResponseWriter, r *http.Request) {
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
	if a.inCooldown(queue.JobTypeMagicLink, req.Email, cfg.RateLimits.MagicLinkCooldown.Duration) {
		writeJsonError(w, errorTooManyRequests)
		return
	}

	payload, _ := json.Marshal(queue.PayloadEmail{
		Email:          req.Email,
		CooldownBucket: queue.CoolDownBucket(cfg.RateLimits.MagicLinkCooldown.Duration, time.Now()),
	})
	err := a.DbQueue().InsertJob(db.Job{
		JobType: queue.JobTypeMagicLink,
		Payload: payload,
	})
	if err != nil && err != db.ErrConstraintUnique {
		writeJsonError(w, errorServiceUnavailable)
		return
	}

	writeJsonOk(w, okMagicLinkRequested)
}

// AuthWithMagicLinkHandler consumes a magic link token and issues a session.
// Endpoint: POST /api/auth-with-magic-link
// Authenticated: No
// Allowed Mimetype: application/json
func (a *App) AuthWithMagicLinkHandler(w http.ResponseWriter, r *http.Request) {
	if err, resp := a.Validator().ContentType(r, MimeTypeJSON); err != nil {
		writeJsonError(w, resp)
		return
	}

	var req struct {
		Email string `json:"email"`
		Token string `json:"token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJsonError(w, errorInvalidRequest)
		return
	}
	if req.Email == "" || req.Token == "" {
		writeJsonError(w, errorMissingFields)
		return
	}

	user, err := a.DbAuth().ConsumeMagicLink(req.Email, req.Token, time.Now())
	if err != nil {
		if err == db.ErrProofNotFound {
			writeJsonError(w, errorInvalidProof)
			return
		}
		writeJsonError(w, errorAuthDatabaseError)
		return
	}

	token, expiresIn, err := a.newSessionToken(user)
	if err != nil {
		writeJsonError(w, errorTokenGeneration)
		return
	}

	a.recordNotification(user.ID, db.NotificationLogin, "New sign-in with magic link.")

	writeAuthResponse(w, token, expiresIn, user)
}

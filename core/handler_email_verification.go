package core

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/tidings-app/tidings/db"
	"github.com/tidings-app/tidings/queue"
)

// RequestEmailVerificationHandler handles email verification requests.
// Endpoint: POST /api/request-email-verification
// Authenticated: No
// Allowed Mimetype: application/json
//
// Sending email is expensive and a spam vector: repeats inside the cooldown
// window are absorbed, first by the in-process cache, then by the queue's
// unique payload constraint. The response is the same whether or not the
// address exists, to prevent account enumeration.
func (a *App) RequestEmailVerificationHandler(w http.ResponseWriter, r *http.Request) {
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
	if a.inCooldown(queue.JobTypeEmailVerification, req.Email, cfg.RateLimits.EmailVerificationCooldown.Duration) {
		writeJsonError(w, errorTooManyRequests)
		return
	}

	// Whether the address exists, is already active, or is unknown is
	// resolved by the job handler at send time. The request path only
	// enqueues.
	payload, _ := json.Marshal(queue.PayloadEmail{
		Email:          req.Email,
		CooldownBucket: queue.CoolDownBucket(cfg.RateLimits.EmailVerificationCooldown.Duration, time.Now()),
	})
	err := a.DbQueue().InsertJob(db.Job{
		JobType: queue.JobTypeEmailVerification,
		Payload: payload,
	})
	if err != nil && err != db.ErrConstraintUnique {
		writeJsonError(w, errorServiceUnavailable)
		return
	}

	writeJsonOk(w, okVerificationRequested)
}

// ConfirmEmailVerificationHandler consumes a verification token.
// Endpoint: POST /api/confirm-email-verification
// Authenticated: No
// Allowed Mimetype: application/json
//
// The consumption is one conditional update: it succeeds only if the token
// matches the stored value and has not expired, and it activates the account
// and clears the token atomically. Wrong, expired and already-consumed
// tokens are indistinguishable in the response.
func (a *App) ConfirmEmailVerificationHandler(w http.ResponseWriter, r *http.Request) {
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

	user, err := a.DbAuth().ConsumeVerification(req.Email, req.Token, time.Now())
	if err != nil {
		if err == db.ErrProofNotFound {
			// Replayed, wrong and expired tokens all land here, as do
			// addresses with no account. One uniform answer for all of them.
			writeJsonError(w, errorInvalidProof)
			return
		}
		writeJsonError(w, errorAuthDatabaseError)
		return
	}

	a.Logger().Info("email verified", "user_id", user.ID)
	writeJsonOk(w, okEmailVerified)
}

package core

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/tidings-app/tidings/db"
	"github.com/tidings-app/tidings/queue"
)

// RequestEmailChangeHandler starts an email change for the authenticated
// user. The six-digit code is dispatched to the NEW address, proving control
// of the inbox that will own the account.
// Endpoint: POST /api/request-email-change
// Authenticated: Yes
// Allowed Mimetype: application/json
func (a *App) RequestEmailChangeHandler(w http.ResponseWriter, r *http.Request) {
	if err, resp := a.Validator().ContentType(r, MimeTypeJSON); err != nil {
		writeJsonError(w, resp)
		return
	}

	user, err, authResp := a.Auth().Authenticate(r)
	if err != nil {
		writeJsonError(w, authResp)
		return
	}

	var req struct {
		NewEmail string `json:"new_email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJsonError(w, errorInvalidRequest)
		return
	}

	req.NewEmail = strings.TrimSpace(req.NewEmail)
	if req.NewEmail == "" {
		writeJsonError(w, errorMissingFields)
		return
	}
	if req.NewEmail == user.Email {
		writeJsonError(w, errorEmailConflict)
		return
	}
	if err := ValidateEmail(req.NewEmail); err != nil {
		writeJsonError(w, errorInvalidRequest)
		return
	}

	cfg := a.Config()
	if a.inCooldown(queue.JobTypeEmailChange, user.ID, cfg.RateLimits.EmailChangeCooldown.Duration) {
		writeJsonError(w, errorTooManyRequests)
		return
	}

	// A taken target address is absorbed by the job handler, not reported
	// here: the requester must not learn which addresses exist.
	payload, _ := json.Marshal(queue.PayloadEmailChange{
		UserID:         user.ID,
		NewEmail:       req.NewEmail,
		CooldownBucket: queue.CoolDownBucket(cfg.RateLimits.EmailChangeCooldown.Duration, time.Now()),
	})
	err = a.DbQueue().InsertJob(db.Job{
		JobType: queue.JobTypeEmailChange,
		Payload: payload,
	})
	if err != nil {
		if err == db.ErrConstraintUnique {
			writeJsonError(w, errorAlreadyRequested)
			return
		}
		writeJsonError(w, errorAuthDatabaseError)
		return
	}

	writeJsonOk(w, okEmailChangeRequested)
}

// ConfirmEmailChangeHandler consumes the email-change code and promotes the
// pending address in the same conditional update. A concurrent registration
// of the target address surfaces as a conflict and leaves the proof pending.
// Endpoint: POST /api/confirm-email-change
// Authenticated: Yes
// Allowed Mimetype: application/json
func (a *App) ConfirmEmailChangeHandler(w http.ResponseWriter, r *http.Request) {
	if err, resp := a.Validator().ContentType(r, MimeTypeJSON); err != nil {
		writeJsonError(w, resp)
		return
	}

	user, err, authResp := a.Auth().Authenticate(r)
	if err != nil {
		writeJsonError(w, authResp)
		return
	}

	var req struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJsonError(w, errorInvalidRequest)
		return
	}
	if req.Code == "" {
		writeJsonError(w, errorMissingFields)
		return
	}

	updated, err := a.DbAuth().ConsumeEmailChange(user.ID, req.Code, time.Now())
	if err != nil {
		switch err {
		case db.ErrProofNotFound:
			writeJsonError(w, errorInvalidProof)
		case db.ErrConstraintUnique:
			writeJsonError(w, errorEmailConflict)
		default:
			writeJsonError(w, errorAuthDatabaseError)
		}
		return
	}

	a.recordNotification(updated.ID, db.NotificationEmailChanged, "Your email address is now "+updated.Email+".")

	// The session token was signed with the old email; the client must
	// re-authenticate or refresh.
	writeJsonOk(w, okEmailChanged)
}

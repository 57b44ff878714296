package core

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/tidings-app/tidings/crypto"
	"github.com/tidings-app/tidings/db"
	"github.com/tidings-app/tidings/proof"
	"github.com/tidings-app/tidings/queue"
)

// RequestOtpHandler handles one-time code requests for all five purposes.
// Endpoint: POST /api/request-otp
// Authenticated: No
// Allowed Mimetype: application/json
//
// The purpose is part of the queue payload, so requests for different
// purposes dedup independently. Register for an unknown address creates a
// placeholder account in the job handler; any other purpose for an unknown
// address is absorbed there silently.
func (a *App) RequestOtpHandler(w http.ResponseWriter, r *http.Request) {
	if err, resp := a.Validator().ContentType(r, MimeTypeJSON); err != nil {
		writeJsonError(w, resp)
		return
	}

	var req struct {
		Email   string `json:"email"`
		Purpose string `json:"purpose"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJsonError(w, errorInvalidRequest)
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Purpose == "" {
		writeJsonError(w, errorMissingFields)
		return
	}
	if err := ValidateEmail(req.Email); err != nil {
		writeJsonError(w, errorInvalidRequest)
		return
	}
	if !proof.ValidPurpose(req.Purpose) {
		writeJsonError(w, errorInvalidOtpPurpose)
		return
	}

	cfg := a.Config()
	if a.inCooldown(queue.JobTypeOtp+":"+req.Purpose, req.Email, cfg.RateLimits.OtpCooldown.Duration) {
		writeJsonError(w, errorTooManyRequests)
		return
	}

	payload, _ := json.Marshal(queue.PayloadOtp{
		Email:          req.Email,
		Purpose:        req.Purpose,
		CooldownBucket: queue.CoolDownBucket(cfg.RateLimits.OtpCooldown.Duration, time.Now()),
	})
	err := a.DbQueue().InsertJob(db.Job{
		JobType: queue.JobTypeOtp,
		Payload: payload,
	})
	if err != nil && err != db.ErrConstraintUnique {
		writeJsonError(w, errorServiceUnavailable)
		return
	}

	writeJsonOk(w, okOtpRequested)
}

// ConfirmOtpHandler consumes a one-time code. The stored purpose constrains
// the mutation path: a code issued for one purpose matches zero rows on any
// other path.
// Endpoint: POST /api/confirm-otp
// Authenticated: No
// Allowed Mimetype: application/json
//
// Outcomes per purpose:
//   - login: clears the code and issues a session
//   - verify: clears the code and activates the account
//   - register: requires name and password; completes the account and
//     issues a session
//   - reset, change-password: converts the code into the single-use
//     otp_verified marker, spent by the subsequent change-password call
func (a *App) ConfirmOtpHandler(w http.ResponseWriter, r *http.Request) {
	if err, resp := a.Validator().ContentType(r, MimeTypeJSON); err != nil {
		writeJsonError(w, resp)
		return
	}

	var req struct {
		Email    string `json:"email"`
		Purpose  string `json:"purpose"`
		Code     string `json:"code"`
		Name     string `json:"name"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJsonError(w, errorInvalidRequest)
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Purpose == "" || req.Code == "" {
		writeJsonError(w, errorMissingFields)
		return
	}
	if err := ValidateEmail(req.Email); err != nil {
		writeJsonError(w, errorInvalidRequest)
		return
	}
	if !proof.ValidPurpose(req.Purpose) {
		writeJsonError(w, errorInvalidOtpPurpose)
		return
	}

	now := time.Now()

	switch proof.Purpose(req.Purpose) {
	case proof.PurposeLogin:
		user, err := a.DbAuth().ConsumeOtpLogin(req.Email, req.Code, now)
		if err != nil {
			writeJsonError(w, otpConsumeError(err))
			return
		}
		token, expiresIn, err := a.newSessionToken(user)
		if err != nil {
			writeJsonError(w, errorTokenGeneration)
			return
		}
		a.recordNotification(user.ID, db.NotificationLogin, "New sign-in with one-time code.")
		writeAuthResponse(w, token, expiresIn, user)

	case proof.PurposeVerify:
		if _, err := a.DbAuth().ConsumeOtpVerify(req.Email, req.Code, now); err != nil {
			writeJsonError(w, otpConsumeError(err))
			return
		}
		writeJsonOk(w, okEmailVerified)

	case proof.PurposeRegister:
		req.Password = strings.TrimSpace(req.Password)
		if req.Name == "" || req.Password == "" {
			writeJsonError(w, errorMissingFields)
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
		user, err := a.DbAuth().ConsumeOtpRegister(req.Email, req.Code, req.Name, string(hashedPassword), now)
		if err != nil {
			writeJsonError(w, otpConsumeError(err))
			return
		}
		token, expiresIn, err := a.newSessionToken(user)
		if err != nil {
			writeJsonError(w, errorTokenGeneration)
			return
		}
		a.recordNotification(user.ID, db.NotificationRegistration, "Welcome! Your account is ready.")
		writeAuthResponse(w, token, expiresIn, user)

	case proof.PurposeReset, proof.PurposeChangePassword:
		if _, err := a.DbAuth().MarkOtpVerified(req.Email, req.Code, proof.Purpose(req.Purpose), now); err != nil {
			writeJsonError(w, otpConsumeError(err))
			return
		}
		writeJsonOk(w, okOtpVerified)

	default:
		writeJsonError(w, errorInvalidOtpPurpose)
	}
}

func otpConsumeError(err error) jsonResponse {
	if err == db.ErrProofNotFound {
		return errorInvalidProof
	}
	return errorAuthDatabaseError
}

package core

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/tidings-app/tidings/crypto"
)

// RefreshAuthHandler handles explicit JWT token refresh requests
// Endpoint: POST /api/auth-refresh
// Authenticated: Yes
// Allowed Mimetype: application/json
func (a *App) RefreshAuthHandler(w http.ResponseWriter, r *http.Request) {
	if err, resp := a.Validator().ContentType(r, MimeTypeJSON); err != nil {
		writeJsonError(w, resp)
		return
	}

	user, err, authResp := a.Auth().Authenticate(r)
	if err != nil {
		writeJsonError(w, authResp)
		return
	}

	// Generate new token with fresh expiration from the current record
	newToken, expiresIn, err := a.newSessionToken(user)
	if err != nil {
		a.Logger().Error("failed to generate new token", "error", err)
		writeJsonError(w, errorTokenGeneration)
		return
	}

	writeAuthResponse(w, newToken, expiresIn, user)
}

// RefreshSessionClaimsHandler re-issues the session token with
// caller-supplied identity claims. The caller must hold a valid session;
// the supplied name/email/avatar are copied verbatim into the new claims
// without re-verification. The signing key still derives from the STORED
// credentials, so the token dies with them like any other session.
// Endpoint: POST /api/refresh-session-claims
// Authenticated: Yes
// Allowed Mimetype: application/json
func (a *App) RefreshSessionClaimsHandler(w http.ResponseWriter, r *http.Request) {
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
		Name   string `json:"name"`
		Email  string `json:"email"`
		Avatar string `json:"avatar"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJsonError(w, errorInvalidRequest)
		return
	}

	// Absent fields keep the current claim values.
	name := user.Name
	if req.Name != "" {
		name = req.Name
	}
	email := user.Email
	if strings.TrimSpace(req.Email) != "" {
		if err := ValidateEmail(req.Email); err != nil {
			writeJsonError(w, errorInvalidRequest)
			return
		}
		email = req.Email
	}
	avatar := user.Avatar
	if req.Avatar != "" {
		avatar = req.Avatar
	}

	cfg := a.Config()
	token, _, err := crypto.NewJwtSessionToken(
		user.ID, name, email, avatar,
		user.Email, user.Password,
		cfg.Jwt.AuthSecret, cfg.Jwt.AuthTokenDuration.Duration,
	)
	if err != nil {
		writeJsonError(w, errorTokenGeneration)
		return
	}

	response := JsonWithData{
		JsonBasic: JsonBasic{
			Status:  http.StatusOK,
			Code:    CodeOkSessionClaims,
			Message: "Session claims refreshed",
		},
		Data: AuthData{
			TokenType:   "Bearer",
			AccessToken: token,
			ExpiresIn:   int(cfg.Jwt.AuthTokenDuration.Duration.Seconds()),
			Record: AuthRecord{
				ID:     user.ID,
				Email:  email,
				Name:   name,
				Avatar: avatar,
				Active: user.Active,
			},
		},
	}
	writeJsonWithData(w, response)
}

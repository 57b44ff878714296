package core

import (
	"net/http"

	"github.com/tidings-app/tidings/db"
)

// This file defines the standardized response format for authentication
// endpoints (login, refresh, registration, magic link, OTP login, OAuth2).
//
// Example:
//
//	{
//	  "status": 200,
//	  "code": "ok_authentication",
//	  "message": "Authentication successful",
//	  "data": {
//	    "token_type": "Bearer",
//	    "access_token": "eyJhbGciOiJIUzI...",
//	    "expires_in": 2700,
//	    "record": {
//	      "id": "user123",
//	      "email": "user@example.com",
//	      "name": "John Doe",
//	      "active": true
//	    }
//	  }
//	}
const (
	// oks for non precomputed, dynamic auth responses
	CodeOkAuthentication      = "ok_authentication"
	CodeOkOAuth2ProvidersList = "ok_oauth2_providers_list"
	CodeOkNotificationsList   = "ok_notifications_list"
	CodeOkNotificationsRead   = "ok_notifications_read"
	CodeOkSessionClaims       = "ok_session_claims"
)

// AuthRecord represents the user record in authentication responses
type AuthRecord struct {
	ID     string `json:"id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
	Active bool   `json:"active"`
}

// AuthData represents the authentication response structure
type AuthData struct {
	TokenType   string     `json:"token_type"`
	AccessToken string     `json:"access_token"`
	ExpiresIn   int        `json:"expires_in"`
	Record      AuthRecord `json:"record"`
}

// NewAuthData creates a new AuthData instance
func NewAuthData(token string, expiresIn int, user *db.User) *AuthData {
	return &AuthData{
		TokenType:   "Bearer",
		AccessToken: token,
		ExpiresIn:   expiresIn,
		Record: AuthRecord{
			ID:     user.ID,
			Email:  user.Email,
			Name:   user.Name,
			Avatar: user.Avatar,
			Active: user.Active,
		},
	}
}

// writeAuthResponse writes a standardized authentication response
func writeAuthResponse(w http.ResponseWriter, token string, expiresIn int, user *db.User) {
	writeAuthStatusResponse(w, http.StatusOK, token, expiresIn, user)
}

// writeAuthCreatedResponse answers 201 for flows that created the account in
// the same request.
func writeAuthCreatedResponse(w http.ResponseWriter, token string, expiresIn int, user *db.User) {
	writeAuthStatusResponse(w, http.StatusCreated, token, expiresIn, user)
}

func writeAuthStatusResponse(w http.ResponseWriter, status int, token string, expiresIn int, user *db.User) {
	authData := NewAuthData(token, expiresIn, user)
	response := JsonWithData{
		JsonBasic: JsonBasic{
			Status:  status,
			Code:    CodeOkAuthentication,
			Message: "Authentication successful",
		},
		Data: authData,
	}
	writeJsonWithData(w, response)
}

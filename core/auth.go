package core

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/tidings-app/tidings/config"
	"github.com/tidings-app/tidings/crypto"
	"github.com/tidings-app/tidings/db"
)

// Authenticator defines the interface for authentication operations
type Authenticator interface {
	Authenticate(r *http.Request) (*db.User, error, jsonResponse)
}

// DefaultAuthenticator implements Authenticator using the standard authentication flow
type DefaultAuthenticator struct {
	dbAuth         db.DbAuth
	logger         *slog.Logger
	configProvider *config.Provider
}

// NewDefaultAuthenticator creates a new DefaultAuthenticator instance
func NewDefaultAuthenticator(dbAuth db.DbAuth, logger *slog.Logger, configProvider *config.Provider) *DefaultAuthenticator {
	return &DefaultAuthenticator{
		dbAuth:         dbAuth,
		logger:         logger,
		configProvider: configProvider,
	}
}

// Authenticate resolves the Bearer token of the request to a user record.
// The token claims are inspected unverified first to find the user; the
// signature is then checked against the key derived from the user's stored
// credentials, so a password or email change invalidates the session.
func (a *DefaultAuthenticator) Authenticate(r *http.Request) (*db.User, error, jsonResponse) {
	errAuth := errors.New("auth error")

	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return nil, errAuth, errorNoAuthHeader
	}

	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	if tokenString == authHeader {
		return nil, errAuth, errorInvalidTokenFormat
	}

	// Parse unverified token to get claims
	claims, err := crypto.ParseJwtUnverified(tokenString)
	if err != nil {
		return nil, errAuth, errorJwtInvalidToken
	}

	// Validate session claims before fetching user
	if err := crypto.ValidateSessionClaims(claims); err != nil {
		if err == crypto.ErrJwtTokenExpired {
			return nil, errAuth, errorJwtTokenExpired
		}
		return nil, errAuth, errorJwtInvalidToken
	}

	userID := claims[crypto.ClaimUserID].(string)
	user, err := a.dbAuth.GetUserById(userID)
	if err != nil || user == nil {
		return nil, errAuth, errorJwtInvalidToken
	}

	// The signing key binds to the stored email and password hash, not to
	// whatever the email claim says.
	cfg := a.configProvider.Get()
	signingKey, err := crypto.NewJwtSigningKeyWithCredentials(user.Email, user.Password, []byte(cfg.Jwt.AuthSecret))
	if err != nil {
		return nil, errAuth, errorTokenGeneration
	}

	_, err = crypto.ParseJwt(tokenString, signingKey)
	if err != nil {
		if err == crypto.ErrJwtTokenExpired {
			return nil, errAuth, errorJwtTokenExpired
		}
		if err == crypto.ErrJwtInvalidSigningMethod {
			return nil, errAuth, errorJwtInvalidSignMethod
		}
		return nil, errAuth, errorJwtInvalidToken
	}

	return user, nil, jsonResponse{}
}

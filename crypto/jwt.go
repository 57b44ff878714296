package crypto

import (
	"crypto/hmac"
	"crypto/sha256"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// MinKeyLength is the minimum required length for JWT signing keys.
	// 32 bytes (256 bits) is the minimum recommended length for HMAC-SHA256 keys
	// to provide sufficient security against brute force attacks.
	MinKeyLength = 32

	// JWT claim constants
	ClaimIssuedAt  = "iat"     // JWT Issued At claim key
	ClaimExpiresAt = "exp"     // JWT Expiration Time claim key
	ClaimUserID    = "user_id" // JWT User ID claim key
	ClaimName      = "name"    // JWT display name claim key
	ClaimEmail     = "email"   // JWT email claim key
	ClaimAvatar    = "avatar"  // JWT avatar URL claim key
)

var (
	// ErrJwtTokenExpired is returned when the token has expired
	ErrJwtTokenExpired = errors.New("token expired")
	// ErrJwtInvalidToken is returned when the token is invalid
	ErrJwtInvalidToken = errors.New("invalid token")
	// ErrJwtInvalidSigningMethod is returned when the signing method is not HS256
	ErrJwtInvalidSigningMethod = errors.New("unexpected signing method")
	// ErrJwtInvalidSecretLength is returned for invalid secret lengths
	ErrJwtInvalidSecretLength = errors.New("invalid secret length")
)

// ParseJwt verifies and parses JWT and returns its claims.
// returns a map map[string]any that you can access like any other Go map.
// 		 exp := claims["exp"].(float64)
func ParseJwt(token string, verificationKey []byte) (jwt.MapClaims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{"HS256"}))

	parsedToken, err := parser.Parse(token, func(t *jwt.Token) (any, error) {
		return verificationKey, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrJwtTokenExpired
		}
		if errors.Is(err, jwt.ErrTokenSignatureInvalid) {
			return nil, ErrJwtInvalidSigningMethod
		}
		return nil, fmt.Errorf("%w: %w", ErrJwtInvalidToken, err)
	}

	if claims, ok := parsedToken.Claims.(jwt.MapClaims); ok && parsedToken.Valid {
		return claims, nil
	}

	return nil, ErrJwtInvalidToken
}

// ParseJwtUnverified extracts the claims of a token WITHOUT verifying the
// signature. The caller must verify afterwards with ParseJwt; this exists
// only to read user_id first, since the verification key is derived from the
// user's stored credentials.
func ParseJwtUnverified(tokenString string) (jwt.MapClaims, error) {
	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	_, _, err := parser.ParseUnverified(tokenString, claims)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrJwtInvalidToken, err)
	}
	return claims, nil
}

// NewJwt generates a new JWT token with the provided claims
// payload is jwt.MapClaims which is just map[string]any
// you can just call payload := map[string]any{"user_id": userID}
func NewJwt(payload jwt.MapClaims, signingKey []byte, duration time.Duration) (string, time.Time, error) {
	if len(signingKey) < MinKeyLength {
		return "", time.Time{}, ErrJwtInvalidSecretLength
	}

	// Set standard claims
	now := time.Now()
	expirationTime := now.Add(duration)
	payload[ClaimIssuedAt] = now.Unix()
	payload[ClaimExpiresAt] = expirationTime.Unix()

	// Create and sign the token
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, payload)
	tokenString, err := token.SignedString(signingKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, expirationTime, nil
}

// ValidateSessionClaims checks the claims of an unverified session token
// before any database lookup: the identity claims must be present and the
// token must not be expired. Signature verification happens separately once
// the per-user key is derived.
func ValidateSessionClaims(claims jwt.MapClaims) error {
	userID, ok := claims[ClaimUserID].(string)
	if !ok || userID == "" {
		return ErrJwtInvalidToken
	}
	if _, ok := claims[ClaimEmail].(string); !ok {
		return ErrJwtInvalidToken
	}
	exp, ok := claims[ClaimExpiresAt].(float64)
	if !ok {
		return ErrJwtInvalidToken
	}
	if time.Now().After(time.Unix(int64(exp), 0)) {
		return ErrJwtTokenExpired
	}
	return nil
}

// NewJwtSigningKeyWithCredentials creates a JWT signing key using HMAC-SHA256.
//
// It derives a unique key by combining user-specific data (email, passwordHash)
// with the server secret. Tokens are invalidated when the user's email or
// password changes, or globally by rotating the secret.
//
// Using HMAC prevents length-extension attacks, unlike simple hash concatenation.
// A null byte delimiter between email and passwordHash prevents collisions
// between the two inputs.
//
// passwordHash may be empty for passwordless accounts; the email alone still
// binds the key to the user.
func NewJwtSigningKeyWithCredentials(email, passwordHash string, secret []byte) ([]byte, error) {
	if email == "" {
		return nil, ErrJwtInvalidSecretLength
	}
	if len(secret) < MinKeyLength {
		return nil, ErrJwtInvalidSecretLength
	}

	h := hmac.New(sha256.New, secret)
	h.Write([]byte(email))
	h.Write([]byte{0})
	h.Write([]byte(passwordHash))

	return h.Sum(nil), nil
}

// NewJwtSessionToken issues a session token carrying the user's identity
// claims, signed with the credential-derived key. The signing key binds the
// token to the CURRENT email and password hash; the email claim may carry a
// different value only through the explicit claim-refresh operation.
func NewJwtSessionToken(userID, name, email, avatar, keyEmail, passwordHash, secret string, duration time.Duration) (string, time.Time, error) {
	signingKey, err := NewJwtSigningKeyWithCredentials(keyEmail, passwordHash, []byte(secret))
	if err != nil {
		return "", time.Time{}, err
	}
	claims := jwt.MapClaims{
		ClaimUserID: userID,
		ClaimName:   name,
		ClaimEmail:  email,
		ClaimAvatar: avatar,
	}
	return NewJwt(claims, signingKey, duration)
}

// Package proof defines the five proof-of-identity artifact families and the
// rules shared by all of them: value format, time-to-live, and the
// absent -> issued -> (consumed | expired) lifecycle.
//
// Issuing a proof overwrites any prior proof of the same family on the user
// record. Consuming one is a single conditional update in the store: the
// proof fields are cleared together with the mutation they authorize, and a
// second attempt with the same value matches zero rows.
package proof

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
)

// Kind identifies a proof family. Each family occupies its own columns on
// the user record; families never share state.
type Kind int

const (
	KindVerification Kind = iota // email verification token
	KindPasswordReset            // password reset token
	KindMagicLink                // passwordless login token
	KindOtp                      // one-time passcode
	KindEmailChange              // email change code
)

func (k Kind) String() string {
	switch k {
	case KindVerification:
		return "verification"
	case KindPasswordReset:
		return "password_reset"
	case KindMagicLink:
		return "magic_link"
	case KindOtp:
		return "otp"
	case KindEmailChange:
		return "email_change"
	default:
		return "unknown"
	}
}

// Purpose tags an OTP with the single mutation path it may authorize.
// An OTP issued for one purpose can never complete another purpose's flow.
type Purpose string

const (
	PurposeLogin          Purpose = "login"
	PurposeRegister       Purpose = "register"
	PurposeReset          Purpose = "reset"
	PurposeVerify         Purpose = "verify"
	PurposeChangePassword Purpose = "change-password"
)

// ValidPurpose reports whether s names one of the five OTP purposes.
func ValidPurpose(s string) bool {
	switch Purpose(s) {
	case PurposeLogin, PurposeRegister, PurposeReset, PurposeVerify, PurposeChangePassword:
		return true
	}
	return false
}

const (
	// TTLToken applies to the uuid-valued families: verification,
	// password reset and magic link.
	TTLToken = 24 * time.Hour

	// TTLCode applies to the numeric families: OTP and email change.
	TTLCode = 10 * time.Minute
)

// TTL returns the fixed time-to-live for the family.
func (k Kind) TTL() time.Duration {
	switch k {
	case KindOtp, KindEmailChange:
		return TTLCode
	default:
		return TTLToken
	}
}

// Artifact is an issued proof: a value bound to one user and, for OTPs, one
// purpose. NewEmail is set only for the email change family and names the
// address being proven.
type Artifact struct {
	Kind     Kind
	Value    string
	Expires  time.Time
	Purpose  Purpose
	NewEmail string
}

// Issue generates a fresh artifact for the family with the expiry set
// TTL from now. Token families get a random uuid, code families a 6-digit
// numeric code in 100000-999999.
func Issue(k Kind, now time.Time) (Artifact, error) {
	value, err := newValue(k)
	if err != nil {
		return Artifact{}, err
	}
	return Artifact{
		Kind:    k,
		Value:   value,
		Expires: now.Add(k.TTL()),
	}, nil
}

func newValue(k Kind) (string, error) {
	switch k {
	case KindOtp, KindEmailChange:
		return NumericCode()
	default:
		return uuid.NewString(), nil
	}
}

// NumericCode returns a cryptographically random 6-digit code. The range
// excludes leading zeros so every code is exactly six digits.
func NumericCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("generating random code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

package db

import "time"

// User represents an account record.
// Timestamps (Created and Updated) use RFC3339 format in UTC timezone.
// Example: "2024-03-07T15:04:05Z"
//
// The proof fields below the marker comment hold at most one pending proof
// artifact per family. A value and its expiry are always written and cleared
// together; a consumed proof never leaves a half-populated pair behind.
type User struct {
	ID    string
	Email string
	Name  string
	// Non empty password means password authentication is active.
	// Password can be empty for passwordless accounts (oauth2, otp, magic link).
	Password string
	Avatar   string
	// Active is false from password/OTP registration until email control is
	// proven. OAuth2-created accounts are active immediately: the provider
	// already verified the address.
	Active  bool
	Oauth2  bool
	Created time.Time
	Updated time.Time

	// --- proof sub-state, one family per concern ---

	VerificationToken  string
	VerificationExpiry time.Time

	ResetToken  string
	ResetExpiry time.Time

	MagicToken  string
	MagicExpiry time.Time

	OtpCode    string
	OtpExpiry  time.Time
	OtpPurpose string
	// OtpVerified is the transient marker set by a consumed reset or
	// change-password OTP. It is itself single use: the next password change
	// clears it.
	OtpVerified bool

	PendingEmail      string
	EmailChangeCode   string
	EmailChangeExpiry time.Time
}

// Notification is a side record created on login, registration and email
// change. It is never authoritative for identity state.
type Notification struct {
	ID      int64
	UserID  string
	Kind    string
	Body    string
	Read    bool
	Created time.Time
}

// Notification kinds.
const (
	NotificationLogin        = "login"
	NotificationRegistration = "registration"
	NotificationEmailChanged = "email_changed"
)

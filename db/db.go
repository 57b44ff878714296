package db

import (
	"time"

	"github.com/tidings-app/tidings/proof"
)

// DbAuth covers user records and the proof state machine. Lookup methods
// return (nil, nil) when no record matches; only database failures produce a
// non-nil error.
//
// Every Consume* method is a single conditional update: the row mutates only
// if the proof value still matches and the expiry is in the future. A match
// clears the proof pair atomically with the mutation it authorizes and
// returns the updated user; zero matched rows return ErrProofNotFound
// without distinguishing wrong, consumed or expired.
type DbAuth interface {
	GetUserByEmail(email string) (*User, error)
	GetUserById(id string) (*User, error)

	// CreateUserWithPassword inserts a new inactive account. A duplicate
	// email returns ErrConstraintUnique and writes nothing.
	CreateUserWithPassword(user User) (*User, error)

	// CreateUserPasswordless inserts an inactive placeholder account holding
	// only an email, for OTP-driven registration. Duplicate email returns
	// ErrConstraintUnique.
	CreateUserPasswordless(email string) (*User, error)

	// CreateUserWithOauth2 inserts an active account, or on email conflict
	// flags the existing account as oauth2-enabled. Either way the resolved
	// record is returned.
	CreateUserWithOauth2(user User) (*User, error)

	UpdatePassword(userId string, newPassword string) error

	// SaveProof persists an issued artifact on the user row, overwriting any
	// prior proof of the same family.
	SaveProof(userId string, a proof.Artifact) error

	// ConsumeVerification activates the account and clears the verification
	// pair.
	ConsumeVerification(email, token string, now time.Time) (*User, error)

	// ConsumeMagicLink clears the magic link pair; the caller issues the
	// session.
	ConsumeMagicLink(email, token string, now time.Time) (*User, error)

	// ConsumeResetToken sets the new password hash and clears the reset
	// pair. Reset-by-token and reset-by-OTP are independent paths.
	ConsumeResetToken(email, token, newPassword string, now time.Time) (*User, error)

	// ConsumeOtpLogin clears the OTP for purpose "login".
	ConsumeOtpLogin(email, code string, now time.Time) (*User, error)

	// ConsumeOtpVerify clears the OTP for purpose "verify" and activates the
	// account.
	ConsumeOtpVerify(email, code string, now time.Time) (*User, error)

	// ConsumeOtpRegister completes an OTP registration: sets name and
	// password hash, activates the account and clears the OTP.
	ConsumeOtpRegister(email, code, name, newPassword string, now time.Time) (*User, error)

	// MarkOtpVerified consumes a "reset" or "change-password" OTP into the
	// transient otp_verified marker.
	MarkOtpVerified(email, code string, purpose proof.Purpose, now time.Time) (*User, error)

	// ConsumeOtpMarker spends the otp_verified marker to set a new password
	// hash. Without the marker it matches zero rows.
	ConsumeOtpMarker(email, newPassword string) (*User, error)

	// ConsumeEmailChange promotes pending_email to email and clears the
	// pending fields. A collision with another account's email returns
	// ErrConstraintUnique.
	ConsumeEmailChange(userId, code string, now time.Time) (*User, error)
}

// DbQueue covers the job queue operations used by handlers (insert) and the
// scheduler (claim and settle).
type DbQueue interface {
	InsertJob(job Job) error
	Claim(limit int) ([]*Job, error)
	MarkCompleted(jobID int64) error
	MarkFailed(jobID int64, errMsg string) error
}

// DbNotification covers the notification side records.
type DbNotification interface {
	InsertNotification(n Notification) error
	GetNotificationsByUser(userId string, limit int) ([]Notification, error)
	// MarkAllNotificationsRead flips every unread notification of the user
	// in one statement and reports how many rows changed.
	MarkAllNotificationsRead(userId string) (int64, error)
}

// DbApp is an interface combining the required DB roles for the application.
// The concrete DB implementation (e.g. *zombiezen.Db) must satisfy it.
type DbApp interface {
	DbAuth
	DbQueue
	DbNotification
}

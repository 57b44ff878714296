// Package queue holds the job types, statuses and payload shapes shared by
// the HTTP handlers that enqueue email dispatch and the scheduler that
// executes it.
package queue

import "time"

// Job types, one per proof family.
const (
	JobTypeEmailVerification = "job_type_email_verification"
	JobTypePasswordReset     = "job_type_password_reset"
	JobTypeMagicLink         = "job_type_magic_link"
	JobTypeOtp               = "job_type_otp"
	JobTypeEmailChange       = "job_type_email_change"
)

// Job statuses
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// PayloadEmail is the unique payload of the single-address job types:
// verification, password reset and magic link. The CooldownBucket field
// makes the payload distinct across cooldown windows, so the
// UNIQUE(job_type, payload) index absorbs duplicate requests within one
// window and admits the first request of the next.
type PayloadEmail struct {
	Email          string `json:"email"`
	CooldownBucket int    `json:"cooldown_bucket"`
}

// PayloadOtp additionally carries the OTP purpose: requests for different
// purposes are independent and never share a cooldown.
type PayloadOtp struct {
	Email          string `json:"email"`
	Purpose        string `json:"purpose"`
	CooldownBucket int    `json:"cooldown_bucket"`
}

// PayloadEmailChange carries the target address; the code is dispatched to
// the NEW address, since that is the one whose control must be proven.
type PayloadEmailChange struct {
	UserID         string `json:"user_id"`
	NewEmail       string `json:"new_email"`
	CooldownBucket int    `json:"cooldown_bucket"`
}

// CoolDownBucket returns the number of complete duration periods since the
// Unix epoch. All requests within the same period map to the same bucket,
// which combined with the unique queue index yields one job per window.
// Panics on non-positive duration.
func CoolDownBucket(duration time.Duration, t time.Time) int {
	if duration <= 0 {
		panic("duration must be positive")
	}
	return int(t.Unix() / int64(duration.Seconds()))
}

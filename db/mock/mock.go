package mock

import (
	"time"

	"github.com/tidings-app/tidings/db"
	"github.com/tidings-app/tidings/proof"
)

// Compile-time check to ensure Db implements the DbApp interface
var _ db.DbApp = (*Db)(nil)

// Db implements db.DbApp for testing purposes.
// Use function fields to allow overriding behavior in specific tests.
type Db struct {
	// --- Mock DbAuth Methods ---
	GetUserByEmailFunc         func(email string) (*db.User, error)
	GetUserByIdFunc            func(id string) (*db.User, error)
	CreateUserWithPasswordFunc func(user db.User) (*db.User, error)
	CreateUserPasswordlessFunc func(email string) (*db.User, error)
	CreateUserWithOauth2Func   func(user db.User) (*db.User, error)
	UpdatePasswordFunc         func(userId string, newPassword string) error
	SaveProofFunc              func(userId string, a proof.Artifact) error
	ConsumeVerificationFunc    func(email, token string, now time.Time) (*db.User, error)
	ConsumeMagicLinkFunc       func(email, token string, now time.Time) (*db.User, error)
	ConsumeResetTokenFunc      func(email, token, newPassword string, now time.Time) (*db.User, error)
	ConsumeOtpLoginFunc        func(email, code string, now time.Time) (*db.User, error)
	ConsumeOtpVerifyFunc       func(email, code string, now time.Time) (*db.User, error)
	ConsumeOtpRegisterFunc     func(email, code, name, newPassword string, now time.Time) (*db.User, error)
	MarkOtpVerifiedFunc        func(email, code string, purpose proof.Purpose, now time.Time) (*db.User, error)
	ConsumeOtpMarkerFunc       func(email, newPassword string) (*db.User, error)
	ConsumeEmailChangeFunc     func(userId, code string, now time.Time) (*db.User, error)

	// --- Mock DbQueue Methods ---
	InsertJobFunc     func(job db.Job) error
	ClaimFunc         func(limit int) ([]*db.Job, error)
	MarkCompletedFunc func(jobID int64) error
	MarkFailedFunc    func(jobID int64, errMsg string) error

	// --- Mock DbNotification Methods ---
	InsertNotificationFunc       func(n db.Notification) error
	GetNotificationsByUserFunc   func(userId string, limit int) ([]db.Notification, error)
	MarkAllNotificationsReadFunc func(userId string) (int64, error)
}

// --- Implement DbAuth ---
func (m *Db) GetUserByEmail(email string) (*db.User, error) {
	if m.GetUserByEmailFunc != nil {
		return m.GetUserByEmailFunc(email)
	}
	return nil, nil // Default: Not found
}
func (m *Db) GetUserById(id string) (*db.User, error) {
	if m.GetUserByIdFunc != nil {
		return m.GetUserByIdFunc(id)
	}
	return nil, nil // Default: Not found
}
func (m *Db) CreateUserWithPassword(user db.User) (*db.User, error) {
	if m.CreateUserWithPasswordFunc != nil {
		return m.CreateUserWithPasswordFunc(user)
	}
	user.ID = "mock-pw-user-id"
	return &user, nil
}
func (m *Db) CreateUserPasswordless(email string) (*db.User, error) {
	if m.CreateUserPasswordlessFunc != nil {
		return m.CreateUserPasswordlessFunc(email)
	}
	return &db.User{ID: "mock-placeholder-id", Email: email}, nil
}
func (m *Db) CreateUserWithOauth2(user db.User) (*db.User, error) {
	if m.CreateUserWithOauth2Func != nil {
		return m.CreateUserWithOauth2Func(user)
	}
	user.ID = "mock-oauth-user-id"
	user.Active = true
	user.Oauth2 = true
	return &user, nil
}
func (m *Db) UpdatePassword(userId string, newPassword string) error {
	if m.UpdatePasswordFunc != nil {
		return m.UpdatePasswordFunc(userId, newPassword)
	}
	return nil // Default: Success
}
func (m *Db) SaveProof(userId string, a proof.Artifact) error {
	if m.SaveProofFunc != nil {
		return m.SaveProofFunc(userId, a)
	}
	return nil // Default: Success
}
func (m *Db) ConsumeVerification(email, token string, now time.Time) (*db.User, error) {
	if m.ConsumeVerificationFunc != nil {
		return m.ConsumeVerificationFunc(email, token, now)
	}
	return nil, db.ErrProofNotFound // Default: no matching proof
}
func (m *Db) ConsumeMagicLink(email, token string, now time.Time) (*db.User, error) {
	if m.ConsumeMagicLinkFunc != nil {
		return m.ConsumeMagicLinkFunc(email, token, now)
	}
	return nil, db.ErrProofNotFound
}
func (m *Db) ConsumeResetToken(email, token, newPassword string, now time.Time) (*db.User, error) {
	if m.ConsumeResetTokenFunc != nil {
		return m.ConsumeResetTokenFunc(email, token, newPassword, now)
	}
	return nil, db.ErrProofNotFound
}
func (m *Db) ConsumeOtpLogin(email, code string, now time.Time) (*db.User, error) {
	if m.ConsumeOtpLoginFunc != nil {
		return m.ConsumeOtpLoginFunc(email, code, now)
	}
	return nil, db.ErrProofNotFound
}
func (m *Db) ConsumeOtpVerify(email, code string, now time.Time) (*db.User, error) {
	if m.ConsumeOtpVerifyFunc != nil {
		return m.ConsumeOtpVerifyFunc(email, code, now)
	}
	return nil, db.ErrProofNotFound
}
func (m *Db) ConsumeOtpRegister(email, code, name, newPassword string, now time.Time) (*db.User, error) {
	if m.ConsumeOtpRegisterFunc != nil {
		return m.ConsumeOtpRegisterFunc(email, code, name, newPassword, now)
	}
	return nil, db.ErrProofNotFound
}
func (m *Db) MarkOtpVerified(email, code string, purpose proof.Purpose, now time.Time) (*db.User, error) {
	if m.MarkOtpVerifiedFunc != nil {
		return m.MarkOtpVerifiedFunc(email, code, purpose, now)
	}
	return nil, db.ErrProofNotFound
}
func (m *Db) ConsumeOtpMarker(email, newPassword string) (*db.User, error) {
	if m.ConsumeOtpMarkerFunc != nil {
		return m.ConsumeOtpMarkerFunc(email, newPassword)
	}
	return nil, db.ErrProofNotFound
}
func (m *Db) ConsumeEmailChange(userId, code string, now time.Time) (*db.User, error) {
	if m.ConsumeEmailChangeFunc != nil {
		return m.ConsumeEmailChangeFunc(userId, code, now)
	}
	return nil, db.ErrProofNotFound
}

// --- Implement DbQueue ---
func (m *Db) InsertJob(job db.Job) error {
	if m.InsertJobFunc != nil {
		return m.InsertJobFunc(job)
	}
	return nil // Default: Success
}
func (m *Db) Claim(limit int) ([]*db.Job, error) {
	if m.ClaimFunc != nil {
		return m.ClaimFunc(limit)
	}
	return []*db.Job{}, nil // Default: No jobs claimed
}
func (m *Db) MarkCompleted(jobID int64) error {
	if m.MarkCompletedFunc != nil {
		return m.MarkCompletedFunc(jobID)
	}
	return nil // Default: Success
}
func (m *Db) MarkFailed(jobID int64, errMsg string) error {
	if m.MarkFailedFunc != nil {
		return m.MarkFailedFunc(jobID, errMsg)
	}
	return nil // Default: Success
}

// --- Implement DbNotification ---
func (m *Db) InsertNotification(n db.Notification) error {
	if m.InsertNotificationFunc != nil {
		return m.InsertNotificationFunc(n)
	}
	return nil // Default: Success
}
func (m *Db) GetNotificationsByUser(userId string, limit int) ([]db.Notification, error) {
	if m.GetNotificationsByUserFunc != nil {
		return m.GetNotificationsByUserFunc(userId, limit)
	}
	return []db.Notification{}, nil // Default: none
}
func (m *Db) MarkAllNotificationsRead(userId string) (int64, error) {
	if m.MarkAllNotificationsReadFunc != nil {
		return m.MarkAllNotificationsReadFunc(userId)
	}
	return 0, nil // Default: nothing unread
}

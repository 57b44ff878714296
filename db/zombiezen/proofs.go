package zombiezen

import (
	"context"
	"fmt"
	"time"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/tidings-app/tidings/db"
	"github.com/tidings-app/tidings/proof"
)

// SaveProof writes the artifact onto the user row, overwriting any prior
// proof of the same family. OTP artifacts also reset the otp_verified
// marker; email change artifacts also record the pending address.
func (d *Db) SaveProof(userId string, a proof.Artifact) error {
	conn, err := d.pool.Take(context.TODO())
	if err != nil {
		return fmt.Errorf("failed to get database connection: %w", err)
	}
	defer d.pool.Put(conn)

	var query string
	var args []interface{}
	expiry := db.TimeFormat(a.Expires)

	switch a.Kind {
	case proof.KindVerification:
		query = `UPDATE users SET verification_token = ?, verification_expiry = ?`
		args = []interface{}{a.Value, expiry, userId}
	case proof.KindPasswordReset:
		query = `UPDATE users SET reset_token = ?, reset_expiry = ?`
		args = []interface{}{a.Value, expiry, userId}
	case proof.KindMagicLink:
		query = `UPDATE users SET magic_token = ?, magic_expiry = ?`
		args = []interface{}{a.Value, expiry, userId}
	case proof.KindOtp:
		query = `UPDATE users SET otp_code = ?, otp_expiry = ?, otp_purpose = ?, otp_verified = 0`
		args = []interface{}{a.Value, expiry, string(a.Purpose), userId}
	case proof.KindEmailChange:
		query = `UPDATE users SET email_change_code = ?, email_change_expiry = ?, pending_email = ?`
		args = []interface{}{a.Value, expiry, a.NewEmail, userId}
	default:
		return fmt.Errorf("unknown proof kind %d", a.Kind)
	}

	query += `, updated = (strftime('%Y-%m-%dT%H:%M:%SZ', 'now')) WHERE id = ?`

	changed := false
	err = sqlitex.Execute(conn, query+` RETURNING id`, &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			changed = true
			return nil
		},
		Args: args,
	})
	if err != nil {
		return fmt.Errorf("failed to save proof: %w", err)
	}
	if !changed {
		return db.ErrUserNotFound
	}
	return nil
}

// consumeProof runs a single conditional update and returns the updated
// row. Zero matched rows collapse to db.ErrProofNotFound: a wrong value, an
// already consumed proof and an expired proof are indistinguishable to the
// caller.
func (d *Db) consumeProof(query string, args []interface{}) (*db.User, error) {
	conn, err := d.pool.Take(context.TODO())
	if err != nil {
		return nil, fmt.Errorf("failed to get database connection: %w", err)
	}
	defer d.pool.Put(conn)

	var user *db.User
	err = sqlitex.Execute(conn, query, &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			var err error
			user, err = newUserFromStmt(stmt)
			return err
		},
		Args: args,
	})
	if err != nil {
		if isUniqueErr(err) {
			return nil, db.ErrConstraintUnique
		}
		return nil, err
	}
	if user == nil {
		return nil, db.ErrProofNotFound
	}
	return user, nil
}

// Expiry columns hold RFC3339 UTC text, so "expiry > now" compares
// lexicographically and orders correctly.

func (d *Db) ConsumeVerification(email, token string, now time.Time) (*db.User, error) {
	return d.consumeProof(
		`UPDATE users SET
			active = 1,
			verification_token = '',
			verification_expiry = '',
			updated = (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
		WHERE email = ?
			AND verification_token = ?
			AND verification_token != ''
			AND verification_expiry > ?
		RETURNING `+userColumns,
		[]interface{}{email, token, db.TimeFormat(now)},
	)
}

func (d *Db) ConsumeMagicLink(email, token string, now time.Time) (*db.User, error) {
	return d.consumeProof(
		`UPDATE users SET
			magic_token = '',
			magic_expiry = '',
			updated = (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
		WHERE email = ?
			AND magic_token = ?
			AND magic_token != ''
			AND magic_expiry > ?
		RETURNING `+userColumns,
		[]interface{}{email, token, db.TimeFormat(now)},
	)
}

func (d *Db) ConsumeResetToken(email, token, newPassword string, now time.Time) (*db.User, error) {
	return d.consumeProof(
		`UPDATE users SET
			password = ?,
			reset_token = '',
			reset_expiry = '',
			updated = (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
		WHERE email = ?
			AND reset_token = ?
			AND reset_token != ''
			AND reset_expiry > ?
		RETURNING `+userColumns,
		[]interface{}{newPassword, email, token, db.TimeFormat(now)},
	)
}

func (d *Db) ConsumeOtpLogin(email, code string, now time.Time) (*db.User, error) {
	return d.consumeProof(
		`UPDATE users SET
			otp_code = '',
			otp_expiry = '',
			otp_purpose = '',
			updated = (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
		WHERE email = ?
			AND otp_code = ?
			AND otp_code != ''
			AND otp_purpose = 'login'
			AND otp_expiry > ?
		RETURNING `+userColumns,
		[]interface{}{email, code, db.TimeFormat(now)},
	)
}

func (d *Db) ConsumeOtpVerify(email, code string, now time.Time) (*db.User, error) {
	return d.consumeProof(
		`UPDATE users SET
			active = 1,
			otp_code = '',
			otp_expiry = '',
			otp_purpose = '',
			updated = (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
		WHERE email = ?
			AND otp_code = ?
			AND otp_code != ''
			AND otp_purpose = 'verify'
			AND otp_expiry > ?
		RETURNING `+userColumns,
		[]interface{}{email, code, db.TimeFormat(now)},
	)
}

func (d *Db) ConsumeOtpRegister(email, code, name, newPassword string, now time.Time) (*db.User, error) {
	return d.consumeProof(
		`UPDATE users SET
			name = ?,
			password = ?,
			active = 1,
			otp_code = '',
			otp_expiry = '',
			otp_purpose = '',
			updated = (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
		WHERE email = ?
			AND otp_code = ?
			AND otp_code != ''
			AND otp_purpose = 'register'
			AND otp_expiry > ?
		RETURNING `+userColumns,
		[]interface{}{name, newPassword, email, code, db.TimeFormat(now)},
	)
}

// MarkOtpVerified consumes a "reset" or "change-password" OTP into the
// otp_verified marker. The marker itself carries no expiry: it is spent by
// the next ConsumeOtpMarker call.
func (d *Db) MarkOtpVerified(email, code string, purpose proof.Purpose, now time.Time) (*db.User, error) {
	return d.consumeProof(
		`UPDATE users SET
			otp_verified = 1,
			otp_code = '',
			otp_expiry = '',
			otp_purpose = '',
			updated = (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
		WHERE email = ?
			AND otp_code = ?
			AND otp_code != ''
			AND otp_purpose = ?
			AND otp_expiry > ?
		RETURNING `+userColumns,
		[]interface{}{email, code, string(purpose), db.TimeFormat(now)},
	)
}

func (d *Db) ConsumeOtpMarker(email, newPassword string) (*db.User, error) {
	return d.consumeProof(
		`UPDATE users SET
			password = ?,
			otp_verified = 0,
			updated = (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
		WHERE email = ?
			AND otp_verified = 1
		RETURNING `+userColumns,
		[]interface{}{newPassword, email},
	)
}

// ConsumeEmailChange promotes pending_email to email. The UNIQUE index on
// email turns a collision with another account into db.ErrConstraintUnique,
// leaving the proof pending.
func (d *Db) ConsumeEmailChange(userId, code string, now time.Time) (*db.User, error) {
	return d.consumeProof(
		`UPDATE users SET
			email = pending_email,
			pending_email = '',
			email_change_code = '',
			email_change_expiry = '',
			updated = (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
		WHERE id = ?
			AND email_change_code = ?
			AND email_change_code != ''
			AND pending_email != ''
			AND email_change_expiry > ?
		RETURNING `+userColumns,
		[]interface{}{userId, code, db.TimeFormat(now)},
	)
}

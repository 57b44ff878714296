package zombiezen

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/tidings-app/tidings/db"
)

const userColumns = `id, email, name, password, avatar, active, oauth2, created, updated,
	verification_token, verification_expiry, reset_token, reset_expiry,
	magic_token, magic_expiry, otp_code, otp_expiry, otp_purpose, otp_verified,
	pending_email, email_change_code, email_change_expiry`

// newUserFromStmt creates a User struct from a SQLite statement
func newUserFromStmt(stmt *sqlite.Stmt) (*db.User, error) {
	created, err := db.TimeParse(stmt.GetText("created"))
	if err != nil {
		return nil, fmt.Errorf("error parsing created time: %w", err)
	}

	updated, err := db.TimeParse(stmt.GetText("updated"))
	if err != nil {
		return nil, fmt.Errorf("error parsing updated time: %w", err)
	}

	user := &db.User{
		ID:              stmt.GetText("id"),
		Email:           stmt.GetText("email"),
		Name:            stmt.GetText("name"),
		Password:        stmt.GetText("password"),
		Avatar:          stmt.GetText("avatar"),
		Active:          stmt.GetInt64("active") != 0,
		Oauth2:          stmt.GetInt64("oauth2") != 0,
		Created:         created,
		Updated:         updated,
		VerificationToken: stmt.GetText("verification_token"),
		ResetToken:        stmt.GetText("reset_token"),
		MagicToken:        stmt.GetText("magic_token"),
		OtpCode:           stmt.GetText("otp_code"),
		OtpPurpose:        stmt.GetText("otp_purpose"),
		OtpVerified:       stmt.GetInt64("otp_verified") != 0,
		PendingEmail:      stmt.GetText("pending_email"),
		EmailChangeCode:   stmt.GetText("email_change_code"),
	}

	// expiry columns are '' when no proof of the family is pending
	if s := stmt.GetText("verification_expiry"); s != "" {
		if user.VerificationExpiry, err = db.TimeParse(s); err != nil {
			return nil, fmt.Errorf("error parsing verification_expiry: %w", err)
		}
	}
	if s := stmt.GetText("reset_expiry"); s != "" {
		if user.ResetExpiry, err = db.TimeParse(s); err != nil {
			return nil, fmt.Errorf("error parsing reset_expiry: %w", err)
		}
	}
	if s := stmt.GetText("magic_expiry"); s != "" {
		if user.MagicExpiry, err = db.TimeParse(s); err != nil {
			return nil, fmt.Errorf("error parsing magic_expiry: %w", err)
		}
	}
	if s := stmt.GetText("otp_expiry"); s != "" {
		if user.OtpExpiry, err = db.TimeParse(s); err != nil {
			return nil, fmt.Errorf("error parsing otp_expiry: %w", err)
		}
	}
	if s := stmt.GetText("email_change_expiry"); s != "" {
		if user.EmailChangeExpiry, err = db.TimeParse(s); err != nil {
			return nil, fmt.Errorf("error parsing email_change_expiry: %w", err)
		}
	}

	return user, nil
}

// GetUserByEmail retrieves a user by email address.
// Returns:
// - *db.User: User record if found, nil if no matching record exists
// - error: Only returned for database errors, nil on successful query (even if no results)
// Note: A nil user with nil error indicates no matching record was found
func (d *Db) GetUserByEmail(email string) (*db.User, error) {
	conn, err := d.pool.Take(context.TODO())
	if err != nil {
		return nil, err
	}
	defer d.pool.Put(conn)

	var user *db.User
	err = sqlitex.Execute(conn,
		`SELECT `+userColumns+` FROM users WHERE email = ? LIMIT 1`,
		&sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				var err error
				user, err = newUserFromStmt(stmt)
				return err
			},
			Args: []interface{}{email},
		})

	if err != nil {
		return nil, err
	}

	return user, nil
}

func (d *Db) GetUserById(id string) (*db.User, error) {
	conn, err := d.pool.Take(context.TODO())
	if err != nil {
		return nil, err
	}
	defer d.pool.Put(conn)

	var user *db.User
	err = sqlitex.Execute(conn,
		`SELECT `+userColumns+` FROM users WHERE id = ? LIMIT 1`,
		&sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				var err error
				user, err = newUserFromStmt(stmt)
				return err
			},
			Args: []interface{}{id},
		})

	if err != nil {
		return nil, err
	}

	return user, nil
}

// CreateUserWithPassword inserts a new inactive account. Unlike an upsert,
// a duplicate email is rejected with db.ErrConstraintUnique before any
// mutation, so registration against an existing address performs no write.
func (d *Db) CreateUserWithPassword(user db.User) (*db.User, error) {
	conn, err := d.pool.Take(context.TODO())
	if err != nil {
		return nil, err
	}
	defer d.pool.Put(conn)

	var createdUser *db.User
	err = sqlitex.Execute(conn,
		`INSERT INTO users (id, email, name, password, avatar, active, oauth2)
		VALUES (?, ?, ?, ?, ?, 0, 0)
		RETURNING `+userColumns,
		&sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				var err error
				createdUser, err = newUserFromStmt(stmt)
				return err
			},
			Args: []interface{}{
				uuid.NewString(),
				user.Email,
				user.Name,
				user.Password,
				user.Avatar,
			},
		})

	if err != nil {
		if isUniqueErr(err) {
			return nil, db.ErrConstraintUnique
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return createdUser, nil
}

// CreateUserPasswordless inserts an inactive placeholder holding only an
// email, for OTP-driven registration.
func (d *Db) CreateUserPasswordless(email string) (*db.User, error) {
	return d.CreateUserWithPassword(db.User{Email: email})
}

// CreateUserWithOauth2 inserts an active account. On email conflict the
// existing account is flagged oauth2-enabled instead; either way the
// resolved record is returned. The write converges concurrent first
// sign-ins on a single row without a transaction.
func (d *Db) CreateUserWithOauth2(user db.User) (*db.User, error) {
	conn, err := d.pool.Take(context.TODO())
	if err != nil {
		return nil, err
	}
	defer d.pool.Put(conn)

	var createdUser *db.User
	err = sqlitex.Execute(conn,
		`INSERT INTO users (id, email, name, password, avatar, active, oauth2)
		VALUES (?, ?, ?, '', ?, 1, 1)
		ON CONFLICT(email) DO UPDATE SET
			oauth2 = 1,
			updated = (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
		RETURNING `+userColumns,
		&sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				var err error
				createdUser, err = newUserFromStmt(stmt)
				return err
			},
			Args: []interface{}{
				uuid.NewString(),
				user.Email,
				user.Name,
				user.Avatar,
			},
		})

	if err != nil {
		return nil, fmt.Errorf("failed to create oauth2 user: %w", err)
	}
	return createdUser, nil
}

func (d *Db) UpdatePassword(userId string, newPassword string) error {
	conn, err := d.pool.Take(context.TODO())
	if err != nil {
		return fmt.Errorf("failed to get database connection: %w", err)
	}
	defer d.pool.Put(conn)

	// Any pending reset proof or otp marker dies with the password change.
	err = sqlitex.Execute(conn,
		`UPDATE users
		SET password = ?,
			reset_token = '',
			reset_expiry = '',
			otp_verified = 0,
			updated = (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
		WHERE id = ?`,
		&sqlitex.ExecOptions{
			Args: []interface{}{newPassword, userId},
		})
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	return nil
}

package zombiezen

import (
	"context"
	"errors"
	"io/fs"
	"testing"

	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/tidings-app/tidings/db"
	"github.com/tidings-app/tidings/migrations"
)

// newTestDB creates a new in-memory SQLite database with the full app schema.
func newTestDB(t *testing.T) *Db {
	t.Helper()

	pool, err := sqlitex.NewPool("file::memory:", sqlitex.PoolOptions{
		PoolSize: 1,
	})
	if err != nil {
		t.Fatalf("failed to create db pool: %v", err)
	}

	t.Cleanup(func() {
		if err := pool.Close(); err != nil {
			t.Errorf("failed to close db pool: %v", err)
		}
	})

	conn, err := pool.Take(context.Background())
	if err != nil {
		t.Fatalf("failed to get db connection: %v", err)
	}

	schemaFS := migrations.Schema()
	for _, name := range []string{"app/users.sql", "app/job_queue.sql", "app/notifications.sql"} {
		sqlBytes, err := fs.ReadFile(schemaFS, name)
		if err != nil {
			t.Fatalf("Failed to read %s: %v", name, err)
		}
		if err := sqlitex.ExecuteScript(conn, string(sqlBytes), nil); err != nil {
			t.Fatalf("Failed to execute %s: %v", name, err)
		}
	}
	pool.Put(conn)

	testDB, err := New(pool)
	if err != nil {
		t.Fatalf("failed to create db: %v", err)
	}
	return testDB
}

func TestUserLifecycle(t *testing.T) {
	testDB := newTestDB(t)
	var userPassword, userOauth *db.User
	var err error

	t.Run("CreateWithPassword", func(t *testing.T) {
		userPassword, err = testDB.CreateUserWithPassword(db.User{
			Name:     "Test User",
			Email:    "test@example.com",
			Password: "hash123",
		})
		if err != nil {
			t.Fatalf("CreateUserWithPassword failed: %v", err)
		}
		if userPassword.ID == "" {
			t.Fatal("expected user to have an ID")
		}
		if userPassword.Active {
			t.Error("expected password-created user to be inactive")
		}
		if userPassword.Oauth2 {
			t.Error("expected Oauth2 to be false")
		}
	})

	t.Run("DuplicateEmailRejected", func(t *testing.T) {
		_, err := testDB.CreateUserWithPassword(db.User{
			Name:     "Other User",
			Email:    "test@example.com",
			Password: "otherhash",
		})
		if !errors.Is(err, db.ErrConstraintUnique) {
			t.Fatalf("expected ErrConstraintUnique, got %v", err)
		}

		// the existing record is untouched
		existing, err := testDB.GetUserByEmail("test@example.com")
		if err != nil {
			t.Fatalf("GetUserByEmail failed: %v", err)
		}
		if existing.Name != "Test User" || existing.Password != "hash123" {
			t.Error("duplicate registration mutated the existing record")
		}
	})

	t.Run("CreateWithOauth2", func(t *testing.T) {
		userOauth, err = testDB.CreateUserWithOauth2(db.User{
			Name:  "Oauth User",
			Email: "oauth@example.com",
		})
		if err != nil {
			t.Fatalf("CreateUserWithOauth2 failed: %v", err)
		}
		if !userOauth.Active {
			t.Error("expected oauth2-created user to be active immediately")
		}
		if !userOauth.Oauth2 {
			t.Error("expected Oauth2 to be true")
		}
	})

	t.Run("Oauth2ConvergesOnExistingEmail", func(t *testing.T) {
		merged, err := testDB.CreateUserWithOauth2(db.User{
			Name:  "Whatever",
			Email: "test@example.com",
		})
		if err != nil {
			t.Fatalf("CreateUserWithOauth2 on existing email failed: %v", err)
		}
		if merged.ID != userPassword.ID {
			t.Error("expected oauth2 sign-in to converge on the existing account")
		}
		if !merged.Oauth2 {
			t.Error("expected existing account to be flagged oauth2")
		}
		if merged.Password != "hash123" {
			t.Error("expected existing password to survive oauth2 convergence")
		}
	})

	t.Run("GetUserById", func(t *testing.T) {
		got, err := testDB.GetUserById(userPassword.ID)
		if err != nil {
			t.Fatalf("GetUserById failed: %v", err)
		}
		if got == nil || got.Email != "test@example.com" {
			t.Fatalf("unexpected user: %+v", got)
		}
	})

	t.Run("GetMissingUserIsNilNil", func(t *testing.T) {
		got, err := testDB.GetUserByEmail("nobody@example.com")
		if err != nil {
			t.Fatalf("expected nil error for missing user, got %v", err)
		}
		if got != nil {
			t.Fatalf("expected nil user, got %+v", got)
		}
	})

	t.Run("UpdatePassword", func(t *testing.T) {
		if err := testDB.UpdatePassword(userPassword.ID, "newhash"); err != nil {
			t.Fatalf("UpdatePassword failed: %v", err)
		}
		got, err := testDB.GetUserById(userPassword.ID)
		if err != nil {
			t.Fatalf("GetUserById failed: %v", err)
		}
		if got.Password != "newhash" {
			t.Errorf("expected updated password hash, got %q", got.Password)
		}
	})
}

func TestCreateUserPasswordless(t *testing.T) {
	testDB := newTestDB(t)

	user, err := testDB.CreateUserPasswordless("otp@example.com")
	if err != nil {
		t.Fatalf("CreateUserPasswordless failed: %v", err)
	}
	if user.Password != "" {
		t.Errorf("expected empty password, got %q", user.Password)
	}
	if user.Active {
		t.Error("expected placeholder account to be inactive")
	}

	_, err = testDB.CreateUserPasswordless("otp@example.com")
	if !errors.Is(err, db.ErrConstraintUnique) {
		t.Fatalf("expected ErrConstraintUnique, got %v", err)
	}
}

package core

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/tidings-app/tidings/db"
	"github.com/tidings-app/tidings/db/mock"
)

// TestConfirmEmailVerificationHandler walks the verification lifecycle:
// a matching token succeeds, and a replay, a wrong token, an expired token
// and an unknown address all get the same uniform failure.
func TestConfirmEmailVerificationHandler(t *testing.T) {
	activated := &db.User{ID: "user123", Email: "user@example.com", Active: true}

	t.Run("valid token activates", func(t *testing.T) {
		mockDb := &mock.Db{
			ConsumeVerificationFunc: func(email, token string, now time.Time) (*db.User, error) {
				if email == "user@example.com" && token == "tok-1" {
					return activated, nil
				}
				return nil, db.ErrProofNotFound
			},
		}
		app := newTestApp(mockDb, nil)
		rr := httptest.NewRecorder()
		app.ConfirmEmailVerificationHandler(rr, newJsonRequest("POST", "/api/confirm-email-verification",
			`{"email":"user@example.com","token":"tok-1"}`))
		checkResponse(t, rr, okEmailVerified)
	})

	t.Run("replay on active account is uniform failure", func(t *testing.T) {
		mockDb := &mock.Db{
			ConsumeVerificationFunc: func(email, token string, now time.Time) (*db.User, error) {
				// The token was spent on first use; the conditional update
				// matches zero rows on replay.
				return nil, db.ErrProofNotFound
			},
			GetUserByEmailFunc: func(email string) (*db.User, error) {
				t.Error("confirm must not look up the account on a failed consume")
				return activated, nil
			},
		}
		app := newTestApp(mockDb, nil)
		rr := httptest.NewRecorder()
		app.ConfirmEmailVerificationHandler(rr, newJsonRequest("POST", "/api/confirm-email-verification",
			`{"email":"user@example.com","token":"tok-1"}`))
		checkResponse(t, rr, errorInvalidProof)
	})

	t.Run("wrong expired and absent are one answer", func(t *testing.T) {
		mockDb := &mock.Db{
			ConsumeVerificationFunc: func(email, token string, now time.Time) (*db.User, error) {
				return nil, db.ErrProofNotFound
			},
		}
		app := newTestApp(mockDb, nil)
		rr := httptest.NewRecorder()
		app.ConfirmEmailVerificationHandler(rr, newJsonRequest("POST", "/api/confirm-email-verification",
			`{"email":"ghost@example.com","token":"whatever"}`))
		checkResponse(t, rr, errorInvalidProof)
	})
}

func TestAuthWithMagicLinkHandler(t *testing.T) {
	user := &db.User{ID: "user123", Email: "user@example.com", Active: true}

	t.Run("valid token issues session", func(t *testing.T) {
		mockDb := &mock.Db{
			ConsumeMagicLinkFunc: func(email, token string, now time.Time) (*db.User, error) {
				return user, nil
			},
		}
		app := newTestApp(mockDb, nil)
		rr := httptest.NewRecorder()
		app.AuthWithMagicLinkHandler(rr, newJsonRequest("POST", "/api/auth-with-magic-link",
			`{"email":"user@example.com","token":"tok-1"}`))

		if rr.Code != 200 {
			t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
		}
		var resp struct {
			Data struct {
				AccessToken string `json:"access_token"`
			} `json:"data"`
		}
		if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
			t.Fatal(err)
		}
		if resp.Data.AccessToken == "" {
			t.Error("expected a session token")
		}
	})

	t.Run("consumed token cannot log in twice", func(t *testing.T) {
		mockDb := &mock.Db{
			ConsumeMagicLinkFunc: func(email, token string, now time.Time) (*db.User, error) {
				return nil, db.ErrProofNotFound
			},
		}
		app := newTestApp(mockDb, nil)
		rr := httptest.NewRecorder()
		app.AuthWithMagicLinkHandler(rr, newJsonRequest("POST", "/api/auth-with-magic-link",
			`{"email":"user@example.com","token":"tok-1"}`))
		checkResponse(t, rr, errorInvalidProof)
	})
}

func TestConfirmPasswordResetHandler(t *testing.T) {
	t.Run("valid token sets password", func(t *testing.T) {
		var gotHash string
		mockDb := &mock.Db{
			ConsumeResetTokenFunc: func(email, token, newPassword string, now time.Time) (*db.User, error) {
				gotHash = newPassword
				return &db.User{ID: "user123", Email: email}, nil
			},
		}
		app := newTestApp(mockDb, nil)
		rr := httptest.NewRecorder()
		app.ConfirmPasswordResetHandler(rr, newJsonRequest("POST", "/api/confirm-password-reset",
			`{"email":"user@example.com","token":"tok-1","password":"newpassword1","password_confirm":"newpassword1"}`))
		checkResponse(t, rr, okPasswordReset)
		if gotHash == "" || gotHash == "newpassword1" {
			t.Error("the stored value must be a hash, never the plaintext")
		}
	})

	t.Run("expired token is the uniform failure", func(t *testing.T) {
		mockDb := &mock.Db{
			ConsumeResetTokenFunc: func(email, token, newPassword string, now time.Time) (*db.User, error) {
				return nil, db.ErrProofNotFound
			},
		}
		app := newTestApp(mockDb, nil)
		rr := httptest.NewRecorder()
		app.ConfirmPasswordResetHandler(rr, newJsonRequest("POST", "/api/confirm-password-reset",
			`{"email":"user@example.com","token":"expired","password":"newpassword1"}`))
		checkResponse(t, rr, errorInvalidProof)
	})

	t.Run("short password rejected before consumption", func(t *testing.T) {
		mockDb := &mock.Db{
			ConsumeResetTokenFunc: func(email, token, newPassword string, now time.Time) (*db.User, error) {
				t.Error("must not consume the token for an invalid password")
				return nil, db.ErrProofNotFound
			},
		}
		app := newTestApp(mockDb, nil)
		rr := httptest.NewRecorder()
		app.ConfirmPasswordResetHandler(rr, newJsonRequest("POST", "/api/confirm-password-reset",
			`{"email":"user@example.com","token":"tok-1","password":"short"}`))
		checkResponse(t, rr, errorPasswordComplexity)
	})
}

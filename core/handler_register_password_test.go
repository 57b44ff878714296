package core

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/tidings-app/tidings/db"
	"github.com/tidings-app/tidings/db/mock"
	"github.com/tidings-app/tidings/queue"
)

// TestRegisterWithPasswordHandler_Validation covers the rejection paths
// before any database write: malformed bodies, missing fields, password
// mismatch and complexity.
func TestRegisterWithPasswordHandler_Validation(t *testing.T) {
	testCases := []struct {
		name        string
		requestBody string
		wantError   jsonResponse
	}{
		{
			name:        "malformed json",
			requestBody: `{"email":"test@example.com",`,
			wantError:   errorInvalidRequest,
		},
		{
			name:        "missing email field",
			requestBody: `{"password":"password123", "password_confirm":"password123"}`,
			wantError:   errorMissingFields,
		},
		{
			name:        "missing password field",
			requestBody: `{"email":"test@example.com", "password_confirm":"password123"}`,
			wantError:   errorMissingFields,
		},
		{
			name:        "missing password confirm field",
			requestBody: `{"email":"test@example.com", "password":"password123"}`,
			wantError:   errorMissingFields,
		},
		{
			name:        "invalid email",
			requestBody: `{"email":"not-an-email", "password":"password123", "password_confirm":"password123"}`,
			wantError:   errorInvalidRequest,
		},
		{
			name:        "password mismatch",
			requestBody: `{"email":"test@example.com", "password":"password123", "password_confirm":"password456"}`,
			wantError:   errorPasswordMismatch,
		},
		{
			name:        "password complexity failure",
			requestBody: `{"email":"test@example.com", "password":"short", "password_confirm":"short"}`,
			wantError:   errorPasswordComplexity,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			app := newTestApp(&mock.Db{}, nil)
			req := newJsonRequest("POST", "/api/register-with-password", tc.requestBody)
			rr := httptest.NewRecorder()

			app.RegisterWithPasswordHandler(rr, req)
			checkResponse(t, rr, tc.wantError)
		})
	}
}

// TestRegisterWithPasswordHandler_Success checks the happy path: the
// account is created inactive, a verification job is enqueued, and the
// response carries a session token.
func TestRegisterWithPasswordHandler_Success(t *testing.T) {
	var insertedJob *db.Job
	mockDb := &mock.Db{
		CreateUserWithPasswordFunc: func(user db.User) (*db.User, error) {
			if user.Active {
				t.Error("new account must start inactive")
			}
			user.ID = "user123"
			return &user, nil
		},
		InsertJobFunc: func(job db.Job) error {
			insertedJob = &job
			return nil
		},
	}
	app := newTestApp(mockDb, nil)

	req := newJsonRequest("POST", "/api/register-with-password",
		`{"email":"new@example.com", "name":"New", "password":"password123", "password_confirm":"password123"}`)
	rr := httptest.NewRecorder()

	app.RegisterWithPasswordHandler(rr, req)

	if rr.Code != 201 {
		t.Fatalf("expected status 201, got %d: %s", rr.Code, rr.Body.String())
	}

	if insertedJob == nil {
		t.Fatal("expected a verification job to be enqueued")
	}
	if insertedJob.JobType != queue.JobTypeEmailVerification {
		t.Errorf("unexpected job type %q", insertedJob.JobType)
	}
	var payload queue.PayloadEmail
	if err := json.Unmarshal(insertedJob.Payload, &payload); err != nil {
		t.Fatalf("invalid job payload: %v", err)
	}
	if payload.Email != "new@example.com" {
		t.Errorf("job payload email = %q", payload.Email)
	}

	var resp struct {
		Code string `json:"code"`
		Data struct {
			AccessToken string `json:"access_token"`
			Record      struct {
				ID     string `json:"id"`
				Active bool   `json:"active"`
			} `json:"record"`
		} `json:"data"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Code != CodeOkAuthentication {
		t.Errorf("expected code %q, got %q", CodeOkAuthentication, resp.Code)
	}
	if resp.Data.AccessToken == "" {
		t.Error("expected a session token in the response")
	}
	if resp.Data.Record.Active {
		t.Error("record must report an inactive account")
	}
}

// TestRegisterWithPasswordHandler_Conflict checks that a duplicate email is
// a 409 and no session is issued.
func TestRegisterWithPasswordHandler_Conflict(t *testing.T) {
	mockDb := &mock.Db{
		CreateUserWithPasswordFunc: func(user db.User) (*db.User, error) {
			return nil, db.ErrConstraintUnique
		},
		InsertJobFunc: func(job db.Job) error {
			t.Error("no job must be enqueued on conflict")
			return nil
		},
	}
	app := newTestApp(mockDb, nil)

	req := newJsonRequest("POST", "/api/register-with-password",
		`{"email":"taken@example.com", "password":"password123", "password_confirm":"password123"}`)
	rr := httptest.NewRecorder()

	app.RegisterWithPasswordHandler(rr, req)
	checkResponse(t, rr, errorEmailConflict)
}

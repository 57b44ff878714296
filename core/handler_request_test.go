package core

import (
	"net/http/httptest"
	"testing"

	"github.com/tidings-app/tidings/db"
	"github.com/tidings-app/tidings/db/mock"
)

// TestRequestHandlers_EnumerationUniformity sends each proof request twice,
// once for an existing account and once for an unknown address, and
// requires byte-identical response bodies.
func TestRequestHandlers_EnumerationUniformity(t *testing.T) {
	existing := &db.User{ID: "user123", Email: "known@example.com", Active: false}

	handlers := []struct {
		name string
		call func(app *App, rr *httptest.ResponseRecorder, email string)
	}{
		{
			name: "request-email-verification",
			call: func(app *App, rr *httptest.ResponseRecorder, email string) {
				app.RequestEmailVerificationHandler(rr, newJsonRequest("POST", "/api/request-email-verification",
					`{"email":"`+email+`"}`))
			},
		},
		{
			name: "request-password-reset",
			call: func(app *App, rr *httptest.ResponseRecorder, email string) {
				app.RequestPasswordResetHandler(rr, newJsonRequest("POST", "/api/request-password-reset",
					`{"email":"`+email+`"}`))
			},
		},
		{
			name: "request-magic-link",
			call: func(app *App, rr *httptest.ResponseRecorder, email string) {
				app.RequestMagicLinkHandler(rr, newJsonRequest("POST", "/api/request-magic-link",
					`{"email":"`+email+`"}`))
			},
		},
		{
			name: "request-otp",
			call: func(app *App, rr *httptest.ResponseRecorder, email string) {
				app.RequestOtpHandler(rr, newJsonRequest("POST", "/api/request-otp",
					`{"email":"`+email+`","purpose":"login"}`))
			},
		},
	}

	for _, h := range handlers {
		t.Run(h.name, func(t *testing.T) {
			mockDb := &mock.Db{
				GetUserByEmailFunc: func(email string) (*db.User, error) {
					if email == existing.Email {
						return existing, nil
					}
					return nil, nil
				},
			}

			// Fresh app per address so the cooldown cache does not couple the
			// two calls.
			rrKnown := httptest.NewRecorder()
			h.call(newTestApp(mockDb, nil), rrKnown, "known@example.com")

			rrUnknown := httptest.NewRecorder()
			h.call(newTestApp(mockDb, nil), rrUnknown, "ghost@example.com")

			if rrKnown.Code != rrUnknown.Code {
				t.Errorf("status differs: known=%d unknown=%d", rrKnown.Code, rrUnknown.Code)
			}
			if rrKnown.Body.String() != rrUnknown.Body.String() {
				t.Errorf("body differs:\nknown:   %s\nunknown: %s", rrKnown.Body.String(), rrUnknown.Body.String())
			}
		})
	}
}

// TestRequestHandlers_Cooldown checks the in-process cooldown: the second
// request through the same app inside the window is answered 429 without a
// queue write.
func TestRequestHandlers_Cooldown(t *testing.T) {
	inserts := 0
	mockDb := &mock.Db{
		InsertJobFunc: func(j db.Job) error { inserts++; return nil },
	}
	app := newTestApp(mockDb, nil)

	rr := httptest.NewRecorder()
	app.RequestPasswordResetHandler(rr, newJsonRequest("POST", "/api/request-password-reset",
		`{"email":"user@example.com"}`))
	checkResponse(t, rr, okPasswordResetRequested)

	rr = httptest.NewRecorder()
	app.RequestPasswordResetHandler(rr, newJsonRequest("POST", "/api/request-password-reset",
		`{"email":"user@example.com"}`))
	checkResponse(t, rr, errorTooManyRequests)

	if inserts != 1 {
		t.Errorf("expected exactly one queue insert, got %d", inserts)
	}
}

// TestRequestHandlers_QueueDedup checks the durable guard: a duplicate
// payload violation from the queue is absorbed into the accepted response.
func TestRequestHandlers_QueueDedup(t *testing.T) {
	mockDb := &mock.Db{
		InsertJobFunc: func(j db.Job) error { return db.ErrConstraintUnique },
	}
	app := newTestApp(mockDb, nil)

	rr := httptest.NewRecorder()
	app.RequestEmailVerificationHandler(rr, newJsonRequest("POST", "/api/request-email-verification",
		`{"email":"user@example.com"}`))
	checkResponse(t, rr, okVerificationRequested)
}

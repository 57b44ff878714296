package handlers

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/tidings-app/tidings/config"
	"github.com/tidings-app/tidings/db"
	"github.com/tidings-app/tidings/db/mock"
	"github.com/tidings-app/tidings/proof"
)

// recordingMailer captures outgoing mail for inspection.
type recordingMailer struct {
	to      string
	link    string
	code    string
	purpose string
	sends   int
}

func (m *recordingMailer) SendVerificationEmail(ctx context.Context, email, confirmURL string) error {
	m.to, m.link = email, confirmURL
	m.sends++
	return nil
}
func (m *recordingMailer) SendPasswordResetEmail(ctx context.Context, email, resetURL string) error {
	m.to, m.link = email, resetURL
	m.sends++
	return nil
}
func (m *recordingMailer) SendMagicLinkEmail(ctx context.Context, email, loginURL string) error {
	m.to, m.link = email, loginURL
	m.sends++
	return nil
}
func (m *recordingMailer) SendOtpEmail(ctx context.Context, email, purpose, code string) error {
	m.to, m.purpose, m.code = email, purpose, code
	m.sends++
	return nil
}
func (m *recordingMailer) SendEmailChangeEmail(ctx context.Context, newEmail, code string) error {
	m.to, m.code = newEmail, code
	m.sends++
	return nil
}

func testConfigProvider() *config.Provider {
	cfg := config.NewDefaultConfig()
	cfg.Server.BaseURL = "https://tidings.example.com"
	return config.NewProvider(cfg)
}

func TestEmailVerificationHandler(t *testing.T) {
	user := &db.User{ID: "u1", Email: "a@example.com"}
	var saved proof.Artifact

	mockDB := &mock.Db{
		GetUserByEmailFunc: func(email string) (*db.User, error) { return user, nil },
		SaveProofFunc: func(userId string, a proof.Artifact) error {
			saved = a
			return nil
		},
	}
	mailer := &recordingMailer{}
	h := NewEmailVerificationHandler(mockDB, testConfigProvider(), mailer)

	payload, _ := json.Marshal(map[string]any{"email": "a@example.com"})
	if err := h.Handle(context.Background(), payload); err != nil {
		t.Fatalf("Handle() failed: %v", err)
	}

	if saved.Kind != proof.KindVerification {
		t.Errorf("saved proof kind = %v, want verification", saved.Kind)
	}
	if mailer.to != "a@example.com" {
		t.Errorf("mail sent to %q", mailer.to)
	}
	if !strings.Contains(mailer.link, saved.Value) {
		t.Errorf("confirm link %q does not carry the token", mailer.link)
	}
	if !strings.HasPrefix(mailer.link, "https://tidings.example.com/confirm-email-verification") {
		t.Errorf("unexpected confirm link %q", mailer.link)
	}
}

func TestEmailVerificationHandlerSkipsActiveAndUnknown(t *testing.T) {
	testCases := []struct {
		name string
		user *db.User
	}{
		{"UnknownEmail", nil},
		{"AlreadyActive", &db.User{ID: "u1", Email: "a@example.com", Active: true}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mailer := &recordingMailer{}
			h := NewEmailVerificationHandler(&mock.Db{
				GetUserByEmailFunc: func(email string) (*db.User, error) { return tc.user, nil },
			}, testConfigProvider(), mailer)

			payload, _ := json.Marshal(map[string]any{"email": "a@example.com"})
			if err := h.Handle(context.Background(), payload); err != nil {
				t.Fatalf("Handle() failed: %v", err)
			}
			if mailer.sends != 0 {
				t.Error("expected no mail to be sent")
			}
		})
	}
}

func TestPasswordResetHandler(t *testing.T) {
	user := &db.User{ID: "u1", Email: "a@example.com"}
	var saved proof.Artifact
	mailer := &recordingMailer{}

	h := NewPasswordResetHandler(&mock.Db{
		GetUserByEmailFunc: func(email string) (*db.User, error) { return user, nil },
		SaveProofFunc: func(userId string, a proof.Artifact) error {
			saved = a
			return nil
		},
	}, testConfigProvider(), mailer)

	payload, _ := json.Marshal(map[string]any{"email": "a@example.com"})
	if err := h.Handle(context.Background(), payload); err != nil {
		t.Fatalf("Handle() failed: %v", err)
	}
	if saved.Kind != proof.KindPasswordReset {
		t.Errorf("saved proof kind = %v, want password reset", saved.Kind)
	}
	if !strings.Contains(mailer.link, saved.Value) {
		t.Errorf("reset link %q does not carry the token", mailer.link)
	}
}

func TestMagicLinkHandler(t *testing.T) {
	user := &db.User{ID: "u1", Email: "a@example.com"}
	var saved proof.Artifact
	mailer := &recordingMailer{}

	h := NewMagicLinkHandler(&mock.Db{
		GetUserByEmailFunc: func(email string) (*db.User, error) { return user, nil },
		SaveProofFunc: func(userId string, a proof.Artifact) error {
			saved = a
			return nil
		},
	}, testConfigProvider(), mailer)

	payload, _ := json.Marshal(map[string]any{"email": "a@example.com"})
	if err := h.Handle(context.Background(), payload); err != nil {
		t.Fatalf("Handle() failed: %v", err)
	}
	if saved.Kind != proof.KindMagicLink {
		t.Errorf("saved proof kind = %v, want magic link", saved.Kind)
	}
	if mailer.sends != 1 {
		t.Errorf("expected one send, got %d", mailer.sends)
	}
}

func TestOtpHandlerRegisterCreatesPlaceholder(t *testing.T) {
	created := false
	var saved proof.Artifact
	mailer := &recordingMailer{}

	h := NewOtpHandler(&mock.Db{
		GetUserByEmailFunc: func(email string) (*db.User, error) { return nil, nil },
		CreateUserPasswordlessFunc: func(email string) (*db.User, error) {
			created = true
			return &db.User{ID: "u-new", Email: email}, nil
		},
		SaveProofFunc: func(userId string, a proof.Artifact) error {
			saved = a
			return nil
		},
	}, mailer)

	payload, _ := json.Marshal(map[string]any{"email": "new@example.com", "purpose": "register"})
	if err := h.Handle(context.Background(), payload); err != nil {
		t.Fatalf("Handle() failed: %v", err)
	}
	if !created {
		t.Error("expected placeholder account to be created")
	}
	if saved.Purpose != proof.PurposeRegister {
		t.Errorf("saved purpose = %q, want register", saved.Purpose)
	}
	if mailer.code != saved.Value || len(mailer.code) != 6 {
		t.Errorf("mailed code %q does not match saved %q", mailer.code, saved.Value)
	}
}

func TestOtpHandlerUnknownUserNonRegister(t *testing.T) {
	mailer := &recordingMailer{}
	h := NewOtpHandler(&mock.Db{
		GetUserByEmailFunc: func(email string) (*db.User, error) { return nil, nil },
	}, mailer)

	payload, _ := json.Marshal(map[string]any{"email": "ghost@example.com", "purpose": "login"})
	if err := h.Handle(context.Background(), payload); err != nil {
		t.Fatalf("Handle() failed: %v", err)
	}
	if mailer.sends != 0 {
		t.Error("expected no mail for unknown address")
	}
}

func TestEmailChangeHandlerSendsToNewAddress(t *testing.T) {
	user := &db.User{ID: "u1", Email: "old@example.com"}
	var saved proof.Artifact
	mailer := &recordingMailer{}

	h := NewEmailChangeHandler(&mock.Db{
		GetUserByIdFunc:    func(id string) (*db.User, error) { return user, nil },
		GetUserByEmailFunc: func(email string) (*db.User, error) { return nil, nil },
		SaveProofFunc: func(userId string, a proof.Artifact) error {
			saved = a
			return nil
		},
	}, mailer)

	payload, _ := json.Marshal(map[string]any{"user_id": "u1", "new_email": "new@example.com"})
	if err := h.Handle(context.Background(), payload); err != nil {
		t.Fatalf("Handle() failed: %v", err)
	}
	if mailer.to != "new@example.com" {
		t.Errorf("code sent to %q, want the new address", mailer.to)
	}
	if saved.NewEmail != "new@example.com" {
		t.Errorf("saved NewEmail = %q", saved.NewEmail)
	}
}

func TestEmailChangeHandlerAbsorbsTakenAddress(t *testing.T) {
	mailer := &recordingMailer{}
	h := NewEmailChangeHandler(&mock.Db{
		GetUserByIdFunc: func(id string) (*db.User, error) {
			return &db.User{ID: "u1", Email: "old@example.com"}, nil
		},
		GetUserByEmailFunc: func(email string) (*db.User, error) {
			return &db.User{ID: "u2", Email: email}, nil
		},
	}, mailer)

	payload, _ := json.Marshal(map[string]any{"user_id": "u1", "new_email": "taken@example.com"})
	if err := h.Handle(context.Background(), payload); err != nil {
		t.Fatalf("Handle() failed: %v", err)
	}
	if mailer.sends != 0 {
		t.Error("expected no mail for taken address")
	}
}

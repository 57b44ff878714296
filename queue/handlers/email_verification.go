// Package handlers contains the queue job handlers that issue proof
// artifacts and dispatch them by email. Issuing happens here, at send time:
// the HTTP request only enqueues, so a failed send retries with a fresh
// proof and the request path never blocks on SMTP.
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/tidings-app/tidings/config"
	"github.com/tidings-app/tidings/db"
	"github.com/tidings-app/tidings/mail"
	"github.com/tidings-app/tidings/proof"
	"github.com/tidings-app/tidings/queue"
)

// EmailVerificationHandler issues a verification token and mails the
// confirmation link.
type EmailVerificationHandler struct {
	dbAuth         db.DbAuth
	configProvider *config.Provider
	mailer         mail.MailerInterface
}

func NewEmailVerificationHandler(dbAuth db.DbAuth, provider *config.Provider, mailer mail.MailerInterface) *EmailVerificationHandler {
	return &EmailVerificationHandler{
		dbAuth:         dbAuth,
		configProvider: provider,
		mailer:         mailer,
	}
}

// Handle implements the JobHandler interface. Unknown or already active
// addresses complete silently; the request path has already answered with
// the uniform accepted response.
func (h *EmailVerificationHandler) Handle(ctx context.Context, payload []byte) error {
	cfg := h.configProvider.Get()

	var p queue.PayloadEmail
	if err := json.Unmarshal(payload, &p); err != nil {
		return fmt.Errorf("failed to parse email verification payload: %w", err)
	}

	user, err := h.dbAuth.GetUserByEmail(p.Email)
	if err != nil {
		return fmt.Errorf("failed to get user by email: %w", err)
	}
	if user == nil || user.Active {
		return nil
	}

	artifact, err := proof.Issue(proof.KindVerification, time.Now())
	if err != nil {
		return fmt.Errorf("failed to issue verification token: %w", err)
	}
	if err := h.dbAuth.SaveProof(user.ID, artifact); err != nil {
		return fmt.Errorf("failed to save verification token: %w", err)
	}

	confirmURL := fmt.Sprintf("%s/confirm-email-verification?email=%s&token=%s",
		cfg.Server.BaseURL,
		url.QueryEscape(user.Email),
		url.QueryEscape(artifact.Value))

	if err := h.mailer.SendVerificationEmail(ctx, user.Email, confirmURL); err != nil {
		return fmt.Errorf("failed to send verification email: %w", err)
	}
	return nil
}

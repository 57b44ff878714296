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

// PasswordResetHandler issues a reset token and mails the reset link.
type PasswordResetHandler struct {
	dbAuth         db.DbAuth
	configProvider *config.Provider
	mailer         mail.MailerInterface
}

func NewPasswordResetHandler(dbAuth db.DbAuth, provider *config.Provider, mailer mail.MailerInterface) *PasswordResetHandler {
	return &PasswordResetHandler{
		dbAuth:         dbAuth,
		configProvider: provider,
		mailer:         mailer,
	}
}

// Handle implements the JobHandler interface.
func (h *PasswordResetHandler) Handle(ctx context.Context, payload []byte) error {
	cfg := h.configProvider.Get()

	var p queue.PayloadEmail
	if err := json.Unmarshal(payload, &p); err != nil {
		return fmt.Errorf("failed to parse password reset payload: %w", err)
	}

	user, err := h.dbAuth.GetUserByEmail(p.Email)
	if err != nil {
		return fmt.Errorf("failed to get user by email: %w", err)
	}
	if user == nil {
		return nil
	}

	artifact, err := proof.Issue(proof.KindPasswordReset, time.Now())
	if err != nil {
		return fmt.Errorf("failed to issue reset token: %w", err)
	}
	if err := h.dbAuth.SaveProof(user.ID, artifact); err != nil {
		return fmt.Errorf("failed to save reset token: %w", err)
	}

	resetURL := fmt.Sprintf("%s/confirm-password-reset?email=%s&token=%s",
		cfg.Server.BaseURL,
		url.QueryEscape(user.Email),
		url.QueryEscape(artifact.Value))

	if err := h.mailer.SendPasswordResetEmail(ctx, user.Email, resetURL); err != nil {
		return fmt.Errorf("failed to send password reset email: %w", err)
	}
	return nil
}

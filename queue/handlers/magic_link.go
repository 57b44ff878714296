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

// MagicLinkHandler issues a magic link token and mails the sign-in link.
type MagicLinkHandler struct {
	dbAuth         db.DbAuth
	configProvider *config.Provider
	mailer         mail.MailerInterface
}

func NewMagicLinkHandler(dbAuth db.DbAuth, provider *config.Provider, mailer mail.MailerInterface) *MagicLinkHandler {
	return &MagicLinkHandler{
		dbAuth:         dbAuth,
		configProvider: provider,
		mailer:         mailer,
	}
}

// Handle implements the JobHandler interface.
func (h *MagicLinkHandler) Handle(ctx context.Context, payload []byte) error {
	cfg := h.configProvider.Get()

	var p queue.PayloadEmail
	if err := json.Unmarshal(payload, &p); err != nil {
		return fmt.Errorf("failed to parse magic link payload: %w", err)
	}

	user, err := h.dbAuth.GetUserByEmail(p.Email)
	if err != nil {
		return fmt.Errorf("failed to get user by email: %w", err)
	}
	if user == nil {
		return nil
	}

	artifact, err := proof.Issue(proof.KindMagicLink, time.Now())
	if err != nil {
		return fmt.Errorf("failed to issue magic link token: %w", err)
	}
	if err := h.dbAuth.SaveProof(user.ID, artifact); err != nil {
		return fmt.Errorf("failed to save magic link token: %w", err)
	}

	loginURL := fmt.Sprintf("%s/auth-with-magic-link?email=%s&token=%s",
		cfg.Server.BaseURL,
		url.QueryEscape(user.Email),
		url.QueryEscape(artifact.Value))

	if err := h.mailer.SendMagicLinkEmail(ctx, user.Email, loginURL); err != nil {
		return fmt.Errorf("failed to send magic link email: %w", err)
	}
	return nil
}

package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/tidings-app/tidings/db"
	"github.com/tidings-app/tidings/mail"
	"github.com/tidings-app/tidings/proof"
	"github.com/tidings-app/tidings/queue"
)

// EmailChangeHandler issues an email-change code and mails it to the NEW
// address, the one whose control must be proven.
type EmailChangeHandler struct {
	dbAuth db.DbAuth
	mailer mail.MailerInterface
}

func NewEmailChangeHandler(dbAuth db.DbAuth, mailer mail.MailerInterface) *EmailChangeHandler {
	return &EmailChangeHandler{
		dbAuth: dbAuth,
		mailer: mailer,
	}
}

// Handle implements the JobHandler interface. A target address already in
// use absorbs the job silently; the confirm step re-checks under the UNIQUE
// index either way.
func (h *EmailChangeHandler) Handle(ctx context.Context, payload []byte) error {
	var p queue.PayloadEmailChange
	if err := json.Unmarshal(payload, &p); err != nil {
		return fmt.Errorf("failed to parse email change payload: %w", err)
	}

	user, err := h.dbAuth.GetUserById(p.UserID)
	if err != nil {
		return fmt.Errorf("failed to get user by id: %w", err)
	}
	if user == nil {
		return nil
	}

	taken, err := h.dbAuth.GetUserByEmail(p.NewEmail)
	if err != nil {
		return fmt.Errorf("failed to check target address: %w", err)
	}
	if taken != nil {
		return nil
	}

	artifact, err := proof.Issue(proof.KindEmailChange, time.Now())
	if err != nil {
		return fmt.Errorf("failed to issue email change code: %w", err)
	}
	artifact.NewEmail = p.NewEmail

	if err := h.dbAuth.SaveProof(user.ID, artifact); err != nil {
		return fmt.Errorf("failed to save email change code: %w", err)
	}

	if err := h.mailer.SendEmailChangeEmail(ctx, p.NewEmail, artifact.Value); err != nil {
		return fmt.Errorf("failed to send email change code: %w", err)
	}
	return nil
}

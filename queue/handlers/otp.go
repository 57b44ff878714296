package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/tidings-app/tidings/db"
	"github.com/tidings-app/tidings/mail"
	"github.com/tidings-app/tidings/proof"
	"github.com/tidings-app/tidings/queue"
)

// OtpHandler issues a purpose-tagged one-time code and mails it. For the
// register purpose an inactive placeholder account is created on first
// request; every other purpose requires an existing account and completes
// silently otherwise.
type OtpHandler struct {
	dbAuth db.DbAuth
	mailer mail.MailerInterface
}

func NewOtpHandler(dbAuth db.DbAuth, mailer mail.MailerInterface) *OtpHandler {
	return &OtpHandler{
		dbAuth: dbAuth,
		mailer: mailer,
	}
}

// Handle implements the JobHandler interface.
func (h *OtpHandler) Handle(ctx context.Context, payload []byte) error {
	var p queue.PayloadOtp
	if err := json.Unmarshal(payload, &p); err != nil {
		return fmt.Errorf("failed to parse otp payload: %w", err)
	}
	if !proof.ValidPurpose(p.Purpose) {
		return fmt.Errorf("invalid otp purpose %q", p.Purpose)
	}

	user, err := h.dbAuth.GetUserByEmail(p.Email)
	if err != nil {
		return fmt.Errorf("failed to get user by email: %w", err)
	}

	if user == nil {
		if proof.Purpose(p.Purpose) != proof.PurposeRegister {
			return nil
		}
		user, err = h.dbAuth.CreateUserPasswordless(p.Email)
		if errors.Is(err, db.ErrConstraintUnique) {
			// concurrent registration won the insert
			user, err = h.dbAuth.GetUserByEmail(p.Email)
		}
		if err != nil {
			return fmt.Errorf("failed to create placeholder account: %w", err)
		}
		if user == nil {
			return fmt.Errorf("placeholder account vanished for %s", p.Email)
		}
	}

	artifact, err := proof.Issue(proof.KindOtp, time.Now())
	if err != nil {
		return fmt.Errorf("failed to issue otp: %w", err)
	}
	artifact.Purpose = proof.Purpose(p.Purpose)

	if err := h.dbAuth.SaveProof(user.ID, artifact); err != nil {
		return fmt.Errorf("failed to save otp: %w", err)
	}

	if err := h.mailer.SendOtpEmail(ctx, user.Email, p.Purpose, artifact.Value); err != nil {
		return fmt.Errorf("failed to send otp email: %w", err)
	}
	return nil
}

// Package mail sends the proof-of-identity emails over SMTP. Every message
// carries exactly one proof artifact; the mailer never reads or writes
// account state.
package mail

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/smtp"

	"github.com/domodwyer/mailyak/v3"

	"github.com/tidings-app/tidings/config"
)

// MailerInterface is what the queue handlers depend on; tests substitute a
// recording implementation.
type MailerInterface interface {
	SendVerificationEmail(ctx context.Context, email, confirmURL string) error
	SendPasswordResetEmail(ctx context.Context, email, resetURL string) error
	SendMagicLinkEmail(ctx context.Context, email, loginURL string) error
	SendOtpEmail(ctx context.Context, email, purpose, code string) error
	SendEmailChangeEmail(ctx context.Context, newEmail, code string) error
}

var _ MailerInterface = (*Mailer)(nil)

// Mailer handles sending emails
type Mailer struct {
	host        string
	port        int
	username    string
	password    string
	fromName    string
	fromAddress string
	useTLS      bool
}

// New creates a new Mailer from the SMTP configuration.
func New(cfg config.Smtp) *Mailer {
	return &Mailer{
		host:        cfg.Host,
		port:        cfg.Port,
		username:    cfg.Username,
		password:    cfg.Password,
		fromName:    cfg.FromName,
		fromAddress: cfg.FromAddress,
		useTLS:      cfg.UseTLS,
	}
}

func (m *Mailer) newMail() (*mailyak.MailYak, error) {
	addr := fmt.Sprintf("%s:%d", m.host, m.port)
	auth := smtp.PlainAuth("", m.username, m.password, m.host)

	if m.useTLS {
		return mailyak.NewWithTLS(addr, auth, &tls.Config{ServerName: m.host})
	}
	return mailyak.New(addr, auth), nil
}

// send builds and dispatches a message, honoring context cancellation.
// mailyak has no context support, so the send runs in its own goroutine.
func (m *Mailer) send(ctx context.Context, to, subject, htmlBody string) error {
	mail, err := m.newMail()
	if err != nil {
		return fmt.Errorf("failed to create mail client: %w", err)
	}

	mail.To(to)
	mail.From(m.fromAddress)
	mail.FromName(m.fromName)
	mail.Subject(subject)
	mail.HTML().Set(htmlBody)

	done := make(chan error, 1)
	go func() {
		done <- mail.Send()
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		if err != nil {
			return fmt.Errorf("failed to send email to %s: %w", to, err)
		}
	}
	return nil
}

// SendVerificationEmail sends the email verification link.
func (m *Mailer) SendVerificationEmail(ctx context.Context, email, confirmURL string) error {
	body := fmt.Sprintf(`
		<h1>Verify your email</h1>
		<p>Click the link below to verify your email address. The link expires in 24 hours.</p>
		<p><a href="%s">Verify Email</a></p>
		<p>If you did not create an account, you can ignore this message.</p>
	`, confirmURL)
	return m.send(ctx, email, "Verify your email", body)
}

// SendPasswordResetEmail sends the password reset link.
func (m *Mailer) SendPasswordResetEmail(ctx context.Context, email, resetURL string) error {
	body := fmt.Sprintf(`
		<h1>Reset your password</h1>
		<p>Click the link below to choose a new password. The link expires in 24 hours.</p>
		<p><a href="%s">Reset Password</a></p>
		<p>If you did not request a reset, you can ignore this message.</p>
	`, resetURL)
	return m.send(ctx, email, "Reset your password", body)
}

// SendMagicLinkEmail sends the passwordless sign-in link.
func (m *Mailer) SendMagicLinkEmail(ctx context.Context, email, loginURL string) error {
	body := fmt.Sprintf(`
		<h1>Sign in</h1>
		<p>Click the link below to sign in. The link expires in 24 hours.</p>
		<p><a href="%s">Sign In</a></p>
		<p>If you did not request this link, you can ignore this message.</p>
	`, loginURL)
	return m.send(ctx, email, "Your sign-in link", body)
}

// SendOtpEmail sends a one-time passcode. The purpose appears in the message
// so a user can spot a code they never asked for.
func (m *Mailer) SendOtpEmail(ctx context.Context, email, purpose, code string) error {
	body := fmt.Sprintf(`
		<h1>Your one-time code</h1>
		<p>Use this code to continue (%s):</p>
		<h2>%s</h2>
		<p>The code expires in 10 minutes.</p>
	`, purpose, code)
	return m.send(ctx, email, "Your one-time code", body)
}

// SendEmailChangeEmail sends the confirmation code to the NEW address, since
// that is the address whose control must be proven.
func (m *Mailer) SendEmailChangeEmail(ctx context.Context, newEmail, code string) error {
	body := fmt.Sprintf(`
		<h1>Confirm your new email address</h1>
		<p>Use this code to confirm the change:</p>
		<h2>%s</h2>
		<p>The code expires in 10 minutes. If you did not request this change, you can ignore this message.</p>
	`, code)
	return m.send(ctx, newEmail, "Confirm your new email address", body)
}

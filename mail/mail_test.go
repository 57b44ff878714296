package mail

import (
	"context"
	"testing"
	"time"

	"github.com/tidings-app/tidings/config"
)

func TestNewFromConfig(t *testing.T) {
	m := New(config.Smtp{
		Host:        "smtp.example.com",
		Port:        587,
		Username:    "user",
		Password:    "pass",
		FromName:    "Tidings",
		FromAddress: "noreply@example.com",
	})
	if m.host != "smtp.example.com" || m.port != 587 {
		t.Errorf("unexpected server fields: %s:%d", m.host, m.port)
	}
	if m.fromAddress != "noreply@example.com" {
		t.Errorf("fromAddress = %q", m.fromAddress)
	}
}

func TestSendHonorsContextCancellation(t *testing.T) {
	// 192.0.2.0/24 is TEST-NET, guaranteed unreachable; the canceled context
	// must win before any dial timeout.
	m := New(config.Smtp{
		Host:        "192.0.2.1",
		Port:        25,
		FromAddress: "noreply@example.com",
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	err := m.SendOtpEmail(ctx, "a@example.com", "login", "123456")
	if err == nil {
		t.Fatal("expected error from canceled context")
	}
	if time.Since(start) > 2*time.Second {
		t.Error("cancellation took too long")
	}
}

package config

import (
	"log/slog"
	"time"

	"github.com/tidings-app/tidings/crypto"
)

// NewDefaultConfig creates a new Config with sensible defaults.
// All secret values are randomly generated.
func NewDefaultConfig() *Config {
	return &Config{
		DBFile: "tidings.db",
		Jwt: Jwt{
			AuthSecret:        crypto.RandomString(32, crypto.AlphanumericAlphabet),
			AuthTokenDuration: Duration{Duration: 45 * time.Minute},
		},
		Server: Server{
			Addr:                    ":8080",
			BaseURL:                 "http://localhost:8080",
			ShutdownGracefulTimeout: Duration{Duration: 15 * time.Second},
			ReadTimeout:             Duration{Duration: 2 * time.Second},
			ReadHeaderTimeout:       Duration{Duration: 2 * time.Second},
			WriteTimeout:            Duration{Duration: 3 * time.Second},
			IdleTimeout:             Duration{Duration: 1 * time.Minute},
		},
		Scheduler: Scheduler{
			Interval:              Duration{Duration: 60 * time.Second},
			MaxJobsPerTick:        10,
			ConcurrencyMultiplier: 2,
			JobTimeout:            Duration{Duration: 30 * time.Second},
		},
		RateLimits: RateLimits{
			EmailVerificationCooldown: Duration{Duration: 1 * time.Hour},
			PasswordResetCooldown:     Duration{Duration: 2 * time.Hour},
			MagicLinkCooldown:         Duration{Duration: 5 * time.Minute},
			OtpCooldown:               Duration{Duration: 2 * time.Minute},
			EmailChangeCooldown:       Duration{Duration: 1 * time.Hour},
		},
		Smtp: Smtp{
			Enabled:     false,
			Host:        "smtp.gmail.com",
			Port:        587,
			FromName:    "Tidings",
			FromAddress: "",
			AuthMethod:  "plain",
			UseTLS:      false,
			UseStartTLS: true,
			Username:    "",
			Password:    "",
		},
		OAuth2Providers: map[string]OAuth2Provider{
			OAuth2ProviderGoogle: {
				Name:            OAuth2ProviderGoogle,
				DisplayName:     "Google",
				RedirectURL:     "",
				RedirectURLPath: "/oauth2/google/callback",
				AuthURL:         "https://accounts.google.com/o/oauth2/v2/auth",
				TokenURL:        "https://oauth2.googleapis.com/token",
				UserInfoURL:     "https://www.googleapis.com/oauth2/v3/userinfo",
				Scopes:          []string{"https://www.googleapis.com/auth/userinfo.profile", "https://www.googleapis.com/auth/userinfo.email"},
				PKCE:            true,
				ClientID:        "",
				ClientSecret:    "",
			},
			OAuth2ProviderGitHub: {
				Name:            OAuth2ProviderGitHub,
				DisplayName:     "GitHub",
				RedirectURL:     "",
				RedirectURLPath: "/oauth2/github/callback",
				AuthURL:         "https://github.com/login/oauth/authorize",
				TokenURL:        "https://github.com/login/oauth/access_token",
				UserInfoURL:     "https://api.github.com/user",
				Scopes:          []string{"read:user", "user:email"},
				PKCE:            false,
				ClientID:        "",
				ClientSecret:    "",
			},
		},
		Log: Log{
			Batch: BatchLogger{
				FlushSize:     100,
				ChanSize:      1000,
				FlushInterval: Duration{Duration: 5 * time.Second},
				Level:         LogLevel{Level: slog.LevelInfo},
				DbPath:        "logs.db",
			},
		},
		Cache: Cache{
			MaxItems: 10_000,
		},
		Endpoints: Endpoints{
			RegisterWithPassword:     "POST /api/register-with-password",
			AuthWithPassword:         "POST /api/auth-with-password",
			AuthRefresh:              "POST /api/auth-refresh",
			RefreshSessionClaims:     "POST /api/refresh-session-claims",
			RequestEmailVerification: "POST /api/request-email-verification",
			ConfirmEmailVerification: "POST /api/confirm-email-verification",
			RequestPasswordReset:     "POST /api/request-password-reset",
			ConfirmPasswordReset:     "POST /api/confirm-password-reset",
			RequestMagicLink:         "POST /api/request-magic-link",
			AuthWithMagicLink:        "POST /api/auth-with-magic-link",
			RequestOtp:               "POST /api/request-otp",
			ConfirmOtp:               "POST /api/confirm-otp",
			ChangePassword:           "POST /api/change-password",
			AuthWithOAuth2:           "POST /api/auth-with-oauth2",
			ListOAuth2Providers:      "GET /api/list-oauth2-providers",
			RequestEmailChange:       "POST /api/request-email-change",
			ConfirmEmailChange:       "POST /api/confirm-email-change",
			ListNotifications:        "GET /api/notifications",
			MarkNotificationsRead:    "POST /api/notifications/mark-all-read",
		},
	}
}

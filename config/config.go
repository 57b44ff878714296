package config

import (
	"fmt"
	"log/slog"
	"time"
)

const (
	EnvGoogleClientID     = "OAUTH2_GOOGLE_CLIENT_ID"
	EnvGoogleClientSecret = "OAUTH2_GOOGLE_CLIENT_SECRET"
	EnvGithubClientID     = "OAUTH2_GITHUB_CLIENT_ID"
	EnvGithubClientSecret = "OAUTH2_GITHUB_CLIENT_SECRET"
	EnvSmtpUsername       = "SMTP_USERNAME"
	EnvSmtpPassword       = "SMTP_PASSWORD"
)

const (
	OAuth2ProviderGoogle = "google"
	OAuth2ProviderGitHub = "github"
)

// Duration wraps time.Duration for TOML text (de)serialization, e.g. "45m".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	d.Duration = parsed
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// LogLevel wraps slog.Level for TOML text (de)serialization, e.g. "INFO".
type LogLevel struct {
	slog.Level
}

func (l *LogLevel) UnmarshalText(text []byte) error {
	return l.Level.UnmarshalText(text)
}

func (l LogLevel) MarshalText() ([]byte, error) {
	return l.Level.MarshalText()
}

type Jwt struct {
	// AuthSecret seeds the per-user signing keys. 32+ characters.
	AuthSecret        string   `toml:"auth_secret"`
	AuthTokenDuration Duration `toml:"auth_token_duration"`
}

type Server struct {
	Addr                    string   `toml:"addr"`
	BaseURL                 string   `toml:"base_url"`
	ShutdownGracefulTimeout Duration `toml:"shutdown_graceful_timeout"`
	ReadTimeout             Duration `toml:"read_timeout"`
	ReadHeaderTimeout       Duration `toml:"read_header_timeout"`
	WriteTimeout            Duration `toml:"write_timeout"`
	IdleTimeout             Duration `toml:"idle_timeout"`
}

type Scheduler struct {
	Interval              Duration `toml:"interval"`
	MaxJobsPerTick        int      `toml:"max_jobs_per_tick"`
	ConcurrencyMultiplier int      `toml:"concurrency_multiplier"`
	JobTimeout            Duration `toml:"job_timeout"`
}

// RateLimits holds the cooldown windows for email dispatch. A second request
// for the same address inside a window is absorbed as a duplicate.
type RateLimits struct {
	EmailVerificationCooldown Duration `toml:"email_verification_cooldown"`
	PasswordResetCooldown     Duration `toml:"password_reset_cooldown"`
	MagicLinkCooldown         Duration `toml:"magic_link_cooldown"`
	OtpCooldown               Duration `toml:"otp_cooldown"`
	EmailChangeCooldown       Duration `toml:"email_change_cooldown"`
}

type Smtp struct {
	Enabled     bool   `toml:"enabled"`
	Host        string `toml:"host"`
	Port        int    `toml:"port"`
	FromName    string `toml:"from_name"`
	FromAddress string `toml:"from_address"`
	AuthMethod  string `toml:"auth_method"`
	UseTLS      bool   `toml:"use_tls"`
	UseStartTLS bool   `toml:"use_start_tls"`
	Username    string `toml:"username"`
	Password    string `toml:"password"`
}

type OAuth2Provider struct {
	Name            string   `toml:"name"`
	DisplayName     string   `toml:"display_name"`
	RedirectURL     string   `toml:"redirect_url"`
	RedirectURLPath string   `toml:"redirect_url_path"`
	AuthURL         string   `toml:"auth_url"`
	TokenURL        string   `toml:"token_url"`
	UserInfoURL     string   `toml:"user_info_url"`
	Scopes          []string `toml:"scopes"`
	PKCE            bool     `toml:"pkce"`
	ClientID        string   `toml:"client_id"`
	ClientSecret    string   `toml:"client_secret"`
}

type BatchLogger struct {
	FlushSize     int      `toml:"flush_size"`
	ChanSize      int      `toml:"chan_size"`
	FlushInterval Duration `toml:"flush_interval"`
	Level         LogLevel `toml:"level"`
	DbPath        string   `toml:"db_path"`
}

type Log struct {
	Batch BatchLogger `toml:"batch"`
}

type Cache struct {
	MaxItems int64 `toml:"max_items"`
}

// Endpoints maps every route to its "METHOD /path" string so handlers and
// precomputed responses can reference routes by name.
type Endpoints struct {
	RegisterWithPassword     string `toml:"register_with_password"`
	AuthWithPassword         string `toml:"auth_with_password"`
	AuthRefresh              string `toml:"auth_refresh"`
	RefreshSessionClaims     string `toml:"refresh_session_claims"`
	RequestEmailVerification string `toml:"request_email_verification"`
	ConfirmEmailVerification string `toml:"confirm_email_verification"`
	RequestPasswordReset     string `toml:"request_password_reset"`
	ConfirmPasswordReset     string `toml:"confirm_password_reset"`
	RequestMagicLink         string `toml:"request_magic_link"`
	AuthWithMagicLink        string `toml:"auth_with_magic_link"`
	RequestOtp               string `toml:"request_otp"`
	ConfirmOtp               string `toml:"confirm_otp"`
	ChangePassword           string `toml:"change_password"`
	AuthWithOAuth2           string `toml:"auth_with_oauth2"`
	ListOAuth2Providers      string `toml:"list_oauth2_providers"`
	RequestEmailChange       string `toml:"request_email_change"`
	ConfirmEmailChange       string `toml:"confirm_email_change"`
	ListNotifications        string `toml:"list_notifications"`
	MarkNotificationsRead    string `toml:"mark_notifications_read"`
}

type Config struct {
	DBFile          string                    `toml:"db_file"`
	Jwt             Jwt                       `toml:"jwt"`
	Server          Server                    `toml:"server"`
	Scheduler       Scheduler                 `toml:"scheduler"`
	RateLimits      RateLimits                `toml:"rate_limits"`
	Smtp            Smtp                      `toml:"smtp"`
	OAuth2Providers map[string]OAuth2Provider `toml:"oauth2_providers"`
	Log             Log                       `toml:"log"`
	Cache           Cache                     `toml:"cache"`
	Endpoints       Endpoints                 `toml:"endpoints"`
}

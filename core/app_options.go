package core

import (
	"fmt"
	"log/slog"

	"github.com/tidings-app/tidings/cache"
	"github.com/tidings-app/tidings/config"
	"github.com/tidings-app/tidings/db"
	"github.com/tidings-app/tidings/mail"
	"github.com/tidings-app/tidings/router"
)

type Option func(*App)

// WithCache sets the cache implementation
func WithCache(c cache.Cache[string, interface{}]) Option {
	return func(a *App) {
		a.cache = c
	}
}

// WithDbApp sets the database implementation for every role the app needs.
func WithDbApp(d db.DbApp) Option {
	return func(a *App) {
		a.SetDb(d)
	}
}

// WithRouter sets the router implementation
func WithRouter(r router.Router) Option {
	return func(a *App) {
		a.router = r
	}
}

// WithConfigProvider sets the application's configuration provider.
func WithConfigProvider(p *config.Provider) Option {
	return func(a *App) {
		a.configProvider = p
	}
}

// WithLogger sets the logger implementation
func WithLogger(l *slog.Logger) Option {
	return func(a *App) {
		a.logger = l
	}
}

// WithMailer sets the mailer used by the queue job handlers.
func WithMailer(m mail.MailerInterface) Option {
	return func(a *App) {
		a.mailer = m
	}
}

// WithAuthenticator overrides the default request authenticator.
func WithAuthenticator(auth Authenticator) Option {
	return func(a *App) {
		a.authenticator = auth
	}
}

// WithValidator overrides the default request validator.
func WithValidator(v Validator) Option {
	return func(a *App) {
		a.validator = v
	}
}

// NewApp builds an App from the given options. Database, router, logger and
// config provider are required; authenticator and validator fall back to the
// defaults when not set.
func NewApp(opts ...Option) (*App, error) {
	a := &App{}
	for _, opt := range opts {
		opt(a)
	}

	if a.configProvider == nil {
		return nil, fmt.Errorf("config provider is required (use WithConfigProvider)")
	}
	if a.dbAuth == nil || a.dbQueue == nil || a.dbNotification == nil {
		return nil, fmt.Errorf("database is required (use WithDbApp)")
	}
	if a.router == nil {
		return nil, fmt.Errorf("router is required (use WithRouter)")
	}
	if a.logger == nil {
		return nil, fmt.Errorf("logger is required (use WithLogger)")
	}

	if a.authenticator == nil {
		a.authenticator = NewDefaultAuthenticator(a.dbAuth, a.logger, a.configProvider)
	}
	if a.validator == nil {
		a.validator = NewValidator()
	}

	return a, nil
}

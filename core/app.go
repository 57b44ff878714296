package core

import (
	"log/slog"

	"github.com/tidings-app/tidings/cache"
	"github.com/tidings-app/tidings/config"
	"github.com/tidings-app/tidings/db"
	"github.com/tidings-app/tidings/mail"
	"github.com/tidings-app/tidings/router"
)

// App is the application wide context.
// db connections and permanent structs go here.
//
// All handlers and middleware have App as receiver.
type App struct {
	dbAuth         db.DbAuth
	dbQueue        db.DbQueue
	dbNotification db.DbNotification
	router         router.Router
	cache          cache.Cache[string, interface{}]
	configProvider *config.Provider
	logger         *slog.Logger
	mailer         mail.MailerInterface
	authenticator  Authenticator
	validator      Validator
}

// Router returns the application's router instance
func (a *App) Router() router.Router {
	return a.router
}

func (a *App) SetRouter(r router.Router) {
	a.router = r
}

func (a *App) DbAuth() db.DbAuth {
	return a.dbAuth
}

func (a *App) DbQueue() db.DbQueue {
	return a.dbQueue
}

func (a *App) DbNotification() db.DbNotification {
	return a.dbNotification
}

// SetDb sets the database interfaces for auth, queue and notifications
func (a *App) SetDb(dbApp db.DbApp) {
	if dbApp == nil {
		panic("DbApp cannot be nil")
	}
	a.dbAuth = dbApp
	a.dbQueue = dbApp
	a.dbNotification = dbApp
}

func (a *App) Logger() *slog.Logger {
	return a.logger
}

func (a *App) SetLogger(l *slog.Logger) {
	a.logger = l
}

func (a *App) SetCache(c cache.Cache[string, interface{}]) {
	a.cache = c
}

func (a *App) Cache() cache.Cache[string, interface{}] {
	return a.cache
}

func (a *App) Config() *config.Config {
	return a.configProvider.Get()
}

func (a *App) ConfigProvider() *config.Provider {
	return a.configProvider
}

func (a *App) SetConfigProvider(provider *config.Provider) {
	a.configProvider = provider
}

func (a *App) Mailer() mail.MailerInterface {
	return a.mailer
}

func (a *App) SetMailer(m mail.MailerInterface) {
	a.mailer = m
}

// SetAuthenticator sets the authenticator implementation
func (a *App) SetAuthenticator(auth Authenticator) {
	a.authenticator = auth
}

func (a *App) Auth() Authenticator {
	return a.authenticator
}

// SetValidator sets the validator implementation
func (a *App) SetValidator(v Validator) {
	a.validator = v
}

// Validator returns the validator instance
func (a *App) Validator() Validator {
	return a.validator
}

package tidings

import (
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/tidings-app/tidings/config"
	"github.com/tidings-app/tidings/core"
	"github.com/tidings-app/tidings/db/zombiezen"
	applog "github.com/tidings-app/tidings/log"
	"github.com/tidings-app/tidings/mail"
	"github.com/tidings-app/tidings/migrations"
	"github.com/tidings-app/tidings/queue"
	"github.com/tidings-app/tidings/queue/executor"
	"github.com/tidings-app/tidings/queue/handlers"
	scl "github.com/tidings-app/tidings/queue/scheduler"
	"github.com/tidings-app/tidings/server"
)

// New assembles the application and its server from a TOML config file and
// the provided options. Background daemons (job scheduler, batch log daemon)
// are started before returning; the returned server owns their shutdown.
func New(configPath string, opts ...core.Option) (*core.App, *server.Server, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	configProvider := config.NewProvider(cfg)

	allOpts := []core.Option{core.WithConfigProvider(configProvider)}
	allOpts = append(allOpts, opts...)

	app, err := core.NewApp(allOpts...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize app: %w", err)
	}

	if app.Mailer() == nil && cfg.Smtp.Enabled {
		app.SetMailer(mail.New(cfg.Smtp))
	}

	route(cfg, app)

	daemons := []server.Daemon{}

	if cfg.Log.Batch.DbPath != "" {
		logDaemon, err := setupLogDaemon(configProvider, app)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to setup log daemon: %w", err)
		}
		daemons = append(daemons, logDaemon)
	}

	scheduler := setupScheduler(configProvider, app)
	scheduler.Start()
	daemons = append(daemons, scheduler)

	srv := server.NewServer(cfg.Server, app.Router(), app.Logger(), daemons...)

	return app, srv, nil
}

// setupScheduler wires the queue job handlers into an executor. Mail-backed
// handlers are only registered when a mailer is configured.
func setupScheduler(configProvider *config.Provider, app *core.App) *scl.Scheduler {
	hdls := make(map[string]executor.JobHandler)

	if mailer := app.Mailer(); mailer != nil {
		hdls[queue.JobTypeEmailVerification] = handlers.NewEmailVerificationHandler(app.DbAuth(), configProvider, mailer)
		hdls[queue.JobTypePasswordReset] = handlers.NewPasswordResetHandler(app.DbAuth(), configProvider, mailer)
		hdls[queue.JobTypeMagicLink] = handlers.NewMagicLinkHandler(app.DbAuth(), configProvider, mailer)
		hdls[queue.JobTypeOtp] = handlers.NewOtpHandler(app.DbAuth(), mailer)
		hdls[queue.JobTypeEmailChange] = handlers.NewEmailChangeHandler(app.DbAuth(), mailer)
	}

	return scl.NewScheduler(configProvider, app.DbQueue(), executor.NewExecutor(hdls), app.Logger())
}

// setupLogDaemon opens the side log database, starts the flush daemon and
// replaces the app logger with the batching handler. The previous logger
// keeps serving as the daemon's own operational logger.
func setupLogDaemon(configProvider *config.Provider, app *core.App) (*applog.Daemon, error) {
	dbPath := configProvider.Get().Log.Batch.DbPath

	logSchema, err := fs.Sub(migrations.Schema(), "log")
	if err != nil {
		return nil, err
	}
	conn, err := zombiezen.NewConn(dbPath)
	if err != nil {
		return nil, err
	}
	err = zombiezen.ApplyMigrations(conn, logSchema)
	conn.Close()
	if err != nil {
		return nil, err
	}

	store, err := zombiezen.NewLog(dbPath)
	if err != nil {
		return nil, err
	}

	logDaemon, err := applog.NewDaemon(configProvider, app.Logger(), store)
	if err != nil {
		return nil, err
	}
	if err := logDaemon.Start(); err != nil {
		return nil, err
	}

	recordChan, daemonCtx := logDaemon.Chan()
	app.SetLogger(slog.New(applog.NewBatchHandler(configProvider, recordChan, daemonCtx)))

	return logDaemon, nil
}

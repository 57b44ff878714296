// Package server runs the HTTP listener and the background daemons and
// coordinates their graceful shutdown.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/tidings-app/tidings/config"
)

// Daemon is a background component with the scheduler/log-daemon lifecycle.
type Daemon interface {
	Name() string
	Stop(ctx context.Context) error
}

type Server struct {
	cfg     config.Server
	handler http.Handler
	daemons []Daemon
	logger  *slog.Logger

	// exitFunc is os.Exit outside of tests.
	exitFunc func(code int)
}

func NewServer(cfg config.Server, handler http.Handler, logger *slog.Logger, daemons ...Daemon) *Server {
	return &Server{
		cfg:      cfg,
		handler:  handler,
		daemons:  daemons,
		logger:   logger,
		exitFunc: os.Exit,
	}
}

// Run serves until a termination signal or a listener error, then shuts the
// HTTP server and every daemon down within the configured graceful timeout.
// Daemons must already be started; Run only owns their stop.
func (s *Server) Run() {

	s.logger.Info("Server configuration",
		"addr", s.cfg.Addr,
		"read_timeout", s.cfg.ReadTimeout.Duration,
		"read_header_timeout", s.cfg.ReadHeaderTimeout.Duration,
		"write_timeout", s.cfg.WriteTimeout.Duration,
		"idle_timeout", s.cfg.IdleTimeout.Duration,
		"shutdown_timeout", s.cfg.ShutdownGracefulTimeout.Duration,
	)

	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.handler,
		ReadTimeout:       s.cfg.ReadTimeout.Duration,
		ReadHeaderTimeout: s.cfg.ReadHeaderTimeout.Duration,
		WriteTimeout:      s.cfg.WriteTimeout.Duration,
		IdleTimeout:       s.cfg.IdleTimeout.Duration,
	}

	serverError := make(chan error, 1)
	go func() {
		s.logger.Info("Starting HTTP server", "addr", s.cfg.Addr)
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			s.logger.Error("ListenAndServe error", "err", err)
			serverError <- err
		}
	}()

	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGHUP,
		syscall.SIGINT,
		syscall.SIGQUIT,
	)

	select {
	case <-ctx.Done():
		s.logger.Info("Received shutdown signal - gracefully shutting down")
	case err := <-serverError:
		s.logger.Error("Server error - initiating shutdown", "err", err)
	}

	// Restore default signal behavior so a second signal kills immediately.
	stop()

	gracefulCtx, cancelShutdown := context.WithTimeout(context.Background(), s.cfg.ShutdownGracefulTimeout.Duration)
	defer cancelShutdown()

	shutdownGroup, _ := errgroup.WithContext(gracefulCtx)

	shutdownGroup.Go(func() error {
		s.logger.Info("Shutting down HTTP server")
		if err := srv.Shutdown(gracefulCtx); err != nil {
			s.logger.Error("HTTP server shutdown error", "err", err)
			return err
		}
		s.logger.Info("HTTP server stopped gracefully")
		return nil
	})

	for _, d := range s.daemons {
		d := d
		shutdownGroup.Go(func() error {
			s.logger.Info("Shutting down daemon", "daemon", d.Name())
			if err := d.Stop(gracefulCtx); err != nil {
				s.logger.Error("Daemon shutdown error", "daemon", d.Name(), "err", err)
				return err
			}
			s.logger.Info("Daemon stopped gracefully", "daemon", d.Name())
			return nil
		})
	}

	if err := shutdownGroup.Wait(); err != nil {
		s.logger.Error("Error during shutdown", "err", err)
		s.exitFunc(1)
		return
	}

	s.logger.Info("All systems stopped gracefully")
	s.exitFunc(0)
}

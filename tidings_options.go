package tidings

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/tidings-app/tidings/cache/ristretto"
	"github.com/tidings-app/tidings/core"
	"github.com/tidings-app/tidings/db/zombiezen"
	"github.com/tidings-app/tidings/migrations"
	"github.com/tidings-app/tidings/router/httprouter"
	"github.com/tidings-app/tidings/router/servemux"
	phuslog "github.com/phuslu/log"
)

// WithDbZombiezen opens a zombiezen sqlite pool on the given path, applies
// the schema migrations and installs the resulting Db as the app database.
func WithDbZombiezen(dbPath string, poolSize int) core.Option {
	return func(a *core.App) {
		pool, err := zombiezen.NewPool(dbPath, poolSize)
		if err != nil {
			fatal("failed to open database pool", err)
		}

		appSchema, err := fs.Sub(migrations.Schema(), "app")
		if err != nil {
			fatal("failed to locate app schema", err)
		}

		conn, err := pool.Take(context.Background())
		if err != nil {
			fatal("failed to take connection for migrations", err)
		}
		err = zombiezen.ApplyMigrations(conn, appSchema)
		pool.Put(conn)
		if err != nil {
			fatal("failed to apply migrations", err)
		}

		db, err := zombiezen.New(pool)
		if err != nil {
			fatal("failed to initialize database", err)
		}
		core.WithDbApp(db)(a)
	}
}

func WithRouterServeMux() core.Option {
	return core.WithRouter(servemux.New())
}

func WithRouterHttprouter() core.Option {
	return core.WithRouter(httprouter.New())
}

func WithCacheRistretto() core.Option {
	c, err := ristretto.New[string, interface{}]()
	if err != nil {
		fatal("failed to initialize cache", err)
	}
	return core.WithCache(c)
}

// DefaultLoggerOptions provides default settings for slog handlers.
var DefaultLoggerOptions = &slog.HandlerOptions{
	Level: slog.LevelInfo,
}

// WithPhusLogger configures slog with phuslu/log's JSON handler.
// Uses DefaultLoggerOptions if opts is nil.
func WithPhusLogger(opts *slog.HandlerOptions) core.Option {
	if opts == nil {
		opts = DefaultLoggerOptions
	}
	return core.WithLogger(slog.New(phuslog.SlogNewJSONHandler(os.Stderr, opts)))
}

// WithTextLogger configures slog with the standard library's text handler.
func WithTextLogger(opts *slog.HandlerOptions) core.Option {
	if opts == nil {
		opts = DefaultLoggerOptions
	}
	return core.WithLogger(slog.New(slog.NewTextHandler(os.Stdout, opts)))
}

func fatal(msg string, err error) {
	fmt.Fprintf(os.Stderr, "%s: %v\n", msg, err)
	os.Exit(1)
}

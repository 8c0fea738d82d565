// Package server initializes and runs the main application server: it
// connects to storage, applies migrations, wires the session service, and
// serves the HTTP API until shutdown.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/dkozyrev/classauth/internal/dbx"
	"github.com/dkozyrev/classauth/internal/logging"
	"github.com/dkozyrev/classauth/internal/server/config"
	"github.com/dkozyrev/classauth/internal/server/httpapi"
	"github.com/dkozyrev/classauth/internal/server/repositories/repomanager"
	"github.com/dkozyrev/classauth/internal/server/services"
)

const dbConnectAttempts = 5

type App struct {
	config *config.Config
	logger logging.Logger
}

func NewApp(c *config.Config) *App {
	return &App{config: c, logger: logging.NewJSONLogger()}
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")
	app.initSignalHandler(cancelFunc)

	db, err := dbx.Connect(ctx, "pgx", app.config.DatabaseDSN, dbConnectAttempts)
	if err != nil {
		return fmt.Errorf("db init error: %w", err)
	}
	defer db.Close()

	repos := repomanager.NewPostgresRepositoryManager()
	if err := repos.RunMigrations(ctx, db); err != nil {
		return fmt.Errorf("migration error: %w", err)
	}

	sessions := services.NewSessionService(db, repos, app.config, app.logger)

	srv := httpapi.NewServer(
		app.config.EndpointAddrHTTP,
		sessions,
		sessions.AccessCodec(),
		app.config.RefreshTokenValidityDuration,
		app.logger,
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run(ctx)
	})
	return g.Wait()
}

// Package app wires configuration, storage backends, the auth core, and the
// HTTP server together, and handles graceful shutdown.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chertoha/contacthub/internal/auth"
	"github.com/chertoha/contacthub/internal/cache"
	"github.com/chertoha/contacthub/internal/config"
	"github.com/chertoha/contacthub/internal/httpapi"
	"github.com/chertoha/contacthub/internal/logging"
	"github.com/chertoha/contacthub/internal/mail"
	"github.com/chertoha/contacthub/internal/repositories/repomanager"
	"github.com/chertoha/contacthub/internal/services"
	"github.com/chertoha/contacthub/internal/storage"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	server *http.Server
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	db, err := repomanager.Open(ctx, cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	repos := repomanager.NewPostgresRepositoryManager()

	codec, err := auth.NewCodec(cfg.JWTSecret, cfg.JWTAlgorithm, nil)
	if err != nil {
		return nil, fmt.Errorf("token codec: %w", err)
	}
	accessTokens := auth.NewAccessTokenService(codec, cfg.AccessTokenTTL())
	emailTokens := auth.NewEmailTokenService(codec)
	hasher := auth.NewBcryptHasher()
	authn := auth.NewAuthenticator(accessTokens, repos.Users(db))

	sessions := cache.NewSessionCache(cache.NewRedisStore(cfg.RedisAddr))

	mailer, err := mail.NewSMTPMailer(cfg, emailTokens)
	if err != nil {
		return nil, err
	}

	avatars, err := storage.NewS3AvatarStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	userService := services.NewUserService(
		db, repos, hasher, accessTokens, emailTokens, sessions, mailer, avatars, logger)
	contactService := services.NewContactService(db, repos)

	handler := httpapi.NewHandler(userService, contactService, authn, db, logger)

	return &App{
		config: cfg,
		logger: logger,
		db:     db,
		server: &http.Server{Addr: cfg.RunAddr, Handler: handler.Routes()},
	}, nil
}

// Run starts the HTTP server and blocks until the context is canceled or an
// OS signal arrives, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a.initSignalHandler(cancel)

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info(ctx, "starting server", "addr", a.config.RunAddr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.logger.Info(ctx, "shutting down")

	shutdownCtx, stop := context.WithTimeout(context.Background(), shutdownTimeout)
	defer stop()

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	if err := a.db.Close(); err != nil {
		return fmt.Errorf("db close: %w", err)
	}
	return nil
}

func (a *App) initSignalHandler(cancel context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancel()
	}()
}

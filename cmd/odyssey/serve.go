package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/orgodyssey/odyssey/internal/api"
	"github.com/orgodyssey/odyssey/internal/core/ports"
	"github.com/orgodyssey/odyssey/internal/core/service"
	redisstore "github.com/orgodyssey/odyssey/internal/infrastructure/db/redis"
	"github.com/orgodyssey/odyssey/internal/infrastructure/http/handlers"
	"github.com/orgodyssey/odyssey/internal/infrastructure/mail"
	"github.com/orgodyssey/odyssey/internal/infrastructure/queue"
	"github.com/orgodyssey/odyssey/internal/infrastructure/token"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, a)
		},
	}
}

func serve(ctx context.Context, a *app) error {
	store, err := openBackend(ctx, a)
	if err != nil {
		return err
	}
	defer store.close()

	rdb, err := redisstore.Connect(ctx, a.cfg.Redis)
	if err != nil {
		return err
	}
	defer rdb.Close()
	store.checks["redis"] = handlers.RedisCheck(rdb)

	cipher, err := newCipher(a)
	if err != nil {
		return err
	}
	secret, err := jwtSecret(a)
	if err != nil {
		return err
	}

	mailer, err := newMailer(a)
	if err != nil {
		return err
	}
	var dispatcher *queue.Dispatcher
	if a.cfg.Mail.Workers > 0 {
		dispatcher = queue.NewDispatcher(a.cfg.Mail.Workers, mailer, a.log)
		dispatcher.Start(ctx)
		mailer = dispatcher
	}

	authService := service.NewAuthService(service.AuthDeps{
		Users:    store.users,
		Tx:       store.tx,
		Tokens:   cipher,
		Ledger:   redisstore.NewTokenLedger(rdb),
		Sessions: redisstore.NewSessionStore(rdb),
		Mailer:   mailer,
	}, service.AuthConfig{
		JWTSecret:     secret,
		SessionTTL:    a.cfg.Auth.SessionTTL,
		ConfirmTTL:    a.cfg.Auth.ConfirmTTL,
		PublicBaseURL: a.cfg.PublicBaseURL,
	}, a.log)
	employerService := service.NewEmployerService(store.employers, store.relations, store.tx, a.log)
	adminService := service.NewAdminService(store.users, store.employers, store.relations, store.tx, a.log)

	e := api.NewRouter(api.Deps{
		Auth:         authService,
		Employers:    employerService,
		Admin:        adminService,
		Readiness:    store.checks,
		SecureCookie: !a.cfg.IsDevelopment(),
		Log:          a.log,
	})

	errCh := make(chan error, 1)
	go func() {
		a.log.Info().Str("port", a.cfg.Port).Str("driver", a.cfg.StoreDriver).Msg("http server listening")
		if err := e.Start(":" + a.cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		a.log.Error().Err(err).Msg("http shutdown")
	}
	if dispatcher != nil {
		dispatcher.Wait()
	}
	return nil
}

func newCipher(a *app) (*token.Cipher, error) {
	if a.cfg.Auth.TokenKey == "" {
		a.log.Warn().Msg("TOKEN_KEY not set; confirmation links will not survive a restart")
		return token.NewRandomCipher()
	}
	key, err := a.cfg.TokenKeyBytes()
	if err != nil {
		return nil, err
	}
	return token.NewCipher(key), nil
}

func jwtSecret(a *app) (string, error) {
	if a.cfg.Auth.JWTSecret != "" {
		return a.cfg.Auth.JWTSecret, nil
	}
	a.log.Warn().Msg("JWT_SECRET not set; sessions will not survive a restart")
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func newMailer(a *app) (ports.Mailer, error) {
	if a.cfg.Mail.Transport == "smtp" {
		m, err := mail.NewSMTPMailer(a.cfg.Mail)
		if err != nil {
			return nil, err
		}
		return m, nil
	}
	return mail.NewLogMailer(a.log), nil
}

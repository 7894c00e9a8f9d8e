package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/joho/godotenv"
	"github.com/jrsteele09/go-oidc-core/clients"
	"github.com/jrsteele09/go-oidc-core/identity"
	"github.com/jrsteele09/go-oidc-core/identity/repofake"
	"github.com/jrsteele09/go-oidc-core/internal/config"
	"github.com/jrsteele09/go-oidc-core/scopes"
	"github.com/jrsteele09/go-oidc-core/server"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
	log.Info().Msg("server stopped")
}

func run() error {
	_ = godotenv.Load()
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	cfg := config.New()
	displayAppname(cfg.GetAppName())

	clientRegistry, err := clients.NewRegistry(&clients.Client{
		ID:             config.GetEnv("CLIENT_ID", "local-client"),
		Secret:         config.GetEnv("CLIENT_SECRET", ""),
		Description:    "Locally registered client",
		TrustedDomains: []string{config.GetEnv("TRUSTED_DOMAIN", "localhost")},
	})
	if err != nil {
		return err
	}

	users := repofake.NewFakeIdentityRepo()
	if err := seedUser(users); err != nil {
		return err
	}

	handler, err := server.New(cfg, clientRegistry, users)
	if err != nil {
		return err
	}

	httpServer := &http.Server{Addr: cfg.GetPort(), Handler: handler}
	go func() {
		log.Info().Str("addr", httpServer.Addr).Strs("scopes", scopes.DefaultRegistry().Names()).Msg("listening")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("listen failed")
		}
	}()

	waitForStopSignal()
	return shutdown(httpServer)
}

func seedUser(users identity.Repo) error {
	password := config.GetEnv("SEED_USER_PASSWORD", "")
	if password == "" {
		return nil
	}
	hash, err := identity.HashPassword(password)
	if err != nil {
		return err
	}
	return users.Upsert(&identity.User{
		Email:        config.GetEnv("SEED_USER_EMAIL", "admin@localhost"),
		Username:     "admin",
		FirstName:    "Admin",
		LastName:     "User",
		PasswordHash: hash,
		Roles:        []string{"admin"},
		Verified:     true,
	})
}

func waitForStopSignal() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}

func shutdown(httpServer *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown %w", err)
	}
	return nil
}

func displayAppname(appName string) {
	banner := figure.NewFigure(appName, "", true)
	banner.Print()
}

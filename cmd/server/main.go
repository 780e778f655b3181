// Package main initializes and starts the vault server, setting up
// configuration, logging, the database connection, repositories,
// services, and handlers.
package main

import (
	"cmp"
	"context"
	"fmt"
	"time"

	nethttp "net/http"

	"github.com/addictsagenda/agenda/internal/config"
	"github.com/addictsagenda/agenda/internal/db"
	"github.com/addictsagenda/agenda/internal/logger"
	"github.com/addictsagenda/agenda/internal/repository"
	"github.com/addictsagenda/agenda/internal/server/handler/http"
	"github.com/addictsagenda/agenda/internal/service"
	"go.uber.org/zap"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

func main() {
	// Parse command-line and environment configuration.
	options := config.Parse()

	// Print build metadata (or "N/A" if unset).
	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	// Initialize structured logging.
	log, err := logger.New("info")
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	if options.TokenSecret == "" {
		log.Fatal("token secret is required (-s flag or TOKEN_SECRET)")
	}
	secret := []byte(options.TokenSecret)

	// Initialize the PostgreSQL connection and schema.
	postgresDB, err := db.InitPostgres(options.DatabaseDSN)
	if err != nil {
		log.Fatal("cannot init database", zap.Error(err))
	}

	// Sweep vault rows left behind by retired domains.
	db.StartOrphanCleaner(context.Background(), postgresDB, time.Hour, log)

	// Initialize repositories for authentication and vault storage.
	authRepo := repository.NewPostgresAuthRepository(postgresDB)
	vaultRepo := repository.NewPostgresVaultRepository(postgresDB)

	// Initialize business-logic services.
	authService := service.NewAuthService(authRepo, secret)
	vaultService := service.NewVaultService(vaultRepo)

	// Create HTTP handlers for auth and vault endpoints.
	authHandler := &http.AuthHandler{AuthService: authService}
	vaultHandler := &http.VaultHandler{VaultService: vaultService}

	// Build the router with middleware and routes.
	router := http.NewRouter(authHandler, vaultHandler, secret, log)

	server := &nethttp.Server{
		Addr:    options.Port,
		Handler: router,
	}

	log.Info("starting HTTP server", zap.String("addr", options.Port))
	if err := server.ListenAndServe(); err != nil {
		log.Fatal("failed to start HTTP server", zap.Error(err))
	}
}

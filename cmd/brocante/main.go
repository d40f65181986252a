// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package main is the entry point for the brocante classifieds server.
// It loads configuration, connects to services, sets up routing, and
// starts the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"brocante/internal/cache"
	"brocante/internal/config"
	"brocante/internal/database"
	"brocante/internal/handlers"
	"brocante/internal/notify"
	"brocante/internal/router"
	"brocante/internal/storage"
	"brocante/internal/store"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	// Load configuration from environment variables.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
	)

	// Connect to PostgreSQL.
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Run pending migrations.
	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Seed the default category tree and the development admin account
	// (no-op if data already exists).
	if cfg.IsDev() {
		if err := database.Seed(db); err != nil {
			slog.Error("failed to seed database", "error", err)
			os.Exit(1)
		}
	}

	// Connect to Valkey for the listing cache. The app runs without it.
	var cacheClient *cache.ListingCache
	valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		slog.Warn("valkey unavailable, listing cache disabled", "error", err)
		cacheClient = cache.NewListingCache(nil, 0)
	} else {
		defer valkeyClient.Close()
		cacheClient = cache.NewListingCache(valkeyClient, cache.DefaultListingTTL)
	}

	// Initialize data stores.
	userStore := store.NewUserStore(db)
	categoryStore := store.NewCategoryStore(db)
	fieldStore := store.NewFieldStore(db)
	adStore := store.NewAdStore(db)
	settingStore := store.NewSettingStore(db)

	// Connect to S3-compatible object storage (optional, ads then go
	// without pictures).
	var storageClient *storage.Client
	if cfg.S3Endpoint != "" && cfg.S3AccessKey != "" {
		storageClient, err = storage.New(
			cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey,
			cfg.S3Bucket, cfg.S3PublicURL,
		)
		if err != nil {
			slog.Error("failed to initialize S3 storage", "error", err)
			os.Exit(1)
		}
		slog.Info("s3 storage connected", "endpoint", cfg.S3Endpoint, "bucket", cfg.S3Bucket)
	} else {
		slog.Warn("s3 storage not configured, image uploads disabled")
	}

	// The mailer reads SMTP settings from the database on every send, so
	// admin changes apply without a restart.
	mailer := notify.NewMailer(settingStore)

	// Create handler groups with their dependencies.
	authHandlers := handlers.NewAuth(userStore, mailer, cfg.JWTSecret)
	taxonomyHandlers := handlers.NewTaxonomy(categoryStore, cacheClient)
	fieldHandlers := handlers.NewFields(fieldStore)
	adHandlers := handlers.NewAds(adStore, fieldStore, settingStore, storageClient, cacheClient)
	adminHandlers := handlers.NewAdmin(adStore, userStore, settingStore, mailer, cacheClient)

	// Set up the Chi router with all middleware and routes.
	r := router.New(cfg.JWTSecret, cfg.FrontendURL, authHandlers, taxonomyHandlers, fieldHandlers, adHandlers, adminHandlers)

	// Background sweep that expires stale active ads.
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go expirySweep(sweepCtx, adStore, settingStore, cacheClient, time.Duration(cfg.ExpirySweepMinutes)*time.Minute)

	// Create the HTTP server with sensible timeouts. ReadTimeout must
	// accommodate multi-image uploads on slow connections.
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start the server in a goroutine so we can listen for shutdown signals.
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	// Give active requests up to 30 seconds to complete.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}

// expirySweep periodically moves active ads past the configured age to
// expired. The interval comes from configuration, the age from the
// site settings so admins can tune it at runtime.
func expirySweep(ctx context.Context, adStore *store.AdStore, settings *store.SettingStore, listingCache *cache.ListingCache, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			days, err := settings.ExpiryDays()
			if err != nil {
				slog.Error("expiry sweep settings lookup failed", "error", err)
				continue
			}
			n, err := adStore.ExpireOlderThan(days)
			if err != nil {
				slog.Error("expiry sweep failed", "error", err)
				continue
			}
			if n > 0 {
				slog.Info("ads expired", "count", n, "older_than_days", days)
				listingCache.InvalidateAll(ctx)
			}
		}
	}
}

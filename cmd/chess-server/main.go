// Package main runs the chess rules server: a REST API over the rules engine with optional
// sqlite persistence, redis game cache and JWT accounts.
package main

import (
	"context"
	"crypto/rand"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sensei/cmd/chess-server/cli"
	"sensei/internal/cache"
	"sensei/internal/config"
	"sensei/internal/http"
	"sensei/internal/processor"
	"sensei/internal/service"
	"sensei/internal/storage"
)

const gracefulShutdownTimeout = 5 * time.Second

const devJWTSecret = "dev-secret-minimum-32-characters-long"

func main() {
	if len(os.Args) > 1 && os.Args[1] == "db" {
		if err := cli.Run(os.Args[2:], os.Stdout); err != nil {
			log.Fatalf("CLI error: %v", err)
		}
		os.Exit(0)
	}

	var (
		configPath  = flag.String("config", "", "Path to TOML config file")
		host        = flag.String("host", "", "Server host (overrides config)")
		port        = flag.Int("port", 0, "Server port (overrides config)")
		dev         = flag.Bool("dev", false, "Development mode (relaxed rate limits, fixed JWT secret)")
		storagePath = flag.String("storage-path", "", "Path to SQLite database file (disables persistence if empty)")
		redisURL    = flag.String("redis-url", "", "Redis URL for the live game cache (disabled if empty)")
		pidPath     = flag.String("pid", "", "Optional path to write PID file")
		pidLock     = flag.Bool("pid-lock", false, "Lock PID file to allow only one instance (requires -pid)")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	applyFlags(cfg, *host, *port, *dev, *storagePath, *redisURL, *pidPath, *pidLock)
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	if cfg.Server.PIDFile != "" {
		cleanup, err := managePIDFile(cfg.Server.PIDFile, cfg.Server.PIDLock)
		if err != nil {
			log.Fatalf("Failed to manage PID file: %v", err)
		}
		defer cleanup()
		log.Printf("PID file created at: %s (lock: %v)", cfg.Server.PIDFile, cfg.Server.PIDLock)
	}

	// 1. Storage (optional); closed by the service on shutdown
	var store *storage.Store
	if cfg.Storage.Path != "" {
		log.Printf("Initializing persistent storage at: %s", cfg.Storage.Path)
		store, err = storage.NewStore(cfg.Storage.Path, cfg.Server.Dev)
		if err != nil {
			log.Fatalf("Failed to initialize storage: %v", err)
		}
		if err := store.InitDB(); err != nil {
			log.Fatalf("Failed to initialize schema: %v", err)
		}
	} else {
		log.Printf("Persistent storage disabled (use -storage-path to enable)")
	}

	// 2. Game cache (optional)
	var gameCache service.GameCache
	if cfg.Cache.RedisURL != "" {
		c, err := cache.New(cfg.Cache.RedisURL, cfg.Cache.TTL)
		if err != nil {
			log.Fatalf("Failed to initialize cache: %v", err)
		}
		defer func() {
			if err := c.Close(); err != nil {
				log.Printf("Warning: failed to close cache cleanly: %v", err)
			}
		}()
		gameCache = c
		log.Printf("Game cache enabled (ttl %s)", cfg.Cache.TTL)
	}

	svc := service.New(store, gameCache, jwtSecret(cfg), cfg.Auth.TokenTTL)

	restoreCtx, restoreCancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	if n := svc.RestoreFromCache(restoreCtx); n > 0 {
		log.Printf("Restored %d game(s) from cache", n)
	}
	restoreCancel()

	// 3. Processor and HTTP app
	proc := processor.New(svc)
	app := http.NewFiberApp(proc, svc, cfg)

	addr := cfg.Addr()
	go func() {
		log.Printf("Chess API Server starting...")
		log.Printf("API Listening on: http://%s", addr)
		log.Printf("Rate Limit: %d requests/second per IP", effectiveRate(cfg))
		log.Printf("Storage: %s", svc.GetStorageHealth())
		log.Printf("API Endpoints: http://%s/api/v1/games", addr)
		log.Printf("Auth Endpoints: http://%s/api/v1/auth/[register|login|me]", addr)
		log.Printf("Health: http://%s/health", addr)

		if err := app.Listen(addr); err != nil {
			log.Printf("API server listen error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	if err := svc.Shutdown(gracefulShutdownTimeout); err != nil {
		log.Printf("Service shutdown error: %v", err)
	}

	log.Println("Server exited")
}

// applyFlags lets non-zero command-line flags override the config file
func applyFlags(cfg *config.Config, host string, port int, dev bool, storagePath, redisURL, pidPath string, pidLock bool) {
	if host != "" {
		cfg.Server.Host = host
	}
	if port != 0 {
		cfg.Server.Port = port
	}
	if dev {
		cfg.Server.Dev = true
	}
	if storagePath != "" {
		cfg.Storage.Path = storagePath
	}
	if redisURL != "" {
		cfg.Cache.RedisURL = redisURL
	}
	if pidPath != "" {
		cfg.Server.PIDFile = pidPath
	}
	if pidLock {
		cfg.Server.PIDLock = true
	}
}

func effectiveRate(cfg *config.Config) int {
	if cfg.Server.Dev {
		return cfg.Limits.Rate * 2
	}
	return cfg.Limits.Rate
}

func jwtSecret(cfg *config.Config) []byte {
	switch {
	case cfg.Auth.JWTSecret != "":
		log.Printf("Using configured JWT secret")
		return []byte(cfg.Auth.JWTSecret)
	case cfg.Server.Dev:
		log.Printf("Using fixed JWT secret (dev mode)")
		return []byte(devJWTSecret)
	}

	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		log.Fatalf("Failed to generate JWT secret: %v", err)
	}
	log.Printf("JWT secret generated (sessions valid until restart)")
	return secret
}

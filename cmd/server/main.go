package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/alejandrodnm/retrotoken/config"
	"github.com/alejandrodnm/retrotoken/internal/adapters/cache"
	"github.com/alejandrodnm/retrotoken/internal/adapters/coincap"
	"github.com/alejandrodnm/retrotoken/internal/adapters/identity"
	"github.com/alejandrodnm/retrotoken/internal/adapters/storage"
	"github.com/alejandrodnm/retrotoken/internal/ports"
	"github.com/alejandrodnm/retrotoken/internal/server"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	addr := flag.String("addr", "", "listen address (overrides config)")
	verbose := flag.Bool("verbose", false, "set log level to debug")
	logFormat := flag.String("format", "", "log format: text|json (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err, "path", *configPath)
		os.Exit(1)
	}

	if *verbose {
		cfg.Log.Level = "debug"
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	setupLogger(cfg.Log)

	slog.Info("retrotoken starting",
		"config", *configPath,
		"addr", cfg.Server.Addr,
		"storage", cfg.Storage.Driver,
		"auth", cfg.Auth.Scheme,
		"cache", cfg.Cache.Driver,
	)

	store, err := buildStore(cfg)
	if err != nil {
		slog.Error("failed to open storage", "err", err, "driver", cfg.Storage.Driver)
		os.Exit(1)
	}
	defer store.Close()

	resolver, err := buildResolver(cfg)
	if err != nil {
		slog.Error("failed to build identity resolver", "err", err, "scheme", cfg.Auth.Scheme)
		os.Exit(1)
	}

	markets := coincap.NewClient(cfg.Gateway.AssetsBase, cfg.Gateway.NewsBase, cfg.Gateway.APIKey)

	s := server.New(server.Config{
		Addr:       cfg.Server.Addr,
		AssetsTTL:  cfg.AssetsTTL(),
		HistoryTTL: cfg.HistoryTTL(),
		NewsTTL:    cfg.NewsTTL(),
	}, store, markets, buildCache(cfg), resolver)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := s.Run(ctx); err != nil {
		slog.Error("server exited with error", "err", err)
		os.Exit(1)
	}

	slog.Info("retrotoken stopped cleanly")
}

func buildStore(cfg *config.Config) (ports.WatchlistStore, error) {
	switch cfg.Storage.Driver {
	case "sqlite":
		return storage.NewSQLiteStore(cfg.Storage.DSN)
	case "jsonfile":
		return storage.NewJSONFileStore(cfg.Storage.File)
	default:
		return nil, fmt.Errorf("main.buildStore: unknown driver %q", cfg.Storage.Driver)
	}
}

func buildResolver(cfg *config.Config) (ports.IdentityResolver, error) {
	switch cfg.Auth.Scheme {
	case "session":
		return identity.NewSessionResolver(cfg.Auth.SessionSecret)
	case "wallet":
		msg := cfg.Auth.SignMessage
		if msg == "" {
			msg = identity.SignMessage
		}
		return identity.NewWalletResolver(msg), nil
	default:
		return nil, fmt.Errorf("main.buildResolver: unknown scheme %q", cfg.Auth.Scheme)
	}
}

func buildCache(cfg *config.Config) ports.Cache {
	if cfg.Cache.Driver == "redis" {
		client := redis.NewClient(&redis.Options{Addr: cfg.Cache.RedisAddr})
		return cache.NewRedis(client, "")
	}
	return cache.NewMemory()
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}

package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/hazyhaar/icdterms/pkg/api"
	"github.com/hazyhaar/icdterms/pkg/chassis"
	"github.com/hazyhaar/icdterms/pkg/importer"
	"github.com/hazyhaar/icdterms/pkg/termdb"
	"github.com/mark3labs/mcp-go/server"
	"gopkg.in/yaml.v3"
)

type config struct {
	Addr          string `yaml:"addr"`
	TablesDir     string `yaml:"tables_dir"`
	CertFile      string `yaml:"cert_file"`
	KeyFile       string `yaml:"key_file"`
	CheckInterval string `yaml:"check_interval"` // source availability probes; "" disables
}

func cmdServe(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	cfgPath := fs.String("config", "config.yaml", "path to config file")
	fs.Parse(args)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg := loadConfig(*cfgPath, logger)

	// Load term tables.
	reg := termdb.NewRegistry(cfg.TablesDir)
	if err := reg.Load(); err != nil {
		logger.Error("failed to load term tables", "error", err)
		os.Exit(1)
	}
	logger.Info("term tables loaded", "count", reg.TableCount(), "terms", reg.TotalTerms())

	router := api.NewRouter(reg)

	mcpSrv := server.NewMCPServer("icdterms", "1.0.0")
	api.RegisterMCPTools(mcpSrv, reg)

	srv, err := chassis.New(chassis.Config{
		Addr:      cfg.Addr,
		CertFile:  cfg.CertFile,
		KeyFile:   cfg.KeyFile,
		Handler:   router,
		MCPServer: mcpSrv,
		Logger:    logger,
	})
	if err != nil {
		logger.Error("chassis init failed", "error", err)
		os.Exit(1)
	}

	// SIGHUP: hot reload tables.
	// SIGINT/SIGTERM: graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sighup := make(chan os.Signal, 1)
	signal.Notify(sighup, syscall.SIGHUP)
	go func() {
		for range sighup {
			logger.Info("SIGHUP received, reloading term tables")
			if err := reg.Reload(); err != nil {
				logger.Error("reload failed", "error", err)
			} else {
				logger.Info("term tables reloaded", "count", reg.TableCount(), "terms", reg.TotalTerms())
			}
		}
	}()

	startChecker(ctx, cfg, logger)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("icdterms listening", "addr", cfg.Addr)
		errCh <- srv.Start(ctx)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	srv.Stop(shutdownCtx)
}

// startChecker launches the periodic source availability checker when the
// config enables it and a sources.db exists next to the tables.
func startChecker(ctx context.Context, cfg config, logger *slog.Logger) {
	if cfg.CheckInterval == "" {
		return
	}
	interval, err := time.ParseDuration(cfg.CheckInterval)
	if err != nil {
		logger.Error("invalid check_interval", "value", cfg.CheckInterval, "error", err)
		os.Exit(1)
	}

	sdb, err := importer.OpenSourceDB(filepath.Join(cfg.TablesDir, "sources.db"))
	if err != nil {
		logger.Warn("source checker disabled", "error", err)
		return
	}
	if err := sdb.Seed(importer.All()); err != nil {
		logger.Warn("source checker seed failed", "error", err)
		sdb.Close()
		return
	}

	checker := importer.NewChecker(sdb, logger, interval)
	go func() {
		defer sdb.Close()
		checker.Start(ctx)
	}()
	logger.Info("source checker started", "interval", interval.String())
}

func loadConfig(path string, logger *slog.Logger) config {
	cfg := config{
		Addr:      ":8420",
		TablesDir: "tables",
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Info("no config file, using defaults", "path", path)
			return cfg
		}
		logger.Error("read config", "error", err)
		os.Exit(1)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		logger.Error("parse config", "error", err)
		os.Exit(1)
	}
	return cfg
}

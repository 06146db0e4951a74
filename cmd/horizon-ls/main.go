// Package main is the entry point for the horizon-ls language server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/nhmods/horizon-ls/internal/config"
	"github.com/nhmods/horizon-ls/internal/lsp"
	"github.com/nhmods/horizon-ls/internal/server"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath, overrides := parseFlags()

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	overrides(&cfg)

	level, err := cfg.Level()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	// stdout carries the protocol; logs go to stderr.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	logger.Info("starting horizon-ls", "version", version)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	transport := lsp.NewTransport(os.Stdin, os.Stdout, nil)
	srv := server.New(transport, cfg, logger, version)

	if err := srv.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Error("server stopped", "error", err)
		return 1
	}
	return 0
}

// parseFlags returns the config file path and a function applying
// command-line overrides on top of the loaded config.
func parseFlags() (string, func(*config.Config)) {
	var (
		configPath  string
		logLevel    string
		schemaURL   string
		noWatch     bool
		showVersion bool
	)

	flag.StringVar(&configPath, "config", "", "Path to configuration file")
	flag.StringVar(&configPath, "c", "", "Path to configuration file (shorthand)")
	flag.StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flag.StringVar(&schemaURL, "schema-url", "", "Body schema URL for file path checking")
	flag.BoolVar(&noWatch, "no-watch", false, "Disable filesystem watching")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "horizon-ls - language server for New Horizons mod projects\n\n")
		fmt.Fprintf(os.Stderr, "Communicates over stdio; point your editor's LSP client at this binary.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	if showVersion {
		fmt.Printf("horizon-ls %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}

	return configPath, func(cfg *config.Config) {
		if logLevel != "" {
			cfg.LogLevel = logLevel
		}
		if schemaURL != "" {
			cfg.SchemaURL = schemaURL
		}
		if noWatch {
			cfg.Watch = false
		}
	}
}

// Command matchc-lsp is a language server publishing match diagnostics,
// formatting documents and showing lowering plans on hover.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/funvibe/matchcore/internal/config"
)

func main() {
	configPath := flag.String("config", "", "path to matchc.yaml")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	// stdout carries the protocol
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	cwd, _ := os.Getwd()
	cfg, err := config.Resolve(*configPath, cwd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	server := NewLanguageServer(os.Stdout, cfg, logger)
	if err := server.Serve(os.Stdin); err != nil {
		logger.Error("language server stopped", slog.Any("error", err))
		os.Exit(1)
	}
}

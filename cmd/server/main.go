// Package main is the entry point for the bloglist server.
//
// main stays small: parse flags, load config, build the logger, hand
// everything to internal/server and block in Start.
//
// Usage:
//
//	go run ./cmd/server -env development -config ./config.toml
//	go run ./cmd/server -routes          # print the route tree as JSON and exit
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/go-chi/docgen"

	"github.com/sakif/bloglist/internal/config"
	"github.com/sakif/bloglist/internal/logging"
	"github.com/sakif/bloglist/internal/server"
)

func main() {
	env := flag.String("env", "development", "environment [dev | development | prod | production | test]")
	configPath := flag.String("config", "./config.toml", "path for the TOML config file")
	routes := flag.Bool("routes", false, "print the route tree as JSON and exit")
	flag.Parse()

	cfg, err := config.Load(*env, *configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %s\n", err)
		os.Exit(1)
	}

	logger, logCloser := logging.New(logging.Params{
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		FileName:    cfg.LogFile,
		ToStdout:    cfg.LogToStdout,
		Environment: cfg.Environment,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	srv, err := server.New(ctx, cfg, logger, logCloser)
	cancel()
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		logCloser.Close()
		os.Exit(1)
	}

	if *routes {
		fmt.Println(docgen.JSONRoutesDoc(srv.Router()))
		srv.Close()
		return
	}

	// Start blocks until SIGINT/SIGTERM and closes the store and log file.
	if err := srv.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "server: %s\n", err)
		os.Exit(1)
	}
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/zoobzio/redact/config"
	"github.com/zoobzio/redact/logger"
	"github.com/zoobzio/redact/pipeline"
	"github.com/zoobzio/redact/s3"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	printBuildInfo()

	log := logger.NewLogger("redact-users")
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}

	log.Debug().
		Str("endpoint", cfg.Store.Endpoint).
		Str("source", cfg.Source.String()).
		Str("target", cfg.Target.String()).
		Str("key_name", cfg.Encryption.KeyName).
		Bool("verify", cfg.Verify).
		Msg("received configs")

	store, err := s3.New(cfg.Store.S3())
	if err != nil {
		log.Fatal().Err(err).Msg("error creating object store client")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := pipeline.Run(ctx, store, cfg, log); err != nil {
		log.Error().Err(err).Msg("pipeline failed")
		stop()
		os.Exit(1)
	}
	log.Info().Msg("pipeline finished")
}

func printBuildInfo() {
	if buildVersion == "" {
		buildVersion = "N/A"
	}

	if buildDate == "" {
		buildDate = "N/A"
	}

	if buildCommit == "" {
		buildCommit = "N/A"
	}

	fmt.Printf("Build version: %s\n", buildVersion)
	fmt.Printf("Build date: %s\n", buildDate)
	fmt.Printf("Build commit: %s\n", buildCommit)
}

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"gotocard/internal/config"
	"gotocard/internal/logger"
	"gotocard/internal/refresher"
)

// Exit codes: 1 when the run could not start, 2 when some users failed.
func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()
	log := logger.Get()

	cfg, err := config.LoadRefresher()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}
	logger.SetLevel(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	httpClient := &http.Client{Timeout: cfg.RequestTimeout}
	client := refresher.NewClient(cfg.APIURL, cfg.PipelineAPIKey, httpClient)

	result, err := refresher.New(client, cfg, log).Run(ctx)
	if err != nil {
		log.Errorw("refresh run failed", "error", err)
		logger.Sync()
		os.Exit(1)
	}

	log.Infow("refresh run completed",
		"users_fetched", result.UsersFetched,
		"generated", result.Generated,
		"no_eligible_cards", result.NoEligible,
		"errors", len(result.Failures),
		"duration", result.Duration.String(),
	)

	for _, f := range result.Failures {
		log.Warnw("generate failed",
			"user_id", f.UserID,
			"error", f.Err.Error(),
		)
	}

	if len(result.Failures) > 0 {
		logger.Sync()
		os.Exit(2)
	}
}

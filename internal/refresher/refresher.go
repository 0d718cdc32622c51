// Package refresher regenerates stored recommendations for every user through the API.
package refresher

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"gotocard/internal/config"
)

// GenerateClient defines the API operations needed by the refresher.
type GenerateClient interface {
	ListUserIDs(ctx context.Context) ([]string, error)
	Generate(ctx context.Context, userID string) (*GenerateResponse, error)
}

// Failure is a user whose recommendations could not be regenerated.
type Failure struct {
	UserID string
	Err    error
}

// RunResult contains the outcome of a refresh run.
type RunResult struct {
	UsersFetched int
	Generated    int
	NoEligible   int
	Failures     []Failure
	Duration     time.Duration
}

// Refresher fans generate calls out over a bounded number of workers.
type Refresher struct {
	client      GenerateClient
	concurrency int
	maxRetries  uint64
	retryBase   time.Duration
	logger      *zap.SugaredLogger
}

// New creates a Refresher from cfg.
func New(client GenerateClient, cfg *config.RefresherConfig, logger *zap.SugaredLogger) *Refresher {
	r := &Refresher{
		client:      client,
		concurrency: cfg.Concurrency,
		maxRetries:  cfg.MaxRetries,
		retryBase:   cfg.RetryBase,
		logger:      logger,
	}
	if r.concurrency <= 0 {
		r.concurrency = 1
	}
	if r.retryBase <= 0 {
		r.retryBase = 500 * time.Millisecond
	}
	return r
}

// Run regenerates every user once. One user's failure does not stop the
// others; failures are collected in the result, sorted by user id.
func (r *Refresher) Run(ctx context.Context) (*RunResult, error) {
	start := time.Now()
	result := &RunResult{}

	userIDs, err := r.client.ListUserIDs(ctx)
	if err != nil {
		return nil, err
	}
	result.UsersFetched = len(userIDs)

	if len(userIDs) == 0 {
		r.logger.Info("no users found, nothing to do")
		result.Duration = time.Since(start)
		return result, nil
	}

	var mu sync.Mutex
	var g errgroup.Group
	g.SetLimit(r.concurrency)
	for _, id := range userIDs {
		id := id
		g.Go(func() error {
			resp, err := r.generate(ctx, id)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Failures = append(result.Failures, Failure{UserID: id, Err: err})
				return nil
			}
			result.Generated++
			if resp.Status == "no_eligible_cards" {
				result.NoEligible++
			}
			r.logger.Debugw("regenerated", "user_id", id, "status", resp.Status, "count", len(resp.Recommendations))
			return nil
		})
	}
	_ = g.Wait()

	sort.Slice(result.Failures, func(i, j int) bool { return result.Failures[i].UserID < result.Failures[j].UserID })
	result.Duration = time.Since(start)
	return result, nil
}

// generate calls the API for one user, retrying transient failures with exponential backoff.
func (r *Refresher) generate(ctx context.Context, userID string) (*GenerateResponse, error) {
	var resp *GenerateResponse
	backoff := retry.WithMaxRetries(r.maxRetries, retry.NewExponential(r.retryBase))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		var err error
		resp, err = r.client.Generate(ctx, userID)
		if err != nil && IsTemporary(err) {
			r.logger.Debugw("generate failed, retrying", "user_id", userID, "error", err)
			return retry.RetryableError(err)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

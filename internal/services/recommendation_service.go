package services

import (
	"context"
	"errors"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"github.com/sethvargo/go-retry"

	apperrors "gotocard/internal/errors"
	"gotocard/internal/events"
	"gotocard/internal/keylock"
	"gotocard/internal/logger"
	"gotocard/internal/recommend"
)

// RecommendationOptions tunes the recommendation service.
type RecommendationOptions struct {
	Engine     recommend.Config
	Timeout    time.Duration
	MaxRetries uint64
	RetryBase  time.Duration
	// CacheSize is the number of users whose latest list is kept in memory. Zero disables the cache.
	CacheSize int
	Publisher events.Publisher
	// Now overrides the clock, for tests.
	Now func() time.Time
}

type recommendationService struct {
	store     RecommendationStore
	engine    *recommend.Engine
	locks     *keylock.Locker
	cache     *lru.Cache
	publisher events.Publisher
	timeout   time.Duration
	retries   uint64
	retryBase time.Duration
	now       func() time.Time
}

// NewRecommendationService creates a new RecommendationServicer.
func NewRecommendationService(store RecommendationStore, opts RecommendationOptions) (RecommendationServicer, error) {
	s := &recommendationService{
		store:     store,
		engine:    recommend.NewEngine(opts.Engine),
		locks:     keylock.New(),
		publisher: opts.Publisher,
		timeout:   opts.Timeout,
		retries:   opts.MaxRetries,
		retryBase: opts.RetryBase,
		now:       opts.Now,
	}
	if s.timeout <= 0 {
		s.timeout = 5 * time.Second
	}
	if s.retryBase <= 0 {
		s.retryBase = 100 * time.Millisecond
	}
	if s.publisher == nil {
		s.publisher = events.NopPublisher{}
	}
	if s.now == nil {
		s.now = time.Now
	}
	if opts.CacheSize > 0 {
		cache, err := lru.New(opts.CacheSize)
		if err != nil {
			return nil, err
		}
		s.cache = cache
	}
	return s, nil
}

// Generate recomputes the user's recommendations and replaces the stored
// list. Runs for the same user are serialized; runs for different users
// proceed in parallel.
func (s *recommendationService) Generate(ctx context.Context, userID string) (*GenerateResult, error) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	unlock, err := s.locks.Lock(ctx, userID)
	if err != nil {
		return nil, s.fail(userID, err)
	}
	defer unlock()

	var in recommend.Input
	var skipped []recommend.SkippedRecord
	err = s.withRetry(ctx, func(ctx context.Context) error {
		user, err := s.store.LoadUser(ctx, userID)
		if err != nil {
			return err
		}
		cards, err := s.store.LoadActiveCards(ctx)
		if err != nil {
			return err
		}
		spending, err := s.store.LoadSpending(ctx, userID)
		if err != nil {
			return err
		}
		profile := recommend.Aggregate(spending, nil)
		skipped = profile.Skipped
		in = recommend.Input{AnnualIncome: user.AnnualIncome, Cards: cards, Profile: profile}
		return nil
	})
	if err != nil {
		return nil, s.fail(userID, err)
	}
	logSkipped(userID, skipped)

	result := s.engine.Rank(in)
	generatedAt := s.now().UTC()

	err = s.withRetry(ctx, func(ctx context.Context) error {
		return s.store.ReplaceRecommendations(ctx, userID, result.Recommendations, generatedAt)
	})
	if err != nil {
		return nil, s.fail(userID, err)
	}

	if s.cache != nil {
		s.cache.Add(userID, cloneRecommendations(result.Recommendations))
	}

	evt := events.RecommendationsGenerated{
		UserID:      userID,
		Count:       len(result.Recommendations),
		Status:      string(result.Status),
		GeneratedAt: generatedAt,
	}
	if err := s.publisher.PublishGenerated(context.WithoutCancel(ctx), evt); err != nil {
		logger.Get().Errorw("Failed to publish recommendations event", "user_id", userID, "error", err)
	}

	logger.Get().Infow("Generated recommendations",
		"user_id", userID,
		"status", result.Status,
		"count", len(result.Recommendations),
		"candidates", result.Candidates,
		"excluded", result.Excluded,
		"fallback", result.Fallback,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return &GenerateResult{
		Status:          result.Status,
		Recommendations: result.Recommendations,
	}, nil
}

// Get returns the user's last committed list, or an empty list if none exists.
// It never waits on a running Generate.
func (s *recommendationService) Get(ctx context.Context, userID string) ([]recommend.Recommendation, error) {
	if s.cache != nil {
		if v, ok := s.cache.Get(userID); ok {
			return cloneRecommendations(v.([]recommend.Recommendation)), nil
		}
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var recs []recommend.Recommendation
	err := s.withRetry(ctx, func(ctx context.Context) error {
		var err error
		recs, err = s.store.ListRecommendations(ctx, userID)
		return err
	})
	if err != nil {
		return nil, s.fail(userID, err)
	}
	if recs == nil {
		recs = []recommend.Recommendation{}
	}
	return recs, nil
}

// GetByCategory returns the stored recommendations for one category, in rank order.
func (s *recommendationService) GetByCategory(ctx context.Context, userID, categoryID string) ([]recommend.Recommendation, error) {
	recs, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]recommend.Recommendation, 0)
	for _, r := range recs {
		if r.Category.ID == categoryID {
			out = append(out, r)
		}
	}
	return out, nil
}

// withRetry retries fn with exponential backoff while it returns retryable errors.
func (s *recommendationService) withRetry(ctx context.Context, fn func(ctx context.Context) error) error {
	b := retry.WithMaxRetries(s.retries, retry.NewExponential(s.retryBase))
	return retry.Do(ctx, b, func(ctx context.Context) error {
		err := fn(ctx)
		if apperrors.IsRetryable(err) {
			return retry.RetryableError(err)
		}
		return err
	})
}

// fail maps errors to AppErrors and logs the ones the caller cannot fix.
func (s *recommendationService) fail(userID string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		logger.Get().Warnw("Recommendation request timed out", "user_id", userID, "timeout", s.timeout.String())
		return apperrors.Wrap(apperrors.ErrGenerationTimeout, err)
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		if appErr.Retryable {
			logger.Get().Errorw("Recommendation storage unavailable", "user_id", userID, "error", err)
		}
		return appErr
	}
	logger.Get().Errorw("Recommendation request failed", "user_id", userID, "error", err)
	return apperrors.Wrap(apperrors.ErrInternalServer, err)
}

func cloneRecommendations(in []recommend.Recommendation) []recommend.Recommendation {
	out := make([]recommend.Recommendation, len(in))
	copy(out, in)
	return out
}

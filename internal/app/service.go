// Package service orchestrates daily rating runs over the repositories and
// serves the read side used by the HTTP API and the CLI.
package service

import (
	"context"
	"sync"
	"time"

	"github.com/okian/syaroho/internal/adapters/repository"
	"github.com/okian/syaroho/internal/domain/rating"
	"github.com/okian/syaroho/pkg/logger"
	"github.com/okian/syaroho/pkg/metrics"
)

const (
	defaultBootstrapExag = 1.5
	defaultPreviewSize   = 5
	defaultMaxLimit      = 100
)

// Service runs the rating engine against persisted snapshots and archived
// observations. Runs are serialised: the result of a day is the prior of
// the next one.
type Service struct {
	runMu sync.Mutex
	mu    sync.RWMutex

	ratings repository.RatingRepository
	source  repository.ObservationSource
	engine  *rating.Engine

	// Configuration
	loc           *time.Location
	bootstrapExag float64
	previewSize   int
	maxLimit      int
	now           func() time.Time

	// State
	runs    int
	failed  int
	lastRun *RunSummary

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithEngine sets the rating engine. The engine's location should match
// WithLocation.
func WithEngine(e *rating.Engine) Option {
	return func(s *Service) {
		if e != nil {
			s.engine = e
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithLocation sets the zone whose calendar days are rated.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithBootstrapExag sets the exaggeration of the first day of a bootstrap
// backfill.
func WithBootstrapExag(exag float64) Option {
	return func(s *Service) {
		if exag > 0 {
			s.bootstrapExag = exag
		}
	}
}

// WithPreviewSize sets the default number of preview entries.
func WithPreviewSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.previewSize = n
		}
	}
}

// WithMaxLeaderboardLimit caps the leaderboard page size.
func WithMaxLeaderboardLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxLimit = n
		}
	}
}

// WithClock replaces the wall clock used to pick the current day.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New constructs a Service over a rating repository and an observation
// source.
func New(ratings repository.RatingRepository, source repository.ObservationSource, opts ...Option) *Service {
	s := &Service{
		ratings:       ratings,
		source:        source,
		bootstrapExag: defaultBootstrapExag,
		previewSize:   defaultPreviewSize,
		maxLimit:      defaultMaxLimit,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	switch {
	case s.loc == nil && s.engine != nil:
		s.loc = s.engine.Params().Location
	case s.loc == nil:
		s.loc = rating.DefaultParams().Location
	}
	if s.engine == nil {
		s.engine = rating.New(rating.WithLocation(s.loc))
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	return s
}

// Today returns the current calendar day in the service location.
func (s *Service) Today() time.Time {
	return s.normalize(s.now())
}

// BootstrapExag returns the exaggeration applied by bootstrap backfills.
func (s *Service) BootstrapExag() float64 { return s.bootstrapExag }

func (s *Service) normalize(t time.Time) time.Time {
	y, m, d := t.In(s.loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, s.loc)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]any{
		"runs":                s.runs,
		"failedRuns":          s.failed,
		"timezone":            s.loc.String(),
		"previewSize":         s.previewSize,
		"maxLeaderboardLimit": s.maxLimit,
	}
	if s.lastRun != nil {
		stats["lastRunID"] = s.lastRun.RunID
		stats["lastDay"] = s.lastRun.Day.Format(time.DateOnly)
		stats["lastParticipants"] = s.lastRun.Admitted
		stats["players"] = s.lastRun.Players
		metrics.UpdatePlayers(s.lastRun.Players)
	}
	return stats
}

func (s *Service) track(ctx context.Context, op string, fn func() error) error {
	start := time.Now()
	err := fn()
	metrics.RecordRepositoryOperation(op, time.Since(start), err)
	if err != nil {
		s.logger.Debug(ctx, "repository operation failed", logger.String("operation", op), logger.Error(err))
	}
	return err
}

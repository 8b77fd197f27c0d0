package service

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/syaroho/internal/adapters/repository"
	"github.com/okian/syaroho/internal/domain/model"
	"github.com/okian/syaroho/internal/domain/standings"
)

// Leaderboard returns the best limit players of the latest snapshot. A limit
// of 0 returns everyone; any other limit must lie in [1, max].
func (s *Service) Leaderboard(ctx context.Context, limit int) (standings.Board, error) {
	if limit < 0 {
		return standings.Board{}, fmt.Errorf("%w: %d", ErrInvalidLimit, limit)
	}
	if limit > s.maxLimit {
		return standings.Board{}, fmt.Errorf("%w: %d > %d", ErrLimitExceeded, limit, s.maxLimit)
	}
	day, store, err := s.latest(ctx)
	if err != nil {
		return standings.Board{}, err
	}
	rows := standings.Summarize(store)
	lb := standings.Board{Day: day.Format(time.DateOnly), Total: len(rows), Rows: rows}
	if limit > 0 && limit < len(rows) {
		lb.Rows = rows[:limit]
	}
	return lb, nil
}

// Profile returns the standing of one player in the latest snapshot. An
// unknown handle matches both ErrPlayerNotFound and repository.ErrNotFound.
func (s *Service) Profile(ctx context.Context, handle string) (standings.Profile, error) {
	_, store, err := s.latest(ctx)
	if err != nil {
		return standings.Profile{}, err
	}
	p, ok := standings.Lookup(store, handle)
	if !ok {
		return standings.Profile{}, fmt.Errorf("%w: %q: %w", ErrPlayerNotFound, handle, repository.ErrNotFound)
	}
	return p, nil
}

// Results returns the persisted ranked results of day.
func (s *Service) Results(ctx context.Context, day time.Time) ([]model.DailyResult, error) {
	day = s.normalize(day)
	var out []model.DailyResult
	err := s.track(ctx, "load_results", func() error {
		var err error
		out, err = s.ratings.LoadResults(ctx, day)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("load results of %s: %w", day.Format(time.DateOnly), err)
	}
	return out, nil
}

// endOfTime bounds LatestRatingsDay when looking for the newest snapshot.
var endOfTime = time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC) //nolint:gochecknoglobals // constant instant

// latest loads the most recent snapshot.
func (s *Service) latest(ctx context.Context) (time.Time, model.RatingStore, error) {
	var day time.Time
	err := s.track(ctx, "latest_ratings_day", func() error {
		var err error
		day, err = s.ratings.LatestRatingsDay(ctx, endOfTime)
		return err
	})
	if err != nil {
		return time.Time{}, nil, fmt.Errorf("find latest snapshot: %w", err)
	}
	var store model.RatingStore
	err = s.track(ctx, "load_ratings", func() error {
		var err error
		store, err = s.ratings.LoadRatings(ctx, day)
		return err
	})
	if err != nil {
		return time.Time{}, nil, fmt.Errorf("load snapshot: %w", err)
	}
	return s.normalize(day), store, nil
}

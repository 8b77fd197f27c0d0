package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/okian/syaroho/internal/adapters/repository"
	"github.com/okian/syaroho/internal/domain/model"
	"github.com/okian/syaroho/internal/domain/rating"
	"github.com/okian/syaroho/pkg/logger"
	"github.com/okian/syaroho/pkg/metrics"
)

// RunSummary describes a finished daily run.
type RunSummary struct {
	RunID     string              `json:"run_id" yaml:"run_id"`
	Day       time.Time           `json:"day" yaml:"day"`
	Exag      float64             `json:"exag" yaml:"exag"`
	Bootstrap bool                `json:"bootstrap" yaml:"bootstrap"`
	Observed  int                 `json:"observed" yaml:"observed"`
	Admitted  int                 `json:"admitted" yaml:"admitted"`
	Late      int                 `json:"late" yaml:"late"`
	Players   int                 `json:"players" yaml:"players"`
	Duration  time.Duration       `json:"duration" yaml:"duration"`
	Results   []model.DailyResult `json:"results" yaml:"results"`
}

// RunDay rates day from the snapshot of the previous day and the archived
// fetches of day, then persists the results and the new snapshot.
//
// Without any earlier snapshot the day bootstraps from an empty store. A
// missing previous-day snapshot with an older one present fails with
// ErrMissingPriorDay.
func (s *Service) RunDay(ctx context.Context, day time.Time, exag float64) (RunSummary, error) {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	day = s.normalize(day)
	sum := RunSummary{RunID: uuid.NewString(), Day: day, Exag: exag}
	log := s.logger.With(logger.String("run_id", sum.RunID), logger.String("day", day.Format(time.DateOnly)))
	start := time.Now()

	err := s.runDay(ctx, log, &sum)
	sum.Duration = time.Since(start)

	s.mu.Lock()
	s.runs++
	if err != nil {
		s.failed++
	} else {
		last := sum
		s.lastRun = &last
	}
	s.mu.Unlock()

	if err != nil {
		metrics.RecordRun(metrics.ResultError, sum.Duration)
		metrics.RecordErrorByComponent("service", errorType(err))
		log.Error(ctx, "daily run failed", logger.Error(err), logger.Duration("duration", sum.Duration))
		return sum, err
	}

	result := metrics.ResultSuccess
	if sum.Admitted == 0 {
		result = metrics.ResultEmpty
	}
	metrics.RecordRun(result, sum.Duration)
	metrics.RecordDay(day, sum.Observed, sum.Admitted, sum.Late)
	metrics.UpdatePlayers(sum.Players)
	log.Info(ctx, "daily run finished",
		logger.Int("observed", sum.Observed),
		logger.Int("admitted", sum.Admitted),
		logger.Int("late", sum.Late),
		logger.Int("players", sum.Players),
		logger.Float64("exag", exag),
		logger.Duration("duration", sum.Duration),
	)
	return sum, nil
}

func (s *Service) runDay(ctx context.Context, log logger.Logger, sum *RunSummary) error {
	prior, bootstrap, err := s.loadPrior(ctx, sum.Day)
	if err != nil {
		return err
	}
	sum.Bootstrap = bootstrap
	if bootstrap {
		log.Info(ctx, "no earlier snapshot, starting from an empty store")
	}

	var primary, late []model.Observation
	err = s.track(ctx, "statuses", func() error {
		var err error
		primary, err = s.source.Statuses(ctx, sum.Day)
		return err
	})
	if err != nil {
		return fmt.Errorf("load statuses of %s: %w", sum.Day.Format(time.DateOnly), err)
	}
	err = s.track(ctx, "late_statuses", func() error {
		var err error
		late, err = s.source.LateStatuses(ctx, sum.Day)
		return err
	})
	switch {
	case errors.Is(err, repository.ErrNotFound):
		log.Warn(ctx, "no late-catch archive, rating the primary fetch only")
	case err != nil:
		return fmt.Errorf("load late statuses of %s: %w", sum.Day.Format(time.DateOnly), err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	out, err := s.engine.ComputeDaily(sum.Day, primary, late, prior, sum.Exag)
	if err != nil {
		return fmt.Errorf("compute %s: %w", sum.Day.Format(time.DateOnly), err)
	}
	sum.Observed = out.Observed
	sum.Admitted = out.Admitted
	sum.Late = out.Late
	sum.Players = len(out.Store)
	sum.Results = out.Results

	if err := s.track(ctx, "save_results", func() error {
		return s.ratings.SaveResults(ctx, sum.Day, out.Results)
	}); err != nil {
		return fmt.Errorf("save results: %w", err)
	}
	if err := s.track(ctx, "save_ratings", func() error {
		return s.ratings.SaveRatings(ctx, sum.Day, out.Store)
	}); err != nil {
		return fmt.Errorf("save ratings: %w", err)
	}
	return nil
}

// loadPrior returns the snapshot of the day before day. bootstrap reports
// that no snapshot exists before day at all.
func (s *Service) loadPrior(ctx context.Context, day time.Time) (model.RatingStore, bool, error) {
	prevDay := day.AddDate(0, 0, -1)
	var prior model.RatingStore
	err := s.track(ctx, "load_ratings", func() error {
		var err error
		prior, err = s.ratings.LoadRatings(ctx, prevDay)
		return err
	})
	if err == nil {
		return prior, false, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, false, fmt.Errorf("load ratings of %s: %w", prevDay.Format(time.DateOnly), err)
	}

	var older time.Time
	err = s.track(ctx, "latest_ratings_day", func() error {
		var err error
		older, err = s.ratings.LatestRatingsDay(ctx, prevDay)
		return err
	})
	switch {
	case err == nil:
		return nil, false, fmt.Errorf("%w: %s (latest snapshot %s)",
			ErrMissingPriorDay, prevDay.Format(time.DateOnly), older.In(s.loc).Format(time.DateOnly))
	case errors.Is(err, repository.ErrNotFound):
		return model.RatingStore{}, true, nil
	default:
		return nil, false, fmt.Errorf("find latest snapshot: %w", err)
	}
}

// Backfill rates every day from start to end inclusive, strictly in order.
// With bootstrap set the first day uses the bootstrap exaggeration. It stops
// at the first failing day and returns the summaries of the days before it.
func (s *Service) Backfill(ctx context.Context, start, end time.Time, bootstrap bool) ([]RunSummary, error) {
	start, end = s.normalize(start), s.normalize(end)
	if end.Before(start) {
		return nil, fmt.Errorf("%w: %s is before %s", ErrInvalidRange, end.Format(time.DateOnly), start.Format(time.DateOnly))
	}

	var out []RunSummary
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		exag := 1.0
		if bootstrap && d.Equal(start) {
			exag = s.bootstrapExag
		}
		sum, err := s.RunDay(ctx, d, exag)
		if err != nil {
			return out, fmt.Errorf("backfill %s: %w", d.Format(time.DateOnly), err)
		}
		out = append(out, sum)
	}
	return out, nil
}

// Preview ranks the late-catch fetch of day without rating it. n <= 0 uses
// the configured preview size.
func (s *Service) Preview(ctx context.Context, day time.Time, n int) ([]model.PreviewEntry, error) {
	if n <= 0 {
		n = s.previewSize
	}
	day = s.normalize(day)
	var obs []model.Observation
	err := s.track(ctx, "late_statuses", func() error {
		var err error
		obs, err = s.source.LateStatuses(ctx, day)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("load late statuses of %s: %w", day.Format(time.DateOnly), err)
	}
	return s.engine.Preview(day, obs, n)
}

func errorType(err error) string {
	switch {
	case errors.Is(err, ErrMissingPriorDay):
		return "missing_prior_day"
	case errors.Is(err, repository.ErrNotFound):
		return "not_found"
	case errors.Is(err, repository.ErrInvalidArchive):
		return "invalid_archive"
	case errors.Is(err, rating.ErrOutOfOrder):
		return "out_of_order"
	case errors.Is(err, rating.ErrInvalidInput), errors.Is(err, rating.ErrInvalidRecord):
		return "invalid_input"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "internal"
	}
}

// Package repository persists rating snapshots and daily results and reads the
// archived observations of a day.
package repository

import (
	"context"
	"time"

	"github.com/okian/syaroho/internal/domain/model"
)

// dayLayout names a day in file names and table keys.
const dayLayout = "20060102"

// RatingRepository stores one rating snapshot and one result list per day.
type RatingRepository interface {
	// LoadRatings returns the snapshot persisted for day.
	// Returns ErrNotFound if there is none.
	LoadRatings(ctx context.Context, day time.Time) (model.RatingStore, error)
	// SaveRatings persists the snapshot of day, replacing any previous one.
	SaveRatings(ctx context.Context, day time.Time, store model.RatingStore) error
	// LatestRatingsDay returns the most recent snapshot day strictly before
	// the given day. Returns ErrNotFound if there is none.
	LatestRatingsDay(ctx context.Context, before time.Time) (time.Time, error)

	// SaveResults persists the ranked results of day.
	SaveResults(ctx context.Context, day time.Time, results []model.DailyResult) error
	// LoadResults returns the ranked results of day.
	// Returns ErrNotFound if the day was never computed.
	LoadResults(ctx context.Context, day time.Time) ([]model.DailyResult, error)
}

// ObservationSource provides the archived fetches of a day.
type ObservationSource interface {
	// Statuses returns the primary fetch. Returns ErrNotFound if the day has
	// no archive.
	Statuses(ctx context.Context, day time.Time) ([]model.Observation, error)
	// LateStatuses returns the late-catch fetch. Returns ErrNotFound if the
	// day has no late-catch archive.
	LateStatuses(ctx context.Context, day time.Time) ([]model.Observation, error)
}

func dayKey(day time.Time, loc *time.Location) string {
	return day.In(loc).Format(dayLayout)
}

func parseDayKey(key string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(dayLayout, key, loc)
}

package service_test

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/okian/syaroho/internal/adapters/repository"
	"github.com/okian/syaroho/internal/domain/model"
	"github.com/okian/syaroho/internal/domain/rating"
	"github.com/okian/syaroho/internal/domain/snowflake"
)

var jst = time.FixedZone("JST", 9*60*60)

func day(d int) time.Time {
	return time.Date(2024, 1, d, 0, 0, 0, 0, jst)
}

func key(t time.Time) string { return t.In(jst).Format("20060102") }

// post builds a marker observation by handle offsetMS milliseconds after
// midnight of January d.
func post(handle string, d int, offsetMS int64) model.Observation {
	ms := day(d).UnixMilli() + offsetMS
	id := uint64(ms-snowflake.EpochMS) << 22
	return model.Observation{
		ID:     strconv.FormatUint(id, 10),
		Text:   rating.DefaultMarkerPhrase,
		Source: "Twitter for iPhone",
		Author: handle,
	}
}

// memRepo is an in-memory RatingRepository and ObservationSource.
type memRepo struct {
	mu       sync.Mutex
	ratings  map[string]model.RatingStore
	results  map[string][]model.DailyResult
	statuses map[string][]model.Observation
	late     map[string][]model.Observation
	saveErr  error
}

var (
	_ repository.RatingRepository  = (*memRepo)(nil)
	_ repository.ObservationSource = (*memRepo)(nil)
)

func newMemRepo() *memRepo {
	return &memRepo{
		ratings:  map[string]model.RatingStore{},
		results:  map[string][]model.DailyResult{},
		statuses: map[string][]model.Observation{},
		late:     map[string][]model.Observation{},
	}
}

func (m *memRepo) addStatuses(d int, obs ...model.Observation) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statuses[key(day(d))] = append(m.statuses[key(day(d))], obs...)
}

func (m *memRepo) addLate(d int, obs ...model.Observation) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.late[key(day(d))] = append(m.late[key(day(d))], obs...)
}

func (m *memRepo) LoadRatings(_ context.Context, d time.Time) (model.RatingStore, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.ratings[key(d)]
	if !ok {
		return nil, fmt.Errorf("%w: ratings %s", repository.ErrNotFound, key(d))
	}
	return s.Clone(), nil
}

func (m *memRepo) SaveRatings(_ context.Context, d time.Time, store model.RatingStore) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.ratings[key(d)] = store.Clone()
	return nil
}

func (m *memRepo) LatestRatingsDay(_ context.Context, before time.Time) (time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.ratings))
	for k := range m.ratings {
		if k < key(before) {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return time.Time{}, repository.ErrNotFound
	}
	sort.Strings(keys)
	return time.ParseInLocation("20060102", keys[len(keys)-1], jst)
}

func (m *memRepo) SaveResults(_ context.Context, d time.Time, results []model.DailyResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.results[key(d)] = append([]model.DailyResult{}, results...)
	return nil
}

func (m *memRepo) LoadResults(_ context.Context, d time.Time) ([]model.DailyResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.results[key(d)]
	if !ok {
		return nil, fmt.Errorf("%w: results %s", repository.ErrNotFound, key(d))
	}
	return r, nil
}

func (m *memRepo) Statuses(_ context.Context, d time.Time) ([]model.Observation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	obs, ok := m.statuses[key(d)]
	if !ok {
		return nil, fmt.Errorf("%w: statuses %s", repository.ErrNotFound, key(d))
	}
	return obs, nil
}

func (m *memRepo) LateStatuses(_ context.Context, d time.Time) ([]model.Observation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	obs, ok := m.late[key(d)]
	if !ok {
		return nil, fmt.Errorf("%w: late statuses %s", repository.ErrNotFound, key(d))
	}
	return obs, nil
}

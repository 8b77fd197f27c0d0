package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/okian/syaroho/internal/domain/model"
)

const (
	ratingsDir    = "rating_info"
	resultsDir    = "results"
	statusesDir   = "statuses"
	lateStatusDir = "statuses_dq"
	jsonExt       = ".json"
)

// FileStore keeps the archive as JSON files under a root directory:
//
//	rating_info/YYYYMMDD.json   rating snapshot after the day
//	results/YYYYMMDD.json       ranked daily results
//	statuses/YYYYMMDD*.json     primary fetch, every matching file merged
//	statuses_dq/YYYYMMDD.json   late-catch fetch
type FileStore struct {
	root string
	loc  *time.Location
}

// NewFileStore returns a FileStore rooted at dir. Directories are created
// on first write.
func NewFileStore(dir string, opts ...Option) *FileStore {
	o := applyOptions(opts)
	return &FileStore{root: dir, loc: o.loc}
}

// LoadRatings implements RatingRepository.
func (s *FileStore) LoadRatings(_ context.Context, day time.Time) (model.RatingStore, error) {
	store := model.RatingStore{}
	if err := s.readJSON(s.path(ratingsDir, dayKey(day, s.loc)), &store); err != nil {
		return nil, err
	}
	for handle, r := range store {
		if r == nil {
			return nil, fmt.Errorf("%w: null record for %q", ErrInvalidArchive, handle)
		}
	}
	return store, nil
}

// SaveRatings implements RatingRepository.
func (s *FileStore) SaveRatings(_ context.Context, day time.Time, store model.RatingStore) error {
	if store == nil {
		store = model.RatingStore{}
	}
	return s.writeJSON(s.path(ratingsDir, dayKey(day, s.loc)), store)
}

// LatestRatingsDay implements RatingRepository.
func (s *FileStore) LatestRatingsDay(_ context.Context, before time.Time) (time.Time, error) {
	entries, err := os.ReadDir(filepath.Join(s.root, ratingsDir))
	if errors.Is(err, fs.ErrNotExist) {
		return time.Time{}, ErrNotFound
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("list snapshots: %w", err)
	}
	limit := dayKey(before, s.loc)
	latest := ""
	for _, e := range entries {
		key, ok := strings.CutSuffix(e.Name(), jsonExt)
		if !ok || e.IsDir() || len(key) != len(dayLayout) {
			continue
		}
		if _, err := parseDayKey(key, s.loc); err != nil {
			continue
		}
		if key < limit && key > latest {
			latest = key
		}
	}
	if latest == "" {
		return time.Time{}, ErrNotFound
	}
	return parseDayKey(latest, s.loc)
}

// SaveResults implements RatingRepository.
func (s *FileStore) SaveResults(_ context.Context, day time.Time, results []model.DailyResult) error {
	if results == nil {
		results = []model.DailyResult{}
	}
	return s.writeJSON(s.path(resultsDir, dayKey(day, s.loc)), results)
}

// LoadResults implements RatingRepository.
func (s *FileStore) LoadResults(_ context.Context, day time.Time) ([]model.DailyResult, error) {
	var results []model.DailyResult
	if err := s.readJSON(s.path(resultsDir, dayKey(day, s.loc)), &results); err != nil {
		return nil, err
	}
	return results, nil
}

// Statuses implements ObservationSource.
func (s *FileStore) Statuses(_ context.Context, day time.Time) ([]model.Observation, error) {
	dir := filepath.Join(s.root, statusesDir)
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, dir)
	}
	if err != nil {
		return nil, fmt.Errorf("list statuses: %w", err)
	}

	prefix := dayKey(day, s.loc)
	names := make([]string, 0, 1)
	for _, e := range entries {
		if !e.IsDir() && strings.HasPrefix(e.Name(), prefix) && strings.HasSuffix(e.Name(), jsonExt) {
			names = append(names, e.Name())
		}
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: statuses of %s", ErrNotFound, prefix)
	}
	sort.Strings(names)

	var merged []status
	for _, name := range names {
		var archive primaryArchive
		if err := s.readJSON(filepath.Join(dir, name), &archive); err != nil {
			return nil, err
		}
		merged = append(merged, archive.Results...)
	}
	return observations(merged, s.loc)
}

// LateStatuses implements ObservationSource.
func (s *FileStore) LateStatuses(_ context.Context, day time.Time) ([]model.Observation, error) {
	var statuses []status
	if err := s.readJSON(s.path(lateStatusDir, dayKey(day, s.loc)), &statuses); err != nil {
		return nil, err
	}
	return observations(statuses, s.loc)
}

func (s *FileStore) path(dir, key string) string {
	return filepath.Join(s.root, dir, key+jsonExt)
}

func (s *FileStore) readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidArchive, path, err)
	}
	return nil
}

// writeJSON writes v with four-space indentation and unescaped non-ASCII
// text, replacing path atomically.
func (s *FileStore) writeJSON(path string, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // best effort after rename

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}

package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/okian/syaroho/internal/adapters/http/api"
	"github.com/okian/syaroho/internal/adapters/repository"
	"github.com/okian/syaroho/internal/domain/model"
	"github.com/okian/syaroho/internal/domain/standings"
	. "github.com/smartystreets/goconvey/convey"
)

var jst = time.FixedZone("JST", 9*60*60)

// mockDependencies records calls and returns canned data.
type mockDependencies struct {
	rows       []standings.Row
	boardErr   error
	lastLimit  int
	profiles   map[string]standings.Profile
	results    map[string][]model.DailyResult
	resultsErr error
	lastDay    time.Time
}

func (m *mockDependencies) Leaderboard(_ context.Context, limit int) (api.Board, error) {
	m.lastLimit = limit
	if m.boardErr != nil {
		return api.Board{}, m.boardErr
	}
	rows := m.rows
	if limit < len(rows) {
		rows = rows[:limit]
	}
	return api.Board{Day: "2024-01-02", Total: len(m.rows), Rows: rows}, nil
}

func (m *mockDependencies) Profile(_ context.Context, handle string) (api.Profile, error) {
	p, ok := m.profiles[handle]
	if !ok {
		return api.Profile{}, fmt.Errorf("player %q: %w", handle, repository.ErrNotFound)
	}
	return p, nil
}

func (m *mockDependencies) Results(_ context.Context, day time.Time) ([]api.Result, error) {
	m.lastDay = day
	if m.resultsErr != nil {
		return nil, m.resultsErr
	}
	r, ok := m.results[day.Format(time.DateOnly)]
	if !ok {
		return nil, fmt.Errorf("results: %w", repository.ErrNotFound)
	}
	return r, nil
}

type mockStatsProvider struct {
	stats map[string]any
}

func (m *mockStatsProvider) GetStats() map[string]any {
	return m.stats
}

func newDeps() *mockDependencies {
	return &mockDependencies{
		rows: []standings.Row{
			{Rank: 1, User: "bob", Rating: 936, Highest: 936, Match: 2, Win: 1, Best: "00:00:00.005", Class: "6級", Color: "#808000"},
			{Rank: 2, User: "alice", Rating: 839, Highest: 839, Match: 2, Win: 1, Best: "00:00:00.000", Class: "6級", Color: "#808000"},
		},
		profiles: map[string]standings.Profile{
			"alice": {Handle: "alice", Rating: 839, Highest: 839, Class: "6級", Rank: 2, Total: 2, Win: 1, Match: 2},
		},
		results: map[string][]model.DailyResult{
			"2024-01-02": {{Handle: "bob", Rank: 1, RankNormal: 1, Perf: 1913, Rating: "936", Change: "+719"}},
		},
	}
}

func serve(mux *http.ServeMux, method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, http.NoBody)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func decodeError(w *httptest.ResponseRecorder) map[string]string {
	var body map[string]string
	So(json.NewDecoder(w.Body).Decode(&body), ShouldBeNil)
	return body
}

func TestServer_Register(t *testing.T) {
	Convey("Given a new API server", t, func() {
		deps := newDeps()
		stats := &mockStatsProvider{stats: map[string]any{"runs": 3}}
		server := api.NewServer(deps, stats, api.WithMaxLimit(10), api.WithLocation(jst))
		mux := http.NewServeMux()
		server.Register(context.Background(), mux)

		Convey("Then health reports ok", func() {
			w := serve(mux, http.MethodGet, "/healthz")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"status":"ok"`)
		})

		Convey("Then metrics are exposed in Prometheus format", func() {
			serve(mux, http.MethodGet, "/healthz")
			w := serve(mux, http.MethodGet, "/metrics")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "syaroho_rating_http_requests_total")
		})

		Convey("Then stats come from the provider", func() {
			w := serve(mux, http.MethodGet, "/stats")
			So(w.Code, ShouldEqual, http.StatusOK)
			var body map[string]any
			So(json.NewDecoder(w.Body).Decode(&body), ShouldBeNil)
			So(body["runs"], ShouldEqual, 3.0)
		})

		Convey("Then unknown paths are not found", func() {
			w := serve(mux, http.MethodGet, "/unknown")
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestLeaderboardHandler(t *testing.T) {
	Convey("Given a leaderboard handler capped at 10", t, func() {
		deps := newDeps()
		mux := http.NewServeMux()
		api.NewServer(deps, &mockStatsProvider{}, api.WithMaxLimit(10)).Register(context.Background(), mux)

		Convey("When a limit is given", func() {
			w := serve(mux, http.MethodGet, "/leaderboard?limit=1")

			Convey("Then that many rows are returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var board api.Board
				So(json.NewDecoder(w.Body).Decode(&board), ShouldBeNil)
				So(board.Rows, ShouldHaveLength, 1)
				So(board.Rows[0].User, ShouldEqual, "bob")
				So(board.Total, ShouldEqual, 2)
				So(deps.lastLimit, ShouldEqual, 1)
			})
		})

		Convey("When no limit is given", func() {
			w := serve(mux, http.MethodGet, "/leaderboard")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(deps.lastLimit, ShouldEqual, 10)
			So(w.Body.String(), ShouldContainSubstring, "6級")
		})

		Convey("When the limit is invalid", func() {
			for _, q := range []string{"abc", "0", "-3"} {
				w := serve(mux, http.MethodGet, "/leaderboard?limit="+q)
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(decodeError(w)["code"], ShouldEqual, "bad_request")
			}
		})

		Convey("When the limit exceeds the cap", func() {
			w := serve(mux, http.MethodGet, "/leaderboard?limit=11")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(decodeError(w)["code"], ShouldEqual, "limit_exceeded")
		})

		Convey("When nothing has been rated yet", func() {
			deps.boardErr = fmt.Errorf("find latest snapshot: %w", repository.ErrNotFound)
			w := serve(mux, http.MethodGet, "/leaderboard?limit=5")
			So(w.Code, ShouldEqual, http.StatusNotFound)
			So(decodeError(w)["code"], ShouldEqual, "not_found")
		})

		Convey("When the dependency fails", func() {
			deps.boardErr = errors.New("database is locked")
			w := serve(mux, http.MethodGet, "/leaderboard?limit=5")
			So(w.Code, ShouldEqual, http.StatusInternalServerError)
			So(decodeError(w)["message"], ShouldContainSubstring, "database is locked")
		})

		Convey("When the method is not GET", func() {
			w := serve(mux, http.MethodPost, "/leaderboard?limit=5")
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestPlayerHandler(t *testing.T) {
	Convey("Given a player handler", t, func() {
		mux := http.NewServeMux()
		api.NewServer(newDeps(), &mockStatsProvider{}).Register(context.Background(), mux)

		Convey("When a known player is requested", func() {
			w := serve(mux, http.MethodGet, "/players/alice")

			Convey("Then the profile is returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var p api.Profile
				So(json.NewDecoder(w.Body).Decode(&p), ShouldBeNil)
				So(p.Handle, ShouldEqual, "alice")
				So(p.Rank, ShouldEqual, 2)
			})
		})

		Convey("When an unknown player is requested", func() {
			w := serve(mux, http.MethodGet, "/players/nobody")
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("When the handle is missing or nested", func() {
			So(serve(mux, http.MethodGet, "/players/").Code, ShouldEqual, http.StatusBadRequest)
			So(serve(mux, http.MethodGet, "/players/a/b").Code, ShouldEqual, http.StatusBadRequest)
		})
	})
}

func TestResultsHandler(t *testing.T) {
	Convey("Given a results handler in JST", t, func() {
		deps := newDeps()
		mux := http.NewServeMux()
		api.NewServer(deps, &mockStatsProvider{}, api.WithLocation(jst)).Register(context.Background(), mux)

		Convey("When a rated day is requested", func() {
			w := serve(mux, http.MethodGet, "/results/2024-01-02")

			Convey("Then its results are returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var res []api.Result
				So(json.NewDecoder(w.Body).Decode(&res), ShouldBeNil)
				So(res, ShouldHaveLength, 1)
				So(res[0].Change, ShouldEqual, "+719")
				So(deps.lastDay.Location(), ShouldEqual, jst)
			})
		})

		Convey("When an unrated day is requested", func() {
			w := serve(mux, http.MethodGet, "/results/2024-02-01")
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("When the date is malformed", func() {
			for _, d := range []string{"20240102", "2024-13-01", "", "2024-01-02/x"} {
				w := serve(mux, http.MethodGet, "/results/"+d)
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(strings.Contains(decodeError(w)["message"], "YYYY-MM-DD"), ShouldBeTrue)
			}
		})
	})
}

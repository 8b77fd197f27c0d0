package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/okian/syaroho/internal/adapters/repository"
	service "github.com/okian/syaroho/internal/app"
	"github.com/okian/syaroho/internal/config"
	"github.com/okian/syaroho/internal/domain/rating"
	"github.com/okian/syaroho/pkg/logger"
)

// dayLayouts are accepted for DATE arguments.
var dayLayouts = []string{time.DateOnly, "20060102"} //nolint:gochecknoglobals // read-only

// runtime is the service wired from a Config.
type runtime struct {
	svc   *service.Service
	loc   *time.Location
	close func() error
}

func open(cfg *config.Config) (*runtime, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	engine := rating.New(
		rating.WithLocation(loc),
		rating.WithMarkerPhrase(cfg.MarkerPhrase),
		rating.WithInvalidSources(cfg.InvalidClients),
		rating.WithLateCatchWindow(cfg.LateCatchWindow()),
	)

	files := repository.NewFileStore(cfg.DataDir, repository.WithLocation(loc))
	var ratings repository.RatingRepository = files
	closeFn := func() error { return nil }
	if cfg.Storage == config.StorageSQLite {
		if err := os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
		db, err := repository.OpenSQLite(cfg.SQLitePath, repository.WithLocation(loc))
		if err != nil {
			return nil, err
		}
		ratings = db
		closeFn = db.Close
	}

	svc := service.New(ratings, files,
		service.WithEngine(engine),
		service.WithLocation(loc),
		service.WithLogger(logger.Named("service")),
		service.WithBootstrapExag(cfg.BootstrapExag),
		service.WithPreviewSize(cfg.PreviewSize),
		service.WithMaxLeaderboardLimit(cfg.MaxLeaderboardLimit),
	)
	return &runtime{svc: svc, loc: loc, close: closeFn}, nil
}

// openRuntime wraps open with the CLI exit code for setup failures.
func (o *RootOptions) openRuntime() (*runtime, error) {
	rt, err := open(o.Config)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open storage", err)
	}
	return rt, nil
}

// parseDay reads a DATE argument in loc.
func parseDay(s string, loc *time.Location) (time.Time, error) {
	for _, layout := range dayLayouts {
		if d, err := time.ParseInLocation(layout, s, loc); err == nil {
			return d, nil
		}
	}
	return time.Time{}, NewExitError(ExitCommandError, fmt.Sprintf("invalid date %q: want YYYY-MM-DD or YYYYMMDD", s))
}

// dayArg returns the optional DATE argument, or today.
func (rt *runtime) dayArg(args []string) (time.Time, error) {
	if len(args) == 0 {
		return rt.svc.Today(), nil
	}
	return parseDay(args[0], rt.loc)
}

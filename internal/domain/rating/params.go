// Package rating turns a day's observations and the prior rating store into
// ranked daily results and an updated rating store.
//
// The computation is pure and synchronous. Days must be computed in order:
// each day's store is the input of the next.
package rating

import (
	"time"
)

// Defaults of the competition and the rating model.
const (
	DefaultMarkerPhrase    = "しゃろほー"
	DefaultLateCatchWindow = 60 * time.Second

	defaultOnTimeBonus  = 1000.0
	defaultInitialPerf  = 1600.0
	defaultDecay        = 0.9
	defaultLogisticBase = 6.0
	defaultLogisticSpan = 400.0
	defaultSearchMin    = -10000.0
	defaultSearchMax    = 10000.0
	defaultTolerance    = 0.01
	defaultGeoSpan      = 800.0
	defaultPenaltyMax   = 1200.0
	defaultFloorRate    = 400.0
)

// DefaultInvalidSources lists posting clients whose entries never count.
var DefaultInvalidSources = []string{ //nolint:gochecknoglobals // read-only default
	"twittbot.net",
	"IFTTT",
	"Botbird tweets",
}

// Params holds every constant the engine depends on.
type Params struct {
	MarkerPhrase    string
	InvalidSources  []string
	Location        *time.Location
	LateCatchWindow time.Duration

	// OnTimeBonus is added to the score of entries at or after the target.
	OnTimeBonus float64
	// InitialPerf is the expected strength of a participant without history.
	InitialPerf float64
	// Decay weights past performances; age 1 is the most recent.
	Decay float64
	// LogisticBase and LogisticSpan define the pairwise win model
	// 1 / (1 + base^((x - a) / span)).
	LogisticBase float64
	LogisticSpan float64
	// SearchMin, SearchMax and Tolerance bound the bisection.
	SearchMin float64
	SearchMax float64
	Tolerance float64
	// GeoSpan is the scale of the geometric mean behind the inner rate.
	GeoSpan float64
	// PenaltyMax is the small-sample penalty after a single attendance.
	PenaltyMax float64
	// FloorRate is where the displayed rate switches to exponential compression.
	FloorRate float64
}

// DefaultParams returns the production parameters in the Asia/Tokyo timezone.
// If the timezone database is unavailable a fixed +09:00 zone is used.
func DefaultParams() Params {
	loc, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		loc = time.FixedZone("JST", 9*60*60)
	}
	return Params{
		MarkerPhrase:    DefaultMarkerPhrase,
		InvalidSources:  append([]string{}, DefaultInvalidSources...),
		Location:        loc,
		LateCatchWindow: DefaultLateCatchWindow,
		OnTimeBonus:     defaultOnTimeBonus,
		InitialPerf:     defaultInitialPerf,
		Decay:           defaultDecay,
		LogisticBase:    defaultLogisticBase,
		LogisticSpan:    defaultLogisticSpan,
		SearchMin:       defaultSearchMin,
		SearchMax:       defaultSearchMax,
		Tolerance:       defaultTolerance,
		GeoSpan:         defaultGeoSpan,
		PenaltyMax:      defaultPenaltyMax,
		FloorRate:       defaultFloorRate,
	}
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithMarkerPhrase sets the exact text an entry must have.
func WithMarkerPhrase(phrase string) Option {
	return func(e *Engine) {
		if phrase != "" {
			e.params.MarkerPhrase = phrase
		}
	}
}

// WithInvalidSources replaces the denylist of posting clients.
func WithInvalidSources(sources []string) Option {
	return func(e *Engine) {
		if sources != nil {
			e.params.InvalidSources = append([]string{}, sources...)
		}
	}
}

// WithLocation sets the competition timezone.
func WithLocation(loc *time.Location) Option {
	return func(e *Engine) {
		if loc != nil {
			e.params.Location = loc
		}
	}
}

// WithLateCatchWindow bounds how far from the target a late-catch entry may be.
func WithLateCatchWindow(window time.Duration) Option {
	return func(e *Engine) {
		if window > 0 {
			e.params.LateCatchWindow = window
		}
	}
}

// WithParams replaces all parameters at once.
func WithParams(p Params) Option {
	return func(e *Engine) {
		e.params = p
	}
}

// Engine computes daily results. It holds no state besides its parameters
// and is safe for concurrent use.
type Engine struct {
	params  Params
	invalid map[string]struct{}
}

// New creates an Engine with DefaultParams adjusted by opts.
func New(opts ...Option) *Engine {
	e := &Engine{params: DefaultParams()}
	for _, opt := range opts {
		opt(e)
	}
	e.invalid = make(map[string]struct{}, len(e.params.InvalidSources))
	for _, s := range e.params.InvalidSources {
		e.invalid[s] = struct{}{}
	}
	return e
}

// Params returns a copy of the engine parameters.
func (e *Engine) Params() Params {
	p := e.params
	p.InvalidSources = append([]string{}, e.params.InvalidSources...)
	return p
}

// TargetInstant returns civil midnight of day in the competition timezone.
func (e *Engine) TargetInstant(day time.Time) time.Time {
	d := day.In(e.params.Location)
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, e.params.Location)
}

package repository

import "time"

type options struct {
	loc *time.Location
}

func defaultOptions() options {
	loc, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		loc = time.FixedZone("JST", 9*60*60)
	}
	return options{loc: loc}
}

// Option applies a configuration option to a FileStore or SQLiteStore.
type Option func(*options)

// WithLocation sets the timezone in which days are named.
func WithLocation(loc *time.Location) Option {
	return func(o *options) {
		if loc != nil {
			o.loc = loc
		}
	}
}

func applyOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

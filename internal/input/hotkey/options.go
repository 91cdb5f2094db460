package hotkey

import (
	"time"

	"go.uber.org/zap"
)

// DefaultIndicatorDuration is how long a matched combination stays active.
const DefaultIndicatorDuration = 500 * time.Millisecond

type options struct {
	indicatorDuration time.Duration
	ignore            IgnoreFunc
	logger            *zap.Logger
}

func defaultOptions() options {
	return options{
		indicatorDuration: DefaultIndicatorDuration,
		ignore:            DefaultIgnore(),
		logger:            zap.NewNop(),
	}
}

func buildOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Option configures a Tracker, Matcher or Hotkeys.
type Option func(*options)

// WithIndicatorDuration sets how long the active indicator is shown.
func WithIndicatorDuration(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.indicatorDuration = d
		}
	}
}

// WithIgnore sets the predicate deciding which key-downs to ignore.
// A nil predicate processes every key-down.
func WithIgnore(fn IgnoreFunc) Option {
	return func(o *options) {
		if fn == nil {
			fn = NeverIgnore
		}
		o.ignore = fn
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

package session

import "time"

// Option customises a Session.
type Option func(*Session)

// WithLogger routes session logs to logger.
func WithLogger(logger Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics records operation outcomes with rec.
func WithMetrics(rec MetricsRecorder) Option {
	return func(s *Session) {
		if rec != nil {
			s.metrics = rec
		}
	}
}

// WithTracer wraps network calls in spans from tracer.
func WithTracer(tracer Tracer) Option {
	return func(s *Session) {
		if tracer != nil {
			s.tracer = tracer
		}
	}
}

// WithClock overrides the time source used for temporary ids and timings.
func WithClock(clock Clock) Option {
	return func(s *Session) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithLocation sets the time zone used to render view dates. Defaults to UTC.
func WithLocation(loc *time.Location) Option {
	return func(s *Session) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithoutServerEcho stages adds locally under a temporary id instead of asking
// the backend to allocate one first.
func WithoutServerEcho() Option {
	return func(s *Session) {
		s.serverEcho = false
	}
}

// WithDiffMode sets the initial diff mode used by Load.
func WithDiffMode(enabled bool) Option {
	return func(s *Session) {
		s.diffMode = enabled
	}
}

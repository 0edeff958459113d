package hprof

import "github.com/rs/zerolog"

type Option func(*Profiler)

// WithClock replaces the monotonic clock, mostly for tests.
func WithClock(c Clock) Option {
	return func(p *Profiler) {
		p.clock = c
	}
}

// WithMisusePolicy sets how misuse is handled. MisusePanic is the default.
func WithMisusePolicy(m MisusePolicy) Option {
	return func(p *Profiler) {
		p.policy = m
	}
}

// WithMisuseHook registers a function called with every misuse error before
// the policy is applied.
func WithMisuseHook(fn func(error)) Option {
	return func(p *Profiler) {
		p.hook = fn
	}
}

// WithLogger sets the logger used by MisuseLog. The global zerolog logger is
// used otherwise.
func WithLogger(l zerolog.Logger) Option {
	return func(p *Profiler) {
		p.logger = &l
	}
}

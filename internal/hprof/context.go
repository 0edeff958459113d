package hprof

import "context"

type contextKey struct{}

// NewContext returns a copy of ctx carrying p, so code deep in a call chain
// can open regions on the profiler of the goroutine running it.
func NewContext(ctx context.Context, p *Profiler) context.Context {
	return context.WithValue(ctx, contextKey{}, p)
}

// FromContext returns the profiler carried by ctx, or nil.
func FromContext(ctx context.Context) *Profiler {
	p, _ := ctx.Value(contextKey{}).(*Profiler)
	return p
}

// Enter opens the region name on the profiler carried by ctx. Without one it
// returns a Guard that does nothing.
func Enter(ctx context.Context, name string) Guard {
	p := FromContext(ctx)
	if p == nil {
		return Guard{}
	}
	return p.Enter(name)
}

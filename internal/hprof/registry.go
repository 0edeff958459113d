package hprof

import "sync"

// Registry hands out one Profiler per label, typically one per goroutine or
// subsystem. It only guards its own map: each Profiler still belongs to the
// goroutine using it.
type Registry struct {
	mu        sync.Mutex
	opts      []Option
	profilers map[string]*Profiler
	order     []string
}

// NewRegistry returns a Registry creating its profilers with opts.
func NewRegistry(opts ...Option) *Registry {
	return &Registry{
		opts:      opts,
		profilers: make(map[string]*Profiler),
	}
}

// Get returns the profiler for label, creating it on first use.
func (r *Registry) Get(label string) *Profiler {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.profilers[label]; ok {
		return p
	}
	p := New(label, r.opts...)
	r.profilers[label] = p
	r.order = append(r.order, label)
	return p
}

// Lookup returns the profiler for label if it exists.
func (r *Registry) Lookup(label string) (*Profiler, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profilers[label]
	return p, ok
}

// Profilers returns every profiler in creation order.
func (r *Registry) Profilers() []*Profiler {
	r.mu.Lock()
	defer r.mu.Unlock()
	profilers := make([]*Profiler, 0, len(r.order))
	for _, label := range r.order {
		profilers = append(profilers, r.profilers[label])
	}
	return profilers
}

// Reports returns the last completed frame of every profiler that completed
// one, in creation order.
func (r *Registry) Reports() []*Report {
	var reports []*Report
	for _, p := range r.Profilers() {
		report, err := p.Report()
		if err != nil {
			continue
		}
		reports = append(reports, report)
	}
	return reports
}

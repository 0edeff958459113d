package hprof

import (
	"io"
	"sync/atomic"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type (
	// Profiler accumulates the region tree of one thread of execution, one
	// frame at a time. It is meant to be owned by a single goroutine: only
	// LastFrame, Report, PrintTiming, Frames and Label may be called from
	// other goroutines.
	Profiler struct {
		label  string
		clock  Clock
		policy MisusePolicy
		hook   func(error)
		logger *zerolog.Logger

		enabled      bool
		current      *Node
		frameStartNS uint64
		stack        frameStack
		frames       uint64

		last atomic.Pointer[snapshot]
	}

	snapshot struct {
		root  *Node
		frame uint64
	}
)

// New returns a Profiler whose reports are labelled with label. A frame is
// open from the start, StartFrame only needs to be called to begin the
// following ones.
func New(label string, opts ...Option) *Profiler {
	p := &Profiler{
		label:   label,
		enabled: true,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.clock == nil {
		p.clock = NewMonotonicClock()
	}
	p.resetFrame(p.clock.Now())
	return p
}

// Label returns the name reports are labelled with.
func (p *Profiler) Label() string {
	return p.label
}

// Enter opens the region name under the innermost open region and returns a
// guard closing it. The usual form is:
//
//	defer p.Enter("physics").Leave()
func (p *Profiler) Enter(name string) Guard {
	return Guard{p: p, id: p.enter(name)}
}

// EnterNoGuard opens the region name. The caller must pair it with Leave.
func (p *Profiler) EnterNoGuard(name string) {
	p.enter(name)
}

func (p *Profiler) enter(name string) uint64 {
	if !p.enabled {
		return 0
	}
	parent := p.current
	if top, ok := p.stack.top(); ok {
		parent = top.node
	}
	n := parent.child(name)
	n.calls++
	return p.stack.push(n, p.clock.Now())
}

// Leave closes the innermost open region. If that region was opened by Enter,
// its guard is detached and will not close anything.
func (p *Profiler) Leave() error {
	if !p.enabled {
		return nil
	}
	if p.stack.len() == 0 {
		return p.misuse(errors.Wrapf(ErrUnbalancedLeave, "profiler %q: leave with no open region", p.label))
	}
	p.leave()
	return nil
}

func (p *Profiler) leave() {
	now := p.clock.Now()
	e, _ := p.stack.pop()
	e.node.durationNS += elapsed(e.startNS, now)
}

func (p *Profiler) leaveGuard(id uint64) error {
	if !p.enabled {
		return nil
	}
	i := p.stack.find(id)
	if i < 0 {
		return nil
	}
	if i != p.stack.len()-1 {
		top, _ := p.stack.top()
		return p.misuse(errors.Wrapf(
			ErrUnbalancedLeave,
			"profiler %q: closing %q while %q is still open",
			p.label, p.stack.entries[i].node.name, top.node.name,
		))
	}
	p.leave()
	return nil
}

// Time runs fn inside the region name. The region is closed however fn
// exits, panics included.
func (p *Profiler) Time(name string, fn func() error) error {
	defer p.Enter(name).Leave()
	return fn()
}

// Depth returns the number of open regions.
func (p *Profiler) Depth() int {
	return p.stack.len()
}

// StartFrame discards the frame being built and starts a new one. It is a
// misuse to call it with regions still open.
func (p *Profiler) StartFrame() error {
	if !p.enabled {
		return nil
	}
	if p.stack.len() > 0 {
		if err := p.misuse(p.openRegionsError("start frame")); err != nil {
			return err
		}
	}
	p.resetFrame(p.clock.Now())
	return nil
}

// EndFrame completes the frame being built, makes it the snapshot reported
// by Report and starts the next frame. It is a misuse to call it with
// regions still open, in which case the previous snapshot is kept.
func (p *Profiler) EndFrame() error {
	if !p.enabled {
		return nil
	}
	if p.stack.len() > 0 {
		return p.misuse(p.openRegionsError("end frame"))
	}
	now := p.clock.Now()
	p.current.durationNS = elapsed(p.frameStartNS, now)
	p.frames++
	p.last.Store(&snapshot{root: p.current, frame: p.frames})
	p.resetFrame(now)
	return nil
}

func (p *Profiler) resetFrame(now uint64) {
	p.current = newNode(p.label)
	p.current.calls = 1
	p.frameStartNS = now
	p.stack.reset()
}

func (p *Profiler) openRegionsError(op string) error {
	top, _ := p.stack.top()
	return errors.Wrapf(
		ErrFrameBoundary,
		"profiler %q: %s with %d open regions, innermost %q",
		p.label, op, p.stack.len(), top.node.name,
	)
}

func (p *Profiler) misuse(err error) error {
	if p.hook != nil {
		p.hook(err)
	}
	switch p.policy {
	case MisuseReturn:
		return err
	case MisuseLog:
		logger := log.Logger
		if p.logger != nil {
			logger = *p.logger
		}
		logger.Error().Err(err).Str("profiler", p.label).Msg("profiler misuse")
		return nil
	default:
		panic(err)
	}
}

// Enable makes every call take effect again after Disable.
func (p *Profiler) Enable() {
	p.enabled = true
}

// Disable turns every call into a no-op until Enable. Switch between frames,
// switching with regions open leaves them open.
func (p *Profiler) Disable() {
	p.enabled = false
}

// Toggle flips between Enable and Disable.
func (p *Profiler) Toggle() {
	p.enabled = !p.enabled
}

// Enabled reports whether calls currently take effect.
func (p *Profiler) Enabled() bool {
	return p.enabled
}

// LastFrame returns the root of the most recently completed frame and its
// sequence number, starting at 1.
func (p *Profiler) LastFrame() (*Node, uint64, bool) {
	s := p.last.Load()
	if s == nil {
		return nil, 0, false
	}
	return s.root, s.frame, true
}

// Frames returns the number of completed frames.
func (p *Profiler) Frames() uint64 {
	_, frame, _ := p.LastFrame()
	return frame
}

// Report builds the report of the most recently completed frame. It returns
// ErrNoCompletedFrame until EndFrame has succeeded once.
func (p *Profiler) Report() (*Report, error) {
	root, frame, ok := p.LastFrame()
	if !ok {
		return nil, ErrNoCompletedFrame
	}
	return NewReport(p.label, frame, root), nil
}

// PrintTiming writes the text report of the most recently completed frame.
func (p *Profiler) PrintTiming(w io.Writer) error {
	r, err := p.Report()
	if err != nil {
		return err
	}
	return r.WriteText(w)
}

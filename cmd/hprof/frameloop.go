package main

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/getsentry/hprof/internal/hprof"
	"github.com/getsentry/hprof/internal/sink"
)

// worker runs a simulated real-time loop on its own profiler. Every region
// sleeps a multiple of unit.
type worker struct {
	profiler *hprof.Profiler
	config   WorkloadConfig
	records  chan<- sink.FrameRecord
	sleep    func(time.Duration)
}

func (w *worker) run(ctx context.Context) {
	ticker := time.NewTicker(w.config.FrameInterval)
	defer ticker.Stop()

	for frame := 1; w.config.Frames == 0 || frame <= w.config.Frames; frame++ {
		if err := w.profiler.StartFrame(); err != nil {
			log.Error().Err(err).Str("profiler", w.profiler.Label()).Msg("can't start frame")
			return
		}
		w.simulateFrame(hprof.NewContext(ctx, w.profiler))
		if err := w.profiler.EndFrame(); err != nil {
			log.Error().Err(err).Str("profiler", w.profiler.Label()).Msg("can't end frame")
			return
		}
		if w.config.PrintEvery > 0 && frame%w.config.PrintEvery == 0 {
			w.publish()
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (w *worker) publish() {
	report, err := w.profiler.Report()
	if err != nil {
		return
	}
	select {
	case w.records <- sink.NewFrameRecord(report, time.Now()):
	default:
		log.Warn().Str("profiler", w.profiler.Label()).Uint64("frame", report.Frame).Msg("publisher is behind, dropping frame")
	}
}

func (w *worker) simulateFrame(ctx context.Context) {
	p := w.profiler
	unit := w.config.WorkUnit

	p.EnterNoGuard("setup")
	w.sleep(unit)
	_ = p.Leave()

	w.physics()

	_ = p.Time("render", func() error {
		w.render(ctx)
		return nil
	})
}

func (w *worker) physics() {
	p := w.profiler
	defer p.Enter("physics").Leave()

	g := p.Enter("collision")
	w.sleep(w.config.WorkUnit)
	_ = g.Leave()

	g = p.Enter("update positions")
	w.sleep(w.config.WorkUnit)
	_ = g.Leave()
}

func (w *worker) render(ctx context.Context) {
	for _, step := range []struct {
		name  string
		units time.Duration
	}{
		{"cull", 1},
		{"gpu submit", 2},
		{"gpu wait", 10},
	} {
		g := hprof.Enter(ctx, step.name)
		w.sleep(step.units * w.config.WorkUnit)
		_ = g.Leave()
	}
}

// publisher drains frame records into the sinks until records is closed.
func publisher(records <-chan sink.FrameRecord, s sink.Sink, done chan<- struct{}) {
	defer close(done)
	for r := range records {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := s.Publish(ctx, r); err != nil {
			log.Err(err).Str("profiler", r.Profiler).Uint64("frame", r.Frame).Msg("can't publish frame")
		}
		cancel()
	}
}

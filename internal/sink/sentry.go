package sink

import (
	"context"
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
)

// Sentry reports frames taking longer than Budget as warning events carrying
// the frame's timing report.
type Sentry struct {
	Hub    *sentry.Hub
	Budget time.Duration
}

func (s Sentry) Publish(_ context.Context, r FrameRecord) error {
	duration := time.Duration(r.Report.DurationNS)
	if duration <= s.Budget {
		return nil
	}
	event := sentry.NewEvent()
	event.Level = sentry.LevelWarning
	event.Message = fmt.Sprintf("slow frame: %s frame %d took %s (budget %s)", r.Profiler, r.Frame, duration, s.Budget)
	event.Tags = map[string]string{
		"profiler": r.Profiler,
	}
	event.Contexts = map[string]sentry.Context{
		"frame": {
			"id":          r.ID,
			"frame":       r.Frame,
			"duration_ns": r.Report.DurationNS,
			"timing":      r.Report.Text(),
		},
	}
	event.Timestamp = r.Timestamp
	s.Hub.CaptureEvent(event)
	return nil
}

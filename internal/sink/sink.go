package sink

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"github.com/getsentry/hprof/internal/hprof"
)

type (
	// FrameRecord is a completed frame report as it leaves the process.
	FrameRecord struct {
		ID        string        `json:"id"`
		Profiler  string        `json:"profiler"`
		Frame     uint64        `json:"frame"`
		Timestamp time.Time     `json:"timestamp"`
		Report    *hprof.Report `json:"report"`
	}

	// Sink is a destination for frame records.
	Sink interface {
		Publish(ctx context.Context, r FrameRecord) error
	}

	// Multi publishes to every sink and combines their errors.
	Multi []Sink
)

func NewFrameRecord(r *hprof.Report, now time.Time) FrameRecord {
	return FrameRecord{
		ID:        uuid.New().String(),
		Profiler:  r.Label,
		Frame:     r.Frame,
		Timestamp: now.UTC(),
		Report:    r,
	}
}

func (m Multi) Publish(ctx context.Context, r FrameRecord) error {
	var err error
	for _, s := range m {
		err = errors.CombineErrors(err, s.Publish(ctx, r))
	}
	return err
}

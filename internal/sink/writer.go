package sink

import (
	"context"
	"io"
	"sync"
)

// Writer prints frame records in the print_timing text format.
type Writer struct {
	mu sync.Mutex
	w  io.Writer
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

func (s *Writer) Publish(_ context.Context, r FrameRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return r.Report.WriteText(s.w)
}

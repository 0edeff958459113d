package hprof

import (
	"github.com/cockroachdb/errors"
)

var (
	// ErrUnbalancedLeave is a misuse: a region was closed while none was
	// open, or a guard was closed while a region nested inside it was still
	// open.
	ErrUnbalancedLeave = errors.New("unbalanced leave")
	// ErrFrameBoundary is a misuse: a frame was started or ended while a
	// region was still open.
	ErrFrameBoundary = errors.New("frame boundary violation")
	// ErrNoCompletedFrame is returned when a report is requested before any
	// frame has ended. It is expected and recoverable.
	ErrNoCompletedFrame = errors.New("no completed frame")
)

// MisusePolicy decides what a Profiler does when its caller breaks the
// enter/leave or frame protocol.
type MisusePolicy int

const (
	// MisusePanic panics with the misuse error.
	MisusePanic MisusePolicy = iota
	// MisuseReturn returns the misuse error and leaves the profiler untouched.
	MisuseReturn
	// MisuseLog logs the misuse error and carries on: StartFrame still resets
	// the frame, EndFrame keeps the previous snapshot and Leave does nothing.
	MisuseLog
)

var misusePolicyNames = map[MisusePolicy]string{
	MisusePanic:  "panic",
	MisuseReturn: "return",
	MisuseLog:    "log",
}

func (m MisusePolicy) String() string {
	if s, ok := misusePolicyNames[m]; ok {
		return s
	}
	return "unknown"
}

// ParseMisusePolicy parses the names returned by MisusePolicy.String.
func ParseMisusePolicy(s string) (MisusePolicy, error) {
	for m, name := range misusePolicyNames {
		if name == s {
			return m, nil
		}
	}
	return MisusePanic, errors.Newf("unknown misuse policy %q", s)
}

// IsMisuse reports whether err is a protocol violation by the caller.
func IsMisuse(err error) bool {
	return errors.Is(err, ErrUnbalancedLeave) || errors.Is(err, ErrFrameBoundary)
}

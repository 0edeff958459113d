package testutil

import (
	"math"

	"github.com/google/go-cmp/cmp"
)

var (
	alwaysEqual       = cmp.Comparer(func(_, _ interface{}) bool { return true })
	defaultCmpOptions = []cmp.Option{
		// NaNs compare equal
		cmp.FilterValues(func(x, y float64) bool {
			return math.IsNaN(x) && math.IsNaN(y)
		}, alwaysEqual),
		cmp.FilterValues(func(x, y float32) bool {
			return math.IsNaN(float64(x)) && math.IsNaN(float64(y))
		}, alwaysEqual),
	}
)

func Diff(a, b interface{}, opts ...cmp.Option) string {
	opts = append(opts, defaultCmpOptions...)
	return cmp.Diff(a, b, opts...)
}

// ManualClock is a clock only moving when told to. It satisfies hprof.Clock.
type ManualClock struct {
	NowNS uint64
}

func (c *ManualClock) Now() uint64 {
	return c.NowNS
}

func (c *ManualClock) Advance(ns uint64) {
	c.NowNS += ns
}

package hprof

import "time"

// Clock supplies monotonic timestamps in nanoseconds. Readings are only ever
// subtracted from each other, they carry no wall-clock meaning.
type Clock interface {
	Now() uint64
}

type monotonicClock struct {
	base time.Time
}

// NewMonotonicClock returns a Clock backed by the runtime's monotonic clock.
func NewMonotonicClock() Clock {
	return monotonicClock{base: time.Now()}
}

func (c monotonicClock) Now() uint64 {
	return uint64(time.Since(c.base))
}

func elapsed(start, end uint64) uint64 {
	if end < start {
		return 0
	}
	return end - start
}

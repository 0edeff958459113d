package logutil

import (
	"time"

	"github.com/rs/zerolog"
)

// LevelSampler drops events below Level. Warnings and below are further
// limited to Burst per Period when Burst is set, since a frame loop can emit
// the same warning every frame.
type LevelSampler struct {
	Level zerolog.Level

	burst *zerolog.BurstSampler
}

func NewLevelSampler(level zerolog.Level, burst uint32, period time.Duration) *LevelSampler {
	s := &LevelSampler{Level: level}
	if burst > 0 {
		s.burst = &zerolog.BurstSampler{Burst: burst, Period: period}
	}
	return s
}

func (l *LevelSampler) Sample(lvl zerolog.Level) bool {
	if lvl < l.Level {
		return false
	}
	if l.burst != nil && lvl <= zerolog.WarnLevel {
		return l.burst.Sample(lvl)
	}
	return true
}

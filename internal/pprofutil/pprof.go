package pprofutil

import (
	"github.com/google/pprof/profile"

	"github.com/getsentry/hprof/internal/hprof"
)

type builder struct {
	p         *profile.Profile
	locations map[string]*profile.Location
}

// FromReport converts a frame report into a pprof profile with two sample
// types: calls and wall time. Each region contributes one sample carrying its
// exclusive time, with the frame label as the outermost location.
func FromReport(r *hprof.Report) (*profile.Profile, error) {
	b := builder{
		p: &profile.Profile{
			SampleType: []*profile.ValueType{
				{Type: "calls", Unit: "count"},
				{Type: "wall", Unit: "nanoseconds"},
			},
			DefaultSampleType: "wall",
			PeriodType:        &profile.ValueType{Type: "wall", Unit: "nanoseconds"},
			Period:            1,
			DurationNanos:     int64(r.DurationNS),
		},
		locations: make(map[string]*profile.Location),
	}

	root := []*profile.Location{b.location(r.Label)}
	if exclusive := exclusiveNS(r.DurationNS, r.Regions); exclusive > 0 {
		b.sample(root, r.Label, 1, exclusive)
	}
	b.addRegions(r.Regions, root, r.Label)

	if err := b.p.CheckValid(); err != nil {
		return nil, err
	}
	return b.p, nil
}

func (b *builder) addRegions(regions []hprof.Region, parents []*profile.Location, profiler string) {
	for _, region := range regions {
		// pprof stacks are leaf first
		stack := make([]*profile.Location, 0, len(parents)+1)
		stack = append(stack, b.location(region.Name))
		stack = append(stack, parents...)
		b.sample(stack, profiler, int64(region.Calls), exclusiveNS(region.DurationNS, region.Children))
		b.addRegions(region.Children, stack, profiler)
	}
}

func (b *builder) sample(stack []*profile.Location, profiler string, calls int64, wallNS uint64) {
	b.p.Sample = append(b.p.Sample, &profile.Sample{
		Location: stack,
		Value:    []int64{calls, int64(wallNS)},
		Label:    map[string][]string{"profiler": {profiler}},
	})
}

func (b *builder) location(name string) *profile.Location {
	if l, ok := b.locations[name]; ok {
		return l
	}
	id := uint64(len(b.p.Function) + 1)
	fn := &profile.Function{ID: id, Name: name, SystemName: name}
	l := &profile.Location{ID: id, Line: []profile.Line{{Function: fn}}}
	b.p.Function = append(b.p.Function, fn)
	b.p.Location = append(b.p.Location, l)
	b.locations[name] = l
	return l
}

func exclusiveNS(durationNS uint64, children []hprof.Region) uint64 {
	var inChildren uint64
	for _, c := range children {
		inChildren += c.DurationNS
	}
	if inChildren > durationNS {
		return 0
	}
	return durationNS - inChildren
}

package speedscope

import (
	"strconv"

	"github.com/getsentry/hprof/internal/hprof"
)

const (
	Schema = "https://www.speedscope.app/file-format-schema.json"

	ValueUnitNanoseconds ValueUnit = "nanoseconds"

	EventTypeOpenFrame  EventType = "O"
	EventTypeCloseFrame EventType = "C"

	ProfileTypeEvented ProfileType = "evented"
)

type (
	Frame struct {
		Name string `json:"name"`
	}

	Event struct {
		Type  EventType `json:"type"`
		Frame int       `json:"frame"`
		At    uint64    `json:"at"`
	}

	EventedProfile struct {
		EndValue   uint64      `json:"endValue"`
		Events     []Event     `json:"events"`
		Name       string      `json:"name"`
		StartValue uint64      `json:"startValue"`
		Type       ProfileType `json:"type"`
		Unit       ValueUnit   `json:"unit"`
	}

	SharedData struct {
		Frames []Frame `json:"frames"`
	}

	EventType   string
	ProfileType string
	ValueUnit   string

	Output struct {
		Schema             string           `json:"$schema"`
		ActiveProfileIndex int              `json:"activeProfileIndex"`
		Exporter           string           `json:"exporter"`
		Name               string           `json:"name"`
		Profiles           []EventedProfile `json:"profiles"`
		Shared             SharedData       `json:"shared"`
	}

	builder struct {
		frames  []Frame
		indexes map[string]int
	}
)

// FromReports converts frame reports, one evented profile each, into a
// document speedscope can open. Regions only carry accumulated durations, so
// they are laid out back to back inside their parent starting at the
// parent's start.
func FromReports(name string, reports ...*hprof.Report) Output {
	b := builder{indexes: make(map[string]int)}
	o := Output{
		Schema:   Schema,
		Exporter: "hprof",
		Name:     name,
		Profiles: make([]EventedProfile, 0, len(reports)),
	}
	for _, r := range reports {
		var events []Event
		end := b.layout(r.Regions, 0, &events)
		if r.DurationNS > end {
			end = r.DurationNS
		}
		if events == nil {
			events = []Event{}
		}
		o.Profiles = append(o.Profiles, EventedProfile{
			EndValue:   end,
			Events:     events,
			Name:       r.Label + " (frame " + strconv.FormatUint(r.Frame, 10) + ")",
			StartValue: 0,
			Type:       ProfileTypeEvented,
			Unit:       ValueUnitNanoseconds,
		})
	}
	o.Shared.Frames = b.frames
	if o.Shared.Frames == nil {
		o.Shared.Frames = []Frame{}
	}
	return o
}

// layout emits the events of regions starting at start and returns where the
// last one closes. A region closes no earlier than its last child so events
// stay nested even when durations are inconsistent.
func (b *builder) layout(regions []hprof.Region, start uint64, events *[]Event) uint64 {
	cursor := start
	for _, region := range regions {
		frame := b.frame(region.Name)
		*events = append(*events, Event{Type: EventTypeOpenFrame, Frame: frame, At: cursor})
		end := cursor + region.DurationNS
		if childrenEnd := b.layout(region.Children, cursor, events); childrenEnd > end {
			end = childrenEnd
		}
		*events = append(*events, Event{Type: EventTypeCloseFrame, Frame: frame, At: end})
		cursor = end
	}
	return cursor
}

func (b *builder) frame(name string) int {
	if i, ok := b.indexes[name]; ok {
		return i
	}
	i := len(b.frames)
	b.frames = append(b.frames, Frame{Name: name})
	b.indexes[name] = i
	return i
}

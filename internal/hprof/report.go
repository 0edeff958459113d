package hprof

import (
	"bufio"
	"io"
	"math"
	"strconv"
	"strings"
)

type (
	// Report is the read-only view of one completed frame.
	Report struct {
		Label      string   `json:"label"`
		Frame      uint64   `json:"frame"`
		DurationNS uint64   `json:"duration_ns"`
		Regions    []Region `json:"regions"`
	}

	Region struct {
		Name       string     `json:"name"`
		DurationNS uint64     `json:"duration_ns"`
		Calls      uint32     `json:"calls"`
		Percent    Percentage `json:"percent"`
		Children   []Region   `json:"children,omitempty"`
	}

	// Percentage of the parent region's duration. NaN when the parent did
	// not accumulate any time.
	Percentage float64
)

// Percent returns child as a percentage of parent. Durations are kept as
// integers until this point so accumulation never drifts.
func Percent(child, parent uint64) Percentage {
	return Percentage(100 * (float64(child) / float64(parent)))
}

func (p Percentage) String() string {
	return strconv.FormatFloat(float64(p), 'f', -1, 64)
}

func (p Percentage) MarshalJSON() ([]byte, error) {
	f := float64(p)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, f, 'f', -1, 64), nil
}

func (p *Percentage) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*p = Percentage(math.NaN())
		return nil
	}
	f, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return err
	}
	*p = Percentage(f)
	return nil
}

// NewReport builds the report of a completed frame rooted at root.
func NewReport(label string, frame uint64, root *Node) *Report {
	return &Report{
		Label:      label,
		Frame:      frame,
		DurationNS: root.durationNS,
		Regions:    newRegions(root),
	}
}

func newRegions(parent *Node) []Region {
	if len(parent.children) == 0 {
		return nil
	}
	regions := make([]Region, 0, len(parent.children))
	for _, c := range parent.children {
		regions = append(regions, Region{
			Name:       c.name,
			DurationNS: c.durationNS,
			Calls:      c.calls,
			Percent:    Percent(c.durationNS, parent.durationNS),
			Children:   newRegions(c),
		})
	}
	return regions
}

// WriteText writes the report in the print_timing format:
//
//	Timing information for main loop:
//	  physics - 3000000ns (25%)
//	    collision - 1000000ns (33.33333333333333%)
func (r *Report) WriteText(w io.Writer) error {
	bw := bufio.NewWriter(w)
	bw.WriteString("Timing information for ")
	bw.WriteString(r.Label)
	bw.WriteString(":\n")
	writeRegions(bw, r.Regions, 1)
	return bw.Flush()
}

func writeRegions(w *bufio.Writer, regions []Region, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, region := range regions {
		w.WriteString(indent)
		w.WriteString(region.Name)
		w.WriteString(" - ")
		w.WriteString(strconv.FormatUint(region.DurationNS, 10))
		w.WriteString("ns (")
		w.WriteString(region.Percent.String())
		w.WriteString("%)\n")
		writeRegions(w, region.Children, depth+1)
	}
}

// Text returns the print_timing format as a string.
func (r *Report) Text() string {
	var b strings.Builder
	_ = r.WriteText(&b)
	return b.String()
}

// pathEscaper keeps paths unambiguous when names contain a slash.
var pathEscaper = strings.NewReplacer("%", "%25", "/", "%2F")

// Walk visits every region depth first with its slash separated path from the
// root, e.g. "render/gpu wait". Slashes and percent signs inside a name are
// escaped as %2F and %25, so a top-level "a/b" has the path "a%2Fb".
func (r *Report) Walk(fn func(path string, region Region, depth int)) {
	walkRegions(r.Regions, "", 1, fn)
}

func walkRegions(regions []Region, prefix string, depth int, fn func(string, Region, int)) {
	for _, region := range regions {
		path := pathEscaper.Replace(region.Name)
		if prefix != "" {
			path = prefix + "/" + path
		}
		fn(path, region, depth)
		walkRegions(region.Children, path, depth+1, fn)
	}
}

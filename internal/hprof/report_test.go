package hprof

import (
	"math"
	"testing"

	gojson "github.com/goccy/go-json"

	"github.com/getsentry/hprof/internal/testutil"
)

func TestPercent(t *testing.T) {
	tests := []struct {
		name   string
		child  uint64
		parent uint64
		want   string
	}{
		{name: "half", child: 30, parent: 60, want: "50"},
		{name: "whole", child: 60, parent: 60, want: "100"},
		{name: "third", child: 1, parent: 3, want: "33.33333333333333"},
		{name: "inconsistent accounting", child: 90, parent: 60, want: "150"},
		{name: "empty parent", child: 0, parent: 0, want: "NaN"},
		{name: "infinite", child: 1, parent: 0, want: "+Inf"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Percent(tt.child, tt.parent).String(); got != tt.want {
				t.Fatalf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestReportJSON(t *testing.T) {
	report := &Report{
		Label:      "main loop",
		Frame:      3,
		DurationNS: 0,
		Regions: []Region{
			{Name: "a", Calls: 1, Percent: Percentage(math.NaN())},
			{Name: "b", DurationNS: 5, Calls: 2, Percent: 12.5},
		},
	}
	b, err := gojson.Marshal(report)
	if err != nil {
		t.Fatalf("couldn't marshal report: %v", err)
	}
	want := `{"label":"main loop","frame":3,"duration_ns":0,"regions":[` +
		`{"name":"a","duration_ns":0,"calls":1,"percent":null},` +
		`{"name":"b","duration_ns":5,"calls":2,"percent":12.5}]}`
	if string(b) != want {
		t.Fatalf("expected %s, got %s", want, string(b))
	}

	var decoded Report
	if err := gojson.Unmarshal(b, &decoded); err != nil {
		t.Fatalf("couldn't unmarshal report: %v", err)
	}
	if !math.IsNaN(float64(decoded.Regions[0].Percent)) {
		t.Fatalf("expected NaN, got %v", decoded.Regions[0].Percent)
	}
	if decoded.Regions[1].Percent != 12.5 {
		t.Fatalf("expected 12.5, got %v", decoded.Regions[1].Percent)
	}
}

func TestReportWalk(t *testing.T) {
	report := &Report{
		Regions: []Region{
			{Name: "physics", Children: []Region{{Name: "collision"}, {Name: "update positions"}}},
			{Name: "render", Children: []Region{{Name: "gpu wait"}}},
		},
	}
	type visit struct {
		Path  string
		Depth int
	}
	var got []visit
	report.Walk(func(path string, _ Region, depth int) {
		got = append(got, visit{path, depth})
	})
	want := []visit{
		{"physics", 1},
		{"physics/collision", 2},
		{"physics/update positions", 2},
		{"render", 1},
		{"render/gpu wait", 2},
	}
	if diff := testutil.Diff(got, want); diff != "" {
		t.Fatalf("Result mismatch: got - want +\n%s", diff)
	}
}

func TestReportWalkEscapesNames(t *testing.T) {
	report := &Report{
		Regions: []Region{
			{Name: "a/b"},
			{Name: "a", Children: []Region{{Name: "b"}, {Name: "50%"}}},
		},
	}
	var got []string
	report.Walk(func(path string, _ Region, _ int) {
		got = append(got, path)
	})
	want := []string{"a%2Fb", "a", "a/b", "a/50%25"}
	if diff := testutil.Diff(got, want); diff != "" {
		t.Fatalf("Result mismatch: got - want +\n%s", diff)
	}
}

func TestReportTextEmptyFrame(t *testing.T) {
	report := &Report{Label: "idle"}
	if got, want := report.Text(), "Timing information for idle:\n"; got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

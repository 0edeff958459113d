package aggregate

import (
	"github.com/getsentry/hprof/internal/hprof"
)

// MergeReports merges the frames of several profilers, usually one per
// goroutine, into a single report labelled label. A region is identified by
// its name under its parent: regions with the same name under different
// parents stay apart. Durations and calls are summed and percentages are
// recomputed against the merged parents. Frame is the highest frame number of
// the inputs. Nil reports are skipped and the inputs are left untouched.
func MergeReports(label string, reports ...*hprof.Report) *hprof.Report {
	merged := &hprof.Report{Label: label}
	for _, r := range reports {
		if r == nil {
			continue
		}
		merged.DurationNS += r.DurationNS
		if r.Frame > merged.Frame {
			merged.Frame = r.Frame
		}
		merged.Regions = mergeRegions(merged.Regions, r.Regions)
	}
	computePercentages(merged.Regions, merged.DurationNS)
	return merged
}

func mergeRegions(into, from []hprof.Region) []hprof.Region {
	for _, region := range from {
		i := indexOf(into, region.Name)
		if i < 0 {
			into = append(into, hprof.Region{Name: region.Name})
			i = len(into) - 1
		}
		into[i].DurationNS += region.DurationNS
		into[i].Calls += region.Calls
		into[i].Children = mergeRegions(into[i].Children, region.Children)
	}
	return into
}

func indexOf(regions []hprof.Region, name string) int {
	for i, r := range regions {
		if r.Name == name {
			return i
		}
	}
	return -1
}

func computePercentages(regions []hprof.Region, parentNS uint64) {
	for i := range regions {
		regions[i].Percent = hprof.Percent(regions[i].DurationNS, parentNS)
		computePercentages(regions[i].Children, regions[i].DurationNS)
	}
}

package metrics

import (
	"math"
	"sort"

	"github.com/cockroachdb/errors"

	"github.com/getsentry/hprof/internal/hprof"
)

type RegionSamples struct {
	Path          string
	DurationsNS   []uint64
	SumDurationNS uint64
	Calls         uint64
}

type RegionsMetadata struct {
	MaxVal   uint64
	WorstID  string
	Examples []string
}

// Aggregator collects region durations from completed frames of one or more
// profilers, keyed by region path.
type Aggregator struct {
	MaxUniqueRegions uint
	MaxNumOfExamples uint
	Regions          map[string]RegionSamples
	RegionsMetadata  map[string]RegionsMetadata
}

type RegionMetrics struct {
	Path     string   `json:"path"`
	P75      uint64   `json:"p75"`
	P95      uint64   `json:"p95"`
	P99      uint64   `json:"p99"`
	Avg      float64  `json:"avg"`
	Sum      uint64   `json:"sum"`
	Count    uint64   `json:"count"`
	Calls    uint64   `json:"calls"`
	Worst    string   `json:"worst"`
	Examples []string `json:"examples"`
}

func NewAggregator(maxUniqueRegions uint, maxNumOfExamples uint) Aggregator {
	return Aggregator{
		MaxUniqueRegions: maxUniqueRegions,
		MaxNumOfExamples: maxNumOfExamples,
		Regions:          make(map[string]RegionSamples),
		RegionsMetadata:  make(map[string]RegionsMetadata),
	}
}

// AddReport records every region of r. ID identifies the frame in the
// worst/examples fields of the metrics.
func (ma *Aggregator) AddReport(r *hprof.Report, ID string) {
	r.Walk(func(path string, region hprof.Region, _ int) {
		rs, ok := ma.Regions[path]
		if !ok {
			ma.Regions[path] = RegionSamples{
				Path:          path,
				DurationsNS:   []uint64{region.DurationNS},
				SumDurationNS: region.DurationNS,
				Calls:         uint64(region.Calls),
			}
			ma.RegionsMetadata[path] = RegionsMetadata{
				MaxVal:   region.DurationNS,
				WorstID:  ID,
				Examples: []string{ID},
			}
			return
		}
		rs.DurationsNS = append(rs.DurationsNS, region.DurationNS)
		rs.SumDurationNS += region.DurationNS
		rs.Calls += uint64(region.Calls)
		ma.Regions[path] = rs

		regionMetadata := ma.RegionsMetadata[path]
		if region.DurationNS > regionMetadata.MaxVal {
			regionMetadata.MaxVal = region.DurationNS
			regionMetadata.WorstID = ID
		}
		if len(regionMetadata.Examples) < int(ma.MaxNumOfExamples) {
			regionMetadata.Examples = append(regionMetadata.Examples, ID)
		}
		ma.RegionsMetadata[path] = regionMetadata
	})
}

// ToMetrics returns the regions with the highest total duration first.
func (ma *Aggregator) ToMetrics() []RegionMetrics {
	metrics := make([]RegionMetrics, 0, len(ma.Regions))

	for path, rs := range ma.Regions {
		durations := make([]uint64, len(rs.DurationsNS))
		copy(durations, rs.DurationsNS)
		sort.Slice(durations, func(i, j int) bool {
			return durations[i] < durations[j]
		})
		p75, _ := quantile(durations, 0.75)
		p95, _ := quantile(durations, 0.95)
		p99, _ := quantile(durations, 0.99)
		metrics = append(metrics, RegionMetrics{
			Path:     path,
			P75:      p75,
			P95:      p95,
			P99:      p99,
			Avg:      float64(rs.SumDurationNS) / float64(len(durations)),
			Sum:      rs.SumDurationNS,
			Count:    uint64(len(durations)),
			Calls:    rs.Calls,
			Worst:    ma.RegionsMetadata[path].WorstID,
			Examples: ma.RegionsMetadata[path].Examples,
		})
	}
	sort.Slice(metrics, func(i, j int) bool {
		if metrics[i].Sum != metrics[j].Sum {
			return metrics[i].Sum > metrics[j].Sum
		}
		return metrics[i].Path < metrics[j].Path
	})
	if len(metrics) > int(ma.MaxUniqueRegions) {
		metrics = metrics[:ma.MaxUniqueRegions]
	}
	return metrics
}

func quantile(values []uint64, q float64) (uint64, error) {
	if len(values) == 0 {
		return 0, errors.New("cannot compute percentile from empty list")
	}
	if q <= 0 || q > 1 {
		return 0, errors.New("q must be a value between 0 and 1.0")
	}
	index := int(math.Ceil(float64(len(values))*q)) - 1
	return values[index], nil
}

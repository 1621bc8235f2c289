package profile

import (
	"sort"

	"dataprof/domain/analysis"
)

// TopValueLimit caps the frequency table of a categorical summary
const TopValueLimit = 10

// DescribeCategorical summarizes a non-numeric column: unique count,
// mode, top values by frequency, and lexicographic min/max. Null cells
// are excluded throughout.
func DescribeCategorical(values []string, valid []bool) *analysis.CategoricalStatistics {
	counts := make(map[string]int64)
	var minV, maxV string
	seen := false
	for i, v := range values {
		if valid != nil && !valid[i] {
			continue
		}
		counts[v]++
		if !seen {
			minV, maxV = v, v
			seen = true
			continue
		}
		if v < minV {
			minV = v
		}
		if v > maxV {
			maxV = v
		}
	}

	cs := &analysis.CategoricalStatistics{
		UniqueCount: int64(len(counts)),
		Min:         minV,
		Max:         maxV,
	}
	if !seen {
		return cs
	}

	top := make([]analysis.TopValue, 0, len(counts))
	for v, c := range counts {
		top = append(top, analysis.TopValue{Value: v, Count: c})
	}
	// ties break lexicographically so the table is stable across runs
	sort.Slice(top, func(i, j int) bool {
		if top[i].Count != top[j].Count {
			return top[i].Count > top[j].Count
		}
		return top[i].Value < top[j].Value
	})
	cs.Mode = top[0].Value
	if len(top) > TopValueLimit {
		top = top[:TopValueLimit]
	}
	cs.TopValues = top
	return cs
}

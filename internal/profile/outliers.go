package profile

import (
	"math"
	"sort"

	"dataprof/domain/analysis"
)

// OutlierRowLimit caps the rows retained in a detailed outlier report
const OutlierRowLimit = 100

// DetectOutliers builds the detailed outlier report for a column.
// Every retained row carries its original position, the method(s) that
// flagged it, the fence side for IQR hits, and its z-score. Rows are
// ordered by distance from the mean, largest first, and truncated; the
// counts describe the truncated set.
func DetectOutliers(w *Working, q25, q75, mean, std float64) analysis.OutlierAnalysis {
	out := analysis.OutlierAnalysis{Rows: []analysis.OutlierRow{}}
	if w.Len() == 0 || math.IsNaN(q25) || math.IsNaN(q75) || std <= 0 {
		return out
	}

	spread := q75 - q25
	lower := q25 - 1.5*spread
	upper := q75 + 1.5*spread
	out.LowerFence = lower
	out.UpperFence = upper

	for i, v := range w.Values {
		z := math.Abs(v-mean) / std
		iqrHit := v < lower || v > upper
		zHit := z > 3
		if !iqrHit && !zHit {
			continue
		}

		row := analysis.OutlierRow{Index: w.Indices[i], Value: v}
		zv := (v - mean) / std
		row.ZScore = &zv
		switch {
		case iqrHit && zHit:
			row.Method = analysis.OutlierBoth
		case iqrHit:
			row.Method = analysis.OutlierIQR
		default:
			row.Method = analysis.OutlierZScore
		}
		if iqrHit {
			side := analysis.AboveUpperFence
			if v < lower {
				side = analysis.BelowLowerFence
			}
			row.FenceSide = &side
		}
		out.Rows = append(out.Rows, row)
	}

	sort.SliceStable(out.Rows, func(i, j int) bool {
		return math.Abs(out.Rows[i].Value-mean) > math.Abs(out.Rows[j].Value-mean)
	})
	if len(out.Rows) > OutlierRowLimit {
		out.Rows = out.Rows[:OutlierRowLimit]
	}

	out.TotalCount = len(out.Rows)
	out.Percentage = float64(out.TotalCount) / float64(w.Len()) * 100
	for _, row := range out.Rows {
		switch row.Method {
		case analysis.OutlierIQR, analysis.OutlierBoth:
			out.IQRCount++
		}
		switch row.Method {
		case analysis.OutlierZScore, analysis.OutlierBoth:
			out.ZScoreCount++
		}
	}
	return out
}

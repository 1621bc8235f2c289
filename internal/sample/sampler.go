package sample

// Plan describes how rows are selected for an analysis run. A nil
// sample size always means full data; otherwise sampling kicks in once
// the source has at least that many rows.
type Plan struct {
	TotalRows    int64
	Threshold    int
	Sampled      bool
	Seed         uint64
	CollectLimit int
}

// maxCollect bounds the materialized prefix regardless of threshold
const maxCollect = 50_000

// NewPlan decides whether the analysis samples and how many rows the
// source must materialize.
func NewPlan(totalRows int64, sampleSize *int, seed uint64) Plan {
	p := Plan{TotalRows: totalRows, Seed: seed}
	if sampleSize == nil {
		return p
	}
	p.Threshold = *sampleSize
	if totalRows < int64(p.Threshold) {
		return p
	}
	p.Sampled = true

	multiplier := 2
	switch {
	case p.Threshold <= 1000:
		multiplier = 5
	case p.Threshold <= 5000:
		multiplier = 3
	}
	p.CollectLimit = p.Threshold * multiplier
	if p.CollectLimit > maxCollect {
		p.CollectLimit = maxCollect
	}
	return p
}

// Indices returns the row indices to keep out of collected materialized
// rows. Systematic stride selection with a seed-derived offset: the
// same seed, total row count, and threshold always select the same
// rows. Representative of the collected prefix only.
func (p Plan) Indices(collected int) []int {
	if !p.Sampled || collected <= p.Threshold {
		indices := make([]int, collected)
		for i := range indices {
			indices[i] = i
		}
		return indices
	}

	stride := collected / p.Threshold
	offset := int(p.Seed % uint64(stride))

	indices := make([]int, 0, p.Threshold)
	for i := 0; i < p.Threshold; i++ {
		idx := offset + i*stride
		if idx > collected-1 {
			idx = collected - 1
		}
		indices = append(indices, idx)
	}
	return indices
}

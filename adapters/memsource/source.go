package memsource

import (
	"context"

	"dataprof/ports"
)

// Source adapts a Frame to the DataSource port. It also forwards the
// pushdown aggregation pass, which exercises the same code path the
// database sources take.
type Source struct {
	frame *Frame
}

// NewSource wraps a frame
func NewSource(frame *Frame) *Source {
	return &Source{frame: frame}
}

func (s *Source) Schema(_ context.Context) (ports.Schema, error) {
	return s.frame.Schema(), nil
}

func (s *Source) RowCount(_ context.Context) (int64, error) {
	return int64(s.frame.RowCount()), nil
}

func (s *Source) Head(_ context.Context, limit int) (ports.Frame, error) {
	if limit <= 0 || limit >= s.frame.RowCount() {
		return s.frame, nil
	}
	indices := make([]int, limit)
	for i := range indices {
		indices[i] = i
	}
	return s.frame.Select(indices), nil
}

func (s *Source) Aggregate(ctx context.Context, specs []ports.AggSpec) (*ports.AggResult, error) {
	return s.frame.Aggregate(ctx, specs)
}

// pkg/dataset/plan.go

package dataset

import "github.com/pkg/errors"

// Plan is the chunk layout of one run over a dataset.
type Plan struct {
	Length    int64 // elements in the dataset
	ChunkSize int64 // elements per chunk; the last one may be shorter
	Workers   int
	Chunks    int64
}

// NewPlan computes how many chunks of chunkSize elements cover length elements.
func NewPlan(length int64, chunkSize, workers int) (Plan, error) {
	if chunkSize <= 0 {
		return Plan{}, errors.Wrapf(ErrInvalidArgument, "chunk size %d", chunkSize)
	}
	if workers <= 0 {
		return Plan{}, errors.Wrapf(ErrInvalidArgument, "workers %d", workers)
	}
	if length < 0 {
		return Plan{}, errors.Wrapf(ErrInvalidArgument, "length %d", length)
	}
	p := Plan{Length: length, ChunkSize: int64(chunkSize), Workers: workers}
	if length > 0 {
		// (length + cs - 1) / cs overflows for chunk sizes close to MaxInt64
		p.Chunks = (length-1)/p.ChunkSize + 1
	}
	return p, nil
}

// PlanFile plans a dataset of size bytes.
func PlanFile(size int64, chunkSize, workers int) (Plan, error) {
	if err := checkSize(size); err != nil {
		return Plan{}, err
	}
	return NewPlan(size/ElementSize, chunkSize, workers)
}

// Range converts an element claim into the byte range [begin, end).
func (p Plan) Range(start, count int64) (begin, end int64) {
	begin = start * ElementSize
	end = begin + count*ElementSize
	return
}

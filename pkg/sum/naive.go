// pkg/sum/naive.go

package sum

import (
	"ArraySum/pkg/dataset"
	"bufio"
	"context"
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

func init() {
	Register("naive", func(path string, _ *Config) (Strategy, error) {
		return NewNaive(path)
	})
}

// elements decoded between two cancellation checks
const naiveCheckEvery = 64 << 10

// Naive reads the dataset on one goroutine, one element at a time. It is the
// reference the other strategies are checked against.
type Naive struct {
	*base
}

// NewNaive creates a naive reader over path.
func NewNaive(path string) (*Naive, error) {
	b, err := newBase(path, nil)
	if err != nil {
		return nil, err
	}
	return &Naive{b}, nil
}

func (s *Naive) Description() string {
	return "naive reader, one element at a time"
}

func (s *Naive) Run(ctx context.Context) (int64, error) {
	r, err := s.begin(ctx, s.Description(), 1, 1)
	if err != nil {
		return s.finish(r, 0, err)
	}
	r.setState(Dispatching)
	if r.plan.Length > 0 {
		r.chunks.Add(1)
	}
	total, err := s.read(r)
	r.setState(Awaiting)
	if err != nil {
		return s.finish(r, 0, err)
	}
	return s.reduce(r, []int64{total}, nil)
}

func (s *Naive) read(r *run) (int64, error) {
	f, err := s.open(s.path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	br := bufio.NewReader(f)
	var elem [dataset.ElementSize]byte
	var sum, n int64
	for {
		if n%naiveCheckEvery == 0 && r.ctx.Err() != nil {
			break
		}
		if _, err := io.ReadFull(br, elem[:]); err != nil {
			if err == io.EOF {
				break
			}
			if err == io.ErrUnexpectedEOF {
				return 0, errors.Wrapf(dataset.ErrCorruptRead, "torn element at offset %d", n*dataset.ElementSize)
			}
			return 0, errors.Wrapf(err, "read %s", s.path)
		}
		sum += int64(int32(binary.NativeEndian.Uint32(elem[:])))
		n++
	}
	r.bytes.Add(n * dataset.ElementSize)
	return sum, nil
}

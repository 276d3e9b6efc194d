// pkg/sum/stack.go

package sum

import (
	"ArraySum/pkg/chunk"
	"context"
)

func init() {
	Register("stack", func(path string, conf *Config) (Strategy, error) {
		return NewStackBuffer(path, conf)
	})
}

// StackBuffer gives every worker a buffer of its own, allocated when the
// worker starts and dropped when it returns. Nothing is pooled: each buffer
// is an equal share of StackBudget.
type StackBuffer struct {
	*base
}

// NewStackBuffer creates the strategy over path.
func NewStackBuffer(path string, conf *Config) (*StackBuffer, error) {
	b, err := newBase(path, conf)
	if err != nil {
		return nil, err
	}
	return &StackBuffer{b}, nil
}

func (s *StackBuffer) Description() string {
	return "per-worker scoped buffers, private file handles"
}

func (s *StackBuffer) Run(ctx context.Context) (int64, error) {
	r, err := s.begin(ctx, s.Description(), s.conf.ChunkSize, s.conf.Workers)
	if err != nil {
		return s.finish(r, 0, err)
	}
	sums, err := r.dispatch(eager, r.plan.Chunks, r.plan.Workers, func(ctx context.Context) (int64, error) {
		begin, end, ok := r.claim()
		if !ok {
			return 0, nil
		}
		buf := chunk.NewStackBuffer(s.conf.StackBudget, s.conf.Workers)
		return s.readPrivate(ctx, r, buf, begin, end)
	})
	return s.reduce(r, sums, err)
}

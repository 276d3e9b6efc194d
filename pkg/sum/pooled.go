// pkg/sum/pooled.go

package sum

import (
	"ArraySum/pkg/chunk"
	"context"
	"io"

	"github.com/pkg/errors"
)

func init() {
	Register("pooled-async", func(path string, conf *Config) (Strategy, error) {
		return NewAsyncWorker(path, conf)
	})
	Register("pooled-sync", func(path string, conf *Config) (Strategy, error) {
		return NewSyncWorker(path, conf)
	})
}

// AsyncWorker starts one goroutine per chunk up front; each waits for a
// permit, then reads its chunk through a page checked out of a shared pool.
// All goroutines of a run read through one file handle with positional reads.
type AsyncWorker struct {
	*base
	pool *chunk.Pool
}

// NewAsyncWorker creates the strategy over path.
func NewAsyncWorker(path string, conf *Config) (*AsyncWorker, error) {
	b, err := newBase(path, conf)
	if err != nil {
		return nil, err
	}
	return &AsyncWorker{b, chunk.NewPool(b.conf.PoolPageSize)}, nil
}

func (s *AsyncWorker) Description() string {
	return "pooled buffers, shared file handle, eager workers"
}

func (s *AsyncWorker) Run(ctx context.Context) (int64, error) {
	r, err := s.begin(ctx, s.Description(), s.conf.ChunkSize, s.conf.Workers)
	if err != nil {
		return s.finish(r, 0, err)
	}
	f, err := s.open(s.path)
	if err != nil {
		return s.finish(r, 0, err)
	}
	defer f.Close()

	sums, err := r.dispatch(eager, r.plan.Chunks, r.plan.Workers, func(ctx context.Context) (int64, error) {
		begin, end, ok := r.claim()
		if !ok {
			return 0, nil
		}
		page := s.pool.Get()
		defer page.Release()
		return r.sumRange(ctx, io.NewSectionReader(f, begin, end-begin), page.Data, begin, end)
	})
	return s.reduce(r, sums, err)
}

// SyncWorker takes a permit before it starts the goroutine of each chunk, so
// no more than Workers goroutines exist at a time. Every goroutine opens its
// own handle, seeks to its chunk and reads it through a pooled page.
type SyncWorker struct {
	*base
	pool *chunk.Pool
}

// NewSyncWorker creates the strategy over path.
func NewSyncWorker(path string, conf *Config) (*SyncWorker, error) {
	b, err := newBase(path, conf)
	if err != nil {
		return nil, err
	}
	return &SyncWorker{b, chunk.NewPool(b.conf.PoolPageSize)}, nil
}

func (s *SyncWorker) Description() string {
	return "pooled buffers, private file handles, gated dispatch"
}

func (s *SyncWorker) Run(ctx context.Context) (int64, error) {
	r, err := s.begin(ctx, s.Description(), s.conf.ChunkSize, s.conf.Workers)
	if err != nil {
		return s.finish(r, 0, err)
	}
	sums, err := r.dispatch(gated, r.plan.Chunks, r.plan.Workers, func(ctx context.Context) (int64, error) {
		begin, end, ok := r.claim()
		if !ok {
			return 0, nil
		}
		page := s.pool.Get()
		defer page.Release()
		return s.readPrivate(ctx, r, page.Data, begin, end)
	})
	return s.reduce(r, sums, err)
}

// readPrivate sums [begin, end) through a handle opened for this chunk only.
func (b *base) readPrivate(ctx context.Context, r *run, buf []byte, begin, end int64) (int64, error) {
	f, err := b.open(b.path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	if _, err := f.Seek(begin, io.SeekStart); err != nil {
		return 0, errors.Wrapf(err, "seek %s to %d", b.path, begin)
	}
	return r.sumRange(ctx, f, buf, begin, end)
}

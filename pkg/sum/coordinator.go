// pkg/sum/coordinator.go

package sum

import (
	"ArraySum/pkg/chunk"
	"ArraySum/pkg/dataset"
	"context"
	"io"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// State of a run.
type State int

const (
	Idle State = iota
	Planning
	Dispatching
	Awaiting
	Reducing
	Done
	Failed
	Cancelled
)

var stateNames = [...]string{"idle", "planning", "dispatching", "awaiting", "reducing", "done", "failed", "cancelled"}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// dispatch modes
const (
	// every task is started at once and queues for a permit
	eager = iota
	// the dispatch loop takes the permit before starting a task
	gated
)

// task computes one partial sum.
type task func(ctx context.Context) (int64, error)

// run is the state of one call to Run. A fresh one, with its own cursor, is
// created every time.
type run struct {
	ctx      context.Context
	start    time.Time
	stats    RunStats
	plan     dataset.Plan
	cursor   *chunk.Cursor
	throttle *chunk.Throttle

	chunks atomic.Int64
	empty  atomic.Int64
	bytes  atomic.Int64
}

// begin plans a run over the dataset as it is now.
func (b *base) begin(ctx context.Context, name string, chunkSize, workers int) (*run, error) {
	r := &run{
		ctx:   ctx,
		start: time.Now(),
		stats: RunStats{ID: uuid.NewString(), Strategy: name},
	}
	r.setState(Planning)
	info, err := dataset.Stat(b.path)
	if err != nil {
		return r, err
	}
	if r.plan, err = dataset.NewPlan(info.Length, chunkSize, workers); err != nil {
		return r, err
	}
	r.cursor = chunk.NewCursor(r.plan.Length, r.plan.ChunkSize)
	r.throttle = chunk.NewThrottle(b.conf.ReadLimit)
	logger.Debugf("run %s: %d elements in %d chunks of %d, %d workers",
		r.stats.ID, r.plan.Length, r.plan.Chunks, r.plan.ChunkSize, r.plan.Workers)
	return r, nil
}

func (r *run) setState(s State) {
	logger.Debugf("run %s: %s -> %s", r.stats.ID, r.stats.State, s)
	r.stats.State = s
}

// claim takes the next chunk off the cursor and returns its byte range.
// ok is false when there is nothing left.
func (r *run) claim() (begin, end int64, ok bool) {
	c := r.cursor.ClaimNext()
	if c.Empty() {
		r.empty.Add(1)
		return 0, 0, false
	}
	begin, end = r.plan.Range(c.Start, c.Count)
	return begin, end, true
}

// sumRange reads [begin, end) from src, which is positioned at begin, through buf.
func (r *run) sumRange(ctx context.Context, src io.Reader, buf []byte, begin, end int64) (int64, error) {
	var acc chunk.Accumulator
	err := chunk.ReadRange(ctx, r.throttle.Reader(src), buf, begin, end, &acc)
	r.bytes.Add(acc.Count * dataset.ElementSize)
	if err != nil {
		return 0, errors.Wrapf(err, "chunk [%d, %d)", begin/dataset.ElementSize, end/dataset.ElementSize)
	}
	return acc.Sum, nil
}

// dispatch runs n tasks with at most workers of them active at once and
// returns their partial sums, indexed by task. A failing task does not stop
// the others; the first error is returned after all of them finished.
func (r *run) dispatch(mode int, n int64, workers int, t task) ([]int64, error) {
	r.setState(Dispatching)
	sem := semaphore.NewWeighted(int64(workers))
	sums := make([]int64, n)
	var g errgroup.Group
	start := func(i int64, acquired bool) {
		r.chunks.Add(1)
		g.Go(func() error {
			if !acquired {
				if err := sem.Acquire(r.ctx, 1); err != nil {
					return nil // cancelled while queued
				}
			}
			defer sem.Release(1)
			// Acquire may succeed after a cancellation
			if r.ctx.Err() != nil {
				return nil
			}
			s, err := t(r.ctx)
			sums[i] = s
			return err
		})
	}
	for i := int64(0); i < n; i++ {
		if mode == eager {
			start(i, false)
			continue
		}
		if err := sem.Acquire(r.ctx, 1); err != nil || r.ctx.Err() != nil {
			if err == nil {
				sem.Release(1)
			}
			logger.Debugf("run %s: dispatch stopped after %d of %d tasks: %s", r.stats.ID, i, n, r.ctx.Err())
			break
		}
		start(i, true)
	}
	r.setState(Awaiting)
	return sums, g.Wait()
}

// reduce combines the partial sums and decides the outcome of the run.
func (b *base) reduce(r *run, sums []int64, err error) (int64, error) {
	var total int64
	if err == nil {
		r.setState(Reducing)
		for _, s := range sums {
			total += s
		}
	}
	return b.finish(r, total, err)
}

// finish records the stats of r. A failure discards the total; a
// cancellation keeps it but flags the result as unreliable.
func (b *base) finish(r *run, total int64, err error) (int64, error) {
	switch {
	case err != nil:
		r.setState(Failed)
		total = 0
	case r.ctx.Err() != nil:
		r.setState(Cancelled)
		err = errors.Wrapf(dataset.ErrCancelled, "%s after %s", r.ctx.Err(), time.Since(r.start))
	default:
		r.setState(Done)
	}
	r.stats.Chunks = r.chunks.Load()
	if r.cursor != nil {
		r.stats.Claims = r.cursor.Claims()
	}
	r.stats.EmptyClaims = r.empty.Load()
	r.stats.Bytes = r.bytes.Load()
	r.stats.Sum = total
	r.stats.Elapsed = time.Since(r.start)
	r.stats.Err = err
	b.record(r.stats)

	entry := logger.WithFields(logrus.Fields{
		"run":    r.stats.ID,
		"chunks": r.stats.Chunks,
		"bytes":  r.stats.Bytes,
	})
	if err != nil {
		entry.Warnf("[%s] %s: %s", r.stats.Strategy, r.stats.State, err)
	} else {
		entry.Infof("[%s] sum %d in %s", r.stats.Strategy, total, r.stats.Elapsed)
	}
	return total, err
}

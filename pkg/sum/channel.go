// pkg/sum/channel.go

package sum

import (
	"ArraySum/pkg/chunk"
	"ArraySum/pkg/dataset"
	"context"
	"io"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

func init() {
	Register("channel", func(path string, conf *Config) (Strategy, error) {
		return NewChannelWorker(path, conf)
	})
}

// message hands a filled page from the producer to exactly one consumer.
type message struct {
	page *chunk.Page
	n    int
}

// ChannelWorker separates reading from summing: one producer reads the whole
// file sequentially into pooled pages and sends them over a bounded channel
// to Workers consumers. The producer blocks while the channel is full.
type ChannelWorker struct {
	*base
	pool *chunk.Pool
}

// NewChannelWorker creates the strategy over path.
func NewChannelWorker(path string, conf *Config) (*ChannelWorker, error) {
	b, err := newBase(path, conf)
	if err != nil {
		return nil, err
	}
	return &ChannelWorker{b, chunk.NewPool(b.conf.ChannelPageSize)}, nil
}

func (s *ChannelWorker) Description() string {
	return "single reader feeding workers through a bounded channel"
}

func (s *ChannelWorker) Run(ctx context.Context) (int64, error) {
	r, err := s.begin(ctx, s.Description(), s.pool.Size()/dataset.ElementSize, s.conf.Workers)
	if err != nil {
		return s.finish(r, 0, err)
	}
	f, err := s.open(s.path)
	if err != nil {
		return s.finish(r, 0, err)
	}
	defer f.Close()

	r.setState(Dispatching)
	queue := make(chan message, s.conf.queueDepth())
	sums := make([]int64, s.conf.Workers)
	var g errgroup.Group
	g.Go(func() error {
		return s.produce(r, r.throttle.Reader(f), queue)
	})
	for i := range sums {
		g.Go(func() error {
			var err error
			sums[i], err = s.consume(r, queue)
			return err
		})
	}
	r.setState(Awaiting)
	return s.reduce(r, sums, g.Wait())
}

// produce reads src to EOF and closes the queue. It stops early, still
// closing the queue, on cancellation or a read error.
func (s *ChannelWorker) produce(r *run, src io.Reader, queue chan<- message) error {
	defer close(queue)
	var off int64
	for {
		if r.ctx.Err() != nil {
			return nil
		}
		page := s.pool.Get()
		// pages stay whole so that no element straddles two messages
		n, err := io.ReadFull(src, page.Data)
		if n == 0 {
			page.Release()
			if err == io.EOF {
				return nil
			}
			return errors.Wrapf(err, "read %s at %d", s.path, off)
		}
		select {
		case queue <- message{page, n}:
			r.chunks.Add(1)
		case <-r.ctx.Done():
			page.Release()
			return nil
		}
		off += int64(n)
		if err == io.ErrUnexpectedEOF {
			return nil
		}
		if err != nil {
			return errors.Wrapf(err, "read %s at %d", s.path, off)
		}
	}
}

// consume sums messages until the queue is closed and drained. Every page is
// released whatever happens to it, so the producer never blocks on a queue
// nobody reads: after a corrupt message or a cancellation the consumer keeps
// draining without summing.
func (s *ChannelWorker) consume(r *run, queue <-chan message) (int64, error) {
	var acc chunk.Accumulator
	var failed error
	for msg := range queue {
		if failed == nil && r.ctx.Err() == nil {
			if err := acc.Add(msg.page.Data[:msg.n]); err != nil {
				failed = errors.Wrapf(err, "message of %d bytes", msg.n)
			}
		}
		msg.page.Release()
	}
	r.bytes.Add(acc.Count * dataset.ElementSize)
	return acc.Sum, failed
}

// pkg/sum/strategy_test.go

package sum

import (
	"ArraySum/pkg/chunk"
	"ArraySum/pkg/dataset"
	"bytes"
	"context"
	"io"
	"math"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testTimeout = 2 * time.Second
	testTick    = 5 * time.Millisecond
)

func writeValues(t *testing.T, values []int32) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "numbers.data")
	require.NoError(t, dataset.WriteFile(path, values))
	return path
}

func writeRaw(path string, data []byte) error {
	return os.WriteFile(path, data, 0644)
}

func (b *base) withOpener(open chunk.Opener) {
	b.open = open
}

func setOpener(t *testing.T, s Strategy, open chunk.Opener) {
	t.Helper()
	o, ok := s.(interface{ withOpener(chunk.Opener) })
	require.True(t, ok)
	o.withOpener(open)
}

// pools returns the page pools a strategy owns, if any.
func pools(s Strategy) []*chunk.Pool {
	switch v := s.(type) {
	case *AsyncWorker:
		return []*chunk.Pool{v.pool}
	case *SyncWorker:
		return []*chunk.Pool{v.pool}
	case *ChannelWorker:
		return []*chunk.Pool{v.pool}
	}
	return nil
}

func smallConfig(chunkSize, workers int) *Config {
	conf := DefaultConfig()
	conf.ChunkSize = chunkSize
	conf.Workers = workers
	conf.PoolPageSize = 64
	conf.StackBudget = 256
	conf.ChannelPageSize = 48
	return conf
}

func newAll(t *testing.T, path string, conf *Config) []Strategy {
	t.Helper()
	var all []Strategy
	for _, name := range Names() {
		s, err := New(name, path, conf)
		require.NoError(t, err, name)
		all = append(all, s)
	}
	return all
}

func assertPoolsDrained(t *testing.T, s Strategy) {
	t.Helper()
	for _, p := range pools(s) {
		assert.Zero(t, p.Outstanding(), "%s leaked pages", s.Description())
	}
}

func TestRegistry(t *testing.T) {
	assert.Equal(t, []string{"channel", "naive", "pooled-async", "pooled-sync", "stack"}, Names())

	path := writeValues(t, []int32{1})
	_, err := New("nope", path, nil)
	assert.ErrorIs(t, err, dataset.ErrInvalidArgument)

	s, err := New("stack", path, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, s.Description())
	assert.Panics(t, func() { Register("stack", nil) })
}

func TestConcreteScenario(t *testing.T) {
	path := writeValues(t, []int32{1, 2, 3, 4})
	conf := smallConfig(2, 2)
	conf.ChannelPageSize = 8
	for _, s := range newAll(t, path, conf) {
		total, err := s.Run(context.Background())
		require.NoError(t, err, s.Description())
		assert.Equal(t, int64(10), total, s.Description())

		last := s.LastRun()
		assert.Equal(t, Done, last.State)
		assert.Equal(t, int64(16), last.Bytes)
		if _, naive := s.(*Naive); !naive {
			assert.Equal(t, int64(2), last.Chunks, s.Description())
		}
		assertPoolsDrained(t, s)
	}
}

func TestCrossStrategyAgreement(t *testing.T) {
	path := filepath.Join(t.TempDir(), "numbers.data")
	require.NoError(t, dataset.Generate(context.Background(), path, 10_007, dataset.GenerateOptions{Seed: 7, Seeded: true}))

	naive, err := NewNaive(path)
	require.NoError(t, err)
	want, err := naive.Run(context.Background())
	require.NoError(t, err)
	require.Positive(t, want)

	for _, conf := range []*Config{
		smallConfig(1000, 4),
		smallConfig(7, 3),
		smallConfig(1<<20, 2),
		DefaultConfig(),
	} {
		for _, s := range newAll(t, path, conf) {
			got, err := s.Run(context.Background())
			require.NoError(t, err, s.Description())
			assert.Equal(t, want, got, "%s chunk %d workers %d", s.Description(), conf.ChunkSize, conf.Workers)
			assertPoolsDrained(t, s)
		}
	}
}

func TestSignedExtremes(t *testing.T) {
	values := []int32{math.MaxInt32, math.MinInt32, -1, math.MaxInt32, math.MaxInt32, 0, math.MinInt32}
	var want int64
	for _, v := range values {
		want += int64(v)
	}
	path := writeValues(t, values)
	for _, s := range newAll(t, path, smallConfig(3, 2)) {
		got, err := s.Run(context.Background())
		require.NoError(t, err)
		assert.Equal(t, want, got, s.Description())
	}
}

func TestRunTwice(t *testing.T) {
	path := writeValues(t, []int32{5, 6, 7, 8, 9, 10, 11})
	for _, s := range newAll(t, path, smallConfig(2, 3)) {
		first, err := s.Run(context.Background())
		require.NoError(t, err)
		id := s.LastRun().ID
		second, err := s.Run(context.Background())
		require.NoError(t, err)
		assert.Equal(t, int64(56), first, s.Description())
		assert.Equal(t, first, second, s.Description())
		assert.NotEqual(t, id, s.LastRun().ID)
	}
}

func TestEmptyDataset(t *testing.T) {
	path := writeValues(t, nil)
	for _, s := range newAll(t, path, smallConfig(4, 2)) {
		total, err := s.Run(context.Background())
		require.NoError(t, err)
		assert.Zero(t, total)
		assert.Zero(t, s.LastRun().Chunks, s.Description())
	}
}

func TestSingleElement(t *testing.T) {
	path := writeValues(t, []int32{-42})
	for _, s := range newAll(t, path, smallConfig(4, 2)) {
		total, err := s.Run(context.Background())
		require.NoError(t, err)
		assert.Equal(t, int64(-42), total)
		last := s.LastRun()
		assert.Equal(t, int64(1), last.Chunks, s.Description())
		if _, ok := s.(*ChannelWorker); !ok {
			if _, naive := s.(*Naive); !naive {
				assert.Equal(t, int64(1), last.Claims-last.EmptyClaims)
			}
		}
	}
}

func TestChunkLargerThanDataset(t *testing.T) {
	path := writeValues(t, []int32{1, 2, 3})
	s, err := NewAsyncWorker(path, smallConfig(100, 4))
	require.NoError(t, err)
	total, err := s.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(6), total)
	last := s.LastRun()
	assert.Equal(t, int64(1), last.Chunks)
	assert.Equal(t, int64(1), last.Claims)
	assert.Zero(t, last.EmptyClaims)
}

func TestHugeChunkSize(t *testing.T) {
	path := writeValues(t, []int32{1, 2, 3, 4, 5})
	for _, chunkSize := range []int{math.MaxInt, math.MaxInt - 2} {
		for _, s := range newAll(t, path, smallConfig(chunkSize, 4)) {
			total, err := s.Run(context.Background())
			require.NoError(t, err, s.Description())
			assert.Equal(t, int64(15), total, s.Description())
			assert.Equal(t, Done, s.LastRun().State)
		}
	}
}

func TestConstruction(t *testing.T) {
	dir := t.TempDir()
	missing := filepath.Join(dir, "missing.data")
	odd := filepath.Join(dir, "odd.data")
	require.NoError(t, writeRaw(odd, []byte{1, 2, 3, 4, 5, 6}))
	good := writeValues(t, []int32{1, 2})

	for _, name := range Names() {
		_, err := New(name, missing, nil)
		assert.ErrorIs(t, err, dataset.ErrNotFound, name)
		_, err = New(name, odd, nil)
		assert.ErrorIs(t, err, dataset.ErrInvalidFormat, name)
		if name == "naive" {
			continue
		}
		_, err = New(name, good, smallConfig(0, 1))
		assert.ErrorIs(t, err, dataset.ErrInvalidArgument, name)
		_, err = New(name, good, smallConfig(1, -1))
		assert.ErrorIs(t, err, dataset.ErrInvalidArgument, name)
	}
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())

	for _, mutate := range []func(*Config){
		func(c *Config) { c.PoolPageSize = 3 },
		func(c *Config) { c.StackBudget = 0 },
		func(c *Config) { c.ChannelPageSize = -1 },
		func(c *Config) { c.QueueDepth = -1 },
		func(c *Config) { c.ReadLimit = -1 },
	} {
		c := DefaultConfig()
		mutate(c)
		assert.ErrorIs(t, c.Validate(), dataset.ErrInvalidArgument)
	}

	c := smallConfig(1, 3)
	assert.Equal(t, 6, c.queueDepth())
	c.QueueDepth = 1
	assert.Equal(t, 1, c.queueDepth())
}

// tornFile returns one byte less than asked for on every read.
type tornFile struct {
	chunk.File
}

func (f *tornFile) Read(p []byte) (int, error) {
	if len(p) > 1 {
		p = p[:len(p)-1]
	}
	return f.File.Read(p)
}

func (f *tornFile) ReadAt(p []byte, off int64) (int, error) {
	if len(p) > 1 {
		p = p[:len(p)-1]
	}
	return f.File.ReadAt(p, off)
}

func TestCorruptRead(t *testing.T) {
	path := writeValues(t, []int32{1, 2, 3, 4, 5, 6, 7, 8})
	for _, s := range newAll(t, path, smallConfig(2, 2)) {
		switch s.(type) {
		case *Naive, *ChannelWorker:
			continue
		}
		setOpener(t, s, func(name string) (chunk.File, error) {
			f, err := chunk.OpenFile(name)
			if err != nil {
				return nil, err
			}
			return &tornFile{f}, nil
		})
		total, err := s.Run(context.Background())
		require.ErrorIs(t, err, dataset.ErrCorruptRead, s.Description())
		assert.Zero(t, total)
		assert.Equal(t, Failed, s.LastRun().State)
		assertPoolsDrained(t, s)
	}
}

// trailingFile yields one stray byte after the real end of file.
type trailingFile struct {
	chunk.File
	r io.Reader
}

func (f *trailingFile) Read(p []byte) (int, error) {
	return f.r.Read(p)
}

func TestChannelCorruptTail(t *testing.T) {
	path := writeValues(t, []int32{1, 2, 3, 4, 5, 6, 7, 8})
	s, err := NewChannelWorker(path, smallConfig(2, 2))
	require.NoError(t, err)
	setOpener(t, s, func(name string) (chunk.File, error) {
		f, err := chunk.OpenFile(name)
		if err != nil {
			return nil, err
		}
		return &trailingFile{f, io.MultiReader(f, bytes.NewReader([]byte{1}))}, nil
	})
	total, err := s.Run(context.Background())
	require.ErrorIs(t, err, dataset.ErrCorruptRead)
	assert.Zero(t, total)
	assert.Equal(t, Failed, s.LastRun().State)
	assertPoolsDrained(t, s)
}

func TestMissingAtRun(t *testing.T) {
	path := writeValues(t, []int32{1, 2})
	for _, s := range newAll(t, path, smallConfig(1, 1)) {
		require.NoError(t, os.Remove(path))
		_, err := s.Run(context.Background())
		assert.ErrorIs(t, err, dataset.ErrNotFound, s.Description())
		require.NoError(t, dataset.WriteFile(path, []int32{1, 2}))
	}
}

func TestCancelledBeforeRun(t *testing.T) {
	path := writeValues(t, []int32{1, 2, 3, 4})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for _, s := range newAll(t, path, smallConfig(1, 2)) {
		total, err := s.Run(ctx)
		require.ErrorIs(t, err, dataset.ErrCancelled, s.Description())
		assert.Zero(t, total)
		assert.Equal(t, Cancelled, s.LastRun().State)
		assertPoolsDrained(t, s)
	}
}

// cancellingFile cancels the run after its first read.
type cancellingFile struct {
	chunk.File
	cancel context.CancelFunc
	reads  *atomic.Int64
}

func (f *cancellingFile) Read(p []byte) (int, error) {
	defer f.cancelled()
	return f.File.Read(p)
}

func (f *cancellingFile) ReadAt(p []byte, off int64) (int, error) {
	defer f.cancelled()
	return f.File.ReadAt(p, off)
}

func (f *cancellingFile) cancelled() {
	if f.reads.Add(1) == 1 {
		f.cancel()
	}
}

func TestCancelledMidRun(t *testing.T) {
	values := make([]int32, 4096)
	for i := range values {
		values[i] = 1
	}
	path := writeValues(t, values)
	for _, s := range newAll(t, path, smallConfig(256, 1)) {
		if _, naive := s.(*Naive); naive {
			continue // checks for cancellation every 64K elements only
		}
		ctx, cancel := context.WithCancel(context.Background())
		var reads atomic.Int64
		setOpener(t, s, func(name string) (chunk.File, error) {
			f, err := chunk.OpenFile(name)
			if err != nil {
				return nil, err
			}
			return &cancellingFile{f, cancel, &reads}, nil
		})
		total, err := s.Run(ctx)
		require.ErrorIs(t, err, dataset.ErrCancelled, s.Description())
		assert.Less(t, total, int64(len(values)), s.Description())
		assert.Equal(t, Cancelled, s.LastRun().State)
		assertPoolsDrained(t, s)
		cancel()
	}
}

func TestPartialSumKeptOnCancel(t *testing.T) {
	values := make([]int32, 1024)
	for i := range values {
		values[i] = 1
	}
	path := writeValues(t, values)
	s, err := NewSyncWorker(path, smallConfig(512, 1))
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var reads atomic.Int64
	setOpener(t, s, func(name string) (chunk.File, error) {
		f, err := chunk.OpenFile(name)
		if err != nil {
			return nil, err
		}
		return &cancellingFile{f, cancel, &reads}, nil
	})
	total, err := s.Run(ctx)
	require.ErrorIs(t, err, dataset.ErrCancelled)
	// one 64 byte page was read before the cancellation was observed
	assert.Equal(t, int64(16), total)
	assert.Equal(t, int64(64), s.LastRun().Bytes)
}

func TestChannelBackpressure(t *testing.T) {
	path := writeValues(t, make([]int32, 1024))
	conf := smallConfig(1, 1)
	conf.QueueDepth = 2
	s, err := NewChannelWorker(path, conf)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	r, err := s.begin(ctx, "backpressure", 1, 1)
	require.NoError(t, err)
	f, err := s.open(path)
	require.NoError(t, err)
	defer f.Close()

	queue := make(chan message, s.conf.queueDepth())
	done := make(chan error, 1)
	go func() { done <- s.produce(r, f, queue) }()

	// two pages queued and one held by the producer blocked on the full queue
	require.Eventually(t, func() bool { return s.pool.Outstanding() == 3 }, testTimeout, testTick)
	assert.Len(t, queue, 2)
	select {
	case <-done:
		t.Fatal("producer must block while the queue is full")
	default:
	}

	cancel()
	require.NoError(t, <-done)
	for msg := range queue {
		msg.page.Release()
	}
	assert.Zero(t, s.pool.Outstanding())
}

func TestThrottledRun(t *testing.T) {
	path := writeValues(t, []int32{1, 2, 3, 4, 5, 6, 7, 8})
	conf := smallConfig(2, 2)
	conf.ReadLimit = 1 << 20
	for _, s := range newAll(t, path, conf) {
		total, err := s.Run(context.Background())
		require.NoError(t, err)
		assert.Equal(t, int64(36), total, s.Description())
	}
}

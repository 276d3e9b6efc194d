// pkg/sum/config.go

package sum

import (
	"ArraySum/pkg/dataset"
	"runtime"

	"github.com/pkg/errors"
)

// Config for the chunked strategies.
type Config struct {
	ChunkSize       int   // elements per chunk
	Workers         int   // concurrently reading workers
	PoolPageSize    int   // bytes per pooled page
	StackBudget     int   // bytes shared by all stack buffers
	ChannelPageSize int   // bytes per channel message
	QueueDepth      int   // channel capacity, 0 means 2 x Workers
	ReadLimit       int64 // bytes per second over all readers, 0 is unlimited
}

// DefaultConfig sizes the run for the machine it runs on.
func DefaultConfig() *Config {
	return &Config{
		ChunkSize:       16 << 20,
		Workers:         runtime.NumCPU(),
		PoolPageSize:    512 << 10,
		StackBudget:     512 << 10,
		ChannelPageSize: 4 << 20,
	}
}

func (c *Config) Validate() error {
	if c.ChunkSize <= 0 {
		return errors.Wrapf(dataset.ErrInvalidArgument, "chunk size %d should > 0", c.ChunkSize)
	}
	if c.Workers <= 0 {
		return errors.Wrapf(dataset.ErrInvalidArgument, "workers %d should > 0", c.Workers)
	}
	for name, size := range map[string]int{
		"pool page":    c.PoolPageSize,
		"stack budget": c.StackBudget,
		"channel page": c.ChannelPageSize,
	} {
		if size < dataset.ElementSize {
			return errors.Wrapf(dataset.ErrInvalidArgument, "%s %d is smaller than one element", name, size)
		}
	}
	if c.QueueDepth < 0 {
		return errors.Wrapf(dataset.ErrInvalidArgument, "queue depth %d", c.QueueDepth)
	}
	if c.ReadLimit < 0 {
		return errors.Wrapf(dataset.ErrInvalidArgument, "read limit %d", c.ReadLimit)
	}
	return nil
}

func (c *Config) queueDepth() int {
	if c.QueueDepth > 0 {
		return c.QueueDepth
	}
	return 2 * c.Workers
}

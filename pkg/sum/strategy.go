// pkg/sum/strategy.go

// Package sum implements interchangeable strategies that sum every integer
// of a dataset file, and the coordinator that runs their workers.
package sum

import (
	"ArraySum/pkg/chunk"
	"ArraySum/pkg/dataset"
	"ArraySum/pkg/utils"
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/pkg/errors"
)

var logger = utils.GetLogger("arraysum")

// Strategy sums every integer of a dataset.
type Strategy interface {
	// Description is a human readable label for reports.
	Description() string
	// Run sums the dataset. It may be called repeatedly; every call starts
	// from scratch. When ctx is cancelled the returned total only covers what
	// was read so far and the error wraps dataset.ErrCancelled.
	Run(ctx context.Context) (int64, error)
	// LastRun describes the most recent completed call to Run.
	LastRun() RunStats
}

// RunStats describes one call to Run.
type RunStats struct {
	ID          string
	Strategy    string
	State       State
	Chunks      int64 // tasks or messages dispatched
	Claims      int64
	EmptyClaims int64
	Bytes       int64 // bytes decoded
	Sum         int64
	Elapsed     time.Duration
	Err         error
}

func (s RunStats) String() string {
	return fmt.Sprintf("%s %s: sum=%d chunks=%d claims=%d/%d bytes=%d in %s",
		s.Strategy, s.State, s.Sum, s.Chunks, s.Claims-s.EmptyClaims, s.Claims, s.Bytes, s.Elapsed)
}

// Creator builds a strategy over the dataset at path.
type Creator func(path string, conf *Config) (Strategy, error)

var (
	registryMu sync.Mutex
	registry   = make(map[string]Creator)
)

// Register makes a strategy available to New under name.
func Register(name string, create Creator) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, ok := registry[name]; ok {
		panic(fmt.Sprintf("strategy %s registered twice", name))
	}
	registry[name] = create
}

// New creates the strategy registered as name. A nil conf means DefaultConfig.
func New(name, path string, conf *Config) (Strategy, error) {
	registryMu.Lock()
	create, ok := registry[name]
	registryMu.Unlock()
	if !ok {
		return nil, errors.Wrapf(dataset.ErrInvalidArgument, "unknown strategy %q", name)
	}
	if conf == nil {
		conf = DefaultConfig()
	}
	return create(path, conf)
}

// Names lists the registered strategies.
func Names() []string {
	registryMu.Lock()
	defer registryMu.Unlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// base holds what every strategy shares: the dataset, its config and the
// stats of the last run.
type base struct {
	path string
	conf Config
	open chunk.Opener

	mu   sync.Mutex
	last RunStats
}

func newBase(path string, conf *Config) (*base, error) {
	if _, err := dataset.Stat(path); err != nil {
		return nil, err
	}
	b := &base{path: path, open: chunk.OpenFile}
	if conf != nil {
		if err := conf.Validate(); err != nil {
			return nil, err
		}
		b.conf = *conf
	}
	return b, nil
}

func (b *base) LastRun() RunStats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.last
}

func (b *base) record(stats RunStats) {
	b.mu.Lock()
	b.last = stats
	b.mu.Unlock()
}

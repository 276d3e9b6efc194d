// pkg/dataset/generate.go

package dataset

import (
	"ArraySum/pkg/utils"
	"bufio"
	"context"
	"encoding/binary"
	"io"
	"math/rand/v2"
	"os"
	"time"

	"github.com/pkg/errors"
)

var logger = utils.GetLogger("arraysum")

const generateBatch = 64 << 10 // elements per write

// GenerateOptions controls the values written by Generate.
type GenerateOptions struct {
	Min, Max int32 // inclusive, used only when Ranged; [1, 1000] otherwise
	Ranged   bool
	Seed     uint64
	Seeded   bool
	Progress func(written int64) // called after every batch with the element delta
}

func (o *GenerateOptions) bounds() (int32, int32, error) {
	if !o.Ranged {
		return 1, 1000, nil
	}
	lo, hi := o.Min, o.Max
	if lo > hi {
		return 0, 0, errors.Wrapf(ErrInvalidArgument, "min %d > max %d", lo, hi)
	}
	return lo, hi, nil
}

// Generate writes count random integers to path, replacing any existing file.
// A partially written file is removed on failure or cancellation.
func Generate(ctx context.Context, path string, count int64, opts GenerateOptions) (err error) {
	if count < 0 {
		return errors.Wrapf(ErrInvalidArgument, "count %d", count)
	}
	lo, hi, err := opts.bounds()
	if err != nil {
		return err
	}
	seed := opts.Seed
	if !opts.Seeded {
		seed = uint64(time.Now().UnixNano())
	}
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	span := int64(hi) - int64(lo) + 1

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = errors.Wrapf(cerr, "close %s", path)
		}
		if err != nil {
			_ = os.Remove(path)
		}
	}()

	start := time.Now()
	w := bufio.NewWriterSize(f, 1<<20)
	batch := make([]int32, generateBatch)
	for left := count; left > 0; {
		if err = ctx.Err(); err != nil {
			return errors.Wrapf(ErrCancelled, "generate %s: %s", path, err)
		}
		n := utils.Min(left, generateBatch)
		for i := range batch[:n] {
			batch[i] = int32(int64(lo) + rng.Int64N(span))
		}
		if err = Write(w, batch[:n]); err != nil {
			return errors.Wrapf(err, "write %s", path)
		}
		left -= n
		if opts.Progress != nil {
			opts.Progress(n)
		}
	}
	if err = w.Flush(); err != nil {
		return errors.Wrapf(err, "flush %s", path)
	}
	logger.Infof("Generated %d integers in [%d, %d] into %s in %s", count, lo, hi, path, time.Since(start))
	return nil
}

// Write encodes values in native byte order.
func Write(w io.Writer, values []int32) error {
	return binary.Write(w, binary.NativeEndian, values)
}

// WriteFile creates path holding exactly values.
func WriteFile(path string, values []int32) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}
	if err := Write(f, values); err != nil {
		_ = f.Close()
		return errors.Wrapf(err, "write %s", path)
	}
	return f.Close()
}

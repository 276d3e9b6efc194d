// pkg/chunk/reader.go

package chunk

import (
	"ArraySum/pkg/dataset"
	"context"
	"io"

	"github.com/pkg/errors"
)

// ReadRange reads the bytes [begin, end) from r, which must be positioned at
// begin, through buf and folds them into acc.
//
// Every read must return a whole number of elements, otherwise ErrCorruptRead
// is returned. A read of zero bytes (or EOF) ends the range early. The context
// is checked before each read; on cancellation ReadRange returns nil and
// leaves what was already summed in acc.
func ReadRange(ctx context.Context, r io.Reader, buf []byte, begin, end int64, acc *Accumulator) error {
	if len(buf) < dataset.ElementSize || len(buf)%dataset.ElementSize != 0 {
		return errors.Wrapf(dataset.ErrInvalidArgument, "buffer of %d bytes", len(buf))
	}
	for cur := begin; cur < end; {
		if ctx.Err() != nil {
			return nil
		}
		want := int64(len(buf))
		if left := end - cur; left < want {
			want = left
		}
		n, err := r.Read(buf[:want])
		if n > 0 {
			if aerr := acc.Add(buf[:n]); aerr != nil {
				return errors.Wrapf(aerr, "read at offset %d", cur)
			}
			cur += int64(n)
		}
		if err == io.EOF || (n == 0 && err == nil) {
			if cur < end {
				logger.Debugf("range [%d, %d) ended early at %d", begin, end, cur)
			}
			return nil
		}
		if err != nil {
			return errors.Wrapf(err, "read at offset %d", cur)
		}
	}
	return nil
}

// pkg/chunk/throttle.go

package chunk

import (
	"io"

	"github.com/juju/ratelimit"
)

// Throttle caps the aggregate read bandwidth of every reader it wraps.
// A nil Throttle does not limit anything.
type Throttle struct {
	bucket *ratelimit.Bucket
}

// NewThrottle returns a throttle of bytesPerSecond, or nil for no limit.
func NewThrottle(bytesPerSecond int64) *Throttle {
	if bytesPerSecond <= 0 {
		return nil
	}
	return &Throttle{ratelimit.NewBucketWithRate(float64(bytesPerSecond), bytesPerSecond)}
}

// Reader wraps r so that its reads draw from the shared bucket.
func (t *Throttle) Reader(r io.Reader) io.Reader {
	if t == nil {
		return r
	}
	return &limitedReader{r, t.bucket}
}

type limitedReader struct {
	io.Reader
	r *ratelimit.Bucket
}

func (l *limitedReader) Read(buf []byte) (int, error) {
	n, err := l.Reader.Read(buf)
	if n > 0 {
		l.r.Wait(int64(n))
	}
	return n, err
}

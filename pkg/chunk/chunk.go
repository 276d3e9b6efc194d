// pkg/chunk/chunk.go

package chunk

import (
	"ArraySum/pkg/dataset"
	"ArraySum/pkg/utils"
	"io"
	"os"

	"github.com/pkg/errors"
)

var logger = utils.GetLogger("arraysum")

// File is the part of *os.File the readers need.
type File interface {
	io.Reader
	io.ReaderAt
	io.Seeker
	io.Closer
	Stat() (os.FileInfo, error)
}

// Opener opens a dataset for reading.
type Opener func(name string) (File, error)

// OpenFile opens name read-only and hints the kernel that it will be read sequentially.
func OpenFile(name string) (File, error) {
	f, err := os.Open(name)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(dataset.ErrNotFound, "open %s", name)
		}
		return nil, errors.Wrapf(err, "open %s", name)
	}
	if err := adviseSequential(f); err != nil {
		logger.Debugf("fadvise %s: %s", name, err)
	}
	return f, nil
}

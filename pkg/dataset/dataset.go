// pkg/dataset/dataset.go

package dataset

import (
	"os"

	"github.com/pkg/errors"
)

// ElementSize is the width in bytes of one stored integer.
const ElementSize = 4

// Info describes a dataset file: a headerless run of native-endian int32.
type Info struct {
	Path   string
	Size   int64 // bytes
	Length int64 // elements
}

// Stat checks that path exists and holds a whole number of elements.
func Stat(path string) (*Info, error) {
	fi, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(ErrNotFound, "stat %s", path)
		}
		return nil, errors.Wrapf(err, "stat %s", path)
	}
	if fi.IsDir() {
		return nil, errors.Wrapf(ErrInvalidFormat, "%s is a directory", path)
	}
	if err := checkSize(fi.Size()); err != nil {
		return nil, errors.Wrapf(err, "%s", path)
	}
	return &Info{Path: path, Size: fi.Size(), Length: fi.Size() / ElementSize}, nil
}

func checkSize(size int64) error {
	if size < 0 || size%ElementSize != 0 {
		return errors.Wrapf(ErrInvalidFormat, "size %d is not a multiple of %d bytes", size, ElementSize)
	}
	return nil
}

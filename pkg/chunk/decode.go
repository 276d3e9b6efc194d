// pkg/chunk/decode.go

package chunk

import (
	"ArraySum/pkg/dataset"
	"encoding/binary"
	"unsafe"

	"github.com/pkg/errors"
)

// Accumulator folds decoded values into a 64-bit running sum. It is owned by
// a single worker.
type Accumulator struct {
	Sum   int64
	Count int64 // elements added
}

// Add decodes window as native-endian int32 values and adds them to the sum.
// The window must hold a whole number of elements.
func (a *Accumulator) Add(window []byte) error {
	if len(window)%dataset.ElementSize != 0 {
		return errors.Wrapf(dataset.ErrCorruptRead, "%d bytes is not a multiple of %d", len(window), dataset.ElementSize)
	}
	if len(window) == 0 {
		return nil
	}
	var sum int64
	if aligned(window) {
		for _, v := range int32s(window) {
			sum += int64(v)
		}
	} else {
		for i := 0; i < len(window); i += dataset.ElementSize {
			sum += int64(int32(binary.NativeEndian.Uint32(window[i:])))
		}
	}
	a.Sum += sum
	a.Count += int64(len(window) / dataset.ElementSize)
	return nil
}

func aligned(b []byte) bool {
	return uintptr(unsafe.Pointer(unsafe.SliceData(b)))%unsafe.Alignof(int32(0)) == 0
}

// int32s views an aligned byte window as int32 values without copying.
func int32s(b []byte) []int32 {
	return unsafe.Slice((*int32)(unsafe.Pointer(unsafe.SliceData(b))), len(b)/dataset.ElementSize)
}

// pkg/chunk/fadvise_other.go

//go:build !linux

package chunk

import "os"

func adviseSequential(f *os.File) error {
	return nil
}

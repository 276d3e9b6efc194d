// pkg/dataset/errors.go

package dataset

import "github.com/pkg/errors"

// Errors returned by the dataset and the summing strategies. Callers should
// classify with errors.Is, as they always arrive wrapped with context.
var (
	ErrNotFound        = errors.New("dataset not found")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrInvalidFormat   = errors.New("invalid dataset format")
	ErrCorruptRead     = errors.New("corrupt read")
	ErrCancelled       = errors.New("run cancelled")
)

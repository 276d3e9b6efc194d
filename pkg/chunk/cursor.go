// pkg/chunk/cursor.go

package chunk

import "sync/atomic"

// Claim is the element range [Start, Start+Count) handed to one worker.
type Claim struct {
	Start int64
	Count int64
}

// Empty reports whether there was no work left when the claim was made.
func (c Claim) Empty() bool {
	return c.Count == 0
}

// Cursor hands out non-overlapping chunks of a dataset, first come first served.
// It is the only state the workers of a run mutate concurrently.
type Cursor struct {
	next      atomic.Int64
	claims    atomic.Int64
	length    int64
	chunkSize int64
}

func NewCursor(length, chunkSize int64) *Cursor {
	if chunkSize <= 0 {
		panic("chunk size should > 0")
	}
	return &Cursor{length: length, chunkSize: chunkSize}
}

// ClaimNext advances the cursor by one chunk and returns the range it covered.
// The cursor never moves past the end, so once it got there every claim is
// empty, whatever the chunk size.
func (c *Cursor) ClaimNext() Claim {
	c.claims.Add(1)
	for {
		start := c.next.Load()
		if start >= c.length {
			return Claim{Start: start}
		}
		count := c.chunkSize
		if left := c.length - start; left < count {
			count = left
		}
		if c.next.CompareAndSwap(start, start+count) {
			return Claim{Start: start, Count: count}
		}
	}
}

// Claims returns how many claims were made.
func (c *Cursor) Claims() int64 {
	return c.claims.Load()
}

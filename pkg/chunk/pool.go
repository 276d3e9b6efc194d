// pkg/chunk/pool.go

package chunk

import (
	"ArraySum/pkg/dataset"
	"sync"
	"sync/atomic"
)

// Pool hands out pages of a fixed capacity and takes them back on Release.
type Pool struct {
	size        int
	pages       sync.Pool
	outstanding atomic.Int64
}

// NewPool creates a pool of size-byte pages, rounded down to whole elements.
func NewPool(size int) *Pool {
	size -= size % dataset.ElementSize
	if size <= 0 {
		panic("size of page should > 0")
	}
	p := &Pool{size: size}
	p.pages.New = func() interface{} {
		return &Page{pool: p, Data: make([]byte, size)}
	}
	return p
}

// Size is the capacity of every page of the pool.
func (p *Pool) Size() int {
	return p.size
}

// Get checks a page out; the caller owns it until Release.
func (p *Pool) Get() *Page {
	page := p.pages.Get().(*Page)
	page.refs = 1
	page.Data = page.Data[:p.size]
	p.outstanding.Add(1)
	return page
}

func (p *Pool) put(page *Page) {
	p.outstanding.Add(-1)
	p.pages.Put(page)
}

// Outstanding is the number of pages checked out and not yet released.
func (p *Pool) Outstanding() int64 {
	return p.outstanding.Load()
}

// NewStackBuffer allocates a worker-private buffer holding an equal share of
// budget, rounded down to whole elements but never smaller than one element.
func NewStackBuffer(budget, workers int) []byte {
	if workers <= 0 {
		workers = 1
	}
	size := budget / workers / dataset.ElementSize * dataset.ElementSize
	if size < dataset.ElementSize {
		size = dataset.ElementSize
	}
	return make([]byte, size)
}

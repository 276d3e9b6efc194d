// pkg/chunk/page.go

package chunk

import (
	"fmt"
	"sync/atomic"
)

// Page is a reference counted buffer checked out of a Pool.
type Page struct {
	refs int32
	pool *Pool
	Data []byte
}

// Acquire increase the refcount
func (p *Page) Acquire() {
	atomic.AddInt32(&p.refs, 1)
}

// Release decreases the refcount, the page goes back to its pool when it drops to zero.
func (p *Page) Release() {
	refs := atomic.AddInt32(&p.refs, -1)
	switch {
	case refs == 0:
		if p.pool != nil {
			p.pool.put(p)
		}
	case refs < 0:
		panic(fmt.Sprintf("page %p released twice", p))
	}
}

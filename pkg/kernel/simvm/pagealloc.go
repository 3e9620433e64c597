package simvm

import (
	"sync"

	"github.com/eric12s/xv6go/pkg/kernel"
)

// pageSize is kernel.PGSIZE under a local name, the stride of every
// simulated page address this allocator hands out.
const pageSize = kernel.PGSIZE

// pageAllocator is a free-list physical page allocator over a
// simulated address range, standing in for the source's kalloc/kfree
// freelist-of-pages.
type pageAllocator struct {
	mu       sync.Mutex
	free     []uintptr
	next     uintptr
	capacity int
}

func newPageAllocator() *pageAllocator {
	return &pageAllocator{next: pageSize, capacity: 1 << 20}
}

func (a *pageAllocator) AllocPage() (uintptr, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if n := len(a.free); n > 0 {
		p := a.free[n-1]
		a.free = a.free[:n-1]
		return p, nil
	}

	if int(a.next) >= a.capacity {
		return 0, kernel.ErrNoFreePage
	}
	p := a.next
	a.next += pageSize
	return p, nil
}

func (a *pageAllocator) FreePage(p uintptr) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.free = append(a.free, p)
}

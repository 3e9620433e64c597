package simvm

import (
	"sync"

	"github.com/eric12s/xv6go/pkg/kernel"
)

// space is a trivial per-process user address space: a byte size and
// a trapframe/trampoline mapping flag. It has no real page table —
// there is nothing underneath it for code to actually execute against
// in this simulation — but it honors the VMSpace contract precisely
// enough for fork/exec/growproc/exit bookkeeping to behave like the
// source's uvmcreate/uvmcopy/uvmalloc/uvmfree family.
type space struct {
	mu    sync.Mutex
	alloc kernel.PageAllocator

	sz        int
	trapframe uintptr
	mapped    bool
	image     []byte
}

func newSpace(alloc kernel.PageAllocator) *space {
	return &space{alloc: alloc}
}

func (s *space) MapTrampolineAndTrapframe(trapframe uintptr) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trapframe = trapframe
	s.mapped = true
	return nil
}

func (s *space) LoadInit(code []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(code) > kernel.PGSIZE {
		return kernel.ErrBadArgument
	}
	s.image = append([]byte(nil), code...)
	return nil
}

func (s *space) Alloc(n int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sz+n < 0 {
		return kernel.ErrBadArgument
	}
	s.sz += n
	return nil
}

func (s *space) CopyFrom(src kernel.VMSpace) error {
	other, ok := src.(*space)
	if !ok {
		return kernel.ErrMapFailed
	}
	other.mu.Lock()
	sz := other.sz
	image := append([]byte(nil), other.image...)
	other.mu.Unlock()

	s.mu.Lock()
	s.sz = sz
	s.image = image
	s.mu.Unlock()
	return nil
}

func (s *space) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sz
}

func (s *space) Free() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sz = 0
	s.mapped = false
}

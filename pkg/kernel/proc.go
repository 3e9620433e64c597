package kernel

import (
	"sync"
)

// State is a process slot's position in the lifecycle state machine.
type State int

const (
	UNUSED State = iota
	USED
	SLEEPING
	RUNNABLE
	RUNNING
	ZOMBIE
)

func (s State) String() string {
	switch s {
	case UNUSED:
		return "UNUSED"
	case USED:
		return "USED"
	case SLEEPING:
		return "SLEEPING"
	case RUNNABLE:
		return "RUNNABLE"
	case RUNNING:
		return "RUNNING"
	case ZOMBIE:
		return "ZOMBIE"
	default:
		return "INVALID"
	}
}

// NOFILE is the number of open-file slots a process carries.
const NOFILE = 16

// PGSIZE is the size in bytes of one simulated page, matching the
// source's single-page trapframe and the init process's one-page
// user image.
const PGSIZE = 4096

// Proc is one process table slot. Its array index is its stable
// identity; it is never reallocated, only reset and requeued.
type Proc struct {
	mu     sync.Mutex // guards state and the fields below it
	itemMu sync.Mutex // guards nextProc (list-link lock)

	index int
	pid   int
	state State

	parent *Proc // weak back-reference; valid only under Kernel.waitLock
	chanv  uintptr
	killed bool
	xstate int

	sz     int
	vm     VMSpace
	tf     uintptr // trapframe page handle
	ctx    Context
	kstack uintptr

	ofile [NOFILE]any
	cwd   any

	name string

	nextProc int // successor slot index, or -1; one list at a time
	cpuID    int // num_of_cpu

	entry  EntryFunc
	resume chan *RunContext
	parked chan struct{}
}

// PID returns the process's PID, or 0 if the slot is UNUSED.
func (p *Proc) PID() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pid
}

// Name returns the process's debug label.
func (p *Proc) Name() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.name
}

// State returns the process's current lifecycle state.
func (p *Proc) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Killed reports the sticky kill flag.
func (p *Proc) Killed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.killed
}

// Size returns the process's user-memory size in bytes.
func (p *Proc) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sz
}

// Procinit allocates the fixed-size process and CPU tables and links
// every slot onto the unused list. It must be called exactly once
// before any other Kernel operation.
func (k *Kernel) Procinit() {
	k.procs = make([]*Proc, k.cfg.NPROC)
	k.unusedHead = -1
	k.sleepingHead = -1
	k.zombieHead = -1

	for i := range k.procs {
		p := &Proc{
			index:  i,
			state:  UNUSED,
			cpuID:  -1,
			resume: make(chan *RunContext),
			parked: make(chan struct{}),
		}
		k.procs[i] = p
		k.pushUnused(i)
	}

	k.cpus = make([]*CPU, k.cfg.NCPU)
	for i := range k.cpus {
		k.cpus[i] = &CPU{id: i, firstRunnable: -1}
	}

	k.kstacks = proc_mapstacks(k.cfg.NPROC)
}

// ProcMapstacks returns the fixed kernel-stack virtual address
// computed for slot i at boot. Real mapping is delegated to the VM
// collaborator in a full kernel; here the addresses are just a
// deterministic, permanent per-slot offset.
func (k *Kernel) ProcMapstacks(i int) uintptr { return k.kstacks[i] }

func proc_mapstacks(nproc int) []uintptr {
	const guardedStackSpan = 2 * PGSIZE // one guard page between stacks
	addrs := make([]uintptr, nproc)
	for i := range addrs {
		addrs[i] = uintptr((i + 1) * guardedStackSpan)
	}
	return addrs
}

// allocpid issues a fresh PID via an atomic fetch-add. The source uses
// a CAS retry loop that racily re-reads the counter between its load
// and its compare (spec.md §9); a real fetch-add is the correct,
// idiomatic replacement and is what this does.
func (k *Kernel) allocpid() int {
	return int(k.nextPid.Add(1))
}

// allocproc pops a slot off the unused list, assigns it a PID, and
// brings its address space and trapframe into existence. On success
// it returns the slot with its state lock held, as the source does.
// On any failure it unwinds whatever was allocated and returns the
// slot to the unused list before reporting the error.
func (k *Kernel) allocproc() (*Proc, error) {
	idx := k.popUnused()
	if idx == -1 {
		return nil, ErrNoFreeSlot
	}

	p := k.procs[idx]
	p.mu.Lock()

	p.pid = k.allocpid()
	p.state = USED

	tf, err := k.collab.PageAlloc.AllocPage()
	if err != nil {
		k.freeproc(p)
		p.mu.Unlock()
		return nil, ErrNoFreePage
	}
	p.tf = tf

	p.vm = k.collab.NewVMSpace()
	if err := p.vm.MapTrampolineAndTrapframe(tf); err != nil {
		k.freeproc(p)
		p.mu.Unlock()
		return nil, ErrMapFailed
	}

	p.ctx = Context{}
	p.kstack = k.ProcMapstacks(idx)
	p.nextProc = -1

	return p, nil
}

// freeproc releases a slot's resources and returns it to the unused
// list. Caller must hold p.mu.
//
// The source only requeues a slot that was found on the zombie list,
// stranding any slot freed from a partial allocproc/fork failure
// (spec.md §4.2, §9). This always requeues; the zombie-list delete is
// best-effort and its result is discarded.
func (k *Kernel) freeproc(p *Proc) {
	if p.tf != 0 {
		k.collab.PageAlloc.FreePage(p.tf)
		p.tf = 0
	}
	if p.vm != nil {
		p.vm.Free()
		p.vm = nil
	}

	p.sz = 0
	p.pid = 0
	p.parent = nil
	p.name = ""
	p.chanv = 0
	p.killed = false
	p.xstate = 0
	p.cwd = nil
	for i := range p.ofile {
		p.ofile[i] = nil
	}

	k.deleteZombie(p.index)

	p.state = UNUSED
	k.pushUnused(p.index)
}

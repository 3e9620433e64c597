package kernel

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"unsafe"
)

// Kernel owns the process table, the CPU table, the global
// unused/sleeping/zombie lists, the PID counter, and the wait lock
// that mediates parent/child termination visibility. It is the
// process-wide singleton the source models as file-scope globals.
//
// Lock hierarchy (acquire in this order, release in reverse):
// waitLock, then a queue head lock, then a proc's mu, then a proc's
// itemMu, then nextPid (a leaf, since it is only ever touched via
// atomic add). Holding any proc.mu while acquiring waitLock is
// forbidden.
type Kernel struct {
	cfg    Config
	collab Collaborators
	log    *slog.Logger

	procs   []*Proc
	kstacks []uintptr
	cpus    []*CPU

	nextPid atomic.Int64

	waitLock sync.Mutex

	unusedHead int
	unusedLock sync.Mutex

	sleepingHead int
	sleepingLock sync.Mutex

	zombieHead int
	zombieLock sync.Mutex

	initProc *Proc
	fsInit   sync.Once
}

// NewKernel constructs a Kernel and allocates its process/CPU tables
// (Procinit). Collaborators must be fully populated; pkg/kernel/simvm
// provides a ready-made in-process simulation for tests and the CLI.
func NewKernel(cfg Config, collab Collaborators, log *slog.Logger) *Kernel {
	if log == nil {
		log = slog.Default()
	}
	k := &Kernel{cfg: cfg, collab: collab, log: log}
	k.Procinit()
	return k
}

// Config returns the kernel's sizing and policy configuration.
func (k *Kernel) Config() Config { return k.cfg }

// CPUs returns the fixed CPU table.
func (k *Kernel) CPUs() []*CPU { return k.cpus }

// NumProcs returns the size of the process table.
func (k *Kernel) NumProcs() int { return len(k.procs) }

// chanOf turns a process's own address into the opaque sleep-channel
// token wait() and exit() use to rendezvous on "this specific
// process", matching the source's sleep(p, &wait_lock) idiom.
func chanOf(p *Proc) uintptr { return uintptr(unsafe.Pointer(p)) }

// Userinit creates the very first process (PID 1, the init process)
// directly RUNNABLE on CPU 0, running entry as its kernel-thread body.
// It must be called exactly once, after Procinit; scheduler goroutines
// may already be running, since a scheduler that pops init blocks on
// its lock until Userinit releases it.
func (k *Kernel) Userinit(entry EntryFunc) (*Proc, error) {
	p, err := k.allocproc()
	if err != nil {
		return nil, fmt.Errorf("userinit: %w", err)
	}

	if err := p.vm.Alloc(PGSIZE); err != nil {
		k.freeproc(p)
		p.mu.Unlock()
		return nil, fmt.Errorf("userinit: %w", ErrMapFailed)
	}
	if err := p.vm.LoadInit(initcode); err != nil {
		k.freeproc(p)
		p.mu.Unlock()
		return nil, fmt.Errorf("userinit: %w", err)
	}
	p.sz = PGSIZE
	p.name = k.cfg.InitName
	p.cwd = nil
	p.entry = entry
	p.cpuID = 0
	p.state = RUNNABLE

	k.pushRunnable(k.cpus[0], p.index)
	k.cpus[0].counter.Add(1)

	k.initProc = p
	p.mu.Unlock()

	go k.runProc(p)

	k.log.Debug("userinit", "pid", p.pid, "name", p.name)
	return p, nil
}

// runProc is a process incarnation's persistent kernel thread: it
// waits to be first scheduled, releases the lock the scheduler
// carried across the handoff (the forkret step), runs the one-shot
// filesystem init exactly once process-wide, calls the trap-return
// collaborator, then runs the process's entry point.
//
// If entry returns without the process having called Exit, that is
// the "exit must not return" contract violation from spec.md §4.6 and
// is reported as a kernel panic. A process that does call Exit parks
// forever afterward (its sched() call is never resumed); the goroutine
// is deliberately abandoned rather than torn down, mirroring the
// source's abandoned kernel stack of an exited process whose slot is
// later reused by a brand-new incarnation running on its own goroutine.
func (k *Kernel) runProc(p *Proc) {
	rc := <-p.resume
	p.mu.Unlock()

	k.fsInit.Do(k.collab.FS.FsInit)
	k.collab.Trap.ReturnToUser(p)

	p.entry(rc, k, p)

	k.collab.Console.Panic(fmt.Sprintf("proc %d (%s): exit returned", p.pid, p.name))
}

// EitherCopyin copies from a user or kernel source address into dst,
// depending on fromUser. This simulation has no separate address
// spaces, so it is a plain byte copy with bounds checking; a real
// kernel would route through the VM collaborator's copyin/copyout.
func (k *Kernel) EitherCopyin(dst []byte, fromUser bool, src []byte) error {
	if len(src) < len(dst) {
		return ErrCopyFault
	}
	copy(dst, src)
	return nil
}

// EitherCopyout copies from src into a user or kernel destination
// buffer, depending on toUser.
func (k *Kernel) EitherCopyout(toUser bool, dst []byte, src []byte) error {
	if len(dst) < len(src) {
		return ErrCopyFault
	}
	copy(dst, src)
	return nil
}

// Growproc grows or shrinks the calling process's user memory by n
// bytes (n may be negative).
func (k *Kernel) Growproc(p *Proc, n int) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.vm.Alloc(n); err != nil {
		return ErrMapFailed
	}
	p.sz = p.vm.Size()
	return nil
}

// Procdump renders one line per non-UNUSED slot, mirroring the
// source's debugging console dump.
func (k *Kernel) Procdump() string {
	var sb strings.Builder
	for _, p := range k.procs {
		p.mu.Lock()
		if p.state != UNUSED {
			fmt.Fprintf(&sb, "%d %s %s cpu=%d killed=%v\n",
				p.pid, p.state, p.name, p.cpuID, p.killed)
		}
		p.mu.Unlock()
	}
	return sb.String()
}

// backgroundRunContext returns a RunContext bound to cpu over
// context.Background(). RunScheduler does not use it: it mints each
// RunContext from its own ctx via withCPU.
func backgroundRunContext(cpu *CPU) *RunContext {
	return withCPU(context.Background(), cpu)
}

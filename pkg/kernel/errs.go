package kernel

import "errors"

var (
	// ErrNoFreeSlot means the process table has no UNUSED slot to allocate.
	ErrNoFreeSlot = errors.New("kernel: no free process slot")

	// ErrNoFreePage means the page allocator collaborator is exhausted.
	ErrNoFreePage = errors.New("kernel: no free page")

	// ErrMapFailed means the VM collaborator could not establish the
	// trampoline/trapframe mapping or copy an address space.
	ErrMapFailed = errors.New("kernel: page table map failed")

	// ErrNoSuchPID means Kill found no slot with the given PID.
	ErrNoSuchPID = errors.New("kernel: no such pid")

	// ErrNoChildren means Wait found no slot whose parent is the caller.
	ErrNoChildren = errors.New("kernel: no children")

	// ErrKilled means Wait's caller was killed while waiting.
	ErrKilled = errors.New("kernel: killed while waiting")

	// ErrCopyFault means a copyout to a user-supplied address failed.
	ErrCopyFault = errors.New("kernel: copyout fault")

	// ErrBadArgument means a caller passed a nonsensical argument
	// (a non-positive nproc/ncpu in a config file, an init image larger
	// than a page, shrinking an address space below zero).
	ErrBadArgument = errors.New("kernel: bad argument")
)

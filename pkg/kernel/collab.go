package kernel

// Context is a callee-saved register snapshot. The simulated scheduler
// never actually switches real machine registers — a goroutine park/
// resume handoff stands in for swtch() — but the field exists so
// ContextSwitch collaborators have somewhere real to record the
// transition, matching the source's struct context.
type Context struct {
	SP, RA uintptr
}

// VMSpace is a process's user address space: the out-of-scope virtual
// memory subsystem (page-table create/map/unmap/copy/free, user
// allocation/deallocation) that spec.md §6 lists as a consumed
// collaborator.
type VMSpace interface {
	// MapTrampolineAndTrapframe establishes the two fixed mappings
	// every user page table needs: the trampoline code page (R|X, top
	// of user VA) and the trapframe page (R|W, just below it).
	MapTrampolineAndTrapframe(trapframe uintptr) error
	// LoadInit copies code verbatim into the space's first page at user
	// address 0, the source's uvminit: only Userinit ever calls this,
	// for the one process the kernel creates without a parent to fork
	// an image from.
	LoadInit(code []byte) error
	// Alloc grows the space by n bytes (n may be negative to shrink).
	Alloc(n int) error
	// CopyFrom duplicates another process's address space into this
	// one, used by Fork.
	CopyFrom(src VMSpace) error
	// Size reports the current user-memory size in bytes.
	Size() int
	// Free releases the space, including the trampoline/trapframe
	// mappings, in preparation for slot reuse.
	Free()
}

// PageAllocator is the out-of-scope physical page allocator.
type PageAllocator interface {
	AllocPage() (uintptr, error)
	FreePage(uintptr)
}

// ContextSwitch is the out-of-scope context-switch primitive: save the
// caller's callee-saved registers, load the callee's.
type ContextSwitch interface {
	Switch(from, to *Context)
}

// TrapReturn is the out-of-scope trap-return path that resumes a
// process in user mode.
type TrapReturn interface {
	ReturnToUser(p *Proc)
}

// FileSystem is the out-of-scope filesystem collaborator: log
// brackets, inode reference counting, path lookup, and one-shot
// initialization.
type FileSystem interface {
	BeginOp()
	EndOp()
	Idup(inode any) any
	Iput(inode any)
	Namei(path string) (any, error)
	FileDup(f any) any
	FileClose(f any)
	FsInit()
}

// Console is the out-of-scope console/panic collaborator.
type Console interface {
	Printf(format string, args ...any)
	// Panic reports an invariant violation. Implementations are
	// expected to halt, mirroring the source's fatal kernel panic().
	Panic(msg string)
}

// Collaborators bundles every out-of-scope subsystem a Kernel needs.
// NewVMSpace constructs a fresh address space for one process slot;
// the rest are process-table-wide singletons.
type Collaborators struct {
	NewVMSpace func() VMSpace
	PageAlloc  PageAllocator
	Switch     ContextSwitch
	Trap       TrapReturn
	FS         FileSystem
	Console    Console
}

// EntryFunc is a process's kernel-thread body: the "user program" that
// runs once the process is first scheduled. It must eventually call
// Kernel.Exit; if it returns without doing so, the kernel treats that
// as the "exit must not return" invariant violation from spec.md §4.6
// and panics via the Console collaborator.
type EntryFunc func(ctx *RunContext, k *Kernel, self *Proc)

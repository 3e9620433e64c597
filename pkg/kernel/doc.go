// Package kernel implements the process lifecycle and multi-CPU
// scheduling core of a small Unix-like teaching kernel: a fixed-size
// process table, per-CPU runnable queues, the global sleeping/zombie/
// free lists, and the fork/exit/wait/kill/sleep/wakeup state machine
// that moves processes between them.
//
// The core never touches real hardware. Virtual memory, physical page
// allocation, context switching, trap return, and the filesystem are
// modeled as collaborator interfaces (collab.go); pkg/kernel/simvm
// supplies an in-process simulation of all of them so the state
// machine can be exercised and tested without an MMU or a disk.
//
// # Concurrency model
//
// Each process table slot runs its kernel-thread body on its own
// goroutine, started once per incarnation by Fork or Userinit. The
// goroutine parks on a channel handoff at every suspension point
// (Sleep, Yield, Exit) and is resumed by whichever per-CPU scheduler
// goroutine next pops it off a run queue — this is the idiomatic Go
// substitute for swtch()-style register context switching. Because a
// goroutine is not an OS thread, "current CPU" cannot be a thread-local;
// it is instead threaded explicitly through a context.Context that the
// scheduler hands to a process each time it resumes it (see Mycpu).
//
// Lock hierarchy (acquire in this order, release in reverse): the
// kernel's wait lock, then any queue head lock, then a process's state
// lock, then its list-link lock, then the PID counter. See the
// invariants documented on Kernel for the full discipline.
package kernel

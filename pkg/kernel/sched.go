package kernel

import (
	"context"
	"runtime"
	"time"
)

// scheduleIdleTick bounds how long a per-CPU scheduler goroutine sleeps
// before re-polling its run queue when it finds nothing runnable. The
// source's scheduler is a tight spin loop under interrupts; a small
// sleep here avoids pegging a host CPU core per simulated CPU while
// keeping wakeup latency low.
const scheduleIdleTick = 200 * time.Microsecond

// RunScheduler is the per-CPU scheduler loop (spec.md §4.3): repeatedly
// pop a RUNNABLE process off this CPU's run queue, run it to
// completion of its current turn, and loop. It returns when ctx is
// canceled, once the currently running process (if any) has parked.
//
// The process-table lock protocol mirrors the source's acquire/swtch/
// release relay exactly: whichever side (scheduler or process) is
// about to block on a channel receive had locked the slot just before,
// and whichever side is unblocked by the corresponding send is
// responsible for the matching unlock. See runProc and sched.
func (k *Kernel) RunScheduler(ctx context.Context, cpuID int) error {
	c := k.cpus[cpuID]

	if k.cfg.PinCPUs {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		if err := pinCurrentGoroutine(cpuID); err != nil {
			k.log.Warn("cpu pin failed", "cpu", cpuID, "err", err)
		}
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		idx := k.popRunnable(c)
		if idx == -1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(scheduleIdleTick):
			}
			continue
		}

		p := k.procs[idx]
		p.mu.Lock()
		if p.state != RUNNABLE {
			// Lost a race with Kill/Wakeup's own requeue bookkeeping;
			// the slot will be re-pushed by whoever owns it now.
			p.mu.Unlock()
			continue
		}

		p.state = RUNNING
		p.cpuID = c.id
		c.proc = p

		rc := withCPU(ctx, c)
		p.resume <- rc
		<-p.parked
		c.proc = nil
		p.mu.Unlock()
	}
}

// sched hands the CPU from the calling process back to its scheduler
// and blocks until rescheduled. Callers (Yield, Sleep, Exit) must hold
// p.mu and have already set p's new state before calling; they must
// not touch p.mu again until sched returns. Calling it with p.mu
// unlocked or with p still RUNNING is reported via Console.Panic.
func (k *Kernel) sched(p *Proc) *RunContext {
	if p.mu.TryLock() {
		p.mu.Unlock()
		k.collab.Console.Panic("sched: proc lock not held")
	}
	if p.state == RUNNING {
		k.collab.Console.Panic("sched: proc still running")
	}
	p.parked <- struct{}{}
	return <-p.resume
}

// Yield voluntarily gives up the CPU, returning the process to
// RUNNABLE on the run queue of its own num_of_cpu (p.cpuID) rather
// than rc's CPU — matching proc.c's yield(), which pushes onto
// cpus[p->num_of_cpu], not mycpu(). The two normally coincide, except
// right after SetCPU has just changed p.cpuID without the process
// having been rescheduled there yet; pushing onto rc's (stale) CPU in
// that window would strand the process on the wrong queue and defeat
// set_cpu's whole purpose. It returns a fresh RunContext, since the
// scheduler may resume the process on the same or a different
// simulated CPU.
func (k *Kernel) Yield(rc *RunContext) *RunContext {
	p := k.Myproc(rc)

	p.mu.Lock()
	p.state = RUNNABLE
	cpu := k.cpus[p.cpuID]
	k.pushRunnable(cpu, p.index)
	rc2 := k.sched(p)
	p.mu.Unlock()
	return rc2
}

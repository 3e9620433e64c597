package kernel

import "sync"

// Sleep atomically releases cond and parks the calling process on
// channel chanv, re-acquiring cond once woken (spec.md §4.7). cond is
// typically a subsystem lock the caller holds to make the "check
// condition, then sleep" sequence race-free against a concurrent
// Wakeup.
//
// The process must be pushed onto the sleeping list, with chanv/state
// already set, before cond is released — not after. A Wakeup(chanv)
// issued the instant cond is released must be guaranteed to observe
// the sleeper; releasing cond first would open a window where Wakeup
// walks the sleeping list, finds nothing, and returns, losing the
// wakeup for good.
func (k *Kernel) Sleep(p *Proc, chanv uintptr, cond *sync.Mutex) *RunContext {
	p.mu.Lock()

	p.chanv = chanv
	p.state = SLEEPING
	k.pushSleeping(p.index)

	cond.Unlock()

	rc := k.sched(p)

	p.chanv = 0
	p.mu.Unlock()

	cond.Lock()
	return rc
}

// Wakeup moves every SLEEPING process waiting on chanv to RUNNABLE and
// places it on a run queue, choosing a destination CPU exactly as a
// fresh placement would (spec.md §9: the bump is unconditional, not
// conditioned on whether the process was already accounted for on a
// CPU). The sleeping list is walked from the head, reading each node's
// successor under that node's own itemMu before releasing it, so a
// concurrent listDelete elsewhere can never be observed mid-splice.
func (k *Kernel) Wakeup(chanv uintptr) {
	k.sleepingLock.Lock()
	idx := k.sleepingHead
	k.sleepingLock.Unlock()

	for idx != -1 {
		p := k.procs[idx]

		p.itemMu.Lock()
		next := p.nextProc
		p.itemMu.Unlock()

		p.mu.Lock()
		if p.state == SLEEPING && p.chanv == chanv {
			k.deleteSleeping(idx)
			p.state = RUNNABLE
			cpu := k.chooseCPUAndBump(idx)
			p.mu.Unlock()
			k.pushRunnable(cpu, idx)
		} else {
			p.mu.Unlock()
		}

		idx = next
	}
}

// Kill marks the process with the given PID as killed and, if it is
// currently sleeping, wakes it onto its own CPU's run queue (leaving the
// CPU placement counters untouched) so it can observe the flag and exit
// at its next opportunity. It does not forcibly interrupt a RUNNING or
// RUNNABLE process; those must check Proc.Killed() themselves, exactly
// as the source leaves interruption to cooperative checks in the trap
// and syscall paths.
func (k *Kernel) Kill(pid int) error {
	for _, p := range k.procs {
		p.mu.Lock()
		if p.pid != pid {
			p.mu.Unlock()
			continue
		}

		p.killed = true
		if p.state == SLEEPING {
			k.deleteSleeping(p.index)
			p.state = RUNNABLE
			cpu := k.cpus[p.cpuID]
			p.mu.Unlock()
			k.pushRunnable(cpu, p.index)
			return nil
		}
		p.mu.Unlock()
		return nil
	}
	return ErrNoSuchPID
}

package kernel

// Fork creates a new process as a copy of the calling process's
// address space and open-file table (spec.md §4.4), places it
// RUNNABLE on a CPU (chosen by ChooseCPU when Config.BalanceMode is
// set, otherwise the parent's CPU), and starts its kernel thread. It
// returns the child's PID; the parent keeps running and never
// suspends.
//
// The source's fork() duplicates the parent's entire call stack, so
// the child resumes execution at the statement right after fork()
// returns, distinguished only by fork's return value (0 in the
// child). Go has no primitive for "duplicate my call stack and
// instruction pointer" — a goroutine cannot be cloned mid-execution —
// so Fork instead takes the child's kernel-thread body as an explicit
// continuation, the natural Go substitute; the parent's own code
// above and around the Fork call is simply not shared. childEntry may
// be nil, in which case the child inherits the parent's current
// entry function and must distinguish itself via Proc.PID()/self, as
// the source's single shared program text does via fork's return
// value (spec.md §9).
func (k *Kernel) Fork(rc *RunContext, childEntry EntryFunc) (int, error) {
	parent := k.Myproc(rc)

	child, err := k.allocproc()
	if err != nil {
		return -1, err
	}

	if err := child.vm.CopyFrom(parent.vm); err != nil {
		k.freeproc(child)
		child.mu.Unlock()
		return -1, ErrMapFailed
	}
	child.sz = parent.sz
	if childEntry != nil {
		child.entry = childEntry
	} else {
		child.entry = parent.entry
	}
	child.name = parent.name

	for i, f := range parent.ofile {
		if f != nil {
			child.ofile[i] = k.collab.FS.FileDup(f)
		}
	}
	child.cwd = k.collab.FS.Idup(parent.cwd)

	pid := child.pid
	child.mu.Unlock()

	parent.mu.Lock()
	parentCPU := parent.cpuID
	parent.mu.Unlock()

	k.waitLock.Lock()
	child.parent = parent
	k.waitLock.Unlock()

	child.mu.Lock()
	child.state = RUNNABLE
	// A new incarnation carries no CPU of its own: with balance mode off
	// it starts on the parent's CPU, otherwise ChooseCPU places it.
	child.cpuID = -1
	if !k.cfg.BalanceMode {
		child.cpuID = parentCPU
	}
	cpu := k.chooseCPUAndBump(child.index)
	child.mu.Unlock()
	k.pushRunnable(cpu, child.index)

	go k.runProc(child)

	k.log.Debug("fork", "parent", parent.pid, "child", pid)
	return pid, nil
}

// reparent reassigns every child of p to the init process and wakes
// init so it can reap them. Caller must hold k.waitLock.
func (k *Kernel) reparent(p *Proc) {
	for _, child := range k.procs {
		if child == p {
			continue
		}
		if child.parent == p {
			child.parent = k.initProc
			k.Wakeup(chanOf(k.initProc))
		}
	}
}

// Exit terminates the calling process (spec.md §4.5): its open files
// and current directory are released, its children are reparented to
// init, it becomes a ZOMBIE carrying status for a waiting parent, and
// it parks forever. The init process calling Exit is a fatal kernel
// invariant violation, matching the source.
//
// waitLock is held across reparent, waking the parent, and the
// ZOMBIE/zombie-list transition, released only afterward — matching
// proc.c's exit() exactly. wait()'s whole scan-then-sleep-decision loop
// also holds waitLock, so releasing it any earlier would let a
// concurrent Wait observe this process as still non-ZOMBIE, decide to
// sleep, and then race the Wakeup below.
func (k *Kernel) Exit(rc *RunContext, status int) *RunContext {
	p := k.Myproc(rc)

	if p == k.initProc {
		k.collab.Console.Panic("init exiting")
	}

	for i, f := range p.ofile {
		if f != nil {
			k.collab.FS.FileClose(f)
			p.ofile[i] = nil
		}
	}
	k.collab.FS.BeginOp()
	k.collab.FS.Iput(p.cwd)
	k.collab.FS.EndOp()
	p.cwd = nil

	k.waitLock.Lock()

	k.reparent(p)

	// Parent might be sleeping in Wait.
	if p.parent != nil {
		k.Wakeup(chanOf(p.parent))
	}

	p.mu.Lock()
	p.xstate = status
	p.state = ZOMBIE
	k.pushZombie(p.index)

	k.waitLock.Unlock()

	k.log.Debug("exit", "pid", p.pid, "status", status)

	rc2 := k.sched(p)
	p.mu.Unlock()
	return rc2
}

// Wait blocks until a child exits or is already a zombie, reaps it,
// and reports its PID and exit status (spec.md §4.5). It returns
// ErrNoChildren if the calling process has no children left, or
// ErrKilled if it has been killed while waiting.
func (k *Kernel) Wait(rc *RunContext, xstatus *int) (*RunContext, int, error) {
	p := k.Myproc(rc)

	k.waitLock.Lock()
	for {
		haveKids := false
		for _, child := range k.procs {
			child.mu.Lock()
			if child.parent != p {
				child.mu.Unlock()
				continue
			}
			haveKids = true
			if child.state == ZOMBIE {
				pid := child.pid
				if xstatus != nil {
					*xstatus = child.xstate
				}
				child.parent = nil
				k.freeproc(child)
				child.mu.Unlock()
				k.waitLock.Unlock()
				return rc, pid, nil
			}
			child.mu.Unlock()
		}

		if !haveKids {
			k.waitLock.Unlock()
			return rc, -1, ErrNoChildren
		}
		if p.Killed() {
			k.waitLock.Unlock()
			return rc, -1, ErrKilled
		}

		rc = k.Sleep(p, chanOf(p), &k.waitLock)
	}
}

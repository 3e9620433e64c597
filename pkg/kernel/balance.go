package kernel

// ChooseCPU returns the id of the CPU with the smallest placement
// counter, the spec's choose_cpu least-loaded heuristic (ties go to
// the lowest index).
func (k *Kernel) ChooseCPU() int {
	best := 0
	bestLoad := k.cpus[0].Load()
	for i := 1; i < len(k.cpus); i++ {
		if l := k.cpus[i].Load(); l < bestLoad {
			best, bestLoad = i, l
		}
	}
	return best
}

// CPUProcessCount reports CPU id's placement counter (spec.md §4.9's
// cpu_process_count read-only accessor).
func (k *Kernel) CPUProcessCount(id int) int64 { return k.cpus[id].Load() }

// GetCPU returns the calling process's num_of_cpu (spec.md §4.9): the
// CPU it is RUNNABLE on, or last ran on otherwise.
func (k *Kernel) GetCPU(rc *RunContext) int {
	p := k.Myproc(rc)
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cpuID
}

// SetCPU migrates the calling process to CPU id (spec.md §4.9):
// num_of_cpu is set unconditionally and the destination/origin
// counters are updated, then the process yields so the migration
// takes effect promptly, returning the RunContext the yield produces.
func (k *Kernel) SetCPU(rc *RunContext, id int) *RunContext {
	p := k.Myproc(rc)
	p.mu.Lock()
	k.setCPU(p, id)
	p.mu.Unlock()
	return k.Yield(rc)
}

// setCPU records that p is now placed on CPU id: the destination's
// counter is bumped, and, when p already carried a different CPU id,
// that origin CPU's counter is debited. Caller must hold p.mu.
//
// The source bumps the destination counter unconditionally but never
// debits the origin, so a process that migrates leaves its old CPU's
// load permanently overstated (spec.md §9). This corrects that: every
// migration both credits the destination and debits the origin.
func (k *Kernel) setCPU(p *Proc, id int) {
	if p.cpuID >= 0 && p.cpuID != id {
		k.cpus[p.cpuID].counter.Add(-1)
	}
	k.cpus[id].counter.Add(1)
	p.cpuID = id
}

// chooseCPUAndBump picks a destination CPU for the process at slot idx
// — via ChooseCPU when load balancing is enabled or the process has
// never been placed, otherwise its current CPU — and applies the
// setCPU accounting. Caller must hold procs[idx].mu.
func (k *Kernel) chooseCPUAndBump(idx int) *CPU {
	p := k.procs[idx]
	id := p.cpuID
	if k.cfg.BalanceMode || id < 0 {
		id = k.ChooseCPU()
	}
	k.setCPU(p, id)
	return k.cpus[id]
}

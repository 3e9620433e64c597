package kernel

// This file names the concrete queues list.go's generic push/pop/
// delete operate over: each CPU's run queue, and the three
// process-table-wide lists (unused, sleeping, zombie).

func (k *Kernel) pushUnused(idx int) { k.listPush(idx, &k.unusedHead, &k.unusedLock) }
func (k *Kernel) popUnused() int     { return k.listPop(&k.unusedHead, &k.unusedLock) }
func (k *Kernel) pushSleeping(idx int) {
	k.listPush(idx, &k.sleepingHead, &k.sleepingLock)
}
func (k *Kernel) deleteSleeping(idx int) bool {
	return k.listDelete(idx, &k.sleepingHead, &k.sleepingLock)
}
func (k *Kernel) pushZombie(idx int) { k.listPush(idx, &k.zombieHead, &k.zombieLock) }
func (k *Kernel) deleteZombie(idx int) bool {
	return k.listDelete(idx, &k.zombieHead, &k.zombieLock)
}

func (k *Kernel) pushRunnable(c *CPU, idx int) {
	k.listPush(idx, &c.firstRunnable, &c.headLock)
}
func (k *Kernel) popRunnable(c *CPU) int {
	return k.listPop(&c.firstRunnable, &c.headLock)
}

//go:build linux

package kernel

import "golang.org/x/sys/unix"

// pinCurrentGoroutine pins the calling OS thread to cpuID via
// sched_setaffinity, used by RunScheduler when Config.PinCPUs is set
// so a simulated CPU's scheduler loop runs on a distinct real core.
// The caller must have already locked the goroutine to its OS thread
// with runtime.LockOSThread.
func pinCurrentGoroutine(cpuID int) error {
	var set unix.CPUSet
	set.Zero()
	set.Set(cpuID)
	return unix.SchedSetaffinity(0, &set)
}

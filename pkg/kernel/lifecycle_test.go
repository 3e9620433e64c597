package kernel_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/eric12s/xv6go/pkg/kernel"
)

// exitingEntry is a child kernel thread that immediately exits with
// status, the minimal body needed to make fork/exit/wait observable.
func exitingEntry(status int) kernel.EntryFunc {
	return func(rc *kernel.RunContext, k *kernel.Kernel, self *kernel.Proc) {
		k.Exit(rc, status)
	}
}

// parkingEntry blocks until unblock fires, then exits 0; it lets a
// test hold a child alive across multiple kernel operations.
func parkingEntry(unblock <-chan struct{}) kernel.EntryFunc {
	return func(rc *kernel.RunContext, k *kernel.Kernel, self *kernel.Proc) {
		<-unblock
		k.Exit(rc, 0)
	}
}

type waitResult struct {
	rc     *kernel.RunContext
	pid    int
	status int
	err    error
}

// waitTimeout calls Kernel.Wait on a background goroutine (Wait
// blocks for real — it sleeps the calling "process" until a child
// becomes a zombie) and fails the test if no result arrives in time.
func waitTimeout(t *testing.T, k *kernel.Kernel, rc *kernel.RunContext, timeout time.Duration) waitResult {
	t.Helper()
	resCh := make(chan waitResult, 1)
	go func() {
		var status int
		rc2, pid, err := k.Wait(rc, &status)
		resCh <- waitResult{rc: rc2, pid: pid, status: status, err: err}
	}()

	select {
	case res := <-resCh:
		return res
	case <-time.After(timeout):
		t.Fatal("wait did not return in time")
		return waitResult{}
	}
}

func TestForkAssignsUniquePIDs(t *testing.T) {
	h := newHarness(t, testConfig())

	unblock := make(chan struct{})
	defer close(unblock)

	seen := map[int]bool{}
	for i := 0; i < 3; i++ {
		pid, err := h.k.Fork(h.rootRC, parkingEntry(unblock))
		require.NoError(t, err)
		require.False(t, seen[pid], "pid %d reused", pid)
		seen[pid] = true
	}
	require.Len(t, seen, 3)
}

func TestForkExitWaitRoundTrip(t *testing.T) {
	h := newHarness(t, testConfig())

	childPID, err := h.k.Fork(h.rootRC, exitingEntry(42))
	require.NoError(t, err)
	require.Greater(t, childPID, 0)

	res := waitTimeout(t, h.k, h.rootRC, time.Second)
	require.NoError(t, res.err)
	require.Equal(t, childPID, res.pid)
	require.Equal(t, 42, res.status)
	h.rootRC = res.rc
}

func TestOrphanReparenting(t *testing.T) {
	h := newHarness(t, testConfig())

	grandchildExited := make(chan struct{})
	parentUnblock := make(chan struct{})

	parentEntry := func(rc *kernel.RunContext, k *kernel.Kernel, self *kernel.Proc) {
		_, err := k.Fork(rc, func(rc *kernel.RunContext, k *kernel.Kernel, self *kernel.Proc) {
			<-grandchildExited
			k.Exit(rc, 7)
		})
		if err != nil {
			k.Exit(rc, -1)
			return
		}
		<-parentUnblock
		k.Exit(rc, 0)
	}

	parentPID, err := h.k.Fork(h.rootRC, parentEntry)
	require.NoError(t, err)

	// Parent exits before its child; init should inherit the orphan.
	close(parentUnblock)

	res := waitTimeout(t, h.k, h.rootRC, time.Second)
	require.NoError(t, res.err)
	require.Equal(t, parentPID, res.pid)
	h.rootRC = res.rc

	// Now let the grandchild exit; init's next wait should reap it,
	// having inherited it as a reparented orphan.
	close(grandchildExited)
	res = waitTimeout(t, h.k, h.rootRC, time.Second)
	require.NoError(t, res.err)
	require.Equal(t, 7, res.status)
	h.rootRC = res.rc
}

func TestWaitWithNoChildrenFails(t *testing.T) {
	h := newHarness(t, testConfig())
	var status int
	_, _, err := h.k.Wait(h.rootRC, &status)
	require.ErrorIs(t, err, kernel.ErrNoChildren)
}

func TestWaitFailsWhenCallerKilled(t *testing.T) {
	h := newHarness(t, testConfig())

	unblock := make(chan struct{})
	defer close(unblock)

	_, err := h.k.Fork(h.rootRC, parkingEntry(unblock))
	require.NoError(t, err)

	initPID := h.k.Myproc(h.rootRC).PID()
	require.NoError(t, h.k.Kill(initPID))

	var status int
	_, _, err = h.k.Wait(h.rootRC, &status)
	require.ErrorIs(t, err, kernel.ErrKilled)
}

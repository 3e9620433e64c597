package kernel_test

import (
	"sync"
	"testing"
	"time"
	"unsafe"

	"github.com/stretchr/testify/require"

	"github.com/eric12s/xv6go/pkg/kernel"
)

// sleepToken mints a stable sleep-channel value, the same trick the
// kernel itself uses for chanOf(p): any address that stays alive for
// the duration works, since the value is only ever compared for
// equality.
func sleepToken() uintptr {
	v := new(int)
	return uintptr(unsafe.Pointer(v))
}

func TestSleepWakeup(t *testing.T) {
	h := newHarness(t, testConfig())

	var cond sync.Mutex
	token := sleepToken()
	asleep := make(chan *kernel.Proc, 1)
	woke := make(chan struct{})

	childEntry := func(rc *kernel.RunContext, k *kernel.Kernel, self *kernel.Proc) {
		cond.Lock()
		asleep <- self
		rc2 := k.Sleep(self, token, &cond)
		cond.Unlock()
		close(woke)
		k.Exit(rc2, 0)
	}

	_, err := h.k.Fork(h.rootRC, childEntry)
	require.NoError(t, err)

	var child *kernel.Proc
	select {
	case child = <-asleep:
	case <-time.After(time.Second):
		t.Fatal("child never reached sleep")
	}

	waitForCondition(t, time.Second, func() bool {
		return child.State() == kernel.SLEEPING
	})

	h.k.Wakeup(token)

	select {
	case <-woke:
	case <-time.After(time.Second):
		t.Fatal("sleeper never woke")
	}
}

func TestWakeupIgnoresOtherChannels(t *testing.T) {
	h := newHarness(t, testConfig())

	var cond sync.Mutex
	token := sleepToken()
	otherToken := sleepToken()
	woke := make(chan struct{})

	childEntry := func(rc *kernel.RunContext, k *kernel.Kernel, self *kernel.Proc) {
		cond.Lock()
		rc2 := k.Sleep(self, token, &cond)
		cond.Unlock()
		close(woke)
		k.Exit(rc2, 0)
	}

	_, err := h.k.Fork(h.rootRC, childEntry)
	require.NoError(t, err)

	// Give the child a moment to reach Sleep, then wake the wrong
	// channel: it must not be disturbed.
	time.Sleep(20 * time.Millisecond)
	h.k.Wakeup(otherToken)

	select {
	case <-woke:
		t.Fatal("woke on the wrong channel")
	case <-time.After(50 * time.Millisecond):
	}

	h.k.Wakeup(token)
	select {
	case <-woke:
	case <-time.After(time.Second):
		t.Fatal("sleeper never woke on its own channel")
	}
}

func TestKillWakesSleepingProcess(t *testing.T) {
	h := newHarness(t, testConfig())

	var cond sync.Mutex
	token := sleepToken()
	pidCh := make(chan int, 1)
	done := make(chan struct{})

	childEntry := func(rc *kernel.RunContext, k *kernel.Kernel, self *kernel.Proc) {
		pidCh <- self.PID()
		cond.Lock()
		rc2 := k.Sleep(self, token, &cond)
		cond.Unlock()
		require.True(t, self.Killed())
		close(done)
		k.Exit(rc2, -1)
	}

	_, err := h.k.Fork(h.rootRC, childEntry)
	require.NoError(t, err)

	var pid int
	select {
	case pid = <-pidCh:
	case <-time.After(time.Second):
		t.Fatal("child never started")
	}

	require.NoError(t, h.k.Kill(pid))

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("killed sleeper never resumed")
	}
}

// TestSleepWakeupConcurrentRace hammers Wakeup(token) concurrently
// with a batch of children each racing to push themselves onto the
// sleeping list before their caller lock is released. Before the
// sleeping-list push was ordered ahead of the cond.Unlock in Sleep, a
// Wakeup landing in that window could walk the list, find nothing,
// and return — losing that sleeper's wakeup for good, which would
// make this test hang past its deadline.
func TestSleepWakeupConcurrentRace(t *testing.T) {
	h := newHarness(t, testConfig())

	const n = 10
	token := sleepToken()
	var conds [n]sync.Mutex
	done := make(chan struct{}, n)

	for i := 0; i < n; i++ {
		cond := &conds[i]
		childEntry := func(rc *kernel.RunContext, k *kernel.Kernel, self *kernel.Proc) {
			cond.Lock()
			rc2 := k.Sleep(self, token, cond)
			cond.Unlock()
			done <- struct{}{}
			k.Exit(rc2, 0)
		}
		_, err := h.k.Fork(h.rootRC, childEntry)
		require.NoError(t, err)
	}

	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
				h.k.Wakeup(token)
			}
		}
	}()

	for i := 0; i < n; i++ {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			close(stop)
			wg.Wait()
			t.Fatalf("lost wakeup: only %d of %d children woke", i, n)
		}
	}
	close(stop)
	wg.Wait()
}

func TestKillUnknownPID(t *testing.T) {
	h := newHarness(t, testConfig())
	require.ErrorIs(t, h.k.Kill(999999), kernel.ErrNoSuchPID)
}

package kernel_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/eric12s/xv6go/pkg/kernel"
	"github.com/eric12s/xv6go/pkg/kernel/simvm"
)

// harness boots a Kernel with every simulated CPU's scheduler running
// and hands tests a *kernel.RunContext captured from init's own
// kernel thread, the same context init's entry would use to call
// Fork/Wait/Kill/Yield/Exit. Because those calls only synchronize via
// the process table's mutexes, it is safe for the test goroutine to
// make them directly on the captured RunContext as long as init's own
// goroutine is parked (blocked on initDone) and not concurrently
// touching the kernel itself.
type harness struct {
	t      *testing.T
	k      *kernel.Kernel
	cancel context.CancelFunc

	rootRC   *kernel.RunContext
	initDone chan struct{}
}

func newHarness(t *testing.T, cfg kernel.Config) *harness {
	t.Helper()

	k := kernel.NewKernel(cfg, simvm.New(false), slog.Default())

	ctx, cancel := context.WithCancel(context.Background())
	for i := 0; i < cfg.NCPU; i++ {
		id := i
		go func() { _ = k.RunScheduler(ctx, id) }()
	}

	rcCh := make(chan *kernel.RunContext, 1)
	initDone := make(chan struct{})
	_, err := k.Userinit(func(rc *kernel.RunContext, k *kernel.Kernel, self *kernel.Proc) {
		rcCh <- rc
		<-initDone
		// init may not call Exit (the kernel panics with "init exiting"),
		// and its entry may not return, so it stays parked for good.
		select {}
	})
	require.NoError(t, err)

	h := &harness{t: t, k: k, cancel: cancel, initDone: initDone}
	t.Cleanup(func() {
		close(initDone)
		cancel()
	})

	select {
	case h.rootRC = <-rcCh:
	case <-time.After(time.Second):
		t.Fatal("init process never scheduled")
	}
	return h
}

func waitForCondition(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("condition not met within %s", timeout)
}

func testConfig() kernel.Config {
	cfg := kernel.DefaultConfig()
	cfg.NPROC = 16
	cfg.NCPU = 2
	return cfg
}

func TestUserinitCreatesRunnableInit(t *testing.T) {
	h := newHarness(t, testConfig())
	init := h.k.Myproc(h.rootRC)
	require.Equal(t, h.k.Config().InitName, init.Name())
	require.Greater(t, init.PID(), 0)
}

func TestProcStateString(t *testing.T) {
	require.Equal(t, "RUNNABLE", kernel.RUNNABLE.String())
	require.Equal(t, "ZOMBIE", kernel.ZOMBIE.String())
	require.Equal(t, "INVALID", kernel.State(99).String())
}

// Command kshell is an operator console over pkg/kernel: it boots a
// Kernel backed by the in-process simvm collaborators and then runs a
// scripted scenario against it — fork some children, wait, kill,
// yield, dump the process table — the same operations spec.md's
// process lifecycle exposes, one flag per operation, executed in the
// order given below. It mirrors how cmd/consumption drives its own
// collector package, but as a debugging console over this package's
// API rather than the in-scope user-space test harness.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/eric12s/xv6go/pkg/kernel"
	"github.com/eric12s/xv6go/pkg/kernel/simvm"
)

type opts struct {
	cfgPath string
	verbose bool

	forkN      int
	killPID    int
	doYield    bool
	doWait     bool
	setCPU     int
	exitStatus int
	doDump     bool
	serve      bool
}

func main() {
	var o opts

	root := &cobra.Command{
		Use:   "kshell",
		Short: "Operator console for the xv6go process/scheduler core",
		Long: `kshell boots a kernel.Kernel backed by the default in-process
simulation, starts every simulated CPU's scheduler, creates the init
process, and then runs the scripted scenario selected by flags — in
order: fork, kill, yield, set-cpu, wait, dump, exit — all from init's
own kernel thread.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), o)
		},
	}

	root.Flags().StringVar(&o.cfgPath, "config", "", "YAML config file (see kernel.Config)")
	root.Flags().BoolVar(&o.verbose, "verbose", false, "log every console Printf from the simulation")
	root.Flags().IntVar(&o.forkN, "fork", 0, "number of children to fork from init")
	root.Flags().IntVar(&o.killPID, "kill", 0, "pid to kill (0 = skip)")
	root.Flags().BoolVar(&o.doYield, "yield", false, "have init yield once")
	root.Flags().BoolVar(&o.doWait, "wait", false, "have init wait for one child to exit")
	root.Flags().IntVar(&o.setCPU, "set-cpu", -1, "migrate init to this CPU via get_cpu/set_cpu (negative = skip)")
	root.Flags().IntVar(&o.exitStatus, "exit", -1, "exit status for init to exit with (negative = don't exit)")
	root.Flags().BoolVar(&o.doDump, "dump", true, "print the process table before shutting down")
	root.Flags().BoolVar(&o.serve, "serve", false, "keep every scheduler running until Ctrl-C instead of shutting down after the scenario")

	if err := root.Execute(); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}

func run(parent context.Context, o opts) error {
	cfg := kernel.DefaultConfig()
	if o.cfgPath != "" {
		loaded, err := kernel.LoadConfig(o.cfgPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	cfg.Verbose = cfg.Verbose || o.verbose

	k := kernel.NewKernel(cfg, simvm.New(cfg.Verbose), slog.Default())

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan struct{}, cfg.NCPU)
	for i := 0; i < cfg.NCPU; i++ {
		id := i
		go func() {
			defer func() { done <- struct{}{} }()
			if err := k.RunScheduler(runCtx, id); err != nil {
				slog.Debug("scheduler stopped", "cpu", id, "err", err)
			}
		}()
	}

	scenarioDone := make(chan error, 1)
	_, err := k.Userinit(func(rc *kernel.RunContext, k *kernel.Kernel, self *kernel.Proc) {
		rc, serr := runScenario(rc, k, self, o)
		scenarioDone <- serr

		if o.exitStatus >= 0 {
			k.Exit(rc, o.exitStatus) // never returns; this goroutine parks forever
			return
		}
		<-rc.Done() // park until the CLI cancels the scheduler context
		k.Exit(rc, 0)
	})
	if err != nil {
		cancel()
		return fmt.Errorf("kshell: %w", err)
	}

	select {
	case err := <-scenarioDone:
		if err != nil {
			cancel()
			return err
		}
	case <-runCtx.Done():
		return runCtx.Err()
	}

	if o.serve {
		<-runCtx.Done()
		return nil
	}

	time.Sleep(2 * scheduleSettleDelay)
	cancel()
	for i := 0; i < cfg.NCPU; i++ {
		<-done
	}
	return nil
}

// scheduleSettleDelay gives in-flight scheduler goroutines a moment to
// observe the scenario's last state change before dump/shutdown reads
// it; it is not a synchronization primitive, only a CLI convenience.
const scheduleSettleDelay = 5 * time.Millisecond

func runScenario(rc *kernel.RunContext, k *kernel.Kernel, self *kernel.Proc, o opts) (*kernel.RunContext, error) {
	children := make([]int, 0, o.forkN)
	for i := 0; i < o.forkN; i++ {
		pid, err := k.Fork(rc, idleChildEntry)
		if err != nil {
			return rc, fmt.Errorf("fork: %w", err)
		}
		fmt.Printf("forked pid=%d\n", pid)
		children = append(children, pid)
	}

	if o.killPID != 0 {
		if err := k.Kill(o.killPID); err != nil {
			return rc, fmt.Errorf("kill: %w", err)
		}
		fmt.Printf("killed pid=%d\n", o.killPID)
	}

	if o.doYield {
		rc = k.Yield(rc)
	}

	if o.setCPU >= 0 {
		from := k.GetCPU(rc)
		rc = k.SetCPU(rc, o.setCPU)
		fmt.Printf("set_cpu: %d -> %d\n", from, k.GetCPU(rc))
	}

	if o.doWait && len(children) > 0 {
		var status int
		next, pid, err := k.Wait(rc, &status)
		rc = next
		if err != nil {
			return rc, fmt.Errorf("wait: %w", err)
		}
		fmt.Printf("reaped pid=%d status=%d\n", pid, status)
	}

	if o.doDump {
		fmt.Print(k.Procdump())
	}

	return rc, nil
}

// idleChildEntry is a forked demo child's kernel thread: it yields
// repeatedly, checking the cooperative kill flag each time, until
// either it is killed or the scheduler context is canceled, then
// exits 0 — giving kill/wait/dump something live to act on without
// doing any real work.
func idleChildEntry(rc *kernel.RunContext, k *kernel.Kernel, self *kernel.Proc) {
	for !self.Killed() {
		select {
		case <-rc.Done():
			k.Exit(rc, 0)
			return
		default:
		}
		rc = k.Yield(rc)
	}
	k.Exit(rc, 0)
}

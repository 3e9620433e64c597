// Package simvm provides a default, in-process simulation of every
// collaborator pkg/kernel leaves out of scope: address spaces, the
// physical allocator, the context-switch and trap-return primitives,
// a minimal filesystem, and a console. It exists so a Kernel can be
// booted and exercised without a real xv6 runtime underneath it — the
// same role pkg/system/proc.NewCollector plays for its own pair of
// cgroup-version-specific backends, picking one concrete
// implementation at construction time based on the running
// configuration.
package simvm

import (
	"log/slog"

	"github.com/eric12s/xv6go/pkg/kernel"
)

// New builds a full set of in-process Collaborators. verbose selects
// the console backend: quiet discards Printf calls, verbose logs them
// through log.
func New(verbose bool) kernel.Collaborators {
	alloc := newPageAllocator()
	var con kernel.Console
	if verbose {
		con = newVerboseConsole(slog.Default())
	} else {
		con = newQuietConsole()
	}

	return kernel.Collaborators{
		NewVMSpace: func() kernel.VMSpace { return newSpace(alloc) },
		PageAlloc:  alloc,
		Switch:     newContextSwitch(),
		Trap:       newTrapReturn(con),
		FS:         newFS(),
		Console:    con,
	}
}

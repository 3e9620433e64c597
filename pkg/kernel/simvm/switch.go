package simvm

import "github.com/eric12s/xv6go/pkg/kernel"

// contextSwitch is a no-op stand-in for swtch(): this simulation moves
// execution between processes via goroutine park/resume channels
// rather than saved/restored machine registers, so there is nothing
// left for Switch to actually do. It exists so Collaborators has a
// real implementation to hand out, and so a Switch call in a ported
// trap path compiles and runs unchanged.
type contextSwitch struct{}

func newContextSwitch() *contextSwitch { return &contextSwitch{} }

func (c *contextSwitch) Switch(from, to *kernel.Context) {}

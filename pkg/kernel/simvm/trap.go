package simvm

import "github.com/eric12s/xv6go/pkg/kernel"

// trapReturn simulates usertrapret/userret: a real kernel restores
// trapframe registers and drops to user mode here. This simulation
// has no user mode to drop into, so it only logs the transition for
// observability.
type trapReturn struct {
	con kernel.Console
}

func newTrapReturn(con kernel.Console) *trapReturn {
	return &trapReturn{con: con}
}

func (t *trapReturn) ReturnToUser(p *kernel.Proc) {
	t.con.Printf("trapret: pid=%d name=%s", p.PID(), p.Name())
}

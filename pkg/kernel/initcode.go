package kernel

// initcode is a placeholder for the tiny machine-code image the
// source embeds to exec /init as the very first user program. This
// simulation never executes real machine code — Userinit's entry
// point is an ordinary Go function, not these bytes — but Userinit
// still copies it verbatim into the init process's VMSpace via
// LoadInit, matching uvminit(p->pagetable, initcode, sizeof(initcode))
// exactly, so the one-page user image init actually carries is never
// just empty.
var initcode = []byte{
	0x02, 0x00, 0x00, 0x00, // placeholder opcode stream
	0x2e, 0x2f, 0x69, 0x6e, 0x69, 0x74, 0x00, // "./init\0"
}

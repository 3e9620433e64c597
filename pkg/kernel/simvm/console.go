package simvm

import (
	"fmt"
	"log/slog"
)

// quietConsole discards Printf output and still panics on Panic,
// matching the source's console.c except that nothing is printed.
type quietConsole struct{}

func newQuietConsole() *quietConsole { return &quietConsole{} }

func (quietConsole) Printf(format string, args ...any) {}

func (quietConsole) Panic(msg string) { panic("kernel panic: " + msg) }

// verboseConsole logs every Printf call through slog, useful for
// operator visibility from cmd/kshell.
type verboseConsole struct {
	log *slog.Logger
}

func newVerboseConsole(log *slog.Logger) *verboseConsole {
	return &verboseConsole{log: log}
}

func (c *verboseConsole) Printf(format string, args ...any) {
	c.log.Info(fmt.Sprintf(format, args...))
}

func (c *verboseConsole) Panic(msg string) {
	c.log.Error("kernel panic", "msg", msg)
	panic("kernel panic: " + msg)
}

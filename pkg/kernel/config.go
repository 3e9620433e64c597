package kernel

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the sizing and policy knobs that the source kernel
// fixed at compile time (NPROC, NCPU, balance_mode). Here they are
// ordinary struct fields so a caller can size a Kernel for tests
// without recompiling, and can optionally load them from a file.
type Config struct {
	// NPROC is the fixed size of the process table.
	NPROC int `yaml:"nproc"`
	// NCPU is the fixed number of simulated CPUs.
	NCPU int `yaml:"ncpu"`
	// BalanceMode enables load-balanced CPU assignment in fork and
	// wakeup; when false a child/woken process stays on the CPU it
	// was already associated with.
	BalanceMode bool `yaml:"balance_mode"`
	// InitName is the debug name given to the init process.
	InitName string `yaml:"init_name"`
	// PinCPUs, when true and running on Linux, pins each scheduler
	// goroutine to a real core via sched_setaffinity.
	PinCPUs bool `yaml:"pin_cpus"`
	// Verbose selects the chattier console backend in pkg/kernel/simvm,
	// which logs every Printf call instead of discarding it.
	Verbose bool `yaml:"verbose"`
}

// DefaultConfig returns the same sizing the source kernel compiled in.
func DefaultConfig() Config {
	return Config{
		NPROC:       64,
		NCPU:        8,
		BalanceMode: true,
		InitName:    "initcode",
		PinCPUs:     false,
	}
}

// LoadConfig reads a YAML config file, applying it on top of
// DefaultConfig so a partial file only overrides what it sets.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if cfg.NPROC <= 0 || cfg.NCPU <= 0 {
		return cfg, fmt.Errorf("config: %w: nproc and ncpu must be > 0", ErrBadArgument)
	}
	return cfg, nil
}

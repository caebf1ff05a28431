package main

import (
	cli "gopkg.in/urfave/cli.v1"

	"github.com/relalg/robdd"
)

var (
	configFlag = cli.StringFlag{
		Name:  "config",
		Value: "robdd.yaml",
		Usage: "path to a Manager config file (workers, memory limit, cache size)",
	}
	metricsFlag = cli.BoolFlag{
		Name:  "metrics",
		Usage: "expose Prometheus instrumentation on the Manager",
	}

	procFlag = cli.StringFlag{
		Name:  "proc",
		Value: "main",
		Usage: "name of the procedure or function to run",
	}
	argFlag = cli.StringSliceFlag{
		Name:  "arg",
		Usage: "path to an ascii-relation file (matrix files are not accepted), one per procedure argument, in order",
	}

	fromFlag = cli.StringFlag{
		Name:  "from",
		Usage: "input format: ascii or matrix",
		Value: "ascii",
	}
	toFlag = cli.StringFlag{
		Name:  "to",
		Usage: "output format: ascii or matrix",
		Value: "matrix",
	}
)

// managerOptionsFromConfig turns a parsed robdd.yaml plus the --metrics
// flag into the robdd.Option list New expects.
func managerOptionsFromConfig(cfg fileConfig, enableMetrics bool) []robdd.Option {
	var opts []robdd.Option
	if cfg.Workers > 0 {
		opts = append(opts, robdd.WithParallel(cfg.Workers))
	}
	if cfg.MemoryLimit > 0 {
		opts = append(opts, robdd.WithMemoryLimit(cfg.MemoryLimit))
	}
	if cfg.CacheSize > 0 {
		opts = append(opts, robdd.WithOperationCache(cfg.CacheSize))
	}
	if enableMetrics {
		opts = append(opts, robdd.WithMetrics())
	}
	return opts
}

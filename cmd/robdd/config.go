package main

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// fileConfig is the shape of a robdd.yaml config file: the Manager
// construction knobs of options.go, surfaced to the CLI so they don't all
// need to be repeated as flags on every invocation.
type fileConfig struct {
	Workers     int    `yaml:"workers"`
	MemoryLimit int64  `yaml:"memory_limit"`
	CacheSize   int    `yaml:"cache_size"`
	Sync        string `yaml:"sync"` // "locked" or "unsynchronized"; read but not applied by managerOptionsFromConfig
}

// loadConfig reads a robdd.yaml file at path. A missing path is not an
// error: the CLI falls back to flag defaults.
func loadConfig(path string) (fileConfig, error) {
	var cfg fileConfig
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, errors.Wrapf(err, "reading config %q", path)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "parsing config %q", path)
	}
	return cfg, nil
}

package rstb

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// OrchestratorConfig is the YAML-loadable configuration for a run: the
// default history depth new assertions get unless they override it, the
// path results.xml is written to, and per-test overrides keyed by name.
type OrchestratorConfig struct {
	DefaultHistoryDepth int                        `yaml:"default_history_depth,omitempty"`
	JUnitPath           string                     `yaml:"junit_path,omitempty"`
	Tests               map[string]TestConfigEntry `yaml:"tests,omitempty"`
}

// TestConfigEntry overrides a single registered test's orchestrator
// options, by name, without touching the Go source that registered it.
type TestConfigEntry struct {
	Skip        bool   `yaml:"skip,omitempty"`
	SkipCause   string `yaml:"skip_cause,omitempty"`
	TimeoutStep uint64 `yaml:"timeout_steps,omitempty"`
}

// LoadConfig reads and strictly parses path as an OrchestratorConfig.
// Strict parsing rejects unrecognized keys, the same way a typo in a
// workload spec would be rejected rather than silently ignored.
func LoadConfig(path string) (*OrchestratorConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("rstb: reading config %s: %w", path, err)
	}
	var cfg OrchestratorConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("rstb: parsing config %s: %w", path, err)
	}
	return &cfg, nil
}

// RuntimeOptions converts the top-level config fields into RuntimeOptions
// suitable for passing to Init.
func (c *OrchestratorConfig) RuntimeOptions() []RuntimeOption {
	var opts []RuntimeOption
	if c.DefaultHistoryDepth > 0 {
		opts = append(opts, WithDefaultHistoryDepth(c.DefaultHistoryDepth))
	}
	if c.JUnitPath != "" {
		opts = append(opts, WithJUnitPath(c.JUnitPath))
	}
	return opts
}

// OptionsFor returns the OrchestratorOptions this config declares for the
// named test, or nil if the config has no entry for it (meaning the
// test's own registration call is authoritative).
func (c *OrchestratorConfig) OptionsFor(testName string) []OrchestratorOption {
	entry, ok := c.Tests[testName]
	if !ok {
		return nil
	}
	var opts []OrchestratorOption
	if entry.Skip {
		opts = append(opts, WithSkip(entry.SkipCause))
	}
	if entry.TimeoutStep > 0 {
		opts = append(opts, WithTimeoutSteps(entry.TimeoutStep))
	}
	return opts
}

// Package config defines the performance budget and engine configuration,
// with optional loading from a motion.yaml file.
package config

import (
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/go-drift/motion/pkg/curve"
	"github.com/go-drift/motion/pkg/errors"
)

// PerformanceBudget bounds the resources the engine may consume. It is
// constructed explicitly (or loaded from motion.yaml) and consumed
// read-only by the scheduler and the performance monitor.
type PerformanceBudget struct {
	// MaxFrameMillis is the wall-clock time allotted to one scheduler tick.
	MaxFrameMillis float64 `yaml:"maxFrameMillis"`
	// MaxConcurrentAnimations caps simultaneously live animations.
	MaxConcurrentAnimations int `yaml:"maxConcurrentAnimations"`
	// MaxMemoryBytes caps process resident memory.
	MaxMemoryBytes uint64 `yaml:"maxMemoryBytes"`
}

// DefaultBudget returns the documented fallback budget: a 60fps frame time,
// 100 concurrent animations, 10 MiB.
func DefaultBudget() PerformanceBudget {
	return PerformanceBudget{
		MaxFrameMillis:          16.67,
		MaxConcurrentAnimations: 100,
		MaxMemoryBytes:          10 * 1024 * 1024,
	}
}

// Validate checks the budget for nonsensical values.
func (b PerformanceBudget) Validate() error {
	switch {
	case b.MaxFrameMillis <= 0:
		return configErr("maxFrameMillis must be positive, got %g", b.MaxFrameMillis)
	case b.MaxConcurrentAnimations <= 0:
		return configErr("maxConcurrentAnimations must be positive, got %d", b.MaxConcurrentAnimations)
	case b.MaxMemoryBytes == 0:
		return configErr("maxMemoryBytes must be positive")
	}
	return nil
}

// EngineConfig tunes engine behavior that is not a resource budget.
type EngineConfig struct {
	// Delegation enables handing expressible animations to the host's
	// native animation facility when one is configured.
	Delegation bool `yaml:"delegation"`
	// DefaultCurve names the easing used when a transition does not
	// specify one. Must be a curve.Named name.
	DefaultCurve string `yaml:"defaultCurve"`
	// MaxFrameDelta clamps the per-frame delta in seconds so a stalled or
	// backgrounded host cannot feed the integrators a huge catch-up step.
	MaxFrameDelta float64 `yaml:"maxFrameDelta"`
	// ViolationFrames is how many consecutive over-budget frames trigger
	// the degradation policy.
	ViolationFrames int `yaml:"violationFrames"`
}

// DefaultEngineConfig returns the documented engine defaults.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		Delegation:      true,
		DefaultCurve:    "ease-in-out",
		MaxFrameDelta:   1.0 / 15,
		ViolationFrames: 3,
	}
}

// Validate checks the engine configuration.
func (c EngineConfig) Validate() error {
	if _, ok := curve.Named(c.DefaultCurve); !ok {
		return configErr("unknown defaultCurve %q", c.DefaultCurve)
	}
	if c.MaxFrameDelta <= 0 {
		return configErr("maxFrameDelta must be positive, got %g", c.MaxFrameDelta)
	}
	if c.ViolationFrames < 1 {
		return configErr("violationFrames must be at least 1, got %d", c.ViolationFrames)
	}
	return nil
}

// Config is the root of motion.yaml.
type Config struct {
	Engine EngineConfig      `yaml:"engine"`
	Budget PerformanceBudget `yaml:"budget"`
}

// Default returns a fully defaulted configuration.
func Default() Config {
	return Config{Engine: DefaultEngineConfig(), Budget: DefaultBudget()}
}

// LoadOptional reads motion.yaml from dir if present. A missing file yields
// the defaults; fields omitted from the file keep their default values.
func LoadOptional(dir string) (Config, error) {
	return Load(filepath.Join(dir, "motion.yaml"))
}

// Load reads a configuration file. A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if stderrors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, configErr("failed to read %s: %v", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, configErr("failed to parse %s: %v", path, err)
	}

	if err := cfg.Engine.Validate(); err != nil {
		return cfg, err
	}
	if err := cfg.Budget.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func configErr(format string, args ...any) *errors.MotionError {
	return &errors.MotionError{
		Op:   "config.Load",
		Kind: errors.KindConfig,
		Err:  fmt.Errorf(format, args...),
	}
}

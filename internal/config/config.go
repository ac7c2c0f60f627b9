// Package config loads interpreter settings from YAML.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"vblike/internal/evaluator"
)

// Config holds runtime limits and reporting switches. The zero value is
// usable; Default fills in the depth cap.
type Config struct {
	Path     string `yaml:"-"`
	Policy   string `yaml:"policy"`
	MaxDepth int    `yaml:"max_depth"`
	MaxSteps int64  `yaml:"max_steps"`
	Deadline string `yaml:"timeout"`
	Seed     uint64 `yaml:"seed"`
	Timing   bool   `yaml:"timing"`
}

func Default() *Config {
	return &Config{
		Policy:   evaluator.Lenient.String(),
		MaxDepth: evaluator.DefaultMaxDepth,
	}
}

// Load reads path over the defaults. Unknown keys are rejected.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config: empty path")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("config: resolve %s: %w", path, err)
	}
	file, err := os.Open(abs)
	if err != nil {
		return nil, fmt.Errorf("config: open %s: %w", abs, err)
	}
	defer file.Close()

	cfg := Default()
	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: parse %s: %w", abs, err)
	}
	cfg.Path = abs
	cfg.Policy = strings.ToLower(strings.TrimSpace(cfg.Policy))
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", abs, err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if _, err := evaluator.ParsePolicy(c.Policy); err != nil {
		return err
	}
	if c.MaxDepth < 0 || c.MaxDepth > evaluator.MaxDepthLimit {
		return fmt.Errorf("max_depth must be between 0 and %d, got %d", evaluator.MaxDepthLimit, c.MaxDepth)
	}
	if c.MaxSteps < 0 {
		return fmt.Errorf("max_steps must not be negative, got %d", c.MaxSteps)
	}
	if c.Deadline != "" {
		d, err := time.ParseDuration(c.Deadline)
		if err != nil {
			return fmt.Errorf("timeout: %w", err)
		}
		if d < 0 {
			return fmt.Errorf("timeout must not be negative, got %s", d)
		}
	}
	return nil
}

// Timeout is the wall-clock limit for one run; zero means none.
func (c *Config) Timeout() time.Duration {
	d, _ := time.ParseDuration(c.Deadline)
	return d
}

// EvaluatorOptions maps the config onto evaluator options. Sinks and the
// logger are left for the caller.
func (c *Config) EvaluatorOptions() evaluator.Options {
	policy, _ := evaluator.ParsePolicy(c.Policy)
	return evaluator.Options{
		Policy:   policy,
		MaxDepth: c.MaxDepth,
		MaxSteps: c.MaxSteps,
		Seed:     c.Seed,
	}
}

package config

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/physicslab/internal/dynamo"
	"github.com/san-kum/physicslab/internal/integrators"
	"github.com/san-kum/physicslab/internal/policy"
)

const (
	DefaultY0            = 10.0
	DefaultVy0           = 0.0
	DefaultDt            = 0.01
	DefaultDuration      = 3.0
	DefaultStepsPerFrame = 1
	DefaultLogLevel      = "info"
)

type Config struct {
	Kernel KernelConfig `yaml:"kernel"`
	Run    RunConfig    `yaml:"run"`
}

// KernelConfig fixes the physics and policy constants of a kernel instance.
// None of these can be changed per call.
type KernelConfig struct {
	Gravity    float64 `yaml:"gravity"`
	Integrator string  `yaml:"integrator"`
	MaxSteps   uint32  `yaml:"max_steps"`
	MaxDt      float64 `yaml:"max_dt"`
	MaxSpan    float64 `yaml:"max_span"`
	LogLevel   string  `yaml:"log_level"`
}

type RunConfig struct {
	Y0            float64 `yaml:"y0"`
	Vy0           float64 `yaml:"vy0"`
	Dt            float64 `yaml:"dt"`
	Duration      float64 `yaml:"duration"`
	StepsPerFrame uint32  `yaml:"steps_per_frame"`
}

func DefaultConfig() *Config {
	limits := policy.DefaultLimits()
	return &Config{
		Kernel: KernelConfig{
			Gravity:    dynamo.DefaultGravity,
			Integrator: integrators.Default,
			MaxSteps:   limits.MaxSteps,
			MaxDt:      limits.MaxDt,
			MaxSpan:    limits.MaxSpan,
			LogLevel:   DefaultLogLevel,
		},
		Run: RunConfig{
			Y0:            DefaultY0,
			Vy0:           DefaultVy0,
			Dt:            DefaultDt,
			Duration:      DefaultDuration,
			StepsPerFrame: DefaultStepsPerFrame,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if !dynamo.IsFinite(c.Kernel.Gravity) {
		return fmt.Errorf("kernel.gravity must be finite")
	}
	if _, err := integrators.New(c.Kernel.Integrator, c.Kernel.Gravity); err != nil {
		return fmt.Errorf("kernel.integrator: %w", err)
	}
	if err := c.Kernel.Limits().Validate(); err != nil {
		return fmt.Errorf("kernel: %w", err)
	}
	if _, err := ParseLevel(c.Kernel.LogLevel); err != nil {
		return fmt.Errorf("kernel.log_level: %w", err)
	}
	if !(c.Run.Dt > 0) || math.IsInf(c.Run.Dt, 0) {
		return fmt.Errorf("run.dt must be positive and finite, got %g", c.Run.Dt)
	}
	if !(c.Run.Duration > 0) || math.IsInf(c.Run.Duration, 0) {
		return fmt.Errorf("run.duration must be positive and finite, got %g", c.Run.Duration)
	}
	if !dynamo.IsFinite(c.Run.Y0) || !dynamo.IsFinite(c.Run.Vy0) {
		return fmt.Errorf("run.y0 and run.vy0 must be finite")
	}
	if c.Run.StepsPerFrame == 0 {
		return fmt.Errorf("run.steps_per_frame must be positive")
	}
	return nil
}

func (k KernelConfig) Limits() policy.Limits {
	return policy.Limits{
		MaxSteps: k.MaxSteps,
		MaxDt:    k.MaxDt,
		MaxSpan:  k.MaxSpan,
	}
}

// ParseLevel maps a configured level name onto a slog level.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown level %q", name)
	}
}

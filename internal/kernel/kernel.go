// Package kernel implements the six operations of the physicslab C ABI on
// top of the world registry and the per-context error channel.
//
// Each [Caller] is one calling context: every operation on it overwrites its
// error channel exactly once, so LastErrorCode and LastErrorMessage always
// describe the caller's own most recent call. The cgo layer maps OS threads
// to callers with [Kernel.Caller]; Go code uses [Kernel.NewCaller].
//
// # Example
//
//	k, _ := kernel.New(config.DefaultConfig().Kernel)
//	c := k.NewCaller()
//	h := c.WorldCreate(100, 0)
//	if st := c.WorldStep(h, 0.1, 10); !st.OK() {
//		return c.Err()
//	}
package kernel

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/san-kum/physicslab/internal/config"
	"github.com/san-kum/physicslab/internal/errchan"
	"github.com/san-kum/physicslab/internal/integrators"
	"github.com/san-kum/physicslab/internal/metrics"
	"github.com/san-kum/physicslab/internal/policy"
	"github.com/san-kum/physicslab/internal/registry"
)

type Kernel struct {
	gravity float64
	worlds  *registry.Registry
	errs    *errchan.Table
	logger  *slog.Logger
	metrics *metrics.Kernel
}

type Option func(*Kernel)

func WithLogger(logger *slog.Logger) Option {
	return func(k *Kernel) {
		k.logger = logger
	}
}

func WithMetrics(m *metrics.Kernel) Option {
	return func(k *Kernel) {
		k.metrics = m
	}
}

// New builds a kernel from its configuration section.
func New(cfg config.KernelConfig, opts ...Option) (*Kernel, error) {
	limits := cfg.Limits()
	if err := limits.Validate(); err != nil {
		return nil, fmt.Errorf("kernel policy: %w", err)
	}
	integ, err := integrators.New(cfg.Integrator, cfg.Gravity)
	if err != nil {
		return nil, err
	}

	k := &Kernel{
		gravity: cfg.Gravity,
		errs:    errchan.NewTable(),
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(k)
	}

	k.worlds = registry.New(
		registry.WithGuard(policy.NewGuard(limits)),
		registry.WithIntegrator(integ),
		registry.WithLogger(k.logger),
		registry.WithMetrics(k.metrics),
	)
	k.logger.Debug("kernel ready",
		"integrator", integ.Name(), "gravity", cfg.Gravity,
		"max_steps", limits.MaxSteps, "max_dt", limits.MaxDt)
	return k, nil
}

// Caller returns the calling context registered under id, creating its error
// channel on first use.
func (k *Kernel) Caller(id uint64) *Caller {
	return &Caller{k: k, last: k.errs.For(id)}
}

// Release tears down the error channel of context id.
func (k *Kernel) Release(id uint64) {
	k.errs.Release(id)
}

// NewCaller returns a calling context with a private error channel.
func (k *Kernel) NewCaller() *Caller {
	return &Caller{k: k, last: errchan.New()}
}

// Worlds exposes the underlying registry.
func (k *Kernel) Worlds() *registry.Registry { return k.worlds }

// Gravity returns the constant acceleration applied to every world.
func (k *Kernel) Gravity() float64 { return k.gravity }

var (
	defaultOnce   sync.Once
	defaultKernel *Kernel
)

// Default returns the process-wide kernel built from config.DefaultConfig.
func Default() *Kernel {
	defaultOnce.Do(func() {
		k, err := New(config.DefaultConfig().Kernel)
		if err != nil {
			panic(fmt.Sprintf("kernel: default configuration rejected: %v", err))
		}
		defaultKernel = k
	})
	return defaultKernel
}

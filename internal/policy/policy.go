// Package policy bounds the work a single step request may demand.
//
// The guard is pure: it inspects (dt, steps) and nothing else, so it can run
// before any world lock is taken.
package policy

import (
	"fmt"
	"math"
)

const (
	// DefaultMaxSteps caps integrator invocations per call.
	DefaultMaxSteps uint32 = 10_000
	// DefaultMaxDt caps a single time increment, in seconds.
	DefaultMaxDt = 1.0
	// DefaultMaxSpan caps the simulated time covered by one call, in seconds.
	DefaultMaxSpan = 3600.0
)

type Limits struct {
	MaxSteps uint32  `yaml:"max_steps"`
	MaxDt    float64 `yaml:"max_dt"`
	MaxSpan  float64 `yaml:"max_span"`
}

func DefaultLimits() Limits {
	return Limits{
		MaxSteps: DefaultMaxSteps,
		MaxDt:    DefaultMaxDt,
		MaxSpan:  DefaultMaxSpan,
	}
}

// Validate reports whether the limits themselves are usable.
func (l Limits) Validate() error {
	if l.MaxSteps == 0 {
		return fmt.Errorf("max_steps must be positive")
	}
	if !(l.MaxDt > 0) || math.IsInf(l.MaxDt, 0) {
		return fmt.Errorf("max_dt must be positive and finite, got %v", l.MaxDt)
	}
	if !(l.MaxSpan > 0) || math.IsInf(l.MaxSpan, 0) {
		return fmt.Errorf("max_span must be positive and finite, got %v", l.MaxSpan)
	}
	return nil
}

// Verdict is the outcome of a policy check. Reason is empty when allowed.
type Verdict struct {
	Allowed bool
	Reason  string
}

func allow() Verdict { return Verdict{Allowed: true} }

func deny(format string, args ...any) Verdict {
	return Verdict{Reason: fmt.Sprintf(format, args...)}
}

type Guard struct {
	limits Limits
}

func NewGuard(limits Limits) *Guard {
	return &Guard{limits: limits}
}

func (g *Guard) Limits() Limits { return g.limits }

func (g *Guard) Validate(dt float64, steps uint32) Verdict {
	switch {
	case math.IsNaN(dt) || math.IsInf(dt, 0):
		return deny("dt must be finite")
	case dt <= 0:
		return deny("dt must be positive")
	case dt > g.limits.MaxDt:
		return deny("dt %g exceeds limit %g", dt, g.limits.MaxDt)
	case steps == 0:
		return deny("steps must be > 0")
	case steps > g.limits.MaxSteps:
		return deny("steps %d exceeds limit %d", steps, g.limits.MaxSteps)
	}

	span := dt * float64(steps)
	if math.IsInf(span, 0) || span > g.limits.MaxSpan {
		return deny("time span %g exceeds limit %g", span, g.limits.MaxSpan)
	}
	return allow()
}

// Package registry owns every live world behind an opaque handle.
//
// # Thread Safety
//
// The handle map is guarded by a read/write mutex that is only held for
// lookups, inserts and removals. Each world has its own mutex, held for the
// whole of a Step or State call on it, so calls on different handles never
// wait on each other while integrating. Destroy unlinks a world and then
// marks it dead under its mutex: a Step racing a Destroy on the same handle
// either commits before the destroy or reports ErrInvalidHandle.
package registry

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/san-kum/physicslab/internal/dynamo"
	"github.com/san-kum/physicslab/internal/integrators"
	"github.com/san-kum/physicslab/internal/metrics"
	"github.com/san-kum/physicslab/internal/policy"
)

type world struct {
	mu    sync.Mutex
	state dynamo.State
	dead  bool
}

type Registry struct {
	mu     sync.RWMutex
	worlds map[dynamo.Handle]*world
	last   atomic.Uint64

	guard      *policy.Guard
	integrator integrators.Integrator
	logger     *slog.Logger
	metrics    *metrics.Kernel
}

type Option func(*Registry)

func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

func WithMetrics(m *metrics.Kernel) Option {
	return func(r *Registry) {
		r.metrics = m
	}
}

func WithGuard(g *policy.Guard) Option {
	return func(r *Registry) {
		r.guard = g
	}
}

func WithIntegrator(integ integrators.Integrator) Option {
	return func(r *Registry) {
		r.integrator = integ
	}
}

// New returns an empty registry. Without options it uses the default policy
// limits and semi-implicit Euler under dynamo.DefaultGravity.
func New(opts ...Option) *Registry {
	r := &Registry{
		worlds:     make(map[dynamo.Handle]*world),
		guard:      policy.NewGuard(policy.DefaultLimits()),
		integrator: integrators.NewSemiImplicitEuler(dynamo.DefaultGravity),
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Create registers a world at rest time zero and returns its handle.
func (r *Registry) Create(y0, vy0 float64) (dynamo.Handle, error) {
	if !dynamo.IsFinite(y0) || !dynamo.IsFinite(vy0) {
		return dynamo.NullHandle, &dynamo.KernelError{
			Op:      "create",
			Detail:  "y0 and vy0 must be finite",
			Wrapped: dynamo.ErrInvalidArgument,
		}
	}

	w := &world{state: dynamo.Initial(y0, vy0)}
	h := dynamo.Handle(r.last.Add(1))

	r.mu.Lock()
	r.worlds[h] = w
	r.mu.Unlock()

	r.metrics.WorldCreated()
	r.logger.Debug("world created", "handle", uint64(h), "y0", y0, "vy0", vy0)
	return h, nil
}

// Destroy removes the world for h. Unknown handles are ignored; the return
// value reports whether a world was removed.
func (r *Registry) Destroy(h dynamo.Handle) bool {
	r.mu.Lock()
	w, ok := r.worlds[h]
	delete(r.worlds, h)
	r.mu.Unlock()

	if !ok {
		return false
	}

	w.mu.Lock()
	w.dead = true
	w.mu.Unlock()

	r.metrics.WorldDestroyed()
	r.logger.Debug("world destroyed", "handle", uint64(h))
	return true
}

// Step advances the world for h by steps increments of dt. The new state is
// committed only if every intermediate state is finite.
func (r *Registry) Step(h dynamo.Handle, dt float64, steps uint32) error {
	start := time.Now()

	w, ok := r.lookup(h)
	if !ok {
		return invalidHandle("step", h)
	}

	if v := r.guard.Validate(dt, steps); !v.Allowed {
		return &dynamo.KernelError{Op: "step", Handle: h, Detail: v.Reason, Wrapped: dynamo.ErrPolicyDenied}
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.dead {
		return invalidHandle("step", h)
	}

	next := w.state
	for i := uint32(0); i < steps; i++ {
		next = r.integrator.Advance(next, dt)
		if !next.IsValid() {
			r.logger.Warn("step aborted on non-finite state",
				"handle", uint64(h), "step", i, "dt", dt, "state", w.state.String())
			return &dynamo.KernelError{
				Op:      "step",
				Handle:  h,
				Detail:  fmt.Sprintf("non-finite state at step %d/%d", i+1, steps),
				Wrapped: dynamo.ErrNonFinite,
			}
		}
	}

	w.state = next
	r.metrics.ObserveStep(steps, start)
	return nil
}

// State returns a copy of the current state of the world for h.
func (r *Registry) State(h dynamo.Handle) (dynamo.State, error) {
	w, ok := r.lookup(h)
	if !ok {
		return dynamo.State{}, invalidHandle("get_state", h)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.dead {
		return dynamo.State{}, invalidHandle("get_state", h)
	}
	return w.state, nil
}

// Len returns the number of live worlds.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.worlds)
}

func (r *Registry) Guard() *policy.Guard { return r.guard }

func (r *Registry) Integrator() integrators.Integrator { return r.integrator }

func (r *Registry) lookup(h dynamo.Handle) (*world, bool) {
	r.mu.RLock()
	w, ok := r.worlds[h]
	r.mu.RUnlock()
	return w, ok
}

func invalidHandle(op string, h dynamo.Handle) error {
	return &dynamo.KernelError{Op: op, Handle: h, Detail: "unknown handle", Wrapped: dynamo.ErrInvalidHandle}
}

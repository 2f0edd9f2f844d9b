package registry

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/san-kum/physicslab/internal/dynamo"
	"github.com/san-kum/physicslab/internal/integrators"
	"github.com/san-kum/physicslab/internal/policy"
)

func TestCreateThenState(t *testing.T) {
	r := New()

	for _, tc := range []struct{ y0, vy0 float64 }{
		{0, 0}, {100, 0}, {-3.5, 12}, {math.MaxFloat64, -math.MaxFloat64}, {1e-300, -1e-300},
	} {
		h, err := r.Create(tc.y0, tc.vy0)
		require.NoError(t, err)
		require.False(t, h.IsNull())

		s, err := r.State(h)
		require.NoError(t, err)
		assert.Equal(t, dynamo.State{T: 0, Y: tc.y0, Vy: tc.vy0}, s)
	}
	assert.Equal(t, 5, r.Len())
}

func TestCreateRejectsNonFinite(t *testing.T) {
	r := New()

	for _, tc := range []struct{ y0, vy0 float64 }{
		{math.NaN(), 0}, {0, math.Inf(1)}, {math.Inf(-1), math.NaN()},
	} {
		h, err := r.Create(tc.y0, tc.vy0)
		assert.Equal(t, dynamo.NullHandle, h)
		assert.ErrorIs(t, err, dynamo.ErrInvalidArgument)
	}
	assert.Zero(t, r.Len())
}

func TestStepGolden(t *testing.T) {
	r := New()
	h, err := r.Create(100, 0)
	require.NoError(t, err)

	require.NoError(t, r.Step(h, 0.1, 10))

	s, err := r.State(h)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, s.T, 1e-12)
	assert.InDelta(t, -9.8, s.Vy, 1e-12)
	assert.InDelta(t, 94.61, s.Y, 1e-9)
}

func TestStepMatchesRecurrence(t *testing.T) {
	r := New()
	integ := integrators.NewSemiImplicitEuler(dynamo.DefaultGravity)

	for _, tc := range []struct {
		dt    float64
		steps uint32
	}{
		{0.01, 1}, {0.001, 2500}, {0.5, 7}, {1.0, policy.DefaultMaxSteps / 10},
	} {
		h, err := r.Create(20, 3)
		require.NoError(t, err)
		require.NoError(t, r.Step(h, tc.dt, tc.steps))

		want := dynamo.Initial(20, 3)
		for i := uint32(0); i < tc.steps; i++ {
			want = integ.Advance(want, tc.dt)
		}

		got, err := r.State(h)
		require.NoError(t, err)
		assert.Equal(t, want, got)
		assert.InDelta(t, float64(tc.steps)*tc.dt, got.T, 1e-9*float64(tc.steps))
	}
}

func TestStepPolicyDeniedLeavesStateUntouched(t *testing.T) {
	r := New()
	h, err := r.Create(10, 1)
	require.NoError(t, err)
	require.NoError(t, r.Step(h, 0.01, 3))

	before, err := r.State(h)
	require.NoError(t, err)

	for _, tc := range []struct {
		dt    float64
		steps uint32
	}{
		{0, 1}, {-0.1, 1}, {math.NaN(), 1}, {0.1, 0}, {0.1, policy.DefaultMaxSteps + 1}, {5, 1},
	} {
		err := r.Step(h, tc.dt, tc.steps)
		assert.ErrorIs(t, err, dynamo.ErrPolicyDenied, "dt=%v steps=%d", tc.dt, tc.steps)

		after, err := r.State(h)
		require.NoError(t, err)
		assert.Equal(t, math.Float64bits(before.T), math.Float64bits(after.T))
		assert.Equal(t, math.Float64bits(before.Y), math.Float64bits(after.Y))
		assert.Equal(t, math.Float64bits(before.Vy), math.Float64bits(after.Vy))
	}
}

func TestStepNonFiniteAborts(t *testing.T) {
	r := New(WithGuard(policy.NewGuard(policy.Limits{MaxSteps: 10, MaxDt: 1, MaxSpan: 10})))
	h, err := r.Create(math.MaxFloat64, math.MaxFloat64)
	require.NoError(t, err)

	err = r.Step(h, 1, 5)
	require.ErrorIs(t, err, dynamo.ErrNonFinite)
	assert.Equal(t, dynamo.StatusInternalError, dynamo.StatusOf(err))
	assert.Contains(t, err.Error(), "step 1/5")

	s, err := r.State(h)
	require.NoError(t, err)
	assert.Equal(t, dynamo.Initial(math.MaxFloat64, math.MaxFloat64), s)
}

func TestDestroy(t *testing.T) {
	r := New()
	h, err := r.Create(1, 1)
	require.NoError(t, err)

	assert.True(t, r.Destroy(h))
	assert.False(t, r.Destroy(h))
	assert.False(t, r.Destroy(dynamo.NullHandle))
	assert.False(t, r.Destroy(9999))

	assert.ErrorIs(t, r.Step(h, 0.1, 1), dynamo.ErrInvalidHandle)
	_, err = r.State(h)
	assert.ErrorIs(t, err, dynamo.ErrInvalidHandle)
	assert.Zero(t, r.Len())
}

func TestInvalidHandleBeforePolicy(t *testing.T) {
	r := New()
	err := r.Step(42, -1, 0)
	assert.ErrorIs(t, err, dynamo.ErrInvalidHandle)
}

func TestHandlesNeverReused(t *testing.T) {
	r := New()
	seen := make(map[dynamo.Handle]bool)

	for i := 0; i < 100; i++ {
		h, err := r.Create(0, 0)
		require.NoError(t, err)
		seen[h] = true
	}
	for h := range seen {
		r.Destroy(h)
	}

	h, err := r.Create(0, 0)
	require.NoError(t, err)
	assert.False(t, seen[h], "handle %d reused", h)
}

func TestConcurrentWorlds(t *testing.T) {
	r := New()
	g, _ := errgroup.WithContext(context.Background())

	const workers = 16
	handles := make([]dynamo.Handle, workers)
	for i := 0; i < workers; i++ {
		g.Go(func() error {
			h, err := r.Create(float64(i), 0)
			if err != nil {
				return err
			}
			handles[i] = h
			for j := 0; j < 50; j++ {
				if err := r.Step(h, 0.01, 10); err != nil {
					return err
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	for i, h := range handles {
		s, err := r.State(h)
		require.NoError(t, err)
		assert.InDelta(t, 5.0, s.T, 1e-9)

		want := dynamo.Initial(float64(i), 0)
		integ := r.Integrator()
		for j := 0; j < 500; j++ {
			want = integ.Advance(want, 0.01)
		}
		assert.Equal(t, want, s)
	}
}

func TestConcurrentStepsOnSameWorldSerialize(t *testing.T) {
	r := New(WithIntegrator(integrators.NewSemiImplicitEuler(0)))
	h, err := r.Create(0, 1)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				assert.NoError(t, r.Step(h, 0.5, 2))
			}
		}()
	}
	wg.Wait()

	s, err := r.State(h)
	require.NoError(t, err)
	assert.Equal(t, 800.0, s.T)
	assert.Equal(t, 800.0, s.Y)
}

func TestDestroyRacingStep(t *testing.T) {
	for round := 0; round < 50; round++ {
		r := New()
		h, err := r.Create(100, 0)
		require.NoError(t, err)

		var wg sync.WaitGroup
		results := make(chan error, 4)
		for i := 0; i < 4; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				results <- r.Step(h, 0.001, 1000)
			}()
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Destroy(h)
		}()
		wg.Wait()
		close(results)

		for err := range results {
			if err != nil && !errors.Is(err, dynamo.ErrInvalidHandle) {
				t.Fatalf("unexpected error: %v", err)
			}
		}
		_, err = r.State(h)
		assert.ErrorIs(t, err, dynamo.ErrInvalidHandle)
	}
}

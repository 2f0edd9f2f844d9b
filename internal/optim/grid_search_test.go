package optim

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/physicslab/internal/config"
	"github.com/san-kum/physicslab/internal/kernel"
	"github.com/san-kum/physicslab/internal/sim"
)

func newSimulator(t *testing.T) *sim.Simulator {
	t.Helper()
	k, err := kernel.New(config.DefaultConfig().Kernel)
	require.NoError(t, err)
	return sim.New(k)
}

func freeFall(params map[string]float64) (sim.Config, error) {
	steps := params["steps_per_frame"]
	if steps < 1 {
		return sim.Config{}, errors.New("steps_per_frame must be >= 1")
	}
	return sim.Config{
		Y0:            100,
		Dt:            params["dt"],
		Duration:      1,
		StepsPerFrame: uint32(steps),
	}, nil
}

func TestGridSearchPicksSmallestDrift(t *testing.T) {
	g := NewGridSearch(
		Param{Name: "dt", Values: []float64{0.1, 0.01, 2.0}},
		Param{Name: "steps_per_frame", Values: []float64{0, 1}},
	)

	res, err := g.Search(context.Background(), newSimulator(t), freeFall, "energy_drift")
	require.NoError(t, err)

	assert.Equal(t, 0.01, res.Params["dt"])
	assert.Equal(t, 1.0, res.Params["steps_per_frame"])
	assert.Equal(t, 2, res.Evaluated)
	// three points with steps_per_frame=0, one with dt beyond the policy limit
	assert.Equal(t, 4, res.Rejected)
	assert.Greater(t, res.Value, 0.0)
}

func TestGridSearchNothingAdmissible(t *testing.T) {
	g := NewGridSearch(
		Param{Name: "dt", Values: []float64{5, 10}},
		Param{Name: "steps_per_frame", Values: []float64{1}},
	)
	_, err := g.Search(context.Background(), newSimulator(t), freeFall, "energy_drift")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 rejected")
}

func TestGridSearchUnknownMetric(t *testing.T) {
	g := NewGridSearch(
		Param{Name: "dt", Values: []float64{0.1}},
		Param{Name: "steps_per_frame", Values: []float64{1}},
	)
	_, err := g.Search(context.Background(), newSimulator(t), freeFall, "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown metric")
}

func TestGridSearchCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	g := NewGridSearch(Param{Name: "dt", Values: []float64{0.1}})
	_, err := g.Search(ctx, newSimulator(t), freeFall, "energy_drift")
	assert.ErrorIs(t, err, context.Canceled)
}

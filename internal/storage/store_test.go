package storage

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/physicslab/internal/dynamo"
	"github.com/san-kum/physicslab/internal/sim"
)

func sampleTrajectory() *sim.Trajectory {
	return &sim.Trajectory{
		States: []dynamo.State{
			{T: 0, Y: 100, Vy: 0},
			{T: 0.1, Y: 99.902, Vy: -0.9800000000000001},
		},
		Metrics: map[string]float64{"energy_drift": 1.5e-4},
	}
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	require.NoError(t, st.Init())

	runID, err := st.Save(RunMetadata{Integrator: "semi_implicit_euler", Y0: 100, Dt: 0.1}, sampleTrajectory())
	require.NoError(t, err)
	assert.NotEmpty(t, runID)

	meta, err := st.Load(runID)
	require.NoError(t, err)
	assert.Equal(t, runID, meta.ID)
	assert.Equal(t, "semi_implicit_euler", meta.Integrator)
	assert.Equal(t, 2, meta.Frames)
	assert.Equal(t, dynamo.State{T: 0.1, Y: 99.902, Vy: -0.9800000000000001}, meta.Final)
	assert.Equal(t, 1.5e-4, meta.Metrics["energy_drift"])

	tr, err := st.LoadStates(runID)
	require.NoError(t, err)
	assert.Equal(t, sampleTrajectory().States, tr.States)
}

func TestStoreList(t *testing.T) {
	dir := t.TempDir()
	st := New(dir)
	require.NoError(t, st.Init())

	runs, err := st.List()
	require.NoError(t, err)
	assert.Empty(t, runs)

	first, err := st.Save(RunMetadata{}, sampleTrajectory())
	require.NoError(t, err)
	second, err := st.Save(RunMetadata{}, sampleTrajectory())
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "junk"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "stray.txt"), nil, 0644))

	runs, err = st.List()
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}

func TestStoreListMissingDir(t *testing.T) {
	runs, err := New(filepath.Join(t.TempDir(), "missing")).List()
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestStoreFileStructure(t *testing.T) {
	dir := t.TempDir()
	st := New(dir)
	require.NoError(t, st.Init())

	runID, err := st.Save(RunMetadata{}, sampleTrajectory())
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(dir, runID, "metadata.json"))
	assert.FileExists(t, filepath.Join(dir, runID, "states.csv"))
}

func TestLoadStatesSkipsMalformedRows(t *testing.T) {
	dir := t.TempDir()
	runDir := filepath.Join(dir, "run")
	require.NoError(t, os.MkdirAll(runDir, 0755))
	body := "t,y,vy\n0,1,2\nnot,a,number\n0.5\n1,0,-1\n"
	require.NoError(t, os.WriteFile(filepath.Join(runDir, "states.csv"), []byte(body), 0644))

	tr, err := New(dir).LoadStates("run")
	require.NoError(t, err)
	assert.Equal(t, []dynamo.State{{T: 0, Y: 1, Vy: 2}, {T: 1, Y: 0, Vy: -1}}, tr.States)
}

func TestExportJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ExportJSON(&buf, RunMetadata{ID: "gravity_x"}, sampleTrajectory()))

	var got ExportData
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "gravity_x", got.Run.ID)
	assert.Equal(t, []float64{0, 0.1}, got.Times)
	assert.Equal(t, []float64{100, 99.902}, got.Heights)
	assert.Len(t, got.Velocities, 2)
}

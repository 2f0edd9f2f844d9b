package scenario

import (
	"bytes"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/physicslab/internal/config"
	"github.com/san-kum/physicslab/internal/kernel"
)

func newKernel(t *testing.T) *kernel.Kernel {
	t.Helper()
	k, err := kernel.New(config.DefaultConfig().Kernel)
	require.NoError(t, err)
	return k
}

func TestRunFreeFallTranscript(t *testing.T) {
	sc, err := Load("testdata/free_fall.yaml")
	require.NoError(t, err)
	assert.Equal(t, "free_fall", sc.Name)

	k := newKernel(t)
	var out bytes.Buffer
	report, err := Run(k.NewCaller(), sc, &out)
	require.NoError(t, err)

	assert.True(t, report.OK(), "failures: %v", report.Failures)
	assert.Equal(t, 19, report.Calls)
	assert.Zero(t, k.Worlds().Len())

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "free_fall", out.Bytes())
}

func TestRunReportsUnexpectedStatus(t *testing.T) {
	sc, err := Parse([]byte(`
name: mismatch
calls:
  - op: step
    world: nowhere
    dt: 0.1
    steps: 1
  - op: create
    as: w
    y0: 1
    expect: invalid_argument
`))
	require.NoError(t, err)

	k := newKernel(t)
	var out bytes.Buffer
	report, err := Run(k.NewCaller(), sc, &out)
	require.NoError(t, err)

	require.Len(t, report.Failures, 2)
	assert.Equal(t, "call 1 (step): got invalid_handle, want ok", report.Failures[0])
	assert.Equal(t, "call 2 (create): got ok, want invalid_argument", report.Failures[1])
	assert.Zero(t, k.Worlds().Len(), "named worlds are destroyed after the run")
}

func TestParseRejectsBadScenarios(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"empty", "name: e\n", "no calls"},
		{"unknown op", "calls:\n  - op: explode\n", `unknown op "explode"`},
		{"unknown status", "calls:\n  - op: create\n    expect: maybe\n", `unknown status "maybe"`},
		{"negative repeat", "calls:\n  - op: step\n    repeat: -1\n", "repeat"},
		{"malformed", "calls: [", "parse scenario"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestRunTranscriptLinePerCall(t *testing.T) {
	sc := &Scenario{Name: "repeat", Calls: []Call{
		{Op: OpCreate, As: "w", Y0: 1},
		{Op: OpStep, World: "w", Dt: 0.01, Steps: 5, Repeat: 3},
		{Op: OpDestroy, World: "w"},
	}}
	require.NoError(t, sc.Validate())

	var out bytes.Buffer
	report, err := Run(newKernel(t).NewCaller(), sc, &out)
	require.NoError(t, err)
	assert.True(t, report.OK())
	assert.Equal(t, 5, report.Calls)
	assert.Len(t, strings.Split(strings.TrimSpace(out.String()), "\n"), 5)
}

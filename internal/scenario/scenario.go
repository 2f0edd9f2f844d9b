// Package scenario replays scripted sequences of kernel calls from YAML and
// records a transcript of every call and its status.
package scenario

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/physicslab/internal/dynamo"
	"github.com/san-kum/physicslab/internal/kernel"
)

const (
	OpCreate   = "create"
	OpStep     = "step"
	OpGetState = "get_state"
	OpDestroy  = "destroy"
)

// Scenario is a named list of kernel calls.
type Scenario struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Calls       []Call `yaml:"calls"`
}

// Call is one kernel operation. World names a handle bound by an earlier
// create's As; an unbound name resolves to the null handle.
type Call struct {
	Op     string  `yaml:"op"`
	As     string  `yaml:"as,omitempty"`
	World  string  `yaml:"world,omitempty"`
	Y0     float64 `yaml:"y0,omitempty"`
	Vy0    float64 `yaml:"vy0,omitempty"`
	Dt     float64 `yaml:"dt,omitempty"`
	Steps  uint32  `yaml:"steps,omitempty"`
	Repeat int     `yaml:"repeat,omitempty"`
	// Expect is the status name the call must return; empty means ok.
	Expect string `yaml:"expect,omitempty"`
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func Parse(data []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

func (sc *Scenario) Validate() error {
	if len(sc.Calls) == 0 {
		return fmt.Errorf("scenario %q has no calls", sc.Name)
	}
	for i, c := range sc.Calls {
		switch c.Op {
		case OpCreate, OpStep, OpGetState, OpDestroy:
		default:
			return fmt.Errorf("call %d: unknown op %q", i+1, c.Op)
		}
		if c.Repeat < 0 {
			return fmt.Errorf("call %d: repeat must be >= 0", i+1)
		}
		if c.Expect != "" {
			if _, ok := parseStatus(c.Expect); !ok {
				return fmt.Errorf("call %d: unknown status %q", i+1, c.Expect)
			}
		}
	}
	return nil
}

func parseStatus(name string) (dynamo.Status, bool) {
	for st := dynamo.StatusOK; st <= dynamo.StatusInternalError; st++ {
		if st.String() == name {
			return st, true
		}
	}
	return 0, false
}

// Report summarises a replay.
type Report struct {
	Calls    int
	Failures []string
}

func (r *Report) OK() bool { return len(r.Failures) == 0 }

// Run replays sc on c and writes one transcript line per call to w. Calls
// whose status differs from Expect are collected in the report; they do not
// stop the replay. Every world created under a name is destroyed at the end.
func Run(c *kernel.Caller, sc *Scenario, w io.Writer) (*Report, error) {
	r := &runner{c: c, w: w, worlds: make(map[string]uint64), report: &Report{}}
	defer r.cleanup()

	for i, call := range sc.Calls {
		n := max(call.Repeat, 1)
		for j := 0; j < n; j++ {
			if err := r.exec(i+1, call); err != nil {
				return r.report, err
			}
		}
	}
	return r.report, nil
}

type runner struct {
	c      *kernel.Caller
	w      io.Writer
	worlds map[string]uint64
	order  []string
	report *Report
}

func (r *runner) exec(idx int, call Call) error {
	r.report.Calls++
	h := r.worlds[call.World]

	var (
		line string
		st   dynamo.Status
	)
	switch call.Op {
	case OpCreate:
		h = r.c.WorldCreate(call.Y0, call.Vy0)
		st = r.c.LastErrorCode()
		if call.As != "" && h != 0 {
			if _, ok := r.worlds[call.As]; !ok {
				r.order = append(r.order, call.As)
			}
			r.worlds[call.As] = h
		}
		line = fmt.Sprintf("create y0=%s vy0=%s handle=%d status=%s", ftoa(call.Y0), ftoa(call.Vy0), h, st)
	case OpStep:
		st = r.c.WorldStep(h, call.Dt, call.Steps)
		line = fmt.Sprintf("step world=%s dt=%s steps=%d status=%s", call.World, ftoa(call.Dt), call.Steps, st)
	case OpGetState:
		var t, y, vy float64
		st = r.c.WorldGetState(h, &t, &y, &vy)
		line = fmt.Sprintf("get_state world=%s status=%s", call.World, st)
		if st.OK() {
			line += fmt.Sprintf(" t=%s y=%s vy=%s", ftoa(t), ftoa(y), ftoa(vy))
		}
	case OpDestroy:
		r.c.WorldDestroy(h)
		st = r.c.LastErrorCode()
		line = fmt.Sprintf("destroy world=%s status=%s", call.World, st)
	}

	if err := r.c.Err(); err != nil {
		line += fmt.Sprintf(" error=%q", err.Error())
	}
	if _, err := fmt.Fprintln(r.w, line); err != nil {
		return err
	}

	want := dynamo.StatusOK
	if call.Expect != "" {
		want, _ = parseStatus(call.Expect)
	}
	if st != want {
		r.report.Failures = append(r.report.Failures,
			fmt.Sprintf("call %d (%s): got %s, want %s", idx, call.Op, st, want))
	}
	return nil
}

func (r *runner) cleanup() {
	for _, name := range r.order {
		if h, ok := r.worlds[name]; ok {
			r.c.WorldDestroy(h)
		}
	}
}

func ftoa(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

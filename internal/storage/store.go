// Package storage records simulation runs made by the CLI. Each run is a
// directory holding metadata.json and states.csv. Worlds inside the kernel
// are never persisted; only trajectories sampled through the ABI are.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/physicslab/internal/dynamo"
	"github.com/san-kum/physicslab/internal/sim"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID            string             `json:"id"`
	Preset        string             `json:"preset,omitempty"`
	Timestamp     time.Time          `json:"timestamp"`
	Integrator    string             `json:"integrator"`
	Gravity       float64            `json:"gravity"`
	Y0            float64            `json:"y0"`
	Vy0           float64            `json:"vy0"`
	Dt            float64            `json:"dt"`
	Duration      float64            `json:"duration"`
	StepsPerFrame uint32             `json:"steps_per_frame"`
	Frames        int                `json:"frames"`
	Final         dynamo.State       `json:"final"`
	Metrics       map[string]float64 `json:"metrics"`
}

var csvHeader = []string{"t", "y", "vy"}

// Save writes meta and the trajectory under a new run ID, which it returns.
// The ID, timestamp, frame count and final state of meta are filled in.
func (s *Store) Save(meta RunMetadata, result *sim.Trajectory) (string, error) {
	meta.ID = "gravity_" + uuid.NewString()[:8]
	meta.Timestamp = time.Now()
	meta.Frames = len(result.States)
	meta.Final = result.Final()
	meta.Metrics = result.Metrics

	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	if err := writeJSON(filepath.Join(runDir, "metadata.json"), meta); err != nil {
		return "", err
	}
	if err := writeStates(filepath.Join(runDir, "states.csv"), result.States); err != nil {
		return "", err
	}
	return meta.ID, nil
}

func writeJSON(path string, v any) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeStates(path string, states []dynamo.State) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(csvHeader); err != nil {
		return err
	}
	for _, st := range states {
		row := []string{
			strconv.FormatFloat(st.T, 'g', -1, 64),
			strconv.FormatFloat(st.Y, 'g', -1, 64),
			strconv.FormatFloat(st.Vy, 'g', -1, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// List returns every readable run, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	return &meta, nil
}

// LoadStates reads back the trajectory of a run. Malformed rows are skipped.
func (s *Store) LoadStates(runID string) (*sim.Trajectory, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "states.csv"))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	tr := &sim.Trajectory{States: make([]dynamo.State, 0, len(records))}
	for i := 1; i < len(records); i++ {
		st, ok := parseRow(records[i])
		if !ok {
			continue
		}
		tr.States = append(tr.States, st)
	}
	return tr, nil
}

func parseRow(record []string) (dynamo.State, bool) {
	if len(record) < 3 {
		return dynamo.State{}, false
	}
	var vals [3]float64
	for i := range vals {
		v, err := strconv.ParseFloat(record[i], 64)
		if err != nil {
			return dynamo.State{}, false
		}
		vals[i] = v
	}
	return dynamo.State{T: vals[0], Y: vals[1], Vy: vals[2]}, true
}

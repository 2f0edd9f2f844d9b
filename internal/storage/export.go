package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/physicslab/internal/sim"
)

type ExportData struct {
	Run        RunMetadata `json:"run"`
	Times      []float64   `json:"times"`
	Heights    []float64   `json:"heights"`
	Velocities []float64   `json:"velocities"`
}

func NewExportData(meta RunMetadata, tr *sim.Trajectory) ExportData {
	return ExportData{
		Run:        meta,
		Times:      tr.Times(),
		Heights:    tr.Heights(),
		Velocities: tr.Velocities(),
	}
}

// ExportJSON writes a run and its trajectory as indented JSON to w.
func ExportJSON(w io.Writer, meta RunMetadata, tr *sim.Trajectory) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(NewExportData(meta, tr))
}

func ExportJSONFile(path string, meta RunMetadata, tr *sim.Trajectory) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return ExportJSON(file, meta, tr)
}

package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/san-kum/odestep/internal/dynamo"
)

type ExportData struct {
	Model       string             `json:"model"`
	Method      string             `json:"method"`
	Step        float64            `json:"step"`
	Until       float64            `json:"until"`
	StepsTaken  int                `json:"steps_taken"`
	Evaluations int64              `json:"evaluations"`
	Times       []float64          `json:"times"`
	States      [][]float64        `json:"states"`
	Metrics     map[string]float64 `json:"metrics"`
}

func NewExportData(model, method string, step, until float64, result *dynamo.Result) ExportData {
	data := ExportData{
		Model:       model,
		Method:      method,
		Step:        step,
		Until:       until,
		StepsTaken:  result.StepsTaken,
		Evaluations: result.Evaluations,
		Times:       result.Times,
		States:      make([][]float64, len(result.States)),
		Metrics:     result.Metrics,
	}
	for i, s := range result.States {
		data.States[i] = s
	}
	return data
}

func (d ExportData) Encode(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(d)
}

// ExportJSON writes d to path, or to stdout when path is "" or "-".
func ExportJSON(path string, d ExportData) error {
	if path == "" || path == "-" {
		return d.Encode(os.Stdout)
	}
	return writeJSON(path, d)
}

// TrajectoryIndices maps state components onto the trajectory columns.
type TrajectoryIndices struct {
	Position, Velocity int
}

// WriteTrajectory writes one line per sample: independent variable,
// position, velocity, tab separated in %.12g.
func WriteTrajectory(w io.Writer, idx TrajectoryIndices, times []float64, states []dynamo.State) error {
	bw := bufio.NewWriter(w)
	for i, s := range states {
		if idx.Position >= len(s) || idx.Velocity >= len(s) || i >= len(times) {
			return fmt.Errorf("%w: sample %d", dynamo.ErrDimensionMismatch, i)
		}
		if _, err := fmt.Fprintf(bw, "%.12g\t%.12g\t%.12g\n", times[i], s[idx.Position], s[idx.Velocity]); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func writeJSON(path string, v any) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return err
	}
	return file.Close()
}

package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/clothsim/internal/sim"
)

type ExportData struct {
	RunInfo
	Steps         int                `json:"steps"`
	Times         []float64          `json:"times"`
	Energies      []float64          `json:"energies"`
	EnergyDrift   float64            `json:"energy_drift"`
	PositionTimes []float64          `json:"position_times,omitempty"`
	Positions     [][]mgl64.Vec3     `json:"positions,omitempty"`
	Metrics       map[string]float64 `json:"metrics"`
}

func newExportData(info RunInfo, result *sim.Result) ExportData {
	return ExportData{
		RunInfo:       info,
		Steps:         result.TicksTaken,
		Times:         result.Times,
		Energies:      result.Energies,
		EnergyDrift:   result.EnergyDrift,
		PositionTimes: result.PositionTimes,
		Positions:     result.Positions,
		Metrics:       result.Metrics,
	}
}

// WriteJSON encodes the run as indented JSON. Vectors encode as
// three-element arrays.
func WriteJSON(w io.Writer, info RunInfo, result *sim.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(newExportData(info, result))
}

func ExportJSON(path string, info RunInfo, result *sim.Result) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteJSON(file, info, result); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

func ExportJSONStdout(info RunInfo, result *sim.Result) error {
	return WriteJSON(os.Stdout, info, result)
}

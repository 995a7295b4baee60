package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/clothsim/internal/sim"
)

const (
	metadataFile  = "metadata.json"
	energyFile    = "energy.csv"
	positionsFile = "positions.csv"
)

// Store keeps one directory per run under baseDir.
type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// RunInfo describes how a result was produced.
type RunInfo struct {
	Scene      string  `json:"scene"`
	Integrator string  `json:"integrator"`
	Dt         float64 `json:"dt"`
	Substeps   int     `json:"substeps"`
	Ticks      int     `json:"ticks"`
	Seed       int64   `json:"seed"`
}

type RunMetadata struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	RunInfo
	Nodes       int                `json:"nodes"`
	TicksTaken  int                `json:"ticks_taken"`
	EnergyDrift float64            `json:"energy_drift"`
	Metrics     map[string]float64 `json:"metrics"`
	// Diverged marks a run whose drift or metrics went non-finite. Those
	// values are left out since JSON cannot hold them.
	Diverged bool `json:"diverged,omitempty"`
}

// Save writes metadata.json, energy.csv and, when the result recorded
// snapshots, positions.csv. It returns the new run ID.
func (s *Store) Save(info RunInfo, result *sim.Result) (string, error) {
	now := time.Now()
	runID := fmt.Sprintf("%s_%d", info.Scene, now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:          runID,
		Timestamp:   now,
		RunInfo:     info,
		TicksTaken:  result.TicksTaken,
		EnergyDrift: result.EnergyDrift,
		Metrics:     make(map[string]float64, len(result.Metrics)),
	}
	if !isFinite(meta.EnergyDrift) {
		meta.EnergyDrift = 0
		meta.Diverged = true
	}
	for name, v := range result.Metrics {
		if !isFinite(v) {
			meta.Diverged = true
			continue
		}
		meta.Metrics[name] = v
	}
	if final := result.Final(); final != nil {
		meta.Nodes = len(final)
	}

	if err := writeFile(filepath.Join(runDir, metadataFile), func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(meta)
	}); err != nil {
		return "", err
	}

	if err := writeFile(filepath.Join(runDir, energyFile), func(w io.Writer) error {
		return writeEnergy(w, result)
	}); err != nil {
		return "", err
	}

	if len(result.Positions) == 0 {
		return runID, nil
	}
	if err := writeFile(filepath.Join(runDir, positionsFile), func(w io.Writer) error {
		return writePositions(w, result)
	}); err != nil {
		return "", err
	}

	return runID, nil
}

func writeFile(path string, fn func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func isFinite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func writeEnergy(out io.Writer, result *sim.Result) error {
	w := csv.NewWriter(out)
	if err := w.Write([]string{"time", "energy"}); err != nil {
		return err
	}
	for i := range result.Times {
		if err := w.Write([]string{formatFloat(result.Times[i]), formatFloat(result.Energies[i])}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// writePositions writes one row per snapshot: time, then x,y,z per node.
func writePositions(out io.Writer, result *sim.Result) error {
	w := csv.NewWriter(out)

	header := []string{"time"}
	for i := range result.Positions[0] {
		header = append(header, fmt.Sprintf("x%d", i), fmt.Sprintf("y%d", i), fmt.Sprintf("z%d", i))
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for i, snap := range result.Positions {
		row := make([]string, 0, len(header))
		row = append(row, formatFloat(result.PositionTimes[i]))
		for _, p := range snap {
			row = append(row, formatFloat(p.X()), formatFloat(p.Y()), formatFloat(p.Z()))
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

	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (s *Store) readCSV(runID, name string) ([][]string, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, name))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1
	return r.ReadAll()
}

// LoadEnergy returns the energy series and its times.
func (s *Store) LoadEnergy(runID string) ([]float64, []float64, error) {
	records, err := s.readCSV(runID, energyFile)
	if err != nil {
		return nil, nil, err
	}
	if len(records) < 2 {
		return []float64{}, []float64{}, nil
	}

	times := make([]float64, 0, len(records)-1)
	energies := make([]float64, 0, len(records)-1)
	for line, record := range records[1:] {
		if len(record) != 2 {
			return nil, nil, fmt.Errorf("%s line %d: %d fields", energyFile, line+2, len(record))
		}
		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			return nil, nil, fmt.Errorf("%s line %d: %w", energyFile, line+2, err)
		}
		e, err := strconv.ParseFloat(record[1], 64)
		if err != nil {
			return nil, nil, fmt.Errorf("%s line %d: %w", energyFile, line+2, err)
		}
		times = append(times, t)
		energies = append(energies, e)
	}
	return energies, times, nil
}

// LoadPositions returns the recorded snapshots and their times.
func (s *Store) LoadPositions(runID string) ([][]mgl64.Vec3, []float64, error) {
	records, err := s.readCSV(runID, positionsFile)
	if err != nil {
		return nil, nil, err
	}
	if len(records) < 2 {
		return [][]mgl64.Vec3{}, []float64{}, nil
	}

	times := make([]float64, 0, len(records)-1)
	snaps := make([][]mgl64.Vec3, 0, len(records)-1)
	for line, record := range records[1:] {
		if len(record) == 0 || (len(record)-1)%3 != 0 {
			return nil, nil, fmt.Errorf("%s line %d: %d fields", positionsFile, line+2, len(record))
		}

		vals := make([]float64, len(record))
		for j, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, nil, fmt.Errorf("%s line %d: %w", positionsFile, line+2, err)
			}
			vals[j] = v
		}

		snap := make([]mgl64.Vec3, (len(vals)-1)/3)
		for n := range snap {
			snap[n] = mgl64.Vec3{vals[1+3*n], vals[2+3*n], vals[3+3*n]}
		}
		times = append(times, vals[0])
		snaps = append(snaps, snap)
	}
	return snaps, times, nil
}

// LoadResult rebuilds a stored run. Positions are optional; a run saved
// without snapshots loads with none.
func (s *Store) LoadResult(runID string) (*RunMetadata, *sim.Result, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	energies, times, err := s.LoadEnergy(runID)
	if err != nil {
		return nil, nil, err
	}
	result := &sim.Result{
		Times:       times,
		Energies:    energies,
		Metrics:     meta.Metrics,
		TicksTaken:  meta.TicksTaken,
		EnergyDrift: meta.EnergyDrift,
	}

	snaps, snapTimes, err := s.LoadPositions(runID)
	switch {
	case err == nil:
		result.Positions, result.PositionTimes = snaps, snapTimes
	case !os.IsNotExist(err):
		return nil, nil, err
	}
	return meta, result, nil
}

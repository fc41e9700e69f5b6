package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/rdsim/internal/grayscott"
	"github.com/san-kum/rdsim/internal/sim"
)

const (
	metadataFile = "metadata.json"
	seriesFile   = "series.csv"
	fieldFile    = "field_v.csv"
)

var ErrCorruptRun = errors.New("storage: corrupt run data")

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
	ID         string             `json:"id"`
	Preset     string             `json:"preset,omitempty"`
	Timestamp  time.Time          `json:"timestamp"`
	Seed       int64              `json:"seed"`
	Width      int                `json:"width"`
	Height     int                `json:"height"`
	Du         float64            `json:"du"`
	Dv         float64            `json:"dv"`
	F          float64            `json:"f"`
	K          float64            `json:"k"`
	Dt         float64            `json:"dt"`
	Steps      int                `json:"steps"`
	Wavelength float64            `json:"wavelength,omitempty"`
	Metrics    map[string]float64 `json:"metrics"`
}

// SetParams copies the engine parameters into the metadata.
func (m *RunMetadata) SetParams(p grayscott.Params) {
	m.Du, m.Dv, m.F, m.K, m.Dt = p.Du, p.Dv, p.F, p.K, p.Dt
}

// Save writes a run directory with metadata.json, series.csv and, when
// final is non-nil, field_v.csv. ID and Timestamp are filled in.
func (s *Store) Save(meta RunMetadata, result *sim.Result, final *grayscott.Field) (string, error) {
	now := time.Now()
	label := meta.Preset
	if label == "" {
		label = "custom"
	}
	runID := fmt.Sprintf("%s_%d", label, now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta.ID = runID
	meta.Timestamp = now
	if result != nil {
		meta.Steps = result.StepsTaken
		meta.Metrics = result.Metrics
	}
	if final != nil {
		meta.Width, meta.Height = final.Width(), final.Height()
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if result != nil {
		if err := writeSeries(filepath.Join(runDir, seriesFile), result); err != nil {
			return "", err
		}
	}
	if final != nil {
		if err := writeField(filepath.Join(runDir, fieldFile), final); err != nil {
			return "", err
		}
	}
	return runID, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func seriesNames(result *sim.Result) []string {
	names := make([]string, 0, len(result.Series))
	for name := range result.Series {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func writeSeries(path string, result *sim.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	names := seriesNames(result)
	header := append([]string{"step", "time"}, names...)
	if err := w.Write(header); err != nil {
		return err
	}

	for i := range result.Steps {
		row := []string{
			strconv.Itoa(result.Steps[i]),
			strconv.FormatFloat(result.Times[i], 'f', 6, 64),
		}
		for _, name := range names {
			val := 0.0
			if i < len(result.Series[name]) {
				val = result.Series[name][i]
			}
			row = append(row, strconv.FormatFloat(val, 'g', -1, 64))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func writeField(path string, field *grayscott.Field) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	row := make([]string, field.Width())
	for y := 0; y < field.Height(); y++ {
		for x := range row {
			row[x] = strconv.FormatFloat(field.At(x, y), 'g', -1, 64)
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

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptRun, runID, err)
	}
	return &meta, nil
}

// Series is the sampled metric history of a run.
type Series struct {
	Steps  []int
	Times  []float64
	Values map[string][]float64
}

func (s *Store) LoadSeries(runID string) (*Series, error) {
	records, err := readCSV(filepath.Join(s.baseDir, runID, seriesFile))
	if err != nil {
		return nil, err
	}

	out := &Series{Values: make(map[string][]float64)}
	if len(records) < 2 {
		return out, nil
	}

	header := records[0]
	if len(header) < 2 {
		return nil, fmt.Errorf("%w: %s: short series header", ErrCorruptRun, runID)
	}
	for _, record := range records[1:] {
		if len(record) != len(header) {
			continue
		}
		step, err := strconv.Atoi(record[0])
		if err != nil {
			continue
		}
		t, err := strconv.ParseFloat(record[1], 64)
		if err != nil {
			continue
		}
		out.Steps = append(out.Steps, step)
		out.Times = append(out.Times, t)
		for j := 2; j < len(record); j++ {
			val, err := strconv.ParseFloat(record[j], 64)
			if err != nil {
				val = 0
			}
			out.Values[header[j]] = append(out.Values[header[j]], val)
		}
	}
	return out, nil
}

// LoadField reads the final V field of a run.
func (s *Store) LoadField(runID string) (*grayscott.Field, error) {
	records, err := readCSV(filepath.Join(s.baseDir, runID, fieldFile))
	if err != nil {
		return nil, err
	}
	if len(records) == 0 || len(records[0]) == 0 {
		return nil, fmt.Errorf("%w: %s: empty field", ErrCorruptRun, runID)
	}

	field, err := grayscott.NewField(len(records[0]), len(records))
	if err != nil {
		return nil, err
	}
	for y, record := range records {
		if len(record) != field.Width() {
			return nil, fmt.Errorf("%w: %s: row %d has %d cells", ErrCorruptRun, runID, y, len(record))
		}
		for x, cell := range record {
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: %s: cell (%d,%d): %v", ErrCorruptRun, runID, x, y, err)
			}
			field.Set(x, y, v)
		}
	}
	return field, nil
}

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1
	return r.ReadAll()
}

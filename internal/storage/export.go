package storage

import (
	"encoding/json"
	"io"
)

type ExportData struct {
	Meta   RunMetadata          `json:"meta"`
	Steps  []int                `json:"steps"`
	Times  []float64            `json:"times"`
	Series map[string][]float64 `json:"series"`
}

// ExportJSON writes a saved run's metadata and metric history as one JSON
// document.
func (s *Store) ExportJSON(w io.Writer, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	series, err := s.LoadSeries(runID)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(ExportData{
		Meta:   *meta,
		Steps:  series.Steps,
		Times:  series.Times,
		Series: series.Values,
	})
}

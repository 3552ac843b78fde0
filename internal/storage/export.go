package storage

import (
	"encoding/json"
	"io"
)

type ExportData struct {
	Run   RunMetadata `json:"run"`
	Steps int         `json:"steps"`
	Stats []StatRow   `json:"stats"`
}

// ExportJSON writes a run and its per-frame stats as a single document.
func ExportJSON(w io.Writer, meta RunMetadata, rows []StatRow) error {
	data := ExportData{
		Run:   meta,
		Steps: len(rows),
		Stats: rows,
	}
	if data.Stats == nil {
		data.Stats = []StatRow{}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

package features

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
)

// ErrEmptyTrack is returned when a track file holds no records.
var ErrEmptyTrack = errors.New("features: track has no records")

// Track is a precomputed feature stream sampled at Rate records per second.
// Sampling is random access and clamps out-of-range times to the nearest
// record.
type Track struct {
	Rate    float64  `json:"rate"`
	Records []Record `json:"records"`
}

// NewTrack builds a track by sampling src at the given rate for duration
// seconds. It is the way to freeze a live source into a reproducible file.
func NewTrack(src Sampler, rate, duration float64) *Track {
	if rate <= 0 || duration <= 0 {
		return &Track{Rate: rate}
	}
	n := int(math.Ceil(duration * rate))
	tr := &Track{Rate: rate, Records: make([]Record, n)}
	for i := 0; i < n; i++ {
		tr.Records[i] = src.Sample(float64(i) / rate)
	}
	return tr
}

// Index returns the record index for time t, clamped into the track.
func (tr *Track) Index(t float64) int {
	if len(tr.Records) == 0 {
		return -1
	}
	if math.IsNaN(t) || t <= 0 || tr.Rate <= 0 {
		return 0
	}
	idx := math.Floor(t * tr.Rate)
	if idx >= float64(len(tr.Records)-1) {
		return len(tr.Records) - 1
	}
	return int(idx)
}

// Sample implements Sampler.
func (tr *Track) Sample(t float64) Record {
	idx := tr.Index(t)
	if idx < 0 {
		return Zero()
	}
	return tr.Records[idx]
}

// Duration is the time covered by the track in seconds.
func (tr *Track) Duration() float64 {
	if tr.Rate <= 0 {
		return 0
	}
	return float64(len(tr.Records)) / tr.Rate
}

// LoadTrack reads a JSON track file.
func LoadTrack(path string) (*Track, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var tr Track
	if err := json.Unmarshal(data, &tr); err != nil {
		return nil, fmt.Errorf("features: decode %s: %w", path, err)
	}
	if len(tr.Records) == 0 {
		return nil, ErrEmptyTrack
	}
	if tr.Rate <= 0 {
		return nil, fmt.Errorf("features: track rate must be positive, got %f", tr.Rate)
	}
	return &tr, nil
}

// SaveTrack writes the track as indented JSON.
func SaveTrack(path string, tr *Track) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	return enc.Encode(tr)
}

// Safe wraps src so that a nil sampler, a panicking sampler or a malformed
// record all degrade to a normalized record instead of failing the tick.
func Safe(src Sampler, log *slog.Logger) Sampler {
	if log == nil {
		log = slog.Default()
	}
	return SamplerFunc(func(t float64) (rec Record) {
		if src == nil {
			return Zero()
		}
		defer func() {
			if r := recover(); r != nil {
				log.Warn("feature sampler failed", "time", t, "panic", r)
				rec = Zero()
			}
		}()
		return src.Sample(t).Normalize()
	})
}

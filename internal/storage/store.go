package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/beatsim/internal/engine"
)

var ErrNotFound = errors.New("storage: run not found")

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// NewRunID returns a fresh identifier for a run directory.
func NewRunID() string {
	return uuid.NewString()
}

// RunDir is where everything belonging to a run is written, including any
// exported frames.
func (s *Store) RunDir(id string) string {
	return filepath.Join(s.baseDir, id)
}

type RunMetadata struct {
	ID         string             `json:"id"`
	Name       string             `json:"name"`
	Timestamp  time.Time          `json:"timestamp"`
	Source     string             `json:"source"`
	Width      int                `json:"width"`
	Height     int                `json:"height"`
	FPS        float64            `json:"fps"`
	Duration   float64            `json:"duration"`
	Frames     int                `json:"frames"`
	SeekPolicy string             `json:"seek_policy"`
	Layers     []string           `json:"layers"`
	Output     string             `json:"output,omitempty"`
	Metrics    map[string]float64 `json:"metrics"`
}

// StatRow is one line of stats.csv.
type StatRow struct {
	Time       float64 `json:"time"`
	Beat       float64 `json:"beat"`
	RMS        float64 `json:"rms"`
	Hue        float64 `json:"hue"`
	Population int     `json:"population"`
	Failures   int     `json:"failures"`
}

var statHeader = []string{"time", "beat", "rms", "hue", "population", "failures"}

// Recorder collects a StatRow per frame. It is an engine.Observer.
type Recorder struct {
	mu   sync.Mutex
	rows []StatRow
}

func NewRecorder() *Recorder { return &Recorder{} }

func (r *Recorder) OnFrame(s engine.Stats) {
	total := 0
	for _, n := range s.Populations {
		total += n
	}
	r.mu.Lock()
	r.rows = append(r.rows, StatRow{
		Time:       s.Time,
		Beat:       s.Beat,
		RMS:        s.RMS,
		Hue:        s.Hue,
		Population: total,
		Failures:   len(s.Errors),
	})
	r.mu.Unlock()
}

func (r *Recorder) Rows() []StatRow {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]StatRow, len(r.rows))
	copy(out, r.rows)
	return out
}

// Save writes metadata.json and stats.csv for meta.ID, assigning an ID
// when meta has none.
func (s *Store) Save(meta RunMetadata, rows []StatRow) (string, error) {
	if meta.ID == "" {
		meta.ID = NewRunID()
	}
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now()
	}
	runDir := s.RunDir(meta.ID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, "stats.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	if err := w.Write(statHeader); err != nil {
		return "", err
	}
	for _, r := range rows {
		row := []string{
			strconv.FormatFloat(r.Time, 'f', 6, 64),
			strconv.FormatFloat(r.Beat, 'f', 6, 64),
			strconv.FormatFloat(r.RMS, 'f', 6, 64),
			strconv.FormatFloat(r.Hue, 'f', 3, 64),
			strconv.Itoa(r.Population),
			strconv.Itoa(r.Failures),
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}

	return meta.ID, nil
}

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

	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.RunDir(runID), "metadata.json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// LoadStats reads stats.csv back. Malformed lines are skipped.
func (s *Store) LoadStats(runID string) ([]StatRow, error) {
	file, err := os.Open(filepath.Join(s.RunDir(runID), "stats.csv"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, runID)
		}
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	rows := make([]StatRow, 0, len(records))
	for i := 1; i < len(records); i++ {
		rec := records[i]
		if len(rec) != len(statHeader) {
			continue
		}
		var row StatRow
		var perr error
		parse := func(s string) float64 {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil && perr == nil {
				perr = err
			}
			return v
		}
		row.Time = parse(rec[0])
		row.Beat = parse(rec[1])
		row.RMS = parse(rec[2])
		row.Hue = parse(rec[3])
		row.Population = int(parse(rec[4]))
		row.Failures = int(parse(rec[5]))
		if perr != nil {
			continue
		}
		rows = append(rows, row)
	}

	return rows, nil
}

package metrics

import "github.com/san-kum/beatsim/internal/engine"

// PeakPopulation is the largest total number of live entities seen in any
// single frame.
type PeakPopulation struct {
	peak int
}

func NewPeakPopulation() *PeakPopulation { return &PeakPopulation{} }

func (p *PeakPopulation) Name() string { return "peak_population" }

func (p *PeakPopulation) Observe(s engine.Stats) {
	total := 0
	for _, n := range s.Populations {
		total += n
	}
	if total > p.peak {
		p.peak = total
	}
}

func (p *PeakPopulation) Value() float64 { return float64(p.peak) }

func (p *PeakPopulation) Reset() { p.peak = 0 }

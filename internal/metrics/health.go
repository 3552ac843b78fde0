package metrics

import "github.com/san-kum/beatsim/internal/engine"

// Health is the fraction of frames composed without any layer failure.
type Health struct {
	name    string
	failed  int
	samples int
}

func NewHealth() *Health {
	return &Health{
		name: "health",
	}
}

func (h *Health) Name() string {
	return h.name
}

func (h *Health) Observe(s engine.Stats) {
	h.samples++
	if len(s.Errors) > 0 {
		h.failed++
	}
}

func (h *Health) Value() float64 {
	if h.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(h.failed)/float64(h.samples)
}

func (h *Health) Reset() {
	h.failed = 0
	h.samples = 0
}

// Failures counts individual layer failures across a run.
type Failures struct {
	count int
}

func NewFailures() *Failures { return &Failures{} }

func (f *Failures) Name() string { return "layer_failures" }

func (f *Failures) Observe(s engine.Stats) { f.count += len(s.Errors) }

func (f *Failures) Value() float64 { return float64(f.count) }

func (f *Failures) Reset() { f.count = 0 }

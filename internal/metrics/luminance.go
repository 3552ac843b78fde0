package metrics

import (
	"github.com/san-kum/beatsim/internal/engine"
	"github.com/san-kum/beatsim/internal/raster"
)

// MeanLuminance averages frame brightness in [0,1]. Every stride-th frame
// is measured.
type MeanLuminance struct {
	stride  int
	sum     float64
	samples int
}

func NewMeanLuminance(stride int) *MeanLuminance {
	if stride < 1 {
		stride = 1
	}
	return &MeanLuminance{stride: stride}
}

func (m *MeanLuminance) Name() string { return "mean_luminance" }

func (m *MeanLuminance) Observe(s engine.Stats) {
	if s.Frame == nil || s.Index%m.stride != 0 {
		return
	}
	m.sum += raster.Luminance(s.Frame)
	m.samples++
}

func (m *MeanLuminance) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.sum / float64(m.samples)
}

func (m *MeanLuminance) Reset() {
	m.sum = 0
	m.samples = 0
}

// Default returns the metrics recorded for every render.
func Default() []engine.Metric {
	return []engine.Metric{
		NewHealth(),
		NewFailures(),
		NewMeanBeat(),
		NewHueTravel(),
		NewPeakPopulation(),
		NewMeanLuminance(5),
	}
}

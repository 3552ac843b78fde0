package metrics

import "github.com/san-kum/beatsim/internal/engine"

// MeanBeat averages the beat intensity the scene was driven with.
type MeanBeat struct {
	name    string
	sum     float64
	samples int
}

func NewMeanBeat() *MeanBeat {
	return &MeanBeat{
		name: "mean_beat",
	}
}

func (m *MeanBeat) Name() string {
	return m.name
}

func (m *MeanBeat) Observe(s engine.Stats) {
	m.sum += s.Beat
	m.samples++
}

func (m *MeanBeat) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.sum / float64(m.samples)
}

func (m *MeanBeat) Reset() {
	m.sum = 0
	m.samples = 0
}

// HueTravel accumulates how far the colour cycle moved, in degrees.
type HueTravel struct {
	total float64
	prev  float64
	seen  bool
}

func NewHueTravel() *HueTravel { return &HueTravel{} }

func (h *HueTravel) Name() string { return "hue_travel" }

func (h *HueTravel) Observe(s engine.Stats) {
	if h.seen {
		d := s.Hue - h.prev
		if d < -180 {
			d += 360
		} else if d > 180 {
			d -= 360
		}
		if d < 0 {
			d = -d
		}
		h.total += d
	}
	h.prev = s.Hue
	h.seen = true
}

func (h *HueTravel) Value() float64 { return h.total }

func (h *HueTravel) Reset() {
	h.total = 0
	h.prev = 0
	h.seen = false
}

package features

import "math"

const (
	// DefaultWaveformLen is the waveform window handed to renderables.
	DefaultWaveformLen = 1024
	// DefaultSpectrumBins is the number of normalized spectrum bands.
	DefaultSpectrumBins = 64
)

// Record is the feature snapshot for one tick. Downstream code must treat it
// as read-only; the slices are shared between layers.
type Record struct {
	Waveform      []float64 `json:"waveform"`
	Spectrum      []float64 `json:"spectrum"`
	BeatIntensity float64   `json:"beat_intensity"`
	OnsetStrength float64   `json:"onset_strength"`
	RMS           float64   `json:"rms"`
	DominantHue   float64   `json:"dominant_hue"`
}

// Sampler produces the feature record for a timestamp in seconds.
type Sampler interface {
	Sample(t float64) Record
}

// SamplerFunc adapts a plain function to a Sampler.
type SamplerFunc func(t float64) Record

func (f SamplerFunc) Sample(t float64) Record { return f(t) }

// Zero returns the inert record used when no audio is loaded.
func Zero() Record {
	return Record{
		Waveform: make([]float64, DefaultWaveformLen),
		Spectrum: make([]float64, DefaultSpectrumBins),
	}
}

// Normalize clamps scalars to their documented ranges, wraps the hue into
// [0,360) and replaces missing vectors with zeros. NaN values become 0.
func (r Record) Normalize() Record {
	out := Record{
		BeatIntensity: clamp01(r.BeatIntensity),
		OnsetStrength: clamp01(r.OnsetStrength),
		RMS:           clamp01(r.RMS),
		DominantHue:   WrapHue(r.DominantHue),
	}

	if len(r.Waveform) == 0 {
		out.Waveform = make([]float64, DefaultWaveformLen)
	} else {
		out.Waveform = make([]float64, len(r.Waveform))
		for i, v := range r.Waveform {
			out.Waveform[i] = finite(v)
		}
	}

	if len(r.Spectrum) == 0 {
		out.Spectrum = make([]float64, DefaultSpectrumBins)
	} else {
		out.Spectrum = make([]float64, len(r.Spectrum))
		for i, v := range r.Spectrum {
			out.Spectrum[i] = clamp01(v)
		}
	}

	return out
}

// Band returns the spectrum value at the fractional position pos in [0,1).
func (r Record) Band(pos float64) float64 {
	if len(r.Spectrum) == 0 {
		return 0
	}
	idx := int(pos * float64(len(r.Spectrum)))
	if idx < 0 || idx >= len(r.Spectrum) {
		return 0
	}
	return r.Spectrum[idx]
}

// WrapHue maps any angle in degrees into [0,360).
func WrapHue(h float64) float64 {
	if math.IsNaN(h) || math.IsInf(h, 0) {
		return 0
	}
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	if h >= 360 {
		return 0
	}
	return h
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

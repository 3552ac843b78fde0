package features

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// SynthConfig parameterizes the synthetic feature source.
type SynthConfig struct {
	Seed        int64   `yaml:"seed"`
	BPM         float64 `yaml:"bpm"`
	SampleRate  float64 `yaml:"sample_rate"`
	WaveformLen int     `yaml:"waveform_len"`
	Bins        int     `yaml:"bins"`
	// BeatWindow is the distance in seconds from a beat within which the
	// beat intensity is non-zero.
	BeatWindow float64 `yaml:"beat_window"`
}

func DefaultSynthConfig() SynthConfig {
	return SynthConfig{
		Seed:        1,
		BPM:         120,
		SampleRate:  44100,
		WaveformLen: DefaultWaveformLen,
		Bins:        DefaultSpectrumBins,
		BeatWindow:  0.1,
	}
}

// Synth generates a deterministic drum-and-bass-line style feature stream.
// Every value is derived from t and the seed only, so Sample is a pure
// function of time and can be called in any order.
type Synth struct {
	cfg    SynthConfig
	window []float64
}

func NewSynth(cfg SynthConfig) *Synth {
	def := DefaultSynthConfig()
	if cfg.BPM <= 0 {
		cfg.BPM = def.BPM
	}
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = def.SampleRate
	}
	if cfg.WaveformLen <= 1 {
		cfg.WaveformLen = def.WaveformLen
	}
	if cfg.Bins <= 0 {
		cfg.Bins = def.Bins
	}
	if cfg.BeatWindow <= 0 {
		cfg.BeatWindow = def.BeatWindow
	}

	// Hann window, as in the live analyser.
	window := make([]float64, cfg.WaveformLen)
	for i := range window {
		window[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(cfg.WaveformLen-1)))
	}

	return &Synth{cfg: cfg, window: window}
}

func (s *Synth) Config() SynthConfig { return s.cfg }

// Sample implements Sampler.
func (s *Synth) Sample(t float64) Record {
	if math.IsNaN(t) || t < 0 {
		t = 0
	}

	period := 60.0 / s.cfg.BPM
	beat := math.Round(t / period)
	dist := math.Abs(t - beat*period)
	accent := s.accent(int64(beat))

	intensity := 0.0
	if dist < s.cfg.BeatWindow {
		intensity = math.Exp(-dist/(s.cfg.BeatWindow/3)) * accent
	}

	// Onset follows the most recent beat only.
	last := math.Floor(t / period)
	since := t - last*period
	onset := math.Exp(-since/0.05) * s.accent(int64(last))

	wave := s.waveform(t)
	spectrum := s.spectrum(wave)

	sum := 0.0
	for _, v := range wave {
		sum += v * v
	}
	rms := math.Sqrt(sum / float64(len(wave)))

	bar := int64(last) / 4
	note := (bar*7 + int64(mix(uint64(s.cfg.Seed), uint64(bar))%3)) % 12
	if note < 0 {
		note += 12
	}

	return Record{
		Waveform:      wave,
		Spectrum:      spectrum,
		BeatIntensity: clamp01(intensity),
		OnsetStrength: clamp01(onset),
		RMS:           clamp01(rms),
		DominantHue:   float64(note) / 12.0 * 360,
	}
}

// accent is the per-beat loudness in [0.6, 1].
func (s *Synth) accent(beat int64) float64 {
	h := mix(uint64(s.cfg.Seed), uint64(beat))
	a := 0.6 + 0.4*float64(h%1000)/999.0
	if beat%4 == 0 {
		a = 1
	}
	return a
}

func (s *Synth) waveform(t float64) []float64 {
	n := s.cfg.WaveformLen
	sr := s.cfg.SampleRate
	period := 60.0 / s.cfg.BPM
	center := int64(math.Round(t * sr))

	out := make([]float64, n)
	for i := range out {
		idx := center - int64(n/2) + int64(i)
		ts := float64(idx) / sr
		if ts < 0 {
			continue
		}
		since := math.Mod(ts, period)
		env := 0.35 + 0.65*math.Exp(-since/0.08)

		kick := math.Sin(2 * math.Pi * (55 + 90*math.Exp(-since/0.03)) * since)
		bass := 0.5 * math.Sin(2*math.Pi*110*ts)
		lead := 0.25 * math.Sin(2*math.Pi*880*ts+math.Sin(2*math.Pi*3*ts))
		noise := (float64(mix(uint64(s.cfg.Seed), uint64(idx))%2001)/1000.0 - 1) * 0.1

		out[i] = clampUnit(env*(0.6*kick+bass) + lead*0.5 + noise)
	}
	return out
}

// spectrum folds the FFT of the windowed waveform into log-spaced bands and
// normalizes them to [0,1].
func (s *Synth) spectrum(wave []float64) []float64 {
	buf := make([]float64, len(wave))
	for i, v := range wave {
		buf[i] = v * s.window[i]
	}
	coeffs := fft.FFTReal(buf)
	half := len(coeffs) / 2

	bins := s.cfg.Bins
	out := make([]float64, bins)
	lo := 1
	for b := 0; b < bins; b++ {
		hi := int(math.Pow(float64(half), float64(b+1)/float64(bins)))
		if hi <= lo {
			hi = lo + 1
		}
		if hi > half {
			hi = half
		}
		peak := 0.0
		for k := lo; k < hi; k++ {
			if m := cmplx.Abs(coeffs[k]); m > peak {
				peak = m
			}
		}
		out[b] = math.Log10(peak + 1e-9)
		if hi < half {
			lo = hi
		}
	}

	minV, maxV := out[0], out[0]
	for _, v := range out {
		minV = math.Min(minV, v)
		maxV = math.Max(maxV, v)
	}
	for i, v := range out {
		out[i] = (v - minV) / (maxV - minV + 1e-6)
	}
	return out
}

func clampUnit(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}

// mix is splitmix64 over a seed and key.
func mix(seed, key uint64) uint64 {
	z := seed + key*0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

package features

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZero(t *testing.T) {
	rec := Zero()
	assert.Len(t, rec.Waveform, DefaultWaveformLen)
	assert.Len(t, rec.Spectrum, DefaultSpectrumBins)
	assert.Zero(t, rec.BeatIntensity)
	assert.Zero(t, rec.DominantHue)
}

func TestNormalize(t *testing.T) {
	rec := Record{
		Spectrum:      []float64{-1, 0.5, 2, math.NaN()},
		BeatIntensity: 1.4,
		OnsetStrength: -0.2,
		RMS:           math.NaN(),
		DominantHue:   -30,
	}.Normalize()

	assert.Equal(t, []float64{0, 0.5, 1, 0}, rec.Spectrum)
	assert.Len(t, rec.Waveform, DefaultWaveformLen)
	assert.Equal(t, 1.0, rec.BeatIntensity)
	assert.Equal(t, 0.0, rec.OnsetStrength)
	assert.Equal(t, 0.0, rec.RMS)
	assert.Equal(t, 330.0, rec.DominantHue)
}

func TestWrapHue(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{360, 0},
		{370, 10},
		{-10, 350},
		{720.5, 0.5},
		{math.Inf(1), 0},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, WrapHue(tt.in), 1e-9, "WrapHue(%v)", tt.in)
	}
}

func TestTrackClampsOutOfRange(t *testing.T) {
	tr := &Track{Rate: 10, Records: []Record{
		{BeatIntensity: 0.1},
		{BeatIntensity: 0.2},
		{BeatIntensity: 0.3},
	}}

	assert.Equal(t, 0.1, tr.Sample(-5).BeatIntensity)
	assert.Equal(t, 0.1, tr.Sample(math.NaN()).BeatIntensity)
	assert.Equal(t, 0.2, tr.Sample(0.15).BeatIntensity)
	assert.Equal(t, 0.3, tr.Sample(0.29).BeatIntensity)
	assert.Equal(t, 0.3, tr.Sample(1000).BeatIntensity)
	assert.InDelta(t, 0.3, tr.Duration(), 1e-9)
}

func TestEmptyTrackIsSilent(t *testing.T) {
	tr := &Track{Rate: 30}
	rec := tr.Sample(1)
	assert.Len(t, rec.Spectrum, DefaultSpectrumBins)
	assert.Zero(t, rec.BeatIntensity)
}

func TestTrackSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "track.json")
	src := NewSynth(DefaultSynthConfig())
	tr := NewTrack(src, 30, 1)
	require.Len(t, tr.Records, 30)

	require.NoError(t, SaveTrack(path, tr))
	loaded, err := LoadTrack(path)
	require.NoError(t, err)

	assert.Equal(t, tr.Rate, loaded.Rate)
	require.Len(t, loaded.Records, 30)
	assert.InDelta(t, tr.Records[12].BeatIntensity, loaded.Records[12].BeatIntensity, 1e-12)
}

func TestLoadTrackErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadTrack(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)

	empty := filepath.Join(dir, "empty.json")
	require.NoError(t, SaveTrack(empty, &Track{Rate: 30}))
	_, err = LoadTrack(empty)
	assert.ErrorIs(t, err, ErrEmptyTrack)
}

func TestSafe(t *testing.T) {
	t.Run("nil sampler", func(t *testing.T) {
		rec := Safe(nil, nil).Sample(3)
		assert.Len(t, rec.Waveform, DefaultWaveformLen)
	})

	t.Run("panicking sampler", func(t *testing.T) {
		bad := SamplerFunc(func(float64) Record { panic("decoder gone") })
		rec := Safe(bad, nil).Sample(3)
		assert.Zero(t, rec.BeatIntensity)
		assert.Len(t, rec.Spectrum, DefaultSpectrumBins)
	})

	t.Run("normalizes", func(t *testing.T) {
		src := SamplerFunc(func(float64) Record { return Record{BeatIntensity: 3} })
		assert.Equal(t, 1.0, Safe(src, nil).Sample(0).BeatIntensity)
	})
}

func TestSynthIsPureFunctionOfTime(t *testing.T) {
	s := NewSynth(DefaultSynthConfig())

	a := s.Sample(2.37)
	_ = s.Sample(0.5)
	_ = s.Sample(10)
	b := s.Sample(2.37)

	assert.Equal(t, a, b)
}

func TestSynthRanges(t *testing.T) {
	s := NewSynth(DefaultSynthConfig())
	for i := 0; i < 120; i++ {
		rec := s.Sample(float64(i) / 30)
		require.Len(t, rec.Waveform, DefaultWaveformLen)
		require.Len(t, rec.Spectrum, DefaultSpectrumBins)
		for _, v := range rec.Spectrum {
			require.GreaterOrEqual(t, v, 0.0)
			require.LessOrEqual(t, v, 1.0)
		}
		assert.GreaterOrEqual(t, rec.DominantHue, 0.0)
		assert.Less(t, rec.DominantHue, 360.0)
	}
}

func TestSynthBeatsOnGrid(t *testing.T) {
	s := NewSynth(DefaultSynthConfig())

	// 120 bpm: a downbeat every 2s has full accent.
	assert.InDelta(t, 1.0, s.Sample(2.0).BeatIntensity, 1e-9)
	// Halfway between beats nothing fires.
	assert.Zero(t, s.Sample(0.25).BeatIntensity)
}

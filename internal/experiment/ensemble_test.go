package experiment

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/san-kum/beatsim/internal/effects"
	"github.com/san-kum/beatsim/internal/features"
	"github.com/san-kum/beatsim/internal/layer"
	"github.com/san-kum/beatsim/internal/logger"
	"github.com/san-kum/beatsim/internal/scene"
	"github.com/san-kum/beatsim/internal/visual"
)

func sparkleScene(seed int64) (*scene.Scene, features.Sampler, error) {
	sc, err := scene.New(48, 32, scene.WithLogger(logger.NewTestLogger()))
	if err != nil {
		return nil, nil, err
	}
	if err := sc.Add(visual.NewBars(layer.DefaultProps("bars", 48, 32))); err != nil {
		return nil, nil, err
	}
	if err := sc.AddOverlay(effects.NewSparkle(layer.DefaultProps("sparkle", 48, 32), 50, seed)); err != nil {
		return nil, nil, err
	}
	return sc, features.NewSynth(features.DefaultSynthConfig()), nil
}

func TestEnsembleRun(t *testing.T) {
	defer goleak.VerifyNone(t)

	cfg := Config{Name: "sweep", FPS: 30, Duration: 0.5}
	ens := NewEnsemble(cfg, sparkleScene, 3, 10, logger.NewTestLogger())

	res, err := ens.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, res, 3)
	for i, r := range res {
		assert.Equal(t, int64(10+i), r.Seed)
		require.NotNil(t, r.Result)
		assert.Equal(t, cfg.Frames(), r.Result.Frames)
		assert.Contains(t, r.Result.Metrics, "mean_beat")
	}
	assert.Equal(t, res[0].Result.Metrics["mean_beat"], res[2].Result.Metrics["mean_beat"],
		"features do not depend on the seed")

	again, err := ens.Run(context.Background())
	require.NoError(t, err)
	for i := range res {
		assert.Equal(t, res[i].Result.Metrics, again[i].Result.Metrics, "same seed, same run")
	}
}

func TestEnsembleBuildError(t *testing.T) {
	defer goleak.VerifyNone(t)

	boom := errors.New("no scene")
	build := func(seed int64) (*scene.Scene, features.Sampler, error) {
		if seed == 2 {
			return nil, nil, boom
		}
		return sparkleScene(seed)
	}

	_, err := NewEnsemble(Config{FPS: 30, Duration: 0.1}, build, 3, 1, nil).Run(context.Background())
	assert.ErrorIs(t, err, boom)
}

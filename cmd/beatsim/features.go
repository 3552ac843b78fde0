package main

import (
	"fmt"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/beatsim/internal/features"
	"github.com/spf13/cobra"
)

// plotFeatures samples the scene's feature source over its duration, plots
// the scalar features and optionally freezes them into a track file.
func plotFeatures(cmd *cobra.Command, args []string) error {
	log := newLogger()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	src, err := cfg.Sampler()
	if err != nil {
		return err
	}
	if sampleRate <= 0 {
		return fmt.Errorf("rate must be positive, got %f", sampleRate)
	}

	tr := features.NewTrack(features.Safe(src, log), sampleRate, cfg.Duration)
	if len(tr.Records) == 0 {
		return fmt.Errorf("no samples for duration %.2fs", cfg.Duration)
	}

	beat := make([]float64, len(tr.Records))
	rms := make([]float64, len(tr.Records))
	onset := make([]float64, len(tr.Records))
	hue := make([]float64, len(tr.Records))
	for i, r := range tr.Records {
		beat[i] = r.BeatIntensity
		rms[i] = r.RMS
		onset[i] = r.OnsetStrength
		hue[i] = r.DominantHue
	}

	fmt.Printf("source: %s\n", sourceLabel(cfg))
	fmt.Printf("samples: %d at %.0f/s\n\n", len(tr.Records), sampleRate)
	for _, s := range []struct {
		caption string
		data    []float64
	}{
		{"beat intensity", beat},
		{"rms", rms},
		{"onset strength", onset},
		{"dominant hue", hue},
	} {
		fmt.Println(asciigraph.Plot(s.data,
			asciigraph.Height(8),
			asciigraph.Width(80),
			asciigraph.Caption(s.caption),
		))
		fmt.Println()
	}

	if savePath != "" {
		if err := features.SaveTrack(savePath, tr); err != nil {
			return err
		}
		fmt.Printf("saved track: %s\n", savePath)
	}
	return nil
}

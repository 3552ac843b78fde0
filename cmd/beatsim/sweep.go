package main

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/san-kum/beatsim/internal/config"
	"github.com/san-kum/beatsim/internal/experiment"
	"github.com/san-kum/beatsim/internal/features"
	"github.com/san-kum/beatsim/internal/scene"
	"github.com/spf13/cobra"
)

// runSweep renders the scene once per seed in parallel and tabulates the
// metrics of every variant.
func runSweep(cmd *cobra.Command, args []string) error {
	log := newLogger()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if variants < 1 {
		return fmt.Errorf("variants must be at least 1, got %d", variants)
	}

	build := func(seed int64) (*scene.Scene, features.Sampler, error) {
		c := cfg.Clone()
		c.Seed = seed
		sc, err := config.Build(c, experiment.NewRegistry(), log)
		if err != nil {
			return nil, nil, err
		}
		src, err := c.Sampler()
		return sc, src, err
	}

	ens := experiment.NewEnsemble(experiment.Config{
		Name:       cfg.Name,
		FPS:        cfg.FPS,
		Duration:   cfg.Duration,
		SeekPolicy: cfg.SeekPolicy,
	}, build, variants, cfg.Seed, log)

	results, err := ens.Run(cmd.Context())
	if err != nil {
		return err
	}

	var names []string
	for name := range results[0].Result.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprint(w, "SEED\tFRAMES")
	for _, name := range names {
		fmt.Fprintf(w, "\t%s", name)
	}
	fmt.Fprintln(w)

	for _, r := range results {
		fmt.Fprintf(w, "%d\t%d", r.Seed, r.Result.Frames)
		for _, name := range names {
			fmt.Fprintf(w, "\t%.4f", r.Result.Metrics[name])
		}
		fmt.Fprintln(w)
	}
	return w.Flush()
}

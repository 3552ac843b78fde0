package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/san-kum/beatsim/internal/config"
	"github.com/san-kum/beatsim/internal/experiment"
	"github.com/san-kum/beatsim/internal/logger"
	"github.com/spf13/cobra"
)

var (
	dataDir  string
	logLevel string

	configFile string
	preset     string
	fps        float64
	duration   float64
	width      int
	height     int
	seed       int64
	seekPolicy string
	trackPath  string

	audioPath string
	coverArt  bool
	pngOut    bool
	gifOut    string

	at         float64
	sampleRate float64
	savePath   string
	svgOut     string
	limit      int
	variants   int
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "beatsim",
		Short:        "audio-reactive animation renderer",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".beatsim", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")

	renderCmd := &cobra.Command{
		Use:   "render",
		Short: "render a scene offline and store the run",
		RunE:  runRender,
	}
	sceneFlags(renderCmd)
	renderCmd.Flags().StringVar(&audioPath, "audio", "", "audio file whose tags name the run")
	renderCmd.Flags().BoolVar(&coverArt, "cover", false, "use the audio file's cover art as background")
	renderCmd.Flags().BoolVar(&pngOut, "png", false, "write every frame as png")
	renderCmd.Flags().StringVar(&gifOut, "gif", "", "write an animated gif with this name into the run directory")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "preview a scene in the terminal",
		RunE:  runLive,
	}
	sceneFlags(liveCmd)

	svgCmd := &cobra.Command{
		Use:   "export-svg",
		Short: "export a single frame as svg",
		RunE:  exportSVG,
	}
	sceneFlags(svgCmd)
	svgCmd.Flags().Float64Var(&at, "at", 0, "time of the frame in seconds")
	svgCmd.Flags().StringVarP(&svgOut, "output", "o", "", "output file (default stdout)")

	featuresCmd := &cobra.Command{
		Use:   "features",
		Short: "plot the feature source of a scene",
		RunE:  plotFeatures,
	}
	sceneFlags(featuresCmd)
	featuresCmd.Flags().Float64Var(&sampleRate, "rate", 30, "samples per second")
	featuresCmd.Flags().StringVar(&savePath, "save", "", "freeze the samples into a track file")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "render a scene under several seeds and compare metrics",
		RunE:  runSweep,
	}
	sceneFlags(sweepCmd)
	sweepCmd.Flags().IntVar(&variants, "variants", 4, "number of seeds, counting up from --seed")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}
	listCmd.Flags().IntVar(&limit, "limit", 20, "number of runs to show")

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run stats",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run metadata and stats to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	deleteCmd := &cobra.Command{
		Use:   "delete [run_id]",
		Short: "delete a run",
		Args:  cobra.ExactArgs(1),
		RunE:  deleteRun,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list scene presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range config.ListPresets() {
				p := config.GetPreset(name)
				kinds := make([]string, len(p.Layers))
				for i, l := range p.Layers {
					kinds[i] = string(l.Kind)
				}
				fmt.Printf("  %-10s %s\n", name, strings.Join(kinds, ", "))
			}
			return nil
		},
	}

	kindsCmd := &cobra.Command{
		Use:   "kinds",
		Short: "list layer kinds and ambient effects",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := experiment.NewRegistry()
			fmt.Println("layers:")
			for _, k := range reg.ListKinds() {
				fmt.Printf("  %s\n", k)
			}
			fmt.Println("effects:")
			for _, e := range reg.ListEffects() {
				fmt.Printf("  %s\n", e)
			}
			return nil
		},
	}

	rootCmd.AddCommand(renderCmd, liveCmd, svgCmd, featuresCmd, sweepCmd, listCmd, plotCmd, exportCmd, exportJSONCmd, deleteCmd, presetsCmd, kindsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// sceneFlags registers the flags that pick and override a scene config.
func sceneFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().Float64Var(&fps, "fps", config.DefaultFPS, "frames per second")
	cmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration in seconds")
	cmd.Flags().IntVar(&width, "width", config.DefaultWidth, "frame width")
	cmd.Flags().IntVar(&height, "height", config.DefaultHeight, "frame height")
	cmd.Flags().Int64Var(&seed, "seed", config.DefaultSeed, "random seed")
	cmd.Flags().StringVar(&seekPolicy, "seek-policy", "", "reset, fastforward or stale")
	cmd.Flags().StringVar(&trackPath, "track", "", "feature track file (json)")
}

func newLogger() *slog.Logger {
	cfg := logger.DefaultConfig()
	if logLevel != "" {
		if lvl, ok := logger.ParseLevel(logLevel); ok {
			cfg.Level = lvl
		}
	}
	return logger.NewLogger(cfg)
}

func catalogPath() string {
	return filepath.Join(dataDir, "catalog.db")
}

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/beatsim/internal/config"
	"github.com/san-kum/beatsim/internal/engine"
	"github.com/san-kum/beatsim/internal/experiment"
	"github.com/san-kum/beatsim/internal/export"
	"github.com/san-kum/beatsim/internal/features"
	"github.com/san-kum/beatsim/internal/layer"
	"github.com/san-kum/beatsim/internal/logger"
	"github.com/san-kum/beatsim/internal/media"
	"github.com/san-kum/beatsim/internal/scene"
	"github.com/san-kum/beatsim/internal/storage"
	"github.com/san-kum/beatsim/internal/viz"
	"github.com/spf13/cobra"
)

// loadConfig resolves preset, then config file, then explicit flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("fps") {
		cfg.FPS = fps
	}
	if flags.Changed("time") {
		cfg.Duration = duration
	}
	if flags.Changed("width") {
		cfg.Width = width
	}
	if flags.Changed("height") {
		cfg.Height = height
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("seek-policy") {
		p, err := engine.ParseSeekPolicy(seekPolicy)
		if err != nil {
			return nil, err
		}
		cfg.SeekPolicy = p
	}
	if flags.Changed("track") {
		cfg.Source = config.SourceConfig{Type: "track", Path: trackPath}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// buildScene loads the config and builds its scene and feature source.
func buildScene(cmd *cobra.Command, log *slog.Logger) (*config.Config, *scene.Scene, features.Sampler, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, nil, err
	}
	sc, err := config.Build(cfg, experiment.NewRegistry(), log)
	if err != nil {
		return nil, nil, nil, err
	}
	src, err := cfg.Sampler()
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, sc, src, nil
}

func sourceLabel(cfg *config.Config) string {
	switch cfg.Source.Type {
	case "track":
		return "track:" + filepath.Base(cfg.Source.Path)
	case "none":
		return "none"
	}
	return "synth"
}

// applyAudio names the run after the audio file and optionally puts its
// cover art behind the scene.
func applyAudio(sc *scene.Scene, log *slog.Logger) (string, error) {
	info, err := media.ReadInfo(audioPath)
	if err != nil {
		return "", err
	}
	log.Info("audio", "title", info.Title, "artist", info.Artist, "album", info.Album, "year", info.Year)

	if coverArt {
		img, err := info.CoverImage()
		switch {
		case errors.Is(err, media.ErrNoCover):
			log.Warn("audio file has no cover art", "path", audioPath)
		case err != nil:
			log.Warn("cover art unreadable", "path", audioPath, "error", err)
		default:
			sc.Background.SetImage(img)
		}
	}
	return info.Label(), nil
}

func runRender(cmd *cobra.Command, args []string) error {
	log := newLogger()

	cfg, sc, src, err := buildScene(cmd, log)
	if err != nil {
		return err
	}

	source := sourceLabel(cfg)
	if audioPath != "" {
		label, err := applyAudio(sc, log)
		if err != nil {
			return err
		}
		source = label
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID := storage.NewRunID()
	runDir := st.RunDir(runID)

	var sinks []engine.Sink
	var pngs *export.PNGSequence
	if pngOut || cfg.Output.PNG {
		pngs, err = export.NewPNGSequence(filepath.Join(runDir, "frames"))
		if err != nil {
			return err
		}
		sinks = append(sinks, pngs)
	}
	gifName := cfg.Output.GIF
	if gifOut != "" {
		gifName = gifOut
	}
	var anim *export.GIF
	if gifName != "" {
		anim = export.NewGIF(cfg.FPS, cfg.Output.GIFStride, cfg.Output.GIFScale)
		sinks = append(sinks, anim)
	}

	exp := experiment.New(experiment.Config{
		Name:       cfg.Name,
		FPS:        cfg.FPS,
		Duration:   cfg.Duration,
		SeekPolicy: cfg.SeekPolicy,
	}, log)
	if err := exp.Setup(sc, src, export.Multi(sinks...), experiment.NewRegistry().DefaultMetrics()); err != nil {
		return err
	}
	rec := storage.NewRecorder()
	exp.Driver().AddObserver(rec)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("rendering %s (%dx%d, %d frames)...\n", cfg.Name, cfg.Width, cfg.Height, cfg.Frames())
	start := time.Now()

	result, err := exp.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	if result == nil {
		return err
	}
	elapsed := time.Since(start)

	output := ""
	if anim != nil && anim.Len() > 0 {
		output = filepath.Join(runDir, gifName)
		if err := writeGIF(output, anim); err != nil {
			return err
		}
	} else if pngs != nil {
		output = pngs.Dir()
	}

	meta := storage.RunMetadata{
		ID:         runID,
		Name:       cfg.Name,
		Timestamp:  start,
		Source:     source,
		Width:      cfg.Width,
		Height:     cfg.Height,
		FPS:        cfg.FPS,
		Duration:   cfg.Duration,
		Frames:     result.Frames,
		SeekPolicy: string(exp.Driver().Policy()),
		Layers:     sc.Names(),
		Output:     output,
		Metrics:    result.Metrics,
	}
	if _, err := st.Save(meta, rec.Rows()); err != nil {
		return err
	}
	if err := config.Save(filepath.Join(runDir, "config.yaml"), cfg); err != nil {
		return err
	}

	cat, err := storage.OpenCatalog(catalogPath())
	if err != nil {
		log.Warn("catalog unavailable", "error", err)
	} else {
		defer cat.Close()
		if err := cat.Put(context.Background(), meta); err != nil {
			log.Warn("catalog put failed", "run", runID, "error", err)
		}
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("frames: %d\n", result.Frames)
	if len(result.Failures) > 0 {
		fmt.Printf("layer failures: %d\n", len(result.Failures))
	}
	if output != "" {
		fmt.Printf("output: %s\n", output)
	}
	fmt.Println("\nmetrics:")
	for name, val := range result.Metrics {
		fmt.Printf("  %s: %.6f\n", name, val)
	}
	return nil
}

func writeGIF(path string, g *export.GIF) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := g.Encode(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func runLive(cmd *cobra.Command, args []string) error {
	log := newLogger()

	cfg, sc, src, err := buildScene(cmd, log)
	if err != nil {
		return err
	}

	// The terminal belongs to the preview; only errors reach the log.
	quiet := logger.NewLogger(logger.Config{Level: slog.LevelError})
	d, err := engine.New(sc, src, engine.Config{FPS: cfg.FPS, SeekPolicy: cfg.SeekPolicy}, engine.WithLogger(quiet))
	if err != nil {
		return err
	}

	m := viz.NewModel(d, cfg.Name, cfg.Duration)
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}

// exportSVG renders the scene up to --at and writes that frame as vectors.
func exportSVG(cmd *cobra.Command, args []string) error {
	log := newLogger()

	cfg, sc, src, err := buildScene(cmd, log)
	if err != nil {
		return err
	}
	sampler := features.Safe(src, log)

	d, err := engine.New(sc, sampler, engine.Config{FPS: cfg.FPS, SeekPolicy: engine.SeekFastForward},
		engine.WithLogger(log))
	if err != nil {
		return err
	}
	d.Seek(at)
	if err := d.Tick(); err != nil {
		return err
	}

	st := d.LastStats()
	f := layer.Frame{
		Index:    st.Index,
		Time:     st.Time,
		Features: sampler.Sample(st.Time),
		Cycle:    d.Cycle(),
	}
	doc, err := export.FrameToSVG(sc, sc.Background, f)
	if err != nil {
		log.Warn("layers left out of svg", "error", err)
	}

	if svgOut == "" {
		_, err = fmt.Print(doc)
		return err
	}
	if err := os.WriteFile(svgOut, []byte(doc), 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %s (t=%.3fs, frame %d)\n", svgOut, st.Time, st.Index)
	return nil
}

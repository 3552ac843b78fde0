package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/beatsim/internal/storage"
	"github.com/spf13/cobra"
)

// recentRuns prefers the catalog and falls back to scanning the data
// directory when the catalog cannot be opened.
func recentRuns(ctx context.Context) ([]storage.RunMetadata, error) {
	cat, err := storage.OpenCatalog(catalogPath())
	if err == nil {
		defer cat.Close()
		return cat.Recent(ctx, limit)
	}

	runs, err := storage.New(dataDir).List()
	if err != nil {
		return nil, err
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.After(runs[j].Timestamp) })
	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	runs, err := recentRuns(cmd.Context())
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTIME\tSOURCE\tSIZE\tFRAMES\tFPS\tSEEK")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%dx%d\t%d\t%.0f\t%s\n",
			run.ID,
			run.Name,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Source,
			run.Width, run.Height,
			run.Frames,
			run.FPS,
			run.SeekPolicy,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	rows, err := st.LoadStats(runID)
	if err != nil {
		return err
	}

	if len(rows) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("name: %s\n", meta.Name)
	fmt.Printf("layers: %s\n", strings.Join(meta.Layers, ", "))
	fmt.Printf("frames: %d\n\n", len(rows))

	series := []struct {
		caption string
		value   func(storage.StatRow) float64
	}{
		{"beat intensity", func(r storage.StatRow) float64 { return r.Beat }},
		{"rms", func(r storage.StatRow) float64 { return r.RMS }},
		{"palette hue", func(r storage.StatRow) float64 { return r.Hue }},
		{"live entities", func(r storage.StatRow) float64 { return float64(r.Population) }},
	}

	for _, s := range series {
		data := make([]float64, len(rows))
		for i, r := range rows {
			data[i] = s.value(r)
		}
		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(s.caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	rows, err := st.LoadStats(meta.ID)
	if err != nil {
		return err
	}

	return storage.ExportJSON(os.Stdout, *meta, rows)
}

func deleteRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	if _, err := st.Load(runID); err != nil {
		return err
	}
	if err := os.RemoveAll(st.RunDir(runID)); err != nil {
		return err
	}

	cat, err := storage.OpenCatalog(catalogPath())
	if err == nil {
		defer cat.Close()
		if err := cat.Delete(cmd.Context(), runID); err != nil && !errors.Is(err, storage.ErrNotFound) {
			return err
		}
	}

	fmt.Printf("deleted %s\n", runID)
	return nil
}

// Package main is the entrypoint for skyview, the one-shot overview tool.
//
// It assembles a single composite overview image of the observatory site —
// the configured webcam tiles plus the rendered status and clock tiles —
// and writes it to the given path. When no output path is given a
// timestamped name like skyview_20260826_183000.jpg is used.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"skyview/internal/config"
	"skyview/internal/overview"
	"skyview/internal/status"
	"skyview/internal/tiles"
	"skyview/internal/types"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: loading configuration: %v\n", err)
		os.Exit(1)
	}

	output := flag.String("o", "", "Output path (default: skyview_YYYYMMDD_HHMMSS.jpg)")
	verbose := flag.Bool("v", false, "Verbose (debug) logging")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: skyview [flags]\n\n")
		fmt.Fprintf(os.Stderr, "Write one composite overview image of the observatory site.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() > 0 {
		fmt.Fprintf(os.Stderr, "error: unexpected arguments: %v\n\n", flag.Args())
		flag.Usage()
		os.Exit(1)
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	clock := types.RealClock{}
	outputPath := *output
	if outputPath == "" {
		outputPath = clock.Now().Format("skyview_20060102_150405.jpg")
	}

	fetcher := tiles.NewFetcher(tiles.FetcherConfig{
		Rows:    cfg.Overview.TileRows,
		Cols:    cfg.Overview.TileCols,
		Timeout: cfg.Overview.FetchTimeout,
		Logger:  logger,
	})

	var statusSource overview.StatusSource
	if cfg.Status.URL != "" {
		statusSource = status.NewClient(status.ClientConfig{
			URL:     cfg.Status.URL,
			Timeout: cfg.Status.Timeout,
		})
	}

	assembler := overview.NewAssembler(overview.AssemblerConfig{
		Overview: cfg.Overview,
		Fetcher:  fetcher,
		Status:   statusSource,
		Clock:    clock,
		Logger:   logger,
	})

	if err := assembler.SaveImage(context.Background(), outputPath); err != nil {
		logger.Error("overview image failed", "output", outputPath, "error", err)
		os.Exit(1)
	}
	logger.Info("overview image written", "output", outputPath)
}

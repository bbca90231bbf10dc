// Package main is the entrypoint for skyviewd, the nightly overview daemon.
//
// skyviewd assembles a tiled overview image of the observatory site once a
// minute during the acquisition window, writing a resumable numbered frame
// sequence per night, and encodes each finished night's sequence into an
// H.264 video in the morning. The cycle repeats forever; the process is
// stopped only by killing it.
//
// This file handles flag parsing and dependency wiring and delegates all
// scheduling logic to internal/sequencer.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"skyview/internal/config"
	"skyview/internal/encoder"
	"skyview/internal/overview"
	"skyview/internal/sequencer"
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

	// Flags override the environment-derived configuration.
	imageBase := flag.String("image-base", cfg.Sequencer.ImageBase, "Base directory for nightly frame sequences")
	imageSubdir := flag.String("image-subdir", cfg.Sequencer.ImageSubdir, "Per-night subdirectory for frames")
	videoBase := flag.String("video-base", cfg.Sequencer.VideoBase, "Base directory for nightly videos")
	videoSubdir := flag.String("video-subdir", cfg.Sequencer.VideoSubdir, "Per-night subdirectory for videos")
	startHour := flag.Int("start-hour", cfg.Sequencer.StartHour, "UTC hour at which acquisition starts")
	trashAfterEncode := flag.Bool("trash-after-encode", cfg.Sequencer.TrashAfterEncode, "Move frames to trash after a successful encode")
	dummy := flag.Bool("dummy", false, "Test mode: ten immediate acquisition ticks, then one encode, then exit")
	listenAddr := flag.String("listen", cfg.ListenAddr, "Address for the read-only status HTTP surface (empty disables it)")
	logFile := flag.String("log-file", cfg.LogFile, "Also write logs to this file")
	verbose := flag.Bool("v", false, "Verbose (debug) logging")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: skyviewd [flags]\n\n")
		fmt.Fprintf(os.Stderr, "Nightly observatory overview daemon: one composite frame per minute\n")
		fmt.Fprintf(os.Stderr, "during the acquisition window, one video per finished night.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() > 0 {
		fmt.Fprintf(os.Stderr, "error: unexpected arguments: %v\n\n", flag.Args())
		flag.Usage()
		os.Exit(1)
	}

	cfg.Sequencer.ImageBase = *imageBase
	cfg.Sequencer.ImageSubdir = *imageSubdir
	cfg.Sequencer.VideoBase = *videoBase
	cfg.Sequencer.VideoSubdir = *videoSubdir
	cfg.Sequencer.StartHour = *startHour
	cfg.Sequencer.TrashAfterEncode = *trashAfterEncode
	cfg.ListenAddr = *listenAddr
	cfg.LogFile = *logFile

	if err := config.Validate(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n\n", err)
		flag.Usage()
		os.Exit(1)
	}

	logger, closeLog, err := buildLogger(cfg, *verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()
	slog.SetDefault(logger)

	seq, srv := wire(cfg, logger)

	if srv != nil {
		go func() {
			logger.Info("status surface listening", "addr", cfg.ListenAddr)
			if err := srv.ListenAndServe(cfg.ListenAddr); err != nil {
				logger.Error("status surface failed", "error", err)
			}
		}()
	}

	ctx := context.Background()
	if *dummy {
		logger.Info("running in dummy mode")
		if err := seq.RunDummy(ctx); err != nil {
			logger.Error("dummy run failed", "error", err)
			os.Exit(1)
		}
		return
	}

	logger.Info("skyviewd starting",
		"image_base", cfg.Sequencer.ImageBase,
		"video_base", cfg.Sequencer.VideoBase,
		"start_hour", cfg.Sequencer.StartHour,
		"tick_period", cfg.Sequencer.TickPeriod,
	)
	// Run never returns in daemon mode: the loop has no shutdown signal.
	if err := seq.Run(ctx); err != nil {
		logger.Error("sequencer loop stopped", "error", err)
		os.Exit(1)
	}
}

// wire builds the sequencer and, when a listen address is configured, the
// status HTTP surface observing it.
func wire(cfg *config.Config, logger *slog.Logger) (*sequencer.Sequencer, *status.Server) {
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
		Clock:    types.RealClock{},
		Logger:   logger,
	})

	ffmpeg := encoder.NewFFmpeg(encoder.FFmpegConfig{
		Binary: cfg.Sequencer.FFmpegBinary,
		Logger: logger,
	})

	store := &sequencer.FSStore{
		TrashDir: filepath.Join(cfg.Sequencer.ImageBase, ".trash"),
	}

	var srv *status.Server
	var obs sequencer.Observer
	if cfg.ListenAddr != "" {
		srv = status.NewServer(status.ServerConfig{
			Images: assembler,
			Logger: logger,
		})
		obs = srv.Observer()
	}

	seq := sequencer.New(sequencer.Config{
		Sequencer: cfg.Sequencer,
		Store:     store,
		Saver:     assembler,
		Encoder:   ffmpeg,
		Clock:     types.RealClock{},
		Logger:    logger,
		Observer:  obs,
	})
	return seq, srv
}

// buildLogger constructs the process logger: JSON to stdout, optionally
// teed into a log file.
func buildLogger(cfg *config.Config, verbose bool) (*slog.Logger, func(), error) {
	level := slog.LevelInfo
	if verbose || cfg.LogLevel == "debug" {
		level = slog.LevelDebug
	}

	var sink io.Writer = os.Stdout
	closeLog := func() {}
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("opening log file %s: %w", cfg.LogFile, err)
		}
		sink = io.MultiWriter(os.Stdout, f)
		closeLog = func() { f.Close() }
	}

	return slog.New(slog.NewJSONHandler(sink, &slog.HandlerOptions{Level: level})), closeLog, nil
}

// Package encoder invokes the external frame-to-video encoder. The core
// never parses encoder output; it records the exit status and relies on the
// stdout sidecar file as the durable "already attempted" marker.
package encoder

import (
	"context"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"

	"skyview/internal/types"
)

// Sidecar filenames written next to the video artifact. The stdout file is
// the idempotence marker the sequencer checks, so it must exist after every
// attempt, successful or not.
const (
	StdoutSidecar = "ffmpeg_stdout.txt"
	StderrSidecar = "ffmpeg_stderr.txt"
)

// Encode parameters fixed by the overview video format: FullHD H.264 at a
// frame per acquisition tick pace.
const (
	frameRate  = "12"
	resolution = "1920x1080"
	crf        = "23"
	crfMax     = "25"
)

// FFmpeg runs the ffmpeg binary over a %06d.jpg frame sequence. It
// implements the sequencer's Encoder capability.
type FFmpeg struct {
	binary string
	logger *slog.Logger
}

// FFmpegConfig holds the configuration for creating an FFmpeg encoder.
type FFmpegConfig struct {
	Binary string // executable name or path; "ffmpeg" when empty
	Logger *slog.Logger
}

// NewFFmpeg creates an FFmpeg encoder with the given configuration.
func NewFFmpeg(cfg FFmpegConfig) *FFmpeg {
	binary := cfg.Binary
	if binary == "" {
		binary = "ffmpeg"
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &FFmpeg{binary: binary, logger: logger}
}

// Args returns the encoder argv for the given frame directory and output
// path. Exposed so tests can assert on the invocation without running it.
func (f *FFmpeg) Args(frameDir, videoPath string) []string {
	return []string{
		"-y", // overwrite an existing output file
		"-framerate", frameRate,
		"-f", "image2",
		"-i", filepath.Join(frameDir, "%06d.jpg"),
		"-c:v", "h264",
		"-s", resolution,
		"-crf", crf,
		"-crf_max", crfMax,
		videoPath,
	}
}

// Encode runs the encoder synchronously over the numbered frame sequence in
// frameDir, producing videoPath. It returns the process exit status.
//
// Both sidecar files are created in videoPath's directory before the
// process starts, so even a missing binary leaves the marker behind and the
// night is not retried. No timeout is applied; the encoder runs to
// completion or to its own failure.
func (f *FFmpeg) Encode(ctx context.Context, frameDir, videoPath string) (int, error) {
	outDir := filepath.Dir(videoPath)

	stdout, err := os.Create(filepath.Join(outDir, StdoutSidecar))
	if err != nil {
		return -1, types.NewAppError(types.ErrCodeEncodeFailed, "creating stdout sidecar", err)
	}
	defer stdout.Close()

	stderr, err := os.Create(filepath.Join(outDir, StderrSidecar))
	if err != nil {
		return -1, types.NewAppError(types.ErrCodeEncodeFailed, "creating stderr sidecar", err)
	}
	defer stderr.Close()

	cmd := exec.CommandContext(ctx, f.binary, f.Args(frameDir, videoPath)...)
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	f.logger.InfoContext(ctx, "invoking encoder",
		"binary", f.binary,
		"frame_dir", frameDir,
		"video_path", videoPath,
	)

	if err := cmd.Run(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return exitErr.ExitCode(), nil
		}
		// The binary could not be started at all (not found, not
		// executable). The sidecars already exist, so the attempt is
		// still recorded.
		return -1, types.NewAppError(types.ErrCodeEncodeFailed, "starting "+f.binary, err)
	}
	return 0, nil
}

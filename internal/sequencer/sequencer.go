// Package sequencer implements the nightly scheduling state machine: each
// tick it decides whether the current night is in its acquisition or encode
// phase, derives the on-disk sequence location, assigns the next resumable
// frame index, and triggers image acquisition or video encoding.
//
// All temporal state is re-derived from the wall clock and the filesystem
// on every tick. Nothing crosses tick boundaries in memory, so killing and
// relaunching the process resumes frame numbering and encode idempotence
// correctly without external state.
package sequencer

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"skyview/internal/config"
	"skyview/internal/types"
)

// Encoder is the external frame-to-video encoder capability. Implemented
// by encoder.FFmpeg; substituted by a fake in tests.
type Encoder interface {
	// Encode runs the encoder over the numbered frames in frameDir and
	// returns the process exit status.
	Encode(ctx context.Context, frameDir, videoPath string) (int, error)
}

// ImageSaver produces one composite overview image at the given path.
// Implemented by overview.Assembler.
type ImageSaver interface {
	SaveImage(ctx context.Context, outputPath string) error
}

// TickResult describes what one tick decided and did. It feeds the status
// surface and the tests; the loop itself never branches on it.
type TickResult struct {
	Time       time.Time
	Night      types.Night
	Phase      types.Phase
	FrameIndex int    // index written this tick, -1 otherwise
	FramePath  string // frame written this tick, if any
	VideoPath  string // video produced this tick, if any
	Err        error  // the tick's failure, if any; the loop continues regardless
}

// Observer receives every TickResult. Optional.
type Observer func(TickResult)

// Sequencer drives the nightly acquisition/encode cycle.
type Sequencer struct {
	cfg      config.SequencerConfig
	store    NightStore
	saver    ImageSaver
	encoder  Encoder
	clock    types.Clock
	logger   *slog.Logger
	observer Observer
}

// Config holds the dependencies for creating a Sequencer.
type Config struct {
	Sequencer config.SequencerConfig
	Store     NightStore
	Saver     ImageSaver
	Encoder   Encoder
	Clock     types.Clock
	Logger    *slog.Logger
	Observer  Observer
}

// New creates a Sequencer with the given configuration.
func New(cfg Config) *Sequencer {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	clock := cfg.Clock
	if clock == nil {
		clock = types.RealClock{}
	}
	return &Sequencer{
		cfg:      cfg.Sequencer,
		store:    cfg.Store,
		saver:    cfg.Saver,
		encoder:  cfg.Encoder,
		clock:    clock,
		logger:   logger,
		observer: cfg.Observer,
	}
}

// FrameDir returns the frame sequence directory for a night.
func (s *Sequencer) FrameDir(night types.Night) string {
	return night.Dir(s.cfg.ImageBase, s.cfg.ImageSubdir)
}

// VideoDir returns the video artifact directory for a night.
func (s *Sequencer) VideoDir(night types.Night) string {
	return night.Dir(s.cfg.VideoBase, s.cfg.VideoSubdir)
}

// Tick evaluates the state machine once for the current wall-clock time.
// The Night and both directories are recomputed fresh; nothing is cached
// across ticks. Failures are recorded in the result and logged, never
// propagated: the caller's loop always continues.
func (s *Sequencer) Tick(ctx context.Context) TickResult {
	now := s.clock.Now().UTC()
	night := types.NightOf(now)
	hour := now.Hour()

	switch {
	case hour >= s.cfg.StartHour || hour < s.cfg.MorningEndHour:
		return s.acquire(ctx, now, night)
	case hour < s.cfg.EncodeDeadlineHour:
		return s.encode(ctx, now, night)
	default:
		res := TickResult{Time: now, Night: night, Phase: types.PhaseIdle, FrameIndex: -1}
		s.logger.InfoContext(ctx, "waiting for next night", "night", night.String())
		s.notify(res)
		return res
	}
}

// acquire writes exactly one frame at the next resumable index.
func (s *Sequencer) acquire(ctx context.Context, now time.Time, night types.Night) TickResult {
	res := TickResult{Time: now, Night: night, Phase: types.PhaseAcquiring, FrameIndex: -1}
	defer func() { s.notify(res) }()

	frameDir := s.FrameDir(night)
	if err := s.store.EnsureDir(frameDir); err != nil {
		res.Err = err
		s.logger.ErrorContext(ctx, "cannot create frame directory",
			"night", night.String(), "dir", frameDir, "error", err)
		return res
	}

	names, err := s.store.ListFrames(frameDir)
	if err != nil {
		res.Err = err
		s.logger.ErrorContext(ctx, "cannot list frame directory",
			"night", night.String(), "dir", frameDir, "error", err)
		return res
	}

	// The index comes from disk, not from memory, so a restarted process
	// continues the sequence without duplicating filenames.
	index, err := NextFrameIndex(names)
	if err != nil {
		res.Err = err
		s.logger.ErrorContext(ctx, "frame sequence corrupted",
			"night", night.String(), "dir", frameDir, "error", err)
		return res
	}

	framePath := filepath.Join(frameDir, FrameFilename(index))
	if err := s.saver.SaveImage(ctx, framePath); err != nil {
		// The next tick recomputes the index and simply retries.
		res.Err = err
		s.logger.ErrorContext(ctx, "frame write failed",
			"night", night.String(), "frame", framePath, "error", err)
		return res
	}

	res.FrameIndex = index
	res.FramePath = framePath
	s.logger.InfoContext(ctx, "frame saved",
		"night", night.String(), "index", index, "frame", framePath)
	return res
}

// encode invokes the encoder at most once per night. The mere existence of
// the stdout sidecar, regardless of the recorded exit status, suppresses
// any further attempt: a failed encode is reported, not retried.
func (s *Sequencer) encode(ctx context.Context, now time.Time, night types.Night) TickResult {
	res := TickResult{Time: now, Night: night, FrameIndex: -1}
	defer func() { s.notify(res) }()

	frameDir := s.FrameDir(night)
	videoDir := s.VideoDir(night)

	if err := s.store.EnsureDir(videoDir); err != nil {
		res.Phase = types.PhaseAwaitingEncode
		res.Err = err
		s.logger.ErrorContext(ctx, "cannot create video directory",
			"night", night.String(), "dir", videoDir, "error", err)
		return res
	}

	if s.store.MarkerExists(videoDir) {
		res.Phase = types.PhaseEncoded
		s.logger.InfoContext(ctx, "night already encoded, waiting for next night",
			"night", night.String())
		return res
	}

	res.Phase = types.PhaseAwaitingEncode
	videoPath := filepath.Join(videoDir, night.VideoFilename())

	s.logger.InfoContext(ctx, "creating video from frame sequence",
		"night", night.String(), "frame_dir", frameDir, "video", videoPath)

	start := s.clock.Now()
	status, err := s.encoder.Encode(ctx, frameDir, videoPath)
	elapsed := s.clock.Now().Sub(start)

	if err != nil {
		res.Err = err
		s.logger.ErrorContext(ctx, "encoder invocation failed",
			"night", night.String(), "elapsed", elapsed, "error", err)
		return res
	}
	if status != 0 {
		res.Err = types.NewAppError(types.ErrCodeEncodeFailed, "encoder exited non-zero", nil)
		s.logger.ErrorContext(ctx, "encoder exited non-zero",
			"night", night.String(), "exit_status", status, "elapsed", elapsed)
		return res
	}

	res.VideoPath = videoPath
	s.logger.InfoContext(ctx, "video created",
		"night", night.String(), "video", videoPath, "elapsed", elapsed)

	if s.cfg.TrashAfterEncode {
		if err := s.store.TrashFrames(night, frameDir); err != nil {
			res.Err = err
			s.logger.ErrorContext(ctx, "trashing frame sequence failed",
				"night", night.String(), "dir", frameDir, "error", err)
			return res
		}
		s.logger.InfoContext(ctx, "frame sequence trashed",
			"night", night.String(), "dir", frameDir)
	}
	return res
}

func (s *Sequencer) notify(res TickResult) {
	if s.observer != nil {
		s.observer(res)
	}
}

// Run drives the tick loop forever: one Tick per TickPeriod, sleeping in
// between. No graceful drain protocol exists; the daemon stops only when
// the process is killed or ctx is cancelled (tests).
func (s *Sequencer) Run(ctx context.Context) error {
	for {
		s.Tick(ctx)

		timer := time.NewTimer(s.cfg.TickPeriod)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// RunDummy is the test mode: ten immediate acquisition ticks followed by
// one encode, regardless of the wall-clock hour, then return.
func (s *Sequencer) RunDummy(ctx context.Context) error {
	now := s.clock.Now().UTC()
	night := types.NightOf(now)

	for i := 0; i < 10; i++ {
		s.acquire(ctx, s.clock.Now().UTC(), night)
	}
	s.encode(ctx, s.clock.Now().UTC(), night)
	return nil
}

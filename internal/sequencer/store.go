package sequencer

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"skyview/internal/encoder"
	"skyview/internal/types"
)

// NightStore is the filesystem adapter behind all path and marker logic.
// The design keeps the filesystem as the only durable state (no database),
// so the whole state machine can be exercised against an in-memory fake.
//
// Only one sequencer instance is assumed to run against a given tree at a
// time; check-then-create races are deliberately left un-hardened.
type NightStore interface {
	// EnsureDir creates dir and any missing parents. It is a no-op, not
	// an error, when the path already exists.
	EnsureDir(dir string) error

	// ListFrames returns the base names of the .jpg files in dir. A
	// missing directory yields an empty list.
	ListFrames(dir string) ([]string, error)

	// MarkerExists reports whether an encode was already attempted for
	// the night owning videoDir (existence of the stdout sidecar).
	MarkerExists(videoDir string) bool

	// TrashFrames moves the night's frame files out of frameDir into the
	// trash area. Frames are never permanently erased here.
	TrashFrames(night types.Night, frameDir string) error
}

// FSStore is the production NightStore backed by the real filesystem.
type FSStore struct {
	// TrashDir receives trashed frame sequences, one subdirectory per
	// night. Typically <image-base>/.trash.
	TrashDir string
}

// EnsureDir creates dir and any missing parents; an existing path is fine.
func (s *FSStore) EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return types.NewAppError(types.ErrCodeStorageFailed, "creating "+dir, err)
	}
	return nil
}

// ListFrames returns the sorted base names of the .jpg files in dir.
func (s *FSStore) ListFrames(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, types.NewAppError(types.ErrCodeStorageFailed, "listing "+dir, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".jpg") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

// MarkerExists reports whether the encoder's stdout sidecar is present in
// videoDir.
func (s *FSStore) MarkerExists(videoDir string) bool {
	_, err := os.Stat(filepath.Join(videoDir, encoder.StdoutSidecar))
	return err == nil
}

// TrashFrames renames every frame file of frameDir into
// TrashDir/<YYYYMMDD>/, creating the target directory as needed.
func (s *FSStore) TrashFrames(night types.Night, frameDir string) error {
	names, err := s.ListFrames(frameDir)
	if err != nil {
		return err
	}
	target := filepath.Join(s.TrashDir, night.String())
	if err := s.EnsureDir(target); err != nil {
		return err
	}
	for _, name := range names {
		src := filepath.Join(frameDir, name)
		if err := os.Rename(src, filepath.Join(target, name)); err != nil {
			return types.NewAppError(types.ErrCodeStorageFailed, "trashing "+src, err)
		}
	}
	return nil
}

package sequencer

import (
	"fmt"
	"strconv"
	"strings"

	"skyview/internal/types"
)

// frameIndexWidth is the fixed width of the numeric component of a frame
// filename, e.g. 000123.jpg.
const frameIndexWidth = 6

// FrameFilename formats an index into the on-disk frame name.
func FrameFilename(index int) string {
	return fmt.Sprintf("%06d.jpg", index)
}

// NextFrameIndex derives the next frame index from the .jpg filenames
// already present in a night's sequence directory: max existing index + 1,
// or 0 for an empty directory. Contiguity is not required.
//
// The index is extracted as the fixed-width suffix (the last six characters
// before the extension), never by generic integer parsing. A .jpg name that
// does not conform is a hard sequence_corrupt error: it indicates an
// externally corrupted directory that is not auto-repaired.
func NextFrameIndex(names []string) (int, error) {
	next := 0
	for _, name := range names {
		if !strings.HasSuffix(name, ".jpg") {
			continue
		}
		stem := strings.TrimSuffix(name, ".jpg")
		if len(stem) < frameIndexWidth {
			return 0, types.NewAppError(
				types.ErrCodeSequenceCorrupt,
				fmt.Sprintf("frame name %q is shorter than the %d-digit index", name, frameIndexWidth),
				nil,
			)
		}
		idx, err := strconv.Atoi(stem[len(stem)-frameIndexWidth:])
		if err != nil || idx < 0 {
			return 0, types.NewAppError(
				types.ErrCodeSequenceCorrupt,
				fmt.Sprintf("frame name %q does not end in a %d-digit index", name, frameIndexWidth),
				err,
			)
		}
		if idx+1 > next {
			next = idx + 1
		}
	}
	return next, nil
}

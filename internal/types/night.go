package types

import (
	"fmt"
	"path/filepath"
	"time"
)

// nightOffset is subtracted from the wall clock before taking the calendar
// date, so that one observational night (local evening through the next
// morning) maps onto a single date. The night rolls over at 12:00 UTC.
const nightOffset = 12 * time.Hour

// Night identifies one observational night by its calendar date.
// The identity is immutable once computed; a Night is never destroyed, it
// simply stops being current when the wall clock crosses the next noon.
type Night struct {
	Year  int
	Month time.Month
	Day   int
}

// NightOf returns the Night that the given instant belongs to.
// Callers must re-derive the Night from the wall clock on every tick rather
// than caching it, so long-running processes advance across the boundary.
func NightOf(now time.Time) Night {
	shifted := now.UTC().Add(-nightOffset)
	return Night{
		Year:  shifted.Year(),
		Month: shifted.Month(),
		Day:   shifted.Day(),
	}
}

// String returns the compact YYYYMMDD form used in video filenames and logs.
func (n Night) String() string {
	return fmt.Sprintf("%04d%02d%02d", n.Year, int(n.Month), n.Day)
}

// Dir returns base/YYYY/MM/DD/subdir, the deterministic per-night directory
// layout shared by frame sequences and video artifacts.
func (n Night) Dir(base, subdir string) string {
	return filepath.Join(
		base,
		fmt.Sprintf("%04d", n.Year),
		fmt.Sprintf("%02d", int(n.Month)),
		fmt.Sprintf("%02d", n.Day),
		subdir,
	)
}

// VideoFilename returns the YYYYMMDD.mp4 artifact name for this night.
func (n Night) VideoFilename() string {
	return n.String() + ".mp4"
}

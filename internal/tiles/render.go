package tiles

import (
	"fmt"
	"image"
	"image/color"
	"sync"
	"time"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"skyview/internal/types"
)

// Rendered tiles are red monospace text on black, the historical look of
// the overview's synthetic panels.
var textRed = color.RGBA{R: 0xff, A: 0xff}

var (
	fontOnce  sync.Once
	monoFont  *opentype.Font
	fontError error
)

func loadFont() (*opentype.Font, error) {
	fontOnce.Do(func() {
		monoFont, fontError = opentype.Parse(gomono.TTF)
	})
	return monoFont, fontError
}

// newFace builds a monospace face at the given point size.
func newFace(size float64) (font.Face, error) {
	f, err := loadFont()
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeRenderFailed, "parsing embedded font", err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeRenderFailed, "building font face", err)
	}
	return face, nil
}

// drawCentered draws s horizontally centered with its baseline at y.
func drawCentered(dst *image.RGBA, face font.Face, s string, y int) {
	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(textRed),
		Face: face,
	}
	width := d.MeasureString(s)
	d.Dot = fixed.Point26_6{
		X: fixed.I(dst.Bounds().Dx()/2) - width/2,
		Y: fixed.I(y),
	}
	d.DrawString(s)
}

// RenderClock renders the UTC clock tile: the time of day large, the date
// beneath it. It is a pure function of its inputs.
func RenderClock(now time.Time, rows, cols int) (*image.RGBA, error) {
	now = now.UTC()
	img := Blank(rows, cols)

	timeFace, err := newFace(float64(rows) / 5)
	if err != nil {
		return nil, err
	}
	defer timeFace.Close()
	dateFace, err := newFace(float64(rows) / 7)
	if err != nil {
		return nil, err
	}
	defer dateFace.Close()

	drawCentered(img, timeFace, now.Format("15:04:05"), rows*2/5)
	drawCentered(img, dateFace, now.Format("2006.01.02"), rows*3/4)
	return img, nil
}

// statusText formats a snapshot into the fixed monospace panel layout.
func statusText(s *types.StatusSnapshot) []string {
	return []string{
		"SQM",
		fmt.Sprintf(" Magnitude.... %.1f", s.SkyMagnitude.Value),
		"SIPM",
		fmt.Sprintf(" power........ %.1f %s", s.Power.Value, s.Power.Unit),
		fmt.Sprintf(" min med max.. %.1f, %.1f, %.1f %s",
			s.CurrentMin.Value, s.CurrentMedian.Value, s.CurrentMax.Value, s.CurrentMax.Unit),
		"Temp",
		fmt.Sprintf(" outside...... %.1f C", s.OutsideTemp),
		fmt.Sprintf(" container.... %.1f C", s.ContainerTemp),
		fmt.Sprintf(" camera....... %.1f C", s.CameraTemp),
		"Source",
		fmt.Sprintf(" name......... %s", s.SourceName),
		fmt.Sprintf(" Azimuth...... %.1f %s", s.Azimuth.Value, s.Azimuth.Unit),
		fmt.Sprintf(" Zenith....... %.1f %s", s.ZenithDistance.Value, s.ZenithDistance.Unit),
	}
}

// RenderStatus renders the telescope-status tile from one snapshot.
// A nil snapshot is a render failure; the caller degrades to blank.
func RenderStatus(snap *types.StatusSnapshot, rows, cols int) (*image.RGBA, error) {
	if snap == nil {
		return nil, types.NewAppError(types.ErrCodeRenderFailed, "no status snapshot", nil)
	}

	img := Blank(rows, cols)
	face, err := newFace(float64(rows) / 24)
	if err != nil {
		return nil, err
	}
	defer face.Close()

	lines := statusText(snap)
	metrics := face.Metrics()
	lineHeight := metrics.Height.Ceil() + 2
	blockHeight := lineHeight * len(lines)
	top := (rows-blockHeight)/2 + metrics.Ascent.Ceil()

	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(textRed),
		Face: face,
	}
	for i, line := range lines {
		d.Dot = fixed.P(cols/16, top+i*lineHeight)
		d.DrawString(line)
	}
	return img, nil
}

// Package tiles produces the fixed-size raster tiles that make up one
// overview composite: downloaded webcam snapshots, a rendered clock tile,
// a rendered telescope-status tile, and the blank placeholder every other
// tile degrades to on failure.
package tiles

import "image"

// Blank returns an all-black rows x cols tile. It is the substitute for any
// tile that fails to download or render, and the filler for unused grid
// cells.
func Blank(rows, cols int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, cols, rows))
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 0xff // opaque black
	}
	return img
}

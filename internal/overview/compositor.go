// Package overview assembles one composite overview image: a grid of webcam
// tiles plus the rendered status and clock tiles.
package overview

import (
	"fmt"
	"image"
	"image/draw"

	"skyview/internal/tiles"
	"skyview/internal/types"
)

// Compose arranges equally sized tiles into a gridRows x gridCols grid,
// left-to-right, top-to-bottom. Missing cells are filled with blank tiles;
// tiles beyond the grid capacity are silently ignored. All supplied tiles
// must share the dimensions of the first one.
func Compose(imgs []*image.RGBA, gridRows, gridCols int) (*image.RGBA, error) {
	if len(imgs) == 0 {
		return nil, types.NewAppError(types.ErrCodeRenderFailed, "no tiles to compose", nil)
	}
	if gridRows < 1 || gridCols < 1 {
		return nil, types.NewAppError(
			types.ErrCodeRenderFailed,
			fmt.Sprintf("invalid grid %dx%d", gridRows, gridCols),
			nil,
		)
	}

	tileW := imgs[0].Bounds().Dx()
	tileH := imgs[0].Bounds().Dy()
	for i, img := range imgs {
		if i >= gridRows*gridCols {
			break
		}
		if img.Bounds().Dx() != tileW || img.Bounds().Dy() != tileH {
			return nil, types.NewAppError(
				types.ErrCodeRenderFailed,
				fmt.Sprintf("tile %d size %dx%d does not match %dx%d",
					i, img.Bounds().Dx(), img.Bounds().Dy(), tileW, tileH),
				nil,
			)
		}
	}

	canvas := image.NewRGBA(image.Rect(0, 0, gridCols*tileW, gridRows*tileH))
	blank := tiles.Blank(tileH, tileW)

	for row := 0; row < gridRows; row++ {
		for col := 0; col < gridCols; col++ {
			i := col + gridCols*row
			src := blank
			if i < len(imgs) {
				src = imgs[i]
			}
			x := col * tileW
			y := row * tileH
			draw.Draw(canvas, image.Rect(x, y, x+tileW, y+tileH), src, src.Bounds().Min, draw.Src)
		}
	}
	return canvas, nil
}

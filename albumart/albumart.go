// Package albumart turns embedded cover images into small grids of
// terminal half-block cells. Each cell carries two colors so the UI can
// draw it as ▀ with separate foreground/background, doubling vertical
// resolution.
package albumart

import (
	"bytes"
	"fmt"
	"hash/fnv"
	"image"
	"image/color"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/nfnt/resize"
)

// Cells is the width and height of the rendered art in terminal cells.
// One cell covers two vertical pixels.
const Cells = 20

// Cell is one terminal character of art: the color above and below the
// half-block split.
type Cell struct {
	Top    color.RGBA
	Bottom color.RGBA
}

// Art is a square block of cells ready for rendering.
type Art struct {
	Grid [Cells][Cells]Cell
}

// Decode parses cover bytes (jpeg, png or gif) and folds them into a
// cell grid.
func Decode(data []byte) (*Art, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode cover image: %w", err)
	}

	scaled := resize.Resize(Cells, Cells*2, img, resize.Lanczos3)

	art := &Art{}
	for cy := 0; cy < Cells; cy++ {
		for cx := 0; cx < Cells; cx++ {
			art.Grid[cy][cx] = Cell{
				Top:    rgbaAt(scaled, cx, cy*2),
				Bottom: rgbaAt(scaled, cx, cy*2+1),
			}
		}
	}
	return art, nil
}

func rgbaAt(img image.Image, x, y int) color.RGBA {
	r, g, b, _ := img.At(img.Bounds().Min.X+x, img.Bounds().Min.Y+y).RGBA()
	return color.RGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: 0xff}
}

// Placeholder builds deterministic stand-in art for tracks without a
// cover: a two-tone diagonal gradient seeded from the track path, so
// different albums get visually distinct tiles.
func Placeholder(seed string) *Art {
	h := fnv.New32a()
	_, _ = h.Write([]byte(seed))
	base := h.Sum32()

	hue := float64(base%360) / 360.0
	r0, g0, b0 := hueToRGB(hue)

	art := &Art{}
	for cy := 0; cy < Cells; cy++ {
		for cx := 0; cx < Cells; cx++ {
			shade := func(py int) color.RGBA {
				// Brightness falls along the diagonal.
				f := 1.0 - 0.6*float64(cx+py)/float64(Cells+Cells*2)
				return color.RGBA{
					R: uint8(float64(r0) * f),
					G: uint8(float64(g0) * f),
					B: uint8(float64(b0) * f),
					A: 0xff,
				}
			}
			art.Grid[cy][cx] = Cell{Top: shade(cy * 2), Bottom: shade(cy*2 + 1)}
		}
	}
	return art
}

// hueToRGB maps a hue in [0,1) to a fully saturated RGB color.
func hueToRGB(h float64) (uint8, uint8, uint8) {
	seg := h * 6
	x := uint8(255 * (1 - abs(mod2(seg)-1)))
	switch int(seg) % 6 {
	case 0:
		return 255, x, 0
	case 1:
		return x, 255, 0
	case 2:
		return 0, 255, x
	case 3:
		return 0, x, 255
	case 4:
		return x, 0, 255
	default:
		return 255, 0, x
	}
}

func mod2(v float64) float64 {
	for v >= 2 {
		v -= 2
	}
	return v
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

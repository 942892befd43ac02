package imaging

import (
	"image"
	"image/color"
	"image/draw"
	"strconv"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// GridStyle controls the coordinate grid drawn over the canvas.
type GridStyle struct {
	// Spacing between lines in pixels. Zero or negative disables the grid.
	Spacing int

	// ShowCoordinates labels each intersection with its "x,y" position.
	ShowCoordinates bool

	Color color.RGBA
}

// DefaultGridColor is semi-transparent red.
var DefaultGridColor = color.RGBA{255, 0, 0, 128}

// WithGrid returns a copy of img with a coordinate grid drawn over it, so
// that a client can read display-space positions off the canvas directly.
func WithGrid(img image.Image, style GridStyle) *image.RGBA {
	bounds := img.Bounds()
	out := image.NewRGBA(bounds)
	draw.Draw(out, bounds, img, bounds.Min, draw.Src)

	if style.Spacing <= 0 {
		return out
	}
	line := image.NewUniform(style.Color)

	for x := bounds.Min.X + style.Spacing; x < bounds.Max.X; x += style.Spacing {
		draw.Draw(out, image.Rect(x, bounds.Min.Y, x+1, bounds.Max.Y), line, image.Point{}, draw.Over)
	}
	for y := bounds.Min.Y + style.Spacing; y < bounds.Max.Y; y += style.Spacing {
		draw.Draw(out, image.Rect(bounds.Min.X, y, bounds.Max.X, y+1), line, image.Point{}, draw.Over)
	}

	if style.ShowCoordinates {
		for y := bounds.Min.Y + style.Spacing; y < bounds.Max.Y; y += style.Spacing {
			for x := bounds.Min.X + style.Spacing; x < bounds.Max.X; x += style.Spacing {
				gridLabel(out, x+2, y+2, strconv.Itoa(x)+","+strconv.Itoa(y))
			}
		}
	}
	return out
}

// gridLabel draws white text on a dark box with its top-left corner at (x, y).
func gridLabel(img *image.RGBA, x, y int, text string) {
	face := basicfont.Face7x13
	d := &font.Drawer{Dst: img, Src: image.White, Face: face}
	width := d.MeasureString(text).Ceil()
	m := face.Metrics()
	height := (m.Ascent + m.Descent).Ceil()

	bg := image.NewUniform(color.RGBA{0, 0, 0, 180})
	draw.Draw(img, image.Rect(x-1, y-1, x+width+1, y+height), bg, image.Point{}, draw.Over)

	d.Dot = fixed.P(x, y+m.Ascent.Ceil())
	d.DrawString(text)
}

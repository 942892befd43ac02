package imaging

import (
	"image"
	"image/color"
	"image/draw"
	"testing"
)

func newGridTestImage(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	return img
}

func TestWithGrid_GridLines(t *testing.T) {
	img := newGridTestImage(100, 100, color.Black)

	out := WithGrid(img, GridStyle{Spacing: 25, Color: color.RGBA{255, 0, 0, 255}})

	// Check that grid line at x=25 is red
	if got := out.RGBAAt(25, 50); got != (color.RGBA{255, 0, 0, 255}) {
		t.Errorf("grid line color at (25,50): got %v, want red", got)
	}
	if got := out.RGBAAt(60, 75); got != (color.RGBA{255, 0, 0, 255}) {
		t.Errorf("grid line color at (60,75): got %v, want red", got)
	}

	// Check that non-grid position is still black (background)
	if got := out.RGBAAt(15, 15); got != (color.RGBA{0, 0, 0, 255}) {
		t.Errorf("non-grid position at (15,15): got %v, want black", got)
	}
}

func TestWithGrid_DoesNotModifyInput(t *testing.T) {
	img := newGridTestImage(50, 50, color.White)
	WithGrid(img, GridStyle{Spacing: 10, ShowCoordinates: true, Color: DefaultGridColor})

	if got := img.RGBAAt(10, 20); got != (color.RGBA{255, 255, 255, 255}) {
		t.Errorf("input modified at (10,20): got %v", got)
	}
}

func TestWithGrid_Disabled(t *testing.T) {
	img := newGridTestImage(40, 40, color.White)
	out := WithGrid(img, GridStyle{Spacing: 0, Color: DefaultGridColor})

	for y := 0; y < 40; y++ {
		for x := 0; x < 40; x++ {
			if out.RGBAAt(x, y) != (color.RGBA{255, 255, 255, 255}) {
				t.Fatalf("pixel (%d,%d) changed with grid disabled", x, y)
			}
		}
	}
}

func TestWithGrid_Coordinates(t *testing.T) {
	img := newGridTestImage(120, 120, color.White)
	out := WithGrid(img, GridStyle{Spacing: 50, ShowCoordinates: true, Color: DefaultGridColor})

	// The label box sits just below-right of the (50,50) intersection.
	dark := 0
	for y := 52; y < 62; y++ {
		for x := 52; x < 80; x++ {
			if c := out.RGBAAt(x, y); c.R < 128 {
				dark++
			}
		}
	}
	if dark == 0 {
		t.Error("expected a dark label box near (50,50)")
	}
}

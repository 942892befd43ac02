package imaging

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/anthonynsimon/bild/blend"
	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/ironsheep/pdf-redact-mcp/internal/fonts"
	"github.com/ironsheep/pdf-redact-mcp/internal/redaction"
)

// CanvasStyle controls how drawn selections are shown on the editing canvas.
type CanvasStyle struct {
	Stroke  color.RGBA
	Opacity float64
}

// DefaultCanvasStyle is a light blue translucent fill with a solid outline.
func DefaultCanvasStyle() CanvasStyle {
	return CanvasStyle{Stroke: color.RGBA{0, 150, 255, 255}, Opacity: 0.2}
}

// PreviewStyle controls how redacted regions are shown in the preview.
type PreviewStyle struct {
	Fill    color.RGBA
	Outline color.RGBA
	Label   color.RGBA

	// LabelText is drawn when a TrueType face is available, FallbackText when
	// the preview falls back to the built-in bitmap font.
	LabelText    string
	FallbackText string

	// Labels are only drawn into regions taller than MinLabelHeight pixels.
	MinLabelHeight float64
	Sizing         redaction.LabelSizing
}

// DefaultPreviewStyle mirrors the output: white fill, grey outline, red label.
func DefaultPreviewStyle() PreviewStyle {
	return PreviewStyle{
		Fill:           color.RGBA{255, 255, 255, 255},
		Outline:        color.RGBA{204, 204, 204, 255},
		Label:          color.RGBA{255, 0, 0, 255},
		LabelText:      "KVKK nedeniyle silinmiştir",
		FallbackText:   "KVKK redacted",
		MinLabelHeight: 5,
		Sizing:         redaction.PreviewSizing(),
	}
}

// RenderCanvas draws the user's selections over the display image as
// translucent boxes. The display image is not modified.
func RenderCanvas(display image.Image, rects []redaction.Rect, style CanvasStyle) *image.RGBA {
	bounds := display.Bounds()
	layer := image.NewRGBA(bounds)

	fill := image.NewUniform(withOpacity(style.Stroke, style.Opacity))
	stroke := image.NewUniform(style.Stroke)
	for _, r := range rects {
		px := pixelRect(r, bounds)
		if px.Empty() {
			continue
		}
		draw.Draw(layer, px, fill, image.Point{}, draw.Src)
		strokeRect(layer, px, stroke)
	}

	return blend.Normal(display, layer)
}

// RenderPreview returns a copy of the display image with every rectangle
// filled, outlined and labelled the way the output document will look.
func RenderPreview(display image.Image, rects []redaction.Rect, style PreviewStyle, faces *fonts.Faces) *image.NRGBA {
	out := imaging.Clone(display)
	bounds := out.Bounds()

	text := style.LabelText
	if faces == nil || faces.Bitmap() {
		text = style.FallbackText
	}

	fill := image.NewUniform(style.Fill)
	outline := image.NewUniform(style.Outline)
	for _, r := range rects {
		px := pixelRect(r, bounds)
		if px.Empty() {
			continue
		}
		draw.Draw(out, px, fill, image.Point{}, draw.Src)
		strokeRect(out, px, outline)

		if r.Height <= style.MinLabelHeight || text == "" {
			continue
		}
		var face font.Face = basicfont.Face7x13
		if faces != nil {
			face = faces.Face(style.Sizing.FontSize(r.Height))
		}
		drawCentered(out, face, text, r.Left+r.Width/2, r.Top+r.Height/2, style.Label)
	}
	return out
}

// pixelRect converts a fractional rectangle into the covering pixel rectangle,
// clipped to bounds.
func pixelRect(r redaction.Rect, bounds image.Rectangle) image.Rectangle {
	px := image.Rect(
		int(math.Floor(r.Left)),
		int(math.Floor(r.Top)),
		int(math.Ceil(r.Right())),
		int(math.Ceil(r.Bottom())),
	)
	return px.Intersect(bounds)
}

// strokeRect draws a 1px outline along the inside edge of r.
func strokeRect(dst draw.Image, r image.Rectangle, src image.Image) {
	edges := []image.Rectangle{
		image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+1),
		image.Rect(r.Min.X, r.Max.Y-1, r.Max.X, r.Max.Y),
		image.Rect(r.Min.X, r.Min.Y, r.Min.X+1, r.Max.Y),
		image.Rect(r.Max.X-1, r.Min.Y, r.Max.X, r.Max.Y),
	}
	for _, e := range edges {
		draw.Draw(dst, e.Intersect(r), src, image.Point{}, draw.Src)
	}
}

// drawCentered draws text with its visual center at (cx, cy).
func drawCentered(dst draw.Image, face font.Face, text string, cx, cy float64, c color.Color) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: face,
	}
	width := d.MeasureString(text)
	m := face.Metrics()

	d.Dot = fixed.Point26_6{
		X: floatToFixed(cx) - width/2,
		Y: floatToFixed(cy) + (m.Ascent-m.Descent)/2,
	}
	d.DrawString(text)
}

func floatToFixed(v float64) fixed.Int26_6 {
	return fixed.Int26_6(math.Round(v * 64))
}

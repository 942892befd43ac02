package redaction

import (
	"errors"
	"fmt"
	"math"
)

// ErrNonPositiveDimension is returned when a page or display dimension is <= 0.
var ErrNonPositiveDimension = errors.New("dimensions must be positive")

// Rect is an axis-aligned rectangle with a top-left origin.
//
// The same type is used for display space (pixels) and document space (points);
// which space a value lives in is determined by where it came from.
type Rect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Right returns the X coordinate of the right edge.
func (r Rect) Right() float64 { return r.Left + r.Width }

// Bottom returns the Y coordinate of the bottom edge.
func (r Rect) Bottom() float64 { return r.Top + r.Height }

// IsDegenerate reports whether the rectangle has no visible area.
//
// Degenerate rectangles still map cleanly; they just produce a redaction with
// no visible effect. Whether to drop them is up to the caller.
func (r Rect) IsDegenerate() bool {
	return r.Width <= 0 || r.Height <= 0
}

// ScaleFactors converts display-space lengths into document-space lengths.
type ScaleFactors struct {
	ScaleX float64 `json:"scale_x"`
	ScaleY float64 `json:"scale_y"`
}

// ComputeScaleFactors returns the per-axis ratio between the page and the
// display image it was rendered into.
//
// Parameters:
//   - pageWidth, pageHeight: page size in document units (points).
//   - displayWidth, displayHeight: preview image size in pixels.
//
// All four must be > 0, otherwise ErrNonPositiveDimension is returned.
func ComputeScaleFactors(pageWidth, pageHeight, displayWidth, displayHeight float64) (ScaleFactors, error) {
	if pageWidth <= 0 || pageHeight <= 0 || displayWidth <= 0 || displayHeight <= 0 {
		return ScaleFactors{}, fmt.Errorf("page %gx%g, display %gx%g: %w",
			pageWidth, pageHeight, displayWidth, displayHeight, ErrNonPositiveDimension)
	}
	return ScaleFactors{
		ScaleX: pageWidth / displayWidth,
		ScaleY: pageHeight / displayHeight,
	}, nil
}

// DisplaySize returns the preview image size for a page rendered at the given
// display width. The height preserves the page aspect ratio and is rounded to
// the nearest pixel.
func DisplaySize(pageWidth, pageHeight float64, displayWidth int) (int, int, error) {
	if pageWidth <= 0 || pageHeight <= 0 || displayWidth <= 0 {
		return 0, 0, fmt.Errorf("page %gx%g, display width %d: %w",
			pageWidth, pageHeight, displayWidth, ErrNonPositiveDimension)
	}
	h := int(math.Round(pageHeight * float64(displayWidth) / pageWidth))
	if h < 1 {
		h = 1
	}
	return displayWidth, h, nil
}

// MapRectangle converts a display-space rectangle into document space.
//
// The mapping is linear and performs no clamping: a rectangle drawn at the
// canvas edge may land marginally outside the page because of display height
// rounding. Zero-area rectangles are mapped like any other.
func MapRectangle(r Rect, s ScaleFactors) Rect {
	return Rect{
		Left:   r.Left * s.ScaleX,
		Top:    r.Top * s.ScaleY,
		Width:  r.Width * s.ScaleX,
		Height: r.Height * s.ScaleY,
	}
}

// UnmapRectangle converts a document-space rectangle back into display space.
func UnmapRectangle(r Rect, s ScaleFactors) Rect {
	return Rect{
		Left:   r.Left / s.ScaleX,
		Top:    r.Top / s.ScaleY,
		Width:  r.Width / s.ScaleX,
		Height: r.Height / s.ScaleY,
	}
}

// MapAll maps rects in order. Overlapping or duplicate rectangles are kept.
func MapAll(rects []Rect, s ScaleFactors) []Rect {
	out := make([]Rect, len(rects))
	for i, r := range rects {
		out[i] = MapRectangle(r, s)
	}
	return out
}

// Visible returns the rectangles that have a non-zero area, preserving order.
func Visible(rects []Rect) []Rect {
	out := make([]Rect, 0, len(rects))
	for _, r := range rects {
		if !r.IsDegenerate() {
			out = append(out, r)
		}
	}
	return out
}

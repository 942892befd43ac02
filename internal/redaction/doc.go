// Package redaction converts rectangles drawn on a scaled preview image into the
// coordinate system of the original document page.
//
// # Coordinate Spaces
//
// Display space is the pixel grid of the resized preview image the user draws on.
// Document space is the page's own coordinate system in points at 1x scale. Both
// spaces use a top-left origin with Y increasing downward; flipping into PDF user
// space is the document backend's job.
//
// # Scale Factors
//
// The display width is chosen by configuration and the display height is derived
// from the page aspect ratio, rounded to whole pixels:
//
//	displayHeight = round(pageHeight * displayWidth / pageWidth)
//
// Each axis then gets its own factor (ScaleX, ScaleY). Because the display height
// is rounded, the two factors differ slightly and a mapped edge may be off by up to
// one unit in document space. That error is accepted and never corrected.
//
// # Label Sizing
//
// The notice label drawn inside each region is sized from the region's height.
// Preview and output use different clamp ranges because the preview is rendered
// at a larger pixel scale than the final document.
//
// Everything in this package is pure and safe for concurrent use.
package redaction

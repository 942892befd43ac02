// Package imaging renders the raster views of a document that is being redacted.
//
// A page is rendered once by the document backend at a fixed zoom (1.5x by
// default), then resized with Lanczos resampling to the display size the user
// draws on. Two views are derived from that display image:
//
//   - the canvas, where each drawn rectangle is shown as a translucent box
//     with a solid outline (RenderCanvas);
//   - the preview, where each rectangle is filled, outlined and labelled the
//     way the final document will look (RenderPreview).
//
// WithGrid can be layered over the canvas to draw a coordinate grid, which lets
// a caller read display coordinates straight off the image.
//
// # Coordinate System
//
// All rectangles passed to this package are in display space: pixels of the
// resized image, origin at the top-left, X increasing rightward and Y
// increasing downward. Fractional edges are expanded to the covering pixels and
// clipped to the image bounds.
//
// # Labels
//
// Preview labels are drawn with a TrueType face from the fonts package at a size
// derived from the rectangle height. When no font file is available the
// built-in 7x13 bitmap face is used together with the ASCII fallback text,
// matching what the output document does in the same situation.
//
// # Caching
//
// Page rendering is the expensive step. RasterCache keeps rendered rasters in
// memory keyed by the document's content hash and render scale; the cache
// package offers a Redis-backed RasterStore for deployments that restart often.
//
// # Thread Safety
//
// RasterCache is safe for concurrent use. The render functions never modify
// their input image and can be called concurrently.
package imaging

// Package document wraps the PDF library behind the operations a redaction
// session needs: open and validate a single-page document, render it, and write
// a copy with regions removed and labelled.
//
// Rectangles passed in are in document space: points from the top-left corner
// of the page as displayed, which is the crop box turned by the page's /Rotate.
// They are converted to PDF user space (bottom-left origin) before content is
// removed, the same way the writer places new drawing on the page.
//
// Content removal works on the page content stream. Text-showing operations
// whose estimated extent touches a region are dropped, as are images that lie
// entirely inside one. Form XObjects are placed by BBox under Matrix and CTM:
// a fully covered form is dropped, one that only touches a region has its own
// content filtered the same way. Everything else (vector paths, images only
// partly covered) stays in the stream and is hidden under the opaque fill.
package document

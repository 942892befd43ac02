// Package ocr suggests redaction regions by running Tesseract over the
// display image of a page.
//
// This package wraps the Tesseract OCR engine (via gosseract/v2). Words are
// recognized at RIL_WORD level, filtered by confidence and, optionally, by a
// set of regular expressions, and returned as display-space rectangles that
// can be fed straight back into a session as regions.
//
// # Prerequisites
//
// Tesseract must be installed on the system:
//   - Ubuntu/Debian: apt-get install tesseract-ocr
//   - macOS: brew install tesseract
//
// Language data files are required for each language:
//   - Ubuntu/Debian: apt-get install tesseract-ocr-eng (for English)
//   - Turkish: tesseract-ocr-tur
//
// # Patterns
//
// Patterns are matched against single words. A value that Tesseract splits
// into several words (a phone number written with spaces, say) will only be
// suggested piecewise, if at all.
//
// # Error Handling
//
// Suggest returns errors for unusable images, unknown languages, and
// Tesseract initialization failures. Invalid patterns are rejected by
// CompilePatterns before any OCR work starts.
package ocr

// Package fonts resolves the TrueType font used for redaction labels.
//
// Candidate paths are fixed lists tried in order; the first path that exists
// wins. When none exists the caller gets an explicit NotFound resolution and is
// expected to switch to its built-in rendering path and the ASCII label.
package fonts

import (
	"fmt"
	"os"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"
)

const (
	dejaVuSans     = "/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf"
	liberationSans = "/usr/share/fonts/truetype/liberation/LiberationSans-Regular.ttf"
	freeSans       = "/usr/share/fonts/truetype/freefont/FreeSans.ttf"
)

// PreviewCandidates is the search order for preview label fonts. The first entry
// is relative to the working directory so a bundled font takes precedence.
var PreviewCandidates = []string{
	"fonts/arial.ttf",
	dejaVuSans,
	liberationSans,
	freeSans,
}

// OutputCandidates is the search order for fonts embedded into the output PDF.
var OutputCandidates = []string{
	dejaVuSans,
	liberationSans,
	freeSans,
}

// Resolution is the outcome of searching a candidate list.
type Resolution struct {
	// Path is the winning candidate. Empty when Found is false.
	Path  string `json:"path,omitempty"`
	Found bool   `json:"found"`
}

// NotFound is the resolution returned when no candidate exists.
var NotFound = Resolution{}

// Resolve returns the first candidate that exists as a regular file.
func Resolve(candidates []string) Resolution {
	for _, path := range candidates {
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			continue
		}
		return Resolution{Path: path, Found: true}
	}
	return NotFound
}

// Faces hands out preview font faces by pixel size.
//
// A Faces built from a NotFound resolution (or from a file that fails to
// parse) serves basicfont.Face7x13 for every size.
type Faces struct {
	font *opentype.Font

	mu    sync.Mutex
	cache map[int]font.Face
}

// LoadFaces parses the resolved font. A parse failure still yields usable
// bitmap Faces together with the error, so callers may log and carry on.
func LoadFaces(res Resolution) (*Faces, error) {
	f := &Faces{cache: make(map[int]font.Face)}
	if !res.Found {
		return f, nil
	}

	data, err := os.ReadFile(res.Path)
	if err != nil {
		return f, fmt.Errorf("failed to read font %s: %w", res.Path, err)
	}
	parsed, err := opentype.Parse(data)
	if err != nil {
		return f, fmt.Errorf("failed to parse font %s: %w", res.Path, err)
	}
	f.font = parsed
	return f, nil
}

// Bitmap reports whether the faces fall back to the built-in bitmap font.
func (f *Faces) Bitmap() bool {
	return f.font == nil
}

// Face returns a face for the given size in pixels.
func (f *Faces) Face(size int) font.Face {
	if f.font == nil || size <= 0 {
		return basicfont.Face7x13
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if face, ok := f.cache[size]; ok {
		return face
	}
	face, err := opentype.NewFace(f.font, &opentype.FaceOptions{
		Size:    float64(size),
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return basicfont.Face7x13
	}
	f.cache[size] = face
	return face
}

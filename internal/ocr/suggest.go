package ocr

import (
	"context"
	"fmt"
	"image"
	"regexp"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/ironsheep/pdf-redact-mcp/internal/imaging"
	"github.com/ironsheep/pdf-redact-mcp/internal/redaction"
)

// DefaultLanguage is used when Options.Language is empty.
const DefaultLanguage = "eng"

// Bounds represents a rectangular bounding box in pixel coordinates.
type Bounds struct {
	X1 int `json:"x1"` // Left edge
	Y1 int `json:"y1"` // Top edge
	X2 int `json:"x2"` // Right edge
	Y2 int `json:"y2"` // Bottom edge
}

// Word is a single recognized word with its location and OCR confidence.
type Word struct {
	Text string `json:"text"`

	// Confidence is the OCR confidence score (0.0 to 1.0).
	Confidence float64 `json:"confidence"`

	Bounds Bounds `json:"bounds"`
}

// Suggestion is a candidate redaction region in display space.
type Suggestion struct {
	Text       string         `json:"text"`
	Confidence float64        `json:"confidence"`
	Rect       redaction.Rect `json:"rect"`

	// Pattern is the expression that matched, empty when no patterns were given.
	Pattern string `json:"pattern,omitempty"`
}

// Options controls which recognized words become suggestions.
type Options struct {
	Language      string
	MinConfidence float64

	// Patterns restrict suggestions to matching words. With no patterns every
	// word above MinConfidence is suggested.
	Patterns []*regexp.Regexp

	// Padding grows each suggested rectangle on every side, in pixels.
	Padding float64
}

// CompilePatterns compiles regular expressions for Options.Patterns.
func CompilePatterns(patterns []string) ([]*regexp.Regexp, error) {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		if strings.TrimSpace(p) == "" {
			continue
		}
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", p, err)
		}
		out = append(out, re)
	}
	return out, nil
}

// Recognize runs word-level OCR over img.
//
// Empty words are filtered out. Bounds are in the pixel space of img.
func Recognize(ctx context.Context, img image.Image, language string) ([]Word, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if language == "" {
		language = DefaultLanguage
	}

	data, err := imaging.EncodePNG(img)
	if err != nil {
		return nil, err
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(language); err != nil {
		return nil, fmt.Errorf("failed to set language: %w", err)
	}
	if err := client.SetImageFromBytes(data); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, fmt.Errorf("OCR failed: %w", err)
	}

	words := make([]Word, 0, len(boxes))
	for _, box := range boxes {
		text := strings.TrimSpace(box.Word)
		if text == "" {
			continue
		}
		words = append(words, Word{
			Text:       text,
			Confidence: float64(box.Confidence) / 100.0,
			Bounds: Bounds{
				X1: box.Box.Min.X,
				Y1: box.Box.Min.Y,
				X2: box.Box.Max.X,
				Y2: box.Box.Max.Y,
			},
		})
	}
	return words, nil
}

// Suggest recognizes words in the display image and returns those worth
// redacting as display-space rectangles, in reading order.
func Suggest(ctx context.Context, display image.Image, opts Options) ([]Suggestion, error) {
	words, err := Recognize(ctx, display, opts.Language)
	if err != nil {
		return nil, err
	}
	return toSuggestions(words, opts, display.Bounds()), nil
}

// toSuggestions applies the confidence and pattern filters and converts word
// bounds into rectangles clipped to area.
func toSuggestions(words []Word, opts Options, area image.Rectangle) []Suggestion {
	out := make([]Suggestion, 0)
	for _, w := range words {
		if w.Confidence < opts.MinConfidence {
			continue
		}

		pattern := ""
		if len(opts.Patterns) > 0 {
			re := firstMatch(opts.Patterns, w.Text)
			if re == nil {
				continue
			}
			pattern = re.String()
		}

		rect := padRect(w.Bounds, opts.Padding, area)
		if rect.IsDegenerate() {
			continue
		}
		out = append(out, Suggestion{
			Text:       w.Text,
			Confidence: w.Confidence,
			Rect:       rect,
			Pattern:    pattern,
		})
	}
	return out
}

func firstMatch(patterns []*regexp.Regexp, text string) *regexp.Regexp {
	for _, re := range patterns {
		if re.MatchString(text) {
			return re
		}
	}
	return nil
}

func padRect(b Bounds, pad float64, area image.Rectangle) redaction.Rect {
	left := max(float64(b.X1)-pad, float64(area.Min.X))
	top := max(float64(b.Y1)-pad, float64(area.Min.Y))
	right := min(float64(b.X2)+pad, float64(area.Max.X))
	bottom := min(float64(b.Y2)+pad, float64(area.Max.Y))
	return redaction.Rect{Left: left, Top: top, Width: right - left, Height: bottom - top}
}

package document

import (
	"bytes"
	"fmt"
	"image/color"
	"unicode"

	"github.com/unidoc/unipdf/v3/creator"
	"github.com/unidoc/unipdf/v3/model"

	"github.com/ironsheep/pdf-redact-mcp/internal/fonts"
	"github.com/ironsheep/pdf-redact-mcp/internal/redaction"
)

// Redaction is one region to remove, in document space, with the label size
// chosen for it.
type Redaction struct {
	Rect     redaction.Rect
	FontSize int
}

// LabelOptions controls how removed regions are filled and labelled.
type LabelOptions struct {
	Text         string
	FallbackText string
	Font         fonts.Resolution
	Fill         color.RGBA
	Color        color.RGBA
}

// Result is the redacted document plus anything that went wrong along the way
// without aborting it.
type Result struct {
	Data          []byte
	Removed       int
	Warnings      []string
	FallbackLabel bool
}

// Apply writes a copy of the document with every redaction removed, filled and
// labelled. The receiver is left untouched, so Apply may be called again with a
// different set of regions.
//
// Failing to remove or fill a region aborts the whole operation. A label that
// cannot be placed only adds a warning to the result.
func (d *Document) Apply(redactions []Redaction, opts LabelOptions) (*Result, error) {
	if err := d.ValidateSinglePage(); err != nil {
		return nil, err
	}

	// Work on a fresh parse so earlier calls leave no trace.
	fresh, err := Open(d.data)
	if err != nil {
		return nil, err
	}
	page := fresh.page

	regions := make([]box, 0, len(redactions))
	for _, r := range redactions {
		if r.Rect.IsDegenerate() {
			continue
		}
		regions = append(regions, fresh.frame.userBox(r.Rect))
	}

	result := &Result{}
	result.Removed, err = removeContent(page, regions)
	if err != nil {
		return nil, err
	}

	c := creator.New()
	if err := c.AddPage(page); err != nil {
		return nil, fmt.Errorf("failed to add page: %w", err)
	}

	font, text, warn := labelFont(opts)
	if warn != "" {
		result.Warnings = append(result.Warnings, warn)
	}
	result.FallbackLabel = text != opts.Text

	fill := creator.ColorRGBFrom8bit(opts.Fill.R, opts.Fill.G, opts.Fill.B)
	ink := creator.ColorRGBFrom8bit(opts.Color.R, opts.Color.G, opts.Color.B)

	for i, r := range redactions {
		rect := r.Rect
		if rect.IsDegenerate() {
			continue
		}

		shape := c.NewRectangle(rect.Left, rect.Top, rect.Width, rect.Height)
		shape.SetFillColor(fill)
		shape.SetBorderWidth(0)
		if err := c.Draw(shape); err != nil {
			return nil, fmt.Errorf("failed to fill region %d: %w", i, err)
		}

		if err := drawLabel(c, rect, text, font, float64(r.FontSize), ink); err != nil {
			result.Warnings = append(result.Warnings, fmt.Sprintf("label not inserted for region %d: %v", i, err))
		}
	}

	var buf bytes.Buffer
	if err := c.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write PDF: %w", err)
	}
	result.Data = buf.Bytes()
	return result, nil
}

// labelFont picks the font and text for labels. Without a usable TrueType
// file the label falls back to Helvetica and the ASCII text, since the
// standard fonts cannot encode the full label.
func labelFont(opts LabelOptions) (*model.PdfFont, string, string) {
	var warn string
	if opts.Font.Found {
		f, err := model.NewCompositePdfFontFromTTFFile(opts.Font.Path)
		if err == nil {
			return f, opts.Text, ""
		}
		warn = fmt.Sprintf("failed to load font %s: %v", opts.Font.Path, err)
	}

	f, _ := model.NewStandard14Font(model.HelveticaName)
	return f, fallbackText(opts), warn
}

func fallbackText(opts LabelOptions) string {
	if opts.FallbackText != "" {
		return opts.FallbackText
	}
	return asciiOnly(opts.Text)
}

func asciiOnly(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r < unicode.MaxASCII {
			out = append(out, r)
		}
	}
	return string(out)
}

func drawLabel(c *creator.Creator, rect redaction.Rect, text string, font *model.PdfFont, size float64, ink creator.Color) error {
	if font == nil {
		return fmt.Errorf("no font available")
	}
	if size <= 0 || text == "" {
		return nil
	}

	p := c.NewParagraph(text)
	p.SetFont(font)
	p.SetFontSize(size)
	p.SetColor(ink)
	p.SetEnableWrap(true)
	p.SetWidth(rect.Width)
	p.SetTextAlignment(creator.TextAlignmentCenter)

	y := rect.Top + (rect.Height-p.Height())/2
	if y < rect.Top {
		y = rect.Top
	}
	p.SetPos(rect.Left, y)
	return c.Draw(p)
}

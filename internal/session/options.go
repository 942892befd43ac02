package session

import (
	"image"
	"log"

	"github.com/ironsheep/pdf-redact-mcp/internal/config"
	"github.com/ironsheep/pdf-redact-mcp/internal/document"
	"github.com/ironsheep/pdf-redact-mcp/internal/fonts"
	"github.com/ironsheep/pdf-redact-mcp/internal/imaging"
	"github.com/ironsheep/pdf-redact-mcp/internal/ocr"
	"github.com/ironsheep/pdf-redact-mcp/internal/redaction"
)

// Document is the part of a PDF backend a session drives.
// *document.Document satisfies it.
type Document interface {
	ValidateSinglePage() error
	PageSize() (float64, float64)
	Rasterize(scale float64) (image.Image, error)
	Apply(redactions []document.Redaction, opts document.LabelOptions) (*document.Result, error)
}

// Opener parses uploaded bytes into a Document.
type Opener func(data []byte) (Document, error)

// OpenPDF is the default Opener.
func OpenPDF(data []byte) (Document, error) {
	return document.Open(data)
}

// Options configures a Session.
type Options struct {
	DisplayWidth   int
	RenderScale    float64
	MaxUploadBytes int64

	Canvas  imaging.CanvasStyle
	Preview imaging.PreviewStyle
	Faces   *fonts.Faces

	Output       document.LabelOptions
	OutputSizing redaction.LabelSizing

	OCR ocr.Options

	// Store caches page rasters. Nil means an in-memory cache.
	Store imaging.RasterStore

	// Open parses uploads. Nil means OpenPDF.
	Open Opener
}

// DefaultOptions returns options built from config.Default.
func DefaultOptions() Options {
	opts, _ := OptionsFromConfig(config.Default())
	return opts
}

// OptionsFromConfig builds session options from cfg, checking the font
// candidate lists on the way. Invalid colours fall back to the defaults.
func OptionsFromConfig(cfg *config.Config) (Options, error) {
	preview := imaging.DefaultPreviewStyle()
	preview.Fill = imaging.ParseColorOr(cfg.Colors.PreviewFill, preview.Fill)
	preview.Outline = imaging.ParseColorOr(cfg.Colors.PreviewOutline, preview.Outline)
	preview.Label = imaging.ParseColorOr(cfg.Colors.Label, preview.Label)
	preview.LabelText = cfg.Label.Text
	preview.FallbackText = cfg.Label.FallbackText
	preview.MinLabelHeight = cfg.Label.MinPreviewHeight
	preview.Sizing = cfg.Label.Preview

	canvas := imaging.DefaultCanvasStyle()
	canvas.Stroke = imaging.ParseColorOr(cfg.Colors.Selection, canvas.Stroke)
	canvas.Opacity = cfg.Colors.SelectionOpacity

	patterns, err := ocr.CompilePatterns(cfg.OCR.Patterns)
	if err != nil {
		return Options{}, err
	}

	previewFont := fonts.Resolve(fonts.PreviewCandidates)
	faces, err := fonts.LoadFaces(previewFont)
	if err != nil {
		log.Printf("Preview font %s unusable, using bitmap font: %v", previewFont.Path, err)
	}
	outputFont := fonts.Resolve(fonts.OutputCandidates)
	if !outputFont.Found {
		log.Printf("No output font found, labels will use %q", cfg.Label.FallbackText)
	}

	return Options{
		DisplayWidth:   cfg.DisplayWidth,
		RenderScale:    cfg.RenderScale,
		MaxUploadBytes: cfg.MaxUploadBytes,
		Canvas:         canvas,
		Preview:        preview,
		Faces:          faces,
		Output: document.LabelOptions{
			Text:         cfg.Label.Text,
			FallbackText: cfg.Label.FallbackText,
			Font:         outputFont,
			Fill:         imaging.ParseColorOr(cfg.Colors.RedactionFill, preview.Fill),
			Color:        imaging.ParseColorOr(cfg.Colors.Label, preview.Label),
		},
		OutputSizing: cfg.Label.Output,
		OCR: ocr.Options{
			Language:      cfg.OCR.Language,
			MinConfidence: cfg.OCR.MinConfidence,
			Patterns:      patterns,
			Padding:       cfg.OCR.Padding,
		},
	}, nil
}

// Package session holds the state of one redaction job: the uploaded
// document, its display image, the regions drawn on it and the prepared
// output.
//
// A Session moves through Unloaded, Loaded, Editing and Prepared. Download and
// Cancel both return it to Unloaded. Operations called in the wrong state fail
// with ErrInvalidState and leave the session unchanged.
package session

import (
	"context"
	"fmt"
	"image"
	"log"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ironsheep/pdf-redact-mcp/internal/document"
	"github.com/ironsheep/pdf-redact-mcp/internal/imaging"
	"github.com/ironsheep/pdf-redact-mcp/internal/ocr"
	"github.com/ironsheep/pdf-redact-mcp/internal/redaction"
)

// OutputPrefix is prepended to the uploaded filename for the download.
const OutputPrefix = "redacted_"

// Session is safe for concurrent use.
type Session struct {
	mu   sync.Mutex
	opts Options

	state    State
	filename string
	doc      Document

	pageWidth, pageHeight float64
	scale                 redaction.ScaleFactors
	display               *image.NRGBA

	regions []redaction.Rect
	output  *document.Result
}

// New creates an empty session.
func New(opts Options) *Session {
	if opts.Store == nil {
		opts.Store = imaging.NewRasterCache()
	}
	if opts.Open == nil {
		opts.Open = OpenPDF
	}
	return &Session{opts: opts}
}

// Status is a snapshot of the session for reporting.
type Status struct {
	State         string                 `json:"state"`
	Filename      string                 `json:"filename,omitempty"`
	PageWidth     float64                `json:"page_width,omitempty"`
	PageHeight    float64                `json:"page_height,omitempty"`
	DisplayWidth  int                    `json:"display_width,omitempty"`
	DisplayHeight int                    `json:"display_height,omitempty"`
	Scale         redaction.ScaleFactors `json:"scale"`
	Regions       []redaction.Rect       `json:"regions"`
	OutputBytes   int                    `json:"output_bytes,omitempty"`
	Warnings      []string               `json:"warnings,omitempty"`
}

// Status returns a snapshot of the current state.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Status{
		State:      s.state.String(),
		Filename:   s.filename,
		PageWidth:  s.pageWidth,
		PageHeight: s.pageHeight,
		Scale:      s.scale,
		Regions:    append([]redaction.Rect{}, s.regions...),
	}
	if s.display != nil {
		st.DisplayWidth = s.display.Bounds().Dx()
		st.DisplayHeight = s.display.Bounds().Dy()
	}
	if s.output != nil {
		st.OutputBytes = len(s.output.Data)
		st.Warnings = s.output.Warnings
	}
	return st
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Upload opens a document, checks that it has exactly one page and renders
// its display image.
//
// On any error the session stays Unloaded and retains nothing.
func (s *Session) Upload(ctx context.Context, name string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.require("upload", Unloaded); err != nil {
		return err
	}
	if len(data) == 0 {
		return ErrEmptyUpload
	}
	if s.opts.MaxUploadBytes > 0 && int64(len(data)) > s.opts.MaxUploadBytes {
		return fmt.Errorf("%d bytes, limit %d: %w", len(data), s.opts.MaxUploadBytes, ErrTooLarge)
	}

	doc, err := s.opts.Open(data)
	if err != nil {
		return err
	}
	if err := doc.ValidateSinglePage(); err != nil {
		return err
	}

	pw, ph := doc.PageSize()
	dw, dh, err := redaction.DisplaySize(pw, ph, s.opts.DisplayWidth)
	if err != nil {
		return err
	}
	scale, err := redaction.ComputeScaleFactors(pw, ph, float64(dw), float64(dh))
	if err != nil {
		return err
	}

	raster, err := s.rasterize(ctx, doc, data)
	if err != nil {
		return err
	}
	display, err := imaging.FitToDisplay(raster, dw, dh)
	if err != nil {
		return err
	}

	s.filename = cleanName(name)
	s.doc = doc
	s.pageWidth, s.pageHeight = pw, ph
	s.scale = scale
	s.display = display
	s.regions = nil
	s.output = nil
	s.state = Loaded

	log.Printf("Loaded %s: page %.1fx%.1f pt, display %dx%d px", s.filename, pw, ph, dw, dh)
	return nil
}

// rasterize renders the page through the raster store. Store failures are
// logged and otherwise ignored.
func (s *Session) rasterize(ctx context.Context, doc Document, data []byte) (image.Image, error) {
	key := imaging.RasterKey(data, s.opts.RenderScale)

	img, ok, err := s.opts.Store.Get(ctx, key)
	if err != nil {
		log.Printf("Raster cache read failed: %v", err)
	}
	if ok {
		return img, nil
	}

	img, err = doc.Rasterize(s.opts.RenderScale)
	if err != nil {
		return nil, err
	}
	if err := s.opts.Store.Put(ctx, key, img); err != nil {
		log.Printf("Raster cache write failed: %v", err)
	}
	return img, nil
}

func cleanName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		return "document.pdf"
	}
	return name
}

// SetRegions replaces all regions. Order is preserved and overlapping or
// duplicate rectangles are kept.
func (s *Session) SetRegions(rects []redaction.Rect) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.require("set regions", Loaded, Editing, Prepared); err != nil {
		return err
	}
	for i, r := range rects {
		if err := checkRegion(r); err != nil {
			return fmt.Errorf("region %d: %w", i, err)
		}
	}
	s.regions = append([]redaction.Rect{}, rects...)
	s.edited()
	return nil
}

// AddRegion appends one region and returns its index.
func (s *Session) AddRegion(r redaction.Rect) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.require("add region", Loaded, Editing, Prepared); err != nil {
		return 0, err
	}
	if err := checkRegion(r); err != nil {
		return 0, err
	}
	s.regions = append(s.regions, r)
	s.edited()
	return len(s.regions) - 1, nil
}

// AddRegions appends rects in one step and returns the index of the first.
// Nothing is added unless every rect is valid.
func (s *Session) AddRegions(rects []redaction.Rect) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.require("add regions", Loaded, Editing, Prepared); err != nil {
		return 0, err
	}
	for i, r := range rects {
		if err := checkRegion(r); err != nil {
			return 0, fmt.Errorf("region %d: %w", i, err)
		}
	}
	first := len(s.regions)
	if len(rects) == 0 {
		return first, nil
	}
	s.regions = append(s.regions, rects...)
	s.edited()
	return first, nil
}

// RemoveRegion deletes the region at index i.
func (s *Session) RemoveRegion(i int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.require("remove region", Loaded, Editing, Prepared); err != nil {
		return err
	}
	if i < 0 || i >= len(s.regions) {
		return fmt.Errorf("index %d of %d regions: %w", i, len(s.regions), ErrInvalidRegion)
	}
	s.regions = append(s.regions[:i], s.regions[i+1:]...)
	s.edited()
	return nil
}

// ClearRegions removes every region.
func (s *Session) ClearRegions() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.require("clear regions", Loaded, Editing, Prepared); err != nil {
		return err
	}
	s.regions = nil
	s.edited()
	return nil
}

// edited moves the session back to Editing and drops any prepared output.
func (s *Session) edited() {
	s.state = Editing
	s.output = nil
}

func checkRegion(r redaction.Rect) error {
	if r.Width < 0 || r.Height < 0 {
		return fmt.Errorf("negative size %gx%g: %w", r.Width, r.Height, ErrInvalidRegion)
	}
	return nil
}

// Regions returns a copy of the drawn regions in display space.
func (s *Session) Regions() []redaction.Rect {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]redaction.Rect{}, s.regions...)
}

// Canvas renders the display image with every region shown as a selection.
func (s *Session) Canvas() (image.Image, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.require("canvas", Loaded, Editing, Prepared); err != nil {
		return nil, err
	}
	return imaging.RenderCanvas(s.display, s.regions, s.opts.Canvas), nil
}

// Preview renders the display image as it will look after redaction.
func (s *Session) Preview() (image.Image, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.require("preview", Loaded, Editing, Prepared); err != nil {
		return nil, err
	}
	return imaging.RenderPreview(s.display, redaction.Visible(s.regions), s.opts.Preview, s.opts.Faces), nil
}

// MappedRegion pairs a display rectangle with its document-space mapping.
type MappedRegion struct {
	Index    int            `json:"index"`
	Display  redaction.Rect `json:"display"`
	Document redaction.Rect `json:"document"`
	FontSize int            `json:"font_size"`
}

// MappedRegions returns every visible region mapped into document space with
// its output label size. Zero-area regions are skipped.
func (s *Session) MappedRegions() ([]MappedRegion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.require("map regions", Loaded, Editing, Prepared); err != nil {
		return nil, err
	}
	return s.mapped(), nil
}

func (s *Session) mapped() []MappedRegion {
	out := make([]MappedRegion, 0, len(s.regions))
	for i, r := range s.regions {
		if r.IsDegenerate() {
			continue
		}
		doc := redaction.MapRectangle(r, s.scale)
		out = append(out, MappedRegion{
			Index:    i,
			Display:  r,
			Document: doc,
			FontSize: s.opts.OutputSizing.FontSize(doc.Height),
		})
	}
	return out
}

// PrepareResult summarizes a successful Prepare.
type PrepareResult struct {
	Regions       int      `json:"regions"`
	Removed       int      `json:"removed_operations"`
	OutputBytes   int      `json:"output_bytes"`
	FallbackLabel bool     `json:"fallback_label"`
	Warnings      []string `json:"warnings,omitempty"`
}

// Prepare maps every visible region into document space and produces the
// redacted document. With no visible region it returns ErrNoRegions and the
// state is unchanged. Label failures are reported as warnings.
func (s *Session) Prepare(ctx context.Context) (*PrepareResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.require("prepare", Loaded, Editing, Prepared); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mapped := s.mapped()
	if len(mapped) == 0 {
		return nil, ErrNoRegions
	}

	reds := make([]document.Redaction, len(mapped))
	for i, m := range mapped {
		reds[i] = document.Redaction{Rect: m.Document, FontSize: m.FontSize}
	}

	result, err := s.doc.Apply(reds, s.opts.Output)
	if err != nil {
		return nil, fmt.Errorf("failed to apply redactions: %w", err)
	}
	for _, w := range result.Warnings {
		log.Printf("Warning: %s", w)
	}

	s.output = result
	s.state = Prepared

	return &PrepareResult{
		Regions:       len(reds),
		Removed:       result.Removed,
		OutputBytes:   len(result.Data),
		FallbackLabel: result.FallbackLabel,
		Warnings:      result.Warnings,
	}, nil
}

// Download returns the output filename and bytes, then clears the session.
func (s *Session) Download() (string, []byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.require("download", Prepared); err != nil {
		return "", nil, err
	}
	name := OutputPrefix + s.filename
	data := s.output.Data
	s.reset()
	return name, data, nil
}

// Cancel clears the session from any state.
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
}

func (s *Session) reset() {
	s.state = Unloaded
	s.filename = ""
	s.doc = nil
	s.pageWidth, s.pageHeight = 0, 0
	s.scale = redaction.ScaleFactors{}
	s.display = nil
	s.regions = nil
	s.output = nil
}

// Suggest runs OCR over the display image. Empty language and patterns fall
// back to the configured ones.
func (s *Session) Suggest(ctx context.Context, language string, patterns []string) ([]ocr.Suggestion, error) {
	s.mu.Lock()
	if err := s.require("suggest", Loaded, Editing, Prepared); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	display := s.display
	opts := s.opts.OCR
	s.mu.Unlock()

	if language != "" {
		opts.Language = language
	}
	if len(patterns) > 0 {
		compiled, err := ocr.CompilePatterns(patterns)
		if err != nil {
			return nil, err
		}
		opts.Patterns = compiled
	}
	return ocr.Suggest(ctx, display, opts)
}

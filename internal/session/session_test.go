package session

import (
	"context"
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/pdf-redact-mcp/internal/config"
	"github.com/ironsheep/pdf-redact-mcp/internal/document"
	"github.com/ironsheep/pdf-redact-mcp/internal/imaging"
	"github.com/ironsheep/pdf-redact-mcp/internal/redaction"
)

type fakeDoc struct {
	pages      int
	w, h       float64
	rasterized int
	applied    [][]document.Redaction
	result     *document.Result
	applyErr   error
}

func (f *fakeDoc) ValidateSinglePage() error {
	if f.pages != 1 {
		return &document.PageCountError{Count: f.pages}
	}
	return nil
}

func (f *fakeDoc) PageSize() (float64, float64) { return f.w, f.h }

func (f *fakeDoc) Rasterize(scale float64) (image.Image, error) {
	f.rasterized++
	img := image.NewNRGBA(image.Rect(0, 0, int(f.w*scale), int(f.h*scale)))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	return img, nil
}

func (f *fakeDoc) Apply(reds []document.Redaction, _ document.LabelOptions) (*document.Result, error) {
	f.applied = append(f.applied, reds)
	if f.applyErr != nil {
		return nil, f.applyErr
	}
	if f.result != nil {
		return f.result, nil
	}
	return &document.Result{Data: []byte("%PDF-redacted"), Removed: len(reds)}, nil
}

func newTestSession(doc *fakeDoc) *Session {
	opts := DefaultOptions()
	opts.Open = func([]byte) (Document, error) { return doc, nil }
	return New(opts)
}

func loaded(t *testing.T) (*Session, *fakeDoc) {
	t.Helper()
	doc := &fakeDoc{pages: 1, w: 600, h: 800}
	s := newTestSession(doc)
	require.NoError(t, s.Upload(context.Background(), "invoice.pdf", []byte("%PDF-1.4")))
	return s, doc
}

func TestUpload_SinglePage(t *testing.T) {
	s, doc := loaded(t)

	assert.Equal(t, Loaded, s.State())
	st := s.Status()
	assert.Equal(t, "invoice.pdf", st.Filename)
	assert.Equal(t, 700, st.DisplayWidth)
	assert.Equal(t, 933, st.DisplayHeight)
	assert.InDelta(t, 0.857, st.Scale.ScaleX, 0.001)
	assert.Equal(t, 1, doc.rasterized)
}

func TestUpload_MultiPageRejected(t *testing.T) {
	s := newTestSession(&fakeDoc{pages: 2, w: 600, h: 800})

	err := s.Upload(context.Background(), "two.pdf", []byte("%PDF-1.4"))
	var pce *document.PageCountError
	require.True(t, errors.As(err, &pce))
	assert.Equal(t, 2, pce.Count)
	assert.Contains(t, err.Error(), "2 pages")

	assert.Equal(t, Unloaded, s.State())
	assert.Empty(t, s.Status().Filename)
	_, err = s.Canvas()
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestUpload_Limits(t *testing.T) {
	doc := &fakeDoc{pages: 1, w: 600, h: 800}
	s := newTestSession(doc)
	s.opts.MaxUploadBytes = 4

	assert.ErrorIs(t, s.Upload(context.Background(), "a.pdf", nil), ErrEmptyUpload)
	assert.ErrorIs(t, s.Upload(context.Background(), "a.pdf", []byte("too long")), ErrTooLarge)
	assert.Equal(t, Unloaded, s.State())
}

func TestUpload_OpenError(t *testing.T) {
	opts := DefaultOptions()
	opts.Open = func([]byte) (Document, error) { return nil, errors.New("failed to read PDF: bad header") }
	s := New(opts)

	assert.Error(t, s.Upload(context.Background(), "bad.pdf", []byte("x")))
	assert.Equal(t, Unloaded, s.State())
}

func TestUpload_TwiceRequiresCancel(t *testing.T) {
	s, _ := loaded(t)
	err := s.Upload(context.Background(), "other.pdf", []byte("%PDF"))
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.Equal(t, "invoice.pdf", s.Status().Filename)
}

func TestUpload_UsesRasterStore(t *testing.T) {
	doc := &fakeDoc{pages: 1, w: 600, h: 800}
	store := imaging.NewRasterCache()
	opts := DefaultOptions()
	opts.Store = store
	opts.Open = func([]byte) (Document, error) { return doc, nil }
	s := New(opts)

	data := []byte("%PDF-same-bytes")
	require.NoError(t, s.Upload(context.Background(), "a.pdf", data))
	s.Cancel()
	require.NoError(t, s.Upload(context.Background(), "b.pdf", data))

	assert.Equal(t, 1, doc.rasterized, "second upload should hit the cache")
	assert.Equal(t, 1, store.Len())
}

func TestCleanName(t *testing.T) {
	assert.Equal(t, "file.pdf", cleanName("/tmp/uploads/file.pdf"))
	assert.Equal(t, "file.pdf", cleanName(`C:\Users\me\file.pdf`))
	assert.Equal(t, "document.pdf", cleanName(""))
}

func TestRegions_Editing(t *testing.T) {
	s, _ := loaded(t)

	i, err := s.AddRegion(redaction.Rect{Left: 10, Top: 10, Width: 50, Height: 20})
	require.NoError(t, err)
	assert.Equal(t, 0, i)
	assert.Equal(t, Editing, s.State())

	require.NoError(t, s.SetRegions([]redaction.Rect{
		{Left: 1, Width: 5, Height: 5},
		{Left: 2, Width: 5, Height: 5},
		{Left: 1, Width: 5, Height: 5},
	}))
	require.NoError(t, s.RemoveRegion(1))
	got := s.Regions()
	require.Len(t, got, 2)
	assert.Equal(t, 1.0, got[0].Left)
	assert.Equal(t, 1.0, got[1].Left, "duplicates are kept")

	assert.ErrorIs(t, s.RemoveRegion(5), ErrInvalidRegion)
	_, err = s.AddRegion(redaction.Rect{Width: -1, Height: 5})
	assert.ErrorIs(t, err, ErrInvalidRegion)

	require.NoError(t, s.ClearRegions())
	assert.Empty(t, s.Regions())
	assert.Equal(t, Editing, s.State())
}

func TestAddRegions_AllOrNothing(t *testing.T) {
	s, _ := loaded(t)
	_, err := s.AddRegion(redaction.Rect{Left: 1, Width: 5, Height: 5})
	require.NoError(t, err)

	_, err = s.AddRegions([]redaction.Rect{
		{Left: 10, Width: 5, Height: 5},
		{Left: 20, Width: -5, Height: 5},
		{Left: 30, Width: 5, Height: 5},
	})
	assert.ErrorIs(t, err, ErrInvalidRegion)
	assert.Len(t, s.Regions(), 1, "a bad rect leaves the list unchanged")

	first, err := s.AddRegions([]redaction.Rect{
		{Left: 10, Width: 5, Height: 5},
		{Left: 30, Width: 5, Height: 5},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, first)
	got := s.Regions()
	require.Len(t, got, 3)
	assert.Equal(t, 30.0, got[2].Left)
}

func TestOptionsFromConfig_OCRPadding(t *testing.T) {
	cfg := config.Default()
	cfg.OCR.Padding = 6
	opts, err := OptionsFromConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, 6.0, opts.OCR.Padding)

	assert.Equal(t, 2.0, DefaultOptions().OCR.Padding)
}

func TestMappedRegions(t *testing.T) {
	s, _ := loaded(t)
	require.NoError(t, s.SetRegions([]redaction.Rect{
		{Left: 100, Top: 100, Width: 50, Height: 30},
		{Left: 5, Top: 5, Width: 0, Height: 10},
	}))

	mapped, err := s.MappedRegions()
	require.NoError(t, err)
	require.Len(t, mapped, 1, "zero-area regions are skipped")

	m := mapped[0]
	assert.Equal(t, 0, m.Index)
	assert.InDelta(t, 85.7, m.Document.Left, 0.1)
	assert.InDelta(t, 85.7, m.Document.Top, 0.1)
	assert.InDelta(t, 42.9, m.Document.Width, 0.1)
	assert.InDelta(t, 25.7, m.Document.Height, 0.1)
	assert.Equal(t, 10, m.FontSize)
}

func TestPrepare_NoRegions(t *testing.T) {
	s, doc := loaded(t)

	_, err := s.Prepare(context.Background())
	assert.ErrorIs(t, err, ErrNoRegions)
	assert.Equal(t, Loaded, s.State())

	require.NoError(t, s.SetRegions([]redaction.Rect{{Width: 0, Height: 10}}))
	_, err = s.Prepare(context.Background())
	assert.ErrorIs(t, err, ErrNoRegions)
	assert.Equal(t, Editing, s.State())
	assert.Empty(t, doc.applied)
}

func TestPrepareAndDownload(t *testing.T) {
	s, doc := loaded(t)
	require.NoError(t, s.SetRegions([]redaction.Rect{
		{Left: 100, Top: 100, Width: 50, Height: 30},
		{Left: 300, Top: 500, Width: 200, Height: 10},
	}))

	res, err := s.Prepare(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, res.Regions)
	assert.Equal(t, Prepared, s.State())

	require.Len(t, doc.applied, 1)
	reds := doc.applied[0]
	require.Len(t, reds, 2)
	assert.InDelta(t, 85.7, reds[0].Rect.Left, 0.1)
	assert.Equal(t, 10, reds[0].FontSize)
	assert.Equal(t, 5, reds[1].FontSize)

	name, data, err := s.Download()
	require.NoError(t, err)
	assert.Equal(t, "redacted_invoice.pdf", name)
	assert.Equal(t, []byte("%PDF-redacted"), data)

	assert.Equal(t, Unloaded, s.State())
	assert.Empty(t, s.Regions())
	_, _, err = s.Download()
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestPrepare_Warnings(t *testing.T) {
	s, doc := loaded(t)
	doc.result = &document.Result{
		Data:     []byte("%PDF"),
		Warnings: []string{"label not inserted for region 0: font error"},
	}
	_, err := s.AddRegion(redaction.Rect{Left: 1, Top: 1, Width: 10, Height: 10})
	require.NoError(t, err)

	res, err := s.Prepare(context.Background())
	require.NoError(t, err)
	assert.Len(t, res.Warnings, 1)
	assert.Equal(t, res.Warnings, s.Status().Warnings)
}

func TestPrepare_ApplyError(t *testing.T) {
	s, doc := loaded(t)
	doc.applyErr = errors.New("failed to fill region 0")
	_, err := s.AddRegion(redaction.Rect{Left: 1, Top: 1, Width: 10, Height: 10})
	require.NoError(t, err)

	_, err = s.Prepare(context.Background())
	assert.Error(t, err)
	assert.Equal(t, Editing, s.State())
}

func TestEditAfterPrepare_InvalidatesOutput(t *testing.T) {
	s, _ := loaded(t)
	_, err := s.AddRegion(redaction.Rect{Left: 1, Top: 1, Width: 10, Height: 10})
	require.NoError(t, err)
	_, err = s.Prepare(context.Background())
	require.NoError(t, err)

	_, err = s.AddRegion(redaction.Rect{Left: 20, Top: 20, Width: 10, Height: 10})
	require.NoError(t, err)
	assert.Equal(t, Editing, s.State())
	assert.Zero(t, s.Status().OutputBytes)

	_, _, err = s.Download()
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestCancel(t *testing.T) {
	s, _ := loaded(t)
	_, err := s.AddRegion(redaction.Rect{Width: 10, Height: 10})
	require.NoError(t, err)

	s.Cancel()
	assert.Equal(t, Unloaded, s.State())
	assert.Equal(t, Status{State: "unloaded", Regions: []redaction.Rect{}}, s.Status())

	// Cancel from Unloaded is a no-op.
	s.Cancel()
	assert.Equal(t, Unloaded, s.State())
}

func TestCanvasAndPreview(t *testing.T) {
	s, _ := loaded(t)
	_, err := s.AddRegion(redaction.Rect{Left: 100, Top: 100, Width: 200, Height: 40})
	require.NoError(t, err)

	canvas, err := s.Canvas()
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 700, 933), canvas.Bounds())

	preview, err := s.Preview()
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 700, 933), preview.Bounds())

	// Outline pixel uses the configured grey.
	r, g, b, _ := preview.At(100, 100).RGBA()
	assert.Equal(t, color.RGBA{204, 204, 204, 255}, color.RGBA{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8), 255})
}

func TestInvalidStateErrors(t *testing.T) {
	s := newTestSession(&fakeDoc{pages: 1, w: 600, h: 800})

	_, err := s.AddRegion(redaction.Rect{Width: 1, Height: 1})
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.Contains(t, err.Error(), "unloaded")

	_, err = s.Prepare(context.Background())
	assert.ErrorIs(t, err, ErrInvalidState)
	_, err = s.Preview()
	assert.ErrorIs(t, err, ErrInvalidState)
	_, err = s.MappedRegions()
	assert.ErrorIs(t, err, ErrInvalidState)
	_, err = s.Suggest(context.Background(), "", nil)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "unloaded", Unloaded.String())
	assert.Equal(t, "prepared", Prepared.String())
	assert.Equal(t, "state(9)", State(9).String())
}

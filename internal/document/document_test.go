package document

import (
	"errors"
	"image/color"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/unidoc/unipdf/v3/common/license"
	"github.com/unidoc/unipdf/v3/core"

	"github.com/ironsheep/pdf-redact-mcp/internal/document/documenttest"
	"github.com/ironsheep/pdf-redact-mcp/internal/fonts"
	"github.com/ironsheep/pdf-redact-mcp/internal/redaction"
)

var licensed bool

func TestMain(m *testing.M) {
	if key := os.Getenv("UNIDOC_LICENSE_API_KEY"); key != "" {
		licensed = license.SetMeteredKey(key) == nil
	}
	os.Exit(m.Run())
}

// requireLicense skips tests that need the PDF library to write files.
func requireLicense(t *testing.T) {
	t.Helper()
	if !licensed {
		t.Skip("UNIDOC_LICENSE_API_KEY not set")
	}
}

func samplePDF(pages int) []byte {
	return documenttest.BuildPDF(pages, 600, 800,
		documenttest.Text{X: 100, Y: 690, Size: 12, Body: "Secret"},
		documenttest.Text{X: 100, Y: 100, Size: 12, Body: "Public"},
	)
}

func TestOpen_SinglePage(t *testing.T) {
	doc, err := Open(samplePDF(1))
	require.NoError(t, err)
	assert.Equal(t, 1, doc.PageCount())
	assert.NoError(t, doc.ValidateSinglePage())

	w, h := doc.PageSize()
	assert.Equal(t, 600.0, w)
	assert.Equal(t, 800.0, h)
}

func TestOpen_MultiPageRejected(t *testing.T) {
	doc, err := Open(samplePDF(2))
	require.NoError(t, err)

	err = doc.ValidateSinglePage()
	var pce *PageCountError
	require.True(t, errors.As(err, &pce))
	assert.Equal(t, 2, pce.Count)
	assert.Contains(t, err.Error(), "2 pages")
}

func TestOpen_Garbage(t *testing.T) {
	_, err := Open([]byte("not a pdf"))
	assert.Error(t, err)
}

func TestRasterize(t *testing.T) {
	doc, err := Open(samplePDF(1))
	require.NoError(t, err)

	img, err := doc.Rasterize(1.5)
	require.NoError(t, err)
	assert.Equal(t, 900, img.Bounds().Dx())

	_, err = doc.Rasterize(0)
	assert.Error(t, err)
}

func TestApply_RemovesText(t *testing.T) {
	requireLicense(t)

	doc, err := Open(samplePDF(1))
	require.NoError(t, err)

	// "Secret" sits on the baseline at y=690, i.e. 110pt from the top.
	rect := redaction.Rect{Left: 90, Top: 95, Width: 120, Height: 25}
	res, err := doc.Apply([]Redaction{{Rect: rect, FontSize: 10}}, LabelOptions{
		Text:         "KVKK nedeniyle silinmiştir",
		FallbackText: "KVKK redacted",
		Font:         fonts.NotFound,
		Fill:         color.RGBA{255, 255, 255, 255},
		Color:        color.RGBA{255, 0, 0, 255},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Removed)
	assert.True(t, res.FallbackLabel)
	assert.True(t, strings.HasPrefix(string(res.Data), "%PDF"))

	out, err := Open(res.Data)
	require.NoError(t, err)
	cs, err := out.page.GetAllContentStreams()
	require.NoError(t, err)
	assert.NotContains(t, cs, "(Secret)")
	assert.Contains(t, cs, "(Public)")

	// The receiver is untouched.
	cs, err = doc.page.GetAllContentStreams()
	require.NoError(t, err)
	assert.Contains(t, cs, "(Secret)")
}

func TestRasterize_CroppedAndRotated(t *testing.T) {
	tests := []struct {
		name string
		page documenttest.Page
		w, h int
	}{
		{"cropped", documenttest.Page{Width: 700, Height: 900, CropBox: []float64{50, 50, 650, 850}}, 900, 1200},
		{"rotated", documenttest.Page{Width: 600, Height: 800, Rotate: 90}, 1200, 900},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Open(documenttest.Build(1, tt.page))
			require.NoError(t, err)

			pw, ph := doc.PageSize()
			img, err := doc.Rasterize(1.5)
			require.NoError(t, err)
			assert.Equal(t, tt.w, img.Bounds().Dx())
			assert.Equal(t, tt.h, img.Bounds().Dy())
			assert.Equal(t, float64(tt.w)/1.5, pw)
			assert.Equal(t, float64(tt.h)/1.5, ph)
		})
	}
}

func secretAndPublic() []documenttest.Text {
	return []documenttest.Text{
		{X: 100, Y: 690, Size: 12, Body: "Secret"},
		{X: 100, Y: 100, Size: 12, Body: "Public"},
	}
}

func pageContent(t *testing.T, doc *Document) string {
	t.Helper()
	cs, err := doc.page.GetAllContentStreams()
	require.NoError(t, err)
	return cs
}

func TestRemoveContent_Page(t *testing.T) {
	doc, err := Open(samplePDF(1))
	require.NoError(t, err)

	region := doc.frame.userBox(redaction.Rect{Left: 90, Top: 95, Width: 120, Height: 25})
	removed, err := removeContent(doc.page, []box{region})
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	cs := pageContent(t, doc)
	assert.NotContains(t, cs, "(Secret)")
	assert.Contains(t, cs, "(Public)")
}

func TestRemoveContent_CroppedPage(t *testing.T) {
	page := documenttest.Page{Width: 700, Height: 900, CropBox: []float64{50, 50, 650, 850}}
	doc, err := Open(documenttest.Build(1, page, secretAndPublic()...))
	require.NoError(t, err)

	w, h := doc.PageSize()
	assert.Equal(t, 600.0, w)
	assert.Equal(t, 800.0, h)

	// "Secret" sits at user (100, 690): 50pt right of and 160pt below the
	// crop box top-left corner.
	region := doc.frame.userBox(redaction.Rect{Left: 40, Top: 145, Width: 120, Height: 25})
	removed, err := removeContent(doc.page, []box{region})
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	cs := pageContent(t, doc)
	assert.NotContains(t, cs, "(Secret)")
	assert.Contains(t, cs, "(Public)")
}

func TestRemoveContent_RotatedPage(t *testing.T) {
	page := documenttest.Page{Width: 600, Height: 800, Rotate: 90}
	doc, err := Open(documenttest.Build(1, page, secretAndPublic()...))
	require.NoError(t, err)

	w, h := doc.PageSize()
	assert.Equal(t, 800.0, w)
	assert.Equal(t, 600.0, h)

	// Turned clockwise, user (100, 690) is shown at x=690, y=100.
	region := doc.frame.userBox(redaction.Rect{Left: 680, Top: 90, Width: 25, Height: 60})
	removed, err := removeContent(doc.page, []box{region})
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	cs := pageContent(t, doc)
	assert.NotContains(t, cs, "(Secret)")
	assert.Contains(t, cs, "(Public)")
}

func formContent(t *testing.T, doc *Document) string {
	t.Helper()
	stream, _ := doc.page.Resources.GetXObjectByName(core.PdfObjectName(documenttest.FormName))
	require.NotNil(t, stream)
	data, err := core.DecodeStream(stream)
	require.NoError(t, err)
	return string(data)
}

func openFormPage(t *testing.T) *Document {
	t.Helper()
	page := documenttest.Page{Width: 600, Height: 800, Form: true}
	doc, err := Open(documenttest.Build(1, page, secretAndPublic()...))
	require.NoError(t, err)
	return doc
}

func TestRemoveContent_FormText(t *testing.T) {
	doc := openFormPage(t)

	removed, err := removeContent(doc.page, []box{{llx: 90, lly: 680, urx: 300, ury: 720}})
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	assert.Contains(t, pageContent(t, doc), "Do", "the form itself stays on the page")
	form := formContent(t, doc)
	assert.NotContains(t, form, "(Secret)")
	assert.Contains(t, form, "(Public)")
}

func TestRemoveContent_FormUntouchedByEmptyCorner(t *testing.T) {
	doc := openFormPage(t)

	removed, err := removeContent(doc.page, []box{{llx: 0, lly: 0, urx: 50, ury: 50}})
	require.NoError(t, err)
	assert.Equal(t, 0, removed)

	assert.Contains(t, pageContent(t, doc), "Do")
	form := formContent(t, doc)
	assert.Contains(t, form, "(Secret)")
	assert.Contains(t, form, "(Public)")
}

func TestRemoveContent_FormFullyCovered(t *testing.T) {
	doc := openFormPage(t)

	removed, err := removeContent(doc.page, []box{{llx: 0, lly: 0, urx: 600, ury: 800}})
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.NotContains(t, pageContent(t, doc), "Do")
}

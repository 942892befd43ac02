package document

import (
	"fmt"

	"github.com/unidoc/unipdf/v3/model"

	"github.com/ironsheep/pdf-redact-mcp/internal/redaction"
)

// frame is the visible area of a page: the crop box (the media box when there
// is none) turned clockwise by the page rotation. Document-space rectangles use
// its top-left corner as origin, the same frame the creator draws in.
type frame struct {
	box    model.PdfRectangle
	rotate int
}

func pageFrame(page *model.PdfPage) (frame, error) {
	media, err := page.GetMediaBox()
	if err != nil {
		return frame{}, fmt.Errorf("failed to read page box: %w", err)
	}
	box := *media
	box.Normalize()
	if page.CropBox != nil {
		box = *page.CropBox
		box.Normalize()
	}
	if box.Width() <= 0 || box.Height() <= 0 {
		return frame{}, fmt.Errorf("page has an empty box %v", box)
	}

	// A missing or invalid /Rotate means no rotation.
	rotate := 0
	if r, err := page.GetRotate(); err == nil && r%90 == 0 {
		rotate = int((r%360 + 360) % 360)
	}
	return frame{box: box, rotate: rotate}, nil
}

// size returns the displayed width and height.
func (f frame) size() (float64, float64) {
	if f.rotate == 90 || f.rotate == 270 {
		return f.box.Height(), f.box.Width()
	}
	return f.box.Width(), f.box.Height()
}

// toUser converts a top-left frame point into PDF user space.
func (f frame) toUser(x, y float64) (float64, float64) {
	b := f.box
	switch f.rotate {
	case 90:
		return b.Llx + y, b.Lly + x
	case 180:
		return b.Urx - x, b.Lly + y
	case 270:
		return b.Urx - y, b.Ury - x
	default:
		return b.Llx + x, b.Ury - y
	}
}

// userBox converts a document-space rectangle into a user space box.
func (f frame) userBox(r redaction.Rect) box {
	x0, y0 := f.toUser(r.Left, r.Top)
	x1, y1 := f.toUser(r.Right(), r.Bottom())
	return box{llx: min(x0, x1), lly: min(y0, y1), urx: max(x0, x1), ury: max(y0, y1)}
}

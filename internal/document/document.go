package document

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"
	"github.com/unidoc/unipdf/v3/model"
	"github.com/unidoc/unipdf/v3/render"
)

// ErrEncrypted is returned for documents that cannot be opened without a password.
var ErrEncrypted = errors.New("document is password protected")

// PageCountError rejects documents that do not have exactly one page.
type PageCountError struct {
	Count int
}

func (e *PageCountError) Error() string {
	return fmt.Sprintf("only single-page PDFs are supported; the uploaded file has %d pages", e.Count)
}

// Document is an opened PDF. Only the first page is ever used.
type Document struct {
	data      []byte
	pageCount int
	page      *model.PdfPage
	frame     frame
}

// Open parses a PDF from memory. Encrypted documents are opened with an empty
// user password when possible. Open does not enforce the page count; call
// ValidateSinglePage for that.
func Open(data []byte) (*Document, error) {
	reader, err := model.NewPdfReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF: %w", err)
	}

	encrypted, err := reader.IsEncrypted()
	if err != nil {
		return nil, fmt.Errorf("failed to check encryption: %w", err)
	}
	if encrypted {
		ok, err := reader.Decrypt([]byte(""))
		if err != nil {
			return nil, fmt.Errorf("failed to decrypt PDF: %w", err)
		}
		if !ok {
			return nil, ErrEncrypted
		}
	}

	n, err := reader.GetNumPages()
	if err != nil {
		return nil, fmt.Errorf("failed to count pages: %w", err)
	}

	d := &Document{data: data, pageCount: n}
	if n == 0 {
		return d, nil
	}

	page, err := reader.GetPage(1)
	if err != nil {
		return nil, fmt.Errorf("failed to load page 1: %w", err)
	}
	fr, err := pageFrame(page)
	if err != nil {
		return nil, err
	}

	d.page = page
	d.frame = fr
	return d, nil
}

// PageCount returns the number of pages in the document.
func (d *Document) PageCount() int {
	return d.pageCount
}

// ValidateSinglePage returns a *PageCountError unless the document has
// exactly one page.
func (d *Document) ValidateSinglePage() error {
	if d.pageCount != 1 {
		return &PageCountError{Count: d.pageCount}
	}
	return nil
}

// PageSize returns the width and height of the first page in points, as the
// page is displayed: the crop box turned by the page rotation.
func (d *Document) PageSize() (float64, float64) {
	if d.page == nil {
		return 0, 0
	}
	return d.frame.size()
}

// Rasterize renders the first page at the given zoom (1.0 = one pixel per point).
// The image covers the crop box and is turned by the page rotation, so its
// pixels line up with PageSize.
func (d *Document) Rasterize(scale float64) (image.Image, error) {
	if d.page == nil {
		return nil, &PageCountError{Count: d.pageCount}
	}
	if scale <= 0 {
		return nil, fmt.Errorf("invalid render scale %g", scale)
	}

	// Render an unrotated copy clipped to the crop box and turn the raster
	// here; the device offsets cropped pages without regard to rotation.
	fresh, err := Open(d.data)
	if err != nil {
		return nil, err
	}
	page := fresh.page
	crop := d.frame.box
	page.MediaBox = &crop
	page.CropBox = nil
	page.Rotate = new(int64)

	device := render.NewImageDevice()
	device.OutputWidth = int(math.Round(crop.Width() * scale))

	img, err := device.Render(page)
	if err != nil {
		return nil, fmt.Errorf("failed to render page: %w", err)
	}

	// Page rotation is clockwise; imaging rotates counter-clockwise.
	switch d.frame.rotate {
	case 90:
		return imaging.Rotate270(img), nil
	case 180:
		return imaging.Rotate180(img), nil
	case 270:
		return imaging.Rotate90(img), nil
	}
	return img, nil
}

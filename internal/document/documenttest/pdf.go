// Package documenttest builds small PDF files for tests.
package documenttest

import (
	"bytes"
	"fmt"
)

// FormName is the resource name of the form XObject written when Page.Form is set.
const FormName = "Fm1"

// Text is a line drawn on every generated page, positioned in PDF user space.
type Text struct {
	X, Y float64
	Size float64
	Body string
}

// Page describes the generated pages.
type Page struct {
	// Width and Height give the media box [0 0 Width Height].
	Width, Height float64

	// CropBox is written as [llx lly urx ury] when it has four values.
	CropBox []float64

	// Rotate is written as /Rotate when non-zero.
	Rotate int

	// Form wraps the texts in a form XObject drawn with "q /Fm1 Do Q" instead
	// of writing them to the page content stream.
	Form bool
}

// BuildPDF returns an uncompressed PDF with the given number of pages of size
// w×h points. Each page shows the texts in Helvetica.
func BuildPDF(pages int, w, h float64, texts ...Text) []byte {
	return Build(pages, Page{Width: w, Height: h}, texts...)
}

// Build returns an uncompressed PDF with the given number of pages laid out as p.
func Build(pages int, p Page, texts ...Text) []byte {
	var text bytes.Buffer
	for _, t := range texts {
		fmt.Fprintf(&text, "BT /F1 %g Tf %g %g Td (%s) Tj ET\n", t.Size, t.X, t.Y, t.Body)
	}

	content := text.String()
	xobjects := ""
	if p.Form {
		content = "q /" + FormName + " Do Q\n"
		xobjects = fmt.Sprintf(" /XObject << /%s 5 0 R >>", FormName)
	}

	// 1 catalog, 2 pages, 3 font, 4 content, [5 form], then page objects
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"", // filled below
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>",
		stream("", content),
	}
	if p.Form {
		objects = append(objects, stream(fmt.Sprintf(
			"/Type /XObject /Subtype /Form /BBox [0 0 %g %g] /Resources << /Font << /F1 3 0 R >> >> ",
			p.Width, p.Height), text.String()))
	}

	var extra bytes.Buffer
	if len(p.CropBox) == 4 {
		fmt.Fprintf(&extra, " /CropBox [%g %g %g %g]", p.CropBox[0], p.CropBox[1], p.CropBox[2], p.CropBox[3])
	}
	if p.Rotate != 0 {
		fmt.Fprintf(&extra, " /Rotate %d", p.Rotate)
	}

	var kids bytes.Buffer
	first := len(objects) + 1
	for i := 0; i < pages; i++ {
		fmt.Fprintf(&kids, "%d 0 R ", first+i)
		objects = append(objects, fmt.Sprintf(
			"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 %g %g]%s /Resources << /Font << /F1 3 0 R >>%s >> /Contents 4 0 R >>",
			p.Width, p.Height, extra.String(), xobjects))
	}
	objects[1] = fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", kids.String(), pages)

	var out bytes.Buffer
	out.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = out.Len()
		fmt.Fprintf(&out, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := out.Len()
	fmt.Fprintf(&out, "xref\n0 %d\n", len(objects)+1)
	out.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&out, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&out, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return out.Bytes()
}

// stream formats a stream object with the given extra dictionary entries.
func stream(dict, data string) string {
	return fmt.Sprintf("<< %s/Length %d >>\nstream\n%sendstream", dict, len(data), data)
}

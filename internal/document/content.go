package document

import (
	"fmt"

	"github.com/unidoc/unipdf/v3/contentstream"
	"github.com/unidoc/unipdf/v3/core"
	"github.com/unidoc/unipdf/v3/model"
)

// Glyph extents are estimated without font metrics: every byte of a shown
// string advances glyphAdvance em and spans glyphDescent below to glyphAscent
// above the baseline.
const (
	glyphAdvance = 0.6
	glyphAscent  = 0.8
	glyphDescent = 0.25
)

type textState struct {
	tm, tlm  matrix
	fontSize float64
	leading  float64
	hscale   float64
}

// maxFormDepth bounds how deeply nested form XObjects are followed.
const maxFormDepth = 8

// contentFilter walks a content stream tracking just enough graphics and text
// state to place text runs and XObjects in user space.
type contentFilter struct {
	regions []box

	// resources resolves XObject names. Without it every XObject is treated
	// as an image.
	resources *model.PdfPageResources
	depth     int

	ctm     matrix
	stack   []matrix
	text    textState
	removed int
	err     error
}

func newContentFilter(regions []box) *contentFilter {
	return &contentFilter{
		regions: regions,
		ctm:     identity(),
		text:    textState{tm: identity(), tlm: identity(), hscale: 1},
	}
}

// removeContent rewrites the page content stream without the operations that
// fall inside regions. It returns how many operations were removed.
func removeContent(page *model.PdfPage, regions []box) (int, error) {
	if len(regions) == 0 {
		return 0, nil
	}

	cs, err := page.GetAllContentStreams()
	if err != nil {
		return 0, fmt.Errorf("failed to read content stream: %w", err)
	}
	ops, err := contentstream.NewContentStreamParser(cs).Parse()
	if err != nil {
		return 0, fmt.Errorf("failed to parse content stream: %w", err)
	}

	f := newContentFilter(regions)
	f.resources = page.Resources
	kept := f.filter(*ops)
	if f.err != nil {
		return 0, f.err
	}
	if f.removed == 0 {
		return 0, nil
	}

	out := contentstream.ContentStreamOperations(kept)
	if err := page.SetContentStreams([]string{string(out.Bytes())}, core.NewFlateEncoder()); err != nil {
		return 0, fmt.Errorf("failed to write content stream: %w", err)
	}
	return f.removed, nil
}

func (f *contentFilter) filter(ops contentstream.ContentStreamOperations) []*contentstream.ContentStreamOperation {
	kept := make([]*contentstream.ContentStreamOperation, 0, len(ops))
	for _, op := range ops {
		kept = append(kept, f.process(op)...)
	}
	return kept
}

// process updates state for op and returns the operations to keep in its place.
func (f *contentFilter) process(op *contentstream.ContentStreamOperation) []*contentstream.ContentStreamOperation {
	keep := []*contentstream.ContentStreamOperation{op}
	replaced := false
	nums := func() []float64 {
		v, err := core.GetNumbersAsFloat(op.Params)
		if err != nil {
			return nil
		}
		return v
	}

	switch op.Operand {
	case "q":
		f.stack = append(f.stack, f.ctm)
	case "Q":
		if n := len(f.stack); n > 0 {
			f.ctm = f.stack[n-1]
			f.stack = f.stack[:n-1]
		}
	case "cm":
		if v := nums(); len(v) == 6 {
			f.ctm = matrix{v[0], v[1], v[2], v[3], v[4], v[5]}.mul(f.ctm)
		}

	case "BT":
		f.text.tm, f.text.tlm = identity(), identity()
	case "Tf":
		if len(op.Params) == 2 {
			if size, err := core.GetNumberAsFloat(op.Params[1]); err == nil {
				f.text.fontSize = size
			}
		}
	case "TL":
		if v := nums(); len(v) == 1 {
			f.text.leading = v[0]
		}
	case "Tz":
		if v := nums(); len(v) == 1 {
			f.text.hscale = v[0] / 100
		}
	case "Td", "TD":
		if v := nums(); len(v) == 2 {
			if op.Operand == "TD" {
				f.text.leading = -v[1]
			}
			f.moveText(v[0], v[1])
		}
	case "Tm":
		if v := nums(); len(v) == 6 {
			f.text.tlm = matrix{v[0], v[1], v[2], v[3], v[4], v[5]}
			f.text.tm = f.text.tlm
		}
	case "T*":
		f.moveText(0, -f.text.leading)

	case "Tj":
		if len(op.Params) == 1 && f.showText(stringGlyphs(op.Params[0]), 0) {
			keep = nil
		}
	case "'":
		f.moveText(0, -f.text.leading)
		if len(op.Params) == 1 && f.showText(stringGlyphs(op.Params[0]), 0) {
			keep = []*contentstream.ContentStreamOperation{{Operand: "T*"}}
			replaced = true
		}
	case `"`:
		f.moveText(0, -f.text.leading)
		if len(op.Params) == 3 && f.showText(stringGlyphs(op.Params[2]), 0) {
			keep = []*contentstream.ContentStreamOperation{
				{Operand: "Tw", Params: op.Params[:1]},
				{Operand: "Tc", Params: op.Params[1:2]},
				{Operand: "T*"},
			}
			replaced = true
		}
	case "TJ":
		if len(op.Params) == 1 {
			glyphs, adjust := arrayGlyphs(op.Params[0])
			if f.showText(glyphs, adjust) {
				keep = nil
			}
		}

	case "Do":
		if len(op.Params) == 1 {
			if name, ok := core.GetName(op.Params[0]); ok && f.dropXObject(*name) {
				keep = nil
			}
		}
	case "BI":
		// Inline images paint into the unit square of the current CTM.
		if f.covered(f.ctm.bounds(0, 0, 1, 1)) {
			keep = nil
		}
	}

	if keep == nil || replaced {
		f.removed++
	}
	return keep
}

// dropXObject reports whether painting the named XObject should be removed.
// Form XObjects that are only partly covered are filtered in place instead.
func (f *contentFilter) dropXObject(name core.PdfObjectName) bool {
	if f.resources != nil {
		stream, kind := f.resources.GetXObjectByName(name)
		if stream != nil && kind == model.XObjectTypeForm {
			return f.dropForm(name, stream)
		}
	}
	// Images paint into the unit square of the current CTM.
	return f.covered(f.ctm.bounds(0, 0, 1, 1))
}

// dropForm places a form by its BBox under Matrix x CTM. A fully covered form
// is dropped; one that touches a region has its own content filtered.
func (f *contentFilter) dropForm(name core.PdfObjectName, stream *core.PdfObjectStream) bool {
	form, err := model.NewXObjectFormFromStream(stream)
	if err != nil {
		f.fail(fmt.Errorf("failed to read form %s: %w", name, err))
		return false
	}

	ctm := f.ctm
	if m, ok := floats(form.Matrix); ok && len(m) == 6 {
		ctm = matrix{m[0], m[1], m[2], m[3], m[4], m[5]}.mul(f.ctm)
	}
	bbox, ok := floats(form.BBox)
	if !ok || len(bbox) != 4 {
		f.fail(fmt.Errorf("form %s has no valid BBox", name))
		return false
	}

	extent := ctm.bounds(bbox[0], bbox[1], bbox[2], bbox[3])
	if f.covered(extent) {
		return true
	}
	if f.touches(extent) {
		f.filterForm(name, form, ctm)
	}
	return false
}

// filterForm removes covered content from a form's own stream and writes it
// back. A form drawn more than once is filtered for every placement.
func (f *contentFilter) filterForm(name core.PdfObjectName, form *model.XObjectForm, ctm matrix) {
	if f.depth >= maxFormDepth {
		f.fail(fmt.Errorf("form %s is nested too deeply", name))
		return
	}

	data, err := form.GetContentStream()
	if err != nil {
		f.fail(fmt.Errorf("failed to read form %s content: %w", name, err))
		return
	}
	ops, err := contentstream.NewContentStreamParser(string(data)).Parse()
	if err != nil {
		f.fail(fmt.Errorf("failed to parse form %s content: %w", name, err))
		return
	}

	child := newContentFilter(f.regions)
	child.resources = form.Resources
	if child.resources == nil {
		child.resources = f.resources
	}
	child.depth = f.depth + 1
	child.ctm = ctm
	child.text.fontSize = f.text.fontSize
	child.text.leading = f.text.leading
	child.text.hscale = f.text.hscale

	kept := child.filter(*ops)
	if child.err != nil {
		f.fail(child.err)
		return
	}
	if child.removed == 0 {
		return
	}

	out := contentstream.ContentStreamOperations(kept)
	if err := form.SetContentStream(out.Bytes(), core.NewFlateEncoder()); err != nil {
		f.fail(fmt.Errorf("failed to write form %s content: %w", name, err))
		return
	}
	form.ToPdfObject()
	f.removed += child.removed
}

func (f *contentFilter) fail(err error) {
	if f.err == nil {
		f.err = err
	}
}

func (f *contentFilter) moveText(tx, ty float64) {
	f.text.tlm = translate(tx, ty).mul(f.text.tlm)
	f.text.tm = f.text.tlm
}

// showText advances the text matrix past a run of glyphs and reports whether
// the run's estimated extent touches any region. adjust is the sum of TJ
// position adjustments in thousandths of an em.
func (f *contentFilter) showText(glyphs int, adjust float64) bool {
	fs := f.text.fontSize
	if fs == 0 {
		fs = 1
	}
	advance := (float64(glyphs)*glyphAdvance*fs - adjust/1000*fs) * f.text.hscale

	trm := f.text.tm.mul(f.ctm)
	extent := trm.bounds(0, -glyphDescent*fs, advance, glyphAscent*fs)
	f.text.tm = translate(advance, 0).mul(f.text.tm)

	return f.touches(extent)
}

func (f *contentFilter) touches(b box) bool {
	for _, r := range f.regions {
		if r.intersects(b) {
			return true
		}
	}
	return false
}

func (f *contentFilter) covered(b box) bool {
	for _, r := range f.regions {
		if r.contains(b) {
			return true
		}
	}
	return false
}

func stringGlyphs(obj core.PdfObject) int {
	s, ok := core.GetString(obj)
	if !ok {
		return 0
	}
	return len(s.Bytes())
}

func arrayGlyphs(obj core.PdfObject) (int, float64) {
	arr, ok := core.GetArray(obj)
	if !ok {
		return 0, 0
	}
	glyphs, adjust := 0, 0.0
	for _, el := range arr.Elements() {
		if s, ok := core.GetString(el); ok {
			glyphs += len(s.Bytes())
			continue
		}
		if n, err := core.GetNumberAsFloat(el); err == nil {
			adjust += n
		}
	}
	return glyphs, adjust
}

// floats reads a numeric array such as a BBox or Matrix entry.
func floats(obj core.PdfObject) ([]float64, bool) {
	if obj == nil {
		return nil, false
	}
	arr, ok := core.GetArray(obj)
	if !ok {
		return nil, false
	}
	v, err := arr.ToFloat64Array()
	if err != nil {
		return nil, false
	}
	return v, true
}

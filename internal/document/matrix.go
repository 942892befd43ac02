package document

// matrix is a PDF affine transform [a b c d e f].
type matrix [6]float64

func identity() matrix {
	return matrix{1, 0, 0, 1, 0, 0}
}

func translate(tx, ty float64) matrix {
	return matrix{1, 0, 0, 1, tx, ty}
}

// mul returns m × n: the transform that applies m first, then n.
func (m matrix) mul(n matrix) matrix {
	return matrix{
		m[0]*n[0] + m[1]*n[2],
		m[0]*n[1] + m[1]*n[3],
		m[2]*n[0] + m[3]*n[2],
		m[2]*n[1] + m[3]*n[3],
		m[4]*n[0] + m[5]*n[2] + n[4],
		m[4]*n[1] + m[5]*n[3] + n[5],
	}
}

func (m matrix) apply(x, y float64) (float64, float64) {
	return x*m[0] + y*m[2] + m[4], x*m[1] + y*m[3] + m[5]
}

// box is an axis-aligned rectangle in PDF user space (bottom-left origin).
type box struct {
	llx, lly, urx, ury float64
}

// bounds returns the axis-aligned box covering the rectangle
// (x0,y0)-(x1,y1) after transformation by m.
func (m matrix) bounds(x0, y0, x1, y1 float64) box {
	b := box{llx: inf, lly: inf, urx: -inf, ury: -inf}
	for _, p := range [][2]float64{{x0, y0}, {x1, y0}, {x0, y1}, {x1, y1}} {
		x, y := m.apply(p[0], p[1])
		b.llx = min(b.llx, x)
		b.lly = min(b.lly, y)
		b.urx = max(b.urx, x)
		b.ury = max(b.ury, y)
	}
	return b
}

const inf = 1e308

func (b box) intersects(o box) bool {
	return b.llx < o.urx && o.llx < b.urx && b.lly < o.ury && o.lly < b.ury
}

func (b box) contains(o box) bool {
	return o.llx >= b.llx && o.urx <= b.urx && o.lly >= b.lly && o.ury <= b.ury
}

package redaction

import "math"

// DefaultLabelMultiplier relates a region's height to its label font size.
const DefaultLabelMultiplier = 0.6

// Default clamp ranges for label font sizes.
const (
	PreviewMinFontSize = 6
	PreviewMaxFontSize = 14
	OutputMinFontSize  = 5
	OutputMaxFontSize  = 10
)

// LabelSizing holds the tuning constants for one rendering context.
type LabelSizing struct {
	Multiplier float64 `yaml:"multiplier" json:"multiplier"`
	Min        int     `yaml:"min" json:"min"`
	Max        int     `yaml:"max" json:"max"`
}

// PreviewSizing is used for labels drawn on the zoomed preview image.
func PreviewSizing() LabelSizing {
	return LabelSizing{Multiplier: DefaultLabelMultiplier, Min: PreviewMinFontSize, Max: PreviewMaxFontSize}
}

// OutputSizing is used for labels written into the final document.
func OutputSizing() LabelSizing {
	return LabelSizing{Multiplier: DefaultLabelMultiplier, Min: OutputMinFontSize, Max: OutputMaxFontSize}
}

// FontSize returns the label size for a region of the given height.
func (l LabelSizing) FontSize(height float64) int {
	m := l.Multiplier
	if m <= 0 {
		m = DefaultLabelMultiplier
	}
	return clamp(int(math.Round(height*m)), l.Min, l.Max)
}

// ComputeLabelFontSize returns clamp(round(height*0.6), minSize, maxSize).
func ComputeLabelFontSize(height float64, minSize, maxSize int) int {
	return LabelSizing{Multiplier: DefaultLabelMultiplier, Min: minSize, Max: maxSize}.FontSize(height)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

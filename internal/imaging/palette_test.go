package imaging

import (
	"image/color"
	"testing"
)

func TestParseColor(t *testing.T) {
	tests := []struct {
		input   string
		want    color.RGBA
		wantErr bool
	}{
		{"#FF0000", color.RGBA{255, 0, 0, 255}, false},
		{"#0096FF", color.RGBA{0, 150, 255, 255}, false},
		{"CCCCCC", color.RGBA{204, 204, 204, 255}, false},
		{"#ccc", color.RGBA{204, 204, 204, 255}, false},
		{"#FF000080", color.RGBA{255, 0, 0, 128}, false},
		{" #FFFFFF ", color.RGBA{255, 255, 255, 255}, false},
		{"", color.RGBA{}, true},
		{"#GGGGGG", color.RGBA{}, true},
		{"#12345", color.RGBA{}, true},
		{"#FF0000ZZ", color.RGBA{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseColor(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseColor(%q) should fail", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseColor(%q) failed: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseColor(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseColorOr(t *testing.T) {
	fallback := color.RGBA{1, 2, 3, 255}
	if got := ParseColorOr("nope", fallback); got != fallback {
		t.Errorf("got %v, want fallback", got)
	}
	if got := ParseColorOr("#000000", fallback); got != (color.RGBA{0, 0, 0, 255}) {
		t.Errorf("got %v, want black", got)
	}
}

func TestWithOpacity(t *testing.T) {
	c := color.RGBA{0, 150, 255, 255}
	if got := withOpacity(c, 0.2).A; got != 51 {
		t.Errorf("alpha at 0.2: got %d, want 51", got)
	}
	if got := withOpacity(c, 2).A; got != 255 {
		t.Errorf("alpha clamps to 255, got %d", got)
	}
	if got := withOpacity(c, -1).A; got != 0 {
		t.Errorf("alpha clamps to 0, got %d", got)
	}
}

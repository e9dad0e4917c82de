package render

import (
	"image/color"
	"testing"
)

func TestFontSizePixels(t *testing.T) {
	tests := []struct {
		size FontSize
		want float64
	}{
		{FontSmall, 48},
		{FontMedium, 64},
		{FontLarge, 80},
		{FontExtraLarge, 96},
		{"huge", 64},
		{"", 64},
	}
	for _, tt := range tests {
		if got := tt.size.Pixels(); got != tt.want {
			t.Errorf("FontSize(%q).Pixels() = %v, want %v", tt.size, got, tt.want)
		}
	}
}

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		input   string
		want    color.NRGBA
		wantErr bool
	}{
		{"#ffffff", color.NRGBA{255, 255, 255, 255}, false},
		{"#FFFF00", color.NRGBA{255, 255, 0, 255}, false},
		{"#fff", color.NRGBA{255, 255, 255, 255}, false},
		{"00ff00", color.NRGBA{0, 255, 0, 255}, false},
		{"#ff000080", color.NRGBA{255, 0, 0, 128}, false},
		{"#f008", color.NRGBA{255, 0, 0, 136}, false},
		{"", color.NRGBA{}, true},
		{"#12345", color.NRGBA{}, true},
		{"#gggggg", color.NRGBA{}, true},
	}
	for _, tt := range tests {
		got, err := ParseHexColor(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseHexColor(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseHexColor(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestNeedsShadow(t *testing.T) {
	tests := map[string]bool{
		"#ffffff": true,
		"#FFF":    true,
		"#ffff00": true,
		"#ff0000": false,
		"#fffffe": false,
		"#000000": false,
	}
	for hex, want := range tests {
		c, err := ParseHexColor(hex)
		if err != nil {
			t.Fatalf("ParseHexColor(%q): %v", hex, err)
		}
		if got := needsShadow(c); got != want {
			t.Errorf("needsShadow(%s) = %v, want %v", hex, got, want)
		}
	}
}

func TestStaticStyle(t *testing.T) {
	s := DefaultStyle()
	s.FontColor = "#ff0000"
	var src StyleSource = StaticStyle(s)
	if src.Style() != s {
		t.Errorf("StaticStyle returned %+v, want %+v", src.Style(), s)
	}
}

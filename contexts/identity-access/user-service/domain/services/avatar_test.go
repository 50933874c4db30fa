package services

import (
	"regexp"
	"testing"
)

var hexColor = regexp.MustCompile(`^#[0-9a-f]{6}$`)

func TestAvatarColorIsStable(t *testing.T) {
	first := AvatarColor("ada")
	if !hexColor.MatchString(first) {
		t.Fatalf("unexpected format %q", first)
	}
	if again := AvatarColor("ada"); again != first {
		t.Fatalf("expected stable colour, got %q then %q", first, again)
	}
	if other := AvatarColor("grace"); other == first {
		t.Fatalf("expected different colours for different names, both %q", first)
	}
}

func TestAvatarColorHandlesNonASCII(t *testing.T) {
	for _, name := range []string{"", "żółw", "😀user", "a-very-long-username-that-overflows-the-hash"} {
		if color := AvatarColor(name); !hexColor.MatchString(color) {
			t.Fatalf("unexpected format %q for %q", color, name)
		}
	}
}

func TestHSBToRGBSectors(t *testing.T) {
	cases := []struct {
		hue     float32
		r, g, b int
	}{
		{hue: 0, r: 179, g: 71, b: 71},
		{hue: 1.0 / 3, r: 71, g: 179, b: 71},
		{hue: 2.0 / 3, r: 71, g: 71, b: 179},
	}
	for _, tc := range cases {
		r, g, b := hsbToRGB(tc.hue, 0.6, 0.7)
		if abs(r-tc.r) > 1 || abs(g-tc.g) > 1 || abs(b-tc.b) > 1 {
			t.Fatalf("hue %v: expected (%d,%d,%d), got (%d,%d,%d)", tc.hue, tc.r, tc.g, tc.b, r, g, b)
		}
	}
	if r, g, b := hsbToRGB(0.5, 0, 0.5); r != g || g != b {
		t.Fatalf("expected grey for zero saturation, got (%d,%d,%d)", r, g, b)
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

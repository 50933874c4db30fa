package services

import (
	"fmt"
	"math"
	"unicode/utf16"
)

const (
	avatarSaturation float32 = 0.6
	avatarBrightness float32 = 0.7
)

// AvatarColor derives a stable "#rrggbb" colour from a username. The hue
// comes from the 31-multiplier hash of the UTF-16 code units, so the same
// name always maps to the same colour across services and restarts.
func AvatarColor(username string) string {
	var hash int32
	for _, unit := range utf16.Encode([]rune(username)) {
		hash = 31*hash + int32(unit)
	}
	hue := float32((hash&0xFFFFFFF)%360) / 360
	r, g, b := hsbToRGB(hue, avatarSaturation, avatarBrightness)
	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

func hsbToRGB(hue, saturation, brightness float32) (int, int, int) {
	scale := func(v float32) int { return int(v*255 + 0.5) }
	if saturation == 0 {
		v := scale(brightness)
		return v, v, v
	}
	h := (hue - float32(math.Floor(float64(hue)))) * 6
	f := h - float32(math.Floor(float64(h)))
	p := brightness * (1 - saturation)
	q := brightness * (1 - saturation*f)
	t := brightness * (1 - saturation*(1-f))
	switch int(h) {
	case 0:
		return scale(brightness), scale(t), scale(p)
	case 1:
		return scale(q), scale(brightness), scale(p)
	case 2:
		return scale(p), scale(brightness), scale(t)
	case 3:
		return scale(p), scale(q), scale(brightness)
	case 4:
		return scale(t), scale(p), scale(brightness)
	default:
		return scale(brightness), scale(p), scale(q)
	}
}

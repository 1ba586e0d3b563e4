// Package color picks avatar badge colors for profiles without an uploaded picture.
package color

import (
	"fmt"
	"hash/fnv"
)

// Avatar is the fallback badge shown in place of a profile picture.
type Avatar struct {
	Background string `json:"background"`
	Foreground string `json:"foreground"`
	Initials   string `json:"initials"`
}

// ForProfile returns the badge for a user. The same user ID always gets the same color.
func ForProfile(userID, initials string) Avatar {
	bg := ForUser(userID)
	return Avatar{
		Background: bg,
		Foreground: TextOn(bg),
		Initials:   initials,
	}
}

// ForUser returns a stable hex color derived from the user ID.
// Saturation and lightness are fixed; only the hue varies.
func ForUser(userID string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(userID))
	hue := float64(h.Sum32() % 360)

	r, g, b := hslToRGB(hue, 0.45, 0.6)
	return fmt.Sprintf("#%02X%02X%02X", r, g, b)
}

// TextOn returns black or white, whichever reads better on the given "#RRGGBB" background.
func TextOn(hex string) string {
	var r, g, b uint8
	if _, err := fmt.Sscanf(hex, "#%02X%02X%02X", &r, &g, &b); err != nil {
		return "#FFFFFF"
	}
	// ITU-R BT.601 luma
	luma := 0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)
	if luma > 150 {
		return "#000000"
	}
	return "#FFFFFF"
}

// hslToRGB converts h in [0,360) and s, l in [0,1] to 8-bit RGB.
func hslToRGB(h, s, l float64) (r, g, b uint8) {
	h /= 360.0

	if s == 0 {
		v := uint8(l * 255)
		return v, v, v
	}

	q := l + s - l*s
	if l < 0.5 {
		q = l * (1 + s)
	}
	p := 2*l - q

	return uint8(hueToRGB(p, q, h+1.0/3.0) * 255),
		uint8(hueToRGB(p, q, h) * 255),
		uint8(hueToRGB(p, q, h-1.0/3.0) * 255)
}

func hueToRGB(p, q, t float64) float64 {
	switch {
	case t < 0:
		t++
	case t > 1:
		t--
	}
	switch {
	case t < 1.0/6.0:
		return p + (q-p)*6*t
	case t < 1.0/2.0:
		return q
	case t < 2.0/3.0:
		return p + (q-p)*(2.0/3.0-t)*6
	default:
		return p
	}
}

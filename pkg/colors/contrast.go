package colors

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Luminance returns the WCAG relative luminance of a #rrggbb color, between
// 0 (black) and 1 (white). Invalid colors count as black.
func Luminance(hex string) float64 {
	r, g, b, ok := parseHex(hex)
	if !ok {
		return 0
	}
	return 0.2126*linear(r) + 0.7152*linear(g) + 0.0722*linear(b)
}

// linear undoes sRGB gamma for one 0-255 channel.
func linear(c int) float64 {
	v := float64(c) / 255
	if v <= 0.03928 {
		return v / 12.92
	}
	return math.Pow((v+0.055)/1.055, 2.4)
}

// ContrastRatio returns the WCAG contrast ratio of two colors, from 1 to 21.
func ContrastRatio(a, b string) float64 {
	la, lb := Luminance(a), Luminance(b)
	if la < lb {
		la, lb = lb, la
	}
	return (la + 0.05) / (lb + 0.05)
}

// EnsureContrast moves fg away from bg in 10% steps until the pair reaches
// minRatio (4.5 for WCAG AA). It falls back to black or white.
func EnsureContrast(fg, bg string, minRatio float64) string {
	if ContrastRatio(fg, bg) >= minRatio {
		return fg
	}
	lighter := Luminance(fg) > Luminance(bg)
	for step := 1; step <= 10; step++ {
		amount := float64(step) / 10
		candidate := Darken(fg, amount)
		if lighter {
			candidate = Lighten(fg, amount)
		}
		if ContrastRatio(candidate, bg) >= minRatio {
			return candidate
		}
	}
	if ContrastRatio("#000000", bg) > ContrastRatio("#ffffff", bg) {
		return "#000000"
	}
	return "#ffffff"
}

// IsLight reports whether a color is closer to white than to black.
func IsLight(hex string) bool {
	return Luminance(hex) > 0.5
}

// Lighten mixes hex towards white by amount (0 to 1).
func Lighten(hex string, amount float64) string {
	r, g, b, ok := parseHex(hex)
	if !ok {
		return hex
	}
	mix := func(c int) int { return c + int(float64(255-c)*amount) }
	return formatHex(mix(r), mix(g), mix(b))
}

// Darken mixes hex towards black by amount (0 to 1).
func Darken(hex string, amount float64) string {
	r, g, b, ok := parseHex(hex)
	if !ok {
		return hex
	}
	mix := func(c int) int { return int(float64(c) * (1 - amount)) }
	return formatHex(mix(r), mix(g), mix(b))
}

func parseHex(hex string) (r, g, b int, ok bool) {
	s := strings.TrimPrefix(hex, "#")
	if len(s) != 6 {
		return 0, 0, 0, false
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, 0, 0, false
	}
	return int(v >> 16 & 0xff), int(v >> 8 & 0xff), int(v & 0xff), true
}

func formatHex(r, g, b int) string {
	c := func(v int) int { return min(max(v, 0), 255) }
	return fmt.Sprintf("#%02x%02x%02x", c(r), c(g), c(b))
}

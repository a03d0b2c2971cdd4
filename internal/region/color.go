package region

import (
	"fmt"
	"math/rand/v2"
	"regexp"
	"strings"
)

// Legend label and fill for regions without a representative
const (
	UnassignedLabel = "Unzugewiesen"
	UnassignedColor = "#808080"
)

var hexColor = regexp.MustCompile(`^#[0-9a-f]{6}$`)

// ColorFunc produces a color for a newly created representative
type ColorFunc func() string

// RandomColor draws a uniformly random 24-bit color.
// Colors are not checked against existing representatives, so two of them may
// receive the same or a visually similar value.
func RandomColor() string {
	return FormatColor(rand.Uint32N(1 << 24))
}

// FormatColor renders the low 24 bits of v as #rrggbb
func FormatColor(v uint32) string {
	return fmt.Sprintf("#%06x", v&0xFFFFFF)
}

// NormalizeColor lowercases and validates a #rrggbb color
func NormalizeColor(color string) (string, error) {
	c := strings.ToLower(strings.TrimSpace(color))
	if !hexColor.MatchString(c) {
		return "", validationError("color must be #rrggbb", color)
	}
	return c, nil
}

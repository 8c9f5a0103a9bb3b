// ABOUTME: Abstract RGB colors used by the video test sequence
// ABOUTME: Parses names and hex triplets, formats back for logs and JSON
package pixel

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// Color is a device-independent 8-bit RGB triple
type Color struct {
	R, G, B uint8
}

var (
	Black = Color{0x00, 0x00, 0x00}
	White = Color{0xff, 0xff, 0xff}
	Red   = Color{0xff, 0x00, 0x00}
	Green = Color{0x00, 0xff, 0x00}
	Blue  = Color{0x00, 0x00, 0xff}
)

var named = map[string]Color{
	"black": Black,
	"white": White,
	"red":   Red,
	"green": Green,
	"blue":  Blue,
}

// Name returns the color name if it has one
func (c Color) Name() (string, bool) {
	for name, v := range named {
		if v == c {
			return name, true
		}
	}
	return "", false
}

// Hex returns the color as #rrggbb
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func (c Color) String() string {
	if name, ok := c.Name(); ok {
		return name
	}
	return c.Hex()
}

// ParseColor accepts a color name or a #rrggbb / rrggbb triplet
func ParseColor(s string) (Color, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if c, ok := named[s]; ok {
		return c, nil
	}

	raw := strings.TrimPrefix(s, "#")
	if len(raw) != 6 {
		return Color{}, fmt.Errorf("invalid color %q: want a name or #rrggbb", s)
	}
	b, err := hex.DecodeString(raw)
	if err != nil {
		return Color{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return Color{R: b[0], G: b[1], B: b[2]}, nil
}

// MarshalText encodes the color for JSON output
func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText parses a color name or hex triplet
func (c *Color) UnmarshalText(text []byte) error {
	parsed, err := ParseColor(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

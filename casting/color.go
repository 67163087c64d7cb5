package casting

import (
	"fmt"
	"strconv"
	"strings"
)

// Color is an RGBA display color.
type Color struct {
	Red   uint8
	Green uint8
	Blue  uint8
	Alpha uint8
}

// Named colors. White is what a cycle turns when it dies.
var (
	White  = Color{Red: 255, Green: 255, Blue: 255, Alpha: 255}
	Red    = Color{Red: 255, Alpha: 255}
	Yellow = Color{Red: 255, Green: 255, Alpha: 255}
)

// Hex returns the color as #rrggbb, alpha is dropped.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.Red, c.Green, c.Blue)
}

func (c Color) String() string {
	return c.Hex()
}

// MarshalText encodes the color as #rrggbb.
func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.Hex()), nil
}

// UnmarshalText decodes a #rrggbb color, the result is fully opaque.
func (c *Color) UnmarshalText(text []byte) error {
	parsed, err := ParseColor(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseColor parses #rrggbb (the leading # is optional).
func ParseColor(s string) (Color, error) {
	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 {
		return Color{}, fmt.Errorf("casting: invalid color %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("casting: invalid color %q: %v", s, err)
	}
	return Color{
		Red:   uint8(v >> 16),
		Green: uint8(v >> 8),
		Blue:  uint8(v),
		Alpha: 255,
	}, nil
}

// Package colorspace provides packed RGB colors and the conversions and
// adjustments used by analysis and generation.
//
// Colors are packed 0xRRGGBB integers. Alpha lives on pixels, not on colors;
// see package pixel.
package colorspace

import (
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Color is a packed 0xRRGGBB color.
type Color uint32

// Common colors.
const (
	Black Color = 0x000000
	White Color = 0xFFFFFF
)

// FromRGB packs three channels into a Color.
func FromRGB(r, g, b uint8) Color {
	return Color(uint32(r)<<16 | uint32(g)<<8 | uint32(b))
}

// FromNRGBA drops alpha and packs the channels.
func FromNRGBA(c color.NRGBA) Color {
	return FromRGB(c.R, c.G, c.B)
}

// RGB unpacks the channels.
func (c Color) RGB() (r, g, b uint8) {
	return uint8(c >> 16), uint8(c >> 8), uint8(c)
}

// NRGBA returns the color with the given alpha.
func (c Color) NRGBA(alpha uint8) color.NRGBA {
	r, g, b := c.RGB()
	return color.NRGBA{R: r, G: g, B: b, A: alpha}
}

// Hex formats the color as "#rrggbb".
func (c Color) Hex() string {
	return fmt.Sprintf("#%06x", uint32(c)&0xFFFFFF)
}

// String implements fmt.Stringer.
func (c Color) String() string { return c.Hex() }

// ParseHex parses "#rrggbb", "rrggbb" or "0xrrggbb".
func ParseHex(s string) (Color, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "#")
	s = strings.TrimPrefix(strings.ToLower(s), "0x")
	if len(s) != 6 {
		return 0, fmt.Errorf("invalid color %q: want 6 hex digits", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return Color(v), nil
}

// MarshalText encodes the color as "#rrggbb" for JSON and TOML.
func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.Hex()), nil
}

// UnmarshalText decodes "#rrggbb".
func (c *Color) UnmarshalText(text []byte) error {
	v, err := ParseHex(string(text))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

func (c Color) colorful() colorful.Color {
	r, g, b := c.RGB()
	return colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
}

func fromColorful(c colorful.Color) Color {
	r, g, b := c.Clamped().RGB255()
	return FromRGB(r, g, b)
}

// ToHSV returns hue in degrees [0,360) and saturation and value in [0,1].
func ToHSV(c Color) (h, s, v float64) {
	h, s, v = c.colorful().Hsv()
	if h >= 360 {
		h -= 360
	}
	return h, s, v
}

// FromHSV converts hue (degrees), saturation and value back to a Color.
func FromHSV(h, s, v float64) Color {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	return fromColorful(colorful.Hsv(h, clamp01(s), clamp01(v)))
}

// Lighten moves every channel toward 255 by amount (0..1).
// An amount of 0 returns c unchanged.
func Lighten(c Color, amount float64) Color {
	amount = clamp01(amount)
	if amount == 0 {
		return c
	}
	r, g, b := c.RGB()
	up := func(v uint8) uint8 {
		return clampChannel(float64(v) + (255-float64(v))*amount)
	}
	return FromRGB(up(r), up(g), up(b))
}

// Darken scales every channel toward 0 by amount (0..1).
// An amount of 0 returns c unchanged.
func Darken(c Color, amount float64) Color {
	amount = clamp01(amount)
	if amount == 0 {
		return c
	}
	r, g, b := c.RGB()
	down := func(v uint8) uint8 {
		return clampChannel(float64(v) * (1 - amount))
	}
	return FromRGB(down(r), down(g), down(b))
}

// Blend linearly interpolates from a to b; t is clamped to [0,1].
func Blend(a, b Color, t float64) Color {
	t = clamp01(t)
	switch t {
	case 0:
		return a
	case 1:
		return b
	}
	return fromColorful(a.colorful().BlendRgb(b.colorful(), t))
}

// Scale multiplies every channel by factor and clamps.
func Scale(c Color, factor float64) Color {
	r, g, b := c.RGB()
	return FromRGB(
		clampChannel(float64(r)*factor),
		clampChannel(float64(g)*factor),
		clampChannel(float64(b)*factor),
	)
}

// Luminance returns the Rec. 601 weighted brightness in [0,255].
func Luminance(c Color) float64 {
	r, g, b := c.RGB()
	return 0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)
}

// Distance returns the Euclidean distance between two colors in RGB space.
func Distance(a, b Color) float64 {
	ar, ag, ab := a.RGB()
	br, bg, bb := b.RGB()
	dr := float64(ar) - float64(br)
	dg := float64(ag) - float64(bg)
	db := float64(ab) - float64(bb)
	return math.Sqrt(dr*dr + dg*dg + db*db)
}

func clamp01(v float64) float64 {
	return max(0, min(v, 1))
}

func clampChannel(v float64) uint8 {
	return uint8(max(0, min(math.Round(v), 255)))
}

// Package material defines the closed set of surface materials and the
// HSV rules that map a color to one of them.
//
// Classification is a pure function of the color: the same color always maps
// to the same material.
package material

import (
	"fmt"
	"strings"

	"github.com/matzehuels/spritestyle/pkg/colorspace"
)

// Material is a surface category used by classification, shading and
// texturing.
type Material int

// Materials. Other is the fallback for anything no rule matches.
const (
	Other Material = iota
	Metal
	Cloth
	Leather
	Skin
	Wood
	Glow
	Accent
)

// PaletteArmor is the extra palette bucket that mirrors Metal entries.
const PaletteArmor = "armor"

var names = [...]string{
	Other:   "other",
	Metal:   "metal",
	Cloth:   "cloth",
	Leather: "leather",
	Skin:    "skin",
	Wood:    "wood",
	Glow:    "glow",
	Accent:  "accent",
}

// All lists every material in declaration order.
func All() []Material {
	return []Material{Metal, Cloth, Leather, Skin, Wood, Glow, Accent, Other}
}

// String returns the lowercase material name.
func (m Material) String() string {
	if m < 0 || int(m) >= len(names) {
		return names[Other]
	}
	return names[m]
}

// Parse maps a name back to a material. "armor" is accepted as Metal.
func Parse(s string) (Material, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == PaletteArmor {
		return Metal, nil
	}
	for i, n := range names {
		if n == s {
			return Material(i), nil
		}
	}
	return Other, fmt.Errorf("unknown material %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (m Material) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Material) UnmarshalText(text []byte) error {
	v, err := Parse(string(text))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// Classify returns the material for c. Rules are evaluated in order and the
// first match wins.
func Classify(c colorspace.Color) Material {
	h, s, v := colorspace.ToHSV(c)
	switch {
	case v > 0.7 && s < 0.2:
		return Metal
	case v > 0.8 && s > 0.6 && (between(h, 40, 80) || between(h, 160, 200)):
		return Glow
	case between(h, 15, 35) && between(s, 0.2, 0.6) && v >= 0.5:
		return Skin
	case between(h, 15, 45) && between(v, 0.2, 0.6) && between(s, 0.3, 0.8):
		return Wood
	case between(v, 0.3, 0.7):
		return Cloth
	case s > 0.6:
		return Accent
	}
	return Other
}

// GroupByMaterial buckets a palette by material name. Empty buckets are
// omitted and metal colors are also listed under PaletteArmor.
func GroupByMaterial(p colorspace.Palette) map[string]colorspace.Palette {
	groups := make(map[string]colorspace.Palette)
	for _, c := range p {
		m := Classify(c).String()
		groups[m] = append(groups[m], c)
	}
	if metal, ok := groups[Metal.String()]; ok {
		groups[PaletteArmor] = append(colorspace.Palette(nil), metal...)
	}
	return groups
}

func between(v, lo, hi float64) bool {
	return v >= lo && v <= hi
}

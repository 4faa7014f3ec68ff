package colorspace

import "slices"

// Palette is an ordered list of colors.
type Palette []Color

// Contains reports whether c is in the palette.
func (p Palette) Contains(c Color) bool {
	return slices.Contains(p, c)
}

// Dedupe returns a copy without repeated colors, keeping first occurrences.
func (p Palette) Dedupe() Palette {
	seen := make(map[Color]bool, len(p))
	out := make(Palette, 0, len(p))
	for _, c := range p {
		if seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}

// Union appends colors from q that are not already in p.
func (p Palette) Union(q Palette) Palette {
	return append(slices.Clone(p), q...).Dedupe()
}

// Hex returns the palette as "#rrggbb" strings.
func (p Palette) Hex() []string {
	out := make([]string, len(p))
	for i, c := range p {
		out[i] = c.Hex()
	}
	return out
}

// Darkest returns the color with the lowest luminance, or Black for an empty
// palette.
func (p Palette) Darkest() Color {
	if len(p) == 0 {
		return Black
	}
	best := p[0]
	for _, c := range p[1:] {
		if Luminance(c) < Luminance(best) {
			best = c
		}
	}
	return best
}

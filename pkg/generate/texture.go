package generate

import (
	"github.com/matzehuels/spritestyle/pkg/colorspace"
	"github.com/matzehuels/spritestyle/pkg/material"
	"github.com/matzehuels/spritestyle/pkg/pixel"
	"github.com/matzehuels/spritestyle/pkg/rng"
)

// DefaultLeatherDensity is the share of leather pixels that get a grain mark.
const DefaultLeatherDensity = 0.15

// TextureGenerator adds surface detail to already-painted regions. Only
// opaque pixels are touched. Recolored pixels move along the ladder of the
// shading method the region was painted with (see Tones.Ladder), so textures
// never add a color outside that ladder.
type TextureGenerator struct {
	rng     *rng.Rand
	Density float64
	// Method is the shading method of the regions being textured.
	Method string
}

// NewTextureGenerator returns a generator drawing from r.
func NewTextureGenerator(r *rng.Rand) *TextureGenerator {
	return &TextureGenerator{rng: r, Density: DefaultLeatherDensity}
}

// Apply dispatches to the texture for m. Materials without a texture are left
// unchanged.
func (g *TextureGenerator) Apply(buf *pixel.Buffer, r pixel.Rect, m material.Material, t Tones) {
	switch m {
	case material.Cloth:
		g.Cloth(buf, r, t)
	case material.Leather:
		g.Leather(buf, r, t)
	case material.Metal:
		g.Metal(buf, r, t)
	case material.Wood:
		g.Wood(buf, r, t)
	}
}

// Cloth draws a 2px weave: vertical threads one step darker and horizontal
// threads one step lighter, alternating per 2×2 cell.
func (g *TextureGenerator) Cloth(buf *pixel.Buffer, r pixel.Rect, t Tones) {
	ladder := t.Ladder(g.Method)
	phase := g.rng.Intn(2)
	buf.Recolor(r, func(x, y int, c colorspace.Color) colorspace.Color {
		lx, ly := x-r.X, y-r.Y
		cell := ((lx+phase)/2 + ly/2) % 2
		switch {
		case cell == 0 && lx%2 == 0:
			return StepAlong(ladder, c, 1)
		case cell == 1 && ly%2 == 0:
			return StepAlong(ladder, c, -1)
		}
		return c
	})
}

// Mask returns a w×h row-major mask with roughly density of the cells set.
func (g *TextureGenerator) Mask(w, h int, density float64) []bool {
	mask := make([]bool, max(w, 0)*max(h, 0))
	for i := range mask {
		mask[i] = g.rng.Bool(density)
	}
	return mask
}

// Leather marks a noise mask of pixels, alternating darker and lighter.
func (g *TextureGenerator) Leather(buf *pixel.Buffer, r pixel.Rect, t Tones) {
	ladder := t.Ladder(g.Method)
	mask := g.Mask(r.W, r.H, g.Density)
	n := 0
	buf.Recolor(r, func(x, y int, c colorspace.Color) colorspace.Color {
		if !mask[(y-r.Y)*r.W+(x-r.X)] {
			return c
		}
		n++
		if n%2 == 1 {
			return StepAlong(ladder, c, 1)
		}
		return StepAlong(ladder, c, -1)
	})
}

// Metal adds lighter streak columns every 3px and a highlight row along the
// region's top edge.
func (g *TextureGenerator) Metal(buf *pixel.Buffer, r pixel.Rect, t Tones) {
	ladder := t.Ladder(g.Method)
	phase := g.rng.Intn(3)
	buf.Recolor(r, func(x, y int, c colorspace.Color) colorspace.Color {
		if y == r.Y || (x-r.X+phase)%3 == 0 {
			return StepAlong(ladder, c, -1)
		}
		return c
	})
}

// Wood darkens grain rows every 3px, broken up at random.
func (g *TextureGenerator) Wood(buf *pixel.Buffer, r pixel.Rect, t Tones) {
	ladder := t.Ladder(g.Method)
	phase := g.rng.Intn(3)
	buf.Recolor(r, func(x, y int, c colorspace.Color) colorspace.Color {
		if (y-r.Y+phase)%3 != 0 || g.rng.Bool(0.2) {
			return c
		}
		return StepAlong(ladder, c, 1)
	})
}

package pixel

import (
	"image/color"

	"github.com/matzehuels/spritestyle/pkg/colorspace"
)

// FillRect paints an opaque rectangle, clipped to the buffer.
func (b *Buffer) FillRect(r Rect, c colorspace.Color) {
	px := c.NRGBA(255)
	for y := max(r.Y, 0); y < min(r.Y+r.H, b.Height); y++ {
		for x := max(r.X, 0); x < min(r.X+r.W, b.Width); x++ {
			b.SetNRGBA(x, y, px)
		}
	}
}

// FillCircle paints an opaque disc of radius r centered at (cx,cy).
func (b *Buffer) FillCircle(cx, cy, r int, c colorspace.Color) {
	if r < 0 {
		return
	}
	px := c.NRGBA(255)
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if dx*dx+dy*dy <= r*r {
				b.SetNRGBA(cx+dx, cy+dy, px)
			}
		}
	}
}

// Line paints a one-pixel line from (x0,y0) to (x1,y1) using Bresenham's
// algorithm. Points outside the buffer are skipped.
func (b *Buffer) Line(x0, y0, x1, y1 int, c colorspace.Color) {
	px := c.NRGBA(255)
	dx, dy := abs(x1-x0), -abs(y1-y0)
	sx, sy := sign(x1-x0), sign(y1-y0)
	err := dx + dy
	for {
		b.SetNRGBA(x0, y0, px)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// Outline traces layers rings of c around the opaque silhouette. Each layer
// paints every transparent pixel that is 4-adjacent to an opaque pixel of the
// previous state, so the outline grows outward one pixel per layer.
func (b *Buffer) Outline(c colorspace.Color, layers int) {
	px := c.NRGBA(255)
	for range max(layers, 0) {
		var ring []Point
		for y := 0; y < b.Height; y++ {
			for x := 0; x < b.Width; x++ {
				if b.Opaque(x, y) {
					continue
				}
				if b.Opaque(x-1, y) || b.Opaque(x+1, y) || b.Opaque(x, y-1) || b.Opaque(x, y+1) {
					ring = append(ring, Point{x, y})
				}
			}
		}
		if len(ring) == 0 {
			return
		}
		for _, p := range ring {
			b.SetNRGBA(p.X, p.Y, px)
		}
	}
}

// MirrorHorizontal copies every pixel left of centerX onto its reflection
// about centerX, making the buffer left/right symmetric. Pixels whose
// reflection falls outside the buffer are left alone. Applying it to a buffer
// that is already symmetric about centerX changes nothing.
func (b *Buffer) MirrorHorizontal(centerX int) {
	for y := 0; y < b.Height; y++ {
		for x := 0; x < centerX && x < b.Width; x++ {
			mx := 2*centerX - 1 - x
			if !b.InBounds(mx, y) {
				continue
			}
			c, _ := b.Get(x, y)
			b.SetNRGBA(mx, y, c)
		}
	}
}

// Recolor replaces the color of every opaque pixel inside r via fn, keeping
// alpha.
func (b *Buffer) Recolor(r Rect, fn func(x, y int, c colorspace.Color) colorspace.Color) {
	for y := max(r.Y, 0); y < min(r.Y+r.H, b.Height); y++ {
		for x := max(r.X, 0); x < min(r.X+r.W, b.Width); x++ {
			px, _ := b.Get(x, y)
			if px.A == 0 {
				continue
			}
			nc := fn(x, y, colorspace.FromNRGBA(px))
			b.SetNRGBA(x, y, nc.NRGBA(px.A))
		}
	}
}

// Each calls fn for every opaque pixel in row-major order.
func (b *Buffer) Each(fn func(x, y int, c color.NRGBA)) {
	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			c, _ := b.Get(x, y)
			if c.A > 0 {
				fn(x, y, c)
			}
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

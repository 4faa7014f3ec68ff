// Package pixel provides the addressable RGBA grid that every analysis and
// generation stage reads and writes.
//
// Coordinates outside [0,Width)×[0,Height) are never touched: writes are
// no-ops and reads report absence. A Buffer is owned by whoever created it and
// is mutated in place by the drawing primitives.
package pixel

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"

	"github.com/matzehuels/spritestyle/pkg/colorspace"
)

// Point is an integer pixel coordinate.
type Point struct {
	X, Y int
}

// Rect is an axis-aligned box of W×H pixels with its top-left corner at (X,Y).
type Rect struct {
	X, Y, W, H int
}

// Empty reports whether the rect covers no pixels.
func (r Rect) Empty() bool { return r.W <= 0 || r.H <= 0 }

// Center returns the integer center of the rect.
func (r Rect) Center() Point {
	return Point{X: r.X + r.W/2, Y: r.Y + r.H/2}
}

// Contains reports whether p lies inside the rect.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X < r.X+r.W && p.Y >= r.Y && p.Y < r.Y+r.H
}

// Buffer is a width×height grid of non-premultiplied RGBA pixels stored
// row-major, four bytes per pixel. Alpha 0 is fully transparent.
type Buffer struct {
	Width  int
	Height int
	Pix    []uint8
}

// New allocates a fully transparent buffer. Negative sizes are treated as 0.
func New(width, height int) *Buffer {
	width, height = max(width, 0), max(height, 0)
	return &Buffer{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height*4),
	}
}

// FromImage copies any image into a new buffer.
func FromImage(img image.Image) *Buffer {
	b := img.Bounds()
	buf := New(b.Dx(), b.Dy())
	for y := 0; y < buf.Height; y++ {
		for x := 0; x < buf.Width; x++ {
			c := color.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			buf.SetNRGBA(x, y, c)
		}
	}
	return buf
}

// InBounds reports whether (x,y) addresses a pixel.
func (b *Buffer) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < b.Width && y < b.Height
}

func (b *Buffer) offset(x, y int) int {
	return (y*b.Width + x) * 4
}

// Get returns the pixel at (x,y); ok is false outside the buffer.
func (b *Buffer) Get(x, y int) (c color.NRGBA, ok bool) {
	if !b.InBounds(x, y) {
		return color.NRGBA{}, false
	}
	i := b.offset(x, y)
	return color.NRGBA{R: b.Pix[i], G: b.Pix[i+1], B: b.Pix[i+2], A: b.Pix[i+3]}, true
}

// ColorAt returns the packed RGB color at (x,y) and whether it is opaque
// (alpha > 0). Out-of-range reads report false.
func (b *Buffer) ColorAt(x, y int) (colorspace.Color, bool) {
	c, ok := b.Get(x, y)
	if !ok || c.A == 0 {
		return 0, false
	}
	return colorspace.FromNRGBA(c), true
}

// Opaque reports whether (x,y) is inside the buffer with non-zero alpha.
func (b *Buffer) Opaque(x, y int) bool {
	if !b.InBounds(x, y) {
		return false
	}
	return b.Pix[b.offset(x, y)+3] > 0
}

// Edge reports whether (x,y) is opaque and has a transparent or
// out-of-bounds 4-neighbour.
func (b *Buffer) Edge(x, y int) bool {
	if !b.Opaque(x, y) {
		return false
	}
	return !b.Opaque(x-1, y) || !b.Opaque(x+1, y) || !b.Opaque(x, y-1) || !b.Opaque(x, y+1)
}

// SetNRGBA writes c at (x,y). Out-of-range writes are ignored.
func (b *Buffer) SetNRGBA(x, y int, c color.NRGBA) {
	if !b.InBounds(x, y) {
		return
	}
	i := b.offset(x, y)
	b.Pix[i], b.Pix[i+1], b.Pix[i+2], b.Pix[i+3] = c.R, c.G, c.B, c.A
}

// SetColor writes an opaque color at (x,y).
func (b *Buffer) SetColor(x, y int, c colorspace.Color) {
	b.SetNRGBA(x, y, c.NRGBA(255))
}

// Clear makes (x,y) fully transparent.
func (b *Buffer) Clear(x, y int) {
	b.SetNRGBA(x, y, color.NRGBA{})
}

// Clone returns an independent copy.
func (b *Buffer) Clone() *Buffer {
	out := &Buffer{Width: b.Width, Height: b.Height, Pix: make([]uint8, len(b.Pix))}
	copy(out.Pix, b.Pix)
	return out
}

// Equal reports whether two buffers have the same size and bytes.
func (b *Buffer) Equal(o *Buffer) bool {
	if b == nil || o == nil {
		return b == o
	}
	if b.Width != o.Width || b.Height != o.Height {
		return false
	}
	for i := range b.Pix {
		if b.Pix[i] != o.Pix[i] {
			return false
		}
	}
	return true
}

// OpaqueCount returns the number of pixels with non-zero alpha.
func (b *Buffer) OpaqueCount() int {
	n := 0
	for i := 3; i < len(b.Pix); i += 4 {
		if b.Pix[i] > 0 {
			n++
		}
	}
	return n
}

// OpaqueBounds returns the bounding box of all opaque pixels. ok is false
// when the buffer is fully transparent.
func (b *Buffer) OpaqueBounds() (r Rect, ok bool) {
	minX, minY, maxX, maxY := b.Width, b.Height, -1, -1
	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			if !b.Opaque(x, y) {
				continue
			}
			minX, minY = min(minX, x), min(minY, y)
			maxX, maxY = max(maxX, x), max(maxY, y)
		}
	}
	if maxX < 0 {
		return Rect{}, false
	}
	return Rect{X: minX, Y: minY, W: maxX - minX + 1, H: maxY - minY + 1}, true
}

// Scale returns a nearest-neighbour resampled copy of size w×h.
// Nearest neighbour keeps hard pixel edges; no smoothing is applied.
func (b *Buffer) Scale(w, h int) *Buffer {
	out := New(max(w, 1), max(h, 1))
	if b.Width == 0 || b.Height == 0 {
		return out
	}
	draw.NearestNeighbor.Scale(out, out.Bounds(), b, b.Bounds(), draw.Src, nil)
	return out
}

// ColorModel implements image.Image.
func (b *Buffer) ColorModel() color.Model { return color.NRGBAModel }

// Bounds implements image.Image.
func (b *Buffer) Bounds() image.Rectangle { return image.Rect(0, 0, b.Width, b.Height) }

// At implements image.Image. Out-of-range coordinates are transparent.
func (b *Buffer) At(x, y int) color.Color {
	c, _ := b.Get(x, y)
	return c
}

// NRGBA returns the buffer as an *image.NRGBA sharing no memory with b.
func (b *Buffer) NRGBA() *image.NRGBA {
	img := image.NewNRGBA(b.Bounds())
	copy(img.Pix, b.Pix)
	return img
}

var _ draw.Image = (*Buffer)(nil)

// Set implements draw.Image so x/image/draw can write into a Buffer.
func (b *Buffer) Set(x, y int, c color.Color) {
	b.SetNRGBA(x, y, color.NRGBAModel.Convert(c).(color.NRGBA))
}

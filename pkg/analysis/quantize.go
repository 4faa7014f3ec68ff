package analysis

import (
	"image/color"
	"slices"

	"github.com/matzehuels/spritestyle/pkg/colorspace"
	"github.com/matzehuels/spritestyle/pkg/pixel"
)

// Sample is one opaque RGB pixel value.
type Sample [3]uint8

// colorBox is a median-cut node: a set of samples plus per-channel extents.
type colorBox struct {
	samples []Sample
	lo, hi  [3]uint8
}

func newColorBox(samples []Sample) *colorBox {
	b := &colorBox{samples: samples, lo: [3]uint8{255, 255, 255}}
	for _, s := range samples {
		for ch := range 3 {
			b.lo[ch] = min(b.lo[ch], s[ch])
			b.hi[ch] = max(b.hi[ch], s[ch])
		}
	}
	return b
}

// widest returns the channel with the largest range and that range.
// Ties resolve to the lower channel index (R, then G, then B).
func (b *colorBox) widest() (axis, span int) {
	for ch := range 3 {
		if r := int(b.hi[ch]) - int(b.lo[ch]); r > span {
			axis, span = ch, r
		}
	}
	return axis, span
}

// split sorts along axis and cuts near the median. The cut is moved to the
// closest index where the axis value changes so that no value ends up in both
// halves; that keeps the box count bounded by the number of distinct colors.
func (b *colorBox) split(axis int) (*colorBox, *colorBox) {
	s := slices.Clone(b.samples)
	slices.SortStableFunc(s, func(a, c Sample) int { return int(a[axis]) - int(c[axis]) })

	mid := len(s) / 2
	cut := -1
	for d := 0; d < len(s); d++ {
		if i := mid + d; i > 0 && i < len(s) && s[i][axis] != s[i-1][axis] {
			cut = i
			break
		}
		if i := mid - d; i > 0 && i < len(s) && s[i][axis] != s[i-1][axis] {
			cut = i
			break
		}
	}
	if cut < 0 {
		return nil, nil
	}
	return newColorBox(s[:cut]), newColorBox(s[cut:])
}

func (b *colorBox) average() colorspace.Color {
	var sum [3]int
	for _, s := range b.samples {
		for ch := range 3 {
			sum[ch] += int(s[ch])
		}
	}
	n := len(b.samples)
	avg := func(v int) uint8 { return uint8((v + n/2) / n) }
	return colorspace.FromRGB(avg(sum[0]), avg(sum[1]), avg(sum[2]))
}

// Quantize reduces samples to at most k colors with median cut.
//
// The box with the widest channel range is split repeatedly (earliest box wins
// ties) until there are k boxes, no box can be split, or there are as many
// boxes as samples. Each surviving box contributes its average color. An empty
// input or k <= 0 yields an empty palette.
func Quantize(samples []Sample, k int) colorspace.Palette {
	if len(samples) == 0 || k <= 0 {
		return colorspace.Palette{}
	}

	boxes := []*colorBox{newColorBox(samples)}
	for len(boxes) < k && len(boxes) < len(samples) {
		best, bestAxis, bestSpan := -1, 0, 0
		for i, b := range boxes {
			if axis, span := b.widest(); span > bestSpan {
				best, bestAxis, bestSpan = i, axis, span
			}
		}
		if best < 0 {
			break
		}
		left, right := boxes[best].split(bestAxis)
		if left == nil {
			break
		}
		boxes = append(slices.Delete(boxes, best, best+1), left, right)
	}

	out := make(colorspace.Palette, 0, len(boxes))
	for _, b := range boxes {
		out = append(out, b.average())
	}
	return out.Dedupe()
}

// Samples collects the RGB value of every opaque pixel in row-major order.
// Fully transparent pixels are skipped.
func Samples(buf *pixel.Buffer) []Sample {
	var out []Sample
	buf.Each(func(_, _ int, c color.NRGBA) {
		out = append(out, Sample{c.R, c.G, c.B})
	})
	return out
}

// ExtractPalette quantizes the opaque pixels of buf to at most k colors.
func ExtractPalette(buf *pixel.Buffer, k int) colorspace.Palette {
	return Quantize(Samples(buf), k)
}

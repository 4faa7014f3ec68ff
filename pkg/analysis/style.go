package analysis

import (
	"math"

	"github.com/matzehuels/spritestyle/pkg/colorspace"
	"github.com/matzehuels/spritestyle/pkg/pixel"
	"github.com/matzehuels/spritestyle/pkg/style"
)

// Detection thresholds, in luminance units unless noted.
const (
	OutlineMaxLuminance   = 100.0
	HighlightMinLuminance = 200.0
	MaxOutlineThickness   = 3

	celDelta          = 50.0
	celLargeShare     = 0.10
	celMeanDelta      = 30.0
	gradientMeanDelta = 20.0
	gradientMaxShare  = 0.05

	ditherContrast = 30.0
	ditherSimilar  = 10.0
	ditherShare    = 0.05

	// lightBias is how much one half must outweigh the other to count as lit.
	lightBias = 1.2
)

// DetectOutline returns the most frequent dark edge color and the longest
// horizontal run of edge pixels, capped at MaxOutlineThickness. A sprite
// without dark edges reports black; one without edges reports thickness 0.
func DetectOutline(buf *pixel.Buffer) (colorspace.Color, int) {
	counts := make(map[colorspace.Color]int)
	var order []colorspace.Color
	longest := 0
	for y := 0; y < buf.Height; y++ {
		run := 0
		for x := 0; x < buf.Width; x++ {
			if !buf.Edge(x, y) {
				run = 0
				continue
			}
			run++
			longest = max(longest, run)
			c, _ := buf.ColorAt(x, y)
			if colorspace.Luminance(c) < OutlineMaxLuminance {
				if counts[c] == 0 {
					order = append(order, c)
				}
				counts[c]++
			}
		}
	}
	return dominant(counts, order, colorspace.Black), min(longest, MaxOutlineThickness)
}

// dominant returns the most frequent color, preferring the first seen on ties.
func dominant(counts map[colorspace.Color]int, order []colorspace.Color, fallback colorspace.Color) colorspace.Color {
	best, bestN := fallback, 0
	for _, c := range order {
		if counts[c] > bestN {
			best, bestN = c, counts[c]
		}
	}
	return best
}

// DetectShading classifies the luminance deltas between horizontally adjacent
// opaque pixels. Banded images with many sharp steps are cel-shaded, smooth
// ones are gradients, and anything else is flat. An image with no adjacent
// opaque pairs is flat.
func DetectShading(buf *pixel.Buffer) string {
	var sum float64
	total, large := 0, 0
	for y := 0; y < buf.Height; y++ {
		for x := 0; x+1 < buf.Width; x++ {
			a, ok1 := buf.ColorAt(x, y)
			b, ok2 := buf.ColorAt(x+1, y)
			if !ok1 || !ok2 {
				continue
			}
			d := math.Abs(colorspace.Luminance(a) - colorspace.Luminance(b))
			sum += d
			total++
			if d > celDelta {
				large++
			}
		}
	}
	if total == 0 {
		return style.ShadingFlat
	}
	mean := sum / float64(total)
	share := float64(large) / float64(total)
	switch {
	case share > celLargeShare && mean > celMeanDelta:
		return style.ShadingCel
	case mean < gradientMeanDelta && share < gradientMaxShare:
		return style.ShadingGradient
	default:
		return style.ShadingFlat
	}
}

// DetectDithering looks for checkerboard alternation: a pixel that contrasts
// with both its right and lower neighbours while those two agree. It reports
// true when more than 5% of fully opaque triples match.
func DetectDithering(buf *pixel.Buffer) bool {
	total, hits := 0, 0
	for y := 0; y+1 < buf.Height; y++ {
		for x := 0; x+1 < buf.Width; x++ {
			p, ok1 := buf.ColorAt(x, y)
			r, ok2 := buf.ColorAt(x+1, y)
			b, ok3 := buf.ColorAt(x, y+1)
			if !ok1 || !ok2 || !ok3 {
				continue
			}
			total++
			lp, lr, lb := colorspace.Luminance(p), colorspace.Luminance(r), colorspace.Luminance(b)
			if math.Abs(lp-lr) > ditherContrast && math.Abs(lp-lb) > ditherContrast && math.Abs(lr-lb) < ditherSimilar {
				hits++
			}
		}
	}
	return total > 0 && float64(hits)/float64(total) > ditherShare
}

// Highlights summarizes bright edge pixels and where the light comes from.
type Highlights struct {
	Present   bool
	Color     colorspace.Color
	Direction string
}

// DetectHighlights finds the dominant bright edge color and infers the light
// direction from where bright opaque pixels cluster. Without bright pixels the
// light is assumed to come from the top left.
func DetectHighlights(buf *pixel.Buffer) Highlights {
	counts := make(map[colorspace.Color]int)
	var order []colorspace.Color
	var left, right, top, bottom int
	for y := 0; y < buf.Height; y++ {
		for x := 0; x < buf.Width; x++ {
			c, ok := buf.ColorAt(x, y)
			if !ok || colorspace.Luminance(c) <= HighlightMinLuminance {
				continue
			}
			if 2*x < buf.Width {
				left++
			} else {
				right++
			}
			if 2*y < buf.Height {
				top++
			} else {
				bottom++
			}
			if buf.Edge(x, y) {
				if counts[c] == 0 {
					order = append(order, c)
				}
				counts[c]++
			}
		}
	}
	return Highlights{
		Present:   len(order) > 0,
		Color:     dominant(counts, order, colorspace.White),
		Direction: lightDirection(left, right, top, bottom),
	}
}

func lightDirection(left, right, top, bottom int) string {
	if left+right == 0 {
		return style.LightTopLeft
	}
	fromTop := float64(top) > float64(bottom)*lightBias
	fromLeft := float64(left) > float64(right)*lightBias
	fromRight := float64(right) > float64(left)*lightBias
	switch {
	case fromTop && fromLeft:
		return style.LightTopLeft
	case fromTop && fromRight:
		return style.LightTopRight
	case fromTop:
		return style.LightTop
	case fromLeft:
		return style.LightLeft
	case fromRight:
		return style.LightRight
	default:
		return style.LightCenter
	}
}

// CountColors returns the number of distinct opaque colors.
func CountColors(buf *pixel.Buffer) int {
	seen := make(map[colorspace.Color]struct{})
	for y := 0; y < buf.Height; y++ {
		for x := 0; x < buf.Width; x++ {
			if c, ok := buf.ColorAt(x, y); ok {
				seen[c] = struct{}{}
			}
		}
	}
	return len(seen)
}

// DetectStyle runs every detector and assembles the style block.
func DetectStyle(buf *pixel.Buffer) style.Style {
	outline, thickness := DetectOutline(buf)
	hl := DetectHighlights(buf)
	return style.Style{
		OutlineColor:     outline,
		OutlineThickness: thickness,
		ShadingMethod:    DetectShading(buf),
		Dithering:        DetectDithering(buf),
		ColorCount:       CountColors(buf),
		HasHighlights:    hl.Present,
		HighlightColor:   hl.Color,
		LightDirection:   hl.Direction,
	}
}

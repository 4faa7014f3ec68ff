package generate

import (
	"image/color"
	"math"
	"slices"

	"github.com/matzehuels/spritestyle/pkg/colorspace"
	"github.com/matzehuels/spritestyle/pkg/material"
	"github.com/matzehuels/spritestyle/pkg/pixel"
	"github.com/matzehuels/spritestyle/pkg/style"
)

// Tones is the five-tone ramp derived from one base color.
type Tones struct {
	Light2 colorspace.Color
	Light1 colorspace.Color
	Base   colorspace.Color
	Dark1  colorspace.Color
	Dark2  colorspace.Color
}

// Levels returns the tones ordered from lightest to darkest.
func (t Tones) Levels() [5]colorspace.Color {
	return [5]colorspace.Color{t.Light2, t.Light1, t.Base, t.Dark1, t.Dark2}
}

// Gradient returns the GradientSteps blends between Light2 and Dark2 that
// ApplyGradient paints, ordered from lightest to darkest.
func (t Tones) Gradient() [GradientSteps]colorspace.Color {
	var out [GradientSteps]colorspace.Color
	for i := range out {
		out[i] = colorspace.Blend(t.Dark2, t.Light2, float64(GradientSteps-1-i)/(GradientSteps-1))
	}
	return out
}

// Ladder returns the colors a region shaded with method is painted from,
// lightest first: the gradient blends for gradient shading, the ramp
// otherwise.
func (t Tones) Ladder(method string) []colorspace.Color {
	if method == style.ShadingGradient {
		grad := t.Gradient()
		return grad[:]
	}
	levels := t.Levels()
	return levels[:]
}

// Step moves c by n tones along the ramp (positive is darker) and clamps at
// the ends.
func (t Tones) Step(c colorspace.Color, n int) colorspace.Color {
	levels := t.Levels()
	return StepAlong(levels[:], c, n)
}

// StepAlong moves c by n places along ladder (positive is darker) and clamps
// at the ends. A color not on the ladder is first snapped to the nearest
// rung, so the result is always a ladder color.
func StepAlong(ladder []colorspace.Color, c colorspace.Color, n int) colorspace.Color {
	if len(ladder) == 0 {
		return c
	}
	i := slices.Index(ladder, c)
	if i < 0 {
		i = 0
		for j, l := range ladder {
			if colorspace.Distance(c, l) < colorspace.Distance(c, ladder[i]) {
				i = j
			}
		}
	}
	return ladder[max(0, min(len(ladder)-1, i+n))]
}

// Coefficients are a material's highlight and shadow strengths.
type Coefficients struct {
	Highlight float64
	Shadow    float64
}

// MaterialCoefficients returns the shading strengths for m.
func MaterialCoefficients(m material.Material) Coefficients {
	switch m {
	case material.Metal:
		return Coefficients{0.40, 0.40}
	case material.Cloth:
		return Coefficients{0.20, 0.30}
	case material.Leather:
		return Coefficients{0.25, 0.35}
	case material.Skin:
		return Coefficients{0.15, 0.25}
	case material.Wood:
		return Coefficients{0.20, 0.35}
	case material.Glow:
		return Coefficients{0.30, 0.20}
	case material.Accent:
		return Coefficients{0.25, 0.30}
	default:
		return Coefficients{0.20, 0.30}
	}
}

// GeneratePalette derives the five-tone ramp for base using m's coefficients.
func GeneratePalette(base colorspace.Color, m material.Material) Tones {
	k := MaterialCoefficients(m)
	return Tones{
		Light2: colorspace.Lighten(base, min(1, 1.5*k.Highlight)),
		Light1: colorspace.Lighten(base, k.Highlight),
		Base:   base,
		Dark1:  colorspace.Darken(base, k.Shadow),
		Dark2:  colorspace.Darken(base, 1.5*k.Shadow),
	}
}

// lightAnchor returns the light source position inside a w×h box.
func lightAnchor(w, h int, direction string) (float64, float64) {
	right, bottom := float64(w-1), float64(h-1)
	switch direction {
	case style.LightTopRight:
		return right, 0
	case style.LightTop:
		return right / 2, 0
	case style.LightLeft:
		return 0, bottom / 2
	case style.LightRight:
		return right, bottom / 2
	case style.LightCenter:
		return right / 2, bottom / 2
	default:
		return 0, 0
	}
}

// LightFactor returns the brightness in [0,1] of (x,y) inside a w×h box: 1 at
// the light anchor, falling linearly to 0 at the farthest corner.
func LightFactor(x, y, w, h int, direction string) float64 {
	ax, ay := lightAnchor(w, h, direction)
	var far float64
	for _, c := range [4][2]float64{{0, 0}, {float64(w - 1), 0}, {0, float64(h - 1)}, {float64(w - 1), float64(h - 1)}} {
		far = max(far, math.Hypot(c[0]-ax, c[1]-ay))
	}
	if far == 0 {
		return 1
	}
	d := math.Hypot(float64(x)-ax, float64(y)-ay)
	return max(0, min(1, 1-d/far))
}

// CelTone buckets a light factor into one of the five tones.
func CelTone(t Tones, f float64) colorspace.Color {
	switch {
	case f > 0.7:
		return t.Light2
	case f > 0.5:
		return t.Light1
	case f > 0.3:
		return t.Base
	case f > 0.15:
		return t.Dark1
	default:
		return t.Dark2
	}
}

// ApplyCelShade fills r with banded tones lit from direction.
func ApplyCelShade(buf *pixel.Buffer, r pixel.Rect, t Tones, direction string) {
	for y := 0; y < r.H; y++ {
		for x := 0; x < r.W; x++ {
			buf.SetColor(r.X+x, r.Y+y, CelTone(t, LightFactor(x, y, r.W, r.H, direction)))
		}
	}
}

// ApplyCelShadeCircle fills a disc with banded tones. The light factor is
// taken over the disc's bounding square.
func ApplyCelShadeCircle(buf *pixel.Buffer, cx, cy, radius int, t Tones, direction string) {
	if radius < 0 {
		return
	}
	size := 2*radius + 1
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			if dx*dx+dy*dy > radius*radius {
				continue
			}
			f := LightFactor(dx+radius, dy+radius, size, size, direction)
			buf.SetColor(cx+dx, cy+dy, CelTone(t, f))
		}
	}
}

// GradientSteps is the number of distinct blend steps a gradient uses.
const GradientSteps = 6

// ApplyGradient fills r with a stepped blend from Dark2 to Light2.
func ApplyGradient(buf *pixel.Buffer, r pixel.Rect, t Tones, direction string) {
	grad := t.Gradient()
	for y := 0; y < r.H; y++ {
		for x := 0; x < r.W; x++ {
			f := LightFactor(x, y, r.W, r.H, direction)
			step := int(math.Round(f * (GradientSteps - 1)))
			buf.SetColor(r.X+x, r.Y+y, grad[GradientSteps-1-step])
		}
	}
}

// ApplyFlat fills r with the base tone.
func ApplyFlat(buf *pixel.Buffer, r pixel.Rect, t Tones) {
	buf.FillRect(r, t.Base)
}

// Shade fills r with the shading method named by a style block.
func Shade(buf *pixel.Buffer, r pixel.Rect, t Tones, method, direction string) {
	switch method {
	case style.ShadingGradient:
		ApplyGradient(buf, r, t, direction)
	case style.ShadingFlat:
		ApplyFlat(buf, r, t)
	default:
		ApplyCelShade(buf, r, t, direction)
	}
}

// ShadeCircle fills a disc with the shading method named by a style block.
func ShadeCircle(buf *pixel.Buffer, cx, cy, radius int, t Tones, method, direction string) {
	switch method {
	case style.ShadingCel, "":
		ApplyCelShadeCircle(buf, cx, cy, radius, t, direction)
		return
	}
	disc := pixel.New(2*radius+1, 2*radius+1)
	disc.FillCircle(radius, radius, radius, colorspace.White)
	shaded := pixel.New(disc.Width, disc.Height)
	Shade(shaded, pixel.Rect{W: disc.Width, H: disc.Height}, t, method, direction)
	disc.Each(func(x, y int, _ color.NRGBA) {
		c, _ := shaded.ColorAt(x, y)
		buf.SetColor(cx-radius+x, cy-radius+y, c)
	})
}

// Highlight paints c on the opaque edge pixels inside r that face the light.
func Highlight(buf *pixel.Buffer, r pixel.Rect, c colorspace.Color, direction string) {
	dx, dy := lightOffset(direction)
	if dx == 0 && dy == 0 {
		return
	}
	var hits []pixel.Point
	for y := r.Y; y < r.Y+r.H; y++ {
		for x := r.X; x < r.X+r.W; x++ {
			if !buf.Opaque(x, y) {
				continue
			}
			if (dx != 0 && !buf.Opaque(x+dx, y)) || (dy != 0 && !buf.Opaque(x, y+dy)) {
				hits = append(hits, pixel.Point{X: x, Y: y})
			}
		}
	}
	for _, p := range hits {
		buf.SetColor(p.X, p.Y, c)
	}
}

// lightOffset returns the unit step toward the light.
func lightOffset(direction string) (int, int) {
	switch direction {
	case style.LightTopRight:
		return 1, -1
	case style.LightTop:
		return 0, -1
	case style.LightLeft:
		return -1, 0
	case style.LightRight:
		return 1, 0
	case style.LightCenter:
		return 0, 0
	default:
		return -1, -1
	}
}

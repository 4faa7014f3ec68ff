package qa

import (
	"fmt"
	"io"
	"math"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/spritestyle/pkg/analysis"
	"github.com/matzehuels/spritestyle/pkg/colorspace"
	"github.com/matzehuels/spritestyle/pkg/generate"
	"github.com/matzehuels/spritestyle/pkg/pixel"
	"github.com/matzehuels/spritestyle/pkg/style"
)

// DefaultMaxColors is the color budget when a Validator sets none.
const DefaultMaxColors = 32

// Heuristic limits.
const (
	OutlineDistance  = 48.0 // RGB distance from the guide's outline color
	OutlineLuminance = 50.0 // anything darker counts as outline
	OutlineCoverage  = 0.5  // share of a silhouette edge row
	SpanTolerance    = 0.10 // relative silhouette height error
	LevelTolerance   = 1
)

// Guide describes what a sprite was generated from.
type Guide struct {
	Style *style.Config
	// Textured is set when surface textures were applied. A flat fill with
	// a weave shows up to three tones.
	Textured bool
	// Item is set for standalone item sprites, which have no figure to
	// measure or torso to sample.
	Item bool
	// Palettes are the palettes the generator drew from before the style's
	// own palettes were applied. Nil means the built-in palettes.
	Palettes *generate.PaletteManager
}

// Report is the outcome of one validation.
type Report struct {
	ID      string   `json:"id"`
	Valid   bool     `json:"valid"`
	Issues  []string `json:"issues"`
	Details Details  `json:"details"`
}

// Details holds the per-check results.
type Details struct {
	Proportions ProportionDetail `json:"proportions"`
	ColorCount  ColorDetail      `json:"colorCount"`
	Outline     OutlineDetail    `json:"outline"`
	Shading     ShadingDetail    `json:"shading"`
	Clipping    ClippingDetail   `json:"clipping"`
}

// ProportionDetail reports the layout ratios and the silhouette span.
// Measured holds the proportions recovered by region growing; it is
// informational.
type ProportionDetail struct {
	Ratios   map[string]float64 `json:"ratios"`
	Measured map[string]float64 `json:"measured,omitempty"`
	Span     int                `json:"span"`
	Expected int                `json:"expected"`
	Issues   []string           `json:"issues"`
}

// ColorDetail reports the distinct opaque color count.
type ColorDetail struct {
	Count  int      `json:"count"`
	Max    int      `json:"max"`
	Issues []string `json:"issues"`
}

// OutlineDetail reports outline coverage of the top and bottom silhouette rows.
type OutlineDetail struct {
	Color          colorspace.Color `json:"color"`
	Thickness      int              `json:"thickness"`
	TopCoverage    float64          `json:"topCoverage"`
	BottomCoverage float64          `json:"bottomCoverage"`
	Issues         []string         `json:"issues"`
}

// ShadingDetail reports the tone levels found in the torso sample.
type ShadingDetail struct {
	Method string     `json:"method"`
	Levels int        `json:"levels"`
	Min    int        `json:"min"`
	Max    int        `json:"max,omitempty"`
	Sample pixel.Rect `json:"sample"`
	Issues []string   `json:"issues"`
}

// ClippingDetail reports whether the sprite's center is filled.
type ClippingDetail struct {
	Center pixel.Point `json:"center"`
	Opaque bool        `json:"opaque"`
	Issues []string    `json:"issues"`
}

// Validator runs the checks.
type Validator struct {
	MaxColors int
	Logger    *log.Logger
}

// NewValidator returns a validator with the default color budget.
func NewValidator(logger *log.Logger) *Validator {
	return &Validator{MaxColors: DefaultMaxColors, Logger: logger}
}

// Validate checks buf against guide. A nil guide style means style.Default().
func (v *Validator) Validate(buf *pixel.Buffer, guide Guide) *Report {
	logger := v.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	maxColors := v.MaxColors
	if maxColors <= 0 {
		maxColors = DefaultMaxColors
	}
	cfg := guide.Style
	if cfg == nil {
		cfg = style.Default()
	}

	r := &Report{ID: uuid.NewString(), Issues: []string{}}
	r.Details.Proportions = checkProportions(buf, cfg.Style.OutlineThickness, guide.Item)
	r.Details.ColorCount = checkColors(buf, maxColors)
	r.Details.Outline = checkOutline(buf, cfg.Style)
	r.Details.Shading = checkShading(buf, cfg, guide)
	r.Details.Clipping = checkClipping(buf)

	collect := func(check string, issues []string) {
		for _, s := range issues {
			r.Issues = append(r.Issues, check+": "+s)
		}
	}
	collect("proportions", r.Details.Proportions.Issues)
	collect("colors", r.Details.ColorCount.Issues)
	collect("outline", r.Details.Outline.Issues)
	collect("shading", r.Details.Shading.Issues)
	collect("clipping", r.Details.Clipping.Issues)
	r.Valid = len(r.Issues) == 0

	logger.Debug("validated sprite", "id", r.ID, "valid", r.Valid, "issues", len(r.Issues))
	return r
}

func checkProportions(buf *pixel.Buffer, thickness int, item bool) ProportionDetail {
	d := ProportionDetail{Issues: []string{}}
	bounds, ok := buf.OpaqueBounds()
	if ok {
		d.Span = bounds.H
	}
	if item {
		return d
	}

	pm := generate.Layout(buf.Width, buf.Height, thickness)
	layout := pm.ValidateProportions()
	d.Ratios = layout.Ratios
	d.Issues = append(d.Issues, layout.Issues...)

	m := analysis.Measure(analysis.Segment(buf, analysis.DefaultRegionThreshold), buf.Width, buf.Height)
	d.Measured = analysis.Proportions(m, buf.Height)

	d.Expected = pm.FigureBounds().H + 2*max(thickness, 0)
	if !ok {
		d.Issues = append(d.Issues, "sprite has no opaque pixels")
		return d
	}
	if diff := math.Abs(float64(d.Span - d.Expected)); diff > SpanTolerance*float64(d.Expected) {
		d.Issues = append(d.Issues, fmt.Sprintf("silhouette spans %d rows, layout expects %d", d.Span, d.Expected))
	}
	return d
}

func checkColors(buf *pixel.Buffer, maxColors int) ColorDetail {
	d := ColorDetail{Count: analysis.CountColors(buf), Max: maxColors, Issues: []string{}}
	if d.Count > maxColors {
		d.Issues = append(d.Issues, fmt.Sprintf("%d colors exceeds the budget of %d", d.Count, maxColors))
	}
	return d
}

// nearOutline reports whether c reads as outline for the guide color.
func nearOutline(c, outline colorspace.Color) bool {
	return colorspace.Distance(c, outline) <= OutlineDistance || colorspace.Luminance(c) < OutlineLuminance
}

// rowCoverage returns the share of opaque pixels in row y that are outline.
func rowCoverage(buf *pixel.Buffer, y int, outline colorspace.Color) float64 {
	var opaque, hits int
	for x := range buf.Width {
		c, ok := buf.ColorAt(x, y)
		if !ok {
			continue
		}
		opaque++
		if nearOutline(c, outline) {
			hits++
		}
	}
	if opaque == 0 {
		return 0
	}
	return float64(hits) / float64(opaque)
}

func checkOutline(buf *pixel.Buffer, st style.Style) OutlineDetail {
	d := OutlineDetail{Color: st.OutlineColor, Thickness: st.OutlineThickness, Issues: []string{}}
	if st.OutlineThickness <= 0 {
		return d
	}
	bounds, ok := buf.OpaqueBounds()
	if !ok {
		d.Issues = append(d.Issues, "no silhouette to outline")
		return d
	}
	d.TopCoverage = rowCoverage(buf, bounds.Y, st.OutlineColor)
	d.BottomCoverage = rowCoverage(buf, bounds.Y+bounds.H-1, st.OutlineColor)
	if d.TopCoverage < OutlineCoverage {
		d.Issues = append(d.Issues, fmt.Sprintf("outline covers %.0f%% of the top edge, want at least %.0f%%", d.TopCoverage*100, OutlineCoverage*100))
	}
	if d.BottomCoverage < OutlineCoverage {
		d.Issues = append(d.Issues, fmt.Sprintf("outline covers %.0f%% of the bottom edge, want at least %.0f%%", d.BottomCoverage*100, OutlineCoverage*100))
	}
	return d
}

// ExpectedLevels returns the inclusive range of tone levels a shading method
// leaves in the torso sample, tolerance included. A hi of 0 means no upper bound.
func ExpectedLevels(method string, textured bool) (lo, hi int) {
	switch method {
	case style.ShadingFlat:
		if textured {
			return 1, 3 + LevelTolerance
		}
		return 1, 1 + LevelTolerance
	case style.ShadingGradient:
		return 3 - LevelTolerance, 0
	default:
		return 5 - LevelTolerance, 5 + LevelTolerance
	}
}

// TorsoSample returns the part of the torso that no other body part covers
// in the canonical layout: below the head and clear of the arms.
func TorsoSample(width, height, thickness int) pixel.Rect {
	pm := generate.Layout(width, height, thickness)
	torso, head := pm.TorsoBox(), pm.HeadBox()
	inset := max(generate.ArmOverlap, int(math.Ceil(0.2*float64(torso.W))))
	top := head.Y + head.H
	return pixel.Rect{
		X: torso.X + inset,
		Y: top,
		W: torso.W - 2*inset,
		H: torso.Y + torso.H - top,
	}
}

// bucket reduces each channel of c to five bits.
func bucket(c colorspace.Color) colorspace.Color {
	cr, cg, cb := c.RGB()
	return colorspace.FromRGB(cr>>3, cg>>3, cb>>3)
}

// CountLevels counts distinct coarse color buckets among the opaque pixels of
// r. Channels are reduced to five bits, so colors that agree in the top five
// bits of every channel are one level.
func CountLevels(buf *pixel.Buffer, r pixel.Rect) int {
	seen := make(map[colorspace.Color]bool)
	for y := r.Y; y < r.Y+r.H; y++ {
		for x := r.X; x < r.X+r.W; x++ {
			if c, ok := buf.ColorAt(x, y); ok {
				seen[bucket(c)] = true
			}
		}
	}
	return len(seen)
}

// ProducibleLevels returns the fewest coarse buckets a torso can show under
// method, over every base color the generator may pick for a torso material.
// Light or dark bases squeeze neighboring tones into one bucket. palettes may
// be nil.
func ProducibleLevels(cfg *style.Config, palettes *generate.PaletteManager, method string) int {
	if method == style.ShadingFlat {
		return 1
	}
	if palettes == nil {
		palettes = generate.NewPaletteManager()
	}
	palettes = palettes.Clone()
	palettes.FromStyle(cfg)

	fewest := 0
	for _, m := range generate.TorsoMaterials() {
		for _, base := range palettes.Candidates(m) {
			seen := make(map[colorspace.Color]bool)
			for _, c := range generate.GeneratePalette(base, m).Ladder(method) {
				seen[bucket(c)] = true
			}
			if fewest == 0 || len(seen) < fewest {
				fewest = len(seen)
			}
		}
	}
	return fewest
}

func checkShading(buf *pixel.Buffer, cfg *style.Config, guide Guide) ShadingDetail {
	st := cfg.Style
	d := ShadingDetail{Method: st.ShadingMethod, Issues: []string{}}
	if guide.Item {
		return d
	}
	d.Min, d.Max = ExpectedLevels(st.ShadingMethod, guide.Textured)
	if n := ProducibleLevels(cfg, guide.Palettes, st.ShadingMethod); n-LevelTolerance < d.Min {
		d.Min = max(n-LevelTolerance, 1)
	}
	d.Sample = TorsoSample(buf.Width, buf.Height, st.OutlineThickness)
	if d.Sample.Empty() {
		d.Issues = append(d.Issues, "sprite too small to sample the torso")
		return d
	}
	d.Levels = CountLevels(buf, d.Sample)
	if d.Levels < d.Min || (d.Max > 0 && d.Levels > d.Max) {
		want := fmt.Sprintf("%d-%d", d.Min, d.Max)
		if d.Max == 0 {
			want = fmt.Sprintf("at least %d", d.Min)
		}
		d.Issues = append(d.Issues, fmt.Sprintf("torso shows %d tone levels, %s shading wants %s", d.Levels, st.ShadingMethod, want))
	}
	return d
}

func checkClipping(buf *pixel.Buffer) ClippingDetail {
	d := ClippingDetail{Center: pixel.Point{X: buf.Width / 2, Y: buf.Height / 2}, Issues: []string{}}
	d.Opaque = buf.Opaque(d.Center.X, d.Center.Y)
	if !d.Opaque {
		d.Issues = append(d.Issues, fmt.Sprintf("center pixel (%d,%d) is transparent", d.Center.X, d.Center.Y))
	}
	return d
}

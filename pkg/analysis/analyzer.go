// Package analysis extracts a style config from reference sprites: a
// median-cut palette, outline color and thickness, shading method, dithering,
// highlight placement, body proportions and equipment.
package analysis

import (
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/spritestyle/pkg/colorspace"
	"github.com/matzehuels/spritestyle/pkg/material"
	"github.com/matzehuels/spritestyle/pkg/pixel"
	"github.com/matzehuels/spritestyle/pkg/style"
)

// DefaultMaxColors is the palette size used when Options.MaxColors is unset.
const DefaultMaxColors = 16

// MergeStrategy selects how the style block is chosen when several
// references are merged.
type MergeStrategy string

const (
	// MergeFirst keeps the first reference's style block.
	MergeFirst MergeStrategy = "first"
	// MergeMajority votes each style field across references. Ties go to the
	// earliest reference holding a tied value.
	MergeMajority MergeStrategy = "majority"
)

// ValidMergeStrategies lists the accepted strategy names.
var ValidMergeStrategies = map[MergeStrategy]bool{
	MergeFirst:    true,
	MergeMajority: true,
}

// ErrNoReferences is returned when AnalyzeMultiple receives no buffers.
var ErrNoReferences = errors.New("no reference images")

// Options configures analysis.
type Options struct {
	MaxColors int           // Palette size (default: 16)
	Threshold float64       // Region-growing RGB distance (default: 40)
	Merge     MergeStrategy // Multi-reference style merge (default: first)
	Logger    *log.Logger   // Debug output (optional)
}

// WithDefaults returns a copy with zero fields replaced by defaults.
func (o Options) WithDefaults() Options {
	if o.MaxColors <= 0 {
		o.MaxColors = DefaultMaxColors
	}
	if o.Threshold <= 0 {
		o.Threshold = DefaultRegionThreshold
	}
	if o.Merge == "" {
		o.Merge = MergeFirst
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard)
	}
	return o
}

// AnalyzeReference extracts a style config from one reference sprite.
// Degenerate input (empty or fully transparent) yields a config with an empty
// palette and fallback proportions rather than an error.
func AnalyzeReference(buf *pixel.Buffer, opts Options) *style.Config {
	opts = opts.WithDefaults()

	cfg := style.New()
	palette := ExtractPalette(buf, opts.MaxColors)
	cfg.Palette = material.GroupByMaterial(palette)

	regions := Segment(buf, opts.Threshold)
	m := Measure(regions, buf.Width, buf.Height)
	cfg.Proportions = Proportions(m, buf.Height)

	cfg.Style = DetectStyle(buf)
	cfg.Equipment = DetectEquipment(buf, regions)

	opts.Logger.Debug("analyzed reference",
		"size", fmt.Sprintf("%dx%d", buf.Width, buf.Height),
		"palette", len(palette),
		"regions", len(regions),
		"shading", cfg.Style.ShadingMethod,
		"light", cfg.Style.LightDirection)
	return cfg
}

// AnalyzeMultiple analyzes each reference and merges the results. Palettes
// are unioned per material, proportions averaged over the references that
// report them, and equipment slots kept only when some reference has them
// present. The style block follows opts.Merge.
func AnalyzeMultiple(bufs []*pixel.Buffer, opts Options) (*style.Config, error) {
	if len(bufs) == 0 {
		return nil, ErrNoReferences
	}
	opts = opts.WithDefaults()
	if !ValidMergeStrategies[opts.Merge] {
		return nil, fmt.Errorf("invalid merge strategy: %q (must be first or majority)", opts.Merge)
	}

	configs := make([]*style.Config, len(bufs))
	for i, b := range bufs {
		configs[i] = AnalyzeReference(b, opts)
	}
	merged := Merge(configs, opts.Merge)
	opts.Logger.Debug("merged references", "count", len(configs), "strategy", opts.Merge)
	return merged, nil
}

// Merge combines already-analyzed configs. An empty slice yields style.New().
func Merge(configs []*style.Config, strategy MergeStrategy) *style.Config {
	out := style.New()
	if len(configs) == 0 {
		return out
	}

	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, c := range configs {
		for k, p := range c.Palette {
			out.Palette[k] = out.Palette[k].Union(p)
		}
		for k, v := range c.Proportions {
			sums[k] += v
			counts[k]++
		}
		for k, e := range c.Equipment {
			if e.Present {
				if _, ok := out.Equipment[k]; !ok {
					out.Equipment[k] = e
				}
			}
		}
	}
	for k, s := range sums {
		out.Proportions[k] = round2(s / float64(counts[k]))
	}

	if strategy == MergeMajority {
		out.Style = majorityStyle(configs)
	} else {
		out.Style = configs[0].Style
	}
	return out
}

func majorityStyle(configs []*style.Config) style.Style {
	styles := make([]style.Style, len(configs))
	for i, c := range configs {
		styles[i] = c.Style
	}
	return style.Style{
		OutlineColor:     vote(styles, func(s style.Style) colorspace.Color { return s.OutlineColor }),
		OutlineThickness: vote(styles, func(s style.Style) int { return s.OutlineThickness }),
		ShadingMethod:    vote(styles, func(s style.Style) string { return s.ShadingMethod }),
		Dithering:        vote(styles, func(s style.Style) bool { return s.Dithering }),
		ColorCount:       vote(styles, func(s style.Style) int { return s.ColorCount }),
		HasHighlights:    vote(styles, func(s style.Style) bool { return s.HasHighlights }),
		HighlightColor:   vote(styles, func(s style.Style) colorspace.Color { return s.HighlightColor }),
		LightDirection:   vote(styles, func(s style.Style) string { return s.LightDirection }),
	}
}

// vote returns the most common field value, preferring the earliest on ties.
func vote[T comparable](styles []style.Style, field func(style.Style) T) T {
	counts := make(map[T]int)
	var order []T
	for _, s := range styles {
		v := field(s)
		if counts[v] == 0 {
			order = append(order, v)
		}
		counts[v]++
	}
	best := order[0]
	for _, v := range order[1:] {
		if counts[v] > counts[best] {
			best = v
		}
	}
	return best
}

// Materials returns the material names present in cfg's palette, sorted.
func Materials(cfg *style.Config) []string {
	return slices.Sorted(maps.Keys(cfg.Palette))
}

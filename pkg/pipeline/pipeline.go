// Package pipeline provides the core sprite pipeline for spritestyle.
//
// This package implements the complete analyze → generate → validate → vary
// pipeline used by the CLI and the API server. Keeping it in one place means
// both entry points apply the same defaults, cache keys and hooks.
//
// # Architecture
//
// The pipeline consists of four stages:
//
//  1. Analyze: Extract a style config from one or more reference sprites
//  2. Generate: Draw a character or item sprite in that style
//  3. Validate: Check the sprite against the style (QA report)
//  4. Vary: Derive seeded variants of the sprite
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Class:      "mage",
//	    Variations: 3,
//	}
//	result, err := runner.Execute(ctx, refs, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	png := result.SpriteData
//
// Run individual stages:
//
//	cfg, err := runner.Analyze(ctx, refs, opts)
//	sprite, err := runner.Generate(ctx, cfg, opts)
//	report, err := runner.Validate(ctx, sprite, cfg, opts)
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/spritestyle/pkg/analysis"
	"github.com/matzehuels/spritestyle/pkg/cache"
	"github.com/matzehuels/spritestyle/pkg/errors"
	"github.com/matzehuels/spritestyle/pkg/generate"
	spriteio "github.com/matzehuels/spritestyle/pkg/io"
	"github.com/matzehuels/spritestyle/pkg/pixel"
	"github.com/matzehuels/spritestyle/pkg/qa"
	"github.com/matzehuels/spritestyle/pkg/style"
	"github.com/matzehuels/spritestyle/pkg/variation"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultMaxColors is the palette size extracted from references.
	DefaultMaxColors = analysis.DefaultMaxColors

	// DefaultValidateColors is the color budget of the QA check. It is
	// looser than DefaultMaxColors because shading ramps add tones.
	DefaultValidateColors = qa.DefaultMaxColors

	// DefaultWidth is the default sprite width in pixels.
	DefaultWidth = generate.DefaultWidth

	// DefaultHeight is the default sprite height in pixels.
	DefaultHeight = generate.DefaultHeight

	// DefaultSeed is the default random seed for reproducibility.
	DefaultSeed = uint32(42)

	// DefaultVariations is the number of variants Execute produces.
	DefaultVariations = 4

	// DefaultMergeStrategy is the default multi-reference merge.
	DefaultMergeStrategy = string(analysis.MergeFirst)

	// DefaultClass is the default character class.
	DefaultClass = generate.ClassWarrior

	// DefaultColorVariation is the default per-pixel color jitter.
	DefaultColorVariation = 0.1

	// DefaultSizeVariation is the default per-variant size jitter.
	DefaultSizeVariation = 0.1
)

// Format constants for sprite output.
const (
	FormatPNG  = spriteio.FormatPNG
	FormatWebP = spriteio.FormatWebP
)

// DefaultFormat is the default sprite encoding.
const DefaultFormat = FormatPNG

// ValidFormats is the set of supported sprite encodings.
var ValidFormats = map[string]bool{
	FormatPNG:  true,
	FormatWebP: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the sprite pipeline.
// This struct supports JSON for API requests and TOML for project files.
type Options struct {
	// Analyze options
	MaxColors int    `json:"max_colors,omitempty" toml:"max_colors"`
	Merge     string `json:"merge,omitempty" toml:"merge"`

	// Generate options
	Class    string `json:"class,omitempty" toml:"class"`
	Item     string `json:"item,omitempty" toml:"item"`
	Width    int    `json:"width,omitempty" toml:"width"`
	Height   int    `json:"height,omitempty" toml:"height"`
	Seed     uint32 `json:"seed,omitempty" toml:"seed"`
	Textures bool   `json:"textures,omitempty" toml:"textures"`
	Format   string `json:"format,omitempty" toml:"format"`

	// Validate options
	ValidateColors int `json:"validate_colors,omitempty" toml:"validate_colors"`

	// Vary options
	Variations         int     `json:"variations,omitempty" toml:"variations"`
	ColorVariation     float64 `json:"color_variation,omitempty" toml:"color_variation"`
	SizeVariation      float64 `json:"size_variation,omitempty" toml:"size_variation"`
	EquipmentVariation bool    `json:"equipment_variation,omitempty" toml:"equipment_variation"`
	PoseVariation      bool    `json:"pose_variation,omitempty" toml:"pose_variation"`

	// Refresh bypasses cache reads; results are still written.
	Refresh bool `json:"refresh,omitempty" toml:"-"`

	// Runtime options (not serialized)
	Logger   *log.Logger              `json:"-" toml:"-"`
	Palettes *generate.PaletteManager `json:"-" toml:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Style is the analyzed (or merged) style config.
	Style *style.Config

	// StyleHash is the content hash of Style.
	StyleHash string

	// Sprite is the generated sprite.
	Sprite *pixel.Buffer

	// SpriteData is Sprite encoded in Options.Format.
	SpriteData []byte

	// Report is the QA report for Sprite.
	Report *qa.Report

	// Variants are the seeded variations of Sprite.
	Variants []*pixel.Buffer

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	References   int
	ColorCount   int
	Issues       int
	AnalyzeTime  time.Duration
	GenerateTime time.Duration
	ValidateTime time.Duration
	VaryTime     time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	AnalyzeHit  bool // Whether the style came from cache
	GenerateHit bool // Whether the sprite came from cache
	ValidateHit bool // Whether the report came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: png, webp)", format)
	}
	return nil
}

// ValidateMerge checks that a merge strategy is valid.
func ValidateMerge(merge string) error {
	if !analysis.ValidMergeStrategies[analysis.MergeStrategy(merge)] {
		return errors.New(errors.ErrCodeInvalidInput, "invalid merge: %q (must be one of: first, majority)", merge)
	}
	return nil
}

// ValidateFraction checks a variation amount in [0, 1).
func ValidateFraction(name string, v float64) error {
	if v < 0 || v >= 1 {
		return errors.New(errors.ErrCodeInvalidInput, "invalid %s: %.2f (must be in [0, 1))", name, v)
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks every stage's fields and applies defaults.
// This method is idempotent - calling it multiple times has the same effect
// as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForAnalyze(); err != nil {
		return err
	}
	if err := o.ValidateForGenerate(); err != nil {
		return err
	}
	if err := o.ValidateForVary(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForAnalyze validates and sets defaults for analysis.
func (o *Options) ValidateForAnalyze() error {
	if o.MaxColors == 0 {
		o.MaxColors = DefaultMaxColors
	}
	if o.Merge == "" {
		o.Merge = DefaultMergeStrategy
	}
	o.setLogger()
	if err := errors.ValidateMaxColors(o.MaxColors); err != nil {
		return err
	}
	return ValidateMerge(o.Merge)
}

// SetGenerateDefaults sets default values for generation and validation.
func (o *Options) SetGenerateDefaults() {
	if o.Class == "" {
		o.Class = DefaultClass
	}
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.Seed == 0 {
		o.Seed = DefaultSeed
	}
	if o.Format == "" {
		o.Format = DefaultFormat
	}
	if o.ValidateColors == 0 {
		o.ValidateColors = DefaultValidateColors
	}
	o.setLogger()
}

// ValidateForGenerate validates and sets defaults for generation.
func (o *Options) ValidateForGenerate() error {
	o.SetGenerateDefaults()
	if err := o.Descriptor().Validate(); err != nil {
		return err
	}
	if err := errors.ValidateMaxColors(o.ValidateColors); err != nil {
		return err
	}
	return ValidateFormat(o.Format)
}

// SetVaryDefaults sets default values for variation. A negative
// Variations is kept and means no variants.
func (o *Options) SetVaryDefaults() {
	if o.Variations == 0 {
		o.Variations = DefaultVariations
	}
	if o.ColorVariation == 0 {
		o.ColorVariation = DefaultColorVariation
	}
	if o.SizeVariation == 0 {
		o.SizeVariation = DefaultSizeVariation
	}
	if o.Seed == 0 {
		o.Seed = DefaultSeed
	}
	o.setLogger()
}

// ValidateForVary validates and sets defaults for variation.
func (o *Options) ValidateForVary() error {
	o.SetVaryDefaults()
	if err := ValidateFraction("color_variation", o.ColorVariation); err != nil {
		return err
	}
	return ValidateFraction("size_variation", o.SizeVariation)
}

func (o *Options) setLogger() {
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// IsItem reports whether the options describe a standalone item sprite.
func (o *Options) IsItem() bool {
	return o.Item != ""
}

// Descriptor returns what the generator should draw.
func (o *Options) Descriptor() generate.Descriptor {
	return generate.Descriptor{
		Class:    o.Class,
		Item:     o.Item,
		Width:    o.Width,
		Height:   o.Height,
		Textures: o.Textures,
	}
}

// VariationConfig returns the variation settings.
func (o *Options) VariationConfig() variation.Config {
	return variation.Config{
		ColorVariation:     o.ColorVariation,
		SizeVariation:      o.SizeVariation,
		EquipmentVariation: o.EquipmentVariation,
		PoseVariation:      o.PoseVariation,
		Seed:               o.Seed,
	}
}

// AnalysisKeyOpts returns cache key options for analysis.
func (o *Options) AnalysisKeyOpts() cache.AnalysisKeyOpts {
	return cache.AnalysisKeyOpts{
		MaxColors: o.MaxColors,
		Merge:     o.Merge,
	}
}

// SpriteKeyOpts returns cache key options for a generated sprite.
func (o *Options) SpriteKeyOpts() cache.SpriteKeyOpts {
	return cache.SpriteKeyOpts{
		Class:    o.Class,
		Item:     o.Item,
		Width:    o.Width,
		Height:   o.Height,
		Seed:     o.Seed,
		Textures: o.Textures,
		Format:   o.Format,
	}
}

// ReportKeyOpts returns cache key options for a QA report.
func (o *Options) ReportKeyOpts(styleHash string) cache.ReportKeyOpts {
	return cache.ReportKeyOpts{
		MaxColors: o.ValidateColors,
		StyleHash: styleHash,
		Textured:  o.Textures,
		Item:      o.IsItem(),
	}
}

// Guide returns the QA guide for a sprite generated with these options.
func (o *Options) Guide(cfg *style.Config) qa.Guide {
	return qa.Guide{Style: cfg, Textured: o.Textures, Item: o.IsItem(), Palettes: o.Palettes}
}

// String summarizes the generate options for log lines.
func (o *Options) String() string {
	what := o.Class
	if o.IsItem() {
		what = o.Item
	}
	return fmt.Sprintf("%s %dx%d seed=%d", what, o.Width, o.Height, o.Seed)
}

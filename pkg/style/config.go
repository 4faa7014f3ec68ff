// Package style defines the style description that crosses from analysis to
// generation.
//
// A [Config] is built once per analyzed reference (or merged across several)
// and is treated as read-only afterwards: generation, validation and storage
// only read it, and anything that needs a modified copy calls [Config.Clone].
//
// The JSON field names are the interop contract with external sprite
// generators:
//
//	{
//	  "palette":     {"skin": ["#e3b590"], "metal": ["#c8c8d0"], ...},
//	  "proportions": {"head": 33, "torso": 25, "arms": 20, "legs": 20},
//	  "style": {
//	    "outlineColor": "#000000", "outlineThickness": 1,
//	    "shadingMethod": "cel-shading", "dithering": false,
//	    "colorCount": 16, "hasHighlights": true,
//	    "highlightColor": "#ffffff", "lightDirection": "top-left"
//	  },
//	  "equipment": {"weapon": {"present": true, "type": "sword"}}
//	}
package style

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"maps"
	"slices"

	"github.com/matzehuels/spritestyle/pkg/colorspace"
)

// Shading methods.
const (
	ShadingCel      = "cel-shading"
	ShadingGradient = "gradient"
	ShadingFlat     = "flat"
)

// Light directions, naming the corner or side the light comes from.
const (
	LightTopLeft  = "top-left"
	LightTopRight = "top-right"
	LightTop      = "top"
	LightLeft     = "left"
	LightRight    = "right"
	LightCenter   = "center"
)

// ValidShadingMethods is the set of supported shading methods.
var ValidShadingMethods = map[string]bool{
	ShadingCel:      true,
	ShadingGradient: true,
	ShadingFlat:     true,
}

// ValidLightDirections is the set of supported light directions.
var ValidLightDirections = map[string]bool{
	LightTopLeft:  true,
	LightTopRight: true,
	LightTop:      true,
	LightLeft:     true,
	LightRight:    true,
	LightCenter:   true,
}

// Config is the machine-checkable style description.
type Config struct {
	Palette     map[string]colorspace.Palette `json:"palette" toml:"palette"`
	Proportions map[string]float64            `json:"proportions" toml:"proportions"`
	Style       Style                         `json:"style" toml:"style"`
	Equipment   map[string]Equipment          `json:"equipment" toml:"equipment"`
}

// Style holds the detected drawing conventions.
type Style struct {
	OutlineColor     colorspace.Color `json:"outlineColor" toml:"outlineColor"`
	OutlineThickness int              `json:"outlineThickness" toml:"outlineThickness"`
	ShadingMethod    string           `json:"shadingMethod" toml:"shadingMethod"`
	Dithering        bool             `json:"dithering" toml:"dithering"`
	ColorCount       int              `json:"colorCount" toml:"colorCount"`
	HasHighlights    bool             `json:"hasHighlights" toml:"hasHighlights"`
	HighlightColor   colorspace.Color `json:"highlightColor" toml:"highlightColor"`
	LightDirection   string           `json:"lightDirection" toml:"lightDirection"`
}

// Equipment describes one equipment slot.
type Equipment struct {
	Present bool   `json:"present" toml:"present"`
	Type    string `json:"type,omitempty" toml:"type,omitempty"`
}

// New returns an empty config with initialized maps and default conventions.
func New() *Config {
	return &Config{
		Palette:     make(map[string]colorspace.Palette),
		Proportions: make(map[string]float64),
		Style: Style{
			OutlineColor:     colorspace.Black,
			OutlineThickness: 1,
			ShadingMethod:    ShadingCel,
			HighlightColor:   colorspace.White,
			LightDirection:   LightTopLeft,
		},
		Equipment: make(map[string]Equipment),
	}
}

// Default returns the built-in style used when no reference is supplied.
func Default() *Config {
	c := New()
	c.Palette = map[string]colorspace.Palette{
		"skin":    {0xE3B590, 0xC68A5E, 0x8D5A3B},
		"metal":   {0xC8C8D0, 0x9AA0AA},
		"armor":   {0xC8C8D0, 0x9AA0AA},
		"cloth":   {0x3A5A98, 0x8A2A2A, 0x3F7A3A},
		"leather": {0x7A4E26, 0x5C3A1E},
		"wood":    {0x6B4423},
		"accent":  {0xE0A020},
	}
	c.Proportions = map[string]float64{"head": 33, "torso": 25, "arms": 20, "legs": 20}
	c.Style.ColorCount = 16
	c.Style.HasHighlights = true
	return c
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := &Config{
		Palette:     make(map[string]colorspace.Palette, len(c.Palette)),
		Proportions: maps.Clone(c.Proportions),
		Style:       c.Style,
		Equipment:   maps.Clone(c.Equipment),
	}
	for k, p := range c.Palette {
		out.Palette[k] = slices.Clone(p)
	}
	if out.Proportions == nil {
		out.Proportions = make(map[string]float64)
	}
	if out.Equipment == nil {
		out.Equipment = make(map[string]Equipment)
	}
	return out
}

// Colors returns every palette color across materials, deduplicated, with
// material names visited in sorted order.
func (c *Config) Colors() colorspace.Palette {
	var all colorspace.Palette
	for _, k := range slices.Sorted(maps.Keys(c.Palette)) {
		all = append(all, c.Palette[k]...)
	}
	return all.Dedupe()
}

// Validate checks the enumerated fields.
func (c *Config) Validate() error {
	if c.Style.ShadingMethod != "" && !ValidShadingMethods[c.Style.ShadingMethod] {
		return fmt.Errorf("invalid shadingMethod: %q (must be one of: cel-shading, gradient, flat)", c.Style.ShadingMethod)
	}
	if c.Style.LightDirection != "" && !ValidLightDirections[c.Style.LightDirection] {
		return fmt.Errorf("invalid lightDirection: %q", c.Style.LightDirection)
	}
	if c.Style.OutlineThickness < 0 || c.Style.OutlineThickness > 3 {
		return fmt.Errorf("invalid outlineThickness: %d (must be 0-3)", c.Style.OutlineThickness)
	}
	for k, v := range c.Proportions {
		if v < 0 || v > 100 {
			return fmt.Errorf("invalid proportion %s: %.2f (must be 0-100)", k, v)
		}
	}
	return nil
}

// Hash returns a content hash suitable for cache keys.
func (c *Config) Hash() string {
	data, err := json.Marshal(c)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

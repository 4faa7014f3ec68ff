package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/spritestyle/pkg/pipeline"
)

// flagFields copies one option from the flag-bound Options to the effective
// Options. Only flags the user actually set are copied, so values from the
// config file survive unless overridden.
var flagFields = map[string]func(dst, src *pipeline.Options){
	"max-colors":      func(d, s *pipeline.Options) { d.MaxColors = s.MaxColors },
	"merge":           func(d, s *pipeline.Options) { d.Merge = s.Merge },
	"class":           func(d, s *pipeline.Options) { d.Class = s.Class },
	"item":            func(d, s *pipeline.Options) { d.Item = s.Item },
	"width":           func(d, s *pipeline.Options) { d.Width = s.Width },
	"height":          func(d, s *pipeline.Options) { d.Height = s.Height },
	"seed":            func(d, s *pipeline.Options) { d.Seed = s.Seed },
	"textures":        func(d, s *pipeline.Options) { d.Textures = s.Textures },
	"format":          func(d, s *pipeline.Options) { d.Format = s.Format },
	"validate-colors": func(d, s *pipeline.Options) { d.ValidateColors = s.ValidateColors },
	"variations":      func(d, s *pipeline.Options) { d.Variations = s.Variations },
	"color-variation": func(d, s *pipeline.Options) { d.ColorVariation = s.ColorVariation },
	"size-variation":  func(d, s *pipeline.Options) { d.SizeVariation = s.SizeVariation },
	"equipment":       func(d, s *pipeline.Options) { d.EquipmentVariation = s.EquipmentVariation },
	"pose":            func(d, s *pipeline.Options) { d.PoseVariation = s.PoseVariation },
	"refresh":         func(d, s *pipeline.Options) { d.Refresh = s.Refresh },
}

// readConfig returns the options of the --config file, or of
// spritestyle.toml in the working directory when it exists. An explicit
// --config that does not exist is an error.
func (c *CLI) readConfig() (pipeline.Options, error) {
	if c.configPath != "" {
		return pipeline.LoadConfig(c.configPath)
	}
	if _, err := os.Stat(pipeline.ConfigFileName); err != nil {
		return pipeline.Options{}, nil
	}
	c.Logger.Debug("using config file", "path", pipeline.ConfigFileName)
	return pipeline.LoadConfig(pipeline.ConfigFileName)
}

// options merges the config file with the flags set on cmd and attaches the
// CLI logger. Defaults are applied later by the pipeline validators.
func (c *CLI) options(cmd *cobra.Command, flags *pipeline.Options) (pipeline.Options, error) {
	opts, err := c.readConfig()
	if err != nil {
		return opts, err
	}
	for name, set := range flagFields {
		if f := cmd.Flags().Lookup(name); f != nil && f.Changed {
			set(&opts, flags)
		}
	}
	opts.Logger = c.Logger
	return opts, nil
}

// =============================================================================
// Flag Sets
// =============================================================================

func addAnalyzeFlags(cmd *cobra.Command, o *pipeline.Options) {
	cmd.Flags().IntVar(&o.MaxColors, "max-colors", pipeline.DefaultMaxColors, "palette size extracted per reference")
	cmd.Flags().StringVar(&o.Merge, "merge", pipeline.DefaultMergeStrategy, "multi-reference merge: first, majority")
}

func addGenerateFlags(cmd *cobra.Command, o *pipeline.Options) {
	cmd.Flags().StringVar(&o.Class, "class", pipeline.DefaultClass, "character class: warrior, mage, rogue, villager")
	cmd.Flags().StringVar(&o.Item, "item", "", "draw an item instead of a character: sword, shield, potion")
	cmd.Flags().IntVar(&o.Width, "width", pipeline.DefaultWidth, "sprite width in pixels")
	cmd.Flags().IntVar(&o.Height, "height", pipeline.DefaultHeight, "sprite height in pixels")
	cmd.Flags().Uint32Var(&o.Seed, "seed", pipeline.DefaultSeed, "random seed")
	cmd.Flags().BoolVar(&o.Textures, "textures", false, "apply material textures")
	cmd.Flags().StringVarP(&o.Format, "format", "f", "", "output format: png, webp (default: from output extension)")
}

func addValidateFlags(cmd *cobra.Command, o *pipeline.Options) {
	cmd.Flags().IntVar(&o.ValidateColors, "validate-colors", pipeline.DefaultValidateColors, "maximum distinct colors allowed by QA")
}

func addVaryFlags(cmd *cobra.Command, o *pipeline.Options) {
	cmd.Flags().IntVarP(&o.Variations, "variations", "n", pipeline.DefaultVariations, "number of variants")
	cmd.Flags().Float64Var(&o.ColorVariation, "color-variation", pipeline.DefaultColorVariation, "per-pixel color jitter in [0,1)")
	cmd.Flags().Float64Var(&o.SizeVariation, "size-variation", pipeline.DefaultSizeVariation, "per-variant size jitter in [0,1)")
	cmd.Flags().BoolVar(&o.EquipmentVariation, "equipment", false, "vary equipment")
	cmd.Flags().BoolVar(&o.PoseVariation, "pose", false, "vary pose")
}

func addCacheFlags(cmd *cobra.Command, o *pipeline.Options, noCache *bool) {
	cmd.Flags().BoolVar(noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&o.Refresh, "refresh", false, "ignore cached results but store new ones")
}

package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	spriteio "github.com/matzehuels/spritestyle/pkg/io"
	"github.com/matzehuels/spritestyle/pkg/pipeline"
)

// varyCommand creates the vary command.
func (c *CLI) varyCommand() *cobra.Command {
	var flags pipeline.Options
	var output string

	cmd := &cobra.Command{
		Use:   "vary [sprite]",
		Short: "Derive seeded variations of a sprite",
		Long: `Derive seeded variations of a sprite.

Each variant jitters the color of every opaque pixel (--color-variation) and
rescales the whole sprite (--size-variation). Every variant draws from its
own stream derived from --seed, so the same seed reproduces the same batch.

Variants are written next to the output path as <name>_1.png, <name>_2.png
and so on.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			po, err := c.options(cmd, &flags)
			if err != nil {
				return err
			}
			if output == "" {
				output = args[0]
			}
			return c.runVary(cmd.Context(), args[0], output, po)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "base path for variants (default: the input path)")
	cmd.Flags().Uint32Var(&flags.Seed, "seed", pipeline.DefaultSeed, "base random seed")
	addVaryFlags(cmd, &flags)

	return cmd
}

func (c *CLI) runVary(ctx context.Context, path, output string, po pipeline.Options) error {
	if spriteio.FormatFor(output) == "" {
		output += ".png"
	}
	sprite, err := spriteio.LoadImage(path)
	if err != nil {
		return err
	}

	// Variants are not cached.
	runner := pipeline.NewRunner(nil, nil, c.Logger)
	prog := newProgress(c.Logger)
	variants, err := runner.Vary(ctx, sprite, po)
	if err != nil {
		return fmt.Errorf("vary: %w", err)
	}
	prog.done("generated variations", "count", len(variants))

	if len(variants) == 0 {
		printWarning("No variations requested")
		return nil
	}

	printSuccess("Generated %d variation(s)", len(variants))
	for i, v := range variants {
		p := variantPath(output, i)
		if err := spriteio.SaveSprite(v, p); err != nil {
			return err
		}
		printFile(p)
		printDetail("%dx%d", v.Width, v.Height)
	}
	return nil
}

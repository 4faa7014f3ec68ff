package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/spritestyle/pkg/errors"
	spriteio "github.com/matzehuels/spritestyle/pkg/io"
	"github.com/matzehuels/spritestyle/pkg/pipeline"
	"github.com/matzehuels/spritestyle/pkg/report"
)

type validateOpts struct {
	style   string // style file or ID; empty means the default style
	json    bool   // print the raw report as JSON
	noCache bool
}

// validateCommand creates the validate command.
func (c *CLI) validateCommand() *cobra.Command {
	var flags pipeline.Options
	var opts validateOpts

	cmd := &cobra.Command{
		Use:   "validate [sprite]",
		Short: "Check a sprite against a style",
		Long: `Check a sprite against a style.

Runs the proportion, color count, outline, shading and clipping checks and
prints one row per check. The command fails when any check fails, so it can
gate asset pipelines.

Pass --item for standalone item sprites (proportions are skipped) and
--textures for textured sprites (shading allows extra tones).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			po, err := c.options(cmd, &flags)
			if err != nil {
				return err
			}
			return c.runValidate(cmd.Context(), args[0], po, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.style, "style", "s", "", "style file or saved style ID (default: built-in style)")
	cmd.Flags().BoolVar(&opts.json, "json", false, "print the report as JSON")
	cmd.Flags().StringVar(&flags.Item, "item", "", "the sprite is this item: sword, shield, potion")
	cmd.Flags().BoolVar(&flags.Textures, "textures", false, "the sprite was generated with textures")
	addValidateFlags(cmd, &flags)
	addCacheFlags(cmd, &flags, &opts.noCache)

	return cmd
}

func (c *CLI) runValidate(ctx context.Context, path string, po pipeline.Options, opts validateOpts) error {
	sprite, err := spriteio.LoadImage(path)
	if err != nil {
		return err
	}
	cfg, err := loadStyle(ctx, opts.style)
	if err != nil {
		return err
	}
	po.Width, po.Height = sprite.Width, sprite.Height

	runner, err := c.newRunner(opts.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	rep, cacheHit, err := runner.ValidateWithCacheInfo(ctx, sprite, cfg, po)
	if err != nil {
		return fmt.Errorf("validate: %w", err)
	}
	rows := report.Summary(rep)

	if opts.json {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(rep); err != nil {
			return err
		}
	} else {
		printReport(rows)
		printStats(cacheHit, "report "+rep.ID)
	}

	if !rep.Valid {
		return errors.New(errors.ErrCodeInvalidStyle, "%s failed %d check(s)", path, len(report.Failed(rows)))
	}
	if !opts.json {
		printSuccess("%s matches the style", path)
	}
	return nil
}

package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	spriteio "github.com/matzehuels/spritestyle/pkg/io"
	"github.com/matzehuels/spritestyle/pkg/pipeline"
	"github.com/matzehuels/spritestyle/pkg/report"
	"github.com/matzehuels/spritestyle/pkg/style"
)

type runOpts struct {
	dir      string
	palettes bool
	noCache  bool
}

// runCommand creates the run command, which executes every pipeline stage.
func (c *CLI) runCommand() *cobra.Command {
	var flags pipeline.Options
	opts := runOpts{dir: "out"}

	cmd := &cobra.Command{
		Use:   "run [reference...]",
		Short: "Analyze references and generate, check and vary a sprite",
		Long: `Run the whole pipeline: analyze the references, generate a sprite in the
resulting style, check it and derive variations.

The output directory receives style.json, sprite.<format> and one
sprite_<n>.<format> per variation. Use --variations -1 to skip variations.
Every stage except variation is cached.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			po, err := c.options(cmd, &flags)
			if err != nil {
				return err
			}
			return c.runPipeline(cmd.Context(), args, po, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.dir, "output", "o", opts.dir, "output directory")
	cmd.Flags().BoolVar(&opts.palettes, "palettes", false, "use palettes from the local store")
	addAnalyzeFlags(cmd, &flags)
	addGenerateFlags(cmd, &flags)
	addValidateFlags(cmd, &flags)
	addVaryFlags(cmd, &flags)
	addCacheFlags(cmd, &flags, &opts.noCache)

	return cmd
}

func (c *CLI) runPipeline(ctx context.Context, paths []string, po pipeline.Options, opts runOpts) error {
	refs, err := loadReferences(ctx, paths, opts.noCache)
	if err != nil {
		return err
	}
	if err := po.ValidateAndSetDefaults(); err != nil {
		return err
	}
	if opts.palettes {
		if po.Palettes, err = storedPalettes(ctx); err != nil {
			return err
		}
	}

	runner, err := c.newRunner(opts.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Running pipeline on %d reference(s)...", len(refs)))
	spinner.Start()
	result, err := runner.Execute(ctx, refs, po)
	if err != nil {
		if spinner.Cancelled() {
			spinner.Stop()
			return err
		}
		spinner.StopWithError("Pipeline failed")
		return err
	}
	spinner.Stop()

	if err := writeResult(result, po, opts.dir); err != nil {
		return err
	}

	printNewline()
	printReport(report.Summary(result.Report))
	printStats(result.CacheInfo.AnalyzeHit && result.CacheInfo.GenerateHit && result.CacheInfo.ValidateHit,
		fmt.Sprintf("%d colors", result.Stats.ColorCount),
		fmt.Sprintf("%d issue(s)", result.Stats.Issues))
	if !result.Report.Valid {
		printWarning("Sprite does not fully match the style")
	}
	return nil
}

// writeResult saves the style, the sprite and its variants into dir.
func writeResult(result *pipeline.Result, po pipeline.Options, dir string) error {
	stylePath := filepath.Join(dir, "style.json")
	spritePath := filepath.Join(dir, "sprite."+po.Format)

	if err := writeOutput(spritePath, result.SpriteData); err != nil {
		return err
	}
	if err := style.Save(result.Style, stylePath); err != nil {
		return fmt.Errorf("write style: %w", err)
	}

	printSuccess("Pipeline complete")
	printFile(stylePath)
	printFile(spritePath)
	for i, v := range result.Variants {
		p := variantPath(spritePath, i)
		if err := spriteio.SaveSprite(v, p); err != nil {
			return err
		}
		printFile(p)
	}
	return nil
}

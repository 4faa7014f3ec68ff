package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/spritestyle/pkg/errors"
	"github.com/matzehuels/spritestyle/pkg/generate"
	spriteio "github.com/matzehuels/spritestyle/pkg/io"
	"github.com/matzehuels/spritestyle/pkg/pipeline"
	"github.com/matzehuels/spritestyle/pkg/report"
	"github.com/matzehuels/spritestyle/pkg/storage"
)

type generateOpts struct {
	output   string
	palettes bool // use palettes from the local store
	check    bool // run QA on the result
	noCache  bool
}

// generateCommand creates the generate command.
func (c *CLI) generateCommand() *cobra.Command {
	var flags pipeline.Options
	var opts generateOpts

	cmd := &cobra.Command{
		Use:   "generate [style]",
		Short: "Generate a sprite in an analyzed style",
		Long: `Generate a character or item sprite in an analyzed style.

The style argument is a .json/.toml file written by 'analyze' or a style ID
saved with 'analyze --save'. Without it the built-in default style is used.

Generation is deterministic: the same style, options and --seed always give
the same pixels. With --palettes, palettes saved with 'palette set' replace
the built-in material palettes (such sprites are not cached).`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			po, err := c.options(cmd, &flags)
			if err != nil {
				return err
			}
			var styleArg string
			if len(args) == 1 {
				styleArg = args[0]
			}
			return c.runGenerate(cmd.Context(), styleArg, po, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: <class|item>.<format>)")
	cmd.Flags().BoolVar(&opts.palettes, "palettes", false, "use palettes from the local store")
	cmd.Flags().BoolVar(&opts.check, "check", false, "run the QA checks on the generated sprite")
	addGenerateFlags(cmd, &flags)
	addValidateFlags(cmd, &flags)
	addCacheFlags(cmd, &flags, &opts.noCache)

	return cmd
}

func (c *CLI) runGenerate(ctx context.Context, styleArg string, po pipeline.Options, opts generateOpts) error {
	cfg, err := loadStyle(ctx, styleArg)
	if err != nil {
		return err
	}

	if po.Format == "" {
		po.Format = spriteio.FormatFor(opts.output)
	}
	if err := po.ValidateForGenerate(); err != nil {
		return err
	}
	output, err := spriteOutput(opts.output, po)
	if err != nil {
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

	spinner := newSpinnerWithContext(ctx, "Generating "+po.String()+"...")
	spinner.Start()
	sprite, data, cacheHit, err := runner.GenerateWithCacheInfo(ctx, cfg, po)
	if err != nil {
		if spinner.Cancelled() {
			spinner.Stop()
			return err
		}
		spinner.StopWithError("Generation failed")
		return fmt.Errorf("generate: %w", err)
	}
	if err := writeOutput(output, data); err != nil {
		spinner.StopWithError("Could not write sprite")
		return err
	}
	spinner.StopWithSuccess("Generated " + po.String())
	printFile(output)
	printStats(cacheHit, fmt.Sprintf("%dx%d", sprite.Width, sprite.Height), po.Format)

	if opts.check {
		rep, _, err := runner.ValidateWithCacheInfo(ctx, sprite, cfg, po)
		if err != nil {
			return fmt.Errorf("validate: %w", err)
		}
		printNewline()
		printReport(report.Summary(rep))
		if !rep.Valid {
			return errors.New(errors.ErrCodeInvalidStyle, "sprite failed %d check(s)", len(report.Failed(report.Summary(rep))))
		}
	}

	printNewline()
	printNextStep("Variations", appName+" vary "+output)
	return nil
}

// spriteOutput returns the output path for a validated po. An explicit path
// must carry an extension matching the format, or none of the known ones.
func spriteOutput(output string, po pipeline.Options) (string, error) {
	if output == "" {
		what := po.Class
		if po.IsItem() {
			what = po.Item
		}
		return what + "." + po.Format, nil
	}
	if ext := spriteio.FormatFor(output); ext != "" && ext != po.Format {
		return "", errors.New(errors.ErrCodeInvalidFormat, "output %s does not match format %s", output, po.Format)
	}
	return output, nil
}

// storedPalettes returns the built-in palettes overlaid with every palette
// in the local store.
func storedPalettes(ctx context.Context) (*generate.PaletteManager, error) {
	store, err := newStore()
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	defer store.Close()
	return loadPalettes(ctx, store)
}

func loadPalettes(ctx context.Context, store storage.PaletteStore) (*generate.PaletteManager, error) {
	pm := generate.NewPaletteManager()
	names, err := store.ListPalettes(ctx)
	if err != nil {
		return nil, err
	}
	for _, name := range names {
		if err := pm.Load(ctx, store, name); err != nil {
			return nil, err
		}
	}
	return pm, nil
}

package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/spritestyle/pkg/pipeline"
	"github.com/matzehuels/spritestyle/pkg/report"
	"github.com/matzehuels/spritestyle/pkg/storage"
	"github.com/matzehuels/spritestyle/pkg/style"
)

// analyzeOpts holds the non-pipeline flags of the analyze command.
type analyzeOpts struct {
	output   string // style file (.json or .toml)
	dot      string // optional Graphviz DOT output
	svg      string // optional rendered SVG output
	detailed bool   // show every palette color in DOT/SVG output
	save     bool   // also store the style locally under a new ID
	noCache  bool
}

// analyzeCommand creates the analyze command.
func (c *CLI) analyzeCommand() *cobra.Command {
	var flags pipeline.Options
	opts := analyzeOpts{output: "style.json"}

	cmd := &cobra.Command{
		Use:   "analyze [reference...]",
		Short: "Extract a style config from reference sprites",
		Long: `Extract a style config from one or more reference sprites.

The analyzer quantizes each reference into a palette, segments body regions,
and detects outline, shading, dithering, highlights and equipment. Several
references are merged into one config (--merge first|majority).

The style is written as JSON or TOML depending on the output extension.
With --save it is also kept in the local store under a new ID that
'generate' accepts in place of a file.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			po, err := c.options(cmd, &flags)
			if err != nil {
				return err
			}
			return c.runAnalyze(cmd.Context(), args, po, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", opts.output, "style output file (.json or .toml)")
	cmd.Flags().StringVar(&opts.dot, "dot", "", "also write the style graph as Graphviz DOT")
	cmd.Flags().StringVar(&opts.svg, "svg", "", "also render the style graph to SVG")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "include every palette color in the style graph")
	cmd.Flags().BoolVar(&opts.save, "save", false, "store the style locally and print its ID")
	addAnalyzeFlags(cmd, &flags)
	addCacheFlags(cmd, &flags, &opts.noCache)

	return cmd
}

func (c *CLI) runAnalyze(ctx context.Context, paths []string, po pipeline.Options, opts analyzeOpts) error {
	refs, err := loadReferences(ctx, paths, opts.noCache)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(opts.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	cfg, cacheHit, err := runner.AnalyzeWithCacheInfo(ctx, refs, po)
	if err != nil {
		return fmt.Errorf("analyze: %w", err)
	}
	prog.done("analyzed references", "count", len(refs), "cached", cacheHit)

	if err := style.Save(cfg, opts.output); err != nil {
		return fmt.Errorf("write style: %w", err)
	}

	printSuccess("Analyzed %d reference(s)", len(refs))
	printFile(opts.output)

	if opts.dot != "" || opts.svg != "" {
		dot := report.ToDOT(cfg, report.Options{Detailed: opts.detailed})
		if opts.dot != "" {
			if err := writeOutput(opts.dot, []byte(dot)); err != nil {
				return err
			}
			printFile(opts.dot)
		}
		if opts.svg != "" {
			svg, err := report.RenderSVG(ctx, dot)
			if err != nil {
				return fmt.Errorf("render style graph: %w", err)
			}
			if err := writeOutput(opts.svg, svg); err != nil {
				return err
			}
			printFile(opts.svg)
		}
	}

	printStats(cacheHit,
		fmt.Sprintf("%d colors", cfg.Style.ColorCount),
		fmt.Sprintf("%d materials", len(cfg.Palette)))
	printNewline()
	printStyle(cfg)

	if opts.save {
		store, err := newStore()
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer store.Close()
		id := storage.NewID()
		if err := store.PutStyle(ctx, id, cfg); err != nil {
			return err
		}
		printNewline()
		printKeyValue("Style ID", id)
	}

	printNewline()
	printNextStep("Generate", appName+" generate "+opts.output)
	return nil
}

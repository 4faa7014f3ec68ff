package cli

import (
	"context"
	"fmt"
	"slices"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/spritestyle/pkg/colorspace"
	"github.com/matzehuels/spritestyle/pkg/errors"
	"github.com/matzehuels/spritestyle/pkg/generate"
	"github.com/matzehuels/spritestyle/pkg/storage"
)

// paletteCommand creates the palette management command.
func (c *CLI) paletteCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "palette",
		Short: "Manage named material palettes",
		Long: `Manage named material palettes.

Palettes are stored in palettes.toml under the config directory
(~/.config/spritestyle by default). A stored palette named after a material
(skin, metal, cloth, leather, wood, glow, accent) replaces the built-in one
when generating with --palettes.`,
	}

	cmd.AddCommand(c.paletteListCommand())
	cmd.AddCommand(c.paletteShowCommand())
	cmd.AddCommand(c.paletteSetCommand())
	cmd.AddCommand(c.palettePickCommand())

	return cmd
}

// paletteEntry is one palette as shown by list and pick.
type paletteEntry struct {
	Name    string
	Colors  colorspace.Palette
	Builtin bool // no stored palette of this name
}

// listPalettes returns the built-in palettes overlaid with the stored ones,
// sorted by name.
func listPalettes(ctx context.Context, store storage.PaletteStore) ([]paletteEntry, error) {
	stored, err := store.ListPalettes(ctx)
	if err != nil {
		return nil, err
	}
	pm, err := loadPalettes(ctx, store)
	if err != nil {
		return nil, err
	}

	var out []paletteEntry
	for _, name := range pm.Names() {
		p, _ := pm.Get(name)
		out = append(out, paletteEntry{Name: name, Colors: p, Builtin: !slices.Contains(stored, name)})
	}
	return out, nil
}

func (c *CLI) paletteListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List built-in and stored palettes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := newStore()
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			defer store.Close()

			entries, err := listPalettes(cmd.Context(), store)
			if err != nil {
				return err
			}
			for _, e := range entries {
				source := "stored"
				if e.Builtin {
					source = "built-in"
				}
				printKeyValue(e.Name, swatches(e.Colors)+" "+StyleDim.Render(source))
			}
			return nil
		},
	}
}

func (c *CLI) paletteShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show [name]",
		Short: "Print the colors of a palette",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := newStore()
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			defer store.Close()

			p, err := resolvePalette(cmd.Context(), store, args[0])
			if err != nil {
				return err
			}
			for _, col := range p {
				fmt.Fprintln(stdout, swatch(col)+" "+col.Hex())
			}
			return nil
		},
	}
}

// resolvePalette returns the stored palette of that name, falling back to
// the built-in one.
func resolvePalette(ctx context.Context, store storage.PaletteStore, name string) (colorspace.Palette, error) {
	if err := errors.ValidatePaletteName(name); err != nil {
		return nil, err
	}
	p, err := store.GetPalette(ctx, name)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, errors.ErrCodePaletteNotFound) {
		return nil, err
	}
	if p, ok := generate.NewPaletteManager().Get(name); ok {
		return p, nil
	}
	return nil, err
}

func (c *CLI) paletteSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set [name] [color...]",
		Short: "Store a palette from hex colors",
		Long: `Store a palette from hex colors, replacing any stored palette of that name.

Example:
  spritestyle palette set metal "#c8c8d0" "#9aa0aa" "#b0b4bc"`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			p := make(colorspace.Palette, 0, len(args)-1)
			for _, s := range args[1:] {
				col, err := colorspace.ParseHex(s)
				if err != nil {
					return errors.Wrap(errors.ErrCodeInvalidPalette, err, "color %q", s)
				}
				p = append(p, col)
			}

			pm := generate.NewPaletteManager()
			if err := pm.Set(name, p); err != nil {
				return err
			}

			store, err := newStore()
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			defer store.Close()
			if err := pm.Save(cmd.Context(), store, name); err != nil {
				return err
			}

			printSuccess("Stored palette %s", name)
			printDetail("%s", store.PaletteFile())
			return nil
		},
	}
}

func (c *CLI) palettePickCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "pick",
		Short: "Browse palettes interactively and print the chosen one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := newStore()
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			defer store.Close()

			entries, err := listPalettes(cmd.Context(), store)
			if err != nil {
				return err
			}

			final, err := tea.NewProgram(NewPaletteListModel(entries), tea.WithContext(cmd.Context())).Run()
			if err != nil {
				return fmt.Errorf("palette picker: %w", err)
			}
			m, ok := final.(PaletteListModel)
			if !ok || m.Selected == nil {
				printInfo("No palette selected")
				return nil
			}

			printSuccess("Selected %s", m.Selected.Name)
			for _, hex := range m.Selected.Colors.Hex() {
				fmt.Fprintln(stdout, hex)
			}
			return nil
		},
	}
}

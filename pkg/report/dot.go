package report

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/spritestyle/pkg/colorspace"
	"github.com/matzehuels/spritestyle/pkg/style"
)

// Options configures the style graph.
type Options struct {
	// Detailed adds the drawing conventions and proportions to the style
	// node label. When false, the style node is labeled "style".
	Detailed bool
}

// ToDOT converts a style config to Graphviz DOT format.
// Swatch nodes are filled with their color; the label is the hex value.
func ToDOT(cfg *style.Config, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph Style {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontname=\"SF Mono, Menlo, monospace\", fontsize=14];\n")
	buf.WriteString("  ranksep=0.6;\n")
	buf.WriteString("  nodesep=0.2;\n")
	buf.WriteString("\n")

	fmt.Fprintf(&buf, "  \"style\" [label=%q, shape=ellipse];\n", styleLabel(cfg, opts.Detailed))

	for _, name := range slices.Sorted(maps.Keys(cfg.Palette)) {
		mat := "material:" + name
		fmt.Fprintf(&buf, "  %q [label=%q];\n", mat, name)
		fmt.Fprintf(&buf, "  \"style\" -> %q;\n", mat)
		for i, c := range cfg.Palette[name] {
			sw := fmt.Sprintf("%s:%d", mat, i)
			fmt.Fprintf(&buf, "  %q [%s];\n", sw, strings.Join(swatchAttrs(c), ", "))
			fmt.Fprintf(&buf, "  %q -> %q [arrowhead=none];\n", mat, sw)
		}
	}

	for _, slot := range slices.Sorted(maps.Keys(cfg.Equipment)) {
		eq := cfg.Equipment[slot]
		if !eq.Present {
			continue
		}
		label := slot
		if eq.Type != "" {
			label += "\n" + eq.Type
		}
		id := "equipment:" + slot
		fmt.Fprintf(&buf, "  %q [label=%q, style=\"rounded,filled,dashed\", fillcolor=lightgrey];\n", id, label)
		fmt.Fprintf(&buf, "  \"style\" -> %q [style=dashed];\n", id)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func styleLabel(cfg *style.Config, detailed bool) string {
	if !detailed {
		return "style"
	}
	s := cfg.Style
	parts := []string{
		fmt.Sprintf("outline: %s x%d", s.OutlineColor.Hex(), s.OutlineThickness),
		"shading: " + s.ShadingMethod,
		"light: " + s.LightDirection,
		fmt.Sprintf("colors: %d", s.ColorCount),
	}
	if s.Dithering {
		parts = append(parts, "dithering")
	}
	if s.HasHighlights {
		parts = append(parts, "highlights: "+s.HighlightColor.Hex())
	}
	for _, k := range slices.Sorted(maps.Keys(cfg.Proportions)) {
		parts = append(parts, fmt.Sprintf("%s: %.0f%%", k, cfg.Proportions[k]))
	}
	return "style\n" + strings.Join(parts, "\n")
}

func swatchAttrs(c colorspace.Color) []string {
	font := "black"
	if colorspace.Luminance(c) < 128 {
		font = "white"
	}
	return []string{
		fmt.Sprintf("label=%q", c.Hex()),
		fmt.Sprintf("fillcolor=%q", c.Hex()),
		"fontcolor=" + font,
	}
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root element so the SVG scales from a
// zero-origin viewBox.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}

// Package report turns style configs and QA reports into human-facing
// output.
//
// [ToDOT] draws a style config as a Graphviz graph: the style node links to
// one node per material, each material links to its palette swatches, and
// equipment slots hang off the style node. [RenderSVG] lays the graph out
// with Graphviz:
//
//	Config → ToDOT() → DOT → RenderSVG() → SVG
//
// [Summary] flattens a QA report into one row per check for tables.
package report

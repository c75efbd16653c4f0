// Package nodelink renders dependency resolutions as node-link diagrams.
//
// # Usage
//
// Convert a resolution to DOT format, then render to SVG:
//
//	dot := nodelink.ToDOT(res, nodelink.Options{Collapse: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// The generated DOT uses top-to-bottom layout (rankdir=TB) with rounded
// box nodes, one per package version or, with [Options.Collapse], one per
// category/name. It can also be saved and processed with external Graphviz
// tools.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering, so no Graphviz installation is needed, and
// [github.com/beevik/etree] to rewrite the root of the rendered SVG.
package nodelink

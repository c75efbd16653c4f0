package nodelink

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/matzehuels/overlaysmith/pkg/atom"
	"github.com/matzehuels/overlaysmith/pkg/deps"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Collapse draws one node per category/name instead of one per version.
	Collapse bool

	// Skipped adds dashed nodes for references the resolver did not follow.
	Skipped bool
}

// graph-wide attributes, in output order
var graphAttrs = []string{
	"rankdir=TB",
	`bgcolor="transparent"`,
	"ranksep=0.5",
	"nodesep=0.3",
	`node [shape=box, style="rounded,filled", fillcolor=white, fontsize=24, margin="0.2,0.1"]`,
}

const (
	rootFill    = "lightblue"
	skippedNode = `style="rounded,filled,dashed", fillcolor=lightgrey, fontcolor=black`
)

type dotWriter struct{ strings.Builder }

func (w *dotWriter) line(format string, args ...any) {
	w.WriteString("  ")
	fmt.Fprintf(w, format, args...)
	w.WriteString(";\n")
}

// ToDOT converts a resolution to Graphviz DOT. Packages whose category/name
// is a resolution root are filled light blue; with [Options.Skipped] every
// reference the resolver did not follow becomes a dashed grey node labelled
// with the reason.
func ToDOT(res *deps.Resolution, opts Options) string {
	id := atom.Package.String
	if opts.Collapse {
		id = atom.Package.CatPkg
	}

	var w dotWriter
	w.WriteString("digraph G {\n")
	for _, a := range graphAttrs {
		w.line("%s", a)
	}
	w.WriteString("\n")

	var last string
	for _, p := range res.Packages.Sorted() {
		n := id(p)
		if n == last {
			continue
		}
		last = n
		if slices.Contains(res.Roots, p.CatPkg()) {
			w.line("%q [label=%q, fillcolor=%s]", n, n, rootFill)
		} else {
			w.line("%q [label=%q]", n, n)
		}
	}

	var skips []deps.Skip
	if opts.Skipped {
		skips = sortedSkips(res.Skipped)
	}
	for _, s := range skips {
		w.line("%q [label=%q, %s]", s.Ref, s.Ref+"\n"+string(s.Reason), skippedNode)
	}

	w.WriteString("\n")
	for _, e := range edgeList(res, id) {
		w.line("%q -> %q", e[0], e[1])
	}
	for _, s := range skips {
		if s.From != (atom.Package{}) {
			w.line("%q -> %q [style=dashed]", id(s.From), s.Ref)
		}
	}
	w.WriteString("}\n")
	return w.String()
}

// edgeList maps edges through id, dropping self loops and duplicates that
// collapsing creates.
func edgeList(res *deps.Resolution, id func(atom.Package) string) [][2]string {
	out := make([][2]string, 0, len(res.Edges))
	for _, e := range res.Edges {
		if from, to := id(e.From), id(e.To); from != to {
			out = append(out, [2]string{from, to})
		}
	}
	slices.SortFunc(out, func(a, b [2]string) int {
		return cmp.Or(strings.Compare(a[0], b[0]), strings.Compare(a[1], b[1]))
	})
	return slices.Compact(out)
}

func sortedSkips(skips []deps.Skip) []deps.Skip {
	out := slices.Clone(skips)
	slices.SortFunc(out, func(a, b deps.Skip) int {
		return cmp.Or(strings.Compare(a.Ref, b.Ref), atom.ComparePackages(a.From, b.From))
	})
	return out
}

package io

import (
	"cmp"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/matzehuels/overlaysmith/pkg/atom"
	"github.com/matzehuels/overlaysmith/pkg/deps"
)

type graph struct {
	Roots   []string `json:"roots,omitempty"`
	Nodes   []node   `json:"nodes"`
	Edges   []edge   `json:"edges"`
	Skipped []skip   `json:"skipped,omitempty"`
}

type node struct {
	ID string `json:"id"`
}

type edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type skip struct {
	From   string `json:"from,omitempty"`
	Ref    string `json:"ref"`
	Reason string `json:"reason"`
}

// WriteJSON encodes res as JSON and writes it to w.
func WriteJSON(res *deps.Resolution, w io.Writer) error {
	out := graph{
		Roots: slices.Sorted(slices.Values(res.Roots)),
		Nodes: []node{},
		Edges: []edge{},
	}
	for _, p := range res.Packages.Sorted() {
		out.Nodes = append(out.Nodes, node{ID: p.String()})
	}

	es := slices.Clone(res.Edges)
	slices.SortFunc(es, func(a, b deps.Edge) int {
		return cmp.Or(atom.ComparePackages(a.From, b.From), atom.ComparePackages(a.To, b.To))
	})
	for _, e := range slices.Compact(es) {
		out.Edges = append(out.Edges, edge{From: e.From.String(), To: e.To.String()})
	}

	for _, s := range res.Skipped {
		sk := skip{Ref: s.Ref, Reason: string(s.Reason)}
		if s.From != (atom.Package{}) {
			sk.From = s.From.String()
		}
		out.Skipped = append(out.Skipped, sk)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes res to a JSON file at path.
func ExportJSON(res *deps.Resolution, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteJSON(res, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

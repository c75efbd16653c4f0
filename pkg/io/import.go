package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/overlaysmith/pkg/atom"
	"github.com/matzehuels/overlaysmith/pkg/deps"
	"github.com/matzehuels/overlaysmith/pkg/errors"
)

// ReadJSON decodes a resolution written by [WriteJSON].
//
// Errors name the node or edge that caused them. An edge whose endpoints
// are not listed as nodes is an error; skipped references are taken as is.
func ReadJSON(r io.Reader) (*deps.Resolution, error) {
	var data graph
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode resolution")
	}

	res := &deps.Resolution{Roots: data.Roots, Packages: make(deps.Set)}
	for _, n := range data.Nodes {
		p, err := atom.ParsePackage(n.ID)
		if err != nil {
			return nil, fmt.Errorf("node %s: %w", n.ID, err)
		}
		if res.Packages.Has(p) {
			return nil, errors.New(errors.ErrCodeInvalidInput, "node %s: duplicate", n.ID)
		}
		res.Packages.Add(p)
	}

	lookup := func(id string) (atom.Package, error) {
		p, err := atom.ParsePackage(id)
		if err != nil {
			return p, err
		}
		if !res.Packages.Has(p) {
			return p, errors.New(errors.ErrCodeInvalidInput, "unknown node %s", id)
		}
		return p, nil
	}
	for _, e := range data.Edges {
		from, err := lookup(e.From)
		if err != nil {
			return nil, fmt.Errorf("edge %s->%s: %w", e.From, e.To, err)
		}
		to, err := lookup(e.To)
		if err != nil {
			return nil, fmt.Errorf("edge %s->%s: %w", e.From, e.To, err)
		}
		res.Edges = append(res.Edges, deps.Edge{From: from, To: to})
	}

	for _, s := range data.Skipped {
		sk := deps.Skip{Ref: s.Ref, Reason: deps.SkipReason(s.Reason)}
		if s.From != "" {
			p, err := atom.ParsePackage(s.From)
			if err != nil {
				return nil, fmt.Errorf("skipped %s: %w", s.Ref, err)
			}
			sk.From = p
		}
		res.Skipped = append(res.Skipped, sk)
	}
	return res, nil
}

// ImportJSON reads a resolution from the JSON file at path.
func ImportJSON(path string) (*deps.Resolution, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}

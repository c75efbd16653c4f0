package deps

import (
	"maps"
	"slices"

	"github.com/matzehuels/overlaysmith/pkg/atom"
)

// Set is a set of concrete package versions.
type Set map[atom.Package]struct{}

// Add inserts p.
func (s Set) Add(p atom.Package) { s[p] = struct{}{} }

// Has reports whether p is in s.
func (s Set) Has(p atom.Package) bool {
	_, ok := s[p]
	return ok
}

// Union adds every element of o to s.
func (s Set) Union(o Set) {
	for p := range o {
		s[p] = struct{}{}
	}
}

// Sorted returns the elements ordered by category, name and version.
func (s Set) Sorted() []atom.Package {
	return slices.SortedFunc(maps.Keys(s), atom.ComparePackages)
}

// CatPkgs returns the distinct "category/name" values in s, sorted.
func (s Set) CatPkgs() []string {
	seen := make(map[string]struct{}, len(s))
	for p := range s {
		seen[p.CatPkg()] = struct{}{}
	}
	return slices.Sorted(maps.Keys(seen))
}

// Edge records that From depends on To.
type Edge struct {
	From atom.Package
	To   atom.Package
}

// SkipReason explains why a reference was left out of a resolution.
type SkipReason string

const (
	// SkipNoDescription marks a listed version without a description.
	SkipNoDescription SkipReason = "no description"
	// SkipNotInDatabase marks a dependency on an unknown category/name.
	SkipNotInDatabase SkipReason = "not in database"
)

// Skip is a reference the resolver tolerated but did not follow.
type Skip struct {
	// From is the package declaring the reference; zero for a root version.
	From   atom.Package
	Ref    string
	Reason SkipReason
}

// Resolution is the result of resolving one or more names.
type Resolution struct {
	// Roots are the resolved "category/name" values that were asked for.
	Roots    []string
	Packages Set
	Edges    []Edge
	Skipped  []Skip
}

func newResolution() *Resolution {
	return &Resolution{Packages: make(Set)}
}

// Merge folds o into r, dropping duplicate edges and skips.
func (r *Resolution) Merge(o *Resolution) {
	if o == nil {
		return
	}
	for _, root := range o.Roots {
		if !slices.Contains(r.Roots, root) {
			r.Roots = append(r.Roots, root)
		}
	}
	r.Packages.Union(o.Packages)
	r.Edges = appendUnique(r.Edges, o.Edges)
	r.Skipped = appendUnique(r.Skipped, o.Skipped)
}

func appendUnique[T comparable](dst, src []T) []T {
	seen := make(map[T]struct{}, len(dst))
	for _, v := range dst {
		seen[v] = struct{}{}
	}
	for _, v := range src {
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
			dst = append(dst, v)
		}
	}
	return dst
}

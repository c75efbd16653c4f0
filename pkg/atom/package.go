package atom

import (
	"cmp"
	"strings"

	"github.com/matzehuels/overlaysmith/pkg/errors"
)

// Package identifies one concrete version of a package.
type Package struct {
	Category string `json:"category"`
	Name     string `json:"name"`
	Version  string `json:"version"`
}

// NewPackage validates its arguments and returns the Package they describe.
func NewPackage(category, name, version string) (Package, error) {
	p := Package{Category: category, Name: name, Version: version}
	return p, p.Validate()
}

// ParsePackage parses "category/name-version".
func ParsePackage(s string) (Package, error) {
	category, rest, ok := strings.Cut(s, "/")
	if !ok {
		return Package{}, errors.New(errors.ErrCodeInvalidPackage, "missing category in %q", s)
	}
	name, version, ok := splitVersion(rest, false)
	if !ok {
		return Package{}, errors.New(errors.ErrCodeInvalidPackage, "missing version in %q", s)
	}
	return NewPackage(category, name, version)
}

// Validate reports whether all fields are well formed.
func (p Package) Validate() error {
	if p.Category == "" || p.Name == "" || p.Version == "" {
		return errors.New(errors.ErrCodeInvalidPackage, "incomplete package %q", p.String())
	}
	if err := ValidateCategory(p.Category); err != nil {
		return err
	}
	if err := ValidateName(p.Name); err != nil {
		return err
	}
	if !IsVersion(p.Version) {
		return errors.New(errors.ErrCodeInvalidVersion, "invalid version %q for %s", p.Version, p.CatPkg())
	}
	return nil
}

// String returns "category/name-version".
func (p Package) String() string {
	return p.CatPkg() + "-" + p.Version
}

// CatPkg returns "category/name".
func (p Package) CatPkg() string {
	return p.Category + "/" + p.Name
}

// ComparePackages orders packages by category, name and then version.
func ComparePackages(a, b Package) int {
	if c := cmp.Compare(a.Category, b.Category); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Name, b.Name); c != 0 {
		return c
	}
	return CompareStrings(a.Version, b.Version)
}

package db

import (
	stderrors "errors"

	"github.com/matzehuels/overlaysmith/pkg/atom"
	"github.com/matzehuels/overlaysmith/pkg/errors"
)

// ErrNotFound is matched (via errors.Is from the standard library) by lookup
// misses for packages and versions.
var ErrNotFound = stderrors.New("not found")

// Database is the read surface of a package database.
type Database interface {
	// Categories lists every known category, sorted.
	Categories() []string
	// PackageNames lists the package names of a category, sorted.
	PackageNames(category string) ([]string, error)
	// PackageVersions lists the versions of category/name in ascending order.
	PackageVersions(category, name string) ([]string, error)
	// Description returns the description of one package version.
	Description(p atom.Package) (Description, error)
	// InCategory reports whether category contains name.
	InCategory(category, name string) (bool, error)
	// Clean discards the database.
	Clean() error
}

// Description is everything the database knows about one package version.
type Description struct {
	Description  string            `json:"description"`
	Eclasses     []string          `json:"eclasses,omitempty"`
	Dependencies []atom.Dependency `json:"dependencies,omitempty"`
	Fields       map[string]string `json:"fields,omitempty"`
}

// Field returns Fields[key], or "" when unset.
func (d Description) Field(key string) string {
	return d.Fields[key]
}

// Entry pairs a package with its description.
type Entry struct {
	Package     atom.Package
	Description Description
}

// IsMissing reports whether err is a lookup miss: an unknown category
// (INVALID_KEY) or an unknown package or version (NOT_FOUND).
func IsMissing(err error) bool {
	return errors.Is(err, errors.ErrCodeInvalidKey) || errors.Is(err, errors.ErrCodeNotFound)
}

func unknownCategory(category string) error {
	return errors.New(errors.ErrCodeInvalidKey, "no such category: %q", category)
}

func notFound(format string, args ...any) error {
	return errors.Wrap(errors.ErrCodeNotFound, ErrNotFound, format, args...)
}

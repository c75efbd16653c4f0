package atom

import (
	"regexp"
	"strings"

	"github.com/matzehuels/overlaysmith/pkg/errors"
)

// Operators accepted in a versioned [Dependency].
const (
	OpGreaterEqual = ">="
	OpLessEqual    = "<="
	OpLess         = "<"
	OpGreater      = ">"
	OpEqual        = "="
	OpTilde        = "~"
)

// Dependency references another package by category and name. Version and
// Operator are either both set or both empty.
type Dependency struct {
	Category string
	Name     string
	Version  string
	Operator string
	UseDep   string
	UseFlag  string
}

var (
	useFlagRe = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9+_@-]*$`)
	useDepRe  = regexp.MustCompile(`^[A-Za-z0-9+_@=!?(),-]+$`)

	conditionalRe = regexp.MustCompile(`^([A-Za-z0-9][A-Za-z0-9+_@-]*)\?\s*\(\s*(.*?)\s*\)$`)
	atomRe        = regexp.MustCompile(`^(>=|<=|<|>|=|~)?([A-Za-z0-9+_.*/-]+)(?:\[([^\]]+)\])?$`)
)

// NewDependency returns a validated dependency on category/name. operator and
// version must be given together or not at all.
func NewDependency(category, name, operator, version string) (Dependency, error) {
	d := Dependency{Category: category, Name: name, Operator: operator, Version: version}
	return d, d.Validate()
}

// Validate reports whether d is well formed.
func (d Dependency) Validate() error {
	if err := ValidateCategory(d.Category); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidDependency, err, "invalid dependency %q", d.String())
	}
	if err := ValidateName(d.Name); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidDependency, err, "invalid dependency %q", d.String())
	}
	if (d.Version == "") != (d.Operator == "") {
		return errors.New(errors.ErrCodeInvalidDependency,
			"dependency %s/%s: version and operator must be given together", d.Category, d.Name)
	}
	if d.Operator != "" {
		if !validOperator(d.Operator) {
			return errors.New(errors.ErrCodeInvalidDependency, "dependency %s/%s: unknown operator %q",
				d.Category, d.Name, d.Operator)
		}
		v := d.Version
		if d.Operator == OpEqual {
			v = strings.TrimSuffix(v, "*")
		}
		if !IsVersion(v) {
			return errors.New(errors.ErrCodeInvalidDependency, "dependency %s/%s: invalid version %q",
				d.Category, d.Name, d.Version)
		}
	}
	if d.UseDep != "" && !useDepRe.MatchString(d.UseDep) {
		return errors.New(errors.ErrCodeInvalidDependency, "dependency %s/%s: invalid use dependency %q",
			d.Category, d.Name, d.UseDep)
	}
	if d.UseFlag != "" && !useFlagRe.MatchString(d.UseFlag) {
		return errors.New(errors.ErrCodeInvalidDependency, "dependency %s/%s: invalid use flag %q",
			d.Category, d.Name, d.UseFlag)
	}
	return nil
}

func validOperator(op string) bool {
	switch op {
	case OpGreaterEqual, OpLessEqual, OpLess, OpGreater, OpEqual, OpTilde:
		return true
	}
	return false
}

// CatPkg returns "category/name".
func (d Dependency) CatPkg() string {
	return d.Category + "/" + d.Name
}

// Package returns the concrete package d refers to at version.
func (d Dependency) Package(version string) Package {
	return Package{Category: d.Category, Name: d.Name, Version: version}
}

// String formats d in dependency-string syntax:
//
//	cat/name
//	>=cat/name-1.0
//	>=cat/name-1.0[ssl]
//	flag? ( >=cat/name-1.0[ssl] )
func (d Dependency) String() string {
	var b strings.Builder
	if d.Operator != "" {
		b.WriteString(d.Operator)
	}
	b.WriteString(d.CatPkg())
	if d.Version != "" {
		b.WriteByte('-')
		b.WriteString(d.Version)
	}
	if d.UseDep != "" {
		b.WriteByte('[')
		b.WriteString(d.UseDep)
		b.WriteByte(']')
	}
	if d.UseFlag == "" {
		return b.String()
	}
	return d.UseFlag + "? ( " + b.String() + " )"
}

// ParseDependency parses the syntax produced by [Dependency.String].
func ParseDependency(s string) (Dependency, error) {
	var d Dependency
	s = strings.TrimSpace(s)

	if m := conditionalRe.FindStringSubmatch(s); m != nil {
		d.UseFlag = m[1]
		s = m[2]
	}

	m := atomRe.FindStringSubmatch(s)
	if m == nil {
		return Dependency{}, errors.New(errors.ErrCodeInvalidDependency, "malformed dependency %q", s)
	}
	d.Operator, d.UseDep = m[1], m[3]

	catpkg := m[2]
	if d.Operator != "" {
		name, version, ok := splitVersion(catpkg, d.Operator == OpEqual)
		if !ok {
			return Dependency{}, errors.New(errors.ErrCodeInvalidDependency,
				"dependency %q has an operator but no version", s)
		}
		catpkg, d.Version = name, version
	}

	category, name, ok := strings.Cut(catpkg, "/")
	if !ok {
		return Dependency{}, errors.New(errors.ErrCodeInvalidDependency, "dependency %q has no category", s)
	}
	d.Category, d.Name = category, name

	if err := d.Validate(); err != nil {
		return Dependency{}, err
	}
	return d, nil
}

// MustParseDependency is like ParseDependency but panics on error.
func MustParseDependency(s string) Dependency {
	d, err := ParseDependency(s)
	if err != nil {
		panic(err)
	}
	return d
}

// MarshalText encodes d in its string form.
func (d Dependency) MarshalText() ([]byte, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return []byte(d.String()), nil
}

// UnmarshalText decodes a dependency string.
func (d *Dependency) UnmarshalText(text []byte) error {
	parsed, err := ParseDependency(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

package atom

import (
	"regexp"
	"strings"

	"github.com/matzehuels/overlaysmith/pkg/errors"
)

var (
	categoryRe = regexp.MustCompile(`^[A-Za-z0-9_][A-Za-z0-9+_.-]*$`)
	nameRe     = regexp.MustCompile(`^[A-Za-z0-9_][A-Za-z0-9+_-]*$`)
)

// ValidateCategory checks that category is a well-formed category name.
func ValidateCategory(category string) error {
	if err := errors.ValidatePackageName(category); err != nil {
		return err
	}
	if !categoryRe.MatchString(category) {
		return errors.New(errors.ErrCodeInvalidPackage, "invalid category: %q", category)
	}
	return nil
}

// ValidateName checks that name is a well-formed package name. A name may
// contain hyphens but must not end in something that reads as a version,
// otherwise "name-version" would be ambiguous.
func ValidateName(name string) error {
	if err := errors.ValidatePackageName(name); err != nil {
		return err
	}
	if !nameRe.MatchString(name) {
		return errors.New(errors.ErrCodeInvalidPackage, "invalid package name: %q", name)
	}
	if i := versionStart(name); i >= 0 {
		return errors.New(errors.ErrCodeInvalidPackage, "package name %q ends in a version", name)
	}
	return nil
}

// SplitName splits "name" or "category/name". The category is empty when
// none is given.
func SplitName(s string) (category, name string, err error) {
	parts := strings.Split(s, "/")
	switch len(parts) {
	case 1:
		name = parts[0]
	case 2:
		category, name = parts[0], parts[1]
		if err := ValidateCategory(category); err != nil {
			return "", "", errors.Wrap(errors.ErrCodeInvalidPackage, err, "malformed package name %q", s)
		}
	default:
		return "", "", errors.New(errors.ErrCodeInvalidPackage, "malformed package name %q: too many '/'", s)
	}
	if err := ValidateName(name); err != nil {
		return "", "", errors.Wrap(errors.ErrCodeInvalidPackage, err, "malformed package name %q", s)
	}
	return category, name, nil
}

// splitVersion splits "name-version" at the first hyphen whose remainder is a
// valid version. glob permits a trailing '*' on the version.
func splitVersion(s string, glob bool) (name, version string, ok bool) {
	for i := 0; i < len(s); i++ {
		if s[i] != '-' || i == 0 {
			continue
		}
		v := s[i+1:]
		if glob {
			v = strings.TrimSuffix(v, "*")
		}
		if IsVersion(v) {
			return s[:i], s[i+1:], true
		}
	}
	return "", "", false
}

// versionStart returns the index of the hyphen that starts a trailing
// version in s, or -1.
func versionStart(s string) int {
	for i := 1; i < len(s); i++ {
		if s[i] == '-' && IsVersion(s[i+1:]) {
			return i
		}
	}
	return -1
}

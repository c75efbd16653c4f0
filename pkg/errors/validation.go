package errors

import (
	"strings"
	"unicode"
)

const (
	maxNameLength = 256
	maxPathLength = 500
)

// ValidatePackageName checks that a category or package name is safe to use
// as a single directory or file name inside an overlay. It does not check
// the name grammar; pkg/atom does that.
func ValidatePackageName(name string) error {
	switch {
	case name == "":
		return New(ErrCodeInvalidPackage, "package name cannot be empty")
	case len(name) > maxNameLength:
		return New(ErrCodeInvalidPackage, "package name too long (max %d characters)", maxNameLength)
	case hasControl(name):
		return New(ErrCodeInvalidPackage, "package name %q contains control characters", name)
	}
	if i := strings.IndexAny(name, `/\`); i >= 0 {
		return New(ErrCodeInvalidPackage, "package name %q contains %q", name, name[i:i+1])
	}
	if strings.Contains(name, "..") {
		return New(ErrCodeInvalidPackage, "package name %q contains \"..\"", name)
	}
	return nil
}

// ValidatePath checks a slash-separated relative path, such as an archive
// member, before it is joined to a directory on disk.
func ValidatePath(path string) error {
	switch {
	case path == "":
		return New(ErrCodeInvalidPath, "path cannot be empty")
	case len(path) > maxPathLength:
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	case hasControl(path):
		return New(ErrCodeInvalidPath, "path %q contains control characters", path)
	case strings.HasPrefix(path, "/"):
		return New(ErrCodeInvalidPath, "path %q is absolute", path)
	case strings.Contains(path, `\`):
		return New(ErrCodeInvalidPath, "path %q contains a backslash", path)
	}
	for seg := range strings.SplitSeq(path, "/") {
		if seg == ".." {
			return New(ErrCodeInvalidPath, "path %q leaves its root", path)
		}
	}
	return nil
}

// hasControl reports whether s contains a control character, NUL included.
func hasControl(s string) bool {
	return strings.ContainsFunc(s, unicode.IsControl)
}

package deps

import (
	"fmt"
	"strings"

	"github.com/matzehuels/overlaysmith/pkg/atom"
	"github.com/matzehuels/overlaysmith/pkg/errors"
)

// UnresolvableError reports a root name the database does not contain.
type UnresolvableError struct {
	Name string
}

func (e *UnresolvableError) Error() string {
	return fmt.Sprintf("no package named %q", e.Name)
}

// ErrorCode implements [errors.Coded].
func (e *UnresolvableError) ErrorCode() errors.Code { return errors.ErrCodePackageNotFound }

// AmbiguousError reports a bare name found in more than one category.
type AmbiguousError struct {
	Name       string
	Categories []string
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("ambiguous package name %q, choose one of: %s", e.Name, strings.Join(e.Candidates(), ", "))
}

// Candidates returns the fully qualified alternatives.
func (e *AmbiguousError) Candidates() []string {
	out := make([]string, len(e.Categories))
	for i, c := range e.Categories {
		out[i] = c + "/" + e.Name
	}
	return out
}

// ErrorCode implements [errors.Coded].
func (e *AmbiguousError) ErrorCode() errors.Code { return errors.ErrCodeAmbiguousPackage }

// CircularError reports a dependency cycle. Path is the chain of packages
// from the root to the one that closed the cycle.
type CircularError struct {
	Package atom.Package
	Path    []atom.Package
}

func (e *CircularError) Error() string {
	if len(e.Path) == 0 {
		return fmt.Sprintf("circular dependency on %s", e.Package)
	}
	parts := make([]string, 0, len(e.Path)+1)
	for _, p := range e.Path {
		parts = append(parts, p.String())
	}
	parts = append(parts, e.Package.String())
	return fmt.Sprintf("circular dependency on %s: %s", e.Package, strings.Join(parts, " -> "))
}

// ErrorCode implements [errors.Coded].
func (e *CircularError) ErrorCode() errors.Code { return errors.ErrCodeCircularDependency }

var (
	_ errors.Coded = (*UnresolvableError)(nil)
	_ errors.Coded = (*AmbiguousError)(nil)
	_ errors.Coded = (*CircularError)(nil)
)

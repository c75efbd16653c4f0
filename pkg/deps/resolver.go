package deps

import (
	"context"
	stderrors "errors"
	"fmt"
	"slices"
	"time"

	"github.com/matzehuels/overlaysmith/pkg/atom"
	"github.com/matzehuels/overlaysmith/pkg/db"
	"github.com/matzehuels/overlaysmith/pkg/observability"
)

// Resolver computes dependency closures over a package database.
type Resolver struct {
	DB db.Database

	// Logger receives notices about skipped references (optional).
	Logger func(string, ...any)
}

// NewResolver returns a Resolver over database.
func NewResolver(database db.Database, logger func(string, ...any)) *Resolver {
	return &Resolver{DB: database, Logger: logger}
}

func (r *Resolver) logf(format string, args ...any) {
	if r.Logger != nil {
		r.Logger(format, args...)
	}
}

// Locate resolves "name" or "category/name" to a category and name. A bare
// name must exist in exactly one category.
func (r *Resolver) Locate(name string) (category, pkgname string, err error) {
	category, pkgname, err = atom.SplitName(name)
	if err != nil {
		return "", "", err
	}
	if category != "" {
		return category, pkgname, nil
	}

	var found []string
	for _, c := range r.DB.Categories() {
		ok, err := r.DB.InCategory(c, pkgname)
		if err != nil {
			if db.IsMissing(err) {
				continue
			}
			return "", "", err
		}
		if ok {
			found = append(found, c)
		}
	}

	switch len(found) {
	case 0:
		return "", "", &UnresolvableError{Name: name}
	case 1:
		return found[0], pkgname, nil
	default:
		slices.Sort(found)
		return "", "", &AmbiguousError{Name: pkgname, Categories: found}
	}
}

// Resolve returns the closure of every listed version of name.
func (r *Resolver) Resolve(name string) (*Resolution, error) {
	return r.ResolveContext(context.Background(), name)
}

// ResolveContext is Resolve with cancellation and hook context.
func (r *Resolver) ResolveContext(ctx context.Context, name string) (res *Resolution, err error) {
	hooks := observability.Resolver()
	hooks.OnResolveStart(ctx, name)
	start := time.Now()
	defer func() {
		var packages, skipped int
		if res != nil {
			packages, skipped = len(res.Packages), len(res.Skipped)
		}
		hooks.OnResolveComplete(ctx, name, packages, skipped, time.Since(start), err)
	}()

	category, pkgname, err := r.Locate(name)
	if err != nil {
		return nil, err
	}
	versions, err := r.DB.PackageVersions(category, pkgname)
	if err != nil {
		if db.IsMissing(err) {
			return nil, &UnresolvableError{Name: name}
		}
		return nil, err
	}
	if len(versions) == 0 {
		return nil, &UnresolvableError{Name: name}
	}

	c := newClosure(ctx, r)
	for _, v := range versions {
		p := atom.Package{Category: category, Name: pkgname, Version: v}
		out, err := c.visit(p)
		if err != nil {
			return nil, err
		}
		if !out.Resolved {
			c.skip(atom.Package{}, p.String(), out.Reason)
		}
	}
	c.res.Roots = []string{category + "/" + pkgname}
	return c.res, nil
}

// ResolveAll resolves each name independently and unions the results. Every
// failure is returned, joined; the partial union is returned alongside.
func (r *Resolver) ResolveAll(ctx context.Context, names []string) (*Resolution, error) {
	all := newResolution()
	var errs []error
	for _, name := range names {
		res, err := r.ResolveContext(ctx, name)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			errs = append(errs, fmt.Errorf("resolve %s: %w", name, err))
			continue
		}
		all.Merge(res)
	}
	return all, stderrors.Join(errs...)
}

// Outcome is the result of visiting one package version.
type Outcome struct {
	Resolved bool
	// Reason is set when Resolved is false.
	Reason SkipReason
}

// closure holds the state of one resolution. It is created per call and
// never shared.
type closure struct {
	ctx        context.Context
	db         db.Database
	logf       func(string, ...any)
	inProgress map[atom.Package]struct{}
	stack      []atom.Package
	edges      map[Edge]struct{}
	skips      map[Skip]struct{}
	res        *Resolution
}

func newClosure(ctx context.Context, r *Resolver) *closure {
	return &closure{
		ctx:        ctx,
		db:         r.DB,
		logf:       r.logf,
		inProgress: make(map[atom.Package]struct{}),
		edges:      make(map[Edge]struct{}),
		skips:      make(map[Skip]struct{}),
		res:        newResolution(),
	}
}

func (c *closure) visit(p atom.Package) (Outcome, error) {
	if err := c.ctx.Err(); err != nil {
		return Outcome{}, err
	}
	if c.res.Packages.Has(p) {
		return Outcome{Resolved: true}, nil
	}
	if _, ok := c.inProgress[p]; ok {
		return Outcome{}, &CircularError{Package: p, Path: slices.Clone(c.stack)}
	}

	c.inProgress[p] = struct{}{}
	c.stack = append(c.stack, p)
	defer func() {
		delete(c.inProgress, p)
		c.stack = c.stack[:len(c.stack)-1]
	}()

	desc, err := c.db.Description(p)
	if err != nil {
		if db.IsMissing(err) {
			c.logf("package %s not found, skipping", p)
			return Outcome{Reason: SkipNoDescription}, nil
		}
		return Outcome{}, err
	}

	for _, dep := range desc.Dependencies {
		versions, err := c.db.PackageVersions(dep.Category, dep.Name)
		if err != nil {
			if db.IsMissing(err) {
				c.logf("dependency %s of %s is not in the database, skipping", dep.CatPkg(), p)
				c.skip(p, dep.CatPkg(), SkipNotInDatabase)
				continue
			}
			return Outcome{}, err
		}
		for _, v := range versions {
			child := dep.Package(v)
			out, err := c.visit(child)
			if err != nil {
				return Outcome{}, err
			}
			if out.Resolved {
				c.edge(p, child)
			} else {
				c.skip(p, child.String(), out.Reason)
			}
		}
	}

	c.res.Packages.Add(p)
	return Outcome{Resolved: true}, nil
}

func (c *closure) edge(from, to atom.Package) {
	e := Edge{From: from, To: to}
	if _, ok := c.edges[e]; ok {
		return
	}
	c.edges[e] = struct{}{}
	c.res.Edges = append(c.res.Edges, e)
}

func (c *closure) skip(from atom.Package, ref string, reason SkipReason) {
	s := Skip{From: from, Ref: ref, Reason: reason}
	if _, ok := c.skips[s]; ok {
		return
	}
	c.skips[s] = struct{}{}
	c.res.Skipped = append(c.res.Skipped, s)
}

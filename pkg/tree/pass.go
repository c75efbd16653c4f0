package tree

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/overlaysmith/pkg/atom"
	"github.com/matzehuels/overlaysmith/pkg/db"
	"github.com/matzehuels/overlaysmith/pkg/deps"
	"github.com/matzehuels/overlaysmith/pkg/gen"
	"github.com/matzehuels/overlaysmith/pkg/manifest"
	"github.com/matzehuels/overlaysmith/pkg/observability"
)

// pass is the state of one Generate, Update or Add call.
type pass struct {
	ctx   context.Context
	s     *Synchronizer
	gens  gen.Set
	rep   *Report
	start time.Time

	// written holds every descriptor path written, touched every
	// category/name.
	written map[string]struct{}
	touched map[string]struct{}

	mu sync.Mutex // guards rep.Removed and rep.Digested while digesting
}

func newPass(ctx context.Context, s *Synchronizer, mode Mode) *pass {
	return &pass{
		ctx:     ctx,
		s:       s,
		gens:    s.generators(),
		rep:     &Report{ID: uuid.New(), Mode: mode, Root: s.Root},
		start:   time.Now(),
		written: make(map[string]struct{}),
		touched: make(map[string]struct{}),
	}
}

func (p *pass) begin(packages int) {
	p.s.logger().Info("starting pass", "mode", p.rep.Mode, "root", p.s.Root, "packages", packages, "id", p.rep.ID)
	observability.Tree().OnPassStart(p.ctx, string(p.rep.Mode), packages)
}

func (p *pass) finish() {
	p.rep.Duration = time.Since(p.start)
	slices.Sort(p.rep.Scrubbed)
	slices.Sort(p.rep.Removed)
	slices.Sort(p.rep.Retained)
	slices.Sort(p.rep.Digested)
}

// effective returns the entries a pass writes: the union of the closures of
// names, or the whole database when names is empty. A failed resolution
// aborts before anything is written.
func (p *pass) effective(names []string) ([]db.Entry, error) {
	if len(names) == 0 {
		return p.s.DB.Entries(), nil
	}
	res, err := p.s.resolver().ResolveAll(p.ctx, names)
	if err != nil {
		return nil, err
	}
	return p.describe(res.Packages)
}

func (p *pass) describe(set deps.Set) ([]db.Entry, error) {
	entries := make([]db.Entry, 0, len(set))
	for _, pkg := range set.Sorted() {
		d, err := p.s.DB.Description(pkg)
		if err != nil {
			return nil, err
		}
		entries = append(entries, db.Entry{Package: pkg, Description: d})
	}
	return entries, nil
}

// wipe removes every non-hidden entry under the root.
func (p *pass) wipe() error {
	if err := os.MkdirAll(p.s.Root, 0o755); err != nil {
		return err
	}
	entries, err := os.ReadDir(p.s.Root)
	if err != nil {
		return err
	}
	p.s.logger().Info("wiping tree", "root", p.s.Root)
	for _, e := range entries {
		if e.Name()[0] == '.' {
			continue
		}
		if err := os.RemoveAll(filepath.Join(p.s.Root, e.Name())); err != nil {
			return err
		}
	}
	return nil
}

// writePackages writes the descriptor and metadata of every entry in order.
// Entries of one package share metadata.xml; the last version written wins.
func (p *pass) writePackages(entries []db.Entry) error {
	for _, e := range entries {
		if err := p.ctx.Err(); err != nil {
			return err
		}
		if err := p.writePackage(e.Package, e.Description); err != nil {
			return err
		}
	}
	return nil
}

func (p *pass) writePackage(pkg atom.Package, d db.Description) error {
	dir := p.packageDir(pkg.CatPkg())
	descriptor := filepath.Join(dir, pkg.Name+"-"+pkg.Version+".ebuild")
	_, statErr := os.Stat(descriptor)
	generated := os.IsNotExist(statErr)

	lines, err := p.gens.Descriptor.Descriptor(pkg, d)
	if err != nil {
		return err
	}
	if err := writeFile(descriptor, lines); err != nil {
		return err
	}
	if lines, err = p.gens.Metadata.Metadata(pkg); err != nil {
		return err
	}
	if err := writeFile(filepath.Join(dir, "metadata.xml"), lines); err != nil {
		return err
	}

	p.written[descriptor] = struct{}{}
	p.touched[pkg.CatPkg()] = struct{}{}
	if generated {
		p.rep.Generated = append(p.rep.Generated, pkg)
		p.s.logger().Info("generated", "package", pkg)
	} else {
		p.rep.Refreshed = append(p.rep.Refreshed, pkg)
		p.s.logger().Debug("refreshed", "package", pkg)
	}
	observability.Tree().OnPackageWritten(p.ctx, pkg.String(), generated)
	return nil
}

func (p *pass) writeModules(names []string) error {
	for _, name := range names {
		lines, err := p.gens.Modules.Module(name)
		if err != nil {
			return err
		}
		if err := writeFile(filepath.Join(p.s.Root, "eclass", name+gen.ModuleExt), lines); err != nil {
			return err
		}
		p.rep.Modules = append(p.rep.Modules, name)
	}
	return nil
}

// scrub deletes descriptors in touched package directories that this pass
// did not write.
func (p *pass) scrub() error {
	for _, cp := range p.touchedCatPkgs() {
		dir := p.packageDir(cp)
		matches, err := descriptorsIn(dir, filepath.Base(cp))
		if err != nil {
			return err
		}
		for _, m := range matches {
			if _, ok := p.written[m]; ok {
				continue
			}
			if err := os.Remove(m); err != nil {
				return err
			}
			rel := p.rel(m)
			p.rep.Scrubbed = append(p.rep.Scrubbed, rel)
			p.s.logger().Info("scrubbed stale descriptor", "file", rel)
		}
	}
	return nil
}

// descriptorsIn lists the name-*.ebuild files in dir, sorted. The directory
// is read rather than globbed so an overlay path holding glob metacharacters
// still matches.
func descriptorsIn(dir, name string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		base := e.Name()
		if !e.IsDir() && strings.HasPrefix(base, name+"-") && strings.HasSuffix(base, ".ebuild") {
			out = append(out, filepath.Join(dir, base))
		}
	}
	return out, nil
}

// cleanOrphans removes, or with keep retains, package directories under
// non-reserved categories that this pass did not touch.
func (p *pass) cleanOrphans(keep bool) error {
	categories, err := os.ReadDir(p.s.Root)
	if err != nil {
		return err
	}
	for _, c := range categories {
		if !c.IsDir() || isReserved(c.Name()) {
			continue
		}
		packages, err := os.ReadDir(filepath.Join(p.s.Root, c.Name()))
		if err != nil {
			return err
		}
		for _, pk := range packages {
			cp := c.Name() + "/" + pk.Name()
			if _, ok := p.touched[cp]; ok || !pk.IsDir() {
				continue
			}
			if keep {
				p.rep.Retained = append(p.rep.Retained, cp)
				p.s.logger().Info("keeping orphaned package", "package", cp)
				continue
			}
			if err := os.RemoveAll(p.packageDir(cp)); err != nil {
				return err
			}
			p.rep.Removed = append(p.rep.Removed, cp)
			p.s.logger().Info("removed orphaned package", "package", cp)
		}
	}
	return nil
}

// authoritative returns the external digester. A [manifest.Tool] is copied
// so that erasures are recorded in the report.
func (p *pass) authoritative(erase bool) manifest.Digester {
	if p.s.Tool == nil {
		return &manifest.Tool{Erase: erase, OnErase: p.erased, Logger: p.s.logger()}
	}
	t, ok := p.s.Tool.(*manifest.Tool)
	if !ok {
		return p.s.Tool
	}
	c := *t
	c.Erase = c.Erase || erase
	c.OnErase = func(dir string) {
		p.erased(dir)
		if t.OnErase != nil {
			t.OnErase(dir)
		}
	}
	if c.Logger == nil {
		c.Logger = p.s.logger()
	}
	return &c
}

func (p *pass) erased(dir string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rep.Removed = append(p.rep.Removed, p.rel(dir))
}

func (p *pass) digest(catpkgs []string, d manifest.Digester, strategy string) error {
	if len(catpkgs) == 0 {
		return nil
	}
	p.s.logger().Info("digesting", "strategy", strategy, "packages", len(catpkgs))
	all := manifest.DigestAll
	if strategy == "authoritative" {
		all = manifest.DigestAllStrict
	}
	return all(p.ctx, &observed{p: p, d: d, strategy: strategy}, p.s.Root, catpkgs, p.s.Workers)
}

func (p *pass) cleanDB(clean bool) error {
	if !clean {
		return nil
	}
	p.s.logger().Info("cleaning package database")
	return p.s.DB.Clean()
}

func (p *pass) touchedCatPkgs() []string {
	out := make([]string, 0, len(p.touched))
	for cp := range p.touched {
		out = append(out, cp)
	}
	slices.Sort(out)
	return out
}

func (p *pass) packageDir(catpkg string) string {
	return filepath.Join(p.s.Root, filepath.FromSlash(catpkg))
}

func (p *pass) rel(path string) string {
	rel, err := filepath.Rel(p.s.Root, path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}

// observed reports every digest to the tree hooks and records the
// directories that still exist afterwards.
type observed struct {
	p        *pass
	d        manifest.Digester
	strategy string
}

func (o *observed) Digest(ctx context.Context, dir string) error {
	start := time.Now()
	err := o.d.Digest(ctx, dir)
	cp := o.p.rel(dir)
	observability.Tree().OnDigest(ctx, cp, o.strategy, time.Since(start), err)
	if err != nil {
		return err
	}
	if _, statErr := os.Stat(dir); statErr == nil {
		o.p.mu.Lock()
		o.p.rep.Digested = append(o.p.rep.Digested, cp)
		o.p.mu.Unlock()
	}
	return nil
}

package tree

import (
	"context"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/overlaysmith/pkg/atom"
	"github.com/matzehuels/overlaysmith/pkg/db"
	"github.com/matzehuels/overlaysmith/pkg/deps"
	"github.com/matzehuels/overlaysmith/pkg/gen"
	"github.com/matzehuels/overlaysmith/pkg/manifest"
	"github.com/matzehuels/overlaysmith/pkg/observability"
)

// Mode names a kind of pass.
type Mode string

const (
	ModeGenerate Mode = "generate"
	ModeUpdate   Mode = "update"
	ModeAdd      Mode = "add"
)

// Source is a package database that can enumerate its entries.
type Source interface {
	db.Database
	// Entries lists every package version with its description, ordered
	// by category, name and ascending version.
	Entries() []db.Entry
}

// Synchronizer writes a package tree rooted at Root from DB.
//
// Zero fields take defaults: a Resolver over DB, the built-in generators,
// the fast digester, the external manifest tool and the system repos.conf.
type Synchronizer struct {
	Root       string
	DB         Source
	Resolver   *deps.Resolver
	Generators gen.Set

	// Fast and Tool are the two digest strategies.
	Fast manifest.Digester
	Tool manifest.Digester

	// Repos lists the repositories available as masters.
	Repos RepoLister
	// Masters are the master repositories written to layout.conf.
	Masters []string

	// Workers bounds concurrent digesting. Zero or one digests sequentially.
	Workers int

	Logger *log.Logger
}

// New returns a Synchronizer for root with every optional field defaulted.
func New(root string, source Source, logger *log.Logger) *Synchronizer {
	s := &Synchronizer{Root: root, DB: source, Logger: logger}
	s.Resolver = deps.NewResolver(source, s.logger().Debugf)
	s.Generators = gen.Default(source)
	s.Fast = manifest.Fast{}
	s.Tool = &manifest.Tool{Logger: logger}
	s.Repos = ReposConf{}
	return s
}

// Options tune a single pass.
type Options struct {
	// Packages restricts the pass to the dependency closure of these names.
	// Empty means every package in the database.
	Packages []string

	// Digest selects the external manifest tool over the fast digester for
	// newly generated packages (Update) or all packages (Generate).
	Digest bool

	// Erase removes packages whose authoritative digest fails.
	Erase bool

	// Keep retains package directories an Update did not touch.
	Keep bool

	// CleanDB discards the database after a successful pass.
	CleanDB bool
}

// Report summarizes a pass.
type Report struct {
	ID   uuid.UUID
	Mode Mode
	Root string

	// Generated are versions whose descriptor did not exist before the pass,
	// Refreshed those that were rewritten.
	Generated []atom.Package
	Refreshed []atom.Package

	// Scrubbed are stale descriptor files, relative to Root.
	Scrubbed []string
	// Removed are package directories deleted as orphans or after a failed
	// digest; Retained are orphans kept because of Options.Keep.
	Removed  []string
	Retained []string

	Modules  []string
	Digested []string

	Duration time.Duration
}

// Packages returns every package written by the pass, sorted.
func (r *Report) Packages() []atom.Package {
	all := slices.Concat(r.Generated, r.Refreshed)
	slices.SortFunc(all, atom.ComparePackages)
	return all
}

// Generate wipes the tree and writes every package of the effective set,
// all modules and the repository metadata, then digests every package.
func (s *Synchronizer) Generate(ctx context.Context, opts Options) (*Report, error) {
	return s.run(ctx, ModeGenerate, func(p *pass) error {
		masters, err := Masters(s.Masters, s.Repos)
		if err != nil {
			return err
		}
		entries, err := p.effective(opts.Packages)
		if err != nil {
			return err
		}
		p.begin(len(entries))

		if err := p.wipe(); err != nil {
			return err
		}
		if err := writeRepoMetadata(s.Root, masters); err != nil {
			return err
		}
		if err := p.writePackages(entries); err != nil {
			return err
		}
		if err := p.writeModules(s.generators().Modules.Modules()); err != nil {
			return err
		}

		catpkgs := p.touchedCatPkgs()
		if opts.Digest {
			err = p.digest(catpkgs, p.authoritative(opts.Erase), "authoritative")
		} else {
			err = p.digest(catpkgs, s.fast(), "fast")
		}
		if err != nil {
			return err
		}
		return p.cleanDB(opts.CleanDB)
	})
}

// Update rewrites every package of the effective set in place, scrubs stale
// descriptors and orphaned packages, rewrites all modules and the repository
// metadata, and digests what it wrote.
//
// With Options.Digest, newly generated packages get the authoritative digest
// and the remaining refreshed packages the fast one. Without it every
// written package is digested fast.
func (s *Synchronizer) Update(ctx context.Context, opts Options) (*Report, error) {
	return s.run(ctx, ModeUpdate, func(p *pass) error {
		masters, err := Masters(s.Masters, s.Repos)
		if err != nil {
			return err
		}
		entries, err := p.effective(opts.Packages)
		if err != nil {
			return err
		}
		p.begin(len(entries))

		if err := writeRepoMetadata(s.Root, masters); err != nil {
			return err
		}
		if err := p.writePackages(entries); err != nil {
			return err
		}
		if err := p.scrub(); err != nil {
			return err
		}
		if err := p.cleanOrphans(opts.Keep); err != nil {
			return err
		}
		if err := p.writeModules(s.generators().Modules.Modules()); err != nil {
			return err
		}

		if opts.Digest {
			generated := catPkgs(p.rep.Generated)
			refreshed := slices.DeleteFunc(catPkgs(p.rep.Refreshed), func(cp string) bool {
				_, found := slices.BinarySearch(generated, cp)
				return found
			})
			if err := p.digest(generated, p.authoritative(opts.Erase), "authoritative"); err != nil {
				return err
			}
			err = p.digest(refreshed, s.fast(), "fast")
		} else {
			err = p.digest(p.touchedCatPkgs(), s.fast(), "fast")
		}
		if err != nil {
			return err
		}
		return p.cleanDB(opts.CleanDB)
	})
}

// Add writes the dependency closure of name and the modules it inherits,
// then digests the written packages with the external tool. Nothing else in
// the tree is touched.
func (s *Synchronizer) Add(ctx context.Context, name string, opts Options) (*Report, error) {
	return s.run(ctx, ModeAdd, func(p *pass) error {
		res, err := s.resolver().ResolveContext(ctx, name)
		if err != nil {
			return err
		}
		entries, err := p.describe(res.Packages)
		if err != nil {
			return err
		}
		p.begin(len(entries))

		var modules []string
		for _, e := range entries {
			modules = append(modules, e.Description.Eclasses...)
		}
		slices.Sort(modules)

		if err := p.writeModules(slices.Compact(modules)); err != nil {
			return err
		}
		if err := p.writePackages(entries); err != nil {
			return err
		}
		return p.digest(p.touchedCatPkgs(), p.authoritative(opts.Erase), "authoritative")
	})
}

func (s *Synchronizer) run(ctx context.Context, mode Mode, fn func(*pass) error) (*Report, error) {
	p := newPass(ctx, s, mode)
	err := fn(p)
	p.finish()
	observability.Tree().OnPassComplete(ctx, string(mode), p.rep.Duration, err)
	if err != nil {
		return p.rep, err
	}
	s.logger().Info("pass complete", "mode", mode,
		"generated", len(p.rep.Generated), "refreshed", len(p.rep.Refreshed),
		"removed", len(p.rep.Removed), "duration", p.rep.Duration.Round(time.Millisecond))
	return p.rep, nil
}

func (s *Synchronizer) logger() *log.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return log.Default()
}

func (s *Synchronizer) resolver() *deps.Resolver {
	if s.Resolver != nil {
		return s.Resolver
	}
	return deps.NewResolver(s.DB, s.logger().Debugf)
}

func (s *Synchronizer) generators() gen.Set {
	g := s.Generators
	def := gen.Default(s.DB)
	if g.Descriptor == nil {
		g.Descriptor = def.Descriptor
	}
	if g.Metadata == nil {
		g.Metadata = def.Metadata
	}
	if g.Modules == nil {
		g.Modules = def.Modules
	}
	return g
}

func (s *Synchronizer) fast() manifest.Digester {
	if s.Fast != nil {
		return s.Fast
	}
	return manifest.Fast{}
}

func catPkgs(pkgs []atom.Package) []string {
	out := make([]string, 0, len(pkgs))
	for _, p := range pkgs {
		out = append(out, p.CatPkg())
	}
	slices.Sort(out)
	return slices.Compact(out)
}

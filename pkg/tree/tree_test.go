package tree

import (
	"context"
	stderrors "errors"
	"io"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/overlaysmith/pkg/atom"
	"github.com/matzehuels/overlaysmith/pkg/db"
	"github.com/matzehuels/overlaysmith/pkg/deps"
	"github.com/matzehuels/overlaysmith/pkg/errors"
	"github.com/matzehuels/overlaysmith/pkg/gen"
	"github.com/matzehuels/overlaysmith/pkg/manifest"
	"github.com/matzehuels/overlaysmith/pkg/observability"
)

func pkg(category, name, version string) atom.Package {
	return atom.Package{Category: category, Name: name, Version: version}
}

func must(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
}

func sampleDB(t *testing.T, root string) *db.PackageDB {
	t.Helper()
	d := db.New(filepath.Join(root, ".overlaysmith", "db", "test"))
	must(t, d.AddCategory("dev-python", "Python packages"))
	must(t, d.AddCategory("app-misc", ""))
	must(t, d.AddPackage(pkg("dev-python", "requests", "2.9.0"), db.Description{
		Description: "HTTP for humans (old)",
		Fields:      map[string]string{gen.FieldLongDescription: "old requests"},
	}))
	must(t, d.AddPackage(pkg("dev-python", "requests", "2.31.0"), db.Description{
		Description:  "HTTP for humans",
		Eclasses:     []string{"overlaysmith-python"},
		Dependencies: []atom.Dependency{atom.MustParseDependency(">=dev-python/urllib3-1.21")},
		Fields:       map[string]string{gen.FieldLongDescription: "new requests"},
	}))
	must(t, d.AddPackage(pkg("dev-python", "urllib3", "2.0.7"), db.Description{
		Description: "HTTP library",
		Eclasses:    []string{"overlaysmith"},
	}))
	must(t, d.AddPackage(pkg("app-misc", "hello", "1.0"), db.Description{Description: "hello"}))
	must(t, d.Write())
	return d
}

type recorder struct {
	mu   sync.Mutex
	root string
	dirs []string
}

func (r *recorder) Digest(_ context.Context, dir string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rel, _ := filepath.Rel(r.root, dir)
	r.dirs = append(r.dirs, filepath.ToSlash(rel))
	return nil
}

func (r *recorder) got() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := slices.Clone(r.dirs)
	slices.Sort(out)
	r.dirs = nil
	return out
}

func newSync(t *testing.T) (*Synchronizer, *db.PackageDB) {
	t.Helper()
	return newSyncAt(t, filepath.Join(t.TempDir(), "overlay"))
}

func newSyncAt(t *testing.T, root string) (*Synchronizer, *db.PackageDB) {
	t.Helper()
	d := sampleDB(t, root)
	s := New(root, d, log.New(io.Discard))
	s.Repos = StaticRepos{}
	return s, d
}

// snapshot maps every regular file under root, except the database, to its
// contents.
func snapshot(t *testing.T, root string) map[string]string {
	t.Helper()
	files := make(map[string]string)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() && d.Name() == ".overlaysmith" {
			return filepath.SkipDir
		}
		if !d.Type().IsRegular() {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		rel, _ := filepath.Rel(root, path)
		files[filepath.ToSlash(rel)] = string(data)
		return nil
	})
	must(t, err)
	return files
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func strs(pkgs []atom.Package) []string {
	out := make([]string, len(pkgs))
	for i, p := range pkgs {
		out[i] = p.String()
	}
	return out
}

var allPackages = []string{
	"app-misc/hello-1.0",
	"dev-python/requests-2.9.0",
	"dev-python/requests-2.31.0",
	"dev-python/urllib3-2.0.7",
}

func TestGenerateLayout(t *testing.T) {
	s, _ := newSync(t)
	rep, err := s.Generate(context.Background(), Options{})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	files := snapshot(t, s.Root)
	want := []string{
		"app-misc/hello/Manifest",
		"app-misc/hello/hello-1.0.ebuild",
		"app-misc/hello/metadata.xml",
		"dev-python/requests/Manifest",
		"dev-python/requests/metadata.xml",
		"dev-python/requests/requests-2.31.0.ebuild",
		"dev-python/requests/requests-2.9.0.ebuild",
		"dev-python/urllib3/Manifest",
		"dev-python/urllib3/metadata.xml",
		"dev-python/urllib3/urllib3-2.0.7.ebuild",
		"eclass/overlaysmith-python.eclass",
		"eclass/overlaysmith.eclass",
		"metadata/layout.conf",
		"profiles/repo_name",
	}
	if got := slices.Sorted(maps.Keys(files)); !slices.Equal(got, want) {
		t.Errorf("files = %v\nwant %v", got, want)
	}

	if got := files["profiles/repo_name"]; got != "overlay\n" {
		t.Errorf("repo_name = %q", got)
	}
	if got := files["metadata/layout.conf"]; got != "repo-name = overlay\nmasters = gentoo\n" {
		t.Errorf("layout.conf = %q", got)
	}
	if !strings.Contains(files["dev-python/requests/requests-2.31.0.ebuild"], "\t>=dev-python/urllib3-1.21\n") {
		t.Error("descriptor lacks dependency")
	}

	if rep.Mode != ModeGenerate || len(rep.Refreshed) != 0 {
		t.Errorf("report = %+v", rep)
	}
	if got := strs(rep.Generated); !slices.Equal(got, allPackages) {
		t.Errorf("Generated = %v", got)
	}
	if want := []string{"app-misc/hello", "dev-python/requests", "dev-python/urllib3"}; !slices.Equal(rep.Digested, want) {
		t.Errorf("Digested = %v", rep.Digested)
	}
}

func TestGenerateWipesTree(t *testing.T) {
	s, _ := newSync(t)
	must(t, os.MkdirAll(filepath.Join(s.Root, "junk", "pkg"), 0o755))
	must(t, os.WriteFile(filepath.Join(s.Root, "README"), []byte("x"), 0o644))
	must(t, os.MkdirAll(filepath.Join(s.Root, ".git"), 0o755))

	if _, err := s.Generate(context.Background(), Options{}); err != nil {
		t.Fatal(err)
	}
	if exists(filepath.Join(s.Root, "junk")) || exists(filepath.Join(s.Root, "README")) {
		t.Error("Generate should remove non-hidden entries")
	}
	if !exists(filepath.Join(s.Root, ".git")) || !exists(s.DB.(*db.PackageDB).Dir()) {
		t.Error("Generate should keep hidden entries")
	}
}

func TestUpdateTwiceIsByteIdentical(t *testing.T) {
	s, _ := newSync(t)
	ctx := context.Background()

	first, err := s.Update(ctx, Options{})
	if err != nil {
		t.Fatalf("first Update: %v", err)
	}
	before := snapshot(t, s.Root)

	second, err := s.Update(ctx, Options{})
	if err != nil {
		t.Fatalf("second Update: %v", err)
	}
	after := snapshot(t, s.Root)

	if !maps.Equal(before, after) {
		t.Error("second Update changed file contents")
	}
	if got := strs(first.Generated); !slices.Equal(got, allPackages) {
		t.Errorf("first Generated = %v", got)
	}
	if len(second.Generated) != 0 {
		t.Errorf("second Generated = %v, want none", second.Generated)
	}
	if got := strs(second.Refreshed); !slices.Equal(got, allPackages) {
		t.Errorf("second Refreshed = %v", got)
	}
	if first.ID == second.ID {
		t.Error("passes should have distinct IDs")
	}
}

func TestUpdateOrphans(t *testing.T) {
	for _, keep := range []bool{false, true} {
		s, _ := newSync(t)
		ctx := context.Background()
		if _, err := s.Update(ctx, Options{}); err != nil {
			t.Fatal(err)
		}
		orphan := filepath.Join(s.Root, "app-misc", "gone")
		must(t, os.MkdirAll(orphan, 0o755))
		must(t, os.WriteFile(filepath.Join(orphan, "gone-1.ebuild"), nil, 0o644))

		rep, err := s.Update(ctx, Options{Keep: keep})
		if err != nil {
			t.Fatal(err)
		}
		if keep {
			if !exists(orphan) || !slices.Equal(rep.Retained, []string{"app-misc/gone"}) || len(rep.Removed) != 0 {
				t.Errorf("keep: exists=%v report=%+v", exists(orphan), rep)
			}
		} else {
			if exists(orphan) || !slices.Equal(rep.Removed, []string{"app-misc/gone"}) || len(rep.Retained) != 0 {
				t.Errorf("remove: exists=%v report=%+v", exists(orphan), rep)
			}
		}
	}
}

func TestUpdateSparesReservedAndHidden(t *testing.T) {
	s, _ := newSync(t)
	keepers := []string{
		"eclass/custom.eclass",
		"profiles/categories",
		"metadata/md5-cache/x",
		".git/HEAD",
	}
	for _, k := range keepers {
		path := filepath.Join(s.Root, filepath.FromSlash(k))
		must(t, os.MkdirAll(filepath.Dir(path), 0o755))
		must(t, os.WriteFile(path, []byte("keep"), 0o644))
	}

	rep, err := s.Update(context.Background(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	for _, k := range keepers {
		if !exists(filepath.Join(s.Root, filepath.FromSlash(k))) {
			t.Errorf("%s was removed", k)
		}
	}
	if len(rep.Removed) != 0 {
		t.Errorf("Removed = %v", rep.Removed)
	}
}

func TestUpdateScrubsStaleDescriptors(t *testing.T) {
	s, _ := newSync(t)
	ctx := context.Background()
	if _, err := s.Update(ctx, Options{}); err != nil {
		t.Fatal(err)
	}
	stale := filepath.Join(s.Root, "dev-python", "requests", "requests-1.0.ebuild")
	must(t, os.WriteFile(stale, []byte("EAPI=8\n"), 0o644))
	unrelated := filepath.Join(s.Root, "dev-python", "requests", "notes.txt")
	must(t, os.WriteFile(unrelated, nil, 0o644))

	rep, err := s.Update(ctx, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if exists(stale) {
		t.Error("stale descriptor survived")
	}
	if !exists(unrelated) {
		t.Error("non-descriptor file removed")
	}
	if !slices.Equal(rep.Scrubbed, []string{"dev-python/requests/requests-1.0.ebuild"}) {
		t.Errorf("Scrubbed = %v", rep.Scrubbed)
	}
	manifestData, _ := os.ReadFile(filepath.Join(s.Root, "dev-python", "requests", manifest.FileName))
	if strings.Contains(string(manifestData), "requests-1.0.ebuild") {
		t.Error("Manifest still lists the scrubbed descriptor")
	}
}

func TestUpdateScrubsUnderGlobMetacharacters(t *testing.T) {
	s, _ := newSyncAt(t, filepath.Join(t.TempDir(), "over[lay]*?"))
	ctx := context.Background()
	if _, err := s.Update(ctx, Options{}); err != nil {
		t.Fatal(err)
	}
	stale := filepath.Join(s.Root, "app-misc", "hello", "hello-0.1.ebuild")
	must(t, os.WriteFile(stale, []byte("EAPI=8\n"), 0o644))

	rep, err := s.Update(ctx, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if exists(stale) {
		t.Error("stale descriptor survived")
	}
	if !slices.Equal(rep.Scrubbed, []string{"app-misc/hello/hello-0.1.ebuild"}) {
		t.Errorf("Scrubbed = %v", rep.Scrubbed)
	}

	s.Tool = &manifest.Tool{Command: []string{"true"}}
	if _, err := s.Generate(ctx, Options{Digest: true}); err != nil {
		t.Errorf("authoritative digest under %s: %v", s.Root, err)
	}
}

func TestMetadataNewestVersionWins(t *testing.T) {
	s, _ := newSync(t)
	if _, err := s.Update(context.Background(), Options{}); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(filepath.Join(s.Root, "dev-python", "requests", "metadata.xml"))
	must(t, err)
	if !strings.Contains(string(data), "new requests") || strings.Contains(string(data), "old requests") {
		t.Errorf("metadata.xml =\n%s", data)
	}
}

func TestUpdateDigestSplit(t *testing.T) {
	s, d := newSync(t)
	fast := &recorder{root: s.Root}
	tool := &recorder{root: s.Root}
	s.Fast, s.Tool = fast, tool
	ctx := context.Background()

	if _, err := s.Update(ctx, Options{Digest: true}); err != nil {
		t.Fatal(err)
	}
	all := []string{"app-misc/hello", "dev-python/requests", "dev-python/urllib3"}
	if got := tool.got(); !slices.Equal(got, all) {
		t.Errorf("first pass authoritative = %v", got)
	}
	if got := fast.got(); len(got) != 0 {
		t.Errorf("first pass fast = %v", got)
	}

	must(t, d.AddPackage(pkg("app-misc", "hello", "2.0"), db.Description{Description: "hello again"}))
	must(t, d.AddPackage(pkg("app-misc", "world", "1.0"), db.Description{Description: "world"}))
	if _, err := s.Update(ctx, Options{Digest: true}); err != nil {
		t.Fatal(err)
	}
	if got := tool.got(); !slices.Equal(got, []string{"app-misc/hello", "app-misc/world"}) {
		t.Errorf("second pass authoritative = %v", got)
	}
	if got := fast.got(); !slices.Equal(got, []string{"dev-python/requests", "dev-python/urllib3"}) {
		t.Errorf("second pass fast = %v", got)
	}

	if _, err := s.Update(ctx, Options{}); err != nil {
		t.Fatal(err)
	}
	if got := tool.got(); len(got) != 0 {
		t.Errorf("without digest authoritative = %v", got)
	}
	if got := fast.got(); len(got) != 4 {
		t.Errorf("without digest fast = %v", got)
	}
}

func TestGenerateDigest(t *testing.T) {
	s, d := newSync(t)
	fast := &recorder{root: s.Root}
	tool := &recorder{root: s.Root}
	s.Fast, s.Tool = fast, tool
	ctx := context.Background()
	all := []string{"app-misc/hello", "dev-python/requests", "dev-python/urllib3"}

	rep, err := s.Generate(ctx, Options{Digest: true})
	if err != nil {
		t.Fatal(err)
	}
	if got := tool.got(); !slices.Equal(got, all) {
		t.Errorf("authoritative = %v, want %v", got, all)
	}
	if got := fast.got(); len(got) != 0 {
		t.Errorf("fast = %v", got)
	}
	if !slices.Equal(rep.Digested, all) {
		t.Errorf("Digested = %v", rep.Digested)
	}

	// A full pass digests everything authoritatively, unchanged packages too.
	must(t, d.AddPackage(pkg("app-misc", "world", "1.0"), db.Description{Description: "world"}))
	if _, err := s.Generate(ctx, Options{Digest: true}); err != nil {
		t.Fatal(err)
	}
	if got, want := tool.got(), append(slices.Clone(all[:1]), "app-misc/world", all[1], all[2]); !slices.Equal(got, want) {
		t.Errorf("second pass authoritative = %v, want %v", got, want)
	}
	if got := fast.got(); len(got) != 0 {
		t.Errorf("second pass fast = %v", got)
	}

	if _, err := s.Generate(ctx, Options{}); err != nil {
		t.Fatal(err)
	}
	if got := tool.got(); len(got) != 0 {
		t.Errorf("without digest authoritative = %v", got)
	}
	if got := fast.got(); len(got) != 4 {
		t.Errorf("without digest fast = %v", got)
	}
}

func TestGenerateDigestFailure(t *testing.T) {
	s, _ := newSync(t)
	s.Tool = &manifest.Tool{Command: []string{"false"}}
	ctx := context.Background()

	_, err := s.Generate(ctx, Options{Digest: true})
	if !errors.Is(err, errors.ErrCodeDigest) {
		t.Fatalf("error = %v, want DIGEST_FAILED", err)
	}
	if !exists(filepath.Join(s.Root, "app-misc", "hello")) {
		t.Error("package directory removed without erase")
	}

	rep, err := s.Generate(ctx, Options{Digest: true, Erase: true})
	if err != nil {
		t.Fatalf("Generate with erase: %v", err)
	}
	want := []string{"app-misc/hello", "dev-python/requests", "dev-python/urllib3"}
	if got := slices.Sorted(slices.Values(rep.Removed)); !slices.Equal(got, want) {
		t.Errorf("Removed = %v", rep.Removed)
	}
	if len(rep.Digested) != 0 {
		t.Errorf("Digested = %v", rep.Digested)
	}
	for _, cp := range want {
		if exists(filepath.Join(s.Root, cp)) {
			t.Errorf("%s survived", cp)
		}
	}
	if !exists(filepath.Join(s.Root, "profiles", "repo_name")) {
		t.Error("erase removed repository metadata")
	}
}

func TestUpdateEraseFailedDigests(t *testing.T) {
	s, _ := newSync(t)
	s.Tool = &manifest.Tool{Command: []string{"false"}}
	s.Workers = 2

	rep, err := s.Update(context.Background(), Options{Digest: true, Erase: true})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	want := []string{"app-misc/hello", "dev-python/requests", "dev-python/urllib3"}
	if !slices.Equal(rep.Removed, want) {
		t.Errorf("Removed = %v", rep.Removed)
	}
	if len(rep.Digested) != 0 {
		t.Errorf("Digested = %v", rep.Digested)
	}
	for _, cp := range want {
		if exists(filepath.Join(s.Root, cp)) {
			t.Errorf("%s survived", cp)
		}
	}
}

func TestUpdateDigestFailure(t *testing.T) {
	s, _ := newSync(t)
	s.Tool = &manifest.Tool{Command: []string{"false"}}

	_, err := s.Update(context.Background(), Options{Digest: true})
	if !errors.Is(err, errors.ErrCodeDigest) {
		t.Fatalf("error = %v, want DIGEST_FAILED", err)
	}
	if !exists(filepath.Join(s.Root, "app-misc", "hello")) {
		t.Error("package directory removed without erase")
	}
}

func TestUpdateSelectedPackages(t *testing.T) {
	s, _ := newSync(t)
	rep, err := s.Update(context.Background(), Options{Packages: []string{"requests"}})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"dev-python/requests-2.9.0", "dev-python/requests-2.31.0", "dev-python/urllib3-2.0.7"}
	if got := strs(rep.Packages()); !slices.Equal(got, want) {
		t.Errorf("Packages = %v", got)
	}
	if exists(filepath.Join(s.Root, "app-misc")) {
		t.Error("package outside the closure written")
	}
}

func TestUpdateResolutionFailureLeavesTree(t *testing.T) {
	s, _ := newSync(t)
	_, err := s.Update(context.Background(), Options{Packages: []string{"requests", "nonexistent"}})
	var unresolvable *deps.UnresolvableError
	if !stderrors.As(err, &unresolvable) {
		t.Fatalf("error = %v, want UnresolvableError", err)
	}
	if exists(filepath.Join(s.Root, "profiles")) || exists(filepath.Join(s.Root, "dev-python")) {
		t.Error("tree touched after failed resolution")
	}
}

func TestMissingMaster(t *testing.T) {
	s, _ := newSync(t)
	s.Masters = []string{"science"}

	_, err := s.Generate(context.Background(), Options{})
	var missing *MissingMasterError
	if !stderrors.As(err, &missing) || missing.Master != "science" {
		t.Fatalf("error = %v, want MissingMasterError", err)
	}
	if !errors.Is(err, errors.ErrCodeMissingMaster) {
		t.Errorf("code = %s", errors.GetCode(err))
	}
	if exists(filepath.Join(s.Root, "profiles")) {
		t.Error("tree touched after master validation failed")
	}

	s.Repos = StaticRepos{"science", "guru"}
	if _, err := s.Generate(context.Background(), Options{}); err != nil {
		t.Fatal(err)
	}
	data, _ := os.ReadFile(filepath.Join(s.Root, "metadata", "layout.conf"))
	if !strings.Contains(string(data), "masters = science gentoo\n") {
		t.Errorf("layout.conf = %q", data)
	}
}

func TestAdd(t *testing.T) {
	s, _ := newSync(t)
	tool := &recorder{root: s.Root}
	s.Tool = tool

	rep, err := s.Add(context.Background(), "dev-python/urllib3", Options{})
	if err != nil {
		t.Fatal(err)
	}
	if got := strs(rep.Generated); !slices.Equal(got, []string{"dev-python/urllib3-2.0.7"}) {
		t.Errorf("Generated = %v", got)
	}
	if !slices.Equal(rep.Modules, []string{"overlaysmith"}) {
		t.Errorf("Modules = %v", rep.Modules)
	}
	if got := tool.got(); !slices.Equal(got, []string{"dev-python/urllib3"}) {
		t.Errorf("digested = %v", got)
	}
	for _, absent := range []string{"profiles", "metadata", "eclass/overlaysmith-python.eclass"} {
		if exists(filepath.Join(s.Root, absent)) {
			t.Errorf("Add wrote %s", absent)
		}
	}
}

func TestAddAmbiguous(t *testing.T) {
	s, d := newSync(t)
	must(t, d.AddPackage(pkg("app-misc", "requests", "1.0"), db.Description{Description: "clash"}))

	_, err := s.Add(context.Background(), "requests", Options{})
	if !errors.Is(err, errors.ErrCodeAmbiguousPackage) {
		t.Errorf("error = %v, want AMBIGUOUS_PACKAGE", err)
	}
}

func TestCleanDB(t *testing.T) {
	s, d := newSync(t)
	if _, err := s.Update(context.Background(), Options{CleanDB: true}); err != nil {
		t.Fatal(err)
	}
	if exists(d.Dir()) {
		t.Error("database directory survived CleanDB")
	}
}

type treeHooks struct {
	observability.NoopTreeHooks
	mu      sync.Mutex
	starts  int
	written int
	digests int
	done    []error
}

func (h *treeHooks) OnPassStart(context.Context, string, int) { h.starts++ }
func (h *treeHooks) OnPackageWritten(context.Context, string, bool) {
	h.written++
}

func (h *treeHooks) OnDigest(context.Context, string, string, time.Duration, error) {
	h.mu.Lock()
	h.digests++
	h.mu.Unlock()
}

func (h *treeHooks) OnPassComplete(_ context.Context, _ string, _ time.Duration, err error) {
	h.done = append(h.done, err)
}

func TestTreeHooks(t *testing.T) {
	h := &treeHooks{}
	observability.SetTreeHooks(h)
	t.Cleanup(observability.Reset)

	s, _ := newSync(t)
	s.Workers = 3
	if _, err := s.Update(context.Background(), Options{}); err != nil {
		t.Fatal(err)
	}
	if h.starts != 1 || h.written != 4 || h.digests != 3 || len(h.done) != 1 || h.done[0] != nil {
		t.Errorf("hooks = %+v", h)
	}
}

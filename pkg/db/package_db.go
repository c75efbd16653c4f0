package db

import (
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"

	"github.com/matzehuels/overlaysmith/pkg/atom"
	"github.com/matzehuels/overlaysmith/pkg/errors"
)

const (
	dbVersion     = 1
	layoutVersion = 1

	layoutFile     = "layout.json"
	categoriesFile = "categories.json"
	packagesFile   = "packages.json"
)

type layoutInfo struct {
	DBVersion     int `json:"db_version"`
	LayoutVersion int `json:"layout_version"`
}

type categoryData struct {
	CommonData map[string]string                 `json:"common_data"`
	Packages   map[string]map[string]Description `json:"packages"`
}

// PackageDB is a mutable, file-backed [Database]. It is not safe for
// concurrent mutation.
type PackageDB struct {
	dir        string
	categories map[string]string
	data       map[string]*categoryData
}

// New returns an empty database persisted under dir.
func New(dir string) *PackageDB {
	return &PackageDB{
		dir:        dir,
		categories: make(map[string]string),
		data:       make(map[string]*categoryData),
	}
}

// Open reads the database stored under dir. A missing directory yields an
// empty database.
func Open(dir string) (*PackageDB, error) {
	db := New(dir)

	raw, err := os.ReadFile(filepath.Join(dir, layoutFile))
	if os.IsNotExist(err) {
		return db, nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDatabase, err, "read database layout")
	}

	var layout layoutInfo
	if err := json.Unmarshal(raw, &layout); err != nil {
		return nil, errors.Wrap(errors.ErrCodeDatabase, err, "parse %s", layoutFile)
	}
	if layout.DBVersion != dbVersion || layout.LayoutVersion != layoutVersion {
		return nil, errors.New(errors.ErrCodeDatabase, "unsupported database version %d (layout %d)",
			layout.DBVersion, layout.LayoutVersion)
	}

	if err := readJSON(filepath.Join(dir, categoriesFile), &db.categories); err != nil {
		return nil, err
	}
	if db.categories == nil {
		db.categories = make(map[string]string)
	}

	for category := range db.categories {
		if err := atom.ValidateCategory(category); err != nil {
			return nil, errors.Wrap(errors.ErrCodeDatabase, err, "corrupt database")
		}
		path := filepath.Join(dir, category, packagesFile)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}
		var cd categoryData
		if err := readJSON(path, &cd); err != nil {
			return nil, err
		}
		if err := validateCategoryData(category, &cd); err != nil {
			return nil, err
		}
		db.data[category] = &cd
	}
	return db, nil
}

func validateCategoryData(category string, cd *categoryData) error {
	if cd.Packages == nil {
		cd.Packages = make(map[string]map[string]Description)
	}
	for name, versions := range cd.Packages {
		for version := range versions {
			if _, err := atom.NewPackage(category, name, version); err != nil {
				return errors.Wrap(errors.ErrCodeDatabase, err, "corrupt database")
			}
		}
	}
	return nil
}

func readJSON(path string, v any) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeDatabase, err, "read %s", path)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return errors.Wrap(errors.ErrCodeDatabase, err, "parse %s", path)
	}
	return nil
}

// Dir returns the directory the database is persisted under.
func (db *PackageDB) Dir() string { return db.dir }

// AddCategory registers a category. Adding an existing category only updates
// its description.
func (db *PackageDB) AddCategory(category, description string) error {
	if err := atom.ValidateCategory(category); err != nil {
		return err
	}
	db.categories[category] = description
	return nil
}

// CategoryDescription returns the description recorded for category.
func (db *PackageDB) CategoryDescription(category string) (string, error) {
	desc, ok := db.categories[category]
	if !ok {
		return "", unknownCategory(category)
	}
	return desc, nil
}

// SetCommonData sets fields shared by every package of category.
func (db *PackageDB) SetCommonData(category string, common map[string]string) error {
	if _, ok := db.categories[category]; !ok {
		return unknownCategory(category)
	}
	db.category(category).CommonData = maps.Clone(common)
	return nil
}

// CommonData returns the fields shared by every package of category.
func (db *PackageDB) CommonData(category string) (map[string]string, error) {
	if _, ok := db.categories[category]; !ok {
		return nil, unknownCategory(category)
	}
	cd, ok := db.data[category]
	if !ok {
		return map[string]string{}, nil
	}
	return maps.Clone(cd.CommonData), nil
}

// AddPackage records the description of one package version, replacing any
// previous one.
func (db *PackageDB) AddPackage(p atom.Package, desc Description) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if _, ok := db.categories[p.Category]; !ok {
		return unknownCategory(p.Category)
	}
	cd := db.category(p.Category)
	versions, ok := cd.Packages[p.Name]
	if !ok {
		versions = make(map[string]Description)
		cd.Packages[p.Name] = versions
	}
	versions[p.Version] = desc
	return nil
}

func (db *PackageDB) category(category string) *categoryData {
	cd, ok := db.data[category]
	if !ok {
		cd = &categoryData{
			CommonData: map[string]string{},
			Packages:   make(map[string]map[string]Description),
		}
		db.data[category] = cd
	}
	return cd
}

// Categories implements [Database].
func (db *PackageDB) Categories() []string {
	return slices.Sorted(maps.Keys(db.categories))
}

// PackageNames implements [Database].
func (db *PackageDB) PackageNames(category string) ([]string, error) {
	if _, ok := db.categories[category]; !ok {
		return nil, unknownCategory(category)
	}
	cd, ok := db.data[category]
	if !ok {
		return []string{}, nil
	}
	return slices.Sorted(maps.Keys(cd.Packages)), nil
}

// PackageVersions implements [Database].
func (db *PackageDB) PackageVersions(category, name string) ([]string, error) {
	versions, err := db.versions(category, name)
	if err != nil {
		return nil, err
	}
	out := slices.Collect(maps.Keys(versions))
	atom.SortVersions(out)
	return out, nil
}

func (db *PackageDB) versions(category, name string) (map[string]Description, error) {
	if _, ok := db.categories[category]; !ok {
		return nil, unknownCategory(category)
	}
	cd, ok := db.data[category]
	if !ok {
		return nil, notFound("no such package: %s/%s", category, name)
	}
	versions, ok := cd.Packages[name]
	if !ok {
		return nil, notFound("no such package: %s/%s", category, name)
	}
	return versions, nil
}

// Description implements [Database]. Misses of any kind are reported as
// NOT_FOUND errors wrapping [ErrNotFound].
func (db *PackageDB) Description(p atom.Package) (Description, error) {
	versions, err := db.versions(p.Category, p.Name)
	if err != nil {
		return Description{}, notFound("no description for %s", p)
	}
	desc, ok := versions[p.Version]
	if !ok {
		return Description{}, notFound("no description for %s", p)
	}
	return db.merge(p.Category, desc), nil
}

func (db *PackageDB) merge(category string, desc Description) Description {
	out := Description{
		Description:  desc.Description,
		Eclasses:     slices.Clone(desc.Eclasses),
		Dependencies: slices.Clone(desc.Dependencies),
		Fields:       maps.Clone(desc.Fields),
	}
	common := db.data[category].CommonData
	if len(common) > 0 {
		if out.Fields == nil {
			out.Fields = make(map[string]string, len(common))
		}
		maps.Copy(out.Fields, common)
	}
	return out
}

// InCategory implements [Database].
func (db *PackageDB) InCategory(category, name string) (bool, error) {
	if _, ok := db.categories[category]; !ok {
		return false, unknownCategory(category)
	}
	cd, ok := db.data[category]
	if !ok {
		return false, nil
	}
	_, ok = cd.Packages[name]
	return ok, nil
}

// MaxVersion returns the newest version of category/name.
func (db *PackageDB) MaxVersion(category, name string) (string, error) {
	versions, err := db.PackageVersions(category, name)
	if err != nil {
		return "", err
	}
	if len(versions) == 0 {
		return "", notFound("no versions of %s/%s", category, name)
	}
	return versions[len(versions)-1], nil
}

// CatPkgs lists every "category/name" in the database, sorted.
func (db *PackageDB) CatPkgs() []string {
	var out []string
	for _, category := range db.Categories() {
		names, _ := db.PackageNames(category)
		for _, name := range names {
			out = append(out, category+"/"+name)
		}
	}
	return out
}

// Entries returns every package version with its description. Categories and
// names are sorted and versions ascend, so the newest version of a package is
// always its last entry.
func (db *PackageDB) Entries() []Entry {
	var out []Entry
	for _, category := range db.Categories() {
		names, _ := db.PackageNames(category)
		for _, name := range names {
			versions, _ := db.PackageVersions(category, name)
			for _, version := range versions {
				p := atom.Package{Category: category, Name: name, Version: version}
				out = append(out, Entry{
					Package:     p,
					Description: db.merge(category, db.data[category].Packages[name][version]),
				})
			}
		}
	}
	return out
}

// Len returns the number of package versions in the database.
func (db *PackageDB) Len() int {
	n := 0
	for _, cd := range db.data {
		for _, versions := range cd.Packages {
			n += len(versions)
		}
	}
	return n
}

// Write persists the database. The new content is assembled next to the
// target directory and swapped in with a rename.
func (db *PackageDB) Write() error {
	if db.dir == "" {
		return errors.New(errors.ErrCodeDatabase, "database has no directory")
	}
	tmp := db.dir + ".tmp"
	if err := os.RemoveAll(tmp); err != nil {
		return errors.Wrap(errors.ErrCodeDatabase, err, "clear %s", tmp)
	}
	if err := db.writeTo(tmp); err != nil {
		_ = os.RemoveAll(tmp)
		return err
	}
	if err := os.RemoveAll(db.dir); err != nil {
		return errors.Wrap(errors.ErrCodeDatabase, err, "replace %s", db.dir)
	}
	if err := os.Rename(tmp, db.dir); err != nil {
		return errors.Wrap(errors.ErrCodeDatabase, err, "replace %s", db.dir)
	}
	return nil
}

func (db *PackageDB) writeTo(dir string) error {
	if err := writeJSON(filepath.Join(dir, layoutFile), layoutInfo{DBVersion: dbVersion, LayoutVersion: layoutVersion}); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(dir, categoriesFile), db.categories); err != nil {
		return err
	}
	for category, cd := range db.data {
		if err := writeJSON(filepath.Join(dir, category, packagesFile), cd); err != nil {
			return err
		}
	}
	return nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrCodeDatabase, err, "encode %s", filepath.Base(path))
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeDatabase, err, "create %s", filepath.Dir(path))
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeDatabase, err, "write %s", path)
	}
	return nil
}

// Clean removes the persisted database and empties the in-memory index.
func (db *PackageDB) Clean() error {
	if db.dir != "" {
		if err := os.RemoveAll(db.dir); err != nil {
			return errors.Wrap(errors.ErrCodeDatabase, err, "clean database")
		}
	}
	db.categories = make(map[string]string)
	db.data = make(map[string]*categoryData)
	return nil
}

// String summarises the database for log output.
func (db *PackageDB) String() string {
	return fmt.Sprintf("%s (%d categories, %d packages)", db.dir, len(db.categories), db.Len())
}

var _ Database = (*PackageDB)(nil)

package gen

import (
	"embed"
	"io/fs"
	"path"
	"slices"
	"strings"

	"github.com/matzehuels/overlaysmith/pkg/errors"
)

// ModuleExt is the file extension of build-logic modules.
const ModuleExt = ".eclass"

//go:embed eclass/*.eclass
var embedded embed.FS

// Modules serves build-logic modules from a file system. Every
// <name>.eclass file at the top of FS is one module.
type Modules struct {
	FS fs.FS
}

// EmbeddedModules returns the modules compiled into the binary.
func EmbeddedModules() *Modules {
	sub, err := fs.Sub(embedded, "eclass")
	if err != nil {
		panic(err)
	}
	return &Modules{FS: sub}
}

// Modules implements [ModuleGenerator].
func (m *Modules) Modules() []string {
	entries, err := fs.ReadDir(m.FS, ".")
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if name, ok := strings.CutSuffix(e.Name(), ModuleExt); ok && !e.IsDir() {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}

// Module implements [ModuleGenerator].
func (m *Modules) Module(name string) ([]string, error) {
	if name == "" || strings.ContainsAny(name, `/\`) {
		return nil, errors.New(errors.ErrCodeInvalidInput, "invalid module name: %q", name)
	}
	data, err := fs.ReadFile(m.FS, path.Clean(name+ModuleExt))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNotFound, err, "no such module: %s", name)
	}
	return Lines(string(data)), nil
}

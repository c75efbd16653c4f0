package gen

import (
	"strings"

	"github.com/matzehuels/overlaysmith/pkg/atom"
	"github.com/matzehuels/overlaysmith/pkg/db"
)

// DescriptorGenerator renders the build descriptor of one package version.
type DescriptorGenerator interface {
	Descriptor(p atom.Package, d db.Description) ([]string, error)
}

// MetadataGenerator renders the metadata.xml of a package.
type MetadataGenerator interface {
	Metadata(p atom.Package) ([]string, error)
}

// ModuleGenerator provides shared build-logic modules by name.
type ModuleGenerator interface {
	// Modules lists every module name, sorted.
	Modules() []string
	// Module returns the contents of one module.
	Module(name string) ([]string, error)
}

// Set is the generator bundle used to write a tree.
type Set struct {
	Descriptor DescriptorGenerator
	Metadata   MetadataGenerator
	Modules    ModuleGenerator
}

// Default returns the built-in generators reading descriptions from database.
func Default(database db.Database) Set {
	return Set{
		Descriptor: Ebuild{},
		Metadata:   &Metadata{DB: database},
		Modules:    EmbeddedModules(),
	}
}

// Lines splits text into lines, dropping a single trailing newline.
func Lines(text string) []string {
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

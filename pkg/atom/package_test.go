package atom

import (
	"slices"
	"testing"

	"github.com/matzehuels/overlaysmith/pkg/errors"
)

func TestNewPackage(t *testing.T) {
	tests := []struct {
		category, name, version string
		wantErr                 bool
	}{
		{"dev-python", "requests", "2.31.0", false},
		{"dev-python", "zope-interface", "6.0-r1", false},
		{"", "requests", "1.0", true},
		{"dev-python", "", "1.0", true},
		{"dev-python", "requests", "", true},
		{"dev-python", "requests", "latest", true},
		{"dev/python", "requests", "1.0", true},
		{"dev-python", "../etc", "1.0", true},
		{"dev-python", "requests-2", "1.0", true},
	}

	for _, tt := range tests {
		p, err := NewPackage(tt.category, tt.name, tt.version)
		if (err != nil) != tt.wantErr {
			t.Errorf("NewPackage(%q, %q, %q) error = %v, wantErr %v", tt.category, tt.name, tt.version, err, tt.wantErr)
			continue
		}
		if err == nil && p.String() != tt.category+"/"+tt.name+"-"+tt.version {
			t.Errorf("String() = %q", p.String())
		}
	}
}

func TestPackageIdentity(t *testing.T) {
	a := Package{Category: "app-misc", Name: "foo", Version: "1.0"}
	b := Package{Category: "app-misc", Name: "foo", Version: "1.0"}
	c := Package{Category: "app-misc", Name: "foo", Version: "1.1"}

	set := map[Package]bool{a: true}
	if !set[b] {
		t.Error("equal packages should hash identically")
	}
	if set[c] {
		t.Error("different versions should not collide")
	}
	if a.CatPkg() != "app-misc/foo" {
		t.Errorf("CatPkg() = %q", a.CatPkg())
	}
}

func TestParsePackage(t *testing.T) {
	p, err := ParsePackage("dev-python/zope-interface-6.0-r1")
	if err != nil {
		t.Fatalf("ParsePackage: %v", err)
	}
	want := Package{Category: "dev-python", Name: "zope-interface", Version: "6.0-r1"}
	if p != want {
		t.Errorf("ParsePackage = %+v, want %+v", p, want)
	}

	for _, s := range []string{"requests-1.0", "dev-python/requests"} {
		if _, err := ParsePackage(s); !errors.Is(err, errors.ErrCodeInvalidPackage) {
			t.Errorf("ParsePackage(%q) error = %v, want INVALID_PACKAGE", s, err)
		}
	}
}

func TestComparePackages(t *testing.T) {
	pkgs := []Package{
		{"b-cat", "a", "1.0"},
		{"a-cat", "z", "1.10"},
		{"a-cat", "z", "1.9"},
		{"a-cat", "y", "2"},
	}
	slices.SortFunc(pkgs, ComparePackages)

	want := []Package{
		{"a-cat", "y", "2"},
		{"a-cat", "z", "1.9"},
		{"a-cat", "z", "1.10"},
		{"b-cat", "a", "1.0"},
	}
	if !slices.Equal(pkgs, want) {
		t.Errorf("sorted = %v, want %v", pkgs, want)
	}
}

func TestSplitName(t *testing.T) {
	tests := []struct {
		in             string
		category, name string
		wantErr        bool
	}{
		{"requests", "", "requests", false},
		{"dev-python/requests", "dev-python", "requests", false},
		{"a/b/c", "", "", true},
		{"/requests", "", "", true},
		{"dev-python/", "", "", true},
		{"", "", "", true},
		{"foo-1.0", "", "", true},
	}

	for _, tt := range tests {
		category, name, err := SplitName(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("SplitName(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if err != nil {
			if !errors.Is(err, errors.ErrCodeInvalidPackage) {
				t.Errorf("SplitName(%q) code = %s", tt.in, errors.GetCode(err))
			}
			continue
		}
		if category != tt.category || name != tt.name {
			t.Errorf("SplitName(%q) = %q, %q", tt.in, category, name)
		}
	}
}

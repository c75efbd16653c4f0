package atom

import (
	"encoding/json"
	"testing"

	"github.com/matzehuels/overlaysmith/pkg/errors"
)

func TestDependencyString(t *testing.T) {
	tests := []struct {
		name string
		dep  Dependency
		want string
	}{
		{
			name: "plain",
			dep:  Dependency{Category: "dev-lang", Name: "python"},
			want: "dev-lang/python",
		},
		{
			name: "versioned",
			dep:  Dependency{Category: "dev-lang", Name: "python", Operator: ">=", Version: "3.11"},
			want: ">=dev-lang/python-3.11",
		},
		{
			name: "usedep",
			dep:  Dependency{Category: "dev-libs", Name: "openssl", UseDep: "-bindist"},
			want: "dev-libs/openssl[-bindist]",
		},
		{
			name: "everything",
			dep: Dependency{
				Category: "dev-libs", Name: "openssl", Operator: "~", Version: "3.0.1",
				UseDep: "static-libs(-)", UseFlag: "ssl",
			},
			want: "ssl? ( ~dev-libs/openssl-3.0.1[static-libs(-)] )",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.dep.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDependencyRoundTrip(t *testing.T) {
	deps := []Dependency{
		{Category: "app-misc", Name: "foo"},
		{Category: "app-misc", Name: "foo-bar", Operator: ">=", Version: "1.0"},
		{Category: "app-misc", Name: "foo2", Operator: "<=", Version: "2.0_rc1-r3"},
		{Category: "app-misc", Name: "foo", Operator: "<", Version: "1"},
		{Category: "app-misc", Name: "foo", Operator: ">", Version: "1.2.3b"},
		{Category: "app-misc", Name: "foo", Operator: "=", Version: "1.2*"},
		{Category: "app-misc", Name: "foo", Operator: "~", Version: "0.1_p4"},
		{Category: "app-misc", Name: "foo", UseDep: "python_targets_python3_12,-doc"},
		{Category: "app-misc", Name: "foo", UseFlag: "test"},
		{Category: "dev-python", Name: "py-1-thing", Operator: "=", Version: "1.0", UseDep: "x?", UseFlag: "gui"},
		{Category: "sys-libs", Name: "zlib", Operator: ">=", Version: "1.2.13-r1", UseDep: "minizip(+)", UseFlag: "zip"},
	}

	for _, d := range deps {
		t.Run(d.String(), func(t *testing.T) {
			if err := d.Validate(); err != nil {
				t.Fatalf("Validate() error: %v", err)
			}
			got, err := ParseDependency(d.String())
			if err != nil {
				t.Fatalf("ParseDependency(%q) error: %v", d.String(), err)
			}
			if got != d {
				t.Errorf("ParseDependency(%q) = %+v, want %+v", d.String(), got, d)
			}
		})
	}
}

func TestNewDependencyRejects(t *testing.T) {
	tests := []struct {
		name                    string
		category, pkg, op, vers string
	}{
		{"version without operator", "app-misc", "foo", "", "1.0"},
		{"operator without version", "app-misc", "foo", ">=", ""},
		{"unknown operator", "app-misc", "foo", "!=", "1.0"},
		{"bad version", "app-misc", "foo", ">=", "one"},
		{"glob on non-equal", "app-misc", "foo", ">=", "1.0*"},
		{"empty category", "", "foo", "", ""},
		{"name ends in version", "app-misc", "foo-1.0", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewDependency(tt.category, tt.pkg, tt.op, tt.vers)
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, errors.ErrCodeInvalidDependency) {
				t.Errorf("error code = %s, want %s", errors.GetCode(err), errors.ErrCodeInvalidDependency)
			}
		})
	}
}

func TestParseDependencyErrors(t *testing.T) {
	for _, s := range []string{
		"",
		"foo",
		">=app-misc/foo",
		"app-misc/foo[",
		"app-misc/foo[]",
		"ssl? ( app-misc/foo",
		"a/b/c",
		">=app-misc/foo-1.0 extra",
	} {
		if _, err := ParseDependency(s); err == nil {
			t.Errorf("ParseDependency(%q) expected error", s)
		}
	}
}

func TestDependencyJSON(t *testing.T) {
	in := []Dependency{
		MustParseDependency(">=dev-lang/python-3.11"),
		MustParseDependency("doc? ( app-text/sphinx )"),
	}

	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := `[">=dev-lang/python-3.11","doc? ( app-text/sphinx )"]`
	if string(data) != want {
		t.Errorf("Marshal = %s, want %s", data, want)
	}

	var out []Dependency
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(out) != 2 || out[0] != in[0] || out[1] != in[1] {
		t.Errorf("Unmarshal = %+v, want %+v", out, in)
	}
}

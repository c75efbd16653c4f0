package atom

import (
	"cmp"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/matzehuels/overlaysmith/pkg/errors"
)

// Opt is an optional non-negative integer, kept as the decimal digits it
// was written with so that no value overflows.
type Opt struct {
	N   string
	Set bool
}

// Some returns a present Opt holding n.
func Some(n int) Opt { return Opt{N: strconv.Itoa(n), Set: true} }

// Version is a parsed package version:
//
//	1.2.3b_alpha1_beta2_pre3_rc4_p5-r6
//
// Components are the dot-separated numbers, Suffix the optional letter, and
// the staged qualifiers and revision are optional integers. Numbers keep
// their digits as written and compare by value at any length.
type Version struct {
	Components []string
	Suffix     string
	Alpha      Opt
	Beta       Opt
	Pre        Opt
	RC         Opt
	P          Opt
	Revision   Opt
}

var versionRe = regexp.MustCompile(
	`^([0-9]+(?:\.[0-9]+)*)([a-z])?(?:_alpha([0-9]+))?(?:_beta([0-9]+))?` +
		`(?:_pre([0-9]+))?(?:_rc([0-9]+))?(?:_p([0-9]+))?(?:-r([0-9]+))?$`)

// ParseVersion parses s into a Version.
func ParseVersion(s string) (Version, error) {
	m := versionRe.FindStringSubmatch(s)
	if m == nil {
		return Version{}, errors.New(errors.ErrCodeInvalidVersion, "invalid version: %q", s)
	}

	v := Version{Components: strings.Split(m[1], "."), Suffix: m[2]}
	for i, dst := range []*Opt{&v.Alpha, &v.Beta, &v.Pre, &v.RC, &v.P, &v.Revision} {
		if raw := m[3+i]; raw != "" {
			*dst = Opt{N: raw, Set: true}
		}
	}
	return v, nil
}

// compareDigits orders two decimal digit strings by numeric value.
func compareDigits(a, b string) int {
	a, b = trimZeros(a), trimZeros(b)
	return cmp.Or(cmp.Compare(len(a), len(b)), strings.Compare(a, b))
}

// trimZeros drops leading zeros, keeping a single "0" for zero.
func trimZeros(d string) string {
	d = strings.TrimLeft(d, "0")
	if d == "" {
		return "0"
	}
	return d
}

// MustParseVersion is like ParseVersion but panics on error.
func MustParseVersion(s string) Version {
	v, err := ParseVersion(s)
	if err != nil {
		panic(err)
	}
	return v
}

// IsVersion reports whether s parses as a Version.
func IsVersion(s string) bool {
	return versionRe.MatchString(s)
}

// String formats v using the same grammar ParseVersion accepts.
func (v Version) String() string {
	var b strings.Builder
	b.WriteString(strings.Join(v.Components, "."))
	b.WriteString(v.Suffix)
	for _, q := range v.qualifiers() {
		if q.opt.Set {
			b.WriteString(q.prefix)
			b.WriteString(q.opt.N)
		}
	}
	return b.String()
}

type qualifier struct {
	prefix string
	opt    Opt
	// sign is -1 for pre-release qualifiers (presence sorts first)
	// and +1 for post-release ones (presence sorts last).
	sign int
}

func (v Version) qualifiers() []qualifier {
	return []qualifier{
		{"_alpha", v.Alpha, -1},
		{"_beta", v.Beta, -1},
		{"_pre", v.Pre, -1},
		{"_rc", v.RC, -1},
		{"_p", v.P, +1},
		{"-r", v.Revision, +1},
	}
}

// Compare returns -1, 0 or +1 depending on whether a sorts before, equal to
// or after b.
func Compare(a, b Version) int {
	n := max(len(a.Components), len(b.Components))
	for i := range n {
		if c := compareDigits(component(a, i), component(b, i)); c != 0 {
			return c
		}
	}
	if c := strings.Compare(a.Suffix, b.Suffix); c != 0 {
		return c
	}

	aq, bq := a.qualifiers(), b.qualifiers()
	for i := range aq {
		x, y := aq[i].opt, bq[i].opt
		switch {
		case x.Set && y.Set:
			if c := compareDigits(x.N, y.N); c != 0 {
				return c
			}
		case x.Set != y.Set:
			if x.Set {
				return aq[i].sign
			}
			return -aq[i].sign
		}
	}
	return 0
}

func component(v Version, i int) string {
	if i < len(v.Components) {
		return v.Components[i]
	}
	return "0"
}

// Compare compares v with o, see [Compare].
func (v Version) Compare(o Version) int { return Compare(v, o) }

// Less reports whether v sorts before o.
func (v Version) Less(o Version) bool { return Compare(v, o) < 0 }

// Equal reports whether v and o are the same version. Trailing zero
// components are insignificant: 1.2 equals 1.2.0.
func (v Version) Equal(o Version) bool { return Compare(v, o) == 0 }

// Key returns a canonical representation of v: two versions have the same
// key exactly when they are Equal.
func (v Version) Key() string {
	c := v
	end := len(c.Components)
	for end > 1 && trimZeros(c.Components[end-1]) == "0" {
		end--
	}
	c.Components = make([]string, end)
	for i := range end {
		c.Components[i] = trimZeros(v.Components[i])
	}
	for _, o := range []*Opt{&c.Alpha, &c.Beta, &c.Pre, &c.RC, &c.P, &c.Revision} {
		if o.Set {
			o.N = trimZeros(o.N)
		}
	}
	return c.String()
}

// CompareStrings orders raw version strings. Strings that do not parse sort
// before every valid version and among themselves lexicographically.
func CompareStrings(a, b string) int {
	va, errA := ParseVersion(a)
	vb, errB := ParseVersion(b)
	switch {
	case errA != nil && errB != nil:
		return strings.Compare(a, b)
	case errA != nil:
		return -1
	case errB != nil:
		return 1
	}
	if c := Compare(va, vb); c != 0 {
		return c
	}
	return strings.Compare(a, b)
}

// SortVersions sorts raw version strings in ascending order, in place.
func SortVersions(versions []string) {
	slices.SortStableFunc(versions, CompareStrings)
}

// MaxVersion returns the greatest of versions, or "" if versions is empty.
func MaxVersion(versions []string) string {
	if len(versions) == 0 {
		return ""
	}
	return slices.MaxFunc(versions, CompareStrings)
}

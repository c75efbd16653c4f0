// Package atom models package identity: categories, names, versions and the
// dependency references that connect them.
//
// # Packages
//
// A [Package] is a concrete category/name/version triple. It is a comparable
// struct, so it can be used directly as a map key:
//
//	p, err := atom.NewPackage("dev-python", "requests", "2.31.0")
//	fmt.Println(p)          // dev-python/requests-2.31.0
//	fmt.Println(p.CatPkg()) // dev-python/requests
//
// # Versions
//
// [ParseVersion] accepts the usual grammar of numeric components, an optional
// letter suffix, staged pre-release qualifiers (_alpha, _beta, _pre, _rc), a
// patch level (_p) and a revision (-r). [Compare] orders versions so that
// pre-release qualifiers sort before the plain release and patch levels and
// revisions sort after it:
//
//	1.0_alpha1 < 1.0_alpha2 < 1.0 < 1.0_p1 < 1.0-r1
//
// # Dependencies
//
// A [Dependency] references a category/name, optionally constrained by an
// operator and version, a use-dependency and a conditional use flag. Its
// String form round-trips through [ParseDependency]:
//
//	d, _ := atom.ParseDependency("ssl? ( >=dev-libs/openssl-3.0[-bindist] )")
//	d.String() // ssl? ( >=dev-libs/openssl-3.0[-bindist] )
package atom

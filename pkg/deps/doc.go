// Package deps computes the transitive dependency closure of packages in a
// package database.
//
// # Overview
//
// A [Resolver] takes a package name, either "name" or "category/name", and
// returns every package version reachable from it. There is no version
// constraint solving: for each referenced category/name, every version the
// database lists is pulled in.
//
//	r := deps.NewResolver(database, nil)
//	res, err := r.Resolve("requests")
//	for _, p := range res.Packages.Sorted() {
//	    fmt.Println(p)
//	}
//
// # Failure Modes
//
// Resolution distinguishes hard failures from soft skips:
//
//   - [UnresolvableError]: the root name is not in the database
//   - [AmbiguousError]: a bare name exists in several categories; the
//     resolver never guesses
//   - [CircularError]: a package was reached again while its own
//     dependencies were still being resolved
//
// A package version without a description, or a dependency on a
// category/name the database does not know, is skipped. Such references may
// be satisfied by another repository. Skips are recorded in
// [Resolution.Skipped].
//
// # Batches
//
// [Resolver.ResolveAll] resolves several names independently and joins
// every failure, so one bad name does not hide the others.
package deps

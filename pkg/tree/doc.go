// Package tree writes and maintains a generated overlay.
//
// A [Synchronizer] turns the entries of a package database into a package
// tree on disk:
//
//	<root>/<category>/<name>/<name>-<version>.ebuild
//	<root>/<category>/<name>/metadata.xml
//	<root>/<category>/<name>/Manifest
//	<root>/eclass/<module>.eclass
//	<root>/profiles/repo_name
//	<root>/metadata/layout.conf
//
// Three passes share one writer:
//
//   - [Synchronizer.Generate] wipes the tree and rebuilds it.
//   - [Synchronizer.Update] rewrites every package, then scrubs descriptors
//     that were not rewritten and removes (or keeps) package directories the
//     pass did not touch. Files are rewritten even when unchanged; running
//     Update twice on an unchanged database leaves byte-identical files.
//   - [Synchronizer.Add] writes the dependency closure of one package into
//     the tree without reconciling anything else.
//
// A pass owns the tree exclusively. Nothing is locked, and an interrupted
// pass may leave the tree partially rewritten; running Update again repairs
// it.
package tree

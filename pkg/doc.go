// Package pkg provides the core libraries of Overlaysmith.
//
// # Overview
//
// Overlaysmith turns a package database into a package-repository overlay:
// one directory per category and package, a build descriptor per version,
// package metadata, shared eclasses and a Manifest per package. The pkg
// directory is organized into four areas:
//
//  1. Identity - package names, versions and dependency atoms
//  2. Data - the package database, its download and the download cache
//  3. Logic - dependency resolution, file generation and tree synchronization
//  4. Output - Manifests, dependency graphs and resolution export
//
// # Architecture
//
// The typical data flow:
//
//	Database archive (db_uri)
//	         ↓
//	    [db] package (sync, open, query)
//	         ↓
//	    [deps] package (resolve dependency closures)
//	         ↓
//	    [gen] package (ebuilds, metadata.xml, eclasses)
//	         ↓
//	    [tree] package (generate / update / add passes)
//	         ↓
//	    [manifest] package (fast or authoritative digests)
//
// # Quick Start
//
// Bring an overlay up to date with a synced database:
//
//	import (
//	    "context"
//	    "github.com/matzehuels/overlaysmith/pkg/db"
//	    "github.com/matzehuels/overlaysmith/pkg/tree"
//	)
//
//	// 1. Open the database
//	d, _ := db.Open("/var/db/repos/pypi/.overlaysmith/db/pypi")
//
//	// 2. Synchronize the tree
//	s := tree.New("/var/db/repos/pypi", d, logger)
//	rep, _ := s.Update(context.Background(), tree.Options{Digest: true})
//
//	// 3. Inspect what changed
//	fmt.Println(len(rep.Generated), "new versions")
//
// # Main Packages
//
// ## Identity
//
// [atom] - Package identities, version parsing and ordering, and dependency
// atoms with their version operators.
//
// ## Data
//
// [db] - The package database: an on-disk JSON layout of categories,
// packages and per-version descriptions, plus [db.Syncer] to download and
// install it from a tarball.
//
// [cache] - Byte cache for downloaded archives (file and null backends).
//
// [httputil] - HTTP fetching with retry and backoff.
//
// ## Logic
//
// [deps] - Resolves a package name to the closure of package versions it
// transitively depends on. Unknown references are recorded, not fatal.
//
// [gen] - Generators for build descriptors, metadata.xml and embedded
// eclasses.
//
// [tree] - The tree synchronizer. Generate rebuilds the overlay, Update
// rewrites it in place and removes what the database dropped, Add writes a
// single closure.
//
// ## Output
//
// [manifest] - Manifest digests, computed in-process or by the external
// manifest tool, sequentially or with a worker pool.
//
// [render/nodelink] - Dependency graphs as DOT and SVG using Graphviz.
//
// [io] - JSON export and import of resolutions.
//
// ## Supporting
//
// [config] - The TOML configuration and per-overlay state.
//
// [mangler] - Package manager integration for installing generated packages.
//
// [observability] - Hooks for resolver, tree, cache and HTTP events.
//
// [errors] - Error codes shared by every package.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...          # All tests
//	go test ./pkg/tree/...     # Specific package
//	go test -run Example       # Examples only
package pkg

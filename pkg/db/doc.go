// Package db provides the package database that drives overlay generation.
//
// The [Database] interface is the read surface consumed by the resolver and
// the tree synchronizer. [PackageDB] is the default implementation: an
// in-memory index persisted as JSON files under a directory:
//
//	<dir>/layout.json                {"db_version":1,"layout_version":1}
//	<dir>/categories.json            {"<category>": "<description>"}
//	<dir>/<category>/packages.json   {"common_data":{...},"packages":{name:{version:{...}}}}
//
// Category-level common data is merged into every [Description.Fields] read
// from that category, overriding per-version values.
//
// [Syncer] replaces a local database with a remote tar.gz archive.
package db

// Package manifest writes the integrity manifests of package directories.
//
// A Manifest file lists every file of a package directory with its size and
// SHA-512 and BLAKE2b digests:
//
//	AUX fix-build.patch 1024 SHA512 <hex> BLAKE2B <hex>
//	EBUILD foo-1.0.ebuild 512 SHA512 <hex> BLAKE2B <hex>
//	MISC metadata.xml 300 SHA512 <hex> BLAKE2B <hex>
//
// Two strategies implement [Digester]:
//
//   - [Fast] hashes the local files in-process. It never fetches sources,
//     so DIST lines of an existing Manifest are carried over verbatim.
//   - [Tool] runs an external command (by default "ebuild <descriptor>
//     manifest") that also fetches and digests distfiles. It is
//     authoritative but slow, and may fail for packages whose sources are
//     unavailable; with Erase set such packages are removed from the tree.
//
// [DigestAll] applies a Digester to many package directories.
package manifest

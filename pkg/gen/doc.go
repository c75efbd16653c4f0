// Package gen produces the contents of the files an overlay is made of.
//
// A [Set] bundles three generators:
//
//   - a [DescriptorGenerator] renders the build descriptor (ebuild) of one
//     package version from its database description,
//   - a [MetadataGenerator] renders metadata.xml for a package,
//   - a [ModuleGenerator] provides the shared build-logic modules (eclasses).
//
// Generators return file contents as lines without trailing newlines; the
// caller decides how they are written. [Default] returns the built-in set:
// [Ebuild], [Metadata] and the embedded eclasses of [EmbeddedModules].
package gen

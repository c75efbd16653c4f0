// Package io provides JSON import and export for dependency resolutions.
//
// # Overview
//
// A [deps.Resolution] can be saved and rendered later without the package
// database it was computed from:
//
//	overlaysmith deps requests --format json --output requests.json
//	overlaysmith deps --input requests.json --format svg --output requests.svg
//
// # JSON Format
//
//	{
//	  "roots": ["dev-python/requests"],
//	  "nodes": [
//	    {"id": "dev-python/requests-2.31.0"},
//	    {"id": "dev-python/urllib3-2.0.7"}
//	  ],
//	  "edges": [
//	    {"from": "dev-python/requests-2.31.0", "to": "dev-python/urllib3-2.0.7"}
//	  ],
//	  "skipped": [
//	    {"from": "dev-python/requests-2.31.0", "ref": "dev-python/chardet", "reason": "not in database"}
//	  ]
//	}
//
// Node IDs are fully qualified package versions. Nodes and edges are written
// in sorted order, so exporting the same resolution twice gives identical
// output.
//
// # Import
//
// [ReadJSON] and [ImportJSON] validate node IDs and reject duplicate nodes
// and edges that reference unknown nodes.
package io

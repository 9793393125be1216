// Package router compiles a file-system description of application routes
// into a minimal decision automaton.
//
// The compiler is a single forward pipeline:
//
//	Collect → BuildMatcherGroups → merge → flatten → buildTries → eject
//
// # Directory Convention
//
// Routes are defined by directories under the pages root:
//
//	pages/
//	├── index.go              → page for /
//	├── about/
//	│   └── index.go          → page for /about
//	├── (admin)/              → route group, contributes no URL segment
//	│   ├── _middleware.go    → middleware for everything below
//	│   └── pricing/
//	│       └── index.go      → page for /pricing
//	└── shop/
//	    ├── _rewrite.go       → exported names are rewrite parameters
//	    ├── [region]/         → dynamic segment, hidden when rewritten
//	    │   └── items/
//	    │       └── index.go  → page for /shop/items (internal /shop/:region/items)
//	    └── items/
//	        └── index.go      → page for /shop/items
//
// A parenthesized directory is a route group: it organizes the tree without
// contributing a path segment. A bracketed directory is a dynamic segment
// binding a named URL parameter. A directory's _rewrite.go declares, via its
// exported identifier names, the dynamic parameters that are resolved
// internally instead of appearing in the external URL.
//
// # Output
//
// Compile produces a RouterTable: one Branch automaton per path-length class,
// a deduplicated map from content-hash id to source module, and the maximum
// dynamic-parameter nesting depth across all pages. The table is consumed by
// Generator, which renders it into Go source.
//
// Two runs over an unchanged tree produce byte-identical output.
package router

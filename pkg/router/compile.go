package router

import (
	"io/fs"
	"sort"
	"strings"
)

// ModuleRef identifies the source module behind a content-hash id: the
// directory that declares it and its role (RoleMiddleware, or the rewrite
// parameter name).
type ModuleRef struct {
	Location string
	Role     string
}

// RouterTable is the compiled dispatch structure handed to the code-emission
// renderer. Everything in it is recomputed from a fresh filesystem snapshot
// on every pass and never mutated afterwards.
type RouterTable struct {
	// Forest holds one branch automaton per external path segment count.
	Forest map[int]Branch

	// Modules maps every content-hash id referenced by the forest to its
	// source module.
	Modules map[string]ModuleRef

	// MaxParamDepth is the maximum dynamic-parameter count across all
	// pages, measured on internal paths.
	MaxParamDepth int

	// MetaPages lists the locations of pages exporting the optional Meta
	// hook, in sorted order.
	MetaPages []string
}

// Compile runs the full pipeline over the pages root: collect the layout
// tree, group and merge routes, flatten, build per-length tries, and eject
// the branch forest. All validation completes before anything is returned; a
// failed pass produces no partial result.
func Compile(fsys fs.FS, scanner ExportScanner) (*RouterTable, error) {
	root, err := NewCollector(fsys, scanner).Collect()
	if err != nil {
		return nil, err
	}
	return CompileLayout(root)
}

// CompileLayout compiles an already collected layout tree.
func CompileLayout(root *SegmentLayout) (*RouterTable, error) {
	groups, err := BuildMatcherGroups(root)
	if err != nil {
		return nil, err
	}

	compiled := make([]compiledRoute, 0, len(groups))
	for _, g := range groups {
		merged, err := mergeGroup(g)
		if err != nil {
			return nil, err
		}
		cont, err := flattenRoute(merged)
		if err != nil {
			return nil, err
		}
		if cont == nil {
			return nil, &InternalError{Message: "matcher group " + g.Key + " flattened to nothing"}
		}
		compiled = append(compiled, compiledRoute{externalPath: g.ExternalPath, cont: cont})
	}

	tries, err := buildTries(compiled)
	if err != nil {
		return nil, err
	}

	forest := make(map[int]Branch, len(tries))
	for length, t := range tries {
		b, err := ejectTrie(t, 0)
		if err != nil {
			return nil, err
		}
		forest[length] = b
	}

	table := &RouterTable{
		Forest:  forest,
		Modules: collectModules(compiled),
	}
	fillPageInfo(table, root)
	return table, nil
}

// collectModules walks every flattened chain and deduplicates the referenced
// middleware and rewrite modules.
func collectModules(routes []compiledRoute) map[string]ModuleRef {
	modules := make(map[string]ModuleRef)
	var walk func(cont Continuation)
	walk = func(cont Continuation) {
		step, ok := cont.(StepContinuation)
		if !ok {
			return
		}
		s := step.Step
		if s.Kind == KindMiddleware {
			modules[s.ContentID] = ModuleRef{Location: s.Owner.Location, Role: RoleMiddleware}
		} else {
			modules[s.ContentID] = ModuleRef{Location: s.Owner.rewriteOrigin(s.Kind), Role: s.Kind}
		}
		walk(s.Next)
		walk(s.Rewrite)
	}
	for _, r := range routes {
		walk(r.cont)
	}
	return modules
}

// fillPageInfo records the per-page aggregates: maximum parameter depth and
// the optional-hook detection result.
func fillPageInfo(table *RouterTable, root *SegmentLayout) {
	var walk func(n *SegmentLayout)
	walk = func(n *SegmentLayout) {
		if n.HasPage {
			if d := strings.Count(n.InternalPath, ":"); d > table.MaxParamDepth {
				table.MaxParamDepth = d
			}
			if n.HasMeta {
				table.MetaPages = append(table.MetaPages, n.Location)
			}
		}
		for _, child := range n.Children {
			walk(child)
		}
	}
	walk(root)
	sort.Strings(table.MetaPages)
}

package router

import (
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Reserved files inside a route directory.
const (
	pageFile       = "index.go"
	middlewareFile = "_middleware.go"
	rewriteFile    = "_rewrite.go"
)

// maxDepth caps directory recursion. A routes tree deeper than this is
// assumed to be malformed (typically a symlink cycle).
const maxDepth = 64

// Wildcard is the matcher-key marker a dynamic segment collapses to.
const Wildcard = "*"

// SegmentLayout describes one directory level of the routes tree. The tree is
// built once per compilation pass and is read-only afterwards.
type SegmentLayout struct {
	// Location is the directory path relative to the pages root ("." for
	// the root itself). It is the node's identity.
	Location string

	// Segment is the raw directory name ("/" for the root).
	Segment string

	// InternalPath is the canonical path including every dynamic token,
	// rendered as ":name". Route groups contribute nothing.
	InternalPath string

	// ExternalPath is the canonical URL path. Dynamic tokens hidden by a
	// rewrite declaration are omitted.
	ExternalPath string

	// MatcherKey is ExternalPath with every dynamic token collapsed to a
	// single wildcard marker. It identifies an equivalence class of URL
	// shape.
	MatcherKey string

	// IsGroup marks a parenthesized (transparent) directory.
	IsGroup bool

	// DynamicParam is the parameter name of a bracketed directory, empty
	// for static segments and groups.
	DynamicParam string

	// RewriteParams are the dynamic parameter names this directory resolves
	// internally. Groups share their parent's set.
	RewriteParams []string

	// RewriteIDs maps each rewrite parameter to its content-hash id.
	RewriteIDs map[string]string

	// HasPage marks a directory containing a page module.
	HasPage bool

	// HasMeta marks a page module exporting the optional Meta hook.
	HasMeta bool

	// MiddlewareID is the content-hash id of this directory's middleware
	// module, empty if there is none.
	MiddlewareID string

	// Children are the subdirectories in name order. The node owns them
	// exclusively.
	Children []*SegmentLayout

	// rewriteOrigins maps each rewrite parameter to the directory that
	// declares it. Groups share their parent's map.
	rewriteOrigins map[string]string

	// parent is a back-reference used for lookup only, never as an
	// ownership edge.
	parent *SegmentLayout
}

// IsDynamic reports whether the node is a dynamic segment.
func (l *SegmentLayout) IsDynamic() bool { return l.DynamicParam != "" }

// Parent returns the owning node, nil for the root.
func (l *SegmentLayout) Parent() *SegmentLayout { return l.parent }

func (l *SegmentLayout) hasRewriteParam(name string) bool {
	for _, p := range l.RewriteParams {
		if p == name {
			return true
		}
	}
	return false
}

// rewriteOrigin returns the location of the directory declaring the given
// rewrite parameter.
func (l *SegmentLayout) rewriteOrigin(name string) string {
	return l.rewriteOrigins[name]
}

// Collector builds the SegmentLayout tree from a pages root.
type Collector struct {
	fsys    fs.FS
	scanner ExportScanner
}

// NewCollector creates a collector over the given filesystem. A nil scanner
// defaults to the go/parser based GoExportScanner.
func NewCollector(fsys fs.FS, scanner ExportScanner) *Collector {
	if scanner == nil {
		scanner = GoExportScanner{}
	}
	return &Collector{fsys: fsys, scanner: scanner}
}

// Collect walks the pages root and returns the immutable layout tree.
// It fails if any declared directory cannot be listed.
func (c *Collector) Collect() (*SegmentLayout, error) {
	root := &SegmentLayout{
		Location:     ".",
		Segment:      "/",
		InternalPath: "/",
		ExternalPath: "/",
		MatcherKey:   "/",
	}
	if err := c.collect(root, 0); err != nil {
		return nil, err
	}
	return root, nil
}

func (c *Collector) collect(node *SegmentLayout, depth int) error {
	if depth > maxDepth {
		return &InternalError{Message: fmt.Sprintf("routes tree exceeds %d levels at %s", maxDepth, node.Location)}
	}

	entries, err := fs.ReadDir(c.fsys, node.Location)
	if err != nil {
		return fmt.Errorf("listing %s: %w", node.Location, err)
	}

	var hasMiddleware, hasRewrite bool
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch e.Name() {
		case pageFile:
			node.HasPage = true
		case middlewareFile:
			hasMiddleware = true
		case rewriteFile:
			hasRewrite = true
		}
	}

	if hasMiddleware {
		node.MiddlewareID = contentID(node.Location, RoleMiddleware)
	}

	// Groups never consult their own rewrite declaration; they inherit the
	// parent's set at construction time.
	if hasRewrite && !node.IsGroup {
		names, err := c.scanExports(path.Join(node.Location, rewriteFile))
		if err != nil {
			return err
		}
		// Exported declaration names are capitalized; the parameter name is
		// the same identifier with its first letter lowered, matching the
		// bracketed directory name.
		for i, n := range names {
			names[i] = lowerFirst(n)
		}
		sort.Strings(names)
		node.RewriteParams = names
		node.RewriteIDs = make(map[string]string, len(names))
		node.rewriteOrigins = make(map[string]string, len(names))
		for _, p := range names {
			node.RewriteIDs[p] = contentID(node.Location, p)
			node.rewriteOrigins[p] = node.Location
		}
	}

	if node.HasPage {
		names, err := c.scanExports(path.Join(node.Location, pageFile))
		if err != nil {
			return err
		}
		node.HasMeta = containsName(names, "Meta")
	}

	// fs.ReadDir returns entries in name order, which fixes child order and
	// keeps repeated runs byte-identical.
	for _, e := range entries {
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") || strings.HasPrefix(e.Name(), "_") {
			continue
		}
		child := c.childLayout(node, e.Name())
		if err := c.collect(child, depth+1); err != nil {
			return err
		}
		node.Children = append(node.Children, child)
	}

	return nil
}

// childLayout derives a child node's paths and matcher key from its raw
// directory name.
func (c *Collector) childLayout(parent *SegmentLayout, name string) *SegmentLayout {
	child := &SegmentLayout{
		Location: path.Join(parent.Location, name),
		Segment:  name,
		parent:   parent,
	}

	switch {
	case isGroupSegment(name):
		child.IsGroup = true
		child.InternalPath = parent.InternalPath
		child.ExternalPath = parent.ExternalPath
		child.RewriteParams = parent.RewriteParams
		child.RewriteIDs = parent.RewriteIDs
		child.rewriteOrigins = parent.rewriteOrigins

	case isDynamicSegment(name):
		p := dynamicParamName(name)
		child.DynamicParam = p
		child.InternalPath = joinPath(parent.InternalPath, ":"+p)
		if parent.hasRewriteParam(p) {
			// Hidden by the parent's rewrite declaration: the token
			// stays out of the external URL.
			child.ExternalPath = parent.ExternalPath
		} else {
			child.ExternalPath = joinPath(parent.ExternalPath, ":"+p)
		}

	default:
		child.InternalPath = joinPath(parent.InternalPath, name)
		child.ExternalPath = joinPath(parent.ExternalPath, name)
	}

	child.MatcherKey = matcherKey(child.ExternalPath)
	return child
}

func (c *Collector) scanExports(file string) ([]string, error) {
	src, err := fs.ReadFile(c.fsys, file)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", file, err)
	}
	names, err := c.scanner.ScanExports(file, src)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", file, err)
	}
	return names, nil
}

// isGroupSegment reports whether a directory name is a route group: (name).
func isGroupSegment(name string) bool {
	return strings.HasPrefix(name, "(") && strings.HasSuffix(name, ")")
}

// isDynamicSegment reports whether a directory name is dynamic: [name].
func isDynamicSegment(name string) bool {
	return strings.HasPrefix(name, "[") && strings.HasSuffix(name, "]")
}

// dynamicParamName extracts the parameter name from a bracketed segment.
func dynamicParamName(name string) string {
	return name[1 : len(name)-1]
}

// joinPath appends one canonical segment to a canonical path.
func joinPath(base, seg string) string {
	if base == "/" {
		return "/" + seg
	}
	return base + "/" + seg
}

// matcherKey collapses every dynamic token of an external path to a single
// wildcard marker.
func matcherKey(externalPath string) string {
	segs := splitPath(externalPath)
	if len(segs) == 0 {
		return "/"
	}
	for i, s := range segs {
		if strings.HasPrefix(s, ":") {
			segs[i] = Wildcard
		}
	}
	return "/" + strings.Join(segs, "/")
}

// splitPath splits a canonical path into segments.
func splitPath(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

// lowerFirst lowers the first rune of an identifier.
func lowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToLower(r)) + s[size:]
}

func containsName(names []string, want string) bool {
	for _, n := range names {
		if n == want {
			return true
		}
	}
	return false
}

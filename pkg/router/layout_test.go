package router

import (
	"errors"
	"fmt"
	"io/fs"
	"reflect"
	"strings"
	"testing"
	"testing/fstest"
)

func pagesFS(files map[string]string) fstest.MapFS {
	fsys := fstest.MapFS{}
	for name, src := range files {
		fsys[name] = &fstest.MapFile{Data: []byte(src)}
	}
	return fsys
}

// findLayout looks a node up by location.
func findLayout(root *SegmentLayout, location string) *SegmentLayout {
	if root.Location == location {
		return root
	}
	for _, child := range root.Children {
		if n := findLayout(child, location); n != nil {
			return n
		}
	}
	return nil
}

func TestCollectorPaths(t *testing.T) {
	fsys := pagesFS(map[string]string{
		"index.go":                       "package pages\nfunc Index() {}\n",
		"about/index.go":                 "package about\nfunc Index() {}\n",
		"(admin)/pricing/index.go":       "package pricing\nfunc Index() {}\n",
		"blog/[slug]/index.go":           "package slug\nfunc Index() {}\n",
		"shop/_rewrite.go":               "package shop\nfunc Region() {}\n",
		"shop/[region]/items/index.go":   "package items\nfunc Index() {}\n",
		"docs/[section]/[page]/index.go": "package page\nfunc Index() {}\n",
	})

	root, err := NewCollector(fsys, nil).Collect()
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}

	tests := []struct {
		location string
		internal string
		external string
		key      string
	}{
		{".", "/", "/", "/"},
		{"about", "/about", "/about", "/about"},
		{"(admin)", "/", "/", "/"},
		{"(admin)/pricing", "/pricing", "/pricing", "/pricing"},
		{"blog/[slug]", "/blog/:slug", "/blog/:slug", "/blog/*"},
		{"shop/[region]", "/shop/:region", "/shop", "/shop"},
		{"shop/[region]/items", "/shop/:region/items", "/shop/items", "/shop/items"},
		{"docs/[section]/[page]", "/docs/:section/:page", "/docs/:section/:page", "/docs/*/*"},
	}

	for _, tt := range tests {
		n := findLayout(root, tt.location)
		if n == nil {
			t.Fatalf("layout %q not found", tt.location)
		}
		if n.InternalPath != tt.internal {
			t.Errorf("%s: InternalPath = %q, want %q", tt.location, n.InternalPath, tt.internal)
		}
		if n.ExternalPath != tt.external {
			t.Errorf("%s: ExternalPath = %q, want %q", tt.location, n.ExternalPath, tt.external)
		}
		if n.MatcherKey != tt.key {
			t.Errorf("%s: MatcherKey = %q, want %q", tt.location, n.MatcherKey, tt.key)
		}
	}
}

func TestCollectorGroupInheritsRewrites(t *testing.T) {
	fsys := pagesFS(map[string]string{
		"shop/_rewrite.go":                    "package shop\nfunc Region() {}\n",
		"shop/(v2)/_rewrite.go":               "package v2\nfunc Ignored() {}\n",
		"shop/(v2)/[region]/index.go":         "package region\nfunc Index() {}\n",
		"shop/plain/[region]/index.go":        "package region\nfunc Index() {}\n",
		"shop/plain/other/[country]/index.go": "package country\nfunc Index() {}\n",
	})

	root, err := NewCollector(fsys, nil).Collect()
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}

	// The group inherits shop's set and never consults its own declaration.
	group := findLayout(root, "shop/(v2)")
	if !group.hasRewriteParam("region") {
		t.Errorf("group should inherit rewrite param %q", "region")
	}
	if group.hasRewriteParam("ignored") {
		t.Errorf("group must not consult its own rewrite declaration")
	}
	hidden := findLayout(root, "shop/(v2)/[region]")
	if hidden.ExternalPath != "/shop" {
		t.Errorf("ExternalPath = %q, want %q", hidden.ExternalPath, "/shop")
	}

	// A non-group child does not inherit: its own declaration (none) rules.
	visible := findLayout(root, "shop/plain/[region]")
	if visible.ExternalPath != "/shop/plain/:region" {
		t.Errorf("ExternalPath = %q, want %q", visible.ExternalPath, "/shop/plain/:region")
	}
	country := findLayout(root, "shop/plain/other/[country]")
	if country.ExternalPath != "/shop/plain/other/:country" {
		t.Errorf("ExternalPath = %q, want %q", country.ExternalPath, "/shop/plain/other/:country")
	}
}

func TestCollectorModuleIDs(t *testing.T) {
	fsys := pagesFS(map[string]string{
		"(admin)/_middleware.go": "package admin\nfunc Middleware() {}\n",
		"(admin)/x/index.go":     "package x\nfunc Index() {}\n",
		"shop/_rewrite.go":       "package shop\nfunc Region() {}\nvar Country int\n",
		"shop/index.go":          "package shop\nfunc Index() {}\n",
	})

	root, err := NewCollector(fsys, nil).Collect()
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}

	admin := findLayout(root, "(admin)")
	if admin.MiddlewareID != contentID("(admin)", RoleMiddleware) {
		t.Errorf("MiddlewareID = %q, want deterministic id", admin.MiddlewareID)
	}

	shop := findLayout(root, "shop")
	if got := shop.RewriteParams; !reflect.DeepEqual(got, []string{"country", "region"}) {
		t.Errorf("RewriteParams = %v, want [country region]", got)
	}
	if shop.RewriteIDs["region"] != contentID("shop", "region") {
		t.Errorf("rewrite id mismatch for region")
	}
	if shop.RewriteIDs["region"] == shop.RewriteIDs["country"] {
		t.Errorf("distinct roles must produce distinct ids")
	}
}

func TestCollectorHookDetection(t *testing.T) {
	fsys := pagesFS(map[string]string{
		"index.go":       "package pages\nfunc Index() {}\nfunc Meta() {}\n",
		"about/index.go": "package about\nfunc Index() {}\n",
	})

	root, err := NewCollector(fsys, nil).Collect()
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if !root.HasMeta {
		t.Errorf("root page should detect the Meta hook")
	}
	if findLayout(root, "about").HasMeta {
		t.Errorf("about page has no Meta hook")
	}
}

func TestCollectorDeterminism(t *testing.T) {
	fsys := pagesFS(map[string]string{
		"index.go":                     "package pages\nfunc Index() {}\n",
		"b/index.go":                   "package b\nfunc Index() {}\n",
		"a/index.go":                   "package a\nfunc Index() {}\n",
		"shop/_rewrite.go":             "package shop\nfunc Region() {}\n",
		"shop/[region]/items/index.go": "package items\nfunc Index() {}\n",
	})

	first, err := NewCollector(fsys, nil).Collect()
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	second, err := NewCollector(fsys, nil).Collect()
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("two collections over an unchanged tree differ")
	}
}

func TestCollectorDepthLimit(t *testing.T) {
	files := map[string]string{}
	dir := ""
	for i := 0; i <= maxDepth+1; i++ {
		dir += "d/"
	}
	files[dir+"index.go"] = "package d\nfunc Index() {}\n"

	_, err := NewCollector(pagesFS(files), nil).Collect()
	var internal *InternalError
	if !errors.As(err, &internal) {
		t.Fatalf("err = %v, want InternalError past the depth cap", err)
	}
}

// failFS fails every directory listing below the root.
type failFS struct{ fstest.MapFS }

func (f failFS) ReadDir(name string) ([]fs.DirEntry, error) {
	if name != "." {
		return nil, fmt.Errorf("permission denied")
	}
	return f.MapFS.ReadDir(name)
}

func TestCollectorListingFailure(t *testing.T) {
	fsys := failFS{pagesFS(map[string]string{
		"sub/index.go": "package sub\nfunc Index() {}\n",
	})}

	_, err := NewCollector(fsys, nil).Collect()
	if err == nil || !strings.Contains(err.Error(), "listing sub") {
		t.Fatalf("err = %v, want listing failure naming the directory", err)
	}
}

func TestMatcherKey(t *testing.T) {
	tests := []struct {
		external string
		want     string
	}{
		{"/", "/"},
		{"/about", "/about"},
		{"/blog/:slug", "/blog/*"},
		{"/docs/:a/:b", "/docs/*/*"},
		{"/x/:y/z", "/x/*/z"},
	}
	for _, tt := range tests {
		if got := matcherKey(tt.external); got != tt.want {
			t.Errorf("matcherKey(%q) = %q, want %q", tt.external, got, tt.want)
		}
	}
}

func TestContentIDStable(t *testing.T) {
	if contentID("shop", "region") != contentID("shop", "region") {
		t.Errorf("id must be stable for identical inputs")
	}
	if contentID("shop", "region") == contentID("shop", RoleMiddleware) {
		t.Errorf("role must contribute to the id")
	}
	if contentID("shop", "region") == contentID("store", "region") {
		t.Errorf("location must contribute to the id")
	}
	if len(contentID("shop", "region")) != contentIDLen {
		t.Errorf("id length = %d, want %d", len(contentID("shop", "region")), contentIDLen)
	}
}

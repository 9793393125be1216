package router

import (
	"fmt"
	"sort"
)

// Route is the ordered chain of layouts from the root to one page-bearing
// leaf.
type Route []*SegmentLayout

func (r Route) leaf() *SegmentLayout { return r[len(r)-1] }

// MatcherGroup is the set of routes whose pages share one matcher key, i.e.
// one URL shape. After validation every member shares one concrete external
// path while resolving internally through different locations.
type MatcherGroup struct {
	Key          string
	ExternalPath string
	Routes       []Route
}

// MergedRoute combines the routes of one matcher group into a branching
// structure. Next is the normal continuation; Rewrite is the continuation
// reached when the segment's dynamic child is hidden by a rewrite
// declaration. Page is set on the node where a route terminates.
type MergedRoute struct {
	Layout  *SegmentLayout
	Page    *SegmentLayout
	Next    *MergedRoute
	Rewrite *MergedRoute
}

// collectRoutes gathers the root-to-leaf chain of every page in the tree.
func collectRoutes(root *SegmentLayout) []Route {
	var routes []Route
	var walk func(chain Route, n *SegmentLayout)
	walk = func(chain Route, n *SegmentLayout) {
		chain = append(chain, n)
		if n.HasPage {
			routes = append(routes, append(Route(nil), chain...))
		}
		for _, child := range n.Children {
			walk(chain, child)
		}
	}
	walk(nil, root)
	return routes
}

// BuildMatcherGroups partitions all pages by matcher key and validates each
// group before any merge: every member must share one concrete external path,
// and no two members may share both internal and external path. All
// violations are collected and reported together.
func BuildMatcherGroups(root *SegmentLayout) ([]*MatcherGroup, error) {
	byKey := make(map[string][]Route)
	var keys []string
	for _, r := range collectRoutes(root) {
		key := r.leaf().MatcherKey
		if _, ok := byKey[key]; !ok {
			keys = append(keys, key)
		}
		byKey[key] = append(byKey[key], r)
	}
	sort.Strings(keys)

	var errs []*ConfigError
	groups := make([]*MatcherGroup, 0, len(keys))
	for _, key := range keys {
		members := byKey[key]

		ext := members[0].leaf().ExternalPath
		conflict := false
		for _, m := range members[1:] {
			if m.leaf().ExternalPath != ext {
				conflict = true
				break
			}
		}
		if conflict {
			errs = append(errs, &ConfigError{
				Message:   fmt.Sprintf("conflicting external paths for matcher %q", key),
				Locations: leafLocations(members),
			})
			continue
		}

		seen := make(map[string]string)
		for _, m := range members {
			l := m.leaf()
			if prev, ok := seen[l.InternalPath]; ok {
				errs = append(errs, &ConfigError{
					Message:   fmt.Sprintf("ambiguous routes: %s is served from two locations", ext),
					Locations: []string{prev, l.Location},
				})
			}
			seen[l.InternalPath] = l.Location
		}

		// Fix the merge order: ascending tree depth, then internal path
		// length, then location.
		sort.SliceStable(members, func(i, j int) bool {
			a, b := members[i], members[j]
			if len(a) != len(b) {
				return len(a) < len(b)
			}
			if len(a.leaf().InternalPath) != len(b.leaf().InternalPath) {
				return len(a.leaf().InternalPath) < len(b.leaf().InternalPath)
			}
			return a.leaf().Location < b.leaf().Location
		})

		groups = append(groups, &MatcherGroup{Key: key, ExternalPath: ext, Routes: members})
	}

	if len(errs) > 0 {
		return nil, &MultiError{Errors: errs}
	}
	return groups, nil
}

// mergeGroup merges a validated matcher group into one branching structure.
// All member routes share the tree root.
func mergeGroup(g *MatcherGroup) (*MergedRoute, error) {
	suffixes := make([]Route, len(g.Routes))
	for i, r := range g.Routes {
		suffixes[i] = r[1:]
	}
	return mergeRoutes(g.Routes[0][0], suffixes)
}

// mergeRoutes merges route suffixes that have just consumed seg. Suffixes are
// partitioned into terminated-here, normal continuation, and rewritten
// continuation (the suffix's next dynamic token is resolved by seg's rewrite
// set). Each non-empty partition recurses independently; its routes must all
// continue into the same child segment, otherwise the merge cannot pick a
// winner and the configuration is genuinely ambiguous.
func mergeRoutes(seg *SegmentLayout, suffixes []Route) (*MergedRoute, error) {
	node := &MergedRoute{Layout: seg}

	var normal, rewritten []Route
	for _, sfx := range suffixes {
		if len(sfx) == 0 {
			if node.Page != nil {
				return nil, &ConfigError{
					Message:   "two pages claim the same terminal route",
					Locations: []string{seg.Location},
				}
			}
			node.Page = seg
			continue
		}
		if p := nextDynamicParam(sfx); p != "" && seg.hasRewriteParam(p) {
			rewritten = append(rewritten, sfx)
		} else {
			normal = append(normal, sfx)
		}
	}

	// A page may not terminate here while several routes still run through
	// one partition: two pages cannot claim to be the same terminal page.
	if node.Page != nil && (len(normal) > 1 || len(rewritten) > 1) {
		part := normal
		if len(rewritten) > 1 {
			part = rewritten
		}
		return nil, &ConfigError{
			Message:   fmt.Sprintf("page at %s conflicts with routes continuing through the same partition", seg.Location),
			Locations: leafLocations(part),
		}
	}

	var err error
	if node.Next, err = mergePartition(seg, normal); err != nil {
		return nil, err
	}
	if node.Rewrite, err = mergePartition(seg, rewritten); err != nil {
		return nil, err
	}
	return node, nil
}

func mergePartition(seg *SegmentLayout, part []Route) (*MergedRoute, error) {
	if len(part) == 0 {
		return nil, nil
	}
	head := part[0][0]
	tails := make([]Route, len(part))
	for i, r := range part {
		if r[0] != head {
			return nil, &ConfigError{
				Message:   fmt.Sprintf("ambiguous routes continue through the same partition under %s", seg.Location),
				Locations: leafLocations(part),
			}
		}
		tails[i] = r[1:]
	}
	return mergeRoutes(head, tails)
}

// nextDynamicParam returns the name of the first dynamic token in a suffix,
// or "" if the suffix is fully static.
func nextDynamicParam(sfx Route) string {
	for _, l := range sfx {
		if l.DynamicParam != "" {
			return l.DynamicParam
		}
	}
	return ""
}

func leafLocations(routes []Route) []string {
	locs := make([]string, len(routes))
	for i, r := range routes {
		locs[i] = r.leaf().Location
	}
	sort.Strings(locs)
	return locs
}

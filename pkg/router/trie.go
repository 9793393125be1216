package router

import (
	"fmt"
	"strings"
)

// compiledRoute is one matcher group after flattening, ready for trie
// insertion.
type compiledRoute struct {
	externalPath string
	cont         Continuation
}

// matcherTrie matches one path-length class. Paths of different length never
// interact at dispatch time, so tries are built per segment count. Edges are
// keyed by literal segment value; any position holding a dynamic token
// becomes the single wildcard edge.
type matcherTrie struct {
	children map[string]*matcherTrie
	wildcard *matcherTrie
	leaf     Continuation
}

func newMatcherTrie() *matcherTrie {
	return &matcherTrie{children: make(map[string]*matcherTrie)}
}

// buildTries groups flattened routes by external segment count and builds one
// trie per length class.
func buildTries(routes []compiledRoute) (map[int]*matcherTrie, error) {
	tries := make(map[int]*matcherTrie)
	for _, r := range routes {
		segs := splitPath(r.externalPath)
		t, ok := tries[len(segs)]
		if !ok {
			t = newMatcherTrie()
			tries[len(segs)] = t
		}
		if err := t.insert(segs, r.cont); err != nil {
			return nil, err
		}
	}
	return tries, nil
}

func (t *matcherTrie) insert(segs []string, cont Continuation) error {
	node := t
	for _, seg := range segs {
		if strings.HasPrefix(seg, ":") {
			if node.wildcard == nil {
				node.wildcard = newMatcherTrie()
			}
			node = node.wildcard
			continue
		}
		child, ok := node.children[seg]
		if !ok {
			child = newMatcherTrie()
			node.children[seg] = child
		}
		node = child
	}
	if node.leaf != nil {
		// Matcher keys are unique per group, so a second leaf at one
		// position is a compiler defect.
		return &InternalError{Message: fmt.Sprintf("duplicate trie leaf for %s", strings.Join(segs, "/"))}
	}
	node.leaf = cont
	return nil
}

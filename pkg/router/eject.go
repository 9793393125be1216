package router

import (
	"fmt"
	"sort"
	"strings"
)

// Branch is one node of the final dispatch automaton. The concrete variants
// are SwitchBranch, DynamicBranch, MiddlewareBranch, RewriteBranch,
// NextBranch, and NotFoundBranch.
type Branch interface {
	isBranch()
}

// SwitchBranch dispatches on the path segment at Index: one case per literal
// edge, falling through to Default.
type SwitchBranch struct {
	Index   int
	Cases   []SwitchCase
	Default Branch
}

// SwitchCase is one literal case of a SwitchBranch. Cases are kept in sorted
// value order for deterministic output.
type SwitchCase struct {
	Value  string
	Branch Branch
}

// DynamicBranch binds the path segment at Index to the named parameter, then
// continues.
type DynamicBranch struct {
	Name  string
	Index int
	Next  Branch
}

// MiddlewareBranch runs the referenced middleware module, then continues.
type MiddlewareBranch struct {
	ContentID string
	Next      Branch
}

// RewriteBranch runs the referenced rewrite module: Rewrite is taken when the
// module resolves its parameter internally, Then otherwise.
type RewriteBranch struct {
	ContentID string
	Then      Branch
	Rewrite   Branch
}

// NextBranch terminates by forwarding to a page. RewritePath carries the
// page's internal path when it still contains unresolved dynamic tokens,
// signalling the renderer to perform an internal rewrite; it is empty
// otherwise.
type NextBranch struct {
	Page        string
	RewritePath string
}

// NotFoundBranch terminates without a page.
type NotFoundBranch struct{}

func (SwitchBranch) isBranch()     {}
func (DynamicBranch) isBranch()    {}
func (MiddlewareBranch) isBranch() {}
func (RewriteBranch) isBranch()    {}
func (NextBranch) isBranch()       {}
func (NotFoundBranch) isBranch()   {}

// ejectTrie converts a matcher trie into a branch automaton. Within one
// length class leaves only occur at full depth, so a node is either a
// dispatch point or a leaf, never both.
func ejectTrie(t *matcherTrie, depth int) (Branch, error) {
	if t.leaf != nil {
		if len(t.children) > 0 || t.wildcard != nil {
			return nil, &InternalError{Message: fmt.Sprintf("trie leaf at depth %d also has edges", depth)}
		}
		return ejectCont(t.leaf, make(map[string]bool))
	}
	if len(t.children) == 0 && t.wildcard == nil {
		return nil, &InternalError{Message: fmt.Sprintf("trie node at depth %d is neither a sub-trie nor a route", depth)}
	}

	sw := SwitchBranch{Index: depth}

	values := make([]string, 0, len(t.children))
	for v := range t.children {
		values = append(values, v)
	}
	sort.Strings(values)
	for _, v := range values {
		b, err := ejectTrie(t.children[v], depth+1)
		if err != nil {
			return nil, err
		}
		sw.Cases = append(sw.Cases, SwitchCase{Value: v, Branch: b})
	}

	if t.wildcard != nil {
		b, err := ejectTrie(t.wildcard, depth+1)
		if err != nil {
			return nil, err
		}
		sw.Default = b
	} else {
		sw.Default = NotFoundBranch{}
	}
	return sw, nil
}

// paramBind is one pending DYNAMIC binding: a parameter name and the external
// path position it reads.
type paramBind struct {
	name  string
	index int
}

// ejectCont converts a flattened continuation into executable branches. Every
// dynamic token of the current node's external path that is not yet bound is
// bound first, left to right, each exactly once, before the node's own
// decision is emitted.
func ejectCont(cont Continuation, bound map[string]bool) (Branch, error) {
	switch c := cont.(type) {
	case nil:
		return NotFoundBranch{}, nil

	case PageContinuation:
		binds := unboundParams(c.Page.ExternalPath, bound)
		return wrapBinds(binds, NextBranch{
			Page:        c.Page.Location,
			RewritePath: internalRewritePath(c.Page),
		}), nil

	case StepContinuation:
		step := c.Step
		binds := unboundParams(step.Owner.ExternalPath, bound)
		for _, b := range binds {
			bound[b.name] = true
		}

		if step.Kind == KindMiddleware {
			next, err := ejectCont(step.Next, bound)
			if err != nil {
				return nil, err
			}
			return wrapBinds(binds, MiddlewareBranch{ContentID: step.ContentID, Next: next}), nil
		}

		then, err := ejectCont(step.Next, copyBound(bound))
		if err != nil {
			return nil, err
		}
		rewrite, err := ejectCont(step.Rewrite, copyBound(bound))
		if err != nil {
			return nil, err
		}
		return wrapBinds(binds, RewriteBranch{ContentID: step.ContentID, Then: then, Rewrite: rewrite}), nil

	default:
		return nil, &InternalError{Message: fmt.Sprintf("unknown continuation %T", cont)}
	}
}

// unboundParams lists the dynamic tokens of an external path that have no
// DYNAMIC binding yet, in positional order.
func unboundParams(externalPath string, bound map[string]bool) []paramBind {
	var binds []paramBind
	for i, seg := range splitPath(externalPath) {
		if !strings.HasPrefix(seg, ":") {
			continue
		}
		name := seg[1:]
		if !bound[name] {
			binds = append(binds, paramBind{name: name, index: i})
		}
	}
	return binds
}

// wrapBinds nests DYNAMIC branches around inner, outermost binding first.
func wrapBinds(binds []paramBind, inner Branch) Branch {
	for i := len(binds) - 1; i >= 0; i-- {
		inner = DynamicBranch{Name: binds[i].name, Index: binds[i].index, Next: inner}
	}
	return inner
}

func copyBound(bound map[string]bool) map[string]bool {
	c := make(map[string]bool, len(bound))
	for k, v := range bound {
		c[k] = v
	}
	return c
}

// internalRewritePath returns the page's internal path when it contains a
// dynamic token that the external path does not expose, empty otherwise.
func internalRewritePath(page *SegmentLayout) string {
	external := make(map[string]bool)
	for _, seg := range splitPath(page.ExternalPath) {
		if strings.HasPrefix(seg, ":") {
			external[seg[1:]] = true
		}
	}
	for _, seg := range splitPath(page.InternalPath) {
		if strings.HasPrefix(seg, ":") && !external[seg[1:]] {
			return page.InternalPath
		}
	}
	return ""
}

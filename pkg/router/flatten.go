package router

import "fmt"

// KindMiddleware marks a flattened step that runs a middleware module. Every
// other kind is the name of the rewritten parameter the step decides on.
const KindMiddleware = RoleMiddleware

// FlattenedRoute is one step of a linear decision chain. Only segments that
// own a middleware module or anchor a rewrite branch produce a step; all
// other segments are transparent pass-throughs.
type FlattenedRoute struct {
	// ContentID references the middleware or rewrite module to run.
	ContentID string

	// Owner is the segment that produced the step.
	Owner *SegmentLayout

	// Kind is KindMiddleware or the rewritten parameter name.
	Kind string

	// Next is the normal continuation.
	Next Continuation

	// Rewrite is the continuation entered when the rewrite module resolves
	// the parameter internally. Only set on rewrite steps.
	Rewrite Continuation
}

// Continuation is what follows a flattened step: a further chain, a terminal
// page, or nothing (a nil Continuation means not-found unless a sibling
// structure supplies one).
type Continuation interface {
	isContinuation()
}

// StepContinuation continues into a further chain step.
type StepContinuation struct {
	Step *FlattenedRoute
}

// PageContinuation terminates at a page: dispatch there.
type PageContinuation struct {
	Page *SegmentLayout
}

func (StepContinuation) isContinuation() {}
func (PageContinuation) isContinuation() {}

// flattenRoute collapses a merged structure into a decision chain. A node
// owning both middleware and a rewrite branch emits the middleware step
// first: middleware always executes before the rewrite choice is made.
func flattenRoute(m *MergedRoute) (Continuation, error) {
	if m == nil {
		return nil, nil
	}

	next, err := flattenRoute(m.Next)
	if err != nil {
		return nil, err
	}
	if m.Page != nil {
		if next != nil {
			return nil, &InternalError{Message: fmt.Sprintf("node %s has both a terminal page and a normal continuation", m.Layout.Location)}
		}
		next = PageContinuation{Page: m.Page}
	}

	if m.Rewrite == nil {
		if m.Layout.MiddlewareID == "" {
			// Transparent node: real for path and hash purposes, invisible
			// to dispatch.
			return next, nil
		}
		return StepContinuation{Step: &FlattenedRoute{
			ContentID: m.Layout.MiddlewareID,
			Owner:     m.Layout,
			Kind:      KindMiddleware,
			Next:      next,
		}}, nil
	}

	rewrite, err := flattenRoute(m.Rewrite)
	if err != nil {
		return nil, err
	}

	param := firstDynamicParam(m.Rewrite)
	if param == "" {
		return nil, &InternalError{Message: fmt.Sprintf("rewrite branch under %s carries no dynamic parameter", m.Layout.Location)}
	}

	cont := Continuation(StepContinuation{Step: &FlattenedRoute{
		ContentID: m.Layout.RewriteIDs[param],
		Owner:     m.Layout,
		Kind:      param,
		Next:      next,
		Rewrite:   rewrite,
	}})

	if m.Layout.MiddlewareID != "" {
		cont = StepContinuation{Step: &FlattenedRoute{
			ContentID: m.Layout.MiddlewareID,
			Owner:     m.Layout,
			Kind:      KindMiddleware,
			Next:      cont,
		}}
	}
	return cont, nil
}

// firstDynamicParam walks a rewrite branch downward to the first node
// carrying a dynamic parameter.
func firstDynamicParam(m *MergedRoute) string {
	for n := m; n != nil; n = n.Next {
		if n.Layout.DynamicParam != "" {
			return n.Layout.DynamicParam
		}
	}
	return ""
}

// Package errors provides structured, actionable error messages for routegen.
//
// Every failure the tool reports falls into one of three classes:
//   - config: the pages directory or routegen.json describes something
//     contradictory; the user has to change their input
//   - internal: the compiler violated one of its own invariants; a bug
//   - collaborator: something outside the compiler failed (the filesystem,
//     the export scanner, the deploy target)
//
// Each registered error has a stable code (e.g. "R010") that maps to a short
// message, a detailed explanation, and a documentation URL. Errors are built
// fluently:
//
//	err := errors.New("R200").
//	    WithLocation("pages/shop/_rewrite.go", 4, 6).
//	    WithSuggestion("Rewrite files must contain valid Go source")
//
//	fmt.Println(err.Format())
package errors

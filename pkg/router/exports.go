package router

import (
	"go/ast"
	"go/parser"
	"go/token"
	"sort"
)

// ExportScanner extracts the exported top-level identifier names from a
// module's source text. It is the only static-analysis dependency of the
// compiler: the collector uses it to read rewrite declarations, and the
// generator reuses it for optional-hook detection.
type ExportScanner interface {
	ScanExports(filename string, src []byte) ([]string, error)
}

// GoExportScanner scans Go source with go/parser.
type GoExportScanner struct{}

// ScanExports returns the sorted exported top-level identifier names declared
// in src: functions, variables, constants, and types.
func (GoExportScanner) ScanExports(filename string, src []byte) ([]string, error) {
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, filename, src, parser.SkipObjectResolution)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	for _, decl := range f.Decls {
		switch d := decl.(type) {
		case *ast.FuncDecl:
			// Methods are not top-level identifiers.
			if d.Recv == nil && d.Name != nil && d.Name.IsExported() {
				seen[d.Name.Name] = true
			}

		case *ast.GenDecl:
			for _, spec := range d.Specs {
				switch s := spec.(type) {
				case *ast.ValueSpec:
					for _, ident := range s.Names {
						if ident.IsExported() {
							seen[ident.Name] = true
						}
					}
				case *ast.TypeSpec:
					if s.Name.IsExported() {
						seen[s.Name.Name] = true
					}
				}
			}
		}
	}

	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)
	return names, nil
}

package router

import (
	"fmt"
	"sort"
	"strings"
)

// routerImport is the import path rendered into generated files.
const routerImport = "github.com/routegen-dev/routegen/pkg/router"

// Generator renders a compiled RouterTable into Go source. It is the only
// consumer of the table and performs no validation of its own; running it
// twice over the same table produces identical bytes.
type Generator struct {
	table       *RouterTable
	packageName string
}

// NewGenerator creates a generator for the given table. An empty package
// name defaults to "routes".
func NewGenerator(table *RouterTable, packageName string) *Generator {
	if packageName == "" {
		packageName = "routes"
	}
	return &Generator{table: table, packageName: packageName}
}

// Generate renders the dispatch table source.
func (g *Generator) Generate() ([]byte, error) {
	if g.table == nil {
		return nil, &InternalError{Message: "generator invoked without a router table"}
	}

	var sb strings.Builder
	sb.WriteString("// Code generated by routegen. DO NOT EDIT.\n\n")
	fmt.Fprintf(&sb, "package %s\n\n", g.packageName)
	fmt.Fprintf(&sb, "import \"%s\"\n\n", routerImport)

	sb.WriteString("// MaxParamDepth is the deepest dynamic-parameter nesting across all pages.\n")
	fmt.Fprintf(&sb, "const MaxParamDepth = %d\n\n", g.table.MaxParamDepth)

	g.writeModules(&sb)
	g.writeMetaPages(&sb)

	if err := g.writeForest(&sb); err != nil {
		return nil, err
	}
	return []byte(sb.String()), nil
}

func (g *Generator) writeModules(sb *strings.Builder) {
	sb.WriteString("// Modules maps content ids to their source modules.\n")
	sb.WriteString("var Modules = map[string]router.ModuleRef{\n")
	ids := make([]string, 0, len(g.table.Modules))
	for id := range g.table.Modules {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		ref := g.table.Modules[id]
		fmt.Fprintf(sb, "\t%q: {Location: %q, Role: %q},\n", id, ref.Location, ref.Role)
	}
	sb.WriteString("}\n\n")
}

func (g *Generator) writeMetaPages(sb *strings.Builder) {
	if len(g.table.MetaPages) == 0 {
		return
	}
	sb.WriteString("// MetaPages marks pages exporting the optional Meta hook.\n")
	sb.WriteString("var MetaPages = map[string]bool{\n")
	for _, loc := range g.table.MetaPages {
		fmt.Fprintf(sb, "\t%q: true,\n", loc)
	}
	sb.WriteString("}\n\n")
}

func (g *Generator) writeForest(sb *strings.Builder) error {
	sb.WriteString("// Forest holds one dispatch automaton per path segment count.\n")
	sb.WriteString("var Forest = map[int]router.Branch{\n")
	lengths := make([]int, 0, len(g.table.Forest))
	for l := range g.table.Forest {
		lengths = append(lengths, l)
	}
	sort.Ints(lengths)
	for _, l := range lengths {
		fmt.Fprintf(sb, "\t%d: ", l)
		if err := writeBranch(sb, g.table.Forest[l], 1); err != nil {
			return err
		}
		sb.WriteString(",\n")
	}
	sb.WriteString("}\n")
	return nil
}

// writeBranch renders one branch literal at the given indent level.
func writeBranch(sb *strings.Builder, b Branch, indent int) error {
	tabs := strings.Repeat("\t", indent)
	switch br := b.(type) {
	case SwitchBranch:
		fmt.Fprintf(sb, "router.SwitchBranch{\n%s\tIndex: %d,\n", tabs, br.Index)
		if len(br.Cases) > 0 {
			fmt.Fprintf(sb, "%s\tCases: []router.SwitchCase{\n", tabs)
			for _, c := range br.Cases {
				fmt.Fprintf(sb, "%s\t\t{Value: %q, Branch: ", tabs, c.Value)
				if err := writeBranch(sb, c.Branch, indent+2); err != nil {
					return err
				}
				sb.WriteString("},\n")
			}
			fmt.Fprintf(sb, "%s\t},\n", tabs)
		}
		fmt.Fprintf(sb, "%s\tDefault: ", tabs)
		if err := writeBranch(sb, br.Default, indent+1); err != nil {
			return err
		}
		fmt.Fprintf(sb, ",\n%s}", tabs)

	case DynamicBranch:
		fmt.Fprintf(sb, "router.DynamicBranch{\n%s\tName: %q,\n%s\tIndex: %d,\n%s\tNext: ", tabs, br.Name, tabs, br.Index, tabs)
		if err := writeBranch(sb, br.Next, indent+1); err != nil {
			return err
		}
		fmt.Fprintf(sb, ",\n%s}", tabs)

	case MiddlewareBranch:
		fmt.Fprintf(sb, "router.MiddlewareBranch{\n%s\tContentID: %q,\n%s\tNext: ", tabs, br.ContentID, tabs)
		if err := writeBranch(sb, br.Next, indent+1); err != nil {
			return err
		}
		fmt.Fprintf(sb, ",\n%s}", tabs)

	case RewriteBranch:
		fmt.Fprintf(sb, "router.RewriteBranch{\n%s\tContentID: %q,\n%s\tThen: ", tabs, br.ContentID, tabs)
		if err := writeBranch(sb, br.Then, indent+1); err != nil {
			return err
		}
		fmt.Fprintf(sb, ",\n%s\tRewrite: ", tabs)
		if err := writeBranch(sb, br.Rewrite, indent+1); err != nil {
			return err
		}
		fmt.Fprintf(sb, ",\n%s}", tabs)

	case NextBranch:
		if br.RewritePath != "" {
			fmt.Fprintf(sb, "router.NextBranch{Page: %q, RewritePath: %q}", br.Page, br.RewritePath)
		} else {
			fmt.Fprintf(sb, "router.NextBranch{Page: %q}", br.Page)
		}

	case NotFoundBranch:
		sb.WriteString("router.NotFoundBranch{}")

	default:
		return &InternalError{Message: fmt.Sprintf("unknown branch %T", b)}
	}
	return nil
}

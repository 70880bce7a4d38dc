package parse

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/phobologic/pymove/internal/lang"
	"github.com/phobologic/pymove/internal/model"
)

// Imports decodes an import_statement, import_from_statement or
// future_import_statement node. "import a, b" yields one statement per module.
func Imports(node *sitter.Node, source []byte) []model.ImportStatement {
	switch node.Type() {
	case "import_statement":
		var out []model.ImportStatement
		for i := 0; i < int(node.NamedChildCount()); i++ {
			child := node.NamedChild(i)
			switch child.Type() {
			case "dotted_name":
				out = append(out, model.ImportStatement{Module: dottedText(child, source)})
			case "aliased_import":
				imp := model.ImportStatement{}
				if n := child.ChildByFieldName("name"); n != nil {
					imp.Module = dottedText(n, source)
				}
				if a := child.ChildByFieldName("alias"); a != nil {
					imp.Alias = lang.NodeText(a, source)
				}
				out = append(out, imp)
			}
		}
		return out

	case "import_from_statement", "future_import_statement":
		imp := model.ImportStatement{Module: "__future__"}
		moduleNode := node.ChildByFieldName("module_name")
		if moduleNode != nil {
			imp.Module = dottedText(moduleNode, source)
		}
		for i := 0; i < int(node.NamedChildCount()); i++ {
			child := node.NamedChild(i)
			if lang.SameNode(child, moduleNode) {
				continue
			}
			switch child.Type() {
			case "dotted_name":
				imp.Names = append(imp.Names, dottedText(child, source))
			case "aliased_import":
				var name, alias string
				if n := child.ChildByFieldName("name"); n != nil {
					name = dottedText(n, source)
				}
				if a := child.ChildByFieldName("alias"); a != nil {
					alias = lang.NodeText(a, source)
				}
				imp.Names = append(imp.Names, name+" as "+alias)
			case "wildcard_import":
				imp.Names = append(imp.Names, "*")
			}
		}
		return []model.ImportStatement{imp}
	}
	return nil
}

func dottedText(node *sitter.Node, source []byte) string {
	return strings.Join(strings.Fields(lang.NodeText(node, source)), "")
}

// Targets returns the names a module-level statement binds through
// assignment, loop, with or walrus targets and through nested function or
// class definitions. Function bodies, lambdas and comprehensions are not
// entered.
func Targets(node *sitter.Node, source []byte) []string {
	var out []string
	seen := make(map[string]bool)
	add := func(names []string) {
		for _, n := range names {
			if !seen[n] {
				seen[n] = true
				out = append(out, n)
			}
		}
	}
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		switch n.Type() {
		case "function_definition", "class_definition":
			if name := n.ChildByFieldName("name"); name != nil {
				add([]string{lang.NodeText(name, source)})
			}
			return
		case "lambda", "list_comprehension", "set_comprehension",
			"dictionary_comprehension", "generator_expression":
			return
		case "assignment", "augmented_assignment", "for_statement":
			if left := n.ChildByFieldName("left"); left != nil {
				add(PatternNames(left, source))
			}
		case "named_expression":
			if name := n.ChildByFieldName("name"); name != nil {
				add(PatternNames(name, source))
			}
		case "as_pattern":
			if alias := n.ChildByFieldName("alias"); alias != nil {
				add(PatternNames(alias, source))
			}
		}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			walk(n.NamedChild(i))
		}
	}
	walk(node)
	return out
}

// PatternNames returns the identifiers a target pattern binds. Attribute and
// subscript targets bind nothing.
func PatternNames(node *sitter.Node, source []byte) []string {
	switch node.Type() {
	case "identifier":
		return []string{lang.NodeText(node, source)}
	case "attribute", "subscript":
		return nil
	}
	var out []string
	for i := 0; i < int(node.NamedChildCount()); i++ {
		out = append(out, PatternNames(node.NamedChild(i), source)...)
	}
	return out
}

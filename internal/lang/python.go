package lang

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// Definition unwraps a decorated_definition to the function or class it
// decorates. Other nodes are returned unchanged.
func Definition(node *sitter.Node) *sitter.Node {
	if node != nil && node.Type() == "decorated_definition" {
		if def := node.ChildByFieldName("definition"); def != nil {
			return def
		}
	}
	return node
}

// IsDeclaration reports whether node is a function or class definition,
// decorated or not.
func IsDeclaration(node *sitter.Node) bool {
	switch Definition(node).Type() {
	case "function_definition", "class_definition":
		return true
	}
	return false
}

// DeclName returns the name node of a (possibly decorated) declaration.
func DeclName(node *sitter.Node) *sitter.Node {
	return Definition(node).ChildByFieldName("name")
}

// IsTopLevel reports whether a function or class definition sits directly in
// the module scope, looking through a decorator wrapper.
func IsTopLevel(defNode *sitter.Node) bool {
	parent := defNode.Parent()
	if parent != nil && parent.Type() == "decorated_definition" {
		parent = parent.Parent()
	}
	return parent != nil && parent.Type() == "module"
}

// TopLevelAncestor returns the direct child of the module that contains node.
func TopLevelAncestor(node *sitter.Node) *sitter.Node {
	current := node
	for current != nil {
		parent := current.Parent()
		if parent == nil {
			return nil
		}
		if parent.Type() == "module" {
			return current
		}
		current = parent
	}
	return nil
}

// Decorators returns the decorator expressions of a decorated_definition,
// without the leading '@'.
func Decorators(node *sitter.Node, source []byte) []string {
	if node == nil || node.Type() != "decorated_definition" {
		return nil
	}
	var out []string
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child.Type() != "decorator" {
			continue
		}
		text := strings.TrimSpace(NodeText(child, source))
		out = append(out, CollapseWhitespace(strings.TrimPrefix(text, "@")))
	}
	return out
}

// IsAsync reports whether a function_definition carries the async keyword.
func IsAsync(funcNode *sitter.Node) bool {
	for i := 0; i < int(funcNode.ChildCount()); i++ {
		switch funcNode.Child(i).Type() {
		case "async":
			return true
		case "def":
			return false
		}
	}
	return false
}

// FunctionSignature renders "name(params) -> return" for a function_definition.
func FunctionSignature(node *sitter.Node, source []byte) string {
	var name, params, returnType string
	if n := node.ChildByFieldName("name"); n != nil {
		name = NodeText(n, source)
	}
	if p := node.ChildByFieldName("parameters"); p != nil {
		params = CollapseWhitespace(NodeText(p, source))
	}
	if r := node.ChildByFieldName("return_type"); r != nil {
		returnType = NodeText(r, source)
	}
	sig := name + params
	if returnType != "" {
		sig += " -> " + returnType
	}
	return sig
}

// ClassSignature renders "Name(Base, ...)" for a class_definition.
func ClassSignature(node *sitter.Node, source []byte) string {
	var name, args string
	if n := node.ChildByFieldName("name"); n != nil {
		name = NodeText(n, source)
	}
	if s := node.ChildByFieldName("superclasses"); s != nil {
		args = CollapseWhitespace(NodeText(s, source))
	}
	return name + args
}

// Docstring returns the cleaned docstring of a block, or "" when the first
// statement is not a string literal.
func Docstring(block *sitter.Node, source []byte) string {
	if block == nil || block.NamedChildCount() == 0 {
		return ""
	}
	first := block.NamedChild(0)
	if first.Type() != "expression_statement" || first.NamedChildCount() == 0 {
		return ""
	}
	str := first.NamedChild(0)
	if str.Type() != "string" {
		return ""
	}
	return CleanDoc(StringLiteral(NodeText(str, source)))
}

// StringLiteral strips the prefix and quotes from a Python string literal.
func StringLiteral(raw string) string {
	raw = strings.TrimLeft(raw, "rRuUbBfF")
	for _, q := range []string{`"""`, `'''`, `"`, `'`} {
		if strings.HasPrefix(raw, q) && strings.HasSuffix(raw, q) && len(raw) >= 2*len(q) {
			return raw[len(q) : len(raw)-len(q)]
		}
	}
	return raw
}

// CleanDoc normalizes docstring indentation the way inspect.cleandoc does:
// the first line is stripped, the common indent of the remaining lines is
// removed, and leading/trailing blank lines are dropped.
func CleanDoc(doc string) string {
	lines := strings.Split(strings.ReplaceAll(doc, "\t", "    "), "\n")
	indent := -1
	for _, line := range lines[1:] {
		trimmed := strings.TrimLeft(line, " ")
		if trimmed == "" {
			continue
		}
		if n := len(line) - len(trimmed); indent < 0 || n < indent {
			indent = n
		}
	}
	lines[0] = strings.TrimSpace(lines[0])
	if indent > 0 {
		for i := 1; i < len(lines); i++ {
			if len(lines[i]) >= indent {
				lines[i] = lines[i][indent:]
			} else {
				lines[i] = strings.TrimLeft(lines[i], " ")
			}
		}
	}
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], " ")
	}
	for len(lines) > 0 && lines[0] == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return strings.Join(lines, "\n")
}

// Parameter is one entry of a parameters or lambda_parameters node. Splat is
// "*" or "**" for variadic parameters. Type and Default are nil when absent.
type Parameter struct {
	Name    string
	Splat   string
	Type    *sitter.Node
	Default *sitter.Node
}

// Parameters decodes a parameter list. Bare "*" and "/" separators are
// skipped.
func Parameters(params *sitter.Node, source []byte) []Parameter {
	if params == nil {
		return nil
	}
	var out []Parameter
	for i := 0; i < int(params.NamedChildCount()); i++ {
		child := params.NamedChild(i)
		var p Parameter
		switch child.Type() {
		case "identifier":
			p.Name = NodeText(child, source)
		case "list_splat_pattern", "dictionary_splat_pattern":
			p.Name, p.Splat = splatName(child, source)
		case "typed_parameter":
			p.Type = child.ChildByFieldName("type")
			if child.NamedChildCount() > 0 {
				first := child.NamedChild(0)
				if first.Type() == "identifier" {
					p.Name = NodeText(first, source)
				} else {
					p.Name, p.Splat = splatName(first, source)
				}
			}
		case "default_parameter", "typed_default_parameter":
			if n := child.ChildByFieldName("name"); n != nil {
				p.Name = NodeText(n, source)
			}
			p.Type = child.ChildByFieldName("type")
			p.Default = child.ChildByFieldName("value")
		default:
			continue
		}
		if p.Name != "" {
			out = append(out, p)
		}
	}
	return out
}

func splatName(node *sitter.Node, source []byte) (name, splat string) {
	splat = "*"
	if node.Type() == "dictionary_splat_pattern" {
		splat = "**"
	}
	for i := 0; i < int(node.NamedChildCount()); i++ {
		if c := node.NamedChild(i); c.Type() == "identifier" {
			return NodeText(c, source), splat
		}
	}
	return "", splat
}

// Package parse loads Python source files into an editable arena of
// top-level statements backed by a tree-sitter parse.
package parse

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/phobologic/pymove/internal/errs"
	"github.com/phobologic/pymove/internal/lang"
	"github.com/phobologic/pymove/internal/model"
)

var errSyntax = errors.New("source contains syntax errors")

// Load reads and parses path. When missingOK is set, a file that does not
// exist yields an empty module instead of an IO error.
func Load(ctx context.Context, path string, missingOK bool) (*Module, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		if missingOK && errors.Is(err, os.ErrNotExist) {
			return Source(ctx, path, []byte{})
		}
		return nil, errs.IOFailed(path, err)
	}
	return Source(ctx, path, source)
}

// Source parses in-memory text. path is used for error reporting and Name.
func Source(ctx context.Context, path string, source []byte) (*Module, error) {
	parser := lang.Python.NewParser()
	defer parser.Close()

	tree, err := parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, errs.ParseFailed(path, err)
	}
	root := tree.RootNode()
	if root.HasError() {
		tree.Close()
		return nil, errs.ParseFailed(path, syntaxDetail(root))
	}

	m := &Module{Path: path, Source: source, tree: tree}
	var prev *sitter.Node
	for i := 0; i < int(root.NamedChildCount()); i++ {
		node := root.NamedChild(i)
		st := newStmt(node, source)
		st.orig = len(m.Stmts)
		if prev != nil {
			gap := string(source[prev.EndByte():node.StartByte()])
			newlines := strings.Count(gap, "\n")
			st.sameLine = newlines == 0
			if newlines > 0 {
				st.blank = newlines - 1
			}
		}
		m.Stmts = append(m.Stmts, st)
		prev = node
	}
	return m, nil
}

// Check re-parses text and reports a ParseError when it is not valid Python.
func Check(ctx context.Context, path, text string) error {
	m, err := Source(ctx, path, []byte(text))
	if err != nil {
		return err
	}
	m.Close()
	return nil
}

func syntaxDetail(root *sitter.Node) error {
	var find func(n *sitter.Node) *sitter.Node
	find = func(n *sitter.Node) *sitter.Node {
		if n.Type() == "ERROR" || n.IsMissing() {
			return n
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			if c := n.Child(i); c.HasError() || c.IsMissing() {
				if bad := find(c); bad != nil {
					return bad
				}
			}
		}
		return nil
	}
	if bad := find(root); bad != nil {
		p := bad.StartPoint()
		return fmt.Errorf("%w near line %d column %d", errSyntax, p.Row+1, p.Column+1)
	}
	return errSyntax
}

func newStmt(node *sitter.Node, source []byte) *Stmt {
	st := &Stmt{
		Text:    lang.NodeText(node, source),
		Line:    int(node.StartPoint().Row) + 1,
		EndLine: int(node.EndPoint().Row) + 1,
		start:   int(node.StartByte()),
		node:    node,
	}
	switch node.Type() {
	case "comment":
		st.Kind = Comment
	case "import_statement", "import_from_statement", "future_import_statement":
		st.Kind = Import
		st.Imports = Imports(node, source)
	case "function_definition", "class_definition", "decorated_definition":
		def := lang.Definition(node)
		st.Kind = Function
		if def.Type() == "class_definition" {
			st.Kind = Class
		}
		if name := def.ChildByFieldName("name"); name != nil {
			st.Name = lang.NodeText(name, source)
			st.nameStart = int(name.StartByte() - node.StartByte())
			st.nameEnd = int(name.EndByte() - node.StartByte())
		}
	default:
		st.Docstring = isStringStatement(node)
		st.Imports = nestedImports(node, source)
		st.Targets = Targets(node, source)
	}
	return st
}

func isStringStatement(node *sitter.Node) bool {
	return node.Type() == "expression_statement" &&
		node.NamedChildCount() == 1 &&
		node.NamedChild(0).Type() == "string"
}

// nestedImports collects imports inside compound module-level statements
// (try/if blocks) without descending into functions or classes.
func nestedImports(node *sitter.Node, source []byte) []model.ImportStatement {
	var out []model.ImportStatement
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		switch n.Type() {
		case "import_statement", "import_from_statement", "future_import_statement":
			out = append(out, Imports(n, source)...)
			return
		case "function_definition", "class_definition", "lambda":
			return
		}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			walk(n.NamedChild(i))
		}
	}
	walk(node)
	return out
}

// ModuleName returns the importable name of path (its file stem).
func ModuleName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

// Package locate finds named function and class declarations in a parsed
// module.
package locate

import (
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/phobologic/pymove/internal/errs"
	"github.com/phobologic/pymove/internal/lang"
	"github.com/phobologic/pymove/internal/model"
	"github.com/phobologic/pymove/internal/parse"
)

var captureKinds = map[string]model.Kind{
	"definition.function": model.Function,
	"definition.class":    model.Class,
}

// Match is one declaration of a requested name.
type Match struct {
	Decl model.Declaration
	// Node is the function_definition or class_definition node.
	Node *sitter.Node
	// Stmt is the top-level statement holding the declaration, or nil when
	// the declaration is nested in another scope.
	Stmt *parse.Stmt
	// Imports are the import statements inside the declaration's body.
	Imports []model.ImportStatement
}

// Result holds every match of the requested names, in source order.
type Result struct {
	Names   []string
	Matches map[string][]Match
}

// Find locates every declaration of each requested name at any depth. It
// fails with a NotFound error naming exactly the names with no match.
func Find(mod *parse.Module, names []string) (*Result, error) {
	query, err := lang.Python.GetDeclQuery()
	if err != nil {
		return nil, fmt.Errorf("loading declaration query: %w", err)
	}

	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		wanted[n] = true
	}

	res := &Result{Names: names, Matches: make(map[string][]Match)}
	if len(mod.Source) > 0 {
		qc := sitter.NewQueryCursor()
		defer qc.Close()
		qc.Exec(query, mod.Root())

		for {
			match, ok := qc.NextMatch()
			if !ok {
				break
			}
			match = qc.FilterPredicates(match, mod.Source)

			var nameNode, defNode *sitter.Node
			var kind model.Kind
			for _, c := range match.Captures {
				cname := query.CaptureNameForId(c.Index)
				if cname == "name" {
					nameNode = c.Node
				} else if k, ok := captureKinds[cname]; ok {
					kind = k
					defNode = c.Node
				}
			}
			if nameNode == nil || defNode == nil {
				continue
			}
			name := lang.NodeText(nameNode, mod.Source)
			if !wanted[name] {
				continue
			}
			res.Matches[name] = append(res.Matches[name], newMatch(mod, defNode, name, kind))
		}
	}

	var missing []string
	for _, n := range names {
		if len(res.Matches[n]) == 0 {
			missing = append(missing, n)
		}
	}
	if len(missing) > 0 {
		return nil, errs.NotFoundIn(mod.Path, missing, "")
	}
	return res, nil
}

func newMatch(mod *parse.Module, defNode *sitter.Node, name string, kind model.Kind) Match {
	outer := defNode
	if p := defNode.Parent(); p != nil && p.Type() == "decorated_definition" {
		outer = p
	}
	m := Match{
		Decl: model.Declaration{
			Name:      name,
			Kind:      kind,
			StartLine: int(outer.StartPoint().Row) + 1,
			EndLine:   int(outer.EndPoint().Row) + 1,
			Source:    lang.NodeText(outer, mod.Source),
			Docstring: lang.Docstring(defNode.ChildByFieldName("body"), mod.Source),
		},
		Node:    defNode,
		Imports: bodyImports(defNode, mod.Source),
	}
	if lang.IsTopLevel(defNode) {
		m.Stmt = mod.StmtFor(defNode)
	}
	return m
}

func bodyImports(defNode *sitter.Node, source []byte) []model.ImportStatement {
	var out []model.ImportStatement
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		switch n.Type() {
		case "import_statement", "import_from_statement", "future_import_statement":
			out = append(out, parse.Imports(n, source)...)
			return
		}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			walk(n.NamedChild(i))
		}
	}
	if body := defNode.ChildByFieldName("body"); body != nil {
		walk(body)
	}
	return out
}

// TopLevel returns the last top-level declaration of name, the one a module
// import would bind, or nil when name is only declared in nested scopes.
func (r *Result) TopLevel(name string) *Match {
	ms := r.Matches[name]
	for i := len(ms) - 1; i >= 0; i-- {
		if ms[i].Stmt != nil {
			return &ms[i]
		}
	}
	return nil
}

// Imports returns the de-duplicated imports nested in the top-level
// declaration of name.
func (r *Result) Imports(name string) []model.ImportStatement {
	m := r.TopLevel(name)
	if m == nil {
		return nil
	}
	seen := make(map[string]bool)
	var out []model.ImportStatement
	for _, imp := range m.Imports {
		if text := imp.String(); !seen[text] {
			seen[text] = true
			out = append(out, imp)
		}
	}
	return out
}

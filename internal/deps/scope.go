package deps

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/phobologic/pymove/internal/lang"
	"github.com/phobologic/pymove/internal/parse"
)

// scope is one Python namespace. Class scopes are not visible to the
// functions nested inside them.
type scope struct {
	parent   *scope
	class    bool
	bound    map[string]bool
	imported map[string]bool
	global   map[string]bool
}

func newScope(parent *scope, class bool) *scope {
	return &scope{
		parent:   parent,
		class:    class,
		bound:    make(map[string]bool),
		imported: make(map[string]bool),
		global:   make(map[string]bool),
	}
}

func (s *scope) root() *scope {
	for s.parent != nil {
		s = s.parent
	}
	return s
}

// resolve returns the scope that binds name as seen from s, or nil.
func (s *scope) resolve(name string) *scope {
	if s.global[name] {
		if r := s.root(); r.bound[name] {
			return r
		}
		return nil
	}
	if s.bound[name] {
		return s
	}
	for p := s.parent; p != nil; p = p.parent {
		if p.class {
			continue
		}
		if p.bound[name] {
			return p
		}
	}
	return nil
}

// references records every name read in a block of code, split by where it
// resolves.
type references struct {
	source []byte
	// free are names bound nowhere in the analyzed code.
	free []string
	// top are names resolved to a non-import binding of the outermost scope.
	top  []string
	seen map[string]bool
}

func (r *references) read(s *scope, name string) {
	b := s.resolve(name)
	switch {
	case b == nil:
		r.add(&r.free, "free:"+name, name)
	case b.parent == nil && !b.imported[name]:
		r.add(&r.top, "top:"+name, name)
	}
}

func (r *references) add(list *[]string, key, name string) {
	if r.seen[key] {
		return
	}
	r.seen[key] = true
	*list = append(*list, name)
}

// collectNames returns the names read in root that are not bound by the code
// itself, and the names that resolve to root's own top-level definitions.
func collectNames(root *sitter.Node, source []byte) (free, top []string) {
	r := &references{source: source, seen: make(map[string]bool)}
	s := newScope(nil, false)
	r.declare(s, root)
	r.walk(s, root)
	return r.free, r.top
}

// declare binds the names a block introduces into s without entering nested
// function, class, lambda or comprehension scopes.
func (r *references) declare(s *scope, node *sitter.Node) {
	switch node.Type() {
	case "function_definition", "class_definition":
		if n := node.ChildByFieldName("name"); n != nil {
			s.bound[lang.NodeText(n, r.source)] = true
		}
		return
	case "lambda":
		return
	case "list_comprehension", "set_comprehension", "dictionary_comprehension", "generator_expression":
		r.declareWalrus(s, node)
		return
	case "import_statement", "import_from_statement", "future_import_statement":
		for _, imp := range parse.Imports(node, r.source) {
			for _, name := range imp.Bound() {
				s.bound[name] = true
				s.imported[name] = true
			}
		}
		return
	case "global_statement":
		for i := 0; i < int(node.NamedChildCount()); i++ {
			s.global[lang.NodeText(node.NamedChild(i), r.source)] = true
		}
		return
	case "nonlocal_statement":
		return
	case "assignment", "augmented_assignment", "for_statement", "for_in_clause":
		if left := node.ChildByFieldName("left"); left != nil {
			r.bind(s, parse.PatternNames(left, r.source))
		}
	case "named_expression":
		if n := node.ChildByFieldName("name"); n != nil {
			r.bind(s, []string{lang.NodeText(n, r.source)})
		}
	case "as_pattern":
		if alias := node.ChildByFieldName("alias"); alias != nil {
			r.bind(s, parse.PatternNames(alias, r.source))
		}
	case "except_clause":
		if alias := exceptAlias(node); alias != nil {
			r.bind(s, []string{lang.NodeText(alias, r.source)})
		}
	case "case_pattern":
		captures, _ := matchPattern(node, r.source)
		r.bind(s, captures)
		return
	}
	for i := 0; i < int(node.NamedChildCount()); i++ {
		r.declare(s, node.NamedChild(i))
	}
}

// declareWalrus binds assignment expressions inside a comprehension to the
// enclosing scope, as Python does.
func (r *references) declareWalrus(s *scope, node *sitter.Node) {
	if node.Type() == "named_expression" {
		if n := node.ChildByFieldName("name"); n != nil {
			r.bind(s, []string{lang.NodeText(n, r.source)})
		}
	}
	switch node.Type() {
	case "lambda", "function_definition", "class_definition":
		return
	}
	for i := 0; i < int(node.NamedChildCount()); i++ {
		r.declareWalrus(s, node.NamedChild(i))
	}
}

func (r *references) bind(s *scope, names []string) {
	for _, n := range names {
		if s.global[n] {
			s.root().bound[n] = true
			continue
		}
		s.bound[n] = true
	}
}

// exceptAlias finds the identifier bound by "except E as name" in either
// grammar shape (plain identifier after "as", or an as_pattern).
func exceptAlias(node *sitter.Node) *sitter.Node {
	for i := 0; i < int(node.ChildCount())-1; i++ {
		if node.Child(i).Type() == "as" {
			if next := node.Child(i + 1); next.Type() == "identifier" {
				return next
			}
		}
	}
	return nil
}

// matchPattern splits a match-statement pattern into the names it captures
// and the nodes it reads: the class of a class pattern and the head of a
// dotted value pattern such as Color.RED. A bare name is a capture; "_" is
// neither.
func matchPattern(node *sitter.Node, source []byte) (captures []string, reads []*sitter.Node) {
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		switch n.Type() {
		case "identifier":
			if name := lang.NodeText(n, source); name != "_" {
				captures = append(captures, name)
			}
			return
		case "dotted_name":
			if n.NamedChildCount() == 1 {
				walk(n.NamedChild(0))
				return
			}
			reads = append(reads, n.NamedChild(0))
			return
		case "class_pattern":
			for i := 0; i < int(n.NamedChildCount()); i++ {
				c := n.NamedChild(i)
				if i == 0 && c.Type() == "dotted_name" {
					reads = append(reads, c.NamedChild(0))
					continue
				}
				walk(c)
			}
			return
		case "keyword_pattern":
			// The keyword names an attribute of the subject.
			for i := 1; i < int(n.NamedChildCount()); i++ {
				walk(n.NamedChild(i))
			}
			return
		}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			walk(n.NamedChild(i))
		}
	}
	walk(node)
	return captures, reads
}

// walk records the reads in node, evaluated in s.
func (r *references) walk(s *scope, node *sitter.Node) {
	switch node.Type() {
	case "identifier":
		r.read(s, lang.NodeText(node, r.source))
		return

	case "attribute":
		if obj := node.ChildByFieldName("object"); obj != nil {
			r.walk(s, obj)
		}
		return

	case "keyword_argument":
		if v := node.ChildByFieldName("value"); v != nil {
			r.walk(s, v)
		}
		return

	case "import_statement", "import_from_statement", "future_import_statement",
		"global_statement", "nonlocal_statement", "comment":
		return

	case "function_definition":
		r.function(s, node)
		return

	case "class_definition":
		if sc := node.ChildByFieldName("superclasses"); sc != nil {
			r.walk(s, sc)
		}
		if tp := node.ChildByFieldName("type_parameters"); tp != nil {
			r.walk(s, tp)
		}
		inner := newScope(s, true)
		if body := node.ChildByFieldName("body"); body != nil {
			r.declare(inner, body)
			r.walk(inner, body)
		}
		return

	case "lambda":
		params := lang.Parameters(node.ChildByFieldName("parameters"), r.source)
		inner := newScope(s, false)
		for _, p := range params {
			if p.Default != nil {
				r.walk(s, p.Default)
			}
			inner.bound[p.Name] = true
		}
		if body := node.ChildByFieldName("body"); body != nil {
			r.declare(inner, body)
			r.walk(inner, body)
		}
		return

	case "list_comprehension", "set_comprehension", "dictionary_comprehension", "generator_expression":
		inner := newScope(s, false)
		for i := 0; i < int(node.NamedChildCount()); i++ {
			if c := node.NamedChild(i); c.Type() == "for_in_clause" {
				if left := c.ChildByFieldName("left"); left != nil {
					r.bind(inner, parse.PatternNames(left, r.source))
				}
			}
		}
		for i := 0; i < int(node.NamedChildCount()); i++ {
			r.walk(inner, node.NamedChild(i))
		}
		return

	case "for_in_clause", "for_statement":
		if left := node.ChildByFieldName("left"); left != nil {
			r.target(s, left)
		}
		for i := 0; i < int(node.NamedChildCount()); i++ {
			c := node.NamedChild(i)
			if !lang.SameNode(c, node.ChildByFieldName("left")) {
				r.walk(s, c)
			}
		}
		return

	case "assignment":
		if left := node.ChildByFieldName("left"); left != nil {
			r.target(s, left)
		}
		if t := node.ChildByFieldName("type"); t != nil {
			r.walk(s, t)
		}
		if right := node.ChildByFieldName("right"); right != nil {
			r.walk(s, right)
		}
		return

	case "named_expression":
		if v := node.ChildByFieldName("value"); v != nil {
			r.walk(s, v)
		}
		return

	case "as_pattern":
		for i := 0; i < int(node.NamedChildCount()); i++ {
			c := node.NamedChild(i)
			if c.Type() == "as_pattern_target" || lang.SameNode(c, node.ChildByFieldName("alias")) {
				r.target(s, c)
				continue
			}
			r.walk(s, c)
		}
		return

	case "except_clause":
		alias := exceptAlias(node)
		for i := 0; i < int(node.NamedChildCount()); i++ {
			if c := node.NamedChild(i); !lang.SameNode(c, alias) {
				r.walk(s, c)
			}
		}
		return

	case "case_pattern":
		_, reads := matchPattern(node, r.source)
		for _, n := range reads {
			r.walk(s, n)
		}
		return
	}

	for i := 0; i < int(node.NamedChildCount()); i++ {
		r.walk(s, node.NamedChild(i))
	}
}

// function walks a function definition: decorators are handled by the
// enclosing decorated_definition, defaults and annotations evaluate in s,
// and the body gets its own scope.
func (r *references) function(s *scope, node *sitter.Node) {
	params := lang.Parameters(node.ChildByFieldName("parameters"), r.source)
	inner := newScope(s, false)
	for _, p := range params {
		if p.Type != nil {
			r.walk(s, p.Type)
		}
		if p.Default != nil {
			r.walk(s, p.Default)
		}
		inner.bound[p.Name] = true
	}
	if rt := node.ChildByFieldName("return_type"); rt != nil {
		r.walk(s, rt)
	}
	if body := node.ChildByFieldName("body"); body != nil {
		r.declare(inner, body)
		r.walk(inner, body)
	}
}

// target walks an assignment target: bare names are writes, but the object
// of an attribute and every part of a subscript are reads.
func (r *references) target(s *scope, node *sitter.Node) {
	switch node.Type() {
	case "identifier":
		return
	case "attribute", "subscript":
		r.walk(s, node)
		return
	}
	for i := 0; i < int(node.NamedChildCount()); i++ {
		r.target(s, node.NamedChild(i))
	}
}

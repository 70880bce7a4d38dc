package parse

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/phobologic/pymove/internal/lang"
	"github.com/phobologic/pymove/internal/model"
)

// StmtKind classifies a top-level statement.
type StmtKind int

const (
	Other StmtKind = iota
	Import
	Function
	Class
	Comment
)

// Stmt is one top-level statement (or comment) of a module. Declarations
// include their decorators.
type Stmt struct {
	Kind    StmtKind
	Name    string // declaration name; "" for other kinds
	Text    string
	Line    int // 1-based; 0 for statements not read from this module's source
	EndLine int

	// Imports holds the imports the statement performs, including imports
	// nested in module-level try/if blocks.
	Imports []model.ImportStatement
	// Targets holds module-level names bound by assignment.
	Targets []string
	// Docstring marks a bare string expression statement.
	Docstring bool

	start     int
	nameStart int
	nameEnd   int
	node      *sitter.Node

	// Layout relative to the preceding statement in the original source.
	orig     int
	blank    int
	sameLine bool
}

// IsDecl reports whether s is a function or class declaration.
func (s *Stmt) IsDecl() bool { return s.Kind == Function || s.Kind == Class }

// DeclKind maps the statement kind to a model.Kind.
func (s *Stmt) DeclKind() model.Kind {
	if s.Kind == Class {
		return model.Class
	}
	return model.Function
}

// Node returns the tree-sitter node the statement was parsed from. It is
// nil for detached statements and only valid while the owning module is
// open.
func (s *Stmt) Node() *sitter.Node { return s.node }

// Detach returns a copy of s that carries no position in any module.
func (s *Stmt) Detach() *Stmt {
	c := *s
	c.orig = -1
	c.node = nil
	c.Line, c.EndLine = 0, 0
	c.Imports = append([]model.ImportStatement(nil), s.Imports...)
	c.Targets = append([]string(nil), s.Targets...)
	return &c
}

// Rename rewrites the declaration's own name in its text. Recursive
// references inside the body are left alone.
func (s *Stmt) Rename(name string) {
	if !s.IsDecl() || s.nameEnd <= s.nameStart {
		return
	}
	s.Text = s.Text[:s.nameStart] + name + s.Text[s.nameEnd:]
	s.nameEnd = s.nameStart + len(name)
	s.Name = name
}

// NewImport builds a detached import statement.
func NewImport(imp model.ImportStatement) *Stmt {
	return &Stmt{Kind: Import, Text: imp.String(), Imports: []model.ImportStatement{imp}, orig: -1}
}

// Module is a parsed Python file. Stmts may be edited in place; Root and
// Stmt.Node keep describing the text that was parsed.
type Module struct {
	Path   string
	Source []byte
	Stmts  []*Stmt
	tree   *sitter.Tree
}

// Root returns the root node of the original parse.
func (m *Module) Root() *sitter.Node { return m.tree.RootNode() }

// Close releases the tree-sitter tree.
func (m *Module) Close() {
	if m.tree != nil {
		m.tree.Close()
		m.tree = nil
	}
}

// Name is the module name derived from Path.
func (m *Module) Name() string { return ModuleName(m.Path) }

// StmtFor returns the top-level statement containing node.
func (m *Module) StmtFor(node *sitter.Node) *Stmt {
	top := lang.TopLevelAncestor(node)
	if top == nil {
		return nil
	}
	for _, st := range m.Stmts {
		if st.node != nil && st.start == int(top.StartByte()) {
			return st
		}
	}
	return nil
}

// Decls returns every top-level declaration named name, in source order.
func (m *Module) Decls(name string) []*Stmt {
	var out []*Stmt
	for _, st := range m.Stmts {
		if st.IsDecl() && st.Name == name {
			out = append(out, st)
		}
	}
	return out
}

// Index returns the position of the first top-level declaration named name,
// or -1.
func (m *Module) Index(name string) int {
	for i, st := range m.Stmts {
		if st.IsDecl() && st.Name == name {
			return i
		}
	}
	return -1
}

// Binds reports whether any top-level statement binds name.
func (m *Module) Binds(name string) bool {
	for _, st := range m.Stmts {
		if st.IsDecl() && st.Name == name {
			return true
		}
		for _, t := range st.Targets {
			if t == name {
				return true
			}
		}
		for _, imp := range st.Imports {
			for _, b := range imp.Bound() {
				if b == name {
					return true
				}
			}
		}
	}
	return false
}

// Insert places st at index i, clamped to the statement range.
func (m *Module) Insert(i int, st *Stmt) {
	if i < 0 {
		i = 0
	}
	if i > len(m.Stmts) {
		i = len(m.Stmts)
	}
	m.Stmts = append(m.Stmts, nil)
	copy(m.Stmts[i+1:], m.Stmts[i:])
	m.Stmts[i] = st
}

// Remove deletes every top-level declaration named name and returns how many
// were removed.
func (m *Module) Remove(name string) int {
	kept := m.Stmts[:0]
	removed := 0
	for _, st := range m.Stmts {
		if st.IsDecl() && st.Name == name {
			removed++
			continue
		}
		kept = append(kept, st)
	}
	for i := len(kept); i < len(m.Stmts); i++ {
		m.Stmts[i] = nil
	}
	m.Stmts = kept
	return removed
}

// HasImport reports whether a module-level import renders as text, either
// whole or as one of the single-module imports it decodes to. An existing
// "import os, sys" has "import os".
func (m *Module) HasImport(text string) bool {
	for _, st := range m.Stmts {
		if st.Kind != Import {
			continue
		}
		if lang.CollapseWhitespace(st.Text) == text {
			return true
		}
		for _, imp := range st.Imports {
			if imp.String() == text {
				return true
			}
		}
	}
	return false
}

// HeaderEnd returns the index just past the module header: leading comments,
// the module docstring and __future__ imports. New imports go here.
func (m *Module) HeaderEnd() int {
	i := 0
	docSeen := false
	for i < len(m.Stmts) {
		st := m.Stmts[i]
		switch {
		case st.Kind == Comment:
		case st.Docstring && !docSeen && i == firstCode(m.Stmts):
			docSeen = true
		case st.Kind == Import && isFuture(st):
		default:
			return i
		}
		i++
	}
	return i
}

// ImportsEnd returns the index just past the header and the leading run of
// imports and comments.
func (m *Module) ImportsEnd() int {
	i := m.HeaderEnd()
	end := i
	for i < len(m.Stmts) {
		switch m.Stmts[i].Kind {
		case Import:
			i++
			end = i
		case Comment:
			i++
		default:
			return end
		}
	}
	return end
}

func firstCode(stmts []*Stmt) int {
	for i, st := range stmts {
		if st.Kind != Comment {
			return i
		}
	}
	return -1
}

func isFuture(st *Stmt) bool {
	for _, imp := range st.Imports {
		if imp.Module != "__future__" {
			return false
		}
	}
	return len(st.Imports) > 0
}

// String serializes the statements. Statements that were adjacent in the
// original source keep their separator (capped at two blank lines); new
// neighbours get two blank lines around declarations, none between
// imports, one otherwise.
func (m *Module) String() string {
	if len(m.Stmts) == 0 {
		return ""
	}
	var b strings.Builder
	for i, st := range m.Stmts {
		if i > 0 {
			b.WriteString(separator(m.Stmts[i-1], st))
		}
		b.WriteString(st.Text)
	}
	b.WriteString("\n")
	return b.String()
}

func separator(prev, cur *Stmt) string {
	if prev.orig >= 0 && cur.orig == prev.orig+1 {
		if cur.sameLine {
			if cur.Kind == Comment {
				return "  "
			}
			return "; "
		}
		return "\n" + strings.Repeat("\n", min(cur.blank, 2))
	}
	switch {
	case prev.IsDecl() || cur.IsDecl():
		return "\n\n\n"
	case prev.Kind == Import && cur.Kind == Import:
		return "\n"
	default:
		return "\n\n"
	}
}

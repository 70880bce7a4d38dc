package deps

import (
	"github.com/phobologic/pymove/internal/model"
	"github.com/phobologic/pymove/internal/parse"
)

// BindingKind says what a module-level name is bound to.
type BindingKind int

const (
	FunctionBinding BindingKind = iota
	ClassBinding
	VariableBinding
	ImportBinding
)

// Binding is the module-level meaning of one name. Import is set for
// ImportBinding and narrowed to that single name.
type Binding struct {
	Kind   BindingKind
	Import model.ImportStatement
}

// SymbolTable maps the names a module binds at top level to what they are
// bound to, in place of loading the module. Later bindings win.
type SymbolTable struct {
	Module   string
	Path     string
	bindings map[string]Binding
}

// NewSymbolTable builds the table for mod's current statements. Later
// statements win, except that a compound statement which imports a name
// keeps it as an import even when one of its branches also assigns it, as
// in the try/except ImportError fallback idiom.
func NewSymbolTable(mod *parse.Module) *SymbolTable {
	t := &SymbolTable{
		Module:   mod.Name(),
		Path:     mod.Path,
		bindings: make(map[string]Binding),
	}
	for _, st := range mod.Stmts {
		switch st.Kind {
		case parse.Function:
			t.bindings[st.Name] = Binding{Kind: FunctionBinding}
		case parse.Class:
			t.bindings[st.Name] = Binding{Kind: ClassBinding}
		}
		imported := make(map[string]bool)
		for _, imp := range st.Imports {
			for _, name := range imp.Bound() {
				t.bindings[name] = Binding{Kind: ImportBinding, Import: imp.Only(name)}
				imported[name] = true
			}
		}
		for _, name := range st.Targets {
			if !imported[name] {
				t.bindings[name] = Binding{Kind: VariableBinding}
			}
		}
	}
	return t
}

// Lookup returns the binding of name.
func (t *SymbolTable) Lookup(name string) (Binding, bool) {
	if t == nil {
		return Binding{}, false
	}
	b, ok := t.bindings[name]
	return b, ok
}

// Declares reports whether name is bound to a top-level function or class.
func (t *SymbolTable) Declares(name string) bool {
	b, ok := t.Lookup(name)
	return ok && (b.Kind == FunctionBinding || b.Kind == ClassBinding)
}

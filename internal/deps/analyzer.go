// Package deps classifies the names a piece of Python code depends on as
// local, imported from an external package, or provided by the standard
// library.
//
// Classification is static: free names are resolved against a SymbolTable
// built from the owning module's source and against the embedded standard
// library and builtins registries. The owning module is never executed.
package deps

import (
	"context"
	"log/slog"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/phobologic/pymove/internal/lang"
	"github.com/phobologic/pymove/internal/model"
	"github.com/phobologic/pymove/internal/parse"
)

// BuiltinsModule is the stdlib entry recorded for builtin names.
const BuiltinsModule = "builtins"

// Analyzer computes dependency classifications.
type Analyzer struct {
	logger *slog.Logger
}

// New returns an Analyzer that logs through logger, or slog.Default when nil.
func New(logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{logger: logger}
}

// Analyze classifies the dependencies of source, a run of top-level
// declarations taken from the module described by owner. owner may be nil.
//
// Every import inside source classifies its module. Every name read but not
// bound within source is then resolved through owner: imports classify by
// module and are added to Requires, module-level functions, classes and
// variables are local. Unresolved builtins count as the stdlib "builtins"
// module. Names source itself declares at top level are local.
//
// A parse failure is logged and yields nil.
func (a *Analyzer) Analyze(ctx context.Context, owner *SymbolTable, source string) *model.Classification {
	path := "<analyzed>"
	if owner != nil {
		path = owner.Path
	}
	mod, err := parse.Source(ctx, path, []byte(source))
	if err != nil {
		a.logger.Warn("dependency analysis failed", "path", path, "error", err)
		return nil
	}
	defer mod.Close()

	c := model.NewClassification()
	a.classifyImports(c, mod.Root(), mod.Source)

	free, top := collectNames(mod.Root(), mod.Source)
	for _, name := range top {
		c.Local[name] = struct{}{}
	}
	for _, name := range free {
		a.resolve(c, owner, name)
	}
	return c
}

func (a *Analyzer) classifyImports(c *model.Classification, root *sitter.Node, source []byte) {
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		switch n.Type() {
		case "import_statement", "import_from_statement", "future_import_statement":
			for _, imp := range parse.Imports(n, source) {
				classifyModule(c, imp)
			}
			return
		}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			walk(n.NamedChild(i))
		}
	}
	walk(root)
}

func (a *Analyzer) resolve(c *model.Classification, owner *SymbolTable, name string) {
	if b, ok := owner.Lookup(name); ok {
		switch b.Kind {
		case ImportBinding:
			classifyModule(c, b.Import)
			c.AddRequire(b.Import)
		default:
			c.Local[name] = struct{}{}
		}
		return
	}
	if lang.IsBuiltin(name) {
		c.Stdlib[BuiltinsModule] = struct{}{}
		return
	}
	a.logger.Debug("unresolved name", "name", name)
}

// classifyModule files imp's module under stdlib, external or (for relative
// imports) local.
func classifyModule(c *model.Classification, imp model.ImportStatement) {
	switch {
	case imp.Relative():
		c.Local[imp.Module] = struct{}{}
	case lang.IsStdlib(imp.Module):
		c.Stdlib[imp.Module] = struct{}{}
	default:
		c.Imported[imp.Module] = struct{}{}
	}
}

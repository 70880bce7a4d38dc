// Package metadata describes the top-level functions and classes of a
// Python file without executing it.
package metadata

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"sort"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/phobologic/pymove/internal/deps"
	"github.com/phobologic/pymove/internal/errs"
	"github.com/phobologic/pymove/internal/lang"
	"github.com/phobologic/pymove/internal/model"
	"github.com/phobologic/pymove/internal/parse"
)

var errNoNode = errors.New("declaration has no syntax node")

// Extractor builds metadata records.
type Extractor struct {
	logger   *slog.Logger
	analyzer *deps.Analyzer
}

// New returns an Extractor logging through logger (slog.Default when nil).
func New(logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{logger: logger, analyzer: deps.New(logger)}
}

// Describe returns a record for every top-level function and class in path,
// restricted to names when any are given. Unknown names are ignored. When a
// name is declared more than once the last declaration is described. A name
// whose final module-level binding is not a function or class is skipped.
//
// Read and parse failures are returned; a failure on a single declaration is
// logged and that record is omitted.
func (e *Extractor) Describe(ctx context.Context, path string, names []string) ([]model.MetadataRecord, error) {
	mod, err := parse.Load(ctx, path, false)
	if err != nil {
		return nil, err
	}
	defer mod.Close()

	table := deps.NewSymbolTable(mod)
	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		wanted[n] = true
	}

	last := make(map[string]int)
	for i, st := range mod.Stmts {
		if st.IsDecl() && (len(names) == 0 || wanted[st.Name]) {
			last[st.Name] = i
		}
	}
	indexes := make([]int, 0, len(last))
	for name, i := range last {
		if !table.Declares(name) {
			e.logger.Debug("skipping rebound declaration", "path", path, "name", name)
			continue
		}
		indexes = append(indexes, i)
	}
	sort.Ints(indexes)

	records := make([]model.MetadataRecord, 0, len(indexes))
	for _, i := range indexes {
		st := mod.Stmts[i]
		rec, err := e.record(ctx, mod, table, st)
		if err != nil {
			err = errs.ExtractionFailed(path, st.Name, err)
			e.logger.Warn("skipping declaration", "path", path, "name", st.Name, "kind", errs.KindOf(err), "error", err)
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

func (e *Extractor) record(ctx context.Context, mod *parse.Module, table *deps.SymbolTable, st *parse.Stmt) (model.MetadataRecord, error) {
	outer := st.Node()
	if outer == nil {
		return model.MetadataRecord{}, errNoNode
	}
	def := lang.Definition(outer)
	src := mod.Source

	rec := model.MetadataRecord{
		Name:       st.Name,
		Kind:       st.DeclKind(),
		Docstring:  lang.Docstring(def.ChildByFieldName("body"), src),
		File:       mod.Path,
		Module:     mod.Name(),
		StartLine:  st.Line,
		EndLine:    st.EndLine,
		Source:     st.Text,
		Decorators: lang.Decorators(outer, src),
	}

	switch rec.Kind {
	case model.Function:
		rec.IsAsync = lang.IsAsync(def)
		rec.Signature = lang.FunctionSignature(def, src)
		rec.Parameters = parameters(def, src)
		if rt := def.ChildByFieldName("return_type"); rt != nil {
			rec.ReturnType = lang.NodeText(rt, src)
		}
	case model.Class:
		rec.Signature = lang.ClassSignature(def, src)
		rec.Bases = bases(def, src)
		rec.Attributes = attributes(def, src)
	}

	rec.Dependencies = model.DependenciesOf(e.analyzer.Analyze(ctx, table, st.Text))
	return rec, nil
}

func parameters(def *sitter.Node, src []byte) []model.Parameter {
	var out []model.Parameter
	for _, p := range lang.Parameters(def.ChildByFieldName("parameters"), src) {
		mp := model.Parameter{Name: p.Splat + p.Name}
		if p.Type != nil {
			mp.Type = lang.CollapseWhitespace(lang.NodeText(p.Type, src))
		}
		if p.Default != nil {
			mp.Default = lang.CollapseWhitespace(lang.NodeText(p.Default, src))
		}
		out = append(out, mp)
	}
	return out
}

// bases returns the positional superclass expressions; keyword arguments
// such as metaclass= are not bases.
func bases(def *sitter.Node, src []byte) []string {
	args := def.ChildByFieldName("superclasses")
	if args == nil {
		return nil
	}
	var out []string
	for i := 0; i < int(args.NamedChildCount()); i++ {
		arg := args.NamedChild(i)
		switch arg.Type() {
		case "keyword_argument", "dictionary_splat", "list_splat", "comment":
			continue
		}
		out = append(out, lang.CollapseWhitespace(lang.NodeText(arg, src)))
	}
	return out
}

// attributes maps public class-level assignments to their value text.
// Lambdas are callables and left out, as are methods and nested classes.
func attributes(def *sitter.Node, src []byte) map[string]string {
	body := def.ChildByFieldName("body")
	if body == nil {
		return nil
	}
	attrs := make(map[string]string)
	for i := 0; i < int(body.NamedChildCount()); i++ {
		stmt := body.NamedChild(i)
		if stmt.Type() != "expression_statement" || stmt.NamedChildCount() == 0 {
			continue
		}
		assign := stmt.NamedChild(0)
		if assign.Type() != "assignment" {
			continue
		}
		left, right := assign.ChildByFieldName("left"), assign.ChildByFieldName("right")
		if left == nil || right == nil || left.Type() != "identifier" || right.Type() == "lambda" {
			continue
		}
		name := lang.NodeText(left, src)
		if strings.HasPrefix(name, "_") {
			continue
		}
		attrs[name] = lang.CollapseWhitespace(lang.NodeText(right, src))
	}
	if len(attrs) == 0 {
		return nil
	}
	return attrs
}

var declLineRe = regexp.MustCompile(`(?m)^(def|class)\s+(\w+)`)

// Reconciliation compares Describe against a plain line scan of the file.
type Reconciliation struct {
	// Unscanned are described names the line scan did not see (async or
	// unusually formatted declarations).
	Unscanned []string
	// Undescribed are scanned names Describe omitted.
	Undescribed []string
}

// Reconcile runs Describe on path and cross-checks the result against a
// "def|class <name>" line scan.
func (e *Extractor) Reconcile(ctx context.Context, path string) (*Reconciliation, error) {
	records, err := e.Describe(ctx, path, nil)
	if err != nil {
		return nil, err
	}
	mod, err := parse.Load(ctx, path, false)
	if err != nil {
		return nil, err
	}
	defer mod.Close()

	scanned := make(map[string]bool)
	for _, m := range declLineRe.FindAllStringSubmatch(string(mod.Source), -1) {
		scanned[m[2]] = true
	}
	described := make(map[string]bool, len(records))
	for _, r := range records {
		described[r.Name] = true
	}

	rec := &Reconciliation{}
	for name := range described {
		if !scanned[name] {
			rec.Unscanned = append(rec.Unscanned, name)
		}
	}
	for name := range scanned {
		if !described[name] {
			rec.Undescribed = append(rec.Undescribed, name)
		}
	}
	sort.Strings(rec.Unscanned)
	sort.Strings(rec.Undescribed)
	return rec, nil
}

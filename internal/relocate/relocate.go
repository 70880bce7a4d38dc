// Package relocate moves top-level Python declarations between files,
// carrying the imports they need and resolving name conflicts at the
// destination.
package relocate

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/phobologic/pymove/internal/deps"
	"github.com/phobologic/pymove/internal/errs"
	"github.com/phobologic/pymove/internal/locate"
	"github.com/phobologic/pymove/internal/model"
	"github.com/phobologic/pymove/internal/parse"
)

// Request describes one relocation batch.
type Request struct {
	Names            []string
	Source           string
	Dest             string
	RemoveFromSource bool
	Position         model.Position
	Policy           model.ConflictPolicy
	// DryRun computes the edits and returns them as diffs without writing.
	DryRun bool
}

// InsertRequest adds free-standing code (such as generated code) to Dest.
type InsertRequest struct {
	Dest     string
	Code     string
	Position model.Position
	Policy   model.ConflictPolicy
	DryRun   bool
}

// Diff is a unified diff of one file a dry run would have written.
type Diff struct {
	Path string
	Text string
}

// Result summarizes a relocation.
type Result struct {
	// Moved lists the names as they now appear in the destination.
	Moved []string
	// Renamed maps original names to their new names under the rename policy.
	Renamed map[string]string
	Skipped []string
	// LeftBehind lists local dependencies of the moved code that the
	// destination does not define.
	LeftBehind []string
	Notices    []string
	Diffs      []Diff
}

// Surgeon performs relocations. It holds no per-file state; every call
// reads the files it touches afresh.
type Surgeon struct {
	logger   *slog.Logger
	analyzer *deps.Analyzer
}

// New returns a Surgeon logging through logger (slog.Default when nil).
func New(logger *slog.Logger) *Surgeon {
	if logger == nil {
		logger = slog.Default()
	}
	return &Surgeon{logger: logger, analyzer: deps.New(logger)}
}

// Relocate copies the named top-level declarations from req.Source into
// req.Dest, optionally removing them from the source. Nothing is written
// unless every step before the writes succeeds.
func (s *Surgeon) Relocate(ctx context.Context, req Request) (*Result, error) {
	policy, err := model.ParsePolicy(string(req.Policy))
	if err != nil {
		return nil, err
	}
	names := uniqueNames(req.Names)
	if len(names) == 0 {
		return nil, fmt.Errorf("relocating declarations: no names given")
	}
	if samePath(req.Source, req.Dest) {
		return nil, fmt.Errorf("relocating declarations: source and destination are both %s", req.Source)
	}

	src, err := parse.Load(ctx, req.Source, false)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	found, err := locate.Find(src, names)
	if err != nil {
		return nil, err
	}
	var nested []string
	for _, name := range names {
		if found.TopLevel(name) == nil {
			nested = append(nested, name)
		}
	}
	if len(nested) > 0 {
		return nil, errs.NotFoundIn(req.Source, nested, "not declared at top level")
	}

	texts := make([]string, 0, len(names))
	for _, name := range names {
		texts = append(texts, found.TopLevel(name).Stmt.Text)
	}
	class := s.analyzer.Analyze(ctx, deps.NewSymbolTable(src), strings.Join(texts, "\n\n\n")+"\n")
	if class == nil {
		class = model.NewClassification()
	}

	dst, err := parse.Load(ctx, req.Dest, true)
	if err != nil {
		return nil, err
	}
	defer dst.Close()

	sp := s.newSplicer(dst, policy, req.Position)
	for _, name := range names {
		st := found.TopLevel(name).Stmt.Detach()
		ok, err := sp.declaration(st, found.Imports(name), class.Requires)
		if err != nil {
			return nil, fmt.Errorf("relocating declarations: %w", err)
		}
		if ok && st.Name != name {
			sp.res.Renamed[name] = st.Name
		}
	}

	if req.RemoveFromSource {
		for _, name := range names {
			if !contains(sp.res.Skipped, name) {
				src.Remove(name)
			}
		}
	}

	moved := make(map[string]bool, len(names))
	for _, n := range names {
		moved[n] = true
	}
	for _, local := range class.LocalNames() {
		if moved[local] || strings.HasPrefix(local, ".") || dst.Binds(local) {
			continue
		}
		sp.res.LeftBehind = append(sp.res.LeftBehind, local)
		sp.notice(fmt.Sprintf("local dependency %q is not defined in %s", local, req.Dest))
	}

	outputs := []output{{mod: dst, path: req.Dest}}
	if req.RemoveFromSource {
		outputs = append(outputs, output{mod: src, path: req.Source})
	}
	if err := s.commit(ctx, outputs, req.DryRun, sp.res); err != nil {
		return nil, err
	}
	return sp.res, nil
}

// InsertCode adds the imports, declarations and other statements in
// req.Code to req.Dest using the same conflict, position and import rules as
// Relocate.
func (s *Surgeon) InsertCode(ctx context.Context, req InsertRequest) (*Result, error) {
	policy, err := model.ParsePolicy(string(req.Policy))
	if err != nil {
		return nil, err
	}
	code, err := parse.Source(ctx, "<generated>", []byte(req.Code))
	if err != nil {
		return nil, err
	}
	defer code.Close()

	dst, err := parse.Load(ctx, req.Dest, true)
	if err != nil {
		return nil, err
	}
	defer dst.Close()

	sp := s.newSplicer(dst, policy, req.Position)
	for _, st := range code.Stmts {
		switch {
		case st.Kind == parse.Import:
			for _, imp := range st.Imports {
				sp.addImport(imp)
			}
		case st.Kind == parse.Comment:
		case st.IsDecl():
			name := st.Name
			detached := st.Detach()
			ok, err := sp.declaration(detached, nil, nil)
			if err != nil {
				return nil, fmt.Errorf("inserting code: %w", err)
			}
			if ok && detached.Name != name {
				sp.res.Renamed[name] = detached.Name
			}
		default:
			sp.place(st.Detach())
		}
	}

	if err := s.commit(ctx, []output{{mod: dst, path: req.Dest}}, req.DryRun, sp.res); err != nil {
		return nil, err
	}
	return sp.res, nil
}

// splicer accumulates edits to one destination module.
type splicer struct {
	s        *Surgeon
	dst      *parse.Module
	policy   model.ConflictPolicy
	pos      model.Position
	res      *Result
	imports  int
	last     *parse.Stmt
	importAt int
	warned   bool
}

func (s *Surgeon) newSplicer(dst *parse.Module, policy model.ConflictPolicy, pos model.Position) *splicer {
	return &splicer{
		s:        s,
		dst:      dst,
		policy:   policy,
		pos:      pos,
		res:      &Result{Renamed: make(map[string]string)},
		importAt: dst.HeaderEnd(),
	}
}

func (sp *splicer) notice(msg string) {
	sp.res.Notices = append(sp.res.Notices, msg)
	sp.s.logger.Info(msg)
}

// declaration resolves st's conflict and inserts it with the imports it
// needs. It reports false when the policy skipped it.
func (sp *splicer) declaration(st *parse.Stmt, nested, requires []model.ImportStatement) (bool, error) {
	original := st.Name
	ok, err := resolveConflict(sp.dst, st, sp.policy)
	if err != nil {
		return false, err
	}
	if !ok {
		sp.res.Skipped = append(sp.res.Skipped, original)
		sp.notice(fmt.Sprintf("skipped %q: already declared in %s", original, sp.dst.Path))
		return false, nil
	}
	if st.Name != original {
		sp.notice(fmt.Sprintf("renamed %q to %q: already declared in %s", original, st.Name, sp.dst.Path))
	}
	for _, imp := range nested {
		sp.addImport(imp)
	}
	for _, imp := range requires {
		sp.addImport(imp)
	}
	sp.place(st)
	sp.res.Moved = append(sp.res.Moved, st.Name)
	return true, nil
}

// addImport inserts imp after the module header unless the same text is
// already present.
func (sp *splicer) addImport(imp model.ImportStatement) {
	if sp.dst.HasImport(imp.String()) {
		return
	}
	sp.dst.Insert(sp.importAt+sp.imports, parse.NewImport(imp))
	sp.imports++
}

// place inserts st at the planned position. Consecutive insertions keep
// their relative order.
func (sp *splicer) place(st *parse.Stmt) {
	idx := -1
	if sp.last != nil && sp.pos.Kind != model.Bottom {
		if i := indexOf(sp.dst, sp.last); i >= 0 {
			idx = i + 1
		}
	}
	if idx < 0 {
		var ok bool
		idx, ok = insertionIndex(sp.dst, sp.pos)
		if !ok && !sp.warned {
			sp.warned = true
			sp.notice(fmt.Sprintf("position anchor %q not found in %s; appending", sp.pos.Anchor, sp.dst.Path))
		}
	}
	sp.dst.Insert(idx, st)
	sp.last = st
}

type output struct {
	mod  *parse.Module
	path string
}

// commit serializes and re-parses every output, then either writes them in
// order or, for a dry run, records their diffs.
func (s *Surgeon) commit(ctx context.Context, outputs []output, dryRun bool, res *Result) error {
	texts := make([]string, len(outputs))
	for i, o := range outputs {
		texts[i] = o.mod.String()
		if err := parse.Check(ctx, o.path, texts[i]); err != nil {
			return err
		}
	}

	if dryRun {
		for i, o := range outputs {
			diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
				A:        difflib.SplitLines(string(o.mod.Source)),
				B:        difflib.SplitLines(texts[i]),
				FromFile: "a/" + filepath.ToSlash(o.path),
				ToFile:   "b/" + filepath.ToSlash(o.path),
				Context:  3,
			})
			if err != nil {
				return fmt.Errorf("relocating declarations: diffing %s: %w", o.path, err)
			}
			res.Diffs = append(res.Diffs, Diff{Path: o.path, Text: diff})
		}
		return nil
	}

	for i, o := range outputs {
		if err := writeFile(o.path, texts[i]); err != nil {
			return err
		}
		s.logger.Debug("wrote file", "path", o.path, "bytes", len(texts[i]))
	}
	return nil
}

func writeFile(path, text string) error {
	perm := fs.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		perm = info.Mode().Perm()
	} else if !errors.Is(err, fs.ErrNotExist) {
		return errs.IOFailed(path, err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errs.IOFailed(path, err)
		}
	}
	if err := os.WriteFile(path, []byte(text), perm); err != nil {
		return errs.IOFailed(path, err)
	}
	return nil
}

func uniqueNames(names []string) []string {
	seen := make(map[string]bool, len(names))
	var out []string
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n != "" && !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	return out
}

func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

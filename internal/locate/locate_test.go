package locate

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/phobologic/pymove/internal/errs"
	"github.com/phobologic/pymove/internal/model"
	"github.com/phobologic/pymove/internal/parse"
)

const source = `import os


@decorator
def alpha(x):
    """Alpha doc."""
    import json
    from collections import OrderedDict
    return json.dumps(x)


class Beta:
    def helper(self):
        pass


def outer():
    def nested():
        pass
    return nested
`

func load(t *testing.T, src string) *parse.Module {
	t.Helper()
	m, err := parse.Source(context.Background(), "src.py", []byte(src))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	t.Cleanup(m.Close)
	return m
}

func TestFindTopLevel(t *testing.T) {
	t.Parallel()
	mod := load(t, source)

	res, err := Find(mod, []string{"alpha", "Beta"})
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	alpha := res.TopLevel("alpha")
	if alpha == nil {
		t.Fatal("alpha not top level")
	}
	if alpha.Decl.Kind != model.Function || alpha.Decl.StartLine != 4 || alpha.Decl.EndLine != 9 {
		t.Errorf("alpha = %+v", alpha.Decl)
	}
	if alpha.Decl.Docstring != "Alpha doc." {
		t.Errorf("docstring = %q", alpha.Decl.Docstring)
	}
	if alpha.Stmt == nil || alpha.Stmt.Name != "alpha" {
		t.Error("alpha should map to its top-level statement")
	}

	var imports []string
	for _, imp := range res.Imports("alpha") {
		imports = append(imports, imp.String())
	}
	want := []string{"import json", "from collections import OrderedDict"}
	if !reflect.DeepEqual(imports, want) {
		t.Errorf("imports = %v, want %v", imports, want)
	}

	if b := res.TopLevel("Beta"); b == nil || b.Decl.Kind != model.Class {
		t.Errorf("Beta = %+v", b)
	}
}

func TestFindNested(t *testing.T) {
	t.Parallel()
	mod := load(t, source)

	res, err := Find(mod, []string{"nested", "helper"})
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if res.TopLevel("nested") != nil || res.TopLevel("helper") != nil {
		t.Error("nested declarations should not be top level")
	}
	if len(res.Matches["nested"]) != 1 {
		t.Errorf("nested matches = %d, want 1", len(res.Matches["nested"]))
	}
}

func TestFindMissing(t *testing.T) {
	t.Parallel()
	mod := load(t, source)

	_, err := Find(mod, []string{"zeta", "alpha", "gamma"})
	if !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}
	var e *errs.Error
	if !errors.As(err, &e) {
		t.Fatal("expected *errs.Error")
	}
	if !reflect.DeepEqual(e.Names, []string{"zeta", "gamma"}) {
		t.Errorf("missing = %v, want [zeta gamma]", e.Names)
	}
}

func TestFindOrderIndependent(t *testing.T) {
	t.Parallel()
	mod := load(t, source)

	a, err := Find(mod, []string{"alpha", "Beta", "outer"})
	if err != nil {
		t.Fatal(err)
	}
	b, err := Find(mod, []string{"outer", "Beta", "alpha"})
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"alpha", "Beta", "outer"} {
		if a.TopLevel(name).Decl != b.TopLevel(name).Decl {
			t.Errorf("%s differs between request orders", name)
		}
	}
}

func TestFindDuplicatePicksLast(t *testing.T) {
	t.Parallel()
	mod := load(t, "def f():\n    return 1\n\n\ndef f():\n    return 2\n")

	res, err := Find(mod, []string{"f"})
	if err != nil {
		t.Fatal(err)
	}
	if got := res.TopLevel("f").Decl.StartLine; got != 5 {
		t.Errorf("TopLevel(f) line = %d, want 5", got)
	}
	if len(res.Matches["f"]) != 2 {
		t.Errorf("matches = %d, want 2", len(res.Matches["f"]))
	}
}

func TestFindEmptyModule(t *testing.T) {
	t.Parallel()
	mod := load(t, "")

	if _, err := Find(mod, []string{"x"}); !errors.Is(err, errs.ErrNotFound) {
		t.Errorf("err = %v, want not found", err)
	}
}

package lang

import (
	"context"
	"testing"
)

func TestHasExtension(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path string
		want bool
	}{
		{"pkg/mod.py", true},
		{"main.go", false},
		{"stub.pyi", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()
			if got := Python.HasExtension(tt.path); got != tt.want {
				t.Errorf("HasExtension(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestNewParser(t *testing.T) {
	t.Parallel()

	if Python.GetLanguage() == nil {
		t.Fatal("python language is nil")
	}
	if p := Python.NewParser(); p == nil {
		t.Fatal("NewParser returned nil")
	}
}

func TestGetDeclQuery(t *testing.T) {
	t.Parallel()

	q, err := Python.GetDeclQuery()
	if err != nil {
		t.Fatalf("GetDeclQuery: %v", err)
	}
	if q == nil {
		t.Fatal("query is nil")
	}
}

func TestIsStdlib(t *testing.T) {
	t.Parallel()

	tests := []struct {
		module string
		want   bool
	}{
		{"os", true},
		{"os.path", true},
		{"collections.abc", true},
		{"typing", true},
		{"numpy", false},
		{"requests.adapters", false},
		{".utils", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsStdlib(tt.module); got != tt.want {
			t.Errorf("IsStdlib(%q) = %v, want %v", tt.module, got, tt.want)
		}
	}
}

func TestIsBuiltin(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"len", "print", "ValueError", "isinstance", "None"} {
		if !IsBuiltin(name) {
			t.Errorf("IsBuiltin(%q) = false, want true", name)
		}
	}
	for _, name := range []string{"helper", "os", "Path"} {
		if IsBuiltin(name) {
			t.Errorf("IsBuiltin(%q) = true, want false", name)
		}
	}
}

func TestCleanDoc(t *testing.T) {
	t.Parallel()

	raw := "\n    Summary line.\n\n    Details indented\n      more.\n    "
	want := "Summary line.\n\nDetails indented\n  more."
	if got := CleanDoc(raw); got != want {
		t.Errorf("CleanDoc = %q, want %q", got, want)
	}
}

func TestStringLiteral(t *testing.T) {
	t.Parallel()

	tests := []struct{ in, want string }{
		{`"""doc"""`, "doc"},
		{`'''doc'''`, "doc"},
		{`"x"`, "x"},
		{`r"raw\n"`, `raw\n`},
	}
	for _, tt := range tests {
		if got := StringLiteral(tt.in); got != tt.want {
			t.Errorf("StringLiteral(%s) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSignatures(t *testing.T) {
	t.Parallel()

	src := []byte("@dataclass\nclass Foo(Base, metaclass=Meta):\n    pass\n\nasync def fetch(url: str, *,\n        retries: int = 3) -> bytes:\n    pass\n")
	tree, err := Python.NewParser().ParseCtx(context.Background(), nil, src)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	defer tree.Close()
	root := tree.RootNode()

	decorated := root.NamedChild(0)
	if got := Decorators(decorated, src); len(got) != 1 || got[0] != "dataclass" {
		t.Errorf("Decorators = %v", got)
	}
	class := Definition(decorated)
	if got := ClassSignature(class, src); got != "Foo(Base, metaclass=Meta)" {
		t.Errorf("ClassSignature = %q", got)
	}
	if !IsTopLevel(class) {
		t.Error("decorated class should be top level")
	}

	fn := root.NamedChild(1)
	if got := FunctionSignature(fn, src); got != "fetch(url: str, *, retries: int = 3) -> bytes" {
		t.Errorf("FunctionSignature = %q", got)
	}
	if !IsAsync(fn) {
		t.Error("fetch should be async")
	}
}

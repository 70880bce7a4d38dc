package codegen

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/phobologic/pymove/internal/errs"
)

type fakeGenerator struct {
	reply  string
	err    error
	prompt string
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	f.prompt = prompt
	return f.reply, f.err
}

func TestExtract(t *testing.T) {
	t.Parallel()

	reply := "Here you go:\n\n```text\nnot this\n```\n\n```python\nimport os\nfrom typing import List\n\n\ndef walk(root: str) -> List[str]:\n    return os.listdir(root)\n```\n\n```python\ndef ignored():\n    pass\n```\n"
	snip, err := Extract(context.Background(), reply)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	var imports []string
	for _, imp := range snip.Imports {
		imports = append(imports, imp.String())
	}
	if got, want := strings.Join(imports, "|"), "import os|from typing import List"; got != want {
		t.Errorf("imports = %q, want %q", got, want)
	}
	if !strings.HasPrefix(snip.Code, "def walk(root: str) -> List[str]:") {
		t.Errorf("code = %q", snip.Code)
	}
	if strings.Contains(snip.Code, "ignored") {
		t.Errorf("code includes a later block: %q", snip.Code)
	}
}

func TestExtractPyTag(t *testing.T) {
	t.Parallel()

	snip, err := Extract(context.Background(), "```py\nx = 1\n```\n")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(snip.Imports) != 0 || snip.Code != "x = 1\n" {
		t.Errorf("snippet = %+v", snip)
	}
}

func TestExtractErrors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		reply string
		check func(error) bool
	}{
		{"no block", "just prose", func(err error) bool { return errors.Is(err, ErrNoCodeBlock) }},
		{"other language", "```go\nfunc main() {}\n```\n", func(err error) bool { return errors.Is(err, ErrNoCodeBlock) }},
		{"invalid python", "```python\ndef broken(:\n```\n", func(err error) bool { return errors.Is(err, errs.ErrParse) }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := Extract(context.Background(), tc.reply)
			if !tc.check(err) {
				t.Errorf("err = %v", err)
			}
		})
	}
}

func TestSnippetSource(t *testing.T) {
	t.Parallel()

	snip, err := Extract(context.Background(), "```python\nimport json\n\ndef dump(x):\n    return json.dumps(x)\n```\n")
	if err != nil {
		t.Fatal(err)
	}
	want := "import json\n\n\ndef dump(x):\n    return json.dumps(x)\n"
	if got := snip.Source(); got != want {
		t.Errorf("Source() = %q, want %q", got, want)
	}
}

func TestAsk(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{reply: "```python\ndef hello():\n    return 'hi'\n```"}
	snip, err := Ask(context.Background(), gen, "say hi", "import os\n")
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if !strings.Contains(gen.prompt, "say hi") || !strings.Contains(gen.prompt, "import os") {
		t.Errorf("prompt = %q", gen.prompt)
	}
	if !strings.HasPrefix(snip.Code, "def hello():") {
		t.Errorf("code = %q", snip.Code)
	}

	boom := errors.New("quota")
	if _, err := Ask(context.Background(), &fakeGenerator{err: boom}, "x", ""); !errors.Is(err, boom) {
		t.Errorf("err = %v, want %v", err, boom)
	}
}

func TestPromptWithoutContext(t *testing.T) {
	t.Parallel()

	if p := Prompt("add two numbers", "  \n"); strings.Contains(p, "Existing module") {
		t.Errorf("prompt = %q", p)
	}
}

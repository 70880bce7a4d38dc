package codegen

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/phobologic/pymove/internal/model"
	"github.com/phobologic/pymove/internal/parse"
)

// ErrNoCodeBlock is returned when a reply has no python fenced block.
var ErrNoCodeBlock = errors.New("no python code block found")

// Snippet is the code pulled out of a reply.
type Snippet struct {
	Imports []model.ImportStatement
	// Code is every non-import statement, in reply order.
	Code string
}

// Extract finds the first fenced block tagged python (or py) in reply, parses
// it, and separates its import statements from the rest of the code.
func Extract(ctx context.Context, reply string) (*Snippet, error) {
	block, ok := firstPythonBlock([]byte(reply))
	if !ok {
		return nil, ErrNoCodeBlock
	}
	mod, err := parse.Source(ctx, "<generated>", block)
	if err != nil {
		return nil, fmt.Errorf("extracting code: %w", err)
	}
	defer mod.Close()

	snip := &Snippet{}
	var code []string
	for _, st := range mod.Stmts {
		if st.Kind == parse.Import {
			snip.Imports = append(snip.Imports, st.Imports...)
			continue
		}
		code = append(code, st.Text)
	}
	if len(code) > 0 {
		snip.Code = strings.Join(code, "\n\n\n") + "\n"
	}
	return snip, nil
}

// Source renders the snippet back to Python with its imports first.
func (s *Snippet) Source() string {
	var b strings.Builder
	for _, imp := range s.Imports {
		b.WriteString(imp.String())
		b.WriteString("\n")
	}
	if len(s.Imports) > 0 && s.Code != "" {
		b.WriteString("\n\n")
	}
	b.WriteString(s.Code)
	return b.String()
}

func firstPythonBlock(src []byte) ([]byte, bool) {
	doc := goldmark.DefaultParser().Parse(text.NewReader(src))

	var found []byte
	ok := false
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		fcb, isBlock := n.(*ast.FencedCodeBlock)
		if !isBlock {
			return ast.WalkContinue, nil
		}
		if lang := string(fcb.Language(src)); lang != "python" && lang != "py" {
			return ast.WalkContinue, nil
		}
		var buf bytes.Buffer
		lines := fcb.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			buf.Write(seg.Value(src))
		}
		found = buf.Bytes()
		ok = true
		return ast.WalkStop, nil
	})
	return found, ok
}

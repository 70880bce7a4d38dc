// Package model defines core data structures for pymove.
package model

import (
	"sort"
	"strings"
)

// Kind is the syntactic kind of a relocatable declaration.
type Kind string

const (
	Function Kind = "function"
	Class    Kind = "class"
)

// Declaration is a named top-level function or class.
type Declaration struct {
	Name      string
	Kind      Kind
	StartLine int // 1-based; 0 when unknown
	EndLine   int
	Source    string
	Docstring string
}

// ImportStatement is a single import. Names is empty for "import X" forms;
// entries in Names may carry their own alias ("b as c").
type ImportStatement struct {
	Module string
	Names  []string
	Alias  string
}

// Relative reports whether the import is package-relative ("from . import x").
func (s ImportStatement) Relative() bool {
	return strings.HasPrefix(s.Module, ".")
}

// Bound returns the names this import introduces into the enclosing scope.
func (s ImportStatement) Bound() []string {
	if len(s.Names) == 0 {
		if s.Alias != "" {
			return []string{s.Alias}
		}
		top, _, _ := strings.Cut(s.Module, ".")
		return []string{top}
	}
	var out []string
	for _, n := range s.Names {
		if n == "*" {
			continue
		}
		if _, alias, ok := strings.Cut(n, " as "); ok {
			out = append(out, strings.TrimSpace(alias))
			continue
		}
		out = append(out, n)
	}
	return out
}

// Only returns a copy of s narrowed to the single binding name.
func (s ImportStatement) Only(name string) ImportStatement {
	if len(s.Names) == 0 {
		return s
	}
	for _, n := range s.Names {
		orig, alias, ok := strings.Cut(n, " as ")
		if (ok && strings.TrimSpace(alias) == name) || (!ok && orig == name) {
			return ImportStatement{Module: s.Module, Names: []string{n}}
		}
	}
	return s
}

// String renders the statement as Python source.
func (s ImportStatement) String() string {
	if len(s.Names) == 0 {
		if s.Alias != "" {
			return "import " + s.Module + " as " + s.Alias
		}
		return "import " + s.Module
	}
	return "from " + s.Module + " import " + strings.Join(s.Names, ", ")
}

// Classification partitions the names a declaration depends on.
type Classification struct {
	Local    map[string]struct{} `json:"-"`
	Imported map[string]struct{} `json:"-"`
	Stdlib   map[string]struct{} `json:"-"`

	// Requires lists the module-level imports the classified names were
	// resolved through, in first-use order.
	Requires []ImportStatement `json:"-"`
}

// NewClassification returns an empty classification.
func NewClassification() *Classification {
	return &Classification{
		Local:    make(map[string]struct{}),
		Imported: make(map[string]struct{}),
		Stdlib:   make(map[string]struct{}),
	}
}

// AddRequire records imp unless an identical statement is already present.
func (c *Classification) AddRequire(imp ImportStatement) {
	text := imp.String()
	for _, r := range c.Requires {
		if r.String() == text {
			return
		}
	}
	c.Requires = append(c.Requires, imp)
}

// LocalNames returns the local dependencies sorted.
func (c *Classification) LocalNames() []string { return sortedKeys(c.Local) }

// ImportedNames returns the external module dependencies sorted.
func (c *Classification) ImportedNames() []string { return sortedKeys(c.Imported) }

// StdlibNames returns the standard-library dependencies sorted.
func (c *Classification) StdlibNames() []string { return sortedKeys(c.Stdlib) }

// Parameter describes one function parameter. Type and Default are "" when
// absent.
type Parameter struct {
	Name    string `json:"name"`
	Type    string `json:"type,omitempty"`
	Default string `json:"default,omitempty"`
}

// Dependencies is the serializable view of a Classification.
type Dependencies struct {
	Local    []string `json:"local"`
	Imported []string `json:"imported"`
	Stdlib   []string `json:"stdlib"`
}

// MetadataRecord describes a declaration for inspection.
type MetadataRecord struct {
	Name         string            `json:"name"`
	Kind         Kind              `json:"type"`
	Docstring    string            `json:"docstring,omitempty"`
	File         string            `json:"orig_file"`
	Module       string            `json:"module"`
	StartLine    int               `json:"start_line,omitempty"`
	EndLine      int               `json:"end_line,omitempty"`
	Source       string            `json:"source_code,omitempty"`
	Decorators   []string          `json:"decorators,omitempty"`
	IsAsync      bool              `json:"is_async,omitempty"`
	Parameters   []Parameter       `json:"parameters,omitempty"`
	Signature    string            `json:"signature"`
	ReturnType   string            `json:"return_type,omitempty"`
	Bases        []string          `json:"bases,omitempty"`
	Attributes   map[string]string `json:"attributes,omitempty"`
	Dependencies *Dependencies     `json:"dependencies"`
}

// DependenciesOf converts a classification; nil stays nil.
func DependenciesOf(c *Classification) *Dependencies {
	if c == nil {
		return nil
	}
	return &Dependencies{
		Local:    c.LocalNames(),
		Imported: c.ImportedNames(),
		Stdlib:   c.StdlibNames(),
	}
}

func sortedKeys(m map[string]struct{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

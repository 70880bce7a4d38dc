// Package toon implements TOON (Token-Oriented Object Notation) encoding.
package toon

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/phobologic/pymove/internal/model"
)

var (
	needsQuoting = regexp.MustCompile(`[,:"\\{}\[\]]`)
	looksNumeric = regexp.MustCompile(`^-?(?:0|[1-9]\d*)(?:\.\d+)?$`)
	keywords     = map[string]struct{}{
		"true":  {},
		"false": {},
		"null":  {},
	}
)

// Encode converts metadata records into TOON format: one table of
// declarations followed by tables of their parameters, class attributes and
// dependencies.
func Encode(records []model.MetadataRecord) string {
	var parts []string

	var declRows [][]string
	for i := range records {
		r := &records[i]
		declRows = append(declRows, []string{
			r.File,
			r.Module,
			r.Name,
			string(r.Kind),
			lineSpan(r.StartLine, r.EndLine),
			r.Signature,
			strings.Join(r.Decorators, " "),
			firstLine(r.Docstring),
		})
	}
	parts = append(parts, formatTabular("declarations",
		[]string{"file", "module", "name", "kind", "lines", "signature", "decorators", "doc"}, declRows))

	var paramRows [][]string
	for i := range records {
		r := &records[i]
		for _, p := range r.Parameters {
			paramRows = append(paramRows, []string{r.Name, p.Name, p.Type, p.Default})
		}
	}
	parts = append(parts, formatTabular("parameters", []string{"declaration", "name", "type", "default"}, paramRows))

	var attrRows [][]string
	for i := range records {
		r := &records[i]
		names := make([]string, 0, len(r.Attributes))
		for name := range r.Attributes {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			attrRows = append(attrRows, []string{r.Name, name, r.Attributes[name]})
		}
	}
	if len(attrRows) > 0 {
		parts = append(parts, formatTabular("attributes", []string{"class", "name", "value"}, attrRows))
	}

	var depRows [][]string
	for i := range records {
		r := &records[i]
		if r.Dependencies == nil {
			continue
		}
		for _, tier := range []struct {
			name  string
			names []string
		}{
			{"local", r.Dependencies.Local},
			{"imported", r.Dependencies.Imported},
			{"stdlib", r.Dependencies.Stdlib},
		} {
			for _, n := range tier.names {
				depRows = append(depRows, []string{r.Name, tier.name, n})
			}
		}
	}
	parts = append(parts, formatTabular("dependencies", []string{"declaration", "tier", "name"}, depRows))

	return strings.Join(parts, "\n")
}

// EncodeReconciliation renders the result of a reconcile run as one table of
// names that only one of the two scans found.
func EncodeReconciliation(unscanned, undescribed []string) string {
	var rows [][]string
	for _, n := range unscanned {
		rows = append(rows, []string{"unscanned", n})
	}
	for _, n := range undescribed {
		rows = append(rows, []string{"undescribed", n})
	}
	return formatTabular("reconcile", []string{"status", "name"}, rows)
}

func lineSpan(start, end int) string {
	if start == 0 {
		return ""
	}
	return fmt.Sprintf("%d-%d", start, end)
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}

func formatTabular(name string, columns []string, rows [][]string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s[%d]{%s}:", name, len(rows), strings.Join(columns, ","))
	for _, row := range rows {
		encoded := make([]string, len(row))
		for i, cell := range row {
			encoded[i] = encodeValue(cell)
		}
		fmt.Fprintf(&b, "\n  %s", strings.Join(encoded, ","))
	}
	return b.String()
}

func encodeValue(value string) string {
	if value == "" {
		return `""`
	}

	if value != strings.TrimSpace(value) {
		return quote(value)
	}

	if strings.ContainsAny(value, "\n\r\t") {
		return quote(value)
	}

	if _, ok := keywords[strings.ToLower(value)]; ok {
		return quote(value)
	}

	if looksNumeric.MatchString(value) {
		return value
	}

	if needsQuoting.MatchString(value) {
		return quote(value)
	}

	if strings.HasPrefix(value, "-") {
		return quote(value)
	}

	return value
}

func quote(value string) string {
	escaped := strings.ReplaceAll(value, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `"`, `\"`)
	escaped = strings.ReplaceAll(escaped, "\n", `\n`)
	escaped = strings.ReplaceAll(escaped, "\r", `\r`)
	escaped = strings.ReplaceAll(escaped, "\t", `\t`)
	return `"` + escaped + `"`
}

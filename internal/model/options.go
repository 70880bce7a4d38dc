package model

import (
	"strings"

	"github.com/phobologic/pymove/internal/errs"
)

// ConflictPolicy decides what happens when the destination already declares
// an incoming name.
type ConflictPolicy string

const (
	Overwrite ConflictPolicy = "overwrite"
	Rename    ConflictPolicy = "rename"
	Skip      ConflictPolicy = "skip"
)

// RenameSuffix is appended to a renamed declaration.
const RenameSuffix = "_moved"

// ParsePolicy validates a policy name. The empty string means Overwrite.
func ParsePolicy(s string) (ConflictPolicy, error) {
	switch p := ConflictPolicy(strings.TrimSpace(s)); p {
	case "":
		return Overwrite, nil
	case Overwrite, Rename, Skip:
		return p, nil
	default:
		return "", errs.InvalidPolicy(s)
	}
}

// PositionKind selects where an incoming declaration lands.
type PositionKind int

const (
	Bottom PositionKind = iota
	Top
	After
)

// Position is a parsed placement directive.
type Position struct {
	Kind   PositionKind
	Anchor string // declaration name, for After
}

// ParsePosition accepts "", "bottom", "top", "after:<name>" or a bare name
// (treated as after:<name>).
func ParsePosition(s string) Position {
	s = strings.TrimSpace(s)
	switch {
	case s == "" || s == "bottom":
		return Position{Kind: Bottom}
	case s == "top":
		return Position{Kind: Top}
	case strings.HasPrefix(s, "after:"):
		return Position{Kind: After, Anchor: strings.TrimSpace(strings.TrimPrefix(s, "after:"))}
	default:
		return Position{Kind: After, Anchor: s}
	}
}

func (p Position) String() string {
	switch p.Kind {
	case Top:
		return "top"
	case After:
		return "after:" + p.Anchor
	default:
		return "bottom"
	}
}

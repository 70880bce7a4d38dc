package relocate

import (
	"github.com/phobologic/pymove/internal/model"
	"github.com/phobologic/pymove/internal/parse"
)

// insertionIndex returns where a new declaration goes. "top" lands after
// the module header and leading imports so imports still precede it. An
// after:<name> anchor that is not declared falls back to the end, reported
// by ok=false.
func insertionIndex(dest *parse.Module, pos model.Position) (idx int, ok bool) {
	switch pos.Kind {
	case model.Top:
		return dest.ImportsEnd(), true
	case model.After:
		if i := dest.Index(pos.Anchor); i >= 0 {
			return i + 1, true
		}
		return len(dest.Stmts), false
	default:
		return len(dest.Stmts), true
	}
}

// indexOf returns the position of st in dest by identity, or -1.
func indexOf(dest *parse.Module, st *parse.Stmt) int {
	for i, s := range dest.Stmts {
		if s == st {
			return i
		}
	}
	return -1
}

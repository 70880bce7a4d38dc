package relocate

import (
	"fmt"

	"github.com/phobologic/pymove/internal/model"
	"github.com/phobologic/pymove/internal/parse"
)

// resolveConflict applies policy to an incoming declaration st whose name may
// already be declared in dest. It reports false when st must not be
// inserted. Under Rename, st is renamed in place to the first free
// "<name>_moved", "<name>_moved_2", ... that dest does not bind.
func resolveConflict(dest *parse.Module, st *parse.Stmt, policy model.ConflictPolicy) (bool, error) {
	if dest.Index(st.Name) < 0 {
		return true, nil
	}
	switch policy {
	case model.Overwrite, "":
		dest.Remove(st.Name)
		return true, nil
	case model.Rename:
		st.Rename(freeName(dest, st.Name))
		return true, nil
	case model.Skip:
		return false, nil
	default:
		_, err := model.ParsePolicy(string(policy))
		return false, err
	}
}

func freeName(dest *parse.Module, name string) string {
	candidate := name + model.RenameSuffix
	for n := 2; dest.Binds(candidate); n++ {
		candidate = fmt.Sprintf("%s%s_%d", name, model.RenameSuffix, n)
	}
	return candidate
}

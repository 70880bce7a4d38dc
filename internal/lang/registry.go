package lang

import (
	"embed"
	"strings"
	"sync"
)

//go:embed registry/*.txt
var registryFS embed.FS

var (
	registryOnce sync.Once
	stdlib       map[string]struct{}
	builtins     map[string]struct{}
)

func loadRegistries() {
	registryOnce.Do(func() {
		stdlib = readRegistry("registry/stdlib.txt")
		builtins = readRegistry("registry/builtins.txt")
	})
}

func readRegistry(name string) map[string]struct{} {
	data, err := registryFS.ReadFile(name)
	if err != nil {
		// Embedded at build time; a read failure is a packaging bug.
		panic("lang: missing embedded registry " + name)
	}
	set := make(map[string]struct{})
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			set[line] = struct{}{}
		}
	}
	return set
}

// IsStdlib reports whether module belongs to the Python standard library.
// Dotted names are judged by their top-level package; relative imports never are.
func IsStdlib(module string) bool {
	if module == "" || strings.HasPrefix(module, ".") {
		return false
	}
	loadRegistries()
	top, _, _ := strings.Cut(module, ".")
	_, ok := stdlib[top]
	return ok
}

// IsBuiltin reports whether name lives in Python's builtin namespace.
func IsBuiltin(name string) bool {
	loadRegistries()
	_, ok := builtins[name]
	return ok
}

package discover

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDiscoverPythonFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "main.py", "print('hello')")
	writeFile(t, dir, "lib/util.py", "def helper(): pass")
	writeFile(t, dir, "lib/__init__.py", "")
	writeFile(t, dir, "readme.txt", "hello")
	writeFile(t, dir, ".hidden.py", "secret")

	entries, err := Files(dir, Options{})
	if err != nil {
		t.Fatalf("Files: %v", err)
	}

	want := []FileEntry{
		{Path: filepath.Join("lib", "__init__.py"), Module: "lib"},
		{Path: filepath.Join("lib", "util.py"), Module: "lib.util"},
		{Path: "main.py", Module: "main"},
	}
	if len(entries) != len(want) {
		t.Fatalf("got %d entries %v, want %d", len(entries), entries, len(want))
	}
	for i := range want {
		if entries[i] != want[i] {
			t.Errorf("entry %d = %+v, want %+v", i, entries[i], want[i])
		}
	}
}

func TestDiscoverSkipDirs(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "main.py", "pass")
	writeFile(t, dir, "venv/lib.py", "pass")
	writeFile(t, dir, "__pycache__/cached.py", "pass")
	writeFile(t, dir, ".tox/secret.py", "pass")
	writeFile(t, dir, "pkg.egg-info/x.py", "pass")

	entries, err := Files(dir, Options{})
	if err != nil {
		t.Fatalf("Files: %v", err)
	}
	if len(entries) != 1 || entries[0].Path != "main.py" {
		t.Fatalf("entries = %v, want [main.py]", entries)
	}
}

func TestDiscoverGitignore(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, ".gitignore", "generated/\n")
	writeFile(t, dir, "app.py", "pass")
	writeFile(t, dir, "generated/out.py", "pass")

	entries, err := Files(dir, Options{})
	if err != nil {
		t.Fatalf("Files: %v", err)
	}
	if len(entries) != 1 || entries[0].Path != "app.py" {
		t.Fatalf("entries = %v, want [app.py]", entries)
	}
}

func TestDiscoverSkipTests(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "app.py", "pass")
	writeFile(t, dir, "tests/test_app.py", "pass")

	all, err := Files(dir, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Errorf("got %d entries, want 2", len(all))
	}
	prod, err := Files(dir, Options{SkipTests: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(prod) != 1 || prod[0].Path != "app.py" {
		t.Errorf("entries = %v, want [app.py]", prod)
	}
}

func TestDiscoverSymlinksSkipped(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "real.py", "pass")
	if err := os.Symlink(filepath.Join(dir, "real.py"), filepath.Join(dir, "link.py")); err != nil {
		t.Skip("symlinks not supported")
	}

	entries, err := Files(dir, Options{})
	if err != nil {
		t.Fatalf("Files: %v", err)
	}
	if len(entries) != 1 || entries[0].Path != "real.py" {
		t.Fatalf("entries = %v, want [real.py]", entries)
	}
}

func TestIsTestFile(t *testing.T) {
	t.Parallel()
	cases := []struct {
		path string
		want bool
	}{
		{"tests/test_scenes.py", true},
		{"tests/conftest.py", true},
		{"pkg/test/helpers.py", true},
		{"test_helpers.py", true},
		{"pkg/models_test.py", true},
		{"loom/models.py", false},
		{"conftest.py", false},
		{"testing_utils.py", false},
	}
	for _, tc := range cases {
		t.Run(tc.path, func(t *testing.T) {
			t.Parallel()
			if got := IsTestFile(tc.path); got != tc.want {
				t.Errorf("IsTestFile(%q) = %v, want %v", tc.path, got, tc.want)
			}
		})
	}
}

func TestModulePath(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]string{
		"main.py":             "main",
		"pkg/sub/mod.py":      "pkg.sub.mod",
		"pkg/__init__.py":     "pkg",
		"pkg/sub/__init__.py": "pkg.sub",
	} {
		if got := ModulePath(in); got != want {
			t.Errorf("ModulePath(%q) = %q, want %q", in, got, want)
		}
	}
}

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

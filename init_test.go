package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/phobologic/pymove/internal/config"
)

// TestApplySectionCreate verifies that applySection on empty content wraps the
// section in sentinels with a trailing newline.
func TestApplySectionCreate(t *testing.T) {
	t.Parallel()
	section := sentinelStart + "\nbody\n" + sentinelEnd
	got := applySection("", section)
	if got != "\n"+section+"\n" {
		t.Errorf("applySection = %q", got)
	}
}

// TestApplySectionAppend verifies that existing content without a sentinel block
// is preserved and the section is appended.
func TestApplySectionAppend(t *testing.T) {
	t.Parallel()
	existing := "# My Project\n\nSome existing content."
	section := sentinelStart + "\nnew content\n" + sentinelEnd
	got := applySection(existing, section)

	if !strings.HasPrefix(got, existing+"\n\n") {
		t.Errorf("existing content should be preserved at start:\n%s", got)
	}
	if !strings.HasSuffix(got, section+"\n") {
		t.Errorf("section should be appended:\n%s", got)
	}
}

// TestApplySectionUpdate verifies that an existing sentinel block is replaced
// precisely, leaving surrounding content intact.
func TestApplySectionUpdate(t *testing.T) {
	t.Parallel()
	before := "# Project\n\n"
	after := "\n\n## Other Section\n"
	old := before + sentinelStart + "\nold content\n" + sentinelEnd + after

	section := sentinelStart + "\nnew content\n" + sentinelEnd
	got := applySection(old, section)

	if got != before+section+after {
		t.Errorf("applySection =\n%s", got)
	}
}

func TestInitWritesConfig(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	var stdout, stderr bytes.Buffer
	if err := run([]string{"init", dir}, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v", err)
	}

	cfg, err := config.Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if *cfg != *config.Default() {
		t.Errorf("written config = %+v, want defaults", cfg)
	}
	if _, err := os.Stat(filepath.Join(dir, "CLAUDE.md")); err == nil {
		t.Error("CLAUDE.md written without --claude")
	}
}

func TestInitKeepsExistingConfig(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, config.FileName)
	custom := "handle_conflicts: skip\n"
	if err := os.WriteFile(path, []byte(custom), 0o644); err != nil {
		t.Fatal(err)
	}

	var stdout, stderr bytes.Buffer
	if err := run([]string{"init", dir}, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v", err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != custom {
		t.Errorf("config overwritten without --force: %q", data)
	}
	if !strings.Contains(stderr.String(), "--force") {
		t.Errorf("stderr = %q, want a --force hint", stderr.String())
	}

	if err := run([]string{"init", "--force", dir}, &stdout, &stderr); err != nil {
		t.Fatalf("run --force: %v", err)
	}
	cfg, err := config.Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.HandleConflicts != "overwrite" {
		t.Errorf("handle_conflicts = %q after --force, want overwrite", cfg.HandleConflicts)
	}
}

// TestInitClaudeCreatesFile verifies that --claude creates CLAUDE.md when it
// does not exist.
func TestInitClaudeCreatesFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	var stdout, stderr bytes.Buffer
	if err := run([]string{"init", "--claude", dir}, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "CLAUDE.md"))
	if err != nil {
		t.Fatalf("file not created: %v", err)
	}
	content := string(data)
	if !strings.Contains(content, sentinelStart) || !strings.Contains(content, sentinelEnd) {
		t.Errorf("sentinels missing from created file:\n%s", content)
	}
}

// TestInitDryRun verifies that --dry-run prints the would-be content and
// creates nothing.
func TestInitDryRun(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	claude := filepath.Join(dir, "CLAUDE.md")
	existing := "# My Project\n\nSome existing content.\n"
	if err := os.WriteFile(claude, []byte(existing), 0o644); err != nil {
		t.Fatal(err)
	}

	var stdout, stderr bytes.Buffer
	if err := run([]string{"init", "--dry-run", "--claude", dir}, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, config.FileName)); err == nil {
		t.Error("--dry-run should not create the config")
	}
	data, _ := os.ReadFile(claude)
	if string(data) != existing {
		t.Error("--dry-run must not modify CLAUDE.md")
	}
	out := stdout.String()
	for _, want := range []string{"handle_conflicts: overwrite", "# My Project", sentinelStart} {
		if !strings.Contains(out, want) {
			t.Errorf("dry-run output missing %q:\n%s", want, out)
		}
	}
}

// TestInitIdempotent verifies that running init twice produces identical output.
func TestInitIdempotent(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "CLAUDE.md")

	var buf bytes.Buffer
	if err := run([]string{"init", "--claude", dir}, &buf, &buf); err != nil {
		t.Fatalf("first run: %v", err)
	}
	first, _ := os.ReadFile(path)

	if err := run([]string{"init", "--claude", dir}, &buf, &buf); err != nil {
		t.Fatalf("second run: %v", err)
	}
	second, _ := os.ReadFile(path)

	if string(first) != string(second) {
		t.Errorf("init is not idempotent:\nfirst:\n%s\nsecond:\n%s", first, second)
	}
}

// TestInitSectionContainsExamples verifies the generated section includes
// example invocations and points to --help.
func TestInitSectionContainsExamples(t *testing.T) {
	t.Parallel()
	section := generateSection()

	for _, ex := range []string{
		"pymove move",
		"--remove",
		"--position after:",
		"--conflicts rename",
		"--dry-run",
		"pymove describe",
		config.FileName,
		"--help",
	} {
		if !strings.Contains(section, ex) {
			t.Errorf("generated section missing %q", ex)
		}
	}
}

package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/phobologic/pymove/internal/codegen"
	"github.com/phobologic/pymove/internal/errs"
)

func TestLoadMissingUsesDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if *cfg != *Default() {
		t.Errorf("cfg = %+v, want defaults", cfg)
	}
}

func TestDefaultModel(t *testing.T) {
	t.Parallel()

	if got := Default().Generate.Model; got != codegen.DefaultModel {
		t.Errorf("default model = %q, want %q", got, codegen.DefaultModel)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	data := "remove_from_source: true\nhandle_conflicts: rename\n"
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.RemoveFromSource || cfg.HandleConflicts != "rename" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Position != "bottom" {
		t.Errorf("position = %q, want default bottom", cfg.Position)
	}
}

func TestLoadInvalidPolicy(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte("handle_conflicts: merge\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(dir); !errors.Is(err, errs.ErrInvalidPolicy) {
		t.Errorf("err = %v, want invalid policy", err)
	}
}

func TestLoadBadYAML(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte("position: [unclosed\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(dir); err == nil {
		t.Error("expected a parse error")
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	t.Parallel()

	data, err := Default().Marshal()
	if err != nil {
		t.Fatal(err)
	}
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, FileName), data, 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if *cfg != *Default() {
		t.Errorf("round trip = %+v, want defaults", cfg)
	}
}

func TestLoadFileMissing(t *testing.T) {
	t.Parallel()

	if _, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected an error for a missing explicit config file")
	}
}

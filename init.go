package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/phobologic/pymove/internal/config"
)

const (
	sentinelStart = "<!-- pymove:start -->"
	sentinelEnd   = "<!-- pymove:end -->"
)

// initCmd implements `pymove init`, which writes a default .pymove.yaml and,
// with --claude, a pymove usage section in CLAUDE.md.
func (a *app) initCmd() *cobra.Command {
	var (
		dryRun bool
		force  bool
		claude bool
	)
	cmd := &cobra.Command{
		Use:   "init [DIR]",
		Short: "Write a default " + config.FileName + " (and optionally a CLAUDE.md section)",
		Long: `Write a ` + config.FileName + ` with the default options to DIR (the current
directory by default). An existing config is left alone unless --force is
given.

With --claude, a pymove usage section is also written to DIR/CLAUDE.md. The
section is wrapped in sentinel comments so it can be updated in place on
subsequent runs without touching surrounding content.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			if err := a.writeConfig(dir, dryRun, force); err != nil {
				return err
			}
			if claude {
				return a.writeSection(filepath.Join(dir, "CLAUDE.md"), dryRun)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print what would be written without modifying files")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config file")
	cmd.Flags().BoolVar(&claude, "claude", false, "also write a pymove usage section to CLAUDE.md")
	return cmd
}

func (a *app) writeConfig(dir string, dryRun, force bool) error {
	data, err := config.Default().Marshal()
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if dryRun {
		_, _ = a.stdout.Write(data)
		return nil
	}

	path := filepath.Join(dir, config.FileName)
	if _, err := os.Stat(path); err == nil && !force {
		a.notice(fmt.Sprintf("%s already exists; use --force to overwrite", path))
		return nil
	} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("checking %s: %w", path, err)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	_, _ = fmt.Fprintf(a.stderr, "wrote default config to %s\n", path)
	return nil
}

func (a *app) writeSection(path string, dryRun bool) error {
	existing, _ := os.ReadFile(path)
	updated := applySection(string(existing), generateSection())

	if dryRun {
		_, _ = fmt.Fprint(a.stdout, updated)
		return nil
	}
	if err := os.WriteFile(path, []byte(updated), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	_, _ = fmt.Fprintf(a.stderr, "wrote pymove section to %s\n", path)
	return nil
}

// generateSection returns the full sentinel-wrapped pymove documentation block.
func generateSection() string {
	body := `## pymove: moving Python functions and classes

Use ` + "`pymove`" + ` via the Bash tool to move top-level functions or classes between
Python files instead of cutting and pasting them by hand. It copies the
imports the moved code needs and re-parses both files before writing.

**Availability:** Check with ` + "`pymove --version`" + ` first; skip gracefully if
not found.

**Run it:**
` + "```" + `bash
pymove move app.py utils.py slugify              # copy slugify into utils.py
pymove move app.py models.py User --remove       # move, deleting it from app.py
pymove move a.py b.py f --position after:g       # place f right after g
pymove move a.py b.py f --conflicts rename       # keep both; new one becomes f_moved
pymove move a.py b.py f --dry-run                # show diffs, write nothing
pymove describe pkg/ --json                      # metadata for every declaration
` + "```" + `

**Defaults** live in ` + "`" + config.FileName + "`" + ` (` + "`remove_from_source`" + `,
` + "`position`" + `, ` + "`handle_conflicts`" + `); flags override them.

**All flags:** ` + "`pymove --help`" + `

**Rules:**

1. **Prefer ` + "`pymove move`" + ` to manual edits** when relocating a whole top-level
   function or class. Methods and nested functions cannot be moved.

2. **Read the notices.** A renamed or skipped declaration, a missing
   position anchor, or a local helper left behind in the source is reported
   on stderr. Move the helpers too or add an import for them.

3. **Use ` + "`pymove describe`" + ` instead of reading a file** when you only need
   signatures, docstrings or dependencies.`

	return sentinelStart + "\n" + body + "\n" + sentinelEnd
}

// applySection inserts section into content, replacing an existing sentinel
// block if present or appending if not. It is a pure function for easy testing.
func applySection(content, section string) string {
	start := strings.Index(content, sentinelStart)
	end := strings.Index(content, sentinelEnd)

	if start >= 0 && end > start {
		return content[:start] + section + content[end+len(sentinelEnd):]
	}

	// Append, ensuring a blank line separator.
	if len(content) > 0 && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	return content + "\n" + section + "\n"
}

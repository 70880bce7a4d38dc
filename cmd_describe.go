package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/spf13/cobra"

	"github.com/phobologic/pymove/internal/discover"
	"github.com/phobologic/pymove/internal/metadata"
	"github.com/phobologic/pymove/internal/model"
	"github.com/phobologic/pymove/internal/toon"
)

const defaultMaxFileSize = 1_000_000 // 1 MB

func (a *app) describeCmd() *cobra.Command {
	var (
		asJSON      bool
		reconcile   bool
		skipTests   bool
		maxFileSize int
	)
	cmd := &cobra.Command{
		Use:   "describe PATH [NAME...]",
		Short: "Print metadata for the top-level functions and classes in PATH",
		Long: `Describe the top-level functions and classes of a Python file, or of every
Python file under a directory. Records include the signature, docstring,
parameters, class attributes and the local, imported and standard library
names each declaration depends on. The file is never executed.

Output is TOON by default, or JSON with --json.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ext := metadata.New(a.logger)
			path, names := args[0], args[1:]

			info, err := os.Stat(path)
			if err != nil {
				return fmt.Errorf("describe path: %w", err)
			}

			if reconcile {
				if info.IsDir() {
					return fmt.Errorf("%s: --reconcile needs a file", path)
				}
				rec, err := ext.Reconcile(ctx, path)
				if err != nil {
					return err
				}
				return writeReconciliation(a.stdout, rec, asJSON)
			}

			var records []model.MetadataRecord
			if info.IsDir() {
				records, err = a.describeTree(ctx, ext, path, names, skipTests, maxFileSize)
			} else {
				records, err = ext.Describe(ctx, path, names)
			}
			if err != nil {
				return err
			}
			return writeRecords(a.stdout, records, asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "emit JSON instead of TOON")
	cmd.Flags().BoolVar(&reconcile, "reconcile", false, "compare the described names with a plain def/class line scan")
	cmd.Flags().BoolVar(&skipTests, "skip-tests", false, "leave out test modules when describing a directory")
	cmd.Flags().IntVar(&maxFileSize, "max-file-size", defaultMaxFileSize, "skip files larger than this many bytes")
	return cmd
}

func writeRecords(w io.Writer, records []model.MetadataRecord, asJSON bool) error {
	if asJSON {
		if records == nil {
			records = []model.MetadataRecord{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}
	_, err := fmt.Fprintln(w, toon.Encode(records))
	return err
}

func writeReconciliation(w io.Writer, rec *metadata.Reconciliation, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string][]string{
			"unscanned":   nonNil(rec.Unscanned),
			"undescribed": nonNil(rec.Undescribed),
		})
	}
	_, err := fmt.Fprintln(w, toon.EncodeReconciliation(rec.Unscanned, rec.Undescribed))
	return err
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// describeTree describes every Python file under root concurrently. Records
// keep file order; File and Module are relative to root.
func (a *app) describeTree(ctx context.Context, ext *metadata.Extractor, root string, names []string, skipTests bool, maxFileSize int) ([]model.MetadataRecord, error) {
	files, err := discover.Files(root, discover.Options{SkipTests: skipTests})
	if err != nil {
		return nil, fmt.Errorf("discovering files: %w", err)
	}
	files = a.filterBySize(root, files, maxFileSize)
	if len(files) == 0 {
		return nil, fmt.Errorf("%s: no Python files found", root)
	}

	perFile := describeConcurrent(ctx, ext, root, files, names, a.warn)
	var records []model.MetadataRecord
	for _, recs := range perFile {
		records = append(records, recs...)
	}
	return records, nil
}

func (a *app) filterBySize(root string, files []discover.FileEntry, maxSize int) []discover.FileEntry {
	if maxSize <= 0 {
		return files
	}
	var kept []discover.FileEntry
	for _, f := range files {
		fi, err := os.Stat(filepath.Join(root, f.Path))
		if err != nil {
			kept = append(kept, f) // keep if can't stat
			continue
		}
		if fi.Size() > int64(maxSize) {
			a.warn(fmt.Sprintf("%s: skipped (>%d bytes)", f.Path, maxSize))
			continue
		}
		kept = append(kept, f)
	}
	return kept
}

func describeConcurrent(ctx context.Context, ext *metadata.Extractor, root string, files []discover.FileEntry, names []string, warn func(string)) [][]model.MetadataRecord {
	type result struct {
		index   int
		records []model.MetadataRecord
	}

	numWorkers := runtime.GOMAXPROCS(0)
	if numWorkers > len(files) {
		numWorkers = len(files)
	}

	work := make(chan int, len(files))
	results := make(chan result, len(files))

	var wg sync.WaitGroup
	var warnMu sync.Mutex

	for range numWorkers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range work {
				f := files[idx]
				recs, err := ext.Describe(ctx, filepath.Join(root, f.Path), names)
				if err != nil {
					warnMu.Lock()
					warn(fmt.Sprintf("%s: %v", f.Path, err))
					warnMu.Unlock()
					continue
				}
				for i := range recs {
					recs[i].File = filepath.ToSlash(f.Path)
					recs[i].Module = f.Module
				}
				results <- result{index: idx, records: recs}
			}
		}()
	}

	for i := range files {
		work <- i
	}
	close(work)

	go func() {
		wg.Wait()
		close(results)
	}()

	// Collect results in original order
	indexed := make([][]model.MetadataRecord, len(files))
	for r := range results {
		indexed[r.index] = r.records
	}
	return indexed
}

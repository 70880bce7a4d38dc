package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/phobologic/pymove/internal/relocate"
)

func (a *app) moveCmd() *cobra.Command {
	var (
		place  placement
		remove bool
	)
	cmd := &cobra.Command{
		Use:   "move SOURCE DEST NAME...",
		Short: "Move top-level functions or classes from SOURCE to DEST",
		Long: `Copy the named top-level declarations from SOURCE into DEST, adding the
imports they need. DEST is created when missing. With --remove the
declarations are deleted from SOURCE afterwards.

Flags override the matching keys of ` + "`.pymove.yaml`" + `.`,
		Example: `  pymove move app.py helpers.py slugify
  pymove move app.py models.py User Group --remove --position after:Base
  pymove move app.py util.py parse --conflicts rename --dry-run`,
		Args: cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			pos, policy, err := place.resolve(cmd, a.cfg)
			if err != nil {
				return err
			}
			req := relocate.Request{
				Names:            args[2:],
				Source:           args[0],
				Dest:             args[1],
				RemoveFromSource: a.cfg.RemoveFromSource,
				Position:         pos,
				Policy:           policy,
				DryRun:           place.dryRun,
			}
			if cmd.Flags().Changed("remove") {
				req.RemoveFromSource = remove
			}
			a.logger.Debug("moving", "names", req.Names, "source", req.Source, "dest", req.Dest,
				"position", pos.String(), "policy", policy, "remove", req.RemoveFromSource)

			res, err := relocate.New(a.logger).Relocate(cmd.Context(), req)
			if err != nil {
				return err
			}
			a.report(res, req.Dest)
			return nil
		},
	}
	place.register(cmd)
	cmd.Flags().BoolVarP(&remove, "remove", "r", false, "delete the declarations from SOURCE (default from config)")
	return cmd
}

// report prints the outcome of a relocation or insertion.
func (a *app) report(res *relocate.Result, dest string) {
	for _, n := range res.Notices {
		a.notice(n)
	}
	for _, d := range res.Diffs {
		_, _ = fmt.Fprint(a.stdout, d.Text)
	}
	if len(res.Diffs) > 0 {
		return
	}
	for _, name := range res.Moved {
		_, _ = fmt.Fprintf(a.stdout, "%s %s -> %s\n", a.okStyle.Render("moved"), name, dest)
	}
}

package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/phobologic/pymove/internal/codegen"
	"github.com/phobologic/pymove/internal/relocate"
)

// newGenerator builds the model client; tests replace it.
var newGenerator = func(ctx context.Context, apiKey, model string) (codegen.Generator, error) {
	return codegen.NewGemini(ctx, apiKey, model)
}

func (a *app) generateCmd() *cobra.Command {
	var (
		place     placement
		modelName string
	)
	cmd := &cobra.Command{
		Use:   "generate DEST REQUEST...",
		Short: "Ask Gemini for Python code and insert it into DEST",
		Long: `Send REQUEST (and the current contents of DEST, when it exists) to Gemini,
take the first python code block of the reply, and insert its imports and
declarations into DEST with the same position and conflict rules as move.

GEMINI_API_KEY must be set, in the environment or a .env file. The model
comes from --model, then PYMOVE_MODEL, then the config file.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			_ = godotenv.Load()

			apiKey := os.Getenv("GEMINI_API_KEY")
			if apiKey == "" {
				return errors.New("GEMINI_API_KEY is not set")
			}
			pos, policy, err := place.resolve(cmd, a.cfg)
			if err != nil {
				return err
			}

			model := modelName
			if model == "" {
				model = os.Getenv("PYMOVE_MODEL")
			}
			if model == "" {
				model = a.cfg.Generate.Model
			}

			dest := args[0]
			existing, err := os.ReadFile(dest)
			if err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("reading %s: %w", dest, err)
			}

			gen, err := newGenerator(ctx, apiKey, model)
			if err != nil {
				return err
			}
			a.logger.Debug("generating", "model", model, "dest", dest)
			snip, err := codegen.Ask(ctx, gen, strings.Join(args[1:], " "), string(existing))
			if err != nil {
				return err
			}

			res, err := relocate.New(a.logger).InsertCode(ctx, relocate.InsertRequest{
				Dest:     dest,
				Code:     snip.Source(),
				Position: pos,
				Policy:   policy,
				DryRun:   place.dryRun,
			})
			if err != nil {
				return err
			}
			a.report(res, dest)
			return nil
		},
	}
	place.register(cmd)
	cmd.Flags().StringVarP(&modelName, "model", "m", "", "Gemini model name")
	return cmd
}

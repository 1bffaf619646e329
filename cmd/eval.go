package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/titlematch/internal/evalcmd"
	"github.com/lehigh-university-libraries/titlematch/internal/matching"
)

func newEvalCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Resolver evaluation tools",
		Long: `Evaluation tools for measuring resolver accuracy.

Runs labelled query sets through the resolver and reports accuracy, precision,
coverage, false positives and timing.`,
	}

	build := func(ctx context.Context) (*matching.Matcher, error) {
		cfg, err := opts.loadConfig()
		if err != nil {
			return nil, err
		}
		return buildMatcher(ctx, cfg)
	}

	// Add eval subcommands
	cmd.AddCommand(evalcmd.NewRunCmd(build))
	cmd.AddCommand(evalcmd.NewReportCmd())

	return cmd
}

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hareba/catres/internal/cli"
)

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show resolution engine statistics",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			eng, err := buildEngine(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = eng.Close() }()

			stats, err := eng.Stats(ctx)
			if err != nil {
				return err
			}

			var b strings.Builder
			fmt.Fprintf(&b, "Learned patterns:   %d\n", stats.LearnedPatterns)
			fmt.Fprintf(&b, "Learned today:      %d\n", stats.LearnedToday)
			fmt.Fprintf(&b, "Reused patterns:    %d\n", stats.PatternsWithUses)
			fmt.Fprintf(&b, "Avg success rate:   %.1f%%\n", stats.AvgSuccessRate)
			fmt.Fprintf(&b, "Learning backlog:   %d\n", stats.UnknownBacklog)
			fmt.Fprintf(&b, "Budget remaining:   %d", stats.BudgetRemaining)

			fmt.Println(cli.RenderBox(cli.ChartIcon+" Resolution Stats", b.String()))
			return nil
		},
	}
}

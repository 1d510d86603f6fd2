package main

import (
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/hareba/catres/internal/cli"
)

func patternsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "patterns",
		Aliases: []string{"pattern"},
		Short:   "Inspect learned patterns and the learning backlog",
	}

	cmd.AddCommand(patternsListCmd())
	cmd.AddCommand(patternsBacklogCmd())
	cmd.AddCommand(patternsAuditCmd())
	cmd.AddCommand(patternsClearCmd())

	return cmd
}

func patternsListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List learned patterns",
		Long:  `List learned category patterns with their confidence and usage.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			limit, _ := cmd.Flags().GetInt("limit")

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			patterns, err := store.ListPatterns(ctx, limit)
			if err != nil {
				return fmt.Errorf("failed to list learned patterns: %w", err)
			}
			if len(patterns) == 0 {
				slog.Info("No learned patterns yet")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "PATTERN\tCATEGORY\tCONFIDENCE\tUSES\tSUCCESS\tSOURCE")
			_, _ = fmt.Fprintln(w, "───────\t────────\t──────────\t────\t───────\t──────")
			for _, pattern := range patterns {
				_, _ = fmt.Fprintf(w, "%s\t%s (%s)\t%d\t%d\t%.0f%%\t%s\n",
					pattern.TitlePattern,
					pattern.CategoryName,
					pattern.CategoryID,
					pattern.ConfidenceScore,
					pattern.UsageCount,
					pattern.SuccessRate,
					pattern.LearningSource)
			}
			return w.Flush()
		},
	}

	cmd.Flags().Int("limit", 50, "Maximum rows to show")

	return cmd
}

func patternsBacklogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backlog",
		Short: "List unknown patterns awaiting learning",
		Long: `Backlog lists queries that fell through to the fallback category,
highest priority first. Expensive, frequently seen items surface at
the top.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			limit, _ := cmd.Flags().GetInt("limit")

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			targets, err := store.ListLearningTargets(ctx, limit)
			if err != nil {
				return fmt.Errorf("failed to list learning backlog: %w", err)
			}
			if len(targets) == 0 {
				slog.Info("Learning backlog is empty")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "PRIORITY\tSEEN\tPRICE\tTITLE\tBRAND\tLAST SEEN")
			_, _ = fmt.Fprintln(w, "────────\t────\t─────\t─────\t─────\t─────────")
			for _, target := range targets {
				_, _ = fmt.Fprintf(w, "%.0f\t%d\t%.0f\t%s\t%s\t%s\n",
					target.PriorityScore,
					target.OccurrenceCount,
					target.Price,
					target.Title,
					target.Brand,
					formatTimestamp(target.LastSeen))
			}
			return w.Flush()
		},
	}

	cmd.Flags().Int("limit", 50, "Maximum rows to show")

	return cmd
}

func patternsAuditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "List manual correction history",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			limit, _ := cmd.Flags().GetInt("limit")

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			entries, err := store.ListAuditEntries(ctx, limit)
			if err != nil {
				return fmt.Errorf("failed to list corrections: %w", err)
			}
			if len(entries) == 0 {
				slog.Info("No corrections recorded")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "WHEN\tTITLE\tCATEGORY\tAPPLIED")
			_, _ = fmt.Fprintln(w, "────\t─────\t────────\t───────")
			for _, entry := range entries {
				applied := cli.SuccessIcon
				if !entry.Success {
					applied = cli.ErrorIcon
				}
				_, _ = fmt.Fprintf(w, "%s\t%s\t%s (%s)\t%s\n",
					formatTimestamp(entry.CreatedAt),
					entry.Query.Title,
					entry.CategoryName,
					entry.CategoryID,
					applied)
			}
			return w.Flush()
		},
	}

	cmd.Flags().Int("limit", 50, "Maximum rows to show")

	return cmd
}

func patternsClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear <title>",
		Short: "Remove a query from the learning backlog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			query := queryFromFlags(args[0], "", "", 0)
			if err := store.ClearNeedsLearning(ctx, query.TitleHash()); err != nil {
				return fmt.Errorf("failed to clear backlog entry: %w", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Cleared %q from the learning backlog", args[0])))
			return nil
		},
	}
}

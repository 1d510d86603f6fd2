package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hareba/catres/internal/cli"
	"github.com/hareba/catres/internal/model"
)

func resolveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve <title>",
		Short: "Resolve a category for one product query",
		Long: `Resolve runs the full pipeline for a single product query and prints
the assigned category, fee rate and required listing attributes.`,
		Args: cobra.ExactArgs(1),
		RunE: runResolve,
	}

	cmd.Flags().String("brand", "", "Product brand")
	cmd.Flags().String("source-category", "", "Category from the source marketplace")
	cmd.Flags().Float64("price", 0, "Listing price")
	cmd.Flags().Bool("json", false, "Print the result as JSON")

	return cmd
}

func runResolve(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	brand, _ := cmd.Flags().GetString("brand")
	sourceCategory, _ := cmd.Flags().GetString("source-category")
	price, _ := cmd.Flags().GetFloat64("price")
	asJSON, _ := cmd.Flags().GetBool("json")

	eng, err := buildEngine(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = eng.Close() }()

	result, err := eng.Resolve(ctx, queryFromFlags(args[0], brand, sourceCategory, price))
	if err != nil {
		return err
	}

	if asJSON {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(result)
	}

	printResult(args[0], result)
	return nil
}

func printResult(title string, result *model.ResolutionResult) {
	var b strings.Builder

	fmt.Fprintf(&b, "Category:   %s (%s)\n", result.Best.CategoryName, result.Best.CategoryID)
	fmt.Fprintf(&b, "Confidence: %s\n", formatConfidence(result.Best.Confidence))
	fmt.Fprintf(&b, "Source:     %s\n", result.Best.Source)
	fmt.Fprintf(&b, "Fee:        %.2f%% (confidence %d)", result.Fee.FeePercent, result.Fee.Confidence)

	if len(result.RequiredAttributes) > 0 {
		names := make([]string, 0, len(result.RequiredAttributes))
		for name := range result.RequiredAttributes {
			names = append(names, name)
		}
		sort.Strings(names)
		fmt.Fprintf(&b, "\nAttributes: %s", strings.Join(names, ", "))
	}

	for _, alt := range result.Alternates {
		fmt.Fprintf(&b, "\n%s", cli.SubtleStyle.Render(
			fmt.Sprintf("alternate: %s (%s) at %d", alt.CategoryName, alt.CategoryID, alt.Confidence)))
	}

	fmt.Fprintf(&b, "\n%s", cli.SubtleStyle.Render(fmt.Sprintf("resolved in %dms", result.ProcessingTimeMs)))

	fmt.Println(cli.RenderBox(title, b.String()))
}

// formatConfidence colors the confidence figure by how trustworthy the
// assignment is.
func formatConfidence(confidence int) string {
	text := fmt.Sprintf("%d", confidence)
	switch {
	case confidence >= 85:
		return cli.StyleSuccess(text)
	case confidence >= 50:
		return cli.StyleWarning(text)
	default:
		return cli.StyleError(text)
	}
}

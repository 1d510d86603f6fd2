package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hareba/catres/internal/cli"
)

func correctCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "correct <title>",
		Short: "Record a manual category correction",
		Long: `Correct stores an operator-verified category for a product query.
Corrections override learned patterns, are removed from the learning
backlog and take effect on the next resolution of a matching query.`,
		Args: cobra.ExactArgs(1),
		RunE: runCorrect,
	}

	cmd.Flags().String("category-id", "", "Correct category ID (required)")
	cmd.Flags().String("category-name", "", "Correct category name (required)")
	cmd.Flags().String("brand", "", "Product brand")
	cmd.Flags().String("source-category", "", "Category from the source marketplace")
	cmd.Flags().Float64("price", 0, "Listing price")
	cmd.Flags().BoolP("yes", "y", false, "Apply without confirmation")
	_ = cmd.MarkFlagRequired("category-id")
	_ = cmd.MarkFlagRequired("category-name")

	return cmd
}

func runCorrect(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	categoryID, _ := cmd.Flags().GetString("category-id")
	categoryName, _ := cmd.Flags().GetString("category-name")
	brand, _ := cmd.Flags().GetString("brand")
	sourceCategory, _ := cmd.Flags().GetString("source-category")
	price, _ := cmd.Flags().GetFloat64("price")
	yes, _ := cmd.Flags().GetBool("yes")

	query := queryFromFlags(args[0], brand, sourceCategory, price)

	if !yes {
		prompt := fmt.Sprintf("Assign %q to %s (%s)?", query.Title, categoryName, categoryID)
		reader := cli.NewNonBlockingReader(os.Stdin)
		confirmed, err := cli.Confirm(ctx, reader, os.Stdout, prompt)
		if err != nil {
			return err
		}
		if !confirmed {
			fmt.Println(cli.FormatInfo("Correction discarded"))
			return nil
		}
	}

	eng, err := buildEngine(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = eng.Close() }()

	if err := eng.RecordManualCorrection(ctx, query, categoryID, categoryName); err != nil {
		return err
	}

	fmt.Println(cli.FormatSuccess(fmt.Sprintf("Recorded %s (%s) for %q", categoryName, categoryID, query.Title)))
	return nil
}

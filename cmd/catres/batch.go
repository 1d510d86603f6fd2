package main

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/hareba/catres/internal/cli"
	"github.com/hareba/catres/internal/engine"
	"github.com/hareba/catres/internal/model"
)

func batchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch <input.csv>",
		Short: "Resolve categories for a CSV of product queries",
		Long: `Batch reads product queries from a CSV file with the columns
title, brand, source_category and price, resolves each one and writes
the results next to the inputs.

Rows are processed from the highest price down so the external
suggestion budget is spent where the listing value is highest. Output
rows keep the input order.`,
		Args: cobra.ExactArgs(1),
		RunE: runBatch,
	}

	cmd.Flags().StringP("output", "o", "", "Output CSV path (default: stdout)")

	return cmd
}

type batchRow struct {
	query  model.ProductQuery
	result *model.ResolutionResult
	err    error
}

func runBatch(cmd *cobra.Command, args []string) error {
	outputPath, _ := cmd.Flags().GetString("output")

	rows, err := readQueries(args[0])
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		slog.Info("No queries found in input file")
		return nil
	}

	interruptHandler := cli.NewInterruptHandler(os.Stderr)
	ctx := interruptHandler.HandleInterrupts(cmd.Context(), true)

	eng, err := buildEngine(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = eng.Close() }()

	bar := progressbar.NewOptions(len(rows),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan][bold]Resolving categories...[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(os.Stderr)
		}),
	)

	// Priciest rows first, same ordering ResolveBatch uses. Output
	// keeps the input order.
	queries := make([]model.ProductQuery, len(rows))
	for i, row := range rows {
		queries[i] = row.query
	}
	order := engine.PriceOrder(queries)

	resolved := 0
	for _, idx := range order {
		if ctx.Err() != nil {
			break
		}
		rows[idx].result, rows[idx].err = eng.Resolve(ctx, rows[idx].query)
		resolved++
		_ = bar.Add(1)
	}

	if err := writeResults(outputPath, rows); err != nil {
		return err
	}

	if interruptHandler.WasInterrupted() {
		slog.Warn("Batch interrupted", "resolved", resolved, "total", len(rows))
		return nil
	}

	fmt.Fprintln(os.Stderr, cli.FormatSuccess(fmt.Sprintf("Resolved %d queries", resolved)))
	return nil
}

// readQueries parses the input CSV. The header row is required and the
// brand, source_category and price columns are optional.
func readQueries(path string) ([]batchRow, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer func() { _ = file.Close() }()

	reader := csv.NewReader(file)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	if len(records) < 2 {
		return nil, nil
	}

	columns := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	if _, ok := columns["title"]; !ok {
		return nil, fmt.Errorf("input CSV is missing the title column")
	}

	field := func(record []string, name string) string {
		idx, ok := columns[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	rows := make([]batchRow, 0, len(records)-1)
	for _, record := range records[1:] {
		price, _ := strconv.ParseFloat(field(record, "price"), 64)
		rows = append(rows, batchRow{
			query: model.ProductQuery{
				Title:          field(record, "title"),
				Brand:          field(record, "brand"),
				SourceCategory: field(record, "source_category"),
				Price:          price,
			},
		})
	}
	return rows, nil
}

func writeResults(path string, rows []batchRow) error {
	out := os.Stdout
	if path != "" {
		file, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer func() { _ = file.Close() }()
		out = file
	}

	writer := csv.NewWriter(out)
	defer writer.Flush()

	header := []string{"title", "brand", "source_category", "price", "category_id", "category_name", "confidence", "source", "fee_percent", "error"}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	for _, row := range rows {
		record := []string{
			row.query.Title,
			row.query.Brand,
			row.query.SourceCategory,
			strconv.FormatFloat(row.query.Price, 'f', -1, 64),
		}
		switch {
		case row.err != nil:
			record = append(record, "", "", "", "", "", row.err.Error())
		case row.result != nil:
			record = append(record,
				row.result.Best.CategoryID,
				row.result.Best.CategoryName,
				strconv.Itoa(row.result.Best.Confidence),
				string(row.result.Best.Source),
				strconv.FormatFloat(row.result.Fee.FeePercent, 'f', 2, 64),
				"",
			)
		default:
			// Interrupted before this row was reached.
			record = append(record, "", "", "", "", "", "skipped")
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}

	return writer.Error()
}

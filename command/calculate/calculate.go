package calculate

import (
	"context"
	"flag"
	"fmt"
	"log/slog"

	"ri-purchase/connectors/azure"
	"ri-purchase/connectors/config"
	csvconn "ri-purchase/connectors/csv"
	"ri-purchase/domain/reservation"
)

// Run executes the calculate command: validate every row, price it via the
// Calculate API and write the quotes CSV with the returned order ids.
//
// Usage:
//
//	ri-purchase calculate -file <csv> [-out <csv>]
func Run(args []string) error {
	fs := flag.NewFlagSet("calculate", flag.ContinueOnError)
	file := fs.String("file", "", "input CSV file with reservation rows")
	out := fs.String("out", "", "quotes CSV path (default <file>_with_order_ids.csv)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *file == "" {
		return fmt.Errorf("calculate: -file is required")
	}

	cfg, err := config.Load(config.Path())
	if err != nil {
		return err
	}
	tokens, err := azure.TokenProviderFromConfig(cfg)
	if err != nil {
		return err
	}
	client := azure.NewClient(tokens, azure.Options{
		BaseURL:     cfg.Azure.BaseURL,
		APIVersion:  cfg.Azure.APIVersion,
		MaxAttempts: cfg.Purchase.MaxAttempts,
		Backoff:     cfg.Backoff(),
	})

	ctx := context.Background()
	input, _, quotes, err := Quotes(ctx, client, *file)
	if err != nil {
		return err
	}

	outPath := *out
	if outPath == "" {
		outPath = csvconn.QuotesPath(*file)
	}
	if err := csvconn.WriteQuotes(outPath, input, quotes); err != nil {
		return err
	}
	slog.Info("quotes written", "path", outPath, "rows", len(quotes))
	return nil
}

// Quotes runs the calculate phase for an input file: parse and validate all
// rows (aborting on the first malformed one), then price each sequentially.
// The purchase command reuses this as its first step.
func Quotes(ctx context.Context, calc reservation.QuoteCalculator, file string) (*csvconn.Input, []*reservation.RequestRecord, []reservation.Quote, error) {
	input, err := csvconn.ReadInput(file)
	if err != nil {
		return nil, nil, nil, err
	}

	records, warnings, err := reservation.BuildRecords(input.Rows)
	if err != nil {
		return nil, nil, nil, err
	}
	for _, w := range warnings {
		slog.Warn(w)
	}

	slog.Info("calculating reservation orders", "rows", len(records))
	quotes, err := reservation.CalculateQuotes(ctx, calc, records)
	if err != nil {
		return nil, nil, nil, err
	}
	for i, q := range quotes {
		slog.Info("calculated", "row", i+1, "sku", records[i].SKUName,
			"order_id", q.OrderID, "price", fmt.Sprintf("%g %s", q.Amount, q.Currency))
	}
	return input, records, quotes, nil
}

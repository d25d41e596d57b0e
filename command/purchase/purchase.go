package purchase

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	cmdcalculate "ri-purchase/command/calculate"
	"ri-purchase/connectors/azure"
	"ri-purchase/connectors/config"
	csvconn "ri-purchase/connectors/csv"
	"ri-purchase/domain/reservation"
)

// Run executes the full purchase pipeline: calculate quotes for every row,
// write them back, show the review summary, apply the two-factor safety gate
// and submit one purchase per authorized row.
//
// Usage:
//
//	ri-purchase purchase -file <csv> [-delay 1s] [-yes] [-dry-run]
//
// Without -yes the command asks for confirmation twice: once before
// rendering purchase payloads and once before issuing real API calls.
// -dry-run stops after printing the payloads that would be submitted.
func Run(args []string) error {
	fs := flag.NewFlagSet("purchase", flag.ContinueOnError)
	file := fs.String("file", "", "input CSV file with reservation rows")
	delay := fs.Duration("delay", -1, "delay between purchase calls (default from config)")
	yes := fs.Bool("yes", false, "skip interactive confirmations")
	dryRun := fs.Bool("dry-run", false, "stop after printing purchase payloads")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *file == "" {
		return fmt.Errorf("purchase: -file is required")
	}

	cfg, err := config.Load(config.Path())
	if err != nil {
		return err
	}
	tokens, err := azure.TokenProviderFromConfig(cfg)
	if err != nil {
		return err
	}

	ctx := context.Background()
	// Fail on credential problems before any row is processed.
	if _, err := tokens.Token(ctx); err != nil {
		return err
	}

	client := azure.NewClient(tokens, azure.Options{
		BaseURL:     cfg.Azure.BaseURL,
		APIVersion:  cfg.Azure.APIVersion,
		MaxAttempts: cfg.Purchase.MaxAttempts,
		Backoff:     cfg.Backoff(),
	})
	if *delay < 0 {
		*delay = cfg.Delay()
	}

	return run(ctx, client, *file, *delay, *yes, *dryRun, os.Stdin, os.Stdout)
}

// purchaseAPI is what the pipeline needs from the Azure connector.
type purchaseAPI interface {
	reservation.QuoteCalculator
	reservation.PurchaseClient
	PurchaseURL(orderID string) string
}

func run(ctx context.Context, client purchaseAPI, file string, delay time.Duration, yes, dryRun bool, in io.Reader, out io.Writer) error {
	input, records, quotes, err := cmdcalculate.Quotes(ctx, client, file)
	if err != nil {
		return err
	}

	quotesPath := csvconn.QuotesPath(file)
	if err := csvconn.WriteQuotes(quotesPath, input, quotes); err != nil {
		return err
	}
	slog.Info("quotes written", "path", quotesPath)

	entries := reservation.Correlate(input.Rows, records, quotes)
	printReview(out, entries)

	prompt := bufio.NewReader(in)
	if !yes && !confirm(prompt, out, "Do you want to proceed with generating purchase API payloads? (yes/no): ") {
		fmt.Fprintln(out, "Operation cancelled. Update the purchase trigger fields and try again.")
		return nil
	}

	eligible, skips := reservation.Gate(entries)
	if skips.Total() > 0 {
		slog.Info("rows withheld from purchase",
			"no_trigger", skips.NoTrigger, "no_confirmation", skips.NoConfirmation)
	}
	if len(eligible) == 0 {
		fmt.Fprintln(out, "No rows are authorized for purchase; nothing to do.")
		return nil
	}

	printPayloads(out, client, eligible)
	if dryRun {
		fmt.Fprintln(out, "Dry run: no purchase calls issued.")
		return nil
	}

	if !yes {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "WARNING: this will issue real purchase calls and result in real charges.")
		if !confirm(prompt, out, "Do you want to execute the purchase API calls? (yes/no): ") {
			fmt.Fprintln(out, "Purchase execution skipped. Payloads are ready for manual execution.")
			return nil
		}
	}

	executor := reservation.NewExecutor(client, delay)
	results := executor.Execute(ctx, eligible)
	summary := reservation.Summarize(results)
	fmt.Fprintf(out, "Summary: %d successful, %d failed out of %d purchase request(s)\n",
		summary.Succeeded, summary.Failed, summary.Total)

	jsonPath := csvconn.ResultsJSONPath(file)
	if err := csvconn.WriteResultsJSON(jsonPath, results); err != nil {
		return err
	}
	csvPath := strings.TrimSuffix(jsonPath, ".json") + ".csv"
	if err := csvconn.WriteResultsCSV(csvPath, results); err != nil {
		return err
	}
	slog.Info("results written", "json", jsonPath, "csv", csvPath)
	return nil
}

// printReview mirrors the quotes and trigger flags back to the operator
// before anything irreversible happens.
func printReview(out io.Writer, entries []reservation.CorrelatedEntry) {
	fmt.Fprintln(out, "Review purchase trigger settings:")
	for i, e := range entries {
		trigger := strings.TrimSpace(e.Row[reservation.ColPurchaseTrigger])
		status := "PURCHASE ENABLED"
		if trigger == "" {
			trigger = "Not Set"
			status = "PURCHASE WILL BE SKIPPED"
		}
		fmt.Fprintf(out, "Reservation %d: %s\n", i+1, status)
		fmt.Fprintf(out, "  Purchase Trigger: %q\n", trigger)
		fmt.Fprintf(out, "  SKU: %s  Region: %s  Quantity: %d\n", e.Record.SKUName, e.Record.Region, e.Record.Quantity)
		fmt.Fprintf(out, "  Term: %s  Billing Plan: %s  Display Name: %s\n", e.Record.Term, e.Record.BillingPlan, e.Record.DisplayName)
		fmt.Fprintf(out, "  Reservation Order ID: %s\n", e.Quote.OrderID)
		fmt.Fprintf(out, "  Estimated Price: %g %s\n", e.Quote.Amount, e.Quote.Currency)
	}
}

func printPayloads(out io.Writer, client purchaseAPI, eligible []reservation.CorrelatedEntry) {
	for i, e := range eligible {
		fmt.Fprintf(out, "Purchase Payload %d:\n", i+1)
		fmt.Fprintf(out, "PUT %s\n", client.PurchaseURL(e.Quote.OrderID))
		b, err := json.MarshalIndent(e.Record.PurchasePayload(), "", "  ")
		if err != nil {
			fmt.Fprintf(out, "failed to render payload for %s: %v\n", e.Quote.OrderID, err)
			continue
		}
		fmt.Fprintln(out, string(b))
	}
}

func confirm(r *bufio.Reader, out io.Writer, prompt string) bool {
	for {
		fmt.Fprint(out, prompt)
		line, err := r.ReadString('\n')
		if err != nil && line == "" {
			return false
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "yes", "y":
			return true
		case "no", "n":
			return false
		default:
			fmt.Fprintln(out, "Please enter 'yes' or 'no'")
			if err != nil {
				return false
			}
		}
	}
}

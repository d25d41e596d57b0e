package main

import (
	"fmt"
	"log/slog"
	"os"

	cmdcalculate "ri-purchase/command/calculate"
	cmdpurchase "ri-purchase/command/purchase"
	cmdweb "ri-purchase/command/web"
)

// Bulk Azure Reserved Instance purchase tool.
// Usage:
//   ri-purchase calculate -file input_file/example_RI_purchase.csv
//   ri-purchase purchase -file input_file/example_RI_purchase.csv [-delay 1s] [-yes] [-dry-run]
//   ri-purchase web -file input_file/example_RI_purchase.csv [-addr :8080]
// Notes:
// - calculate validates every row, prices it via the Microsoft.Capacity
//   calculatePrice API and writes <file>_with_order_ids.csv with the
//   provider-assigned reservation order ids.
// - purchase runs the full pipeline; only rows with affirmative
//   "Purchase Trigger" and "Purchased Confirmed" columns are submitted.
// - Credentials: AZURE_ACCESS_TOKEN (e.g. from `az account get-access-token`)
//   or AZURE_TENANT_ID/AZURE_CLIENT_ID/AZURE_CLIENT_SECRET for a service
//   principal.

func main() {
	args := os.Args
	// Initialize slog logger (text to stderr)
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})
	slog.SetDefault(slog.New(h))

	if len(args) > 1 {
		sub := args[1]
		rest := append([]string{}, args[2:]...)
		switch sub {
		case "calculate":
			if err := cmdcalculate.Run(rest); err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			return
		case "purchase":
			if err := cmdpurchase.Run(rest); err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			return
		case "web":
			if err := cmdweb.Run(rest); err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			return
		}
	}
	fmt.Fprintln(os.Stderr, "usage: ri-purchase calculate -file <csv> | purchase -file <csv> [-delay 1s] [-yes] [-dry-run] | web -file <csv> [-addr :8080]\nENV: set CONFIG_PATH to point to a YAML config file (default ./config.yml)")
	os.Exit(2)
}

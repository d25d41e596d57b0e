package web

import (
	"encoding/csv"
	"errors"
	"flag"
	"net/http"
	"os"
	"strings"

	"github.com/labstack/echo/v4"

	csvconn "ri-purchase/connectors/csv"
)

// Run starts a small Echo web server exposing the quote and purchase-result
// files of one input file for review before (or after) a purchase run.
//
// Usage:
//
//	ri-purchase web -file <csv> [-addr :8080]
//
// Endpoints:
//
//	GET /api/quotes       -> <file>_with_order_ids.csv as JSON rows
//	GET /api/results      -> purchase_results_<file>.csv as JSON rows
//	GET /api/results/full -> purchase_results_<file>.json verbatim
func Run(args []string) error {
	fs := flag.NewFlagSet("web", flag.ContinueOnError)
	addr := fs.String("addr", ":8080", "http listen address (host:port)")
	file := fs.String("file", "", "input CSV file the quote/result files derive from")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *file == "" {
		return errors.New("web: -file is required")
	}

	quotesPath := csvconn.QuotesPath(*file)
	resultsJSON := csvconn.ResultsJSONPath(*file)
	resultsCSV := strings.TrimSuffix(resultsJSON, ".json") + ".csv"

	e := echo.New()

	// Helper to register a GET endpoint serving a specific CSV file
	serveCSV := func(route string, path string) {
		e.GET(route, func(c echo.Context) error {
			rows, err := readCSV(path)
			if err != nil {
				if errors.Is(err, os.ErrNotExist) {
					return c.JSON(http.StatusNotFound, map[string]any{
						"error":   "file not found",
						"path":    path,
						"message": "CSV file is missing",
					})
				}
				return c.JSON(http.StatusInternalServerError, map[string]any{
					"error":   err.Error(),
					"path":    path,
					"message": "failed to read CSV",
				})
			}
			return c.JSON(http.StatusOK, rows)
		})
	}

	serveCSV("/api/quotes", quotesPath)
	serveCSV("/api/results", resultsCSV)

	e.GET("/api/results/full", func(c echo.Context) error {
		if _, err := os.Stat(resultsJSON); errors.Is(err, os.ErrNotExist) {
			return c.JSON(http.StatusNotFound, map[string]any{
				"error": "file not found",
				"path":  resultsJSON,
			})
		}
		return c.File(resultsJSON)
	})

	return e.Start(*addr)
}

// readCSV loads a CSV file and returns a slice of objects keyed by headers.
// Values are kept as strings to avoid lossy or incorrect type coercion.
// Quote files are semicolon-separated, result files comma-separated; the
// separator is picked by looking at the header line.
func readCSV(path string) ([]map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) > 0 && len(records[0]) == 1 && strings.Contains(records[0][0], ";") {
		if _, err := f.Seek(0, 0); err != nil {
			return nil, err
		}
		r = csv.NewReader(f)
		r.Comma = ';'
		r.FieldsPerRecord = -1
		records, err = r.ReadAll()
		if err != nil {
			return nil, err
		}
	}
	if len(records) == 0 {
		return []map[string]string{}, nil
	}

	header := records[0]
	rows := make([]map[string]string, 0, len(records)-1)
	for _, rec := range records[1:] {
		row := map[string]string{}
		for i, col := range header {
			if i < len(rec) {
				row[col] = rec[i]
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

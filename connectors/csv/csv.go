package csv

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"ri-purchase/domain/reservation"
)

// Input is a parsed reservation CSV: the header in file order plus one Row
// per data line.
type Input struct {
	Columns []string
	Rows    []reservation.Row
}

// ReadInput loads a reservation CSV. Files are expected semicolon-separated;
// comma is tried as a fallback when the header does not split on semicolons.
func ReadInput(path string) (*Input, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	records, err := parseAll(b, ';')
	if err != nil || len(records) == 0 || len(records[0]) < 2 {
		var commaErr error
		records, commaErr = parseAll(b, ',')
		if commaErr != nil {
			if err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}
			return nil, fmt.Errorf("parse %s: %w", path, commaErr)
		}
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s: empty file", path)
	}

	header := records[0]
	rows := make([]reservation.Row, 0, len(records)-1)
	for _, rec := range records[1:] {
		row := reservation.Row{}
		for i, col := range header {
			// Short records still get every header column, as blank. The
			// safety gate distinguishes "column absent from the file" from
			// "cell left empty", and a missing trailing cell is the latter.
			if i < len(rec) {
				row[col] = rec[i]
			} else {
				row[col] = ""
			}
		}
		rows = append(rows, row)
	}
	return &Input{Columns: header, Rows: rows}, nil
}

func parseAll(b []byte, comma rune) ([][]string, error) {
	r := csv.NewReader(bytes.NewReader(b))
	r.Comma = comma
	r.FieldsPerRecord = -1
	return r.ReadAll()
}

// QuotesPath derives the writeback file name: <name>_with_order_ids.csv next
// to the input.
func QuotesPath(inputPath string) string {
	dir := filepath.Dir(inputPath)
	name := filepath.Base(inputPath)
	ext := filepath.Ext(name)
	return filepath.Join(dir, strings.TrimSuffix(name, ext)+"_with_order_ids"+ext)
}

// WriteQuotes writes the input rows back out with ReservationOrderID and
// Price columns filled from the quotes, plus an empty "Purchased Confirmed"
// column for the operator to fill in before a purchase run. Semicolon
// separated, matching the expected input format.
func WriteQuotes(path string, in *Input, quotes []reservation.Quote) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := csv.NewWriter(f)
	w.Comma = ';'
	defer w.Flush()

	header := append(append([]string{}, in.Columns...), "ReservationOrderID", "Price")
	if !hasColumn(in.Columns, reservation.ColPurchasedConfirmed) {
		header = append(header, reservation.ColPurchasedConfirmed)
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for i, row := range in.Rows {
		rec := make([]string, 0, len(header))
		for _, col := range in.Columns {
			rec = append(rec, row[col])
		}
		rec = append(rec, quotes[i].OrderID, formatPrice(quotes[i]))
		if !hasColumn(in.Columns, reservation.ColPurchasedConfirmed) {
			rec = append(rec, "")
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	return w.Error()
}

func hasColumn(columns []string, name string) bool {
	for _, c := range columns {
		if c == name {
			return true
		}
	}
	return false
}

func formatPrice(q reservation.Quote) string {
	return strconv.FormatFloat(q.Amount, 'f', -1, 64) + " " + q.Currency
}

// ResultsJSONPath derives the purchase results file name from the input file.
func ResultsJSONPath(inputPath string) string {
	dir := filepath.Dir(inputPath)
	name := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	return filepath.Join(dir, "purchase_results_"+name+".json")
}

// WriteResultsJSON persists the full execution results, payloads included.
func WriteResultsJSON(path string, results []reservation.ExecutionResult) error {
	b, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(b, '\n'), 0o644)
}

// WriteResultsCSV writes a per-row outcome summary CSV.
func WriteResultsCSV(path string, results []reservation.ExecutionResult) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"reservation_order_id", "sku", "status_code", "success", "error"}); err != nil {
		return err
	}
	for _, r := range results {
		status := ""
		if r.StatusCode != 0 {
			status = strconv.Itoa(r.StatusCode)
		}
		rec := []string{r.OrderID, r.Payload.SKU.Name, status, strconv.FormatBool(r.Success), r.Error}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	return w.Error()
}

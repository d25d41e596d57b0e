package reservation

import (
	"context"

	lo "github.com/samber/lo"
)

// Quote is the outcome of one calculatePrice call: the provider-assigned
// order id plus the advisory price total.
type Quote struct {
	OrderID  string
	Amount   float64
	Currency string
}

// QuoteCalculator prices one payload against the provider. Implemented by
// connectors/azure.Client; tests substitute a fake.
type QuoteCalculator interface {
	Calculate(ctx context.Context, payload Payload) (Quote, error)
}

// CorrelatedEntry pairs a validated record with its originating row (for the
// safety-gate flags) and its quote. It is what the gate and the batch
// executor operate on.
type CorrelatedEntry struct {
	Row    Row
	Record *RequestRecord
	Quote  Quote
}

// BuildRecords validates every row into a RequestRecord, failing fast on the
// first malformed row. Warnings from all successfully parsed rows are
// accumulated.
func BuildRecords(rows []Row) ([]*RequestRecord, []string, error) {
	records := make([]*RequestRecord, 0, len(rows))
	var warnings []string
	for i, row := range rows {
		rec, warns, err := ParseRow(i+1, row)
		if err != nil {
			return nil, nil, err
		}
		warnings = append(warnings, warns...)
		records = append(records, rec)
	}
	return records, warnings, nil
}

// CalculateQuotes prices each record sequentially, in row order, failing
// fast: a rejected request or a response without an order id aborts the run
// before any purchase is attempted.
func CalculateQuotes(ctx context.Context, calc QuoteCalculator, records []*RequestRecord) ([]Quote, error) {
	quotes := make([]Quote, 0, len(records))
	for i, rec := range records {
		quote, err := calc.Calculate(ctx, rec.CalculatePayload())
		if err != nil {
			return nil, &CalculationError{Row: i + 1, SKU: rec.SKUName, Err: err}
		}
		quotes = append(quotes, quote)
	}
	return quotes, nil
}

// Correlate zips rows, records and quotes positionally, preserving input
// order. Inputs are assumed already validated and of equal length.
func Correlate(rows []Row, records []*RequestRecord, quotes []Quote) []CorrelatedEntry {
	pairs := lo.Zip2(records, quotes)
	return lo.Map(pairs, func(p lo.Tuple2[*RequestRecord, Quote], i int) CorrelatedEntry {
		return CorrelatedEntry{Row: rows[i], Record: p.A, Quote: p.B}
	})
}

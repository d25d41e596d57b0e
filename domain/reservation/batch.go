package reservation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	lo "github.com/samber/lo"
)

// PurchaseResponse is the provider's answer to one reservationOrders PUT.
// Body holds the decoded JSON body, or the raw text when the body is not
// valid JSON.
type PurchaseResponse struct {
	StatusCode int
	Body       any
}

// PurchaseClient submits one purchase. A returned error means the transport
// failed before any HTTP response; an HTTP response of any status comes back
// as a PurchaseResponse. Retries for transient failures live behind this
// interface, not in the executor.
type PurchaseClient interface {
	Purchase(ctx context.Context, orderID string, payload Payload) (*PurchaseResponse, error)
}

// ExecutionResult is the outcome of one purchase attempt. StatusCode is 0
// when the transport failed before a response.
type ExecutionResult struct {
	OrderID    string  `json:"reservation_order_id"`
	Payload    Payload `json:"request_payload"`
	StatusCode int     `json:"status_code,omitempty"`
	Success    bool    `json:"success"`
	Body       any     `json:"response_body,omitempty"`
	Error      string  `json:"error,omitempty"`
}

// Executor issues purchase calls sequentially with a fixed delay between
// consecutive calls to stay under provider throttling limits.
type Executor struct {
	client PurchaseClient
	delay  time.Duration
	sleep  func(time.Duration)
	log    *slog.Logger
}

func NewExecutor(client PurchaseClient, delay time.Duration) *Executor {
	return &Executor{
		client: client,
		delay:  delay,
		sleep:  time.Sleep,
		log:    slog.Default(),
	}
}

// Execute submits one purchase per eligible entry, in input order, never
// concurrently. A failed call is captured in its result and does not stop
// the rest of the batch: purchases are independent transactions, one failure
// must not block the others. Exactly one result is returned per entry.
func (e *Executor) Execute(ctx context.Context, entries []CorrelatedEntry) []ExecutionResult {
	results := make([]ExecutionResult, 0, len(entries))
	for i, entry := range entries {
		e.log.Info("submitting purchase",
			"order_id", entry.Quote.OrderID,
			"sku", entry.Record.SKUName,
			"progress", fmt.Sprintf("%d/%d", i+1, len(entries)))

		result := e.purchase(ctx, entry)
		results = append(results, result)

		if result.Success {
			e.log.Info("purchase succeeded", "order_id", result.OrderID, "status", result.StatusCode)
		} else {
			e.log.Error("purchase failed", "order_id", result.OrderID, "status", result.StatusCode, "error", result.Error)
		}

		if i < len(entries)-1 && e.delay > 0 {
			e.sleep(e.delay)
		}
	}
	return results
}

func (e *Executor) purchase(ctx context.Context, entry CorrelatedEntry) ExecutionResult {
	payload := entry.Record.PurchasePayload()
	result := ExecutionResult{
		OrderID: entry.Quote.OrderID,
		Payload: payload,
	}

	resp, err := e.client.Purchase(ctx, entry.Quote.OrderID, payload)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	result.StatusCode = resp.StatusCode
	result.Body = resp.Body
	result.Success = resp.StatusCode >= 200 && resp.StatusCode < 300
	if !result.Success {
		result.Error = fmt.Sprintf("purchase request returned status %d", resp.StatusCode)
	}
	return result
}

// Summary aggregates a batch's outcomes.
type Summary struct {
	Total     int
	Succeeded int
	Failed    int
}

// Summarize counts successes and failures over a result set.
func Summarize(results []ExecutionResult) Summary {
	succeeded := lo.CountBy(results, func(r ExecutionResult) bool { return r.Success })
	return Summary{
		Total:     len(results),
		Succeeded: succeeded,
		Failed:    len(results) - succeeded,
	}
}

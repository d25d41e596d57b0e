package azure

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"ri-purchase/domain/reservation"
)

// Client handles Microsoft.Capacity reservation API requests: calculatePrice
// for quotes and reservationOrders PUT for purchases. It implements
// reservation.QuoteCalculator and reservation.PurchaseClient.
type Client struct {
	baseURL     string
	apiVersion  string
	tokens      TokenProvider
	httpClient  *http.Client
	maxAttempts int
	backoff     time.Duration
	sleep       func(time.Duration)
}

// Options configures a Client. Zero values fall back to the management-plane
// defaults.
type Options struct {
	BaseURL     string
	APIVersion  string
	HTTPClient  *http.Client
	MaxAttempts int
	Backoff     time.Duration
}

// NewClient creates a reservation API client with bounded-attempt,
// fixed-backoff retry for transient failures.
func NewClient(tokens TokenProvider, opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = "https://management.azure.com"
	}
	if opts.APIVersion == "" {
		opts.APIVersion = "2022-11-01"
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = 3
	}
	return &Client{
		baseURL:     strings.TrimRight(opts.BaseURL, "/"),
		apiVersion:  opts.APIVersion,
		tokens:      tokens,
		httpClient:  opts.HTTPClient,
		maxAttempts: opts.MaxAttempts,
		backoff:     opts.Backoff,
		sleep:       time.Sleep,
	}
}

// do sends one request with retries on transport errors, 429 and 5xx.
// The final attempt's response (or error) is authoritative.
func (c *Client) do(ctx context.Context, method, url string, body []byte) (int, []byte, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return 0, nil, err
	}

	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(body))
		if err != nil {
			return 0, nil, fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("x-ms-client-request-id", uuid.NewString())

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
		} else {
			respBody, readErr := io.ReadAll(resp.Body)
			resp.Body.Close()
			if readErr != nil {
				lastErr = readErr
			} else if resp.StatusCode != http.StatusTooManyRequests && resp.StatusCode < 500 {
				return resp.StatusCode, respBody, nil
			} else {
				lastErr = fmt.Errorf("status %d: %s", resp.StatusCode, string(respBody))
				if attempt == c.maxAttempts {
					// Out of attempts: hand back the throttled/5xx response as-is.
					return resp.StatusCode, respBody, nil
				}
			}
		}
		if attempt < c.maxAttempts {
			slog.Warn("retrying request", "method", method, "url", url, "attempt", attempt, "error", lastErr)
			if c.backoff > 0 {
				c.sleep(c.backoff)
			}
		}
	}
	return 0, nil, fmt.Errorf("request failed after %d attempts: %w", c.maxAttempts, lastErr)
}

// calculateResponse models the parts of the calculatePrice answer the
// pipeline needs.
type calculateResponse struct {
	Properties struct {
		ReservationOrderID   string `json:"reservationOrderId"`
		BillingCurrencyTotal *struct {
			Amount       float64 `json:"amount"`
			CurrencyCode string  `json:"currencyCode"`
		} `json:"billingCurrencyTotal"`
	} `json:"properties"`
}

// Calculate prices one reservation request and extracts the provider-assigned
// order id. A missing order id is a hard error; a missing price block is not,
// the quote then defaults to 0 USD.
func (c *Client) Calculate(ctx context.Context, payload reservation.Payload) (reservation.Quote, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return reservation.Quote{}, fmt.Errorf("marshal calculate payload: %w", err)
	}

	url := fmt.Sprintf("%s/providers/Microsoft.Capacity/calculatePrice?api-version=%s", c.baseURL, c.apiVersion)
	status, respBody, err := c.do(ctx, http.MethodPost, url, body)
	if err != nil {
		return reservation.Quote{}, err
	}
	if status < 200 || status >= 300 {
		return reservation.Quote{}, fmt.Errorf("calculate API returned status %d: %s", status, errorDetail(respBody))
	}

	var parsed calculateResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return reservation.Quote{}, fmt.Errorf("decode calculate response: %w", err)
	}
	if parsed.Properties.ReservationOrderID == "" {
		return reservation.Quote{}, reservation.ErrNoOrderID
	}

	quote := reservation.Quote{
		OrderID:  parsed.Properties.ReservationOrderID,
		Currency: "USD",
	}
	if total := parsed.Properties.BillingCurrencyTotal; total != nil {
		quote.Amount = total.Amount
		if total.CurrencyCode != "" {
			quote.Currency = total.CurrencyCode
		}
	}
	return quote, nil
}

// Purchase submits one reservationOrders PUT. Any HTTP response, success or
// not, comes back as a PurchaseResponse; an error is returned only when the
// transport gave up before a response.
func (c *Client) Purchase(ctx context.Context, orderID string, payload reservation.Payload) (*reservation.PurchaseResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal purchase payload: %w", err)
	}

	url := c.PurchaseURL(orderID)
	status, respBody, err := c.do(ctx, http.MethodPut, url, body)
	if err != nil {
		return nil, err
	}
	return &reservation.PurchaseResponse{StatusCode: status, Body: decodeBody(respBody)}, nil
}

// PurchaseURL is the reservationOrders endpoint for one order id.
func (c *Client) PurchaseURL(orderID string) string {
	return fmt.Sprintf("%s/providers/Microsoft.Capacity/reservationOrders/%s?api-version=%s", c.baseURL, orderID, c.apiVersion)
}

// decodeBody parses a response body as JSON, falling back to the raw text so
// a malformed body is never discarded.
func decodeBody(b []byte) any {
	if len(b) == 0 {
		return map[string]any{}
	}
	var decoded any
	if err := json.Unmarshal(b, &decoded); err != nil {
		return string(b)
	}
	return decoded
}

// errorDetail extracts the provider's structured error when the body parses
// as JSON, otherwise returns the raw text.
func errorDetail(b []byte) string {
	var detail map[string]any
	if err := json.Unmarshal(b, &detail); err == nil {
		if compact, err := json.Marshal(detail); err == nil {
			return string(compact)
		}
	}
	return string(b)
}

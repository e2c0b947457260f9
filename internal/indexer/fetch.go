package indexer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/wnt/swaplens/internal/metrics"
)

const (
	maxRetries = 5
	baseDelay  = 250 * time.Millisecond
	maxDelay   = 30 * time.Second
)

// Fetcher pulls enriched transactions from the indexer API with retries and
// exponential backoff.
type Fetcher struct {
	pool   *Pool
	logger zerolog.Logger
}

// NewFetcher creates a fetcher over the given endpoint pool.
func NewFetcher(pool *Pool, logger zerolog.Logger) *Fetcher {
	return &Fetcher{
		pool:   pool,
		logger: logger.With().Str("component", "indexer_fetcher").Logger(),
	}
}

// FetchAddressTransactions returns one page of enriched transactions for a
// wallet, oldest-last. Pass the last signature of the previous page as
// before to walk history; an empty page means the history is exhausted.
func (f *Fetcher) FetchAddressTransactions(ctx context.Context, wallet, before string, limit int) ([]Transaction, error) {
	var txs []Transaction
	err := f.withRetries(ctx, "address_transactions", func() error {
		var err error
		txs, err = f.fetchAddressPage(ctx, wallet, before, limit)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("fetch transactions for %s: %w", wallet, err)
	}
	return txs, nil
}

// FetchTransactions resolves specific signatures into enriched transactions.
func (f *Fetcher) FetchTransactions(ctx context.Context, signatures []string) ([]Transaction, error) {
	var txs []Transaction
	err := f.withRetries(ctx, "transactions", func() error {
		var err error
		txs, err = f.fetchBySignatures(ctx, signatures)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("fetch %d transactions: %w", len(signatures), err)
	}
	return txs, nil
}

func (f *Fetcher) withRetries(ctx context.Context, operation string, fn func() error) error {
	for attempt := 0; ; attempt++ {
		err := fn()
		if err == nil {
			metrics.RecordIndexerRequest(operation, "success")
			return nil
		}

		f.logger.Warn().
			Err(err).
			Str("operation", operation).
			Int("attempt", attempt+1).
			Msg("Indexer request failed")

		if attempt == maxRetries {
			metrics.RecordIndexerRequest(operation, "failed")
			return fmt.Errorf("after %d attempts: %w", maxRetries+1, err)
		}

		delay := baseDelay * time.Duration(1<<attempt)
		if delay > maxDelay {
			delay = maxDelay
		}

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			metrics.RecordIndexerRequest(operation, "cancelled")
			return ctx.Err()
		}
	}
}

func (f *Fetcher) fetchAddressPage(ctx context.Context, wallet, before string, limit int) ([]Transaction, error) {
	client, endpoint, err := f.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire endpoint: %w", err)
	}

	requestURL, err := addressTransactionsURL(endpoint, wallet, before, limit)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	return f.do(client, endpoint, req)
}

func (f *Fetcher) fetchBySignatures(ctx context.Context, signatures []string) ([]Transaction, error) {
	client, endpoint, err := f.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire endpoint: %w", err)
	}

	body, err := json.Marshal(map[string][]string{"transactions": signatures})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	requestURL, err := joinEndpoint(endpoint, "/v0/transactions", nil)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, requestURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return f.do(client, endpoint, req)
}

func (f *Fetcher) do(client *http.Client, endpoint string, req *http.Request) ([]Transaction, error) {
	start := time.Now()
	resp, err := client.Do(req)
	duration := time.Since(start)

	if err != nil {
		f.pool.MarkUnhealthy(endpoint)
		f.logger.Error().
			Err(err).
			Str("endpoint", endpoint).
			Dur("duration", duration).
			Msg("Indexer HTTP request failed")
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusServiceUnavailable {
		f.pool.SetCooldown(endpoint, 5*time.Minute)
		metrics.RecordIndexerRequest("any", "rate_limited")
		return nil, fmt.Errorf("rate limited by %s: status %d", endpoint, resp.StatusCode)
	}

	if resp.StatusCode != http.StatusOK {
		f.pool.MarkUnhealthy(endpoint)
		return nil, fmt.Errorf("unexpected status from %s: %d", endpoint, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var txs []Transaction
	if err := json.Unmarshal(body, &txs); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	f.logger.Debug().
		Str("endpoint", endpoint).
		Int("transactions", len(txs)).
		Dur("duration", duration).
		Msg("Fetched transactions")

	f.pool.MarkHealthy(endpoint)
	return txs, nil
}

func addressTransactionsURL(endpoint, wallet, before string, limit int) (string, error) {
	query := url.Values{}
	if before != "" {
		query.Set("before", before)
	}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	return joinEndpoint(endpoint, "/v0/addresses/"+wallet+"/transactions", query)
}

// joinEndpoint appends a path and query to a base URL that may already carry
// query parameters such as an api-key.
func joinEndpoint(endpoint, path string, extra url.Values) (string, error) {
	parsed, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("parse endpoint %q: %w", endpoint, err)
	}

	parsed.Path = parsed.Path + path
	query := parsed.Query()
	for key, values := range extra {
		for _, value := range values {
			query.Add(key, value)
		}
	}
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}

// Package firefly is a minimal client for the Firefly III transaction API.
package firefly

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mjovanovik/firefly-receipt-bot/internal/expense"
)

// ErrCredentialsMissing indicates that the client has no base URL or
// token configured. Submissions fail before any network call is made.
var ErrCredentialsMissing = errors.New("firefly credentials are not configured")

// RemoteError is a non-2xx response from the Firefly III API. The body is
// retained so failures can be diagnosed without re-running.
type RemoteError struct {
	Status int
	Body   string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("firefly api error (status %d): %s", e.Status, e.Body)
}

// Client submits transaction batches to a Firefly III instance.
type Client struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewClient creates a new Client. Empty credentials are allowed; every
// submission will then fail with ErrCredentialsMissing.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// transactionsRequest is the Firefly III transaction-creation body
type transactionsRequest struct {
	Transactions []expense.LedgerRecord `json:"transactions"`
	GroupTitle   string                 `json:"group_title,omitempty"`
}

// SubmitTransactions posts a batch to POST /api/v1/transactions. Success
// is any 2xx response; anything else is returned as a *RemoteError.
func (c *Client) SubmitTransactions(batch *expense.SubmissionBatch) error {
	if c.baseURL == "" || c.token == "" {
		return ErrCredentialsMissing
	}
	if batch == nil || len(batch.Records) == 0 {
		return fmt.Errorf("empty submission batch")
	}

	body, err := json.Marshal(transactionsRequest{
		Transactions: batch.Records,
		GroupTitle:   batch.GroupTitle,
	})
	if err != nil {
		return fmt.Errorf("marshaling transactions: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	url := fmt.Sprintf("%s/api/v1/transactions", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	slog.Info("Submitting transactions to Firefly III",
		"count", len(batch.Records),
		"group_title", batch.GroupTitle,
	)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("calling firefly API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		slog.Error("Firefly III rejected transactions",
			"status", resp.StatusCode,
			"body", string(respBody),
		)
		return &RemoteError{Status: resp.StatusCode, Body: string(respBody)}
	}

	slog.Info("Transactions saved to Firefly III", "count", len(batch.Records))
	return nil
}

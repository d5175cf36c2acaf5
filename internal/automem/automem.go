// Package automem stores report documents in an AutoMem memory service.
package automem

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client is a memory sink that POSTs documents to an AutoMem service.
type Client struct {
	baseURL string
	client  *http.Client
}

// New creates a client for the service at baseURL. A nil httpClient gets a
// 30s timeout.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  httpClient,
	}
}

type storeRequest struct {
	Content    string   `json:"content"`
	Tags       []string `json:"tags"`
	Importance float64  `json:"importance"`
}

// Store records document with its tags and importance.
func (c *Client) Store(ctx context.Context, document string, tags []string, importance float64) error {
	if tags == nil {
		tags = []string{}
	}
	body, err := json.Marshal(storeRequest{Content: document, Tags: tags, Importance: importance})
	if err != nil {
		return fmt.Errorf("encoding memory: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/memory", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("automem request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("automem store: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("automem store: HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	return nil
}

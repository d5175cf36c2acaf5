// Package helpscout reads conversations and mailboxes from the Help Scout
// Mailbox API and exposes them as a ticket source.
package helpscout

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/TobiSchelling/bizpulse/internal/source"
)

// DefaultBaseURL is the Help Scout Mailbox API v2 endpoint, used when
// no base URL is configured.
const DefaultBaseURL = "https://api.helpscout.net/v2"

// Client is a source.TicketSource backed by the Help Scout API.
type Client struct {
	baseURL string
	client  *http.Client
	logger  logrus.FieldLogger
}

// New creates a client for baseURL. A nil httpClient gets a 30s timeout.
func New(baseURL string, httpClient *http.Client, logger logrus.FieldLogger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  httpClient,
		logger:  logger.WithField("source", "helpscout"),
	}
}

type conversation struct {
	ID        int64  `json:"id"`
	Subject   string `json:"subject"`
	CreatedAt string `json:"createdAt"`
	Tags      []struct {
		Tag  string `json:"tag"`
		Name string `json:"name"`
	} `json:"tags"`
	Embedded struct {
		Threads []struct {
			Type      string `json:"type"`
			CreatedAt string `json:"createdAt"`
		} `json:"threads"`
	} `json:"_embedded"`
}

// Search returns conversations matching filter, with their threads.
// Conversations with an unparsable creation date are skipped.
func (c *Client) Search(ctx context.Context, filter source.TicketFilter) ([]source.TicketRecord, error) {
	params := url.Values{"embed": {"threads"}}
	if filter.Status != "" {
		params.Set("status", filter.Status)
	}
	if !filter.CreatedAfter.IsZero() {
		params.Set("query", fmt.Sprintf("(createdAt:[%s TO *])", filter.CreatedAfter.UTC().Format(time.RFC3339)))
	}

	var result struct {
		Embedded struct {
			Conversations []conversation `json:"conversations"`
		} `json:"_embedded"`
	}
	if err := c.getJSON(ctx, "/conversations", params, &result); err != nil {
		return nil, err
	}

	tickets := make([]source.TicketRecord, 0, len(result.Embedded.Conversations))
	for _, conv := range result.Embedded.Conversations {
		t, err := toTicket(conv)
		if err != nil {
			c.logger.WithError(err).WithField("id", conv.ID).Warn("Skipping conversation")
			continue
		}
		tickets = append(tickets, t)
	}
	c.logger.Debugf("Fetched %d conversations", len(tickets))
	return tickets, nil
}

func toTicket(conv conversation) (source.TicketRecord, error) {
	created, err := parseTime(conv.CreatedAt)
	if err != nil {
		return source.TicketRecord{}, fmt.Errorf("createdAt: %w", err)
	}

	t := source.TicketRecord{
		ID:        conv.ID,
		Subject:   conv.Subject,
		CreatedAt: created,
	}
	for _, tag := range conv.Tags {
		name := tag.Tag
		if name == "" {
			name = tag.Name
		}
		if name != "" {
			t.Tags = append(t.Tags, name)
		}
	}
	for _, th := range conv.Embedded.Threads {
		at, err := parseTime(th.CreatedAt)
		if err != nil {
			continue
		}
		t.Threads = append(t.Threads, source.ThreadEvent{CreatedAt: at, Type: th.Type})
	}
	return t, nil
}

// SearchInboxes returns up to limit mailboxes whose name contains query,
// case-insensitively. An empty query matches every mailbox.
func (c *Client) SearchInboxes(ctx context.Context, query string, limit int) ([]source.Inbox, error) {
	var result struct {
		Embedded struct {
			Mailboxes []struct {
				ID   int64  `json:"id"`
				Name string `json:"name"`
			} `json:"mailboxes"`
		} `json:"_embedded"`
	}
	if err := c.getJSON(ctx, "/mailboxes", nil, &result); err != nil {
		return nil, err
	}

	q := strings.ToLower(query)
	var inboxes []source.Inbox
	for _, mb := range result.Embedded.Mailboxes {
		if limit > 0 && len(inboxes) >= limit {
			break
		}
		if q != "" && !strings.Contains(strings.ToLower(mb.Name), q) {
			continue
		}
		inboxes = append(inboxes, source.Inbox{ID: mb.ID, Name: mb.Name})
	}
	return inboxes, nil
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("helpscout request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("helpscout GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("helpscout GET %s: HTTP %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("helpscout decode %s: %w", path, err)
	}
	return nil
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}

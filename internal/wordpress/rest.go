// Package wordpress reads site information and posts from a WordPress
// site, either through its REST API or through its RSS/Atom feed.
package wordpress

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/TobiSchelling/bizpulse/internal/source"
)

// wpTimeLayout is the zone-less layout of date and date_gmt.
const wpTimeLayout = "2006-01-02T15:04:05"

var (
	errUnauthorized = errors.New("unauthorized")
	// errUnavailable is a 404, which security plugins and older sites
	// return for the users, plugins and themes routes.
	errUnavailable = errors.New("route not available")
)

// optional reports whether err means the endpoint is closed to us rather
// than broken.
func optional(err error) bool {
	return errors.Is(err, errUnauthorized) || errors.Is(err, errUnavailable)
}

// Client is a source.ContentSource backed by the WordPress REST API.
type Client struct {
	baseURL string
	client  *http.Client
	logger  logrus.FieldLogger
}

// NewClient creates a REST client for the site at baseURL.
func NewClient(baseURL string, httpClient *http.Client, logger logrus.FieldLogger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  httpClient,
		logger:  logger.WithField("source", "wordpress"),
	}
}

// GetSiteInfo reads the site index, the user count and, when permitted,
// the installed plugins and themes. Endpoints that reject the request or
// do not exist count as empty; only the site index is required.
func (c *Client) GetSiteInfo(ctx context.Context) (source.SiteInfo, error) {
	var index struct {
		Name string `json:"name"`
		URL  string `json:"url"`
	}
	if _, err := c.getJSON(ctx, "/wp-json", nil, &index); err != nil {
		return source.SiteInfo{}, err
	}
	info := source.SiteInfo{Name: index.Name, URL: index.URL}

	var users []json.RawMessage
	header, err := c.getJSON(ctx, "/wp-json/wp/v2/users", url.Values{"per_page": {"1"}}, &users)
	switch {
	case err == nil:
		info.Users = len(users)
		if total, convErr := strconv.Atoi(header.Get("X-WP-Total")); convErr == nil {
			info.Users = total
		}
	case optional(err):
		c.logger.WithError(err).Debug("User listing not available")
	default:
		return source.SiteInfo{}, err
	}

	info.Plugins, err = c.names(ctx, "/wp-json/wp/v2/plugins")
	if err != nil {
		return source.SiteInfo{}, err
	}
	info.Themes, err = c.names(ctx, "/wp-json/wp/v2/themes")
	if err != nil {
		return source.SiteInfo{}, err
	}
	return info, nil
}

// names lists the "name" (or "stylesheet") of each item at path.
func (c *Client) names(ctx context.Context, path string) ([]string, error) {
	var items []struct {
		Name       json.RawMessage `json:"name"`
		Stylesheet string          `json:"stylesheet"`
	}
	if _, err := c.getJSON(ctx, path, nil, &items); err != nil {
		if optional(err) {
			return nil, nil
		}
		return nil, err
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, itemName(item.Name, item.Stylesheet))
	}
	return out, nil
}

// itemName handles plugin names (plain strings) and theme names
// ({"rendered": ...} objects).
func itemName(raw json.RawMessage, fallback string) string {
	var s string
	if json.Unmarshal(raw, &s) == nil && s != "" {
		return s
	}
	var rendered struct {
		Rendered string `json:"rendered"`
	}
	if json.Unmarshal(raw, &rendered) == nil && rendered.Rendered != "" {
		return rendered.Rendered
	}
	return fallback
}

type restPost struct {
	ID      int64  `json:"id"`
	Date    string `json:"date"`
	DateGMT string `json:"date_gmt"`
	Link    string `json:"link"`
	Title   struct {
		Rendered string `json:"rendered"`
	} `json:"title"`
	Content struct {
		Rendered string `json:"rendered"`
	} `json:"content"`
	Categories []int64 `json:"categories"`
	Tags       []int64 `json:"tags"`
}

// QueryPosts lists posts matching filter. Only the first page is read.
func (c *Client) QueryPosts(ctx context.Context, filter source.PostFilter) ([]source.PostRecord, error) {
	params := url.Values{}
	if filter.Status != "" {
		params.Set("status", filter.Status)
	}
	if !filter.After.IsZero() {
		params.Set("after", filter.After.UTC().Format(wpTimeLayout))
	}
	if filter.PerPage > 0 {
		params.Set("per_page", strconv.Itoa(filter.PerPage))
	}
	if filter.OrderBy != "" {
		params.Set("orderby", filter.OrderBy)
	}
	if filter.Order != "" {
		params.Set("order", filter.Order)
	}

	var raw []restPost
	if _, err := c.getJSON(ctx, "/wp-json/wp/v2/posts", params, &raw); err != nil {
		return nil, err
	}

	posts := make([]source.PostRecord, 0, len(raw))
	for _, p := range raw {
		date, err := postDate(p)
		if err != nil {
			c.logger.WithError(err).WithField("id", p.ID).Warn("Skipping post with unparsable date")
			continue
		}
		posts = append(posts, source.PostRecord{
			ID:          p.ID,
			Title:       p.Title.Rendered,
			Content:     p.Content.Rendered,
			Link:        p.Link,
			Date:        date,
			PublishDate: p.Date,
			Categories:  idStrings(p.Categories),
			Tags:        idStrings(p.Tags),
		})
	}
	c.logger.Debugf("Fetched %d posts", len(posts))
	return posts, nil
}

// postDate prefers date_gmt, then date. Both may carry a zone suffix.
func postDate(p restPost) (time.Time, error) {
	for _, s := range []string{p.DateGMT, p.Date} {
		if s == "" {
			continue
		}
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			return t, nil
		}
		if t, err := time.ParseInLocation(wpTimeLayout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid post date %q", p.Date)
}

func idStrings(ids []int64) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = strconv.FormatInt(id, 10)
	}
	return out
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out any) (http.Header, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("wordpress request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("wordpress GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("wordpress GET %s: %w", path, errUnauthorized)
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("wordpress GET %s: %w", path, errUnavailable)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("wordpress GET %s: HTTP %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return nil, fmt.Errorf("wordpress decode %s: %w", path, err)
	}
	return resp.Header, nil
}

package fetch

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"
	"github.com/sirupsen/logrus"

	"github.com/TobiSchelling/bizpulse/internal/source"
)

const minContentLength = 100

// Result holds the results of a content fetch run.
type Result struct {
	Fetched           int
	AlreadyHadContent int
	Failed            int
}

// ContentFetcher fetches full post text via HTTP + readability extraction.
type ContentFetcher struct {
	client *http.Client
	logger logrus.FieldLogger
}

// NewContentFetcher creates a new content fetcher.
func NewContentFetcher(timeout time.Duration, logger logrus.FieldLogger) *ContentFetcher {
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &ContentFetcher{
		logger: logger,
		client: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return http.ErrUseLastResponse
				}
				return nil
			},
		},
	}
}

// FillMissingContent fetches the body of every post with empty content.
// Once a domain answers with an HTTP error, its remaining posts are skipped.
func (f *ContentFetcher) FillMissingContent(ctx context.Context, posts []source.PostRecord) Result {
	var result Result
	failedDomains := make(map[string]struct{})

	for i := range posts {
		post := &posts[i]
		if strings.TrimSpace(post.Content) != "" {
			result.AlreadyHadContent++
			continue
		}
		if post.Link == "" {
			result.Failed++
			continue
		}

		domain := ""
		if u, err := url.Parse(post.Link); err == nil {
			domain = strings.ToLower(u.Host)
		}
		if _, failed := failedDomains[domain]; failed {
			result.Failed++
			continue
		}

		content, httpErr := f.Fetch(ctx, post.Link)
		if httpErr != nil {
			result.Failed++
			if domain != "" {
				failedDomains[domain] = struct{}{}
			}
			f.logger.WithError(httpErr).Warnf("HTTP error for %s, skipping remaining from %s", post.Link, domain)
			continue
		}

		if content == "" {
			result.Failed++
			f.logger.Debugf("No extractable content from: %s", post.Link)
			continue
		}
		post.Content = content
		result.Fetched++
	}

	if result.Fetched+result.Failed > 0 {
		f.logger.Infof("Content fetch complete: %d fetched, %d failed", result.Fetched, result.Failed)
	}
	return result
}

// Fetch returns the readable text of the page at pageURL. Only HTTP status
// failures are reported as errors; connection or extraction problems yield "".
func (f *ContentFetcher) Fetch(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "bizpulse/1.0 (content analysis)")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", nil // connection error, not HTTP error
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", &httpError{code: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", nil
	}

	parsedURL, _ := url.Parse(pageURL)
	article, err := readability.FromReader(bytes.NewReader(body), parsedURL)
	if err != nil {
		return "", nil
	}

	text := strings.TrimSpace(article.TextContent)
	if len(text) > minContentLength {
		return text, nil
	}
	return "", nil
}

type httpError struct {
	code int
}

func (e *httpError) Error() string {
	return http.StatusText(e.code)
}

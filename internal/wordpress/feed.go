package wordpress

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/sirupsen/logrus"

	"github.com/TobiSchelling/bizpulse/internal/fetch"
	"github.com/TobiSchelling/bizpulse/internal/source"
)

// FeedSource is a source.ContentSource backed by a site's RSS/Atom feed.
// Feeds carry no plugin or theme data, and the user count is the number
// of distinct authors.
type FeedSource struct {
	feedURL string
	parser  *gofeed.Parser
	fetcher *fetch.ContentFetcher
	logger  logrus.FieldLogger
}

// NewFeedSource creates a feed-backed content source. When fetcher is
// non-nil, posts whose feed entry has no body are fetched from their link.
func NewFeedSource(feedURL string, fetcher *fetch.ContentFetcher, logger logrus.FieldLogger) *FeedSource {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &FeedSource{
		feedURL: feedURL,
		parser:  gofeed.NewParser(),
		fetcher: fetcher,
		logger:  logger.WithField("source", "feed"),
	}
}

// GetSiteInfo reports the feed's title, link and author count.
func (s *FeedSource) GetSiteInfo(ctx context.Context) (source.SiteInfo, error) {
	feed, err := s.parse(ctx)
	if err != nil {
		return source.SiteInfo{}, err
	}

	authors := make(map[string]struct{})
	for _, item := range feed.Items {
		for _, a := range item.Authors {
			if a != nil && a.Name != "" {
				authors[strings.ToLower(a.Name)] = struct{}{}
			}
		}
	}
	return source.SiteInfo{
		Name:  strings.TrimSpace(feed.Title),
		URL:   feed.Link,
		Users: len(authors),
	}, nil
}

// QueryPosts returns feed entries published after filter.After, newest
// first when filter.Order is "desc". Status and OrderBy are ignored.
func (s *FeedSource) QueryPosts(ctx context.Context, filter source.PostFilter) ([]source.PostRecord, error) {
	feed, err := s.parse(ctx)
	if err != nil {
		return nil, err
	}

	var posts []source.PostRecord
	for i, item := range feed.Items {
		post, ok := parseItem(item, int64(i+1))
		if !ok {
			continue
		}
		if !filter.After.IsZero() && !post.Date.IsZero() && post.Date.Before(filter.After) {
			continue
		}
		posts = append(posts, post)
	}

	sort.SliceStable(posts, func(i, j int) bool {
		if strings.EqualFold(filter.Order, "asc") {
			return posts[i].Date.Before(posts[j].Date)
		}
		return posts[i].Date.After(posts[j].Date)
	})
	if filter.PerPage > 0 && len(posts) > filter.PerPage {
		posts = posts[:filter.PerPage]
	}

	if s.fetcher != nil {
		s.fetcher.FillMissingContent(ctx, posts)
	}
	s.logger.Debugf("Parsed %d entries from %s", len(posts), s.feedURL)
	return posts, nil
}

func (s *FeedSource) parse(ctx context.Context) (*gofeed.Feed, error) {
	feed, err := s.parser.ParseURLWithContext(s.feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parsing feed %s: %w", s.feedURL, err)
	}
	return feed, nil
}

func parseItem(item *gofeed.Item, id int64) (source.PostRecord, bool) {
	link := item.Link
	if link == "" {
		link = item.GUID
	}
	title := strings.TrimSpace(item.Title)
	if link == "" || title == "" {
		return source.PostRecord{}, false
	}

	var date time.Time
	if item.PublishedParsed != nil {
		date = *item.PublishedParsed
	} else if item.UpdatedParsed != nil {
		date = *item.UpdatedParsed
	}

	content := item.Content
	if content == "" {
		content = item.Description
	}

	publishDate := item.Published
	if publishDate == "" {
		publishDate = item.Updated
	}

	return source.PostRecord{
		ID:          id,
		Title:       title,
		Content:     content,
		Link:        link,
		Date:        date,
		PublishDate: publishDate,
		Categories:  item.Categories,
	}, true
}

package source

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/SlyMarbo/rss"
	"github.com/samber/lo"

	"github.com/0x0BSoD/nevaNews/internal/model"
)

// contextTransport injects a context into every outgoing request so that
// context cancellation and deadlines propagate through the rss library.
type contextTransport struct {
	ctx  context.Context
	base http.RoundTripper
}

func (t contextTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	return t.base.RoundTrip(req.WithContext(t.ctx))
}

// RSSSource reads posts from an RSS feed instead of scraping the site. Feed items
// carry no importance flag or attachments, so those stay at their zero values; the
// first category becomes the post category and the rest become keywords.
type RSSSource struct {
	URL string
}

func NewRSSSource(url string) *RSSSource {
	return &RSSSource{URL: url}
}

func (s *RSSSource) Fetch(ctx context.Context) ([]model.NewsPost, error) {
	feed, err := s.loadFeed(ctx)
	if err != nil {
		return nil, err
	}

	return lo.Map(feed.Items, func(item *rss.Item, _ int) model.NewsPost {
		category, keywords := splitCategories(item.Categories)
		return model.NewsPost{
			Title:       strings.TrimSpace(item.Title),
			Description: itemText(item),
			Link:        item.Link,
			Category:    category,
			PostedAt:    item.Date,
			Keywords:    keywords,
		}
	}), nil
}

func splitCategories(categories []string) (string, []string) {
	if len(categories) == 0 {
		return "", nil
	}
	return categories[0], categories[1:]
}

// itemText returns the richest available text for an item: Content (full body) over
// Summary (short excerpt).
func itemText(item *rss.Item) string {
	if c := strings.TrimSpace(item.Content); c != "" {
		return c
	}
	return strings.TrimSpace(item.Summary)
}

func (s *RSSSource) loadFeed(ctx context.Context) (*rss.Feed, error) {
	client := &http.Client{
		Transport: contextTransport{ctx: ctx, base: http.DefaultTransport},
		Timeout:   30 * time.Second,
	}
	return rss.FetchByClient(s.URL, client)
}

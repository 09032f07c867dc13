// Package source implements the news sources the notifier can poll: the district
// site's HTML news page and, as an alternative, an RSS feed. Both produce the same
// []model.NewsPost and satisfy the notifier's Source interface.
package source

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"

	"github.com/0x0BSoD/nevaNews/internal/model"
)

var (
	selNewsItem    = cascadia.MustCompile("div.news-item")
	selTitle       = cascadia.MustCompile("h2")
	selDescription = cascadia.MustCompile("div.desc")
	selMoreLink    = cascadia.MustCompile("a.more")
	selDate        = cascadia.MustCompile("span.date")
	selCategory    = cascadia.MustCompile("div.info a")
	selExtraBlock  = cascadia.MustCompile("div.add")
	selAnchor      = cascadia.MustCompile("a")
	selAttachment  = cascadia.MustCompile("table.attachmentsList a.at_url")
)

// keywordsMarker is the label the site puts in front of the keyword links
// ("Ключевые слова").
const keywordsMarker = "Клю"

type HTMLSource struct {
	baseURL string
	path    string
	client  *http.Client
}

func NewHTMLSource(baseURL, path string) *HTMLSource {
	return &HTMLSource{
		baseURL: strings.TrimRight(baseURL, "/"),
		path:    path,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// Fetch downloads the news page and extracts every post on it. A non-2xx response or
// markup the selectors no longer match is a wholesale failure: the caller retries
// next cycle.
func (s *HTMLSource) Fetch(ctx context.Context) ([]model.NewsPost, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+s.path+"?start=0", nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch news page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fetch news page: unexpected status %d", resp.StatusCode)
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse markup: %w", err)
	}

	return s.extractPosts(doc)
}

func (s *HTMLSource) extractPosts(doc *html.Node) ([]model.NewsPost, error) {
	var posts []model.NewsPost

	for _, item := range selNewsItem.MatchAll(doc) {
		titleNode := selTitle.MatchFirst(item)
		if titleNode == nil {
			continue
		}

		descNode := selDescription.MatchFirst(item)
		moreNode := selMoreLink.MatchFirst(item)
		dateNode := selDate.MatchFirst(item)
		categoryNode := selCategory.MatchFirst(item)
		if descNode == nil || moreNode == nil || dateNode == nil || categoryNode == nil {
			return nil, fmt.Errorf("news item markup is missing expected structure")
		}

		postedAt, err := ParseDate(textContent(dateNode))
		if err != nil {
			return nil, fmt.Errorf("parse post date: %w", err)
		}

		posts = append(posts, model.NewsPost{
			Title:       textContent(titleNode),
			Description: textContent(descNode),
			Link:        s.absoluteURL(attrValue(moreNode, "href")),
			Category:    textContent(categoryNode),
			PostedAt:    postedAt,
			Important:   hasClass(item, "itemIsFeatured"),
			Keywords:    extractKeywords(item),
			Attachments: s.extractAttachments(item),
		})
	}

	return posts, nil
}

// extractKeywords finds the "Ключевые слова" label inside the post's extra block and
// collects the links next to it.
func extractKeywords(item *html.Node) []string {
	block := selExtraBlock.MatchFirst(item)
	if block == nil {
		return nil
	}

	marker := findText(block, keywordsMarker)
	if marker == nil || marker.Parent == nil {
		return nil
	}

	var keywords []string
	for _, a := range selAnchor.MatchAll(marker.Parent) {
		keywords = append(keywords, textContent(a))
	}
	return keywords
}

func (s *HTMLSource) extractAttachments(item *html.Node) []model.AttachedFile {
	var files []model.AttachedFile
	for _, a := range selAttachment.MatchAll(item) {
		files = append(files, model.AttachedFile{
			Title: textContent(a),
			URL:   s.absoluteURL(attrValue(a, "href")),
		})
	}
	return files
}

func (s *HTMLSource) absoluteURL(href string) string {
	if href == "" || strings.Contains(href, "://") {
		return href
	}
	if !strings.HasPrefix(href, "/") {
		href = "/" + href
	}
	return s.baseURL + href
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			sb.WriteString(node.Data)
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(sb.String())
}

// findText returns the first text node under n whose content contains marker.
func findText(n *html.Node, marker string) *html.Node {
	if n.Type == html.TextNode && strings.Contains(n.Data, marker) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findText(c, marker); found != nil {
			return found
		}
	}
	return nil
}

func attrValue(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attrValue(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

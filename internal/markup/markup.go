// Package markup renders a post as a Telegram HTML message and splits long messages
// into transport-sized chunks.
package markup

import (
	"fmt"
	"html"
	"strings"

	"github.com/0x0BSoD/nevaNews/internal/model"
)

const postedAtLayout = "02.01.2006 15:04"

// HashTag normalizes a category or keyword into a hashtag: trimmed, internal spaces
// replaced with underscores, prefixed with #.
func HashTag(value string) string {
	return "#" + strings.ReplaceAll(strings.TrimSpace(value), " ", "_")
}

// FormatPost renders one post as a single HTML message: linked bold title with an
// urgency marker for important posts, description, posted-at line and a trailing line
// of hashtags built from the category and keywords.
func FormatPost(post model.NewsPost) string {
	var marker string
	if post.Important {
		marker = "⚠️ "
	}

	tags := make([]string, 0, 1+len(post.Keywords))
	tags = append(tags, HashTag(post.Category))
	for _, kw := range post.Keywords {
		tags = append(tags, HashTag(kw))
	}

	parts := []string{
		fmt.Sprintf(`%s<a href="%s"><b>%s</b></a>`, marker, post.Link, html.EscapeString(post.Title)),
		fmt.Sprintf("%s\n\n%s", html.EscapeString(post.Description), post.PostedAt.Format(postedAtLayout)),
		strings.Join(tags, " "),
	}

	return strings.Join(parts, "\n\n")
}

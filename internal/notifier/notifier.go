// Package notifier drives the poll loop: fetch the news page, diff it against the
// delivered history, send whatever is new to the Telegram channel and persist the
// updated history. One cycle runs strictly sequentially; the in-memory history is
// owned by the notifier for the whole lifetime of the loop.
package notifier

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	readability "github.com/go-shiori/go-readability"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/0x0BSoD/nevaNews/internal/feed"
	"github.com/0x0BSoD/nevaNews/internal/markup"
	"github.com/0x0BSoD/nevaNews/internal/model"
	"github.com/0x0BSoD/nevaNews/internal/reporter"
)

type Source interface {
	Fetch(ctx context.Context) ([]model.NewsPost, error)
}

type HistoryStorage interface {
	Load() []model.NewsPost
	Save(items []model.NewsPost) error
}

type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Summarizer interface {
	Condense(ctx context.Context, text string) (string, error)
}

type Options struct {
	ChannelID        int64
	PollInterval     time.Duration
	SendDelay        time.Duration
	MaxPostAge       time.Duration
	MaxPostsCount    int
	MaxMessageLength int
	SummaryMinChars  int
}

type Notifier struct {
	source     Source
	storage    HistoryStorage
	sender     Sender
	summarizer Summarizer
	reporter   *reporter.Reporter
	opts       Options

	history []model.NewsPost
}

// New builds a Notifier. summarizer may be nil (descriptions go out as-is) and
// reporter may be nil (operator notifications disabled).
func New(
	source Source,
	storage HistoryStorage,
	sender Sender,
	summarizer Summarizer,
	rep *reporter.Reporter,
	opts Options,
) *Notifier {
	return &Notifier{
		source:     source,
		storage:    storage,
		sender:     sender,
		summarizer: summarizer,
		reporter:   rep,
		opts:       opts,
		history:    storage.Load(),
	}
}

// Start loops until ctx is cancelled: one cycle immediately, then one per poll
// interval. No cycle failure stops the loop; the only way out is cancellation.
func (n *Notifier) Start(ctx context.Context) error {
	log.Printf("[INFO] notifier started with %d posts in history", len(n.history))

	ticker := time.NewTicker(n.opts.PollInterval)
	defer ticker.Stop()

	n.Cycle(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			n.Cycle(ctx)
		}
	}
}

// Cycle runs one fetch→detect→deliver→persist pass. Every failure inside is
// contained: a fetch or parse error skips the cycle, a per-post send error skips that
// post (it stays unpublished and is retried next cycle), a save error is logged and
// reported but keeps the loop alive.
func (n *Notifier) Cycle(ctx context.Context) {
	snapshot, err := n.source.Fetch(ctx)
	if err != nil {
		log.Printf("[ERROR] failed to fetch posts: %v", err)
		n.reporter.Notify("fetch", fmt.Sprintf("nevaNews: failed to fetch posts: %v", err))
		return
	}

	unpublished := feed.Unpublished(n.history, snapshot)
	if len(unpublished) == 0 {
		return
	}
	log.Printf("[INFO] %d unpublished posts detected", len(unpublished))

	ordered := feed.OrderForDelivery(unpublished)

	var sent []model.NewsPost
	for i, post := range ordered {
		if ctx.Err() != nil {
			break
		}

		if err := n.sendPost(ctx, post); err != nil {
			log.Printf("[ERROR] failed to send post %q: %v", post.Title, err)
			continue
		}
		sent = append(sent, post)

		if i < len(ordered)-1 && !sleepCtx(ctx, n.opts.SendDelay) {
			break
		}
	}

	if len(sent) == 0 {
		return
	}

	n.history = feed.MergeHistory(n.history, sent, time.Now(), n.opts.MaxPostAge, n.opts.MaxPostsCount)
	if err := n.storage.Save(n.history); err != nil {
		log.Printf("[ERROR] failed to save history: %v", err)
		n.reporter.Notify("persist", fmt.Sprintf("nevaNews: failed to save history: %v", err))
	}
}

// sendPost delivers one post: all text segments first, then attachments. The post
// counts as sent iff every text segment went through; attachment failures are logged
// and skipped without failing the post.
func (n *Notifier) sendPost(ctx context.Context, post model.NewsPost) error {
	view := post
	view.Description = n.describe(ctx, post)

	for _, part := range markup.Split(markup.FormatPost(view), n.opts.MaxMessageLength) {
		msg := tgbotapi.NewMessage(n.opts.ChannelID, part)
		msg.ParseMode = tgbotapi.ModeHTML

		if _, err := n.sender.Send(msg); err != nil {
			return fmt.Errorf("send message: %w", err)
		}
	}

	n.sendAttachments(ctx, post.Attachments)

	return nil
}

var redundantNewLines = regexp.MustCompile(`\n{3,}`)

// describe returns the text to render for the post. An empty scraped description
// falls back to the readable content of the linked page; over-long descriptions are
// condensed when a summarizer is configured. Both steps degrade to the original text
// on failure.
func (n *Notifier) describe(ctx context.Context, post model.NewsPost) string {
	desc := post.Description

	if desc == "" {
		text, err := n.extractDescription(ctx, post.Link)
		if err != nil {
			log.Printf("[ERROR] failed to extract description for %s: %v", post.Link, err)
		} else {
			desc = text
		}
	}

	if n.summarizer != nil && utf8.RuneCountInString(desc) > n.opts.SummaryMinChars {
		condensed, err := n.summarizer.Condense(ctx, desc)
		if err != nil {
			log.Printf("[ERROR] failed to condense description for %s: %v", post.Link, err)
		} else {
			desc = condensed
		}
	}

	return desc
}

func (n *Notifier) extractDescription(ctx context.Context, link string) (string, error) {
	resp, err := getURL(ctx, link)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	doc, err := readability.FromReader(resp.Body, nil)
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(redundantNewLines.ReplaceAllString(doc.TextContent, "\n")), nil
}

// sleepCtx waits for d, honoring cancellation. Reports false when ctx was cancelled
// first.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}

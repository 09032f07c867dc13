package notifier

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"path"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/sync/errgroup"

	"github.com/0x0BSoD/nevaNews/internal/model"
)

// maxConcurrentDownloads bounds parallel attachment fetches within one post.
const maxConcurrentDownloads = 3

var attachmentClient = &http.Client{Timeout: time.Minute}

// sendAttachments downloads the post's files and sends them as documents, in order.
// Every failure is isolated to its attachment: logged, skipped, never fatal to the
// post.
func (n *Notifier) sendAttachments(ctx context.Context, attachments []model.AttachedFile) {
	if len(attachments) == 0 {
		return
	}

	payloads := make([][]byte, len(attachments))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentDownloads)
	for i, att := range attachments {
		g.Go(func() error {
			data, err := downloadFile(gctx, att.URL)
			if err != nil {
				log.Printf("[ERROR] failed to download attachment %q: %v", att.Title, err)
				return nil
			}
			payloads[i] = data
			return nil
		})
	}
	_ = g.Wait()

	for i, att := range attachments {
		if payloads[i] == nil {
			continue
		}

		doc := tgbotapi.NewDocument(n.opts.ChannelID, tgbotapi.FileBytes{
			Name:  attachmentName(att),
			Bytes: payloads[i],
		})
		if _, err := n.sender.Send(doc); err != nil {
			log.Printf("[ERROR] failed to send attachment %q: %v", att.Title, err)
		}
	}
}

func downloadFile(ctx context.Context, fileURL string) ([]byte, error) {
	resp, err := getURL(ctx, fileURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	return io.ReadAll(resp.Body)
}

func getURL(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := attachmentClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	return resp, nil
}

// attachmentName derives a filename for Telegram from the URL path, falling back to
// the attachment title.
func attachmentName(att model.AttachedFile) string {
	if u, err := url.Parse(att.URL); err == nil {
		if base := path.Base(u.Path); base != "" && base != "." && base != "/" {
			return base
		}
	}
	return att.Title
}

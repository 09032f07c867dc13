package reporter

import (
	"log/slog"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// throttleWindow caps how often the same notification is re-sent: a poll loop that
// keeps failing every 30 seconds should not flood the admin chat.
const throttleWindow = 15 * time.Minute

// Reporter sends short error notification messages to a Telegram admin chat.
// It is nil-safe: if adminID is 0 or the receiver is nil, Notify is a no-op.
type Reporter struct {
	bot     *tgbotapi.BotAPI
	adminID int64

	mu       sync.Mutex
	lastSent map[string]time.Time
}

func New(bot *tgbotapi.BotAPI, adminID int64) *Reporter {
	return &Reporter{
		bot:      bot,
		adminID:  adminID,
		lastSent: make(map[string]time.Time),
	}
}

// Notify sends msg to the admin chat. Repeats of the same key within the throttle
// window are dropped.
func (r *Reporter) Notify(key, msg string) {
	if r == nil || r.adminID == 0 {
		return
	}

	r.mu.Lock()
	if last, ok := r.lastSent[key]; ok && time.Since(last) < throttleWindow {
		r.mu.Unlock()
		return
	}
	r.lastSent[key] = time.Now()
	r.mu.Unlock()

	if _, err := r.bot.Send(tgbotapi.NewMessage(r.adminID, msg)); err != nil {
		slog.Error("failed to send error notification", "err", err)
	}
}

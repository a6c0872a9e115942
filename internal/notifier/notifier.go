// Package notifier delivers home-run alerts and weekly digests.
package notifier

import (
	"context"
	"log"

	"github.com/homerun-app/homerun/internal/config"
)

// Notifier sends a preformatted message somewhere a human will see it.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

// Noop discards every message.
type Noop struct{}

// Notify implements Notifier.
func (Noop) Notify(context.Context, string) error { return nil }

// FromConfig returns a Telegram notifier when a bot token and chat are
// configured, and Noop otherwise.
func FromConfig(cfg config.Config) Notifier {
	tg := config.GetTelegram(cfg)
	if tg.BotToken == "" || tg.ChatID == "" {
		return Noop{}
	}
	log.Printf("[INFO] telegram notifications enabled for chat %s", tg.ChatID)
	return NewTelegram(tg.BotToken, tg.ChatID, tg.Proxy)
}

package notify

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"realestate-marketplace/internal/domain/model"
	"realestate-marketplace/internal/domain/ports/adapter"
)

var _ adapter.Notifier = (*TelegramNotifier)(nil)

// TelegramNotifier posts lifecycle events to an operations channel. It is a
// broadcast channel for staff, not per-user messaging, so a single chat ID
// from config is enough.
type TelegramNotifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	log    zerolog.Logger
}

func NewTelegramNotifier(token string, chatID int64, log zerolog.Logger) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	return &TelegramNotifier{bot: bot, chatID: chatID, log: log}, nil
}

func (n *TelegramNotifier) Name() string { return "telegram" }

func (n *TelegramNotifier) PromotionActivated(ctx context.Context, userID string, promo *model.Promotion) error {
	until := "?"
	if promo.EndDate != nil {
		until = promo.EndDate.Format("2006-01-02")
	}
	text := fmt.Sprintf("Promotion activated\ntier: %s\nproperty: %s\nuser: %s\nruns until: %s",
		promo.TierType, promo.PropertyID, userID, until)
	return n.send(text)
}

func (n *TelegramNotifier) PaymentFailed(ctx context.Context, userID string, payment *model.Payment) error {
	text := fmt.Sprintf("Payment failed\nreference: %s\nuser: %s\namount: %d %s",
		payment.Reference, userID, payment.Amount, payment.Currency)
	return n.send(text)
}

func (n *TelegramNotifier) send(text string) error {
	msg := tgbotapi.NewMessage(n.chatID, text)
	if _, err := n.bot.Send(msg); err != nil {
		n.log.Warn().Err(err).Msg("telegram notify failed")
		return err
	}
	return nil
}

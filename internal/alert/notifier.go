package alert

import (
	"context"
	"fmt"
	"strings"

	tg "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Samantha1101854/pilltime-pro2/internal/model"
)

// Notifier delivers a raised alert to the user.
type Notifier interface {
	Notify(ctx context.Context, a model.Alert) error
}

// Message renders the text shown for an alert.
func Message(a model.Alert) string {
	var b strings.Builder
	b.WriteString("Time to take ")
	b.WriteString(a.Medication)
	if a.Dosage != "" {
		b.WriteString(" (")
		b.WriteString(a.Dosage)
		b.WriteString(")")
	}
	b.WriteString(", scheduled for ")
	b.WriteString(a.Scheduled.Format("15:04"))
	return b.String()
}

// LogNotifier writes alerts to the log.
type LogNotifier struct {
	log *zap.Logger
}

func NewLogNotifier(log *zap.Logger) *LogNotifier {
	if log == nil {
		log = zap.NewNop()
	}
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Notify(_ context.Context, a model.Alert) error {
	n.log.Info("medication reminder",
		zap.String("reminder_id", a.ReminderID.String()),
		zap.String("medication", a.Medication),
		zap.String("dosage", a.Dosage),
		zap.Time("scheduled", a.Scheduled),
		zap.String("message", Message(a)))
	return nil
}

// TelegramNotifier sends alerts to one chat through the Bot API.
type TelegramNotifier struct {
	bot    *tg.BotAPI
	chatID int64
}

// NewTelegramNotifier authorizes token against the Bot API. An empty
// endpoint selects the public API.
func NewTelegramNotifier(token string, chatID int64, endpoint string) (*TelegramNotifier, error) {
	if endpoint == "" {
		endpoint = tg.APIEndpoint
	}
	bot, err := tg.NewBotAPIWithAPIEndpoint(token, endpoint)
	if err != nil {
		return nil, fmt.Errorf("telegram auth: %w", err)
	}
	bot.Debug = false
	return &TelegramNotifier{bot: bot, chatID: chatID}, nil
}

func (n *TelegramNotifier) Notify(_ context.Context, a model.Alert) error {
	msg := tg.NewMessage(n.chatID, Message(a))
	if _, err := n.bot.Send(msg); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}

// MultiNotifier fans an alert out to every notifier and combines failures.
type MultiNotifier []Notifier

func (m MultiNotifier) Notify(ctx context.Context, a model.Alert) error {
	var err error
	for _, n := range m {
		err = multierr.Append(err, n.Notify(ctx, a))
	}
	return err
}

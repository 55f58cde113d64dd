package service

import (
	"fmt"
	"log"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"literacylead/internal/models"
)

// NotifyService pings a Telegram chat when a new report lands, so the
// intervention team hears about fresh groupings without watching the
// dashboard. Unconfigured, it is a no-op.
type NotifyService struct {
	bot     *tgbotapi.BotAPI
	chatID  int64
	enabled bool
}

// NewNotifyService creates the notifier from a bot token and chat id.
func NewNotifyService(botToken, chatID string) *NotifyService {
	if botToken == "" || chatID == "" {
		return &NotifyService{enabled: false}
	}

	id, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		log.Printf("Telegram notifications disabled: invalid chat id %q", chatID)
		return &NotifyService{enabled: false}
	}

	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		log.Printf("Telegram notifications disabled: %v", err)
		return &NotifyService{enabled: false}
	}

	log.Println("Telegram notifications enabled")
	return &NotifyService{bot: bot, chatID: id, enabled: true}
}

// IsEnabled returns whether the notifier is configured.
func (s *NotifyService) IsEnabled() bool {
	return s.enabled
}

// AnalysisComplete sends the report headline. Only aggregate counts go out;
// no student names leave the system on this channel.
func (s *NotifyService) AnalysisComplete(report *models.LiteracyAnalysisReport) error {
	if !s.enabled {
		return nil
	}

	h := report.ClassHealth
	text := fmt.Sprintf(
		"Literacy analysis complete: %d%% at or above benchmark (%d tiered, %d missing data, %d movement entries).",
		h.AtOrAbovePercent(), h.Total(), len(report.MissingDataStudents), len(report.MovementReport),
	)

	if _, err := s.bot.Send(tgbotapi.NewMessage(s.chatID, text)); err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}
	return nil
}

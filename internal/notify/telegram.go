// Package notify реализует уведомления оператора о сбоях генерации.
package notify

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// TelegramNotifier отправляет уведомления о сбоях в Telegram чат
// оператора. Отправка best-effort: ошибка доставки только логируется.
type TelegramNotifier struct {
	api    *tgbotapi.BotAPI
	chatID int64
	logger *zap.Logger
}

// NewTelegramNotifier создает новый Telegram уведомитель
func NewTelegramNotifier(botToken string, chatID int64, logger *zap.Logger) (*TelegramNotifier, error) {
	api, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot API: %w", err)
	}

	logger.Info("Telegram notifier created",
		zap.String("bot_username", api.Self.UserName),
		zap.Int64("chat_id", chatID))

	return &TelegramNotifier{
		api:    api,
		chatID: chatID,
		logger: logger,
	}, nil
}

// NotifyFailure отправляет сообщение о сбое в чат оператора
func (n *TelegramNotifier) NotifyFailure(message string) {
	msg := tgbotapi.NewMessage(n.chatID, message)

	if _, err := n.api.Send(msg); err != nil {
		n.logger.Error("Failed to send failure notification",
			zap.Int64("chat_id", n.chatID),
			zap.Error(err))
		return
	}

	n.logger.Debug("Failure notification sent", zap.Int64("chat_id", n.chatID))
}

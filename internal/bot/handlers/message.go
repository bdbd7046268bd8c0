package handlers

import (
	"context"

	botservice "telegram_booking_assistant/internal/bot/service"
	"telegram_booking_assistant/pkg/logger"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// MessageHandler feeds plain text messages into the dialogue engine
type MessageHandler struct {
	service *botservice.Service
}

// NewMessageHandler creates the text message handler
func NewMessageHandler(service *botservice.Service) *MessageHandler {
	return &MessageHandler{service: service}
}

// Handle runs one conversation turn and delivers the reply
func (h *MessageHandler) Handle(ctx context.Context, b *tgbot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.Text == "" {
		return
	}

	chatID := update.Message.Chat.ID

	reply, ended := h.service.Respond(ctx, chatID, update.Message.Text)
	if err := h.service.SendSimpleMessage(ctx, chatID, reply); err != nil {
		h.service.Logger().Error("Failed to send reply",
			logger.Int64("chat_id", chatID),
			logger.Error(err),
		)
		return
	}

	if ended {
		h.service.Logger().Info("Conversation closed",
			logger.Int64("chat_id", chatID),
		)
	}
}

package handlers

import (
	"context"

	botservice "telegram_booking_assistant/internal/bot/service"
	"telegram_booking_assistant/pkg/logger"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// DefaultHandler answers updates the assistant cannot converse about
// (stickers, photos, voice messages and so on)
type DefaultHandler struct {
	service *botservice.Service
}

// NewDefaultHandler creates the fallback handler
func NewDefaultHandler(service *botservice.Service) *DefaultHandler {
	return &DefaultHandler{service: service}
}

// Handle nudges the user back to text
func (h *DefaultHandler) Handle(ctx context.Context, b *tgbot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	chatID := update.Message.Chat.ID

	message := "Please send a text message to talk about scheduling an appointment."
	if err := h.service.SendSimpleMessage(ctx, chatID, message); err != nil {
		h.service.Logger().Error("Failed to send default message",
			logger.Int64("chat_id", chatID),
			logger.Error(err),
		)
	}
}

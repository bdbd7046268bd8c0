package handlers

import (
	"context"
	"strings"

	botservice "telegram_booking_assistant/internal/bot/service"
	"telegram_booking_assistant/pkg/logger"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// StartHandler handles the /start command. The greeting is not special-cased
// text: a synthetic first message runs through the normal dialogue pipeline
// and the model's reply becomes the welcome message.
type StartHandler struct {
	service *botservice.Service
}

// NewStartHandler creates a /start handler
func NewStartHandler(service *botservice.Service) *StartHandler {
	return &StartHandler{service: service}
}

// Handle processes the /start command
func (h *StartHandler) Handle(ctx context.Context, b *tgbot.Bot, update *models.Update) {
	if update.Message == nil || !strings.HasPrefix(update.Message.Text, "/start") {
		return
	}

	chatID := update.Message.Chat.ID

	reply, _ := h.service.Respond(ctx, chatID, "/start")
	if err := h.service.SendSimpleMessage(ctx, chatID, reply); err != nil {
		h.service.Logger().Error("Failed to send welcome message",
			logger.Int64("chat_id", chatID),
			logger.Error(err),
		)
	}
}

package dispatcher

import (
	"context"
	"strings"

	"telegram_booking_assistant/internal/bot/handlers"
	"telegram_booking_assistant/internal/bot/service"
	"telegram_booking_assistant/internal/middleware"
	"telegram_booking_assistant/pkg/logger"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// Dispatcher routes incoming Telegram updates to their handlers. Each update
// is processed to completion inside HandleUpdate; per-user ordering is
// enforced further down by the dialogue engine.
type Dispatcher struct {
	startHandler   *handlers.StartHandler
	messageHandler *handlers.MessageHandler
	defaultHandler *handlers.DefaultHandler
	limiter        *middleware.TelegramRateLimiter
	service        *service.Service
	log            *logger.Logger
}

// NewDispatcher creates an update dispatcher
func NewDispatcher(svc *service.Service, limiter *middleware.TelegramRateLimiter, log *logger.Logger) *Dispatcher {
	return &Dispatcher{
		startHandler:   handlers.NewStartHandler(svc),
		messageHandler: handlers.NewMessageHandler(svc),
		defaultHandler: handlers.NewDefaultHandler(svc),
		limiter:        limiter,
		service:        svc,
		log:            log,
	}
}

// HandleUpdate processes one incoming update from Telegram
func (d *Dispatcher) HandleUpdate(ctx context.Context, bot *tgbot.Bot, update *models.Update) {
	if update.Message == nil {
		d.log.Debug("Ignoring update without a message",
			logger.Int64("update_id", update.ID),
		)
		return
	}

	chatID := update.Message.Chat.ID

	if d.limiter != nil && !d.limiter.AllowUser(chatID) {
		d.service.SendError(ctx, chatID, "You're sending messages too quickly. Please wait a moment.")
		return
	}

	if strings.HasPrefix(update.Message.Text, "/start") {
		d.startHandler.Handle(ctx, bot, update)
		return
	}

	if update.Message.Text != "" {
		d.messageHandler.Handle(ctx, bot, update)
		return
	}

	d.defaultHandler.Handle(ctx, bot, update)
}

package service

import (
	"context"

	"telegram_booking_assistant/internal/dialogue"
	"telegram_booking_assistant/pkg/logger"

	"github.com/go-telegram/bot"
)

// Service ties the dialogue engine to the Telegram transport. Handlers go
// through it for everything they send.
type Service struct {
	bot    *bot.Bot
	engine *dialogue.Engine
	log    *logger.Logger
}

// NewService creates the bot service
func NewService(b *bot.Bot, engine *dialogue.Engine, log *logger.Logger) *Service {
	return &Service{
		bot:    b,
		engine: engine,
		log:    log,
	}
}

// Respond runs one dialogue turn for the user and returns the reply text
func (s *Service) Respond(ctx context.Context, chatID int64, text string) (string, bool) {
	return s.engine.Respond(ctx, chatID, text)
}

// SendSimpleMessage sends a plain text message to a chat
func (s *Service) SendSimpleMessage(ctx context.Context, chatID int64, text string) error {
	params := &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	}

	_, err := s.bot.SendMessage(ctx, params)
	return err
}

// SendError sends an error notice to a chat, logging delivery failures
func (s *Service) SendError(ctx context.Context, chatID int64, message string) {
	if err := s.SendSimpleMessage(ctx, chatID, message); err != nil {
		s.log.Error("Failed to send error message",
			logger.Int64("chat_id", chatID),
			logger.Error(err),
		)
	}
}

// Logger exposes the service logger to handlers
func (s *Service) Logger() *logger.Logger {
	return s.log
}

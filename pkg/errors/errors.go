package errors

import "fmt"

// BotError represents a bot error with a code and optional context
type BotError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Err     error       `json:"-"`
	Context interface{} `json:"context,omitempty"`
}

// Error implements the error interface
func (e *BotError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap enables errors.Is and errors.As
func (e *BotError) Unwrap() error {
	return e.Err
}

// Is matches BotErrors by code so wrapped copies compare equal to the sentinels
func (e *BotError) Is(target error) bool {
	t, ok := target.(*BotError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithContext attaches context to the error
func (e *BotError) WithContext(ctx interface{}) *BotError {
	return &BotError{
		Code:    e.Code,
		Message: e.Message,
		Err:     e.Err,
		Context: ctx,
	}
}

// WithError attaches the underlying error
func (e *BotError) WithError(err error) *BotError {
	return &BotError{
		Code:    e.Code,
		Message: e.Message,
		Err:     err,
		Context: e.Context,
	}
}

// Predeclared errors
var (
	// Slot errors
	ErrSlotNotFound = &BotError{
		Code:    "SLOT_NOT_FOUND",
		Message: "no such slot in the schedule",
	}

	ErrSlotOccupied = &BotError{
		Code:    "SLOT_OCCUPIED",
		Message: "slot is already occupied",
	}

	ErrUnknownDay = &BotError{
		Code:    "UNKNOWN_DAY",
		Message: "day is not one of the seven week days",
	}

	// Booking errors
	ErrInsufficient = &BotError{
		Code:    "INSUFFICIENT",
		Message: "not enough booking details extracted",
	}

	ErrMalformedExtraction = &BotError{
		Code:    "MALFORMED_EXTRACTION",
		Message: "model output does not parse as a booking candidate",
	}

	// Collaborator errors
	ErrLLMUnavailable = &BotError{
		Code:    "LLM_UNAVAILABLE",
		Message: "language model request failed or timed out",
	}

	ErrStorageUnavailable = &BotError{
		Code:    "STORAGE_UNAVAILABLE",
		Message: "schedule storage read or write failed",
	}

	ErrTelegramAPI = &BotError{
		Code:    "TELEGRAM_API",
		Message: "telegram API error",
	}

	// System errors
	ErrConfigurationInvalid = &BotError{
		Code:    "CONFIGURATION_INVALID",
		Message: "invalid configuration",
	}
)

// NewBotError creates a new bot error
func NewBotError(code, message string) *BotError {
	return &BotError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps a plain error into a BotError
func Wrap(err error, code, message string) *BotError {
	return &BotError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// GetBotError extracts a BotError from an error
func GetBotError(err error) (*BotError, bool) {
	botErr, ok := err.(*BotError)
	return botErr, ok
}

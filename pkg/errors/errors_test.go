package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestIs_MatchesByCode(t *testing.T) {
	wrapped := ErrSlotOccupied.WithError(fmt.Errorf("row update skipped"))

	if !errors.Is(wrapped, ErrSlotOccupied) {
		t.Error("Wrapped copy does not match its sentinel")
	}
	if errors.Is(wrapped, ErrSlotNotFound) {
		t.Error("Wrapped copy matches an unrelated sentinel")
	}
}

func TestIs_PlainErrorDoesNotMatch(t *testing.T) {
	if errors.Is(fmt.Errorf("plain"), ErrSlotOccupied) {
		t.Error("Plain error matched a BotError sentinel")
	}
}

func TestUnwrap(t *testing.T) {
	cause := fmt.Errorf("disk full")
	wrapped := ErrStorageUnavailable.WithError(cause)

	if !errors.Is(wrapped, cause) {
		t.Error("Unwrap chain does not reach the cause")
	}
}

func TestWithError_DoesNotMutateSentinel(t *testing.T) {
	ErrLLMUnavailable.WithError(fmt.Errorf("timeout"))

	if ErrLLMUnavailable.Err != nil {
		t.Error("WithError mutated the shared sentinel")
	}
}

func TestError_Format(t *testing.T) {
	plain := ErrSlotNotFound.Error()
	if plain != "SLOT_NOT_FOUND: no such slot in the schedule" {
		t.Errorf("Error() = %q", plain)
	}

	wrapped := ErrSlotNotFound.WithError(fmt.Errorf("boom")).Error()
	if wrapped != "SLOT_NOT_FOUND: no such slot in the schedule: boom" {
		t.Errorf("Error() = %q", wrapped)
	}
}

func TestWrap(t *testing.T) {
	cause := fmt.Errorf("root cause")
	err := Wrap(cause, "CUSTOM", "something broke")

	if err.Code != "CUSTOM" || err.Err != cause {
		t.Errorf("Wrap produced %+v", err)
	}

	botErr, ok := GetBotError(err)
	if !ok || botErr.Code != "CUSTOM" {
		t.Errorf("GetBotError = (%+v, %v)", botErr, ok)
	}
}

package storage

import (
	"context"

	"telegram_booking_assistant/internal/storage/models"
)

// ScheduleStore owns the weekly availability document. All reads hand out
// copies and TryOccupy is the only mutation entry point, so the document can
// never change except through a committed booking.
type ScheduleStore interface {
	// Read returns a deep copy of the current schedule
	Read(ctx context.Context) (models.WeeklySchedule, error)

	// FindSlot looks up a slot by canonical day and exact time label.
	// Returns errors.ErrSlotNotFound when the pair is absent.
	FindSlot(ctx context.Context, day, time string) (models.Slot, error)

	// TryOccupy atomically transitions the (day, time) slot from free to
	// occupied and persists the whole document before returning. Under
	// concurrent attempts for the same slot exactly one caller succeeds.
	// Returns nil, errors.ErrSlotOccupied, errors.ErrSlotNotFound, or an
	// error matching errors.ErrStorageUnavailable.
	TryOccupy(ctx context.Context, day, time, event string) error

	Close() error
}

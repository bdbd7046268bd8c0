package booking

import (
	"context"
	"errors"

	"telegram_booking_assistant/internal/extract"
	"telegram_booking_assistant/internal/storage"
	apperrors "telegram_booking_assistant/pkg/errors"
	"telegram_booking_assistant/pkg/metrics"
)

// Result is the outcome of a booking commit attempt
type Result int

const (
	// Booked means exactly one slot transitioned free→occupied and the
	// document was persisted
	Booked Result = iota
	// Insufficient means the candidate lacked a day or a time
	Insufficient
	// SlotOccupied means the requested slot was already taken
	SlotOccupied
	// SlotNotFound means no slot matches the requested day and time
	SlotNotFound
	// StorageUnavailable means the backing store failed to read or write
	StorageUnavailable
)

var resultNames = map[Result]string{
	Booked:             "booked",
	Insufficient:       "insufficient",
	SlotOccupied:       "slot_occupied",
	SlotNotFound:       "slot_not_found",
	StorageUnavailable: "storage_unavailable",
}

// String returns the telemetry label for the result
func (r Result) String() string {
	if name, ok := resultNames[r]; ok {
		return name
	}
	return "unknown"
}

// UnknownClient names the booking when the client never gave a name
const UnknownClient = "Unknown Client"

// Committer validates an extraction candidate against the schedule store and
// attempts the single atomic free→occupied transition. Either the slot is
// fully transitioned and persisted, or the document is left untouched.
type Committer struct {
	store storage.ScheduleStore
}

// New creates a committer bound to a schedule store
func New(store storage.ScheduleStore) *Committer {
	return &Committer{store: store}
}

// Commit maps a candidate to its booking outcome. The distinct failure
// results stay internal; callers decide how much of them to expose.
func (c *Committer) Commit(ctx context.Context, candidate extract.BookingCandidate) Result {
	result := c.commit(ctx, candidate)
	metrics.RecordBookingAttempt(result.String())
	return result
}

func (c *Committer) commit(ctx context.Context, candidate extract.BookingCandidate) Result {
	if !candidate.Complete() {
		return Insufficient
	}

	client := candidate.ClientName
	if client == "" {
		client = UnknownClient
	}

	err := c.store.TryOccupy(ctx, candidate.Day, candidate.Time, "Meeting with "+client)
	switch {
	case err == nil:
		return Booked
	case errors.Is(err, apperrors.ErrSlotOccupied):
		return SlotOccupied
	case errors.Is(err, apperrors.ErrSlotNotFound):
		return SlotNotFound
	default:
		return StorageUnavailable
	}
}

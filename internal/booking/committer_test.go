package booking

import (
	"context"
	"testing"

	"telegram_booking_assistant/internal/extract"
	"telegram_booking_assistant/internal/storage/models"
	apperrors "telegram_booking_assistant/pkg/errors"
)

// fakeStore records TryOccupy calls and returns a scripted error
type fakeStore struct {
	occupyErr error

	calledDay   string
	calledTime  string
	calledEvent string
	calls       int
}

func (f *fakeStore) Read(ctx context.Context) (models.WeeklySchedule, error) {
	return models.WeeklySchedule{}, nil
}

func (f *fakeStore) FindSlot(ctx context.Context, day, time string) (models.Slot, error) {
	return models.Slot{}, apperrors.ErrSlotNotFound
}

func (f *fakeStore) TryOccupy(ctx context.Context, day, time, event string) error {
	f.calls++
	f.calledDay = day
	f.calledTime = time
	f.calledEvent = event
	return f.occupyErr
}

func (f *fakeStore) Close() error { return nil }

func TestCommit_Booked(t *testing.T) {
	store := &fakeStore{}
	committer := New(store)

	result := committer.Commit(context.Background(), extract.BookingCandidate{
		Day: "monday", Time: "09:00", ClientName: "Ana",
	})

	if result != Booked {
		t.Fatalf("Result = %v, want Booked", result)
	}
	if store.calledDay != "monday" || store.calledTime != "09:00" {
		t.Errorf("Store called with (%s, %s)", store.calledDay, store.calledTime)
	}
	if store.calledEvent != "Meeting with Ana" {
		t.Errorf("Event = %q, want %q", store.calledEvent, "Meeting with Ana")
	}
}

func TestCommit_UnknownClientDefault(t *testing.T) {
	store := &fakeStore{}
	committer := New(store)

	committer.Commit(context.Background(), extract.BookingCandidate{
		Day: "monday", Time: "09:00",
	})

	if store.calledEvent != "Meeting with "+UnknownClient {
		t.Errorf("Event = %q, want %q", store.calledEvent, "Meeting with "+UnknownClient)
	}
}

func TestCommit_Insufficient(t *testing.T) {
	store := &fakeStore{}
	committer := New(store)

	cases := []extract.BookingCandidate{
		{},
		{Day: "monday"},
		{Time: "09:00"},
		{ClientName: "Ana"},
	}
	for _, candidate := range cases {
		if result := committer.Commit(context.Background(), candidate); result != Insufficient {
			t.Errorf("Commit(%+v) = %v, want Insufficient", candidate, result)
		}
	}

	// No storage access for incomplete candidates
	if store.calls != 0 {
		t.Errorf("Incomplete candidates reached the store %d times", store.calls)
	}
}

func TestCommit_ErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want Result
	}{
		{"occupied", apperrors.ErrSlotOccupied, SlotOccupied},
		{"not found", apperrors.ErrSlotNotFound, SlotNotFound},
		{"storage failure", apperrors.ErrStorageUnavailable, StorageUnavailable},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			committer := New(&fakeStore{occupyErr: tc.err})
			result := committer.Commit(context.Background(), extract.BookingCandidate{
				Day: "monday", Time: "09:00", ClientName: "Ana",
			})
			if result != tc.want {
				t.Errorf("Result = %v, want %v", result, tc.want)
			}
		})
	}
}

func TestResult_String(t *testing.T) {
	cases := map[Result]string{
		Booked:             "booked",
		Insufficient:       "insufficient",
		SlotOccupied:       "slot_occupied",
		SlotNotFound:       "slot_not_found",
		StorageUnavailable: "storage_unavailable",
		Result(99):         "unknown",
	}
	for result, want := range cases {
		if got := result.String(); got != want {
			t.Errorf("Result(%d).String() = %q, want %q", result, got, want)
		}
	}
}

package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"testing"

	"telegram_booking_assistant/internal/storage/models"
	apperrors "telegram_booking_assistant/pkg/errors"
)

// newTestStore writes a schedule document to a temp file and opens it
func newTestStore(t *testing.T, ws models.WeeklySchedule) *Store {
	t.Helper()

	path := filepath.Join(t.TempDir(), "schedule.json")
	data, err := json.Marshal(models.ScheduleDocument{WeeklySchedule: ws})
	if err != nil {
		t.Fatalf("Failed to encode fixture: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("Failed to write fixture: %v", err)
	}

	store, err := New(path)
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	return store
}

func testSchedule() models.WeeklySchedule {
	return models.WeeklySchedule{
		"monday": {
			{Time: "09:00", Status: models.StatusFree},
			{Time: "10:00", Status: models.StatusOccupied, Event: "Existing meeting"},
		},
		"tuesday": {
			{Time: "14:00", Status: models.StatusFree},
		},
	}
}

func TestNew_MissingFile(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "absent.json"))
	if err == nil {
		t.Fatal("Expected error opening a store on a missing file")
	}
	if !errors.Is(err, apperrors.ErrStorageUnavailable) {
		t.Errorf("Expected storage unavailable error, got %v", err)
	}
}

func TestNew_InvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schedule.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("Failed to write fixture: %v", err)
	}

	if _, err := New(path); err == nil {
		t.Fatal("Expected error opening a store on invalid JSON")
	}
}

func TestRead_ReturnsCopy(t *testing.T) {
	store := newTestStore(t, testSchedule())
	ctx := context.Background()

	first, err := store.Read(ctx)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}

	first["monday"][0].Status = models.StatusOccupied

	second, err := store.Read(ctx)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if second["monday"][0].Status != models.StatusFree {
		t.Error("Mutating a read result leaked into the store")
	}
}

func TestTryOccupy_Succeeds(t *testing.T) {
	store := newTestStore(t, testSchedule())
	ctx := context.Background()

	if err := store.TryOccupy(ctx, "monday", "09:00", "Meeting with Ana"); err != nil {
		t.Fatalf("TryOccupy failed: %v", err)
	}

	slot, err := store.FindSlot(ctx, "monday", "09:00")
	if err != nil {
		t.Fatalf("FindSlot failed: %v", err)
	}
	if slot.Status != models.StatusOccupied {
		t.Errorf("Slot status = %q, want occupied", slot.Status)
	}
	if slot.Event != "Meeting with Ana" {
		t.Errorf("Slot event = %q, want %q", slot.Event, "Meeting with Ana")
	}
}

func TestTryOccupy_Persists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schedule.json")
	data, _ := json.Marshal(models.ScheduleDocument{WeeklySchedule: testSchedule()})
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("Failed to write fixture: %v", err)
	}

	store, err := New(path)
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}

	ctx := context.Background()
	if err := store.TryOccupy(ctx, "tuesday", "14:00", "Meeting with Bob"); err != nil {
		t.Fatalf("TryOccupy failed: %v", err)
	}

	// A fresh store over the same file must see the committed booking
	reopened, err := New(path)
	if err != nil {
		t.Fatalf("Failed to reopen store: %v", err)
	}
	slot, err := reopened.FindSlot(ctx, "tuesday", "14:00")
	if err != nil {
		t.Fatalf("FindSlot failed: %v", err)
	}
	if slot.Status != models.StatusOccupied || slot.Event != "Meeting with Bob" {
		t.Errorf("Reopened store sees slot %+v, want occupied Meeting with Bob", slot)
	}
}

func TestTryOccupy_Occupied(t *testing.T) {
	store := newTestStore(t, testSchedule())
	ctx := context.Background()

	err := store.TryOccupy(ctx, "monday", "10:00", "Meeting with Ana")
	if !errors.Is(err, apperrors.ErrSlotOccupied) {
		t.Fatalf("Expected slot occupied error, got %v", err)
	}

	// The original event must survive the failed attempt
	slot, err := store.FindSlot(ctx, "monday", "10:00")
	if err != nil {
		t.Fatalf("FindSlot failed: %v", err)
	}
	if slot.Event != "Existing meeting" {
		t.Errorf("Failed attempt overwrote event: %q", slot.Event)
	}
}

func TestTryOccupy_NotFound_LeavesDocumentUntouched(t *testing.T) {
	store := newTestStore(t, testSchedule())
	ctx := context.Background()

	before, err := store.Read(ctx)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}

	cases := []struct{ day, time string }{
		{"monday", "11:00"},
		{"wednesday", "09:00"},
		{"monday", "9:00"}, // exact string match, no normalization
	}
	for _, tc := range cases {
		err := store.TryOccupy(ctx, tc.day, tc.time, "Meeting with Ana")
		if !errors.Is(err, apperrors.ErrSlotNotFound) {
			t.Errorf("TryOccupy(%s, %s) = %v, want slot not found", tc.day, tc.time, err)
		}
	}

	after, err := store.Read(ctx)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if !reflect.DeepEqual(before, after) {
		t.Error("Failed attempts modified the document")
	}
}

func TestTryOccupy_ConcurrentSingleWinner(t *testing.T) {
	store := newTestStore(t, testSchedule())
	ctx := context.Background()

	const attempts = 20
	var wg sync.WaitGroup
	results := make(chan error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- store.TryOccupy(ctx, "monday", "09:00", "Meeting with Ana")
		}()
	}
	wg.Wait()
	close(results)

	var won, lost int
	for err := range results {
		switch {
		case err == nil:
			won++
		case errors.Is(err, apperrors.ErrSlotOccupied):
			lost++
		default:
			t.Errorf("Unexpected error from concurrent attempt: %v", err)
		}
	}

	if won != 1 {
		t.Errorf("Expected exactly 1 winning attempt, got %d", won)
	}
	if lost != attempts-1 {
		t.Errorf("Expected %d losing attempts, got %d", attempts-1, lost)
	}
}

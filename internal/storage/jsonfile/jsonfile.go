package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"telegram_booking_assistant/internal/storage/models"
	apperrors "telegram_booking_assistant/pkg/errors"
	"telegram_booking_assistant/pkg/metrics"
)

// Store keeps the weekly schedule in a single JSON document on disk. The
// document is read and rewritten in full on every mutation; a mutex
// serializes all access so two booking attempts can never both win a slot.
type Store struct {
	path string
	mu   sync.Mutex
}

// New opens a file-backed schedule store. The file must already exist and
// contain a valid schedule document.
func New(path string) (*Store, error) {
	s := &Store{path: path}
	if _, err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// load reads and decodes the whole document. Callers must hold the mutex
// unless they are still constructing the store.
func (s *Store) load() (*models.ScheduleDocument, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, apperrors.ErrStorageUnavailable.WithError(fmt.Errorf("read %s: %w", s.path, err))
	}

	var doc models.ScheduleDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, apperrors.ErrStorageUnavailable.WithError(fmt.Errorf("decode %s: %w", s.path, err))
	}
	if doc.WeeklySchedule == nil {
		doc.WeeklySchedule = models.WeeklySchedule{}
	}

	return &doc, nil
}

// persist writes the whole document back atomically (temp file + rename)
func (s *Store) persist(doc *models.ScheduleDocument) error {
	data, err := json.MarshalIndent(doc, "", "    ")
	if err != nil {
		return apperrors.ErrStorageUnavailable.WithError(fmt.Errorf("encode schedule: %w", err))
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".schedule-*.json")
	if err != nil {
		return apperrors.ErrStorageUnavailable.WithError(err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return apperrors.ErrStorageUnavailable.WithError(err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return apperrors.ErrStorageUnavailable.WithError(err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return apperrors.ErrStorageUnavailable.WithError(err)
	}

	return nil
}

// Read returns a deep copy of the current schedule
func (s *Store) Read(ctx context.Context) (models.WeeklySchedule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		metrics.RecordStorageOperation("read", "error")
		return nil, err
	}

	metrics.RecordStorageOperation("read", "ok")
	return doc.WeeklySchedule.Clone(), nil
}

// FindSlot looks up a slot by canonical day and exact time label
func (s *Store) FindSlot(ctx context.Context, day, time string) (models.Slot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return models.Slot{}, err
	}

	slots, ok := doc.WeeklySchedule[day]
	if !ok {
		return models.Slot{}, apperrors.ErrSlotNotFound
	}
	idx := models.FindSlot(slots, time)
	if idx < 0 {
		return models.Slot{}, apperrors.ErrSlotNotFound
	}

	return slots[idx], nil
}

// TryOccupy transitions exactly one slot from free to occupied and persists
// the full document before returning. The mutex makes the read-check-write
// sequence atomic with respect to concurrent callers.
func (s *Store) TryOccupy(ctx context.Context, day, time, event string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		metrics.RecordStorageOperation("try_occupy", "error")
		return err
	}

	slots, ok := doc.WeeklySchedule[day]
	if !ok {
		metrics.RecordStorageOperation("try_occupy", "not_found")
		return apperrors.ErrSlotNotFound
	}
	idx := models.FindSlot(slots, time)
	if idx < 0 {
		metrics.RecordStorageOperation("try_occupy", "not_found")
		return apperrors.ErrSlotNotFound
	}

	if !slots[idx].IsFree() {
		metrics.RecordStorageOperation("try_occupy", "occupied")
		return apperrors.ErrSlotOccupied
	}

	slots[idx].Status = models.StatusOccupied
	slots[idx].Event = event

	if err := s.persist(doc); err != nil {
		metrics.RecordStorageOperation("try_occupy", "error")
		return err
	}

	metrics.RecordStorageOperation("try_occupy", "ok")
	return nil
}

// Close releases store resources. The file store holds none.
func (s *Store) Close() error {
	return nil
}

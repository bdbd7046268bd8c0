package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"telegram_booking_assistant/internal/storage/models"
	apperrors "telegram_booking_assistant/pkg/errors"
	"telegram_booking_assistant/pkg/metrics"

	_ "modernc.org/sqlite"
)

// Store keeps the schedule document in a single-row SQLite table. The
// contract is the same as the file store: whole-document reads, and the
// full document rewritten inside one transaction on every commit.
type Store struct {
	db *sql.DB
}

// New opens (and if needed initializes) a SQLite-backed schedule store
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, apperrors.ErrStorageUnavailable.WithError(fmt.Errorf("open database: %w", err))
	}

	// SQLite supports a single writer connection
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	store := &Store{db: db}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

// migrate creates the document table and seeds the single row
func (s *Store) migrate() error {
	if _, err := s.db.Exec(`PRAGMA journal_mode=WAL`); err != nil {
		return apperrors.ErrStorageUnavailable.WithError(fmt.Errorf("set WAL mode: %w", err))
	}

	queries := []string{
		`CREATE TABLE IF NOT EXISTS schedule_document (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			document TEXT NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`INSERT OR IGNORE INTO schedule_document (id, document)
		 VALUES (1, '{"weeklySchedule":{}}')`,
	}

	for _, query := range queries {
		if _, err := s.db.Exec(query); err != nil {
			return apperrors.ErrStorageUnavailable.WithError(fmt.Errorf("migration: %w", err))
		}
	}

	return nil
}

// ImportIfEmpty replaces an empty document with the given schedule. Used to
// seed a fresh database from a schedule.json file at startup.
func (s *Store) ImportIfEmpty(ctx context.Context, ws models.WeeklySchedule) error {
	doc, err := s.readDocument(ctx, s.db)
	if err != nil {
		return err
	}
	if len(doc.WeeklySchedule) > 0 {
		return nil
	}
	return s.writeDocument(ctx, s.db, &models.ScheduleDocument{WeeklySchedule: ws})
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Store) readDocument(ctx context.Context, q execer) (*models.ScheduleDocument, error) {
	var raw string
	err := q.QueryRowContext(ctx, `SELECT document FROM schedule_document WHERE id = 1`).Scan(&raw)
	if err != nil {
		return nil, apperrors.ErrStorageUnavailable.WithError(fmt.Errorf("read document: %w", err))
	}

	var doc models.ScheduleDocument
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, apperrors.ErrStorageUnavailable.WithError(fmt.Errorf("decode document: %w", err))
	}
	if doc.WeeklySchedule == nil {
		doc.WeeklySchedule = models.WeeklySchedule{}
	}

	return &doc, nil
}

func (s *Store) writeDocument(ctx context.Context, q execer, doc *models.ScheduleDocument) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return apperrors.ErrStorageUnavailable.WithError(fmt.Errorf("encode document: %w", err))
	}

	_, err = q.ExecContext(ctx,
		`UPDATE schedule_document SET document = ?, updated_at = CURRENT_TIMESTAMP WHERE id = 1`,
		string(data))
	if err != nil {
		return apperrors.ErrStorageUnavailable.WithError(fmt.Errorf("write document: %w", err))
	}

	return nil
}

// Read returns a deep copy of the current schedule
func (s *Store) Read(ctx context.Context) (models.WeeklySchedule, error) {
	doc, err := s.readDocument(ctx, s.db)
	if err != nil {
		metrics.RecordStorageOperation("read", "error")
		return nil, err
	}

	metrics.RecordStorageOperation("read", "ok")
	return doc.WeeklySchedule.Clone(), nil
}

// FindSlot looks up a slot by canonical day and exact time label
func (s *Store) FindSlot(ctx context.Context, day, time string) (models.Slot, error) {
	doc, err := s.readDocument(ctx, s.db)
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

// TryOccupy runs the free→occupied transition inside one transaction so
// concurrent attempts for the same slot serialize on the database
func (s *Store) TryOccupy(ctx context.Context, day, time, event string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		metrics.RecordStorageOperation("try_occupy", "error")
		return apperrors.ErrStorageUnavailable.WithError(fmt.Errorf("begin transaction: %w", err))
	}
	defer tx.Rollback()

	doc, err := s.readDocument(ctx, tx)
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

	if err := s.writeDocument(ctx, tx, doc); err != nil {
		metrics.RecordStorageOperation("try_occupy", "error")
		return err
	}

	if err := tx.Commit(); err != nil {
		metrics.RecordStorageOperation("try_occupy", "error")
		return apperrors.ErrStorageUnavailable.WithError(fmt.Errorf("commit: %w", err))
	}

	metrics.RecordStorageOperation("try_occupy", "ok")
	return nil
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

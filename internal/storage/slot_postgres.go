package storage

import (
	"context"
	"fmt"

	"github.com/courtside/bookingd/internal/database"
	"github.com/courtside/bookingd/internal/models"
	"github.com/jackc/pgx/v5"
)

type PostgresSlotStore struct {
	db *database.DBManager
}

func NewPostgresSlotStore(db *database.DBManager) *PostgresSlotStore {
	return &PostgresSlotStore{db: db}
}

const slotColumns = `id, to_char(slot_date, 'YYYY-MM-DD'), to_char(start_time, 'HH24:MI'), to_char(end_time, 'HH24:MI'), is_booked, booked_by`

func scanSlot(row pgx.Row) (*models.TimeSlot, error) {
	var slot models.TimeSlot
	err := row.Scan(
		&slot.ID,
		&slot.Date,
		&slot.StartTime,
		&slot.EndTime,
		&slot.IsBooked,
		&slot.BookedBy,
	)
	if err != nil {
		return nil, err
	}
	return &slot, nil
}

func (s *PostgresSlotStore) CreateSlot(ctx context.Context, req *models.CreateSlotRequest) (*models.TimeSlot, error) {
	query := `
		INSERT INTO time_slots (slot_date, start_time, end_time)
		VALUES ($1::date, $2::time, $3::time)
		RETURNING ` + slotColumns

	slot, err := scanSlot(s.db.Pool().QueryRow(ctx, query, req.Date, req.StartTime, req.EndTime))
	if err != nil {
		return nil, fmt.Errorf("failed to create slot: %w", err)
	}

	return slot, nil
}

func (s *PostgresSlotStore) DeleteSlot(ctx context.Context, slotID int64) (bool, error) {
	// Deleting a booked slot is allowed.
	cmdTag, err := s.db.Pool().Exec(ctx, `DELETE FROM time_slots WHERE id = $1`, slotID)
	if err != nil {
		return false, fmt.Errorf("failed to delete slot: %w", err)
	}

	return cmdTag.RowsAffected() > 0, nil
}

func (s *PostgresSlotStore) GetSlot(ctx context.Context, slotID int64) (*models.TimeSlot, error) {
	query := `SELECT ` + slotColumns + ` FROM time_slots WHERE id = $1`

	slot, err := scanSlot(s.db.Pool().QueryRow(ctx, query, slotID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get slot: %w", err)
	}

	return slot, nil
}

// BookSlot encodes the FREE precondition in the WHERE clause so the row
// transition happens atomically inside the database. Concurrent bookings of
// the same slot race on this statement and at most one affects a row.
func (s *PostgresSlotStore) BookSlot(ctx context.Context, slotID, userID int64) (bool, error) {
	query := `
		UPDATE time_slots
		SET is_booked = TRUE, booked_by = $2
		WHERE id = $1 AND is_booked = FALSE
	`

	cmdTag, err := s.db.Pool().Exec(ctx, query, slotID, userID)
	if err != nil {
		return false, fmt.Errorf("failed to book slot: %w", err)
	}

	return cmdTag.RowsAffected() > 0, nil
}

func (s *PostgresSlotStore) UnbookSlot(ctx context.Context, slotID, userID int64) (bool, error) {
	query := `
		UPDATE time_slots
		SET is_booked = FALSE, booked_by = NULL
		WHERE id = $1 AND is_booked = TRUE AND booked_by = $2
	`

	cmdTag, err := s.db.Pool().Exec(ctx, query, slotID, userID)
	if err != nil {
		return false, fmt.Errorf("failed to unbook slot: %w", err)
	}

	return cmdTag.RowsAffected() > 0, nil
}

func (s *PostgresSlotStore) ListFreeSlots(ctx context.Context, withinDays int) ([]*models.TimeSlot, error) {
	query := `
		SELECT ` + slotColumns + `
		FROM time_slots
		WHERE is_booked = FALSE
		  AND slot_date >= CURRENT_DATE
		  AND slot_date < CURRENT_DATE + $1::int
		ORDER BY slot_date, start_time
	`

	return s.querySlots(ctx, query, withinDays)
}

func (s *PostgresSlotStore) ListSlotsByUser(ctx context.Context, userID int64) ([]*models.TimeSlot, error) {
	query := `
		SELECT ` + slotColumns + `
		FROM time_slots
		WHERE booked_by = $1 AND is_booked = TRUE
		ORDER BY slot_date, start_time
	`

	return s.querySlots(ctx, query, userID)
}

func (s *PostgresSlotStore) ListSlots(ctx context.Context, withinDays int) ([]*models.TimeSlot, error) {
	query := `
		SELECT ` + slotColumns + `
		FROM time_slots
		WHERE slot_date >= CURRENT_DATE
		  AND slot_date < CURRENT_DATE + $1::int
		ORDER BY slot_date, start_time
	`

	return s.querySlots(ctx, query, withinDays)
}

func (s *PostgresSlotStore) querySlots(ctx context.Context, query string, args ...interface{}) ([]*models.TimeSlot, error) {
	rows, err := s.db.Pool().Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list slots: %w", err)
	}
	defer rows.Close()

	var slots []*models.TimeSlot
	for rows.Next() {
		slot, err := scanSlot(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		slots = append(slots, slot)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return slots, nil
}

package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"spa_salon_backend/internal/models"
)

// ShiftRepository defines the interface for shift catalog database operations.
// Shifts are reference data; rows referenced by work schedules are never deleted.
type ShiftRepository interface {
	CreateShift(executor SQLExecutor, shift *models.Shift) (*models.Shift, error)
	GetShiftByID(id int64) (*models.Shift, error)
	ListShifts() ([]models.Shift, error)
	UpdateShift(executor SQLExecutor, shift *models.Shift) (*models.Shift, error)
}

type shiftRepository struct {
	db *sql.DB
}

// NewShiftRepository creates a new instance of ShiftRepository.
func NewShiftRepository(db *sql.DB) ShiftRepository {
	return &shiftRepository{db: db}
}

func (r *shiftRepository) CreateShift(executor SQLExecutor, shift *models.Shift) (*models.Shift, error) {
	query := `INSERT INTO shifts (label, start_time, end_time, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5)
	          RETURNING id, created_at, updated_at`

	currentTime := time.Now()
	shift.CreatedAt = currentTime
	shift.UpdatedAt = currentTime

	err := executor.QueryRow(query,
		shift.Label, shift.StartTime, shift.EndTime, shift.CreatedAt, shift.UpdatedAt,
	).Scan(&shift.ID, &shift.CreatedAt, &shift.UpdatedAt)

	if err != nil {
		if isUniqueViolation(err, "shifts_label_key") {
			return nil, fmt.Errorf("%w: shift label %q already exists", ErrDuplicateKey, shift.Label)
		}
		return nil, fmt.Errorf("%w: creating shift: %v", ErrDatabaseError, err)
	}
	return shift, nil
}

func (r *shiftRepository) GetShiftByID(id int64) (*models.Shift, error) {
	shift := &models.Shift{}
	query := `SELECT id, label, start_time, end_time, created_at, updated_at
	          FROM shifts WHERE id = $1`

	err := r.db.QueryRow(query, id).Scan(
		&shift.ID, &shift.Label, &shift.StartTime, &shift.EndTime,
		&shift.CreatedAt, &shift.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting shift by ID %d: %v", ErrDatabaseError, id, err)
	}
	return shift, nil
}

func (r *shiftRepository) ListShifts() ([]models.Shift, error) {
	shifts := []models.Shift{}
	query := `SELECT id, label, start_time, end_time, created_at, updated_at
	          FROM shifts ORDER BY start_time ASC, id ASC`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("%w: querying shifts: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var shift models.Shift
		if err := rows.Scan(
			&shift.ID, &shift.Label, &shift.StartTime, &shift.EndTime,
			&shift.CreatedAt, &shift.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("%w: scanning shift: %v", ErrDatabaseError, err)
		}
		shifts = append(shifts, shift)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating shift rows: %v", ErrDatabaseError, err)
	}
	return shifts, nil
}

func (r *shiftRepository) UpdateShift(executor SQLExecutor, shift *models.Shift) (*models.Shift, error) {
	query := `UPDATE shifts SET label = $1, start_time = $2, end_time = $3, updated_at = $4
	          WHERE id = $5
	          RETURNING updated_at`
	shift.UpdatedAt = time.Now()

	err := executor.QueryRow(query,
		shift.Label, shift.StartTime, shift.EndTime, shift.UpdatedAt, shift.ID,
	).Scan(&shift.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		if isUniqueViolation(err, "shifts_label_key") {
			return nil, fmt.Errorf("%w: shift label %q already exists", ErrDuplicateKey, shift.Label)
		}
		return nil, fmt.Errorf("%w: updating shift ID %d: %v", ErrDatabaseError, shift.ID, err)
	}
	return shift, nil
}

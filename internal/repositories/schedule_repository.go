package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"spa_salon_backend/internal/models"
)

// ScheduleRepository defines the interface for work schedule database
// operations. A work schedule row is unique per (staff_id, work_date,
// shift_id); the unique constraint is the serialization point for concurrent
// creates.
type ScheduleRepository interface {
	CreateWorkSchedule(executor SQLExecutor, ws *models.WorkSchedule) (*models.WorkSchedule, error)
	// CreateMultiShift creates one row per shift ID in a single transaction.
	// Either all rows are created or none are.
	CreateMultiShift(staffID int64, workDate string, shiftIDs []int64) ([]models.WorkSchedule, error)
	GetWorkSchedule(staffID int64, workDate string, shiftID int64) (*models.WorkSchedule, error)
	// ListForMonth returns all rows for the staff member within the month,
	// ordered by date then shift start time.
	ListForMonth(staffID int64, month time.Month, year int) ([]models.WorkSchedule, error)
	// ListForDate returns all rows (any status) for the staff member on the
	// date, with shift details, ordered by shift start time.
	ListForDate(staffID int64, workDate string) ([]models.WorkSchedule, error)
	// MarkOnLeave transitions a Scheduled row to OnLeave. Returns ErrNotFound
	// when no row is in the Scheduled state for the key.
	MarkOnLeave(executor SQLExecutor, staffID int64, workDate string, shiftID int64) error
	// MarkReplaced transitions an OnLeave row to Replaced, recording the
	// replacement staff member. Returns ErrNotFound when no row is OnLeave.
	MarkReplaced(executor SQLExecutor, staffID int64, workDate string, shiftID, replacementStaffID int64) error
}

type scheduleRepository struct {
	db *sql.DB
}

// NewScheduleRepository creates a new instance of ScheduleRepository.
func NewScheduleRepository(db *sql.DB) ScheduleRepository {
	return &scheduleRepository{db: db}
}

const workScheduleInsert = `INSERT INTO work_schedules (staff_id, work_date, shift_id, status, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6)
	RETURNING id, created_at, updated_at`

func (r *scheduleRepository) CreateWorkSchedule(executor SQLExecutor, ws *models.WorkSchedule) (*models.WorkSchedule, error) {
	currentTime := time.Now()
	ws.Status = models.ScheduleStatusScheduled
	ws.CreatedAt = currentTime
	ws.UpdatedAt = currentTime

	err := executor.QueryRow(workScheduleInsert,
		ws.StaffID, ws.WorkDate, ws.ShiftID, ws.Status, ws.CreatedAt, ws.UpdatedAt,
	).Scan(&ws.ID, &ws.CreatedAt, &ws.UpdatedAt)

	if err != nil {
		if isUniqueViolation(err, "work_schedules_staff_date_shift_key") {
			return nil, fmt.Errorf("%w: schedule exists for staff %d, date %s, shift %d",
				ErrDuplicateKey, ws.StaffID, ws.WorkDate, ws.ShiftID)
		}
		if isForeignKeyViolation(err) {
			return nil, fmt.Errorf("%w: staff %d or shift %d not found", ErrNotFound, ws.StaffID, ws.ShiftID)
		}
		return nil, fmt.Errorf("%w: creating work schedule: %v", ErrDatabaseError, err)
	}
	return ws, nil
}

func (r *scheduleRepository) CreateMultiShift(staffID int64, workDate string, shiftIDs []int64) ([]models.WorkSchedule, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("%w: starting multi-shift transaction: %v", ErrDatabaseError, err)
	}
	defer tx.Rollback()

	created := make([]models.WorkSchedule, 0, len(shiftIDs))
	for _, shiftID := range shiftIDs {
		ws := models.WorkSchedule{
			StaffID:  staffID,
			WorkDate: workDate,
			ShiftID:  shiftID,
		}
		if _, err := r.CreateWorkSchedule(tx, &ws); err != nil {
			return nil, fmt.Errorf("shift %d: %w", shiftID, err)
		}
		created = append(created, ws)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: committing multi-shift transaction: %v", ErrDatabaseError, err)
	}
	return created, nil
}

func scanWorkScheduleRow(row scanner, withShift bool) (*models.WorkSchedule, error) {
	var ws models.WorkSchedule
	var replacement sql.NullInt64

	dest := []interface{}{
		&ws.ID, &ws.StaffID, &ws.WorkDate, &ws.ShiftID, &ws.Status,
		&replacement, &ws.CreatedAt, &ws.UpdatedAt,
	}
	var shift models.Shift
	if withShift {
		dest = append(dest, &shift.ID, &shift.Label, &shift.StartTime, &shift.EndTime)
	}

	if err := row.Scan(dest...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: scanning work schedule: %v", ErrDatabaseError, err)
	}
	if replacement.Valid {
		ws.ReplacementStaffID = &replacement.Int64
	}
	if withShift {
		ws.Shift = &shift
	}
	return &ws, nil
}

func (r *scheduleRepository) GetWorkSchedule(staffID int64, workDate string, shiftID int64) (*models.WorkSchedule, error) {
	query := `SELECT ws.id, ws.staff_id, to_char(ws.work_date, 'YYYY-MM-DD'), ws.shift_id, ws.status,
	                 ws.replacement_staff_id, ws.created_at, ws.updated_at,
	                 s.id, s.label, s.start_time, s.end_time
	          FROM work_schedules ws
	          JOIN shifts s ON ws.shift_id = s.id
	          WHERE ws.staff_id = $1 AND ws.work_date = $2 AND ws.shift_id = $3`
	return scanWorkScheduleRow(r.db.QueryRow(query, staffID, workDate, shiftID), true)
}

func (r *scheduleRepository) listSchedules(query string, args ...interface{}) ([]models.WorkSchedule, error) {
	schedules := []models.WorkSchedule{}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: querying work schedules: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		ws, err := scanWorkScheduleRow(rows, true)
		if err != nil {
			return nil, err
		}
		schedules = append(schedules, *ws)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating work schedule rows: %v", ErrDatabaseError, err)
	}
	return schedules, nil
}

func (r *scheduleRepository) ListForMonth(staffID int64, month time.Month, year int) ([]models.WorkSchedule, error) {
	query := `SELECT ws.id, ws.staff_id, to_char(ws.work_date, 'YYYY-MM-DD'), ws.shift_id, ws.status,
	                 ws.replacement_staff_id, ws.created_at, ws.updated_at,
	                 s.id, s.label, s.start_time, s.end_time
	          FROM work_schedules ws
	          JOIN shifts s ON ws.shift_id = s.id
	          WHERE ws.staff_id = $1
	            AND EXTRACT(MONTH FROM ws.work_date) = $2
	            AND EXTRACT(YEAR FROM ws.work_date) = $3
	          ORDER BY ws.work_date ASC, s.start_time ASC`
	return r.listSchedules(query, staffID, int(month), year)
}

func (r *scheduleRepository) ListForDate(staffID int64, workDate string) ([]models.WorkSchedule, error) {
	query := `SELECT ws.id, ws.staff_id, to_char(ws.work_date, 'YYYY-MM-DD'), ws.shift_id, ws.status,
	                 ws.replacement_staff_id, ws.created_at, ws.updated_at,
	                 s.id, s.label, s.start_time, s.end_time
	          FROM work_schedules ws
	          JOIN shifts s ON ws.shift_id = s.id
	          WHERE ws.staff_id = $1 AND ws.work_date = $2
	          ORDER BY s.start_time ASC`
	return r.listSchedules(query, staffID, workDate)
}

func (r *scheduleRepository) transitionStatus(executor SQLExecutor, staffID int64, workDate string, shiftID int64, from, to models.WorkScheduleStatus, replacementStaffID *int64) error {
	query := `UPDATE work_schedules
	          SET status = $1, replacement_staff_id = COALESCE($2, replacement_staff_id), updated_at = $3
	          WHERE staff_id = $4 AND work_date = $5 AND shift_id = $6 AND status = $7`

	var replacement sql.NullInt64
	if replacementStaffID != nil {
		replacement = sql.NullInt64{Int64: *replacementStaffID, Valid: true}
	}

	result, err := executor.Exec(query, to, replacement, time.Now(), staffID, workDate, shiftID, from)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: replacement staff not found", ErrNotFound)
		}
		return fmt.Errorf("%w: transitioning schedule to %s: %v", ErrDatabaseError, to, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *scheduleRepository) MarkOnLeave(executor SQLExecutor, staffID int64, workDate string, shiftID int64) error {
	return r.transitionStatus(executor, staffID, workDate, shiftID,
		models.ScheduleStatusScheduled, models.ScheduleStatusOnLeave, nil)
}

func (r *scheduleRepository) MarkReplaced(executor SQLExecutor, staffID int64, workDate string, shiftID, replacementStaffID int64) error {
	return r.transitionStatus(executor, staffID, workDate, shiftID,
		models.ScheduleStatusOnLeave, models.ScheduleStatusReplaced, &replacementStaffID)
}

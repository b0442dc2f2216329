package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"spa_salon_backend/internal/models"

	"github.com/lib/pq"
)

// LeaveRepository defines the interface for staff leave database operations.
type LeaveRepository interface {
	CreateLeave(leave *models.StaffLeave) (*models.StaffLeave, error)
	GetLeaveByID(id int64) (*models.StaffLeave, error)
	GetLeaves(staffID *int64, status *models.LeaveStatus, page, pageSize int) ([]models.StaffLeave, int, error)
	// ApproveLeave atomically transitions a Pending leave to Approved and marks
	// the covered Scheduled work schedule rows OnLeave. Returns ErrNotFound
	// when no Pending leave matches the ID.
	ApproveLeave(leaveID, approverID int64, note *string) (*models.StaffLeave, error)
	// RejectLeave transitions a Pending leave to Rejected. Returns ErrNotFound
	// when no Pending leave matches the ID.
	RejectLeave(leaveID, approverID int64, note *string) error
	// GetApprovedShiftIDs returns the shift IDs covered by approved leaves for
	// the staff member on the date.
	GetApprovedShiftIDs(staffID int64, date string) ([]int64, error)
}

type leaveRepository struct {
	db *sql.DB
}

// NewLeaveRepository creates a new instance of LeaveRepository.
func NewLeaveRepository(db *sql.DB) LeaveRepository {
	return &leaveRepository{db: db}
}

func (r *leaveRepository) CreateLeave(leave *models.StaffLeave) (*models.StaffLeave, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("%w: starting leave transaction: %v", ErrDatabaseError, err)
	}
	defer tx.Rollback()

	query := `INSERT INTO staff_leaves (staff_id, leave_date, reason, status, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          RETURNING id, created_at, updated_at`

	currentTime := time.Now()
	leave.Status = models.LeaveStatusPending
	leave.CreatedAt = currentTime
	leave.UpdatedAt = currentTime

	err = tx.QueryRow(query,
		leave.StaffID, leave.LeaveDate, leave.Reason, leave.Status,
		leave.CreatedAt, leave.UpdatedAt,
	).Scan(&leave.ID, &leave.CreatedAt, &leave.UpdatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, fmt.Errorf("%w: staff %d not found", ErrNotFound, leave.StaffID)
		}
		return nil, fmt.Errorf("%w: creating staff leave: %v", ErrDatabaseError, err)
	}

	for _, shiftID := range leave.ShiftIDs {
		if _, err := tx.Exec(
			`INSERT INTO staff_leave_shifts (leave_id, shift_id) VALUES ($1, $2)`,
			leave.ID, shiftID,
		); err != nil {
			if isForeignKeyViolation(err) {
				return nil, fmt.Errorf("%w: shift %d not found", ErrNotFound, shiftID)
			}
			if isUniqueViolation(err, "") {
				return nil, fmt.Errorf("%w: shift %d listed twice on leave", ErrDuplicateKey, shiftID)
			}
			return nil, fmt.Errorf("%w: linking leave shift %d: %v", ErrDatabaseError, shiftID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: committing leave transaction: %v", ErrDatabaseError, err)
	}
	return leave, nil
}

func scanLeaveRow(row scanner) (*models.StaffLeave, error) {
	var leave models.StaffLeave
	var reason, note sql.NullString
	var approverID sql.NullInt64
	var shiftIDs pq.Int64Array

	err := row.Scan(
		&leave.ID, &leave.StaffID, &leave.LeaveDate, &reason, &leave.Status,
		&approverID, &note, &leave.CreatedAt, &leave.UpdatedAt, &shiftIDs,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: scanning staff leave: %v", ErrDatabaseError, err)
	}

	if reason.Valid {
		leave.Reason = &reason.String
	}
	if note.Valid {
		leave.ApproverNote = &note.String
	}
	if approverID.Valid {
		leave.ApproverID = &approverID.Int64
	}
	leave.ShiftIDs = []int64(shiftIDs)
	return &leave, nil
}

const leaveSelect = `SELECT sl.id, sl.staff_id, to_char(sl.leave_date, 'YYYY-MM-DD'), sl.reason, sl.status,
	       sl.approver_id, sl.approver_note, sl.created_at, sl.updated_at,
	       COALESCE(ARRAY_AGG(sls.shift_id ORDER BY sls.shift_id) FILTER (WHERE sls.shift_id IS NOT NULL), '{}')
	FROM staff_leaves sl
	LEFT JOIN staff_leave_shifts sls ON sls.leave_id = sl.id`

func (r *leaveRepository) GetLeaveByID(id int64) (*models.StaffLeave, error) {
	query := leaveSelect + `
	WHERE sl.id = $1
	GROUP BY sl.id`
	return scanLeaveRow(r.db.QueryRow(query, id))
}

func (r *leaveRepository) GetLeaves(staffID *int64, status *models.LeaveStatus, page, pageSize int) ([]models.StaffLeave, int, error) {
	leaves := []models.StaffLeave{}
	totalCount := 0

	query := `SELECT sl.id, sl.staff_id, to_char(sl.leave_date, 'YYYY-MM-DD'), sl.reason, sl.status,
	       sl.approver_id, sl.approver_note, sl.created_at, sl.updated_at,
	       COALESCE(ARRAY_AGG(sls.shift_id ORDER BY sls.shift_id) FILTER (WHERE sls.shift_id IS NOT NULL), '{}'),
	       COUNT(*) OVER() as total_count
	FROM staff_leaves sl
	LEFT JOIN staff_leave_shifts sls ON sls.leave_id = sl.id
	WHERE ($1::bigint IS NULL OR sl.staff_id = $1)
	  AND ($2::text IS NULL OR sl.status = $2)
	GROUP BY sl.id
	ORDER BY sl.leave_date DESC, sl.id DESC
	LIMIT $3 OFFSET $4`

	var staffArg sql.NullInt64
	if staffID != nil {
		staffArg = sql.NullInt64{Int64: *staffID, Valid: true}
	}
	var statusArg sql.NullString
	if status != nil {
		statusArg = sql.NullString{String: string(*status), Valid: true}
	}
	offset := (page - 1) * pageSize

	rows, err := r.db.Query(query, staffArg, statusArg, pageSize, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: querying staff leaves: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var leave models.StaffLeave
		var reason, note sql.NullString
		var approverID sql.NullInt64
		var shiftIDs pq.Int64Array
		var currentTotalCount int

		if err := rows.Scan(
			&leave.ID, &leave.StaffID, &leave.LeaveDate, &reason, &leave.Status,
			&approverID, &note, &leave.CreatedAt, &leave.UpdatedAt, &shiftIDs,
			&currentTotalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("%w: scanning staff leave: %v", ErrDatabaseError, err)
		}
		totalCount = currentTotalCount

		if reason.Valid {
			leave.Reason = &reason.String
		}
		if note.Valid {
			leave.ApproverNote = &note.String
		}
		if approverID.Valid {
			leave.ApproverID = &approverID.Int64
		}
		leave.ShiftIDs = []int64(shiftIDs)
		leaves = append(leaves, leave)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating staff leave rows: %v", ErrDatabaseError, err)
	}
	return leaves, totalCount, nil
}

func (r *leaveRepository) ApproveLeave(leaveID, approverID int64, note *string) (*models.StaffLeave, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("%w: starting approve transaction: %v", ErrDatabaseError, err)
	}
	defer tx.Rollback()

	// The status predicate makes the transition race-safe: a concurrent
	// approval sees zero rows affected.
	query := `UPDATE staff_leaves
	          SET status = $1, approver_id = $2, approver_note = $3, updated_at = $4
	          WHERE id = $5 AND status = $6
	          RETURNING staff_id, to_char(leave_date, 'YYYY-MM-DD')`

	var staffID int64
	var leaveDate string
	err = tx.QueryRow(query,
		models.LeaveStatusApproved, approverID, note, time.Now(),
		leaveID, models.LeaveStatusPending,
	).Scan(&staffID, &leaveDate)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: approving leave ID %d: %v", ErrDatabaseError, leaveID, err)
	}

	// Covered Scheduled rows flip to OnLeave in the same transaction; rows
	// already OnLeave or Replaced are left untouched.
	_, err = tx.Exec(`UPDATE work_schedules
	          SET status = $1, updated_at = $2
	          WHERE staff_id = $3 AND work_date = $4 AND status = $5
	            AND shift_id IN (SELECT shift_id FROM staff_leave_shifts WHERE leave_id = $6)`,
		models.ScheduleStatusOnLeave, time.Now(), staffID, leaveDate,
		models.ScheduleStatusScheduled, leaveID,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: marking schedules on leave for leave ID %d: %v", ErrDatabaseError, leaveID, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: committing approve transaction: %v", ErrDatabaseError, err)
	}
	return r.GetLeaveByID(leaveID)
}

func (r *leaveRepository) GetApprovedShiftIDs(staffID int64, date string) ([]int64, error) {
	shiftIDs := []int64{}

	query := `SELECT DISTINCT sls.shift_id
	          FROM staff_leaves sl
	          JOIN staff_leave_shifts sls ON sls.leave_id = sl.id
	          WHERE sl.staff_id = $1 AND sl.leave_date = $2 AND sl.status = $3
	          ORDER BY sls.shift_id ASC`

	rows, err := r.db.Query(query, staffID, date, models.LeaveStatusApproved)
	if err != nil {
		return nil, fmt.Errorf("%w: querying approved leave shifts: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var shiftID int64
		if err := rows.Scan(&shiftID); err != nil {
			return nil, fmt.Errorf("%w: scanning approved leave shift: %v", ErrDatabaseError, err)
		}
		shiftIDs = append(shiftIDs, shiftID)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating approved leave shift rows: %v", ErrDatabaseError, err)
	}
	return shiftIDs, nil
}

func (r *leaveRepository) RejectLeave(leaveID, approverID int64, note *string) error {
	query := `UPDATE staff_leaves
	          SET status = $1, approver_id = $2, approver_note = $3, updated_at = $4
	          WHERE id = $5 AND status = $6`

	result, err := r.db.Exec(query,
		models.LeaveStatusRejected, approverID, note, time.Now(),
		leaveID, models.LeaveStatusPending,
	)
	if err != nil {
		return fmt.Errorf("%w: rejecting leave ID %d: %v", ErrDatabaseError, leaveID, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

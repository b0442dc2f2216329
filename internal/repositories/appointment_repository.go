package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"spa_salon_backend/internal/models"

	"github.com/lib/pq"
)

// AppointmentFilters narrows appointment list queries.
type AppointmentFilters struct {
	StaffID    *int64
	CustomerID *int64
	BranchID   *int64
	Date       *string // YYYY-MM-DD
	Status     *models.AppointmentStatus
	Page       int
	PageSize   int
}

// AppointmentRepository defines the interface for appointment database operations.
type AppointmentRepository interface {
	CreateAppointment(executor SQLExecutor, appt *models.Appointment) (*models.Appointment, error)
	GetAppointmentByID(id int64) (*models.Appointment, error)
	GetAppointments(filters AppointmentFilters) ([]models.Appointment, int, error)
	// GetActiveByStaffDate returns Booked and InProgress appointments for the
	// staff member on the date, ordered by start time.
	GetActiveByStaffDate(staffID int64, date string) ([]models.Appointment, error)
	UpdateStatus(executor SQLExecutor, id int64, status models.AppointmentStatus) error
	UpdatePaymentStatus(executor SQLExecutor, id int64, status models.PaymentStatus) error
	// ReassignStaff atomically moves the appointment to the replacement staff
	// member and marks the original work schedule row Replaced.
	ReassignStaff(appointmentID, fromStaffID, toStaffID int64, workDate string, shiftID int64) error
	// GetLastAssignmentTimes returns, per staff member, the most recent time an
	// appointment was assigned to them. Staff with no appointments are absent
	// from the map.
	GetLastAssignmentTimes(staffIDs []int64) (map[int64]time.Time, error)
}

type appointmentRepository struct {
	db *sql.DB
}

// NewAppointmentRepository creates a new instance of AppointmentRepository.
func NewAppointmentRepository(db *sql.DB) AppointmentRepository {
	return &appointmentRepository{db: db}
}

func (r *appointmentRepository) CreateAppointment(executor SQLExecutor, appt *models.Appointment) (*models.Appointment, error) {
	query := `INSERT INTO appointments
	          (customer_id, staff_id, service_id, branch_id, appointment_date, start_time,
	           duration_minutes, status, payment_status, price, notes, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	          RETURNING id, created_at, updated_at`

	currentTime := time.Now()
	appt.CreatedAt = currentTime
	appt.UpdatedAt = currentTime

	err := executor.QueryRow(query,
		appt.CustomerID, appt.StaffID, appt.ServiceID, appt.BranchID,
		appt.AppointmentDate, appt.StartTime, appt.DurationMinutes,
		appt.Status, appt.PaymentStatus, appt.Price, appt.Notes,
		appt.CreatedAt, appt.UpdatedAt,
	).Scan(&appt.ID, &appt.CreatedAt, &appt.UpdatedAt)

	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, fmt.Errorf("%w: customer, staff, service or branch not found", ErrNotFound)
		}
		return nil, fmt.Errorf("%w: creating appointment: %v", ErrDatabaseError, err)
	}
	return appt, nil
}

const appointmentSelect = `SELECT a.id, a.customer_id, a.staff_id, a.service_id, a.branch_id,
	       to_char(a.appointment_date, 'YYYY-MM-DD'), a.start_time, a.duration_minutes,
	       a.status, a.payment_status, a.price, a.notes, a.created_at, a.updated_at,
	       c.full_name, c.phone_number, so.name, so.duration_minutes
	FROM appointments a
	JOIN customers c ON a.customer_id = c.id
	JOIN service_offerings so ON a.service_id = so.id`

func scanAppointmentRow(row scanner, extra ...interface{}) (*models.Appointment, error) {
	var appt models.Appointment
	var notes sql.NullString
	var customer models.Customer
	var service models.ServiceOffering

	dest := []interface{}{
		&appt.ID, &appt.CustomerID, &appt.StaffID, &appt.ServiceID, &appt.BranchID,
		&appt.AppointmentDate, &appt.StartTime, &appt.DurationMinutes,
		&appt.Status, &appt.PaymentStatus, &appt.Price, &notes,
		&appt.CreatedAt, &appt.UpdatedAt,
		&customer.FullName, &customer.PhoneNumber, &service.Name, &service.DurationMinutes,
	}
	dest = append(dest, extra...)

	if err := row.Scan(dest...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: scanning appointment: %v", ErrDatabaseError, err)
	}

	if notes.Valid {
		appt.Notes = &notes.String
	}
	customer.ID = appt.CustomerID
	service.ID = appt.ServiceID
	appt.Customer = &customer
	appt.Service = &service
	return &appt, nil
}

func (r *appointmentRepository) GetAppointmentByID(id int64) (*models.Appointment, error) {
	query := appointmentSelect + ` WHERE a.id = $1`
	return scanAppointmentRow(r.db.QueryRow(query, id))
}

func (r *appointmentRepository) GetAppointments(filters AppointmentFilters) ([]models.Appointment, int, error) {
	appointments := []models.Appointment{}
	totalCount := 0

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT a.id, a.customer_id, a.staff_id, a.service_id, a.branch_id,
	       to_char(a.appointment_date, 'YYYY-MM-DD'), a.start_time, a.duration_minutes,
	       a.status, a.payment_status, a.price, a.notes, a.created_at, a.updated_at,
	       c.full_name, c.phone_number, so.name, so.duration_minutes,
	       COUNT(*) OVER() as total_count
	FROM appointments a
	JOIN customers c ON a.customer_id = c.id
	JOIN service_offerings so ON a.service_id = so.id`)

	var conditions []string
	var args []interface{}
	argCount := 1

	addCondition := func(clause string, value interface{}) {
		conditions = append(conditions, fmt.Sprintf(clause, argCount))
		args = append(args, value)
		argCount++
	}

	if filters.StaffID != nil {
		addCondition("a.staff_id = $%d", *filters.StaffID)
	}
	if filters.CustomerID != nil {
		addCondition("a.customer_id = $%d", *filters.CustomerID)
	}
	if filters.BranchID != nil {
		addCondition("a.branch_id = $%d", *filters.BranchID)
	}
	if filters.Date != nil {
		addCondition("a.appointment_date = $%d", *filters.Date)
	}
	if filters.Status != nil {
		addCondition("a.status = $%d", *filters.Status)
	}

	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	queryBuilder.WriteString(" ORDER BY a.appointment_date DESC, a.start_time DESC")

	if filters.PageSize > 0 {
		queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d", argCount))
		args = append(args, filters.PageSize)
		argCount++
		if filters.Page > 0 {
			offset := (filters.Page - 1) * filters.PageSize
			queryBuilder.WriteString(fmt.Sprintf(" OFFSET $%d", argCount))
			args = append(args, offset)
		}
	}

	rows, err := r.db.Query(queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: querying appointments: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var currentTotalCount int
		appt, err := scanAppointmentRow(rows, &currentTotalCount)
		if err != nil {
			return nil, 0, err
		}
		totalCount = currentTotalCount
		appointments = append(appointments, *appt)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating appointment rows: %v", ErrDatabaseError, err)
	}
	return appointments, totalCount, nil
}

func (r *appointmentRepository) GetActiveByStaffDate(staffID int64, date string) ([]models.Appointment, error) {
	appointments := []models.Appointment{}

	query := appointmentSelect + `
	WHERE a.staff_id = $1 AND a.appointment_date = $2 AND a.status = ANY($3)
	ORDER BY a.start_time ASC`

	statuses := make([]string, len(models.ActiveAppointmentStatuses))
	for i, s := range models.ActiveAppointmentStatuses {
		statuses[i] = string(s)
	}

	rows, err := r.db.Query(query, staffID, date, pq.Array(statuses))
	if err != nil {
		return nil, fmt.Errorf("%w: querying active appointments: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		appt, err := scanAppointmentRow(rows)
		if err != nil {
			return nil, err
		}
		appointments = append(appointments, *appt)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating active appointment rows: %v", ErrDatabaseError, err)
	}
	return appointments, nil
}

func (r *appointmentRepository) UpdateStatus(executor SQLExecutor, id int64, status models.AppointmentStatus) error {
	result, err := executor.Exec(
		`UPDATE appointments SET status = $1, updated_at = $2 WHERE id = $3`,
		status, time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("%w: updating appointment %d status: %v", ErrDatabaseError, id, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *appointmentRepository) UpdatePaymentStatus(executor SQLExecutor, id int64, status models.PaymentStatus) error {
	result, err := executor.Exec(
		`UPDATE appointments SET payment_status = $1, updated_at = $2 WHERE id = $3`,
		status, time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("%w: updating appointment %d payment status: %v", ErrDatabaseError, id, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *appointmentRepository) ReassignStaff(appointmentID, fromStaffID, toStaffID int64, workDate string, shiftID int64) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("%w: starting reassign transaction: %v", ErrDatabaseError, err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(
		`UPDATE appointments SET staff_id = $1, updated_at = $2 WHERE id = $3 AND staff_id = $4`,
		toStaffID, time.Now(), appointmentID, fromStaffID,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: replacement staff %d not found", ErrNotFound, toStaffID)
		}
		return fmt.Errorf("%w: reassigning appointment %d: %v", ErrDatabaseError, appointmentID, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}

	// The original schedule row records who took over; OnLeave -> Replaced.
	result, err = tx.Exec(`UPDATE work_schedules
	          SET status = $1, replacement_staff_id = $2, updated_at = $3
	          WHERE staff_id = $4 AND work_date = $5 AND shift_id = $6 AND status = $7`,
		models.ScheduleStatusReplaced, toStaffID, time.Now(),
		fromStaffID, workDate, shiftID, models.ScheduleStatusOnLeave,
	)
	if err != nil {
		return fmt.Errorf("%w: marking schedule replaced for appointment %d: %v", ErrDatabaseError, appointmentID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: committing reassign transaction: %v", ErrDatabaseError, err)
	}
	return nil
}

func (r *appointmentRepository) GetLastAssignmentTimes(staffIDs []int64) (map[int64]time.Time, error) {
	assignments := make(map[int64]time.Time, len(staffIDs))
	if len(staffIDs) == 0 {
		return assignments, nil
	}

	query := `SELECT staff_id, MAX(updated_at)
	          FROM appointments
	          WHERE staff_id = ANY($1)
	          GROUP BY staff_id`

	rows, err := r.db.Query(query, pq.Array(staffIDs))
	if err != nil {
		return nil, fmt.Errorf("%w: querying last assignment times: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var staffID int64
		var lastAssigned time.Time
		if err := rows.Scan(&staffID, &lastAssigned); err != nil {
			return nil, fmt.Errorf("%w: scanning last assignment time: %v", ErrDatabaseError, err)
		}
		assignments[staffID] = lastAssigned
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating last assignment rows: %v", ErrDatabaseError, err)
	}
	return assignments, nil
}

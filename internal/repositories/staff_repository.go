package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"spa_salon_backend/internal/models"
)

// StaffRepository defines the interface for staff member and staff-service
// association database operations.
type StaffRepository interface {
	CreateStaffMember(executor SQLExecutor, staff *models.StaffMember) (*models.StaffMember, error)
	GetStaffMemberByID(id int64) (*models.StaffMember, error)
	GetStaffMemberByUserID(userID int64) (*models.StaffMember, error)
	GetStaffMembers(page, pageSize int, searchTerm *string) ([]models.StaffMember, int, error)
	UpdateStaffMember(executor SQLExecutor, staff *models.StaffMember) (*models.StaffMember, error)

	// Staff-service eligibility association.
	AddStaffService(executor SQLExecutor, staffID, serviceID int64) error
	RemoveStaffService(executor SQLExecutor, staffID, serviceID int64) error
	GetServicesForStaff(staffID int64) ([]int64, error)
	// GetStaffForBranchService returns active staff of the branch who offer the
	// service, ordered by staff ID for determinism.
	GetStaffForBranchService(branchID, serviceID int64) ([]models.StaffMember, error)
}

type staffRepository struct {
	db *sql.DB
}

// NewStaffRepository creates a new instance of StaffRepository.
func NewStaffRepository(db *sql.DB) StaffRepository {
	return &staffRepository{db: db}
}

func (r *staffRepository) CreateStaffMember(executor SQLExecutor, staff *models.StaffMember) (*models.StaffMember, error) {
	query := `INSERT INTO staff_members (user_id, branch_id, phone_number, hire_date, position, is_active, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	          RETURNING id, created_at, updated_at`

	currentTime := time.Now()
	staff.CreatedAt = currentTime
	staff.UpdatedAt = currentTime

	var hireDate sql.NullString
	if staff.HireDate != nil {
		hireDate = sql.NullString{String: *staff.HireDate, Valid: true}
	}

	err := executor.QueryRow(query,
		staff.UserID, staff.BranchID, staff.PhoneNumber, hireDate,
		staff.Position, staff.IsActive, staff.CreatedAt, staff.UpdatedAt,
	).Scan(&staff.ID, &staff.CreatedAt, &staff.UpdatedAt)

	if err != nil {
		if isUniqueViolation(err, "staff_members_user_id_key") {
			return nil, fmt.Errorf("%w: user_id %d is already associated with another staff member", ErrDuplicateKey, *staff.UserID)
		}
		if isForeignKeyViolation(err) {
			return nil, fmt.Errorf("%w: user or branch for staff member not found", ErrNotFound)
		}
		return nil, fmt.Errorf("%w: creating staff member: %v", ErrDatabaseError, err)
	}
	return staff, nil
}

const staffMemberSelect = `SELECT
	    sm.id, sm.user_id, sm.branch_id, sm.phone_number, sm.hire_date,
	    sm.position, sm.is_active, sm.created_at, sm.updated_at,
	    u.username, u.full_name, b.name
	  FROM staff_members sm
	  LEFT JOIN users u ON sm.user_id = u.id
	  JOIN branches b ON sm.branch_id = b.id`

func scanStaffMemberRow(row scanner, extra ...interface{}) (*models.StaffMember, error) {
	var staff models.StaffMember
	var hireDate, username, userFullName sql.NullString
	var branchName string

	dest := []interface{}{
		&staff.ID, &staff.UserID, &staff.BranchID, &staff.PhoneNumber, &hireDate,
		&staff.Position, &staff.IsActive, &staff.CreatedAt, &staff.UpdatedAt,
		&username, &userFullName, &branchName,
	}
	dest = append(dest, extra...)

	if err := row.Scan(dest...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: scanning staff member: %v", ErrDatabaseError, err)
	}

	if hireDate.Valid {
		staff.HireDate = &hireDate.String
	}
	if staff.UserID != nil && username.Valid {
		user := &models.User{ID: *staff.UserID, Username: username.String}
		if userFullName.Valid {
			user.FullName = &userFullName.String
		}
		staff.User = user
	}
	staff.Branch = &models.Branch{ID: staff.BranchID, Name: branchName}
	return &staff, nil
}

func (r *staffRepository) GetStaffMemberByID(id int64) (*models.StaffMember, error) {
	return scanStaffMemberRow(r.db.QueryRow(staffMemberSelect+` WHERE sm.id = $1`, id))
}

func (r *staffRepository) GetStaffMemberByUserID(userID int64) (*models.StaffMember, error) {
	return scanStaffMemberRow(r.db.QueryRow(staffMemberSelect+` WHERE sm.user_id = $1`, userID))
}

func (r *staffRepository) GetStaffMembers(page, pageSize int, searchTerm *string) ([]models.StaffMember, int, error) {
	staffMembers := []models.StaffMember{}
	totalCount := 0

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT
	    sm.id, sm.user_id, sm.branch_id, sm.phone_number, sm.hire_date,
	    sm.position, sm.is_active, sm.created_at, sm.updated_at,
	    u.username, u.full_name, b.name,
	    COUNT(*) OVER() as total_count
	  FROM staff_members sm
	  LEFT JOIN users u ON sm.user_id = u.id
	  JOIN branches b ON sm.branch_id = b.id`)

	var args []interface{}
	argCount := 1

	if searchTerm != nil && *searchTerm != "" {
		searchPattern := "%" + strings.ToLower(*searchTerm) + "%"
		queryBuilder.WriteString(fmt.Sprintf(
			" WHERE (LOWER(u.full_name) LIKE $%d OR LOWER(sm.phone_number) LIKE $%d OR LOWER(sm.position) LIKE $%d)",
			argCount, argCount, argCount))
		args = append(args, searchPattern)
		argCount++
	}
	queryBuilder.WriteString(" ORDER BY u.full_name ASC NULLS LAST, sm.id ASC")

	if pageSize > 0 {
		queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d", argCount))
		args = append(args, pageSize)
		argCount++
		if page > 0 {
			queryBuilder.WriteString(fmt.Sprintf(" OFFSET $%d", argCount))
			args = append(args, (page-1)*pageSize)
		}
	}

	rows, err := r.db.Query(queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: querying staff members: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var currentTotalCount int
		staff, err := scanStaffMemberRow(rows, &currentTotalCount)
		if err != nil {
			return nil, 0, err
		}
		totalCount = currentTotalCount
		staffMembers = append(staffMembers, *staff)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating staff member rows: %v", ErrDatabaseError, err)
	}
	return staffMembers, totalCount, nil
}

func (r *staffRepository) UpdateStaffMember(executor SQLExecutor, staff *models.StaffMember) (*models.StaffMember, error) {
	query := `UPDATE staff_members SET
	            branch_id = $1, phone_number = $2, hire_date = $3,
	            position = $4, is_active = $5, updated_at = $6
	          WHERE id = $7
	          RETURNING updated_at`

	staff.UpdatedAt = time.Now()
	var hireDate sql.NullString
	if staff.HireDate != nil {
		hireDate = sql.NullString{String: *staff.HireDate, Valid: true}
	}

	err := executor.QueryRow(query,
		staff.BranchID, staff.PhoneNumber, hireDate, staff.Position,
		staff.IsActive, staff.UpdatedAt, staff.ID,
	).Scan(&staff.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: updating staff member ID %d: %v", ErrDatabaseError, staff.ID, err)
	}
	return staff, nil
}

func (r *staffRepository) AddStaffService(executor SQLExecutor, staffID, serviceID int64) error {
	_, err := executor.Exec(
		`INSERT INTO staff_services (staff_id, service_id) VALUES ($1, $2)`,
		staffID, serviceID,
	)
	if err != nil {
		if isUniqueViolation(err, "") {
			return fmt.Errorf("%w: staff %d already offers service %d", ErrDuplicateKey, staffID, serviceID)
		}
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: staff %d or service %d not found", ErrNotFound, staffID, serviceID)
		}
		return fmt.Errorf("%w: adding staff service: %v", ErrDatabaseError, err)
	}
	return nil
}

func (r *staffRepository) RemoveStaffService(executor SQLExecutor, staffID, serviceID int64) error {
	result, err := executor.Exec(
		`DELETE FROM staff_services WHERE staff_id = $1 AND service_id = $2`,
		staffID, serviceID,
	)
	if err != nil {
		return fmt.Errorf("%w: removing staff service: %v", ErrDatabaseError, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *staffRepository) GetServicesForStaff(staffID int64) ([]int64, error) {
	serviceIDs := []int64{}

	rows, err := r.db.Query(
		`SELECT service_id FROM staff_services WHERE staff_id = $1 ORDER BY service_id ASC`,
		staffID,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: querying services for staff %d: %v", ErrDatabaseError, staffID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var serviceID int64
		if err := rows.Scan(&serviceID); err != nil {
			return nil, fmt.Errorf("%w: scanning staff service: %v", ErrDatabaseError, err)
		}
		serviceIDs = append(serviceIDs, serviceID)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating staff service rows: %v", ErrDatabaseError, err)
	}
	return serviceIDs, nil
}

func (r *staffRepository) GetStaffForBranchService(branchID, serviceID int64) ([]models.StaffMember, error) {
	staffMembers := []models.StaffMember{}

	query := staffMemberSelect + `
	  JOIN staff_services ss ON ss.staff_id = sm.id
	  WHERE sm.branch_id = $1 AND ss.service_id = $2 AND sm.is_active
	  ORDER BY sm.id ASC`

	rows, err := r.db.Query(query, branchID, serviceID)
	if err != nil {
		return nil, fmt.Errorf("%w: querying staff for branch %d service %d: %v", ErrDatabaseError, branchID, serviceID, err)
	}
	defer rows.Close()

	for rows.Next() {
		staff, err := scanStaffMemberRow(rows)
		if err != nil {
			return nil, err
		}
		staffMembers = append(staffMembers, *staff)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating staff rows: %v", ErrDatabaseError, err)
	}
	return staffMembers, nil
}

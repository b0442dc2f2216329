package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"spa_salon_backend/internal/models"
)

// CustomerRepository defines the interface for customer database operations.
type CustomerRepository interface {
	CreateCustomer(executor SQLExecutor, customer *models.Customer) (*models.Customer, error)
	GetCustomerByID(id int64) (*models.Customer, error)
	GetCustomerByPhone(phone string) (*models.Customer, error)
	GetCustomers(page, pageSize int, searchTerm *string) ([]models.Customer, int, error)
	UpdateCustomer(executor SQLExecutor, customer *models.Customer) (*models.Customer, error)
}

type customerRepository struct {
	db *sql.DB
}

// NewCustomerRepository creates a new instance of CustomerRepository.
func NewCustomerRepository(db *sql.DB) CustomerRepository {
	return &customerRepository{db: db}
}

func (r *customerRepository) CreateCustomer(executor SQLExecutor, customer *models.Customer) (*models.Customer, error) {
	query := `INSERT INTO customers (full_name, phone_number, email, notes, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          RETURNING id, created_at, updated_at`

	currentTime := time.Now()
	customer.CreatedAt = currentTime
	customer.UpdatedAt = currentTime

	err := executor.QueryRow(query,
		customer.FullName, customer.PhoneNumber, customer.Email, customer.Notes,
		customer.CreatedAt, customer.UpdatedAt,
	).Scan(&customer.ID, &customer.CreatedAt, &customer.UpdatedAt)

	if err != nil {
		if isUniqueViolation(err, "customers_phone_number_key") {
			return nil, fmt.Errorf("%w: phone number %s already registered", ErrDuplicateKey, customer.PhoneNumber)
		}
		return nil, fmt.Errorf("%w: creating customer: %v", ErrDatabaseError, err)
	}
	return customer, nil
}

func scanCustomerRow(row scanner, extra ...interface{}) (*models.Customer, error) {
	var customer models.Customer
	var email, notes sql.NullString

	dest := []interface{}{
		&customer.ID, &customer.FullName, &customer.PhoneNumber, &email, &notes,
		&customer.CreatedAt, &customer.UpdatedAt,
	}
	dest = append(dest, extra...)

	if err := row.Scan(dest...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: scanning customer: %v", ErrDatabaseError, err)
	}
	if email.Valid {
		customer.Email = &email.String
	}
	if notes.Valid {
		customer.Notes = &notes.String
	}
	return &customer, nil
}

const customerSelect = `SELECT id, full_name, phone_number, email, notes, created_at, updated_at FROM customers`

func (r *customerRepository) GetCustomerByID(id int64) (*models.Customer, error) {
	return scanCustomerRow(r.db.QueryRow(customerSelect+` WHERE id = $1`, id))
}

func (r *customerRepository) GetCustomerByPhone(phone string) (*models.Customer, error) {
	return scanCustomerRow(r.db.QueryRow(customerSelect+` WHERE phone_number = $1`, phone))
}

func (r *customerRepository) GetCustomers(page, pageSize int, searchTerm *string) ([]models.Customer, int, error) {
	customers := []models.Customer{}
	totalCount := 0

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT id, full_name, phone_number, email, notes, created_at, updated_at,
	    COUNT(*) OVER() as total_count
	  FROM customers`)

	var args []interface{}
	argCount := 1

	if searchTerm != nil && *searchTerm != "" {
		searchPattern := "%" + strings.ToLower(*searchTerm) + "%"
		queryBuilder.WriteString(fmt.Sprintf(
			" WHERE (LOWER(full_name) LIKE $%d OR phone_number LIKE $%d)", argCount, argCount))
		args = append(args, searchPattern)
		argCount++
	}
	queryBuilder.WriteString(" ORDER BY full_name ASC")

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
		return nil, 0, fmt.Errorf("%w: querying customers: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var currentTotalCount int
		customer, err := scanCustomerRow(rows, &currentTotalCount)
		if err != nil {
			return nil, 0, err
		}
		totalCount = currentTotalCount
		customers = append(customers, *customer)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating customer rows: %v", ErrDatabaseError, err)
	}
	return customers, totalCount, nil
}

func (r *customerRepository) UpdateCustomer(executor SQLExecutor, customer *models.Customer) (*models.Customer, error) {
	query := `UPDATE customers SET
	            full_name = $1, phone_number = $2, email = $3, notes = $4, updated_at = $5
	          WHERE id = $6
	          RETURNING updated_at`
	customer.UpdatedAt = time.Now()

	err := executor.QueryRow(query,
		customer.FullName, customer.PhoneNumber, customer.Email, customer.Notes,
		customer.UpdatedAt, customer.ID,
	).Scan(&customer.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		if isUniqueViolation(err, "customers_phone_number_key") {
			return nil, fmt.Errorf("%w: phone number %s already registered", ErrDuplicateKey, customer.PhoneNumber)
		}
		return nil, fmt.Errorf("%w: updating customer ID %d: %v", ErrDatabaseError, customer.ID, err)
	}
	return customer, nil
}

package services

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"spa_salon_backend/internal/models"
	"spa_salon_backend/internal/repositories"
)

// --- Custom Service Errors for Customers ---
var (
	ErrCustomerValidation    = errors.New("customer validation error")
	ErrCustomerPhoneConflict = errors.New("customer with this phone number already exists")
)

// --- DTOs ---
type CreateCustomerRequest struct {
	FullName    string  `json:"full_name" binding:"required"`
	PhoneNumber string  `json:"phone_number" binding:"required,e164"`
	Email       *string `json:"email" binding:"omitempty,email"`
	Notes       *string `json:"notes"`
}

type UpdateCustomerRequest struct {
	FullName    *string `json:"full_name"`
	PhoneNumber *string `json:"phone_number" binding:"omitempty,e164"`
	Email       *string `json:"email" binding:"omitempty,email"`
	Notes       *string `json:"notes"`
}

// --- CustomerService Interface ---
type CustomerService interface {
	CreateCustomer(req CreateCustomerRequest) (*models.Customer, error)
	GetCustomerByID(id int64) (*models.Customer, error)
	GetCustomerByPhone(phone string) (*models.Customer, error)
	GetCustomers(page, pageSize int, searchTerm *string) ([]models.Customer, int, error)
	UpdateCustomer(id int64, req UpdateCustomerRequest) (*models.Customer, error)
}

type customerService struct {
	customerRepo repositories.CustomerRepository
	db           *sql.DB
}

// NewCustomerService creates a new instance of CustomerService.
func NewCustomerService(customerRepo repositories.CustomerRepository, db *sql.DB) CustomerService {
	return &customerService{customerRepo: customerRepo, db: db}
}

func (s *customerService) CreateCustomer(req CreateCustomerRequest) (*models.Customer, error) {
	if strings.TrimSpace(req.FullName) == "" {
		return nil, fmt.Errorf("%w: full name cannot be empty", ErrCustomerValidation)
	}

	customer := &models.Customer{
		FullName:    strings.TrimSpace(req.FullName),
		PhoneNumber: strings.TrimSpace(req.PhoneNumber),
		Email:       req.Email,
		Notes:       req.Notes,
	}
	created, err := s.customerRepo.CreateCustomer(s.db, customer)
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrCustomerPhoneConflict
		}
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}
	return created, nil
}

func (s *customerService) GetCustomerByID(id int64) (*models.Customer, error) {
	customer, err := s.customerRepo.GetCustomerByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("failed to get customer by ID: %w", err)
	}
	return customer, nil
}

func (s *customerService) GetCustomerByPhone(phone string) (*models.Customer, error) {
	customer, err := s.customerRepo.GetCustomerByPhone(strings.TrimSpace(phone))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("failed to get customer by phone: %w", err)
	}
	return customer, nil
}

func (s *customerService) GetCustomers(page, pageSize int, searchTerm *string) ([]models.Customer, int, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	customers, total, err := s.customerRepo.GetCustomers(page, pageSize, searchTerm)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list customers: %w", err)
	}
	return customers, total, nil
}

func (s *customerService) UpdateCustomer(id int64, req UpdateCustomerRequest) (*models.Customer, error) {
	customer, err := s.customerRepo.GetCustomerByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("failed to find customer for update: %w", err)
	}

	if req.FullName != nil {
		if strings.TrimSpace(*req.FullName) == "" {
			return nil, fmt.Errorf("%w: full name cannot be empty if provided", ErrCustomerValidation)
		}
		customer.FullName = strings.TrimSpace(*req.FullName)
	}
	if req.PhoneNumber != nil {
		customer.PhoneNumber = strings.TrimSpace(*req.PhoneNumber)
	}
	if req.Email != nil {
		customer.Email = req.Email
	}
	if req.Notes != nil {
		customer.Notes = req.Notes
	}

	updated, err := s.customerRepo.UpdateCustomer(s.db, customer)
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrCustomerPhoneConflict
		}
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("failed to update customer: %w", err)
	}
	return updated, nil
}

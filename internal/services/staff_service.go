package services

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"spa_salon_backend/internal/models"
	"spa_salon_backend/internal/repositories"
)

// --- Custom Service Errors for Staff ---
var (
	ErrStaffValidation   = errors.New("staff validation error")
	ErrStaffUserConflict = errors.New("user is already linked to a staff member")
)

// --- DTOs ---
type CreateStaffMemberRequest struct {
	UserID      *int64  `json:"user_id"`
	BranchID    int64   `json:"branch_id" binding:"required"`
	PhoneNumber *string `json:"phone_number"`
	HireDate    *string `json:"hire_date" binding:"omitempty,dateonly"`
	Position    *string `json:"position"`
}

type UpdateStaffMemberRequest struct {
	BranchID    *int64  `json:"branch_id"`
	PhoneNumber *string `json:"phone_number"`
	Position    *string `json:"position"`
	IsActive    *bool   `json:"is_active"`
}

// --- StaffService Interface ---
type StaffService interface {
	CreateStaffMember(req CreateStaffMemberRequest) (*models.StaffMember, error)
	GetStaffMemberByID(id int64) (*models.StaffMember, error)
	GetStaffMembers(page, pageSize int, searchTerm *string) ([]models.StaffMember, int, error)
	UpdateStaffMember(id int64, req UpdateStaffMemberRequest) (*models.StaffMember, error)

	AssignService(staffID, serviceID int64) error
	UnassignService(staffID, serviceID int64) error
	GetServicesForStaff(staffID int64) ([]int64, error)
}

type staffService struct {
	staffRepo   repositories.StaffRepository
	catalogRepo repositories.CatalogRepository
	db          *sql.DB
}

// NewStaffService creates a new instance of StaffService.
func NewStaffService(staffRepo repositories.StaffRepository, catalogRepo repositories.CatalogRepository, db *sql.DB) StaffService {
	return &staffService{staffRepo: staffRepo, catalogRepo: catalogRepo, db: db}
}

func (s *staffService) CreateStaffMember(req CreateStaffMemberRequest) (*models.StaffMember, error) {
	if req.HireDate != nil {
		if _, err := time.Parse(models.DateFormat, *req.HireDate); err != nil {
			return nil, fmt.Errorf("%w: hire_date must be YYYY-MM-DD", ErrStaffValidation)
		}
	}

	staff := &models.StaffMember{
		UserID:      req.UserID,
		BranchID:    req.BranchID,
		PhoneNumber: req.PhoneNumber,
		HireDate:    req.HireDate,
		Position:    req.Position,
		IsActive:    true,
	}
	created, err := s.staffRepo.CreateStaffMember(s.db, staff)
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrStaffUserConflict
		}
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: user or branch does not exist", ErrStaffValidation)
		}
		return nil, fmt.Errorf("failed to create staff member: %w", err)
	}
	return created, nil
}

func (s *staffService) GetStaffMemberByID(id int64) (*models.StaffMember, error) {
	staff, err := s.staffRepo.GetStaffMemberByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrStaffNotFound
		}
		return nil, fmt.Errorf("failed to get staff member by ID: %w", err)
	}
	return staff, nil
}

func (s *staffService) GetStaffMembers(page, pageSize int, searchTerm *string) ([]models.StaffMember, int, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	staff, total, err := s.staffRepo.GetStaffMembers(page, pageSize, searchTerm)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list staff members: %w", err)
	}
	return staff, total, nil
}

func (s *staffService) UpdateStaffMember(id int64, req UpdateStaffMemberRequest) (*models.StaffMember, error) {
	staff, err := s.staffRepo.GetStaffMemberByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrStaffNotFound
		}
		return nil, fmt.Errorf("failed to find staff member for update: %w", err)
	}

	if req.BranchID != nil {
		staff.BranchID = *req.BranchID
	}
	if req.PhoneNumber != nil {
		staff.PhoneNumber = req.PhoneNumber
	}
	if req.Position != nil {
		staff.Position = req.Position
	}
	if req.IsActive != nil {
		staff.IsActive = *req.IsActive
	}

	updated, err := s.staffRepo.UpdateStaffMember(s.db, staff)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: staff member or branch does not exist", ErrStaffValidation)
		}
		return nil, fmt.Errorf("failed to update staff member: %w", err)
	}
	return updated, nil
}

func (s *staffService) AssignService(staffID, serviceID int64) error {
	if _, err := s.staffRepo.GetStaffMemberByID(staffID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrStaffNotFound
		}
		return fmt.Errorf("failed to validate staff member: %w", err)
	}
	if _, err := s.catalogRepo.GetServiceOfferingByID(serviceID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrServiceNotFound
		}
		return fmt.Errorf("failed to validate service offering: %w", err)
	}
	if err := s.staffRepo.AddStaffService(s.db, staffID, serviceID); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			// Already assigned, treat as success.
			return nil
		}
		return fmt.Errorf("failed to assign service to staff: %w", err)
	}
	return nil
}

func (s *staffService) UnassignService(staffID, serviceID int64) error {
	if err := s.staffRepo.RemoveStaffService(s.db, staffID, serviceID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrServiceNotFound
		}
		return fmt.Errorf("failed to unassign service from staff: %w", err)
	}
	return nil
}

func (s *staffService) GetServicesForStaff(staffID int64) ([]int64, error) {
	if _, err := s.staffRepo.GetStaffMemberByID(staffID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrStaffNotFound
		}
		return nil, fmt.Errorf("failed to validate staff member: %w", err)
	}
	serviceIDs, err := s.staffRepo.GetServicesForStaff(staffID)
	if err != nil {
		return nil, fmt.Errorf("failed to list services for staff: %w", err)
	}
	return serviceIDs, nil
}

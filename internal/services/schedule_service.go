package services

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"spa_salon_backend/internal/models"
	"spa_salon_backend/internal/repositories"
)

// --- Custom Service Errors for Schedule ---
var (
	ErrShiftNotFound           = errors.New("shift not found")
	ErrShiftValidation         = errors.New("shift validation error (e.g., end time not after start time)")
	ErrScheduleNotFound        = errors.New("work schedule entry not found")
	ErrScheduleConflict        = errors.New("work schedule already exists for this staff, date and shift")
	ErrScheduleInvalidState    = errors.New("work schedule entry is not in a state permitting this transition")
	ErrScheduleValidation      = errors.New("work schedule validation error")
	ErrScheduleMonthValidation = errors.New("invalid month or year for schedule listing")
)

// --- Shift DTOs ---
type CreateShiftRequest struct {
	Label     string `json:"label" binding:"required"`
	StartTime string `json:"start_time" binding:"required,timeofday"`
	EndTime   string `json:"end_time" binding:"required,timeofday"`
}

type UpdateShiftRequest struct {
	Label     *string `json:"label"`
	StartTime *string `json:"start_time" binding:"omitempty,timeofday"`
	EndTime   *string `json:"end_time" binding:"omitempty,timeofday"`
}

// --- WorkSchedule DTOs ---
type CreateWorkScheduleRequest struct {
	StaffID  int64  `json:"staff_id" binding:"required"`
	WorkDate string `json:"work_date" binding:"required,dateonly"`
	ShiftID  int64  `json:"shift_id" binding:"required"`
}

type CreateMultiShiftScheduleRequest struct {
	StaffID  int64   `json:"staff_id" binding:"required"`
	WorkDate string  `json:"work_date" binding:"required,dateonly"`
	ShiftIDs []int64 `json:"shift_ids" binding:"required,min=1"`
}

// --- ScheduleService Interface ---
type ScheduleService interface {
	// Shift catalog methods
	CreateShift(req CreateShiftRequest) (*models.Shift, error)
	GetShiftByID(shiftID int64) (*models.Shift, error)
	ListShifts() ([]models.Shift, error)
	UpdateShift(shiftID int64, req UpdateShiftRequest) (*models.Shift, error)

	// Work schedule methods
	CreateWorkSchedule(req CreateWorkScheduleRequest) (*models.WorkSchedule, error)
	CreateMultiShiftSchedule(req CreateMultiShiftScheduleRequest) ([]models.WorkSchedule, error)
	ListSchedule(staffID int64, month, year int) ([]models.WorkSchedule, error)
	MarkOnLeave(staffID int64, workDate string, shiftID int64) error
	MarkReplaced(staffID int64, workDate string, shiftID, replacementStaffID int64) error
}

type scheduleService struct {
	shiftRepo    repositories.ShiftRepository
	scheduleRepo repositories.ScheduleRepository
	staffRepo    repositories.StaffRepository
	db           *sql.DB
}

// NewScheduleService creates a new instance of ScheduleService.
func NewScheduleService(
	shiftRepo repositories.ShiftRepository,
	scheduleRepo repositories.ScheduleRepository,
	staffRepo repositories.StaffRepository,
	db *sql.DB,
) ScheduleService {
	return &scheduleService{
		shiftRepo:    shiftRepo,
		scheduleRepo: scheduleRepo,
		staffRepo:    staffRepo,
		db:           db,
	}
}

// validateShiftWindow checks a shift's time-of-day window: parsable, start
// strictly before end, same day.
func validateShiftWindow(start, end string) error {
	startMin, err := models.ParseTimeOfDay(start)
	if err != nil {
		return fmt.Errorf("%w: start_time: %v", ErrShiftValidation, err)
	}
	endMin, err := models.ParseTimeOfDay(end)
	if err != nil {
		return fmt.Errorf("%w: end_time: %v", ErrShiftValidation, err)
	}
	if startMin >= endMin {
		return fmt.Errorf("%w: end time must be after start time", ErrShiftValidation)
	}
	return nil
}

// --- Shift Method Implementations ---

func (s *scheduleService) CreateShift(req CreateShiftRequest) (*models.Shift, error) {
	if strings.TrimSpace(req.Label) == "" {
		return nil, fmt.Errorf("%w: label cannot be empty", ErrShiftValidation)
	}
	if err := validateShiftWindow(req.StartTime, req.EndTime); err != nil {
		return nil, err
	}

	shift := &models.Shift{
		Label:     strings.TrimSpace(req.Label),
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
	}
	createdShift, err := s.shiftRepo.CreateShift(s.db, shift)
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, fmt.Errorf("%w: label %q already in use", ErrShiftValidation, shift.Label)
		}
		return nil, fmt.Errorf("failed to create shift in repository: %w", err)
	}
	return createdShift, nil
}

func (s *scheduleService) GetShiftByID(shiftID int64) (*models.Shift, error) {
	shift, err := s.shiftRepo.GetShiftByID(shiftID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrShiftNotFound
		}
		return nil, fmt.Errorf("failed to get shift by ID: %w", err)
	}
	return shift, nil
}

func (s *scheduleService) ListShifts() ([]models.Shift, error) {
	shifts, err := s.shiftRepo.ListShifts()
	if err != nil {
		return nil, fmt.Errorf("failed to list shifts: %w", err)
	}
	return shifts, nil
}

func (s *scheduleService) UpdateShift(shiftID int64, req UpdateShiftRequest) (*models.Shift, error) {
	shift, err := s.shiftRepo.GetShiftByID(shiftID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrShiftNotFound
		}
		return nil, fmt.Errorf("failed to find shift for update: %w", err)
	}

	if req.Label != nil {
		if strings.TrimSpace(*req.Label) == "" {
			return nil, fmt.Errorf("%w: label cannot be empty if provided", ErrShiftValidation)
		}
		shift.Label = strings.TrimSpace(*req.Label)
	}
	if req.StartTime != nil {
		shift.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		shift.EndTime = *req.EndTime
	}
	if err := validateShiftWindow(shift.StartTime, shift.EndTime); err != nil {
		return nil, err
	}

	updatedShift, err := s.shiftRepo.UpdateShift(s.db, shift)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrShiftNotFound
		}
		return nil, fmt.Errorf("failed to update shift in repository: %w", err)
	}
	return updatedShift, nil
}

// --- WorkSchedule Method Implementations ---

func (s *scheduleService) validateStaffAndDate(staffID int64, workDate string) error {
	if _, err := time.Parse(models.DateFormat, workDate); err != nil {
		return fmt.Errorf("%w: work_date must be YYYY-MM-DD", ErrScheduleValidation)
	}
	if _, err := s.staffRepo.GetStaffMemberByID(staffID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return fmt.Errorf("%w: ID %d", ErrStaffNotFound, staffID)
		}
		return fmt.Errorf("failed to validate staff for schedule: %w", err)
	}
	return nil
}

func (s *scheduleService) CreateWorkSchedule(req CreateWorkScheduleRequest) (*models.WorkSchedule, error) {
	if err := s.validateStaffAndDate(req.StaffID, req.WorkDate); err != nil {
		return nil, err
	}
	if _, err := s.shiftRepo.GetShiftByID(req.ShiftID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: ID %d", ErrShiftNotFound, req.ShiftID)
		}
		return nil, fmt.Errorf("failed to validate shift for schedule: %w", err)
	}

	ws := &models.WorkSchedule{
		StaffID:  req.StaffID,
		WorkDate: req.WorkDate,
		ShiftID:  req.ShiftID,
	}
	created, err := s.scheduleRepo.CreateWorkSchedule(s.db, ws)
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, fmt.Errorf("%w: staff %d, date %s, shift %d", ErrScheduleConflict, req.StaffID, req.WorkDate, req.ShiftID)
		}
		return nil, fmt.Errorf("failed to create work schedule in repository: %w", err)
	}
	return created, nil
}

func (s *scheduleService) CreateMultiShiftSchedule(req CreateMultiShiftScheduleRequest) ([]models.WorkSchedule, error) {
	if err := s.validateStaffAndDate(req.StaffID, req.WorkDate); err != nil {
		return nil, err
	}

	seen := make(map[int64]bool, len(req.ShiftIDs))
	for _, shiftID := range req.ShiftIDs {
		if seen[shiftID] {
			return nil, fmt.Errorf("%w: shift %d listed more than once", ErrScheduleValidation, shiftID)
		}
		seen[shiftID] = true
		if _, err := s.shiftRepo.GetShiftByID(shiftID); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, fmt.Errorf("%w: ID %d", ErrShiftNotFound, shiftID)
			}
			return nil, fmt.Errorf("failed to validate shift for schedule: %w", err)
		}
	}

	// The repository applies the batch in one transaction: all rows or none.
	created, err := s.scheduleRepo.CreateMultiShift(req.StaffID, req.WorkDate, req.ShiftIDs)
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, fmt.Errorf("%w: %v", ErrScheduleConflict, err)
		}
		return nil, fmt.Errorf("failed to create multi-shift schedule: %w", err)
	}
	return created, nil
}

func (s *scheduleService) ListSchedule(staffID int64, month, year int) ([]models.WorkSchedule, error) {
	if month < 1 || month > 12 {
		return nil, fmt.Errorf("%w: month must be 1-12", ErrScheduleMonthValidation)
	}
	if year < 2000 || year > 2200 {
		return nil, fmt.Errorf("%w: year %d out of range", ErrScheduleMonthValidation, year)
	}
	if _, err := s.staffRepo.GetStaffMemberByID(staffID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: ID %d", ErrStaffNotFound, staffID)
		}
		return nil, fmt.Errorf("failed to validate staff for schedule listing: %w", err)
	}

	schedules, err := s.scheduleRepo.ListForMonth(staffID, time.Month(month), year)
	if err != nil {
		return nil, fmt.Errorf("failed to list schedule: %w", err)
	}
	return schedules, nil
}

// checkTransition loads the schedule row and verifies it sits in the expected
// state before a status transition is attempted.
func (s *scheduleService) checkTransition(staffID int64, workDate string, shiftID int64, expected models.WorkScheduleStatus) error {
	ws, err := s.scheduleRepo.GetWorkSchedule(staffID, workDate, shiftID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrScheduleNotFound
		}
		return fmt.Errorf("failed to load work schedule: %w", err)
	}
	if ws.Status != expected {
		return fmt.Errorf("%w: status is %s, expected %s", ErrScheduleInvalidState, ws.Status, expected)
	}
	return nil
}

func (s *scheduleService) MarkOnLeave(staffID int64, workDate string, shiftID int64) error {
	if err := s.checkTransition(staffID, workDate, shiftID, models.ScheduleStatusScheduled); err != nil {
		return err
	}
	if err := s.scheduleRepo.MarkOnLeave(s.db, staffID, workDate, shiftID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			// Row changed between the check and the update.
			return fmt.Errorf("%w: concurrent status change", ErrScheduleInvalidState)
		}
		return fmt.Errorf("failed to mark schedule on leave: %w", err)
	}
	return nil
}

func (s *scheduleService) MarkReplaced(staffID int64, workDate string, shiftID, replacementStaffID int64) error {
	if _, err := s.staffRepo.GetStaffMemberByID(replacementStaffID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return fmt.Errorf("%w: replacement ID %d", ErrStaffNotFound, replacementStaffID)
		}
		return fmt.Errorf("failed to validate replacement staff: %w", err)
	}
	if err := s.checkTransition(staffID, workDate, shiftID, models.ScheduleStatusOnLeave); err != nil {
		return err
	}
	if err := s.scheduleRepo.MarkReplaced(s.db, staffID, workDate, shiftID, replacementStaffID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return fmt.Errorf("%w: concurrent status change", ErrScheduleInvalidState)
		}
		return fmt.Errorf("failed to mark schedule replaced: %w", err)
	}
	return nil
}

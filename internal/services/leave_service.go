package services

import (
	"errors"
	"fmt"
	"time"

	"spa_salon_backend/internal/models"
	"spa_salon_backend/internal/notifications"
	"spa_salon_backend/internal/repositories"
)

// --- Custom Service Errors for Leave ---
var (
	ErrLeaveNotFound      = errors.New("leave request not found")
	ErrLeaveNotPending    = errors.New("leave request is not pending")
	ErrLeaveValidation    = errors.New("leave request validation error")
	ErrLeavePermission    = errors.New("permission denied for leave operation")
	ErrReplacementNotFree = errors.New("replacement staff is not free")
)

// --- DTOs ---
type RequestLeaveRequest struct {
	StaffID   int64   `json:"staff_id" binding:"required"`
	LeaveDate string  `json:"leave_date" binding:"required,dateonly"`
	ShiftIDs  []int64 `json:"shift_ids" binding:"required,min=1"`
	Reason    *string `json:"reason"`
}

type ResolveLeaveRequest struct {
	ReplacementStaffID *int64  `json:"replacement_staff_id"`
	Note               *string `json:"note"`
}

// ApproveLeaveResult reports the approval outcome plus the per-appointment
// reassignment outcomes. Approved is true even when some reassignments fail;
// failures are surfaced individually so an operator can act on them.
type ApproveLeaveResult struct {
	Approved      bool                        `json:"approved"`
	Leave         *models.StaffLeave          `json:"leave"`
	Reassignments []models.ReassignmentResult `json:"reassignments"`
}

// --- LeaveService Interface ---
type LeaveService interface {
	RequestLeave(req RequestLeaveRequest, requester models.Principal) (*models.StaffLeave, error)
	GetLeaveByID(leaveID int64) (*models.StaffLeave, error)
	GetLeaves(staffID *int64, status *models.LeaveStatus, page, pageSize int) ([]models.StaffLeave, int, error)
	ApproveLeave(leaveID int64, approver models.Principal, req ResolveLeaveRequest) (*ApproveLeaveResult, error)
	RejectLeave(leaveID int64, approver models.Principal, note *string) error
}

type leaveService struct {
	leaveRepo       repositories.LeaveRepository
	scheduleRepo    repositories.ScheduleRepository
	appointmentRepo repositories.AppointmentRepository
	staffRepo       repositories.StaffRepository
	shiftRepo       repositories.ShiftRepository
	availability    AvailabilityService
	notifier        notifications.Notifier
}

// NewLeaveService creates a new instance of LeaveService.
func NewLeaveService(
	leaveRepo repositories.LeaveRepository,
	scheduleRepo repositories.ScheduleRepository,
	appointmentRepo repositories.AppointmentRepository,
	staffRepo repositories.StaffRepository,
	shiftRepo repositories.ShiftRepository,
	availability AvailabilityService,
	notifier notifications.Notifier,
) LeaveService {
	return &leaveService{
		leaveRepo:       leaveRepo,
		scheduleRepo:    scheduleRepo,
		appointmentRepo: appointmentRepo,
		staffRepo:       staffRepo,
		shiftRepo:       shiftRepo,
		availability:    availability,
		notifier:        notifier,
	}
}

func (s *leaveService) RequestLeave(req RequestLeaveRequest, requester models.Principal) (*models.StaffLeave, error) {
	if !requester.IsAdmin() && (requester.StaffID == nil || *requester.StaffID != req.StaffID) {
		return nil, fmt.Errorf("%w: staff can only request leave for themselves", ErrLeavePermission)
	}
	if _, err := time.Parse(models.DateFormat, req.LeaveDate); err != nil {
		return nil, fmt.Errorf("%w: leave_date must be YYYY-MM-DD", ErrLeaveValidation)
	}
	if _, err := s.staffRepo.GetStaffMemberByID(req.StaffID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: ID %d", ErrStaffNotFound, req.StaffID)
		}
		return nil, fmt.Errorf("failed to validate staff for leave: %w", err)
	}

	// Each requested shift must be a Scheduled entry on that date; leave over
	// shifts the staff member does not work makes no sense.
	seen := make(map[int64]bool, len(req.ShiftIDs))
	for _, shiftID := range req.ShiftIDs {
		if seen[shiftID] {
			return nil, fmt.Errorf("%w: shift %d listed more than once", ErrLeaveValidation, shiftID)
		}
		seen[shiftID] = true
		ws, err := s.scheduleRepo.GetWorkSchedule(req.StaffID, req.LeaveDate, shiftID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, fmt.Errorf("%w: staff %d is not scheduled for shift %d on %s", ErrLeaveValidation, req.StaffID, shiftID, req.LeaveDate)
			}
			return nil, fmt.Errorf("failed to validate schedule for leave: %w", err)
		}
		if ws.Status != models.ScheduleStatusScheduled {
			return nil, fmt.Errorf("%w: shift %d on %s is already %s", ErrLeaveValidation, shiftID, req.LeaveDate, ws.Status)
		}
	}

	leave := &models.StaffLeave{
		StaffID:   req.StaffID,
		LeaveDate: req.LeaveDate,
		ShiftIDs:  req.ShiftIDs,
		Reason:    req.Reason,
		Status:    models.LeaveStatusPending,
	}
	created, err := s.leaveRepo.CreateLeave(leave)
	if err != nil {
		return nil, fmt.Errorf("failed to create leave request: %w", err)
	}
	return created, nil
}

func (s *leaveService) GetLeaveByID(leaveID int64) (*models.StaffLeave, error) {
	leave, err := s.leaveRepo.GetLeaveByID(leaveID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrLeaveNotFound
		}
		return nil, fmt.Errorf("failed to get leave by ID: %w", err)
	}
	return leave, nil
}

func (s *leaveService) GetLeaves(staffID *int64, status *models.LeaveStatus, page, pageSize int) ([]models.StaffLeave, int, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	leaves, total, err := s.leaveRepo.GetLeaves(staffID, status, page, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list leave requests: %w", err)
	}
	return leaves, total, nil
}

// ApproveLeave transitions the leave to Approved, marks covered schedule rows
// OnLeave, and walks the active appointments inside the leave windows moving
// each to the replacement. Appointments the replacement cannot take, or all of
// them when no replacement was supplied, come back as Failed entries; the
// approval itself still stands.
func (s *leaveService) ApproveLeave(leaveID int64, approver models.Principal, req ResolveLeaveRequest) (*ApproveLeaveResult, error) {
	if !approver.IsAdmin() {
		return nil, fmt.Errorf("%w: only administrators can approve leave", ErrLeavePermission)
	}

	leave, err := s.leaveRepo.GetLeaveByID(leaveID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrLeaveNotFound
		}
		return nil, fmt.Errorf("failed to load leave request: %w", err)
	}
	if leave.Status != models.LeaveStatusPending {
		return nil, fmt.Errorf("%w: status is %s", ErrLeaveNotPending, leave.Status)
	}

	if req.ReplacementStaffID != nil {
		if *req.ReplacementStaffID == leave.StaffID {
			return nil, fmt.Errorf("%w: replacement cannot be the staff member on leave", ErrLeaveValidation)
		}
		if _, err := s.staffRepo.GetStaffMemberByID(*req.ReplacementStaffID); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, fmt.Errorf("%w: replacement ID %d", ErrStaffNotFound, *req.ReplacementStaffID)
			}
			return nil, fmt.Errorf("failed to validate replacement staff: %w", err)
		}
	}

	approved, err := s.leaveRepo.ApproveLeave(leaveID, approver.UserID, req.Note)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			// Lost the race with another approver or a rejection.
			return nil, fmt.Errorf("%w: resolved concurrently", ErrLeaveNotPending)
		}
		return nil, fmt.Errorf("failed to approve leave request: %w", err)
	}

	reassignments, err := s.reassignAppointments(approved, req.ReplacementStaffID)
	if err != nil {
		return nil, err
	}

	s.notifyApproval(approved, req.ReplacementStaffID, reassignments)

	return &ApproveLeaveResult{
		Approved:      true,
		Leave:         approved,
		Reassignments: reassignments,
	}, nil
}

// leaveShiftWindows resolves the minute windows of the shifts a leave covers.
func (s *leaveService) leaveShiftWindows(leave *models.StaffLeave) (map[int64]minuteInterval, error) {
	shifts, err := s.shiftRepo.ListShifts()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve leave shift windows: %w", err)
	}
	byID := make(map[int64]models.Shift, len(shifts))
	for _, shift := range shifts {
		byID[shift.ID] = shift
	}
	windows := make(map[int64]minuteInterval, len(leave.ShiftIDs))
	for _, shiftID := range leave.ShiftIDs {
		shift, ok := byID[shiftID]
		if !ok {
			continue
		}
		start, err := models.ParseTimeOfDay(shift.StartTime)
		if err != nil {
			return nil, fmt.Errorf("invalid shift window for shift %d: %w", shiftID, err)
		}
		end, err := models.ParseTimeOfDay(shift.EndTime)
		if err != nil {
			return nil, fmt.Errorf("invalid shift window for shift %d: %w", shiftID, err)
		}
		windows[shiftID] = minuteInterval{start: start, end: end}
	}
	return windows, nil
}

func (s *leaveService) reassignAppointments(leave *models.StaffLeave, replacementStaffID *int64) ([]models.ReassignmentResult, error) {
	windows, err := s.leaveShiftWindows(leave)
	if err != nil {
		return nil, err
	}

	active, err := s.appointmentRepo.GetActiveByStaffDate(leave.StaffID, leave.LeaveDate)
	if err != nil {
		return nil, fmt.Errorf("failed to load active appointments for reassignment: %w", err)
	}

	results := make([]models.ReassignmentResult, 0, len(active))
	for _, appt := range active {
		apptStart, err := models.ParseTimeOfDay(appt.StartTime)
		if err != nil {
			return nil, fmt.Errorf("invalid start time on appointment %d: %w", appt.ID, err)
		}
		apptEnd, err := appt.EndTimeMinutes()
		if err != nil {
			return nil, fmt.Errorf("invalid times on appointment %d: %w", appt.ID, err)
		}
		apptWindow := minuteInterval{start: apptStart, end: apptEnd}

		// Only appointments falling inside a covered shift window are affected.
		var coveredShiftID int64
		covered := false
		for shiftID, window := range windows {
			if window.intersects(apptWindow) {
				coveredShiftID = shiftID
				covered = true
				break
			}
		}
		if !covered {
			continue
		}

		results = append(results, s.reassignOne(leave, appt, coveredShiftID, replacementStaffID))
	}
	return results, nil
}

func (s *leaveService) reassignOne(leave *models.StaffLeave, appt models.Appointment, shiftID int64, replacementStaffID *int64) models.ReassignmentResult {
	failed := func(reason string) models.ReassignmentResult {
		return models.ReassignmentResult{
			AppointmentID: appt.ID,
			Status:        models.ReassignmentFailed,
			Reason:        &reason,
		}
	}

	if replacementStaffID == nil {
		return failed("no replacement staff supplied")
	}

	apptEnd, err := appt.EndTimeMinutes()
	if err != nil {
		return failed(fmt.Sprintf("invalid appointment times: %v", err))
	}
	free, err := s.availability.IsStaffFree(*replacementStaffID, appt.AppointmentDate, appt.StartTime, models.FormatTimeOfDay(apptEnd))
	if err != nil {
		return failed(fmt.Sprintf("availability check failed: %v", err))
	}
	if !free {
		return failed(ErrReplacementNotFree.Error())
	}

	err = s.appointmentRepo.ReassignStaff(appt.ID, leave.StaffID, *replacementStaffID, leave.LeaveDate, shiftID)
	if err != nil {
		return failed(fmt.Sprintf("reassignment write failed: %v", err))
	}
	return models.ReassignmentResult{
		AppointmentID:      appt.ID,
		ReplacementStaffID: replacementStaffID,
		Status:             models.ReassignmentReassigned,
	}
}

// notifyApproval fans out events to the staff on leave, the replacement and
// the customers of reassigned appointments. Delivery is fire-and-forget.
func (s *leaveService) notifyApproval(leave *models.StaffLeave, replacementStaffID *int64, results []models.ReassignmentResult) {
	if s.notifier == nil {
		return
	}
	if staffUserID := s.staffUserID(leave.StaffID); staffUserID != nil {
		s.notifier.Notify(*staffUserID, notifications.TypeLeaveApproved,
			fmt.Sprintf("Your leave on %s has been approved", leave.LeaveDate), leave.ID)
	}
	if replacementStaffID != nil {
		if replUserID := s.staffUserID(*replacementStaffID); replUserID != nil {
			s.notifier.Notify(*replUserID, notifications.TypeAppointmentMoved,
				fmt.Sprintf("You are covering appointments on %s", leave.LeaveDate), leave.ID)
		}
	}
	for _, result := range results {
		if result.Status != models.ReassignmentReassigned {
			continue
		}
		appt, err := s.appointmentRepo.GetAppointmentByID(result.AppointmentID)
		if err != nil {
			continue
		}
		s.notifier.Notify(appt.CustomerID, notifications.TypeAppointmentMoved,
			fmt.Sprintf("Your appointment on %s at %s has a new specialist", appt.AppointmentDate, appt.StartTime),
			appt.ID)
	}
}

func (s *leaveService) staffUserID(staffID int64) *int64 {
	staff, err := s.staffRepo.GetStaffMemberByID(staffID)
	if err != nil || staff.UserID == nil {
		return nil
	}
	return staff.UserID
}

func (s *leaveService) RejectLeave(leaveID int64, approver models.Principal, note *string) error {
	if !approver.IsAdmin() {
		return fmt.Errorf("%w: only administrators can reject leave", ErrLeavePermission)
	}
	leave, err := s.leaveRepo.GetLeaveByID(leaveID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrLeaveNotFound
		}
		return fmt.Errorf("failed to load leave request: %w", err)
	}
	if leave.Status != models.LeaveStatusPending {
		return fmt.Errorf("%w: status is %s", ErrLeaveNotPending, leave.Status)
	}

	if err := s.leaveRepo.RejectLeave(leaveID, approver.UserID, note); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return fmt.Errorf("%w: resolved concurrently", ErrLeaveNotPending)
		}
		return fmt.Errorf("failed to reject leave request: %w", err)
	}

	if s.notifier != nil {
		if staffUserID := s.staffUserID(leave.StaffID); staffUserID != nil {
			s.notifier.Notify(*staffUserID, notifications.TypeLeaveRejected,
				fmt.Sprintf("Your leave request for %s has been rejected", leave.LeaveDate), leave.ID)
		}
	}
	return nil
}

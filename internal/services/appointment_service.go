package services

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"spa_salon_backend/internal/models"
	"spa_salon_backend/internal/notifications"
	"spa_salon_backend/internal/repositories"
)

// --- Custom Service Errors for Appointments ---
var (
	ErrAppointmentNotFound   = errors.New("appointment not found")
	ErrAppointmentValidation = errors.New("appointment validation error")
	ErrAppointmentConflict   = errors.New("staff member is not free at the requested time")
	ErrAppointmentTransition = errors.New("invalid appointment status transition")
	ErrFeedbackExists        = errors.New("feedback already submitted for this appointment")
	ErrFeedbackValidation    = errors.New("feedback validation error")
	ErrCustomerNotFound      = errors.New("customer not found")
)

// allowedTransitions maps each appointment status to the statuses it may move to.
var allowedTransitions = map[models.AppointmentStatus][]models.AppointmentStatus{
	models.AppointmentStatusBooked:     {models.AppointmentStatusInProgress, models.AppointmentStatusCancelled},
	models.AppointmentStatusInProgress: {models.AppointmentStatusCompleted, models.AppointmentStatusCancelled},
}

// --- DTOs ---
type BookAppointmentRequest struct {
	CustomerID int64   `json:"customer_id" binding:"required"`
	StaffID    int64   `json:"staff_id" binding:"required"`
	ServiceID  int64   `json:"service_id" binding:"required"`
	BranchID   int64   `json:"branch_id" binding:"required"`
	Date       string  `json:"date" binding:"required,dateonly"`
	StartTime  string  `json:"start_time" binding:"required,timeofday"`
	Notes      *string `json:"notes"`
}

// --- AppointmentService Interface ---
type AppointmentService interface {
	BookAppointment(req BookAppointmentRequest) (*models.Appointment, error)
	GetAppointmentByID(id int64) (*models.Appointment, error)
	GetAppointments(filters repositories.AppointmentFilters) ([]models.Appointment, int, error)
	UpdateStatus(id int64, status models.AppointmentStatus) (*models.Appointment, error)
	MarkPaid(id int64) (*models.Appointment, error)
	SubmitFeedback(appointmentID, customerID int64, rating int, comment *string) (*models.Feedback, error)
	GetFeedbackForStaff(staffID int64, page, pageSize int) ([]models.Feedback, int, error)
}

type appointmentService struct {
	appointmentRepo repositories.AppointmentRepository
	catalogRepo     repositories.CatalogRepository
	customerRepo    repositories.CustomerRepository
	staffRepo       repositories.StaffRepository
	feedbackRepo    repositories.FeedbackRepository
	availability    AvailabilityService
	notifier        notifications.Notifier
	db              *sql.DB
}

// NewAppointmentService creates a new instance of AppointmentService.
func NewAppointmentService(
	appointmentRepo repositories.AppointmentRepository,
	catalogRepo repositories.CatalogRepository,
	customerRepo repositories.CustomerRepository,
	staffRepo repositories.StaffRepository,
	feedbackRepo repositories.FeedbackRepository,
	availability AvailabilityService,
	notifier notifications.Notifier,
	db *sql.DB,
) AppointmentService {
	return &appointmentService{
		appointmentRepo: appointmentRepo,
		catalogRepo:     catalogRepo,
		customerRepo:    customerRepo,
		staffRepo:       staffRepo,
		feedbackRepo:    feedbackRepo,
		availability:    availability,
		notifier:        notifier,
		db:              db,
	}
}

// BookAppointment validates the booking, checks the staff member is free for
// the full service duration and writes the appointment. Duration and price
// come from the service offering at booking time.
func (s *appointmentService) BookAppointment(req BookAppointmentRequest) (*models.Appointment, error) {
	if _, err := time.Parse(models.DateFormat, req.Date); err != nil {
		return nil, fmt.Errorf("%w: date must be YYYY-MM-DD", ErrAppointmentValidation)
	}
	startMin, err := models.ParseTimeOfDay(req.StartTime)
	if err != nil {
		return nil, fmt.Errorf("%w: start_time: %v", ErrAppointmentValidation, err)
	}

	if _, err := s.customerRepo.GetCustomerByID(req.CustomerID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: ID %d", ErrCustomerNotFound, req.CustomerID)
		}
		return nil, fmt.Errorf("failed to validate customer: %w", err)
	}
	staff, err := s.staffRepo.GetStaffMemberByID(req.StaffID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: ID %d", ErrStaffNotFound, req.StaffID)
		}
		return nil, fmt.Errorf("failed to validate staff: %w", err)
	}
	if staff.BranchID != req.BranchID {
		return nil, fmt.Errorf("%w: staff %d does not work at branch %d", ErrAppointmentValidation, req.StaffID, req.BranchID)
	}
	offering, err := s.catalogRepo.GetServiceOfferingByID(req.ServiceID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: ID %d", ErrServiceNotFound, req.ServiceID)
		}
		return nil, fmt.Errorf("failed to validate service offering: %w", err)
	}
	if !offering.IsActive {
		return nil, fmt.Errorf("%w: service %d is inactive", ErrAppointmentValidation, req.ServiceID)
	}

	offered, err := s.staffRepo.GetServicesForStaff(req.StaffID)
	if err != nil {
		return nil, fmt.Errorf("failed to load staff services: %w", err)
	}
	offers := false
	for _, serviceID := range offered {
		if serviceID == req.ServiceID {
			offers = true
			break
		}
	}
	if !offers {
		return nil, fmt.Errorf("%w: staff %d does not offer service %d", ErrAppointmentValidation, req.StaffID, req.ServiceID)
	}

	endMin := startMin + offering.DurationMinutes
	if endMin > models.MinutesPerDay {
		return nil, fmt.Errorf("%w: appointment would run past midnight", ErrAppointmentValidation)
	}
	free, err := s.availability.IsStaffFree(req.StaffID, req.Date, req.StartTime, models.FormatTimeOfDay(endMin))
	if err != nil {
		return nil, fmt.Errorf("failed to check staff availability: %w", err)
	}
	if !free {
		return nil, fmt.Errorf("%w: staff %d on %s at %s", ErrAppointmentConflict, req.StaffID, req.Date, req.StartTime)
	}

	appt := &models.Appointment{
		CustomerID:      req.CustomerID,
		StaffID:         req.StaffID,
		ServiceID:       req.ServiceID,
		BranchID:        req.BranchID,
		AppointmentDate: req.Date,
		StartTime:       req.StartTime,
		DurationMinutes: offering.DurationMinutes,
		Status:          models.AppointmentStatusBooked,
		PaymentStatus:   models.PaymentStatusUnpaid,
		Price:           offering.Price,
		Notes:           req.Notes,
	}
	created, err := s.appointmentRepo.CreateAppointment(s.db, appt)
	if err != nil {
		return nil, fmt.Errorf("failed to create appointment: %w", err)
	}

	if s.notifier != nil && staff.UserID != nil {
		s.notifier.Notify(*staff.UserID, notifications.TypeAppointmentBooked,
			fmt.Sprintf("New appointment on %s at %s", created.AppointmentDate, created.StartTime), created.ID)
	}
	return created, nil
}

func (s *appointmentService) GetAppointmentByID(id int64) (*models.Appointment, error) {
	appt, err := s.appointmentRepo.GetAppointmentByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrAppointmentNotFound
		}
		return nil, fmt.Errorf("failed to get appointment by ID: %w", err)
	}
	return appt, nil
}

func (s *appointmentService) GetAppointments(filters repositories.AppointmentFilters) ([]models.Appointment, int, error) {
	if filters.Page <= 0 {
		filters.Page = 1
	}
	if filters.PageSize <= 0 {
		filters.PageSize = 20
	}
	if filters.Date != nil {
		if _, err := time.Parse(models.DateFormat, *filters.Date); err != nil {
			return nil, 0, fmt.Errorf("%w: date must be YYYY-MM-DD", ErrAppointmentValidation)
		}
	}
	appts, total, err := s.appointmentRepo.GetAppointments(filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appts, total, nil
}

func (s *appointmentService) UpdateStatus(id int64, status models.AppointmentStatus) (*models.Appointment, error) {
	if !status.IsValid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrAppointmentValidation, status)
	}
	appt, err := s.appointmentRepo.GetAppointmentByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrAppointmentNotFound
		}
		return nil, fmt.Errorf("failed to load appointment: %w", err)
	}

	allowed := false
	for _, next := range allowedTransitions[appt.Status] {
		if next == status {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, fmt.Errorf("%w: %s -> %s", ErrAppointmentTransition, appt.Status, status)
	}

	if err := s.appointmentRepo.UpdateStatus(s.db, id, status); err != nil {
		return nil, fmt.Errorf("failed to update appointment status: %w", err)
	}
	appt.Status = status
	return appt, nil
}

func (s *appointmentService) MarkPaid(id int64) (*models.Appointment, error) {
	appt, err := s.appointmentRepo.GetAppointmentByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrAppointmentNotFound
		}
		return nil, fmt.Errorf("failed to load appointment: %w", err)
	}
	if appt.Status == models.AppointmentStatusCancelled {
		return nil, fmt.Errorf("%w: cannot pay for a cancelled appointment", ErrAppointmentTransition)
	}
	if appt.PaymentStatus == models.PaymentStatusPaid {
		return appt, nil
	}
	if err := s.appointmentRepo.UpdatePaymentStatus(s.db, id, models.PaymentStatusPaid); err != nil {
		return nil, fmt.Errorf("failed to update payment status: %w", err)
	}
	appt.PaymentStatus = models.PaymentStatusPaid
	return appt, nil
}

func (s *appointmentService) SubmitFeedback(appointmentID, customerID int64, rating int, comment *string) (*models.Feedback, error) {
	if rating < 1 || rating > 5 {
		return nil, fmt.Errorf("%w: rating must be between 1 and 5", ErrFeedbackValidation)
	}
	appt, err := s.appointmentRepo.GetAppointmentByID(appointmentID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrAppointmentNotFound
		}
		return nil, fmt.Errorf("failed to load appointment for feedback: %w", err)
	}
	if appt.CustomerID != customerID {
		return nil, fmt.Errorf("%w: feedback must come from the appointment's customer", ErrFeedbackValidation)
	}
	if appt.Status != models.AppointmentStatusCompleted {
		return nil, fmt.Errorf("%w: appointment is not completed", ErrFeedbackValidation)
	}

	fb := &models.Feedback{
		AppointmentID: appointmentID,
		CustomerID:    customerID,
		Rating:        rating,
		Comment:       comment,
	}
	created, err := s.feedbackRepo.CreateFeedback(s.db, fb)
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrFeedbackExists
		}
		return nil, fmt.Errorf("failed to create feedback: %w", err)
	}
	return created, nil
}

func (s *appointmentService) GetFeedbackForStaff(staffID int64, page, pageSize int) ([]models.Feedback, int, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	feedback, total, err := s.feedbackRepo.GetFeedbackForStaff(staffID, page, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list feedback for staff: %w", err)
	}
	return feedback, total, nil
}

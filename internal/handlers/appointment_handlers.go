package handlers

import (
	"errors"
	"net/http"

	"spa_salon_backend/internal/models"
	"spa_salon_backend/internal/repositories"
	"spa_salon_backend/internal/services"
	"spa_salon_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// AppointmentHandler holds the appointment service.
type AppointmentHandler struct {
	appointmentService services.AppointmentService
}

// NewAppointmentHandler creates a new AppointmentHandler.
func NewAppointmentHandler(as services.AppointmentService) *AppointmentHandler {
	return &AppointmentHandler{appointmentService: as}
}

// BookAppointment handles booking a new appointment.
func (h *AppointmentHandler) BookAppointment(c *gin.Context) {
	var req services.BookAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	appt, err := h.appointmentService.BookAppointment(req)
	if err != nil {
		utils.LogError(err, "BookAppointment: Error from appointmentService.BookAppointment")
		switch {
		case errors.Is(err, services.ErrAppointmentConflict):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Staff member is not free at the requested time.", err.Error()))
		case errors.Is(err, services.ErrCustomerNotFound),
			errors.Is(err, services.ErrStaffNotFound),
			errors.Is(err, services.ErrServiceNotFound):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Referenced entity not found.", err.Error()))
		case errors.Is(err, services.ErrAppointmentValidation):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
		default:
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to book appointment.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusCreated, appt)
}

// GetAppointments lists appointments with optional filters.
func (h *AppointmentHandler) GetAppointments(c *gin.Context) {
	page, pageSize := pagination(c)
	filters := repositories.AppointmentFilters{
		StaffID:    optionalQueryInt64(c, "staff_id"),
		CustomerID: optionalQueryInt64(c, "customer_id"),
		BranchID:   optionalQueryInt64(c, "branch_id"),
		Page:       page,
		PageSize:   pageSize,
	}
	if date := c.Query("date"); date != "" {
		filters.Date = &date
	}
	if raw := c.Query("status"); raw != "" {
		status := models.AppointmentStatus(raw)
		if !status.IsValid() {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Unknown appointment status.", raw))
			return
		}
		filters.Status = &status
	}

	appts, total, err := h.appointmentService.GetAppointments(filters)
	if err != nil {
		if errors.Is(err, services.ErrAppointmentValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
		} else {
			utils.LogError(err, "GetAppointments: Error from appointmentService.GetAppointments")
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch appointments.", "Internal error"))
		}
		return
	}
	if appts == nil {
		appts = []models.Appointment{}
	}
	paginatedResponse(c, appts, total, page, pageSize)
}

// GetAppointmentByID fetches a single appointment.
func (h *AppointmentHandler) GetAppointmentByID(c *gin.Context) {
	apptID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	appt, err := h.appointmentService.GetAppointmentByID(apptID)
	if err != nil {
		if errors.Is(err, services.ErrAppointmentNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Appointment not found.", err.Error()))
		} else {
			utils.LogError(err, "GetAppointmentByID: Error from appointmentService.GetAppointmentByID")
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch appointment.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, appt)
}

type updateAppointmentStatusRequest struct {
	Status models.AppointmentStatus `json:"status" binding:"required"`
}

// UpdateAppointmentStatus moves an appointment through its lifecycle.
func (h *AppointmentHandler) UpdateAppointmentStatus(c *gin.Context) {
	apptID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req updateAppointmentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	appt, err := h.appointmentService.UpdateStatus(apptID, req.Status)
	if err != nil {
		utils.LogError(err, "UpdateAppointmentStatus: Error from appointmentService.UpdateStatus")
		switch {
		case errors.Is(err, services.ErrAppointmentNotFound):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Appointment not found.", err.Error()))
		case errors.Is(err, services.ErrAppointmentTransition):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Status transition not allowed.", err.Error()))
		case errors.Is(err, services.ErrAppointmentValidation):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
		default:
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to update appointment status.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, appt)
}

// MarkAppointmentPaid records payment for an appointment.
func (h *AppointmentHandler) MarkAppointmentPaid(c *gin.Context) {
	apptID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	appt, err := h.appointmentService.MarkPaid(apptID)
	if err != nil {
		utils.LogError(err, "MarkAppointmentPaid: Error from appointmentService.MarkPaid")
		switch {
		case errors.Is(err, services.ErrAppointmentNotFound):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Appointment not found.", err.Error()))
		case errors.Is(err, services.ErrAppointmentTransition):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Cannot record payment for this appointment.", err.Error()))
		default:
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to record payment.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, appt)
}

type submitFeedbackRequest struct {
	CustomerID int64   `json:"customer_id" binding:"required"`
	Rating     int     `json:"rating" binding:"required,min=1,max=5"`
	Comment    *string `json:"comment"`
}

// SubmitFeedback records customer feedback for a completed appointment.
func (h *AppointmentHandler) SubmitFeedback(c *gin.Context) {
	apptID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req submitFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	fb, err := h.appointmentService.SubmitFeedback(apptID, req.CustomerID, req.Rating, req.Comment)
	if err != nil {
		utils.LogError(err, "SubmitFeedback: Error from appointmentService.SubmitFeedback")
		switch {
		case errors.Is(err, services.ErrAppointmentNotFound):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Appointment not found.", err.Error()))
		case errors.Is(err, services.ErrFeedbackExists):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Feedback already submitted for this appointment.", err.Error()))
		case errors.Is(err, services.ErrFeedbackValidation):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
		default:
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to submit feedback.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusCreated, fb)
}

// GetStaffFeedback lists feedback left for a staff member's appointments.
func (h *AppointmentHandler) GetStaffFeedback(c *gin.Context) {
	staffID, ok := parseIDParam(c, "staff_id")
	if !ok {
		return
	}
	page, pageSize := pagination(c)

	feedback, total, err := h.appointmentService.GetFeedbackForStaff(staffID, page, pageSize)
	if err != nil {
		utils.LogError(err, "GetStaffFeedback: Error from appointmentService.GetFeedbackForStaff")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch feedback.", "Internal error"))
		return
	}
	if feedback == nil {
		feedback = []models.Feedback{}
	}
	paginatedResponse(c, feedback, total, page, pageSize)
}

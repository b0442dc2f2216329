package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"spa_salon_backend/internal/services"
	"spa_salon_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// ScheduleHandler holds the schedule service.
type ScheduleHandler struct {
	scheduleService services.ScheduleService
}

// NewScheduleHandler creates a new ScheduleHandler.
func NewScheduleHandler(ss services.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{scheduleService: ss}
}

// CreateShift handles registering a new shift in the catalog.
func (h *ScheduleHandler) CreateShift(c *gin.Context) {
	var req services.CreateShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	shift, err := h.scheduleService.CreateShift(req)
	if err != nil {
		utils.LogError(err, "CreateShift: Error from scheduleService.CreateShift")
		if errors.Is(err, services.ErrShiftValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to create shift.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusCreated, shift)
}

// GetShifts lists the shift catalog.
func (h *ScheduleHandler) GetShifts(c *gin.Context) {
	shifts, err := h.scheduleService.ListShifts()
	if err != nil {
		utils.LogError(err, "GetShifts: Error from scheduleService.ListShifts")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch shifts.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, shifts)
}

// GetShiftByID fetches a single shift.
func (h *ScheduleHandler) GetShiftByID(c *gin.Context) {
	shiftID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	shift, err := h.scheduleService.GetShiftByID(shiftID)
	if err != nil {
		if errors.Is(err, services.ErrShiftNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Shift not found.", err.Error()))
		} else {
			utils.LogError(err, "GetShiftByID: Error from scheduleService.GetShiftByID")
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch shift.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, shift)
}

// UpdateShift handles partial updates to a shift.
func (h *ScheduleHandler) UpdateShift(c *gin.Context) {
	shiftID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req services.UpdateShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	shift, err := h.scheduleService.UpdateShift(shiftID, req)
	if err != nil {
		utils.LogError(err, "UpdateShift: Error from scheduleService.UpdateShift")
		if errors.Is(err, services.ErrShiftNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Shift not found.", err.Error()))
		} else if errors.Is(err, services.ErrShiftValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to update shift.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, shift)
}

// CreateWorkSchedule assigns a staff member to one shift on a date.
func (h *ScheduleHandler) CreateWorkSchedule(c *gin.Context) {
	var req services.CreateWorkScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	ws, err := h.scheduleService.CreateWorkSchedule(req)
	if err != nil {
		utils.LogError(err, "CreateWorkSchedule: Error from scheduleService.CreateWorkSchedule")
		switch {
		case errors.Is(err, services.ErrScheduleConflict):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Schedule entry already exists.", err.Error()))
		case errors.Is(err, services.ErrStaffNotFound), errors.Is(err, services.ErrShiftNotFound):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Referenced entity not found.", err.Error()))
		case errors.Is(err, services.ErrScheduleValidation):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
		default:
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to create schedule entry.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusCreated, ws)
}

// CreateMultiShiftSchedule assigns a staff member to several shifts on a date
// in one atomic request.
func (h *ScheduleHandler) CreateMultiShiftSchedule(c *gin.Context) {
	var req services.CreateMultiShiftScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	created, err := h.scheduleService.CreateMultiShiftSchedule(req)
	if err != nil {
		utils.LogError(err, "CreateMultiShiftSchedule: Error from scheduleService.CreateMultiShiftSchedule")
		switch {
		case errors.Is(err, services.ErrScheduleConflict):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "One of the schedule entries already exists.", err.Error()))
		case errors.Is(err, services.ErrStaffNotFound), errors.Is(err, services.ErrShiftNotFound):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Referenced entity not found.", err.Error()))
		case errors.Is(err, services.ErrScheduleValidation):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
		default:
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to create schedule entries.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusCreated, created)
}

// GetSchedule lists a staff member's schedule for a month.
func (h *ScheduleHandler) GetSchedule(c *gin.Context) {
	staffID, ok := parseIDParam(c, "staff_id")
	if !ok {
		return
	}
	month, _ := strconv.Atoi(c.Query("month"))
	year, _ := strconv.Atoi(c.Query("year"))

	schedules, err := h.scheduleService.ListSchedule(staffID, month, year)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrScheduleMonthValidation):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid month or year.", err.Error()))
		case errors.Is(err, services.ErrStaffNotFound):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Staff member not found.", err.Error()))
		default:
			utils.LogError(err, "GetSchedule: Error from scheduleService.ListSchedule")
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch schedule.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, schedules)
}

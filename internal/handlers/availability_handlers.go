package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"spa_salon_backend/internal/services"
	"spa_salon_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// AvailabilityHandler holds the availability service.
type AvailabilityHandler struct {
	availabilityService services.AvailabilityService
}

// NewAvailabilityHandler creates a new AvailabilityHandler.
func NewAvailabilityHandler(as services.AvailabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{availabilityService: as}
}

func respondAvailabilityError(c *gin.Context, context string, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidDateFormat), errors.Is(err, services.ErrInvalidTimeRange):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
	case errors.Is(err, services.ErrStaffNotFound):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Staff member not found.", err.Error()))
	case errors.Is(err, services.ErrServiceNotFound):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Service offering not found.", err.Error()))
	default:
		utils.LogError(err, context)
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to compute availability.", "Internal error"))
	}
}

// GetBusyTimes returns the merged busy intervals for one staff member on a date.
func (h *AvailabilityHandler) GetBusyTimes(c *gin.Context) {
	staffID, ok := parseIDParam(c, "staff_id")
	if !ok {
		return
	}
	date := c.Query("date")

	busy, err := h.availabilityService.GetBusyTimes(staffID, date)
	if err != nil {
		respondAvailabilityError(c, "GetBusyTimes: Error from availabilityService.GetBusyTimes", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"staff_id":   staffID,
		"date":       date,
		"busy_times": busy,
	})
}

// GetMultiStaffBusyTimes returns busy intervals for several staff members at
// once. Staff IDs arrive as a comma-separated query parameter.
func (h *AvailabilityHandler) GetMultiStaffBusyTimes(c *gin.Context) {
	date := c.Query("date")
	rawIDs := c.Query("staff_ids")
	if rawIDs == "" {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "staff_ids query parameter is required.", ""))
		return
	}

	var staffIDs []int64
	for _, part := range strings.Split(rawIDs, ",") {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil || id <= 0 {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid staff ID in staff_ids.", part))
			return
		}
		staffIDs = append(staffIDs, id)
	}

	result, err := h.availabilityService.GetMultiStaffBusyTimes(staffIDs, date)
	if err != nil {
		respondAvailabilityError(c, "GetMultiStaffBusyTimes: Error from availabilityService.GetMultiStaffBusyTimes", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"date":       date,
		"busy_times": result,
	})
}

// GetFreeStaff lists staff of a branch offering a service who are free for
// the whole requested window.
func (h *AvailabilityHandler) GetFreeStaff(c *gin.Context) {
	branchID := optionalQueryInt64(c, "branch_id")
	serviceID := optionalQueryInt64(c, "service_id")
	if branchID == nil || serviceID == nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "branch_id and service_id query parameters are required.", ""))
		return
	}
	date := c.Query("date")
	start := c.Query("start")
	end := c.Query("end")

	free, err := h.availabilityService.ListStaffFreeInTime(*branchID, *serviceID, date, start, end)
	if err != nil {
		respondAvailabilityError(c, "GetFreeStaff: Error from availabilityService.ListStaffFreeInTime", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"date":      date,
		"start":     start,
		"end":       end,
		"staff_ids": free,
	})
}

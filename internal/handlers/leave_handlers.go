package handlers

import (
	"errors"
	"net/http"

	"spa_salon_backend/internal/models"
	"spa_salon_backend/internal/services"
	"spa_salon_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// LeaveHandler holds the leave service.
type LeaveHandler struct {
	leaveService services.LeaveService
}

// NewLeaveHandler creates a new LeaveHandler.
func NewLeaveHandler(ls services.LeaveService) *LeaveHandler {
	return &LeaveHandler{leaveService: ls}
}

// RequestLeave files a new leave request for a staff member.
func (h *LeaveHandler) RequestLeave(c *gin.Context) {
	principal, ok := principalFrom(c)
	if !ok {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Authentication required.", ""))
		return
	}
	var req services.RequestLeaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	leave, err := h.leaveService.RequestLeave(req, principal)
	if err != nil {
		utils.LogError(err, "RequestLeave: Error from leaveService.RequestLeave")
		switch {
		case errors.Is(err, services.ErrLeavePermission):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusForbidden, utils.ErrCodeForbidden, "Not allowed to request leave for this staff member.", err.Error()))
		case errors.Is(err, services.ErrStaffNotFound):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Staff member not found.", err.Error()))
		case errors.Is(err, services.ErrLeaveValidation):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
		default:
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to create leave request.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusCreated, leave)
}

// GetLeaves lists leave requests, optionally filtered by staff and status.
func (h *LeaveHandler) GetLeaves(c *gin.Context) {
	page, pageSize := pagination(c)
	staffID := optionalQueryInt64(c, "staff_id")

	var status *models.LeaveStatus
	if raw := c.Query("status"); raw != "" {
		s := models.LeaveStatus(raw)
		if !s.IsValid() {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Unknown leave status.", raw))
			return
		}
		status = &s
	}

	leaves, total, err := h.leaveService.GetLeaves(staffID, status, page, pageSize)
	if err != nil {
		utils.LogError(err, "GetLeaves: Error from leaveService.GetLeaves")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch leave requests.", "Internal error"))
		return
	}
	if leaves == nil {
		leaves = []models.StaffLeave{}
	}
	paginatedResponse(c, leaves, total, page, pageSize)
}

// GetLeaveByID fetches a single leave request.
func (h *LeaveHandler) GetLeaveByID(c *gin.Context) {
	leaveID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	leave, err := h.leaveService.GetLeaveByID(leaveID)
	if err != nil {
		if errors.Is(err, services.ErrLeaveNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Leave request not found.", err.Error()))
		} else {
			utils.LogError(err, "GetLeaveByID: Error from leaveService.GetLeaveByID")
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch leave request.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, leave)
}

// ApproveLeave approves a pending leave and reports the per-appointment
// reassignment outcomes.
func (h *LeaveHandler) ApproveLeave(c *gin.Context) {
	principal, ok := principalFrom(c)
	if !ok {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Authentication required.", ""))
		return
	}
	leaveID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req services.ResolveLeaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	result, err := h.leaveService.ApproveLeave(leaveID, principal, req)
	if err != nil {
		utils.LogError(err, "ApproveLeave: Error from leaveService.ApproveLeave")
		switch {
		case errors.Is(err, services.ErrLeavePermission):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusForbidden, utils.ErrCodeForbidden, "Only administrators can approve leave.", err.Error()))
		case errors.Is(err, services.ErrLeaveNotFound):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Leave request not found.", err.Error()))
		case errors.Is(err, services.ErrLeaveNotPending):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Leave request has already been resolved.", err.Error()))
		case errors.Is(err, services.ErrStaffNotFound), errors.Is(err, services.ErrLeaveValidation):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
		default:
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to approve leave request.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, result)
}

// RejectLeave rejects a pending leave request.
func (h *LeaveHandler) RejectLeave(c *gin.Context) {
	principal, ok := principalFrom(c)
	if !ok {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Authentication required.", ""))
		return
	}
	leaveID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req services.ResolveLeaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	if err := h.leaveService.RejectLeave(leaveID, principal, req.Note); err != nil {
		utils.LogError(err, "RejectLeave: Error from leaveService.RejectLeave")
		switch {
		case errors.Is(err, services.ErrLeavePermission):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusForbidden, utils.ErrCodeForbidden, "Only administrators can reject leave.", err.Error()))
		case errors.Is(err, services.ErrLeaveNotFound):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Leave request not found.", err.Error()))
		case errors.Is(err, services.ErrLeaveNotPending):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Leave request has already been resolved.", err.Error()))
		default:
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to reject leave request.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Leave request rejected"})
}

package handlers

import (
	"errors"
	"net/http"

	"spa_salon_backend/internal/models"
	"spa_salon_backend/internal/services"
	"spa_salon_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// StaffHandler holds the staff service.
type StaffHandler struct {
	staffService services.StaffService
}

// NewStaffHandler creates a new StaffHandler.
func NewStaffHandler(ss services.StaffService) *StaffHandler {
	return &StaffHandler{staffService: ss}
}

func respondStaffError(c *gin.Context, err error, action string) {
	utils.LogError(err, "StaffHandler: "+action)
	switch {
	case errors.Is(err, services.ErrStaffNotFound):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Staff member not found.", err.Error()))
	case errors.Is(err, services.ErrServiceNotFound):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Service offering not found.", err.Error()))
	case errors.Is(err, services.ErrStaffUserConflict):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "This user is already linked to a staff member.", err.Error()))
	case errors.Is(err, services.ErrStaffValidation):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
	default:
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Staff operation failed.", "Internal error"))
	}
}

// CreateStaffMember registers a new staff member.
func (h *StaffHandler) CreateStaffMember(c *gin.Context) {
	var req services.CreateStaffMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	staff, err := h.staffService.CreateStaffMember(req)
	if err != nil {
		respondStaffError(c, err, "CreateStaffMember")
		return
	}
	c.JSON(http.StatusCreated, staff)
}

// GetStaffMembers lists staff members with optional search.
func (h *StaffHandler) GetStaffMembers(c *gin.Context) {
	page, pageSize := pagination(c)
	var searchTerm *string
	if search := c.Query("search"); search != "" {
		searchTerm = &search
	}

	staff, total, err := h.staffService.GetStaffMembers(page, pageSize, searchTerm)
	if err != nil {
		respondStaffError(c, err, "GetStaffMembers")
		return
	}
	if staff == nil {
		staff = []models.StaffMember{}
	}
	paginatedResponse(c, staff, total, page, pageSize)
}

// GetStaffMemberByID fetches a single staff member.
func (h *StaffHandler) GetStaffMemberByID(c *gin.Context) {
	staffID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	staff, err := h.staffService.GetStaffMemberByID(staffID)
	if err != nil {
		respondStaffError(c, err, "GetStaffMemberByID")
		return
	}
	c.JSON(http.StatusOK, staff)
}

// UpdateStaffMember applies a partial update to a staff record.
func (h *StaffHandler) UpdateStaffMember(c *gin.Context) {
	staffID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req services.UpdateStaffMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	staff, err := h.staffService.UpdateStaffMember(staffID, req)
	if err != nil {
		respondStaffError(c, err, "UpdateStaffMember")
		return
	}
	c.JSON(http.StatusOK, staff)
}

// AssignService links a service offering to a staff member.
func (h *StaffHandler) AssignService(c *gin.Context) {
	staffID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	serviceID, ok := parseIDParam(c, "service_id")
	if !ok {
		return
	}

	if err := h.staffService.AssignService(staffID, serviceID); err != nil {
		respondStaffError(c, err, "AssignService")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Service assigned to staff member."})
}

// UnassignService removes a service offering from a staff member.
func (h *StaffHandler) UnassignService(c *gin.Context) {
	staffID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	serviceID, ok := parseIDParam(c, "service_id")
	if !ok {
		return
	}

	if err := h.staffService.UnassignService(staffID, serviceID); err != nil {
		respondStaffError(c, err, "UnassignService")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Service removed from staff member."})
}

// GetServicesForStaff lists the service offering IDs a staff member performs.
func (h *StaffHandler) GetServicesForStaff(c *gin.Context) {
	staffID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	serviceIDs, err := h.staffService.GetServicesForStaff(staffID)
	if err != nil {
		respondStaffError(c, err, "GetServicesForStaff")
		return
	}
	if serviceIDs == nil {
		serviceIDs = []int64{}
	}
	c.JSON(http.StatusOK, gin.H{"staff_id": staffID, "service_ids": serviceIDs})
}

package handlers

import (
	"errors"
	"net/http"

	"spa_salon_backend/internal/models"
	"spa_salon_backend/internal/services"
	"spa_salon_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// CustomerHandler holds the customer service.
type CustomerHandler struct {
	customerService services.CustomerService
}

// NewCustomerHandler creates a new CustomerHandler.
func NewCustomerHandler(cs services.CustomerService) *CustomerHandler {
	return &CustomerHandler{customerService: cs}
}

func respondCustomerError(c *gin.Context, err error, action string) {
	utils.LogError(err, "CustomerHandler: "+action)
	switch {
	case errors.Is(err, services.ErrCustomerNotFound):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Customer not found.", err.Error()))
	case errors.Is(err, services.ErrCustomerPhoneConflict):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "A customer with this phone number already exists.", err.Error()))
	case errors.Is(err, services.ErrCustomerValidation):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
	default:
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Customer operation failed.", "Internal error"))
	}
}

// CreateCustomer registers a new customer.
func (h *CustomerHandler) CreateCustomer(c *gin.Context) {
	var req services.CreateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	customer, err := h.customerService.CreateCustomer(req)
	if err != nil {
		respondCustomerError(c, err, "CreateCustomer")
		return
	}
	c.JSON(http.StatusCreated, customer)
}

// GetCustomers lists customers with optional search and pagination.
// Passing ?phone= performs an exact phone number lookup instead.
func (h *CustomerHandler) GetCustomers(c *gin.Context) {
	if phone := c.Query("phone"); phone != "" {
		customer, err := h.customerService.GetCustomerByPhone(phone)
		if err != nil {
			respondCustomerError(c, err, "GetCustomerByPhone")
			return
		}
		c.JSON(http.StatusOK, customer)
		return
	}

	page, pageSize := pagination(c)
	var searchTerm *string
	if search := c.Query("search"); search != "" {
		searchTerm = &search
	}

	customers, total, err := h.customerService.GetCustomers(page, pageSize, searchTerm)
	if err != nil {
		respondCustomerError(c, err, "GetCustomers")
		return
	}
	if customers == nil {
		customers = []models.Customer{}
	}
	paginatedResponse(c, customers, total, page, pageSize)
}

// GetCustomerByID fetches a single customer.
func (h *CustomerHandler) GetCustomerByID(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	customer, err := h.customerService.GetCustomerByID(id)
	if err != nil {
		respondCustomerError(c, err, "GetCustomerByID")
		return
	}
	c.JSON(http.StatusOK, customer)
}

// UpdateCustomer applies a partial update to a customer record.
func (h *CustomerHandler) UpdateCustomer(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req services.UpdateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	customer, err := h.customerService.UpdateCustomer(id, req)
	if err != nil {
		respondCustomerError(c, err, "UpdateCustomer")
		return
	}
	c.JSON(http.StatusOK, customer)
}

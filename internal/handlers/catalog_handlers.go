package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"spa_salon_backend/internal/models"
	"spa_salon_backend/internal/services"
	"spa_salon_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// CatalogHandler holds the catalog service.
type CatalogHandler struct {
	catalogService services.CatalogService
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(cs services.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: cs}
}

func respondCatalogError(c *gin.Context, err error, action string) {
	utils.LogError(err, "CatalogHandler: "+action)
	switch {
	case errors.Is(err, services.ErrServiceNotFound):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Service offering not found.", err.Error()))
	case errors.Is(err, services.ErrProductNotFound):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Product not found.", err.Error()))
	case errors.Is(err, services.ErrCatalogValidation):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
	default:
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Catalog operation failed.", "Internal error"))
	}
}

// CreateServiceOffering adds a new bookable service.
func (h *CatalogHandler) CreateServiceOffering(c *gin.Context) {
	var req services.CreateServiceOfferingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	svc, err := h.catalogService.CreateServiceOffering(req)
	if err != nil {
		respondCatalogError(c, err, "CreateServiceOffering")
		return
	}
	c.JSON(http.StatusCreated, svc)
}

// GetServiceOfferings lists service offerings.
func (h *CatalogHandler) GetServiceOfferings(c *gin.Context) {
	activeOnly, _ := strconv.ParseBool(c.DefaultQuery("active_only", "false"))

	offerings, err := h.catalogService.ListServiceOfferings(activeOnly)
	if err != nil {
		respondCatalogError(c, err, "GetServiceOfferings")
		return
	}
	if offerings == nil {
		offerings = []models.ServiceOffering{}
	}
	c.JSON(http.StatusOK, offerings)
}

// GetServiceOfferingByID fetches a single service offering.
func (h *CatalogHandler) GetServiceOfferingByID(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	svc, err := h.catalogService.GetServiceOfferingByID(id)
	if err != nil {
		respondCatalogError(c, err, "GetServiceOfferingByID")
		return
	}
	c.JSON(http.StatusOK, svc)
}

// UpdateServiceOffering applies a partial update to a service offering.
func (h *CatalogHandler) UpdateServiceOffering(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req services.UpdateServiceOfferingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	svc, err := h.catalogService.UpdateServiceOffering(id, req)
	if err != nil {
		respondCatalogError(c, err, "UpdateServiceOffering")
		return
	}
	c.JSON(http.StatusOK, svc)
}

// CreateProduct adds a new retail product.
func (h *CatalogHandler) CreateProduct(c *gin.Context) {
	var req services.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	product, err := h.catalogService.CreateProduct(req)
	if err != nil {
		respondCatalogError(c, err, "CreateProduct")
		return
	}
	c.JSON(http.StatusCreated, product)
}

// GetProducts lists products.
func (h *CatalogHandler) GetProducts(c *gin.Context) {
	activeOnly, _ := strconv.ParseBool(c.DefaultQuery("active_only", "false"))

	products, err := h.catalogService.ListProducts(activeOnly)
	if err != nil {
		respondCatalogError(c, err, "GetProducts")
		return
	}
	if products == nil {
		products = []models.Product{}
	}
	c.JSON(http.StatusOK, products)
}

// GetProductByID fetches a single product.
func (h *CatalogHandler) GetProductByID(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	product, err := h.catalogService.GetProductByID(id)
	if err != nil {
		respondCatalogError(c, err, "GetProductByID")
		return
	}
	c.JSON(http.StatusOK, product)
}

// UpdateProduct applies a partial update to a product.
func (h *CatalogHandler) UpdateProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req services.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	product, err := h.catalogService.UpdateProduct(id, req)
	if err != nil {
		respondCatalogError(c, err, "UpdateProduct")
		return
	}
	c.JSON(http.StatusOK, product)
}

type restockProductRequest struct {
	Quantity int `json:"quantity" binding:"required,gt=0"`
}

// RestockProduct increments a product's stock level.
func (h *CatalogHandler) RestockProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req restockProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	newStock, err := h.catalogService.RestockProduct(id, req.Quantity)
	if err != nil {
		respondCatalogError(c, err, "RestockProduct")
		return
	}
	c.JSON(http.StatusOK, gin.H{"product_id": id, "stock_quantity": newStock})
}

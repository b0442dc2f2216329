package services

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"spa_salon_backend/internal/models"
	"spa_salon_backend/internal/repositories"
)

// --- Custom Service Errors for Catalog ---
var (
	ErrProductNotFound   = errors.New("product not found")
	ErrCatalogValidation = errors.New("catalog validation error")
)

// --- DTOs ---
type CreateServiceOfferingRequest struct {
	Name            string          `json:"name" binding:"required"`
	Description     *string         `json:"description"`
	DurationMinutes int             `json:"duration_minutes" binding:"required,gt=0"`
	Price           decimal.Decimal `json:"price" binding:"required"`
}

type UpdateServiceOfferingRequest struct {
	Name            *string          `json:"name"`
	Description     *string          `json:"description"`
	DurationMinutes *int             `json:"duration_minutes" binding:"omitempty,gt=0"`
	Price           *decimal.Decimal `json:"price"`
	IsActive        *bool            `json:"is_active"`
}

type CreateProductRequest struct {
	Name          string          `json:"name" binding:"required"`
	Description   *string         `json:"description"`
	Price         decimal.Decimal `json:"price" binding:"required"`
	StockQuantity int             `json:"stock_quantity" binding:"gte=0"`
}

type UpdateProductRequest struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	IsActive    *bool            `json:"is_active"`
}

// --- CatalogService Interface ---
type CatalogService interface {
	CreateServiceOffering(req CreateServiceOfferingRequest) (*models.ServiceOffering, error)
	GetServiceOfferingByID(id int64) (*models.ServiceOffering, error)
	ListServiceOfferings(activeOnly bool) ([]models.ServiceOffering, error)
	UpdateServiceOffering(id int64, req UpdateServiceOfferingRequest) (*models.ServiceOffering, error)

	CreateProduct(req CreateProductRequest) (*models.Product, error)
	GetProductByID(id int64) (*models.Product, error)
	ListProducts(activeOnly bool) ([]models.Product, error)
	UpdateProduct(id int64, req UpdateProductRequest) (*models.Product, error)
	RestockProduct(id int64, quantity int) (int, error)
}

type catalogService struct {
	catalogRepo repositories.CatalogRepository
	db          *sql.DB
}

// NewCatalogService creates a new instance of CatalogService.
func NewCatalogService(catalogRepo repositories.CatalogRepository, db *sql.DB) CatalogService {
	return &catalogService{catalogRepo: catalogRepo, db: db}
}

func (s *catalogService) CreateServiceOffering(req CreateServiceOfferingRequest) (*models.ServiceOffering, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("%w: name cannot be empty", ErrCatalogValidation)
	}
	if req.Price.IsNegative() {
		return nil, fmt.Errorf("%w: price cannot be negative", ErrCatalogValidation)
	}
	if req.DurationMinutes <= 0 || req.DurationMinutes > models.MinutesPerDay {
		return nil, fmt.Errorf("%w: duration must be between 1 and %d minutes", ErrCatalogValidation, models.MinutesPerDay)
	}

	svc := &models.ServiceOffering{
		Name:            strings.TrimSpace(req.Name),
		Description:     req.Description,
		DurationMinutes: req.DurationMinutes,
		Price:           req.Price,
		IsActive:        true,
	}
	created, err := s.catalogRepo.CreateServiceOffering(s.db, svc)
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, fmt.Errorf("%w: name %q already in use", ErrCatalogValidation, svc.Name)
		}
		return nil, fmt.Errorf("failed to create service offering: %w", err)
	}
	return created, nil
}

func (s *catalogService) GetServiceOfferingByID(id int64) (*models.ServiceOffering, error) {
	svc, err := s.catalogRepo.GetServiceOfferingByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrServiceNotFound
		}
		return nil, fmt.Errorf("failed to get service offering: %w", err)
	}
	return svc, nil
}

func (s *catalogService) ListServiceOfferings(activeOnly bool) ([]models.ServiceOffering, error) {
	offerings, err := s.catalogRepo.ListServiceOfferings(activeOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list service offerings: %w", err)
	}
	return offerings, nil
}

func (s *catalogService) UpdateServiceOffering(id int64, req UpdateServiceOfferingRequest) (*models.ServiceOffering, error) {
	svc, err := s.catalogRepo.GetServiceOfferingByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrServiceNotFound
		}
		return nil, fmt.Errorf("failed to find service offering for update: %w", err)
	}

	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return nil, fmt.Errorf("%w: name cannot be empty if provided", ErrCatalogValidation)
		}
		svc.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		svc.Description = req.Description
	}
	if req.DurationMinutes != nil {
		if *req.DurationMinutes <= 0 || *req.DurationMinutes > models.MinutesPerDay {
			return nil, fmt.Errorf("%w: duration must be between 1 and %d minutes", ErrCatalogValidation, models.MinutesPerDay)
		}
		svc.DurationMinutes = *req.DurationMinutes
	}
	if req.Price != nil {
		if req.Price.IsNegative() {
			return nil, fmt.Errorf("%w: price cannot be negative", ErrCatalogValidation)
		}
		svc.Price = *req.Price
	}
	if req.IsActive != nil {
		svc.IsActive = *req.IsActive
	}

	updated, err := s.catalogRepo.UpdateServiceOffering(s.db, svc)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrServiceNotFound
		}
		return nil, fmt.Errorf("failed to update service offering: %w", err)
	}
	return updated, nil
}

func (s *catalogService) CreateProduct(req CreateProductRequest) (*models.Product, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("%w: name cannot be empty", ErrCatalogValidation)
	}
	if req.Price.IsNegative() {
		return nil, fmt.Errorf("%w: price cannot be negative", ErrCatalogValidation)
	}
	if req.StockQuantity < 0 {
		return nil, fmt.Errorf("%w: stock quantity cannot be negative", ErrCatalogValidation)
	}

	product := &models.Product{
		Name:          strings.TrimSpace(req.Name),
		Description:   req.Description,
		Price:         req.Price,
		StockQuantity: req.StockQuantity,
		IsActive:      true,
	}
	created, err := s.catalogRepo.CreateProduct(s.db, product)
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, fmt.Errorf("%w: name %q already in use", ErrCatalogValidation, product.Name)
		}
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return created, nil
}

func (s *catalogService) GetProductByID(id int64) (*models.Product, error) {
	product, err := s.catalogRepo.GetProductByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return product, nil
}

func (s *catalogService) ListProducts(activeOnly bool) ([]models.Product, error) {
	products, err := s.catalogRepo.ListProducts(activeOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

func (s *catalogService) UpdateProduct(id int64, req UpdateProductRequest) (*models.Product, error) {
	product, err := s.catalogRepo.GetProductByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product for update: %w", err)
	}

	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return nil, fmt.Errorf("%w: name cannot be empty if provided", ErrCatalogValidation)
		}
		product.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		product.Description = req.Description
	}
	if req.Price != nil {
		if req.Price.IsNegative() {
			return nil, fmt.Errorf("%w: price cannot be negative", ErrCatalogValidation)
		}
		product.Price = *req.Price
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}

	updated, err := s.catalogRepo.UpdateProduct(s.db, product)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	return updated, nil
}

func (s *catalogService) RestockProduct(id int64, quantity int) (int, error) {
	if quantity <= 0 {
		return 0, fmt.Errorf("%w: restock quantity must be positive", ErrCatalogValidation)
	}
	newStock, err := s.catalogRepo.AdjustStock(s.db, id, quantity)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return 0, ErrProductNotFound
		}
		return 0, fmt.Errorf("failed to restock product: %w", err)
	}
	return newStock, nil
}

package services

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"spa_salon_backend/internal/models"
	"spa_salon_backend/internal/repositories"
)

// --- Custom Service Errors for Orders ---
var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrOrderValidation   = errors.New("order validation error")
	ErrOrderTransition   = errors.New("invalid order status transition")
	ErrInsufficientStock = errors.New("insufficient stock for product")
)

// orderTransitions maps each order status to the statuses it may move to.
var orderTransitions = map[models.OrderStatus][]models.OrderStatus{
	models.OrderStatusPending: {models.OrderStatusPaid, models.OrderStatusCancelled},
	models.OrderStatusPaid:    {models.OrderStatusRefunded},
}

// --- DTOs ---
type CreateOrderItemRequest struct {
	ProductID int64 `json:"product_id" binding:"required"`
	Quantity  int   `json:"quantity" binding:"required,gt=0"`
}

type CreateOrderRequest struct {
	CustomerID *int64                   `json:"customer_id"`
	StaffID    int64                    `json:"staff_id" binding:"required"`
	BranchID   int64                    `json:"branch_id" binding:"required"`
	Notes      *string                  `json:"notes"`
	OrderItems []CreateOrderItemRequest `json:"order_items" binding:"required,min=1,dive"`
}

// --- OrderService Interface ---
type OrderService interface {
	CreateOrder(req CreateOrderRequest) (*models.Order, error)
	GetOrderByID(orderID int64) (*models.Order, error)
	GetOrders(staffID, customerID *int64, status *models.OrderStatus, page, pageSize int) ([]models.Order, int, error)
	UpdateOrderStatus(orderID int64, status models.OrderStatus) (*models.Order, error)
}

type orderService struct {
	orderRepo   repositories.OrderRepository
	catalogRepo repositories.CatalogRepository
	staffRepo   repositories.StaffRepository
	db          *sql.DB // For managing transactions
}

// NewOrderService creates a new instance of OrderService.
func NewOrderService(
	orderRepo repositories.OrderRepository,
	catalogRepo repositories.CatalogRepository,
	staffRepo repositories.StaffRepository,
	db *sql.DB,
) OrderService {
	return &orderService{
		orderRepo:   orderRepo,
		catalogRepo: catalogRepo,
		staffRepo:   staffRepo,
		db:          db,
	}
}

// CreateOrder writes the order, its lines and the stock decrements in one
// transaction. Unit prices are snapshotted from the product at order time.
func (s *orderService) CreateOrder(req CreateOrderRequest) (*models.Order, error) {
	if _, err := s.staffRepo.GetStaffMemberByID(req.StaffID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: ID %d", ErrStaffNotFound, req.StaffID)
		}
		return nil, fmt.Errorf("failed to validate staff for order: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	totalAmount := decimal.Zero
	itemsToCreate := make([]models.OrderItem, 0, len(req.OrderItems))

	for _, itemReq := range req.OrderItems {
		if itemReq.Quantity <= 0 {
			return nil, fmt.Errorf("%w: quantity for product %d must be positive", ErrOrderValidation, itemReq.ProductID)
		}
		product, repoErr := s.catalogRepo.GetProductByID(itemReq.ProductID)
		if repoErr != nil {
			if errors.Is(repoErr, repositories.ErrNotFound) {
				return nil, fmt.Errorf("%w: product ID %d", ErrProductNotFound, itemReq.ProductID)
			}
			return nil, fmt.Errorf("failed to fetch product %d: %w", itemReq.ProductID, repoErr)
		}
		if !product.IsActive {
			return nil, fmt.Errorf("%w: product %q is inactive", ErrOrderValidation, product.Name)
		}

		_, repoErr = s.catalogRepo.AdjustStock(tx, itemReq.ProductID, -itemReq.Quantity)
		if repoErr != nil {
			if errors.Is(repoErr, repositories.ErrInsufficientStock) {
				return nil, fmt.Errorf("%w: %s (ID %d), requested %d, available %d",
					ErrInsufficientStock, product.Name, product.ID, itemReq.Quantity, product.StockQuantity)
			}
			return nil, fmt.Errorf("failed to update stock for product %d: %w", itemReq.ProductID, repoErr)
		}

		lineTotal := product.Price.Mul(decimal.NewFromInt(int64(itemReq.Quantity)))
		totalAmount = totalAmount.Add(lineTotal)
		itemsToCreate = append(itemsToCreate, models.OrderItem{
			ProductID: itemReq.ProductID,
			Quantity:  itemReq.Quantity,
			UnitPrice: product.Price,
		})
	}

	order := models.Order{
		CustomerID:  req.CustomerID,
		StaffID:     req.StaffID,
		BranchID:    req.BranchID,
		Status:      models.OrderStatusPending,
		TotalAmount: totalAmount,
		Notes:       req.Notes,
	}
	orderID, repoErr := s.orderRepo.CreateOrder(tx, &order)
	if repoErr != nil {
		return nil, fmt.Errorf("failed to create order record: %w", repoErr)
	}
	order.ID = orderID

	for i := range itemsToCreate {
		itemsToCreate[i].OrderID = orderID
		created, repoErr := s.orderRepo.CreateOrderItem(tx, &itemsToCreate[i])
		if repoErr != nil {
			return nil, fmt.Errorf("failed to create order item (product_id: %d): %w", itemsToCreate[i].ProductID, repoErr)
		}
		itemsToCreate[i] = *created
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit order transaction: %w", err)
	}
	order.Items = itemsToCreate
	return &order, nil
}

func (s *orderService) GetOrderByID(orderID int64) (*models.Order, error) {
	order, err := s.orderRepo.GetOrderByID(orderID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order by ID: %w", err)
	}
	return order, nil
}

func (s *orderService) GetOrders(staffID, customerID *int64, status *models.OrderStatus, page, pageSize int) ([]models.Order, int, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	if status != nil && !status.IsValid() {
		return nil, 0, fmt.Errorf("%w: unknown status %q", ErrOrderValidation, *status)
	}
	orders, total, err := s.orderRepo.GetOrders(staffID, customerID, status, page, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, total, nil
}

// UpdateOrderStatus enforces the order lifecycle. Cancelling a pending order
// and refunding a paid one both return the stock consumed by its lines.
func (s *orderService) UpdateOrderStatus(orderID int64, status models.OrderStatus) (*models.Order, error) {
	if !status.IsValid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrOrderValidation, status)
	}
	order, err := s.orderRepo.GetOrderByID(orderID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to load order: %w", err)
	}

	allowed := false
	for _, next := range orderTransitions[order.Status] {
		if next == status {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, fmt.Errorf("%w: %s -> %s", ErrOrderTransition, order.Status, status)
	}

	restock := status == models.OrderStatusCancelled || status == models.OrderStatusRefunded

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.orderRepo.UpdateOrderStatus(tx, orderID, status); err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}
	if restock {
		for _, item := range order.Items {
			if _, err := s.catalogRepo.AdjustStock(tx, item.ProductID, item.Quantity); err != nil {
				return nil, fmt.Errorf("failed to return stock for product %d: %w", item.ProductID, err)
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit order status transaction: %w", err)
	}

	order.Status = status
	return order, nil
}

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the closed set of retail order states.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusCancelled OrderStatus = "cancelled"
	OrderStatusRefunded  OrderStatus = "refunded"
)

// IsValid reports whether s is a known order status.
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusPaid, OrderStatusCancelled, OrderStatusRefunded:
		return true
	}
	return false
}

// Order is a retail product sale, optionally linked to a customer and the
// staff member who rang it up.
type Order struct {
	ID          int64           `json:"id"`
	CustomerID  *int64          `json:"customer_id,omitempty" db:"customer_id"`
	StaffID     int64           `json:"staff_id" db:"staff_id"`
	BranchID    int64           `json:"branch_id" db:"branch_id"`
	Status      OrderStatus     `json:"status" db:"status"`
	TotalAmount decimal.Decimal `json:"total_amount" db:"total_amount"`
	Notes       *string         `json:"notes,omitempty" db:"notes"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`
	Items       []OrderItem     `json:"items,omitempty"`
}

// OrderItem is a line in an order; unit price is snapshotted from the product
// at order time.
type OrderItem struct {
	ID        int64           `json:"id"`
	OrderID   int64           `json:"order_id" db:"order_id"`
	ProductID int64           `json:"product_id" db:"product_id"`
	Quantity  int             `json:"quantity" db:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price" db:"unit_price"`
	Product   *Product        `json:"product,omitempty"` // For joining with Product details
}

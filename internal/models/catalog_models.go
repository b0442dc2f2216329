package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ServiceOffering is a bookable spa/salon service (e.g., haircut, massage).
// Duration drives the appointment's occupied time window.
type ServiceOffering struct {
	ID              int64           `json:"id"`
	Name            string          `json:"name" db:"name"`
	Description     *string         `json:"description,omitempty" db:"description"`
	DurationMinutes int             `json:"duration_minutes" db:"duration_minutes"`
	Price           decimal.Decimal `json:"price" db:"price"`
	IsActive        bool            `json:"is_active" db:"is_active"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at" db:"updated_at"`
}

// Product is a retail item sold at the salon (e.g., shampoo, oils).
type Product struct {
	ID            int64           `json:"id"`
	Name          string          `json:"name" db:"name"`
	Description   *string         `json:"description,omitempty" db:"description"`
	Price         decimal.Decimal `json:"price" db:"price"`
	StockQuantity int             `json:"stock_quantity" db:"stock_quantity"`
	IsActive      bool            `json:"is_active" db:"is_active"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at" db:"updated_at"`
}

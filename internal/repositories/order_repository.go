package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"spa_salon_backend/internal/models"
)

// OrderRepository defines the interface for retail order database operations.
type OrderRepository interface {
	CreateOrder(executor SQLExecutor, order *models.Order) (int64, error)
	CreateOrderItem(executor SQLExecutor, item *models.OrderItem) (*models.OrderItem, error)
	GetOrderByID(id int64) (*models.Order, error)
	GetOrders(staffID, customerID *int64, status *models.OrderStatus, page, pageSize int) ([]models.Order, int, error)
	UpdateOrderStatus(executor SQLExecutor, id int64, status models.OrderStatus) error
}

type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository creates a new instance of OrderRepository.
func NewOrderRepository(db *sql.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) CreateOrder(executor SQLExecutor, order *models.Order) (int64, error) {
	query := `INSERT INTO orders (customer_id, staff_id, branch_id, status, total_amount, notes, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	          RETURNING id`

	currentTime := time.Now()
	order.CreatedAt = currentTime
	order.UpdatedAt = currentTime

	var orderID int64
	err := executor.QueryRow(query,
		order.CustomerID, order.StaffID, order.BranchID, order.Status,
		order.TotalAmount, order.Notes, order.CreatedAt, order.UpdatedAt,
	).Scan(&orderID)

	if err != nil {
		if isForeignKeyViolation(err) {
			return 0, fmt.Errorf("%w: customer, staff or branch for order not found", ErrNotFound)
		}
		return 0, fmt.Errorf("%w: creating order: %v", ErrDatabaseError, err)
	}
	order.ID = orderID
	return orderID, nil
}

func (r *orderRepository) CreateOrderItem(executor SQLExecutor, item *models.OrderItem) (*models.OrderItem, error) {
	query := `INSERT INTO order_items (order_id, product_id, quantity, unit_price)
	          VALUES ($1, $2, $3, $4)
	          RETURNING id`

	err := executor.QueryRow(query,
		item.OrderID, item.ProductID, item.Quantity, item.UnitPrice,
	).Scan(&item.ID)

	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, fmt.Errorf("%w: order %d or product %d not found", ErrNotFound, item.OrderID, item.ProductID)
		}
		return nil, fmt.Errorf("%w: creating order item: %v", ErrDatabaseError, err)
	}
	return item, nil
}

func (r *orderRepository) GetOrderByID(id int64) (*models.Order, error) {
	order := &models.Order{}
	var customerID sql.NullInt64
	var notes sql.NullString

	query := `SELECT id, customer_id, staff_id, branch_id, status, total_amount, notes, created_at, updated_at
	          FROM orders WHERE id = $1`

	err := r.db.QueryRow(query, id).Scan(
		&order.ID, &customerID, &order.StaffID, &order.BranchID, &order.Status,
		&order.TotalAmount, &notes, &order.CreatedAt, &order.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting order ID %d: %v", ErrDatabaseError, id, err)
	}
	if customerID.Valid {
		order.CustomerID = &customerID.Int64
	}
	if notes.Valid {
		order.Notes = &notes.String
	}

	items, err := r.getOrderItems(id)
	if err != nil {
		return nil, err
	}
	order.Items = items
	return order, nil
}

func (r *orderRepository) getOrderItems(orderID int64) ([]models.OrderItem, error) {
	items := []models.OrderItem{}

	query := `SELECT oi.id, oi.order_id, oi.product_id, oi.quantity, oi.unit_price, p.name
	          FROM order_items oi
	          JOIN products p ON oi.product_id = p.id
	          WHERE oi.order_id = $1
	          ORDER BY oi.id ASC`

	rows, err := r.db.Query(query, orderID)
	if err != nil {
		return nil, fmt.Errorf("%w: querying order items: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var item models.OrderItem
		var productName string
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.UnitPrice, &productName); err != nil {
			return nil, fmt.Errorf("%w: scanning order item: %v", ErrDatabaseError, err)
		}
		item.Product = &models.Product{ID: item.ProductID, Name: productName}
		items = append(items, item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating order item rows: %v", ErrDatabaseError, err)
	}
	return items, nil
}

func (r *orderRepository) GetOrders(staffID, customerID *int64, status *models.OrderStatus, page, pageSize int) ([]models.Order, int, error) {
	orders := []models.Order{}
	totalCount := 0

	query := `SELECT id, customer_id, staff_id, branch_id, status, total_amount, notes, created_at, updated_at,
	       COUNT(*) OVER() as total_count
	FROM orders
	WHERE ($1::bigint IS NULL OR staff_id = $1)
	  AND ($2::bigint IS NULL OR customer_id = $2)
	  AND ($3::text IS NULL OR status = $3)
	ORDER BY created_at DESC
	LIMIT $4 OFFSET $5`

	var staffArg, customerArg sql.NullInt64
	if staffID != nil {
		staffArg = sql.NullInt64{Int64: *staffID, Valid: true}
	}
	if customerID != nil {
		customerArg = sql.NullInt64{Int64: *customerID, Valid: true}
	}
	var statusArg sql.NullString
	if status != nil {
		statusArg = sql.NullString{String: string(*status), Valid: true}
	}

	rows, err := r.db.Query(query, staffArg, customerArg, statusArg, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: querying orders: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var order models.Order
		var orderCustomerID sql.NullInt64
		var notes sql.NullString
		var currentTotalCount int

		if err := rows.Scan(
			&order.ID, &orderCustomerID, &order.StaffID, &order.BranchID, &order.Status,
			&order.TotalAmount, &notes, &order.CreatedAt, &order.UpdatedAt,
			&currentTotalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("%w: scanning order: %v", ErrDatabaseError, err)
		}
		totalCount = currentTotalCount

		if orderCustomerID.Valid {
			order.CustomerID = &orderCustomerID.Int64
		}
		if notes.Valid {
			order.Notes = &notes.String
		}
		orders = append(orders, order)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating order rows: %v", ErrDatabaseError, err)
	}
	return orders, totalCount, nil
}

func (r *orderRepository) UpdateOrderStatus(executor SQLExecutor, id int64, status models.OrderStatus) error {
	result, err := executor.Exec(
		`UPDATE orders SET status = $1, updated_at = $2 WHERE id = $3`,
		status, time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("%w: updating order %d status: %v", ErrDatabaseError, id, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

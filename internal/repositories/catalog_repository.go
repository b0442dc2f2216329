package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"spa_salon_backend/internal/models"
)

// ErrInsufficientStock is returned when a stock adjustment would drive a
// product's quantity below zero.
var ErrInsufficientStock = errors.New("insufficient stock")

// CatalogRepository defines the interface for service offering and retail
// product database operations.
type CatalogRepository interface {
	CreateServiceOffering(executor SQLExecutor, svc *models.ServiceOffering) (*models.ServiceOffering, error)
	GetServiceOfferingByID(id int64) (*models.ServiceOffering, error)
	ListServiceOfferings(activeOnly bool) ([]models.ServiceOffering, error)
	UpdateServiceOffering(executor SQLExecutor, svc *models.ServiceOffering) (*models.ServiceOffering, error)

	CreateProduct(executor SQLExecutor, product *models.Product) (*models.Product, error)
	GetProductByID(id int64) (*models.Product, error)
	ListProducts(activeOnly bool) ([]models.Product, error)
	UpdateProduct(executor SQLExecutor, product *models.Product) (*models.Product, error)
	// AdjustStock changes a product's stock by delta (negative to consume).
	// Fails with ErrInsufficientStock when the result would be negative.
	AdjustStock(executor SQLExecutor, productID int64, delta int) (int, error)
}

type catalogRepository struct {
	db *sql.DB
}

// NewCatalogRepository creates a new instance of CatalogRepository.
func NewCatalogRepository(db *sql.DB) CatalogRepository {
	return &catalogRepository{db: db}
}

func (r *catalogRepository) CreateServiceOffering(executor SQLExecutor, svc *models.ServiceOffering) (*models.ServiceOffering, error) {
	query := `INSERT INTO service_offerings (name, description, duration_minutes, price, is_active, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)
	          RETURNING id, created_at, updated_at`

	currentTime := time.Now()
	svc.CreatedAt = currentTime
	svc.UpdatedAt = currentTime

	err := executor.QueryRow(query,
		svc.Name, svc.Description, svc.DurationMinutes, svc.Price, svc.IsActive,
		svc.CreatedAt, svc.UpdatedAt,
	).Scan(&svc.ID, &svc.CreatedAt, &svc.UpdatedAt)

	if err != nil {
		if isUniqueViolation(err, "service_offerings_name_key") {
			return nil, fmt.Errorf("%w: service %q already exists", ErrDuplicateKey, svc.Name)
		}
		return nil, fmt.Errorf("%w: creating service offering: %v", ErrDatabaseError, err)
	}
	return svc, nil
}

func (r *catalogRepository) GetServiceOfferingByID(id int64) (*models.ServiceOffering, error) {
	svc := &models.ServiceOffering{}
	query := `SELECT id, name, description, duration_minutes, price, is_active, created_at, updated_at
	          FROM service_offerings WHERE id = $1`

	err := r.db.QueryRow(query, id).Scan(
		&svc.ID, &svc.Name, &svc.Description, &svc.DurationMinutes, &svc.Price,
		&svc.IsActive, &svc.CreatedAt, &svc.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting service offering ID %d: %v", ErrDatabaseError, id, err)
	}
	return svc, nil
}

func (r *catalogRepository) ListServiceOfferings(activeOnly bool) ([]models.ServiceOffering, error) {
	services := []models.ServiceOffering{}
	query := `SELECT id, name, description, duration_minutes, price, is_active, created_at, updated_at
	          FROM service_offerings`
	if activeOnly {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY name ASC`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("%w: querying service offerings: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var svc models.ServiceOffering
		if err := rows.Scan(
			&svc.ID, &svc.Name, &svc.Description, &svc.DurationMinutes, &svc.Price,
			&svc.IsActive, &svc.CreatedAt, &svc.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("%w: scanning service offering: %v", ErrDatabaseError, err)
		}
		services = append(services, svc)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating service offering rows: %v", ErrDatabaseError, err)
	}
	return services, nil
}

func (r *catalogRepository) UpdateServiceOffering(executor SQLExecutor, svc *models.ServiceOffering) (*models.ServiceOffering, error) {
	query := `UPDATE service_offerings SET
	            name = $1, description = $2, duration_minutes = $3, price = $4, is_active = $5, updated_at = $6
	          WHERE id = $7
	          RETURNING updated_at`
	svc.UpdatedAt = time.Now()

	err := executor.QueryRow(query,
		svc.Name, svc.Description, svc.DurationMinutes, svc.Price, svc.IsActive,
		svc.UpdatedAt, svc.ID,
	).Scan(&svc.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: updating service offering ID %d: %v", ErrDatabaseError, svc.ID, err)
	}
	return svc, nil
}

func (r *catalogRepository) CreateProduct(executor SQLExecutor, product *models.Product) (*models.Product, error) {
	query := `INSERT INTO products (name, description, price, stock_quantity, is_active, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)
	          RETURNING id, created_at, updated_at`

	currentTime := time.Now()
	product.CreatedAt = currentTime
	product.UpdatedAt = currentTime

	err := executor.QueryRow(query,
		product.Name, product.Description, product.Price, product.StockQuantity,
		product.IsActive, product.CreatedAt, product.UpdatedAt,
	).Scan(&product.ID, &product.CreatedAt, &product.UpdatedAt)

	if err != nil {
		if isUniqueViolation(err, "products_name_key") {
			return nil, fmt.Errorf("%w: product %q already exists", ErrDuplicateKey, product.Name)
		}
		return nil, fmt.Errorf("%w: creating product: %v", ErrDatabaseError, err)
	}
	return product, nil
}

func (r *catalogRepository) GetProductByID(id int64) (*models.Product, error) {
	product := &models.Product{}
	query := `SELECT id, name, description, price, stock_quantity, is_active, created_at, updated_at
	          FROM products WHERE id = $1`

	err := r.db.QueryRow(query, id).Scan(
		&product.ID, &product.Name, &product.Description, &product.Price,
		&product.StockQuantity, &product.IsActive, &product.CreatedAt, &product.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting product ID %d: %v", ErrDatabaseError, id, err)
	}
	return product, nil
}

func (r *catalogRepository) ListProducts(activeOnly bool) ([]models.Product, error) {
	products := []models.Product{}
	query := `SELECT id, name, description, price, stock_quantity, is_active, created_at, updated_at
	          FROM products`
	if activeOnly {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY name ASC`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("%w: querying products: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var product models.Product
		if err := rows.Scan(
			&product.ID, &product.Name, &product.Description, &product.Price,
			&product.StockQuantity, &product.IsActive, &product.CreatedAt, &product.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("%w: scanning product: %v", ErrDatabaseError, err)
		}
		products = append(products, product)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating product rows: %v", ErrDatabaseError, err)
	}
	return products, nil
}

func (r *catalogRepository) UpdateProduct(executor SQLExecutor, product *models.Product) (*models.Product, error) {
	query := `UPDATE products SET
	            name = $1, description = $2, price = $3, stock_quantity = $4, is_active = $5, updated_at = $6
	          WHERE id = $7
	          RETURNING updated_at`
	product.UpdatedAt = time.Now()

	err := executor.QueryRow(query,
		product.Name, product.Description, product.Price, product.StockQuantity,
		product.IsActive, product.UpdatedAt, product.ID,
	).Scan(&product.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: updating product ID %d: %v", ErrDatabaseError, product.ID, err)
	}
	return product, nil
}

func (r *catalogRepository) AdjustStock(executor SQLExecutor, productID int64, delta int) (int, error) {
	// The WHERE guard keeps stock non-negative under concurrent adjustments.
	query := `UPDATE products
	          SET stock_quantity = stock_quantity + $1, updated_at = $2
	          WHERE id = $3 AND stock_quantity + $1 >= 0
	          RETURNING stock_quantity`

	var newQuantity int
	err := executor.QueryRow(query, delta, time.Now(), productID).Scan(&newQuantity)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			if _, getErr := r.GetProductByID(productID); errors.Is(getErr, ErrNotFound) {
				return 0, ErrNotFound
			}
			return 0, fmt.Errorf("%w: product %d", ErrInsufficientStock, productID)
		}
		return 0, fmt.Errorf("%w: adjusting stock for product %d: %v", ErrDatabaseError, productID, err)
	}
	return newQuantity, nil
}

package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"spa_salon_backend/internal/models"
)

// AuthRepository defines the interface for authentication-related database operations.
type AuthRepository interface {
	CreateUser(executor SQLExecutor, user *models.User, hashedPassword string) (int64, error)
	FindUserByUsername(username string) (*models.User, string, error) // Returns User, HashedPassword, Error
	FindUserByID(userID int64) (*models.User, error)
}

type authRepository struct {
	db *sql.DB
}

// NewAuthRepository creates a new instance of AuthRepository.
func NewAuthRepository(db *sql.DB) AuthRepository {
	return &authRepository{db: db}
}

func (r *authRepository) CreateUser(executor SQLExecutor, user *models.User, hashedPassword string) (int64, error) {
	query := `INSERT INTO users (username, password_hash, email, full_name, role_id, is_active, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	          RETURNING id`

	currentTime := time.Now()

	var roleID sql.NullInt64
	if user.RoleID != nil {
		roleID = sql.NullInt64{Int64: *user.RoleID, Valid: true}
	}

	var userID int64
	err := executor.QueryRow(query,
		user.Username, hashedPassword, user.Email, user.FullName, roleID,
		true, currentTime, currentTime,
	).Scan(&userID)

	if err != nil {
		if isUniqueViolation(err, "") {
			return 0, fmt.Errorf("%w: username or email already taken", ErrDuplicateKey)
		}
		return 0, fmt.Errorf("%w: creating user: %v", ErrDatabaseError, err)
	}
	return userID, nil
}

const userSelect = `SELECT u.id, u.username, u.password_hash, u.email, u.full_name, u.role_id, u.is_active,
	       u.created_at, u.updated_at, ro.name
	FROM users u
	LEFT JOIN roles ro ON u.role_id = ro.id`

func scanUserRow(row scanner) (*models.User, string, error) {
	user := &models.User{}
	var hashedPassword string
	var roleID sql.NullInt64
	var roleName sql.NullString

	err := row.Scan(
		&user.ID, &user.Username, &hashedPassword, &user.Email, &user.FullName,
		&roleID, &user.IsActive, &user.CreatedAt, &user.UpdatedAt, &roleName,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", ErrNotFound
		}
		return nil, "", fmt.Errorf("%w: scanning user: %v", ErrDatabaseError, err)
	}

	if roleID.Valid {
		user.RoleID = &roleID.Int64
		if roleName.Valid {
			user.Role = &models.Role{ID: roleID.Int64, Name: roleName.String}
		}
	}
	return user, hashedPassword, nil
}

func (r *authRepository) FindUserByUsername(username string) (*models.User, string, error) {
	return scanUserRow(r.db.QueryRow(userSelect+` WHERE u.username = $1`, username))
}

func (r *authRepository) FindUserByID(userID int64) (*models.User, error) {
	user, _, err := scanUserRow(r.db.QueryRow(userSelect+` WHERE u.id = $1`, userID))
	return user, err
}

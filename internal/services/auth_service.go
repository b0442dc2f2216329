package services

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"spa_salon_backend/internal/models"
	"spa_salon_backend/internal/notifications"
	"spa_salon_backend/internal/repositories"
	"spa_salon_backend/pkg/utils"
)

// --- Custom Service Errors ---
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUsernameExists     = errors.New("username already exists")
	ErrRoleNotFound       = errors.New("specified role not found")
	ErrUserInactive       = errors.New("user account is deactivated")
	ErrTokenGeneration    = errors.New("failed to generate token")
)

// Role IDs seeded by the schema migration.
var roleIDsByName = map[string]int64{
	"admin": 1,
	"staff": 2,
}

// AuthResponse DTO
type AuthResponse struct {
	User         *models.User `json:"user"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token,omitempty"`
}

// --- AuthService Interface ---
type AuthService interface {
	RegisterUser(req models.RegistrationPayload) (*models.User, error)
	LoginUser(creds models.Credentials) (*AuthResponse, error)
	GetUserProfile(userID int64) (*models.User, error)
}

type authService struct {
	authRepo  repositories.AuthRepository
	staffRepo repositories.StaffRepository
	mailer    notifications.Mailer
	db        *sql.DB
}

// NewAuthService creates a new instance of AuthService.
func NewAuthService(authRepo repositories.AuthRepository, staffRepo repositories.StaffRepository, mailer notifications.Mailer, db *sql.DB) AuthService {
	return &authService{authRepo: authRepo, staffRepo: staffRepo, mailer: mailer, db: db}
}

// RegisterUser hashes the password and creates the login account.
func (s *authService) RegisterUser(req models.RegistrationPayload) (*models.User, error) {
	hashedPasswordBytes, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	var roleID *int64
	if req.RoleName != nil && *req.RoleName != "" {
		id, ok := roleIDsByName[strings.ToLower(*req.RoleName)]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrRoleNotFound, *req.RoleName)
		}
		roleID = &id
	}

	user := &models.User{
		Username: strings.TrimSpace(req.Username),
		Email:    req.Email,
		FullName: req.FullName,
		RoleID:   roleID,
		IsActive: true,
	}
	userID, err := s.authRepo.CreateUser(s.db, user, string(hashedPasswordBytes))
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrUsernameExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	user.ID = userID

	if s.mailer != nil && user.Email != nil && *user.Email != "" {
		s.mailer.SendEmail(notifications.MailData{
			To:      *user.Email,
			Subject: "Welcome to the salon",
			Body:    fmt.Sprintf("Hi %s, your account %q is ready.", displayName(user), user.Username),
		})
	}
	return user, nil
}

func displayName(user *models.User) string {
	if user.FullName != nil && *user.FullName != "" {
		return *user.FullName
	}
	return user.Username
}

// LoginUser verifies credentials and issues access and refresh tokens. The
// staff link, when present, rides along in the access token claims.
func (s *authService) LoginUser(creds models.Credentials) (*AuthResponse, error) {
	user, hashedPassword, err := s.authRepo.FindUserByUsername(strings.TrimSpace(creds.Username))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(creds.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}

	roleName := ""
	if user.Role != nil {
		roleName = user.Role.Name
	}

	var staffID *int64
	staff, err := s.staffRepo.GetStaffMemberByUserID(user.ID)
	if err == nil {
		staffID = &staff.ID
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("failed to resolve staff link: %w", err)
	}

	accessToken, err := utils.GenerateAccessToken(user.ID, user.Username, roleName, staffID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenGeneration, err)
	}
	refreshToken, err := utils.GenerateRefreshToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenGeneration, err)
	}

	return &AuthResponse{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

func (s *authService) GetUserProfile(userID int64) (*models.User, error) {
	user, err := s.authRepo.FindUserByID(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user profile: %w", err)
	}
	return user, nil
}

package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"spa_salon_backend/internal/models"
)

// FeedbackRepository defines the interface for appointment feedback database
// operations.
type FeedbackRepository interface {
	CreateFeedback(executor SQLExecutor, fb *models.Feedback) (*models.Feedback, error)
	GetFeedbackByAppointmentID(appointmentID int64) (*models.Feedback, error)
	GetFeedbackForStaff(staffID int64, page, pageSize int) ([]models.Feedback, int, error)
}

type feedbackRepository struct {
	db *sql.DB
}

// NewFeedbackRepository creates a new instance of FeedbackRepository.
func NewFeedbackRepository(db *sql.DB) FeedbackRepository {
	return &feedbackRepository{db: db}
}

func (r *feedbackRepository) CreateFeedback(executor SQLExecutor, fb *models.Feedback) (*models.Feedback, error) {
	query := `INSERT INTO feedback (appointment_id, customer_id, rating, comment, created_at)
	          VALUES ($1, $2, $3, $4, $5)
	          RETURNING id, created_at`

	fb.CreatedAt = time.Now()

	err := executor.QueryRow(query,
		fb.AppointmentID, fb.CustomerID, fb.Rating, fb.Comment, fb.CreatedAt,
	).Scan(&fb.ID, &fb.CreatedAt)

	if err != nil {
		if isUniqueViolation(err, "feedback_appointment_id_key") {
			return nil, fmt.Errorf("%w: feedback already exists for appointment %d", ErrDuplicateKey, fb.AppointmentID)
		}
		if isForeignKeyViolation(err) {
			return nil, fmt.Errorf("%w: appointment %d or customer %d not found", ErrNotFound, fb.AppointmentID, fb.CustomerID)
		}
		return nil, fmt.Errorf("%w: creating feedback: %v", ErrDatabaseError, err)
	}
	return fb, nil
}

func (r *feedbackRepository) GetFeedbackByAppointmentID(appointmentID int64) (*models.Feedback, error) {
	fb := &models.Feedback{}
	var comment sql.NullString

	query := `SELECT id, appointment_id, customer_id, rating, comment, created_at
	          FROM feedback WHERE appointment_id = $1`

	err := r.db.QueryRow(query, appointmentID).Scan(
		&fb.ID, &fb.AppointmentID, &fb.CustomerID, &fb.Rating, &comment, &fb.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting feedback for appointment %d: %v", ErrDatabaseError, appointmentID, err)
	}
	if comment.Valid {
		fb.Comment = &comment.String
	}
	return fb, nil
}

func (r *feedbackRepository) GetFeedbackForStaff(staffID int64, page, pageSize int) ([]models.Feedback, int, error) {
	feedbackList := []models.Feedback{}
	totalCount := 0

	query := `SELECT f.id, f.appointment_id, f.customer_id, f.rating, f.comment, f.created_at,
	       COUNT(*) OVER() as total_count
	FROM feedback f
	JOIN appointments a ON f.appointment_id = a.id
	WHERE a.staff_id = $1
	ORDER BY f.created_at DESC
	LIMIT $2 OFFSET $3`

	rows, err := r.db.Query(query, staffID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: querying feedback for staff %d: %v", ErrDatabaseError, staffID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var fb models.Feedback
		var comment sql.NullString
		var currentTotalCount int

		if err := rows.Scan(&fb.ID, &fb.AppointmentID, &fb.CustomerID, &fb.Rating, &comment, &fb.CreatedAt, &currentTotalCount); err != nil {
			return nil, 0, fmt.Errorf("%w: scanning feedback: %v", ErrDatabaseError, err)
		}
		totalCount = currentTotalCount
		if comment.Valid {
			fb.Comment = &comment.String
		}
		feedbackList = append(feedbackList, fb)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating feedback rows: %v", ErrDatabaseError, err)
	}
	return feedbackList, totalCount, nil
}

package models

import "time"

// Feedback is a customer rating for a completed appointment. One per
// appointment, enforced by a unique constraint.
type Feedback struct {
	ID            int64     `json:"id"`
	AppointmentID int64     `json:"appointment_id" db:"appointment_id"`
	CustomerID    int64     `json:"customer_id" db:"customer_id"`
	Rating        int       `json:"rating" db:"rating"` // 1..5
	Comment       *string   `json:"comment,omitempty" db:"comment"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

package models

import "time"

// Branch represents a salon location.
type Branch struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name" db:"name"`
	Address   *string   `json:"address,omitempty" db:"address"`
	Phone     *string   `json:"phone,omitempty" db:"phone"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// StaffMember represents an employee who can be scheduled and booked.
type StaffMember struct {
	ID          int64     `json:"id" db:"id"`
	UserID      *int64    `json:"user_id,omitempty" db:"user_id"` // Link to users table for login
	BranchID    int64     `json:"branch_id" db:"branch_id"`
	PhoneNumber *string   `json:"phone_number,omitempty" db:"phone_number"`
	HireDate    *string   `json:"hire_date,omitempty" db:"hire_date"` // YYYY-MM-DD, parsed when needed
	Position    *string   `json:"position,omitempty" db:"position"`
	IsActive    bool      `json:"is_active" db:"is_active"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
	User        *User     `json:"user,omitempty"`   // For joining with User details
	Branch      *Branch   `json:"branch,omitempty"` // For joining with Branch details
}

// StaffService links a staff member to a service offering they can perform.
type StaffService struct {
	StaffID   int64 `json:"staff_id" db:"staff_id"`
	ServiceID int64 `json:"service_id" db:"service_id"`
}

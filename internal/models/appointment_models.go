package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AppointmentStatus is the closed set of appointment states.
type AppointmentStatus string

const (
	AppointmentStatusBooked     AppointmentStatus = "booked"
	AppointmentStatusInProgress AppointmentStatus = "in_progress"
	AppointmentStatusCompleted  AppointmentStatus = "completed"
	AppointmentStatusCancelled  AppointmentStatus = "cancelled"
)

// IsValid reports whether s is a known appointment status.
func (s AppointmentStatus) IsValid() bool {
	switch s {
	case AppointmentStatusBooked, AppointmentStatusInProgress,
		AppointmentStatusCompleted, AppointmentStatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether no further transitions are allowed from s.
func (s AppointmentStatus) IsTerminal() bool {
	return s == AppointmentStatusCompleted || s == AppointmentStatusCancelled
}

// ActiveAppointmentStatuses are the statuses that occupy a staff member's time.
var ActiveAppointmentStatuses = []AppointmentStatus{
	AppointmentStatusBooked,
	AppointmentStatusInProgress,
}

// PaymentStatus is the closed set of appointment/order payment states.
type PaymentStatus string

const (
	PaymentStatusUnpaid   PaymentStatus = "unpaid"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// IsValid reports whether s is a known payment status.
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusUnpaid, PaymentStatusPaid, PaymentStatusRefunded:
		return true
	}
	return false
}

// Appointment books a customer with a staff member for a service at a branch.
// Duration and price are snapshotted from the service offering at booking time.
type Appointment struct {
	ID              int64             `json:"id"`
	CustomerID      int64             `json:"customer_id" db:"customer_id"`
	StaffID         int64             `json:"staff_id" db:"staff_id"`
	ServiceID       int64             `json:"service_id" db:"service_id"`
	BranchID        int64             `json:"branch_id" db:"branch_id"`
	AppointmentDate string            `json:"appointment_date" db:"appointment_date"` // YYYY-MM-DD
	StartTime       string            `json:"start_time" db:"start_time"`             // "15:04"
	DurationMinutes int               `json:"duration_minutes" db:"duration_minutes"`
	Status          AppointmentStatus `json:"status" db:"status"`
	PaymentStatus   PaymentStatus     `json:"payment_status" db:"payment_status"`
	Price           decimal.Decimal   `json:"price" db:"price"`
	Notes           *string           `json:"notes,omitempty" db:"notes"`
	CreatedAt       time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at" db:"updated_at"`
	Customer        *Customer         `json:"customer,omitempty"` // For joining with Customer details
	Service         *ServiceOffering  `json:"service,omitempty"`  // For joining with service details
}

// EndTimeMinutes returns the appointment end as minutes from midnight,
// capped at end of day.
func (a Appointment) EndTimeMinutes() (int, error) {
	start, err := ParseTimeOfDay(a.StartTime)
	if err != nil {
		return 0, err
	}
	end := start + a.DurationMinutes
	if end > MinutesPerDay {
		end = MinutesPerDay
	}
	return end, nil
}

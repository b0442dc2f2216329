package models

import "time"

// LeaveStatus is the closed set of leave request states. Approved and
// Rejected are terminal.
type LeaveStatus string

const (
	LeaveStatusPending  LeaveStatus = "pending"
	LeaveStatusApproved LeaveStatus = "approved"
	LeaveStatusRejected LeaveStatus = "rejected"
)

// IsValid reports whether s is a known leave status.
func (s LeaveStatus) IsValid() bool {
	switch s {
	case LeaveStatusPending, LeaveStatusApproved, LeaveStatusRejected:
		return true
	}
	return false
}

// IsTerminal reports whether the leave has been decided.
func (s LeaveStatus) IsTerminal() bool {
	return s == LeaveStatusApproved || s == LeaveStatusRejected
}

// StaffLeave is a staff member's request to be absent from one or more shifts
// on a date. Approved or rejected exactly once.
type StaffLeave struct {
	ID           int64       `json:"id"`
	StaffID      int64       `json:"staff_id" db:"staff_id"`
	LeaveDate    string      `json:"leave_date" db:"leave_date"` // YYYY-MM-DD
	ShiftIDs     []int64     `json:"shift_ids"`                  // from staff_leave_shifts join table
	Reason       *string     `json:"reason,omitempty" db:"reason"`
	Status       LeaveStatus `json:"status" db:"status"`
	ApproverID   *int64      `json:"approver_id,omitempty" db:"approver_id"`
	ApproverNote *string     `json:"approver_note,omitempty" db:"approver_note"`
	CreatedAt    time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at" db:"updated_at"`
	Shifts       []Shift     `json:"shifts,omitempty"` // For joining with Shift details
}

// ReassignmentStatus describes the per-appointment outcome of the leave
// reassignment workflow.
type ReassignmentStatus string

const (
	ReassignmentReassigned ReassignmentStatus = "reassigned"
	ReassignmentFailed     ReassignmentStatus = "failed"
)

// ReassignmentResult reports the outcome for one appointment affected by an
// approved leave. Failures never roll back the approval itself.
type ReassignmentResult struct {
	AppointmentID      int64              `json:"appointment_id"`
	ReplacementStaffID *int64             `json:"replacement_staff_id,omitempty"`
	Status             ReassignmentStatus `json:"status"`
	Reason             *string            `json:"reason,omitempty"`
}

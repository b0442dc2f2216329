package models

import (
	"fmt"
	"time"
)

// Time-of-day and date formats used across schedule data.
const (
	TimeOfDayFormat = "15:04"
	DateFormat      = "2006-01-02"
)

// MinutesPerDay bounds single-day interval math. "24:00" is the exclusive
// end-of-day marker.
const MinutesPerDay = 24 * 60

// Shift is a named time-of-day working window (e.g., Morning 08:00-12:00).
// Reference data maintained by administrators; never deleted while referenced
// by a work schedule row.
type Shift struct {
	ID        int64     `json:"id"`
	Label     string    `json:"label" db:"label"`
	StartTime string    `json:"start_time" db:"start_time"` // "15:04"
	EndTime   string    `json:"end_time" db:"end_time"`     // "15:04", after StartTime, same day
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// WorkScheduleStatus is the closed set of states a schedule row moves through.
type WorkScheduleStatus string

const (
	ScheduleStatusScheduled WorkScheduleStatus = "scheduled"
	ScheduleStatusOnLeave   WorkScheduleStatus = "on_leave"
	ScheduleStatusReplaced  WorkScheduleStatus = "replaced"
)

// IsValid reports whether s is a known work schedule status.
func (s WorkScheduleStatus) IsValid() bool {
	switch s {
	case ScheduleStatusScheduled, ScheduleStatusOnLeave, ScheduleStatusReplaced:
		return true
	}
	return false
}

// WorkSchedule assigns a staff member to a shift on a date. Rows are unique
// per (staff_id, work_date, shift_id) and are status-transitioned, never
// hard-deleted, so schedule history survives leave and replacement.
type WorkSchedule struct {
	ID                 int64              `json:"id"`
	StaffID            int64              `json:"staff_id" db:"staff_id"`
	WorkDate           string             `json:"work_date" db:"work_date"` // YYYY-MM-DD
	ShiftID            int64              `json:"shift_id" db:"shift_id"`
	Status             WorkScheduleStatus `json:"status" db:"status"`
	ReplacementStaffID *int64             `json:"replacement_staff_id,omitempty" db:"replacement_staff_id"`
	CreatedAt          time.Time          `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at" db:"updated_at"`
	Shift              *Shift             `json:"shift,omitempty"` // For joining with Shift details
}

// TimeRange is a half-open [Start, End) window within a single day,
// "15:04" formatted. "24:00" marks end of day.
type TimeRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// ParseTimeOfDay converts an "HH:MM" string to minutes from midnight.
// "24:00" is accepted as the exclusive end-of-day boundary.
func ParseTimeOfDay(s string) (int, error) {
	if s == "24:00" {
		return MinutesPerDay, nil
	}
	t, err := time.Parse(TimeOfDayFormat, s)
	if err != nil {
		return 0, fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// FormatTimeOfDay converts minutes from midnight back to "HH:MM".
func FormatTimeOfDay(minutes int) string {
	if minutes >= MinutesPerDay {
		return "24:00"
	}
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spa_salon_backend/internal/models"
)

func TestCreateShift(t *testing.T) {
	fx := newFixture()

	shift, err := fx.schedule.CreateShift(CreateShiftRequest{
		Label: "Morning", StartTime: "08:00", EndTime: "12:00",
	})
	require.NoError(t, err)
	assert.NotZero(t, shift.ID)
	assert.Equal(t, "Morning", shift.Label)
}

func TestCreateShift_Validation(t *testing.T) {
	fx := newFixture()

	_, err := fx.schedule.CreateShift(CreateShiftRequest{Label: "  ", StartTime: "08:00", EndTime: "12:00"})
	assert.ErrorIs(t, err, ErrShiftValidation)

	_, err = fx.schedule.CreateShift(CreateShiftRequest{Label: "Backwards", StartTime: "12:00", EndTime: "08:00"})
	assert.ErrorIs(t, err, ErrShiftValidation)

	_, err = fx.schedule.CreateShift(CreateShiftRequest{Label: "Zero", StartTime: "08:00", EndTime: "08:00"})
	assert.ErrorIs(t, err, ErrShiftValidation)

	_, err = fx.schedule.CreateShift(CreateShiftRequest{Label: "Bad", StartTime: "8am", EndTime: "12:00"})
	assert.ErrorIs(t, err, ErrShiftValidation)
}

func TestCreateShift_DuplicateLabel(t *testing.T) {
	fx := newFixture()
	fx.seedShift("Morning", "08:00", "12:00")

	_, err := fx.schedule.CreateShift(CreateShiftRequest{
		Label: "Morning", StartTime: "09:00", EndTime: "13:00",
	})
	assert.ErrorIs(t, err, ErrShiftValidation)
}

func TestUpdateShift(t *testing.T) {
	fx := newFixture()
	shiftID := fx.seedShift("Morning", "08:00", "12:00")

	newEnd := "13:00"
	updated, err := fx.schedule.UpdateShift(shiftID, UpdateShiftRequest{EndTime: &newEnd})
	require.NoError(t, err)
	assert.Equal(t, "13:00", updated.EndTime)
	assert.Equal(t, "08:00", updated.StartTime)

	// A partial update may not invert the window.
	badEnd := "07:00"
	_, err = fx.schedule.UpdateShift(shiftID, UpdateShiftRequest{EndTime: &badEnd})
	assert.ErrorIs(t, err, ErrShiftValidation)
}

func TestCreateWorkSchedule(t *testing.T) {
	fx := newFixture()
	staffID := fx.seedStaff(1)
	morning := fx.seedShift("Morning", "08:00", "12:00")

	ws, err := fx.schedule.CreateWorkSchedule(CreateWorkScheduleRequest{
		StaffID: staffID, WorkDate: testDate, ShiftID: morning,
	})
	require.NoError(t, err)
	assert.Equal(t, models.ScheduleStatusScheduled, ws.Status)
}

func TestCreateWorkSchedule_Conflict(t *testing.T) {
	fx := newFixture()
	staffID := fx.seedStaff(1)
	morning := fx.seedShift("Morning", "08:00", "12:00")
	fx.seedSchedule(staffID, testDate, morning)

	_, err := fx.schedule.CreateWorkSchedule(CreateWorkScheduleRequest{
		StaffID: staffID, WorkDate: testDate, ShiftID: morning,
	})
	assert.ErrorIs(t, err, ErrScheduleConflict)
}

func TestCreateWorkSchedule_UnknownReferences(t *testing.T) {
	fx := newFixture()
	staffID := fx.seedStaff(1)
	morning := fx.seedShift("Morning", "08:00", "12:00")

	_, err := fx.schedule.CreateWorkSchedule(CreateWorkScheduleRequest{
		StaffID: 404, WorkDate: testDate, ShiftID: morning,
	})
	assert.ErrorIs(t, err, ErrStaffNotFound)

	_, err = fx.schedule.CreateWorkSchedule(CreateWorkScheduleRequest{
		StaffID: staffID, WorkDate: testDate, ShiftID: 404,
	})
	assert.ErrorIs(t, err, ErrShiftNotFound)

	_, err = fx.schedule.CreateWorkSchedule(CreateWorkScheduleRequest{
		StaffID: staffID, WorkDate: "09/14/2026", ShiftID: morning,
	})
	assert.ErrorIs(t, err, ErrScheduleValidation)
}

func TestCreateMultiShiftSchedule(t *testing.T) {
	fx := newFixture()
	staffID := fx.seedStaff(1)
	morning := fx.seedShift("Morning", "08:00", "12:00")
	evening := fx.seedShift("Evening", "16:00", "20:00")

	created, err := fx.schedule.CreateMultiShiftSchedule(CreateMultiShiftScheduleRequest{
		StaffID: staffID, WorkDate: testDate, ShiftIDs: []int64{morning, evening},
	})
	require.NoError(t, err)
	require.Len(t, created, 2)
	for _, ws := range created {
		assert.Equal(t, models.ScheduleStatusScheduled, ws.Status)
	}
}

func TestCreateMultiShiftSchedule_AllOrNothing(t *testing.T) {
	fx := newFixture()
	staffID := fx.seedStaff(1)
	morning := fx.seedShift("Morning", "08:00", "12:00")
	evening := fx.seedShift("Evening", "16:00", "20:00")
	fx.seedSchedule(staffID, testDate, evening)

	// Second shift collides with an existing row, so neither is created.
	_, err := fx.schedule.CreateMultiShiftSchedule(CreateMultiShiftScheduleRequest{
		StaffID: staffID, WorkDate: testDate, ShiftIDs: []int64{morning, evening},
	})
	assert.ErrorIs(t, err, ErrScheduleConflict)

	_, err = fx.scheduleRepo.GetWorkSchedule(staffID, testDate, morning)
	assert.Error(t, err)
}

func TestCreateMultiShiftSchedule_RejectsDuplicateShiftIDs(t *testing.T) {
	fx := newFixture()
	staffID := fx.seedStaff(1)
	morning := fx.seedShift("Morning", "08:00", "12:00")

	_, err := fx.schedule.CreateMultiShiftSchedule(CreateMultiShiftScheduleRequest{
		StaffID: staffID, WorkDate: testDate, ShiftIDs: []int64{morning, morning},
	})
	assert.ErrorIs(t, err, ErrScheduleValidation)
}

func TestListSchedule(t *testing.T) {
	fx := newFixture()
	staffID := fx.seedStaff(1)
	morning := fx.seedShift("Morning", "08:00", "12:00")
	fx.seedSchedule(staffID, "2026-09-14", morning)
	fx.seedSchedule(staffID, "2026-09-15", morning)
	fx.seedSchedule(staffID, "2026-10-01", morning)

	schedules, err := fx.schedule.ListSchedule(staffID, 9, 2026)
	require.NoError(t, err)
	assert.Len(t, schedules, 2)

	_, err = fx.schedule.ListSchedule(staffID, 13, 2026)
	assert.ErrorIs(t, err, ErrScheduleMonthValidation)
}

func TestMarkOnLeaveAndReplaced(t *testing.T) {
	fx := newFixture()
	staffID := fx.seedStaff(1)
	replacement := fx.seedStaff(1)
	morning := fx.seedShift("Morning", "08:00", "12:00")
	fx.seedSchedule(staffID, testDate, morning)

	// Replaced requires OnLeave first.
	err := fx.schedule.MarkReplaced(staffID, testDate, morning, replacement)
	assert.ErrorIs(t, err, ErrScheduleInvalidState)

	require.NoError(t, fx.schedule.MarkOnLeave(staffID, testDate, morning))

	// A second OnLeave transition is invalid.
	err = fx.schedule.MarkOnLeave(staffID, testDate, morning)
	assert.ErrorIs(t, err, ErrScheduleInvalidState)

	require.NoError(t, fx.schedule.MarkReplaced(staffID, testDate, morning, replacement))

	ws, err := fx.scheduleRepo.GetWorkSchedule(staffID, testDate, morning)
	require.NoError(t, err)
	assert.Equal(t, models.ScheduleStatusReplaced, ws.Status)
	require.NotNil(t, ws.ReplacementStaffID)
	assert.Equal(t, replacement, *ws.ReplacementStaffID)
}

func TestMarkOnLeave_MissingRow(t *testing.T) {
	fx := newFixture()
	staffID := fx.seedStaff(1)

	err := fx.schedule.MarkOnLeave(staffID, testDate, 1)
	assert.ErrorIs(t, err, ErrScheduleNotFound)
}

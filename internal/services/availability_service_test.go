package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spa_salon_backend/internal/models"
)

const testDate = "2026-09-14"

func TestGetBusyTimes_MorningShiftWithAppointment(t *testing.T) {
	fx := newFixture()
	staffID := fx.seedStaff(1)
	morning := fx.seedShift("Morning", "08:00", "12:00")
	fx.seedSchedule(staffID, testDate, morning)
	fx.seedAppointment(staffID, 1, testDate, "09:00", 60)

	busy, err := fx.availability.GetBusyTimes(staffID, testDate)
	require.NoError(t, err)

	assert.Equal(t, []models.TimeRange{
		{Start: "00:00", End: "08:00"},
		{Start: "09:00", End: "10:00"},
		{Start: "12:00", End: "24:00"},
	}, busy)
}

func TestGetBusyTimes_NoScheduleMeansWholeDayBusy(t *testing.T) {
	fx := newFixture()
	staffID := fx.seedStaff(1)

	busy, err := fx.availability.GetBusyTimes(staffID, testDate)
	require.NoError(t, err)
	assert.Equal(t, []models.TimeRange{{Start: "00:00", End: "24:00"}}, busy)
}

func TestGetBusyTimes_AdjacentIntervalsCoalesce(t *testing.T) {
	fx := newFixture()
	staffID := fx.seedStaff(1)
	morning := fx.seedShift("Morning", "08:00", "12:00")
	fx.seedSchedule(staffID, testDate, morning)
	// Two back-to-back appointments starting exactly at shift start.
	fx.seedAppointment(staffID, 1, testDate, "08:00", 60)
	fx.seedAppointment(staffID, 2, testDate, "09:00", 60)

	busy, err := fx.availability.GetBusyTimes(staffID, testDate)
	require.NoError(t, err)

	assert.Equal(t, []models.TimeRange{
		{Start: "00:00", End: "10:00"},
		{Start: "12:00", End: "24:00"},
	}, busy)
}

func TestGetBusyTimes_TwoShiftsLeaveGapBetween(t *testing.T) {
	fx := newFixture()
	staffID := fx.seedStaff(1)
	morning := fx.seedShift("Morning", "08:00", "12:00")
	evening := fx.seedShift("Evening", "16:00", "20:00")
	fx.seedSchedule(staffID, testDate, morning)
	fx.seedSchedule(staffID, testDate, evening)

	busy, err := fx.availability.GetBusyTimes(staffID, testDate)
	require.NoError(t, err)

	assert.Equal(t, []models.TimeRange{
		{Start: "00:00", End: "08:00"},
		{Start: "12:00", End: "16:00"},
		{Start: "20:00", End: "24:00"},
	}, busy)
}

func TestGetBusyTimes_ApprovedLeaveBlocksShift(t *testing.T) {
	fx := newFixture()
	staffID := fx.seedStaff(1)
	morning := fx.seedShift("Morning", "08:00", "12:00")
	fx.seedSchedule(staffID, testDate, morning)

	leave, err := fx.leaveRepo.CreateLeave(&models.StaffLeave{
		StaffID: staffID, LeaveDate: testDate, ShiftIDs: []int64{morning},
	})
	require.NoError(t, err)
	_, err = fx.leaveRepo.ApproveLeave(leave.ID, 99, nil)
	require.NoError(t, err)

	busy, err := fx.availability.GetBusyTimes(staffID, testDate)
	require.NoError(t, err)
	// The schedule row is OnLeave and the leave window is busy, so the whole
	// day collapses into one interval.
	assert.Equal(t, []models.TimeRange{{Start: "00:00", End: "24:00"}}, busy)
}

func TestGetBusyTimes_CancelledAppointmentsIgnored(t *testing.T) {
	fx := newFixture()
	staffID := fx.seedStaff(1)
	morning := fx.seedShift("Morning", "08:00", "12:00")
	fx.seedSchedule(staffID, testDate, morning)
	apptID := fx.seedAppointment(staffID, 1, testDate, "09:00", 60)
	require.NoError(t, fx.apptRepo.UpdateStatus(nil, apptID, models.AppointmentStatusCancelled))

	busy, err := fx.availability.GetBusyTimes(staffID, testDate)
	require.NoError(t, err)
	assert.Equal(t, []models.TimeRange{
		{Start: "00:00", End: "08:00"},
		{Start: "12:00", End: "24:00"},
	}, busy)
}

func TestGetBusyTimes_InvalidDate(t *testing.T) {
	fx := newFixture()
	staffID := fx.seedStaff(1)

	_, err := fx.availability.GetBusyTimes(staffID, "14-09-2026")
	assert.ErrorIs(t, err, ErrInvalidDateFormat)
}

func TestGetBusyTimes_UnknownStaff(t *testing.T) {
	fx := newFixture()

	_, err := fx.availability.GetBusyTimes(42, testDate)
	assert.ErrorIs(t, err, ErrStaffNotFound)
}

func TestGetMultiStaffBusyTimes(t *testing.T) {
	fx := newFixture()
	first := fx.seedStaff(1)
	second := fx.seedStaff(1)
	morning := fx.seedShift("Morning", "08:00", "12:00")
	fx.seedSchedule(first, testDate, morning)

	// Duplicate IDs in the request collapse to one entry.
	result, err := fx.availability.GetMultiStaffBusyTimes([]int64{first, second, first}, testDate)
	require.NoError(t, err)
	require.Len(t, result, 2)

	assert.Equal(t, []models.TimeRange{
		{Start: "00:00", End: "08:00"},
		{Start: "12:00", End: "24:00"},
	}, result[first])
	assert.Equal(t, []models.TimeRange{{Start: "00:00", End: "24:00"}}, result[second])
}

func TestIsStaffFree(t *testing.T) {
	fx := newFixture()
	staffID := fx.seedStaff(1)
	morning := fx.seedShift("Morning", "08:00", "12:00")
	fx.seedSchedule(staffID, testDate, morning)
	fx.seedAppointment(staffID, 1, testDate, "09:00", 60)

	free, err := fx.availability.IsStaffFree(staffID, testDate, "10:00", "11:00")
	require.NoError(t, err)
	assert.True(t, free)

	free, err = fx.availability.IsStaffFree(staffID, testDate, "09:30", "10:30")
	require.NoError(t, err)
	assert.False(t, free)

	// Outside the shift window.
	free, err = fx.availability.IsStaffFree(staffID, testDate, "13:00", "14:00")
	require.NoError(t, err)
	assert.False(t, free)
}

func TestIsStaffFree_RejectsCrossMidnightWindow(t *testing.T) {
	fx := newFixture()
	staffID := fx.seedStaff(1)

	_, err := fx.availability.IsStaffFree(staffID, testDate, "22:00", "02:00")
	assert.ErrorIs(t, err, ErrInvalidTimeRange)

	_, err = fx.availability.IsStaffFree(staffID, testDate, "10:00", "10:00")
	assert.ErrorIs(t, err, ErrInvalidTimeRange)
}

func seedFreeStaffScenario(t *testing.T, fx *fixture) (first, second, third, serviceID int64) {
	t.Helper()
	first = fx.seedStaff(1)
	second = fx.seedStaff(1)
	third = fx.seedStaff(1)
	day := fx.seedShift("Day", "08:00", "20:00")
	for _, staffID := range []int64{first, second, third} {
		fx.seedSchedule(staffID, testDate, day)
	}

	svc, err := fx.catalogRepo.CreateServiceOffering(nil, &models.ServiceOffering{
		Name: "Massage", DurationMinutes: 60, IsActive: true,
	})
	require.NoError(t, err)
	serviceID = svc.ID
	for _, staffID := range []int64{first, second, third} {
		require.NoError(t, fx.staffRepo.AddStaffService(nil, staffID, serviceID))
	}
	return first, second, third, serviceID
}

func TestListStaffFreeInTime_OrdersByStaffID(t *testing.T) {
	fx := newFixture()
	first, second, third, serviceID := seedFreeStaffScenario(t, fx)

	// The second staff member is busy in the window.
	fx.seedAppointment(second, 1, testDate, "10:00", 60)

	free, err := fx.availability.ListStaffFreeInTime(1, serviceID, testDate, "10:00", "11:00")
	require.NoError(t, err)
	assert.Equal(t, []int64{first, third}, free)
}

func TestListStaffFreeInTime_UnknownService(t *testing.T) {
	fx := newFixture()
	_, err := fx.availability.ListStaffFreeInTime(1, 404, testDate, "10:00", "11:00")
	assert.ErrorIs(t, err, ErrServiceNotFound)
}

func TestListStaffFreeInTime_LeastRecentlyAssignedOrdering(t *testing.T) {
	fx := newFixture()
	first, second, third, serviceID := seedFreeStaffScenario(t, fx)

	balanced := NewAvailabilityService(
		fx.scheduleRepo, fx.apptRepo, fx.leaveRepo, fx.staffRepo,
		fx.shiftRepo, fx.catalogRepo, OrderByLeastRecentlyAssigned,
	)

	// First got an assignment recently, second earlier, third never.
	fx.apptRepo.assignedAt[second] = time.Now().Add(-2 * time.Hour)
	fx.apptRepo.assignedAt[first] = time.Now().Add(-1 * time.Hour)

	free, err := balanced.ListStaffFreeInTime(1, serviceID, testDate, "10:00", "11:00")
	require.NoError(t, err)
	assert.Equal(t, []int64{third, second, first}, free)
}

func TestMergeIntervals(t *testing.T) {
	tests := []struct {
		name     string
		input    []minuteInterval
		expected []minuteInterval
	}{
		{
			name:     "empty",
			input:    nil,
			expected: nil,
		},
		{
			name:     "drops empty intervals",
			input:    []minuteInterval{{start: 60, end: 60}, {start: 120, end: 100}},
			expected: nil,
		},
		{
			name:     "overlapping",
			input:    []minuteInterval{{start: 0, end: 100}, {start: 50, end: 150}},
			expected: []minuteInterval{{start: 0, end: 150}},
		},
		{
			name:     "adjacent",
			input:    []minuteInterval{{start: 0, end: 60}, {start: 60, end: 120}},
			expected: []minuteInterval{{start: 0, end: 120}},
		},
		{
			name:     "disjoint kept sorted",
			input:    []minuteInterval{{start: 200, end: 300}, {start: 0, end: 100}},
			expected: []minuteInterval{{start: 0, end: 100}, {start: 200, end: 300}},
		},
		{
			name:     "contained",
			input:    []minuteInterval{{start: 0, end: 300}, {start: 50, end: 100}},
			expected: []minuteInterval{{start: 0, end: 300}},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, mergeIntervals(tc.input))
		})
	}
}

func TestComplementWithinDay(t *testing.T) {
	gaps := complementWithinDay([]minuteInterval{{start: 480, end: 720}})
	assert.Equal(t, []minuteInterval{
		{start: 0, end: 480},
		{start: 720, end: models.MinutesPerDay},
	}, gaps)

	// Full-day coverage leaves no gaps.
	assert.Empty(t, complementWithinDay([]minuteInterval{{start: 0, end: models.MinutesPerDay}}))

	// No coverage means the whole day is a gap.
	assert.Equal(t, []minuteInterval{{start: 0, end: models.MinutesPerDay}}, complementWithinDay(nil))
}

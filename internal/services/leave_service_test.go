package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spa_salon_backend/internal/models"
	"spa_salon_backend/internal/notifications"
)

var (
	adminPrincipal = models.Principal{UserID: 1, Username: "admin", Role: "Admin"}
)

func staffPrincipal(userID int64, staffID int64) models.Principal {
	return models.Principal{UserID: userID, Username: "staff", Role: "Staff", StaffID: &staffID}
}

func TestRequestLeave(t *testing.T) {
	fx := newFixture()
	staffID := fx.seedStaff(1)
	morning := fx.seedShift("Morning", "08:00", "12:00")
	fx.seedSchedule(staffID, testDate, morning)

	leave, err := fx.leave.RequestLeave(RequestLeaveRequest{
		StaffID:   staffID,
		LeaveDate: testDate,
		ShiftIDs:  []int64{morning},
	}, staffPrincipal(10, staffID))
	require.NoError(t, err)

	assert.Equal(t, models.LeaveStatusPending, leave.Status)
	assert.Equal(t, staffID, leave.StaffID)
}

func TestRequestLeave_RequiresScheduledShift(t *testing.T) {
	fx := newFixture()
	staffID := fx.seedStaff(1)
	morning := fx.seedShift("Morning", "08:00", "12:00")
	// No schedule row for the shift.

	_, err := fx.leave.RequestLeave(RequestLeaveRequest{
		StaffID:   staffID,
		LeaveDate: testDate,
		ShiftIDs:  []int64{morning},
	}, adminPrincipal)
	assert.ErrorIs(t, err, ErrLeaveValidation)
}

func TestRequestLeave_StaffCannotRequestForOthers(t *testing.T) {
	fx := newFixture()
	staffID := fx.seedStaff(1)
	other := fx.seedStaff(1)
	morning := fx.seedShift("Morning", "08:00", "12:00")
	fx.seedSchedule(other, testDate, morning)

	_, err := fx.leave.RequestLeave(RequestLeaveRequest{
		StaffID:   other,
		LeaveDate: testDate,
		ShiftIDs:  []int64{morning},
	}, staffPrincipal(10, staffID))
	assert.ErrorIs(t, err, ErrLeavePermission)
}

func TestApproveLeave_NoAppointments(t *testing.T) {
	fx := newFixture()
	staffID := fx.seedStaff(1)
	morning := fx.seedShift("Morning", "08:00", "12:00")
	fx.seedSchedule(staffID, testDate, morning)

	leave, err := fx.leave.RequestLeave(RequestLeaveRequest{
		StaffID: staffID, LeaveDate: testDate, ShiftIDs: []int64{morning},
	}, adminPrincipal)
	require.NoError(t, err)

	result, err := fx.leave.ApproveLeave(leave.ID, adminPrincipal, ResolveLeaveRequest{})
	require.NoError(t, err)

	assert.True(t, result.Approved)
	assert.Equal(t, models.LeaveStatusApproved, result.Leave.Status)
	assert.Empty(t, result.Reassignments)

	ws, err := fx.scheduleRepo.GetWorkSchedule(staffID, testDate, morning)
	require.NoError(t, err)
	assert.Equal(t, models.ScheduleStatusOnLeave, ws.Status)
}

func TestApproveLeave_ReassignsAppointmentsToReplacement(t *testing.T) {
	fx := newFixture()
	staffID := fx.seedStaff(1)
	replacement := fx.seedStaff(1)
	day := fx.seedShift("Day", "08:00", "20:00")
	fx.seedSchedule(staffID, testDate, day)
	fx.seedSchedule(replacement, testDate, day)

	// Three bookings on the staff going on leave; the replacement already has
	// an appointment overlapping the second one.
	first := fx.seedAppointment(staffID, 1, testDate, "09:00", 60)
	second := fx.seedAppointment(staffID, 2, testDate, "11:00", 60)
	third := fx.seedAppointment(staffID, 3, testDate, "13:00", 60)
	fx.seedAppointment(replacement, 4, testDate, "11:30", 60)

	leave, err := fx.leave.RequestLeave(RequestLeaveRequest{
		StaffID: staffID, LeaveDate: testDate, ShiftIDs: []int64{day},
	}, adminPrincipal)
	require.NoError(t, err)

	result, err := fx.leave.ApproveLeave(leave.ID, adminPrincipal, ResolveLeaveRequest{
		ReplacementStaffID: &replacement,
	})
	require.NoError(t, err)
	require.Len(t, result.Reassignments, 3)

	outcomes := make(map[int64]models.ReassignmentResult, 3)
	for _, r := range result.Reassignments {
		outcomes[r.AppointmentID] = r
	}
	assert.Equal(t, models.ReassignmentReassigned, outcomes[first].Status)
	assert.Equal(t, models.ReassignmentReassigned, outcomes[third].Status)
	assert.Equal(t, models.ReassignmentFailed, outcomes[second].Status)
	require.NotNil(t, outcomes[second].Reason)
	assert.Contains(t, *outcomes[second].Reason, "not free")

	// Reassigned appointments moved; the failed one stayed put.
	movedFirst, err := fx.apptRepo.GetAppointmentByID(first)
	require.NoError(t, err)
	assert.Equal(t, replacement, movedFirst.StaffID)
	stuck, err := fx.apptRepo.GetAppointmentByID(second)
	require.NoError(t, err)
	assert.Equal(t, staffID, stuck.StaffID)

	// The schedule row was taken over.
	ws, err := fx.scheduleRepo.GetWorkSchedule(staffID, testDate, day)
	require.NoError(t, err)
	assert.Equal(t, models.ScheduleStatusReplaced, ws.Status)
	require.NotNil(t, ws.ReplacementStaffID)
	assert.Equal(t, replacement, *ws.ReplacementStaffID)
}

func TestApproveLeave_NoReplacementReportsEachAppointmentFailed(t *testing.T) {
	fx := newFixture()
	staffID := fx.seedStaff(1)
	day := fx.seedShift("Day", "08:00", "20:00")
	fx.seedSchedule(staffID, testDate, day)
	fx.seedAppointment(staffID, 1, testDate, "09:00", 60)
	fx.seedAppointment(staffID, 2, testDate, "11:00", 60)

	leave, err := fx.leave.RequestLeave(RequestLeaveRequest{
		StaffID: staffID, LeaveDate: testDate, ShiftIDs: []int64{day},
	}, adminPrincipal)
	require.NoError(t, err)

	result, err := fx.leave.ApproveLeave(leave.ID, adminPrincipal, ResolveLeaveRequest{})
	require.NoError(t, err)

	// The approval stands even though nothing could be reassigned.
	assert.True(t, result.Approved)
	require.Len(t, result.Reassignments, 2)
	for _, r := range result.Reassignments {
		assert.Equal(t, models.ReassignmentFailed, r.Status)
		require.NotNil(t, r.Reason)
		assert.Equal(t, "no replacement staff supplied", *r.Reason)
	}
}

func TestApproveLeave_IgnoresAppointmentsOutsideLeaveShifts(t *testing.T) {
	fx := newFixture()
	staffID := fx.seedStaff(1)
	morning := fx.seedShift("Morning", "08:00", "12:00")
	evening := fx.seedShift("Evening", "16:00", "20:00")
	fx.seedSchedule(staffID, testDate, morning)
	fx.seedSchedule(staffID, testDate, evening)

	fx.seedAppointment(staffID, 1, testDate, "09:00", 60)  // morning
	fx.seedAppointment(staffID, 2, testDate, "17:00", 60) // evening, untouched

	leave, err := fx.leave.RequestLeave(RequestLeaveRequest{
		StaffID: staffID, LeaveDate: testDate, ShiftIDs: []int64{morning},
	}, adminPrincipal)
	require.NoError(t, err)

	result, err := fx.leave.ApproveLeave(leave.ID, adminPrincipal, ResolveLeaveRequest{})
	require.NoError(t, err)
	require.Len(t, result.Reassignments, 1)

	// Evening schedule row is untouched.
	ws, err := fx.scheduleRepo.GetWorkSchedule(staffID, testDate, evening)
	require.NoError(t, err)
	assert.Equal(t, models.ScheduleStatusScheduled, ws.Status)
}

func TestApproveLeave_OnlyAdmins(t *testing.T) {
	fx := newFixture()
	staffID := fx.seedStaff(1)

	_, err := fx.leave.ApproveLeave(1, staffPrincipal(10, staffID), ResolveLeaveRequest{})
	assert.ErrorIs(t, err, ErrLeavePermission)
}

func TestApproveLeave_TerminalLeaveRejected(t *testing.T) {
	fx := newFixture()
	staffID := fx.seedStaff(1)
	morning := fx.seedShift("Morning", "08:00", "12:00")
	fx.seedSchedule(staffID, testDate, morning)

	leave, err := fx.leave.RequestLeave(RequestLeaveRequest{
		StaffID: staffID, LeaveDate: testDate, ShiftIDs: []int64{morning},
	}, adminPrincipal)
	require.NoError(t, err)

	_, err = fx.leave.ApproveLeave(leave.ID, adminPrincipal, ResolveLeaveRequest{})
	require.NoError(t, err)

	// Second approval hits the terminal state.
	_, err = fx.leave.ApproveLeave(leave.ID, adminPrincipal, ResolveLeaveRequest{})
	assert.ErrorIs(t, err, ErrLeaveNotPending)

	err = fx.leave.RejectLeave(leave.ID, adminPrincipal, nil)
	assert.ErrorIs(t, err, ErrLeaveNotPending)
}

func TestApproveLeave_ReplacementCannotBeSelf(t *testing.T) {
	fx := newFixture()
	staffID := fx.seedStaff(1)
	morning := fx.seedShift("Morning", "08:00", "12:00")
	fx.seedSchedule(staffID, testDate, morning)

	leave, err := fx.leave.RequestLeave(RequestLeaveRequest{
		StaffID: staffID, LeaveDate: testDate, ShiftIDs: []int64{morning},
	}, adminPrincipal)
	require.NoError(t, err)

	_, err = fx.leave.ApproveLeave(leave.ID, adminPrincipal, ResolveLeaveRequest{
		ReplacementStaffID: &staffID,
	})
	assert.ErrorIs(t, err, ErrLeaveValidation)
}

func TestRejectLeave(t *testing.T) {
	fx := newFixture()
	staffID := fx.seedStaff(1)
	morning := fx.seedShift("Morning", "08:00", "12:00")
	fx.seedSchedule(staffID, testDate, morning)

	leave, err := fx.leave.RequestLeave(RequestLeaveRequest{
		StaffID: staffID, LeaveDate: testDate, ShiftIDs: []int64{morning},
	}, adminPrincipal)
	require.NoError(t, err)

	note := "short staffed that week"
	require.NoError(t, fx.leave.RejectLeave(leave.ID, adminPrincipal, &note))

	rejected, err := fx.leave.GetLeaveByID(leave.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LeaveStatusRejected, rejected.Status)
	require.NotNil(t, rejected.ApproverNote)
	assert.Equal(t, note, *rejected.ApproverNote)

	// The schedule row keeps its Scheduled status.
	ws, err := fx.scheduleRepo.GetWorkSchedule(staffID, testDate, morning)
	require.NoError(t, err)
	assert.Equal(t, models.ScheduleStatusScheduled, ws.Status)
}

func TestApproveLeave_NotifiesStaff(t *testing.T) {
	fx := newFixture()
	userID := int64(77)
	staff, err := fx.staffRepo.CreateStaffMember(nil, &models.StaffMember{BranchID: 1, IsActive: true, UserID: &userID})
	require.NoError(t, err)
	morning := fx.seedShift("Morning", "08:00", "12:00")
	fx.seedSchedule(staff.ID, testDate, morning)

	leave, err := fx.leave.RequestLeave(RequestLeaveRequest{
		StaffID: staff.ID, LeaveDate: testDate, ShiftIDs: []int64{morning},
	}, adminPrincipal)
	require.NoError(t, err)

	_, err = fx.leave.ApproveLeave(leave.ID, adminPrincipal, ResolveLeaveRequest{})
	require.NoError(t, err)

	events := fx.notifier.byType(notifications.TypeLeaveApproved)
	require.Len(t, events, 1)
	assert.Equal(t, userID, events[0].UserID)
	assert.Equal(t, leave.ID, events[0].ObjectID)
}

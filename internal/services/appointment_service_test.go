package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spa_salon_backend/internal/models"
)

// seedBookingScenario prepares a branch with one scheduled staff member, a
// customer and an active one-hour service the staff member offers.
func seedBookingScenario(t *testing.T, fx *fixture) (staffID, customerID, serviceID int64) {
	t.Helper()
	staffID = fx.seedStaff(1)
	day := fx.seedShift("Day", "08:00", "20:00")
	fx.seedSchedule(staffID, testDate, day)

	customer, err := fx.customerRepo.CreateCustomer(nil, &models.Customer{
		FullName: "Dana Osborne", PhoneNumber: "+77010000001",
	})
	require.NoError(t, err)
	customerID = customer.ID

	svc, err := fx.catalogRepo.CreateServiceOffering(nil, &models.ServiceOffering{
		Name: "Deep Tissue Massage", DurationMinutes: 60,
		Price: decimal.NewFromInt(12000), IsActive: true,
	})
	require.NoError(t, err)
	serviceID = svc.ID
	require.NoError(t, fx.staffRepo.AddStaffService(nil, staffID, serviceID))
	return staffID, customerID, serviceID
}

func TestBookAppointment(t *testing.T) {
	fx := newFixture()
	staffID, customerID, serviceID := seedBookingScenario(t, fx)

	appt, err := fx.appointments.BookAppointment(BookAppointmentRequest{
		CustomerID: customerID, StaffID: staffID, ServiceID: serviceID,
		BranchID: 1, Date: testDate, StartTime: "10:00",
	})
	require.NoError(t, err)

	assert.Equal(t, models.AppointmentStatusBooked, appt.Status)
	assert.Equal(t, models.PaymentStatusUnpaid, appt.PaymentStatus)
	assert.Equal(t, 60, appt.DurationMinutes)
	assert.True(t, appt.Price.Equal(decimal.NewFromInt(12000)))
}

func TestBookAppointment_ConflictWithExisting(t *testing.T) {
	fx := newFixture()
	staffID, customerID, serviceID := seedBookingScenario(t, fx)
	fx.seedAppointment(staffID, customerID, testDate, "10:00", 60)

	_, err := fx.appointments.BookAppointment(BookAppointmentRequest{
		CustomerID: customerID, StaffID: staffID, ServiceID: serviceID,
		BranchID: 1, Date: testDate, StartTime: "10:30",
	})
	assert.ErrorIs(t, err, ErrAppointmentConflict)

	// Back-to-back is fine: intervals are half-open.
	_, err = fx.appointments.BookAppointment(BookAppointmentRequest{
		CustomerID: customerID, StaffID: staffID, ServiceID: serviceID,
		BranchID: 1, Date: testDate, StartTime: "11:00",
	})
	assert.NoError(t, err)
}

func TestBookAppointment_OutsideSchedule(t *testing.T) {
	fx := newFixture()
	staffID, customerID, serviceID := seedBookingScenario(t, fx)

	_, err := fx.appointments.BookAppointment(BookAppointmentRequest{
		CustomerID: customerID, StaffID: staffID, ServiceID: serviceID,
		BranchID: 1, Date: testDate, StartTime: "21:00",
	})
	assert.ErrorIs(t, err, ErrAppointmentConflict)
}

func TestBookAppointment_StaffMustOfferService(t *testing.T) {
	fx := newFixture()
	staffID, customerID, _ := seedBookingScenario(t, fx)

	other, err := fx.catalogRepo.CreateServiceOffering(nil, &models.ServiceOffering{
		Name: "Hot Stone", DurationMinutes: 90, Price: decimal.NewFromInt(15000), IsActive: true,
	})
	require.NoError(t, err)

	_, err = fx.appointments.BookAppointment(BookAppointmentRequest{
		CustomerID: customerID, StaffID: staffID, ServiceID: other.ID,
		BranchID: 1, Date: testDate, StartTime: "10:00",
	})
	assert.ErrorIs(t, err, ErrAppointmentValidation)
}

func TestBookAppointment_WrongBranch(t *testing.T) {
	fx := newFixture()
	staffID, customerID, serviceID := seedBookingScenario(t, fx)

	_, err := fx.appointments.BookAppointment(BookAppointmentRequest{
		CustomerID: customerID, StaffID: staffID, ServiceID: serviceID,
		BranchID: 2, Date: testDate, StartTime: "10:00",
	})
	assert.ErrorIs(t, err, ErrAppointmentValidation)
}

func TestUpdateStatus_Lifecycle(t *testing.T) {
	fx := newFixture()
	staffID, customerID, _ := seedBookingScenario(t, fx)
	apptID := fx.seedAppointment(staffID, customerID, testDate, "10:00", 60)

	// Booked cannot jump straight to Completed.
	_, err := fx.appointments.UpdateStatus(apptID, models.AppointmentStatusCompleted)
	assert.ErrorIs(t, err, ErrAppointmentTransition)

	appt, err := fx.appointments.UpdateStatus(apptID, models.AppointmentStatusInProgress)
	require.NoError(t, err)
	assert.Equal(t, models.AppointmentStatusInProgress, appt.Status)

	appt, err = fx.appointments.UpdateStatus(apptID, models.AppointmentStatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, models.AppointmentStatusCompleted, appt.Status)

	// Completed is terminal.
	_, err = fx.appointments.UpdateStatus(apptID, models.AppointmentStatusCancelled)
	assert.ErrorIs(t, err, ErrAppointmentTransition)
}

func TestMarkPaid(t *testing.T) {
	fx := newFixture()
	staffID, customerID, _ := seedBookingScenario(t, fx)
	apptID := fx.seedAppointment(staffID, customerID, testDate, "10:00", 60)

	appt, err := fx.appointments.MarkPaid(apptID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPaid, appt.PaymentStatus)

	// Paying twice is a no-op.
	appt, err = fx.appointments.MarkPaid(apptID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPaid, appt.PaymentStatus)
}

func TestMarkPaid_CancelledAppointment(t *testing.T) {
	fx := newFixture()
	staffID, customerID, _ := seedBookingScenario(t, fx)
	apptID := fx.seedAppointment(staffID, customerID, testDate, "10:00", 60)
	require.NoError(t, fx.apptRepo.UpdateStatus(nil, apptID, models.AppointmentStatusCancelled))

	_, err := fx.appointments.MarkPaid(apptID)
	assert.ErrorIs(t, err, ErrAppointmentTransition)
}

func TestSubmitFeedback(t *testing.T) {
	fx := newFixture()
	staffID, customerID, _ := seedBookingScenario(t, fx)
	apptID := fx.seedAppointment(staffID, customerID, testDate, "10:00", 60)

	// Only completed appointments accept feedback.
	_, err := fx.appointments.SubmitFeedback(apptID, customerID, 5, nil)
	assert.ErrorIs(t, err, ErrFeedbackValidation)

	require.NoError(t, fx.apptRepo.UpdateStatus(nil, apptID, models.AppointmentStatusCompleted))

	comment := "wonderful"
	fb, err := fx.appointments.SubmitFeedback(apptID, customerID, 5, &comment)
	require.NoError(t, err)
	assert.Equal(t, 5, fb.Rating)

	// One feedback per appointment.
	_, err = fx.appointments.SubmitFeedback(apptID, customerID, 4, nil)
	assert.ErrorIs(t, err, ErrFeedbackExists)
}

func TestSubmitFeedback_Validation(t *testing.T) {
	fx := newFixture()
	staffID, customerID, _ := seedBookingScenario(t, fx)
	apptID := fx.seedAppointment(staffID, customerID, testDate, "10:00", 60)
	require.NoError(t, fx.apptRepo.UpdateStatus(nil, apptID, models.AppointmentStatusCompleted))

	_, err := fx.appointments.SubmitFeedback(apptID, customerID, 0, nil)
	assert.ErrorIs(t, err, ErrFeedbackValidation)

	_, err = fx.appointments.SubmitFeedback(apptID, customerID+1, 5, nil)
	assert.ErrorIs(t, err, ErrFeedbackValidation)
}

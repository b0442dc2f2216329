package services

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"spa_salon_backend/internal/models"
	"spa_salon_backend/internal/repositories"
)

// In-memory repository fakes. They hold ordinary maps and mirror the error
// contracts of the Postgres implementations, so the services under test see
// the same ErrNotFound / ErrDuplicateKey behavior without a database.

// --- shifts ---

type fakeShiftRepo struct {
	shifts map[int64]models.Shift
	nextID int64
}

func newFakeShiftRepo() *fakeShiftRepo {
	return &fakeShiftRepo{shifts: make(map[int64]models.Shift), nextID: 1}
}

func (f *fakeShiftRepo) CreateShift(_ repositories.SQLExecutor, shift *models.Shift) (*models.Shift, error) {
	for _, existing := range f.shifts {
		if existing.Label == shift.Label {
			return nil, fmt.Errorf("%w: label %q", repositories.ErrDuplicateKey, shift.Label)
		}
	}
	shift.ID = f.nextID
	f.nextID++
	f.shifts[shift.ID] = *shift
	return shift, nil
}

func (f *fakeShiftRepo) GetShiftByID(id int64) (*models.Shift, error) {
	shift, ok := f.shifts[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &shift, nil
}

func (f *fakeShiftRepo) ListShifts() ([]models.Shift, error) {
	out := make([]models.Shift, 0, len(f.shifts))
	for _, shift := range f.shifts {
		out = append(out, shift)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeShiftRepo) UpdateShift(_ repositories.SQLExecutor, shift *models.Shift) (*models.Shift, error) {
	if _, ok := f.shifts[shift.ID]; !ok {
		return nil, repositories.ErrNotFound
	}
	f.shifts[shift.ID] = *shift
	return shift, nil
}

// --- work schedules ---

type fakeScheduleRepo struct {
	shiftRepo *fakeShiftRepo
	rows      map[string]*models.WorkSchedule
	nextID    int64
}

func newFakeScheduleRepo(shiftRepo *fakeShiftRepo) *fakeScheduleRepo {
	return &fakeScheduleRepo{shiftRepo: shiftRepo, rows: make(map[string]*models.WorkSchedule), nextID: 1}
}

func scheduleKey(staffID int64, workDate string, shiftID int64) string {
	return fmt.Sprintf("%d|%s|%d", staffID, workDate, shiftID)
}

func (f *fakeScheduleRepo) CreateWorkSchedule(_ repositories.SQLExecutor, ws *models.WorkSchedule) (*models.WorkSchedule, error) {
	key := scheduleKey(ws.StaffID, ws.WorkDate, ws.ShiftID)
	if _, ok := f.rows[key]; ok {
		return nil, fmt.Errorf("%w: schedule exists", repositories.ErrDuplicateKey)
	}
	ws.ID = f.nextID
	f.nextID++
	ws.Status = models.ScheduleStatusScheduled
	if shift, err := f.shiftRepo.GetShiftByID(ws.ShiftID); err == nil {
		ws.Shift = shift
	}
	f.rows[key] = ws
	return ws, nil
}

func (f *fakeScheduleRepo) CreateMultiShift(staffID int64, workDate string, shiftIDs []int64) ([]models.WorkSchedule, error) {
	for _, shiftID := range shiftIDs {
		if _, ok := f.rows[scheduleKey(staffID, workDate, shiftID)]; ok {
			return nil, fmt.Errorf("%w: staff %d, date %s, shift %d", repositories.ErrDuplicateKey, staffID, workDate, shiftID)
		}
	}
	created := make([]models.WorkSchedule, 0, len(shiftIDs))
	for _, shiftID := range shiftIDs {
		ws := &models.WorkSchedule{StaffID: staffID, WorkDate: workDate, ShiftID: shiftID}
		if _, err := f.CreateWorkSchedule(nil, ws); err != nil {
			return nil, err
		}
		created = append(created, *ws)
	}
	return created, nil
}

func (f *fakeScheduleRepo) GetWorkSchedule(staffID int64, workDate string, shiftID int64) (*models.WorkSchedule, error) {
	ws, ok := f.rows[scheduleKey(staffID, workDate, shiftID)]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *ws
	return &copied, nil
}

func (f *fakeScheduleRepo) ListForMonth(staffID int64, month time.Month, year int) ([]models.WorkSchedule, error) {
	prefix := fmt.Sprintf("%04d-%02d-", year, int(month))
	var out []models.WorkSchedule
	for _, ws := range f.rows {
		if ws.StaffID == staffID && strings.HasPrefix(ws.WorkDate, prefix) {
			out = append(out, *ws)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].WorkDate < out[j].WorkDate })
	return out, nil
}

func (f *fakeScheduleRepo) ListForDate(staffID int64, workDate string) ([]models.WorkSchedule, error) {
	var out []models.WorkSchedule
	for _, ws := range f.rows {
		if ws.StaffID == staffID && ws.WorkDate == workDate {
			out = append(out, *ws)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ShiftID < out[j].ShiftID })
	return out, nil
}

func (f *fakeScheduleRepo) transition(staffID int64, workDate string, shiftID int64, from, to models.WorkScheduleStatus, replacement *int64) error {
	ws, ok := f.rows[scheduleKey(staffID, workDate, shiftID)]
	if !ok || ws.Status != from {
		return repositories.ErrNotFound
	}
	ws.Status = to
	ws.ReplacementStaffID = replacement
	return nil
}

func (f *fakeScheduleRepo) MarkOnLeave(_ repositories.SQLExecutor, staffID int64, workDate string, shiftID int64) error {
	return f.transition(staffID, workDate, shiftID, models.ScheduleStatusScheduled, models.ScheduleStatusOnLeave, nil)
}

func (f *fakeScheduleRepo) MarkReplaced(_ repositories.SQLExecutor, staffID int64, workDate string, shiftID, replacementStaffID int64) error {
	return f.transition(staffID, workDate, shiftID, models.ScheduleStatusOnLeave, models.ScheduleStatusReplaced, &replacementStaffID)
}

// --- leaves ---

type fakeLeaveRepo struct {
	scheduleRepo *fakeScheduleRepo
	leaves       map[int64]*models.StaffLeave
	nextID       int64
}

func newFakeLeaveRepo(scheduleRepo *fakeScheduleRepo) *fakeLeaveRepo {
	return &fakeLeaveRepo{scheduleRepo: scheduleRepo, leaves: make(map[int64]*models.StaffLeave), nextID: 1}
}

func (f *fakeLeaveRepo) CreateLeave(leave *models.StaffLeave) (*models.StaffLeave, error) {
	leave.ID = f.nextID
	f.nextID++
	leave.Status = models.LeaveStatusPending
	f.leaves[leave.ID] = leave
	copied := *leave
	return &copied, nil
}

func (f *fakeLeaveRepo) GetLeaveByID(id int64) (*models.StaffLeave, error) {
	leave, ok := f.leaves[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *leave
	return &copied, nil
}

func (f *fakeLeaveRepo) GetLeaves(staffID *int64, status *models.LeaveStatus, page, pageSize int) ([]models.StaffLeave, int, error) {
	var out []models.StaffLeave
	for _, leave := range f.leaves {
		if staffID != nil && leave.StaffID != *staffID {
			continue
		}
		if status != nil && leave.Status != *status {
			continue
		}
		out = append(out, *leave)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, len(out), nil
}

func (f *fakeLeaveRepo) ApproveLeave(leaveID, approverID int64, note *string) (*models.StaffLeave, error) {
	leave, ok := f.leaves[leaveID]
	if !ok || leave.Status != models.LeaveStatusPending {
		return nil, repositories.ErrNotFound
	}
	leave.Status = models.LeaveStatusApproved
	leave.ApproverID = &approverID
	leave.ApproverNote = note
	for _, shiftID := range leave.ShiftIDs {
		// Mirrors the real repo: only Scheduled rows flip to OnLeave.
		_ = f.scheduleRepo.MarkOnLeave(nil, leave.StaffID, leave.LeaveDate, shiftID)
	}
	copied := *leave
	return &copied, nil
}

func (f *fakeLeaveRepo) RejectLeave(leaveID, approverID int64, note *string) error {
	leave, ok := f.leaves[leaveID]
	if !ok || leave.Status != models.LeaveStatusPending {
		return repositories.ErrNotFound
	}
	leave.Status = models.LeaveStatusRejected
	leave.ApproverID = &approverID
	leave.ApproverNote = note
	return nil
}

func (f *fakeLeaveRepo) GetApprovedShiftIDs(staffID int64, date string) ([]int64, error) {
	var out []int64
	for _, leave := range f.leaves {
		if leave.StaffID == staffID && leave.LeaveDate == date && leave.Status == models.LeaveStatusApproved {
			out = append(out, leave.ShiftIDs...)
		}
	}
	return out, nil
}

// --- appointments ---

type fakeAppointmentRepo struct {
	scheduleRepo *fakeScheduleRepo
	appts        map[int64]*models.Appointment
	assignedAt   map[int64]time.Time // staff ID -> last assignment time
	nextID       int64
}

func newFakeAppointmentRepo(scheduleRepo *fakeScheduleRepo) *fakeAppointmentRepo {
	return &fakeAppointmentRepo{
		scheduleRepo: scheduleRepo,
		appts:        make(map[int64]*models.Appointment),
		assignedAt:   make(map[int64]time.Time),
		nextID:       1,
	}
}

func (f *fakeAppointmentRepo) CreateAppointment(_ repositories.SQLExecutor, appt *models.Appointment) (*models.Appointment, error) {
	appt.ID = f.nextID
	f.nextID++
	f.appts[appt.ID] = appt
	copied := *appt
	return &copied, nil
}

func (f *fakeAppointmentRepo) GetAppointmentByID(id int64) (*models.Appointment, error) {
	appt, ok := f.appts[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *appt
	return &copied, nil
}

func (f *fakeAppointmentRepo) GetAppointments(filters repositories.AppointmentFilters) ([]models.Appointment, int, error) {
	var out []models.Appointment
	for _, appt := range f.appts {
		if filters.StaffID != nil && appt.StaffID != *filters.StaffID {
			continue
		}
		if filters.CustomerID != nil && appt.CustomerID != *filters.CustomerID {
			continue
		}
		if filters.Date != nil && appt.AppointmentDate != *filters.Date {
			continue
		}
		if filters.Status != nil && appt.Status != *filters.Status {
			continue
		}
		out = append(out, *appt)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, len(out), nil
}

func (f *fakeAppointmentRepo) GetActiveByStaffDate(staffID int64, date string) ([]models.Appointment, error) {
	var out []models.Appointment
	for _, appt := range f.appts {
		if appt.StaffID != staffID || appt.AppointmentDate != date {
			continue
		}
		if appt.Status != models.AppointmentStatusBooked && appt.Status != models.AppointmentStatusInProgress {
			continue
		}
		out = append(out, *appt)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime < out[j].StartTime })
	return out, nil
}

func (f *fakeAppointmentRepo) UpdateStatus(_ repositories.SQLExecutor, id int64, status models.AppointmentStatus) error {
	appt, ok := f.appts[id]
	if !ok {
		return repositories.ErrNotFound
	}
	appt.Status = status
	return nil
}

func (f *fakeAppointmentRepo) UpdatePaymentStatus(_ repositories.SQLExecutor, id int64, status models.PaymentStatus) error {
	appt, ok := f.appts[id]
	if !ok {
		return repositories.ErrNotFound
	}
	appt.PaymentStatus = status
	return nil
}

func (f *fakeAppointmentRepo) ReassignStaff(appointmentID, fromStaffID, toStaffID int64, workDate string, shiftID int64) error {
	appt, ok := f.appts[appointmentID]
	if !ok || appt.StaffID != fromStaffID {
		return repositories.ErrNotFound
	}
	appt.StaffID = toStaffID
	f.assignedAt[toStaffID] = time.Now()
	// Best effort, as in the real repo: a row already Replaced stays put.
	_ = f.scheduleRepo.MarkReplaced(nil, fromStaffID, workDate, shiftID, toStaffID)
	return nil
}

func (f *fakeAppointmentRepo) GetLastAssignmentTimes(staffIDs []int64) (map[int64]time.Time, error) {
	out := make(map[int64]time.Time, len(staffIDs))
	for _, staffID := range staffIDs {
		if t, ok := f.assignedAt[staffID]; ok {
			out[staffID] = t
		}
	}
	return out, nil
}

// --- staff ---

type fakeStaffRepo struct {
	staff         map[int64]*models.StaffMember
	staffServices map[int64][]int64 // staff ID -> service IDs
	nextID        int64
}

func newFakeStaffRepo() *fakeStaffRepo {
	return &fakeStaffRepo{
		staff:         make(map[int64]*models.StaffMember),
		staffServices: make(map[int64][]int64),
		nextID:        1,
	}
}

func (f *fakeStaffRepo) CreateStaffMember(_ repositories.SQLExecutor, staff *models.StaffMember) (*models.StaffMember, error) {
	if staff.UserID != nil {
		for _, existing := range f.staff {
			if existing.UserID != nil && *existing.UserID == *staff.UserID {
				return nil, repositories.ErrDuplicateKey
			}
		}
	}
	staff.ID = f.nextID
	f.nextID++
	f.staff[staff.ID] = staff
	copied := *staff
	return &copied, nil
}

func (f *fakeStaffRepo) GetStaffMemberByID(id int64) (*models.StaffMember, error) {
	staff, ok := f.staff[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *staff
	return &copied, nil
}

func (f *fakeStaffRepo) GetStaffMemberByUserID(userID int64) (*models.StaffMember, error) {
	for _, staff := range f.staff {
		if staff.UserID != nil && *staff.UserID == userID {
			copied := *staff
			return &copied, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeStaffRepo) GetStaffMembers(page, pageSize int, searchTerm *string) ([]models.StaffMember, int, error) {
	var out []models.StaffMember
	for _, staff := range f.staff {
		out = append(out, *staff)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, len(out), nil
}

func (f *fakeStaffRepo) UpdateStaffMember(_ repositories.SQLExecutor, staff *models.StaffMember) (*models.StaffMember, error) {
	if _, ok := f.staff[staff.ID]; !ok {
		return nil, repositories.ErrNotFound
	}
	f.staff[staff.ID] = staff
	copied := *staff
	return &copied, nil
}

func (f *fakeStaffRepo) AddStaffService(_ repositories.SQLExecutor, staffID, serviceID int64) error {
	for _, existing := range f.staffServices[staffID] {
		if existing == serviceID {
			return repositories.ErrDuplicateKey
		}
	}
	f.staffServices[staffID] = append(f.staffServices[staffID], serviceID)
	return nil
}

func (f *fakeStaffRepo) RemoveStaffService(_ repositories.SQLExecutor, staffID, serviceID int64) error {
	services := f.staffServices[staffID]
	for i, existing := range services {
		if existing == serviceID {
			f.staffServices[staffID] = append(services[:i], services[i+1:]...)
			return nil
		}
	}
	return repositories.ErrNotFound
}

func (f *fakeStaffRepo) GetServicesForStaff(staffID int64) ([]int64, error) {
	return append([]int64(nil), f.staffServices[staffID]...), nil
}

func (f *fakeStaffRepo) GetStaffForBranchService(branchID, serviceID int64) ([]models.StaffMember, error) {
	var out []models.StaffMember
	for _, staff := range f.staff {
		if staff.BranchID != branchID || !staff.IsActive {
			continue
		}
		for _, svc := range f.staffServices[staff.ID] {
			if svc == serviceID {
				out = append(out, *staff)
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// --- catalog ---

type fakeCatalogRepo struct {
	offerings map[int64]*models.ServiceOffering
	products  map[int64]*models.Product
	nextID    int64
}

func newFakeCatalogRepo() *fakeCatalogRepo {
	return &fakeCatalogRepo{
		offerings: make(map[int64]*models.ServiceOffering),
		products:  make(map[int64]*models.Product),
		nextID:    1,
	}
}

func (f *fakeCatalogRepo) CreateServiceOffering(_ repositories.SQLExecutor, svc *models.ServiceOffering) (*models.ServiceOffering, error) {
	svc.ID = f.nextID
	f.nextID++
	f.offerings[svc.ID] = svc
	copied := *svc
	return &copied, nil
}

func (f *fakeCatalogRepo) GetServiceOfferingByID(id int64) (*models.ServiceOffering, error) {
	svc, ok := f.offerings[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *svc
	return &copied, nil
}

func (f *fakeCatalogRepo) ListServiceOfferings(activeOnly bool) ([]models.ServiceOffering, error) {
	var out []models.ServiceOffering
	for _, svc := range f.offerings {
		if activeOnly && !svc.IsActive {
			continue
		}
		out = append(out, *svc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeCatalogRepo) UpdateServiceOffering(_ repositories.SQLExecutor, svc *models.ServiceOffering) (*models.ServiceOffering, error) {
	if _, ok := f.offerings[svc.ID]; !ok {
		return nil, repositories.ErrNotFound
	}
	f.offerings[svc.ID] = svc
	copied := *svc
	return &copied, nil
}

func (f *fakeCatalogRepo) CreateProduct(_ repositories.SQLExecutor, product *models.Product) (*models.Product, error) {
	product.ID = f.nextID
	f.nextID++
	f.products[product.ID] = product
	copied := *product
	return &copied, nil
}

func (f *fakeCatalogRepo) GetProductByID(id int64) (*models.Product, error) {
	product, ok := f.products[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *product
	return &copied, nil
}

func (f *fakeCatalogRepo) ListProducts(activeOnly bool) ([]models.Product, error) {
	var out []models.Product
	for _, product := range f.products {
		if activeOnly && !product.IsActive {
			continue
		}
		out = append(out, *product)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeCatalogRepo) UpdateProduct(_ repositories.SQLExecutor, product *models.Product) (*models.Product, error) {
	if _, ok := f.products[product.ID]; !ok {
		return nil, repositories.ErrNotFound
	}
	f.products[product.ID] = product
	copied := *product
	return &copied, nil
}

func (f *fakeCatalogRepo) AdjustStock(_ repositories.SQLExecutor, productID int64, delta int) (int, error) {
	product, ok := f.products[productID]
	if !ok {
		return 0, repositories.ErrNotFound
	}
	if product.StockQuantity+delta < 0 {
		return 0, repositories.ErrInsufficientStock
	}
	product.StockQuantity += delta
	return product.StockQuantity, nil
}

// --- customers ---

type fakeCustomerRepo struct {
	customers map[int64]*models.Customer
	nextID    int64
}

func newFakeCustomerRepo() *fakeCustomerRepo {
	return &fakeCustomerRepo{customers: make(map[int64]*models.Customer), nextID: 1}
}

func (f *fakeCustomerRepo) CreateCustomer(_ repositories.SQLExecutor, customer *models.Customer) (*models.Customer, error) {
	for _, existing := range f.customers {
		if existing.PhoneNumber == customer.PhoneNumber {
			return nil, repositories.ErrDuplicateKey
		}
	}
	customer.ID = f.nextID
	f.nextID++
	f.customers[customer.ID] = customer
	copied := *customer
	return &copied, nil
}

func (f *fakeCustomerRepo) GetCustomerByID(id int64) (*models.Customer, error) {
	customer, ok := f.customers[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *customer
	return &copied, nil
}

func (f *fakeCustomerRepo) GetCustomerByPhone(phone string) (*models.Customer, error) {
	for _, customer := range f.customers {
		if customer.PhoneNumber == phone {
			copied := *customer
			return &copied, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeCustomerRepo) GetCustomers(page, pageSize int, searchTerm *string) ([]models.Customer, int, error) {
	var out []models.Customer
	for _, customer := range f.customers {
		out = append(out, *customer)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, len(out), nil
}

func (f *fakeCustomerRepo) UpdateCustomer(_ repositories.SQLExecutor, customer *models.Customer) (*models.Customer, error) {
	if _, ok := f.customers[customer.ID]; !ok {
		return nil, repositories.ErrNotFound
	}
	f.customers[customer.ID] = customer
	copied := *customer
	return &copied, nil
}

// --- feedback ---

type fakeFeedbackRepo struct {
	feedback map[int64]*models.Feedback // keyed by appointment ID
	nextID   int64
}

func newFakeFeedbackRepo() *fakeFeedbackRepo {
	return &fakeFeedbackRepo{feedback: make(map[int64]*models.Feedback), nextID: 1}
}

func (f *fakeFeedbackRepo) CreateFeedback(_ repositories.SQLExecutor, fb *models.Feedback) (*models.Feedback, error) {
	if _, ok := f.feedback[fb.AppointmentID]; ok {
		return nil, repositories.ErrDuplicateKey
	}
	fb.ID = f.nextID
	f.nextID++
	f.feedback[fb.AppointmentID] = fb
	copied := *fb
	return &copied, nil
}

func (f *fakeFeedbackRepo) GetFeedbackByAppointmentID(appointmentID int64) (*models.Feedback, error) {
	fb, ok := f.feedback[appointmentID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *fb
	return &copied, nil
}

func (f *fakeFeedbackRepo) GetFeedbackForStaff(staffID int64, page, pageSize int) ([]models.Feedback, int, error) {
	var out []models.Feedback
	for _, fb := range f.feedback {
		out = append(out, *fb)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, len(out), nil
}

// --- notifier ---

type recordedEvent struct {
	UserID    int64
	EventType string
	Content   string
	ObjectID  int64
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (f *fakeNotifier) Notify(userID int64, eventType, content string, objectID int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, recordedEvent{UserID: userID, EventType: eventType, Content: content, ObjectID: objectID})
}

func (f *fakeNotifier) Close() {}

func (f *fakeNotifier) byType(eventType string) []recordedEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []recordedEvent
	for _, ev := range f.events {
		if ev.EventType == eventType {
			out = append(out, ev)
		}
	}
	return out
}

// --- fixture ---

// fixture wires the fakes and the services under test together the way the
// router wires the real implementations.
type fixture struct {
	shiftRepo    *fakeShiftRepo
	scheduleRepo *fakeScheduleRepo
	leaveRepo    *fakeLeaveRepo
	apptRepo     *fakeAppointmentRepo
	staffRepo    *fakeStaffRepo
	catalogRepo  *fakeCatalogRepo
	customerRepo *fakeCustomerRepo
	feedbackRepo *fakeFeedbackRepo
	notifier     *fakeNotifier

	availability AvailabilityService
	schedule     ScheduleService
	leave        LeaveService
	appointments AppointmentService
}

func newFixture() *fixture {
	shiftRepo := newFakeShiftRepo()
	scheduleRepo := newFakeScheduleRepo(shiftRepo)
	leaveRepo := newFakeLeaveRepo(scheduleRepo)
	apptRepo := newFakeAppointmentRepo(scheduleRepo)
	staffRepo := newFakeStaffRepo()
	catalogRepo := newFakeCatalogRepo()
	customerRepo := newFakeCustomerRepo()
	feedbackRepo := newFakeFeedbackRepo()
	notifier := &fakeNotifier{}

	availability := NewAvailabilityService(scheduleRepo, apptRepo, leaveRepo, staffRepo, shiftRepo, catalogRepo, OrderByStaffID)

	return &fixture{
		shiftRepo:    shiftRepo,
		scheduleRepo: scheduleRepo,
		leaveRepo:    leaveRepo,
		apptRepo:     apptRepo,
		staffRepo:    staffRepo,
		catalogRepo:  catalogRepo,
		customerRepo: customerRepo,
		feedbackRepo: feedbackRepo,
		notifier:     notifier,
		availability: availability,
		schedule:     NewScheduleService(shiftRepo, scheduleRepo, staffRepo, nil),
		leave:        NewLeaveService(leaveRepo, scheduleRepo, apptRepo, staffRepo, shiftRepo, availability, notifier),
		appointments: NewAppointmentService(apptRepo, catalogRepo, customerRepo, staffRepo, feedbackRepo, availability, notifier, nil),
	}
}

// seedStaff creates an active staff member in the branch.
func (fx *fixture) seedStaff(branchID int64) int64 {
	staff, _ := fx.staffRepo.CreateStaffMember(nil, &models.StaffMember{BranchID: branchID, IsActive: true})
	return staff.ID
}

// seedShift registers a shift in the catalog.
func (fx *fixture) seedShift(label, start, end string) int64 {
	shift, _ := fx.shiftRepo.CreateShift(nil, &models.Shift{Label: label, StartTime: start, EndTime: end})
	return shift.ID
}

// seedSchedule creates a Scheduled work schedule row.
func (fx *fixture) seedSchedule(staffID int64, date string, shiftID int64) {
	_, _ = fx.scheduleRepo.CreateWorkSchedule(nil, &models.WorkSchedule{StaffID: staffID, WorkDate: date, ShiftID: shiftID})
}

// seedAppointment creates a Booked appointment.
func (fx *fixture) seedAppointment(staffID, customerID int64, date, start string, durationMinutes int) int64 {
	appt, _ := fx.apptRepo.CreateAppointment(nil, &models.Appointment{
		CustomerID:      customerID,
		StaffID:         staffID,
		ServiceID:       1,
		BranchID:        1,
		AppointmentDate: date,
		StartTime:       start,
		DurationMinutes: durationMinutes,
		Status:          models.AppointmentStatusBooked,
		PaymentStatus:   models.PaymentStatusUnpaid,
	})
	return appt.ID
}

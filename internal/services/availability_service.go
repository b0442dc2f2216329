package services

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"spa_salon_backend/internal/models"
	"spa_salon_backend/internal/repositories"
)

// --- Custom Service Errors for Availability ---
var (
	ErrInvalidDateFormat = errors.New("invalid date format, please use YYYY-MM-DD")
	ErrInvalidTimeRange  = errors.New("invalid time range (start must be before end, within a single day)")
	ErrStaffNotFound     = errors.New("staff member not found")
	ErrServiceNotFound   = errors.New("service offering not found")
)

// FreeStaffOrdering selects how ListStaffFreeInTime orders its candidates.
type FreeStaffOrdering string

const (
	// OrderByStaffID orders candidates by ascending staff ID (deterministic default).
	OrderByStaffID FreeStaffOrdering = "staff_id"
	// OrderByLeastRecentlyAssigned puts staff whose last appointment assignment
	// is oldest first, to balance load.
	OrderByLeastRecentlyAssigned FreeStaffOrdering = "least_recently_assigned"
)

// AvailabilityService derives free/busy answers for staff by merging three
// independently mutating sources: work schedules, appointments and approved
// leaves. Reads are not transactional snapshots; a small window of skew
// between the three queries is tolerated.
type AvailabilityService interface {
	// GetBusyTimes returns the ordered, non-overlapping busy intervals for the
	// staff member on the date. Hours outside Scheduled shifts count as busy.
	GetBusyTimes(staffID int64, date string) ([]models.TimeRange, error)
	GetMultiStaffBusyTimes(staffIDs []int64, date string) (map[int64][]models.TimeRange, error)
	// ListStaffFreeInTime returns IDs of branch staff offering the service who
	// are free for the whole [start, end) window on the date.
	ListStaffFreeInTime(branchID, serviceID int64, date, start, end string) ([]int64, error)
	// IsStaffFree reports whether the staff member has no busy interval
	// intersecting [start, end) on the date.
	IsStaffFree(staffID int64, date, start, end string) (bool, error)
}

type availabilityService struct {
	scheduleRepo    repositories.ScheduleRepository
	appointmentRepo repositories.AppointmentRepository
	leaveRepo       repositories.LeaveRepository
	staffRepo       repositories.StaffRepository
	shiftRepo       repositories.ShiftRepository
	catalogRepo     repositories.CatalogRepository
	ordering        FreeStaffOrdering
}

// NewAvailabilityService creates a new instance of AvailabilityService.
func NewAvailabilityService(
	scheduleRepo repositories.ScheduleRepository,
	appointmentRepo repositories.AppointmentRepository,
	leaveRepo repositories.LeaveRepository,
	staffRepo repositories.StaffRepository,
	shiftRepo repositories.ShiftRepository,
	catalogRepo repositories.CatalogRepository,
	ordering FreeStaffOrdering,
) AvailabilityService {
	if ordering == "" {
		ordering = OrderByStaffID
	}
	return &availabilityService{
		scheduleRepo:    scheduleRepo,
		appointmentRepo: appointmentRepo,
		leaveRepo:       leaveRepo,
		staffRepo:       staffRepo,
		shiftRepo:       shiftRepo,
		catalogRepo:     catalogRepo,
		ordering:        ordering,
	}
}

// minuteInterval is a half-open [start, end) window in minutes from midnight.
type minuteInterval struct {
	start int
	end   int
}

func (iv minuteInterval) intersects(other minuteInterval) bool {
	return iv.start < other.end && other.start < iv.end
}

// mergeIntervals sorts intervals by start and coalesces overlapping and
// adjacent ones (end of one == start of next) into maximal ranges. Empty
// intervals are dropped.
func mergeIntervals(intervals []minuteInterval) []minuteInterval {
	filtered := make([]minuteInterval, 0, len(intervals))
	for _, iv := range intervals {
		if iv.end > iv.start {
			filtered = append(filtered, iv)
		}
	}
	if len(filtered) == 0 {
		return nil
	}

	sort.Slice(filtered, func(i, j int) bool {
		if filtered[i].start != filtered[j].start {
			return filtered[i].start < filtered[j].start
		}
		return filtered[i].end < filtered[j].end
	})

	merged := []minuteInterval{filtered[0]}
	for _, iv := range filtered[1:] {
		last := &merged[len(merged)-1]
		if iv.start <= last.end {
			if iv.end > last.end {
				last.end = iv.end
			}
			continue
		}
		merged = append(merged, iv)
	}
	return merged
}

// complementWithinDay returns the day minus the given merged intervals.
func complementWithinDay(merged []minuteInterval) []minuteInterval {
	var gaps []minuteInterval
	cursor := 0
	for _, iv := range merged {
		if iv.start > cursor {
			gaps = append(gaps, minuteInterval{start: cursor, end: iv.start})
		}
		if iv.end > cursor {
			cursor = iv.end
		}
	}
	if cursor < models.MinutesPerDay {
		gaps = append(gaps, minuteInterval{start: cursor, end: models.MinutesPerDay})
	}
	return gaps
}

func toTimeRanges(intervals []minuteInterval) []models.TimeRange {
	ranges := make([]models.TimeRange, 0, len(intervals))
	for _, iv := range intervals {
		ranges = append(ranges, models.TimeRange{
			Start: models.FormatTimeOfDay(iv.start),
			End:   models.FormatTimeOfDay(iv.end),
		})
	}
	return ranges
}

func validateDate(date string) error {
	if _, err := time.Parse(models.DateFormat, date); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidDateFormat, date)
	}
	return nil
}

// parseDayWindow validates a same-day [start, end) window. A window whose end
// is not strictly after its start - which is how a cross-midnight request
// presents on a single-day model - is rejected.
func parseDayWindow(start, end string) (minuteInterval, error) {
	startMin, err := models.ParseTimeOfDay(start)
	if err != nil {
		return minuteInterval{}, fmt.Errorf("%w: start %q", ErrInvalidTimeRange, start)
	}
	endMin, err := models.ParseTimeOfDay(end)
	if err != nil {
		return minuteInterval{}, fmt.Errorf("%w: end %q", ErrInvalidTimeRange, end)
	}
	if startMin >= endMin {
		return minuteInterval{}, fmt.Errorf("%w: %s-%s", ErrInvalidTimeRange, start, end)
	}
	return minuteInterval{start: startMin, end: endMin}, nil
}

// shiftWindow converts a shift's time-of-day strings to a minute interval.
func shiftWindow(shift models.Shift) (minuteInterval, error) {
	start, err := models.ParseTimeOfDay(shift.StartTime)
	if err != nil {
		return minuteInterval{}, err
	}
	end, err := models.ParseTimeOfDay(shift.EndTime)
	if err != nil {
		return minuteInterval{}, err
	}
	return minuteInterval{start: start, end: end}, nil
}

// busyIntervals computes the merged busy set for one staff member and date:
//  1. Active appointments each contribute [start, start+duration).
//  2. The complement of Scheduled shift windows is busy - no schedule row
//     means the staff member is not working at all.
//  3. Approved leave shift windows are busy regardless of schedule status.
func (s *availabilityService) busyIntervals(staffID int64, date string) ([]minuteInterval, error) {
	appointments, err := s.appointmentRepo.GetActiveByStaffDate(staffID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to load appointments for staff %d: %w", staffID, err)
	}
	schedules, err := s.scheduleRepo.ListForDate(staffID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to load work schedule for staff %d: %w", staffID, err)
	}
	leaveShiftIDs, err := s.leaveRepo.GetApprovedShiftIDs(staffID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to load approved leaves for staff %d: %w", staffID, err)
	}

	var busy []minuteInterval

	for _, appt := range appointments {
		start, err := models.ParseTimeOfDay(appt.StartTime)
		if err != nil {
			return nil, fmt.Errorf("appointment %d: %w", appt.ID, err)
		}
		end, err := appt.EndTimeMinutes()
		if err != nil {
			return nil, fmt.Errorf("appointment %d: %w", appt.ID, err)
		}
		busy = append(busy, minuteInterval{start: start, end: end})
	}

	var working []minuteInterval
	for _, ws := range schedules {
		if ws.Status != models.ScheduleStatusScheduled || ws.Shift == nil {
			continue
		}
		window, err := shiftWindow(*ws.Shift)
		if err != nil {
			return nil, fmt.Errorf("shift %d: %w", ws.ShiftID, err)
		}
		working = append(working, window)
	}
	busy = append(busy, complementWithinDay(mergeIntervals(working))...)

	if len(leaveShiftIDs) > 0 {
		windows, err := s.shiftWindowsByID(leaveShiftIDs)
		if err != nil {
			return nil, err
		}
		busy = append(busy, windows...)
	}

	return mergeIntervals(busy), nil
}

// shiftWindowsByID resolves shift IDs to their time windows via the catalog.
func (s *availabilityService) shiftWindowsByID(shiftIDs []int64) ([]minuteInterval, error) {
	shifts, err := s.shiftRepo.ListShifts()
	if err != nil {
		return nil, fmt.Errorf("failed to load shift catalog: %w", err)
	}
	byID := make(map[int64]models.Shift, len(shifts))
	for _, shift := range shifts {
		byID[shift.ID] = shift
	}

	windows := make([]minuteInterval, 0, len(shiftIDs))
	for _, id := range shiftIDs {
		shift, ok := byID[id]
		if !ok {
			// Leave references a shift no longer in the catalog; nothing to block.
			continue
		}
		window, err := shiftWindow(shift)
		if err != nil {
			return nil, fmt.Errorf("shift %d: %w", id, err)
		}
		windows = append(windows, window)
	}
	return windows, nil
}

func (s *availabilityService) GetBusyTimes(staffID int64, date string) ([]models.TimeRange, error) {
	if err := validateDate(date); err != nil {
		return nil, err
	}
	if _, err := s.staffRepo.GetStaffMemberByID(staffID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: ID %d", ErrStaffNotFound, staffID)
		}
		return nil, fmt.Errorf("failed to validate staff for busy times: %w", err)
	}

	busy, err := s.busyIntervals(staffID, date)
	if err != nil {
		return nil, err
	}
	return toTimeRanges(busy), nil
}

func (s *availabilityService) GetMultiStaffBusyTimes(staffIDs []int64, date string) (map[int64][]models.TimeRange, error) {
	if err := validateDate(date); err != nil {
		return nil, err
	}

	result := make(map[int64][]models.TimeRange, len(staffIDs))
	for _, staffID := range staffIDs {
		if _, ok := result[staffID]; ok {
			continue
		}
		busy, err := s.busyIntervals(staffID, date)
		if err != nil {
			return nil, err
		}
		result[staffID] = toTimeRanges(busy)
	}
	return result, nil
}

func (s *availabilityService) IsStaffFree(staffID int64, date, start, end string) (bool, error) {
	if err := validateDate(date); err != nil {
		return false, err
	}
	window, err := parseDayWindow(start, end)
	if err != nil {
		return false, err
	}

	busy, err := s.busyIntervals(staffID, date)
	if err != nil {
		return false, err
	}
	for _, iv := range busy {
		if iv.intersects(window) {
			return false, nil
		}
	}
	return true, nil
}

func (s *availabilityService) ListStaffFreeInTime(branchID, serviceID int64, date, start, end string) ([]int64, error) {
	if err := validateDate(date); err != nil {
		return nil, err
	}
	window, err := parseDayWindow(start, end)
	if err != nil {
		return nil, err
	}
	if _, err := s.catalogRepo.GetServiceOfferingByID(serviceID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: ID %d", ErrServiceNotFound, serviceID)
		}
		return nil, fmt.Errorf("failed to validate service for free staff lookup: %w", err)
	}

	candidates, err := s.staffRepo.GetStaffForBranchService(branchID, serviceID)
	if err != nil {
		return nil, fmt.Errorf("failed to load candidate staff: %w", err)
	}

	free := []int64{}
	for _, staff := range candidates {
		busy, err := s.busyIntervals(staff.ID, date)
		if err != nil {
			return nil, err
		}
		available := true
		for _, iv := range busy {
			if iv.intersects(window) {
				available = false
				break
			}
		}
		if available {
			free = append(free, staff.ID)
		}
	}

	if s.ordering == OrderByLeastRecentlyAssigned && len(free) > 1 {
		lastAssigned, err := s.appointmentRepo.GetLastAssignmentTimes(free)
		if err != nil {
			return nil, fmt.Errorf("failed to load assignment history: %w", err)
		}
		sort.SliceStable(free, func(i, j int) bool {
			ti, tj := lastAssigned[free[i]], lastAssigned[free[j]]
			if !ti.Equal(tj) {
				return ti.Before(tj)
			}
			return free[i] < free[j]
		})
	}
	// Candidates arrive ordered by staff ID; the default ordering needs no work.

	return free, nil
}

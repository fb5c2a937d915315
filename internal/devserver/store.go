package devserver

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"

	openingTime = "08:00"
	closingTime = "17:00"

	defaultPassword = "password123"
)

type Lab struct {
	ID         int
	Name       string
	Department string
	Capacity   int
}

type Module struct {
	Code     string
	Title    string
	Semester int
}

type Instructor struct {
	ID    int
	Name  string
	Email string
	Role  string
}

type Booking struct {
	ID            uuid.UUID
	SeriesID      uuid.UUID
	LabID         int
	ModuleCode    string
	InstructorID  int
	PracticalName string
	Date          time.Time
	Start         string
	End           string
}

type Leave struct {
	ID           int
	InstructorID int
	Start        time.Time
	End          time.Time
	Reason       string
	Status       string
}

// BookingRequest describes one booking, optionally repeated weekly until
// RepeatUntil.
type BookingRequest struct {
	LabID         int
	InstructorID  int
	ModuleCode    string
	PracticalName string
	Date          time.Time
	Start         string
	End           string
	RepeatUntil   time.Time
}

// Store is the in-memory data behind the reference dashboard.
type Store struct {
	mu          sync.RWMutex
	labs        []Lab
	modules     []Module
	instructors []Instructor
	bookings    []Booking
	leaves      []Leave
	nextLeaveID int
	passwords   map[int]string
}

func NewStore() *Store {
	return &Store{nextLeaveID: 1, passwords: map[int]string{}}
}

// NewSeededStore returns a store with a small department worth of resources.
func NewSeededStore() *Store {
	s := NewStore()
	s.labs = []Lab{
		{ID: 1, Name: "Chemistry Lab A", Department: "CHE", Capacity: 24},
		{ID: 2, Name: "Physics Lab", Department: "PHY", Capacity: 30},
		{ID: 3, Name: "Computing Lab 1", Department: "CSE", Capacity: 40},
	}
	s.modules = []Module{
		{Code: "CH1010", Title: "General Chemistry", Semester: 1},
		{Code: "CS1033", Title: "Programming Fundamentals", Semester: 1},
		{Code: "PH1020", Title: "Mechanics", Semester: 2},
	}
	s.instructors = []Instructor{
		{ID: 1, Name: "Admin", Email: "admin@lab.test", Role: "ADMIN"},
		{ID: 2, Name: "Nimal Perera", Email: "nimal@lab.test", Role: "INSTRUCTOR"},
		{ID: 3, Name: "Kavya Silva", Email: "kavya@lab.test", Role: "INSTRUCTOR"},
	}
	for _, i := range s.instructors {
		s.passwords[i.ID] = defaultPassword
	}
	return s
}

func (s *Store) Labs() []Lab {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Lab(nil), s.labs...)
}

func (s *Store) Modules() []Module {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Module(nil), s.modules...)
}

func (s *Store) Instructors() []Instructor {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Instructor(nil), s.instructors...)
}

func (s *Store) Instructor(id int) (Instructor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, i := range s.instructors {
		if i.ID == id {
			return i, nil
		}
	}
	return Instructor{}, fmt.Errorf("%w: %d", ErrUnknownInstructor, id)
}

// Bookings returns every booking ordered by date and start time.
func (s *Store) Bookings() []Booking {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := append([]Booking(nil), s.bookings...)
	sortBookings(out)
	return out
}

func (s *Store) BookingsFor(instructorID int) []Booking {
	var out []Booking
	for _, b := range s.Bookings() {
		if b.InstructorID == instructorID {
			out = append(out, b)
		}
	}
	return out
}

func (s *Store) BookingsInMonth(year int, month time.Month) []Booking {
	var out []Booking
	for _, b := range s.Bookings() {
		if b.Date.Year() == year && b.Date.Month() == month {
			out = append(out, b)
		}
	}
	return out
}

// CreateBookings validates every occurrence before inserting any, so a
// conflicting series is rejected as a whole. It returns the number created.
func (s *Store) CreateBookings(req BookingRequest) (int, error) {
	dates := []time.Time{req.Date}
	if !req.RepeatUntil.IsZero() {
		if !req.RepeatUntil.After(req.Date) {
			return 0, ErrInvalidRecurrence
		}
		for d := req.Date.AddDate(0, 0, 7); !d.After(req.RepeatUntil); d = d.AddDate(0, 0, 7) {
			dates = append(dates, d)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, d := range dates {
		if msg := s.conflict(req.LabID, d, req.Start, req.End); msg != "" {
			return 0, &ConflictError{Date: d, Reason: msg}
		}
	}

	var series uuid.UUID
	if len(dates) > 1 {
		series = uuid.New()
	}
	for _, d := range dates {
		s.bookings = append(s.bookings, Booking{
			ID:            uuid.New(),
			SeriesID:      series,
			LabID:         req.LabID,
			ModuleCode:    req.ModuleCode,
			InstructorID:  req.InstructorID,
			PracticalName: req.PracticalName,
			Date:          d,
			Start:         req.Start,
			End:           req.End,
		})
	}
	return len(dates), nil
}

// conflict returns a description of the first hard conflict, or "".
// Times are zero-padded HH:MM, so string order is time order.
func (s *Store) conflict(labID int, date time.Time, start, end string) string {
	if start < openingTime || end > closingTime {
		return fmt.Sprintf("Outside operating hours (%s-%s)", openingTime, closingTime)
	}
	if start >= end {
		return "End time must be after start time"
	}
	for _, b := range s.bookings {
		if b.LabID == labID && b.Date.Equal(date) && b.Start < end && b.End > start {
			return fmt.Sprintf("Lab collision: %s-%s", b.Start, b.End)
		}
	}
	return ""
}

func (s *Store) DeleteBooking(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, b := range s.bookings {
		if b.ID == id {
			s.bookings = append(s.bookings[:i], s.bookings[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrBookingNotFound, id)
}

// RequestLeave records a leave. Admin requests are approved immediately.
func (s *Store) RequestLeave(instructorID int, start, end time.Time, reason string) (Leave, error) {
	if end.IsZero() {
		end = start
	}
	if start.After(end) {
		return Leave{}, ErrInvalidLeaveRange
	}
	who, err := s.Instructor(instructorID)
	if err != nil {
		return Leave{}, err
	}
	status := "PENDING"
	if who.Role == "ADMIN" {
		status = "APPROVED"
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	l := Leave{
		ID:           s.nextLeaveID,
		InstructorID: instructorID,
		Start:        start,
		End:          end,
		Reason:       reason,
		Status:       status,
	}
	s.nextLeaveID++
	s.leaves = append(s.leaves, l)
	return l, nil
}

func (s *Store) LeavesFor(instructorID int) []Leave {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Leave
	for _, l := range s.leaves {
		if l.InstructorID == instructorID {
			out = append(out, l)
		}
	}
	return out
}

// ChangePassword replaces the password of instructorID when current matches.
func (s *Store) ChangePassword(instructorID int, current, next string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.passwords[instructorID]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownInstructor, instructorID)
	}
	if stored != current {
		return ErrWrongPassword
	}
	s.passwords[instructorID] = next
	return nil
}

func sortBookings(bs []Booking) {
	sort.SliceStable(bs, func(i, j int) bool {
		if !bs[i].Date.Equal(bs[j].Date) {
			return bs[i].Date.Before(bs[j].Date)
		}
		return bs[i].Start < bs[j].Start
	})
}

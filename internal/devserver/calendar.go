package devserver

import "time"

type CalendarDay struct {
	Day      int
	Today    bool
	Bookings []BookingRow
}

type CalendarView struct {
	Year       int
	Month      int
	Title      string
	Weeks      [][]CalendarDay
	PrevYear   int
	PrevMonth  int
	NextYear   int
	NextMonth  int
	TotalSlots int
}

// BuildCalendar lays out a Monday-first month grid. Cells outside the month
// have Day 0.
func BuildCalendar(year int, month time.Month, rows []BookingRow, today time.Time) CalendarView {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	daysInMonth := first.AddDate(0, 1, -1).Day()
	offset := (int(first.Weekday()) + 6) % 7

	byDay := map[int][]BookingRow{}
	for _, r := range rows {
		byDay[r.Day] = append(byDay[r.Day], r)
	}

	var weeks [][]CalendarDay
	week := make([]CalendarDay, offset, 7)
	for day := 1; day <= daysInMonth; day++ {
		week = append(week, CalendarDay{
			Day:      day,
			Today:    today.Year() == year && today.Month() == month && today.Day() == day,
			Bookings: byDay[day],
		})
		if len(week) == 7 {
			weeks = append(weeks, week)
			week = make([]CalendarDay, 0, 7)
		}
	}
	if len(week) > 0 {
		for len(week) < 7 {
			week = append(week, CalendarDay{})
		}
		weeks = append(weeks, week)
	}

	prev := first.AddDate(0, -1, 0)
	next := first.AddDate(0, 1, 0)
	return CalendarView{
		Year:       year,
		Month:      int(month),
		Title:      first.Format("January 2006"),
		Weeks:      weeks,
		PrevYear:   prev.Year(),
		PrevMonth:  int(prev.Month()),
		NextYear:   next.Year(),
		NextMonth:  int(next.Month()),
		TotalSlots: len(rows),
	}
}

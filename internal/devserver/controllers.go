package devserver

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/iota-uz/labdesk/internal/panels"
	"github.com/iota-uz/labdesk/pkg/composables"
	"github.com/iota-uz/labdesk/pkg/server"
	"github.com/iota-uz/labdesk/pkg/xhr"
)

const defaultInstructorID = 2

// BookingRow is a booking joined with the names it refers to.
type BookingRow struct {
	ID         string
	Day        int
	Date       string
	Start      string
	End        string
	Lab        string
	Module     string
	Instructor string
	Practical  string
}

func rows(store *Store, bookings []Booking) []BookingRow {
	labs := map[int]string{}
	for _, l := range store.Labs() {
		labs[l.ID] = l.Name
	}
	people := map[int]string{}
	for _, i := range store.Instructors() {
		people[i.ID] = i.Name
	}
	out := make([]BookingRow, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, BookingRow{
			ID:         b.ID.String(),
			Day:        b.Date.Day(),
			Date:       b.Date.Format(dateLayout),
			Start:      b.Start,
			End:        b.End,
			Lab:        labs[b.LabID],
			Module:     b.ModuleCode,
			Instructor: people[b.InstructorID],
			Practical:  b.PracticalName,
		})
	}
	return out
}

type DashboardController struct {
	store   *Store
	layouts panels.Layouts
	now     func() time.Time
}

func NewDashboardController(store *Store, layouts panels.Layouts, now func() time.Time) server.Controller {
	return &DashboardController{store: store, layouts: layouts, now: now}
}

func (c *DashboardController) Key() string {
	return "/"
}

func (c *DashboardController) Register(r *mux.Router) {
	r.HandleFunc("/", c.Admin).Methods(http.MethodGet)
	r.HandleFunc("/instructor", c.Instructor).Methods(http.MethodGet)
	r.HandleFunc("/instructor/password", c.ChangePassword).Methods(http.MethodPost)
	r.HandleFunc("/logout", c.Logout).Methods(http.MethodPost)
}

func (c *DashboardController) Admin(w http.ResponseWriter, r *http.Request) {
	layout, err := c.layouts.Get("admin")
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	today := c.now()
	render(w, r, "admin", map[string]any{
		"Tabs":        tabsFor(layout),
		"Modals":      layout.Modals,
		"Labs":        c.store.Labs(),
		"Modules":     c.store.Modules(),
		"Instructors": c.store.Instructors(),
		"Bookings":    rows(c.store, c.store.Bookings()),
		"Today":       today.Format(dateLayout),
		"Calendar":    BuildCalendar(today.Year(), today.Month(), rows(c.store, c.store.BookingsInMonth(today.Year(), today.Month())), today),
	})
}

func (c *DashboardController) Instructor(w http.ResponseWriter, r *http.Request) {
	layout, err := c.layouts.Get("instructor")
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	id := defaultInstructorID
	if raw := composables.GetLastQueryParam(r, "instructor_id"); raw != "" {
		if id, err = strconv.Atoi(raw); err != nil {
			http.Error(w, "invalid instructor_id", http.StatusBadRequest)
			return
		}
	}
	who, err := c.store.Instructor(id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	today := c.now()
	var month []Booking
	for _, b := range c.store.BookingsInMonth(today.Year(), today.Month()) {
		if b.InstructorID == id {
			month = append(month, b)
		}
	}
	render(w, r, "instructor", map[string]any{
		"Tabs":       tabsFor(layout),
		"Instructor": who,
		"Schedule":   rows(c.store, c.store.BookingsFor(id)),
		"Leaves":     c.store.LeavesFor(id),
		"Today":      today.Format(dateLayout),
		"Calendar":   BuildCalendar(today.Year(), today.Month(), rows(c.store, month), today),
	})
}

func (c *DashboardController) ChangePassword(w http.ResponseWriter, r *http.Request) {
	dto, err := composables.UseForm(&PasswordDTO{}, r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	back := instructorPath(r)
	if msg, ok := dto.Ok(); !ok {
		redirectWithSignal(w, r, back, "error", msg)
		return
	}
	if err := c.store.ChangePassword(dto.InstructorID, dto.CurrentPassword, dto.NewPassword); err != nil {
		redirectWithSignal(w, r, back, "error", "Password change failed: "+err.Error())
		return
	}
	redirectWithSignal(w, r, back, "success", "Password changed")
}

func (c *DashboardController) Logout(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

type BookingsController struct {
	store *Store
}

func NewBookingsController(store *Store) server.Controller {
	return &BookingsController{store: store}
}

func (c *BookingsController) Key() string {
	return "/bookings"
}

func (c *BookingsController) Register(r *mux.Router) {
	router := r.PathPrefix("/bookings").Subrouter()
	router.HandleFunc("", c.Create).Methods(http.MethodPost)
	router.HandleFunc("/create", c.Create).Methods(http.MethodPost)
	router.HandleFunc("/delete/{id}", c.Delete).Methods(http.MethodPost)
}

func (c *BookingsController) Create(w http.ResponseWriter, r *http.Request) {
	logger := composables.UseLogger(r.Context())
	dto, err := composables.UseForm(&BookingDTO{}, r)
	if err != nil {
		logger.WithError(err).Warn("failed to decode booking form")
		redirectWithSignal(w, r, "/", "error", "Invalid Date/Time Format")
		return
	}
	if msg, ok := dto.Ok(); !ok {
		redirectWithSignal(w, r, "/", "error", msg)
		return
	}
	req, err := dto.ToRequest()
	if err != nil {
		redirectWithSignal(w, r, "/", "error", "Invalid Date/Time Format")
		return
	}

	n, err := c.store.CreateBookings(req)
	if ce, ok := asConflict(err); ok {
		redirectWithSignal(w, r, "/", "error", ce.Error())
		return
	}
	if err != nil {
		logger.WithError(err).Error("failed to create booking")
		redirectWithSignal(w, r, "/", "error", "System Error: "+err.Error())
		return
	}
	redirectWithSignal(w, r, "/", "success", fmt.Sprintf("Created %d sessions successfully", n))
}

func (c *BookingsController) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		redirectWithSignal(w, r, "/", "error", "Booking Not Found")
		return
	}
	if err := c.store.DeleteBooking(id); err != nil {
		redirectWithSignal(w, r, "/", "error", "Booking Not Found")
		return
	}
	redirectWithSignal(w, r, "/", "success", "Booking Deleted")
}

type LeavesController struct {
	store *Store
}

func NewLeavesController(store *Store) server.Controller {
	return &LeavesController{store: store}
}

func (c *LeavesController) Key() string {
	return "/leaves"
}

func (c *LeavesController) Register(r *mux.Router) {
	r.HandleFunc("/leaves/request", c.Request).Methods(http.MethodPost)
}

func (c *LeavesController) Request(w http.ResponseWriter, r *http.Request) {
	dto, err := composables.UseForm(&LeaveDTO{}, r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	back := instructorPath(r)
	if msg, ok := dto.Ok(); !ok {
		redirectWithSignal(w, r, back, "error", msg)
		return
	}
	start, _ := time.Parse(dateLayout, dto.StartDate)
	var end time.Time
	if dto.EndDate != "" {
		end, _ = time.Parse(dateLayout, dto.EndDate)
	}
	leave, err := c.store.RequestLeave(dto.InstructorID, start, end, dto.Reason)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	msg := "Leave Requested"
	if leave.Status == "APPROVED" {
		msg = "Leave Placed Successfully"
	}
	redirectWithSignal(w, r, back, "success", msg)
}

// instructorPath is where instructor forms return to: the referring page
// without its query, or the dashboard of the submitting instructor.
func instructorPath(r *http.Request) string {
	path := "/instructor"
	if ref, err := url.Parse(r.Referer()); err == nil && ref.Path != "" {
		path = ref.Path
	}
	if id := r.FormValue("instructor_id"); id != "" && path == "/instructor" {
		return path + "?instructor_id=" + url.QueryEscape(id)
	}
	return path
}

type CalendarController struct {
	store *Store
	now   func() time.Time
}

func NewCalendarController(store *Store, now func() time.Time) server.Controller {
	return &CalendarController{store: store, now: now}
}

func (c *CalendarController) Key() string {
	return "/calendar/fragment"
}

func (c *CalendarController) Register(r *mux.Router) {
	r.HandleFunc("/calendar/fragment", c.Fragment).Methods(http.MethodGet)
}

func (c *CalendarController) Fragment(w http.ResponseWriter, r *http.Request) {
	year, yerr := strconv.Atoi(r.URL.Query().Get("year"))
	month, merr := strconv.Atoi(r.URL.Query().Get("month"))
	if yerr != nil || merr != nil || month < 1 || month > 12 {
		http.Error(w, "invalid year or month", http.StatusBadRequest)
		return
	}
	if !xhr.IsProgrammatic(r) {
		composables.UseLogger(r.Context()).Debug("calendar fragment requested without marker header")
	}
	m := time.Month(month)
	render(w, r, "calendar", BuildCalendar(year, m, rows(c.store, c.store.BookingsInMonth(year, m)), c.now()))
}

type HealthController struct{}

func NewHealthController() server.Controller {
	return &HealthController{}
}

func (c *HealthController) Key() string {
	return "/health"
}

func (c *HealthController) Register(r *mux.Router) {
	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
	}).Methods(http.MethodGet)
}

type StaticFilesController struct{}

func NewStaticFilesController() server.Controller {
	return &StaticFilesController{}
}

func (c *StaticFilesController) Key() string {
	return "/static"
}

func (c *StaticFilesController) Register(r *mux.Router) {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	r.PathPrefix("/static/").Handler(http.StripPrefix("/static/", http.FileServer(http.FS(sub))))
}

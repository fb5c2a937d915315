package devserver

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/antchfx/htmlquery"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/iota-uz/labdesk/pkg/middleware"
	"github.com/iota-uz/labdesk/pkg/xhr"
)

func fixedNow() time.Time {
	return time.Date(2024, time.March, 12, 9, 0, 0, 0, time.UTC)
}

func newTestServer(t *testing.T) (*httptest.Server, *Store) {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	store := NewSeededStore()
	srv, err := New(Options{Store: store, Logger: logger, Now: fixedNow, MetricsPath: "/debug/prometheus"})
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, store
}

func noRedirectClient(ts *httptest.Server) *http.Client {
	c := ts.Client()
	c.CheckRedirect = func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }
	return c
}

func multipartBody(t *testing.T, fields map[string]string) (io.Reader, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	require.NoError(t, w.Close())
	return buf, w.FormDataContentType()
}

func postForm(t *testing.T, ts *httptest.Server, path string, fields map[string]string) *http.Response {
	t.Helper()
	body, ct := multipartBody(t, fields)
	req, err := http.NewRequest(http.MethodPost, ts.URL+path, body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", ct)
	xhr.Mark(req)
	resp, err := noRedirectClient(ts).Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func signal(t *testing.T, resp *http.Response) url.Values {
	t.Helper()
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	loc, err := resp.Location()
	require.NoError(t, err)
	return loc.Query()
}

func validBooking() map[string]string {
	return map[string]string{
		"lab_id":        "1",
		"instructor_id": "2",
		"module_code":   "CH1010",
		"booking_date":  "2024-03-14",
		"start_time":    "09:00",
		"end_time":      "11:00",
	}
}

func TestCreateBooking_RedirectsWithSuccess(t *testing.T) {
	ts, store := newTestServer(t)

	resp := postForm(t, ts, "/bookings", validBooking())

	require.Equal(t, "Created 1 sessions successfully", signal(t, resp).Get("success"))
	require.Len(t, store.Bookings(), 1)
}

func TestCreateBooking_RecurringSeries(t *testing.T) {
	ts, store := newTestServer(t)
	fields := validBooking()
	fields["is_recurring"] = "true"
	fields["repeat_until"] = "2024-03-28"

	resp := postForm(t, ts, "/bookings/create", fields)

	require.Equal(t, "Created 3 sessions successfully", signal(t, resp).Get("success"))
	require.Len(t, store.Bookings(), 3)
}

func TestCreateBooking_ErrorSignals(t *testing.T) {
	ts, _ := newTestServer(t)
	require.Equal(t, http.StatusSeeOther, postForm(t, ts, "/bookings", validBooking()).StatusCode)

	tests := []struct {
		name   string
		mutate func(map[string]string)
		want   string
	}{
		{name: "conflict", mutate: func(map[string]string) {}, want: "Conflict on 2024-03-14: Lab collision: 09:00-11:00 (Series Cancelled)"},
		{name: "bad date", mutate: func(f map[string]string) { f["booking_date"] = "14/03/2024" }, want: "Invalid Date/Time Format"},
		{name: "missing module", mutate: func(f map[string]string) { delete(f, "module_code") }, want: "ModuleCode is required"},
		{name: "after hours", mutate: func(f map[string]string) { f["end_time"] = "18:00" }, want: "Conflict on 2024-03-14: Outside operating hours (08:00-17:00) (Series Cancelled)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := validBooking()
			tt.mutate(fields)
			require.Equal(t, tt.want, signal(t, postForm(t, ts, "/bookings", fields)).Get("error"))
		})
	}
}

func TestDeleteBooking(t *testing.T) {
	ts, store := newTestServer(t)
	postForm(t, ts, "/bookings", validBooking())
	id := store.Bookings()[0].ID.String()

	require.Equal(t, "Booking Deleted", signal(t, postForm(t, ts, "/bookings/delete/"+id, nil)).Get("success"))
	require.Equal(t, "Booking Not Found", signal(t, postForm(t, ts, "/bookings/delete/"+id, nil)).Get("error"))
	require.Equal(t, "Booking Not Found", signal(t, postForm(t, ts, "/bookings/delete/not-a-uuid", nil)).Get("error"))
}

func TestLeaveRequest_RedirectsToInstructor(t *testing.T) {
	ts, store := newTestServer(t)

	resp := postForm(t, ts, "/leaves/request", map[string]string{
		"instructor_id": "3",
		"start_date":    "2024-04-01",
		"end_date":      "2024-04-02",
	})

	loc, err := resp.Location()
	require.NoError(t, err)
	require.Equal(t, "/instructor", loc.Path)
	require.Equal(t, "3", loc.Query().Get("instructor_id"))
	require.Equal(t, "Leave Requested", loc.Query().Get("success"))
	require.Len(t, store.LeavesFor(3), 1)
}

func TestChangePassword(t *testing.T) {
	ts, _ := newTestServer(t)
	fields := map[string]string{
		"instructor_id":    "2",
		"current_password": "password123",
		"new_password":     "s3cure-pass",
		"confirm_password": "different",
	}
	require.Equal(t, "Passwords do not match", signal(t, postForm(t, ts, "/instructor/password", fields)).Get("error"))

	fields["confirm_password"] = "s3cure-pass"
	require.Equal(t, "Password changed", signal(t, postForm(t, ts, "/instructor/password", fields)).Get("success"))
}

func TestAdminPage_DOMContract(t *testing.T) {
	ts, _ := newTestServer(t)
	resp, err := ts.Client().Get(ts.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	doc, err := htmlquery.Parse(resp.Body)
	require.NoError(t, err)
	require.NotNil(t, htmlquery.FindOne(doc, `//div[@class="container"]`))
	for _, id := range []string{"dashboard", "bookings", "labs", "modules", "instructors"} {
		require.NotNil(t, htmlquery.FindOne(doc, `//section[contains(@class,"tab-content") and @id="`+id+`"]`), id)
		require.NotNil(t, htmlquery.FindOne(doc, `//button[contains(@class,"tab") and @id="btn-`+id+`"]`), id)
	}
	require.Len(t, htmlquery.Find(doc, `//*[contains(@class,"tab-content") and contains(@class,"active")]`), 1)
	require.Len(t, htmlquery.Find(doc, `//div[@class="modal-overlay"]`), 4)
	require.NotNil(t, htmlquery.FindOne(doc, `//div[@id="calendar-container"]//caption[text()="March 2024"]`))
	require.NotNil(t, htmlquery.FindOne(doc, `//form[@id="logout-form" and @data-no-ajax="true"]`))
}

func TestInstructorPage(t *testing.T) {
	ts, _ := newTestServer(t)
	resp, err := ts.Client().Get(ts.URL + "/instructor?instructor_id=3")
	require.NoError(t, err)
	defer resp.Body.Close()

	doc, err := htmlquery.Parse(resp.Body)
	require.NoError(t, err)
	require.Equal(t, "Welcome, Kavya Silva", htmlquery.InnerText(htmlquery.FindOne(doc, `//h1`)))
	require.NotNil(t, htmlquery.FindOne(doc, `//div[@id="change-password-modal"]`))

	missing, err := ts.Client().Get(ts.URL + "/instructor?instructor_id=42")
	require.NoError(t, err)
	defer missing.Body.Close()
	require.Equal(t, http.StatusNotFound, missing.StatusCode)
}

func TestCalendarFragment(t *testing.T) {
	ts, _ := newTestServer(t)
	postForm(t, ts, "/bookings", validBooking())

	resp, err := ts.Client().Get(ts.URL + "/calendar/fragment?year=2024&month=3")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	body := string(data)
	require.NotContains(t, body, "<html")

	doc, err := htmlquery.Parse(strings.NewReader(body))
	require.NoError(t, err)
	require.NotNil(t, htmlquery.FindOne(doc, `//table[@data-year="2024" and @data-month="3"]`))
	require.NotNil(t, htmlquery.FindOne(doc, `//td[@data-day="14"]/div[@class="slot"]`))

	for _, q := range []string{"year=2024&month=13", "year=x&month=1", ""} {
		bad, err := ts.Client().Get(ts.URL + "/calendar/fragment?" + q)
		require.NoError(t, err)
		_ = bad.Body.Close()
		require.Equal(t, http.StatusBadRequest, bad.StatusCode, q)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := ts.Client().Get(ts.URL + "/health")
	require.NoError(t, err)
	data, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	require.JSONEq(t, `{"status":"healthy"}`, string(data))

	resp, err = ts.Client().Get(ts.URL + "/debug/prometheus")
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = ts.Client().Get(ts.URL + "/static/dashboard.css")
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServer_CorsAndRateLimit(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	srv, err := New(Options{
		Logger:         logger,
		Now:            fixedNow,
		AllowedOrigins: []string{"http://dash.example"},
		RateLimit:      &middleware.RateLimitConfig{RequestsPerPeriod: 2, Period: time.Minute},
	})
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	get := func() *http.Response {
		req, err := http.NewRequest(http.MethodGet, ts.URL+"/health", nil)
		require.NoError(t, err)
		req.Header.Set("Origin", "http://dash.example")
		resp, err := ts.Client().Do(req)
		require.NoError(t, err)
		t.Cleanup(func() { resp.Body.Close() })
		return resp
	}

	first := get()
	require.Equal(t, http.StatusOK, first.StatusCode)
	require.Equal(t, "http://dash.example", first.Header.Get("Access-Control-Allow-Origin"))
	require.Equal(t, http.StatusOK, get().StatusCode)
	require.Equal(t, http.StatusTooManyRequests, get().StatusCode)
}

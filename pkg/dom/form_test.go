package dom

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
)

const bookingForm = `<html><body>
<form id="booking" method="post" action="/bookings">
  <input type="hidden" name="csrf_token" value="tok">
  <input name="booking_date" value="2024-02-12">
  <input type="checkbox" name="is_recurring" value="yes">
  <input type="checkbox" name="notify" checked>
  <input type="radio" name="slot" value="am">
  <input type="radio" name="slot" value="pm" checked>
  <input name="disabled_field" value="x" disabled>
  <fieldset disabled><input name="in_disabled_fieldset" value="x"></fieldset>
  <input value="unnamed">
  <select name="lab_id"><option value="1">Lab 1</option><option value="2" selected>Lab 2</option></select>
  <select name="module_code"><option disabled>pick</option><option>CS101</option></select>
  <select name="tags" multiple><option value="a" selected>A</option><option value="b" selected>B</option></select>
  <textarea name="notes">bring laptops</textarea>
  <input type="file" name="attachment">
  <button type="submit" name="action" value="save">Save</button>
</form>
</body></html>`

func TestFormFields_CapturesSuccessfulControls(t *testing.T) {
	doc := mustParse(t, bookingForm)
	form := doc.GetElementByID("booking")

	fields := form.FormFields()
	require.Equal(t, Fields{
		{Name: "csrf_token", Value: "tok"},
		{Name: "booking_date", Value: "2024-02-12"},
		{Name: "notify", Value: "on"},
		{Name: "slot", Value: "pm"},
		{Name: "lab_id", Value: "2"},
		{Name: "module_code", Value: "CS101"},
		{Name: "tags", Value: "a"},
		{Name: "tags", Value: "b"},
		{Name: "notes", Value: "bring laptops"},
	}, fields)
	require.Equal(t, []string{"a", "b"}, fields.Values()["tags"])
}

func TestFormFields_SnapshotIsIndependentOfLaterEdits(t *testing.T) {
	doc := mustParse(t, bookingForm)
	form := doc.GetElementByID("booking")

	fields := form.FormFields()
	require.True(t, form.SetFieldValue("booking_date", "2030-01-01"))

	require.Equal(t, "2024-02-12", fields.Get("booking_date"))
	require.Equal(t, "2030-01-01", form.FormFields().Get("booking_date"))
}

func TestSetFieldValue(t *testing.T) {
	doc := mustParse(t, bookingForm)
	form := doc.GetElementByID("booking")

	require.True(t, form.SetFieldValue("lab_id", "1"))
	require.True(t, form.SetFieldValue("slot", "am"))
	require.True(t, form.SetFieldValue("is_recurring", "yes"))
	require.True(t, form.SetFieldValue("notes", "none"))
	require.False(t, form.SetFieldValue("missing", "1"))

	fields := form.FormFields()
	require.Equal(t, "1", fields.Get("lab_id"))
	require.Equal(t, "am", fields.Get("slot"))
	require.Equal(t, "yes", fields.Get("is_recurring"))
	require.Equal(t, "none", fields.Get("notes"))
}

func TestSubmitControlAndMethod(t *testing.T) {
	doc := mustParse(t, bookingForm)
	form := doc.GetElementByID("booking")

	btn := form.SubmitControl()
	require.NotNil(t, btn)
	require.Equal(t, "Save", btn.Text())
	require.Equal(t, http.MethodPost, form.FormMethod())

	plain := mustParse(t, `<html><body><form method="dialog"><input name="q"></form></body></html>`)
	require.Equal(t, http.MethodGet, plain.QuerySelector("form").FormMethod())
	require.Nil(t, plain.QuerySelector("form").SubmitControl())
}

func TestNewFormRequest(t *testing.T) {
	action, err := url.Parse("http://labs.test/bookings?view=week")
	require.NoError(t, err)
	fields := Fields{{Name: "lab_id", Value: "2"}, {Name: "notes", Value: "a&b"}}

	t.Run("get merges into query", func(t *testing.T) {
		req, err := NewFormRequest(context.Background(), "get", action, fields)
		require.NoError(t, err)
		require.Equal(t, http.MethodGet, req.Method)
		require.Equal(t, "2", req.URL.Query().Get("lab_id"))
		require.Equal(t, "a&b", req.URL.Query().Get("notes"))
		require.Equal(t, "week", req.URL.Query().Get("view"))
		require.Equal(t, "view=week", action.RawQuery, "action must not be mutated")
	})

	t.Run("post is multipart", func(t *testing.T) {
		req, err := NewFormRequest(context.Background(), http.MethodPost, action, fields)
		require.NoError(t, err)
		require.NoError(t, req.ParseMultipartForm(1<<20))
		require.Equal(t, "2", req.MultipartForm.Value["lab_id"][0])
		require.Equal(t, "a&b", req.MultipartForm.Value["notes"][0])
		_, _ = io.Copy(io.Discard, req.Body)
	})
}

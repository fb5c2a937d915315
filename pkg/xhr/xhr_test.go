package xhr

import (
	"net/http/httptest"
	"testing"
)

func TestMarkAndDetect(t *testing.T) {
	req := httptest.NewRequest("POST", "/bookings", nil)
	if IsProgrammatic(req) {
		t.Fatal("fresh request must not be programmatic")
	}
	Mark(req)
	if !IsProgrammatic(req) {
		t.Fatal("marked request must be programmatic")
	}

	other := httptest.NewRequest("GET", "/", nil)
	other.Header.Set(HeaderName, "xmlhttprequest")
	if !IsProgrammatic(other) {
		t.Fatal("header value comparison is case-insensitive")
	}
}

package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/iota-uz/labdesk/pkg/composables"
	"github.com/iota-uz/labdesk/pkg/xhr"
)

func newRouter(logger *logrus.Logger, opts LoggerOptions, h http.HandlerFunc) *mux.Router {
	r := mux.NewRouter()
	r.Use(WithLogger(logger, opts))
	r.HandleFunc("/", h)
	return r
}

func TestWithLogger_EchoesRequestID(t *testing.T) {
	logger, hook := test.NewNullLogger()
	var seen string
	r := newRouter(logger, DefaultLoggerOptions(), func(w http.ResponseWriter, r *http.Request) {
		seen = composables.UseRequestID(r.Context())
		composables.UseLogger(r.Context()).Info("inside handler")
		w.WriteHeader(http.StatusAccepted)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	xhr.Mark(req)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code)
	require.Equal(t, "abc-123", seen)
	require.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))

	var inside *logrus.Entry
	for _, e := range hook.AllEntries() {
		if e.Message == "inside handler" {
			inside = e
		}
	}
	require.NotNil(t, inside)
	require.Equal(t, "abc-123", inside.Data["request-id"])
	require.Equal(t, true, inside.Data["programmatic"])

	last := hook.LastEntry()
	require.Equal(t, "request completed", last.Message)
	require.Equal(t, http.StatusAccepted, last.Data["status-code"])
}

func TestWithLogger_GeneratesRequestID(t *testing.T) {
	logger, _ := test.NewNullLogger()
	r := newRouter(logger, DefaultLoggerOptions(), func(w http.ResponseWriter, r *http.Request) {})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Len(t, rec.Header().Get("X-Request-ID"), 36)
}

func TestWithLogger_RecoversPanic(t *testing.T) {
	logger, hook := test.NewNullLogger()
	r := newRouter(logger, DefaultLoggerOptions(), func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	found := false
	for _, e := range hook.AllEntries() {
		if e.Message == "panic recovered in request handler" {
			found = true
		}
	}
	require.True(t, found)
}

func TestWithLogger_KeepsFormBodyReadable(t *testing.T) {
	logger, _ := test.NewNullLogger()
	var lab string
	r := mux.NewRouter()
	r.Use(WithLogger(logger, DefaultLoggerOptions()))
	r.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		lab = r.PostForm.Get("lab")
	}).Methods(http.MethodPost)

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("lab=Physics"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	r.ServeHTTP(httptest.NewRecorder(), req)

	require.Equal(t, "Physics", lab)
}

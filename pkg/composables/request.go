package composables

import (
	"context"
	"errors"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/iota-uz/labdesk/pkg/constants"
	"github.com/iota-uz/labdesk/pkg/shared"
)

const maxFormMemory = 8 << 20

var (
	ErrNoLogger       = errors.New("logger not found")
	ErrNoRequestStart = errors.New("request start not found")
)

// UseLogger returns the request-scoped logger installed by the logging
// middleware, or the standard logger outside a request.
func UseLogger(ctx context.Context) *logrus.Entry {
	if logger, ok := ctx.Value(constants.LoggerKey).(*logrus.Entry); ok {
		return logger
	}
	return logrus.NewEntry(logrus.StandardLogger())
}

func UseRequestStart(ctx context.Context) (time.Time, error) {
	start, ok := ctx.Value(constants.RequestStart).(time.Time)
	if !ok {
		return time.Time{}, ErrNoRequestStart
	}
	return start, nil
}

func UseRequestID(ctx context.Context) string {
	id, _ := ctx.Value(constants.RequestIDKey).(string)
	return id
}

// UseForm decodes the request's form into v. Both urlencoded and multipart
// bodies are accepted.
func UseForm[T comparable](v T, r *http.Request) (T, error) {
	if err := parseForm(r); err != nil {
		return v, err
	}
	return v, shared.Decoder.Decode(v, r.Form)
}

func parseForm(r *http.Request) error {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if strings.EqualFold(mediaType, "multipart/form-data") {
		return r.ParseMultipartForm(maxFormMemory)
	}
	return r.ParseForm()
}

// GetLastQueryParam returns the last occurrence of a query parameter.
func GetLastQueryParam(r *http.Request, key string) string {
	values := r.URL.Query()[key]
	if len(values) > 0 {
		return values[len(values)-1]
	}
	return ""
}

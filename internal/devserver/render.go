package devserver

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"net/url"
	"strings"

	"github.com/iota-uz/labdesk/internal/panels"
	"github.com/iota-uz/labdesk/pkg/composables"
)

//go:embed templates/*.html
var templatesFS embed.FS

//go:embed static
var staticFS embed.FS

var pages = template.Must(template.ParseFS(templatesFS, "templates/*.html"))

type tabView struct {
	ID     string
	Label  string
	Active bool
}

func tabsFor(layout panels.Layout) []tabView {
	tabs := make([]tabView, 0, len(layout.Panels))
	for _, id := range layout.Panels {
		tabs = append(tabs, tabView{
			ID:     id,
			Label:  strings.ToUpper(id[:1]) + id[1:],
			Active: id == layout.DefaultPanel,
		})
	}
	return tabs
}

func render(w http.ResponseWriter, r *http.Request, name string, data any) {
	var buf bytes.Buffer
	if err := pages.ExecuteTemplate(&buf, name, data); err != nil {
		composables.UseLogger(r.Context()).WithError(err).WithField("template", name).Error("failed to render template")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

// redirectWithSignal answers a form post the way the dashboard expects: a 303
// to path carrying a one-shot success or error message.
func redirectWithSignal(w http.ResponseWriter, r *http.Request, path, kind, message string) {
	u, err := url.Parse(path)
	if err != nil || u.Path == "" {
		u = &url.URL{Path: "/"}
	}
	q := u.Query()
	q.Del("success")
	q.Del("error")
	q.Set(kind, message)
	u.RawQuery = q.Encode()
	http.Redirect(w, r, u.String(), http.StatusSeeOther)
}

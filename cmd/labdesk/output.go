package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/iota-uz/labdesk/internal/browser"
	"github.com/iota-uz/labdesk/internal/navigation"
)

type signalLine struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

type outcomeLine struct {
	Result      string       `json:"result"`
	Status      int          `json:"status,omitempty"`
	FinalURL    string       `json:"final_url,omitempty"`
	Location    string       `json:"location"`
	Swapped     bool         `json:"swapped"`
	Reloaded    bool         `json:"reloaded"`
	ActivePanel string       `json:"active_panel,omitempty"`
	Toasts      []signalLine `json:"toasts"`
	DurationMS  int64        `json:"duration_ms"`
	Error       string       `json:"error,omitempty"`
}

func newOutcomeLine(s *browser.Session, out navigation.Outcome) outcomeLine {
	line := outcomeLine{
		Result:      string(out.Result),
		Status:      out.Status,
		Location:    s.Window.Location().String(),
		Swapped:     out.Swapped,
		Reloaded:    out.Reloaded,
		ActivePanel: out.ActivePanel,
		Toasts:      []signalLine{},
		DurationMS:  out.Duration.Milliseconds(),
	}
	if out.FinalURL != nil {
		line.FinalURL = out.FinalURL.String()
	}
	if out.Err != nil {
		line.Error = out.Err.Error()
	}
	for _, t := range s.Toasts.Active() {
		line.Toasts = append(line.Toasts, signalLine{Kind: string(t.Kind), Message: t.Message})
	}
	return line
}

func writeJSONLine(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("json encode: %w", err)
	}
	return nil
}

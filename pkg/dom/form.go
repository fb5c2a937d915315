package dom

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Field is one name/value entry of a form's data set, in document order.
type Field struct {
	Name  string
	Value string
}

type Fields []Field

// Values converts the field set into url.Values, keeping repeated names.
func (f Fields) Values() url.Values {
	v := url.Values{}
	for _, field := range f {
		v.Add(field.Name, field.Value)
	}
	return v
}

// Get returns the first value for name.
func (f Fields) Get(name string) string {
	for _, field := range f {
		if field.Name == name {
			return field.Value
		}
	}
	return ""
}

var skippedInputTypes = map[string]bool{
	"submit": true,
	"button": true,
	"reset":  true,
	"image":  true,
	"file":   true,
}

// FormFields captures the successful controls of a form the way a browser's
// FormData does without a submitter: named, enabled controls only;
// checkboxes and radios only when checked.
func (e *Element) FormFields() Fields {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()

	var fields Fields
	e.sel().Find("input, select, textarea").Each(func(_ int, s *goquery.Selection) {
		name, ok := s.Attr("name")
		if !ok || name == "" {
			return
		}
		if _, disabled := s.Attr("disabled"); disabled {
			return
		}
		if s.Closest("fieldset[disabled]").Length() > 0 {
			return
		}

		switch goquery.NodeName(s) {
		case "input":
			typ := strings.ToLower(s.AttrOr("type", "text"))
			if skippedInputTypes[typ] {
				return
			}
			if typ == "checkbox" || typ == "radio" {
				if _, checked := s.Attr("checked"); !checked {
					return
				}
				fields = append(fields, Field{Name: name, Value: s.AttrOr("value", "on")})
				return
			}
			fields = append(fields, Field{Name: name, Value: s.AttrOr("value", "")})
		case "textarea":
			fields = append(fields, Field{Name: name, Value: s.Text()})
		case "select":
			fields = append(fields, selectFields(name, s)...)
		}
	})
	return fields
}

func selectFields(name string, s *goquery.Selection) Fields {
	_, multiple := s.Attr("multiple")
	options := s.Find("option")
	var out Fields
	options.Each(func(_ int, o *goquery.Selection) {
		if _, selected := o.Attr("selected"); selected {
			if _, disabled := o.Attr("disabled"); !disabled {
				out = append(out, Field{Name: name, Value: optionValue(o)})
			}
		}
	})
	if len(out) > 0 || multiple {
		if !multiple && len(out) > 1 {
			return out[len(out)-1:]
		}
		return out
	}
	// A single select with nothing marked submits its first enabled option.
	var first Fields
	options.EachWithBreak(func(_ int, o *goquery.Selection) bool {
		if _, disabled := o.Attr("disabled"); disabled {
			return true
		}
		first = Fields{{Name: name, Value: optionValue(o)}}
		return false
	})
	return first
}

func optionValue(o *goquery.Selection) string {
	if v, ok := o.Attr("value"); ok {
		return v
	}
	return strings.TrimSpace(o.Text())
}

// SetFieldValue updates the control named name: the value attribute for inputs,
// the text for textareas and the selected option for selects. Checkboxes and
// radios are checked when value matches their own value. It reports whether a
// control was found.
func (e *Element) SetFieldValue(name, value string) bool {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()

	found := false
	e.sel().Find("input, select, textarea").Each(func(_ int, s *goquery.Selection) {
		if s.AttrOr("name", "") != name {
			return
		}
		found = true
		switch goquery.NodeName(s) {
		case "input":
			typ := strings.ToLower(s.AttrOr("type", "text"))
			if typ == "checkbox" || typ == "radio" {
				if s.AttrOr("value", "on") == value {
					s.SetAttr("checked", "")
				} else if typ == "radio" {
					s.RemoveAttr("checked")
				}
				return
			}
			s.SetAttr("value", value)
		case "textarea":
			s.Empty()
			s.Get(0).AppendChild(&html.Node{Type: html.TextNode, Data: value})
		case "select":
			s.Find("option").Each(func(_ int, o *goquery.Selection) {
				if optionValue(o) == value {
					o.SetAttr("selected", "")
				} else {
					o.RemoveAttr("selected")
				}
			})
		}
	})
	return found
}

// SubmitControl returns the form's default submit button, or nil.
func (e *Element) SubmitControl() *Element {
	return e.QuerySelector("button[type='submit'], input[type='submit'], button:not([type])")
}

// NewFormRequest encodes fields the way a browser submits them: query string
// for GET/HEAD, multipart body otherwise.
func NewFormRequest(ctx context.Context, method string, action *url.URL, fields Fields) (*http.Request, error) {
	method = strings.ToUpper(strings.TrimSpace(method))
	if method == "" {
		method = http.MethodGet
	}
	target := *action

	if method == http.MethodGet || method == http.MethodHead {
		q := target.Query()
		for _, f := range fields {
			q.Add(f.Name, f.Value)
		}
		target.RawQuery = q.Encode()
		return http.NewRequestWithContext(ctx, method, target.String(), nil)
	}

	body, contentType, err := encodeMultipart(fields)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, method, target.String(), body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)
	return req, nil
}

func encodeMultipart(fields Fields) (io.Reader, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	for _, f := range fields {
		if err := w.WriteField(f.Name, f.Value); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf, w.FormDataContentType(), nil
}

// FormMethod mirrors HTMLFormElement.method: GET unless the attribute says POST.
func (e *Element) FormMethod() string {
	raw, _ := e.Attr("method")
	if strings.EqualFold(strings.TrimSpace(raw), http.MethodPost) {
		return http.MethodPost
	}
	return http.MethodGet
}

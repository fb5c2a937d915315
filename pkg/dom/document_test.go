package dom

import (
	"strings"
	"testing"

	"github.com/antchfx/htmlquery"
	"github.com/stretchr/testify/require"
)

const dashboardPage = `<html><head><title> Admin </title></head><body>
<div class="container">
  <div class="tab active" id="btn-dashboard">Dashboard</div>
  <div class="tab-content active" id="dashboard"><p>hello</p></div>
  <div class="modal-overlay" id="edit-lab-modal" style="display: block;"><div class="modal">x</div></div>
</div>
</body></html>`

func mustParse(t *testing.T, markup string) *Document {
	t.Helper()
	doc, err := ParseString(markup)
	require.NoError(t, err)
	return doc
}

func TestDocument_Query(t *testing.T) {
	doc := mustParse(t, dashboardPage)

	require.Equal(t, "Admin", doc.Title())
	require.NotNil(t, doc.QuerySelector(".container"))
	require.Nil(t, doc.QuerySelector(".missing"))
	require.Len(t, doc.QuerySelectorAll(".tab, .tab-content"), 2)

	el := doc.GetElementByID("dashboard")
	require.NotNil(t, el)
	require.Equal(t, "div", el.TagName())
	require.True(t, el.HasClass("active"))
	require.Nil(t, doc.GetElementByID("nope"))
}

func TestElement_ClassesAndStyle(t *testing.T) {
	doc := mustParse(t, dashboardPage)
	modal := doc.GetElementByID("edit-lab-modal")

	require.Equal(t, "block", modal.Style("display"))
	modal.SetStyle("display", "none")
	modal.SetStyle("opacity", "0.5")
	require.Equal(t, "none", modal.Style("display"))
	style, _ := modal.Attr("style")
	require.Equal(t, "display: none; opacity: 0.5;", style)

	modal.SetStyle("display", "")
	modal.SetStyle("opacity", "")
	_, hasStyle := modal.Attr("style")
	require.False(t, hasStyle)

	modal.AddClass("open")
	require.True(t, modal.Matches(".modal-overlay.open"))
	modal.RemoveClass("open")
	require.False(t, modal.HasClass("open"))
}

func TestElement_TextAndHTML(t *testing.T) {
	doc := mustParse(t, dashboardPage)
	panel := doc.GetElementByID("dashboard")

	panel.SetText("<b>not markup</b>")
	require.Equal(t, "<b>not markup</b>", panel.Text())
	require.Equal(t, "&lt;b&gt;not markup&lt;/b&gt;", panel.InnerHTML())

	panel.SetInnerHTML(`<ul><li>one</li></ul>`)
	root, err := htmlquery.Parse(strings.NewReader(doc.HTML()))
	require.NoError(t, err)
	require.NotNil(t, htmlquery.FindOne(root, "//div[@id='dashboard']/ul/li"))
}

func TestElement_AppendRemoveConnected(t *testing.T) {
	doc := mustParse(t, dashboardPage)
	body := doc.Body()

	added := body.AppendHTML(`<div class="toast-container"></div>`)
	require.NotNil(t, added)
	require.True(t, added.HasClass("toast-container"))
	require.True(t, added.IsConnected())
	require.True(t, added.Same(doc.QuerySelector(".toast-container")))

	added.Remove()
	added.Remove()
	require.False(t, added.IsConnected())
	require.Nil(t, doc.QuerySelector(".toast-container"))

	require.Nil(t, body.AppendHTML("just text"))
}

func TestDocument_ReplaceDisconnectsOldElements(t *testing.T) {
	doc := mustParse(t, dashboardPage)
	old := doc.GetElementByID("dashboard")

	doc.Replace(mustParse(t, `<html><body><div class="container" id="fresh"></div></body></html>`))

	require.False(t, old.IsConnected())
	require.NotNil(t, doc.GetElementByID("fresh"))
}

func TestElement_ClosestAndDisabled(t *testing.T) {
	doc := mustParse(t, `<html><body><form id="f"><button type="submit">Save</button></form></body></html>`)
	btn := doc.QuerySelector("button")

	require.True(t, btn.Closest("form").Same(doc.GetElementByID("f")))
	require.Nil(t, btn.Closest("table"))

	btn.SetDisabled(true)
	require.True(t, btn.Disabled())
	btn.SetDisabled(false)
	require.False(t, btn.Disabled())
}

package panels

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iota-uz/labdesk/pkg/dom"
	"github.com/iota-uz/labdesk/pkg/eventbus"
)

const adminPage = `<html><body><div class="container">
  <button class="tab active" id="btn-dashboard">Dashboard</button>
  <button class="tab" id="btn-labs">Labs</button>
  <button class="tab" id="btn-bookings">Bookings</button>
  <div class="tab-content active" id="dashboard"></div>
  <div class="tab-content" id="labs"></div>
  <div class="tab-content" id="bookings"></div>
  <div class="modal-overlay" id="edit-lab-modal" style="display: none;"><div class="modal" id="edit-lab-body">form</div></div>
  <div class="modal-overlay" id="edit-booking-modal" style="display: block;"></div>
</div></body></html>`

func newAdminPage(t *testing.T) (*Page, *dom.Document) {
	t.Helper()
	doc, err := dom.ParseString(adminPage)
	require.NoError(t, err)
	layouts, err := LoadLayouts("")
	require.NoError(t, err)
	layout, err := layouts.Get("admin")
	require.NoError(t, err)
	return NewPage(doc, layout, ""), doc
}

func activeIDs(doc *dom.Document) []string {
	var ids []string
	for _, el := range doc.QuerySelectorAll(".active") {
		ids = append(ids, el.ID())
	}
	return ids
}

func TestTabs_ActivateIsMutuallyExclusive(t *testing.T) {
	page, doc := newAdminPage(t)

	require.NoError(t, page.Tabs.Activate("labs"))
	require.ElementsMatch(t, []string{"btn-labs", "labs"}, activeIDs(doc))
	require.Equal(t, "labs", page.Tabs.Active())

	require.NoError(t, page.Tabs.Activate("bookings"))
	require.ElementsMatch(t, []string{"btn-bookings", "bookings"}, activeIDs(doc))
}

func TestTabs_ActivateUnknownLeavesDocumentUntouched(t *testing.T) {
	page, doc := newAdminPage(t)

	err := page.Tabs.Activate("ghost")
	require.True(t, errors.Is(err, ErrUnknownPanel))
	require.ElementsMatch(t, []string{"btn-dashboard", "dashboard"}, activeIDs(doc))
}

func TestTabs_SnapshotRestore(t *testing.T) {
	page, doc := newAdminPage(t)
	require.NoError(t, page.Tabs.Activate("labs"))
	state := page.Tabs.Snapshot()
	require.Equal(t, State{Active: "labs"}, state)

	// Simulate a swap that renders dashboard active again.
	doc.QuerySelector(".container").SetInnerHTML(
		`<button class="tab active" id="btn-dashboard"></button><button class="tab" id="btn-labs"></button>` +
			`<div class="tab-content active" id="dashboard"></div><div class="tab-content" id="labs"></div>`)
	require.Equal(t, "dashboard", page.Tabs.Active())

	active, err := page.Tabs.Restore(state)
	require.NoError(t, err)
	require.Equal(t, "labs", active)
	require.ElementsMatch(t, []string{"btn-labs", "labs"}, activeIDs(doc))
}

func TestTabs_RestoreFallsBackToDefault(t *testing.T) {
	page, doc := newAdminPage(t)
	require.NoError(t, page.Tabs.Activate("labs"))

	active, err := page.Tabs.Restore(State{})
	require.NoError(t, err)
	require.Equal(t, "dashboard", active)

	active, err = page.Tabs.Restore(State{Active: "removed-panel"})
	require.ErrorIs(t, err, ErrUnknownPanel)
	require.Equal(t, "dashboard", active)
	require.ElementsMatch(t, []string{"btn-dashboard", "dashboard"}, activeIDs(doc))
}

func TestModals_OpenCloseAll(t *testing.T) {
	page, _ := newAdminPage(t)

	require.NoError(t, page.Modals.Open("edit-lab-modal"))
	require.True(t, page.Modals.IsOpen("edit-lab-modal"))
	require.True(t, page.Modals.IsOpen("edit-booking-modal"))

	page.Modals.CloseAll()
	require.False(t, page.Modals.IsOpen("edit-lab-modal"))
	require.False(t, page.Modals.IsOpen("edit-booking-modal"))

	require.ErrorIs(t, page.Modals.Open("nope"), ErrUnknownModal)
	require.ErrorIs(t, page.Modals.Close("nope"), ErrUnknownModal)
}

func TestModals_BackdropClickHides(t *testing.T) {
	page, doc := newAdminPage(t)
	bus := eventbus.New(nil)
	defer page.Modals.Install(bus)()
	require.NoError(t, page.Modals.Open("edit-lab-modal"))

	body := doc.GetElementByID("edit-lab-body")
	require.NoError(t, bus.Publish(context.Background(), &dom.ClickEvent{Target: body}))
	require.True(t, page.Modals.IsOpen("edit-lab-modal"), "clicking the dialog body keeps it open")

	backdrop := doc.GetElementByID("edit-lab-modal")
	require.NoError(t, bus.Publish(context.Background(), &dom.ClickEvent{Target: backdrop}))
	require.False(t, page.Modals.IsOpen("edit-lab-modal"))
}

func TestLayouts(t *testing.T) {
	layouts, err := LoadLayouts("")
	require.NoError(t, err)

	instructor, err := layouts.Get("instructor")
	require.NoError(t, err)
	require.Equal(t, "instructor", instructor.Name)
	require.True(t, instructor.HasPanel("schedule"))

	_, err = layouts.Get("superadmin")
	require.ErrorIs(t, err, ErrUnknownLayout)

	path := filepath.Join(t.TempDir(), "layouts.yaml")
	require.NoError(t, os.WriteFile(path, []byte("kiosk:\n  default_panel: missing\n  panels: [today]\n"), 0o644))
	_, err = LoadLayouts(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "kiosk")
}

func TestLoadLayouts_TOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layouts.toml")
	body := "[kiosk]\ndefault_panel = \"today\"\npanels = [\"today\", \"week\"]\nmodals = [\"confirm-modal\"]\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	layouts, err := LoadLayouts(path)
	require.NoError(t, err)
	kiosk, err := layouts.Get("kiosk")
	require.NoError(t, err)
	require.Equal(t, "kiosk", kiosk.Name)
	require.Equal(t, "today", kiosk.DefaultPanel)
	require.Equal(t, []string{"today", "week"}, kiosk.Panels)
	require.Equal(t, []string{"confirm-modal"}, kiosk.Modals)
}

func TestLayout_Suggest(t *testing.T) {
	layouts, err := LoadLayouts("")
	require.NoError(t, err)
	admin, err := layouts.Get("admin")
	require.NoError(t, err)

	require.Equal(t, []string{"bookings"}, admin.Suggest("bkng"))
	require.Empty(t, admin.Suggest("zzz"))
}
